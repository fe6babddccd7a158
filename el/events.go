package el

// On binds handler to the named event. handler is usually an app.Action.
func On(event string, handler any) Props {
	return Props{"on" + event: handler}
}

func OnClick(handler any) Props { return On("click", handler) }
func OnDblClick(handler any) Props { return On("dblclick", handler) }
func OnInput(handler any) Props { return On("input", handler) }
func OnChange(handler any) Props { return On("change", handler) }
func OnSubmit(handler any) Props { return On("submit", handler) }
func OnKeyDown(handler any) Props { return On("keydown", handler) }
func OnKeyUp(handler any) Props { return On("keyup", handler) }
func OnFocus(handler any) Props { return On("focus", handler) }
func OnBlur(handler any) Props { return On("blur", handler) }
