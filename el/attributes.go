package el

// Attr returns a single-prop Props.
func Attr(name string, value any) Props {
	return Props{name: value}
}

func ID(id string) Props { return Props{"id": id} }

// Class accepts anything vdom.ClassName does: a string, a []string or a
// map[string]bool of toggles.
func Class(v any) Props { return Props{"class": v} }

// Classes joins class names.
func Classes(names ...string) Props { return Props{"class": names} }

// StyleProp accepts a vdom.Style, a map[string]string or inline CSS.
func StyleProp(v any) Props { return Props{"style": v} }

// Key sets the reconciliation key.
func Key(key any) Props { return Props{"key": key} }

func Data(key, value string) Props { return Props{"data-" + key: value} }
func Href(url string) Props { return Props{"href": url} }
func Type(t string) Props { return Props{"type": t} }
func Name(n string) Props { return Props{"name": n} }
func Placeholder(s string) Props { return Props{"placeholder": s} }
func Title(s string) Props { return Props{"title": s} }
func Role(role string) Props { return Props{"role": role} }
func AriaLabel(label string) Props { return Props{"aria-label": label} }

// Disabled and Hidden are dropped when false.
func Disabled(on bool) Props { return Props{"disabled": on} }
func Hidden(on bool) Props { return Props{"hidden": on} }

// Value, Checked and Selected set live DOM properties rather than
// attributes.
func Value(v string) Props { return Props{"value": v} }
func Checked(on bool) Props { return Props{"checked": on} }
func Selected(on bool) Props { return Props{"selected": on} }
