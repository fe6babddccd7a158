package el

// Element constructors. Each is Element with a fixed tag.


func Div(args ...any) *VNode { return Element("div", args...) }
func Span(args ...any) *VNode { return Element("span", args...) }
func P(args ...any) *VNode { return Element("p", args...) }
func A(args ...any) *VNode { return Element("a", args...) }
func Button(args ...any) *VNode { return Element("button", args...) }
func Input(args ...any) *VNode { return Element("input", args...) }
func Textarea(args ...any) *VNode { return Element("textarea", args...) }
func Select(args ...any) *VNode { return Element("select", args...) }
func Option(args ...any) *VNode { return Element("option", args...) }
func Label(args ...any) *VNode { return Element("label", args...) }
func Form(args ...any) *VNode { return Element("form", args...) }
func Ul(args ...any) *VNode { return Element("ul", args...) }
func Ol(args ...any) *VNode { return Element("ol", args...) }
func Li(args ...any) *VNode { return Element("li", args...) }
func Main(args ...any) *VNode { return Element("main", args...) }
func Header(args ...any) *VNode { return Element("header", args...) }
func Footer(args ...any) *VNode { return Element("footer", args...) }
func Nav(args ...any) *VNode { return Element("nav", args...) }
func Section(args ...any) *VNode { return Element("section", args...) }
func Article(args ...any) *VNode { return Element("article", args...) }
func Aside(args ...any) *VNode { return Element("aside", args...) }
func H1(args ...any) *VNode { return Element("h1", args...) }
func H2(args ...any) *VNode { return Element("h2", args...) }
func H3(args ...any) *VNode { return Element("h3", args...) }
func H4(args ...any) *VNode { return Element("h4", args...) }
func H5(args ...any) *VNode { return Element("h5", args...) }
func H6(args ...any) *VNode { return Element("h6", args...) }
func Strong(args ...any) *VNode { return Element("strong", args...) }
func Em(args ...any) *VNode { return Element("em", args...) }
func Code(args ...any) *VNode { return Element("code", args...) }
func Pre(args ...any) *VNode { return Element("pre", args...) }
func Img(args ...any) *VNode { return Element("img", args...) }
func Br(args ...any) *VNode { return Element("br", args...) }
func Hr(args ...any) *VNode { return Element("hr", args...) }
func Table(args ...any) *VNode { return Element("table", args...) }
func Thead(args ...any) *VNode { return Element("thead", args...) }
func Tbody(args ...any) *VNode { return Element("tbody", args...) }
func Tr(args ...any) *VNode { return Element("tr", args...) }
func Th(args ...any) *VNode { return Element("th", args...) }
func Td(args ...any) *VNode { return Element("td", args...) }
