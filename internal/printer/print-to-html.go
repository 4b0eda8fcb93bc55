package printer

import (
	heex "github.com/notactuallytreyanastasio/httpeex/internal"
)

// PrintToHTML renders a Document back to its HTML-like source form. On
// the syntactic fragment the renderer round-trips: its output parses to
// the same tree, and for already-normalized input it reproduces the input
// byte for byte.
func PrintToHTML(doc *heex.Node) string {
	p := &printer{}
	renderHTML(p, doc)
	return p.String()
}

func renderHTML(p *printer, n *heex.Node) {
	switch n.Type {
	case heex.DocumentNode:
		for _, c := range n.Children {
			renderHTML(p, c)
		}
	case heex.TextNode:
		p.print(escapeText(n.Data))
	case heex.ElementNode:
		p.print("<" + n.Data)
		renderHTMLAttrs(p, n.Attr)
		if n.SelfClosing || n.IsVoid() {
			p.print(" />")
			return
		}
		p.print(">")
		for _, c := range n.Children {
			renderHTML(p, c)
		}
		p.print("</" + n.Data + ">")
	case heex.ComponentNode:
		p.print("<" + n.Data)
		renderHTMLAttrs(p, n.Attr)
		if len(n.Children) == 0 && len(n.Slots) == 0 {
			p.print(" />")
			return
		}
		p.print(">")
		for _, c := range n.Children {
			renderHTML(p, c)
		}
		for _, s := range n.Slots {
			renderHTML(p, s)
		}
		p.print("</" + n.Data + ">")
	case heex.SlotNode:
		p.print("<:" + n.Data)
		renderHTMLAttrs(p, n.Attr)
		if len(n.Children) == 0 {
			p.print(" />")
			return
		}
		p.print(">")
		for _, c := range n.Children {
			renderHTML(p, c)
		}
		p.print("</:" + n.Data + ">")
	case heex.ExpressionNode:
		p.print("{" + n.Data + "}")
	case heex.EExNode:
		switch n.EExType {
		case heex.EExOutput:
			p.print("<%= " + n.Data + " %>")
		case heex.EExComment:
			p.print("<%# " + n.Data + " %>")
		default:
			p.print("<% " + n.Data + " %>")
		}
	case heex.EExBlockNode:
		head := n.BlockType
		if n.Data != "" {
			head += " " + n.Data
		}
		p.print("<%= " + head + " do %>")
		for _, clause := range n.Clauses {
			renderHTMLClause(p, clause)
		}
	case heex.CommentNode:
		p.print("<!--" + n.Data + "-->")
	}
}

func renderHTMLClause(p *printer, clause heex.EExClause) {
	switch clause.Type {
	case heex.DoClause:
		// The do clause's head was already printed with the block.
	case heex.ElseClause:
		p.print("<% else %>")
	case heex.EndClause:
		p.print("<% end %>")
		return
	default:
		p.print("<% " + clause.Expression + " %>")
	}
	for _, c := range clause.Children {
		renderHTML(p, c)
	}
}

func renderHTMLAttrs(p *printer, attrs []heex.Attribute) {
	for _, a := range attrs {
		switch a.Type {
		case heex.StaticAttribute:
			p.printf(` %s="%s"`, a.Key, escapeAttr(a.Val))
		case heex.DynamicAttribute:
			p.printf(" %s={%s}", a.Key, a.Val)
		case heex.SpreadAttribute:
			p.printf(" {%s}", a.Val)
		case heex.SpecialAttribute:
			p.printf(" :%s={%s}", a.Key, a.Val)
		}
	}
}
