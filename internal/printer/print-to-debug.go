package printer

import (
	"strings"

	heex "github.com/notactuallytreyanastasio/httpeex/internal"
)

// debugEscaper makes whitespace visible in dumped text content.
var debugEscaper = strings.NewReplacer(
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// PrintToDebug renders an indented human-readable dump of the tree, one
// node per line with a two-space indent step.
func PrintToDebug(doc *heex.Node) string {
	p := &printer{}
	renderDebug(p, doc, 0)
	return p.String()
}

func (p *printer) indent(depth int) {
	p.print(strings.Repeat("  ", depth))
}

func renderDebug(p *printer, n *heex.Node, depth int) {
	p.indent(depth)
	switch n.Type {
	case heex.DocumentNode:
		p.print("Document\n")
		for _, c := range n.Children {
			renderDebug(p, c, depth+1)
		}
	case heex.TextNode:
		p.printf("Text: \"%s\"\n", debugEscaper.Replace(n.Data))
	case heex.ElementNode:
		p.printf("Element: <%s>\n", n.Data)
		renderDebugAttrs(p, n.Attr, depth+1)
		for _, c := range n.Children {
			renderDebug(p, c, depth+1)
		}
	case heex.ComponentNode:
		p.printf("Component: %s\n", n.Data)
		renderDebugAttrs(p, n.Attr, depth+1)
		for _, c := range n.Children {
			renderDebug(p, c, depth+1)
		}
		for _, s := range n.Slots {
			renderDebug(p, s, depth+1)
		}
	case heex.SlotNode:
		p.printf("Slot: <:%s>\n", n.Data)
		renderDebugAttrs(p, n.Attr, depth+1)
		for _, c := range n.Children {
			renderDebug(p, c, depth+1)
		}
	case heex.ExpressionNode:
		p.printf("Expression: {%s}\n", n.Data)
	case heex.EExNode:
		p.printf("EEx(%s): %s\n", n.EExType, n.Data)
	case heex.EExBlockNode:
		p.printf("EExBlock: %s %s\n", n.BlockType, n.Data)
		for _, clause := range n.Clauses {
			p.indent(depth + 1)
			switch {
			case clause.Type == heex.EndClause:
				p.print("Clause(end)\n")
			case clause.Expression != "":
				p.printf("Clause(%s): %s\n", clause.Type, clause.Expression)
			default:
				p.printf("Clause(%s):\n", clause.Type)
			}
			for _, c := range clause.Children {
				renderDebug(p, c, depth+2)
			}
		}
	case heex.CommentNode:
		p.printf("Comment: \"%s\"\n", debugEscaper.Replace(n.Data))
	}
}

func renderDebugAttrs(p *printer, attrs []heex.Attribute, depth int) {
	for _, a := range attrs {
		p.indent(depth)
		switch a.Type {
		case heex.StaticAttribute:
			p.printf("Attribute(static): %s=%q\n", a.Key, a.Val)
		case heex.DynamicAttribute:
			p.printf("Attribute(dynamic): %s={%s}\n", a.Key, a.Val)
		case heex.SpreadAttribute:
			p.printf("Attribute(spread): {%s}\n", a.Val)
		case heex.SpecialAttribute:
			p.printf("Attribute(special): :%s={%s}\n", a.Key, a.Val)
		}
	}
}
