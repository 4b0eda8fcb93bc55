package printer

import (
	"strings"

	heex "github.com/notactuallytreyanastasio/httpeex/internal"
)

// jsonEscaper covers the characters the compact form escapes; all other
// codepoints pass through verbatim.
var jsonEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// PrintToJSON renders the compact JSON form of the tree. Objects are
// keyed by "type" with the variant's lowercase name; children, attributes
// and slots keep source order.
func PrintToJSON(doc *heex.Node) string {
	p := &printer{}
	renderJSON(p, doc)
	return p.String()
}

func (p *printer) jsonString(s string) {
	p.print(`"` + jsonEscaper.Replace(s) + `"`)
}

func (p *printer) jsonKey(key string) {
	p.print(`,"` + key + `":`)
}

func renderJSON(p *printer, n *heex.Node) {
	p.printf(`{"type":"%s"`, n.Type)
	switch n.Type {
	case heex.DocumentNode:
		p.jsonKey("children")
		renderJSONNodes(p, n.Children)
	case heex.TextNode, heex.CommentNode:
		p.jsonKey("content")
		p.jsonString(n.Data)
	case heex.ElementNode:
		p.jsonKey("tag")
		p.jsonString(n.Data)
		p.jsonKey("attributes")
		renderJSONAttrs(p, n.Attr)
		p.jsonKey("children")
		renderJSONNodes(p, n.Children)
	case heex.ComponentNode:
		p.jsonKey("name")
		p.jsonString(n.Data)
		p.jsonKey("componentType")
		p.jsonString(n.ComponentType.String())
		p.jsonKey("attributes")
		renderJSONAttrs(p, n.Attr)
		p.jsonKey("children")
		renderJSONNodes(p, n.Children)
		p.jsonKey("slots")
		renderJSONNodes(p, n.Slots)
	case heex.SlotNode:
		p.jsonKey("name")
		p.jsonString(n.Data)
		if n.LetBinding != "" {
			p.jsonKey("let")
			p.jsonString(n.LetBinding)
		}
		p.jsonKey("attributes")
		renderJSONAttrs(p, n.Attr)
		p.jsonKey("children")
		renderJSONNodes(p, n.Children)
	case heex.ExpressionNode:
		p.jsonKey("code")
		p.jsonString(n.Data)
	case heex.EExNode:
		p.jsonKey("eexType")
		p.jsonString(n.EExType.String())
		p.jsonKey("code")
		p.jsonString(n.Data)
	case heex.EExBlockNode:
		p.jsonKey("blockType")
		p.jsonString(n.BlockType)
		p.jsonKey("expression")
		p.jsonString(n.Data)
		p.jsonKey("clauses")
		p.print("[")
		for i, clause := range n.Clauses {
			if i > 0 {
				p.print(",")
			}
			renderJSONClause(p, clause)
		}
		p.print("]")
	}
	p.print("}")
}

func renderJSONClause(p *printer, clause heex.EExClause) {
	p.print(`{"clauseType":`)
	p.jsonString(clause.Type.String())
	if clause.Expression != "" {
		p.jsonKey("expression")
		p.jsonString(clause.Expression)
	}
	p.jsonKey("children")
	renderJSONNodes(p, clause.Children)
	p.print("}")
}

func renderJSONNodes(p *printer, nodes []*heex.Node) {
	p.print("[")
	for i, c := range nodes {
		if i > 0 {
			p.print(",")
		}
		renderJSON(p, c)
	}
	p.print("]")
}

func renderJSONAttrs(p *printer, attrs []heex.Attribute) {
	p.print("[")
	for i, a := range attrs {
		if i > 0 {
			p.print(",")
		}
		p.printf(`{"type":"%s"`, a.Type)
		switch a.Type {
		case heex.StaticAttribute:
			p.jsonKey("name")
			p.jsonString(a.Key)
			p.jsonKey("value")
			p.jsonString(a.Val)
		case heex.DynamicAttribute:
			p.jsonKey("name")
			p.jsonString(a.Key)
			p.jsonKey("expression")
			p.jsonString(a.Val)
		case heex.SpreadAttribute:
			p.jsonKey("expression")
			p.jsonString(a.Val)
		case heex.SpecialAttribute:
			p.jsonKey("kind")
			p.jsonString(a.Key)
			p.jsonKey("expression")
			p.jsonString(a.Val)
		}
		p.print("}")
	}
	p.print("]")
}
