package heex

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"
	"github.com/notactuallytreyanastasio/httpeex/internal/handler"
	"github.com/notactuallytreyanastasio/httpeex/internal/loc"
)

// blockKeywordRe recognizes the heads that open an EEx block. The
// trailing whitespace requirement keeps identifiers like "iffy" from
// matching.
var blockKeywordRe = regexp2.MustCompile(`^(if|for|case|cond|unless)\s`, regexp2.None)

// A parser turns the scanner's token stream into a tree. It needs one
// token of lookahead everywhere except EEx clause detection, which peeks
// at the content token behind an opener.
type parser struct {
	tokens []Token
	pos    int
	h      *handler.Handler
}

// Parse scans and builds input into a Document node. Either every
// construct parses and the complete tree is returned, or the aggregate
// error carrying all scan and build diagnostics is returned; partial
// trees are never exposed.
func Parse(input string) (*Node, error) {
	h := handler.NewHandler(input)
	s := NewScanner(input, h)
	tokens := s.Scan()
	if h.HasErrors() {
		return nil, h.Aggregate()
	}
	p := &parser{tokens: tokens, h: h}
	doc := &Node{Type: DocumentNode}
	doc.Children = p.parseChildren(false)
	if tok := p.current(); tok.Type != EOFToken {
		p.errorAt(loc.ERROR_UNEXPECTED_TOKEN, tok, "Unexpected token %s", tok.Type)
	}
	if len(tokens) > 0 {
		doc.Loc = loc.Span{Start: tokens[0].Loc.Start, End: tokens[len(tokens)-1].Loc.End}
	}
	if h.HasErrors() {
		return nil, h.Aggregate()
	}
	return doc, nil
}

// current returns the token at the cursor. The stream always ends with
// EOF, so running off the end keeps returning it.
func (p *parser) current() Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *parser) peek(n int) Token {
	if p.pos+n < len(p.tokens) {
		return p.tokens[p.pos+n]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *parser) advance() Token {
	tok := p.current()
	p.pos++
	return tok
}

func (p *parser) check(tt TokenType) bool {
	return p.current().Type == tt
}

func (p *parser) expect(tt TokenType) (Token, bool) {
	if p.check(tt) {
		return p.advance(), true
	}
	tok := p.current()
	p.errorAt(loc.ERROR_UNEXPECTED_TOKEN, tok, "Expected %s, got %s", tt, tok.Type)
	return Token{}, false
}

func (p *parser) errorAt(code loc.DiagnosticCode, tok Token, format string, a ...interface{}) {
	p.h.AppendError(&loc.ErrorWithOffset{
		Code:   code,
		Text:   fmt.Sprintf(format, a...),
		Offset: tok.Loc.Start.Offset,
	})
}

// parseChildren collects sibling nodes until a closing token, EOF, or —
// when stopAtClause is set — an EEx clause boundary. Closing tokens are
// left for the caller to match.
func (p *parser) parseChildren(stopAtClause bool) []*Node {
	var children []*Node
	for {
		switch p.current().Type {
		case TagCloseToken, ComponentCloseToken, SlotCloseToken, EOFToken:
			return children
		}
		if stopAtClause && p.atClauseBoundary() {
			return children
		}
		if n := p.parseNode(); n != nil {
			children = append(children, n)
		}
	}
}

// parseNode dispatches on the current token and builds exactly one node,
// or records a diagnostic and skips a token it has no rule for.
func (p *parser) parseNode() *Node {
	switch tok := p.current(); tok.Type {
	case TextToken:
		p.advance()
		return &Node{Type: TextNode, Data: tok.Data, Loc: tok.Loc}
	case TagOpenToken:
		return p.parseElement()
	case ComponentOpenToken:
		return p.parseComponent()
	case SlotOpenToken:
		return p.parseSlot()
	case ExprOpenToken:
		return p.parseExpression()
	case EExOpenToken:
		return p.parseEEx(EExExec)
	case EExOutputToken:
		return p.parseEEx(EExOutput)
	case EExCommentToken:
		return p.parseEEx(EExComment)
	case CommentOpenToken:
		return p.parseComment()
	default:
		p.errorAt(loc.ERROR_UNEXPECTED_TOKEN, tok, "Unexpected token %s", tok.Type)
		p.advance()
		return nil
	}
}

func (p *parser) parseElement() *Node {
	open := p.advance()
	n := &Node{Type: ElementNode, Data: open.Data, DataAtom: open.DataAtom, Loc: open.Loc}
	n.Attr = p.parseAttributes()

	if p.check(TagSelfCloseToken) {
		end := p.advance()
		n.SelfClosing = true
		n.Loc.End = end.Loc.End
		return n
	}
	if end, ok := p.expect(TagEndToken); ok {
		n.Loc.End = end.Loc.End
	}
	if n.IsVoid() {
		// Void elements never take children or a closing tag; the next
		// token starts a fresh sibling.
		n.SelfClosing = true
		return n
	}

	n.Children = p.parseChildren(false)

	if p.check(TagCloseToken) {
		end := p.advance()
		if end.Data != n.Data {
			p.errorAt(loc.ERROR_MISMATCHED_CLOSING_TAG, end,
				"Mismatched closing tag: expected </%s>, got </%s>", n.Data, end.Data)
		}
		n.Loc.End = end.Loc.End
	} else {
		p.errorAt(loc.ERROR_EXPECTED_CLOSING_TAG, p.current(), "Expected closing tag </%s>", n.Data)
	}
	return n
}

func (p *parser) parseComponent() *Node {
	open := p.advance()
	n := &Node{Type: ComponentNode, Data: open.Data, ComponentType: RemoteComponent, Loc: open.Loc}
	if strings.HasPrefix(n.Data, ".") {
		n.ComponentType = LocalComponent
	}
	n.Attr = p.parseAttributes()

	if p.check(TagSelfCloseToken) {
		end := p.advance()
		n.Loc.End = end.Loc.End
		return n
	}
	p.expect(TagEndToken)

	// The body loop diverts slots; everything else lands in Children in
	// source order.
	for {
		switch p.current().Type {
		case ComponentCloseToken, EOFToken:
		case SlotOpenToken:
			if slot := p.parseSlot(); slot != nil {
				n.Slots = append(n.Slots, slot)
			}
			continue
		default:
			if child := p.parseNode(); child != nil {
				n.Children = append(n.Children, child)
			}
			continue
		}
		break
	}

	if p.check(ComponentCloseToken) {
		end := p.advance()
		if end.Data != n.Data {
			p.errorAt(loc.ERROR_MISMATCHED_CLOSING_TAG, end,
				"Mismatched closing tag: expected </%s>, got </%s>", n.Data, end.Data)
		}
		n.Loc.End = end.Loc.End
	} else {
		p.errorAt(loc.ERROR_EXPECTED_CLOSING_TAG, p.current(), "Expected closing tag </%s>", n.Data)
	}
	return n
}

func (p *parser) parseSlot() *Node {
	open := p.advance()
	n := &Node{Type: SlotNode, Data: open.Data, Loc: open.Loc}
	n.Attr = p.parseAttributes()
	for _, a := range n.Attr {
		if a.Type == SpecialAttribute && a.Key == "let" {
			n.LetBinding = a.Val
		}
	}

	if p.check(TagSelfCloseToken) {
		end := p.advance()
		n.SelfClosing = true
		n.Loc.End = end.Loc.End
		return n
	}
	p.expect(TagEndToken)

	n.Children = p.parseChildren(false)

	if p.check(SlotCloseToken) {
		end := p.advance()
		if end.Data != n.Data {
			p.errorAt(loc.ERROR_MISMATCHED_CLOSING_TAG, end,
				"Mismatched closing tag: expected </:%s>, got </:%s>", n.Data, end.Data)
		}
		n.Loc.End = end.Loc.End
	} else {
		p.errorAt(loc.ERROR_EXPECTED_CLOSING_TAG, p.current(), "Expected closing tag </:%s>", n.Data)
	}
	return n
}

// parseAttributes classifies the attribute tokens of one tag. An
// unrecognized token ends the list.
func (p *parser) parseAttributes() []Attribute {
	var attrs []Attribute
	for {
		switch tok := p.current(); tok.Type {
		case TagEndToken, TagSelfCloseToken, EOFToken:
			return attrs
		case ExprOpenToken:
			code := p.parseExpressionCode()
			attrs = append(attrs, Attribute{Type: SpreadAttribute, Val: code, KeyLoc: tok.Loc.Start})
		case AttrNameToken:
			p.advance()
			name := tok.Data
			if !p.check(AttrEqualsToken) {
				// Boolean attribute.
				attrs = append(attrs, Attribute{Type: StaticAttribute, Key: name, Val: "true", KeyLoc: tok.Loc.Start})
				continue
			}
			p.advance()
			switch {
			case p.check(ExprOpenToken):
				code := p.parseExpressionCode()
				if strings.HasPrefix(name, ":") {
					attrs = append(attrs, Attribute{Type: SpecialAttribute, Key: name[1:], Val: code, KeyLoc: tok.Loc.Start})
				} else {
					attrs = append(attrs, Attribute{Type: DynamicAttribute, Key: name, Val: code, KeyLoc: tok.Loc.Start})
				}
			case p.check(AttrValueToken):
				val := p.advance()
				attrs = append(attrs, Attribute{Type: StaticAttribute, Key: name, Val: val.Data, KeyLoc: tok.Loc.Start})
			default:
				p.errorAt(loc.ERROR_EXPECTED_ATTRIBUTE_VALUE, p.current(), "Expected attribute value")
			}
		default:
			return attrs
		}
	}
}

func (p *parser) parseExpression() *Node {
	open := p.current()
	code := p.parseExpressionCode()
	return &Node{Type: ExpressionNode, Data: code, Loc: open.Loc}
}

// parseExpressionCode consumes an ExprOpen/ExprContent/ExprClose triple
// and returns the opaque body.
func (p *parser) parseExpressionCode() string {
	p.advance() // ExprOpen
	code := ""
	if p.check(ExprContentToken) {
		code = p.advance().Data
	}
	p.expect(ExprCloseToken)
	return code
}

// parseEEx builds an EEx leaf, promoting output tags whose code opens a
// block ("if", "for", "case", "cond", "unless") to an EExBlock.
func (p *parser) parseEEx(kind EExType) *Node {
	open := p.advance()
	code := ""
	if p.check(EExContentToken) {
		code = p.advance().Data
	}
	p.expect(EExCloseToken)

	if kind == EExOutput {
		trimmed := strings.TrimSpace(code)
		if m, _ := blockKeywordRe.FindStringMatch(trimmed); m != nil {
			return p.parseEExBlock(trimmed, open)
		}
	}
	return &Node{Type: EExNode, EExType: kind, Data: code, Loc: open.Loc}
}

// parseEExBlock builds the clause structure of a block head like
// "if @show do". The head splits on its first whitespace run; a literal
// " do" suffix is dropped from the expression.
func (p *parser) parseEExBlock(head string, open Token) *Node {
	i := strings.IndexFunc(head, unicode.IsSpace)
	blockType := head[:i]
	expr := strings.TrimSpace(head[i:])
	expr = strings.TrimSuffix(expr, " do")

	n := &Node{Type: EExBlockNode, BlockType: blockType, Data: expr, Loc: open.Loc}
	n.Clauses = append(n.Clauses, EExClause{Type: DoClause, Children: p.parseChildren(true)})

	for p.atClauseBoundary() {
		p.advance()                                 // EExOpen or EExOutput
		code := strings.TrimSpace(p.advance().Data) // EExContent, guaranteed by the boundary check
		p.expect(EExCloseToken)
		switch {
		case code == "end":
			n.Clauses = append(n.Clauses, EExClause{Type: EndClause})
			return n
		case code == "else":
			n.Clauses = append(n.Clauses, EExClause{Type: ElseClause, Children: p.parseChildren(true)})
		default:
			n.Clauses = append(n.Clauses, EExClause{Type: ArrowClause, Expression: code, Children: p.parseChildren(true)})
		}
	}
	// No terminal "<% end %>": the block closes silently.
	return n
}

// atClauseBoundary reports whether the next tokens open an EEx tag whose
// body is "end", "else" or an arrow clause. This is the only place the
// builder looks two tokens ahead.
func (p *parser) atClauseBoundary() bool {
	tok := p.current()
	if tok.Type != EExOpenToken && tok.Type != EExOutputToken {
		return false
	}
	next := p.peek(1)
	if next.Type != EExContentToken {
		return false
	}
	code := strings.TrimSpace(next.Data)
	return code == "end" || code == "else" || strings.Contains(code, "->")
}

func (p *parser) parseComment() *Node {
	open := p.advance()
	content := ""
	if p.check(CommentContentToken) {
		content = p.advance().Data
	}
	p.expect(CommentCloseToken)
	return &Node{Type: CommentNode, Data: content, Loc: open.Loc}
}
