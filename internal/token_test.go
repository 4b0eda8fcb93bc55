package heex

import (
	"reflect"
	"strings"
	"testing"

	"github.com/notactuallytreyanastasio/httpeex/internal/handler"
)

type TokenTypeTest struct {
	name     string
	input    string
	expected []TokenType
}

type TokenValueTest struct {
	name     string
	input    string
	expected []Token
}

type ScanErrorTest struct {
	name    string
	input   string
	message string
}

func TestBasic(t *testing.T) {
	Basic := []TokenTypeTest{
		{
			"start tag",
			`<div>`,
			[]TokenType{TagOpenToken, TagEndToken, EOFToken},
		},
		{
			"self-closing tag",
			`<br/>`,
			[]TokenType{TagOpenToken, TagSelfCloseToken, EOFToken},
		},
		{
			"end tag",
			`</div>`,
			[]TokenType{TagCloseToken, EOFToken},
		},
		{
			"local component",
			`<.button>`,
			[]TokenType{ComponentOpenToken, TagEndToken, EOFToken},
		},
		{
			"remote component",
			`<MyApp.Button>`,
			[]TokenType{ComponentOpenToken, TagEndToken, EOFToken},
		},
		{
			"slot",
			`<:header>`,
			[]TokenType{SlotOpenToken, TagEndToken, EOFToken},
		},
		{
			"slot close",
			`</:header>`,
			[]TokenType{SlotCloseToken, EOFToken},
		},
		{
			"component close",
			`</.button>`,
			[]TokenType{ComponentCloseToken, EOFToken},
		},
		{
			"expression",
			`{@name}`,
			[]TokenType{ExprOpenToken, ExprContentToken, ExprCloseToken, EOFToken},
		},
		{
			"eex output",
			`<%= @name %>`,
			[]TokenType{EExOutputToken, EExContentToken, EExCloseToken, EOFToken},
		},
		{
			"eex exec",
			`<% x = 1 %>`,
			[]TokenType{EExOpenToken, EExContentToken, EExCloseToken, EOFToken},
		},
		{
			"eex comment",
			`<%# note %>`,
			[]TokenType{EExCommentToken, EExContentToken, EExCloseToken, EOFToken},
		},
		{
			"comment",
			`<!-- x -->`,
			[]TokenType{CommentOpenToken, CommentContentToken, CommentCloseToken, EOFToken},
		},
		{
			"text",
			`test`,
			[]TokenType{TextToken, EOFToken},
		},
		{
			"underscore tag",
			`<_private></_private>`,
			[]TokenType{TagOpenToken, TagEndToken, TagCloseToken, EOFToken},
		},
		{
			"siblings",
			`<div></div><span></span>`,
			[]TokenType{TagOpenToken, TagEndToken, TagCloseToken, TagOpenToken, TagEndToken, TagCloseToken, EOFToken},
		},
		{
			"text between tags",
			`<p>Hello</p>`,
			[]TokenType{TagOpenToken, TagEndToken, TextToken, TagCloseToken, EOFToken},
		},
		{
			"text and expression",
			`Hello {@name}!`,
			[]TokenType{TextToken, ExprOpenToken, ExprContentToken, ExprCloseToken, TextToken, EOFToken},
		},
	}

	runTokenTypeTest(t, Basic)
}

func TestAttributeTokens(t *testing.T) {
	Attributes := []TokenTypeTest{
		{
			"static attribute",
			`<div class="container">`,
			[]TokenType{TagOpenToken, AttrNameToken, AttrEqualsToken, AttrValueToken, TagEndToken, EOFToken},
		},
		{
			"single-quoted attribute",
			`<div class='container'>`,
			[]TokenType{TagOpenToken, AttrNameToken, AttrEqualsToken, AttrValueToken, TagEndToken, EOFToken},
		},
		{
			"unquoted attribute",
			`<div class=container>`,
			[]TokenType{TagOpenToken, AttrNameToken, AttrEqualsToken, AttrValueToken, TagEndToken, EOFToken},
		},
		{
			"boolean attribute",
			`<input disabled>`,
			[]TokenType{TagOpenToken, AttrNameToken, TagEndToken, EOFToken},
		},
		{
			"dynamic attribute",
			`<div class={@c}>`,
			[]TokenType{TagOpenToken, AttrNameToken, AttrEqualsToken, ExprOpenToken, ExprContentToken, ExprCloseToken, TagEndToken, EOFToken},
		},
		{
			"spread attribute",
			`<div {@attrs}>`,
			[]TokenType{TagOpenToken, ExprOpenToken, ExprContentToken, ExprCloseToken, TagEndToken, EOFToken},
		},
		{
			"special attribute",
			`<div :if={@show}>`,
			[]TokenType{TagOpenToken, AttrNameToken, AttrEqualsToken, ExprOpenToken, ExprContentToken, ExprCloseToken, TagEndToken, EOFToken},
		},
		{
			"several attributes",
			`<li :for={item <- @items} :key={item.id} class="row">`,
			[]TokenType{
				TagOpenToken,
				AttrNameToken, AttrEqualsToken, ExprOpenToken, ExprContentToken, ExprCloseToken,
				AttrNameToken, AttrEqualsToken, ExprOpenToken, ExprContentToken, ExprCloseToken,
				AttrNameToken, AttrEqualsToken, AttrValueToken,
				TagEndToken, EOFToken,
			},
		},
	}

	runTokenTypeTest(t, Attributes)
}

func TestExpressionValues(t *testing.T) {
	Expressions := []TokenValueTest{
		{
			"nested braces",
			`{%{a: 1}}`,
			[]Token{
				{Type: ExprOpenToken, Data: "{"},
				{Type: ExprContentToken, Data: "%{a: 1}"},
				{Type: ExprCloseToken, Data: "}"},
				{Type: EOFToken},
			},
		},
		{
			"brace inside string",
			`{"hello {world}"}`,
			[]Token{
				{Type: ExprOpenToken, Data: "{"},
				{Type: ExprContentToken, Data: `"hello {world}"`},
				{Type: ExprCloseToken, Data: "}"},
				{Type: EOFToken},
			},
		},
		{
			"escaped quote inside string",
			`{"a\"}b"}`,
			[]Token{
				{Type: ExprOpenToken, Data: "{"},
				{Type: ExprContentToken, Data: `"a\"}b"`},
				{Type: ExprCloseToken, Data: "}"},
				{Type: EOFToken},
			},
		},
		{
			"deeply nested maps",
			`{%{a: %{b: 2}}}`,
			[]Token{
				{Type: ExprOpenToken, Data: "{"},
				{Type: ExprContentToken, Data: "%{a: %{b: 2}}"},
				{Type: ExprCloseToken, Data: "}"},
				{Type: EOFToken},
			},
		},
	}

	runTokenValueTest(t, Expressions)
}

func TestTextValues(t *testing.T) {
	Texts := []TokenValueTest{
		{
			"entity decoding",
			`Fish &amp; Chips &lt;hot&gt;`,
			[]Token{
				{Type: TextToken, Data: "Fish & Chips <hot>"},
				{Type: EOFToken},
			},
		},
		{
			"quote entities",
			`&quot;hi&quot; it&#39;s`,
			[]Token{
				{Type: TextToken, Data: `"hi" it's`},
				{Type: EOFToken},
			},
		},
		{
			"unknown entity passes through",
			`a &nbsp; b`,
			[]Token{
				{Type: TextToken, Data: "a &nbsp; b"},
				{Type: EOFToken},
			},
		},
	}

	runTokenValueTest(t, Texts)
}

func TestTagValues(t *testing.T) {
	Tags := []TokenValueTest{
		{
			"local component name keeps dot",
			`<.button/>`,
			[]Token{
				{Type: ComponentOpenToken, Data: ".button"},
				{Type: TagSelfCloseToken, Data: "/>"},
				{Type: EOFToken},
			},
		},
		{
			"remote component path",
			`<MyApp.Button/>`,
			[]Token{
				{Type: ComponentOpenToken, Data: "MyApp.Button"},
				{Type: TagSelfCloseToken, Data: "/>"},
				{Type: EOFToken},
			},
		},
		{
			"slot name has no colon",
			`<:header/>`,
			[]Token{
				{Type: SlotOpenToken, Data: "header"},
				{Type: TagSelfCloseToken, Data: "/>"},
				{Type: EOFToken},
			},
		},
		{
			"component close keeps dot",
			`</.button>`,
			[]Token{
				{Type: ComponentCloseToken, Data: ".button"},
				{Type: EOFToken},
			},
		},
		{
			"special attribute name keeps colon",
			`<div :if={@show}/>`,
			[]Token{
				{Type: TagOpenToken, Data: "div"},
				{Type: AttrNameToken, Data: ":if"},
				{Type: AttrEqualsToken, Data: "="},
				{Type: ExprOpenToken, Data: "{"},
				{Type: ExprContentToken, Data: "@show"},
				{Type: ExprCloseToken, Data: "}"},
				{Type: TagSelfCloseToken, Data: "/>"},
				{Type: EOFToken},
			},
		},
	}

	runTokenValueTest(t, Tags)
}

func TestEExValues(t *testing.T) {
	Cases := []TokenValueTest{
		{
			"body is trimmed",
			`<%=   @name   %>`,
			[]Token{
				{Type: EExOutputToken, Data: ""},
				{Type: EExContentToken, Data: "@name"},
				{Type: EExCloseToken, Data: "%>"},
				{Type: EOFToken},
			},
		},
		{
			"comment interior is exact",
			`<!-- keep  spacing -->`,
			[]Token{
				{Type: CommentOpenToken, Data: "<!--"},
				{Type: CommentContentToken, Data: " keep  spacing "},
				{Type: CommentCloseToken, Data: "-->"},
				{Type: EOFToken},
			},
		},
	}

	runTokenValueTest(t, Cases)
}

func TestScanErrors(t *testing.T) {
	Errors := []ScanErrorTest{
		{"unterminated expression", `{@name`, "Unterminated expression"},
		{"unterminated eex", `<%= @name`, "Unterminated EEx expression"},
		{"unterminated comment", `<!-- x`, "Unterminated comment"},
		{"unterminated string", `<div class="x`, "Unterminated string"},
		{"unterminated tag", `<div class="x"`, "Unterminated tag"},
		{"missing tag name", `<>`, "Expected tag name after <"},
	}

	for _, tt := range Errors {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			if err == nil {
				t.Fatalf("Tokenize(%q) succeeded, want error containing %q", tt.input, tt.message)
			}
			if tokens != nil {
				t.Errorf("Tokenize(%q) returned tokens alongside an error", tt.input)
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("error = %q\nwant substring %q", err.Error(), tt.message)
			}
		})
	}
}

func TestErrorPositions(t *testing.T) {
	_, err := Tokenize("line one\n  {@oops")
	if err == nil {
		t.Fatal("expected an error for an unterminated expression")
	}
	if !strings.HasPrefix(err.Error(), "2:3:") {
		t.Errorf("error = %q, want a 2:3: position prefix", err.Error())
	}
}

func TestErrorAggregation(t *testing.T) {
	_, err := Tokenize("{@a\n") // unterminated expression swallows the rest
	if err == nil {
		t.Fatal("expected an error")
	}
	_, err = Tokenize("<!-- a <div {@b")
	if err == nil {
		t.Fatal("expected an error")
	}
	// A comment with no terminator consumes the remaining input, so only
	// one diagnostic accumulates here.
	if got := len(strings.Split(err.Error(), "\n")); got != 1 {
		t.Errorf("diagnostic count = %d, want 1", got)
	}
}

func TestTokenPositions(t *testing.T) {
	h := handler.NewHandler("ab\n<div>")
	s := NewScanner("ab\n<div>", h)
	tokens := s.Scan()
	if h.HasErrors() {
		t.Fatalf("unexpected errors: %v", h.Errors())
	}
	// Text "ab\n", then the tag on line 2.
	if tokens[0].Loc.Start.Line != 1 || tokens[0].Loc.Start.Column != 1 {
		t.Errorf("text start = %d:%d, want 1:1", tokens[0].Loc.Start.Line, tokens[0].Loc.Start.Column)
	}
	if tokens[1].Type != TagOpenToken {
		t.Fatalf("tokens[1] = %s, want TagOpen", tokens[1].Type)
	}
	if tokens[1].Loc.Start.Line != 2 || tokens[1].Loc.Start.Column != 1 {
		t.Errorf("tag start = %d:%d, want 2:1", tokens[1].Loc.Start.Line, tokens[1].Loc.Start.Column)
	}
	if tokens[1].Loc.Start.Offset != 3 {
		t.Errorf("tag offset = %d, want 3", tokens[1].Loc.Start.Offset)
	}
}

func runTokenTypeTest(t *testing.T, suite []TokenTypeTest) {
	for _, tt := range suite {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("Tokenize(%q) error: %v", tt.input, err)
			}
			types := make([]TokenType, 0, len(tokens))
			for _, tok := range tokens {
				types = append(types, tok.Type)
			}
			if !reflect.DeepEqual(types, tt.expected) {
				t.Errorf("Tokens = %v\nExpected = %v", types, tt.expected)
			}
		})
	}
}

func runTokenValueTest(t *testing.T, suite []TokenValueTest) {
	for _, tt := range suite {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("Tokenize(%q) error: %v", tt.input, err)
			}
			if len(tokens) != len(tt.expected) {
				t.Fatalf("token count = %d, want %d (%v)", len(tokens), len(tt.expected), tokens)
			}
			for i, want := range tt.expected {
				if tokens[i].Type != want.Type || tokens[i].Data != want.Data {
					t.Errorf("tokens[%d] = (%s, %q), want (%s, %q)", i, tokens[i].Type, tokens[i].Data, want.Type, want.Data)
				}
			}
		})
	}
}
