// Package httpeex parses HEEx templates — the HTML-with-embedded-
// expressions dialect used by Phoenix LiveView — into a structured tree,
// and renders the tree back to an HTML-like string, an indented debug
// dump, or a compact JSON form.
//
// Parsing is a strictly linear pipeline: input string → tokens → tree →
// rendered string. Every entry point is a pure function of its input and
// holds no state across calls, so distinct goroutines may parse distinct
// inputs concurrently. Parsing either succeeds with a complete tree or
// fails with one aggregate error carrying every diagnostic; partial trees
// are never returned.
package httpeex

import (
	"errors"

	heex "github.com/notactuallytreyanastasio/httpeex/internal"
	"github.com/notactuallytreyanastasio/httpeex/internal/handler"
	"github.com/notactuallytreyanastasio/httpeex/internal/loc"
	"github.com/notactuallytreyanastasio/httpeex/internal/printer"
)

// Re-exported tree and token types. The leaf packages own the
// definitions; this package is the supported surface.
type (
	Node          = heex.Node
	NodeType      = heex.NodeType
	Attribute     = heex.Attribute
	AttributeType = heex.AttributeType
	ComponentType = heex.ComponentType
	EExType       = heex.EExType
	EExClause     = heex.EExClause
	ClauseType    = heex.ClauseType
	Token         = heex.Token
	TokenType     = heex.TokenType

	// Diagnostic is one failed-parse message with its position resolved
	// to a line and column.
	Diagnostic = loc.DiagnosticMessage
)

const (
	DocumentNode   = heex.DocumentNode
	TextNode       = heex.TextNode
	ElementNode    = heex.ElementNode
	ComponentNode  = heex.ComponentNode
	SlotNode       = heex.SlotNode
	ExpressionNode = heex.ExpressionNode
	EExNode        = heex.EExNode
	EExBlockNode   = heex.EExBlockNode
	CommentNode    = heex.CommentNode

	LocalComponent  = heex.LocalComponent
	RemoteComponent = heex.RemoteComponent

	EExExec    = heex.EExExec
	EExOutput  = heex.EExOutput
	EExComment = heex.EExComment

	DoClause    = heex.DoClause
	ElseClause  = heex.ElseClause
	ArrowClause = heex.ArrowClause
	EndClause   = heex.EndClause

	StaticAttribute  = heex.StaticAttribute
	DynamicAttribute = heex.DynamicAttribute
	SpreadAttribute  = heex.SpreadAttribute
	SpecialAttribute = heex.SpecialAttribute
)

// Tokenize scans a template into its token sequence, terminated by a
// synthetic EOF token. On any scan diagnostic the token list is discarded
// and the aggregate error is returned.
func Tokenize(input string) ([]Token, error) {
	return heex.Tokenize(input)
}

// Parse builds a template into a Document node.
func Parse(input string) (*Node, error) {
	return heex.Parse(input)
}

// RenderHTML serializes the tree back to its HTML-like source form.
func RenderHTML(doc *Node) string {
	return printer.PrintToHTML(doc)
}

// RenderDebug serializes the tree to an indented human-readable dump.
func RenderDebug(doc *Node) string {
	return printer.PrintToDebug(doc)
}

// RenderJSON serializes the tree to its compact JSON form.
func RenderJSON(doc *Node) string {
	return printer.PrintToJSON(doc)
}

// ParseAndRender parses a template and renders it straight back to HTML.
func ParseAndRender(input string) (string, error) {
	doc, err := Parse(input)
	if err != nil {
		return "", err
	}
	return RenderHTML(doc), nil
}

// ParseAndValidate parses a template purely for its diagnostics,
// discarding the tree.
func ParseAndValidate(input string) error {
	_, err := Parse(input)
	return err
}

// Diagnostics unpacks an error returned by Tokenize or Parse into its
// position-resolved diagnostics, one per accumulated message. Builder
// messages record only a byte offset; here their line and column have
// been recovered from the source text. Returns nil for foreign errors.
func Diagnostics(err error) []Diagnostic {
	var pe *handler.ParseError
	if errors.As(err, &pe) {
		return pe.Diagnostics
	}
	return nil
}
