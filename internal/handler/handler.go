package handler

import (
	"errors"
	"strings"

	"github.com/notactuallytreyanastasio/httpeex/internal/loc"
	"github.com/tdewolff/parse/v2"
)

// Handler accumulates diagnostics for one parse of one template. Both the
// scanner and the tree builder append to the same handler; at the end of
// the pipeline the driver either returns the result (no errors) or the
// single aggregate error carrying every message.
type Handler struct {
	sourcetext string
	errors     []error
}

func NewHandler(sourcetext string) *Handler {
	return &Handler{
		sourcetext: sourcetext,
		errors:     make([]error, 0),
	}
}

func (h *Handler) HasErrors() bool {
	return len(h.errors) > 0
}

func (h *Handler) AppendError(err error) {
	h.errors = append(h.errors, err)
}

func (h *Handler) Errors() []error {
	return h.errors
}

// Aggregate collapses the accumulated diagnostics into a single error
// whose message is every diagnostic joined by newlines, or nil when no
// diagnostics accumulated. The error also carries the position-resolved
// form of each diagnostic.
func (h *Handler) Aggregate() error {
	if len(h.errors) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(h.errors))
	for _, err := range h.errors {
		msgs = append(msgs, err.Error())
	}
	return &ParseError{Messages: msgs, Diagnostics: h.Diagnostics()}
}

// Diagnostics resolves every accumulated error to a position-annotated
// message. Builder errors carry only a byte offset; their line and column
// are recovered from the source text here.
func (h *Handler) Diagnostics() []loc.DiagnosticMessage {
	msgs := make([]loc.DiagnosticMessage, 0, len(h.errors))
	for _, err := range h.errors {
		msgs = append(msgs, h.toMessage(err))
	}
	return msgs
}

func (h *Handler) toMessage(err error) loc.DiagnosticMessage {
	var located *loc.ErrorWithLoc
	var offset *loc.ErrorWithOffset
	switch {
	case errors.As(err, &located):
		return loc.DiagnosticMessage{
			Code:     int(located.Code),
			Severity: int(loc.ErrorType),
			Text:     located.Text,
			Line:     located.Loc.Line,
			Column:   located.Loc.Column,
		}
	case errors.As(err, &offset):
		line, col, _ := parse.Position(strings.NewReader(h.sourcetext), offset.Offset)
		return loc.DiagnosticMessage{
			Code:     int(offset.Code),
			Severity: int(loc.ErrorType),
			Text:     offset.Text,
			Line:     line,
			Column:   col,
		}
	default:
		return loc.DiagnosticMessage{
			Severity: int(loc.ErrorType),
			Text:     err.Error(),
		}
	}
}

// ParseError is the aggregate failure returned by Tokenize and Parse.
// Messages keep their "line:column:" / "offset:" prefixes; Diagnostics
// carry the same errors with every position resolved to line and column.
type ParseError struct {
	Messages    []string
	Diagnostics []loc.DiagnosticMessage
}

func (e *ParseError) Error() string {
	return strings.Join(e.Messages, "\n")
}
