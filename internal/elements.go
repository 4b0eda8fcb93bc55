package heex

import (
	"strings"

	"golang.org/x/net/html/atom"
)

// voidAtoms covers the void set for tags the atom table resolves; this
// is the fast path taken whenever the scanner attached an atom.
var voidAtoms = map[atom.Atom]bool{
	atom.Area:   true,
	atom.Base:   true,
	atom.Br:     true,
	atom.Col:    true,
	atom.Embed:  true,
	atom.Hr:     true,
	atom.Img:    true,
	atom.Input:  true,
	atom.Link:   true,
	atom.Meta:   true,
	atom.Param:  true,
	atom.Source: true,
	atom.Track:  true,
	atom.Wbr:    true,
}

// voidElements backs the slow path for spellings the atom table does not
// know, e.g. mixed-case tags; the void check is case-insensitive while
// tag comparisons everywhere else are exact.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoid reports whether the element's tag is a void element, comparing
// by atom when the scanner resolved one.
func (n *Node) IsVoid() bool {
	if n.DataAtom != 0 {
		return voidAtoms[n.DataAtom]
	}
	return IsVoidElement(n.Data)
}

// IsVoidElement reports whether tag names a void element.
func IsVoidElement(tag string) bool {
	if a := atom.Lookup([]byte(tag)); a != 0 {
		return voidAtoms[a]
	}
	return voidElements[strings.ToLower(tag)]
}
