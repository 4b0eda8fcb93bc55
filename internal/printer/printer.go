package printer

import (
	"fmt"
	"strings"
)

// printer accumulates rendered output. All three renderers are pure tree
// walks over an immutable Document; the printer is the only mutable state
// they carry.
type printer struct {
	output []byte
}

func (p *printer) print(text string) {
	p.output = append(p.output, text...)
}

func (p *printer) printf(format string, a ...interface{}) {
	p.print(fmt.Sprintf(format, a...))
}

func (p *printer) String() string {
	return string(p.output)
}

// textEscaper re-escapes "&", "<" and ">" in text runs. Quotes that the
// scanner decoded from "&quot;" and "&#39;" are written back literally.
var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// attrEscaper additionally escapes the double quote that delimits static
// attribute values.
var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}
