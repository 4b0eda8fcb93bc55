package heex

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/notactuallytreyanastasio/httpeex/internal/handler"
	"github.com/notactuallytreyanastasio/httpeex/internal/loc"
	"golang.org/x/net/html/atom"
)

// A TokenType is the type of a Token.
type TokenType uint32

const (
	// TextToken is a run of ordinary characters between markup.
	TextToken TokenType = iota
	// TagOpenToken is the "<div" in "<div class="a">".
	TagOpenToken
	// TagCloseToken is a "</div>" for a plain HTML element.
	TagCloseToken
	// TagSelfCloseToken is the "/>" terminating an open tag.
	TagSelfCloseToken
	// TagEndToken is the ">" terminating an open tag.
	TagEndToken
	// ComponentOpenToken is "<.button" or "<MyApp.Button".
	ComponentOpenToken
	// ComponentCloseToken is "</.button>" or "</MyApp.Button>".
	ComponentCloseToken
	// SlotOpenToken is "<:header".
	SlotOpenToken
	// SlotCloseToken is "</:header>".
	SlotCloseToken
	// AttrNameToken is an attribute name, with its ":" retained for
	// special attributes.
	AttrNameToken
	// AttrEqualsToken is the "=" between an attribute name and value.
	AttrEqualsToken
	// AttrValueToken is a quoted or unquoted attribute value.
	AttrValueToken
	// ExprOpenToken, ExprContentToken and ExprCloseToken are the "{",
	// body and "}" of a curly-brace interpolation.
	ExprOpenToken
	ExprContentToken
	ExprCloseToken
	// EExOpenToken, EExOutputToken and EExCommentToken open "<%",
	// "<%=" and "<%#" blocks respectively.
	EExOpenToken
	EExOutputToken
	EExCommentToken
	// EExContentToken is the trimmed body between an EEx opener and "%>".
	EExContentToken
	// EExCloseToken is "%>".
	EExCloseToken
	// CommentOpenToken, CommentContentToken and CommentCloseToken are the
	// "<!--", exact interior and "-->" of an HTML comment.
	CommentOpenToken
	CommentContentToken
	CommentCloseToken
	// EOFToken is the synthetic token terminating every stream.
	EOFToken
)

// String returns a string representation of the TokenType.
func (t TokenType) String() string {
	switch t {
	case TextToken:
		return "Text"
	case TagOpenToken:
		return "TagOpen"
	case TagCloseToken:
		return "TagClose"
	case TagSelfCloseToken:
		return "TagSelfClose"
	case TagEndToken:
		return "TagEnd"
	case ComponentOpenToken:
		return "ComponentOpen"
	case ComponentCloseToken:
		return "ComponentClose"
	case SlotOpenToken:
		return "SlotOpen"
	case SlotCloseToken:
		return "SlotClose"
	case AttrNameToken:
		return "AttrName"
	case AttrEqualsToken:
		return "AttrEquals"
	case AttrValueToken:
		return "AttrValue"
	case ExprOpenToken:
		return "ExprOpen"
	case ExprContentToken:
		return "ExprContent"
	case ExprCloseToken:
		return "ExprClose"
	case EExOpenToken:
		return "EExOpen"
	case EExOutputToken:
		return "EExOutput"
	case EExCommentToken:
		return "EExComment"
	case EExContentToken:
		return "EExContent"
	case EExCloseToken:
		return "EExClose"
	case CommentOpenToken:
		return "CommentOpen"
	case CommentContentToken:
		return "CommentContent"
	case CommentCloseToken:
		return "CommentClose"
	case EOFToken:
		return "EOF"
	}
	return "Invalid(" + strconv.Itoa(int(t)) + ")"
}

// A Token consists of a TokenType and some Data (tag name for tag tokens,
// content for text and bodies, the literal delimiter otherwise). For tag
// tokens, DataAtom is the atom for Data, or zero if Data is not a known
// HTML tag name.
type Token struct {
	Type     TokenType
	Data     string
	DataAtom atom.Atom
	Loc      loc.Span
}

// String returns a source-shaped representation of the Token.
func (t Token) String() string {
	switch t.Type {
	case TagOpenToken:
		return "<" + t.Data
	case TagCloseToken, ComponentCloseToken:
		return "</" + t.Data + ">"
	case ComponentOpenToken:
		return "<" + t.Data
	case SlotOpenToken:
		return "<:" + t.Data
	case SlotCloseToken:
		return "</:" + t.Data + ">"
	case AttrNameToken, AttrValueToken, TextToken, ExprContentToken, EExContentToken, CommentContentToken:
		return t.Data
	case TagSelfCloseToken:
		return "/>"
	case TagEndToken:
		return ">"
	case AttrEqualsToken:
		return "="
	case ExprOpenToken:
		return "{"
	case ExprCloseToken:
		return "}"
	case EExOpenToken:
		return "<%"
	case EExOutputToken:
		return "<%="
	case EExCommentToken:
		return "<%#"
	case EExCloseToken:
		return "%>"
	case CommentOpenToken:
		return "<!--"
	case CommentCloseToken:
		return "-->"
	case EOFToken:
		return ""
	}
	return "Invalid(" + strconv.Itoa(int(t.Type)) + ")"
}

// entities is the fixed escape set decoded inside text runs. Anything
// beyond these five passes through verbatim.
var entities = []struct {
	name    string
	decoded byte
}{
	{"&amp;", '&'},
	{"&lt;", '<'},
	{"&gt;", '>'},
	{"&quot;", '"'},
	{"&#39;", '\''},
}

// A Scanner turns a template string into a stream of Tokens in a single
// left-to-right pass. The cursor never backtracks; every iteration of the
// main loop consumes at least one byte.
type Scanner struct {
	input   string
	pos     int
	line    int
	col     int
	tokens  []Token
	handler *handler.Handler
}

// NewScanner returns a Scanner over input, reporting diagnostics to h.
func NewScanner(input string, h *handler.Handler) *Scanner {
	return &Scanner{
		input:   input,
		line:    1,
		col:     1,
		tokens:  make([]Token, 0, 16),
		handler: h,
	}
}

// Tokenize scans a template into its token sequence, terminated by a
// synthetic EOF token. If any diagnostics accumulate, the token list is
// discarded and the single aggregate error is returned instead.
func Tokenize(input string) ([]Token, error) {
	h := handler.NewHandler(input)
	s := NewScanner(input, h)
	tokens := s.Scan()
	if h.HasErrors() {
		return nil, h.Aggregate()
	}
	return tokens, nil
}

// Scan runs the scanner over the whole input and returns the token list.
// Diagnostics are reported through the scanner's handler; the returned
// list is only meaningful when the handler holds no errors.
func (s *Scanner) Scan() []Token {
	for !s.eof() {
		switch {
		case s.hasPrefix("<%"):
			s.scanEEx()
		case s.hasPrefix("<!--"):
			s.scanHTMLComment()
		case s.peek() == '<':
			s.scanTag()
		case s.peek() == '{':
			s.scanExpression()
		default:
			s.scanText()
		}
	}
	s.emit(EOFToken, "", s.here())
	return s.tokens
}

func (s *Scanner) eof() bool {
	return s.pos >= len(s.input)
}

func (s *Scanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.input[s.pos]
}

func (s *Scanner) peekAt(n int) byte {
	if s.pos+n >= len(s.input) {
		return 0
	}
	return s.input[s.pos+n]
}

func (s *Scanner) hasPrefix(p string) bool {
	return strings.HasPrefix(s.input[s.pos:], p)
}

// next consumes and returns one byte, keeping the line and column
// counters current. Pre-condition: !s.eof().
func (s *Scanner) next() byte {
	c := s.input[s.pos]
	s.pos++
	if c == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return c
}

// skip consumes n bytes.
func (s *Scanner) skip(n int) {
	for i := 0; i < n && !s.eof(); i++ {
		s.next()
	}
}

func (s *Scanner) here() loc.Loc {
	return loc.Loc{Line: s.line, Column: s.col, Offset: s.pos}
}

func (s *Scanner) emit(tt TokenType, data string, start loc.Loc) {
	t := Token{
		Type: tt,
		Data: data,
		Loc:  loc.Span{Start: start, End: s.here()},
	}
	switch tt {
	case TagOpenToken, TagCloseToken:
		t.DataAtom = atom.Lookup([]byte(data))
	}
	s.tokens = append(s.tokens, t)
}

func (s *Scanner) errorf(code loc.DiagnosticCode, at loc.Loc, format string, a ...interface{}) {
	s.handler.AppendError(&loc.ErrorWithLoc{
		Code: code,
		Text: fmt.Sprintf(format, a...),
		Loc:  at,
	})
}

func (s *Scanner) skipWhiteSpace() {
	for !s.eof() && unicode.IsSpace(rune(s.peek())) {
		s.next()
	}
}

// scanText consumes a run of ordinary characters up to the next "<", "{"
// or end of input, decoding the five-entity escape set as it goes. Empty
// runs emit nothing.
func (s *Scanner) scanText() {
	start := s.here()
	var b strings.Builder
text:
	for !s.eof() {
		c := s.peek()
		if c == '<' || c == '{' {
			break
		}
		if c == '&' {
			for _, e := range entities {
				if s.hasPrefix(e.name) {
					s.skip(len(e.name))
					b.WriteByte(e.decoded)
					continue text
				}
			}
		}
		b.WriteByte(s.next())
	}
	if b.Len() > 0 {
		s.emit(TextToken, b.String(), start)
	}
}

// scanEEx handles "<%", "<%=" and "<%#" blocks. The body runs to the next
// "%>" with no nesting and is trimmed of surrounding whitespace.
func (s *Scanner) scanEEx() {
	start := s.here()
	s.skip(2) // "<%"
	tt := EExOpenToken
	switch s.peek() {
	case '=':
		s.next()
		tt = EExOutputToken
	case '#':
		s.next()
		tt = EExCommentToken
	}
	s.emit(tt, "", start)

	idx := strings.Index(s.input[s.pos:], "%>")
	if idx < 0 {
		s.errorf(loc.ERROR_UNTERMINATED_EEX, start, "Unterminated EEx expression")
		s.skip(len(s.input) - s.pos)
		return
	}
	bodyStart := s.here()
	body := s.input[s.pos : s.pos+idx]
	s.skip(idx)
	if trimmed := strings.TrimSpace(body); trimmed != "" {
		s.emit(EExContentToken, trimmed, bodyStart)
	}
	closeStart := s.here()
	s.skip(2) // "%>"
	s.emit(EExCloseToken, "%>", closeStart)
}

// scanHTMLComment handles "<!-- ... -->". The interior is preserved
// exactly, with no trimming.
func (s *Scanner) scanHTMLComment() {
	start := s.here()
	s.skip(4) // "<!--"
	s.emit(CommentOpenToken, "<!--", start)

	idx := strings.Index(s.input[s.pos:], "-->")
	if idx < 0 {
		s.errorf(loc.ERROR_UNTERMINATED_COMMENT, start, "Unterminated comment")
		s.skip(len(s.input) - s.pos)
		return
	}
	bodyStart := s.here()
	body := s.input[s.pos : s.pos+idx]
	s.skip(idx)
	if body != "" {
		s.emit(CommentContentToken, body, bodyStart)
	}
	closeStart := s.here()
	s.skip(3) // "-->"
	s.emit(CommentCloseToken, "-->", closeStart)
}

// scanTag handles everything beginning with "<": opening and closing
// forms of HTML tags, components and slots. A single character of
// lookahead after the "<" (or "</") selects the variant.
func (s *Scanner) scanTag() {
	start := s.here()
	s.next() // "<"

	switch s.peek() {
	case '/':
		s.next()
		s.scanClosingTag(start)
	case ':':
		s.next()
		name := s.readName()
		if name == "" {
			s.errorf(loc.ERROR_EXPECTED_TAG_NAME, start, "Expected tag name after <")
			return
		}
		s.emit(SlotOpenToken, name, start)
		s.scanTagBody(start)
	case '.':
		s.next()
		name := s.readName()
		if name == "" {
			s.errorf(loc.ERROR_EXPECTED_TAG_NAME, start, "Expected tag name after <")
			return
		}
		s.emit(ComponentOpenToken, "."+name, start)
		s.scanTagBody(start)
	default:
		name := s.readName()
		if name == "" {
			s.errorf(loc.ERROR_EXPECTED_TAG_NAME, start, "Expected tag name after <")
			return
		}
		if isUpper(name[0]) {
			s.emit(ComponentOpenToken, name, start)
		} else {
			s.emit(TagOpenToken, name, start)
		}
		s.scanTagBody(start)
	}
}

// scanClosingTag handles "</...>" after the "</" has been consumed.
func (s *Scanner) scanClosingTag(start loc.Loc) {
	switch s.peek() {
	case ':':
		s.next()
		name := s.readName()
		if name == "" {
			s.errorf(loc.ERROR_EXPECTED_TAG_NAME, start, "Expected tag name after <")
		}
		s.skipWhiteSpace()
		s.consumeCloseAngle(start)
		s.emit(SlotCloseToken, name, start)
	case '.':
		s.next()
		name := s.readName()
		if name == "" {
			s.errorf(loc.ERROR_EXPECTED_TAG_NAME, start, "Expected tag name after <")
		}
		s.skipWhiteSpace()
		s.consumeCloseAngle(start)
		s.emit(ComponentCloseToken, "."+name, start)
	default:
		name := s.readName()
		if name == "" {
			s.errorf(loc.ERROR_EXPECTED_TAG_NAME, start, "Expected tag name after <")
			return
		}
		s.skipWhiteSpace()
		s.consumeCloseAngle(start)
		if isUpper(name[0]) {
			s.emit(ComponentCloseToken, name, start)
		} else {
			s.emit(TagCloseToken, name, start)
		}
	}
}

// consumeCloseAngle reads through the ">" of a closing tag.
func (s *Scanner) consumeCloseAngle(start loc.Loc) {
	for {
		if s.eof() {
			s.errorf(loc.ERROR_UNTERMINATED_TAG, start, "Unterminated tag")
			return
		}
		if s.next() == '>' {
			return
		}
	}
}

// scanTagBody scans the attribute list of an open tag through its ">" or
// "/>" terminator.
func (s *Scanner) scanTagBody(start loc.Loc) {
	for {
		s.scanAttributes()
		s.skipWhiteSpace()
		if s.eof() {
			s.errorf(loc.ERROR_UNTERMINATED_TAG, start, "Unterminated tag")
			return
		}
		if s.hasPrefix("/>") {
			st := s.here()
			s.skip(2)
			s.emit(TagSelfCloseToken, "/>", st)
			return
		}
		if s.peek() == '>' {
			st := s.here()
			s.next()
			s.emit(TagEndToken, ">", st)
			return
		}
		// A stray "/" not followed by ">"; skip it and resume the
		// attribute list.
		s.next()
	}
}

// scanAttributes emits the attribute tokens of one tag: names, "=",
// values, and inline spread expressions. It returns with the cursor on
// ">", "/" or at end of input.
func (s *Scanner) scanAttributes() {
	for {
		s.skipWhiteSpace()
		if s.eof() {
			return
		}
		switch c := s.peek(); {
		case c == '>' || c == '/':
			return
		case c == '{':
			// Spread attribute: the expression tokens appear inline in
			// the stream and the tree builder recognizes the shape.
			s.scanExpression()
		case c == ':':
			st := s.here()
			s.next()
			name := s.readName()
			if name == "" {
				s.errorf(loc.ERROR_EXPECTED_ATTRIBUTE_NAME, st, "Expected attribute name")
				continue
			}
			s.emit(AttrNameToken, ":"+name, st)
			s.scanAttrEquals()
		default:
			st := s.here()
			name := s.readName()
			if name == "" {
				s.errorf(loc.ERROR_EXPECTED_ATTRIBUTE_NAME, st, "Expected attribute name")
				s.next()
				continue
			}
			s.emit(AttrNameToken, name, st)
			s.scanAttrEquals()
		}
	}
}

// scanAttrEquals emits "=" and the following value when the attribute has
// one; a bare name is left as a boolean attribute with no value tokens.
func (s *Scanner) scanAttrEquals() {
	s.skipWhiteSpace()
	if s.peek() != '=' {
		return
	}
	st := s.here()
	s.next()
	s.emit(AttrEqualsToken, "=", st)
	s.scanAttrValue()
}

// scanAttrValue handles the three value forms: an inline expression, a
// quoted string (copied verbatim, no escape processing), or an unquoted
// run up to whitespace, ">" or "/".
func (s *Scanner) scanAttrValue() {
	s.skipWhiteSpace()
	if s.eof() {
		return
	}
	c := s.peek()
	if c == '{' {
		s.scanExpression()
		return
	}
	if c == '"' || c == '\'' {
		start := s.here()
		quote := s.next()
		var b strings.Builder
		for {
			if s.eof() {
				s.errorf(loc.ERROR_UNTERMINATED_STRING, start, "Unterminated string")
				return
			}
			d := s.next()
			if d == quote {
				break
			}
			b.WriteByte(d)
		}
		s.emit(AttrValueToken, b.String(), start)
		return
	}
	start := s.here()
	var b strings.Builder
	for !s.eof() {
		d := s.peek()
		if d == '>' || d == '/' || unicode.IsSpace(rune(d)) {
			break
		}
		b.WriteByte(s.next())
	}
	if b.Len() > 0 {
		s.emit(AttrValueToken, b.String(), start)
	}
}

// scanExpression handles a "{...}" interpolation. The body is opaque: a
// single brace-depth counter plus a string-skip mode keeps embedded code
// from terminating the expression early, and nothing else about the body
// is interpreted.
func (s *Scanner) scanExpression() {
	start := s.here()
	s.next() // "{"
	s.emit(ExprOpenToken, "{", start)

	bodyStart := s.here()
	var b strings.Builder
	depth := 1
	for {
		if s.eof() {
			s.errorf(loc.ERROR_UNTERMINATED_EXPRESSION, start, "Unterminated expression")
			if b.Len() > 0 {
				s.emit(ExprContentToken, b.String(), bodyStart)
			}
			return
		}
		c := s.peek()
		if c == '}' {
			depth--
			if depth == 0 {
				break
			}
			b.WriteByte(s.next())
			continue
		}
		if c == '{' {
			depth++
			b.WriteByte(s.next())
			continue
		}
		if c == '"' || c == '\'' {
			s.copyString(&b)
			continue
		}
		b.WriteByte(s.next())
	}
	s.emit(ExprContentToken, b.String(), bodyStart)
	closeStart := s.here()
	s.next() // "}"
	s.emit(ExprCloseToken, "}", closeStart)
}

// copyString copies a quoted string inside an expression body through its
// closing quote, honoring a single-character backslash escape. Braces
// inside the string do not affect the expression's depth counter.
func (s *Scanner) copyString(b *strings.Builder) {
	quote := s.next()
	b.WriteByte(quote)
	for !s.eof() {
		c := s.next()
		b.WriteByte(c)
		if c == '\\' && !s.eof() {
			b.WriteByte(s.next())
			continue
		}
		if c == quote {
			return
		}
	}
}

// readName reads a tag, component, slot or attribute name: an ASCII
// letter or underscore, then letters, digits, "_", "-" and ".".
func (s *Scanner) readName() string {
	c := s.peek()
	if !isNameStart(c) {
		return ""
	}
	start := s.pos
	for !s.eof() && isNameChar(s.peek()) {
		s.next()
	}
	return s.input[start:s.pos]
}

func isNameStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || ('0' <= c && c <= '9') || c == '-' || c == '.'
}

func isUpper(c byte) bool {
	return 'A' <= c && c <= 'Z'
}
