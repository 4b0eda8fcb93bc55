package heex

import (
	"strconv"

	"github.com/notactuallytreyanastasio/httpeex/internal/loc"
	"golang.org/x/net/html/atom"
)

// A NodeType is the type of a Node.
type NodeType uint32

const (
	DocumentNode NodeType = iota
	TextNode
	ElementNode
	ComponentNode
	SlotNode
	ExpressionNode
	EExNode
	EExBlockNode
	CommentNode
)

// String returns the lowercase variant name, which doubles as the "type"
// discriminator in the JSON rendering.
func (t NodeType) String() string {
	switch t {
	case DocumentNode:
		return "document"
	case TextNode:
		return "text"
	case ElementNode:
		return "element"
	case ComponentNode:
		return "component"
	case SlotNode:
		return "slot"
	case ExpressionNode:
		return "expression"
	case EExNode:
		return "eex"
	case EExBlockNode:
		return "eexblock"
	case CommentNode:
		return "comment"
	}
	return "Invalid(" + strconv.Itoa(int(t)) + ")"
}

// ComponentType distinguishes local components (".button") from remote
// ones ("MyApp.Button").
type ComponentType uint32

const (
	LocalComponent ComponentType = iota
	RemoteComponent
)

func (t ComponentType) String() string {
	switch t {
	case LocalComponent:
		return "local"
	case RemoteComponent:
		return "remote"
	}
	return "Invalid(" + strconv.Itoa(int(t)) + ")"
}

// EExType selects among the three EEx leaf forms.
type EExType uint32

const (
	// EExExec is "<% code %>": evaluated for effect, emits nothing.
	EExExec EExType = iota
	// EExOutput is "<%= code %>": emits the value of code.
	EExOutput
	// EExComment is "<%# code %>".
	EExComment
)

func (t EExType) String() string {
	switch t {
	case EExExec:
		return "exec"
	case EExOutput:
		return "output"
	case EExComment:
		return "comment"
	}
	return "Invalid(" + strconv.Itoa(int(t)) + ")"
}

// ClauseType is the kind of an EEx block clause.
type ClauseType uint32

const (
	// DoClause owns the nodes between the block head and the first
	// boundary.
	DoClause ClauseType = iota
	// ElseClause follows a "<% else %>".
	ElseClause
	// ArrowClause is a "case"/"cond"-style clause whose head contains "->".
	ArrowClause
	// EndClause is the terminal "<% end %>"; it never owns children.
	EndClause
)

func (t ClauseType) String() string {
	switch t {
	case DoClause:
		return "do"
	case ElseClause:
		return "else"
	case ArrowClause:
		return "->"
	case EndClause:
		return "end"
	}
	return "Invalid(" + strconv.Itoa(int(t)) + ")"
}

// An EExClause is one arm of an EEx block: the initial do body, an else
// body, a pattern arm, or the terminal end.
type EExClause struct {
	Type       ClauseType
	Expression string
	Children   []*Node
}

// AttributeType is the type of an Attribute.
type AttributeType uint32

const (
	// StaticAttribute is a plain name="value" pair; boolean attributes
	// store the value "true".
	StaticAttribute AttributeType = iota
	// DynamicAttribute is name={expression}.
	DynamicAttribute
	// SpreadAttribute is a bare {expression} in attribute position.
	SpreadAttribute
	// SpecialAttribute is :kind={expression}; Key stores the kind
	// without its ":".
	SpecialAttribute
)

func (t AttributeType) String() string {
	switch t {
	case StaticAttribute:
		return "static"
	case DynamicAttribute:
		return "dynamic"
	case SpreadAttribute:
		return "spread"
	case SpecialAttribute:
		return "special"
	}
	return "Invalid(" + strconv.Itoa(int(t)) + ")"
}

// An Attribute is one entry of a tag's attribute list. Key is empty for
// spread attributes; Val holds the static value or the opaque expression
// code depending on Type.
type Attribute struct {
	Type   AttributeType
	Key    string
	Val    string
	KeyLoc loc.Loc
}

// A Node is one element of the parsed tree, discriminated by Type. The
// meaning of Data depends on the variant: text content, tag name,
// component name (leading "." retained for locals), slot name (no ":"),
// expression or EEx code, block head expression, or comment interior.
//
// Children and Slots are owning slices in source order; nodes carry no
// parent or sibling references and no subtree is ever shared.
type Node struct {
	Type NodeType

	Data     string
	DataAtom atom.Atom

	// Element and component tags.
	Attr        []Attribute
	Children    []*Node
	SelfClosing bool

	// Components.
	ComponentType ComponentType
	Slots         []*Node

	// Slots.
	LetBinding string

	// EEx leaves and blocks.
	EExType   EExType
	BlockType string
	Clauses   []EExClause

	Loc loc.Span
}
