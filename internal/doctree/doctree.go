package doctree

// Kind identifies what a Node is. The set is closed: anything the decoder
// does not recognize becomes KindUnknown and renders as nothing.
type Kind int

const (
	KindText Kind = iota // Leaf text run (no type on the wire)
	KindHeading1
	KindHeading4
	KindParagraph
	KindList
	KindListItem
	KindClause
	KindBlock
	KindMention
	KindUnknown
)

var kindNames = map[Kind]string{
	KindText:      "",
	KindHeading1:  "h1",
	KindHeading4:  "h4",
	KindParagraph: "p",
	KindList:      "ul",
	KindListItem:  "li",
	KindClause:    "clause",
	KindBlock:     "block",
	KindMention:   "mention",
}

// kindAliases maps every accepted wire name to its Kind.
var kindAliases = map[string]Kind{
	"h1":            KindHeading1,
	"heading-1":     KindHeading1,
	"h4":            KindHeading4,
	"heading-4":     KindHeading4,
	"p":             KindParagraph,
	"paragraph":     KindParagraph,
	"ul":            KindList,
	"list":          KindList,
	"li":            KindListItem,
	"list-item":     KindListItem,
	"clause":        KindClause,
	"block":         KindBlock,
	"generic-block": KindBlock,
	"mention":       KindMention,
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseKind maps a wire type name to a Kind. The empty string is a text run.
func ParseKind(s string) Kind {
	if s == "" {
		return KindText
	}
	if k, ok := kindAliases[s]; ok {
		return k
	}
	return KindUnknown
}

// Document is the ordered list of top-level blocks.
type Document []*Node

// Node is either an inline unit or a block. Text is authoritative only when
// the node has no children.
type Node struct {
	Type    Kind
	RawType string // Wire type as received, kept for unknown kinds

	Text    string
	HasText bool // Text was present on the wire
	Bare    bool // Decoded from a bare string shorthand

	Bold      bool
	Underline bool
	Color     string // Mention background

	Title    string
	Children []*Node // May contain nil entries
}

// IsTextRun reports whether n is a node object with a text field. Bare
// strings render as text but take no part in comparisons or splitting.
func (n *Node) IsTextRun() bool {
	return n != nil && n.HasText && !n.Bare
}

// FirstChild returns the first child or nil.
func (n *Node) FirstChild() *Node {
	if n == nil || len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}

// FirstChildOfType returns the first direct child of kind k or nil.
func (n *Node) FirstChildOfType(k Kind) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c != nil && c.Type == k {
			return c
		}
	}
	return nil
}

// WithText returns a shallow copy of n carrying text instead of n's text.
func (n *Node) WithText(text string) *Node {
	c := *n
	c.Text = text
	c.HasText = true
	return &c
}

// Text builds a leaf text run.
func Text(s string) *Node {
	return &Node{Type: KindText, Text: s, HasText: true}
}

// Styled builds a leaf text run with formatting.
func Styled(s string, bold, underline bool) *Node {
	return &Node{Type: KindText, Text: s, HasText: true, Bold: bold, Underline: underline}
}

// Element builds a container node of kind k.
func Element(k Kind, children ...*Node) *Node {
	return &Node{Type: k, RawType: k.String(), Children: children}
}

// Titled builds a titled container node (clause or generic block).
func Titled(k Kind, title string, children ...*Node) *Node {
	return &Node{Type: k, RawType: k.String(), Title: title, Children: children}
}

// Mention builds a mention token.
func Mention(color string, children ...*Node) *Node {
	return &Node{Type: KindMention, RawType: "mention", Color: color, Children: children}
}
