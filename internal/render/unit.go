package render

import "strings"

// Role is the display role of a rendered unit.
type Role string

const (
	RoleTitle       Role = "title"
	RoleHeading     Role = "heading"
	RoleParagraph   Role = "paragraph"
	RoleList        Role = "list"
	RoleLabeledLine Role = "labeled-line"
	RoleSection     Role = "section" // Groups a clause or the parties block
)

// InlineRole is the display role of a fragment.
type InlineRole string

const (
	InlineSpan      InlineRole = "span"
	InlineHeading1  InlineRole = "heading-1"
	InlineHeading4  InlineRole = "heading-4"
	InlineParagraph InlineRole = "paragraph"
	InlineMention   InlineRole = "mention"
)

// Fragment is one styled piece of inline content. A fragment carries either
// Text or Children.
type Fragment struct {
	Role            InlineRole `json:"role"`
	Text            string     `json:"text,omitempty"`
	Bold            bool       `json:"bold,omitempty"`
	Underline       bool       `json:"underline,omitempty"`
	BackgroundColor string     `json:"backgroundColor,omitempty"`
	Children        []Fragment `json:"children,omitempty"`
}

// Unit is a single presentation instruction.
type Unit struct {
	Role     Role         `json:"role"`
	Variant  string       `json:"variant,omitempty"`
	Label    string       `json:"label,omitempty"`
	Content  []Fragment   `json:"content,omitempty"`
	Items    [][]Fragment `json:"items,omitempty"`
	Children []Unit       `json:"children,omitempty"`
}

// PlainText flattens fragments to their text.
func PlainText(frags []Fragment) string {
	var sb strings.Builder
	writePlain(&sb, frags)
	return sb.String()
}

func writePlain(sb *strings.Builder, frags []Fragment) {
	for _, f := range frags {
		if len(f.Children) > 0 {
			writePlain(sb, f.Children)
			continue
		}
		sb.WriteString(f.Text)
	}
}

// PlainText returns the unit's own line: label and content joined by a space.
// Lists and sections have no line of their own.
func (u Unit) PlainText() string {
	text := PlainText(u.Content)
	if u.Label == "" {
		return text
	}
	if text == "" {
		return u.Label
	}
	return u.Label + " " + text
}

// Lines flattens units to display lines in order, descending into sections
// and expanding list items.
func Lines(units []Unit) []string {
	var out []string
	for _, u := range units {
		switch u.Role {
		case RoleSection:
			out = append(out, Lines(u.Children)...)
		case RoleList:
			for _, item := range u.Items {
				out = append(out, PlainText(item))
			}
		default:
			out = append(out, u.PlainText())
		}
	}
	return out
}
