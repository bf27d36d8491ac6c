// Package extrafields implements the schema-free content field trees
// attached to trips and content pages. A tree is a list of typed
// nodes; repeater nodes hold rows of child nodes, one level deep.
package extrafields

import "fmt"

// FieldType identifies the value slot a node carries.
type FieldType string

const (
	TypeText     FieldType = "TEXT"
	TypeLongText FieldType = "LONG_TEXT"
	TypeImage    FieldType = "IMAGE"
	TypeRepeater FieldType = "REPEATER"
	TypeLink     FieldType = "LINK"
)

// Valid reports whether t is a known field type.
func (t FieldType) Valid() bool {
	switch t {
	case TypeText, TypeLongText, TypeImage, TypeRepeater, TypeLink:
		return true
	}
	return false
}

// PendingImageValue marks an IMAGE node whose file arrives in a
// separate multipart part of the same request. The marker is replaced
// with the stored object key once the upload lands.
const PendingImageValue = "new_file"

// Node is one field in the tree. Exactly one value slot should match
// the node's type; the others stay nil. PendingFile is a transient
// client-side handle and must never reach persistence.
type Node struct {
	Key   string    `json:"key"`
	Label string    `json:"label"`
	Type  FieldType `json:"type"`

	TextValue          *string `json:"textValue,omitempty"`
	LongTextValue      *string `json:"longTextValue,omitempty"`
	ImageValue         *string `json:"imageValue,omitempty"`
	LinkValue          *string `json:"linkValue,omitempty"`
	VisiblePublicLabel *string `json:"visiblePublicLabel,omitempty"`

	// Repeater rows, each row an independent list of child nodes.
	Rows [][]Node `json:"rows,omitempty"`

	PendingFile string `json:"_file,omitempty"`
}

// NewNode builds an empty node of the given type with a
// type-appropriate empty value slot.
func NewNode(t FieldType) Node {
	n := Node{Type: t}
	empty := ""
	switch t {
	case TypeText:
		n.TextValue = &empty
	case TypeLongText:
		n.LongTextValue = &empty
	case TypeLink:
		n.LinkValue = &empty
	case TypeRepeater:
		n.Rows = [][]Node{}
	}
	return n
}

// ChangeType converts a node to a new type. The conversion is lossy:
// every value slot not matching the new type is cleared, including a
// pending image file.
func ChangeType(n Node, next FieldType) Node {
	out := Node{Key: n.Key, Label: n.Label, Type: next, VisiblePublicLabel: n.VisiblePublicLabel}
	switch next {
	case TypeText:
		out.TextValue = orEmpty(n.TextValue)
	case TypeLongText:
		out.LongTextValue = orEmpty(n.LongTextValue)
	case TypeLink:
		out.LinkValue = orEmpty(n.LinkValue)
	case TypeImage:
		out.ImageValue = n.ImageValue
	case TypeRepeater:
		out.Rows = n.Rows
		if out.Rows == nil {
			out.Rows = [][]Node{}
		}
	}
	return out
}

func orEmpty(s *string) *string {
	if s != nil {
		return s
	}
	empty := ""
	return &empty
}

// Validate checks a submitted tree. Repeater rows may only hold leaf
// nodes; the editor enforces the single nesting level but the payload
// itself does not, so deeper trees are rejected here.
func Validate(nodes []Node) error {
	return validateNodes(nodes, "extraFields", 0)
}

func validateNodes(nodes []Node, path string, depth int) error {
	for i, n := range nodes {
		p := fmt.Sprintf("%s[%d]", path, i)
		if !n.Type.Valid() {
			return fmt.Errorf("%s: unknown field type %q", p, n.Type)
		}
		if n.Type == TypeRepeater {
			if depth > 0 {
				return fmt.Errorf("%s: repeater fields cannot be nested", p)
			}
			for j, row := range n.Rows {
				if err := validateNodes(row, fmt.Sprintf("%s.rows[%d]", p, j), depth+1); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
