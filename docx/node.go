package docx

import (
	"unicode"
	"unicode/utf8"

	"github.com/beevik/etree"

	"docustream.dev/docustream/model"
)

// NodeKind discriminates the leaf variants of the content tree.
type NodeKind uint8

const (
	TextRun NodeKind = iota + 1
	ImageRef
)

func (k NodeKind) String() string {
	switch k {
	case TextRun:
		return "text"
	case ImageRef:
		return "image"
	default:
		return "unknown"
	}
}

// Node is a content leaf owned by a Document.
//
// Kind and Scope are explicit; consumers never infer them from position.
// Paragraph is the zero-based index of the enclosing w:p within its part.
type Node struct {
	Kind      NodeKind
	Scope     model.Scope
	Part      string
	Paragraph int

	el    *etree.Element // w:t for TextRun, wp:docPr for ImageRef
	part  *Part
	label string
	media string
}

// Text returns the literal text of a TextRun.
func (n *Node) Text() string {
	if n.Kind != TextRun {
		return ""
	}
	return n.el.Text()
}

// SetText replaces the literal text of a TextRun.
func (n *Node) SetText(s string) {
	if n.Kind != TextRun || n.el.Text() == s {
		return
	}
	n.el.SetText(s)
	if needsPreserve(s) && n.el.SelectAttr("xml:space") == nil {
		n.el.CreateAttr("xml:space", "preserve")
	}
	n.part.dirty = true
}

func needsPreserve(s string) bool {
	if s == "" {
		return false
	}
	head, _ := utf8.DecodeRuneInString(s)
	tail, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsSpace(head) || unicode.IsSpace(tail)
}

// Label returns the descriptive label of an ImageRef.
func (n *Node) Label() string { return n.label }

// Media returns the package entry holding the image bytes of an ImageRef.
func (n *Node) Media() string { return n.media }

// Content returns the current image bytes of an ImageRef.
func (n *Node) Content() ([]byte, error) {
	if n.Kind != ImageRef {
		return nil, nil
	}
	return n.part.doc.entry(n.media)
}

// SetContent replaces the image bytes of an ImageRef. The relationship,
// extent and position metadata are left untouched. b is retained.
//
// Pictures that share one media entry share its bytes; the last call wins
// for all of them.
func (n *Node) SetContent(b []byte) {
	if n.Kind != ImageRef {
		return
	}
	n.part.doc.replaced[n.media] = b
}
