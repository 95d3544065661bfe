// Package engine applies placeholder substitutions to a parsed document.
//
// Text placeholders have the form {{key}} with optional whitespace inside the
// braces and are matched per text leaf: a placeholder split across two runs is
// not detected. Image slots are pictures whose description equals exactly
// {{key}}; their bytes are replaced with an attachment stream.
package engine

import (
	"bytes"
	"regexp"
	"strconv"

	"docustream.dev/docustream/docx"
	"docustream.dev/docustream/model"
)

// Document is the content tree the engine mutates.
type Document interface {
	Nodes() []*docx.Node
}

// Streams resolves attachment stream indices to bytes.
type Streams interface {
	Get(i int) ([]byte, bool)
}

// Values returns the substitutions for a scope, in collection order.
type Values interface {
	Scope(s model.Scope) model.Values
}

// Stats counts what an Apply call changed.
type Stats struct {
	TextNodes  int
	ImageNodes int
}

// Apply substitutes values into every node of doc, headers before the body.
func Apply(doc Document, values Values, streams Streams) Stats {
	rules := map[model.Scope]*scopeRules{
		model.ScopeHeader: compile(values.Scope(model.ScopeHeader)),
		model.ScopeBody:   compile(values.Scope(model.ScopeBody)),
	}

	var st Stats
	for _, n := range doc.Nodes() {
		r := rules[n.Scope]
		if r == nil {
			continue
		}
		switch n.Kind {
		case docx.TextRun:
			if r.applyText(n) {
				st.TextNodes++
			}
		case docx.ImageRef:
			if r.applyImage(n, streams) {
				st.ImageNodes++
			}
		}
	}
	return st
}

type textRule struct {
	pattern *regexp.Regexp
	value   string
}

type imageRule struct {
	label string
	value string
}

type scopeRules struct {
	text   []textRule
	images []imageRule
}

// Pattern returns the text placeholder pattern for key. Metacharacters in key
// match literally. Padding inside the braces may be any Unicode space,
// including the no-break spaces Word inserts.
func Pattern(key string) *regexp.Regexp {
	return regexp.MustCompile(`\{\{[\s\p{Z}]*` + regexp.QuoteMeta(key) + `[\s\p{Z}]*\}\}`)
}

// Label returns the exact image description that selects key.
func Label(key string) string { return "{{" + key + "}}" }

func compile(vs model.Values) *scopeRules {
	r := &scopeRules{}
	for _, v := range vs {
		switch v.Kind {
		case model.TextValue:
			r.text = append(r.text, textRule{pattern: Pattern(v.Key), value: v.Value})
		case model.ImageValue:
			r.images = append(r.images, imageRule{label: Label(v.Key), value: v.Value})
		}
	}
	return r
}

// applyText runs every rule in order over the node's text. Each rule sees the
// output of the previous ones; replacement text is inserted verbatim.
func (r *scopeRules) applyText(n *docx.Node) bool {
	if len(r.text) == 0 {
		return false
	}
	orig := n.Text()
	s := orig
	for _, rule := range r.text {
		s = rule.pattern.ReplaceAllLiteralString(s, rule.value)
	}
	if s == orig {
		return false
	}
	n.SetText(s)
	return true
}

// applyImage replaces the node's bytes with the last matching rule whose value
// resolves to a stream. Unresolvable values are skipped.
func (r *scopeRules) applyImage(n *docx.Node, streams Streams) bool {
	var (
		src   []byte
		found bool
	)
	label := n.Label()
	for _, rule := range r.images {
		if rule.label != label {
			continue
		}
		b, ok := resolve(rule.value, streams)
		if !ok {
			continue
		}
		src, found = b, true
	}
	if !found {
		return false
	}
	n.SetContent(bytes.Clone(src))
	return true
}

func resolve(value string, streams Streams) ([]byte, bool) {
	if streams == nil {
		return nil, false
	}
	i, err := strconv.Atoi(value)
	if err != nil || i < 0 {
		return nil, false
	}
	return streams.Get(i)
}
