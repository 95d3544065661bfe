package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/beevik/etree"

	"docustream.dev/docustream/model"
)

const (
	nsW  = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA  = "http://schemas.openxmlformats.org/drawingml/2006/main"

	relTypeOfficeDocument = "/officeDocument"
	relTypeHeader         = "/header"

	defaultMainPart = "word/document.xml"
)

// Part is one XML part of the package: the main document or a header.
type Part struct {
	Name  string
	Scope model.Scope

	doc   *Document
	xml   *etree.Document
	rels  map[string]relationship
	nodes []*Node
	dirty bool
}

// Nodes returns the leaves of the part in document order.
func (p *Part) Nodes() []*Node { return p.nodes }

// Document is a parsed .docx package.
type Document struct {
	files    []*zip.File
	byName   map[string]*zip.File
	replaced map[string][]byte

	headers []*Part
	body    *Part
}

// Parse opens b as a WordprocessingML package.
//
// A package without a main document part, or whose main part has no w:body,
// fails with KindMissingRequiredPart. Header parts that are referenced but
// absent are skipped.
func Parse(b []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, model.WrapError(model.KindMalformedDocument, "open package", err)
	}
	d := &Document{
		files:    zr.File,
		byName:   make(map[string]*zip.File, len(zr.File)),
		replaced: make(map[string][]byte),
	}
	for _, f := range zr.File {
		d.byName[f.Name] = f
	}

	mainName, err := d.mainPartName()
	if err != nil {
		return nil, err
	}
	if _, ok := d.byName[mainName]; !ok {
		return nil, model.NewError(model.KindMissingRequiredPart, "main document part required")
	}
	body, err := d.loadPart(mainName, model.ScopeBody)
	if err != nil {
		return nil, err
	}
	if bodyElement(body.xml) == nil {
		return nil, model.NewError(model.KindMissingRequiredPart, "body required")
	}
	d.body = body

	var headerNames []string
	seen := make(map[string]bool)
	for _, rel := range body.relsOfType(relTypeHeader) {
		if seen[rel] {
			continue
		}
		seen[rel] = true
		headerNames = append(headerNames, rel)
	}
	sort.Strings(headerNames)
	for _, name := range headerNames {
		if _, ok := d.byName[name]; !ok {
			continue
		}
		h, err := d.loadPart(name, model.ScopeHeader)
		if err != nil {
			return nil, err
		}
		d.headers = append(d.headers, h)
	}

	for _, p := range d.parts() {
		p.collect()
	}
	return d, nil
}

// Headers returns the header parts in part-name order.
func (d *Document) Headers() []*Part { return d.headers }

// Body returns the main document part.
func (d *Document) Body() *Part { return d.body }

func (d *Document) parts() []*Part {
	out := make([]*Part, 0, len(d.headers)+1)
	out = append(out, d.headers...)
	return append(out, d.body)
}

// Nodes returns every leaf, headers first, then the body.
func (d *Document) Nodes() []*Node {
	var out []*Node
	for _, p := range d.parts() {
		out = append(out, p.nodes...)
	}
	return out
}

func (d *Document) entry(name string) ([]byte, error) {
	if b, ok := d.replaced[name]; ok {
		return b, nil
	}
	f, ok := d.byName[name]
	if !ok {
		return nil, fmt.Errorf("docx: no entry %q", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (d *Document) mainPartName() (string, error) {
	if _, ok := d.byName["_rels/.rels"]; !ok {
		return defaultMainPart, nil
	}
	rels, err := d.loadRels("_rels/.rels", "")
	if err != nil {
		return "", err
	}
	for _, r := range rels {
		if strings.HasSuffix(r.typ, relTypeOfficeDocument) {
			return r.target, nil
		}
	}
	return defaultMainPart, nil
}

func (d *Document) loadPart(name string, scope model.Scope) (*Part, error) {
	raw, err := d.entry(name)
	if err != nil {
		return nil, model.WrapError(model.KindMalformedDocument, "read "+name, err)
	}
	x := etree.NewDocument()
	if err := x.ReadFromBytes(raw); err != nil {
		return nil, model.WrapError(model.KindMalformedDocument, "parse "+name, err)
	}
	if x.Root() == nil {
		return nil, model.NewError(model.KindMalformedDocument, name+" has no root element")
	}
	p := &Part{Name: name, Scope: scope, doc: d, xml: x}

	relsName := relsPath(name)
	if _, ok := d.byName[relsName]; ok {
		if p.rels, err = d.loadRels(relsName, path.Dir(name)); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// relTarget returns the package entry for relationship id.
func (p *Part) relTarget(id string) (string, bool) {
	r, ok := p.rels[id]
	return r.target, ok
}

func (p *Part) relsOfType(suffix string) []string {
	var out []string
	for _, r := range p.rels {
		if strings.HasSuffix(r.typ, suffix) {
			out = append(out, r.target)
		}
	}
	return out
}

type relationship struct {
	typ    string
	target string
}

// loadRels parses a relationships part. Targets are resolved against base;
// external targets are dropped.
func (d *Document) loadRels(name, base string) (map[string]relationship, error) {
	raw, err := d.entry(name)
	if err != nil {
		return nil, model.WrapError(model.KindMalformedDocument, "read "+name, err)
	}
	x := etree.NewDocument()
	if err := x.ReadFromBytes(raw); err != nil {
		return nil, model.WrapError(model.KindMalformedDocument, "parse "+name, err)
	}
	out := make(map[string]relationship)
	root := x.Root()
	if root == nil {
		return out, nil
	}
	for _, el := range root.ChildElements() {
		if el.Tag != "Relationship" {
			continue
		}
		if strings.EqualFold(el.SelectAttrValue("TargetMode", ""), "External") {
			continue
		}
		id := el.SelectAttrValue("Id", "")
		target := el.SelectAttrValue("Target", "")
		if id == "" || target == "" {
			continue
		}
		out[id] = relationship{typ: el.SelectAttrValue("Type", ""), target: resolveTarget(base, target)}
	}
	return out, nil
}

func relsPath(part string) string {
	return path.Join(path.Dir(part), "_rels", path.Base(part)+".rels")
}

func resolveTarget(base, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return strings.TrimPrefix(path.Join(base, target), "/")
}

func bodyElement(x *etree.Document) *etree.Element {
	root := x.Root()
	for _, el := range root.ChildElements() {
		if is(el, nsW, "body") {
			return el
		}
	}
	return nil
}

func is(el *etree.Element, ns, tag string) bool {
	return el.Tag == tag && el.NamespaceURI() == ns
}
