// Package docxtest builds small WordprocessingML packages for tests.
package docxtest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"testing"
)

const (
	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPic = "http://schemas.openxmlformats.org/drawingml/2006/picture"

	relHeader = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/header"
	relImage  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relOffice = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
)

// Media is an image part under word/media referenced by relationship ID from
// the body and from every header.
type Media struct {
	ID   string
	Name string
	Data []byte
}

// Doc describes a package. Body and Headers hold paragraph XML built with P
// and Image.
type Doc struct {
	Body    []string
	Headers [][]string
	Media   []Media

	// OmitBody writes a document part without a w:body element.
	OmitBody bool
	// OmitMain leaves out word/document.xml entirely.
	OmitMain bool
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// P returns a paragraph with one run per text.
func P(runs ...string) string {
	var b strings.Builder
	b.WriteString("<w:p>")
	for _, r := range runs {
		fmt.Fprintf(&b, `<w:r><w:t xml:space="preserve">%s</w:t></w:r>`, escape(r))
	}
	b.WriteString("</w:p>")
	return b.String()
}

// Image returns a paragraph holding one inline picture whose description is
// label and whose blip embeds relID.
func Image(relID, label string) string {
	return fmt.Sprintf(`<w:p><w:r><w:drawing><wp:inline distT="0" distB="0" distL="0" distR="0">`+
		`<wp:extent cx="914400" cy="914400"/>`+
		`<wp:docPr id="1" name="Picture 1" descr="%s"/>`+
		`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:pic><pic:nvPicPr><pic:cNvPr id="0" name="image"/><pic:cNvPicPr/></pic:nvPicPr>`+
		`<pic:blipFill><a:blip r:embed="%s"/></pic:blipFill>`+
		`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="914400" cy="914400"/></a:xfrm></pic:spPr>`+
		`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing></w:r></w:p>`,
		escape(label), escape(relID))
}

func namespaces() string {
	return fmt.Sprintf(`xmlns:w="%s" xmlns:r="%s" xmlns:wp="%s" xmlns:a="%s" xmlns:pic="%s"`, nsW, nsR, nsWP, nsA, nsPic)
}

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

func (d Doc) documentXML() string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, "<w:document %s>", namespaces())
	if !d.OmitBody {
		b.WriteString("<w:body>")
		for _, p := range d.Body {
			b.WriteString(p)
		}
		b.WriteString(`<w:sectPr/></w:body>`)
	}
	b.WriteString("</w:document>")
	return b.String()
}

func headerXML(paras []string) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, "<w:hdr %s>", namespaces())
	for _, p := range paras {
		b.WriteString(p)
	}
	b.WriteString("</w:hdr>")
	return b.String()
}

func (d Doc) rels(withHeaders bool) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	if withHeaders {
		for i := range d.Headers {
			fmt.Fprintf(&b, `<Relationship Id="rIdHdr%d" Type="%s" Target="header%d.xml"/>`, i+1, relHeader, i+1)
		}
	}
	for _, m := range d.Media {
		fmt.Fprintf(&b, `<Relationship Id="%s" Type="%s" Target="media/%s"/>`, m.ID, relImage, m.Name)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

func contentTypes() string {
	return xmlHeader + `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Default Extension="png" ContentType="image/png"/>` +
		`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
		`</Types>`
}

func rootRels() string {
	return xmlHeader + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		fmt.Sprintf(`<Relationship Id="rId1" Type="%s" Target="word/document.xml"/>`, relOffice) +
		`</Relationships>`
}

// Build writes d as a zip package. The main document part is the first entry
// so content sniffers recognize the package as a Word document.
func Build(t testing.TB, d Doc) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	add := func(name, body string) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := io.WriteString(w, body); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if !d.OmitMain {
		add("word/document.xml", d.documentXML())
	}
	add("[Content_Types].xml", contentTypes())
	add("_rels/.rels", rootRels())
	add("word/_rels/document.xml.rels", d.rels(true))
	for i, h := range d.Headers {
		add(fmt.Sprintf("word/header%d.xml", i+1), headerXML(h))
		add(fmt.Sprintf("word/_rels/header%d.xml.rels", i+1), d.rels(false))
	}
	for _, m := range d.Media {
		add("word/media/"+m.Name, string(m.Data))
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

// Entry returns the uncompressed bytes of name inside the zip package b.
func Entry(t testing.TB, b []byte, name string) []byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		t.Fatalf("zip open: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("zip open %s: %v", name, err)
		}
		defer rc.Close()
		out, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("zip read %s: %v", name, err)
		}
		return out
	}
	t.Fatalf("zip entry %s not found", name)
	return nil
}
