package docx

import "github.com/beevik/etree"

// collect walks the part once in document order and records its leaves.
func (p *Part) collect() {
	para := -1
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		if el.NamespaceURI() == nsW {
			switch el.Tag {
			case "p":
				para++
			case "t":
				if parent := el.Parent(); parent != nil && is(parent, nsW, "r") {
					p.nodes = append(p.nodes, &Node{
						Kind:      TextRun,
						Scope:     p.Scope,
						Part:      p.Name,
						Paragraph: para,
						el:        el,
						part:      p,
					})
				}
				return
			case "drawing":
				if n := p.imageRef(el, para); n != nil {
					p.nodes = append(p.nodes, n)
				}
			}
		}
		for _, c := range el.ChildElements() {
			walk(c)
		}
	}
	walk(p.xml.Root())
}

// imageRef builds an ImageRef for a w:drawing whose blip resolves to a media
// entry in the package. Drawings without one are not image slots.
func (p *Part) imageRef(drawing *etree.Element, para int) *Node {
	docPr := first(drawing, nsWP, "docPr")
	blip := first(drawing, nsA, "blip")
	if docPr == nil || blip == nil {
		return nil
	}
	var embed string
	for i := range blip.Attr {
		a := &blip.Attr[i]
		if a.Key == "embed" && a.NamespaceURI() == nsR {
			embed = a.Value
			break
		}
	}
	target, ok := p.relTarget(embed)
	if !ok {
		return nil
	}
	if _, ok := p.doc.byName[target]; !ok {
		return nil
	}
	return &Node{
		Kind:      ImageRef,
		Scope:     p.Scope,
		Part:      p.Name,
		Paragraph: para,
		el:        docPr,
		part:      p,
		label:     docPr.SelectAttrValue("descr", ""),
		media:     target,
	}
}

// first returns the first descendant of el, in document order, with the
// given namespace and tag.
func first(el *etree.Element, ns, tag string) *etree.Element {
	for _, c := range el.ChildElements() {
		if is(c, ns, tag) {
			return c
		}
		if found := first(c, ns, tag); found != nil {
			return found
		}
	}
	return nil
}
