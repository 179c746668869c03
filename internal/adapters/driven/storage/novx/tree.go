package novx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// charData is a text child of an element.
type charData string

// element is a generic XML element. Children are *element or charData.
type element struct {
	name     string
	attrs    []xml.Attr
	children []any
}

func newElement(name string, attrs ...xml.Attr) *element {
	return &element{name: name, attrs: attrs}
}

// qualified returns the name as written in the file, prefix included.
func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// parseTree reads a document into an element tree. Name space prefixes
// are kept verbatim. Comments and processing instructions are dropped.
func parseTree(r io.Reader) (*element, error) {
	dec := xml.NewDecoder(r)
	var (
		root  *element
		stack []*element
	)
	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el := newElement(qualified(t.Name), slices.Clone(t.Attr)...)
			switch {
			case len(stack) > 0:
				top := stack[len(stack)-1]
				top.children = append(top.children, el)
			case root == nil:
				root = el
			default:
				return nil, fmt.Errorf("second root element <%s>", el.name)
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("unexpected </%s>", qualified(t.Name))
			}
			top := stack[len(stack)-1]
			if top.name != qualified(t.Name) {
				return nil, fmt.Errorf("element <%s> closed by </%s>", top.name, qualified(t.Name))
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				top.children = append(top.children, charData(t))
			}
		}
	}
	if root == nil {
		return nil, errors.New("no root element")
	}
	if len(stack) > 0 {
		return nil, fmt.Errorf("element <%s> is not closed", stack[len(stack)-1].name)
	}
	root.trimLayout()
	return root, nil
}

// trimLayout drops indentation between child elements. Whitespace without
// a line break is content, as between two inline elements of a paragraph.
func (e *element) trimLayout() {
	hasElements := false
	for _, c := range e.children {
		if _, ok := c.(*element); ok {
			hasElements = true
			break
		}
	}
	if !hasElements {
		return
	}
	kept := e.children[:0]
	for _, c := range e.children {
		switch v := c.(type) {
		case charData:
			if strings.TrimSpace(string(v)) == "" && strings.Contains(string(v), "\n") {
				continue
			}
		case *element:
			v.trimLayout()
		}
		kept = append(kept, c)
	}
	e.children = kept
}

// elements returns the child elements with the given name.
func (e *element) elements(name string) []*element {
	var out []*element
	for _, c := range e.children {
		if el, ok := c.(*element); ok && el.name == name {
			out = append(out, el)
		}
	}
	return out
}

// child returns the first child element with the given name.
func (e *element) child(name string) *element {
	for _, c := range e.children {
		if el, ok := c.(*element); ok && el.name == name {
			return el
		}
	}
	return nil
}

// text returns the element's text. Paragraph children are joined by newlines.
func (e *element) text() string {
	if e == nil {
		return ""
	}
	if paras := e.elements("p"); len(paras) > 0 {
		lines := make([]string, 0, len(paras))
		for _, p := range paras {
			lines = append(lines, p.text())
		}
		return strings.Join(lines, "\n")
	}
	var sb strings.Builder
	for _, c := range e.children {
		if cd, ok := c.(charData); ok {
			sb.WriteString(string(cd))
		}
	}
	return sb.String()
}

func (e *element) attr(name string) string {
	if e == nil {
		return ""
	}
	for _, a := range e.attrs {
		if qualified(a.Name) == name {
			return a.Value
		}
	}
	return ""
}

// setAttr sets an attribute, removing it when value is empty.
func (e *element) setAttr(name, value string) {
	for i, a := range e.attrs {
		if qualified(a.Name) != name {
			continue
		}
		if value == "" {
			e.attrs = slices.Delete(e.attrs, i, i+1)
		} else {
			e.attrs[i].Value = value
		}
		return
	}
	if value != "" {
		space, local, ok := strings.Cut(name, ":")
		if !ok {
			space, local = "", name
		}
		e.attrs = append(e.attrs, xml.Attr{Name: xml.Name{Space: space, Local: local}, Value: value})
	}
}

// ids returns the space-separated ids of the named child's ids attribute.
func (e *element) ids(name string) []string {
	ids := strings.Fields(e.child(name).attr("ids"))
	if len(ids) == 0 {
		return nil
	}
	return ids
}

// remove deletes the first child element with the given name.
func (e *element) remove(name string) {
	for i, c := range e.children {
		if el, ok := c.(*element); ok && el.name == name {
			e.children = slices.Delete(e.children, i, i+1)
			return
		}
	}
}

// upsert replaces the first child with the same name, or inserts el
// before the first child that order places after it. Names missing from
// order sort last.
func (e *element) upsert(el *element, order []string) {
	for i, c := range e.children {
		if existing, ok := c.(*element); ok && existing.name == el.name {
			e.children[i] = el
			return
		}
	}
	rank := func(name string) int {
		if i := slices.Index(order, name); i >= 0 {
			return i
		}
		return len(order)
	}
	want := rank(el.name)
	for i, c := range e.children {
		if existing, ok := c.(*element); ok && rank(existing.name) > want {
			e.children = slices.Insert(e.children, i, any(el))
			return
		}
	}
	e.children = append(e.children, el)
}

// ensure returns the named child, creating it in order if missing.
func (e *element) ensure(name string, order []string) *element {
	if el := e.child(name); el != nil {
		return el
	}
	el := newElement(name)
	e.upsert(el, order)
	return el
}

// setText stores value as the text of the named child, removing the
// child when value is empty.
func (e *element) setText(name, value string, order []string) {
	if value == "" {
		e.remove(name)
		return
	}
	el := newElement(name)
	el.children = []any{charData(value)}
	e.upsert(el, order)
}

// setParagraphs stores value as one paragraph per line.
func (e *element) setParagraphs(name, value string, order []string) {
	if value == "" {
		e.remove(name)
		return
	}
	el := newElement(name)
	for _, line := range strings.Split(value, "\n") {
		p := newElement("p")
		if line != "" {
			p.children = []any{charData(line)}
		}
		el.children = append(el.children, p)
	}
	e.upsert(el, order)
}

// setIDs stores ids in the ids attribute of the named child.
func (e *element) setIDs(name string, ids []string, order []string) {
	if len(ids) == 0 {
		e.remove(name)
		return
	}
	el := newElement(name)
	el.setAttr("ids", strings.Join(ids, " "))
	e.upsert(el, order)
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;",
		"\n", "&#10;", "\r", "&#13;", "\t", "&#9;")
)

// blockLayout reports whether the element holds only child elements.
func (e *element) blockLayout() bool {
	if len(e.children) == 0 {
		return false
	}
	for _, c := range e.children {
		if _, ok := c.(*element); !ok {
			return false
		}
	}
	return true
}

func (e *element) openTag(b *bytes.Buffer) {
	b.WriteString("<")
	b.WriteString(e.name)
	for _, a := range e.attrs {
		b.WriteString(" ")
		b.WriteString(qualified(a.Name))
		b.WriteString(`="`)
		b.WriteString(attrEscaper.Replace(a.Value))
		b.WriteString(`"`)
	}
}

// writeBlock writes the element on its own indented lines.
func (e *element) writeBlock(b *bytes.Buffer, depth int) {
	b.WriteString(strings.Repeat("\t", depth))
	if !e.blockLayout() {
		e.writeInline(b)
		b.WriteString("\n")
		return
	}
	e.openTag(b)
	b.WriteString(">\n")
	for _, c := range e.children {
		c.(*element).writeBlock(b, depth+1)
	}
	b.WriteString(strings.Repeat("\t", depth))
	b.WriteString("</" + e.name + ">\n")
}

// writeInline writes the element and its children without layout.
func (e *element) writeInline(b *bytes.Buffer) {
	e.openTag(b)
	if len(e.children) == 0 {
		b.WriteString("/>")
		return
	}
	b.WriteString(">")
	for _, c := range e.children {
		switch v := c.(type) {
		case charData:
			b.WriteString(textEscaper.Replace(string(v)))
		case *element:
			v.writeInline(b)
		}
	}
	b.WriteString("</" + e.name + ">")
}

// marshal returns the document with an XML declaration.
func (e *element) marshal() []byte {
	var b bytes.Buffer
	b.WriteString(xml.Header)
	e.writeBlock(&b, 0)
	return b.Bytes()
}
