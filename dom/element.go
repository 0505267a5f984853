package dom

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/net/html"

	"github.com/pjslang/pjs"
)

// Element is the pjs object for one element node.
type Element struct {
	pjs.ObjectCore

	doc  *Document
	node *html.Node

	lmu       sync.Mutex
	listeners map[string][]Listener
}

var _ pjs.Object = (*Element)(nil)

// Name is the lower case tag name.
func (el *Element) Name() string { return el.node.Data }

// Node exposes the underlying html node. Callers must not mutate it while
// programs may be running against the document.
func (el *Element) Node() *html.Node { return el.node }

// Document returns the owning document.
func (el *Element) Document() *Document { return el.doc }

func (el *Element) String() string { return "<" + el.node.Data + ">" }

// Append adds child as the last child. Elements move from wherever they are
// attached; any other value is added as text.
func (el *Element) Append(child pjs.Value) error {
	return el.insert("append", child, false)
}

// Prepend adds child as the first child.
func (el *Element) Prepend(child pjs.Value) error {
	return el.insert("prepend", child, true)
}

func (el *Element) insert(op string, child pjs.Value, first bool) error {
	var n *html.Node
	if obj, ok := child.(pjs.Object); ok {
		childEl, err := el.doc.own(op, obj)
		if err != nil {
			return err
		}
		n = childEl.node
	} else {
		n = &html.Node{Type: html.TextNode, Data: pjs.Display(child)}
	}

	el.doc.mu.Lock()
	defer el.doc.mu.Unlock()
	for p := el.node; p != nil; p = p.Parent {
		if p == n {
			return &pjs.StructuralError{Op: op, Reason: "cannot attach " + el.String() + " inside itself"}
		}
	}
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
	if first && el.node.FirstChild != nil {
		el.node.InsertBefore(n, el.node.FirstChild)
	} else {
		el.node.AppendChild(n)
	}
	return nil
}

// Detach removes the element from its parent.
func (el *Element) Detach() {
	el.doc.mu.Lock()
	defer el.doc.mu.Unlock()
	if el.node.Parent != nil {
		el.node.Parent.RemoveChild(el.node)
	}
}

// ParentElement returns the element the node is attached to, if any.
func (el *Element) ParentElement() *Element {
	el.doc.mu.Lock()
	defer el.doc.mu.Unlock()
	return el.doc.element(el.node.Parent)
}

// Attr reads an attribute.
func (el *Element) Attr(name string) (string, bool) {
	el.doc.mu.Lock()
	defer el.doc.mu.Unlock()
	for _, a := range el.node.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr writes an attribute, replacing any prior value.
func (el *Element) SetAttr(name, val string) {
	el.doc.mu.Lock()
	defer el.doc.mu.Unlock()
	el.setAttr(name, val)
}

func (el *Element) setAttr(name, val string) {
	for i, a := range el.node.Attr {
		if a.Namespace == "" && a.Key == name {
			el.node.Attr[i].Val = val
			return
		}
	}
	el.node.Attr = append(el.node.Attr, html.Attribute{Key: name, Val: val})
}

// Text returns the concatenated text content.
func (el *Element) Text() string {
	el.doc.mu.Lock()
	defer el.doc.mu.Unlock()
	var sb strings.Builder
	collectText(&sb, el.node)
	return sb.String()
}

func collectText(sb *strings.Builder, n *html.Node) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(sb, c)
	}
}

// InnerHTML renders the children.
func (el *Element) InnerHTML() (string, error) {
	el.doc.mu.Lock()
	defer el.doc.mu.Unlock()
	var sb strings.Builder
	err := renderChildren(&sb, el.node)
	return sb.String(), err
}

// SetInnerHTML replaces the children with the parse of markup.
func (el *Element) SetInnerHTML(markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), el.node)
	if err != nil {
		return errors.Wrapf(err, "parsing markup for %v", el)
	}
	el.doc.mu.Lock()
	defer el.doc.mu.Unlock()
	for c := el.node.FirstChild; c != nil; c = el.node.FirstChild {
		el.node.RemoveChild(c)
	}
	for _, n := range nodes {
		el.node.AppendChild(n)
	}
	return nil
}

// Style returns the declarations of the style attribute in order.
func (el *Element) Style() [][2]string {
	style, _ := el.Attr("style")
	return parseStyle(style)
}

// SetStyle sets style properties, keeping the order of those already present.
func (el *Element) SetStyle(props ...[2]string) {
	el.doc.mu.Lock()
	defer el.doc.mu.Unlock()
	var style string
	for _, a := range el.node.Attr {
		if a.Namespace == "" && a.Key == "style" {
			style = a.Val
		}
	}
	decls := parseStyle(style)
	for _, prop := range props {
		i := len(decls)
		for j, decl := range decls {
			if decl[0] == prop[0] {
				i = j
				break
			}
		}
		if i < len(decls) {
			decls[i][1] = prop[1]
		} else {
			decls = append(decls, prop)
		}
	}
	parts := make([]string, len(decls))
	for i, decl := range decls {
		parts[i] = decl[0] + ": " + decl[1]
	}
	el.setAttr("style", strings.Join(parts, "; "))
}

func parseStyle(style string) [][2]string {
	var decls [][2]string
	for _, decl := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if k = strings.TrimSpace(k); !ok || k == "" {
			continue
		}
		decls = append(decls, [2]string{k, strings.TrimSpace(v)})
	}
	return decls
}
