// Package dom is a pjs host over an in-memory HTML tree.
//
// Objects are element nodes from golang.org/x/net/html; selectors are CSS,
// compiled by cascadia. Every tree access goes through the Document lock so
// that spawned tasks may build and query the tree concurrently.
package dom

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"github.com/pkg/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/pjslang/pjs"
)

// Document owns an HTML tree and the Element wrappers of its nodes.
type Document struct {
	mu    sync.Mutex
	root  *html.Node
	body  *html.Node
	elems map[*html.Node]*Element

	selMu     sync.Mutex
	selectors map[string]cascadia.Selector
}

var _ pjs.Document = (*Document)(nil)

// New creates an empty document: html, head and body.
func New() *Document {
	root := &html.Node{Type: html.DocumentNode}
	htmlNode := newElementNode("html")
	root.AppendChild(htmlNode)
	htmlNode.AppendChild(newElementNode("head"))
	body := newElementNode("body")
	htmlNode.AppendChild(body)
	return wrap(root, body)
}

// Parse reads a complete HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, errors.Wrap(err, "parsing document")
	}
	body := findAtom(root, atom.Body)
	if body == nil {
		// html.Parse always synthesizes a body, unless it met a frameset
		parent := findAtom(root, atom.Html)
		if parent == nil {
			parent = root
		}
		body = newElementNode("body")
		parent.AppendChild(body)
	}
	return wrap(root, body), nil
}

func wrap(root, body *html.Node) *Document {
	return &Document{
		root:  root,
		body:  body,
		elems: make(map[*html.Node]*Element),
	}
}

func newElementNode(name string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     name,
		DataAtom: atom.Lookup([]byte(name)),
	}
}

func findAtom(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findAtom(c, a); found != nil {
			return found
		}
	}
	return nil
}

// Root returns the body element, where top level commits land.
func (doc *Document) Root() pjs.Object { return doc.Body() }

// Body returns the body element.
func (doc *Document) Body() *Element {
	doc.mu.Lock()
	defer doc.mu.Unlock()
	return doc.element(doc.body)
}

// Element returns the wrapper for n, which must be an element node of doc.
func (doc *Document) Element(n *html.Node) *Element {
	doc.mu.Lock()
	defer doc.mu.Unlock()
	return doc.element(n)
}

func (doc *Document) element(n *html.Node) *Element {
	if n == nil || n.Type != html.ElementNode {
		return nil
	}
	el, ok := doc.elems[n]
	if !ok {
		el = &Element{doc: doc, node: n}
		doc.elems[n] = el
	}
	return el
}

// Create makes a detached element.
func (doc *Document) Create(name string) (pjs.Object, error) {
	name = strings.ToLower(name)
	if name == "" {
		return nil, errors.New("cannot create an element without a name")
	}
	doc.mu.Lock()
	defer doc.mu.Unlock()
	return doc.element(newElementNode(name)), nil
}

func (doc *Document) compile(selector string) (cascadia.Selector, error) {
	doc.selMu.Lock()
	defer doc.selMu.Unlock()
	if sel, ok := doc.selectors[selector]; ok {
		return sel, nil
	}
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid selector %q", selector)
	}
	if doc.selectors == nil {
		doc.selectors = make(map[string]cascadia.Selector)
	}
	doc.selectors[selector] = sel
	return sel, nil
}

// Query finds the descendants of within that match selector, in document
// order. A nil within searches the whole document.
func (doc *Document) Query(ctx context.Context, within pjs.Object, selector string) ([]pjs.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sel, err := doc.compile(selector)
	if err != nil {
		return nil, err
	}
	scope := doc.root
	if within != nil {
		el, err := doc.own("query", within)
		if err != nil {
			return nil, err
		}
		scope = el.node
	}

	doc.mu.Lock()
	defer doc.mu.Unlock()
	var found []pjs.Object
	for _, n := range cascadia.QueryAll(scope, sel) {
		if n != scope {
			found = append(found, doc.element(n))
		}
	}
	return found, nil
}

// QueryElements is Query for Go callers.
func (doc *Document) QueryElements(selector string) ([]*Element, error) {
	objs, err := doc.Query(context.Background(), nil, selector)
	if err != nil {
		return nil, err
	}
	els := make([]*Element, len(objs))
	for i, obj := range objs {
		els[i] = obj.(*Element)
	}
	return els, nil
}

func (doc *Document) own(op string, obj pjs.Object) (*Element, error) {
	el, ok := obj.(*Element)
	if !ok || el.doc != doc {
		return nil, &pjs.StructuralError{Op: op, Reason: "object " + pjs.Display(obj) + " is not part of this document"}
	}
	return el, nil
}

// Render writes the whole document as HTML.
func (doc *Document) Render(w io.Writer) error {
	doc.mu.Lock()
	defer doc.mu.Unlock()
	return html.Render(w, doc.root)
}

// RenderBody writes the inner HTML of the body.
func (doc *Document) RenderBody(w io.Writer) error {
	doc.mu.Lock()
	defer doc.mu.Unlock()
	return renderChildren(w, doc.body)
}

func renderChildren(w io.Writer, n *html.Node) error {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(w, c); err != nil {
			return err
		}
	}
	return nil
}
