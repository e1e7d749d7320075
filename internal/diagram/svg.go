package diagram

import (
	"errors"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var errNoSVG = errors.New("diagram: response holds no <svg> element")

// svgAnnotation is what gets stamped onto interactive elements.
type svgAnnotation struct {
	Handler     string
	DiagramType string
}

// processSVG strips native tooltips and scripts, wraps the drawing in a
// pan/zoom viewport and marks nodes and edges for the browser bridge.
func processSVG(raw string, ann svgAnnotation) (string, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(raw), body)
	if err != nil {
		return "", err
	}
	var svg *html.Node
	for _, n := range nodes {
		if svg = findSVG(n); svg != nil {
			break
		}
	}
	if svg == nil {
		return "", errNoSVG
	}

	removeElements(svg, func(n *html.Node) bool {
		return n.Data == "title" || n.Data == "script"
	})
	annotate(svg, ann)
	wrapViewport(svg)
	setAttr(svg, "class", strings.TrimSpace(attr(svg, "class")+" cc-diagram"))

	var sb strings.Builder
	if err := html.Render(&sb, svg); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func findSVG(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "svg" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if s := findSVG(c); s != nil {
			return s
		}
	}
	return nil
}

func removeElements(n *html.Node, match func(*html.Node) bool) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && match(c) {
			n.RemoveChild(c)
		} else {
			removeElements(c, match)
		}
		c = next
	}
}

func annotate(n *html.Node, ann svgAnnotation) {
	if n.Type == html.ElementNode && n.Data == "g" {
		switch {
		case hasClass(n, "node"):
			setAttr(n, "data-node-id", attr(n, "id"))
			setAttr(n, "data-diagram-type", ann.DiagramType)
			setAttr(n, "data-handler", ann.Handler)
			setAttr(n, "data-action", "drilldown")
		case hasClass(n, "edge"):
			setAttr(n, "data-action", "hover")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		annotate(c, ann)
	}
}

// wrapViewport moves every child of svg under <g class="viewport">.
func wrapViewport(svg *html.Node) {
	vp := &html.Node{
		Type: html.ElementNode,
		Data: "g",
		Attr: []html.Attribute{
			{Key: "class", Val: "viewport"},
			{Key: "data-zoom", Val: "1"},
			{Key: "data-pan-x", Val: "0"},
			{Key: "data-pan-y", Val: "0"},
		},
	}
	for c := svg.FirstChild; c != nil; {
		next := c.NextSibling
		svg.RemoveChild(c)
		vp.AppendChild(c)
		c = next
	}
	svg.AppendChild(vp)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
