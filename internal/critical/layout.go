package critical

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	glyphWidth     = 8
	lineHeight     = 24
	replacedHeight = 150
	blockSpacing   = 16
)

var skipped = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Link:     true,
	atom.Meta:     true,
	atom.Title:    true,
}

var replaced = map[atom.Atom]bool{
	atom.Img:     true,
	atom.Video:   true,
	atom.Iframe:  true,
	atom.Svg:     true,
	atom.Canvas:  true,
	atom.Object:  true,
	atom.Embed:   true,
	atom.Picture: true,
}

var blocks = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Dd: true, atom.Div: true, atom.Dl: true, atom.Dt: true, atom.Fieldset: true,
	atom.Figcaption: true, atom.Figure: true, atom.Footer: true, atom.Form: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Header: true, atom.Hr: true, atom.Li: true, atom.Main: true, atom.Nav: true,
	atom.Ol: true, atom.P: true, atom.Pre: true, atom.Section: true, atom.Table: true,
	atom.Tr: true, atom.Ul: true,
}

var headingScale = map[atom.Atom]float64{
	atom.H1: 2,
	atom.H2: 1.5,
	atom.H3: 1.25,
}

type layout struct {
	vp      Viewport
	y       int
	visible []*html.Node
}

// aboveFold returns the elements whose top edge is inside vp.
func aboveFold(doc *html.Node, vp Viewport) []*html.Node {
	l := &layout{vp: vp}
	l.node(doc, 1)
	return l.visible
}

func (l *layout) node(n *html.Node, scale float64) {
	switch n.Type {
	case html.TextNode:
		l.text(n.Data, scale)
		return
	case html.ElementNode:
		if skipped[n.DataAtom] || hidden(n) {
			return
		}
		if l.y < l.vp.Height {
			l.visible = append(l.visible, n)
		}
		if s, ok := headingScale[n.DataAtom]; ok {
			scale = s
		}
		if replaced[n.DataAtom] {
			l.y += l.replacedHeight(n)
			return
		}
		if n.DataAtom == atom.Br {
			l.y += int(lineHeight * scale)
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		l.node(c, scale)
	}
	if n.Type == html.ElementNode && blocks[n.DataAtom] {
		l.y += blockSpacing
	}
}

func (l *layout) text(s string, scale float64) {
	chars := utf8.RuneCountInString(strings.Join(strings.Fields(s), " "))
	if chars == 0 {
		return
	}
	perLine := int(float64(l.vp.Width) / (glyphWidth * scale))
	if perLine < 1 {
		perLine = 1
	}
	lines := (chars + perLine - 1) / perLine
	l.y += int(float64(lines*lineHeight) * scale)
}

// replacedHeight uses the height attribute, scaled down when the declared
// width does not fit the viewport.
func (l *layout) replacedHeight(n *html.Node) int {
	h, okH := intAttr(n, "height")
	if !okH {
		return replacedHeight
	}
	if w, okW := intAttr(n, "width"); okW && w > l.vp.Width {
		return h * l.vp.Width / w
	}
	return h
}

func intAttr(n *html.Node, key string) (int, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			v, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(a.Val), "px"))
			if err != nil || v < 0 {
				return 0, false
			}
			return v, true
		}
	}
	return 0, false
}

func hidden(n *html.Node) bool {
	for _, a := range n.Attr {
		switch a.Key {
		case "hidden":
			return true
		case "type":
			if n.DataAtom == atom.Input && strings.EqualFold(a.Val, "hidden") {
				return true
			}
		case "style":
			style := strings.ReplaceAll(strings.ToLower(a.Val), " ", "")
			if strings.Contains(style, "display:none") {
				return true
			}
		}
	}
	return false
}
