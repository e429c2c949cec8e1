package fragment

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	policy    = bluemonday.UGCPolicy()
	reMention = regexp.MustCompile(`@\w+`)
)

// Sanitize strips anything but content markup from rawHTML and quotes
// @mentions in code spans, so that posting the result on GitHub does not
// notify anybody. Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(rawHTML string) string {
	clean := policy.Sanitize(rawHTML)
	nodes, err := html.ParseFragment(strings.NewReader(clean), &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div})
	if err != nil {
		return clean
	}
	container := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	quoteMentions(container)

	var sb strings.Builder
	for n := container.FirstChild; n != nil; n = n.NextSibling {
		if err := html.Render(&sb, n); err != nil {
			return clean
		}
	}
	return sb.String()
}

func quoteMentions(n *html.Node) {
	if n.Type == html.ElementNode && (n.DataAtom == atom.Code || n.DataAtom == atom.Pre) {
		return
	}
	if n.Type == html.TextNode {
		wrapMentions(n)
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		quoteMentions(c)
		c = next
	}
}

// wrapMentions splits text node t around each mention, wrapping the mentions in <code>.
func wrapMentions(t *html.Node) {
	locs := reMention.FindAllStringIndex(t.Data, -1)
	if len(locs) == 0 {
		return
	}
	parent, text := t.Parent, t.Data
	last := 0
	for _, loc := range locs {
		if loc[0] > last {
			parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text[last:loc[0]]}, t)
		}
		code := &html.Node{Type: html.ElementNode, Data: "code", DataAtom: atom.Code}
		code.AppendChild(&html.Node{Type: html.TextNode, Data: text[loc[0]:loc[1]]})
		parent.InsertBefore(code, t)
		last = loc[1]
	}
	if last < len(text) {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text[last:]}, t)
	}
	parent.RemoveChild(t)
}
