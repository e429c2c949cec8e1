// Package fragment finds, for a node of the minutes, the closest heading that
// can be linked to, and extracts the part of the transcript it introduces.
package fragment

import (
	"iter"
	"strings"

	"golang.org/x/net/html"

	"minutes_linker/internal/models"
)

// Ancestors yields n (when it is an element) and then its element ancestors, innermost first.
func Ancestors(n *html.Node) iter.Seq[*html.Node] {
	return func(yield func(*html.Node) bool) {
		for cur := n; cur != nil; cur = cur.Parent {
			if cur.Type != html.ElementNode {
				continue
			}
			if !yield(cur) {
				return
			}
		}
	}
}

// PrecedingSiblings yields n (when it is an element) and then its previous element siblings, nearest first.
func PrecedingSiblings(n *html.Node) iter.Seq[*html.Node] {
	return func(yield func(*html.Node) bool) {
		for cur := n; cur != nil; cur = cur.PrevSibling {
			if cur.Type != html.ElementNode {
				continue
			}
			if !yield(cur) {
				return
			}
		}
	}
}

// BoundaryID returns the id of n when n is a fragment boundary: an h1 to h4 with a non-empty id.
func BoundaryID(n *html.Node) (string, bool) {
	if n == nil || n.Type != html.ElementNode {
		return "", false
	}
	switch strings.ToLower(n.Data) {
	case "h1", "h2", "h3", "h4":
	default:
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == "id" && a.Val != "" {
			return a.Val, true
		}
	}
	return "", false
}

// Closest returns the nearest boundary before n: first among n's own preceding
// siblings, then among those of each ancestor, going up to the root.
func Closest(n *html.Node) (*html.Node, string, bool) {
	for ancestor := range Ancestors(n) {
		for candidate := range PrecedingSiblings(ancestor) {
			if id, ok := BoundaryID(candidate); ok {
				return candidate, id, true
			}
		}
	}
	return nil, "", false
}

// Resolve locates the fragment n belongs to. The excerpt is only computed when requested.
func Resolve(n *html.Node, withExcerpt bool) (models.Fragment, bool) {
	heading, id, ok := Closest(n)
	if !ok {
		return models.Fragment{}, false
	}
	frag := models.Fragment{ID: id}
	if withExcerpt {
		frag.Excerpt = Sanitize(Extract(heading))
	}
	return frag, true
}

// Extract renders heading and every following sibling up to the next boundary.
func Extract(heading *html.Node) string {
	var sb strings.Builder
	_ = html.Render(&sb, heading)
	for n := heading.NextSibling; n != nil; n = n.NextSibling {
		if _, ok := BoundaryID(n); ok {
			break
		}
		switch n.Type {
		case html.TextNode, html.ElementNode:
			_ = html.Render(&sb, n)
		}
	}
	return sb.String()
}
