// Package markup provides small helpers over rendered HTML documents.
package markup

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Parse builds a queryable document from serialized markup.
func Parse(markup string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(markup))
}

// NodeText returns the concatenated text content of a node and all its
// descendants. For a bare text node this is the node's own data.
func NodeText(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(NodeText(c))
	}
	return sb.String()
}

// ContentNode returns the pos-th top-level child node of the selection's
// first element, counting text nodes as well as elements. The second return
// is false when the selection has fewer content nodes.
func ContentNode(sel *goquery.Selection, pos int) (*html.Node, bool) {
	if sel == nil || pos < 0 {
		return nil, false
	}
	nodes := sel.Contents().Nodes
	if pos >= len(nodes) {
		return nil, false
	}
	return nodes[pos], true
}
