/*
Package html creates byte buffers from the textual content of HTML.

# BSD License

Copyright (c) Norbert Pillmayer <norbert@pillmayer.com>

Please refer to the License file for details.
*/
package html

import (
	"io"

	"github.com/npillmayer/vbuf"
	"github.com/npillmayer/vbuf/chunktree"
	"github.com/npillmayer/vbuf/persistence"
	"golang.org/x/net/html"
)

// InnerText creates a buffer for the textual content of an HTML element and all
// its descendents. It resembles the text produced by
//
//	document.getElementById("myNode").innerText
//
// in JavaScript (except that html.InnerText cannot respect CSS styling suppressing
// the visibility of the node's descendents).
//
// Every text node becomes a leaf of the buffer's tree.
func InnerText(n *html.Node) (*vbuf.Buffer, error) {
	if n == nil {
		return nil, vbuf.ErrIllegalArguments
	}
	var srcs []chunktree.Source
	srcs = collectText(n, srcs)
	return fromSources(srcs), nil
}

// TextFromHTML creates a buffer from the textual content of an HTML fragment.
// It does no interpretation of layout and styling, but extracts the pure text.
func TextFromHTML(input io.Reader) (*vbuf.Buffer, error) {
	nodes, err := html.ParseFragment(input, nil)
	if err != nil {
		return nil, err
	}
	var srcs []chunktree.Source
	for _, n := range nodes {
		srcs = collectText(n, srcs)
	}
	return fromSources(srcs), nil
}

func fromSources(srcs []chunktree.Source) *vbuf.Buffer {
	tree := chunktree.FromSources(chunktree.Config{}, srcs...)
	vbuf.T().Debugf("html: %d text nodes, %d bytes", len(srcs), tree.Len())
	return vbuf.New(persistence.FromTree(tree))
}

func collectText(n *html.Node, srcs []chunktree.Source) []chunktree.Source {
	if n.Type == html.TextNode && n.Data != "" {
		srcs = append(srcs, textNode(n.Data))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		srcs = collectText(c, srcs)
	}
	return srcs
}

// textNode is the text of an HTML text node.
type textNode string

func (t textNode) Len() uint64 {
	return uint64(len(t))
}

func (t textNode) Fetch() ([]byte, error) {
	return []byte(t), nil
}
