package htmlutil

import (
	"bytes"
	"uiharvest/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// Text returns the whitespace-normalized text of the selection's
// first node.
func Text(sel *goquery.Selection) string {
	if len(sel.Nodes) == 0 {
		return ""
	}
	return textutil.Normalize(GetText(sel.Nodes[0]))
}

// TrailingText concatenates the content of every sibling after node,
// text nodes included, up to the end of the enclosing block.
func TrailingText(node *html.Node) string {
	if node == nil {
		return ""
	}
	var buffer bytes.Buffer
	for n := node.NextSibling; n != nil; n = n.NextSibling {
		getTextRecursive(n, &buffer)
	}
	return textutil.Normalize(buffer.String())
}

// Attr returns the value of the named attribute on the selection's
// first node, or "".
func Attr(sel *goquery.Selection, name string) string {
	v, _ := sel.Attr(name)
	return v
}
