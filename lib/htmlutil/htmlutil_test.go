package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, fragment string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestText(t *testing.T) {
	doc := parse(t, "<div>  hello <b> nested </b> world  </div>")
	require.Equal(t, "hello nested world", Text(doc.Find("div")))
}

func TestTrailingText(t *testing.T) {
	doc := parse(t, `<p><b>Label:</b> first <span>second</span> third</p>`)
	b := doc.Find("b")
	require.Len(t, b.Nodes, 1)
	require.Equal(t, "first second third", TrailingText(b.Nodes[0]))
}

func TestTrailingTextNoSiblings(t *testing.T) {
	doc := parse(t, `<p><b>Label:</b></p>`)
	require.Equal(t, "", TrailingText(doc.Find("b").Nodes[0]))
}
