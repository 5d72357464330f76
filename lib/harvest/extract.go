package harvest

import (
	"context"
	"strconv"
	"strings"
	"uiharvest/lib/htmlutil"
	"uiharvest/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type ExtractOptions struct {
	// joins the trailing cells of a tabular row, " | " by default
	CellSeparator string

	// when CompositeField is set, a "[GroupField] MemberField" value is
	// synthesized and injected as the record's leading field
	GroupField     string
	MemberField    string
	CompositeField string
}

const inputLike = "input, select, textarea"

// fieldSet accumulates harvested pairs under first-write-wins
// semantics: a later duplicate key is only taken when the earlier
// value was empty.
type fieldSet struct {
	order []string
	m     map[string]string
}

func newFieldSet() *fieldSet {
	return &fieldSet{m: map[string]string{}}
}

func (f *fieldSet) put(key, value string) {
	key = textutil.Normalize(key)
	if key == "" {
		return
	}
	value = textutil.Normalize(value)
	existing, ok := f.m[key]
	if !ok {
		f.order = append(f.order, key)
		f.m[key] = value
		return
	}
	if existing == "" && value != "" {
		f.m[key] = value
	}
}

func (f *fieldSet) putLeading(key, value string) {
	if _, ok := f.m[key]; ok {
		f.put(key, value)
		return
	}
	f.put(key, value)
	last := f.order[len(f.order)-1]
	copy(f.order[1:], f.order[:len(f.order)-1])
	f.order[0] = last
}

// ExtractFields runs every harvesting strategy over one region
// snapshot and merges their pairs. Strategies are independent; their
// order only matters through the first-write-wins merge.
func ExtractFields(ctx context.Context, regionHtml string, opts ExtractOptions) (map[string]string, error) {
	ctx, span := tracer.Start(ctx, "ExtractFields")
	defer span.End()

	if opts.CellSeparator == "" {
		opts.CellSeparator = " | "
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(regionHtml))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse region snapshot")
		return nil, err
	}

	raw := newFieldSet()
	harvestDefinitionPairs(doc, raw, opts)
	harvestTableRows(doc, raw, opts)
	harvestLabeledControls(doc, raw)
	harvestEmphasisMarkers(doc, raw)

	fields := stripLabelColons(raw)
	synthesizeComposite(fields, opts)

	span.SetAttributes(attribute.Int("fields", len(fields.m)))
	return fields.snapshot(), nil
}

func (f *fieldSet) snapshot() map[string]string {
	out := make(map[string]string, len(f.m))
	for k, v := range f.m {
		out[k] = v
	}
	return out
}

// strategy (a): adjacent term/definition structures.
func harvestDefinitionPairs(doc *goquery.Document, out *fieldSet, opts ExtractOptions) {
	doc.Find("dl").Each(func(_ int, dl *goquery.Selection) {
		dl.ChildrenFiltered("dt").Each(func(_ int, dt *goquery.Selection) {
			var defs []string
			dt.NextUntil("dt").Filter("dd").Each(func(_ int, dd *goquery.Selection) {
				if text := htmlutil.Text(dd); text != "" {
					defs = append(defs, text)
				}
			})
			out.put(htmlutil.Text(dt), strings.Join(defs, opts.CellSeparator))
		})
	})
}

// strategy (b): rows with two or more cells, first cell keys the rest.
func harvestTableRows(doc *goquery.Document, out *fieldSet, opts ExtractOptions) {
	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.ChildrenFiltered("th, td")
		if cells.Length() < 2 {
			return
		}
		var rest []string
		cells.Slice(1, cells.Length()).Each(func(_ int, cell *goquery.Selection) {
			rest = append(rest, htmlutil.Text(cell))
		})
		out.put(htmlutil.Text(cells.First()), strings.Join(rest, opts.CellSeparator))
	})
}

// strategy (c): label-like elements bound to a control, by explicit id
// binding first, then a following sibling, then the nearest ancestor's
// first input-like descendant.
func harvestLabeledControls(doc *goquery.Document, out *fieldSet) {
	doc.Find("label").Each(func(_ int, label *goquery.Selection) {
		key := htmlutil.Text(label)
		if key == "" {
			return
		}

		ctl := resolveControl(doc, label)
		if ctl == nil || ctl.Length() == 0 {
			return
		}
		out.put(key, controlValue(ctl))
	})
}

func resolveControl(doc *goquery.Document, label *goquery.Selection) *goquery.Selection {
	if id, ok := label.Attr("for"); ok && id != "" {
		bound := doc.Find("[id=" + strconv.Quote(id) + "]").First()
		if bound.Length() > 0 {
			return bound
		}
	}

	sibling := label.NextAllFiltered(inputLike).First()
	if sibling.Length() > 0 {
		return sibling
	}

	var found *goquery.Selection
	label.Parents().EachWithBreak(func(_ int, p *goquery.Selection) bool {
		descendant := p.Find(inputLike).First()
		if descendant.Length() > 0 {
			found = descendant
			return false
		}
		return true
	})
	return found
}

// for choice controls the value is the chosen option's text, for
// text-entry controls the current value
func controlValue(ctl *goquery.Selection) string {
	if ctl.Is("select") {
		opt := ctl.Find("option[selected]").First()
		if opt.Length() == 0 {
			opt = ctl.Find("option").First()
		}
		return htmlutil.Text(opt)
	}
	if ctl.Is("textarea") {
		if text := htmlutil.Text(ctl); text != "" {
			return text
		}
		return textutil.Normalize(htmlutil.Attr(ctl, "value"))
	}
	return textutil.Normalize(htmlutil.Attr(ctl, "value"))
}

// strategy (d): emphasized text ending in a half- or full-width colon
// labels the sibling content that follows it, up to the end of the
// enclosing block.
func harvestEmphasisMarkers(doc *goquery.Document, out *fieldSet) {
	doc.Find("b, strong, em").Each(func(_ int, em *goquery.Selection) {
		key := htmlutil.Text(em)
		if !textutil.HasLabelColon(key) {
			return
		}
		out.put(key, htmlutil.TrailingText(em.Nodes[0]))
	})
}

// every harvested key loses its trailing colon; when the colon-free
// key already exists the values merge first-write-wins.
func stripLabelColons(raw *fieldSet) *fieldSet {
	out := newFieldSet()
	for _, key := range raw.order {
		out.put(textutil.StripLabelColon(key), raw.m[key])
	}
	return out
}

func synthesizeComposite(fields *fieldSet, opts ExtractOptions) {
	if opts.CompositeField == "" {
		return
	}
	group := fields.m[opts.GroupField]
	member := fields.m[opts.MemberField]
	if group == "" && member == "" {
		return
	}
	value := member
	if group != "" {
		value = textutil.Normalize("[" + group + "] " + member)
	}
	fields.putLeading(opts.CompositeField, value)
}
