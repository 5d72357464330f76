package harvest

import (
	"slices"
	"uiharvest/lib/textutil"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Record is one harvested candidate. Fields are discovered
// dynamically; a field absent on one record is legal.
type Record struct {
	Position int
	Display  string
	Fields   map[string]string
}

func (r Record) Field(name string) string {
	return r.Fields[name]
}

// NormalizeRecord rewrites every field into its whitespace-normalized
// form. Extraction already normalizes, so this is idempotent by
// construction; re-applying it never changes a record.
func NormalizeRecord(r Record) Record {
	fields := make(map[string]string, len(r.Fields))
	for k, v := range r.Fields {
		fields[textutil.Normalize(k)] = textutil.Normalize(v)
	}
	r.Display = textutil.Normalize(r.Display)
	r.Fields = fields
	return r
}

func dedupKey(r Record, primary, identifier string) string {
	if key := r.Field(primary); key != "" {
		return key
	}
	return r.Field(identifier)
}

// newCollator builds the locale-aware comparer used for catalog order
// and schema tails.
func newCollator() *collate.Collator {
	return collate.New(language.Japanese)
}

// DedupCatalog is the flat-catalog cleanup pass: normalize, drop
// entries with an empty dedup key, keep the first occurrence per
// case-insensitive key, and sort survivors by the primary field under
// locale-aware collation.
func DedupCatalog(records []Record, primary, identifier string) []Record {
	seen := map[string]bool{}
	out := make([]Record, 0, len(records))

	for _, r := range records {
		r = NormalizeRecord(r)
		key := dedupKey(r, primary, identifier)
		if key == "" {
			continue
		}
		fold := textutil.FoldKey(key)
		if seen[fold] {
			continue
		}
		seen[fold] = true
		out = append(out, r)
	}

	c := newCollator()
	slices.SortStableFunc(out, func(a, b Record) int {
		return c.CompareString(a.Field(primary), b.Field(primary))
	})
	return out
}
