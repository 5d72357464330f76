package harvest

import "slices"

// BuildSchema computes the single header every row is emitted under:
// the preferred fields that actually occur, in their fixed order,
// followed by every other observed key in locale-aware alphabetical
// order. It runs once, after all records exist; the result is frozen
// for the rest of the run.
func BuildSchema(records []Record, preferred []string) []string {
	union := map[string]bool{}
	for _, r := range records {
		for k := range r.Fields {
			union[k] = true
		}
	}

	schema := make([]string, 0, len(union))
	for _, p := range preferred {
		if union[p] {
			schema = append(schema, p)
			delete(union, p)
		}
	}

	rest := make([]string, 0, len(union))
	for k := range union {
		rest = append(rest, k)
	}
	c := newCollator()
	slices.SortFunc(rest, c.CompareString)

	return append(schema, rest...)
}
