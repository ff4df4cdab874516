package render

import (
	"github.com/wbrown/flowbase/plan"
	"github.com/wbrown/flowbase/relation"
)

// renderDistinct reduces every tuple with positive accumulated weight to a
// weight of exactly one, discarding multiplicity; tuples with negative
// weight are dropped (spec §4.2 "distinct()").
func renderDistinct(ctx *Context, p *plan.Plan) (*relation.Collection, error) {
	child, err := Render(ctx, p.Child)
	if err != nil {
		return nil, err
	}
	out := relation.New()
	for _, entry := range child.Sorted() {
		if entry.Diff > 0 {
			out.Add(entry.Tuple, 1)
		}
	}
	return out, nil
}
