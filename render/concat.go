package render

import (
	"github.com/wbrown/flowbase/plan"
	"github.com/wbrown/flowbase/relation"
)

// renderConcat unions every child's weights, accumulating multiplicities
// (spec §4.2 "concat/concatenate").
func renderConcat(ctx *Context, p *plan.Plan) (*relation.Collection, error) {
	out := relation.New()
	for _, child := range p.Children {
		c, err := Render(ctx, child)
		if err != nil {
			return nil, err
		}
		out.Merge(c)
	}
	return out, nil
}
