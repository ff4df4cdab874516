package render

import (
	"fmt"

	"github.com/wbrown/flowbase/datum"
	"github.com/wbrown/flowbase/plan"
	"github.com/wbrown/flowbase/relation"
)

// Render evaluates p against ctx, memoizing the result by plan identity so
// a plan shared by multiple parents (a diamond) is computed exactly once
// per construction (spec §4.5, "rendering MUST memoize by plan identity to
// avoid recomputing shared sub-plans").
func Render(ctx *Context, p *plan.Plan) (*relation.Collection, error) {
	if cached, ok := ctx.Stash.GetCollection(p); ok {
		return cached, nil
	}

	var (
		out *relation.Collection
		err error
	)

	switch p.Kind {
	case plan.NodeSource:
		out, err = renderSource(ctx, p)
	case plan.NodeLocal:
		out, err = renderLocal(ctx, p)
	case plan.NodeMap:
		out, err = renderMap(ctx, p)
	case plan.NodeFilter:
		out, err = renderFilter(ctx, p)
	case plan.NodeDistinct:
		out, err = renderDistinct(ctx, p)
	case plan.NodeConcat:
		out, err = renderConcat(ctx, p)
	case plan.NodeConsolidate:
		out, err = renderConsolidate(ctx, p)
	case plan.NodeNegate:
		out, err = renderNegate(ctx, p)
	case plan.NodeJoin:
		out, err = renderJoin(ctx, p)
	case plan.NodeMultiwayJoin:
		out, err = renderMultiwayJoin(ctx, p)
	case plan.NodeInspect:
		out, err = renderInspect(ctx, p)
	default:
		return nil, fmt.Errorf("render: unknown plan kind %v", p.Kind)
	}
	if err != nil {
		return nil, err
	}

	ctx.Stash.SetCollection(p, out)
	return out, nil
}

func renderSource(ctx *Context, p *plan.Plan) (*relation.Collection, error) {
	c, ok := ctx.Sources[p.Name]
	if !ok {
		return nil, fmt.Errorf("render: no source bound for %q", p.Name)
	}
	return c, nil
}

func renderLocal(ctx *Context, p *plan.Plan) (*relation.Collection, error) {
	c, ok := ctx.Locals[p.Name]
	if !ok {
		// Not yet bound in this fixed-point iteration: an empty collection,
		// matching the zero/bottom starting value a Variable takes before
		// its first iteration produces output.
		return relation.New(), nil
	}
	return c, nil
}

func renderMap(ctx *Context, p *plan.Plan) (*relation.Collection, error) {
	child, err := Render(ctx, p.Child)
	if err != nil {
		return nil, err
	}
	out := relation.New()
	child.ForEach(func(tuple datum.Tuple, diff int64) {
		projected := make(datum.Tuple, len(p.Exprs))
		for i, e := range p.Exprs {
			projected[i] = e.Eval(tuple)
		}
		out.Add(projected, diff)
	})
	return out, nil
}

func renderFilter(ctx *Context, p *plan.Plan) (*relation.Collection, error) {
	child, err := Render(ctx, p.Child)
	if err != nil {
		return nil, err
	}
	out := relation.New()
	child.ForEach(func(tuple datum.Tuple, diff int64) {
		if p.Pred.Eval(tuple) {
			out.Add(tuple, diff)
		}
	})
	return out, nil
}

func renderConsolidate(ctx *Context, p *plan.Plan) (*relation.Collection, error) {
	// The child is already fully consolidated by construction (Collection
	// never holds zero-weighted entries), so Consolidate is semantically a
	// pass-through; it exists as an explicit plan node so a query can force
	// a materialization point the same way the original does.
	return Render(ctx, p.Child)
}

func renderNegate(ctx *Context, p *plan.Plan) (*relation.Collection, error) {
	child, err := Render(ctx, p.Child)
	if err != nil {
		return nil, err
	}
	out := relation.New()
	child.ForEach(func(tuple datum.Tuple, diff int64) {
		out.Add(tuple, -diff)
	})
	return out, nil
}

func renderInspect(ctx *Context, p *plan.Plan) (*relation.Collection, error) {
	child, err := Render(ctx, p.Child)
	if err != nil {
		return nil, err
	}
	for _, entry := range child.Sorted() {
		fmt.Printf("%s: %s x%d\n", p.Tag, entry.Tuple, entry.Diff)
	}
	return child, nil
}
