package plan

import (
	"fmt"
	"strings"
)

// computeKey builds p's structural cache key from its already-keyed
// children, so the cost of keying a tree of depth n is O(n) total rather
// than O(n^2): each node's key embeds its children's memoized keys
// verbatim instead of re-walking the subtree (spec §4.2, "plans are
// structurally hashed/compared as cache keys; this MUST be efficient on
// deep trees").
func computeKey(p *Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s/%d", p.Kind, p.Arity)

	switch p.Kind {
	case NodeSource, NodeLocal:
		fmt.Fprintf(&b, "(%s)", p.Name)

	case NodeMap:
		b.WriteByte('[')
		for i, e := range p.Exprs {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(e.String())
		}
		b.WriteByte(']')
		fmt.Fprintf(&b, "<-%s", p.Child.key)

	case NodeFilter:
		fmt.Fprintf(&b, "{%s}<-%s", p.Pred, p.Child.key)

	case NodeDistinct, NodeConsolidate, NodeNegate:
		fmt.Fprintf(&b, "<-%s", p.Child.key)

	case NodeInspect:
		fmt.Fprintf(&b, "(%s)<-%s", p.Tag, p.Child.key)

	case NodeConcat:
		b.WriteByte('[')
		for i, child := range p.Children {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(child.key)
		}
		b.WriteByte(']')

	case NodeJoin:
		b.WriteString("(")
		for i, k := range p.Keys {
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "%d=%d", k.Left, k.Right)
		}
		fmt.Fprintf(&b, ")<-%s,%s", p.Child1.key, p.Child2.key)

	case NodeMultiwayJoin:
		b.WriteString("{eq:")
		for i, class := range p.Equalities {
			if i > 0 {
				b.WriteByte(';')
			}
			writeAttrs(&b, class)
		}
		b.WriteString(",res:")
		writeAttrs(&b, p.Results)
		b.WriteString("}<-[")
		for i, src := range p.Sources {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(src.key)
		}
		b.WriteByte(']')
	}

	return b.String()
}

func writeAttrs(b *strings.Builder, attrs []Attr) {
	for i, a := range attrs {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(b, "%d.%d", a.Source, a.Column)
	}
}

// Key returns the plan's memoized structural cache key: two plans built
// from equal inputs via equal sequences of constructors always compare
// equal by Key(), even if they are different *Plan allocations, which is
// what lets Stash and TraceManager share cached collections across
// independently constructed but structurally identical query fragments.
func (p *Plan) Key() string { return p.key }

// Equal reports whether p and o are structurally identical plans.
func (p *Plan) Equal(o *Plan) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.key == o.key
}
