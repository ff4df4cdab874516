package logging

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wbrown/flowbase/datum"
	"github.com/wbrown/flowbase/relation"
)

func TestRelationTableEmpty(t *testing.T) {
	out := RelationTable([]string{"a", "b"}, relation.New())
	require.Contains(t, out, "No rows")
}

func TestRelationTableRendersRows(t *testing.T) {
	c := relation.New()
	c.Add(datum.Tuple{datum.Int(1), datum.String("x")}, 1)

	out := RelationTable([]string{"id", "name"}, c)
	require.True(t, strings.Contains(out, "1"))
	require.True(t, strings.Contains(out, "x"))
	require.True(t, strings.Contains(out, "1 rows"))
}
