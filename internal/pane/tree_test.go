package pane

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sidosera/ttl/internal/executor"
)

func ptr[T any](v T) *T { return &v }

func leaf(id, parent, dir string) Pane {
	p := Pane{ID: id, ParentID: ptr(parent), Type: TypeLeaf}
	if dir != "" {
		p.Direction = ptr(dir)
	}
	return p
}

func rootPane() Pane { return Pane{ID: RootID, Type: TypeContainer} }

func TestBuildSingleRoot(t *testing.T) {
	n := Build([]Pane{rootPane()}, RootID)
	require.NotNil(t, n)
	require.True(t, n.Leaf())
	require.True(t, n.Focused)
	require.Equal(t, RootID, n.Pane.ID)
}

func TestBuildNoRoot(t *testing.T) {
	require.Nil(t, Build(nil, RootID))
	require.Nil(t, Build([]Pane{leaf("a", "b", "")}, "a"))
}

func TestBuildFirstChildSetsAxis(t *testing.T) {
	panes := []Pane{
		rootPane(),
		leaf("a", RootID, Horizontal),
		leaf("b", RootID, Vertical),
		leaf("c", "a", Vertical),
		leaf("d", "a", ""),
	}
	n := Build(panes, "d")
	require.Equal(t, Column, n.Axis)
	require.Len(t, n.Children, 2)
	require.Equal(t, "a", n.Children[0].Pane.ID)
	require.Equal(t, "b", n.Children[1].Pane.ID)

	a := n.Children[0]
	require.False(t, a.Leaf())
	require.Equal(t, Row, a.Axis)
	require.Equal(t, []string{"c", "d"}, ids(a.Children))

	leaves := n.Leaves()
	require.Equal(t, []string{"c", "d", "b"}, ids(leaves))
	for _, l := range leaves {
		require.Equal(t, l.Pane.ID == "d", l.Focused)
	}
}

func TestBuildNullDirectionIsRow(t *testing.T) {
	n := Build([]Pane{rootPane(), leaf("a", RootID, ""), leaf("b", RootID, Horizontal)}, "")
	require.Equal(t, Row, n.Axis)
}

func TestBuildIgnoresUnreachable(t *testing.T) {
	panes := []Pane{
		rootPane(),
		leaf("a", RootID, Vertical),
		leaf("x", "y", Vertical),
		leaf("y", "x", Vertical),
		leaf("a", "a", Vertical),
	}
	n := Build(panes, "a")
	require.Equal(t, []string{"a"}, ids(n.Leaves()))
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate([]Pane{rootPane(), leaf("a", RootID, Vertical), leaf("b", "a", Horizontal)}))

	cases := []struct {
		name  string
		panes []Pane
		want  error
	}{
		{"empty", nil, ErrNoRoot},
		{"root parent", []Pane{{ID: RootID, ParentID: ptr("a")}, leaf("a", RootID, "")}, ErrRootHasParent},
		{"duplicate", []Pane{rootPane(), leaf("a", RootID, ""), leaf("a", RootID, "")}, ErrDuplicateID},
		{"dangling", []Pane{rootPane(), leaf("a", "ghost", "")}, ErrDanglingParent},
		{"cycle", []Pane{rootPane(), leaf("x", "y", ""), leaf("y", "x", "")}, ErrUnreachablePane},
		{"orphan", []Pane{rootPane(), {ID: "lost", Type: TypeLeaf}}, ErrUnreachablePane},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, Validate(tc.panes), tc.want)
		})
	}
}

func TestFromFrame(t *testing.T) {
	df := &executor.DataFrame{
		Columns: []string{"id", "parent_id", "type", "direction", "size", "widget_type", "widget_config"},
		Rows: []executor.Record{
			{"id": "root", "parent_id": nil, "type": "container", "direction": nil, "size": nil, "widget_type": nil, "widget_config": nil},
			{"id": "p1", "parent_id": "root", "type": "leaf", "direction": "vertical", "size": float64(2), "widget_type": "log", "widget_config": "{}"},
			{"id": "p2", "parent_id": "root", "type": "leaf", "direction": "vertical", "size": int64(1)},
		},
	}
	panes, err := FromFrame(df)
	require.NoError(t, err)
	require.Len(t, panes, 3)
	require.Nil(t, panes[0].ParentID)
	require.Nil(t, panes[0].Size)
	require.Equal(t, "root", *panes[1].ParentID)
	require.Equal(t, 2.0, *panes[1].Size)
	require.Equal(t, "log", *panes[1].WidgetType)
	require.Equal(t, 1.0, *panes[2].Size)
	require.Nil(t, panes[2].WidgetConfig)

	_, err = FromFrame(&executor.DataFrame{Rows: []executor.Record{{"type": "leaf"}}})
	require.Error(t, err)
}

func ids(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Pane.ID
	}
	return out
}
