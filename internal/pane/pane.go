// Package pane holds the pane rows stored in the catalog and derives the
// render tree the layout painter walks.
package pane

import (
	"fmt"
	"strconv"

	"github.com/sidosera/ttl/internal/executor"
)

// RootID is the id of the pane every tree hangs from.
const RootID = "root"

// Pane types.
const (
	TypeLeaf      = "leaf"
	TypeSplit     = "split"
	TypeContainer = "container"
)

// Directions.
const (
	Horizontal = "horizontal"
	Vertical   = "vertical"
)

// Pane is one row of catalog.pane.
type Pane struct {
	ID           string
	ParentID     *string
	Type         string
	Direction    *string
	Size         *float64
	WidgetType   *string
	WidgetConfig *string
}

// FromFrame decodes pane rows in result order.
func FromFrame(df *executor.DataFrame) ([]Pane, error) {
	out := make([]Pane, 0, df.Len())
	for i := 0; i < df.Len(); i++ {
		id := df.String(i, "id")
		if id == "" {
			return nil, fmt.Errorf("pane row %d: missing id", i)
		}
		size, err := optFloat(df.Value(i, "size"))
		if err != nil {
			return nil, fmt.Errorf("pane %s: size: %w", id, err)
		}
		out = append(out, Pane{
			ID:           id,
			ParentID:     optString(df.Value(i, "parent_id")),
			Type:         df.String(i, "type"),
			Direction:    optString(df.Value(i, "direction")),
			Size:         size,
			WidgetType:   optString(df.Value(i, "widget_type")),
			WidgetConfig: optString(df.Value(i, "widget_config")),
		})
	}
	return out, nil
}

func optString(v any) *string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return &t
	case []byte:
		s := string(t)
		return &s
	default:
		s := fmt.Sprint(t)
		return &s
	}
}

func optFloat(v any) (*float64, error) {
	var f float64
	switch t := v.(type) {
	case nil:
		return nil, nil
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int64:
		f = float64(t)
	case int32:
		f = float64(t)
	case int:
		f = float64(t)
	case string:
		p, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return nil, err
		}
		f = p
	default:
		return nil, fmt.Errorf("unsupported type %T", v)
	}
	return &f, nil
}
