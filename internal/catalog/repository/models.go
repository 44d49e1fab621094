package repository

import (
	"fmt"
	"strconv"
	"time"
)

// HistoryEntry represents a history row.
type HistoryEntry struct {
	ID        int64
	Command   string
	Timestamp time.Time
}

// Macro represents a macro row.
type Macro struct {
	Name  string
	Query string
}

func toInt64(v any) (int64, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case int32:
		return int64(t), nil
	case int:
		return int64(t), nil
	case float64:
		return int64(t), nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected integer type %T", v)
	}
}
