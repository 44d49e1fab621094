package catalog

import (
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/sidosera/ttl/internal/executor"
)

// FingerprintModulus reduces the combined table hashes.
const FingerprintModulus = 1_000_000_007

const fingerprintBase = 31

// TableDigest is the order-independent hash of one table's rows.
type TableDigest struct {
	Name string
	Hash uint64
}

// DigestTable hashes every row of df and folds the row hashes with a
// wrapping sum, so row order never matters and duplicate rows still count.
func DigestTable(name string, df *executor.DataFrame) TableDigest {
	var sum uint64
	if df != nil {
		for _, rec := range df.Rows {
			sum += HashRecord(name, rec)
		}
	}
	return TableDigest{Name: name, Hash: sum}
}

// HashRecord hashes rec with its fields in column-name order.
func HashRecord(table string, rec executor.Record) uint64 {
	cols := make([]string, 0, len(rec))
	for c := range rec {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	d := xxhash.New()
	_, _ = d.WriteString(table)
	_, _ = d.Write([]byte{0})
	for _, c := range cols {
		_, _ = d.WriteString(c)
		_, _ = d.Write([]byte{'='})
		_, _ = d.WriteString(encodeValue(rec[c]))
		_, _ = d.Write([]byte{0x1f})
	}
	return d.Sum64()
}

// encodeValue tags each value with its kind so that 1 and '1' differ.
func encodeValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "n:"
	case string:
		return "s:" + t
	case []byte:
		return "s:" + string(t)
	case bool:
		return "b:" + strconv.FormatBool(t)
	case int:
		return "i:" + strconv.FormatInt(int64(t), 10)
	case int8:
		return "i:" + strconv.FormatInt(int64(t), 10)
	case int16:
		return "i:" + strconv.FormatInt(int64(t), 10)
	case int32:
		return "i:" + strconv.FormatInt(int64(t), 10)
	case int64:
		return "i:" + strconv.FormatInt(t, 10)
	case uint8:
		return "i:" + strconv.FormatUint(uint64(t), 10)
	case uint16:
		return "i:" + strconv.FormatUint(uint64(t), 10)
	case uint32:
		return "i:" + strconv.FormatUint(uint64(t), 10)
	case uint64:
		return "i:" + strconv.FormatUint(t, 10)
	case *big.Int:
		return "i:" + t.String()
	case float32:
		return "f:" + strconv.FormatFloat(float64(t), 'g', -1, 32)
	case float64:
		return "f:" + strconv.FormatFloat(t, 'g', -1, 64)
	case time.Time:
		return "t:" + t.UTC().Format(time.RFC3339Nano)
	default:
		return "v:" + fmt.Sprint(t)
	}
}

// Combine folds per-table digests, ordered by table name, into one scalar:
// the sum of (hash mod P) * 31^rank over 1-based ranks, reduced mod P.
func Combine(tables []TableDigest) uint64 {
	sorted := make([]TableDigest, len(tables))
	copy(sorted, tables)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var acc uint64
	pow := uint64(1)
	for _, t := range sorted {
		pow = pow * fingerprintBase % FingerprintModulus
		acc = (acc + (t.Hash%FingerprintModulus)*pow) % FingerprintModulus
	}
	return acc
}
