package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sidosera/ttl/internal/executor"
)

func frame(rows ...executor.Record) *executor.DataFrame {
	return &executor.DataFrame{Rows: rows}
}

func TestDigestTableIgnoresRowOrder(t *testing.T) {
	a := executor.Record{"key": "focused_pane", "value": "root"}
	b := executor.Record{"key": "last_pane_id", "value": ""}
	c := executor.Record{"key": "k", "value": "v"}

	d1 := DigestTable("runtime", frame(a, b, c))
	d2 := DigestTable("runtime", frame(c, a, b))
	require.Equal(t, d1, d2)
}

func TestDigestTableSeesContentChanges(t *testing.T) {
	base := DigestTable("runtime", frame(executor.Record{"key": "k", "value": "v"}))
	changed := DigestTable("runtime", frame(executor.Record{"key": "k", "value": "w"}))
	require.NotEqual(t, base.Hash, changed.Hash)

	// duplicates are a multiset, not a set
	once := DigestTable("t", frame(executor.Record{"x": int64(1)}))
	twice := DigestTable("t", frame(executor.Record{"x": int64(1)}, executor.Record{"x": int64(1)}))
	require.NotEqual(t, once.Hash, twice.Hash)

	// same row under another table name hashes differently
	other := DigestTable("macro", frame(executor.Record{"key": "k", "value": "v"}))
	require.NotEqual(t, base.Hash, other.Hash)
}

func TestHashRecordTypeTagged(t *testing.T) {
	require.NotEqual(t,
		HashRecord("t", executor.Record{"x": int64(1)}),
		HashRecord("t", executor.Record{"x": "1"}))
	require.NotEqual(t,
		HashRecord("t", executor.Record{"x": nil}),
		HashRecord("t", executor.Record{"x": ""}))
	require.Equal(t,
		HashRecord("t", executor.Record{"x": []byte("a")}),
		HashRecord("t", executor.Record{"x": "a"}))
}

func TestDigestEmptyTable(t *testing.T) {
	require.Equal(t, uint64(0), DigestTable("history", frame()).Hash)
	require.Equal(t, uint64(0), DigestTable("history", nil).Hash)
}

func TestCombine(t *testing.T) {
	// 1*31^1 + 2*31^2
	require.Equal(t, uint64(1953), Combine([]TableDigest{{"a", 1}, {"b", 2}}))
	// ranks follow names, not slice order
	require.Equal(t, uint64(1953), Combine([]TableDigest{{"b", 2}, {"a", 1}}))
	require.Equal(t, uint64(0), Combine(nil))

	big := Combine([]TableDigest{{"a", ^uint64(0)}})
	require.Less(t, big, uint64(FingerprintModulus))
	require.Equal(t, (^uint64(0)%FingerprintModulus)*31%FingerprintModulus, big)
}
