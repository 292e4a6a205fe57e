package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aljumaily/hlcd-search/hlcd"
	"github.com/Aljumaily/hlcd-search/store"
)

// execute runs a fresh command tree with args and returns what it printed
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newMainCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(args, "--log-level=error"))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func cachedRecord(t *testing.T, path string, params hlcd.CodeParameters) *store.Record {
	t.Helper()
	s, err := store.Open(path)
	require.NoError(t, err)
	defer s.Close()
	rec, err := s.Get(params)
	require.NoError(t, err)
	return rec
}

func TestSearchFillsAndReadsCache(t *testing.T) {
	cache := filepath.Join(t.TempDir(), "cache")
	params, err := hlcd.NewCodeParameters(5, 2, 3, 4)
	require.NoError(t, err)

	first, err := execute(t, "search", "--n=5", "--k=2", "--cache="+cache)
	require.NoError(t, err)
	assert.Equal(t, "[5, 2, 3]_4:\n10111\n01012\n", first)

	rec := cachedRecord(t, cache, params)
	require.NotNil(t, rec)
	assert.True(t, rec.Found)
	assert.Equal(t, []string{"10111", "01012"}, rec.Rows)

	second, err := execute(t, "search", "--n=5", "--k=2", "--cache="+cache)
	require.NoError(t, err)
	assert.Equal(t, "[5, 2, 3]_4 (cached):\n10111\n01012\n", second)

	// a different switch is a different cache entry
	other, err := execute(t, "search", "--n=5", "--k=2", "--restricted=false", "--cache="+cache)
	require.NoError(t, err)
	assert.NotContains(t, other, "(cached)")
}

func TestSearchCachesMissingCode(t *testing.T) {
	cache := filepath.Join(t.TempDir(), "cache")

	out, err := execute(t, "search", "--n=3", "--k=3", "--cache="+cache)
	require.NoError(t, err)
	assert.Equal(t, "[3, 3, 3]_4: no generator matrix exists under the search restrictions\n", out)

	out, err = execute(t, "search", "--n=3", "--k=3", "--cache="+cache)
	require.NoError(t, err)
	assert.Equal(t, "[3, 3, 3]_4 (cached): no generator matrix exists under the search restrictions\n", out)
}

func TestSearchWithoutCache(t *testing.T) {
	cache := filepath.Join(t.TempDir(), "cache")

	for i := 0; i < 2; i++ {
		out, err := execute(t, "search", "--n=5", "--k=2", "--no-cache", "--cache="+cache)
		require.NoError(t, err)
		assert.Equal(t, "[5, 2, 3]_4:\n10111\n01012\n", out)
	}
	assert.NoDirExists(t, cache)
}

func TestSearchRejectsOversizedStore(t *testing.T) {
	_, err := execute(t, "search", "--n=20", "--k=14", "--no-cache")
	require.ErrorIs(t, err, hlcd.ErrCapacityExceeded)

	_, err = execute(t, "search", "--n=5", "--k=2", "--no-cache", "--max-combinations=8")
	require.ErrorIs(t, err, hlcd.ErrCapacityExceeded)
}

func TestSearchCodesFromConfig(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "codes.yaml")
	require.NoError(t, os.WriteFile(config, []byte(`
no-cache: true
codes:
  - n: 5
    k: 2
    d: 3
  - n: 7
    k: 4
    d: 3
    base: 2
    hlcd: false
`), 0644))
	cache := filepath.Join(dir, "cache")

	out, err := execute(t, "search", "--config="+config, "--cache="+cache)
	require.NoError(t, err)
	assert.Equal(t, "[5, 2, 3]_4:\n10111\n01012\n"+
		"[7, 4, 3]_2:\n1000111\n0100011\n0010101\n0001110\n", out)
	assert.NoDirExists(t, cache)
}

func TestSearchWritesReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.html")

	_, err := execute(t, "search", "--n=5", "--k=2", "--no-cache", "--report="+path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "echarts")
}

func TestVerifyCachedResults(t *testing.T) {
	cache := filepath.Join(t.TempDir(), "cache")

	_, err := execute(t, "search", "--n=5", "--k=2", "--cache="+cache)
	require.NoError(t, err)
	out, err := execute(t, "verify", "--n=5", "--k=2", "--cache="+cache)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "[5, 2, 3]_4: ok, minimum distance 3, "), out)

	_, err = execute(t, "search", "--n=3", "--k=3", "--cache="+cache)
	require.NoError(t, err)
	out, err = execute(t, "verify", "--n=3", "--k=3", "--cache="+cache)
	require.NoError(t, err)
	assert.Equal(t, "[3, 3, 3]_4: cached as not found, nothing to verify\n", out)

	_, err = execute(t, "verify", "--n=7", "--k=4", "--cache="+cache)
	require.ErrorContains(t, err, "no cached result for [7, 4, 3]_4")

	_, err = execute(t, "verify", "--n=5", "--k=2", "--no-cache", "--cache="+cache)
	require.ErrorContains(t, err, "cannot run with --no-cache")
}

func TestVerifyReportsBrokenMatrix(t *testing.T) {
	cache := filepath.Join(t.TempDir(), "cache")
	params, err := hlcd.NewCodeParameters(5, 2, 3, 4)
	require.NoError(t, err)
	m, err := hlcd.NewMatrixFromDigits(4, [][]byte{{1, 0, 1, 1, 1}, {1, 0, 1, 1, 1}})
	require.NoError(t, err)

	s, err := store.Open(cache)
	require.NoError(t, err)
	require.NoError(t, s.Put(&hlcd.Result{Params: params, Matrix: m, Found: true}))
	require.NoError(t, s.Close())

	out, err := execute(t, "verify", "--n=5", "--k=2", "--cache="+cache)
	require.ErrorContains(t, err, "1 cached matrices failed verification")
	assert.Contains(t, out, "[5, 2, 3]_4: ")
	assert.Contains(t, out, "minimum distance 0 is below 3")
}

func TestKatCommand(t *testing.T) {
	out, err := execute(t, "kat", filepath.Join("kat", "kat_files", "HLCD_KAT.rsp"))
	require.NoError(t, err)
	for _, count := range []string{"0", "1", "2", "3", "4", "5", "6"} {
		assert.Contains(t, out, "count = "+count+": ok\n")
	}

	wrong := filepath.Join(t.TempDir(), "wrong.rsp")
	require.NoError(t, os.WriteFile(wrong, []byte(`count = 0
n = 3
k = 3
d = 3
base = 4
hlcd = true
found = true
distance = 3
rows =
`), 0644))
	out, err = execute(t, "kat", wrong)
	require.ErrorContains(t, err, "1 of 1 known answers failed")
	assert.Contains(t, out, "count = 0: FAIL")
}

func TestCacheListAndPurge(t *testing.T) {
	cache := filepath.Join(t.TempDir(), "cache")
	_, err := execute(t, "search", "--n=5", "--k=2", "--cache="+cache)
	require.NoError(t, err)
	_, err = execute(t, "search", "--n=7", "--k=4", "--base=2", "--cache="+cache)
	require.NoError(t, err)

	out, err := execute(t, "cache", "list", "--cache="+cache)
	require.NoError(t, err)
	assert.Contains(t, out, "[5, 2, 3]_4 hlcd=true found=true")
	assert.Contains(t, out, "[7, 4, 3]_2 hlcd=false found=true")
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2)

	out, err = execute(t, "cache", "purge", "--n=5", "--k=2", "--cache="+cache)
	require.NoError(t, err)
	assert.Equal(t, "[5, 2, 3]_4: purged\n", out)

	out, err = execute(t, "cache", "list", "--cache="+cache)
	require.NoError(t, err)
	assert.NotContains(t, out, "[5, 2, 3]_4")
	assert.Contains(t, out, "[7, 4, 3]_2")

	_, err = execute(t, "cache", "list", "--no-cache")
	require.ErrorContains(t, err, "cannot run with --no-cache")
	_, err = execute(t, "cache", "purge", "--cache="+cache)
	require.Error(t, err)
}
