package kat

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aljumaily/hlcd-search/hlcd"
)

const katFile = "kat_files/HLCD_KAT.rsp"

func TestKat(t *testing.T) {
	CheckKatFile(katFile, t)
}

func TestKatConcurrent(t *testing.T) {
	katDataList, err := ParseKatFile(katFile)
	require.NoError(t, err)

	for _, katData := range katDataList {
		params, err := katData.Params(hlcd.WithMultithreading(true))
		require.NoError(t, err)
		result, err := hlcd.RunSearch(context.Background(), params, hlcd.WithExperimentalConcurrency())
		require.NoError(t, err)
		require.Equal(t, katData.found, result.Found, "entry %d", katData.Count())
	}
}

func CheckKatFile(fileName string, t *testing.T) {
	katDataList, err := ParseKatFile(fileName)
	require.NoError(t, err)
	require.Len(t, katDataList, 7)

	for _, katData := range katDataList {
		if err := CheckKat(context.Background(), katData); err != nil {
			t.Error("entry", katData.Count(), err)
		}
	}
}

func TestParseKatData(t *testing.T) {
	input := `# comment

count = 4
n = 5
k = 1
d = 5
base = 4
hlcd = true
found = true
distance = 5
rows = 11111
`
	katDataList, err := ParseKatData(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, []Data{{
		count: 4, n: 5, k: 1, d: 5, base: 4,
		hlcd: true, found: true, distance: 5,
		rows: []string{"11111"},
	}}, katDataList)
}

func TestParseKatDataRejectsMalformedEntries(t *testing.T) {
	for name, input := range map[string]string{
		"wrong order":  "count = 0\nk = 1\n",
		"bad int":      "count = x\n",
		"bad bool":     "count = 0\nn = 5\nk = 1\nd = 5\nbase = 4\nhlcd = maybe\n",
		"missing rows": "count = 0\nn = 5\nk = 1\nd = 5\nbase = 4\nhlcd = true\nfound = true\ndistance = 5\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseKatData(strings.NewReader(input))
			require.Error(t, err)
		})
	}
}

func TestCheckKatDetectsWrongAnswer(t *testing.T) {
	wrong := Data{n: 4, k: 1, d: 4, base: 4, hlcd: true, found: true, distance: 4}
	require.Error(t, CheckKat(context.Background(), wrong))

	wrong = Data{n: 5, k: 1, d: 5, base: 4, hlcd: true, found: true, distance: 5, rows: []string{"11112"}}
	require.Error(t, CheckKat(context.Background(), wrong))
}
