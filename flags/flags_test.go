package flags

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aljumaily/hlcd-search/hlcd"
)

func searchFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("search", pflag.ContinueOnError)
	AddGlobalFlags(fs)
	AddCodeFlags(fs)
	AddSearchFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestCodeFromFlags(t *testing.T) {
	fs := searchFlags(t, "--n=7", "--k=4", "--timeout=2s")
	arguments, err := GetApplicationArguments(viper.New(), fs)
	require.NoError(t, err)

	require.Len(t, arguments.Codes, 1)
	code := arguments.Codes[0]
	assert.Equal(t, CodeArguments{N: 7, K: 4, D: 3, Base: 4}, code)
	assert.Equal(t, 2*time.Second, arguments.Timeout)
	assert.Equal(t, hlcd.DefaultCombinationCeiling, arguments.MaxCombinations)
	assert.Equal(t, "info", arguments.LogLevel)
	assert.False(t, arguments.NoCache)

	params, err := code.Params()
	require.NoError(t, err)
	assert.Equal(t, "[7, 4, 3]_4", params.String())
	assert.True(t, params.IsHLCD())
}

func TestBinaryCodeNeedsHLCDOff(t *testing.T) {
	fs := searchFlags(t, "--n=7", "--k=4", "--base=2")
	arguments, err := GetApplicationArguments(viper.New(), fs)
	require.NoError(t, err)
	params, err := arguments.Codes[0].Params()
	require.NoError(t, err)
	assert.False(t, params.IsHLCD())

	fs = searchFlags(t, "--n=7", "--k=4", "--base=2", "--hlcd=true")
	arguments, err = GetApplicationArguments(viper.New(), fs)
	require.NoError(t, err)
	_, err = arguments.Codes[0].Params()
	require.ErrorIs(t, err, hlcd.ErrInvalidCodeParameters)
}

func TestEnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("HLCD_BASE", "2")
	t.Setenv("HLCD_HLCD", "false")
	t.Setenv("HLCD_MAX_COMBINATIONS", "1024")

	fs := searchFlags(t, "--n=7", "--k=4")
	arguments, err := GetApplicationArguments(viper.New(), fs)
	require.NoError(t, err)

	code := arguments.Codes[0]
	assert.Equal(t, 2, code.Base)
	require.NotNil(t, code.HLCD)
	assert.False(t, *code.HLCD)
	assert.Nil(t, code.Restricted)
	assert.Equal(t, uint64(1024), arguments.MaxCombinations)

	// the command line wins
	fs = searchFlags(t, "--n=7", "--k=4", "--base=4", "--hlcd=true")
	arguments, err = GetApplicationArguments(viper.New(), fs)
	require.NoError(t, err)
	assert.Equal(t, 4, arguments.Codes[0].Base)
	assert.True(t, *arguments.Codes[0].HLCD)
}

const config = `
log-level: debug
no-cache: true
codes:
  - n: 7
    k: 4
    d: 3
  - n: 7
    k: 4
    d: 3
    base: 2
    hlcd: false
  - n: 5
    k: 2
    restricted: false
    multithreaded: true
`

func TestCodesFromConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(config), 0644))

	fs := searchFlags(t, "--config="+path)
	arguments, err := GetApplicationArguments(viper.New(), fs)
	require.NoError(t, err)

	assert.Equal(t, "debug", arguments.LogLevel)
	assert.True(t, arguments.NoCache)
	require.Len(t, arguments.Codes, 3)

	first, err := arguments.Codes[0].Params()
	require.NoError(t, err)
	assert.Equal(t, "[7, 4, 3]_4", first.String())

	binary, err := arguments.Codes[1].Params()
	require.NoError(t, err)
	assert.False(t, binary.IsHLCD())

	// d is required in list entries
	_, err = arguments.Codes[2].Params()
	require.ErrorIs(t, err, hlcd.ErrInvalidMinimumDistance)
	assert.True(t, arguments.Codes[2].Multithreaded)
	require.NotNil(t, arguments.Codes[2].Restricted)
	assert.False(t, *arguments.Codes[2].Restricted)
}

func TestSingleCodeFromConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "code.yaml")
	require.NoError(t, os.WriteFile(path, []byte("n: 6\nk: 3\nd: 3\nrestricted: false\n"), 0644))

	arguments, err := GetApplicationArguments(viper.New(), searchFlags(t, "--config="+path))
	require.NoError(t, err)
	require.Len(t, arguments.Codes, 1)
	assert.Equal(t, 6, arguments.Codes[0].N)
	require.NotNil(t, arguments.Codes[0].Restricted)
	assert.False(t, *arguments.Codes[0].Restricted)

	params, err := arguments.Codes[0].Params()
	require.NoError(t, err)
	assert.Equal(t, "[6, 3, 3]_4", params.String())
}

func TestNoCode(t *testing.T) {
	_, err := GetApplicationArguments(viper.New(), searchFlags(t))
	require.ErrorIs(t, err, ErrNoCode)

	_, err = GetApplicationArguments(viper.New(), searchFlags(t, "--config=/does/not/exist.yaml"))
	require.Error(t, err)
}

func TestBenchmarkFlags(t *testing.T) {
	fs := pflag.NewFlagSet("bench", pflag.ContinueOnError)
	AddGlobalFlags(fs)
	AddCodeFlags(fs)
	AddBenchmarkFlags(fs)
	require.NoError(t, fs.Parse([]string{"-b", "3", "--n=5", "--k=2"}))

	arguments, err := GetApplicationArguments(viper.New(), fs)
	require.NoError(t, err)
	assert.Equal(t, 3, arguments.AmountBenchmarkingSamples)
	assert.Equal(t, "benchmark/results", arguments.BenchmarkDirectory)
}
