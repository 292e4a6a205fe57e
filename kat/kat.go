package kat

import (
	"bufio"
	"context"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/Aljumaily/hlcd-search/hlcd"
)

// Data is one known answer: a parameter set, whether a generator matrix
// exists for it, and optionally the exact matrix the search returns
type Data struct {
	count    int
	n        int
	k        int
	d        int
	base     int
	hlcd     bool
	found    bool
	distance int
	rows     []string
}

func (data Data) Count() int { return data.count }

func (data Data) Params(opts ...hlcd.ParameterOption) (hlcd.CodeParameters, error) {
	opts = append([]hlcd.ParameterOption{hlcd.WithHLCD(data.hlcd)}, opts...)
	return hlcd.NewCodeParameters(data.n, data.k, data.d, data.base, opts...)
}

// ParseKatFile reads a .rsp file
func ParseKatFile(fileName string) ([]Data, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open known answer file %s", fileName)
	}
	defer file.Close()

	return ParseKatData(file)
}

// ParseKatData reads blocks of "key = value" lines separated by blank lines.
// Lines starting with # are comments.
func ParseKatData(r io.Reader) ([]Data, error) {
	var katDataList []Data

	scanner := bufio.NewScanner(r)
	next := func(key string) (string, error) {
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			return splitValue(line, key)
		}
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}

	for {
		var katData Data

		count, err := next("count")
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if katData.count, err = decodeInt("count", count); err != nil {
			return nil, err
		}

		for _, field := range []struct {
			key string
			dst *int
		}{
			{"n", &katData.n},
			{"k", &katData.k},
			{"d", &katData.d},
			{"base", &katData.base},
		} {
			if *field.dst, err = nextInt(next, field.key); err != nil {
				return nil, errors.WithMessagef(err, "entry %d", katData.count)
			}
		}
		if katData.hlcd, err = nextBool(next, "hlcd"); err != nil {
			return nil, errors.WithMessagef(err, "entry %d", katData.count)
		}
		if katData.found, err = nextBool(next, "found"); err != nil {
			return nil, errors.WithMessagef(err, "entry %d", katData.count)
		}
		if katData.distance, err = nextInt(next, "distance"); err != nil {
			return nil, errors.WithMessagef(err, "entry %d", katData.count)
		}
		rows, err := next("rows")
		if err != nil {
			return nil, errors.WithMessagef(unexpectedEOF(err, "rows"), "entry %d", katData.count)
		}
		if rows != "" {
			katData.rows = strings.Split(rows, ",")
		}

		katDataList = append(katDataList, katData)
	}

	return katDataList, nil
}

func unexpectedEOF(err error, key string) error {
	if err == io.EOF {
		return errors.Errorf("missing %q", key)
	}
	return err
}

func nextInt(next func(string) (string, error), key string) (int, error) {
	value, err := next(key)
	if err != nil {
		return 0, unexpectedEOF(err, key)
	}
	return decodeInt(key, value)
}

func nextBool(next func(string) (string, error), key string) (bool, error) {
	value, err := next(key)
	if err != nil {
		return false, unexpectedEOF(err, key)
	}
	result, err := strconv.ParseBool(value)
	return result, errors.Wrapf(err, "%s", key)
}

func splitValue(line, key string) (string, error) {
	name, value, ok := strings.Cut(line, "=")
	if !ok || strings.TrimSpace(name) != key {
		return "", errors.Errorf("expected %q, got %q", key, line)
	}
	return strings.TrimSpace(value), nil
}

func decodeInt(key, value string) (int, error) {
	result, err := strconv.Atoi(value)
	return result, errors.Wrapf(err, "%s", key)
}

// CheckKat searches for the code of a known answer and compares the outcome
func CheckKat(ctx context.Context, katData Data, opts ...hlcd.Option) error {
	params, err := katData.Params()
	if err != nil {
		return err
	}
	result, err := hlcd.RunSearch(ctx, params, opts...)
	if err != nil {
		return err
	}

	if result.Found != katData.found {
		return errors.Errorf("%s: found %t, known answer %t", params, result.Found, katData.found)
	}
	if !result.Found {
		return nil
	}

	if katData.rows != nil {
		if got := strings.Split(result.Matrix.String(), "\n"); !equalRows(got, katData.rows) {
			return errors.Errorf("%s: generated rows %v, known answer %v", params, got, katData.rows)
		}
	}

	report, err := hlcd.Verify(params, result.Matrix, result.Combinations)
	if err != nil {
		return err
	}
	if !report.OK() {
		return errors.Errorf("%s: %s", params, strings.Join(report.Violations, "; "))
	}
	if report.MinimumDistance != katData.distance {
		return errors.Errorf("%s: minimum distance %d, known answer %d", params, report.MinimumDistance, katData.distance)
	}
	return nil
}

func equalRows(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
