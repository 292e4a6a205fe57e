package benchmark

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/Aljumaily/hlcd-search/hlcd"
	"github.com/Aljumaily/hlcd-search/logging"
)

const fileName = "results.json"

var logger = logging.MustGetLogger("benchmark")

type Results struct {
	Code             string  `json:"code"`
	Key              string  `json:"key"`
	Found            bool    `json:"found"`
	RecursiveCalls   uint64  `json:"recursive_calls"`
	CandidatesTested uint64  `json:"candidates_tested"`
	Search           []int64 `json:"search_ns"`
	Verify           []int64 `json:"verify_ns"`
}

// ParameterSet times n searches for params, and the verification of each
// found matrix, and writes the results as JSON into directory. It returns
// the path written.
func ParameterSet(ctx context.Context, params hlcd.CodeParameters, n int, directory string, opts ...hlcd.Option) (*Results, string, error) {
	if n < 1 {
		return nil, "", errors.Errorf("amount of samples must be positive, was %d", n)
	}

	results := &Results{
		Code:   params.String(),
		Key:    params.Key(),
		Search: make([]int64, n),
		Verify: make([]int64, 0, n),
	}

	for i := 0; i < n; i++ {
		before := time.Now()
		result, err := hlcd.RunSearch(ctx, params, opts...)
		if err != nil {
			return nil, "", err
		}
		results.Search[i] = time.Since(before).Nanoseconds()
		results.Found = result.Found
		results.RecursiveCalls = result.RecursiveCalls
		results.CandidatesTested = result.CandidatesTested

		if !result.Found {
			continue
		}
		before = time.Now()
		if _, err := hlcd.Verify(params, result.Matrix, result.Combinations); err != nil {
			return nil, "", err
		}
		results.Verify = append(results.Verify, time.Since(before).Nanoseconds())
	}

	// Write the results to JSON in the results directory
	resultsJson, err := json.MarshalIndent(results, "", " ")
	if err != nil {
		return nil, "", errors.Wrap(err, "could not encode benchmark results")
	}
	if err := os.MkdirAll(directory, 0755); err != nil {
		return nil, "", errors.Wrapf(err, "could not create %s", directory)
	}
	path := filepath.Join(directory, fmt.Sprintf("paramset-%d-%d-%d-%d-%s-%s",
		params.N(), params.K(), params.D(), params.Base(), time.Now().Format("2006-01-02-15-04-05"), fileName))
	if err := os.WriteFile(path, resultsJson, 0644); err != nil {
		return nil, "", errors.Wrapf(err, "could not write %s", path)
	}

	logger.Infow("benchmark written", "code", results.Code, "samples", n, "path", path)
	return results, path, nil
}
