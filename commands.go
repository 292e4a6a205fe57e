package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Aljumaily/hlcd-search/benchmark"
	"github.com/Aljumaily/hlcd-search/flags"
	"github.com/Aljumaily/hlcd-search/hlcd"
	"github.com/Aljumaily/hlcd-search/kat"
	"github.com/Aljumaily/hlcd-search/logging"
	"github.com/Aljumaily/hlcd-search/report"
	"github.com/Aljumaily/hlcd-search/store"
)

var logger = logging.MustGetLogger("main")

func searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search a generator matrix for every code given",
		Args:  cobra.NoArgs,
		RunE:  runSearch,
	}
	flags.AddCodeFlags(cmd.Flags())
	flags.AddSearchFlags(cmd.Flags())
	return cmd
}

func benchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time repeated searches and write the results as JSON",
		Args:  cobra.NoArgs,
		RunE:  runBench,
	}
	flags.AddCodeFlags(cmd.Flags())
	flags.AddSearchFlags(cmd.Flags())
	flags.AddBenchmarkFlags(cmd.Flags())
	return cmd
}

func verifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Recompute and check cached generator matrices",
		Args:  cobra.NoArgs,
		RunE:  runVerify,
	}
	flags.AddCodeFlags(cmd.Flags())
	flags.AddSearchFlags(cmd.Flags())
	return cmd
}

func katCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kat <file.rsp>",
		Short: "Run the searches of a known answer file and compare the outcomes",
		Args:  cobra.ExactArgs(1),
		RunE:  runKat,
	}
	flags.AddSearchFlags(cmd.Flags())
	return cmd
}

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and prune the result cache",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Print every cached result",
		Args:  cobra.NoArgs,
		RunE:  runCacheList,
	}
	flags.AddCacheFlags(list.Flags())

	purge := &cobra.Command{
		Use:   "purge",
		Short: "Remove the cached result of every code given",
		Args:  cobra.NoArgs,
		RunE:  runCachePurge,
	}
	flags.AddCodeFlags(purge.Flags())
	flags.AddCacheFlags(purge.Flags())

	cmd.AddCommand(list, purge)
	return cmd
}

func loadArguments(cmd *cobra.Command) (flags.ApplicationArguments, error) {
	arguments, err := flags.GetApplicationArguments(viper.New(), cmd.Flags())
	if err != nil {
		return arguments, err
	}
	err = logging.Init(logging.Config{Level: arguments.LogLevel, Format: arguments.LogFormat})
	return arguments, err
}

func engineOptions(arguments flags.ApplicationArguments, metrics *hlcd.Metrics) []hlcd.Option {
	opts := []hlcd.Option{
		hlcd.WithLogger(logging.MustGetLogger("hlcd.search")),
		hlcd.WithMetrics(metrics),
		hlcd.WithCombinationCeiling(arguments.MaxCombinations),
	}
	if arguments.ExperimentalConcurrency {
		logger.Warn("the concurrent orthogonality check is experimental and unverified")
		opts = append(opts, hlcd.WithExperimentalConcurrency())
	}
	return opts
}

func withTimeout(ctx context.Context, arguments flags.ApplicationArguments) (context.Context, context.CancelFunc) {
	if arguments.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, arguments.Timeout)
}

// serveMetrics exposes reg while a command runs. The returned function stops the server.
func serveMetrics(address string, reg *prometheus.Registry) func() {
	if address == "" {
		return func() {}
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: address, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("metrics server on %s failed: %s", address, err)
		}
	}()
	logger.Infof("serving metrics on %s/metrics", address)
	return func() { _ = server.Close() }
}

func openCache(arguments flags.ApplicationArguments) (*store.Store, error) {
	if arguments.NoCache || arguments.CachePath == "" {
		return nil, nil
	}
	return store.Open(arguments.CachePath)
}

// openRequiredCache is openCache for commands that only work on the cache
func openRequiredCache(cmd string, arguments flags.ApplicationArguments) (*store.Store, error) {
	cache, err := openCache(arguments)
	if err != nil {
		return nil, err
	}
	if cache == nil {
		return nil, errors.Errorf("%s reads the result cache, it cannot run with --no-cache", cmd)
	}
	return cache, nil
}

func printMatrix(w io.Writer, params hlcd.CodeParameters, found, cached bool, matrix fmt.Stringer) {
	from := ""
	if cached {
		from = " (cached)"
	}
	if !found {
		fmt.Fprintf(w, "%s%s: no generator matrix exists under the search restrictions\n", params, from)
		return
	}
	fmt.Fprintf(w, "%s%s:\n%s\n", params, from, matrix)
}

func writeReport(path string, bars []*charts.Bar) error {
	if path == "" || len(bars) == 0 {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "could not create %s", path)
	}
	defer f.Close()
	if err := report.Render(f, bars...); err != nil {
		return err
	}
	logger.Infof("weight distribution written to %s", path)
	return nil
}

func runSearch(cmd *cobra.Command, _ []string) error {
	arguments, err := loadArguments(cmd)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics := hlcd.NewMetrics(reg)
	defer serveMetrics(arguments.MetricsAddress, reg)()

	cache, err := openCache(arguments)
	if err != nil {
		return err
	}
	if cache != nil {
		defer cache.Close()
	}

	var bars []*charts.Bar
	for _, code := range arguments.Codes {
		params, err := code.Params()
		if err != nil {
			return err
		}

		matrix, found, cached, err := searchOrRecall(cmd.Context(), arguments, params, metrics, cache)
		if err != nil {
			return err
		}
		printMatrix(cmd.OutOrStdout(), params, found, cached, matrix)

		if arguments.ReportPath != "" && found {
			r, err := hlcd.VerifyWithCeiling(params, matrix, nil, arguments.MaxCombinations)
			if err != nil {
				return err
			}
			bars = append(bars, report.WeightChart(params, r))
		}
	}
	return writeReport(arguments.ReportPath, bars)
}

// searchOrRecall returns the cached matrix for params when there is one and
// searches otherwise. The third result reports a cache hit.
func searchOrRecall(ctx context.Context, arguments flags.ApplicationArguments, params hlcd.CodeParameters,
	metrics *hlcd.Metrics, cache *store.Store) (*hlcd.Matrix, bool, bool, error) {
	if cache != nil {
		rec, err := cache.Get(params)
		if err != nil {
			return nil, false, false, err
		}
		if rec != nil {
			logger.Infow("using cached result", "code", params.String(), "searched_at", rec.SearchedAt)
			matrix, err := rec.Matrix()
			return matrix, rec.Found, true, err
		}
	}

	ctx, cancel := withTimeout(ctx, arguments)
	defer cancel()
	result, err := hlcd.RunSearch(ctx, params, engineOptions(arguments, metrics)...)
	if err != nil {
		return nil, false, false, err
	}
	if cache != nil {
		if err := cache.Put(result); err != nil {
			return nil, false, false, err
		}
	}
	return result.Matrix, result.Found, false, nil
}

func runBench(cmd *cobra.Command, _ []string) error {
	arguments, err := loadArguments(cmd)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics := hlcd.NewMetrics(reg)
	defer serveMetrics(arguments.MetricsAddress, reg)()

	for _, code := range arguments.Codes {
		params, err := code.Params()
		if err != nil {
			return err
		}
		ctx, cancel := withTimeout(cmd.Context(), arguments)
		results, path, err := benchmark.ParameterSet(ctx, params, arguments.AmountBenchmarkingSamples,
			arguments.BenchmarkDirectory, engineOptions(arguments, metrics)...)
		cancel()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: found=%t samples=%d -> %s\n", results.Code, results.Found, len(results.Search), path)
	}
	return nil
}

func runVerify(cmd *cobra.Command, _ []string) error {
	arguments, err := loadArguments(cmd)
	if err != nil {
		return err
	}
	cache, err := openRequiredCache("verify", arguments)
	if err != nil {
		return err
	}
	defer cache.Close()

	var bars []*charts.Bar
	failed := 0
	for _, code := range arguments.Codes {
		params, err := code.Params()
		if err != nil {
			return err
		}
		rec, err := cache.Get(params)
		if err != nil {
			return err
		}
		if rec == nil {
			return errors.Errorf("no cached result for %s, run search first", params)
		}
		if !rec.Found {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: cached as not found, nothing to verify\n", params)
			continue
		}

		matrix, err := rec.Matrix()
		if err != nil {
			return err
		}
		r, err := hlcd.VerifyWithCeiling(params, matrix, nil, arguments.MaxCombinations)
		if err != nil {
			return err
		}
		if r.OK() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok, minimum distance %d, det(G·Ḡᵗ) = %d\n", params, r.MinimumDistance, r.Determinant)
		} else {
			failed++
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", params, strings.Join(r.Violations, "; "))
		}
		bars = append(bars, report.WeightChart(params, r))
	}

	if err := writeReport(arguments.ReportPath, bars); err != nil {
		return err
	}
	if failed > 0 {
		return errors.Errorf("%d cached matrices failed verification", failed)
	}
	return nil
}

func runKat(cmd *cobra.Command, args []string) error {
	arguments, err := loadArguments(cmd)
	if err != nil {
		return err
	}
	katDataList, err := kat.ParseKatFile(args[0])
	if err != nil {
		return err
	}

	metrics := hlcd.NewMetrics(nil)
	failed := 0
	for _, katData := range katDataList {
		ctx, cancel := withTimeout(cmd.Context(), arguments)
		err := kat.CheckKat(ctx, katData, engineOptions(arguments, metrics)...)
		cancel()
		if err != nil {
			failed++
			fmt.Fprintf(cmd.OutOrStdout(), "count = %d: FAIL %s\n", katData.Count(), err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "count = %d: ok\n", katData.Count())
	}
	if failed > 0 {
		return errors.Errorf("%d of %d known answers failed", failed, len(katDataList))
	}
	return nil
}

func runCacheList(cmd *cobra.Command, _ []string) error {
	arguments, err := loadArguments(cmd)
	if err != nil {
		return err
	}
	cache, err := openRequiredCache("cache list", arguments)
	if err != nil {
		return err
	}
	defer cache.Close()

	records, err := cache.List()
	if err != nil {
		return err
	}
	for _, rec := range records {
		fmt.Fprintf(cmd.OutOrStdout(), "%s hlcd=%t found=%t searched_at=%s\n",
			rec.Code(), rec.HLCD, rec.Found, rec.SearchedAt.Format(time.RFC3339))
	}
	logger.Debugf("%d cached results in %s", len(records), arguments.CachePath)
	return nil
}

func runCachePurge(cmd *cobra.Command, _ []string) error {
	arguments, err := loadArguments(cmd)
	if err != nil {
		return err
	}
	cache, err := openRequiredCache("cache purge", arguments)
	if err != nil {
		return err
	}
	defer cache.Close()

	for _, code := range arguments.Codes {
		params, err := code.Params()
		if err != nil {
			return err
		}
		if err := cache.Delete(params); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: purged\n", params)
	}
	return nil
}
