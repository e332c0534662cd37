package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"reassort/internal/stats"
	"reassort/internal/storage"
	"reassort/internal/sweep"
	reassortapi "reassort/pkg/reassort"
)

const (
	dataDir    = "data"
	exportsDir = "exports"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "reset":
		return runReset(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "sweep":
		return runSweep(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "reassort.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := reassortapi.New(reassortapi.Options{StoreKind: *storeKind, DBPath: *dbPath, DataDir: dataDir})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runReset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "reassort.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := reassortapi.New(reassortapi.Options{StoreKind: *storeKind, DBPath: *dbPath, DataDir: dataDir})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Reset(ctx); err != nil {
		return err
	}

	fmt.Printf("reset store=%s\n", *storeKind)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run config JSON path")
	runID := fs.String("run-id", "", "explicit run id (optional)")
	destination := fs.String("dest", "", "destination label recorded with the run")
	segmentLength := fs.Int("L", 300, "bases per segment")
	mutationRate := fs.Float64("mu", 0.0005, "mutation rate per base per generation")
	selection := fs.Float64("s", 0.05, "fitness decrease per deleterious mutation")
	cost := fs.Float64("cost", 0, "fitness penalty for carrying two segments")
	capacity := fs.Int("K", 1000, "carrying capacity")
	initialSize := fs.Int("N0", 1000, "initial population size")
	singleRatio := fs.Float64("n1r", 0.5, "initial fraction of single-segment agents")
	reassortment := fs.Float64("r", 0.5, "probability a reproducing pair reassorts")
	generations := fs.Int("gens", 10, "generation count")
	replicates := fs.Int("rep", 1, "replicate count")
	back := fs.Bool("back", false, "enable back mutation")
	krecord := fs.String("krecord", "mean", "mutation-load statistic: mean|full|min")
	timestep := fs.Bool("timestep", false, "record every generation instead of final state only")
	untilExt := fs.Bool("untilext", false, "run each replicate until one subpopulation is extinct")
	seed := fs.Uint64("seed", 1, "rng seed")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "reassort.db", "sqlite database path")
	noArtifacts := fs.Bool("no-artifacts", false, "skip writing config.json/records.csv/summary.json under the data dir")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	req, err := loadOrDefaultRunRequest(*configPath)
	if err != nil {
		return err
	}
	err = overrideFromFlags(&req, setFlags, map[string]any{
		"run-id":   *runID,
		"dest":     *destination,
		"L":        *segmentLength,
		"mu":       *mutationRate,
		"s":        *selection,
		"cost":     *cost,
		"K":        *capacity,
		"N0":       *initialSize,
		"n1r":      *singleRatio,
		"r":        *reassortment,
		"gens":     *generations,
		"rep":      *replicates,
		"back":     *back,
		"krecord":  *krecord,
		"timestep": *timestep,
		"untilext": *untilExt,
		"seed":     *seed,
	})
	if err != nil {
		return err
	}
	req.WriteArtifacts = !*noArtifacts

	client, err := reassortapi.New(reassortapi.Options{StoreKind: *storeKind, DBPath: *dbPath, DataDir: dataDir})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "reassortctl"})
	logger.Info("run starting",
		"rep", req.Params.Replicates,
		"gens", req.Params.Generations,
		"N0", req.Params.InitialSize,
		"K", req.Params.Capacity,
		"r", req.Params.Reassortment,
		"seed", req.Params.Seed,
	)

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("run completed run_id=%s replicates=%d records=%s extinct=%d elapsed=%s\n",
		summary.RunID,
		summary.Summary.ReplicatesRun,
		humanize.Comma(int64(summary.Summary.RecordCount)),
		summary.Summary.ExtinctReplicates,
		summary.Elapsed,
	)
	fmt.Printf("final_pop1=%d final_pop2=%d\n", summary.Summary.FinalPop1, summary.Summary.FinalPop2)
	if summary.ArtifactsDir != "" {
		fmt.Printf("artifacts_dir=%s\n", filepath.Clean(summary.ArtifactsDir))
	}
	return nil
}

// axisFlag collects repeated -axis name=v1,v2,... definitions.
type axisFlag struct {
	axes []sweep.Axis
}

func (a *axisFlag) String() string {
	parts := make([]string, 0, len(a.axes))
	for _, axis := range a.axes {
		parts = append(parts, axis.Name)
	}
	return strings.Join(parts, ",")
}

func (a *axisFlag) Set(value string) error {
	name, list, ok := strings.Cut(value, "=")
	if !ok || name == "" || list == "" {
		return fmt.Errorf("axis must look like name=v1,v2,... got %q", value)
	}
	var values []float64
	for _, field := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return fmt.Errorf("axis %s: %w", name, err)
		}
		values = append(values, v)
	}
	a.axes = append(a.axes, sweep.Axis{Name: name, Values: values})
	return nil
}

func runSweep(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sweep", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional base run config JSON path")
	destination := fs.String("dest", "", "sweep destination label (required)")
	workers := fs.Int("workers", 4, "parallel sweep cells")
	baseSeed := fs.Uint64("base-seed", 1, "seed for cell 0; cell i uses base-seed+i")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "reassort.db", "sqlite database path")
	jsonOut := fs.Bool("json", false, "emit cell results as JSON")
	var axes axisFlag
	fs.Var(&axes, "axis", "swept parameter as name=v1,v2,... (repeatable; names: mu,s,cost,r,n1r,L,N0,K,gen_num,rep)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *destination == "" {
		return errors.New("sweep requires --dest")
	}
	if len(axes.axes) == 0 {
		return errors.New("sweep requires at least one --axis")
	}

	req, err := loadOrDefaultRunRequest(*configPath)
	if err != nil {
		return err
	}

	client, err := reassortapi.New(reassortapi.Options{StoreKind: *storeKind, DBPath: *dbPath, DataDir: dataDir})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "sweep"})
	runner := &sweep.Runner{
		Lab:      client.Lab(),
		Workers:  *workers,
		BaseSeed: *baseSeed,
		Logger:   logger,
	}

	results, err := runner.Run(ctx, req.Params, sweep.Grid{Axes: axes.axes}, *destination)
	if err != nil {
		return err
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	totalRecords := 0
	for _, res := range results {
		totalRecords += res.Summary.RecordCount
		fmt.Printf("cell=%d run_id=%s overrides=%s pop1=%d pop2=%d extinct=%d\n",
			res.Index,
			res.RunID,
			formatOverrides(res.Overrides),
			res.Summary.FinalPop1,
			res.Summary.FinalPop2,
			res.Summary.ExtinctReplicates,
		)
	}
	fmt.Printf("sweep completed cells=%d records=%s\n", len(results), humanize.Comma(int64(totalRecords)))
	return nil
}

func formatOverrides(cell sweep.Cell) string {
	keys := make([]string, 0, len(cell))
	for k := range cell {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%g", k, cell[k]))
	}
	return strings.Join(parts, ",")
}

func runRuns(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	entries, err := stats.ListRunIndex(dataDir)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	if len(entries) > *limit {
		entries = entries[:*limit]
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	for _, e := range entries {
		fmt.Printf("run_id=%s created=%s rep=%d gens=%d seed=%d records=%s\n",
			e.RunID, e.CreatedAtUTC, e.Replicates, e.Generations, e.Seed,
			humanize.Comma(int64(e.RecordCount)),
		)
	}
	return nil
}

func runExport(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "export the most recent run from run index")
	outDir := fs.String("out", exportsDir, "export output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("export requires --run-id or --latest")
	}
	if *latest {
		entries, err := stats.ListRunIndex(dataDir)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return errors.New("no runs available to export")
		}
		*runID = entries[0].RunID
	}

	exportedDir, err := stats.ExportRunArtifacts(dataDir, *runID, *outDir)
	if err != nil {
		return err
	}

	fmt.Printf("exported run_id=%s to=%s\n", *runID, filepath.Clean(exportedDir))
	return nil
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: reassortctl <init|reset|run|sweep|runs|export> [flags]", msg)
}
