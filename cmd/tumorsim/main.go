package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/oncodyn/tumorsim/internal/cohort"
	"github.com/oncodyn/tumorsim/internal/config"
	"github.com/oncodyn/tumorsim/internal/metrics"
	"github.com/oncodyn/tumorsim/internal/models"
	"github.com/oncodyn/tumorsim/internal/optim"
	"github.com/oncodyn/tumorsim/internal/store"
	"github.com/oncodyn/tumorsim/internal/therapy"
	"github.com/oncodyn/tumorsim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string

	// solver
	dt        float64
	absErr    float64
	relErr    float64
	method    string
	stabilise bool
	verbose   bool

	// model parameters
	paramFlags []string

	// fixed schedule
	scheduleFlag string
	duration     float64
	dose         float64

	// policy
	policyName     string
	threshold      float64
	adjustFactor   float64
	initialDose    float64
	highDose       float64
	minDose        float64
	withdrawBelow  float64
	intervalLength float64
	offLength      float64
	lookback       int
	refSize        float64
	horizon        float64
	maxCycles      int
	multiplicative bool

	// passaging assay
	passages    int
	passageTime float64
	alternate   bool
	densities   []float64
	passageLoss float64

	// cohort
	numRuns int
	seed    int64
	jitter  float64

	// tuning
	gridFlags  []string
	metricName string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tumorsim",
		Short: "tumour evolution and adaptive therapy simulation lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".tumorsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run a fixed dosing schedule",
		Args:  cobra.ExactArgs(1),
		RunE:  runSchedule,
	}
	addSolverFlags(runCmd)
	runCmd.Flags().StringVar(&scheduleFlag, "schedule", "", "dosing schedule as start:end:dose;... ")
	runCmd.Flags().Float64Var(&duration, "time", 10.0, "duration when no schedule given")
	runCmd.Flags().Float64Var(&dose, "dose", 0.0, "constant dose when no schedule given; negative = max dose")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")

	adaptCmd := &cobra.Command{
		Use:   "adapt [model]",
		Short: "run an adaptive therapy policy",
		Args:  cobra.ExactArgs(1),
		RunE:  runAdaptive,
	}
	addSolverFlags(adaptCmd)
	addPolicyFlags(adaptCmd)
	adaptCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	adaptCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	passageCmd := &cobra.Command{
		Use:   "passage [model]",
		Short: "run a serial-passage assay",
		Args:  cobra.ExactArgs(1),
		RunE:  runPassage,
	}
	addSolverFlags(passageCmd)
	passageCmd.Flags().IntVar(&passages, "passages", 10, "number of passages")
	passageCmd.Flags().Float64Var(&passageTime, "passage-time", 3.0, "length of one passage")
	passageCmd.Flags().Float64Var(&dose, "dose", -1, "on-drug dose; negative = max dose")
	passageCmd.Flags().BoolVar(&alternate, "alternate", false, "alternate drug on/off between passages")
	passageCmd.Flags().Float64SliceVar(&densities, "density", nil, "reseeding density per passage (single value reused)")
	passageCmd.Flags().Float64Var(&passageLoss, "loss", 0.0, "survival loss for sensitive cells passaged on drug")

	cohortCmd := &cobra.Command{
		Use:   "cohort [model]",
		Short: "run a cohort of virtual patients",
		Args:  cobra.ExactArgs(1),
		RunE:  runCohort,
	}
	addSolverFlags(cohortCmd)
	addPolicyFlags(cohortCmd)
	cohortCmd.Flags().IntVar(&numRuns, "runs", 10, "number of replicates")
	cohortCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cohortCmd.Flags().Float64Var(&jitter, "jitter", 0.005, "half-width of the fracRes perturbation")

	tuneCmd := &cobra.Command{
		Use:   "tune [model]",
		Short: "grid-search policy parameters",
		Args:  cobra.ExactArgs(1),
		RunE:  runTune,
	}
	addSolverFlags(tuneCmd)
	addPolicyFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&gridFlags, "grid", nil, "search range as name=v1,v2,... (repeatable)")
	tuneCmd.Flags().StringVar(&metricName, "metric", "final_burden", "metric to minimise")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	liveCmd := &cobra.Command{
		Use:   "live [run_id]",
		Short: "replay a stored run interactively",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list model variants",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range models.List() {
				fmt.Println(name)
			}
		},
	}

	metricsCmd := &cobra.Command{
		Use:   "metrics",
		Short: "list trajectory metrics",
		Run: func(cmd *cobra.Command, args []string) {
			names := metrics.List()
			sort.Strings(names)
			for _, name := range names {
				fmt.Println(name)
			}
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [policy]",
		Short: "list available presets for a policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for policy: %s\n", args[0])
				return nil
			}
			sort.Strings(presets)
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, adaptCmd, passageCmd, cohortCmd, tuneCmd, listCmd, plotCmd, exportJSONCmd, liveCmd, modelsCmd, metricsCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSolverFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "output timestep")
	cmd.Flags().Float64Var(&absErr, "abs-err", config.DefaultAbsErr, "absolute tolerance")
	cmd.Flags().Float64Var(&relErr, "rel-err", config.DefaultRelErr, "relative tolerance")
	cmd.Flags().StringVar(&method, "method", config.DefaultMethod, "integration method (dopri5, rk4, euler)")
	cmd.Flags().BoolVar(&stabilise, "stabilise", false, "clamp small negative populations instead of failing")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "print integration diagnostics")
	cmd.Flags().StringArrayVar(&paramFlags, "param", nil, "model parameter override as name=value (repeatable)")
}

func addPolicyFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&policyName, "policy", "at1", "dosing policy (at1, at2, at50)")
	cmd.Flags().Float64Var(&threshold, "threshold", config.DefaultThreshold, "relative size band")
	cmd.Flags().Float64Var(&adjustFactor, "adjust", config.DefaultAdjustFactor, "dose adjustment fraction (at1)")
	cmd.Flags().Float64Var(&initialDose, "initial-dose", -1, "starting dose; negative = max dose")
	cmd.Flags().Float64Var(&highDose, "high-dose", -1, "high dose; negative = max dose")
	cmd.Flags().Float64Var(&minDose, "min-dose", 0, "low dose")
	cmd.Flags().Float64Var(&withdrawBelow, "withdraw-below", 0, "withdraw treatment below this size (at1)")
	cmd.Flags().Float64Var(&intervalLength, "interval", config.DefaultIntervalLength, "decision interval length")
	cmd.Flags().Float64Var(&offLength, "off-interval", 0, "off-phase interval length (at50); 0 = interval")
	cmd.Flags().IntVar(&lookback, "lookback", config.DefaultLookback, "reference window in decisions (at2)")
	cmd.Flags().Float64Var(&refSize, "ref-size", 0, "fixed reference size (at50); 0 = initial size")
	cmd.Flags().Float64Var(&horizon, "horizon", config.DefaultHorizon, "treatment horizon")
	cmd.Flags().IntVar(&maxCycles, "max-cycles", 0, "stop after this many decisions; 0 = unlimited")
	cmd.Flags().BoolVar(&multiplicative, "multiplicative", false, "multiplicative dose adjustment (at1)")
}

// flagConfig assembles a Config from preset, config file, and flags, in
// ascending precedence.
func flagConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(policyName, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(policyName))
		}
		*cfg = *p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	cfg.Model = model
	if cmd.Flags().Changed("policy") || cfg.Policy == "" {
		cfg.Policy = policyName
	}

	if cmd.Flags().Changed("dt") {
		cfg.Solver.Dt = dt
	}
	if cmd.Flags().Changed("abs-err") {
		cfg.Solver.AbsErr = absErr
	}
	if cmd.Flags().Changed("rel-err") {
		cfg.Solver.RelErr = relErr
	}
	if cmd.Flags().Changed("method") {
		cfg.Solver.Method = method
	}
	if cmd.Flags().Changed("stabilise") {
		cfg.Solver.Stabilise = stabilise
	}
	cfg.Solver.SuppressOutput = !verbose

	pp := &cfg.PolicyParams
	if cmd.Flags().Changed("threshold") {
		pp.Threshold = threshold
	}
	if cmd.Flags().Changed("adjust") {
		pp.AdjustFactor = adjustFactor
	}
	if cmd.Flags().Changed("initial-dose") {
		pp.InitialDose = initialDose
	}
	if cmd.Flags().Changed("high-dose") {
		pp.HighDose = highDose
	}
	if cmd.Flags().Changed("min-dose") {
		pp.MinDose = minDose
	}
	if cmd.Flags().Changed("withdraw-below") {
		pp.WithdrawBelow = withdrawBelow
	}
	if cmd.Flags().Changed("interval") {
		pp.IntervalLength = intervalLength
	}
	if cmd.Flags().Changed("off-interval") {
		pp.OffLength = offLength
	}
	if cmd.Flags().Changed("lookback") {
		pp.Lookback = lookback
	}
	if cmd.Flags().Changed("ref-size") {
		pp.RefSize = refSize
	}
	if cmd.Flags().Changed("horizon") {
		pp.Horizon = horizon
	}
	if cmd.Flags().Changed("max-cycles") {
		pp.MaxCycles = maxCycles
	}
	if cmd.Flags().Changed("multiplicative") {
		pp.Multiplicative = multiplicative
	}

	overrides, err := parseParams(paramFlags)
	if err != nil {
		return nil, err
	}
	if cfg.Params == nil {
		cfg.Params = overrides
	} else {
		for k, v := range overrides {
			cfg.Params[k] = v
		}
	}

	return cfg, nil
}

func buildModel(cfg *config.Config) (*therapy.Model, error) {
	sys, err := models.New(cfg.Model, cfg.Params)
	if err != nil {
		return nil, err
	}
	m := therapy.NewModel(sys)
	m.Solver = *cfg.SolverOptions()
	return m, nil
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, err := flagConfig(cmd, args[0])
	if err != nil {
		return err
	}

	m, err := buildModel(cfg)
	if err != nil {
		return err
	}

	var sched therapy.Schedule
	switch {
	case scheduleFlag != "":
		sched, err = parseSchedule(scheduleFlag)
		if err != nil {
			return err
		}
	case len(cfg.Schedule) > 0:
		sched = cfg.BuildSchedule()
	default:
		d := dose
		if d < 0 {
			d = m.MaxDose()
		}
		sched = therapy.Schedule{{Start: 0, End: duration, Dose: d}}
	}

	fmt.Printf("running %s...\n", cfg.Model)
	start := time.Now()
	ok := m.Simulate(sched, nil)
	elapsed := time.Since(start)

	return report(cfg.Model, "fixed", m, ok, elapsed)
}

func runAdaptive(cmd *cobra.Command, args []string) error {
	cfg, err := flagConfig(cmd, args[0])
	if err != nil {
		return err
	}

	m, err := buildModel(cfg)
	if err != nil {
		return err
	}

	policy, err := cfg.BuildPolicy()
	if err != nil {
		return err
	}

	fmt.Printf("running %s under %s...\n", cfg.Model, policy.Name())
	start := time.Now()
	ok := policy.Run(m)
	elapsed := time.Since(start)

	return report(cfg.Model, policy.Name(), m, ok, elapsed)
}

func runPassage(cmd *cobra.Command, args []string) error {
	cfg, err := flagConfig(cmd, args[0])
	if err != nil {
		return err
	}

	m, err := buildModel(cfg)
	if err != nil {
		return err
	}

	d := dose
	if d < 0 {
		d = m.MaxDose()
	}

	sched := make(therapy.Schedule, 0, passages)
	for i := 0; i < passages; i++ {
		cycleDose := d
		if alternate && i%2 == 1 {
			cycleDose = 0
		}
		start := float64(i) * passageTime
		sched = append(sched, therapy.Interval{Start: start, End: start + passageTime, Dose: cycleDose})
	}

	assay := &therapy.PassageAssay{
		SeedingDensity: densities,
		PassagingLoss:  passageLoss,
		Solver:         cfg.SolverOptions(),
	}

	fmt.Printf("running %s passage assay (%d passages)...\n", cfg.Model, passages)
	start := time.Now()
	ok := assay.Run(m, sched)
	elapsed := time.Since(start)

	return report(cfg.Model, "passage", m, ok, elapsed)
}

func runCohort(cmd *cobra.Command, args []string) error {
	cfg, err := flagConfig(cmd, args[0])
	if err != nil {
		return err
	}

	// Validate the policy spec once before fanning out.
	if _, err := cfg.BuildPolicy(); err != nil {
		return err
	}

	ens := cohort.NewEnsemble(cfg.Model, cfg.Params, numRuns, seed)
	ens.FracResJitter = jitter

	fmt.Printf("running %d replicates of %s under %s...\n", numRuns, cfg.Model, cfg.Policy)
	start := time.Now()
	results, err := ens.Run(context.Background(), func() therapy.Policy {
		policy, _ := cfg.BuildPolicy()
		return policy
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n\n", elapsed)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REP\tFRAC_RES\tOK\tFINAL_SIZE\tTTP")
	for _, res := range results {
		ttp := metrics.TimeToProgression(res.Record, metrics.DefaultProgressionFactor)
		fmt.Fprintf(w, "%d\t%.5f\t%v\t%.1f\t%.2f\n",
			res.Replicate, res.FracRes, res.Success, metrics.FinalBurden(res.Record), ttp)
	}
	return w.Flush()
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := flagConfig(cmd, args[0])
	if err != nil {
		return err
	}
	if len(gridFlags) == 0 {
		return fmt.Errorf("at least one --grid range is required")
	}

	names, ranges, err := parseGrid(gridFlags)
	if err != nil {
		return err
	}

	build := func(params map[string]float64) (*therapy.Model, therapy.Policy, error) {
		cell := *cfg
		pp := &cell.PolicyParams
		for name, val := range params {
			switch name {
			case "threshold":
				pp.Threshold = val
			case "adjust":
				pp.AdjustFactor = val
			case "initial-dose":
				pp.InitialDose = val
			case "high-dose":
				pp.HighDose = val
			case "min-dose":
				pp.MinDose = val
			case "interval":
				pp.IntervalLength = val
			case "off-interval":
				pp.OffLength = val
			case "lookback":
				pp.Lookback = int(val)
			case "ref-size":
				pp.RefSize = val
			default:
				return nil, nil, fmt.Errorf("unknown policy parameter: %s", name)
			}
		}

		m, err := buildModel(&cell)
		if err != nil {
			return nil, nil, err
		}
		policy, err := cell.BuildPolicy()
		if err != nil {
			return nil, nil, err
		}
		return m, policy, nil
	}

	cells := 1
	for _, r := range ranges {
		cells *= len(r)
	}
	fmt.Printf("searching %d cells over %v, minimising %s...\n", cells, names, metricName)

	start := time.Now()
	best, val, err := optim.NewGridSearch(names, ranges).Search(context.Background(), build, metricName)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start))

	if best == nil {
		return fmt.Errorf("no grid cell produced a successful run")
	}

	fmt.Printf("best %s: %.6f\n", metricName, val)
	keys := make([]string, 0, len(best))
	for k := range best {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %s: %g\n", k, best[k])
	}
	return nil
}

// report saves a finished run and prints its summary and metrics.
func report(model, policy string, m *therapy.Model, ok bool, elapsed time.Duration) error {
	rec := m.Record()
	vals := metrics.All(rec)

	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(model, policy, &m.Solver, ok, vals, rec)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("rows: %d\n", rec.Len())
	if !ok {
		fmt.Printf("integration failed: %s\n", m.Diagnostic)
	}

	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(vals))
	for name := range vals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, vals[name])
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tPOLICY\tTIME\tDT\tMETHOD\tOK")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.4f\t%s\t%v\n",
			run.ID,
			run.Model,
			run.Policy,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Dt,
			run.Method,
			run.Success,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	rec, err := st.LoadRecord(runID)
	if err != nil {
		return err
	}
	if rec.Empty() {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("policy: %s\n", meta.Policy)
	fmt.Printf("samples: %d\n\n", rec.Len())

	fmt.Println(viz.PlotSize(rec))
	fmt.Println()
	fmt.Println(viz.PlotPopulations(rec))
	fmt.Println()
	fmt.Println(viz.PlotDose(rec))

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	rec, err := st.LoadRecord(runID)
	if err != nil {
		return err
	}

	return store.ExportJSONStdout(meta.Model, meta.Policy, meta.Metrics, rec)
}

func runLive(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	rec, err := st.LoadRecord(runID)
	if err != nil {
		return err
	}
	if rec.Empty() {
		return fmt.Errorf("no data to replay")
	}

	return viz.Run(rec, meta.Model, meta.Policy)
}

func parseParams(flags []string) (map[string]float64, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	out := make(map[string]float64, len(flags))
	for _, f := range flags {
		name, value, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("malformed parameter %q, want name=value", f)
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed parameter %q: %w", f, err)
		}
		out[name] = v
	}
	return out, nil
}

func parseSchedule(s string) (therapy.Schedule, error) {
	var sched therapy.Schedule
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Split(part, ":")
		if len(fields) != 3 {
			return nil, fmt.Errorf("malformed interval %q, want start:end:dose", part)
		}
		vals := make([]float64, 3)
		for i, f := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, fmt.Errorf("malformed interval %q: %w", part, err)
			}
			vals[i] = v
		}
		sched = append(sched, therapy.Interval{Start: vals[0], End: vals[1], Dose: vals[2]})
	}
	if len(sched) == 0 {
		return nil, fmt.Errorf("empty schedule")
	}
	return sched, nil
}

func parseGrid(flags []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(flags))
	ranges := make([][]float64, 0, len(flags))
	for _, f := range flags {
		name, list, ok := strings.Cut(f, "=")
		if !ok {
			return nil, nil, fmt.Errorf("malformed grid range %q, want name=v1,v2,...", f)
		}
		var vals []float64
		for _, field := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("malformed grid range %q: %w", f, err)
			}
			vals = append(vals, v)
		}
		if len(vals) == 0 {
			return nil, nil, fmt.Errorf("empty grid range %q", f)
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}
	return names, ranges, nil
}
