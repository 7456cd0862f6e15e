package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"bayesaudit/internal/audit"
	"bayesaudit/internal/config"
	"bayesaudit/internal/csvio"
	"bayesaudit/internal/history"
	"bayesaudit/internal/logging"
	"bayesaudit/internal/model"
	"bayesaudit/internal/planner"
	"bayesaudit/internal/prng"
)

// newAuditCommand wires the CLI surface: a positional
// election_dirname plus a set of step-selection flags. Each step implies
// every step before it, so "--audit" alone runs the whole pipeline;
// passing only "--read_election_spec" validates and stops there, useful
// for checking a spec before committing to a full run.
func newAuditCommand(ctx *commandContext) *cobra.Command {
	var electionsRoot string
	var setAuditSeed string
	var readElectionSpec bool
	var readReported bool
	var makeAuditOrders bool
	var runTheAudit bool
	var pause bool

	var sampleBySize bool
	var useDiscreteRM bool
	var numWinners int
	var maxNumIt int
	var pickCountyFunc string

	cmd := &cobra.Command{
		Use:   "audit <election_dirname>",
		Short: "Validate and audit one election directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if electionsRoot != "" {
				cfg.ElectionsRoot = electionsRoot
			}
			if sampleBySize {
				cfg.SampleBySize = true
			}
			if useDiscreteRM {
				cfg.UseDiscreteRM = true
			}
			if numWinners > 0 {
				cfg.NumWinners = numWinners
			}
			if maxNumIt > 0 {
				cfg.MaxNumIt = maxNumIt
			}
			if pickCountyFunc != "" {
				cfg.PickCountyFunc = pickCountyFunc
			}

			logger, err := ctx.newCLILogger(cfg)
			if err != nil {
				return err
			}

			opts := auditRunOptions{
				Dirname:          args[0],
				SetAuditSeed:     setAuditSeed,
				ReadElectionSpec: readElectionSpec || readReported || makeAuditOrders || runTheAudit,
				ReadReported:     readReported || makeAuditOrders || runTheAudit,
				MakeAuditOrders:  makeAuditOrders || runTheAudit,
				RunAudit:         runTheAudit,
				Pause:            pause,
			}
			return runElectionAudit(cmd, cfg, logger, opts)
		},
	}

	cmd.Flags().StringVar(&electionsRoot, "elections_root", "", "Root directory containing election subdirectories")
	cmd.Flags().StringVar(&setAuditSeed, "set_audit_seed", "", "Nonnegative integer audit seed (overrides the seed file)")
	cmd.Flags().BoolVar(&readElectionSpec, "read_election_spec", false, "Read and validate 1-election-spec/")
	cmd.Flags().BoolVar(&readReported, "read_reported", false, "Read and validate reported data (implies --read_election_spec)")
	cmd.Flags().BoolVar(&makeAuditOrders, "make_audit_orders", false, "Compute and persist shuffled audit orders (implies --read_reported)")
	cmd.Flags().BoolVar(&runTheAudit, "audit", false, "Run the stage loop to completion (implies --make_audit_orders)")
	cmd.Flags().BoolVar(&pause, "pause", false, "Run a single stage then stop, instead of looping to completion")

	cmd.Flags().BoolVar(&sampleBySize, "sample_by_size", false, "Enable the Dirichlet-Multinomial simulation planner")
	cmd.Flags().BoolVar(&useDiscreteRM, "use_discrete_rm", false, "Enable the discrete Robbins-Monro planner")
	cmd.Flags().IntVar(&numWinners, "num_winners", 0, "Number of winners the simulation planner assumes")
	cmd.Flags().IntVar(&maxNumIt, "max_num_it", 0, "Outer iteration bound for the simulation/Robbins-Monro planner")
	cmd.Flags().StringVar(&pickCountyFunc, "pick_county_func", "", "Simulation planner pick strategy: round_robin, random_naive, random_min_var")

	return cmd
}

type auditRunOptions struct {
	Dirname          string
	SetAuditSeed     string
	ReadElectionSpec bool
	ReadReported     bool
	MakeAuditOrders  bool
	RunAudit         bool
	Pause            bool
}

// runElectionAudit drives the pre-audit validation pipeline and, if
// requested, the stage loop. It owns every
// filesystem and history-database effect; internal/audit.Driver stays a
// pure in-memory stepper.
func runElectionAudit(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, opts auditRunOptions) error {
	out := cmd.OutOrStdout()
	layout := csvio.NewLayout(cfg.ElectionsRoot, opts.Dirname)
	logger = logger.With(logging.String(logging.FieldElectionDir, opts.Dirname))

	election := model.NewElection()
	warnings := &csvio.Warnings{}

	if !opts.ReadElectionSpec {
		fmt.Fprintln(out, "nothing to do: pass --read_election_spec, --read_reported, --make_audit_orders, or --audit")
		return nil
	}

	if general, err := csvio.ReadGeneral(layout, warnings); err == nil {
		if name, ok := general["name"]; ok && name != "" {
			fmt.Fprintf(out, "%s\n", csvio.DisplayTitle(name))
		}
	}

	if err := csvio.ReadElectionSpec(layout, election, warnings); err != nil {
		return err
	}
	logWarnings(logger, warnings)
	if warnings.Abort() {
		return fmt.Errorf("election spec validation found %d problem(s); aborting", len(warnings.Items()))
	}
	fmt.Fprintf(out, "election spec ok: %d contest(s), %d collection(s)\n", len(election.Contests), len(election.Collections))
	if !opts.ReadReported {
		return nil
	}

	if err := csvio.ReadReported(layout, election, warnings); err != nil {
		return err
	}
	logWarnings(logger, warnings)
	if warnings.Abort() {
		return fmt.Errorf("reported-data validation found %d problem(s); aborting", len(warnings.Items()))
	}
	if violations := model.CheckConservation(election.Reported); len(violations) > 0 {
		return fmt.Errorf("reported data invariant violation: %w", violations[0])
	}
	fmt.Fprintln(out, "reported data ok")
	if !opts.MakeAuditOrders {
		return nil
	}

	globals, err := csvio.ReadAuditSpec(layout, election, warnings)
	if err != nil {
		return err
	}
	logWarnings(logger, warnings)
	if warnings.Abort() {
		return fmt.Errorf("audit spec validation found %d problem(s); aborting", len(warnings.Items()))
	}

	seed, err := resolveAuditSeed(layout, opts.SetAuditSeed, warnings)
	if err != nil {
		return err
	}

	if err := layout.EnsureOutputDirs(); err != nil {
		return err
	}
	for _, pbcid := range election.SortedPBCIDs() {
		col := election.Collections[pbcid]
		order := prng.ShuffleStrings(seed, pbcid, col.Bids)
		if err := csvio.WriteAuditOrder(layout, pbcid, audit.InitialStageTime, order); err != nil {
			return err
		}
	}
	fmt.Fprintln(out, "audit orders written")
	if !opts.RunAudit {
		return nil
	}

	return runStageLoop(cmd, cfg, logger, layout, election, seed, globals, opts)
}

// resolveAuditSeed applies the seed precedence: CLI flag > seed file >
// system entropy.
func resolveAuditSeed(layout csvio.Layout, flagSeed string, warnings *csvio.Warnings) (*big.Int, error) {
	if flagSeed != "" {
		return prng.ParseSeed(flagSeed)
	}
	if fileSeed, ok, err := csvio.ReadAuditSpecSeed(layout, warnings); err != nil {
		return nil, err
	} else if ok {
		return prng.ParseSeed(fileSeed)
	}
	n, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("generate audit seed: %w", err)
	}
	return n, nil
}

func logWarnings(logger *slog.Logger, warnings *csvio.Warnings) {
	for _, w := range warnings.Items() {
		logging.WarnWithContext(logger, w.Detail, "spec_warning", logging.String("file", w.File))
	}
}

// runStageLoop runs the stage loop until no measurement is Open and
// Active, the wallclock passes max_stage_time, or --pause stops it after
// one stage.
func runStageLoop(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, layout csvio.Layout, election *model.Election, seed *big.Int, globals csvio.GlobalParams, opts auditRunOptions) error {
	out := cmd.OutOrStdout()
	src := prng.NewStream(seed)

	plannerOpts := buildPlannerOptions(cfg)

	hist, err := history.Open(cfg.HistoryDBPath(layout.ElectionDir()))
	if err != nil {
		return err
	}
	defer hist.Close()

	// The engine config supplies defaults for knobs the election's own
	// audit-spec-global.csv did not set; the CSV wins when both are given.
	builtin := csvio.DefaultGlobalParams()
	if globals.MaxStageTime == builtin.MaxStageTime && cfg.MaxStageTime != "" {
		globals.MaxStageTime = cfg.MaxStageTime
	}
	if globals.NTrials == builtin.NTrials && cfg.NTrials > 0 {
		globals.NTrials = cfg.NTrials
	}

	initialPlan := planner.Compute(election, model.NewSampleTally(), src, plannerOpts)
	driver := audit.NewDriver(election, seed, src, plannerOpts, initialPlan)
	driver.ConfigureKernel(globals.NTrials, globals.AlphaBase, globals.AlphaMatch)

	if path, ok, err := layout.LatestSavedState(); err != nil {
		return err
	} else if ok {
		saved, err := audit.Read(path)
		if err != nil {
			return err
		}
		saved.ApplyTo(election)
		if len(saved.PlanTP) > 0 {
			driver.SetPlan(saved.PlanTP)
		}
		fmt.Fprintf(out, "resumed from saved state at stage %s\n", saved.StageTime)
	} else {
		snap := audit.Snapshot(audit.InitialStageTime, election, driver.Sample, initialPlan)
		if err := audit.Write(layout.SavedState(audit.InitialStageTime), snap); err != nil {
			return err
		}
	}

	colorize := shouldColorize(out)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		stageTime := audit.CurrentStageTime(time.Now())
		if audit.AfterMaxStageTime(stageTime, globals.MaxStageTime) {
			fmt.Fprintln(out, "audit stopped: max_stage_time reached")
			return nil
		}

		stageLogger := logger.With(
			logging.String(logging.FieldStageTime, stageTime),
			logging.String(logging.FieldCorrelationID, uuid.NewString()),
		)
		stageLogger.Info("stage started")

		warnings := &csvio.Warnings{}
		audited, err := csvio.ReadAllAuditedVotes(layout, election, warnings)
		if err != nil {
			return err
		}
		election.Audited = audited

		prevSnTP := make(map[string]int, len(driver.Sample.SnTP))
		for pbcid, n := range driver.Sample.SnTP {
			prevSnTP[pbcid] = n
		}

		result, err := driver.Step(ctx, stageTime)
		if err != nil {
			return err
		}
		if err := checkStageInvariants(election, driver, prevSnTP, result); err != nil {
			return err
		}

		if err := writeStageOutputs(ctx, layout, hist, election, driver, result); err != nil {
			return err
		}
		printStageSummary(out, election, driver, result, colorize)
		stageLogger.Info("stage completed",
			logging.Int("measurements", len(result.Risks)),
			logging.String("election_status", statusListString(result.ElectionStatus)))

		if !result.AnyOpenActive {
			fmt.Fprintln(out, "audit complete: every measurement is terminal")
			return nil
		}
		if opts.Pause {
			fmt.Fprintln(out, "pausing after one stage (--pause)")
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(cfg.StageSleepMin) * time.Second):
		}
	}
}

// checkStageInvariants validates the data-model invariants after every
// Step, before any stage output is written: per-stratum sample bounds,
// monotone sampling against the previous stage's counts, plan bounds,
// and risk bounds. A violation is an engine bug, fatal per the
// all-or-nothing stage rule, so the last good saved state survives.
func checkStageInvariants(election *model.Election, driver *audit.Driver, prevSnTP map[string]int, result audit.StepResult) error {
	sizes := make(map[string]int, len(election.Collections))
	for pbcid, col := range election.Collections {
		sizes[pbcid] = col.Size()
	}

	var violations []model.InvariantViolation
	violations = append(violations, model.CheckSampleBounds(election.Reported, driver.Sample)...)
	violations = append(violations, model.CheckMonotoneSampling(prevSnTP, driver.Sample.SnTP, sizes)...)
	if result.Plan != nil {
		violations = append(violations, model.CheckPlanBounds(result.Plan, driver.Sample.SnTP, sizes)...)
	}
	violations = append(violations, model.CheckRiskBounds(result.Risks)...)
	if len(violations) > 0 {
		return fmt.Errorf("stage %s invariant violation: %w", result.StageTime, violations[0])
	}
	return nil
}

func buildPlannerOptions(cfg *config.Config) planner.Options {
	var opts planner.Options
	switch {
	case cfg.SampleBySize:
		opts.Simulation = &planner.SimulationPlan{
			Pick:       planner.PickStrategy(cfg.PickCountyFunc),
			NumWinners: cfg.NumWinners,
			MaxNumIt:   cfg.MaxNumIt,
			Alpha:      0.05,
		}
	case cfg.UseDiscreteRM:
		opts.RobbinsMonro = &planner.RobbinsMonroConfig{NumIt: cfg.MaxNumIt}
	}
	return opts
}

func writeStageOutputs(ctx context.Context, layout csvio.Layout, hist *history.Store, election *model.Election, driver *audit.Driver, result audit.StepResult) error {
	plan := result.Plan
	if plan == nil {
		plan = driver.CurrentPlan()
	}

	contestRows := make([]csvio.ContestStatusRow, 0, len(election.Measurements))
	measurementRecords := make([]history.MeasurementRecord, 0, len(election.Measurements))
	for _, mid := range election.SortedMIDs() {
		m := election.Measurements[mid]
		r := result.Risks[mid]
		contestRows = append(contestRows, csvio.ContestStatusRow{
			MID: mid, CID: m.CID, Method: m.RiskMethod, Mode: m.SamplingMode,
			Risk: r, Alpha: m.RiskLimit, Beta: m.UpsetThreshold, Status: m.Status,
		})
		measurementRecords = append(measurementRecords, history.MeasurementRecord{
			StageTime: result.StageTime, MID: mid, CID: m.CID,
			Risk: r, RiskLimit: m.RiskLimit, UpsetThreshold: m.UpsetThreshold, Status: m.Status,
		})
	}
	if err := csvio.WriteContestStatus(layout, result.StageTime, contestRows); err != nil {
		return err
	}

	collectionRows := make([]csvio.CollectionStatusRow, 0, len(election.Collections))
	collectionRecords := make([]history.CollectionRecord, 0, len(election.Collections))
	for _, pbcid := range election.SortedPBCIDs() {
		col := election.Collections[pbcid]
		collectionRows = append(collectionRows, csvio.CollectionStatusRow{
			PBCID: pbcid, SampledSoFar: driver.Sample.SnTP[pbcid], PlanNext: plan[pbcid], Size: col.Size(),
		})
		collectionRecords = append(collectionRecords, history.CollectionRecord{
			StageTime: result.StageTime, PBCID: pbcid, SnTP: driver.Sample.SnTP[pbcid], PlanTP: plan[pbcid],
		})
	}
	if err := csvio.WriteCollectionStatus(layout, result.StageTime, collectionRows); err != nil {
		return err
	}

	if err := hist.RecordStage(ctx, measurementRecords, collectionRecords, time.Now()); err != nil {
		return err
	}

	snap := audit.Snapshot(result.StageTime, election, driver.Sample, plan)
	return audit.Write(layout.SavedState(result.StageTime), snap)
}

// printStageSummary prints the per-stage human-readable block: one line
// per measurement, the election-wide status, the new target sample sizes,
// and the per-stratum actual-vs-reported counts.
func printStageSummary(out io.Writer, election *model.Election, driver *audit.Driver, result audit.StepResult, colorize bool) {
	fmt.Fprintf(out, "stage %s\n", result.StageTime)
	for _, mid := range election.SortedMIDs() {
		m := election.Measurements[mid]
		fmt.Fprintf(out, "  %s %s %s %s Risk=%.6f (limits %g,%g) %s\n",
			mid, m.CID, m.RiskMethod, m.SamplingMode,
			result.Risks[mid], m.RiskLimit, m.UpsetThreshold,
			renderStatus(m.Status, colorize))
	}
	fmt.Fprintf(out, "  election status: %s\n", statusListString(result.ElectionStatus))

	plan := result.Plan
	if plan == nil {
		plan = driver.CurrentPlan()
	}
	fmt.Fprintln(out, "  sample sizes:")
	for _, pbcid := range election.SortedPBCIDs() {
		col := election.Collections[pbcid]
		fmt.Fprintf(out, "    %s: %d of %d sampled, next target %d\n",
			pbcid, driver.Sample.SnTP[pbcid], col.Size(), plan[pbcid])
	}

	printStratumCounts(out, election, driver.Sample)
}

// printStratumCounts prints the actual-vote tallies observed so far in
// each (contest, collection, reported-vote) stratum, in sorted order.
func printStratumCounts(out io.Writer, election *model.Election, sample *model.SampleTally) {
	fmt.Fprintln(out, "  sampled strata:")
	for _, cid := range election.SortedCIDs() {
		for _, pbcid := range election.PossiblePBCIDs(cid) {
			for _, rv := range election.Reported.SortedReportedVotes(cid, pbcid) {
				tally := sample.StratumTally(cid, pbcid, rv)
				if len(tally) == 0 {
					continue
				}
				avs := make([]model.Vote, 0, len(tally))
				for av := range tally {
					avs = append(avs, av)
				}
				sort.Slice(avs, func(i, j int) bool { return avs[i] < avs[j] })
				parts := make([]string, 0, len(avs))
				for _, av := range avs {
					parts = append(parts, fmt.Sprintf("%s=%d", displayVote(av), tally[av]))
				}
				fmt.Fprintf(out, "    %s %s reported %s: %s\n",
					cid, pbcid, displayVote(rv), strings.Join(parts, " "))
			}
		}
	}
}

// displayVote renders a vote tuple for human output: selids joined with
// "+", the empty tuple shown as (undervote).
func displayVote(v model.Vote) string {
	selids := v.Selids()
	if len(selids) == 0 {
		return "(undervote)"
	}
	return strings.Join(selids, "+")
}

func statusListString(statuses []model.Status) string {
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ",")
}
