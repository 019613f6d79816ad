package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/RenardDesNeiges/hopsim/internal/analysis"
	"github.com/RenardDesNeiges/hopsim/internal/config"
	"github.com/RenardDesNeiges/hopsim/internal/export"
	"github.com/RenardDesNeiges/hopsim/internal/hybrid"
	"github.com/RenardDesNeiges/hopsim/internal/integrators"
	"github.com/RenardDesNeiges/hopsim/internal/models"
	"github.com/RenardDesNeiges/hopsim/internal/record"
	"github.com/RenardDesNeiges/hopsim/internal/storage"
	"github.com/RenardDesNeiges/hopsim/internal/sweep"
	"github.com/RenardDesNeiges/hopsim/internal/viz"
)

var (
	dataDir     string
	configFile  string
	preset      string
	integrator  string
	tMax        float64
	dt          float64
	height      float64
	speed       float64
	outputStep  float64
	playback    float64
	sqlitePath  string
	noSave      bool
	plotAxis    int
	axis        int
	phaseAxis   int
	svgPath     string
	framePath   string
	sweepParam  string
	sweepFrom   float64
	sweepTo     float64
	sweepN      int
	bifurcation bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hopsim",
		Short: "hybrid dynamical-system simulation lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".hopsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run a simulation",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().StringVar(&integrator, "integrator", "", "integrator (rk45|rk4|euler)")
	runCmd.Flags().Float64Var(&tMax, "time", 0, "time budget (0 = config default)")
	runCmd.Flags().Float64Var(&dt, "dt", 0, "fixed step size (rk4/euler)")
	runCmd.Flags().Float64Var(&height, "height", 0, "initial apex/drop height")
	runCmd.Flags().Float64Var(&speed, "speed", 0, "initial forward speed (slip)")
	runCmd.Flags().Float64Var(&outputStep, "output-step", 0, "recorded sample spacing (0 = every step)")
	runCmd.Flags().Float64Var(&playback, "playback", 0, "pace the run against the wall clock at this factor")
	runCmd.Flags().StringVar(&sqlitePath, "sqlite", "", "also record samples into this sqlite database")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "skip writing the run to the data directory")
	runCmd.Flags().IntVar(&plotAxis, "plot", -1, "plot this state component after the run")

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "run a simulation and replay it in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	liveCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	liveCmd.Flags().Float64Var(&tMax, "time", 0, "time budget (0 = config default)")
	liveCmd.Flags().Float64Var(&height, "height", 0, "initial apex/drop height")
	liveCmd.Flags().Float64Var(&speed, "speed", 0, "initial forward speed (slip)")
	liveCmd.Flags().Float64Var(&playback, "playback", 1.0, "wall seconds per simulated second")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&axis, "axis", 1, "state component to plot")
	plotCmd.Flags().IntVar(&phaseAxis, "phase", -1, "render a phase portrait of --axis against this component")
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "also write the plot to this SVG file")
	plotCmd.Flags().StringVar(&framePath, "frame", "", "write the final scene frame to this SVG file")

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "run a family of simulations across a parameter range",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	sweepCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	sweepCmd.Flags().StringVar(&integrator, "integrator", "", "integrator (rk45|rk4|euler)")
	sweepCmd.Flags().Float64Var(&tMax, "time", 0, "time budget per run (0 = config default)")
	sweepCmd.Flags().StringVar(&sweepParam, "param", "attack-angle", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0.1, "range start")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 0.5, "range end")
	sweepCmd.Flags().IntVar(&sweepN, "points", 9, "number of runs")
	sweepCmd.Flags().BoolVar(&bifurcation, "bifurcation", false, "record each run and draw an apex bifurcation diagram")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			for model, group := range config.Presets {
				fmt.Println(model + ":")
				for name := range group {
					fmt.Printf("  %s\n", name)
				}
			}
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, sweepCmd, listCmd, plotCmd, exportCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildConfig merges defaults, preset, config file, and flags, in that
// order of precedence.
func buildConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.Default()
	cfg.Model = model

	if preset != "" {
		p, ok := config.Preset(model, preset)
		if !ok {
			return nil, fmt.Errorf("unknown preset %q for model %q", preset, model)
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		cfg.Model = model
	}

	if cmd.Flags().Changed("integrator") {
		cfg.Integrator = integrator
	}
	if cmd.Flags().Changed("time") {
		cfg.TMax = tMax
	}
	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("height") {
		cfg.InitState.Height = height
	}
	if cmd.Flags().Changed("speed") {
		cfg.InitState.Speed = speed
	}
	if cmd.Flags().Changed("output-step") {
		cfg.OutputStep = outputStep
	}
	if cmd.Flags().Changed("playback") {
		cfg.Playback = playback
	}
	return cfg, nil
}

func buildIntegrator(cfg *config.Config) (hybrid.Integrator, error) {
	switch cfg.Integrator {
	case "", "rk45":
		return integrators.NewRK45(), nil
	case "rk4":
		return integrators.NewRK4(cfg.Dt), nil
	case "euler":
		return integrators.NewEuler(cfg.Dt), nil
	default:
		return nil, fmt.Errorf("unknown integrator %q", cfg.Integrator)
	}
}

// simulate runs the configured model and returns the result with the
// recorded trajectory.
func simulate(ctx context.Context, cfg *config.Config) (*hybrid.Result, *record.Trajectory, error) {
	model, y0, z0, p0, err := cfg.BuildModel()
	if err != nil {
		return nil, nil, err
	}
	excite, err := cfg.BuildExcitation()
	if err != nil {
		return nil, nil, err
	}
	integ, err := buildIntegrator(cfg)
	if err != nil {
		return nil, nil, err
	}

	tr := record.NewTrajectory()
	var rec hybrid.Recorder = tr

	if sqlitePath != "" {
		sq, err := record.NewSQLite(sqlitePath, cfg.Model)
		if err != nil {
			return nil, nil, err
		}
		defer func() {
			if err := sq.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "sqlite close: %v\n", err)
			} else {
				fmt.Printf("sqlite run id: %s\n", sq.RunID())
			}
		}()
		rec = record.Multi{tr, sq}
	}

	if cfg.Playback > 0 {
		rec = record.NewPacer(ctx, rec, cfg.Playback)
	}

	sim := hybrid.New(model, integ, excite)
	sim.SetRecorder(rec)

	res, err := sim.Run(ctx, y0, z0, p0, cfg.RunConfig())
	return res, tr, err
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("running %s simulation...\n", cfg.Model)
	start := time.Now()

	res, tr, err := simulate(context.Background(), cfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if res.TimedOut() {
		fmt.Fprintf(w, "outcome\ttime budget exhausted\n")
	} else {
		fmt.Fprintf(w, "outcome\tterminal event at t=%.6f\n", res.T)
	}
	fmt.Fprintf(w, "jumps\t%d\n", res.Jumps)
	fmt.Fprintf(w, "steps\t%d (%d rejected)\n", res.Steps, res.Rejected)
	fmt.Fprintf(w, "flow evals\t%d\n", res.Evals)
	fmt.Fprintf(w, "wall time\t%v\n", elapsed)
	fmt.Fprintf(w, "final y\t%.6v\n", []float64(res.Y))
	fmt.Fprintf(w, "final z\t%.6v\n", []float64(res.Z))
	w.Flush()

	if cfg.Model == "slip" {
		if apexes := analysis.Apexes(tr); len(apexes) > 0 {
			fmt.Printf("apexes: %d, last height %.4f\n", len(apexes), apexes[len(apexes)-1].Height)
			if pairs := analysis.ReturnMap(apexes); len(pairs) > 0 {
				tail := pairs
				if len(tail) > 8 {
					tail = tail[len(tail)-8:]
					fmt.Printf("apex return map (last %d of %d):\n", len(tail), len(pairs))
				} else {
					fmt.Println("apex return map:")
				}
				for _, pr := range tail {
					fmt.Printf("  %.4f -> %.4f\n", pr.H, pr.HNext)
				}
			}
		}
		if steps := analysis.Steps(tr); len(steps) > 0 {
			fmt.Printf("stance phases: %d, mean step length %.4f\n", len(steps), meanStepLength(steps))
		}
		if m, _, _, p, err := cfg.BuildModel(); err == nil {
			if s, ok := m.(*models.SLIP); ok {
				rep := analysis.EnergyAudit(tr, func(y hybrid.State, z hybrid.Discrete) float64 {
					return s.Energy(y, z, p)
				})
				fmt.Printf("energy drift: %.3g (max relative)\n", rep.MaxDrift)
			}
		}
	}

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg.Model, cfg.Integrator, res, tr)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	if plotAxis >= 0 {
		fmt.Println(viz.TimeSeries(tr, plotAxis, fmt.Sprintf("y[%d] over time", plotAxis), 72, 16))
	}

	return nil
}

func meanStepLength(steps []analysis.Step) float64 {
	sum := 0.0
	for _, s := range steps {
		sum += s.Length
	}
	return sum / float64(len(steps))
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	// Record densely so playback is smooth, and never pace the
	// simulation itself; the viewer paces.
	if cfg.OutputStep <= 0 {
		cfg.OutputStep = 0.005
	}
	cfg.Playback = 0

	res, tr, err := simulate(context.Background(), cfg)
	if err != nil {
		return err
	}
	if tr.Len() == 0 {
		return fmt.Errorf("nothing recorded to replay")
	}

	factor := playback
	if factor <= 0 {
		factor = 1
	}
	p := tea.NewProgram(viz.NewLive(tr, cfg.Model, factor))
	if _, err := p.Run(); err != nil {
		return err
	}

	if res.TimedOut() {
		fmt.Println("run ended on time budget")
	} else {
		fmt.Printf("run ended on terminal event at t=%.4f\n", res.T)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no stored runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tINTEGRATOR\tT_OUT\tJUMPS\tWHEN")
	for _, r := range runs {
		tOut := fmt.Sprintf("%.4f", r.TOut)
		if r.TOut == hybrid.TimeoutSentinel {
			tOut = "timeout"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			r.ID, r.Model, r.Integrator, tOut, r.Jumps, r.Timestamp.Format(time.RFC3339))
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	tr, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	fmt.Println(viz.TimeSeries(tr, axis, fmt.Sprintf("y[%d] over time", axis), 72, 16))

	if phaseAxis >= 0 {
		portrait := analysis.PhasePortrait(tr, axis, phaseAxis)
		if portrait == nil {
			return fmt.Errorf("run has no component %d or %d", axis, phaseAxis)
		}
		fmt.Printf("phase portrait y[%d] vs y[%d]:\n", axis, phaseAxis)
		fmt.Print(portrait.Render(36, 12))
	}

	if svgPath != "" {
		svg := export.TimeSeriesSVG(tr, axis, 800, 400, "#00ff88")
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgPath)
	}
	if framePath != "" && tr.Len() > 0 {
		canvas := viz.FrameCanvas(tr.Samples[tr.Len()-1])
		if err := os.WriteFile(framePath, []byte(export.CanvasToSVG(canvas, 4)), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", framePath)
	}
	return nil
}

// sweepIndex maps a human-friendly parameter name to its slot in the
// model's parameter vector.
func sweepIndex(model, name string) (int, error) {
	table := map[string]map[string]int{
		"slip": {
			"attack-angle": models.SlipAttackAngle,
			"stiffness":    models.SlipStiffness,
			"mass":         models.SlipMass,
			"rest-length":  models.SlipRestLength,
		},
		"bouncer": {
			"restitution": models.BounceRestitution,
			"gravity":     models.BounceGravity,
			"min-speed":   models.BounceMinSpeed,
		},
	}
	group, ok := table[model]
	if !ok {
		return 0, fmt.Errorf("no sweepable parameters for model %q", model)
	}
	idx, ok := group[name]
	if !ok {
		return 0, fmt.Errorf("unknown parameter %q for model %q", name, model)
	}
	return idx, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	idx, err := sweepIndex(cfg.Model, sweepParam)
	if err != nil {
		return err
	}

	model, y0, z0, p0, err := cfg.BuildModel()
	if err != nil {
		return err
	}
	excite, err := cfg.BuildExcitation()
	if err != nil {
		return err
	}
	if _, err := buildIntegrator(cfg); err != nil {
		return err
	}

	runner := &sweep.Runner{
		Model:  model,
		Excite: excite,
		NewIntegrator: func() hybrid.Integrator {
			integ, _ := buildIntegrator(cfg)
			return integ
		},
		Y0:     y0,
		Z0:     z0,
		P0:     p0,
		Index:  idx,
		Record: bifurcation,
	}

	values := sweep.Range(sweepFrom, sweepTo, sweepN)
	fmt.Printf("sweeping %s over [%g, %g] in %d runs...\n", sweepParam, sweepFrom, sweepTo, len(values))

	points, err := runner.Run(context.Background(), values, cfg.RunConfig())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tOUTCOME\tJUMPS\tSTEPS\n", sweepParam)
	for _, pt := range points {
		outcome := "timeout"
		if !pt.Res.TimedOut() {
			outcome = fmt.Sprintf("t=%.4f", pt.Res.T)
		}
		fmt.Fprintf(w, "%.4g\t%s\t%d\t%d\n", pt.Value, outcome, pt.Res.Jumps, pt.Res.Steps)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if bifurcation {
		params := make([]float64, len(points))
		trs := make([]*record.Trajectory, len(points))
		for i, pt := range points {
			params[i] = pt.Value
			trs[i] = pt.Traj
		}
		diag := analysis.Bifurcation(params, trs, 0.5)
		art := analysis.RenderBifurcation(diag, 60, 12)
		if art == "" {
			fmt.Println("no settled apexes to diagram")
		} else {
			fmt.Printf("apex heights over %s:\n%s", sweepParam, art)
		}
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	tr, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}

	type exportData struct {
		Meta   *storage.RunMetadata `json:"meta"`
		Times  []float64            `json:"times"`
		States [][]float64          `json:"states"`
		Events []int                `json:"event_indices"`
	}
	data := exportData{Meta: meta, Times: tr.Times()}
	for i, s := range tr.Samples {
		data.States = append(data.States, s.Y)
		if s.Event {
			data.Events = append(data.Events, i)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
