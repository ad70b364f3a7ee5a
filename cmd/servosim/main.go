package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/rcjetpilot/rotors-simulator/internal/analysis"
	"github.com/rcjetpilot/rotors-simulator/internal/config"
	"github.com/rcjetpilot/rotors-simulator/internal/experiment"
	"github.com/rcjetpilot/rotors-simulator/internal/export"
	"github.com/rcjetpilot/rotors-simulator/internal/scenario"
	"github.com/rcjetpilot/rotors-simulator/internal/storage"
	"github.com/rcjetpilot/rotors-simulator/internal/tuning"
	"github.com/rcjetpilot/rotors-simulator/internal/viz"
)

var (
	dataDir    string
	dt         float64
	duration   float64
	theta      float64
	omega      float64
	integrator string
	kp         float64
	ki         float64
	kd         float64
	// Motor descriptor
	jointName   string
	motorModel  string
	maxTorque   float64
	noLoadSpeed float64
	maxIntegral float64
	minAngle    float64
	maxAngle    float64
	// Command sources
	configFile   string
	preset       string
	scenarioFile string
	position     float64
	torque       float64
	// Tuning grids
	kpGrid     string
	kdGrid     string
	kiGrid     string
	tuneMetric string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "servosim",
		Short: "closed-loop servo motor simulation",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".servosim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a servo simulation",
		RunE:  runSimulation,
	}
	addRigFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with live visualization",
		RunE:  runLive,
	}
	addRigFlags(liveCmd)

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

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "angle-velocity phase plot",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export run charts as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of the angle trace",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset rigs",
		RunE:  listPresets,
	}

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid-search PID gains",
		RunE:  tuneGains,
	}
	addRigFlags(tuneCmd)
	tuneCmd.Flags().StringVar(&kpGrid, "kp-grid", "5,10,20,40", "comma-separated kp candidates")
	tuneCmd.Flags().StringVar(&kdGrid, "kd-grid", "1,2,5,10", "comma-separated kd candidates")
	tuneCmd.Flags().StringVar(&kiGrid, "ki-grid", "0,0.1,1", "comma-separated ki candidates")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "tracking_error", "metric to minimize")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, phaseCmd, analyzeCmd, exportCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, presetsCmd, tuneCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRigFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Float64Var(&theta, "theta", 0.0, "initial angle")
	cmd.Flags().Float64Var(&omega, "omega", 0.0, "initial angular velocity")
	cmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator")
	cmd.Flags().StringVar(&jointName, "joint", "servo_joint", "joint name")
	cmd.Flags().StringVar(&motorModel, "motor", "dc_servo", "motor model name")
	cmd.Flags().Float64Var(&maxTorque, "max-torque", 5.0, "torque limit")
	cmd.Flags().Float64Var(&noLoadSpeed, "no-load-speed", 12.0, "no-load speed")
	cmd.Flags().Float64Var(&maxIntegral, "max-integral", 1.0, "angle error integral limit")
	cmd.Flags().Float64Var(&minAngle, "min-angle", -3.141592653589793, "lower travel limit")
	cmd.Flags().Float64Var(&maxAngle, "max-angle", 3.141592653589793, "upper travel limit")
	cmd.Flags().Float64Var(&kp, "kp", 10.0, "pid kp")
	cmd.Flags().Float64Var(&kd, "kd", 5.0, "pid kd")
	cmd.Flags().Float64Var(&ki, "ki", 0.1, "pid ki")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset rig")
	cmd.Flags().StringVar(&scenarioFile, "scenario", "", "command scenario file (yaml)")
	cmd.Flags().Float64Var(&position, "position", 0.0, "position command at t=0")
	cmd.Flags().Float64Var(&torque, "torque", 0.0, "torque command at t=0")
}

// buildConfig merges preset, config file and flags into a rig config.
// A flag applies when it was set explicitly, or when no descriptor was
// loaded and the flag default is all there is.
func buildConfig(cmd *cobra.Command) (experiment.Config, error) {
	cfg := config.DefaultConfig()
	loaded := false

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return experiment.Config{}, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		// Copy so flag overrides never touch the shared preset table.
		c := *p
		cfg = &c
		loaded = true
	}

	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return experiment.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
		loaded = true
	}

	useFlag := func(name string) bool {
		return cmd.Flags().Changed(name) || !loaded
	}

	if useFlag("joint") {
		cfg.Servo.JointName = jointName
	}
	if useFlag("motor") {
		cfg.Servo.MotorModel = motorModel
	}
	if useFlag("max-torque") {
		cfg.Servo.MaxTorque = maxTorque
	}
	if useFlag("no-load-speed") {
		cfg.Servo.NoLoadSpeed = noLoadSpeed
	}
	if useFlag("max-integral") {
		cfg.Servo.MaxAngleErrorIntegral = maxIntegral
	}
	if useFlag("min-angle") {
		cfg.Servo.MinAngle = minAngle
	}
	if useFlag("max-angle") {
		cfg.Servo.MaxAngle = maxAngle
	}
	if useFlag("kp") {
		cfg.Servo.Kp = kp
	}
	if useFlag("kd") {
		cfg.Servo.Kd = kd
	}
	if useFlag("ki") {
		cfg.Servo.Ki = ki
	}
	if useFlag("dt") {
		cfg.Sim.Dt = dt
	}
	if useFlag("time") {
		cfg.Sim.Duration = duration
	}
	if useFlag("integrator") {
		cfg.Sim.Integrator = integrator
	}
	if useFlag("theta") {
		cfg.Sim.InitAngle = theta
	}
	if useFlag("omega") {
		cfg.Sim.InitVelocity = omega
	}

	commands := cfg.Commands
	if scenarioFile != "" {
		sc, err := scenario.Load(scenarioFile)
		if err != nil {
			return experiment.Config{}, err
		}
		commands = append(commands, sc.Commands...)
	}
	if cmd.Flags().Changed("position") {
		p := position
		commands = append(commands, scenario.Step{At: 0, Position: &p})
	}
	if cmd.Flags().Changed("torque") {
		tq := torque
		commands = append(commands, scenario.Step{At: 0, Torque: &tq})
	}

	return experiment.Config{
		Servo:        cfg.ServoConfig(),
		Dt:           cfg.Sim.Dt,
		Duration:     cfg.Sim.Duration,
		Integrator:   cfg.Sim.Integrator,
		InitAngle:    cfg.Sim.InitAngle,
		InitVelocity: cfg.Sim.InitVelocity,
		Commands:     commands,
	}, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}
	defer exp.Close()

	fmt.Printf("running %s on %s...\n", cfg.Servo.MotorModel, cfg.Servo.JointName)
	start := time.Now()

	result, err := exp.Run(context.Background())
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(cfg.Servo.JointName, cfg.Servo.MotorModel, cfg.Dt, cfg.Duration, cfg.Integrator, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", len(result.States))
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	m, err := viz.NewModel(cfg)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
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
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tJOINT\tMOTOR\tTIME\tDURATION\tDT\tINTEG")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2fs\t%.4fs\t%s\n",
			run.ID,
			run.Joint,
			run.MotorModel,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("joint: %s (%s)\n", meta.Joint, meta.MotorModel)
	fmt.Printf("samples: %d\n\n", len(samples))

	series := []struct {
		caption string
		pick    func(s storage.Sample) float64
	}{
		{"angle (rad)", func(s storage.Sample) float64 { return s.Angle }},
		{"angular velocity (rad/s)", func(s storage.Sample) float64 { return s.Velocity }},
		{"effort (N·m)", func(s storage.Sample) float64 { return s.Effort }},
	}

	for _, sr := range series {
		data := make([]float64, len(samples))
		for i, s := range samples {
			data[i] = sr.pick(s)
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(sr.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("phase plot: %s\n", meta.ID)
	fmt.Printf("joint: %s\n", meta.Joint)
	fmt.Println("x-axis: angle, y-axis: angular velocity")
	fmt.Println()

	xMin, xMax := samples[0].Angle, samples[0].Angle
	yMin, yMax := samples[0].Velocity, samples[0].Velocity
	for _, s := range samples {
		if s.Angle < xMin {
			xMin = s.Angle
		}
		if s.Angle > xMax {
			xMax = s.Angle
		}
		if s.Velocity < yMin {
			yMin = s.Velocity
		}
		if s.Velocity > yMax {
			yMax = s.Velocity
		}
	}

	xRange := xMax - xMin
	yRange := yMax - yMin
	if xRange == 0 {
		xRange = 1
	}
	if yRange == 0 {
		yRange = 1
	}

	width := 70
	height := 20
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	for i, s := range samples {
		px := int(float64(width-1) * (s.Angle - xMin) / xRange)
		py := int(float64(height-1) * (s.Velocity - yMin) / yRange)
		py = height - 1 - py
		if px >= 0 && px < width && py >= 0 && py < height {
			if i < len(samples)/3 {
				canvas[py][px] = '.'
			} else if i < 2*len(samples)/3 {
				canvas[py][px] = 'o'
			} else {
				canvas[py][px] = '●'
			}
		}
	}

	fmt.Printf("  %.2f ┌%s┐\n", yMax, strings.Repeat("─", width))
	for i := range canvas {
		if i == height/2 {
			fmt.Printf("  %.2f │", (yMax+yMin)/2)
		} else {
			fmt.Print("       │")
		}
		fmt.Print(string(canvas[i]))
		fmt.Println("│")
	}
	fmt.Printf("  %.2f └%s┘\n", yMin, strings.Repeat("─", width))
	fmt.Printf("       %.2f%s%.2f\n", xMin, strings.Repeat(" ", width-20), xMax)
	fmt.Printf("\nLegend: . = early, o = middle, ● = late\n")

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}

	if len(samples) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"time", "angle", "velocity", "effort"}); err != nil {
		return err
	}

	for _, s := range samples {
		row := []string{
			strconv.FormatFloat(s.Time, 'f', 6, 64),
			strconv.FormatFloat(s.Angle, 'f', 6, 64),
			strconv.FormatFloat(s.Velocity, 'f', 6, 64),
			strconv.FormatFloat(s.Effort, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}

	return storage.ExportJSONStdout(meta, samples)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}

	_, err = fmt.Print(export.RunSVG(meta, samples))
	return err
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if len(samples) < 4 {
		return fmt.Errorf("not enough data to analyze")
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("joint: %s (%s)\n\n", meta.Joint, meta.MotorModel)

	data := make([]float64, len(samples))
	for i, s := range samples {
		data[i] = s.Angle
	}

	ps := analysis.PowerSpectrum(data)
	plotData := ps[:len(ps)/4]
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (angle)"),
	)
	fmt.Println(graph)
	fmt.Println()

	freq, power := analysis.Dominant(data, 1.0/meta.Dt)
	if power == 0 {
		fmt.Println("no dominant oscillation")
		return nil
	}
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	fmt.Printf("period: %.3f s\n", 1.0/freq)

	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	names := config.ListPresets()
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tJOINT\tMOTOR\tKP\tKD\tKI\tMAX_TORQUE\tCOMMANDS")
	for _, name := range names {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\t%.1f\t%.1f\t%.1f\t%d\n",
			name,
			p.Servo.JointName,
			p.Servo.MotorModel,
			p.Servo.Kp,
			p.Servo.Kd,
			p.Servo.Ki,
			p.Servo.MaxTorque,
			len(p.Commands),
		)
	}
	return w.Flush()
}

func tuneGains(cmd *cobra.Command, args []string) error {
	base, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if len(base.Commands) == 0 {
		return fmt.Errorf("tuning needs a command schedule: set --position, --scenario or --preset")
	}

	grids := map[string]string{"kp": kpGrid, "kd": kdGrid, "ki": kiGrid}
	params := make([]string, 0, len(grids))
	ranges := make([][]float64, 0, len(grids))
	for _, name := range []string{"kp", "kd", "ki"} {
		vals, err := parseGrid(grids[name])
		if err != nil {
			return fmt.Errorf("%s-grid: %w", name, err)
		}
		params = append(params, name)
		ranges = append(ranges, vals)
	}

	points := 1
	for _, r := range ranges {
		points *= len(r)
	}
	fmt.Printf("searching %d grid points, minimizing %s...\n", points, tuneMetric)
	start := time.Now()

	g := tuning.NewGridSearch(params, ranges)
	bestParams, bestVal, err := g.Search(context.Background(), func(p map[string]float64) (*experiment.Experiment, error) {
		cfg := base
		cfg.Servo.Kp = p["kp"]
		cfg.Servo.Kd = p["kd"]
		cfg.Servo.Ki = p["ki"]
		return experiment.New(cfg)
	}, tuneMetric)
	if err != nil {
		return err
	}
	if bestParams == nil {
		return fmt.Errorf("no grid point produced a successful run")
	}

	fmt.Printf("completed in %v\n\n", time.Since(start))
	fmt.Printf("best %s: %.6f\n", tuneMetric, bestVal)
	fmt.Printf("  kp: %.3f\n", bestParams["kp"])
	fmt.Printf("  kd: %.3f\n", bestParams["kd"])
	fmt.Printf("  ki: %.3f\n", bestParams["ki"])

	return nil
}

func parseGrid(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	vals := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("empty grid")
	}
	return vals, nil
}
