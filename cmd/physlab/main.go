package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/physlab/internal/config"
	"github.com/san-kum/physlab/internal/engine"
	"github.com/san-kum/physlab/internal/scene"
	"github.com/san-kum/physlab/internal/store"
	"github.com/san-kum/physlab/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	duration   float64
	frameRate  int
	timeScale  float64
	series     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "physlab",
		Short: "2d kinematics sandbox",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default to the live view of a demo scene when no command given
			return runLive(cmd, []string{"ball_drop"})
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".physlab", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run a scene headless and record the trace",
		Args:  cobra.ExactArgs(1),
		RunE:  runScene,
	}
	runCmd.Flags().Float64Var(&duration, "time", 0, "duration (overrides config)")

	liveCmd := &cobra.Command{
		Use:   "live [scene]",
		Short: "run a scene with live visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().IntVar(&frameRate, "fps", 0, "frame rate (overrides config)")
	liveCmd.Flags().Float64Var(&timeScale, "speed", 0, "time scale (overrides config)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&series, "series", "", "plot a single series by name")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a recorded run as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	sceneCmd := &cobra.Command{
		Use:   "scene [preset] [path]",
		Short: "write a preset scene to a yaml file for editing",
		Args:  cobra.ExactArgs(2),
		RunE:  writeScene,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list demo scenes",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, name := range config.ListPresets() {
				fmt.Fprintf(w, "%s\t%s\n", name, config.Presets[name].Note)
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, sceneCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig returns the defaults, overlaid with the --config file when
// one was given.
func loadConfig() (*config.Config, error) {
	if configFile == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(configFile)
}

// loadScene resolves the scene argument: a path to a yaml scene file,
// or the name of a built-in preset.
func loadScene(arg string) (scene.Description, string, error) {
	if _, err := os.Stat(arg); err == nil {
		data, err := os.ReadFile(arg)
		if err != nil {
			return scene.Description{}, "", err
		}
		desc, err := scene.Unmarshal(data)
		if err != nil {
			return scene.Description{}, "", fmt.Errorf("load %s: %w", arg, err)
		}
		return desc, sceneBase(arg), nil
	}
	if p := config.GetPreset(arg); p != nil {
		return scene.Description{Objects: p.Objects}, arg, nil
	}
	return scene.Description{}, "", fmt.Errorf("unknown scene: %s (presets: %v)", arg, config.ListPresets())
}

func sceneBase(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func runScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	desc, name, err := loadScene(args[0])
	if err != nil {
		return err
	}

	sim, err := engine.NewFromDescription(cfg.ToEngine(), desc)
	if err != nil {
		return err
	}

	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	sim.AddListener(func(e engine.Event) {
		fmt.Fprintf(os.Stderr, "warning: %v\n", e.Err())
	})

	engCfg := sim.Config()
	steps := int(cfg.Duration / engCfg.Dt)
	sample := int(1 / (engCfg.Dt * float64(cfg.FrameRate)))
	if sample < 1 {
		sample = 1
	}

	var tr store.Trace
	tr.Record(sim.Diagnostics(), sim.Snapshot())

	fmt.Printf("running %s for %.2fs (%d steps)...\n", name, cfg.Duration, steps)
	start := time.Now()

	for done := 0; done < steps; done += sample {
		n := sample
		if steps-done < n {
			n = steps - done
		}
		if err := sim.Step(uint(n)); err != nil {
			return err
		}
		tr.Record(sim.Diagnostics(), sim.Snapshot())
	}

	elapsed := time.Since(start)

	runID, err := st.Save(name, engCfg, sim.Describe(), &tr)
	if err != nil {
		return err
	}

	d := sim.Diagnostics()
	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("sim time: %.3fs (%d steps)\n", d.SimTime, d.StepCount)
	fmt.Printf("kinetic: %.4f  elastic: %.4f\n", d.Kinetic, d.Elastic)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("fps") {
		cfg.FrameRate = frameRate
	}
	if cmd.Flags().Changed("speed") {
		cfg.TimeScale = timeScale
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	desc, name, err := loadScene(args[0])
	if err != nil {
		return err
	}

	sim, err := engine.NewFromDescription(cfg.ToEngine(), desc)
	if err != nil {
		return err
	}
	return viz.Run(sim, name, cfg.FrameRate, cfg.TimeScale)
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
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tDURATION\tDT\tOBJECTS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%d\n",
			run.ID,
			run.SceneName,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Objects,
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

	times, all, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	if len(times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.SceneName)
	fmt.Printf("samples: %d\n\n", len(times))

	names := make([]string, 0, len(all))
	for name := range all {
		if series != "" && name != series {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return fmt.Errorf("no series named %q", series)
	}
	sort.Strings(names)

	maxPlots := 6
	if series == "" && len(names) > maxPlots {
		names = names[:maxPlots]
	}

	for _, name := range names {
		graph := asciigraph.Plot(all[name],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	return store.New(dataDir).ExportJSON(os.Stdout, args[0])
}

func writeScene(cmd *cobra.Command, args []string) error {
	p := config.GetPreset(args[0])
	if p == nil {
		return fmt.Errorf("unknown preset: %s (presets: %v)", args[0], config.ListPresets())
	}

	data, err := scene.Marshal(scene.Description{Objects: p.Objects})
	if err != nil {
		return err
	}
	if err := os.WriteFile(args[1], data, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s to %s\n", args[0], args[1])
	return nil
}
