package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/TFMV/nodefield/config"
	"github.com/TFMV/nodefield/render"
	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "nodefield",
		Short: "Drifting k-nearest-neighbor node field",
		Long: `nodefield simulates a cloud of nodes drifting inside soft walls,
linked once to their nearest neighbors, with a slowly cycling colour.

Frames can be streamed to a browser or rendered to a file.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				log.SetFlags(log.LstdFlags | log.Lshortfile | log.Lmicroseconds)
				log.Println("Debug mode enabled")
			} else {
				log.SetFlags(log.LstdFlags)
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default $NODEFIELD_CONFIG or ./nodefield.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(),
		newServeCmd(),
		newRenderCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{"version": version})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "nodefield version %s\n", version)
			}
		},
	}
	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the nodefield config file",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with every default spelled out",
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			force, _ := cmd.Flags().GetBool("force")

			if _, err := os.Stat(output); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", output)
			}

			if err := config.DefaultConfig().Save(output); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default config to %s\n", output)
			return nil
		},
	}
	initCmd.Flags().String("output", config.DefaultFileName, "Path to write")
	initCmd.Flags().Bool("force", false, "Overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}

// addSimulationFlags registers the flags shared by serve and render
func addSimulationFlags(cmd *cobra.Command) {
	cmd.Flags().Int("nodes", 0, "Number of nodes (overrides config)")
	cmd.Flags().Int("k", 0, "Neighbors per node (overrides config)")
	cmd.Flags().Float64("velocity-scale", 0, "Initial velocity and kick scale (overrides config)")
	cmd.Flags().Uint64("seed", 0, "Random seed, 0 for a random one (overrides config)")
	cmd.Flags().String("noise", "", "Kick source: uniform or simplex (overrides config)")
}

// loadConfig reads the config file and applies any flags the user set
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, used, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if used != "" {
		log.Printf("Loaded config from %s", used)
	}

	flags := cmd.Flags()
	if flags.Changed("nodes") {
		nodes, _ := flags.GetInt("nodes")
		cfg.Simulation.NodeCount = &nodes
	}
	if flags.Changed("k") {
		k, _ := flags.GetInt("k")
		cfg.Simulation.K = &k
	}
	if flags.Changed("velocity-scale") {
		scale, _ := flags.GetFloat64("velocity-scale")
		cfg.Simulation.VelocityScale = &scale
	}
	if flags.Changed("seed") {
		cfg.Simulation.Seed, _ = flags.GetUint64("seed")
	}
	if flags.Changed("noise") {
		cfg.Simulation.Noise, _ = flags.GetString("noise")
	}
	if flags.Lookup("fps") != nil && flags.Changed("fps") {
		cfg.Loop.FPS, _ = flags.GetFloat64("fps")
	}
	if flags.Lookup("port") != nil && flags.Changed("port") {
		cfg.Server.Port, _ = flags.GetInt("port")
	}
	if flags.Lookup("width") != nil && flags.Changed("width") {
		cfg.Render.Width, _ = flags.GetFloat64("width")
	}
	if flags.Lookup("height") != nil && flags.Changed("height") {
		cfg.Render.Height, _ = flags.GetFloat64("height")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// renderOptions builds output options from the render section
func renderOptions(cfg *config.Config, format string) *render.OutputOptions {
	options := render.NewDefaultOptions(format)
	options.Width = cfg.Render.Width
	options.Height = cfg.Render.Height
	options.Background = cfg.Render.Background
	options.NodeRadius = cfg.Render.NodeRadius
	return options
}
