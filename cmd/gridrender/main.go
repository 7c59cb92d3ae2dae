package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gridrender/internal/config"
	"gridrender/internal/logger"
	"gridrender/internal/pipeline"
)

// app is the state shared by every subcommand.
type app struct {
	v          *viper.Viper
	configPath string
	verbose    bool
	log        *logger.Logger
}

func main() {
	a := &app{v: viper.New()}
	if err := a.rootCmd().Execute(); err != nil {
		// Launcher errors already printed their own status line.
		var perr *pipeline.Error
		if !errors.As(err, &perr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(pipeline.ExitCode(err))
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gridrender",
		Short:         "Generate and render an animated processor grid",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnv(config.DotEnvPath); err != nil {
				return err
			}
			if a.verbose {
				a.log = logger.New(slog.LevelDebug)
			} else {
				a.log = logger.NewWithPath(logger.LogFilePath, nil, slog.LevelInfo)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ./"+config.FileName+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "mirror the log to stderr")

	root.AddCommand(a.renderCmd(), a.generateCmd(), a.previewCmd(), a.configCmd())
	return root
}

// load binds the executing command's flags to their config keys, then reads the config.
// Binding happens per run because several commands share keys such as render.fps.
func (a *app) load(cmd *cobra.Command, bindings map[string]string) (config.Config, error) {
	for key, flag := range bindings {
		if err := a.v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return config.Config{}, fmt.Errorf("bind --%s: %w", flag, err)
		}
	}
	return config.Load(a.v, a.configPath)
}

// timelineFlags registers the flags every scene-building command takes.
func timelineFlags(cmd *cobra.Command, def config.Config) map[string]string {
	f := cmd.Flags()
	f.Int("fps", def.Render.FPS, "frames per second")
	f.Int("duration", def.Render.Duration, "animation length in seconds")
	f.Int("width", def.Render.Width, "render width in pixels")
	f.Int("height", def.Render.Height, "render height in pixels")
	return map[string]string{
		"render.fps":      "fps",
		"render.duration": "duration",
		"render.width":    "width",
		"render.height":   "height",
	}
}
