package main

import (
	"github.com/spf13/cobra"

	"gridrender/internal/config"
	"gridrender/internal/generate"
	"gridrender/internal/graphics"
	"gridrender/internal/preview"
	"gridrender/internal/scene"
)

func (a *app) previewCmd() *cobra.Command {
	def := config.Default()
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Build the scene and play it in a window",
		Args:  cobra.NoArgs,
	}
	bindings := timelineFlags(cmd, def)
	cmd.Flags().Int64("seed", def.Scene.Seed, "random seed for packet routes (0 = time-based)")
	bindings["scene.seed"] = "seed"

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		c, err := a.load(cmd, bindings)
		if err != nil {
			return err
		}
		res, err := generate.Run(scene.New(), c.GenerateOptions(), a.log.Slog())
		if err != nil {
			return err
		}
		v := graphics.NewViewer(preview.NewPlayer(res.Builder, res.Rig))
		graphics.Run(graphics.Window{
			Title:     "gridrender preview",
			Width:     1280,
			Height:    720,
			TargetFPS: c.Render.FPS,
			Close:     v.Close,
		}, v.Update, v.Draw)
		return nil
	}
	return cmd
}
