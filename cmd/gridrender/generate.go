package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gridrender/internal/bpy"
	"gridrender/internal/config"
	"gridrender/internal/generate"
	"gridrender/internal/scene"
)

const scriptTitle = "Animated processor grid: cores, routers, chiplet casing, cooling plates and packet traffic"

func (a *app) generateCmd() *cobra.Command {
	var out string
	def := config.Default()
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build the scene and write it as a Blender Python script",
		Args:  cobra.NoArgs,
	}
	bindings := timelineFlags(cmd, def)
	cmd.Flags().StringVarP(&out, "out", "o", def.Render.InputScript, "script path to write")
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
		h := bpy.Header{Title: scriptTitle, Seed: res.Seed, EndFrame: res.EndFrame}
		if err := bpy.WriteFile(out, res.Builder, h); err != nil {
			return err
		}
		a.log.Slog().Info("wrote scene script", "path", out)
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s: %d objects, frames %d-%d, seed %d\n",
			out, len(res.Builder.Objects()), res.Builder.Render.FrameStart, res.EndFrame, res.Seed)
		return nil
	}
	return cmd
}
