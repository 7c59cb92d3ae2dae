package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gridrender/internal/config"
	"gridrender/internal/pipeline"
)

func (a *app) renderCmd() *cobra.Command {
	var dryRun bool
	def := config.Default()
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the scene script to a video with Blender in background mode",
		Args:  cobra.NoArgs,
	}
	bindings := timelineFlags(cmd, def)
	f := cmd.Flags()
	f.String("blender-path", def.Render.BlenderPath, "path to the Blender executable")
	f.String("input-script", def.Render.InputScript, "scene script for Blender to run")
	f.String("output-path", def.Render.OutputPath, "output video path")
	f.String("container", def.Render.Container, "ffmpeg container")
	f.String("codec", def.Render.Codec, "ffmpeg codec")
	f.String("crf", def.Render.CRF, "constant rate factor (AV1 always uses "+pipeline.AV1Quality+")")
	f.BoolVar(&dryRun, "dry-run", false, "print the Blender command without running it")
	for key, flag := range map[string]string{
		"render.blender_path": "blender-path",
		"render.input_script": "input-script",
		"render.output_path":  "output-path",
		"render.container":    "container",
		"render.codec":        "codec",
		"render.crf":          "crf",
	} {
		bindings[key] = flag
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		c, err := a.load(cmd, bindings)
		if err != nil {
			return err
		}
		l := pipeline.New(a.log.Slog())
		l.Stdout = cmd.OutOrStdout()
		l.Stderr = cmd.ErrOrStderr()
		if dryRun {
			p, err := l.Plan(c.Render)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p.CommandLine())
			return nil
		}
		_, err = l.Run(c.Render)
		return err
	}
	return cmd
}
