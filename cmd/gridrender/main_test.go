package main

import (
	"bytes"
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridrender/internal/config"
	"gridrender/internal/pipeline"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	a := &app{v: viper.New()}
	root := a.rootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestConfigInit(t *testing.T) {
	t.Chdir(t.TempDir())
	out, err := execute(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+config.FileName)
	assert.FileExists(t, config.FileName)

	_, err = execute(t, "config", "init")
	assert.Error(t, err, "refuses to overwrite")
	_, err = execute(t, "config", "init", "--force")
	assert.NoError(t, err)
}

func TestRenderDryRun(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("scene.py", []byte("import bpy\n"), 0644))
	out, err := execute(t, "render", "--dry-run", "--blender-path", "/opt/blender", "--fps", "30", "--duration", "2", "--codec", "H264", "--crf", "18")
	require.NoError(t, err)
	assert.Contains(t, out, "/opt/blender --background --python scene.py")
	assert.Contains(t, out, "frame_end = 60")
	assert.Contains(t, out, "constant_rate_factor = '18'")
	assert.Contains(t, out, "--render-anim")
}

func TestRenderMissingScript(t *testing.T) {
	t.Chdir(t.TempDir())
	out, err := execute(t, "render", "--input-script", "missing.py")
	require.Error(t, err)
	assert.ErrorIs(t, err, pipeline.ErrMissingInputScript)
	assert.Equal(t, 1, pipeline.ExitCode(err))
	assert.Contains(t, out, "Error: Input script not found at 'missing.py'")
}

func TestGenerateWritesScript(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GRIDRENDER_SCENE_GRID_SIZE_X", "2")
	t.Setenv("GRIDRENDER_SCENE_GRID_SIZE_Y", "2")
	t.Setenv("GRIDRENDER_SCENE_GRID_SIZE_Z", "2")
	t.Setenv("GRIDRENDER_SCENE_PACKETS_COUNT", "3")
	out, err := execute(t, "generate", "--out", "out/scene.py", "--fps", "30", "--duration", "2", "--seed", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote out/scene.py")
	assert.Contains(t, out, "frames 0-60, seed 4")

	data, err := os.ReadFile("out/scene.py")
	require.NoError(t, err)
	assert.Contains(t, string(data), "GENERATED_END_FRAME = 60")
	assert.Contains(t, string(data), `"Packet_2"`)
	assert.NotContains(t, string(data), `"Packet_3"`)
}

func TestRenderRejectsScriptFromAnotherTimeline(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GRIDRENDER_SCENE_GRID_SIZE_X", "2")
	t.Setenv("GRIDRENDER_SCENE_GRID_SIZE_Y", "2")
	t.Setenv("GRIDRENDER_SCENE_GRID_SIZE_Z", "2")
	_, err := execute(t, "generate", "--seed", "2")
	require.NoError(t, err)

	_, err = execute(t, "render", "--dry-run", "--fps", "30", "--duration", "2")
	assert.ErrorIs(t, err, pipeline.ErrTimelineMismatch)
	assert.Equal(t, 1, pipeline.ExitCode(err))

	out, err := execute(t, "render", "--dry-run")
	require.NoError(t, err, "the default timeline matches the default script")
	assert.Contains(t, out, "frame_end = 3600")
}
