package pipeline

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/muesli/termenv"

	"gridrender/internal/bpy"
)

// Settings are the launcher inputs, one per CLI flag. WorkDir is the base for a relative
// OutputPath; empty means the process working directory.
type Settings struct {
	BlenderPath string `yaml:"blender_path" mapstructure:"blender_path"`
	InputScript string `yaml:"input_script" mapstructure:"input_script"`
	OutputPath  string `yaml:"output_path" mapstructure:"output_path"`
	Width       int    `yaml:"width" mapstructure:"width"`
	Height      int    `yaml:"height" mapstructure:"height"`
	FPS         int    `yaml:"fps" mapstructure:"fps"`
	Duration    int    `yaml:"duration" mapstructure:"duration"`
	Container   string `yaml:"container" mapstructure:"container"`
	Codec       string `yaml:"codec" mapstructure:"codec"`
	CRF         string `yaml:"crf" mapstructure:"crf"`
	WorkDir     string `yaml:"-" mapstructure:"-"`
}

// TotalFrames is FPS * Duration.
func (s Settings) TotalFrames() int {
	return s.FPS * s.Duration
}

// absOutput resolves OutputPath against WorkDir, or the process working directory.
func (s Settings) absOutput() (string, error) {
	if filepath.IsAbs(s.OutputPath) {
		return filepath.Clean(s.OutputPath), nil
	}
	base := s.WorkDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		base = wd
	}
	return filepath.Join(base, s.OutputPath), nil
}

// AV1Quality is the quality tier passed for AV1, which takes an enumerated tier rather than a number.
const AV1Quality = "MEDIUM"

// QualityToken maps the requested quality to the value the codec expects: AV1 gets
// AV1Quality, every other codec gets crf unchanged.
func QualityToken(codec, crf string) string {
	if codec == "AV1" {
		return AV1Quality
	}
	return crf
}

// Plan is the assembled external invocation.
type Plan struct {
	Executable  string
	Args        []string
	OutputPath  string
	TotalFrames int
	Quality     string
}

// CommandLine is the invocation joined with spaces, for display.
func (p *Plan) CommandLine() string {
	return strings.Join(append([]string{p.Executable}, p.Args...), " ")
}

// InitExpressions are the one-shot expressions run before the render, each setting exactly
// one scene property: resolution x/y, fps, end frame, container, codec and quality.
func InitExpressions(s Settings, totalFrames int, quality string) []string {
	const prefix = "import bpy; bpy.context.scene."
	return []string{
		fmt.Sprintf("%srender.resolution_x = %d", prefix, s.Width),
		fmt.Sprintf("%srender.resolution_y = %d", prefix, s.Height),
		fmt.Sprintf("%srender.fps = %d", prefix, s.FPS),
		fmt.Sprintf("%sframe_end = %d", prefix, totalFrames),
		fmt.Sprintf("%srender.ffmpeg.format = '%s'", prefix, s.Container),
		fmt.Sprintf("%srender.ffmpeg.codec = '%s'", prefix, s.Codec),
		fmt.Sprintf("%srender.ffmpeg.constant_rate_factor = '%s'", prefix, quality),
	}
}

// State is a launcher phase.
type State int

const (
	Validating State = iota
	Assembling
	Invoking
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Validating:
		return "validating"
	case Assembling:
		return "assembling"
	case Invoking:
		return "invoking"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Runner runs an external command to completion, streaming its output.
type Runner interface {
	Run(name string, args []string, stdout, stderr io.Writer) error
}

// ExecRunner runs commands with os/exec. Run blocks until the process exits; there is no
// timeout and no cancellation, so a render takes as long as it takes.
type ExecRunner struct{}

// Run starts name and waits for it. A missing executable yields ErrExecutableNotFound and a
// non-zero exit ErrRenderProcessFailed, both as *Error. The process is always waited on.
func (ExecRunner) Run(name string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	err := cmd.Run()
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &Error{Class: ExecutionError, Reason: ErrRenderProcessFailed, ExitCode: exitErr.ExitCode()}
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return &Error{Class: EnvironmentError, Reason: ErrExecutableNotFound, Path: name, Err: err}
	}
	return &Error{Class: ExecutionError, Reason: ErrRenderProcessFailed, ExitCode: -1, Err: err}
}

// Launcher validates settings, assembles the render command and supervises the external
// process. Status lines go to Stdout; the child's output is streamed to Stdout and Stderr.
type Launcher struct {
	Runner Runner
	Stdout io.Writer
	Stderr io.Writer
	Log    *slog.Logger

	states []State
	out    *termenv.Output
}

// New returns a Launcher using ExecRunner and the process's standard streams.
func New(log *slog.Logger) *Launcher {
	return &Launcher{Runner: ExecRunner{}, Stdout: os.Stdout, Stderr: os.Stderr, Log: log}
}

// States returns every state entered so far, in order.
func (l *Launcher) States() []State {
	out := make([]State, len(l.states))
	copy(out, l.states)
	return out
}

// State is the current state; Validating before anything ran.
func (l *Launcher) State() State {
	if len(l.states) == 0 {
		return Validating
	}
	return l.states[len(l.states)-1]
}

func (l *Launcher) enter(s State) {
	l.states = append(l.states, s)
	l.logger().Info("launcher state", "state", s.String())
}

func (l *Launcher) logger() *slog.Logger {
	if l.Log == nil {
		l.Log = slog.New(slog.DiscardHandler)
	}
	return l.Log
}

func (l *Launcher) output() *termenv.Output {
	if l.out == nil {
		w := l.Stdout
		if w == nil {
			w = io.Discard
		}
		l.out = termenv.NewOutput(w)
	}
	return l.out
}

func (l *Launcher) println(args ...any) {
	fmt.Fprintln(l.output(), args...)
}

func (l *Launcher) status(color, msg string) {
	o := l.output()
	fmt.Fprintln(o, o.String(msg).Foreground(o.Color(color)).Bold())
}

func (l *Launcher) fail(err error) error {
	l.enter(Failed)
	l.logger().Error("render pipeline failed", "err", err)
	return err
}

// Plan runs the Validating and Assembling phases and returns the command to invoke.
// Assembling creates the output directory.
func (l *Launcher) Plan(s Settings) (*Plan, error) {
	l.states = nil
	l.enter(Validating)
	if _, err := os.Stat(s.InputScript); err != nil {
		perr := configError(ErrMissingInputScript, s.InputScript, nil)
		l.status("1", fmt.Sprintf("Error: Input script not found at '%s'", s.InputScript))
		return nil, l.fail(perr)
	}
	if err := l.checkTimeline(s); err != nil {
		return nil, l.fail(err)
	}
	if s.OutputPath == "" {
		return nil, l.fail(configError(ErrBadOutputPath, s.OutputPath, errors.New("empty path")))
	}
	abs, err := s.absOutput()
	if err != nil {
		return nil, l.fail(configError(ErrBadOutputPath, s.OutputPath, err))
	}
	if fi, err := os.Stat(abs); err == nil && fi.IsDir() {
		return nil, l.fail(configError(ErrBadOutputPath, s.OutputPath, errors.New("is a directory")))
	}

	l.enter(Assembling)
	if s.Width <= 0 || s.Height <= 0 || s.FPS <= 0 || s.Duration <= 0 {
		return nil, l.fail(configError(ErrInvalidRenderSettings, "",
			fmt.Errorf("width %d height %d fps %d duration %d must be positive", s.Width, s.Height, s.FPS, s.Duration)))
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return nil, l.fail(configError(ErrBadOutputPath, s.OutputPath, err))
	}
	total := s.TotalFrames()
	quality := QualityToken(s.Codec, s.CRF)

	args := []string{
		"--background",
		"--python", s.InputScript,
		"--render-format", "FFMPEG",
		"--render-output", abs,
	}
	for _, expr := range InitExpressions(s, total, quality) {
		args = append(args, "--python-expr", expr)
	}
	args = append(args, "--render-anim")
	p := &Plan{Executable: s.BlenderPath, Args: args, OutputPath: abs, TotalFrames: total, Quality: quality}
	l.logger().Info("assembled render command", "frames", total, "quality", quality, "output", abs)
	return p, nil
}

// checkTimeline compares the end frame a generated script was baked for with the frames
// this render asks for. Scripts without the header, and non-positive settings (reported
// later as InvalidRenderSettings), are not checked.
func (l *Launcher) checkTimeline(s Settings) error {
	total := s.TotalFrames()
	if total <= 0 {
		return nil
	}
	baked, ok, err := bpy.ReadEndFrameFile(s.InputScript)
	if err != nil {
		return configError(ErrTimelineMismatch, s.InputScript, err)
	}
	if !ok || baked == total {
		return nil
	}
	l.status("1", fmt.Sprintf("Error: '%s' was generated for %d frames but the render asks for %d (fps %d x duration %d). Regenerate it with the same --fps and --duration.",
		s.InputScript, baked, total, s.FPS, s.Duration))
	return configError(ErrTimelineMismatch, s.InputScript, fmt.Errorf("generated end frame %d, render end frame %d", baked, total))
}

// Run executes the whole pipeline and blocks until the external process exits.
func (l *Launcher) Run(s Settings) (*Plan, error) {
	l.println("--- Starting Render Pipeline ---")
	l.println(fmt.Sprintf("Configuration: %+v", s))
	p, err := l.Plan(s)
	if err != nil {
		return nil, err
	}
	if err := l.Invoke(p); err != nil {
		return p, err
	}
	l.status("2", "Success! Render complete.")
	l.println("Video saved to:", s.OutputPath)
	return p, nil
}

// Invoke runs an assembled plan.
func (l *Launcher) Invoke(p *Plan) error {
	l.enter(Invoking)
	l.println("\nExecuting Blender command:")
	l.println(p.CommandLine())
	l.println("\n--- Blender Output ---")

	runner := l.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	err := runner.Run(p.Executable, p.Args, l.Stdout, l.Stderr)
	if err != nil {
		var perr *Error
		if !errors.As(err, &perr) {
			err = &Error{Class: ExecutionError, Reason: ErrRenderProcessFailed, ExitCode: -1, Err: err}
			errors.As(err, &perr)
		}
		switch perr.Reason {
		case ErrExecutableNotFound:
			l.status("1", fmt.Sprintf("\n--- ERROR: Blender executable not found at '%s'. ---", p.Executable))
		default:
			l.status("1", "\n--- ERROR: Blender returned a non-zero exit code. ---")
		}
		return l.fail(err)
	}
	l.println("--- End of Blender Output ---")
	l.enter(Succeeded)
	return nil
}
