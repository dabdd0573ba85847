package transcription

import (
	"bufio"
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"vidscribe/internal/logging"
)

//go:embed assets/faster_whisper.py
var workerScript []byte

// WhisperConfig captures the settings for the faster-whisper worker process.
type WhisperConfig struct {
	// ModelSize selects the faster-whisper model (e.g. "medium").
	ModelSize string
	// Runner is the Python interpreter hosting the worker.
	Runner string
	// Device and ComputeType are fixed to cpu/float32 for portability.
	Device      string
	ComputeType string
	// LoadTimeout bounds the initial model load.
	LoadTimeout time.Duration
}

func (c *WhisperConfig) applyDefaults() {
	if strings.TrimSpace(c.ModelSize) == "" {
		c.ModelSize = "medium"
	}
	if strings.TrimSpace(c.Runner) == "" {
		c.Runner = "python3"
	}
	if strings.TrimSpace(c.Device) == "" {
		c.Device = "cpu"
	}
	if strings.TrimSpace(c.ComputeType) == "" {
		c.ComputeType = "float32"
	}
	if c.LoadTimeout <= 0 {
		c.LoadTimeout = 5 * time.Minute
	}
}

// workerLine is one NDJSON message from the worker.
type workerLine struct {
	Type                string    `json:"type"`
	Message             string    `json:"message"`
	Language            string    `json:"language"`
	LanguageProbability float64   `json:"language_probability"`
	Duration            float64   `json:"duration"`
	Text                string    `json:"text"`
	Start               float64   `json:"start"`
	End                 float64   `json:"end"`
	Words               []RawWord `json:"words"`
}

// FasterWhisper runs faster-whisper in a long-lived worker subprocess. The
// model loads once at construction and is reused for every request until
// Close. Requests are serialized by protocol; concurrent Transcribe calls on
// one instance are unsafe.
type FasterWhisper struct {
	cfg        WhisperConfig
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	stdout     *bufio.Scanner
	stderr     *bytes.Buffer
	scriptPath string
	logger     *slog.Logger
	// streaming is set while a request's SegmentStream has not been drained.
	streaming bool
}

// LoadFasterWhisper starts the worker process and blocks until the model has
// loaded. Failure here is fatal for the pipeline: there is no retry.
func LoadFasterWhisper(ctx context.Context, cfg WhisperConfig, logger *slog.Logger) (*FasterWhisper, error) {
	cfg.applyDefaults()
	log := logging.WithComponent(logger, "whisper")

	script, err := os.CreateTemp("", "vidscribe-whisper-*.py")
	if err != nil {
		return nil, fmt.Errorf("load whisper model: write worker script: %w", err)
	}
	scriptPath := script.Name()
	if _, err := script.Write(workerScript); err != nil {
		_ = script.Close()
		_ = os.Remove(scriptPath)
		return nil, fmt.Errorf("load whisper model: write worker script: %w", err)
	}
	if err := script.Close(); err != nil {
		_ = os.Remove(scriptPath)
		return nil, fmt.Errorf("load whisper model: write worker script: %w", err)
	}

	cmd := exec.CommandContext(ctx, cfg.Runner, scriptPath, //nolint:gosec
		"--model", cfg.ModelSize,
		"--device", cfg.Device,
		"--compute-type", cfg.ComputeType,
	)
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		_ = os.Remove(scriptPath)
		return nil, fmt.Errorf("load whisper model: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		_ = os.Remove(scriptPath)
		return nil, fmt.Errorf("load whisper model: %w", err)
	}
	if err := cmd.Start(); err != nil {
		_ = os.Remove(scriptPath)
		return nil, fmt.Errorf("load whisper model: start %s: %w", cfg.Runner, err)
	}

	m := &FasterWhisper{
		cfg:        cfg,
		cmd:        cmd,
		stdin:      stdin,
		stdout:     newLineScanner(stdout),
		stderr:     stderr,
		scriptPath: scriptPath,
		logger:     log,
	}

	line, err := m.readLineTimeout(ctx, cfg.LoadTimeout)
	if err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("load whisper model %q: %w", cfg.ModelSize, err)
	}
	switch line.Type {
	case "ready":
		log.Debug("whisper model loaded",
			logging.String("model", cfg.ModelSize),
			logging.String("device", cfg.Device),
			logging.String("compute_type", cfg.ComputeType))
		return m, nil
	case "error":
		_ = m.Close()
		return nil, fmt.Errorf("load whisper model %q: %s", cfg.ModelSize, line.Message)
	default:
		_ = m.Close()
		return nil, fmt.Errorf("load whisper model %q: unexpected worker message %q", cfg.ModelSize, line.Type)
	}
}

// Transcribe sends one request to the worker and returns the lazy segment
// stream plus whole-file info. The stream must be drained (or closed) before
// the next Transcribe call.
func (m *FasterWhisper) Transcribe(ctx context.Context, audioPath string, opts Options) (SegmentStream, Info, error) {
	if m.streaming {
		return nil, Info{}, errors.New("transcribe: previous segment stream not drained")
	}
	request := map[string]any{
		"audio_path":      audioPath,
		"beam_size":       opts.BeamSize,
		"word_timestamps": opts.WordTimestamps,
		"vad_filter":      opts.VADFilter,
		"min_silence_ms":  opts.MinSilence.Milliseconds(),
	}
	payload, err := json.Marshal(request)
	if err != nil {
		return nil, Info{}, fmt.Errorf("transcribe: encode request: %w", err)
	}
	if _, err := m.stdin.Write(append(payload, '\n')); err != nil {
		return nil, Info{}, fmt.Errorf("transcribe: worker unavailable: %w%s", err, m.stderrTail())
	}

	line, err := m.readLine(ctx)
	if err != nil {
		return nil, Info{}, fmt.Errorf("transcribe: %w%s", err, m.stderrTail())
	}
	switch line.Type {
	case "info":
		m.streaming = true
		info := Info{
			Language:            line.Language,
			LanguageProbability: line.LanguageProbability,
			Duration:            line.Duration,
		}
		return &workerStream{model: m, ctx: ctx}, info, nil
	case "error":
		return nil, Info{}, fmt.Errorf("transcribe: %s", line.Message)
	default:
		return nil, Info{}, fmt.Errorf("transcribe: unexpected worker message %q", line.Type)
	}
}

// Close shuts the worker down and releases model resources. Safe to call
// more than once.
func (m *FasterWhisper) Close() error {
	if m.cmd == nil {
		return nil
	}
	// Closing stdin makes the worker exit its serve loop.
	if m.stdin != nil {
		_ = m.stdin.Close()
	}
	done := make(chan error, 1)
	go func() { done <- m.cmd.Wait() }()
	var err error
	select {
	case err = <-done:
	case <-time.After(5 * time.Second):
		_ = m.cmd.Process.Kill()
		err = <-done
	}
	m.cmd = nil
	if m.scriptPath != "" {
		_ = os.Remove(m.scriptPath)
		m.scriptPath = ""
	}
	// Worker exit after stdin EOF is expected, not an error.
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

// workerStream yields segments for the in-flight request.
type workerStream struct {
	model *FasterWhisper
	ctx   context.Context
	done  bool
}

func (s *workerStream) Next() (RawSegment, error) {
	if s.done {
		return RawSegment{}, io.EOF
	}
	line, err := s.model.readLine(s.ctx)
	if err != nil {
		s.finish()
		return RawSegment{}, fmt.Errorf("segment stream: %w", err)
	}
	switch line.Type {
	case "segment":
		return RawSegment{Text: line.Text, Start: line.Start, End: line.End, Words: line.Words}, nil
	case "done":
		s.finish()
		return RawSegment{}, io.EOF
	case "error":
		s.finish()
		return RawSegment{}, fmt.Errorf("segment stream: %s", line.Message)
	default:
		s.finish()
		return RawSegment{}, fmt.Errorf("segment stream: unexpected worker message %q", line.Type)
	}
}

// Close drains any remaining segments so the worker is ready for the next
// request.
func (s *workerStream) Close() error {
	for !s.done {
		if _, err := s.Next(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
	return nil
}

func (s *workerStream) finish() {
	s.done = true
	s.model.streaming = false
}

func (m *FasterWhisper) readLine(ctx context.Context) (workerLine, error) {
	for {
		if err := ctx.Err(); err != nil {
			return workerLine{}, err
		}
		if !m.stdout.Scan() {
			if err := m.stdout.Err(); err != nil {
				return workerLine{}, fmt.Errorf("read worker: %w", err)
			}
			return workerLine{}, errors.New("worker closed its output")
		}
		raw := bytes.TrimSpace(m.stdout.Bytes())
		if len(raw) == 0 {
			continue
		}
		var line workerLine
		if err := json.Unmarshal(raw, &line); err != nil {
			return workerLine{}, fmt.Errorf("parse worker message: %w: %s", err, string(raw))
		}
		return line, nil
	}
}

func (m *FasterWhisper) readLineTimeout(ctx context.Context, timeout time.Duration) (workerLine, error) {
	type result struct {
		line workerLine
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := m.readLine(ctx)
		ch <- result{line, err}
	}()
	select {
	case res := <-ch:
		return res.line, res.err
	case <-time.After(timeout):
		return workerLine{}, fmt.Errorf("timed out after %s waiting for model load", timeout)
	}
}

func (m *FasterWhisper) stderrTail() string {
	text := strings.TrimSpace(m.stderr.String())
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return ": " + strings.Join(lines, "; ")
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	// Segment lines carry full word alignments and can run long.
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return scanner
}
