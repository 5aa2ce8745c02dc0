package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Transcriber drives the whisper CLI to produce SubRip subtitles from an
// audio file.
type Transcriber struct {
	binary   string
	model    string
	language string // empty lets whisper auto-detect
}

// NewTranscriber creates a transcriber for the given whisper binary and model.
func NewTranscriber(binary, model, language string) *Transcriber {
	return &Transcriber{binary: binary, model: model, language: language}
}

func (t *Transcriber) buildArgs(audioPath string) []string {
	args := []string{
		audioPath,
		"--model", t.model,
		"--output_format", "srt",
		"--output_dir", filepath.Dir(audioPath),
	}
	if t.language != "" {
		args = append(args, "--language", t.language)
	}
	return args
}

// Transcribe runs whisper on audioPath and returns the path of the generated
// .srt file. Whisper emits no machine-readable progress, so none is reported.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return "", fmt.Errorf("media: audio file: %w", err)
	}

	cmd := exec.CommandContext(ctx, t.binary, t.buildArgs(audioPath)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("media: %s failed: %w: %s", t.binary, err, firstLine(string(out)))
	}

	srt := srtPath(audioPath)
	if _, err := os.Stat(srt); err != nil {
		return "", fmt.Errorf("media: %s produced no subtitle file at %s", t.binary, srt)
	}
	return srt, nil
}

func srtPath(audioPath string) string {
	ext := filepath.Ext(audioPath)
	return strings.TrimSuffix(audioPath, ext) + ".srt"
}
