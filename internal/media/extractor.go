package media

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Whisper expects 16 kHz mono PCM; extraction always targets that format.
const (
	audioSampleRate = "16000"
	audioChannels   = "1"
	audioCodec      = "pcm_s16le"
)

// Extractor drives ffmpeg to pull a speech-recognition-ready WAV track out of
// a media file.
type Extractor struct {
	binary string
}

// NewExtractor creates an extractor using the given ffmpeg binary.
func NewExtractor(binary string) *Extractor {
	return &Extractor{binary: binary}
}

// buildArgs assembles the ffmpeg invocation. -progress pipe:1 streams
// key=value progress lines to stdout; -nostats keeps stderr to diagnostics.
func (e *Extractor) buildArgs(inputPath, outputPath string) []string {
	return []string{
		"-y",
		"-i", inputPath,
		"-vn",
		"-acodec", audioCodec,
		"-ar", audioSampleRate,
		"-ac", audioChannels,
		"-progress", "pipe:1",
		"-nostats",
		outputPath,
	}
}

// Extract writes the audio track of inputPath next to it as a .wav file and
// returns the output path. onProgress may be nil; progress is derived from
// ffmpeg's out_time against the input duration.
func (e *Extractor) Extract(ctx context.Context, inputPath string, onProgress ProgressFunc) (string, error) {
	if _, err := os.Stat(inputPath); err != nil {
		return "", fmt.Errorf("media: input file: %w", err)
	}

	outputPath := wavPath(inputPath)
	totalSec, err := e.probeDuration(ctx, inputPath)
	if err != nil {
		// Progress degrades to indeterminate; extraction still works.
		totalSec = 0
	}

	cmd := exec.CommandContext(ctx, e.binary, e.buildArgs(inputPath, outputPath)...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("media: creating stdout pipe: %w", err)
	}
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("media: starting %s: %w", e.binary, err)
	}

	readProgress(stdout, totalSec, onProgress)

	if err := cmd.Wait(); err != nil {
		os.Remove(outputPath)
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("media: %s failed: %w: %s", e.binary, err, firstLine(stderr.String()))
	}
	return outputPath, nil
}

// probeDuration asks ffprobe (shipped alongside ffmpeg) for the input length
// in seconds.
func (e *Extractor) probeDuration(ctx context.Context, path string) (float64, error) {
	probe := "ffprobe"
	if dir := filepath.Dir(e.binary); dir != "." {
		probe = filepath.Join(dir, "ffprobe")
	}

	cmd := exec.CommandContext(ctx, probe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "csv=p=0",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("media: running ffprobe: %w", err)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("media: parsing duration: %w", err)
	}
	return duration, nil
}

// readProgress consumes ffmpeg -progress output (out_time_us=N lines) until
// the pipe closes.
func readProgress(r io.Reader, totalSec float64, onProgress ProgressFunc) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		value, ok := strings.CutPrefix(line, "out_time_us=")
		if !ok {
			continue
		}
		us, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			continue
		}
		if onProgress == nil || totalSec <= 0 {
			continue
		}
		fraction := (float64(us) / 1e6) / totalSec
		if fraction > 1 {
			fraction = 1
		}
		onProgress(Progress{Fraction: fraction, ETASec: -1})
	}
}

func wavPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + ".wav"
}
