// Package media wraps the external tools the application orchestrates:
// yt-dlp for downloads, ffmpeg for audio extraction and whisper for
// transcription. Every driver runs its tool through exec.CommandContext, so
// cancelling the operation's context kills the child process.
package media

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Downloader drives yt-dlp.
type Downloader struct {
	binary string
	dir    string
}

// NewDownloader creates a downloader that writes into dir.
func NewDownloader(binary, dir string) *Downloader {
	return &Downloader{binary: binary, dir: dir}
}

// buildArgs assembles the yt-dlp invocation. --newline forces one progress
// report per line so the reader can parse them incrementally.
func (d *Downloader) buildArgs(url string) []string {
	return []string{
		"--newline",
		"--no-playlist",
		"--no-colors",
		"-o", filepath.Join(d.dir, "%(title)s.%(ext)s"),
		url,
	}
}

// Download fetches url and returns the path of the downloaded file. onProgress
// may be nil.
func (d *Downloader) Download(ctx context.Context, url string, onProgress ProgressFunc) (string, error) {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("media: creating download dir: %w", err)
	}

	cmd := exec.CommandContext(ctx, d.binary, d.buildArgs(url)...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("media: creating stdout pipe: %w", err)
	}
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("media: starting %s: %w", d.binary, err)
	}

	var destination string
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		if dest := parseDestinationLine(line); dest != "" {
			destination = dest
			continue
		}
		if p, ok := parseDownloadLine(line); ok && onProgress != nil {
			onProgress(p)
		}
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("media: %s failed: %w: %s", d.binary, err, firstLine(stderr.String()))
	}
	if destination == "" {
		return "", fmt.Errorf("media: %s reported no destination for %s", d.binary, url)
	}
	return destination, nil
}

// firstLine keeps error messages single-line; tool stderr can be pages long.
func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
