// Package config loads application settings from the environment, with
// optional .env file support for local development.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Settings holds everything the services and CLI need: directories, tool
// binary paths and the executor tuning knobs. Zero-config works: every field
// has a usable default.
type Settings struct {
	// DownloadDir receives downloaded media and generated subtitles.
	DownloadDir string `env:"SHINOBU_DOWNLOAD_DIR" envDefault:"downloads"`

	// StateFile is the JSON file task records are persisted to.
	StateFile string `env:"SHINOBU_STATE_FILE" envDefault:"tasks.json"`

	// WorkerCount sets the executor pool size. 0 means the executor default
	// of twice the CPU count.
	WorkerCount int `env:"SHINOBU_WORKERS" envDefault:"0"`

	// GracePeriod bounds how long a cancelled operation may keep running
	// before its future is forcibly resolved.
	GracePeriod time.Duration `env:"SHINOBU_GRACE_PERIOD" envDefault:"3s"`

	// DownloadsPerSec throttles download task starts. 0 disables the limiter.
	DownloadsPerSec float64 `env:"SHINOBU_DOWNLOADS_PER_SEC" envDefault:"0"`

	YtDlpPath   string `env:"SHINOBU_YTDLP_PATH" envDefault:"yt-dlp"`
	FFmpegPath  string `env:"SHINOBU_FFMPEG_PATH" envDefault:"ffmpeg"`
	WhisperPath string `env:"SHINOBU_WHISPER_PATH" envDefault:"whisper"`

	// WhisperModel and WhisperLanguage are passed through to the whisper CLI.
	// An empty language lets whisper auto-detect.
	WhisperModel    string `env:"SHINOBU_WHISPER_MODEL" envDefault:"base"`
	WhisperLanguage string `env:"SHINOBU_WHISPER_LANGUAGE" envDefault:""`
}

// Load reads a .env file if present, then parses the environment into
// Settings.
func Load() (Settings, error) {
	// The .env file is optional; a missing one is not an error.
	_ = godotenv.Load()

	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("config: parsing environment: %w", err)
	}
	if err := s.validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s Settings) validate() error {
	if s.WorkerCount < 0 {
		return fmt.Errorf("config: SHINOBU_WORKERS must not be negative, got %d", s.WorkerCount)
	}
	if s.GracePeriod < 0 {
		return fmt.Errorf("config: SHINOBU_GRACE_PERIOD must not be negative, got %s", s.GracePeriod)
	}
	if s.DownloadsPerSec < 0 {
		return fmt.Errorf("config: SHINOBU_DOWNLOADS_PER_SEC must not be negative, got %f", s.DownloadsPerSec)
	}
	return nil
}
