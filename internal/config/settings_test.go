package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	s, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if s.DownloadDir != "downloads" {
		t.Errorf("expected default download dir, got %q", s.DownloadDir)
	}
	if s.StateFile != "tasks.json" {
		t.Errorf("expected default state file, got %q", s.StateFile)
	}
	if s.WorkerCount != 0 {
		t.Errorf("expected worker count 0 (executor default), got %d", s.WorkerCount)
	}
	if s.GracePeriod != 3*time.Second {
		t.Errorf("expected 3s grace period, got %s", s.GracePeriod)
	}
	if s.YtDlpPath != "yt-dlp" || s.FFmpegPath != "ffmpeg" || s.WhisperPath != "whisper" {
		t.Errorf("unexpected tool defaults: %q %q %q", s.YtDlpPath, s.FFmpegPath, s.WhisperPath)
	}
	if s.WhisperModel != "base" {
		t.Errorf("expected base whisper model, got %q", s.WhisperModel)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SHINOBU_DOWNLOAD_DIR", "/data/media")
	t.Setenv("SHINOBU_WORKERS", "8")
	t.Setenv("SHINOBU_GRACE_PERIOD", "10s")
	t.Setenv("SHINOBU_WHISPER_MODEL", "large-v3")
	t.Setenv("SHINOBU_WHISPER_LANGUAGE", "ja")
	t.Setenv("SHINOBU_DOWNLOADS_PER_SEC", "2.5")

	s, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if s.DownloadDir != "/data/media" {
		t.Errorf("expected /data/media, got %q", s.DownloadDir)
	}
	if s.WorkerCount != 8 {
		t.Errorf("expected 8 workers, got %d", s.WorkerCount)
	}
	if s.GracePeriod != 10*time.Second {
		t.Errorf("expected 10s grace period, got %s", s.GracePeriod)
	}
	if s.WhisperModel != "large-v3" || s.WhisperLanguage != "ja" {
		t.Errorf("unexpected whisper settings: %q %q", s.WhisperModel, s.WhisperLanguage)
	}
	if s.DownloadsPerSec != 2.5 {
		t.Errorf("expected 2.5 downloads/sec, got %f", s.DownloadsPerSec)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"negative workers", "SHINOBU_WORKERS", "-1"},
		{"negative grace period", "SHINOBU_GRACE_PERIOD", "-5s"},
		{"negative rate limit", "SHINOBU_DOWNLOADS_PER_SEC", "-2"},
		{"unparseable duration", "SHINOBU_GRACE_PERIOD", "soon"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Setenv(test.key, test.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected an error for %s=%s", test.key, test.value)
			}
		})
	}
}
