package service

import (
	"context"

	"github.com/Nana1237854/Shinobu-VoiceTranslator/internal/media"
)

// Downloader fetches a remote source and returns the downloaded file path.
type Downloader interface {
	Download(ctx context.Context, url string, onProgress media.ProgressFunc) (string, error)
}

// Extractor produces a transcription-ready audio file from a media file.
type Extractor interface {
	Extract(ctx context.Context, inputPath string, onProgress media.ProgressFunc) (string, error)
}

// Transcriber produces a subtitle file from an audio file.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}
