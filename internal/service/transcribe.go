package service

import (
	"context"
	"log/slog"

	"github.com/Nana1237854/Shinobu-VoiceTranslator/internal/media"
	"github.com/Nana1237854/Shinobu-VoiceTranslator/internal/model"
	"github.com/Nana1237854/Shinobu-VoiceTranslator/internal/store"
	"github.com/Nana1237854/Shinobu-VoiceTranslator/taskexec"
)

// TranscribeService runs transcription tasks: audio extraction with ffmpeg
// followed by whisper, chained inside one operation so cancellation covers
// both stages.
type TranscribeService struct {
	*base
	extractor   Extractor
	transcriber Transcriber
}

// NewTranscribeService creates a transcription service backed by the given
// drivers.
func NewTranscribeService(ex Extractor, tr Transcriber, st *store.Store, log *slog.Logger, opts ...taskexec.Option) *TranscribeService {
	s := &TranscribeService{extractor: ex, transcriber: tr}
	s.base = newBase("transcribe", model.TypeTranscribe, st, log, opts...)
	s.base.run = s.pipeline
	return s
}

// Extraction is quick next to transcription; the split below keeps the bar
// from sitting at 100% for the whole whisper run.
const extractShare = 0.2

func (s *TranscribeService) pipeline(ctx context.Context, task model.Task, progress func(float64, string, int)) (string, error) {
	audioPath, err := s.extractor.Extract(ctx, task.Source, func(p media.Progress) {
		progress(p.Fraction*extractShare, "", -1)
	})
	if err != nil {
		return "", err
	}
	progress(extractShare, "", -1)

	srtPath, err := s.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return "", err
	}
	return srtPath, nil
}
