package service

import (
	"context"
	"log/slog"

	"github.com/Nana1237854/Shinobu-VoiceTranslator/internal/media"
	"github.com/Nana1237854/Shinobu-VoiceTranslator/internal/model"
	"github.com/Nana1237854/Shinobu-VoiceTranslator/internal/store"
	"github.com/Nana1237854/Shinobu-VoiceTranslator/taskexec"
)

// DownloadService runs download tasks through yt-dlp.
type DownloadService struct {
	*base
	downloader Downloader
}

// NewDownloadService creates a download service backed by the given
// downloader. Executor options tune the pool (worker count, grace period,
// rate limit).
func NewDownloadService(dl Downloader, st *store.Store, log *slog.Logger, opts ...taskexec.Option) *DownloadService {
	s := &DownloadService{downloader: dl}
	s.base = newBase("download", model.TypeDownload, st, log, opts...)
	s.base.run = s.pipeline
	return s
}

func (s *DownloadService) pipeline(ctx context.Context, task model.Task, progress func(float64, string, int)) (string, error) {
	return s.downloader.Download(ctx, task.Source, func(p media.Progress) {
		progress(p.Fraction, p.Speed, p.ETASec)
	})
}
