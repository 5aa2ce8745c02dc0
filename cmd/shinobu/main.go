// Command shinobu downloads media and generates subtitles from the terminal.
//
// Usage:
//
//	shinobu download URL...
//	shinobu transcribe FILE...
//	shinobu list
//
// Configuration comes from the environment (see internal/config), with an
// optional .env file in the working directory.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Nana1237854/Shinobu-VoiceTranslator/internal/config"
	"github.com/Nana1237854/Shinobu-VoiceTranslator/internal/media"
	"github.com/Nana1237854/Shinobu-VoiceTranslator/internal/model"
	"github.com/Nana1237854/Shinobu-VoiceTranslator/internal/service"
	"github.com/Nana1237854/Shinobu-VoiceTranslator/internal/store"
	"github.com/Nana1237854/Shinobu-VoiceTranslator/taskexec"
)

const shutdownTimeout = 10 * time.Second

func main() {
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(flag.Arg(0), flag.Args()[1:], logger); err != nil {
		fmt.Fprintf(os.Stderr, "shinobu: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage:
  shinobu [-v] download URL...     download media with yt-dlp
  shinobu [-v] transcribe FILE...  generate .srt subtitles with ffmpeg + whisper
  shinobu [-v] list                show recorded tasks
`)
}

func run(command string, args []string, logger *slog.Logger) error {
	settings, err := config.Load()
	if err != nil {
		return err
	}

	st, err := store.Open(settings.StateFile)
	if err != nil {
		return err
	}

	switch command {
	case "download":
		if len(args) == 0 {
			return errors.New("download needs at least one URL")
		}
		dl := media.NewDownloader(settings.YtDlpPath, settings.DownloadDir)
		svc := service.NewDownloadService(dl, st, logger, downloadOptions(settings, logger)...)
		return runBatch(svc, args)
	case "transcribe":
		if len(args) == 0 {
			return errors.New("transcribe needs at least one file")
		}
		ex := media.NewExtractor(settings.FFmpegPath)
		tr := media.NewTranscriber(settings.WhisperPath, settings.WhisperModel, settings.WhisperLanguage)
		svc := service.NewTranscribeService(ex, tr, st, logger, commonOptions(settings, logger)...)
		return runBatch(svc, args)
	case "list":
		renderTaskTable(st.List())
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func commonOptions(settings config.Settings, logger *slog.Logger) []taskexec.Option {
	opts := []taskexec.Option{
		taskexec.WithGracePeriod(settings.GracePeriod),
		taskexec.WithLogger(logger),
	}
	if settings.WorkerCount > 0 {
		opts = append(opts, taskexec.WithWorkerCount(settings.WorkerCount))
	}
	return opts
}

func downloadOptions(settings config.Settings, logger *slog.Logger) []taskexec.Option {
	opts := commonOptions(settings, logger)
	if settings.DownloadsPerSec > 0 {
		opts = append(opts, taskexec.WithRateLimit(settings.DownloadsPerSec, 1))
	}
	return opts
}

// batchService is the part of a service the batch runner needs; both concrete
// services satisfy it.
type batchService interface {
	SetUpdateCallback(service.UpdateFunc)
	StartBatch(sources []string) ([]model.Task, *taskexec.Future[[]string], error)
	Get(id string) (model.Task, bool)
	Shutdown(timeout time.Duration) error
}

func runBatch(svc batchService, sources []string) error {
	view := newBatchView(len(sources))
	svc.SetUpdateCallback(view.update)

	tasks, combined, err := svc.StartBatch(sources)
	if err != nil {
		_ = svc.Shutdown(shutdownTimeout)
		return err
	}

	outputs, batchErr := awaitInterruptible(combined)
	view.finish()

	final := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if current, ok := svc.Get(t.ID); ok {
			final = append(final, current)
		}
	}
	renderBatchTable(final)

	if err := svc.Shutdown(shutdownTimeout); err != nil {
		fmt.Fprintf(os.Stderr, "shinobu: shutdown: %v\n", err)
	}

	if batchErr != nil {
		return batchErr
	}
	fmt.Printf("\n%d file(s) done\n", len(outputs))
	return nil
}

// awaitInterruptible waits for the combined future, cancelling it on SIGINT
// or SIGTERM and then waiting for the cancellation to settle.
func awaitInterruptible(combined *taskexec.Future[[]string]) ([]string, error) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case <-combined.Done():
	case <-sig:
		fmt.Fprintln(os.Stderr, "\ninterrupted, cancelling...")
		combined.Cancel()
		<-combined.Done()
	}
	return combined.Await()
}
