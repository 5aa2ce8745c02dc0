package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"

	"github.com/Nana1237854/Shinobu-VoiceTranslator/internal/model"
)

var (
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
)

// batchView renders live batch progress: one bar counting finished tasks,
// with the description cycling through whatever is currently moving.
type batchView struct {
	bar *progressbar.ProgressBar

	mu       sync.Mutex
	finished map[string]bool
}

func newBatchView(total int) *batchView {
	return &batchView{
		bar: progressbar.NewOptions(total,
			progressbar.OptionSetDescription("Working"),
			progressbar.OptionSetWidth(50),
			progressbar.OptionShowCount(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "█",
				SaucerHead:    "█",
				SaucerPadding: "░",
				BarStart:      "│",
				BarEnd:        "│",
			}),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		),
		finished: make(map[string]bool),
	}
}

// update is the services' UpdateFunc. Called from executor goroutines.
func (v *batchView) update(task model.Task) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if task.Status.IsFinished() {
		if !v.finished[task.ID] {
			v.finished[task.ID] = true
			_ = v.bar.Add(1)
		}
		return
	}
	if task.Status == model.StatusRunning {
		desc := task.Name
		if task.Speed != "" {
			desc = fmt.Sprintf("%s (%s, ETA %s)", task.Name, task.Speed, task.ETAString())
		}
		v.bar.Describe(truncate(desc, 48))
	}
}

func (v *batchView) finish() {
	_ = v.bar.Finish()
	fmt.Fprintln(os.Stderr)
}

// renderBatchTable prints the outcome of one batch run.
func renderBatchTable(tasks []model.Task) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Name", "Status", "Result")

	for _, task := range tasks {
		result := task.OutputPath
		if task.Status == model.StatusFailed {
			result = task.LastError
		}
		_ = table.Append(truncate(task.Name, 40), statusString(task.Status), truncate(result, 60))
	}
	_ = table.Render()
}

// renderTaskTable prints the persisted task history for the list command.
func renderTaskTable(tasks []*model.Task) {
	if len(tasks) == 0 {
		fmt.Println("no recorded tasks")
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Created", "Type", "Name", "Status", "Output")

	for _, task := range tasks {
		_ = table.Append(
			task.CreatedAt.Format("2006-01-02 15:04"),
			string(task.Type),
			truncate(task.Name, 40),
			statusString(task.Status),
			truncate(task.OutputPath, 50),
		)
	}
	_ = table.Render()
}

func statusString(status model.TaskStatus) string {
	switch status {
	case model.StatusSuccess:
		return green.Sprint(status)
	case model.StatusFailed:
		return red.Sprint(status)
	case model.StatusCancelled:
		return yellow.Sprint(status)
	default:
		return status.String()
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
