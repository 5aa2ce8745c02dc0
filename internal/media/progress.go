package media

import (
	"regexp"
	"strconv"
	"strings"
)

// Progress is one progress observation from an external tool. Fraction is in
// [0,1]; Speed and ETASec are only meaningful for downloads (yt-dlp reports
// them, ffmpeg and whisper do not).
type Progress struct {
	Fraction float64
	Speed    string
	ETASec   int
}

// ProgressFunc receives progress observations. Drivers invoke it from the
// goroutine reading the tool's output; implementations must be safe for that.
type ProgressFunc func(Progress)

// yt-dlp --newline progress lines look like:
//
//	[download]  42.5% of 10.00MiB at 1.23MiB/s ETA 00:12
//	[download] 100% of 10.00MiB in 00:08
var downloadProgressRe = regexp.MustCompile(
	`^\[download\]\s+([\d.]+)%(?:\s+of\s+~?\S+)?(?:\s+at\s+(\S+))?(?:\s+ETA\s+(\S+))?`)

const destinationPrefix = "[download] Destination: "

// parseDownloadLine extracts progress from one yt-dlp output line. The second
// return is false for lines that carry no progress (destination lines, merge
// messages, warnings).
func parseDownloadLine(line string) (Progress, bool) {
	m := downloadProgressRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return Progress{}, false
	}

	percent, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Progress{}, false
	}

	p := Progress{Fraction: percent / 100, ETASec: -1}
	if p.Fraction > 1 {
		p.Fraction = 1
	}
	if m[2] != "" && m[2] != "Unknown" {
		p.Speed = m[2]
	}
	if m[3] != "" {
		p.ETASec = parseClock(m[3])
	}
	return p, true
}

// parseDestinationLine extracts the output path from a yt-dlp destination
// line, or "" if the line is something else.
func parseDestinationLine(line string) string {
	line = strings.TrimSpace(line)
	if rest, ok := strings.CutPrefix(line, destinationPrefix); ok {
		return strings.TrimSpace(rest)
	}
	return ""
}

// parseClock converts mm:ss or hh:mm:ss to seconds, -1 if unparseable.
func parseClock(s string) int {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return -1
	}
	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return -1
		}
		total = total*60 + n
	}
	return total
}
