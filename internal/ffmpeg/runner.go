package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os/exec"
	"strings"
)

// diagnosticLines is how many trailing stderr lines are kept for error
// reporting when an encode fails.
const diagnosticLines = 20

// ProgressFunc receives the completed fraction of the current encode as a
// percentage in [0,100].
type ProgressFunc func(percent int)

// Runner invokes the ffmpeg binary and streams progress from its stderr.
type Runner struct {
	bin string
}

func NewRunner(bin string) *Runner {
	if bin == "" {
		bin = "ffmpeg"
	}
	return &Runner{bin: bin}
}

// Run executes ffmpeg with the given arguments. totalDuration is the expected
// output length in seconds and is used to turn the encoder's time= stream
// into a percentage; onProgress is capped at 99 so the caller owns the
// terminal event. A nonzero exit returns an error carrying the tail of
// stderr as diagnostic text.
func (r *Runner) Run(ctx context.Context, args []string, totalDuration float64, onProgress ProgressFunc) error {
	cmd := exec.CommandContext(ctx, r.bin, args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to open ffmpeg stderr: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", r.bin, err)
	}

	var tail []string
	scanner := newStatsScanner(bufio.NewScanner(stderr))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tail = append(tail, line)
		if len(tail) > diagnosticLines {
			tail = tail[1:]
		}

		if onProgress == nil || totalDuration <= 0 {
			continue
		}
		if sec, ok := parseProgressSeconds(line); ok {
			pct := int(sec / totalDuration * 100)
			if pct > 99 {
				pct = 99
			}
			if pct >= 0 {
				onProgress(pct)
			}
		}
	}

	if err := cmd.Wait(); err != nil {
		diag := strings.Join(tail, "\n")
		log.Printf("[FFmpeg] encode failed: %v", err)
		return fmt.Errorf("ffmpeg exited with error: %w; stderr tail:\n%s", err, diag)
	}

	return nil
}
