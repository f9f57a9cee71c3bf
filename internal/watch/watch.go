// Package watch follows an import job from the command line until the
// service reports a terminal status.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"drive-gallery/internal/model"
)

// ErrJobFailed is returned by Follow when the job ends in the failed status.
var ErrJobFailed = errors.New("import job failed")

type JobGetter interface {
	GetJob(ctx context.Context, id string) (model.Job, error)
}

type Options struct {
	Interval time.Duration
	Out      io.Writer
	Logger   zerolog.Logger
	Now      func() time.Time
}

// Follow polls the job every interval and prints a line whenever its status
// or progress changes. Poll errors are logged and polling continues; only
// context cancellation stops it early.
func Follow(ctx context.Context, svc JobGetter, id string, opts Options) (model.Job, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Job{}, errors.New("job id is required")
	}
	if opts.Interval <= 0 {
		opts.Interval = 2 * time.Second
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	started := opts.Now()
	last := ""
	check := func() (model.Job, bool) {
		job, err := svc.GetJob(ctx, id)
		if err != nil {
			if ctx.Err() == nil {
				opts.Logger.Warn().Err(err).Str("job_id", id).Msg("poll job status")
			}
			return model.Job{}, false
		}
		if line := statusKey(job); line != last {
			last = line
			fmt.Fprintf(opts.Out, "%s | elapsed %s\n", line, formatElapsed(opts.Now().Sub(started)))
		}
		return job, job.IsTerminal()
	}

	if job, done := check(); done {
		return finish(job)
	}

	t := time.NewTicker(opts.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return model.Job{}, fmt.Errorf("watch job %s: %w", id, ctx.Err())
		case <-t.C:
			if job, done := check(); done {
				return finish(job)
			}
		}
	}
}

func finish(job model.Job) (model.Job, error) {
	if model.NormalizeStatus(job.Status) == model.StatusFailed {
		if job.Result != nil && job.Result.Error != "" {
			return job, fmt.Errorf("%w: %s", ErrJobFailed, job.Result.Error)
		}
		return job, ErrJobFailed
	}
	return job, nil
}

func statusKey(job model.Job) string {
	parts := []string{
		"job " + model.ShortID(job.ID),
		model.NormalizeStatus(job.Status),
	}
	if pct, ok := job.ActiveProgress(); ok {
		parts = append(parts, fmt.Sprintf("%d%%", pct))
	}
	if job.Result != nil && job.IsTerminal() {
		parts = append(parts, fmt.Sprintf("%d imported, %d updated", job.Result.Imported, job.Result.Updated))
	}
	return strings.Join(parts, " | ")
}

func formatElapsed(d time.Duration) string {
	secs := int64(math.Round(d.Seconds()))
	if secs < 60 {
		return fmt.Sprintf("%ds", secs)
	}
	minutes := secs / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, secs%60)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}
