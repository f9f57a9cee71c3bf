package gallery

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"drive-gallery/internal/model"
)

type imagesLoadedMsg struct {
	seq    int
	limit  int
	offset int
	page   model.ImagePage
	err    error
}

type jobsLoadedMsg struct {
	jobs []model.Job
	err  error
}

type importStartedMsg struct {
	ticket model.ImportTicket
	err    error
}

// jobTickMsg and imageTickMsg carry the polling generation they were
// scheduled under. A tick from an older generation is dropped, which is how
// both loops stop once the active job clears.
type jobTickMsg struct {
	gen int
}

type imageTickMsg struct {
	gen int
}

type jobPolledMsg struct {
	gen int
	job model.Job
	err error
}

func tickAfter(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return msg
	})
}

// requester runs Import Service calls off the update loop. Each call gets
// its own timeout; nothing cancels a call once issued.
type requester struct {
	svc     Service
	timeout time.Duration
}

func (r requester) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.timeout)
}

func (r requester) loadImages(seq, limit, offset int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := r.context()
		defer cancel()
		page, err := r.svc.ListImages(ctx, limit, offset)
		return imagesLoadedMsg{seq: seq, limit: limit, offset: offset, page: page, err: err}
	}
}

func (r requester) loadJobs() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := r.context()
		defer cancel()
		jobs, err := r.svc.ListJobs(ctx)
		return jobsLoadedMsg{jobs: jobs, err: err}
	}
}

func (r requester) startImport(folderURL string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := r.context()
		defer cancel()
		ticket, err := r.svc.StartImport(ctx, folderURL)
		return importStartedMsg{ticket: ticket, err: err}
	}
}

func (r requester) pollJob(gen int, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := r.context()
		defer cancel()
		job, err := r.svc.GetJob(ctx, id)
		return jobPolledMsg{gen: gen, job: job, err: err}
	}
}
