package gallery

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"drive-gallery/internal/model"
)

const (
	MsgLoadImagesFailed = "Failed to load images"
	MsgImportFailed     = "Import failed"

	recentJobsShown = 5
)

// Service is the part of the Import Service the gallery talks to.
type Service interface {
	ListImages(ctx context.Context, limit, offset int) (model.ImagePage, error)
	ListJobs(ctx context.Context) ([]model.Job, error)
	GetJob(ctx context.Context, id string) (model.Job, error)
	StartImport(ctx context.Context, folderURL string) (model.ImportTicket, error)
}

type Config struct {
	PageLimit            int
	JobPollInterval      time.Duration
	ImageRefreshInterval time.Duration
	RequestTimeout       time.Duration
	ServiceLabel         string
	Logger               zerolog.Logger
}

type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateJobActive
)

func (s State) String() string {
	switch s {
	case StateSubmitting:
		return "submitting"
	case StateJobActive:
		return "job active"
	default:
		return "idle"
	}
}

type focusMode int

const (
	focusBrowse focusMode = iota
	focusForm
)

// Model is the gallery controller. All fields are owned by the bubbletea
// update loop; network calls report back as messages.
type Model struct {
	cfg   Config
	api   requester
	log   zerolog.Logger
	after func(time.Duration, tea.Msg) tea.Cmd

	input      textinput.Model
	images     []model.Image
	total      int
	limit      int
	offset     int
	currentJob *model.Job
	jobs       []model.Job
	err        string

	// imageSeq identifies the most recent page request; only its answer may
	// replace the page. A failed request leaves limit/offset on the shown page.
	imageSeq       int
	imagesInFlight int
	submitting     bool
	pollGen        int

	focus    focusMode
	cursor   int
	width    int
	height   int
	flash    string
	showHelp bool

	initCmd tea.Cmd
	spinner spinner.Model
	bar     progress.Model
	keys    keyMap
	help    help.Model
}

func New(svc Service, cfg Config) Model {
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = 10
	}
	if cfg.JobPollInterval <= 0 {
		cfg.JobPollInterval = 2 * time.Second
	}
	if cfg.ImageRefreshInterval <= 0 {
		cfg.ImageRefreshInterval = 5 * time.Second
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}

	input := textinput.New()
	input.Placeholder = "Enter Google Drive folder URL..."
	input.Prompt = "> "
	input.CharLimit = 2048
	input.Width = 60
	input.Cursor.SetMode(cursor.CursorStatic)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = mutedStyle

	m := Model{
		cfg:     cfg,
		api:     requester{svc: svc, timeout: cfg.RequestTimeout},
		log:     cfg.Logger,
		after:   tickAfter,
		input:   input,
		images:  []model.Image{},
		jobs:    []model.Job{},
		limit:   cfg.PageLimit,
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		keys:    defaultKeyMap(),
		help:    help.New(),
	}
	m.initCmd = m.fetchImages(cfg.PageLimit, 0)
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.initCmd, m.fetchJobs(), m.spinner.Tick)
}

func (m Model) Loading() bool {
	return m.imagesInFlight > 0 || m.submitting
}

func (m Model) State() State {
	switch {
	case m.currentJob != nil:
		return StateJobActive
	case m.submitting:
		return StateSubmitting
	default:
		return StateIdle
	}
}

// busyReason names what blocks a new import.
func (m Model) busyReason() string {
	switch {
	case m.currentJob != nil:
		return StateJobActive.String()
	case m.submitting:
		return StateSubmitting.String()
	default:
		return "images load"
	}
}

// CanSubmit is false while anything is loading or a job is active, which
// keeps a session to one import at a time.
func (m Model) CanSubmit() bool {
	return !m.Loading() && m.currentJob == nil
}

func (m Model) PrevEnabled() bool {
	return CanPrev(m.offset) && !m.Loading()
}

func (m Model) NextEnabled() bool {
	return CanNext(m.offset, m.limit, m.total) && !m.Loading()
}

func (m Model) Images() []model.Image { return m.images }
func (m Model) Jobs() []model.Job     { return m.jobs }
func (m Model) Total() int            { return m.total }
func (m Model) Limit() int            { return m.limit }
func (m Model) Offset() int           { return m.offset }
func (m Model) Err() string           { return m.err }
func (m Model) Flash() string         { return m.flash }
func (m Model) FolderURL() string     { return m.input.Value() }

func (m Model) CurrentJob() (model.Job, bool) {
	if m.currentJob == nil {
		return model.Job{}, false
	}
	return *m.currentJob, true
}

func (m *Model) SetFolderURL(v string) {
	m.input.SetValue(v)
}

func (m *Model) fetchImages(limit, offset int) tea.Cmd {
	m.imageSeq++
	m.imagesInFlight++
	m.err = ""
	return m.api.loadImages(m.imageSeq, limit, offset)
}

func (m Model) fetchJobs() tea.Cmd {
	return m.api.loadJobs()
}

// ValidateFolderURL accepts absolute http(s) URLs only.
func ValidateFolderURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return errors.New("Folder URL is required")
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("Enter a valid folder URL (http or https)")
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = clampInt(msg.Width-24, 20, 120)
		m.bar.Width = clampInt(msg.Width-12, 20, 80)
		m.help.Width = msg.Width
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case imagesLoadedMsg:
		return m.onImagesLoaded(msg)
	case jobsLoadedMsg:
		return m.onJobsLoaded(msg)
	case importStartedMsg:
		return m.onImportStarted(msg)
	case jobTickMsg:
		return m.onJobTick(msg)
	case imageTickMsg:
		return m.onImageTick(msg)
	case jobPolledMsg:
		return m.onJobPolled(msg)
	case tea.KeyMsg:
		if m.focus == focusForm {
			return m.updateForm(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m Model) onImagesLoaded(msg imagesLoadedMsg) (tea.Model, tea.Cmd) {
	if m.imagesInFlight > 0 {
		m.imagesInFlight--
	}
	if msg.seq != m.imageSeq {
		m.log.Debug().Int("seq", msg.seq).Int("latest", m.imageSeq).Msg("drop superseded image page")
		return m, nil
	}
	if msg.err != nil {
		m.log.Error().Err(msg.err).Int("limit", msg.limit).Int("offset", msg.offset).Msg("load images")
		m.err = MsgLoadImagesFailed
		return m, nil
	}

	page := msg.page
	if page.Items == nil {
		page.Items = []model.Image{}
	}
	m.images = page.Items
	m.total = page.Total
	m.limit = page.Limit
	m.offset = page.Offset
	if m.cursor >= len(m.images) {
		m.cursor = maxInt(len(m.images)-1, 0)
	}
	return m, nil
}

func (m Model) onJobsLoaded(msg jobsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.log.Warn().Err(msg.err).Msg("refresh recent jobs")
		return m, nil
	}
	if msg.jobs == nil {
		msg.jobs = []model.Job{}
	}
	m.jobs = msg.jobs
	return m, nil
}

func (m Model) submit() (Model, tea.Cmd) {
	if !m.CanSubmit() {
		return m, nil
	}
	folderURL := strings.TrimSpace(m.input.Value())
	if err := ValidateFolderURL(folderURL); err != nil {
		m.err = err.Error()
		return m, nil
	}
	m.submitting = true
	m.err = ""
	m.flash = ""
	m.log.Info().Str("folder_url", folderURL).Msg("start import")
	return m, m.api.startImport(folderURL)
}

func (m Model) onImportStarted(msg importStartedMsg) (tea.Model, tea.Cmd) {
	m.submitting = false
	if msg.err != nil {
		m.log.Error().Err(msg.err).Msg("start import")
		m.err = MsgImportFailed
		return m, nil
	}

	m.currentJob = &model.Job{ID: msg.ticket.JobID, Status: model.StatusQueued}
	m.input.Reset()
	m.input.Blur()
	m.focus = focusBrowse
	m.pollGen++
	gen := m.pollGen
	m.log.Info().Str("job_id", msg.ticket.JobID).Str("folder_id", msg.ticket.FolderID).Msg("import queued")
	return m, tea.Batch(
		m.after(m.cfg.JobPollInterval, jobTickMsg{gen: gen}),
		m.after(m.cfg.ImageRefreshInterval, imageTickMsg{gen: gen}),
	)
}

func (m Model) pollingActive(gen int) bool {
	return m.currentJob != nil && gen == m.pollGen
}

func (m Model) onJobTick(msg jobTickMsg) (tea.Model, tea.Cmd) {
	if !m.pollingActive(msg.gen) {
		return m, nil
	}
	return m, tea.Batch(
		m.api.pollJob(msg.gen, m.currentJob.ID),
		m.after(m.cfg.JobPollInterval, jobTickMsg{gen: msg.gen}),
	)
}

func (m Model) onImageTick(msg imageTickMsg) (tea.Model, tea.Cmd) {
	if !m.pollingActive(msg.gen) {
		return m, nil
	}
	fetch := m.fetchImages(m.limit, m.offset)
	return m, tea.Batch(
		fetch,
		m.after(m.cfg.ImageRefreshInterval, imageTickMsg{gen: msg.gen}),
	)
}

// onJobPolled applies a job status. The first terminal status clears the
// active job and bumps the generation, so later ticks and in-flight polls
// from the same job are ignored and the refresh below runs once.
func (m Model) onJobPolled(msg jobPolledMsg) (tea.Model, tea.Cmd) {
	if !m.pollingActive(msg.gen) {
		return m, nil
	}
	if msg.err != nil {
		m.log.Warn().Err(msg.err).Str("job_id", m.currentJob.ID).Msg("poll job status")
		return m, nil
	}

	job := msg.job
	if job.ID == "" {
		job.ID = m.currentJob.ID
	}
	if !job.IsTerminal() {
		m.currentJob = &job
		return m, nil
	}

	m.currentJob = nil
	m.pollGen++
	m.flash = terminalFlash(job)
	m.log.Info().Str("job_id", job.ID).Str("status", job.Status).Msg("import job done")
	fetch := m.fetchImages(m.limit, m.offset)
	return m, tea.Batch(fetch, m.fetchJobs())
}

func terminalFlash(job model.Job) string {
	id := model.ShortID(job.ID)
	if model.NormalizeStatus(job.Status) == model.StatusFailed {
		return fmt.Sprintf("job %s failed", id)
	}
	if job.Result != nil {
		if job.Result.Error != "" {
			return fmt.Sprintf("job %s finished with error: %s", id, job.Result.Error)
		}
		return fmt.Sprintf("job %s finished: %d imported, %d updated", id, job.Result.Imported, job.Result.Updated)
	}
	return fmt.Sprintf("job %s finished", id)
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	case key.Matches(msg, m.keys.Import):
		if !m.CanSubmit() {
			m.flash = "import is disabled while " + m.busyReason()
			return m, nil
		}
		m.focus = focusForm
		m.flash = ""
		cmd := m.input.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Prev):
		if !m.PrevEnabled() {
			return m, nil
		}
		cmd := m.fetchImages(m.limit, PrevOffset(m.offset, m.limit))
		return m, cmd
	case key.Matches(msg, m.keys.Next):
		if !m.NextEnabled() {
			return m, nil
		}
		cmd := m.fetchImages(m.limit, NextOffset(m.offset, m.limit))
		return m, cmd
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.images)-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		fetch := m.fetchImages(m.limit, m.offset)
		return m, tea.Batch(fetch, m.fetchJobs())
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.focus = focusBrowse
		m.input.Blur()
		return m, nil
	case "enter":
		return m.submit()
	}
	if !m.CanSubmit() {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}
