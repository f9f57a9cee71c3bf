package gallery

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"drive-gallery/internal/model"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true)
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	selStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Bold(true)
	disableStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true)

	jobOKPanel   = panelStyle.BorderForeground(lipgloss.Color("42"))
	jobFailPanel = panelStyle.BorderForeground(lipgloss.Color("203"))
)

func toneStyle(t model.Tone) lipgloss.Style {
	switch t {
	case model.ToneSuccess:
		return okStyle
	case model.ToneFailure:
		return errorStyle
	case model.ToneActive:
		return activeStyle
	default:
		return mutedStyle
	}
}

func (m Model) View() string {
	width := m.width
	if width <= 0 {
		width = 100
	}

	header := titleStyle.Render("Google Drive Image Importer")
	if m.cfg.ServiceLabel != "" {
		header += "  " + mutedStyle.Render(m.cfg.ServiceLabel)
	}

	sections := []string{header}
	if job, ok := m.CurrentJob(); ok {
		sections = append(sections, m.renderJobPanel(job, width))
	}
	sections = append(sections, m.renderForm(width))
	if m.err != "" {
		sections = append(sections, errorStyle.Render(m.err))
	}
	if m.flash != "" {
		style := okStyle
		if strings.HasSuffix(m.flash, "failed") || strings.HasPrefix(m.flash, "import is disabled") {
			style = errorStyle
		}
		sections = append(sections, style.Render(truncateRunes(m.flash, maxInt(width-2, 10))))
	}
	sections = append(sections, m.renderImages(width))
	sections = append(sections, m.renderJobs(width))
	if m.showHelp {
		sections = append(sections, m.help.FullHelpView(m.keys.FullHelp()))
	} else {
		sections = append(sections, m.help.ShortHelpView(m.keys.ShortHelp()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderJobPanel(job model.Job, width int) string {
	status := model.NormalizeStatus(job.Status)
	lines := []string{
		"Current Job",
		kv("id", job.ID),
		kv("status", toneStyle(model.StatusTone(status)).Render(status)),
	}
	if pct, ok := job.ActiveProgress(); ok {
		lines = append(lines, m.bar.ViewAs(float64(pct)/100)+" "+strconv.Itoa(pct)+"%")
	}
	style := jobOKPanel
	if status == model.StatusFailed {
		style = jobFailPanel
	}
	return style.Width(maxInt(width-2, 20)).Render(strings.Join(lines, "\n"))
}

func (m Model) renderForm(width int) string {
	label := "Import Folder"
	button := "[ Start Import ]"
	if m.Loading() {
		button = "[ Importing... ] " + m.spinner.View()
	}
	if !m.CanSubmit() {
		button = disableStyle.Render(button)
	}
	hint := "press i to enter a folder URL"
	if m.focus == focusForm {
		hint = "enter: start import | esc: back"
	}
	body := label + "\n" + m.input.View() + "\n" + button + "  " + mutedStyle.Render(hint)
	return panelStyle.Width(maxInt(width-2, 20)).Render(body)
}

func (m Model) renderImages(width int) string {
	inner := maxInt(width-6, 12)
	lines := []string{fmt.Sprintf("Total Images: %d", m.total)}

	if len(m.images) == 0 {
		lines = append(lines, mutedStyle.Render("No images yet."))
	}
	maxRows := clampInt((m.height-20)/3, 3, len(m.images)+1)
	start, end := listWindow(len(m.images), m.cursor, maxRows)
	if start > 0 {
		lines = append(lines, mutedStyle.Render("..."))
	}
	for i := start; i < end; i++ {
		img := m.images[i]
		name := truncateRunes(img.Name, inner)
		if i == m.cursor {
			name = selStyle.Render(name)
		}
		lines = append(lines, name)
		meta := fmt.Sprintf("%s · %d bytes (%s)", img.MimeType, img.Size, FormatBytesIEC(img.Size))
		lines = append(lines, "  "+mutedStyle.Render(wrapOrTrim(meta, inner-2)))
		if img.URL != "" {
			lines = append(lines, "  "+mutedStyle.Render(wrapOrTrim(img.URL, inner-2)))
		}
	}
	if end < len(m.images) {
		lines = append(lines, mutedStyle.Render("..."))
	}
	lines = append(lines, "", m.renderPager())
	return panelStyle.Width(maxInt(width-2, 20)).Render(strings.Join(lines, "\n"))
}

func (m Model) renderPager() string {
	prev := "< Prev"
	next := "Next >"
	if !m.PrevEnabled() {
		prev = disableStyle.Render(prev)
	}
	if !m.NextEnabled() {
		next = disableStyle.Render(next)
	}
	page, pages := PageNumber(m.offset, m.limit, m.total)
	label := fmt.Sprintf("Page %d of %d", page, pages)
	return prev + "  " + mutedStyle.Render(label) + "  " + next
}

func (m Model) renderJobs(width int) string {
	inner := maxInt(width-6, 12)
	lines := []string{"Recent Jobs"}
	if len(m.jobs) == 0 {
		lines = append(lines, mutedStyle.Render("No jobs yet."))
	}
	for i, job := range m.jobs {
		if i >= recentJobsShown {
			break
		}
		lines = append(lines, wrapOrTrim(FormatJobLine(job), inner))
		if job.Result != nil {
			lines = append(lines, "  "+mutedStyle.Render(FormatJobResult(*job.Result)))
		}
	}
	return panelStyle.Width(maxInt(width-2, 20)).Render(strings.Join(lines, "\n"))
}

// FormatJobLine renders "Job <id8>  STATUS  <created>" with the status styled
// by tone.
func FormatJobLine(job model.Job) string {
	status := strings.ToUpper(model.NormalizeStatus(job.Status))
	if status == "" {
		status = "UNKNOWN"
	}
	styled := toneStyle(model.StatusTone(job.Status)).Render(status)
	return fmt.Sprintf("Job %s  %s  %s", model.ShortID(job.ID), styled, FormatCreated(job))
}

func FormatJobResult(r model.JobResult) string {
	return fmt.Sprintf("%d imported, %d updated", r.Imported, r.Updated)
}

// FormatCreated renders created_at in local time, or "Unknown".
func FormatCreated(job model.Job) string {
	t, ok := job.CreatedTime()
	if !ok {
		return "Unknown"
	}
	return t.In(time.Local).Format("2006-01-02 15:04:05")
}
