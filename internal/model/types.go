package model

import (
	"strings"
	"time"
)

// Image is one imported file as reported by the Import Service.
type Image struct {
	ID            ImageID `json:"id" yaml:"id"`
	Name          string  `json:"name" yaml:"name"`
	URL           string  `json:"url" yaml:"url"`
	MimeType      string  `json:"mime_type" yaml:"mime_type"`
	Size          int64   `json:"size" yaml:"size"`
	GoogleDriveID string  `json:"google_drive_id,omitempty" yaml:"google_drive_id,omitempty"`
	StoragePath   string  `json:"storage_path,omitempty" yaml:"storage_path,omitempty"`
}

// ImagePage is a window over the image collection. Total is the size of the
// whole collection, not of Items.
type ImagePage struct {
	Items  []Image `json:"items" yaml:"items"`
	Total  int     `json:"total" yaml:"total"`
	Limit  int     `json:"limit" yaml:"limit"`
	Offset int     `json:"offset" yaml:"offset"`
}

type JobResult struct {
	Status   string `json:"status,omitempty" yaml:"status,omitempty"`
	Message  string `json:"message,omitempty" yaml:"message,omitempty"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
	Imported int    `json:"imported" yaml:"imported"`
	Updated  int    `json:"updated" yaml:"updated"`
	Total    int    `json:"total,omitempty" yaml:"total,omitempty"`
}

type Job struct {
	ID        string     `json:"id" yaml:"id"`
	Status    string     `json:"status" yaml:"status"`
	Progress  *int       `json:"progress,omitempty" yaml:"progress,omitempty"`
	Result    *JobResult `json:"result,omitempty" yaml:"result,omitempty"`
	CreatedAt string     `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	StartedAt string     `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	EndedAt   string     `json:"ended_at,omitempty" yaml:"ended_at,omitempty"`
}

// ImportTicket is returned when the service accepts an import request.
type ImportTicket struct {
	JobID    string `json:"job_id" yaml:"job_id"`
	FolderID string `json:"folder_id,omitempty" yaml:"folder_id,omitempty"`
	Message  string `json:"message,omitempty" yaml:"message,omitempty"`
}

func (j Job) IsTerminal() bool {
	return IsTerminal(j.Status)
}

// ActiveProgress returns the completion percentage while the job is running.
func (j Job) ActiveProgress() (int, bool) {
	if NormalizeStatus(j.Status) != StatusStarted || j.Progress == nil || *j.Progress <= 0 {
		return 0, false
	}
	p := *j.Progress
	if p > 100 {
		p = 100
	}
	return p, true
}

func (j Job) CreatedTime() (time.Time, bool) {
	return parseServiceTime(j.CreatedAt)
}

var serviceTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// parseServiceTime accepts ISO-8601 timestamps with or without a zone.
// Timestamps without a zone are UTC.
func parseServiceTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range serviceTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func ShortID(id string) string {
	r := []rune(id)
	if len(r) <= 8 {
		return id
	}
	return string(r[:8])
}
