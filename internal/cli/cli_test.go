package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drive-gallery/internal/importapi/importapitest"
	"drive-gallery/internal/model"
	"drive-gallery/internal/settings"
	"drive-gallery/internal/watch"
)

const testFolder = "https://drive.google.com/drive/folders/folder-42"

type cliEnv struct {
	t      *testing.T
	srv    *importapitest.Server
	config string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	t.Setenv(settings.EnvAPIBaseURL, "")
	t.Setenv(settings.EnvJobPollInterval, "5ms")
	return &cliEnv{
		t:      t,
		srv:    importapitest.New(t),
		config: filepath.Join(t.TempDir(), "settings.json"),
	}
}

func (e *cliEnv) run(args ...string) (string, error) {
	e.t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	full := append([]string{"--config", e.config, "--api-base-url", e.srv.URL}, args...)
	cmd.SetArgs(full)
	err := cmd.Execute()
	return out.String(), err
}

func TestImagesCommandPrintsPage(t *testing.T) {
	env := newCLIEnv(t)
	env.srv.AddImages(12)

	out, err := env.run("images", "--limit", "5", "--offset", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Images: 12")
	assert.Contains(t, out, "image-006.png")
	assert.Contains(t, out, "image/png · 6144 bytes (6.0 KiB)")
	assert.Contains(t, out, "page 2/3")
	assert.Contains(t, out, "next: --offset 10")
	assert.NotContains(t, out, "image-011.png")
}

func TestImagesCommandJSONUsesSettingsPageLimit(t *testing.T) {
	env := newCLIEnv(t)
	env.srv.AddImages(30)
	_, err := env.run("settings", "set", "--page-limit", "7")
	require.NoError(t, err)

	out, err := env.run("images", "-o", "json")
	require.NoError(t, err)
	var page model.ImagePage
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	assert.Len(t, page.Items, 7)
	assert.Equal(t, 30, page.Total)
}

func TestImagesCommandRejectsBadLimit(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("images", "--limit", "500")
	require.Error(t, err)
	assert.Equal(t, 0, env.srv.Calls("GET /images"))
}

func TestImportWaitFollowsJobToCompletion(t *testing.T) {
	env := newCLIEnv(t)
	env.srv.SetScript(
		importapitest.Step{Status: model.StatusQueued},
		importapitest.Step{Status: model.StatusStarted, Progress: 50},
		importapitest.Step{Status: model.StatusFinished, AddImages: 3, Result: &model.JobResult{Status: "success", Imported: 3, Total: 3}},
	)

	out, err := env.run("import", testFolder, "--wait")
	require.NoError(t, err)
	assert.Contains(t, out, "started import job")
	assert.Contains(t, out, "started | 50%")
	assert.Contains(t, out, "finished | 3 imported, 0 updated")

	out, err = env.run("images")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Images: 3")
}

func TestImportWaitReportsFailure(t *testing.T) {
	env := newCLIEnv(t)
	env.srv.SetScript(
		importapitest.Step{Status: model.StatusQueued},
		importapitest.Step{Status: model.StatusFailed, Result: &model.JobResult{Status: "failed", Error: "folder is private"}},
	)

	_, err := env.run("import", testFolder, "--wait")
	require.Error(t, err)
	assert.True(t, errors.Is(err, watch.ErrJobFailed))
	assert.Contains(t, err.Error(), "folder is private")
}

func TestImportRejectsRelativeURL(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("import", "drive.google.com/drive/folders/x")
	require.Error(t, err)
	assert.Equal(t, 0, env.srv.Calls("POST /import/google-drive"))
}

func TestImportSurfacesServiceDetail(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("import", "https://example.com/not-a-folder")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "folder_id or valid folder_url required")
}

func TestJobsCommands(t *testing.T) {
	env := newCLIEnv(t)
	env.srv.SetScript(importapitest.Step{Status: model.StatusQueued})

	out, err := env.run("import", testFolder, "-o", "json")
	require.NoError(t, err)
	var res importOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.NotEmpty(t, res.Ticket.JobID)
	assert.Equal(t, "folder-42", res.Ticket.FolderID)

	out, err = env.run("jobs")
	require.NoError(t, err)
	assert.Contains(t, out, "Job "+model.ShortID(res.Ticket.JobID))
	assert.Contains(t, out, "QUEUED")

	out, err = env.run("jobs", "show", res.Ticket.JobID)
	require.NoError(t, err)
	assert.Contains(t, out, "status: queued")

	_, err = env.run("jobs", "result", res.Ticket.JobID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Job not finished yet")

	_, err = env.run("jobs", "show", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestDoctor(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run("doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "health: ok")
	assert.Contains(t, out, "ready.redis: ok (up)")
	assert.Contains(t, out, "doctor: all checks passed")

	env.srv.SetUnavailable(true)
	out, err = env.run("doctor")
	require.Error(t, err)
	assert.Contains(t, out, "ready: fail (not ready)")
	assert.Contains(t, out, "ready.redis: fail (down)")
}

func TestSettingsSetAndShow(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("settings", "set", "--page-limit", "25", "--job-poll-interval", "1s", "--base-url", "https://import.example.com/")
	require.NoError(t, err)

	out, err := env.run("settings", "show", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "page_limit: 25")
	assert.Contains(t, out, "job_poll_interval: 1s")
	assert.Contains(t, out, "api_base_url: https://import.example.com")

	_, err = env.run("settings", "set")
	assert.Error(t, err)
	_, err = env.run("settings", "set", "--request-timeout", "soon")
	assert.Error(t, err)
}

func TestSettingsSetIgnoresRootBaseURLOverride(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("settings", "set", "--page-limit", "5")
	require.NoError(t, err)

	saved, err := settings.Read(env.config)
	require.NoError(t, err)
	assert.Equal(t, 5, saved.PageLimit)
	assert.Equal(t, strings.TrimRight(settings.DefaultAPIBaseURL, "/"), saved.APIBaseURL)
	assert.NotEqual(t, env.srv.URL, saved.APIBaseURL)

	_, err = env.run("settings", "set")
	assert.Error(t, err)
}

func TestImagesExportParquet(t *testing.T) {
	env := newCLIEnv(t)
	env.srv.AddImages(9)
	path := filepath.Join(t.TempDir(), "catalog.parquet")

	out, err := env.run("images", "export", "--out", path, "--page-size", "4")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "exported 9 images to "))
	assert.Equal(t, 3, env.srv.Calls("GET /images"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
