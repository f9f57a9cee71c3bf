// Package importapitest runs an in-memory Import Service for tests.
package importapitest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"drive-gallery/internal/model"
)

var (
	reFolderPath  = regexp.MustCompile(`/folders/([a-zA-Z0-9_-]+)`)
	reFolderQuery = regexp.MustCompile(`[?&]id=([a-zA-Z0-9_-]+)`)
)

// Step is one status a scripted job reports. Each GET /jobs/{id} advances
// the job by one step; the last step repeats.
type Step struct {
	Status    string
	Progress  int
	Result    *model.JobResult
	AddImages int
}

type Server struct {
	*httptest.Server

	mu          sync.Mutex
	images      []model.Image
	jobs        map[string]*fakeJob
	jobOrder    []string
	script      []Step
	calls       map[string]int
	failImport  bool
	failImages  bool
	unavailable bool
}

type fakeJob struct {
	id        string
	folderID  string
	createdAt time.Time
	steps     []Step
	pos       int
}

func New(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{
		jobs:   make(map[string]*fakeJob),
		calls:  make(map[string]int),
		script: []Step{{Status: model.StatusQueued}, {Status: model.StatusFinished, Result: &model.JobResult{}}},
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.count)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "api"})
	})
	r.GET("/ready", s.ready)
	r.GET("/images", s.listImages)
	r.GET("/jobs", s.listJobs)
	r.GET("/jobs/:id", s.getJob)
	r.GET("/jobs/:id/result", s.jobResult)
	r.POST("/import/google-drive", s.startImport)
	return r
}

func (s *Server) count(c *gin.Context) {
	s.mu.Lock()
	s.calls[c.Request.Method+" "+c.FullPath()]++
	s.mu.Unlock()
	c.Next()
}

// Calls returns how often a route was hit, e.g. Calls("GET /jobs/:id").
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

func (s *Server) AddImages(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addImagesLocked(n)
}

func (s *Server) addImagesLocked(n int) {
	for i := 0; i < n; i++ {
		id := len(s.images) + 1
		s.images = append(s.images, model.Image{
			ID:       model.ImageID(strconv.Itoa(id)),
			Name:     fmt.Sprintf("image-%03d.png", id),
			URL:      fmt.Sprintf("https://cdn.example.com/image-%03d.png", id),
			MimeType: "image/png",
			Size:     int64(1024 * id),
		})
	}
}

// SetScript sets the status sequence for jobs created afterwards.
func (s *Server) SetScript(steps ...Step) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.script = append([]Step(nil), steps...)
}

func (s *Server) FailImports(fail bool) {
	s.mu.Lock()
	s.failImport = fail
	s.mu.Unlock()
}

func (s *Server) FailImages(fail bool) {
	s.mu.Lock()
	s.failImages = fail
	s.mu.Unlock()
}

func (s *Server) SetUnavailable(v bool) {
	s.mu.Lock()
	s.unavailable = v
	s.mu.Unlock()
}

func (s *Server) ready(c *gin.Context) {
	s.mu.Lock()
	down := s.unavailable
	s.mu.Unlock()
	if down {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "checks": gin.H{"database": true, "redis": false}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "checks": gin.H{"database": true, "redis": true}})
}

func (s *Server) listImages(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 200 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "limit must be between 1 and 200"})
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "offset must be >= 0"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failImages {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "database unavailable"})
		return
	}
	total := len(s.images)
	start := min(offset, total)
	end := min(offset+limit, total)
	items := append([]model.Image{}, s.images[start:end]...)
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total, "limit": limit, "offset": offset})
}

func (s *Server) listJobs(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Job, 0, len(s.jobOrder))
	for i := len(s.jobOrder) - 1; i >= 0; i-- {
		out = append(out, s.jobs[s.jobOrder[i]].snapshot())
	}
	if len(out) > 20 {
		out = out[:20]
	}
	c.JSON(http.StatusOK, gin.H{"jobs": out})
}

func (s *Server) getJob(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": fmt.Sprintf("Job %s not found", c.Param("id"))})
		return
	}
	if job.pos < len(job.steps)-1 {
		job.pos++
		s.addImagesLocked(job.steps[job.pos].AddImages)
	}
	c.JSON(http.StatusOK, job.snapshot())
}

func (s *Server) jobResult(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": fmt.Sprintf("Job %s not found", c.Param("id"))})
		return
	}
	snap := job.snapshot()
	if snap.Status != model.StatusFinished {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Job not finished yet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": snap.ID, "result": snap.Result})
}

func (s *Server) startImport(c *gin.Context) {
	var req struct {
		FolderID  string `json:"folder_id"`
		FolderURL string `json:"folder_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failImport {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "queue unavailable"})
		return
	}
	folderID := req.FolderID
	if folderID == "" {
		folderID = extractFolderID(req.FolderURL)
	}
	if folderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "folder_id or valid folder_url required"})
		return
	}

	job := &fakeJob{
		id:        uuid.NewString(),
		folderID:  folderID,
		createdAt: time.Now().UTC(),
		steps:     append([]Step(nil), s.script...),
	}
	if len(job.steps) == 0 {
		job.steps = []Step{{Status: model.StatusQueued}}
	}
	s.jobs[job.id] = job
	s.jobOrder = append(s.jobOrder, job.id)
	c.JSON(http.StatusOK, gin.H{
		"message":   "Import started in background",
		"folder_id": folderID,
		"job_id":    job.id,
	})
}

func (j *fakeJob) snapshot() model.Job {
	step := j.steps[j.pos]
	out := model.Job{
		ID:        j.id,
		Status:    step.Status,
		CreatedAt: j.createdAt.Format("2006-01-02T15:04:05.000000"),
		Result:    step.Result,
	}
	progress := step.Progress
	out.Progress = &progress
	return out
}

func extractFolderID(folderURL string) string {
	if m := reFolderPath.FindStringSubmatch(folderURL); m != nil {
		return m[1]
	}
	if m := reFolderQuery.FindStringSubmatch(folderURL); m != nil {
		return m[1]
	}
	return ""
}
