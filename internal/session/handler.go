package session

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"career-backend/internal/generation"
	"career-backend/internal/jobs"
	"career-backend/internal/llm"
	"career-backend/internal/resumes"
	"career-backend/internal/shared/server/middleware"
	"career-backend/internal/shared/server/respond"
	"career-backend/internal/workspace"
)

// Handler exposes sessions over HTTP.
type Handler struct {
	Sessions *Manager
}

// NewHandler constructs a Handler.
func NewHandler(m *Manager) *Handler {
	return &Handler{Sessions: m}
}

// RegisterRoutes attaches job and workspace routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/jobs", h.listJobs)
	rg.POST("/jobs", h.createJob)
	rg.POST("/jobs/extract", h.extractJob)
	rg.DELETE("/jobs/:id", h.deleteJob)
	rg.POST("/jobs/:id/activate", h.activateJob)

	rg.GET("/workspace", h.workspace)
	rg.PUT("/workspace/resume", h.setResume)
	rg.PUT("/workspace/outreach", h.setOutreach)
	rg.POST("/workspace/generate", h.generate)
	rg.POST("/workspace/cover-letter", h.coverLetter)
	rg.POST("/workspace/linkedin", h.linkedIn)
	rg.POST("/workspace/interview", h.interview)
}

// session resolves the caller's session and makes sure its job list is
// loaded. It writes the error response itself when it returns false.
func (h *Handler) session(c *gin.Context) (*Session, bool) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
		return nil, false
	}
	s := h.Sessions.Get(userID)
	if _, err := s.Load(c.Request.Context(), false); err != nil {
		respond.Error(c, http.StatusServiceUnavailable, "store_unavailable", "jobs could not be loaded", nil)
		return nil, false
	}
	return s, true
}

func (h *Handler) listJobs(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
		return
	}
	force, _ := strconv.ParseBool(c.Query("force"))

	s := h.Sessions.Get(userID)
	list, err := s.Load(c.Request.Context(), force)
	if err != nil {
		respond.Error(c, http.StatusServiceUnavailable, "store_unavailable", "jobs could not be loaded", nil)
		return
	}
	respond.OK(c, JobsResponse{
		Jobs:        list,
		ActiveJobID: s.Workspace().ActiveJobID,
		Divergences: s.Divergences(),
	})
}

func (h *Handler) createJob(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req createJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	before := s.Workspace().Status
	job, view, err := s.CreateJob(c.Request.Context(), req.toJob())
	if err != nil {
		writeError(c, err)
		return
	}
	middleware.SetJobID(c, job.ID)
	setTransition(c, before, view)
	respond.Created(c, CreateJobResponse{Job: job, View: view})
}

func (h *Handler) extractJob(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	details, err := s.ExtractJob(c.Request.Context(), req.Text, strings.TrimSpace(req.URL))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, details)
}

func (h *Handler) deleteJob(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	jobID := c.Param("id")
	middleware.SetJobID(c, jobID)

	before := s.Workspace().Status
	view, err := s.DeleteJob(c.Request.Context(), jobID)
	if err != nil {
		writeError(c, err)
		return
	}
	setTransition(c, before, view)
	respond.OK(c, view)
}

func (h *Handler) activateJob(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	jobID := c.Param("id")
	middleware.SetJobID(c, jobID)

	before := s.Workspace().Status
	view, err := s.SwitchJob(c.Request.Context(), jobID)
	if err != nil {
		writeError(c, err)
		return
	}
	setTransition(c, before, view)
	respond.OK(c, view)
}

func (h *Handler) workspace(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	view := s.Workspace()
	middleware.SetJobID(c, view.Workspace.JobID)
	respond.OK(c, view)
}

func (h *Handler) setResume(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req resumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	resumeID := strings.TrimSpace(req.ResumeID)
	if resumeID != "" {
		view, err := s.UseResume(c.Request.Context(), resumeID)
		if err != nil {
			writeError(c, err)
			return
		}
		respond.OK(c, view)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "text or resumeId is required", nil)
		return
	}
	respond.OK(c, s.SetResumeText(req.Text))
}

func (h *Handler) setOutreach(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req generation.OutreachInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	respond.OK(c, s.SetOutreachInput(req))
}

func (h *Handler) generate(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req generateRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	tone, ok := parseTone(c, req.Tone)
	if !ok {
		return
	}

	before := s.Workspace()
	middleware.SetJobID(c, before.Workspace.JobID)
	view, err := s.GenerateInitial(c.Request.Context(), tone, req.Profile)
	if err != nil {
		writeError(c, err)
		return
	}
	setTransition(c, before.Status, view)
	respond.OK(c, view)
}

func (h *Handler) coverLetter(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req generateRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	tone, ok := parseTone(c, req.Tone)
	if !ok {
		return
	}

	before := s.Workspace()
	middleware.SetJobID(c, before.Workspace.JobID)
	view, err := s.RegenerateCoverLetter(c.Request.Context(), tone, req.Profile)
	if err != nil {
		writeError(c, err)
		return
	}
	setTransition(c, before.Status, view)
	respond.OK(c, view)
}

func (h *Handler) linkedIn(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req linkedInRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	before := s.Workspace()
	middleware.SetJobID(c, before.Workspace.JobID)
	view, err := s.GenerateLinkedIn(c.Request.Context(), req.Input)
	if err != nil {
		writeError(c, err)
		return
	}
	setTransition(c, before.Status, view)
	respond.OK(c, view)
}

func (h *Handler) interview(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req interviewRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	before := s.Workspace()
	middleware.SetJobID(c, before.Workspace.JobID)
	view, err := s.GenerateInterview(c.Request.Context(), req.Profile)
	if err != nil {
		writeError(c, err)
		return
	}
	setTransition(c, before.Status, view)
	respond.OK(c, view)
}

// bindOptionalJSON accepts an empty body as the zero request.
func bindOptionalJSON(c *gin.Context, dest any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dest); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return false
	}
	return true
}

func parseTone(c *gin.Context, raw string) (generation.Tone, bool) {
	if strings.TrimSpace(raw) == "" {
		return "", true
	}
	tone, ok := generation.ParseTone(raw)
	if !ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unknown tone", gin.H{"tone": raw})
		return "", false
	}
	return tone, true
}

func setTransition(c *gin.Context, before workspace.Status, view View) {
	middleware.SetStatusTransition(c, string(before), string(view.Status))
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, jobs.ErrInvalidInput),
		errors.Is(err, generation.ErrInvalidInput),
		errors.Is(err, resumes.ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, jobs.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
	case errors.Is(err, resumes.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
	case errors.Is(err, ErrNoActiveJob):
		respond.Error(c, http.StatusConflict, "no_active_job", err.Error(), nil)
	case errors.Is(err, ErrResumeMissing), errors.Is(err, resumes.ErrNoText):
		respond.Error(c, http.StatusConflict, "resume_missing", err.Error(), nil)
	case errors.Is(err, ErrStaleResult):
		respond.Error(c, http.StatusConflict, "stale_result", err.Error(), nil)
	case errors.Is(err, jobs.ErrPersist):
		respond.Error(c, http.StatusServiceUnavailable, "persistence_failed", "changes could not be saved", nil)
	case errors.Is(err, llm.ErrNotConfigured):
		respond.Error(c, http.StatusServiceUnavailable, "llm_not_configured", err.Error(), nil)
	case errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusGatewayTimeout, "generation_timeout", "generation timed out", nil)
	case errors.Is(err, context.Canceled):
		respond.Error(c, 499, "request_canceled", "request canceled", nil)
	default:
		respond.Error(c, http.StatusBadGateway, "generation_failed", err.Error(), nil)
	}
}
