package api

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gokundoluk/app"
	"gokundoluk/domain/gradebook"
	"gokundoluk/internal"
	apperrors "gokundoluk/internal/errors"

	"github.com/gin-gonic/gin"
)

// ReportRunner runs the report pipeline
type ReportRunner interface {
	Run(ctx context.Context, req app.Request) (*app.BuildResult, error)
	Registry() *gradebook.ClassRegistry
}

// ReportHandler handles report requests
type ReportHandler struct {
	runner    ReportRunner
	outputDir string
	logger    *internal.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(runner ReportRunner, outputDir string, logger *internal.Logger) *ReportHandler {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &ReportHandler{runner: runner, outputDir: outputDir, logger: logger}
}

type createReportRequest struct {
	Class   string `json:"class" binding:"required"`
	Quarter int    `json:"quarter" binding:"required,gt=0"`
}

type reportResponse struct {
	*app.BuildResult
	File        string `json:"file"`
	DownloadURL string `json:"download_url"`
}

// Health reports liveness
func (h *ReportHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListClasses returns the known classes
func (h *ReportHandler) ListClasses(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"classes": h.runner.Registry().Classes()})
}

// CreateReport fetches a class-quarter and writes its report
func (h *ReportHandler) CreateReport(c *gin.Context) {
	var body createReportRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.fail(c, apperrors.InvalidInput(err.Error()))
		return
	}

	result, err := h.runner.Run(c.Request.Context(), app.Request{
		Class:     body.Class,
		Quarter:   body.Quarter,
		OutputDir: h.outputDir,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	name := filepath.Base(result.Path)
	c.JSON(http.StatusCreated, reportResponse{
		BuildResult: result,
		File:        name,
		DownloadURL: "/api/reports/" + name,
	})
}

// DownloadReport serves a committed workbook by file name
func (h *ReportHandler) DownloadReport(c *gin.Context) {
	name := c.Param("name")
	if !validReportName(name) {
		h.fail(c, apperrors.InvalidInput("report name must be a plain .xlsx file name"))
		return
	}

	path := filepath.Join(h.outputDir, name)
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		h.fail(c, apperrors.NotFound("report "+name))
		return
	}
	c.FileAttachment(path, name)
}

func validReportName(name string) bool {
	return name != "" &&
		name == filepath.Base(name) &&
		!strings.ContainsAny(name, `/\`) &&
		!strings.HasPrefix(name, ".") &&
		strings.EqualFold(filepath.Ext(name), ".xlsx")
}

func (h *ReportHandler) fail(c *gin.Context, err error) {
	code := apperrors.CodeOf(err)
	if apperrors.IsAppError(err) {
		code = apperrors.GetCode(err)
	}
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		h.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}

func statusFor(code string) int {
	switch code {
	case apperrors.CodeInvalidInput:
		return http.StatusBadRequest
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeLockedArtifact:
		return http.StatusConflict
	case apperrors.CodeExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
