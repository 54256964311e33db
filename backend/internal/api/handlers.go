package api

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tgosint/backend/internal/app"
	"tgosint/backend/internal/archive"
	apperrors "tgosint/backend/pkg/errors"
)

const folderKey = "subject_folder"

type handler struct {
	app    *app.App
	logger *zap.Logger
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"graph_export": h.app.Exporter != nil,
	})
}

func (h *handler) listSubjects(c *gin.Context) {
	subjects, err := archive.ListSubjects(h.app.Config.DataDir)
	if err != nil {
		h.logger.Error("Failed to list subjects", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list subjects"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"subjects": subjects})
}

// resolveSubject validates :name and stores the subject folder for the route handlers
func (h *handler) resolveSubject(c *gin.Context) {
	name := c.Param("name")
	folder, err := h.app.SubjectFolder(name)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Subject not found"})
		return
	}
	c.Set(folderKey, folder)
	c.Next()
}

func (h *handler) profile(c *gin.Context) {
	profile, err := h.app.Reader.ReadProfile(c.GetString(folderKey))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subject has no profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"profile": profile,
		"label":   profile.DisplayLabel(),
	})
}

func (h *handler) mentions(c *gin.Context) {
	report, err := h.app.Analyzer.AnalyzeMentions(c.Request.Context(), c.GetString(folderKey))
	if err != nil {
		h.analysisFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *handler) replies(c *gin.Context) {
	report, err := h.app.Analyzer.AnalyzeReplies(c.Request.Context(), c.GetString(folderKey))
	if err != nil {
		h.analysisFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *handler) activity(c *gin.Context) {
	report, err := h.app.Analyzer.AnalyzeActivity(c.Request.Context(), c.GetString(folderKey))
	if err != nil {
		h.analysisFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *handler) analyze(c *gin.Context) {
	report, err := h.app.Analyzer.Analyze(c.Request.Context(), c.GetString(folderKey))
	if err != nil {
		h.analysisFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *handler) analysisFailed(c *gin.Context, err error) {
	if c.Request.Context().Err() != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Analysis cancelled"})
		return
	}
	if apperrors.IsArchiveUnreadable(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subject archive unreadable"})
		return
	}
	h.logger.Error("Analysis failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Analysis failed"})
}
