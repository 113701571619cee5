package handlers

import (
	"net/http"

	"sales-chat-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// DatasetHandler manages the in-memory sales dataset lifecycle.
type DatasetHandler struct {
	dataset    *services.DatasetService
	vocabulary *services.VocabularyService
	admin      *AdminHandler
}

// NewDatasetHandler creates a new DatasetHandler. Destructive operations
// are guarded by the admin credentials.
func NewDatasetHandler(dataset *services.DatasetService, admin *AdminHandler) *DatasetHandler {
	return &DatasetHandler{
		dataset:    dataset,
		vocabulary: services.NewVocabularyService(),
		admin:      admin,
	}
}

// Upload ingests a CSV or XLSX file and replaces the current dataset.
func (h *DatasetHandler) Upload(c *gin.Context) {
	c.Request.ParseMultipartForm(10 << 20) // 10MB limit

	file, fileHeader, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field is required"})
		return
	}
	defer file.Close()

	rows, err := h.dataset.LoadFile(fileHeader.Filename, file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"rows":    rows,
		"summary": h.dataset.Summary(h.vocabulary.Extract(h.dataset.Records())),
	})
}

// Summary describes the loaded dataset and its precomputed metrics.
func (h *DatasetHandler) Summary(c *gin.Context) {
	summary := h.dataset.Summary(h.vocabulary.Extract(h.dataset.Records()))
	if summary.Rows == 0 {
		c.JSON(http.StatusOK, gin.H{"success": true, "summary": summary, "message": "no dataset loaded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "summary": summary})
}

// Clear drops the loaded dataset. Requires admin credentials in the body.
func (h *DatasetHandler) Clear(c *gin.Context) {
	if !h.admin.authorize(c) {
		return
	}
	h.dataset.Clear()
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "dataset cleared"})
}
