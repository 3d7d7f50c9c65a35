package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"daybill/internal/service"
)

// ExtractHandler handles billing extract endpoints.
type ExtractHandler struct {
	extractService service.ExtractService
}

// NewExtractHandler creates a new ExtractHandler.
func NewExtractHandler(extractService service.ExtractService) *ExtractHandler {
	return &ExtractHandler{extractService: extractService}
}

// Upload handles POST /api/v1/extracts
// @Summary Upload a billing extract
// @Description Upload a daily billing extract (TIS-620 CSV, max 20MB)
// @Tags extracts
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Extract file (CSV)"
// @Success 201 {object} APIResponse "Extract normalized"
// @Failure 400 {object} APIResponse "Missing file, bad encoding, or unsupported type"
// @Failure 413 {object} APIResponse "File too large"
// @Failure 422 {object} APIResponse "No usable rows"
// @Router /extracts [post]
func (h *ExtractHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	info, err := h.extractService.Upload(service.ExtractUploadInput{
		File:   file,
		Header: header,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, info)
}

// Get handles GET /api/v1/extracts/:id
// @Summary Get extract metadata
// @Tags extracts
// @Produce json
// @Param id path string true "Extract ID"
// @Success 200 {object} APIResponse "Extract metadata"
// @Failure 404 {object} APIResponse "Extract not found"
// @Router /extracts/{id} [get]
func (h *ExtractHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	info, err := h.extractService.Get(id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, info)
}

// Records handles GET /api/v1/extracts/:id/records?date=YYYY-MM-DD
// @Summary List one day's records
// @Tags extracts
// @Produce json
// @Param id path string true "Extract ID"
// @Param date query string true "Day to select (YYYY-MM-DD)"
// @Success 200 {object} APIResponse "Day's canonical records"
// @Failure 400 {object} APIResponse "Invalid or out-of-range date"
// @Failure 404 {object} APIResponse "Extract not found"
// @Router /extracts/{id}/records [get]
func (h *ExtractHandler) Records(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	day, ok := parseDay(c)
	if !ok {
		return
	}
	records, err := h.extractService.Records(id, day)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, records)
}

// Summary handles GET /api/v1/extracts/:id/summary?date=YYYY-MM-DD
// @Summary Per-category aggregate for one day
// @Tags extracts
// @Produce json
// @Param id path string true "Extract ID"
// @Param date query string true "Day to select (YYYY-MM-DD)"
// @Success 200 {object} APIResponse "Aggregate rows plus grand total"
// @Failure 400 {object} APIResponse "Invalid or out-of-range date"
// @Failure 404 {object} APIResponse "Extract not found"
// @Router /extracts/{id}/summary [get]
func (h *ExtractHandler) Summary(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	day, ok := parseDay(c)
	if !ok {
		return
	}
	rows, err := h.extractService.Summary(id, day)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, rows)
}

// Report handles GET /api/v1/extracts/:id/report?date=YYYY-MM-DD
// @Summary Download the day's multi-sheet workbook
// @Tags extracts
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Extract ID"
// @Param date query string true "Day to select (YYYY-MM-DD)"
// @Success 200 {file} binary "Workbook"
// @Failure 400 {object} APIResponse "Invalid or out-of-range date"
// @Failure 404 {object} APIResponse "Extract not found"
// @Router /extracts/{id}/report [get]
func (h *ExtractHandler) Report(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	day, ok := parseDay(c)
	if !ok {
		return
	}
	data, fileName, err := h.extractService.Report(id, day)
	if err != nil {
		HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// Delete handles DELETE /api/v1/extracts/:id
// @Summary Forget an uploaded extract
// @Tags extracts
// @Produce json
// @Param id path string true "Extract ID"
// @Success 200 {object} APIResponse "Extract removed"
// @Failure 404 {object} APIResponse "Extract not found"
// @Router /extracts/{id} [delete]
func (h *ExtractHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.extractService.Delete(id); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": id})
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid extract id")
		return uuid.Nil, false
	}
	return id, true
}

func parseDay(c *gin.Context) (time.Time, bool) {
	dateStr := c.Query("date")
	if dateStr == "" {
		RespondError(c, http.StatusBadRequest, "MISSING_DATE", "date query parameter is required")
		return time.Time{}, false
	}
	day, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_DATE", "invalid 'date': must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return day, true
}
