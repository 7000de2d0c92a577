package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-recommender-api/internal/dto"
	"github.com/noah-isme/timetable-recommender-api/internal/models"
	"github.com/noah-isme/timetable-recommender-api/internal/service"
	appErrors "github.com/noah-isme/timetable-recommender-api/pkg/errors"
	"github.com/noah-isme/timetable-recommender-api/pkg/response"
)

type recommender interface {
	Recommend(ctx context.Context, studentID, department string, req dto.RecommendRequest) (*dto.RecommendationResponse, error)
	Proposal(studentID, proposalID string) (*dto.RecommendationResponse, error)
	Save(ctx context.Context, studentID string, req dto.SaveTimetableRequest) (string, error)
	ListSaved(ctx context.Context, studentID string, query dto.SavedTimetableQuery) ([]models.SavedTimetable, *models.Pagination, error)
	GetSaved(ctx context.Context, studentID, id string) (*models.SavedTimetable, error)
	DeleteSaved(ctx context.Context, studentID, id string) error
	Export(ctx context.Context, studentID, proposalID string, variant int, format dto.ExportFormat) (*service.ExportResult, error)
}

// RecommendationHandler exposes timetable recommendation endpoints.
type RecommendationHandler struct {
	service recommender
}

// NewRecommendationHandler constructs the handler.
func NewRecommendationHandler(svc *service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{service: svc}
}

// Recommend godoc
// @Summary Generate candidate timetables
// @Description Filters the catalog by department, completed courses and excluded hour blocks, then builds conflict-free candidates ranked by category priority.
// @Tags Timetables
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.RecommendRequest true "Recommendation constraints"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /timetables/recommendations [post]
func (h *RecommendationHandler) Recommend(c *gin.Context) {
	claims := requireStudent(c)
	if claims == nil {
		return
	}
	var req dto.RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid recommendation payload"))
		return
	}
	result, err := h.service.Recommend(c.Request.Context(), claims.StudentID, claims.Department, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, map[string]interface{}{"candidateCount": len(result.Candidates)})
}

// Proposal godoc
// @Summary Get a stored recommendation proposal
// @Tags Timetables
// @Produce json
// @Security BearerAuth
// @Param id path string true "Proposal ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/recommendations/{id} [get]
func (h *RecommendationHandler) Proposal(c *gin.Context) {
	claims := requireStudent(c)
	if claims == nil {
		return
	}
	result, err := h.service.Proposal(claims.StudentID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Export godoc
// @Summary Download a candidate as CSV or PDF
// @Tags Timetables
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Proposal ID"
// @Param variant path int true "Variant index"
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Success 200 {file} file
// @Router /timetables/recommendations/{id}/variants/{variant}/export [get]
func (h *RecommendationHandler) Export(c *gin.Context) {
	claims := requireStudent(c)
	if claims == nil {
		return
	}
	variant, err := strconv.Atoi(c.Param("variant"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "variant must be an integer"))
		return
	}
	format := dto.ExportFormat(c.DefaultQuery("format", string(dto.ExportFormatCSV)))
	file, err := h.service.Export(c.Request.Context(), claims.StudentID, c.Param("id"), variant, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// Save godoc
// @Summary Save one variant of a proposal
// @Tags Timetables
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.SaveTimetableRequest true "Save timetable payload"
// @Success 201 {object} response.Envelope
// @Router /timetables [post]
func (h *RecommendationHandler) Save(c *gin.Context) {
	claims := requireStudent(c)
	if claims == nil {
		return
	}
	var req dto.SaveTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid save payload"))
		return
	}
	id, err := h.service.Save(c.Request.Context(), claims.StudentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.SaveTimetableResponse{TimetableID: id})
}

// ListSaved godoc
// @Summary List saved timetables
// @Tags Timetables
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /timetables [get]
func (h *RecommendationHandler) ListSaved(c *gin.Context) {
	claims := requireStudent(c)
	if claims == nil {
		return
	}
	var query dto.SavedTimetableQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid query parameters"))
		return
	}
	items, pagination, err := h.service.ListSaved(c.Request.Context(), claims.StudentID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// GetSaved godoc
// @Summary Get a saved timetable
// @Tags Timetables
// @Produce json
// @Security BearerAuth
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id} [get]
func (h *RecommendationHandler) GetSaved(c *gin.Context) {
	claims := requireStudent(c)
	if claims == nil {
		return
	}
	item, err := h.service.GetSaved(c.Request.Context(), claims.StudentID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// DeleteSaved godoc
// @Summary Delete a saved timetable
// @Tags Timetables
// @Security BearerAuth
// @Param id path string true "Timetable ID"
// @Success 204
// @Router /timetables/{id} [delete]
func (h *RecommendationHandler) DeleteSaved(c *gin.Context) {
	claims := requireStudent(c)
	if claims == nil {
		return
	}
	if err := h.service.DeleteSaved(c.Request.Context(), claims.StudentID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
