package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-recommender-api/internal/dto"
	"github.com/noah-isme/timetable-recommender-api/internal/models"
	"github.com/noah-isme/timetable-recommender-api/internal/service"
	appErrors "github.com/noah-isme/timetable-recommender-api/pkg/errors"
	"github.com/noah-isme/timetable-recommender-api/pkg/response"
)

type courseCatalog interface {
	List(ctx context.Context, query dto.CourseListQuery) ([]models.Course, *models.Pagination, error)
	Invalidate(ctx context.Context) error
}

type studentCourseSets interface {
	Completed(ctx context.Context, studentID string) ([]string, error)
	SetCompleted(ctx context.Context, studentID string, req dto.CompletedCoursesRequest) ([]string, error)
	MarkCompleted(ctx context.Context, studentID, courseID string) error
	UnmarkCompleted(ctx context.Context, studentID, courseID string) error
	Bookmarks(ctx context.Context, studentID string) ([]string, error)
	ToggleBookmark(ctx context.Context, studentID, courseID string) (*dto.BookmarkToggleResponse, error)
}

// CourseHandler serves the course catalog and the per-student course sets.
type CourseHandler struct {
	catalog courseCatalog
	sets    studentCourseSets
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(catalog *service.CatalogService, sets *service.StudentCourseService) *CourseHandler {
	return &CourseHandler{catalog: catalog, sets: sets}
}

// List godoc
// @Summary List catalog courses
// @Description Department defaults to the caller's token claim when omitted.
// @Tags Courses
// @Produce json
// @Param department query string false "Department"
// @Param category query string false "Category code or label"
// @Param q query string false "Search by code, name or professor"
// @Param professor query string false "Professor name"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	var query dto.CourseListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid query parameters"))
		return
	}
	if _, explicit := c.GetQuery("department"); !explicit {
		if claims := claimsFromContext(c); claims != nil {
			query.Department = claims.Department
		}
	}
	courses, pagination, err := h.catalog.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, pagination)
}

// RefreshCatalog godoc
// @Summary Drop the cached course catalog
// @Description The next recommendation reloads the catalog from the database. Requires the admin role.
// @Tags Courses
// @Security BearerAuth
// @Success 204
// @Failure 403 {object} response.Envelope
// @Router /admin/catalog/refresh [post]
func (h *CourseHandler) RefreshCatalog(c *gin.Context) {
	if err := h.catalog.Invalidate(c.Request.Context()); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to refresh catalog"))
		return
	}
	response.NoContent(c)
}

// Completed godoc
// @Summary List completed course ids
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /me/completed-courses [get]
func (h *CourseHandler) Completed(c *gin.Context) {
	claims := requireStudent(c)
	if claims == nil {
		return
	}
	ids, err := h.sets.Completed(c.Request.Context(), claims.StudentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.CourseSetResponse{CourseIDs: ids}, nil)
}

// ReplaceCompleted godoc
// @Summary Replace completed course ids
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CompletedCoursesRequest true "Completed courses"
// @Success 200 {object} response.Envelope
// @Router /me/completed-courses [put]
func (h *CourseHandler) ReplaceCompleted(c *gin.Context) {
	claims := requireStudent(c)
	if claims == nil {
		return
	}
	var req dto.CompletedCoursesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid completed courses payload"))
		return
	}
	ids, err := h.sets.SetCompleted(c.Request.Context(), claims.StudentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.CourseSetResponse{CourseIDs: ids}, nil)
}

// MarkCompleted godoc
// @Summary Mark a course completed
// @Tags Students
// @Security BearerAuth
// @Param courseId path string true "Course ID"
// @Success 204
// @Router /me/completed-courses/{courseId} [post]
func (h *CourseHandler) MarkCompleted(c *gin.Context) {
	claims := requireStudent(c)
	if claims == nil {
		return
	}
	if err := h.sets.MarkCompleted(c.Request.Context(), claims.StudentID, c.Param("courseId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UnmarkCompleted godoc
// @Summary Remove a course from the completed set
// @Tags Students
// @Security BearerAuth
// @Param courseId path string true "Course ID"
// @Success 204
// @Router /me/completed-courses/{courseId} [delete]
func (h *CourseHandler) UnmarkCompleted(c *gin.Context) {
	claims := requireStudent(c)
	if claims == nil {
		return
	}
	if err := h.sets.UnmarkCompleted(c.Request.Context(), claims.StudentID, c.Param("courseId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Bookmarks godoc
// @Summary List bookmarked course ids
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /me/bookmarks [get]
func (h *CourseHandler) Bookmarks(c *gin.Context) {
	claims := requireStudent(c)
	if claims == nil {
		return
	}
	ids, err := h.sets.Bookmarks(c.Request.Context(), claims.StudentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.CourseSetResponse{CourseIDs: ids}, nil)
}

// ToggleBookmark godoc
// @Summary Toggle a course bookmark
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /me/bookmarks/{courseId}/toggle [post]
func (h *CourseHandler) ToggleBookmark(c *gin.Context) {
	claims := requireStudent(c)
	if claims == nil {
		return
	}
	result, err := h.sets.ToggleBookmark(c.Request.Context(), claims.StudentID, c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
