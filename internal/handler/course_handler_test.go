package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-recommender-api/internal/dto"
	"github.com/noah-isme/timetable-recommender-api/internal/models"
	appErrors "github.com/noah-isme/timetable-recommender-api/pkg/errors"
)

type catalogMock struct {
	query         dto.CourseListQuery
	invalidated   int
	invalidateErr error
}

func (m *catalogMock) Invalidate(ctx context.Context) error {
	m.invalidated++
	return m.invalidateErr
}

func (m *catalogMock) List(ctx context.Context, query dto.CourseListQuery) ([]models.Course, *models.Pagination, error) {
	m.query = query
	return []models.Course{{ID: "cse2010-a", CourseCode: "CSE2010"}}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, nil
}

type courseSetsMock struct {
	completed []string
	marked    string
	unmarked  string
	replaced  []string
	bookmarks map[string]bool
}

func (m *courseSetsMock) Completed(ctx context.Context, studentID string) ([]string, error) {
	return m.completed, nil
}

func (m *courseSetsMock) SetCompleted(ctx context.Context, studentID string, req dto.CompletedCoursesRequest) ([]string, error) {
	m.replaced = req.CourseIDs
	return req.CourseIDs, nil
}

func (m *courseSetsMock) MarkCompleted(ctx context.Context, studentID, courseID string) error {
	if courseID == "ghost" {
		return appErrors.Clone(appErrors.ErrNotFound, "course ghost not found")
	}
	m.marked = courseID
	return nil
}

func (m *courseSetsMock) UnmarkCompleted(ctx context.Context, studentID, courseID string) error {
	m.unmarked = courseID
	return nil
}

func (m *courseSetsMock) Bookmarks(ctx context.Context, studentID string) ([]string, error) {
	var out []string
	for id, on := range m.bookmarks {
		if on {
			out = append(out, id)
		}
	}
	return out, nil
}

func (m *courseSetsMock) ToggleBookmark(ctx context.Context, studentID, courseID string) (*dto.BookmarkToggleResponse, error) {
	m.bookmarks[courseID] = !m.bookmarks[courseID]
	return &dto.BookmarkToggleResponse{CourseID: courseID, Bookmarked: m.bookmarks[courseID]}, nil
}

func courseRoutes(catalog *catalogMock, sets *courseSetsMock, claims *models.JWTClaims) *gin.Engine {
	h := &CourseHandler{catalog: catalog, sets: sets}
	r := newTestRouter(claims)
	r.GET("/courses", h.List)
	r.POST("/admin/catalog/refresh", h.RefreshCatalog)
	r.GET("/me/completed-courses", h.Completed)
	r.PUT("/me/completed-courses", h.ReplaceCompleted)
	r.POST("/me/completed-courses/:courseId", h.MarkCompleted)
	r.DELETE("/me/completed-courses/:courseId", h.UnmarkCompleted)
	r.GET("/me/bookmarks", h.Bookmarks)
	r.POST("/me/bookmarks/:courseId/toggle", h.ToggleBookmark)
	return r
}

func TestCourseListDefaultsDepartmentFromClaims(t *testing.T) {
	catalog := &catalogMock{}
	r := courseRoutes(catalog, &courseSetsMock{}, studentClaims())

	w := perform(r, http.MethodGet, "/courses?category=REQUIRED_MAJOR&limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "CSE", catalog.query.Department)
	assert.Equal(t, "REQUIRED_MAJOR", catalog.query.Category)
	assert.Equal(t, 10, catalog.query.PageSize)
	assert.Equal(t, 1, decodeEnvelope(t, w).Pagination.TotalCount)

	perform(r, http.MethodGet, "/courses?department=", nil)
	assert.Equal(t, "", catalog.query.Department)
}

func TestCourseListPassesProfessorFilter(t *testing.T) {
	catalog := &catalogMock{}
	r := courseRoutes(catalog, &courseSetsMock{}, nil)

	w := perform(r, http.MethodGet, "/courses?professor=Kim&q=data", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Kim", catalog.query.Professor)
	assert.Equal(t, "data", catalog.query.Search)
}

func TestRefreshCatalogRoute(t *testing.T) {
	catalog := &catalogMock{}
	r := courseRoutes(catalog, &courseSetsMock{}, studentClaims())

	assert.Equal(t, http.StatusNoContent, perform(r, http.MethodPost, "/admin/catalog/refresh", nil).Code)
	assert.Equal(t, 1, catalog.invalidated)

	catalog.invalidateErr = errors.New("redis down")
	w := perform(r, http.MethodPost, "/admin/catalog/refresh", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, appErrors.ErrInternal.Code, decodeEnvelope(t, w).Error.Code)
}

func TestCourseListAnonymous(t *testing.T) {
	catalog := &catalogMock{}
	r := courseRoutes(catalog, &courseSetsMock{}, nil)

	w := perform(r, http.MethodGet, "/courses?department=EE", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "EE", catalog.query.Department)
}

func TestCompletedCourseRoutes(t *testing.T) {
	sets := &courseSetsMock{completed: []string{"a", "b"}}
	r := courseRoutes(&catalogMock{}, sets, studentClaims())

	w := perform(r, http.MethodGet, "/me/completed-courses", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body dto.CourseSetResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &body))
	assert.Equal(t, []string{"a", "b"}, body.CourseIDs)

	w = perform(r, http.MethodPut, "/me/completed-courses", dto.CompletedCoursesRequest{CourseIDs: []string{"c"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"c"}, sets.replaced)

	assert.Equal(t, http.StatusNoContent, perform(r, http.MethodPost, "/me/completed-courses/cse2010-a", nil).Code)
	assert.Equal(t, "cse2010-a", sets.marked)
	assert.Equal(t, http.StatusNotFound, perform(r, http.MethodPost, "/me/completed-courses/ghost", nil).Code)
	assert.Equal(t, http.StatusNoContent, perform(r, http.MethodDelete, "/me/completed-courses/cse2010-a", nil).Code)
	assert.Equal(t, "cse2010-a", sets.unmarked)

	assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodPut, "/me/completed-courses", `{"courseIds":`).Code)
}

func TestBookmarkToggleRoute(t *testing.T) {
	sets := &courseSetsMock{bookmarks: map[string]bool{}}
	r := courseRoutes(&catalogMock{}, sets, studentClaims())

	w := perform(r, http.MethodPost, "/me/bookmarks/gen-101/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body dto.BookmarkToggleResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &body))
	assert.True(t, body.Bookmarked)

	w = perform(r, http.MethodGet, "/me/bookmarks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var marks dto.CourseSetResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &marks))
	assert.Equal(t, []string{"gen-101"}, marks.CourseIDs)
}

func TestStudentRoutesRequireClaims(t *testing.T) {
	r := courseRoutes(&catalogMock{}, &courseSetsMock{}, nil)
	for _, path := range []string{"/me/completed-courses", "/me/bookmarks"} {
		assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, path, nil).Code, path)
	}
}
