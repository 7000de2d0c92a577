package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-recommender-api/internal/dto"
	"github.com/noah-isme/timetable-recommender-api/internal/models"
	"github.com/noah-isme/timetable-recommender-api/internal/service"
	appErrors "github.com/noah-isme/timetable-recommender-api/pkg/errors"
)

type recommenderMock struct {
	studentID  string
	department string
	captured   dto.RecommendRequest
	saved      dto.SaveTimetableRequest
	variant    int
	format     dto.ExportFormat
	err        error
}

func (m *recommenderMock) Recommend(ctx context.Context, studentID, department string, req dto.RecommendRequest) (*dto.RecommendationResponse, error) {
	m.studentID, m.department, m.captured = studentID, department, req
	if m.err != nil {
		return nil, m.err
	}
	return &dto.RecommendationResponse{ProposalID: "p-1", Candidates: []dto.CandidateResponse{{Variant: 0}}}, nil
}

func (m *recommenderMock) Proposal(studentID, proposalID string) (*dto.RecommendationResponse, error) {
	if proposalID != "p-1" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	return &dto.RecommendationResponse{ProposalID: proposalID}, nil
}

func (m *recommenderMock) Save(ctx context.Context, studentID string, req dto.SaveTimetableRequest) (string, error) {
	m.saved = req
	return "tt-1", m.err
}

func (m *recommenderMock) ListSaved(ctx context.Context, studentID string, query dto.SavedTimetableQuery) ([]models.SavedTimetable, *models.Pagination, error) {
	return []models.SavedTimetable{{ID: "tt-1", StudentID: studentID}}, &models.Pagination{Page: query.Page, PageSize: query.PageSize, TotalCount: 1}, nil
}

func (m *recommenderMock) GetSaved(ctx context.Context, studentID, id string) (*models.SavedTimetable, error) {
	return &models.SavedTimetable{ID: id, StudentID: studentID, CourseIDs: []string{"cse2010-a"}}, nil
}

func (m *recommenderMock) DeleteSaved(ctx context.Context, studentID, id string) error {
	return m.err
}

func (m *recommenderMock) Export(ctx context.Context, studentID, proposalID string, variant int, format dto.ExportFormat) (*service.ExportResult, error) {
	m.variant, m.format = variant, format
	return &service.ExportResult{Filename: "timetable-p-1-1.csv", ContentType: "text/csv", Data: []byte("no,course_code\n")}, nil
}

func recommendationRoutes(mock *recommenderMock, claims *models.JWTClaims) *gin.Engine {
	h := &RecommendationHandler{service: mock}
	r := newTestRouter(claims)
	r.POST("/timetables/recommendations", h.Recommend)
	r.GET("/timetables/recommendations/:id", h.Proposal)
	r.GET("/timetables/recommendations/:id/variants/:variant/export", h.Export)
	r.POST("/timetables", h.Save)
	r.GET("/timetables", h.ListSaved)
	r.GET("/timetables/:id", h.GetSaved)
	r.DELETE("/timetables/:id", h.DeleteSaved)
	return r
}

func TestRecommendPassesClaims(t *testing.T) {
	mock := &recommenderMock{}
	r := recommendationRoutes(mock, studentClaims())

	w := perform(r, http.MethodPost, "/timetables/recommendations", `{"maxCredits":15,"excludedBlocks":[{"day":"MON","hour":9}],"diversification":"shuffle","seed":7}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "s-1", mock.studentID)
	assert.Equal(t, "CSE", mock.department)
	require.NotNil(t, mock.captured.MaxCredits)
	assert.Equal(t, 15, *mock.captured.MaxCredits)
	assert.Equal(t, []dto.ExcludedBlockRequest{{Day: "MON", Hour: 9}}, mock.captured.ExcludedBlocks)
	require.NotNil(t, mock.captured.Seed)
	assert.Equal(t, int64(7), *mock.captured.Seed)

	env := decodeEnvelope(t, w)
	var body dto.RecommendationResponse
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, "p-1", body.ProposalID)
	assert.Equal(t, float64(1), env.Meta["candidateCount"])
}

func TestRecommendRequiresStudent(t *testing.T) {
	r := recommendationRoutes(&recommenderMock{}, nil)

	w := perform(r, http.MethodPost, "/timetables/recommendations", `{}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecommendMalformedJSON(t *testing.T) {
	r := recommendationRoutes(&recommenderMock{}, studentClaims())

	w := perform(r, http.MethodPost, "/timetables/recommendations", `{"maxCredits":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, decodeEnvelope(t, w).Error.Code)
}

func TestRecommendServiceValidationError(t *testing.T) {
	mock := &recommenderMock{err: appErrors.Clone(appErrors.ErrValidation, "variantCount must not exceed 10")}
	r := recommendationRoutes(mock, studentClaims())

	w := perform(r, http.MethodPost, "/timetables/recommendations", `{"variantCount":50}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "variantCount must not exceed 10", decodeEnvelope(t, w).Error.Message)
}

func TestProposalLookup(t *testing.T) {
	r := recommendationRoutes(&recommenderMock{}, studentClaims())

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/timetables/recommendations/p-1", nil).Code)
	w := perform(r, http.MethodGet, "/timetables/recommendations/p-9", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, appErrors.ErrNotFound.Code, decodeEnvelope(t, w).Error.Code)
}

func TestExportStreamsAttachment(t *testing.T) {
	mock := &recommenderMock{}
	r := recommendationRoutes(mock, studentClaims())

	w := perform(r, http.MethodGet, "/timetables/recommendations/p-1/variants/0/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.ExportFormatCSV, mock.format)
	assert.Equal(t, 0, mock.variant)
	assert.Equal(t, `attachment; filename="timetable-p-1-1.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "no,course_code\n", w.Body.String())

	perform(r, http.MethodGet, "/timetables/recommendations/p-1/variants/2/export?format=pdf", nil)
	assert.Equal(t, dto.ExportFormatPDF, mock.format)
	assert.Equal(t, 2, mock.variant)

	w = perform(r, http.MethodGet, "/timetables/recommendations/p-1/variants/x/export", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaveTimetable(t *testing.T) {
	mock := &recommenderMock{}
	r := recommendationRoutes(mock, studentClaims())

	w := perform(r, http.MethodPost, "/timetables", dto.SaveTimetableRequest{ProposalID: "p-1", Variant: 1, Name: "Plan B"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 1, mock.saved.Variant)

	var body dto.SaveTimetableResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &body))
	assert.Equal(t, "tt-1", body.TimetableID)
}

func TestSavedTimetableRoutes(t *testing.T) {
	mock := &recommenderMock{}
	r := recommendationRoutes(mock, studentClaims())

	w := perform(r, http.MethodGet, "/timetables?page=2&limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 2, env.Pagination.Page)
	assert.Equal(t, 5, env.Pagination.PageSize)

	w = perform(r, http.MethodGet, "/timetables/tt-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var item models.SavedTimetable
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &item))
	assert.Equal(t, []string{"cse2010-a"}, item.CourseIDs)

	assert.Equal(t, http.StatusNoContent, perform(r, http.MethodDelete, "/timetables/tt-1", nil).Code)
	mock.err = appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
	assert.Equal(t, http.StatusNotFound, perform(r, http.MethodDelete, "/timetables/tt-1", nil).Code)
}
