package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-recommender-api/internal/dto"
	"github.com/noah-isme/timetable-recommender-api/internal/models"
	"github.com/noah-isme/timetable-recommender-api/internal/timetable"
	appErrors "github.com/noah-isme/timetable-recommender-api/pkg/errors"
)

type offeringSource interface {
	Offerings(ctx context.Context) ([]timetable.CourseOffering, error)
}

type completedCourseSource interface {
	Completed(ctx context.Context, studentID string) ([]string, error)
}

type savedTimetableRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, timetable *models.SavedTimetable) error
	InsertCourses(ctx context.Context, exec sqlx.ExtContext, courses []models.SavedTimetableCourse) error
	ListByStudent(ctx context.Context, studentID string, page, size int) ([]models.SavedTimetable, int, error)
	FindByID(ctx context.Context, id string) (*models.SavedTimetable, error)
	Delete(ctx context.Context, id, studentID string) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type candidateExporter interface {
	Candidate(title, basename string, cand timetable.Candidate, format dto.ExportFormat) (*ExportResult, error)
}

// RecommendationConfig carries the server-side defaults applied to requests.
type RecommendationConfig struct {
	MaxCredits        int
	MaxCourseCount    int
	VariantCount      int
	MaxVariantCount   int
	ConflictMode      string
	UniqueCourseCodes bool
	Diversification   string
	ProposalTTL       time.Duration
}

// RecommendationService turns student constraints into candidate timetables
// and persists the ones a student keeps.
type RecommendationService struct {
	catalog   offeringSource
	completed completedCourseSource
	saved     savedTimetableRepository
	tx        txProvider
	exporter  candidateExporter
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       RecommendationConfig
	store     *proposalStore
	now       func() time.Time
}

// NewRecommendationService constructs the service. completed, exporter and
// metrics may be nil.
func NewRecommendationService(
	catalog offeringSource,
	completed completedCourseSource,
	saved savedTimetableRepository,
	tx txProvider,
	exporter candidateExporter,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg RecommendationConfig,
) *RecommendationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if exporter == nil {
		exporter = NewExportService(nil, nil, logger)
	}
	if cfg.MaxCredits <= 0 {
		cfg.MaxCredits = timetable.DefaultMaxCredits
	}
	if cfg.MaxCourseCount <= 0 {
		cfg.MaxCourseCount = timetable.DefaultMaxCourseCount
	}
	if cfg.VariantCount <= 0 {
		cfg.VariantCount = timetable.DefaultVariantCount
	}
	if cfg.MaxVariantCount < cfg.VariantCount {
		cfg.MaxVariantCount = max(cfg.VariantCount, 10)
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}
	svc := &RecommendationService{
		catalog:   catalog,
		completed: completed,
		saved:     saved,
		tx:        tx,
		exporter:  exporter,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
	svc.store = newProposalStore(cfg.ProposalTTL, func() time.Time { return svc.now() })
	return svc
}

// Recommend generates candidate timetables for a student and keeps them as a
// proposal. department is the token claim used when the request names none.
func (s *RecommendationService) Recommend(ctx context.Context, studentID, department string, req dto.RecommendRequest) (*dto.RecommendationResponse, error) {
	start := time.Now()
	resp, eligible, candidates, err := s.recommend(ctx, studentID, department, req)
	outcome := OutcomeOK
	switch {
	case err != nil && appErrors.FromError(err).Code == appErrors.ErrValidation.Code:
		outcome = OutcomeInvalid
	case err != nil:
		outcome = OutcomeError
	case candidates == 0:
		outcome = OutcomeEmpty
	}
	s.metrics.ObserveRecommendation(outcome, eligible, candidates, time.Since(start))
	if err != nil {
		s.logger.Warn("recommendation failed", zap.String("student_id", studentID), zap.String("outcome", outcome), zap.Error(err))
		return nil, err
	}
	s.logger.Info("recommendation generated",
		zap.String("student_id", studentID),
		zap.String("proposal_id", resp.ProposalID),
		zap.String("department", resp.Constraints.Department),
		zap.Int("eligible", eligible),
		zap.Int("candidates", candidates),
		zap.Duration("took", time.Since(start)),
	)
	return resp, nil
}

func (s *RecommendationService) recommend(ctx context.Context, studentID, department string, req dto.RecommendRequest) (*dto.RecommendationResponse, int, int, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, 0, 0, appErrors.Validation(err, "invalid recommendation payload")
	}
	if req.VariantCount != nil && *req.VariantCount > s.cfg.MaxVariantCount {
		return nil, 0, 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("variantCount must not exceed %d", s.cfg.MaxVariantCount))
	}

	constraints, err := s.constraintsFor(department, req)
	if err != nil {
		return nil, 0, 0, err
	}
	constraints.CompletedCourseIDs = s.completedIDs(ctx, studentID, req)

	offerings, err := s.catalog.Offerings(ctx)
	if err != nil {
		return nil, 0, 0, err
	}
	candidates, err := timetable.Generate(offerings, constraints)
	if err != nil {
		return nil, 0, 0, err
	}
	eligible := len(timetable.Filter(offerings, constraints))

	generatedAt := s.now()
	proposal := recommendationProposal{
		ID:            uuid.NewString(),
		StudentID:     studentID,
		GeneratedAt:   generatedAt,
		EligibleCount: eligible,
		Constraints:   appliedConstraints(constraints),
		Candidates:    candidates,
	}
	s.store.Save(proposal)
	return s.toResponse(proposal), eligible, len(candidates), nil
}

func (s *RecommendationService) constraintsFor(department string, req dto.RecommendRequest) (timetable.Constraints, error) {
	dept := strings.TrimSpace(req.Department)
	if dept == "" {
		dept = strings.TrimSpace(department)
	}
	if dept == "" {
		return timetable.Constraints{}, appErrors.Clone(appErrors.ErrValidation, "department is required")
	}

	c := timetable.DefaultConstraints(dept)
	c.MaxCredits = s.cfg.MaxCredits
	c.MaxCourseCount = s.cfg.MaxCourseCount
	c.VariantCount = s.cfg.VariantCount
	c.Options.UniqueCourseCodes = s.cfg.UniqueCourseCodes

	mode, err := timetable.ParseConflictMode(firstNonEmpty(req.ConflictMode, s.cfg.ConflictMode))
	if err != nil {
		return timetable.Constraints{}, appErrors.Validation(err, "invalid conflictMode")
	}
	c.Options.ConflictMode = mode
	div, err := timetable.ParseDiversification(firstNonEmpty(req.Diversification, s.cfg.Diversification))
	if err != nil {
		return timetable.Constraints{}, appErrors.Validation(err, "invalid diversification")
	}
	c.Options.Diversification = div

	if req.AllowGenEdCrossDepartment != nil {
		c.RestrictGenEdToDepartment = !*req.AllowGenEdCrossDepartment
	}
	if req.MaxGrade != nil {
		c.MaxGrade = *req.MaxGrade
	}
	c.SkipFullSections = req.SkipFullSections
	c.Options.PreferProfessors = normalizeNames(req.PreferProfessors)
	if req.MaxCredits != nil {
		c.MaxCredits = *req.MaxCredits
	}
	if req.MaxCourseCount != nil {
		c.MaxCourseCount = *req.MaxCourseCount
	}
	if req.VariantCount != nil {
		c.VariantCount = *req.VariantCount
	}
	if req.UniqueCourseCodes != nil {
		c.Options.UniqueCourseCodes = *req.UniqueCourseCodes
	}
	switch {
	case req.Seed != nil:
		c.Options.Seed = *req.Seed
	case div == timetable.DiversifyShuffle:
		c.Options.Seed = s.now().UnixNano()
	}

	for _, block := range req.ExcludedBlocks {
		day, err := timetable.ParseWeekday(block.Day)
		if err != nil {
			return timetable.Constraints{}, appErrors.Validation(err, "invalid excluded block")
		}
		c.ExcludedBlocks = append(c.ExcludedBlocks, timetable.HourBlock{Day: day, Hour: block.Hour})
	}

	if len(req.Priority) > 0 {
		priority := make(timetable.Priority, 0, len(req.Priority))
		for _, label := range req.Priority {
			category := timetable.ParseCategory(label)
			if category == timetable.CategoryUnknown {
				return timetable.Constraints{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown priority category %q", label))
			}
			priority = append(priority, category)
		}
		c.Options.Priority = priority
	}
	return c, nil
}

// completedIDs merges request ids with the stored set. A failing store is
// logged and the request ids are used alone.
func (s *RecommendationService) completedIDs(ctx context.Context, studentID string, req dto.RecommendRequest) []string {
	ids := append([]string(nil), req.CompletedCourseIDs...)
	if s.completed != nil && !req.IgnoreStoredCompleted && studentID != "" {
		stored, err := s.completed.Completed(ctx, studentID)
		if err != nil {
			s.logger.Warn("completed courses unavailable, using request ids only", zap.String("student_id", studentID), zap.Error(err))
		} else {
			ids = append(ids, stored...)
		}
	}
	return normalizeIDs(ids)
}

// Proposal returns an unexpired proposal owned by the student.
func (s *RecommendationService) Proposal(studentID, proposalID string) (*dto.RecommendationResponse, error) {
	proposal, err := s.ownedProposal(studentID, proposalID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(proposal), nil
}

// Save stores one variant of a proposal. The proposal stays available so
// further variants can be saved.
func (s *RecommendationService) Save(ctx context.Context, studentID string, req dto.SaveTimetableRequest) (string, error) {
	if err := s.validator.Struct(req); err != nil {
		return "", appErrors.Validation(err, "invalid save timetable payload")
	}
	proposal, err := s.ownedProposal(studentID, req.ProposalID)
	if err != nil {
		return "", err
	}
	cand, err := proposal.variant(req.Variant)
	if err != nil {
		return "", err
	}
	if s.tx == nil {
		return "", appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	metaBytes, err := json.Marshal(map[string]any{
		"proposalId":        proposal.ID,
		"variant":           req.Variant,
		"generatedAt":       proposal.GeneratedAt,
		"constraints":       proposal.Constraints,
		"categoryBreakdown": categoryBreakdown(timetable.Summarize(cand)),
	})
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode timetable metadata")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	record := &models.SavedTimetable{
		StudentID:    studentID,
		Name:         strings.TrimSpace(req.Name),
		TotalCredits: cand.TotalCredits(),
		CourseCount:  cand.Len(),
		Meta:         types.JSONText(metaBytes),
	}
	if err = s.saved.Create(ctx, tx, record); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create saved timetable")
		return "", err
	}

	ids := cand.IDs()
	courses := make([]models.SavedTimetableCourse, 0, len(ids))
	for i, id := range ids {
		courses = append(courses, models.SavedTimetableCourse{TimetableID: record.ID, CourseID: id, Position: i + 1})
	}
	if err = s.saved.InsertCourses(ctx, tx, courses); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable courses")
		return "", err
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit timetable transaction")
		return "", err
	}
	s.logger.Info("timetable saved", zap.String("student_id", studentID), zap.String("timetable_id", record.ID), zap.Int("variant", req.Variant))
	return record.ID, nil
}

// ListSaved returns a page of the student's saved timetables.
func (s *RecommendationService) ListSaved(ctx context.Context, studentID string, query dto.SavedTimetableQuery) ([]models.SavedTimetable, *models.Pagination, error) {
	page, size := query.Page, query.PageSize
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	start := time.Now()
	items, total, err := s.saved.ListByStudent(ctx, studentID, page, size)
	s.metrics.ObserveDBQuery("saved_timetable_list", time.Since(start))
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list saved timetables")
	}
	return items, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// GetSaved returns a saved timetable with its course ids in order.
func (s *RecommendationService) GetSaved(ctx context.Context, studentID, id string) (*models.SavedTimetable, error) {
	if !validTimetableID(id) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
	}
	item, err := s.saved.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	if item.StudentID != studentID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
	}
	return item, nil
}

// DeleteSaved removes a saved timetable owned by the student.
func (s *RecommendationService) DeleteSaved(ctx context.Context, studentID, id string) error {
	if !validTimetableID(id) {
		return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
	}
	if err := s.saved.Delete(ctx, id, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable")
	}
	return nil
}

// Export renders one variant of a proposal as a course list download.
func (s *RecommendationService) Export(ctx context.Context, studentID, proposalID string, variant int, format dto.ExportFormat) (*ExportResult, error) {
	proposal, err := s.ownedProposal(studentID, proposalID)
	if err != nil {
		return nil, err
	}
	cand, err := proposal.variant(variant)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("%s timetable (variant %d)", proposal.Constraints.Department, variant+1)
	basename := fmt.Sprintf("timetable-%s-%d", shortID(proposal.ID), variant+1)
	return s.exporter.Candidate(title, basename, cand, format)
}

func (s *RecommendationService) ownedProposal(studentID, proposalID string) (recommendationProposal, error) {
	proposal, ok := s.store.Get(proposalID)
	if !ok || proposal.StudentID != studentID {
		return recommendationProposal{}, appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	return proposal, nil
}

func (s *RecommendationService) toResponse(p recommendationProposal) *dto.RecommendationResponse {
	candidates := make([]dto.CandidateResponse, 0, len(p.Candidates))
	for i, cand := range p.Candidates {
		candidates = append(candidates, candidateResponse(i, cand))
	}
	return &dto.RecommendationResponse{
		ProposalID:    p.ID,
		GeneratedAt:   p.GeneratedAt,
		ExpiresAt:     p.GeneratedAt.Add(s.cfg.ProposalTTL),
		EligibleCount: p.EligibleCount,
		Constraints:   p.Constraints,
		Candidates:    candidates,
	}
}

func candidateResponse(variant int, cand timetable.Candidate) dto.CandidateResponse {
	offerings := cand.Offerings()
	courses := make([]dto.CourseOfferingResponse, 0, len(offerings))
	for _, o := range offerings {
		slots := make([]dto.TimeSlotResponse, 0, len(o.TimeSlots))
		for _, slot := range o.TimeSlots {
			slots = append(slots, dto.TimeSlotResponse{Day: slot.Day.String(), Start: slot.Start.String(), End: slot.End.String()})
		}
		courses = append(courses, dto.CourseOfferingResponse{
			ID:         o.ID,
			CourseCode: o.CourseCode,
			Section:    o.Section,
			Name:       o.Name,
			Professor:  o.Professor,
			Room:       o.Room,
			Credits:    o.Credits,
			Category:   o.Category.String(),
			Department: o.Department,
			Grade:      o.Grade,
			TimeSlots:  slots,
		})
	}
	summary := timetable.Summarize(cand)
	return dto.CandidateResponse{
		Variant: variant,
		Courses: courses,
		Summary: dto.ScheduleSummaryResponse{
			TotalCredits:      summary.TotalCredits,
			CourseCount:       summary.CourseCount,
			CategoryBreakdown: categoryBreakdown(summary),
		},
	}
}

func categoryBreakdown(summary timetable.Summary) map[string]int {
	out := make(map[string]int, len(summary.CategoryBreakdown))
	for category, count := range summary.CategoryBreakdown {
		out[category.String()] = count
	}
	return out
}

func appliedConstraints(c timetable.Constraints) dto.AppliedConstraints {
	echoed := make([]dto.ExcludedBlockRequest, 0, len(c.ExcludedBlocks))
	for _, block := range c.ExcludedBlocks {
		echoed = append(echoed, dto.ExcludedBlockRequest{Day: block.Day.String(), Hour: block.Hour})
	}
	return dto.AppliedConstraints{
		Department:                c.Department,
		AllowGenEdCrossDepartment: !c.RestrictGenEdToDepartment,
		ExcludedBlocks:            echoed,
		CompletedCourseCount:      len(c.CompletedCourseIDs),
		MaxCredits:                c.MaxCredits,
		MaxCourseCount:            c.MaxCourseCount,
		VariantCount:              c.VariantCount,
		ConflictMode:              string(c.Options.ConflictMode),
		UniqueCourseCodes:         c.Options.UniqueCourseCodes,
		Diversification:           string(c.Options.Diversification),
		Seed:                      c.Options.Seed,
		PreferProfessors:          c.Options.PreferProfessors,
		MaxGrade:                  c.MaxGrade,
		SkipFullSections:          c.SkipFullSections,
	}
}

// validTimetableID rejects ids the uuid column could never hold.
func validTimetableID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func normalizeNames(names []string) []string {
	var out []string
	for _, name := range names {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

type recommendationProposal struct {
	ID            string
	StudentID     string
	GeneratedAt   time.Time
	EligibleCount int
	Constraints   dto.AppliedConstraints
	Candidates    []timetable.Candidate
}

func (p recommendationProposal) variant(index int) (timetable.Candidate, error) {
	if index < 0 || index >= len(p.Candidates) {
		return timetable.Candidate{}, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("variant %d not found", index))
	}
	return p.Candidates[index], nil
}

type proposalStore struct {
	ttl   time.Duration
	now   func() time.Time
	mu    sync.RWMutex
	items map[string]recommendationProposal
}

func newProposalStore(ttl time.Duration, now func() time.Time) *proposalStore {
	return &proposalStore{
		ttl:   ttl,
		now:   now,
		items: make(map[string]recommendationProposal),
	}
}

// Save stores a proposal and drops expired ones.
func (s *proposalStore) Save(proposal recommendationProposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.ttl)
	for id, item := range s.items {
		if item.GeneratedAt.Before(cutoff) {
			delete(s.items, id)
		}
	}
	s.items[proposal.ID] = proposal
}

func (s *proposalStore) Get(id string) (recommendationProposal, bool) {
	s.mu.RLock()
	proposal, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return recommendationProposal{}, false
	}
	if s.now().Sub(proposal.GeneratedAt) > s.ttl {
		s.Delete(id)
		return recommendationProposal{}, false
	}
	return proposal, true
}

func (s *proposalStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *proposalStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}
