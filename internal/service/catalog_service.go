package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-recommender-api/internal/dto"
	"github.com/noah-isme/timetable-recommender-api/internal/models"
	"github.com/noah-isme/timetable-recommender-api/internal/timetable"
	appErrors "github.com/noah-isme/timetable-recommender-api/pkg/errors"
)

// CatalogCacheKey holds the cached catalog rows.
const CatalogCacheKey = "catalog:v1"

type courseRepository interface {
	ListCatalog(ctx context.Context) ([]models.Course, error)
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Course, error)
}

// CatalogService loads course offerings for the engine and the catalog API.
type CatalogService struct {
	repo    courseRepository
	cache   *CacheService
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
}

// NewCatalogService constructs a CatalogService. cache and metrics may be nil.
func NewCatalogService(repo courseRepository, cache *CacheService, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{repo: repo, cache: cache, metrics: metrics, ttl: ttl, logger: logger}
}

// Offerings returns the whole catalog converted to engine offerings.
func (s *CatalogService) Offerings(ctx context.Context) ([]timetable.CourseOffering, error) {
	var courses []models.Course
	if !s.cache.Get(ctx, CatalogCacheKey, &courses) {
		start := time.Now()
		loaded, err := s.repo.ListCatalog(ctx)
		s.metrics.ObserveDBQuery("catalog_list", time.Since(start))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course catalog")
		}
		courses = loaded
		s.cache.Set(ctx, CatalogCacheKey, courses, s.ttl)
	}

	offerings := make([]timetable.CourseOffering, 0, len(courses))
	for _, course := range courses {
		offering, err := ToOffering(course)
		if err != nil {
			return nil, err
		}
		offerings = append(offerings, offering)
	}
	return offerings, nil
}

// List returns a page of catalog courses.
func (s *CatalogService) List(ctx context.Context, query dto.CourseListQuery) ([]models.Course, *models.Pagination, error) {
	filter := models.CourseFilter{
		Department: strings.TrimSpace(query.Department),
		Search:     strings.TrimSpace(query.Search),
		Professor:  strings.TrimSpace(query.Professor),
		Page:       query.Page,
		PageSize:   query.PageSize,
	}
	if query.Category != "" {
		category := timetable.ParseCategory(query.Category)
		if category == timetable.CategoryUnknown {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown category %q", query.Category))
		}
		filter.Categories = category.Labels()
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	start := time.Now()
	courses, total, err := s.repo.List(ctx, filter)
	s.metrics.ObserveDBQuery("course_list", time.Since(start))
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Exists reports which of ids are present in the catalog.
func (s *CatalogService) Exists(ctx context.Context, ids ...string) (map[string]bool, error) {
	courses, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up courses")
	}
	found := make(map[string]bool, len(courses))
	for _, c := range courses {
		found[c.ID] = true
	}
	return found, nil
}

// Invalidate drops the cached catalog.
func (s *CatalogService) Invalidate(ctx context.Context) error {
	return s.cache.Invalidate(ctx, CatalogCacheKey)
}

// ToOffering converts a catalog row into an engine offering. Malformed rows
// are validation errors naming the course.
func ToOffering(course models.Course) (timetable.CourseOffering, error) {
	slots := make([]timetable.TimeSlot, 0, len(course.Meetings))
	for _, meeting := range course.Meetings {
		day, err := timetable.ParseWeekday(meeting.DayOfWeek)
		if err != nil {
			return timetable.CourseOffering{}, invalidCourse(course.ID, err)
		}
		slot, err := timetable.NewTimeSlot(day, meeting.StartTime, meeting.EndTime)
		if err != nil {
			return timetable.CourseOffering{}, invalidCourse(course.ID, err)
		}
		slots = append(slots, slot)
	}
	return timetable.CourseOffering{
		ID:         course.ID,
		CourseCode: course.CourseCode,
		Section:    course.Section,
		Name:       course.Name,
		Professor:  course.Professor,
		Room:       course.Room,
		Credits:    course.Credits,
		Category:   timetable.ParseCategory(course.Category),
		Department: course.Department,
		Grade:      course.Grade,
		TimeSlots:  slots,
		Capacity:   course.Capacity,
		Enrolled:   course.Enrolled,
	}, nil
}

func invalidCourse(id string, err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("course %s has an invalid meeting", id))
}
