package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-recommender-api/internal/dto"
	"github.com/noah-isme/timetable-recommender-api/internal/repository"
	appErrors "github.com/noah-isme/timetable-recommender-api/pkg/errors"
)

type courseSetStore interface {
	Members(ctx context.Context, key string) ([]string, error)
	Replace(ctx context.Context, key string, ids []string) error
	Add(ctx context.Context, key, id string) error
	Remove(ctx context.Context, key, id string) error
	Toggle(ctx context.Context, key, id string) (bool, error)
}

type courseExistenceChecker interface {
	Exists(ctx context.Context, ids ...string) (map[string]bool, error)
}

// StudentCourseService manages a student's completed and bookmarked courses.
type StudentCourseService struct {
	store     courseSetStore
	courses   courseExistenceChecker
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentCourseService constructs the service. courses may be nil, which
// skips catalog existence checks.
func NewStudentCourseService(store courseSetStore, courses courseExistenceChecker, validate *validator.Validate, logger *zap.Logger) *StudentCourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentCourseService{store: store, courses: courses, validator: validate, logger: logger}
}

// Completed returns the stored completed course ids.
func (s *StudentCourseService) Completed(ctx context.Context, studentID string) ([]string, error) {
	ids, err := s.store.Members(ctx, repository.CompletedKey(studentID))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load completed courses")
	}
	return ids, nil
}

// SetCompleted replaces the completed set and returns the stored ids.
func (s *StudentCourseService) SetCompleted(ctx context.Context, studentID string, req dto.CompletedCoursesRequest) ([]string, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid completed courses payload")
	}
	ids := normalizeIDs(req.CourseIDs)
	if err := s.ensureCourses(ctx, ids...); err != nil {
		return nil, err
	}
	if err := s.store.Replace(ctx, repository.CompletedKey(studentID), ids); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store completed courses")
	}
	s.logger.Info("completed courses replaced", zap.String("student_id", studentID), zap.Int("count", len(ids)))
	return ids, nil
}

// MarkCompleted adds one course to the completed set.
func (s *StudentCourseService) MarkCompleted(ctx context.Context, studentID, courseID string) error {
	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "course id is required")
	}
	if err := s.ensureCourses(ctx, courseID); err != nil {
		return err
	}
	if err := s.store.Add(ctx, repository.CompletedKey(studentID), courseID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark course completed")
	}
	return nil
}

// UnmarkCompleted removes one course from the completed set.
func (s *StudentCourseService) UnmarkCompleted(ctx context.Context, studentID, courseID string) error {
	if err := s.store.Remove(ctx, repository.CompletedKey(studentID), courseID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unmark course")
	}
	return nil
}

// Bookmarks returns the bookmarked course ids.
func (s *StudentCourseService) Bookmarks(ctx context.Context, studentID string) ([]string, error) {
	ids, err := s.store.Members(ctx, repository.BookmarkKey(studentID))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bookmarks")
	}
	return ids, nil
}

// ToggleBookmark flips the bookmark on a course.
func (s *StudentCourseService) ToggleBookmark(ctx context.Context, studentID, courseID string) (*dto.BookmarkToggleResponse, error) {
	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course id is required")
	}
	if err := s.ensureCourses(ctx, courseID); err != nil {
		return nil, err
	}
	on, err := s.store.Toggle(ctx, repository.BookmarkKey(studentID), courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to toggle bookmark")
	}
	return &dto.BookmarkToggleResponse{CourseID: courseID, Bookmarked: on}, nil
}

func (s *StudentCourseService) ensureCourses(ctx context.Context, ids ...string) error {
	if s.courses == nil || len(ids) == 0 {
		return nil
	}
	found, err := s.courses.Exists(ctx, ids...)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if !found[id] {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("course %s not found", id))
		}
	}
	return nil
}

func normalizeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
