package dto

import "time"

// ExcludedBlockRequest marks one (day, hour) bucket the student wants free.
type ExcludedBlockRequest struct {
	Day  string `json:"day" validate:"required"`
	Hour int    `json:"hour" validate:"min=0,max=23"`
}

// RecommendRequest asks for candidate timetables. Unset limits fall back to
// the server defaults; department falls back to the token claim.
type RecommendRequest struct {
	Department                string                 `json:"department" validate:"omitempty,max=64"`
	ExcludedBlocks            []ExcludedBlockRequest `json:"excludedBlocks" validate:"omitempty,dive"`
	CompletedCourseIDs        []string               `json:"completedCourseIds" validate:"omitempty,dive,required"`
	IgnoreStoredCompleted     bool                   `json:"ignoreStoredCompleted"`
	AllowGenEdCrossDepartment *bool                  `json:"allowGenEdCrossDepartment"`
	MaxCredits                *int                   `json:"maxCredits" validate:"omitempty,min=1,max=30"`
	MaxCourseCount            *int                   `json:"maxCourseCount" validate:"omitempty,min=1,max=12"`
	VariantCount              *int                   `json:"variantCount" validate:"omitempty,min=1"`
	ConflictMode              string                 `json:"conflictMode" validate:"omitempty,oneof=start interval"`
	UniqueCourseCodes         *bool                  `json:"uniqueCourseCodes"`
	Diversification           string                 `json:"diversification" validate:"omitempty,oneof=none rotate exclude-previous shuffle"`
	Seed                      *int64                 `json:"seed"`
	Priority                  []string               `json:"priority" validate:"omitempty,dive,required"`
	PreferProfessors          []string               `json:"preferProfessors" validate:"omitempty,max=20,dive,required"`
	MaxGrade                  *int                   `json:"maxGrade" validate:"omitempty,min=1,max=6"`
	SkipFullSections          bool                   `json:"skipFullSections"`
}

// TimeSlotResponse renders a meeting block.
type TimeSlotResponse struct {
	Day   string `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// CourseOfferingResponse renders an offering inside a candidate.
type CourseOfferingResponse struct {
	ID         string             `json:"id"`
	CourseCode string             `json:"courseCode"`
	Section    string             `json:"section"`
	Name       string             `json:"name"`
	Professor  string             `json:"professor,omitempty"`
	Room       string             `json:"room,omitempty"`
	Credits    int                `json:"credits"`
	Category   string             `json:"category"`
	Department string             `json:"department"`
	Grade      int                `json:"grade,omitempty"`
	TimeSlots  []TimeSlotResponse `json:"timeSlots"`
}

// ScheduleSummaryResponse aggregates a candidate.
type ScheduleSummaryResponse struct {
	TotalCredits      int            `json:"totalCredits"`
	CourseCount       int            `json:"courseCount"`
	CategoryBreakdown map[string]int `json:"categoryBreakdown"`
}

// CandidateResponse is one proposed timetable.
type CandidateResponse struct {
	Variant int                      `json:"variant"`
	Courses []CourseOfferingResponse `json:"courses"`
	Summary ScheduleSummaryResponse  `json:"summary"`
}

// AppliedConstraints echoes the effective constraints after defaults.
type AppliedConstraints struct {
	Department                string                 `json:"department"`
	AllowGenEdCrossDepartment bool                   `json:"allowGenEdCrossDepartment"`
	ExcludedBlocks            []ExcludedBlockRequest `json:"excludedBlocks"`
	CompletedCourseCount      int                    `json:"completedCourseCount"`
	MaxCredits                int                    `json:"maxCredits"`
	MaxCourseCount            int                    `json:"maxCourseCount"`
	VariantCount              int                    `json:"variantCount"`
	ConflictMode              string                 `json:"conflictMode"`
	UniqueCourseCodes         bool                   `json:"uniqueCourseCodes"`
	Diversification           string                 `json:"diversification"`
	Seed                      int64                  `json:"seed"`
	PreferProfessors          []string               `json:"preferProfessors,omitempty"`
	MaxGrade                  int                    `json:"maxGrade,omitempty"`
	SkipFullSections          bool                   `json:"skipFullSections"`
}

// RecommendationResponse is a stored proposal with its candidates.
type RecommendationResponse struct {
	ProposalID    string              `json:"proposalId"`
	GeneratedAt   time.Time           `json:"generatedAt"`
	ExpiresAt     time.Time           `json:"expiresAt"`
	EligibleCount int                 `json:"eligibleCount"`
	Constraints   AppliedConstraints  `json:"constraints"`
	Candidates    []CandidateResponse `json:"candidates"`
}

// SaveTimetableRequest persists one variant of a proposal.
type SaveTimetableRequest struct {
	ProposalID string `json:"proposalId" validate:"required,uuid"`
	Variant    int    `json:"variant" validate:"min=0"`
	Name       string `json:"name" validate:"required,max=100"`
}

// SaveTimetableResponse returns the stored timetable id.
type SaveTimetableResponse struct {
	TimetableID string `json:"timetableId"`
}

// SavedTimetableQuery paginates a student's saved timetables.
type SavedTimetableQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"limit"`
}

// CourseListQuery filters the catalog listing.
type CourseListQuery struct {
	Department string `form:"department"`
	Category   string `form:"category"`
	Search     string `form:"q"`
	Professor  string `form:"professor"`
	Page       int    `form:"page"`
	PageSize   int    `form:"limit"`
}

// CompletedCoursesRequest replaces the stored completed-course set.
type CompletedCoursesRequest struct {
	CourseIDs []string `json:"courseIds" validate:"dive,required,max=64"`
}

// CourseSetResponse lists course ids from a per-student set.
type CourseSetResponse struct {
	CourseIDs []string `json:"courseIds"`
}

// BookmarkToggleResponse reports the bookmark state after a toggle.
type BookmarkToggleResponse struct {
	CourseID   string `json:"courseId"`
	Bookmarked bool   `json:"bookmarked"`
}

// ExportFormat is a supported download format.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)
