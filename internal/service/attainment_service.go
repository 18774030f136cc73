package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/obe-attainment-api/internal/attainment"
	"github.com/noah-isme/obe-attainment-api/internal/models"
	appErrors "github.com/noah-isme/obe-attainment-api/pkg/errors"
)

type attainmentCourseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	ListByProgram(ctx context.Context, programID string) ([]models.Course, error)
	FindSection(ctx context.Context, id string) (*models.Section, error)
}

type attainmentProgramReader interface {
	FindByID(ctx context.Context, id string) (*models.Program, error)
}

type attainmentOutcomeReader interface {
	ListCourseOutcomes(ctx context.Context, courseID string) ([]models.CourseOutcome, error)
	ListProgramOutcomes(ctx context.Context, programID string) ([]models.ProgramOutcome, error)
	ListMappingsByProgram(ctx context.Context, programID string) ([]models.CoPoMapping, error)
}

type attainmentAssessmentReader interface {
	ListByScope(ctx context.Context, scope models.AssessmentScope) ([]models.Assessment, error)
	Version(ctx context.Context, scope models.AssessmentScope) (string, error)
	ProgramVersion(ctx context.Context, programID string) (string, error)
}

type attainmentStudentReader interface {
	ListActive(ctx context.Context, scope models.AssessmentScope) ([]models.Student, error)
}

type attainmentMarkReader interface {
	ListByScope(ctx context.Context, scope models.AssessmentScope) (map[string][]models.Mark, error)
}

const (
	attainmentScopeCourse       = "course"
	attainmentScopeCourseDetail = "course_detail"
	attainmentScopeProgram      = "program"
)

// AttainmentServiceParams groups constructor dependencies.
type AttainmentServiceParams struct {
	Courses     attainmentCourseReader
	Programs    attainmentProgramReader
	Outcomes    attainmentOutcomeReader
	Assessments attainmentAssessmentReader
	Students    attainmentStudentReader
	Marks       attainmentMarkReader
	Cache       *CacheService
	Metrics     *MetricsService
	Logger      *zap.Logger
	CacheTTL    time.Duration
}

// AttainmentService is the calculation facade: it loads read-only snapshots
// from storage, runs the attainment engine and returns serialisable reports.
type AttainmentService struct {
	courses     attainmentCourseReader
	programs    attainmentProgramReader
	outcomes    attainmentOutcomeReader
	assessments attainmentAssessmentReader
	students    attainmentStudentReader
	marks       attainmentMarkReader
	cache       *CacheService
	metrics     *MetricsService
	logger      *zap.Logger
	cacheTTL    time.Duration
	now         func() time.Time
}

// NewAttainmentService constructs an AttainmentService.
func NewAttainmentService(params AttainmentServiceParams) *AttainmentService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttainmentService{
		courses:     params.Courses,
		programs:    params.Programs,
		outcomes:    params.Outcomes,
		assessments: params.Assessments,
		students:    params.Students,
		marks:       params.Marks,
		cache:       params.Cache,
		metrics:     params.Metrics,
		logger:      logger,
		cacheTTL:    params.CacheTTL,
		now:         time.Now,
	}
}

// CalculateAllCourseCOAttainments resolves every CO of a course. An empty
// sectionID aggregates all sections of the course.
func (s *AttainmentService) CalculateAllCourseCOAttainments(ctx context.Context, courseID, sectionID string, policy attainment.Policy) (report *models.CourseAttainmentReport, err error) {
	start := time.Now()
	defer func() { s.observe(attainmentScopeCourse, start, err) }()

	course, scope, err := s.prepareCourse(ctx, courseID, sectionID, policy)
	if err != nil {
		return nil, err
	}

	cacheKey := s.courseCacheKey(ctx, attainmentScopeCourse, scope, policy)
	var cached models.CourseAttainmentReport
	if s.readCache(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	snapshot, err := s.loadCourseSnapshot(ctx, course, scope)
	if err != nil {
		return nil, err
	}
	resolution, err := attainment.ResolveCourseOutcomes(snapshot.input, policy)
	if err != nil {
		return nil, err
	}

	built := attainment.BuildCourseReport(*course, sectionID, resolution.Results, s.now())
	s.writeCache(ctx, cacheKey, built)
	s.logger.Debug("course attainment calculated",
		zap.String("course_id", courseID),
		zap.String("section_id", sectionID),
		zap.Int("outcomes", len(built.Outcomes)))
	return &built, nil
}

// GenerateCourseAttainmentReport returns the CO results together with
// assessment and question level statistics and the active enrollment count.
func (s *AttainmentService) GenerateCourseAttainmentReport(ctx context.Context, courseID, sectionID string, policy attainment.Policy) (report *models.CourseAttainmentDetailReport, err error) {
	start := time.Now()
	defer func() { s.observe(attainmentScopeCourseDetail, start, err) }()

	course, scope, err := s.prepareCourse(ctx, courseID, sectionID, policy)
	if err != nil {
		return nil, err
	}

	cacheKey := s.courseCacheKey(ctx, attainmentScopeCourseDetail, scope, policy)
	var cached models.CourseAttainmentDetailReport
	if s.readCache(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	snapshot, err := s.loadCourseSnapshot(ctx, course, scope)
	if err != nil {
		return nil, err
	}
	resolution, err := attainment.ResolveCourseOutcomes(snapshot.input, policy)
	if err != nil {
		return nil, err
	}

	built := attainment.BuildCourseDetailReport(attainment.CourseDetailInput{
		Course:           *course,
		SectionID:        sectionID,
		Outcomes:         snapshot.input.Outcomes,
		Assessments:      snapshot.input.Assessments,
		Resolution:       resolution,
		EnrolledStudents: len(snapshot.input.ActiveStudents),
	}, s.now())
	s.writeCache(ctx, cacheKey, built)
	return &built, nil
}

// CalculateAllPOAttainments resolves every PO of a program from the CO
// attainment of all its courses across all sections.
func (s *AttainmentService) CalculateAllPOAttainments(ctx context.Context, programID string, policy attainment.Policy) (report *models.ProgramAttainmentReport, err error) {
	start := time.Now()
	defer func() { s.observe(attainmentScopeProgram, start, err) }()

	if err := policy.Validate(); err != nil {
		return nil, err
	}
	program, err := s.programs.FindByID(ctx, programID)
	if err != nil {
		return nil, notFoundOrInternal(err, "program", programID)
	}

	var cacheKey string
	if s.cache.Enabled() {
		version, err := s.assessments.ProgramVersion(ctx, programID)
		if err != nil {
			s.logger.Warn("program attainment version", zap.String("program_id", programID), zap.Error(err))
		} else {
			cacheKey = makeAttainmentCacheKey(attainmentScopeProgram, programID, version, policy.Fingerprint())
		}
	}
	var cached models.ProgramAttainmentReport
	if s.readCache(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	loadStart := time.Now()
	courses, err := s.courses.ListByProgram(ctx, programID)
	if err != nil {
		return nil, internalError(err, "failed to list program courses")
	}
	outcomes, err := s.outcomes.ListProgramOutcomes(ctx, programID)
	if err != nil {
		return nil, internalError(err, "failed to list program outcomes")
	}
	mappings, err := s.outcomes.ListMappingsByProgram(ctx, programID)
	if err != nil {
		return nil, internalError(err, "failed to list co-po mappings")
	}
	s.metrics.ObserveDBQuery("attainment_program_load", time.Since(loadStart))

	courseResults := make([]attainment.CourseResults, 0, len(courses))
	for i := range courses {
		course := courses[i]
		snapshot, err := s.loadCourseSnapshot(ctx, &course, models.AssessmentScope{CourseID: course.ID})
		if err != nil {
			return nil, err
		}
		resolution, err := attainment.ResolveCourseOutcomes(snapshot.input, policy)
		if err != nil {
			return nil, err
		}
		courseResults = append(courseResults, attainment.CourseResults{Course: course, Results: resolution.Results})
	}

	results, err := attainment.ResolveProgramOutcomes(attainment.ProgramInput{
		Outcomes: outcomes,
		Courses:  courseResults,
		Mappings: mappings,
	}, policy)
	if err != nil {
		return nil, err
	}

	built := attainment.BuildProgramReport(*program, results, s.now())
	s.writeCache(ctx, cacheKey, built)
	s.logger.Debug("program attainment calculated",
		zap.String("program_id", programID),
		zap.Int("courses", len(courses)),
		zap.Int("outcomes", len(built.Outcomes)))
	return &built, nil
}

// PurgeCache drops cached attainment reports. An empty courseOrProgramID drops all of them.
func (s *AttainmentService) PurgeCache(ctx context.Context, courseOrProgramID string) error {
	if !s.cache.Enabled() {
		return nil
	}
	pattern := "attainment:*"
	if courseOrProgramID != "" {
		pattern = fmt.Sprintf("attainment:*:%s:*", sanitizeKeyPart(courseOrProgramID))
	}
	if err := s.cache.Invalidate(ctx, pattern); err != nil {
		return internalError(err, "failed to purge attainment cache")
	}
	return nil
}

type courseSnapshot struct {
	input attainment.CourseInput
}

func (s *AttainmentService) prepareCourse(ctx context.Context, courseID, sectionID string, policy attainment.Policy) (*models.Course, models.AssessmentScope, error) {
	scope := models.AssessmentScope{CourseID: courseID, SectionID: sectionID}
	if err := policy.Validate(); err != nil {
		return nil, scope, err
	}
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, scope, notFoundOrInternal(err, "course", courseID)
	}
	if sectionID != "" {
		section, err := s.courses.FindSection(ctx, sectionID)
		if err != nil {
			return nil, scope, notFoundOrInternal(err, "section", sectionID)
		}
		if section.CourseID != course.ID {
			return nil, scope, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("section %s not found in course %s", sectionID, courseID))
		}
	}
	return course, scope, nil
}

func (s *AttainmentService) loadCourseSnapshot(ctx context.Context, course *models.Course, scope models.AssessmentScope) (*courseSnapshot, error) {
	start := time.Now()
	outcomes, err := s.outcomes.ListCourseOutcomes(ctx, course.ID)
	if err != nil {
		return nil, internalError(err, "failed to list course outcomes")
	}
	assessments, err := s.assessments.ListByScope(ctx, scope)
	if err != nil {
		return nil, internalError(err, "failed to list assessments")
	}
	students, err := s.students.ListActive(ctx, scope)
	if err != nil {
		return nil, internalError(err, "failed to list active students")
	}
	marks, err := s.marks.ListByScope(ctx, scope)
	if err != nil {
		return nil, internalError(err, "failed to list marks")
	}
	s.metrics.ObserveDBQuery("attainment_course_load", time.Since(start))

	return &courseSnapshot{input: attainment.CourseInput{
		Outcomes:        outcomes,
		Assessments:     assessments,
		MarksByQuestion: marks,
		ActiveStudents:  attainment.ActiveStudents(students),
	}}, nil
}

func (s *AttainmentService) courseCacheKey(ctx context.Context, kind string, scope models.AssessmentScope, policy attainment.Policy) string {
	if !s.cache.Enabled() {
		return ""
	}
	version, err := s.assessments.Version(ctx, scope)
	if err != nil {
		s.logger.Warn("course attainment version", zap.String("course_id", scope.CourseID), zap.Error(err))
		return ""
	}
	section := scope.SectionID
	if section == "" {
		section = "all"
	}
	return makeAttainmentCacheKey(kind, scope.CourseID, section, version, policy.Fingerprint())
}

func (s *AttainmentService) readCache(ctx context.Context, key string, dest interface{}) bool {
	if key == "" {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		return false
	}
	return hit
}

func (s *AttainmentService) writeCache(ctx context.Context, key string, value interface{}) {
	if key == "" {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("cache attainment report", zap.String("key", key), zap.Error(err))
	}
}

func (s *AttainmentService) observe(scope string, start time.Time, err error) {
	outcome := "success"
	switch {
	case err == nil:
	case appErrors.Is(err, appErrors.ErrNotFound):
		outcome = "not_found"
	case appErrors.Is(err, appErrors.ErrInvalidInput), appErrors.Is(err, appErrors.ErrValidation):
		outcome = "invalid_input"
	default:
		outcome = "error"
	}
	s.metrics.ObserveAttainment(scope, outcome, time.Since(start))
}

func makeAttainmentCacheKey(parts ...string) string {
	var builder strings.Builder
	builder.Grow(len(parts) * 16)
	builder.WriteString("attainment")
	for _, part := range parts {
		builder.WriteByte(':')
		builder.WriteString(sanitizeKeyPart(part))
	}
	return builder.String()
}

func sanitizeKeyPart(part string) string {
	return strings.NewReplacer(":", "|", "*", "_", "?", "_", "[", "_", "]", "_").Replace(part)
}

func notFoundOrInternal(err error, entity, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s %s not found", entity, id))
	}
	return internalError(err, fmt.Sprintf("failed to load %s", entity))
}

func internalError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
