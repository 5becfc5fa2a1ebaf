package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/campuslab/elective-api/internal/config"
	"github.com/campuslab/elective-api/internal/domain"
	"github.com/campuslab/elective-api/internal/metrics"
	"github.com/campuslab/elective-api/internal/platform/logger"
	"github.com/campuslab/elective-api/internal/recommend"
	"github.com/campuslab/elective-api/internal/store"
)

// RecommendedCourse is one ranked course decorated for display.
type RecommendedCourse struct {
	CourseCode  string  `json:"course_code"`
	Name        string  `json:"name,omitempty"`
	Description string  `json:"description,omitempty"`
	Objective   string  `json:"objective,omitempty"`
	Instructors string  `json:"instructors,omitempty"`
	Score       float64 `json:"score"`
	// Contributors of Neighbors similar students took the course.
	Contributors   int    `json:"contributors"`
	Neighbors      int    `json:"neighbors"`
	AvailableSeats int    `json:"available_seats"`
	Full           bool   `json:"full"`
	Explanation    string `json:"explanation"`
}

// RecommendationResult is the outcome of one recommendation session.
type RecommendationResult struct {
	StudentID string              `json:"student_id"`
	Courses   []RecommendedCourse `json:"courses"`
	// Skipped is set when there was too little grade data to compare
	// students; Courses is then empty.
	Skipped bool   `json:"skipped"`
	Reason  string `json:"reason,omitempty"`
}

// EvaluationReport summarizes how well recommendations predict enrollments.
type EvaluationReport struct {
	// Evaluated counts enrolled students present in the grade data.
	Evaluated int `json:"evaluated"`
	// Unknown counts enrolled students without grade records.
	Unknown int                  `json:"unknown"`
	Mean    recommend.Evaluation `json:"mean"`
}

// RecommendationService runs recommendation sessions.
type RecommendationService interface {
	// Recommend ranks courses for studentID. Courses the student is enrolled
	// in and courses in extraExcluded are never returned. An unknown student
	// yields an empty list with a nil error.
	Recommend(ctx context.Context, studentID string, extraExcluded []string) (*RecommendationResult, error)

	// Evaluate compares every enrolled student's recommendations, computed
	// without exclusions, against the courses they enrolled in.
	Evaluate(ctx context.Context) (*EvaluationReport, error)
}

// recommendationServiceImpl implements the RecommendationService interface
type recommendationServiceImpl struct {
	grades       store.GradeStore
	courses      store.CourseStore
	enrollments  store.EnrollmentStore
	capacities   store.CapacityStore
	metrics      *metrics.Metrics
	params       recommend.Params
	workers      int
	defaultSeats int
	logger       *slog.Logger
}

// NewRecommendationService creates a new RecommendationService.
// It returns an error if any of the required stores are nil.
func NewRecommendationService(
	grades store.GradeStore,
	courses store.CourseStore,
	enrollments store.EnrollmentStore,
	capacities store.CapacityStore,
	m *metrics.Metrics,
	recCfg config.RecommendationConfig,
	enrollCfg config.EnrollmentConfig,
	logger *slog.Logger,
) (RecommendationService, error) {
	if grades == nil {
		return nil, domain.NewValidationError("grades", "cannot be nil", domain.ErrValidation)
	}
	if courses == nil {
		return nil, domain.NewValidationError("courses", "cannot be nil", domain.ErrValidation)
	}
	if enrollments == nil {
		return nil, domain.NewValidationError("enrollments", "cannot be nil", domain.ErrValidation)
	}
	if capacities == nil {
		return nil, domain.NewValidationError("capacities", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	defaultSeats := enrollCfg.DefaultSeats
	if defaultSeats < 1 {
		defaultSeats = domain.DefaultSeats
	}

	return &recommendationServiceImpl{
		grades:       grades,
		courses:      courses,
		enrollments:  enrollments,
		capacities:   capacities,
		metrics:      m,
		params:       recommend.Params{KNeighbors: recCfg.KNeighbors, TopN: recCfg.TopN},
		workers:      recCfg.Workers,
		defaultSeats: defaultSeats,
		logger:       logger.With(slog.String("component", "recommendation_service")),
	}, nil
}

// session is the read-only model shared by one request.
type session struct {
	matrix  *recommend.GradeMatrix
	sim     *recommend.SimilarityMatrix
	catalog map[string]*domain.Course
}

// loadSession reads the grade snapshot and computes similarity. Errors from
// ComputeSimilarity are returned unwrapped.
func (s *recommendationServiceImpl) loadSession(ctx context.Context, op string) (*session, error) {
	records, err := s.grades.ListAll(ctx)
	if err != nil {
		return nil, NewRecommendationServiceError(op, "failed to load grade records", err)
	}
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, NewRecommendationServiceError(op, "failed to load course catalog", err)
	}

	catalog := make(map[string]*domain.Course, len(courses))
	codes := make([]string, 0, len(courses))
	for _, c := range courses {
		catalog[c.Code] = c
		codes = append(codes, c.Code)
	}

	m, err := recommend.BuildGradeMatrix(records, recommend.WithCourseCodes(codes...))
	if err != nil {
		return nil, NewRecommendationServiceError(op, "grade data is malformed", err)
	}
	sim, err := recommend.ComputeSimilarity(ctx, m, s.workers)
	if err != nil {
		return &session{matrix: m, catalog: catalog}, err
	}
	return &session{matrix: m, sim: sim, catalog: catalog}, nil
}

// Recommend implements RecommendationService.Recommend
func (s *recommendationServiceImpl) Recommend(
	ctx context.Context,
	studentID string,
	extraExcluded []string,
) (res *RecommendationResult, err error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	start := time.Now()
	status := "ok"
	defer func() {
		if err != nil {
			status = "error"
		}
		s.metrics.RecommendDone(status, time.Since(start))
	}()

	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, NewRecommendationServiceError("recommend", "invalid student", domain.ErrEmptyStudentID)
	}
	res = &RecommendationResult{StudentID: studentID, Courses: []RecommendedCourse{}}

	sess, err := s.loadSession(ctx, "recommend")
	if errors.Is(err, recommend.ErrInsufficientData) {
		status = "skipped"
		log.Info("recommendation skipped",
			slog.String("student_id", studentID),
			slog.String("reason", err.Error()))
		res.Skipped = true
		res.Reason = recommend.ErrInsufficientData.Error()
		return res, nil
	}
	if err != nil {
		log.Error("failed to prepare recommendation session",
			slog.String("error", err.Error()),
			slog.String("student_id", studentID))
		var svcErr *RecommendationServiceError
		if !errors.As(err, &svcErr) {
			err = NewRecommendationServiceError("recommend", "failed to compute similarity", err)
		}
		return nil, err
	}

	excluded := recommend.NewCourseSet()
	for _, code := range extraExcluded {
		if code = strings.TrimSpace(code); code != "" {
			excluded.Add(code)
		}
	}
	enrolled, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, NewRecommendationServiceError("recommend", "failed to load enrollments", err)
	}
	for _, e := range enrolled {
		excluded.Add(e.CourseCode)
	}

	candidates := recommend.RecommendScored(studentID, sess.matrix, sess.sim, excluded, s.params)
	if len(candidates) == 0 {
		log.Debug("no recommendations",
			slog.String("student_id", studentID),
			slog.Bool("known_student", knownStudent(sess.matrix, studentID)))
		return res, nil
	}

	occupancy, err := s.occupancy(ctx)
	if err != nil {
		return nil, err
	}

	for _, c := range candidates {
		occ := occupancy(c.CourseCode)
		item := RecommendedCourse{
			CourseCode:     c.CourseCode,
			Score:          c.Score,
			Contributors:   c.Contributors,
			Neighbors:      c.Neighbors,
			AvailableSeats: occ.Available(),
			Full:           occ.Full(),
			Explanation:    explain(c),
		}
		if course, ok := sess.catalog[c.CourseCode]; ok {
			item.Name = course.Name
			item.Description = course.Description
			item.Objective = course.Objective
			item.Instructors = course.Instructors
		}
		res.Courses = append(res.Courses, item)
	}

	log.Info("recommendations computed",
		slog.String("student_id", studentID),
		slog.Int("count", len(res.Courses)),
		slog.Int("excluded", len(excluded)))
	return res, nil
}

func knownStudent(m *recommend.GradeMatrix, studentID string) bool {
	_, ok := m.StudentIndex(studentID)
	return ok
}

// occupancy returns a lookup of seat usage built from two bulk reads.
func (s *recommendationServiceImpl) occupancy(ctx context.Context) (func(string) domain.CourseOccupancy, error) {
	recs, err := s.capacities.List(ctx)
	if err != nil {
		return nil, NewRecommendationServiceError("recommend", "failed to load capacities", err)
	}
	counts, err := s.enrollments.CountAllByCourse(ctx)
	if err != nil {
		return nil, NewRecommendationServiceError("recommend", "failed to count enrollments", err)
	}
	seats := make(map[string]int, len(recs))
	for _, r := range recs {
		seats[r.CourseCode] = r.TotalSeats
	}
	return func(code string) domain.CourseOccupancy {
		total, ok := seats[code]
		if !ok {
			total = s.defaultSeats
		}
		return domain.CourseOccupancy{CourseCode: code, TotalSeats: total, Enrolled: counts[code]}
	}, nil
}

func explain(c recommend.Candidate) string {
	return fmt.Sprintf("%d of your %d most similar students took %s, with a mean grade of %.1f across all %d",
		c.Contributors, c.Neighbors, c.CourseCode, c.Score, c.Neighbors)
}

// Evaluate implements RecommendationService.Evaluate
func (s *recommendationServiceImpl) Evaluate(ctx context.Context) (*EvaluationReport, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	all, err := s.enrollments.ListAll(ctx)
	if err != nil {
		return nil, NewRecommendationServiceError("evaluate", "failed to load enrollments", err)
	}
	byStudent := make(map[string][]string)
	for _, e := range all {
		byStudent[e.StudentID] = append(byStudent[e.StudentID], e.CourseCode)
	}

	report := &EvaluationReport{}
	if len(byStudent) == 0 {
		return report, nil
	}

	sess, err := s.loadSession(ctx, "evaluate")
	if errors.Is(err, recommend.ErrInsufficientData) {
		report.Unknown = len(byStudent)
		return report, nil
	}
	if err != nil {
		var svcErr *RecommendationServiceError
		if !errors.As(err, &svcErr) {
			err = NewRecommendationServiceError("evaluate", "failed to compute similarity", err)
		}
		return nil, err
	}

	students := make([]string, 0, len(byStudent))
	for id := range byStudent {
		students = append(students, id)
	}
	sort.Strings(students)

	evals := make([]recommend.Evaluation, 0, len(students))
	for _, id := range students {
		if !knownStudent(sess.matrix, id) {
			report.Unknown++
			continue
		}
		recs := recommend.Recommend(id, sess.matrix, sess.sim, nil, s.params)
		evals = append(evals, recommend.Evaluate(byStudent[id], recs))
	}
	report.Evaluated = len(evals)
	report.Mean = recommend.MeanEvaluation(evals)

	log.Info("recommendation evaluation finished",
		slog.Int("evaluated", report.Evaluated),
		slog.Int("unknown", report.Unknown),
		slog.Float64("f1", report.Mean.F1))
	return report, nil
}
