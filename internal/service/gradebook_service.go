package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/academic-records-api/internal/dto"
	"github.com/noah-isme/academic-records-api/internal/models"
)

type gradebookReader interface {
	Students(ctx context.Context, courseGroupID int64) ([]models.EnrolledStudentRow, error)
	PartialGrades(ctx context.Context, courseGroupID int64) ([]models.PartialGrade, error)
	Attendances(ctx context.Context, courseGroupID int64) ([]models.Attendance, error)
	FinalGrades(ctx context.Context, courseGroupID int64) ([]models.FinalGrade, error)
	Evaluations(ctx context.Context, courseGroupID int64) ([]models.PartialEvaluation, error)
	GradingSchemes(ctx context.Context, courseGroupID int64) ([]models.GradingScheme, error)
	EvaluationGrades(ctx context.Context, courseGroupID int64) ([]models.EvaluationGradeRow, error)
}

type courseGroupDetailReader interface {
	FindByID(ctx context.Context, id int64) (*models.CourseGroupDetail, error)
}

// GradebookService assembles the per course group gradebook views.
type GradebookService struct {
	repo         gradebookReader
	courseGroups courseGroupDetailReader
	lookup       RecordLookup
	metrics      *MetricsService
	logger       *zap.Logger
}

// NewGradebookService constructs the gradebook service.
func NewGradebookService(repo gradebookReader, courseGroups courseGroupDetailReader, lookup RecordLookup, metrics *MetricsService, logger *zap.Logger) *GradebookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradebookService{repo: repo, courseGroups: courseGroups, lookup: lookup, metrics: metrics, logger: logger}
}

// timedQuery runs fn and records its latency under label.
func timedQuery[T any](metrics *MetricsService, logger *zap.Logger, label string, fn func() (T, error)) (T, error) {
	start := time.Now()
	out, err := fn()
	metrics.ObserveDBQuery(label, time.Since(start))
	if err != nil {
		var zero T
		return zero, translateDBError(logger, label, err)
	}
	return out, nil
}

// GetEvaluationsData returns every gradebook collection of a course group
// plus the per-student grade and attendance buckets.
func (s *GradebookService) GetEvaluationsData(ctx context.Context, courseGroupID int64) (*dto.EvaluationsDataResponse, error) {
	cg, err := s.courseGroups.FindByID(ctx, courseGroupID)
	if err != nil {
		return nil, notFoundOr(s.logger, "find course group", err, "course group not found")
	}
	if _, err := s.lookup.Group(ctx, cg.GroupID); err != nil {
		return nil, err
	}

	students, err := timedQuery(s.metrics, s.logger, "gradebook_students", func() ([]models.EnrolledStudentRow, error) {
		return s.repo.Students(ctx, courseGroupID)
	})
	if err != nil {
		return nil, err
	}
	partials, err := timedQuery(s.metrics, s.logger, "gradebook_partial_grades", func() ([]models.PartialGrade, error) {
		return s.repo.PartialGrades(ctx, courseGroupID)
	})
	if err != nil {
		return nil, err
	}
	attendances, err := timedQuery(s.metrics, s.logger, "gradebook_attendances", func() ([]models.Attendance, error) {
		return s.repo.Attendances(ctx, courseGroupID)
	})
	if err != nil {
		return nil, err
	}
	evaluations, err := timedQuery(s.metrics, s.logger, "gradebook_evaluations", func() ([]models.PartialEvaluation, error) {
		return s.repo.Evaluations(ctx, courseGroupID)
	})
	if err != nil {
		return nil, err
	}
	schemes, err := timedQuery(s.metrics, s.logger, "gradebook_grading_schemes", func() ([]models.GradingScheme, error) {
		return s.repo.GradingSchemes(ctx, courseGroupID)
	})
	if err != nil {
		return nil, err
	}
	marks, err := timedQuery(s.metrics, s.logger, "gradebook_evaluation_grades", func() ([]models.EvaluationGradeRow, error) {
		return s.repo.EvaluationGrades(ctx, courseGroupID)
	})
	if err != nil {
		return nil, err
	}

	return &dto.EvaluationsDataResponse{
		CourseGroup: dto.CourseGroupSummary{
			ID:       cg.ID,
			Schedule: cg.Schedule,
			Course:   dto.CourseRef{ID: cg.CourseID, Name: cg.CourseName},
			Group:    dto.GroupSummary{ID: cg.GroupID, Name: cg.GroupName, Semester: cg.GroupSemester},
		},
		Students:                toGradebookStudents(students),
		PartialGrades:           toGradebookPartialGrades(partials),
		Attendances:             toGradebookAttendances(attendances),
		PartialEvaluations:      toGradebookEvaluations(evaluations),
		GradingSchemes:          toGradebookSchemes(schemes),
		PartialEvaluationGrades: toGradebookMarks(marks),
		StudentGrades:           BuildStudentGrades(marks),
		StudentAttendances:      BuildStudentAttendances(attendances),
	}, nil
}

// GetCompleteData returns the unshaped snapshot of a course group. The
// independent reads run concurrently.
func (s *GradebookService) GetCompleteData(ctx context.Context, courseGroupID int64) (*dto.CompleteDataResponse, error) {
	if _, err := s.lookup.CourseGroup(ctx, courseGroupID); err != nil {
		return nil, err
	}

	var (
		students    []models.EnrolledStudentRow
		partials    []models.PartialGrade
		attendances []models.Attendance
		finals      []models.FinalGrade
		evaluations []models.PartialEvaluation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		students, err = timedQuery(s.metrics, s.logger, "gradebook_students", func() ([]models.EnrolledStudentRow, error) {
			return s.repo.Students(gctx, courseGroupID)
		})
		return err
	})
	g.Go(func() (err error) {
		partials, err = timedQuery(s.metrics, s.logger, "gradebook_partial_grades", func() ([]models.PartialGrade, error) {
			return s.repo.PartialGrades(gctx, courseGroupID)
		})
		return err
	})
	g.Go(func() (err error) {
		attendances, err = timedQuery(s.metrics, s.logger, "gradebook_attendances", func() ([]models.Attendance, error) {
			return s.repo.Attendances(gctx, courseGroupID)
		})
		return err
	})
	g.Go(func() (err error) {
		finals, err = timedQuery(s.metrics, s.logger, "gradebook_final_grades", func() ([]models.FinalGrade, error) {
			return s.repo.FinalGrades(gctx, courseGroupID)
		})
		return err
	})
	g.Go(func() (err error) {
		evaluations, err = timedQuery(s.metrics, s.logger, "gradebook_evaluations", func() ([]models.PartialEvaluation, error) {
			return s.repo.Evaluations(gctx, courseGroupID)
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &dto.CompleteDataResponse{
		Students:           toGradebookStudents(students),
		PartialGrades:      toGradebookPartialGrades(partials),
		Attendances:        toGradebookAttendances(attendances),
		FinalGrades:        toGradebookFinalGrades(finals),
		PartialEvaluations: toGradebookEvaluations(evaluations),
	}, nil
}

// GetFinalData returns each enrolled student with the latest partial grade
// per partial and the latest final grade.
func (s *GradebookService) GetFinalData(ctx context.Context, courseGroupID int64) (*dto.FinalDataResponse, error) {
	if _, err := s.lookup.CourseGroup(ctx, courseGroupID); err != nil {
		return nil, err
	}
	students, err := timedQuery(s.metrics, s.logger, "gradebook_students", func() ([]models.EnrolledStudentRow, error) {
		return s.repo.Students(ctx, courseGroupID)
	})
	if err != nil {
		return nil, err
	}
	attendances, err := timedQuery(s.metrics, s.logger, "gradebook_attendances", func() ([]models.Attendance, error) {
		return s.repo.Attendances(ctx, courseGroupID)
	})
	if err != nil {
		return nil, err
	}
	partials, err := timedQuery(s.metrics, s.logger, "gradebook_partial_grades", func() ([]models.PartialGrade, error) {
		return s.repo.PartialGrades(ctx, courseGroupID)
	})
	if err != nil {
		return nil, err
	}
	finals, err := timedQuery(s.metrics, s.logger, "gradebook_final_grades", func() ([]models.FinalGrade, error) {
		return s.repo.FinalGrades(ctx, courseGroupID)
	})
	if err != nil {
		return nil, err
	}
	out := FoldFinalData(students, attendances, partials, finals)
	return &out, nil
}
