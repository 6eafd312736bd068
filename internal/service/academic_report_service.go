package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/academic-records-api/internal/dto"
	"github.com/noah-isme/academic-records-api/internal/models"
	appErrors "github.com/noah-isme/academic-records-api/pkg/errors"
)

type academicReportReader interface {
	PeriodReportRows(ctx context.Context, periodID int64, partial int) ([]models.PeriodReportRow, error)
	BoletaHeader(ctx context.Context, groupID int64) (*models.BoletaHeaderRow, error)
	BoletaPartialRows(ctx context.Context, groupID int64) ([]models.BoletaGradeRow, error)
	BoletaFinalRows(ctx context.Context, groupID int64) ([]models.BoletaGradeRow, error)
	DetailedEnrollments(ctx context.Context, periodID *int64) ([]models.DetailedEnrollmentRow, error)
	DetailedPartialGrades(ctx context.Context, periodID *int64) ([]models.PartialGrade, error)
	DetailedEvaluations(ctx context.Context, periodID *int64) ([]models.DetailedEvaluationRow, error)
}

// AcademicReportService builds period reports, boletas and the detailed
// group listing from flat rows.
type AcademicReportService struct {
	repo    academicReportReader
	lookup  RecordLookup
	policy  EnforcementPolicy
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
}

// NewAcademicReportService constructs the report service.
func NewAcademicReportService(repo academicReportReader, lookup RecordLookup, policy EnforcementPolicy, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *AcademicReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AcademicReportService{repo: repo, lookup: lookup, policy: policy, cache: cache, metrics: metrics, logger: logger}
}

// GenerateReports aggregates the grades of the period's active partial.
// Exactly one partial must be open.
func (s *AcademicReportService) GenerateReports(ctx context.Context, periodID int64) (*dto.PeriodReportResponse, error) {
	period, err := s.lookup.Period(ctx, periodID)
	if err != nil {
		return nil, err
	}
	partial, ok := period.ActivePartial()
	if !ok {
		if s.policy.LegacyReportError {
			return nil, fmt.Errorf("no active partial for period %d", periodID)
		}
		return nil, appErrors.Clone(appErrors.ErrNoActivePartial, fmt.Sprintf("period %d has no single active partial", periodID))
	}

	key := PeriodReportKey(periodID)
	var cached dto.PeriodReportResponse
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit && cached.Partial == partial {
		return &cached, nil
	}

	rows, err := timedQuery(s.metrics, s.logger, "period_report_rows", func() ([]models.PeriodReportRow, error) {
		return s.repo.PeriodReportRows(ctx, periodID, partial)
	})
	if err != nil {
		return nil, err
	}
	report := FoldPeriodReport(periodID, partial, rows)
	_ = s.cache.Set(ctx, key, report, 0)
	return &report, nil
}

func (s *AcademicReportService) boletaHeader(ctx context.Context, groupID int64) (*models.BoletaHeaderRow, error) {
	header, err := s.repo.BoletaHeader(ctx, groupID)
	if err != nil {
		return nil, notFoundOr(s.logger, "boleta header", err, "group not found")
	}
	return header, nil
}

// FindBoletas returns the report cards of a group with partial and final grades.
func (s *AcademicReportService) FindBoletas(ctx context.Context, groupID int64) (*dto.BoletasResponse, error) {
	header, err := s.boletaHeader(ctx, groupID)
	if err != nil {
		return nil, err
	}
	partials, err := timedQuery(s.metrics, s.logger, "boleta_partial_rows", func() ([]models.BoletaGradeRow, error) {
		return s.repo.BoletaPartialRows(ctx, groupID)
	})
	if err != nil {
		return nil, err
	}
	finals, err := timedQuery(s.metrics, s.logger, "boleta_final_rows", func() ([]models.BoletaGradeRow, error) {
		return s.repo.BoletaFinalRows(ctx, groupID)
	})
	if err != nil {
		return nil, err
	}
	out := FoldBoletas(*header, partials, finals)
	return &out, nil
}

// FindBoletasFinales returns the report cards of a group with final grades only.
func (s *AcademicReportService) FindBoletasFinales(ctx context.Context, groupID int64) (*dto.BoletasResponse, error) {
	header, err := s.boletaHeader(ctx, groupID)
	if err != nil {
		return nil, err
	}
	finals, err := timedQuery(s.metrics, s.logger, "boleta_final_rows", func() ([]models.BoletaGradeRow, error) {
		return s.repo.BoletaFinalRows(ctx, groupID)
	})
	if err != nil {
		return nil, err
	}
	out := FoldBoletas(*header, nil, finals)
	return &out, nil
}

// FindGroupsWithStudentsDetailed returns the nested group listing. Paging is
// applied in memory after the fold.
func (s *AcademicReportService) FindGroupsWithStudentsDetailed(ctx context.Context, q dto.GroupsDetailedQuery) (*dto.GroupsDetailedResponse, error) {
	page := models.PageQuery{Limit: q.Limit, Offset: q.Offset}.Normalize()
	enrollments, err := timedQuery(s.metrics, s.logger, "detailed_enrollments", func() ([]models.DetailedEnrollmentRow, error) {
		return s.repo.DetailedEnrollments(ctx, q.PeriodID)
	})
	if err != nil {
		return nil, err
	}
	partials, err := timedQuery(s.metrics, s.logger, "detailed_partial_grades", func() ([]models.PartialGrade, error) {
		return s.repo.DetailedPartialGrades(ctx, q.PeriodID)
	})
	if err != nil {
		return nil, err
	}
	evaluations, err := timedQuery(s.metrics, s.logger, "detailed_evaluations", func() ([]models.DetailedEvaluationRow, error) {
		return s.repo.DetailedEvaluations(ctx, q.PeriodID)
	})
	if err != nil {
		return nil, err
	}
	out := FoldGroupsDetailed(enrollments, partials, evaluations, page.Limit, page.Offset)
	return &out, nil
}
