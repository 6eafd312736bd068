package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/academic-records-api/internal/dto"
	"github.com/noah-isme/academic-records-api/internal/models"
	"github.com/noah-isme/academic-records-api/pkg/export"
	"github.com/noah-isme/academic-records-api/pkg/storage"
)

type boletaSource interface {
	FindBoletas(ctx context.Context, groupID int64) (*dto.BoletasResponse, error)
	FindBoletasFinales(ctx context.Context, groupID int64) (*dto.BoletasResponse, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type documentRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportService renders boletas into files and signs their download URLs.
type ExportService struct {
	boletas boletaSource
	storage fileStorage
	csv     csvRenderer
	pdf     documentRenderer
	xlsx    documentRenderer
	signer  *storage.DownloadSigner
	logger  *zap.Logger
	cfg     ExportConfig
	now     func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to
// the pkg/export implementations.
func NewExportService(boletas boletaSource, files fileStorage, signer *storage.DownloadSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf, xlsx documentRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter(colStudent, colCourse)
	}
	if xlsx == nil {
		xlsx = export.NewXLSXExporter()
	}
	return &ExportService{
		boletas: boletas,
		storage: files,
		csv:     csv,
		pdf:     pdf,
		xlsx:    xlsx,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Generate renders the job's boletas and stores the file.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	boletas, err := s.load(ctx, job)
	if err != nil {
		return nil, err
	}
	dataset := BoletaDataset(boletas)
	title := boletaTitle(job.Type, boletas)

	var payload []byte
	switch job.Params.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	case models.ExportFormatXLSX:
		payload, err = s.xlsx.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	relPath, err := s.storage.Save(s.buildFilename(job, boletas), payload)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", prefix, token),
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *ExportService) load(ctx context.Context, job *models.ExportJob) (*dto.BoletasResponse, error) {
	switch job.Type {
	case models.ExportTypeBoletas:
		return s.boletas.FindBoletas(ctx, job.Params.GroupID)
	case models.ExportTypeBoletasFinales:
		return s.boletas.FindBoletasFinales(ctx, job.Params.GroupID)
	default:
		return nil, fmt.Errorf("unsupported export type %s", job.Type)
	}
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl, or the configured ResultTTL when ttl <= 0.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ExportJob, boletas *dto.BoletasResponse) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	group := sanitizeFilename(GroupKey(boletas.Group.Name))
	return fmt.Sprintf("%s_%s_%s.%s", job.Type, group, timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func boletaTitle(kind models.ExportType, boletas *dto.BoletasResponse) string {
	label := "Boletas"
	if kind == models.ExportTypeBoletasFinales {
		label = "Boletas finales"
	}
	return fmt.Sprintf("%s %s - %s", label, boletas.Group.Name, boletas.Group.Period.Name)
}

// Boleta export column headers.
const (
	colRegistration = "Matricula"
	colStudent      = "Alumno"
	colCourse       = "Materia"
	colPartial1     = "Parcial 1"
	colPartial2     = "Parcial 2"
	colPartial3     = "Parcial 3"
	colFinal        = "Final"
	colOrdinary     = "Ordinario"
	colExtra        = "Extraordinario"
)

// BoletaDataset flattens boletas into one row per student and course.
func BoletaDataset(boletas *dto.BoletasResponse) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{colRegistration, colStudent, colCourse, colPartial1, colPartial2, colPartial3, colFinal, colOrdinary, colExtra},
		Rows:    []map[string]string{},
	}
	partialCols := map[int]string{1: colPartial1, 2: colPartial2, 3: colPartial3}
	for _, student := range boletas.Students {
		for _, course := range student.Courses {
			row := map[string]string{
				colRegistration: student.RegistrationNumber,
				colStudent:      student.FullName,
				colCourse:       course.CourseName,
			}
			for _, pg := range course.PartialGrades {
				if col, ok := partialCols[pg.Partial]; ok {
					row[col] = fmt.Sprintf("%.1f", pg.Grade)
				}
			}
			if fg := course.FinalGrade; fg != nil {
				row[colFinal] = fmt.Sprintf("%d", fg.Grade)
				row[colOrdinary] = optionalInt(fg.GradeOrdinary)
				row[colExtra] = optionalInt(fg.GradeExtraordinary)
			}
			dataset.Rows = append(dataset.Rows, row)
		}
	}
	return dataset
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d", *v)
}
