package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records-api/internal/dto"
	"github.com/noah-isme/academic-records-api/internal/models"
	"github.com/noah-isme/academic-records-api/pkg/storage"
)

type boletaSourceStub struct{}

func sampleBoletas() *dto.BoletasResponse {
	ordinary := 8
	return &dto.BoletasResponse{
		Group: dto.BoletaGroup{ID: 1, Name: "1A Matutino", Semester: 1, Period: dto.PeriodRef{ID: 1, Name: "2024A"}},
		Students: []dto.BoletaStudent{
			{
				ID:                 5,
				FullName:           "Ana Lopez",
				RegistrationNumber: "A001",
				Semester:           1,
				Courses: []dto.BoletaCourse{
					{
						CourseID:             3,
						CourseName:           "Matematicas",
						CourseGroupStudentID: 100,
						PartialGrades: []dto.BoletaPartialGrade{
							{Partial: 1, Grade: 8.5, Date: "2024-02-01"},
							{Partial: 3, Grade: 7, Date: "2024-04-01"},
						},
						FinalGrade: &dto.BoletaFinalGrade{Grade: 8, GradeOrdinary: &ordinary, Date: "2024-05-01", Type: "ordinario"},
					},
				},
			},
		},
	}
}

func (boletaSourceStub) FindBoletas(ctx context.Context, groupID int64) (*dto.BoletasResponse, error) {
	return sampleBoletas(), nil
}

func (boletaSourceStub) FindBoletasFinales(ctx context.Context, groupID int64) (*dto.BoletasResponse, error) {
	return sampleBoletas(), nil
}

func newExportServiceForTest(t *testing.T) (*ExportService, *storage.ExportStore) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewExportStore(dir)
	require.NoError(t, err)
	signer := storage.NewDownloadSigner("secret", time.Hour)
	cfg := ExportConfig{APIPrefix: "/api/v1", ResultTTL: time.Hour}
	svc := NewExportService(boletaSourceStub{}, store, signer, cfg, zap.NewNop(), nil, nil, nil)
	return svc, store
}

func TestExportServiceGenerateFormats(t *testing.T) {
	for _, format := range []models.ExportFormat{models.ExportFormatCSV, models.ExportFormatPDF, models.ExportFormatXLSX} {
		t.Run(string(format), func(t *testing.T) {
			svc, store := newExportServiceForTest(t)
			job := &models.ExportJob{
				ID:        "job-" + string(format),
				Type:      models.ExportTypeBoletas,
				Params:    models.ExportJobParams{GroupID: 1, Format: format},
				CreatedBy: 1,
			}
			result, err := svc.Generate(context.Background(), job)
			require.NoError(t, err)
			require.Equal(t, format, result.Format)
			require.Contains(t, result.URL, "/api/v1/export/")
			assert.Equal(t, "."+string(format), filepath.Ext(result.RelativePath))

			info, err := os.Stat(filepath.Clean(store.Path(result.RelativePath)))
			require.NoError(t, err)
			require.Greater(t, info.Size(), int64(0))
		})
	}
}

func TestExportServiceGenerateUnsupportedType(t *testing.T) {
	svc, _ := newExportServiceForTest(t)
	_, err := svc.Generate(context.Background(), &models.ExportJob{
		ID:     "job-x",
		Type:   "kardex",
		Params: models.ExportJobParams{GroupID: 1, Format: models.ExportFormatCSV},
	})
	require.Error(t, err)
}

func TestBoletaDatasetFlattensCourses(t *testing.T) {
	dataset := BoletaDataset(sampleBoletas())

	require.Len(t, dataset.Rows, 1)
	row := dataset.Rows[0]
	assert.Equal(t, "A001", row[colRegistration])
	assert.Equal(t, "Matematicas", row[colCourse])
	assert.Equal(t, "8.5", row[colPartial1])
	assert.Equal(t, "", row[colPartial2])
	assert.Equal(t, "7.0", row[colPartial3])
	assert.Equal(t, "8", row[colFinal])
	assert.Equal(t, "8", row[colOrdinary])
	assert.Equal(t, "", row[colExtra])
}
