package service

import (
	"sort"
	"time"

	"github.com/noah-isme/academic-records-api/internal/dto"
	"github.com/noah-isme/academic-records-api/internal/models"
)

type enrollmentPartial struct {
	enrollment int64
	partial    int
}

func formatDate(t time.Time) string {
	return t.Format(models.DateLayout)
}

// placeSlot writes grade at slot-1, growing the slice with nils as needed.
func placeSlot(values []*float64, slot int, grade float64) []*float64 {
	for len(values) < slot {
		values = append(values, nil)
	}
	g := grade
	values[slot-1] = &g
	return values
}

// BuildStudentGrades buckets evaluation grades per enrollment and partial.
// Type matching is case-insensitive. Unknown types and slots outside
// 1..models.MaxEvaluationSlot are skipped. A later row for the same slot
// overwrites the earlier one.
func BuildStudentGrades(rows []models.EvaluationGradeRow) []dto.StudentGrades {
	index := make(map[enrollmentPartial]int)
	out := make([]dto.StudentGrades, 0)
	for _, row := range rows {
		kind := models.NormalizeEvaluationType(row.EvaluationType)
		switch kind {
		case models.EvaluationTypeActividades, models.EvaluationTypeEvidencias:
			if row.EvaluationSlot < 1 || row.EvaluationSlot > models.MaxEvaluationSlot {
				continue
			}
		case models.EvaluationTypeProducto, models.EvaluationTypeExamen:
		default:
			continue
		}

		key := enrollmentPartial{row.CourseGroupStudentID, row.EvaluationPartial}
		i, ok := index[key]
		if !ok {
			out = append(out, dto.StudentGrades{
				CourseGroupStudentID: row.CourseGroupStudentID,
				Partial:              row.EvaluationPartial,
				Actividades:          []*float64{},
				Evidencias:           []*float64{},
			})
			i = len(out) - 1
			index[key] = i
		}
		entry := &out[i]
		grade := row.Grade
		switch kind {
		case models.EvaluationTypeActividades:
			entry.Actividades = placeSlot(entry.Actividades, row.EvaluationSlot, grade)
		case models.EvaluationTypeEvidencias:
			entry.Evidencias = placeSlot(entry.Evidencias, row.EvaluationSlot, grade)
		case models.EvaluationTypeProducto:
			entry.Producto = &grade
		case models.EvaluationTypeExamen:
			entry.Examen = &grade
		}
	}
	return out
}

// BuildStudentAttendances groups attendance rows per enrollment and partial,
// preserving row order inside each bucket.
func BuildStudentAttendances(rows []models.Attendance) []dto.StudentAttendances {
	index := make(map[enrollmentPartial]int)
	out := make([]dto.StudentAttendances, 0)
	for _, row := range rows {
		key := enrollmentPartial{row.CourseGroupStudentID, row.Partial}
		i, ok := index[key]
		if !ok {
			out = append(out, dto.StudentAttendances{
				CourseGroupStudentID: row.CourseGroupStudentID,
				Partial:              row.Partial,
				Attendances:          []dto.GradebookAttendance{},
			})
			i = len(out) - 1
			index[key] = i
		}
		out[i].Attendances = append(out[i].Attendances, toGradebookAttendance(row))
	}
	return out
}

// FoldFinalData attaches to each student their attendances, the latest
// partial grade per partial and the latest final grade. Only a strictly newer
// date replaces an earlier pick, so ties keep the first row seen.
func FoldFinalData(students []models.EnrolledStudentRow, attendances []models.Attendance, partials []models.PartialGrade, finals []models.FinalGrade) dto.FinalDataResponse {
	attendanceBy := make(map[int64][]dto.GradebookAttendance)
	for _, a := range attendances {
		attendanceBy[a.CourseGroupStudentID] = append(attendanceBy[a.CourseGroupStudentID], toGradebookAttendance(a))
	}

	latestPartial := make(map[enrollmentPartial]models.PartialGrade)
	for _, pg := range partials {
		key := enrollmentPartial{pg.CourseGroupStudentID, pg.Partial}
		if current, ok := latestPartial[key]; !ok || pg.Date.After(current.Date) {
			latestPartial[key] = pg
		}
	}
	partialBy := make(map[int64][]dto.GradebookPartialGrade)
	for _, pg := range latestPartial {
		partialBy[pg.CourseGroupStudentID] = append(partialBy[pg.CourseGroupStudentID], toGradebookPartialGrade(pg))
	}

	latestFinal := make(map[int64]models.FinalGrade)
	for _, fg := range finals {
		if current, ok := latestFinal[fg.CourseGroupStudentID]; !ok || fg.Date.After(current.Date) {
			latestFinal[fg.CourseGroupStudentID] = fg
		}
	}

	out := dto.FinalDataResponse{Students: make([]dto.FinalDataStudent, 0, len(students))}
	for _, s := range students {
		student := dto.FinalDataStudent{
			ID:                   s.StudentID,
			FullName:             s.FullName,
			RegistrationNumber:   s.RegistrationNumber,
			Semester:             s.Semester,
			CourseGroupStudentID: s.CourseGroupStudentID,
			Attendances:          attendanceBy[s.CourseGroupStudentID],
			PartialGrades:        partialBy[s.CourseGroupStudentID],
		}
		if student.Attendances == nil {
			student.Attendances = []dto.GradebookAttendance{}
		}
		if student.PartialGrades == nil {
			student.PartialGrades = []dto.GradebookPartialGrade{}
		}
		sort.Slice(student.PartialGrades, func(i, j int) bool {
			return student.PartialGrades[i].Partial < student.PartialGrades[j].Partial
		})
		if fg, ok := latestFinal[s.CourseGroupStudentID]; ok {
			final := toGradebookFinalGrade(fg)
			student.FinalGrade = &final
		}
		out.Students = append(out.Students, student)
	}
	return out
}

func toGradebookStudents(rows []models.EnrolledStudentRow) []dto.GradebookStudent {
	out := make([]dto.GradebookStudent, len(rows))
	for i, r := range rows {
		out[i] = dto.GradebookStudent{
			ID:                   r.StudentID,
			FullName:             r.FullName,
			RegistrationNumber:   r.RegistrationNumber,
			Semester:             r.Semester,
			CourseGroupStudentID: r.CourseGroupStudentID,
		}
	}
	return out
}

func toGradebookPartialGrade(pg models.PartialGrade) dto.GradebookPartialGrade {
	return dto.GradebookPartialGrade{
		ID:                   pg.ID,
		CourseGroupStudentID: pg.CourseGroupStudentID,
		Partial:              pg.Partial,
		Grade:                pg.Grade,
		Date:                 formatDate(pg.Date),
	}
}

func toGradebookPartialGrades(rows []models.PartialGrade) []dto.GradebookPartialGrade {
	out := make([]dto.GradebookPartialGrade, len(rows))
	for i, r := range rows {
		out[i] = toGradebookPartialGrade(r)
	}
	return out
}

func toGradebookAttendance(a models.Attendance) dto.GradebookAttendance {
	return dto.GradebookAttendance{
		ID:                   a.ID,
		CourseGroupStudentID: a.CourseGroupStudentID,
		Partial:              a.Partial,
		Date:                 formatDate(a.Date),
		Attend:               a.Attend,
	}
}

func toGradebookAttendances(rows []models.Attendance) []dto.GradebookAttendance {
	out := make([]dto.GradebookAttendance, len(rows))
	for i, r := range rows {
		out[i] = toGradebookAttendance(r)
	}
	return out
}

func toGradebookFinalGrade(fg models.FinalGrade) dto.GradebookFinalGrade {
	return dto.GradebookFinalGrade{
		ID:                   fg.ID,
		CourseGroupStudentID: fg.CourseGroupStudentID,
		Grade:                fg.Grade,
		GradeOrdinary:        fg.GradeOrdinary,
		GradeExtraordinary:   fg.GradeExtraordinary,
		Date:                 formatDate(fg.Date),
		Type:                 fg.Type,
	}
}

func toGradebookFinalGrades(rows []models.FinalGrade) []dto.GradebookFinalGrade {
	out := make([]dto.GradebookFinalGrade, len(rows))
	for i, r := range rows {
		out[i] = toGradebookFinalGrade(r)
	}
	return out
}

func toGradebookEvaluations(rows []models.PartialEvaluation) []dto.GradebookEvaluation {
	out := make([]dto.GradebookEvaluation, len(rows))
	for i, r := range rows {
		out[i] = dto.GradebookEvaluation{
			ID:            r.ID,
			Name:          r.Name,
			Type:          r.Type,
			Slot:          r.Slot,
			Partial:       r.Partial,
			CourseGroupID: r.CourseGroupID,
		}
	}
	return out
}

func toGradebookSchemes(rows []models.GradingScheme) []dto.GradebookGradingScheme {
	out := make([]dto.GradebookGradingScheme, len(rows))
	for i, r := range rows {
		out[i] = dto.GradebookGradingScheme{ID: r.ID, Type: r.Type, Percentage: r.Percentage}
	}
	return out
}

func toGradebookMarks(rows []models.EvaluationGradeRow) []dto.GradebookEvaluationMark {
	out := make([]dto.GradebookEvaluationMark, len(rows))
	for i, r := range rows {
		out[i] = dto.GradebookEvaluationMark{
			ID:                   r.ID,
			Grade:                r.Grade,
			CourseGroupStudentID: r.CourseGroupStudentID,
			PartialEvaluationID:  r.PartialEvaluationID,
			EvaluationName:       r.EvaluationName,
			EvaluationType:       r.EvaluationType,
			EvaluationSlot:       r.EvaluationSlot,
			EvaluationPartial:    r.EvaluationPartial,
		}
	}
	return out
}
