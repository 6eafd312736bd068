package service

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/noah-isme/academic-records-api/internal/dto"
	"github.com/noah-isme/academic-records-api/internal/models"
)

// FailingGradeThreshold is the partial grade below which a student fails.
const FailingGradeThreshold = 5.0

var nonKeyChars = regexp.MustCompile(`[^a-z0-9]+`)

// GroupKey derives a stable identifier from a group name.
func GroupKey(name string) string {
	key := nonKeyChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
	return strings.Trim(key, "_")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// tally accumulates a grade sum and the distinct students behind it.
type tally struct {
	sum      float64
	count    int
	students map[int64]struct{}
}

func newTally() *tally {
	return &tally{students: make(map[int64]struct{})}
}

func (t *tally) add(studentID int64, grade float64) {
	t.sum += grade
	t.count++
	t.students[studentID] = struct{}{}
}

func (t *tally) average() float64 {
	if t.count == 0 {
		return 0
	}
	return round2(t.sum / float64(t.count))
}

type groupAccumulator struct {
	report   *dto.GroupReport
	total    *tally
	subjects map[int64]*tally
	names    map[int64]string
}

type failureKey struct {
	courseID int64
	semester int
}

type failureAccumulator struct {
	courseName string
	failed     map[int64]struct{}
	total      map[int64]struct{}
}

// latestPeriodRows keeps one row per enrollment: the latest dated one, or the
// first seen on a tie. Enrollments keep the order of their first row.
func latestPeriodRows(rows []models.PeriodReportRow) []models.PeriodReportRow {
	index := make(map[int64]int, len(rows))
	out := make([]models.PeriodReportRow, 0, len(rows))
	for _, row := range rows {
		i, ok := index[row.CourseGroupStudentID]
		if !ok {
			index[row.CourseGroupStudentID] = len(out)
			out = append(out, row)
			continue
		}
		if row.Date != nil && (out[i].Date == nil || row.Date.After(*out[i].Date)) {
			out[i] = row
		}
	}
	return out
}

// FoldPeriodReport aggregates one partial's grades of a period into semester,
// group and group-by-course averages plus per course and semester failure
// counts. Only the latest grade of each enrollment counts. Student totals
// count distinct students.
func FoldPeriodReport(periodID int64, partial int, rows []models.PeriodReportRow) dto.PeriodReportResponse {
	rows = latestPeriodRows(rows)
	semesters := make(map[int]*tally)
	groups := make(map[int64]*groupAccumulator)
	failures := make(map[failureKey]*failureAccumulator)

	for _, row := range rows {
		sem, ok := semesters[row.Semester]
		if !ok {
			sem = newTally()
			semesters[row.Semester] = sem
		}
		sem.add(row.StudentID, row.Grade)

		acc, ok := groups[row.GroupID]
		if !ok {
			acc = &groupAccumulator{
				report: &dto.GroupReport{
					GroupID:   row.GroupID,
					Key:       GroupKey(row.GroupName),
					GroupName: row.GroupName,
					Semester:  row.Semester,
				},
				total:    newTally(),
				subjects: make(map[int64]*tally),
				names:    make(map[int64]string),
			}
			groups[row.GroupID] = acc
		}
		acc.total.add(row.StudentID, row.Grade)
		subject, ok := acc.subjects[row.CourseID]
		if !ok {
			subject = newTally()
			acc.subjects[row.CourseID] = subject
			acc.names[row.CourseID] = row.CourseName
		}
		subject.add(row.StudentID, row.Grade)

		fk := failureKey{row.CourseID, row.Semester}
		fail, ok := failures[fk]
		if !ok {
			fail = &failureAccumulator{courseName: row.CourseName, failed: make(map[int64]struct{}), total: make(map[int64]struct{})}
			failures[fk] = fail
		}
		fail.total[row.StudentID] = struct{}{}
		if row.Grade < FailingGradeThreshold {
			fail.failed[row.StudentID] = struct{}{}
		}
	}

	out := dto.PeriodReportResponse{
		PeriodID:        periodID,
		Partial:         partial,
		GeneralAverages: make([]dto.SemesterAverage, 0, len(semesters)),
		Groups:          make([]dto.GroupReport, 0, len(groups)),
		FailureRates:    make([]dto.FailureRate, 0, len(failures)),
	}

	for semester, t := range semesters {
		out.GeneralAverages = append(out.GeneralAverages, dto.SemesterAverage{
			Semester:      semester,
			AverageGrade:  t.average(),
			TotalStudents: len(t.students),
		})
	}
	sort.Slice(out.GeneralAverages, func(i, j int) bool {
		return out.GeneralAverages[i].Semester < out.GeneralAverages[j].Semester
	})

	for _, acc := range groups {
		report := *acc.report
		report.AverageGrade = acc.total.average()
		report.TotalStudents = len(acc.total.students)
		report.Subjects = make([]dto.SubjectReport, 0, len(acc.subjects))
		for courseID, t := range acc.subjects {
			report.Subjects = append(report.Subjects, dto.SubjectReport{
				CourseID:      courseID,
				CourseName:    acc.names[courseID],
				AverageGrade:  t.average(),
				TotalStudents: len(t.students),
			})
		}
		sort.Slice(report.Subjects, func(i, j int) bool {
			return report.Subjects[i].CourseID < report.Subjects[j].CourseID
		})
		out.Groups = append(out.Groups, report)
	}
	sort.Slice(out.Groups, func(i, j int) bool {
		if out.Groups[i].Semester != out.Groups[j].Semester {
			return out.Groups[i].Semester < out.Groups[j].Semester
		}
		return out.Groups[i].GroupID < out.Groups[j].GroupID
	})

	for key, fail := range failures {
		out.FailureRates = append(out.FailureRates, dto.FailureRate{
			CourseID:       key.courseID,
			CourseName:     fail.courseName,
			Semester:       key.semester,
			FailedStudents: len(fail.failed),
			TotalStudents:  len(fail.total),
		})
	}
	sort.Slice(out.FailureRates, func(i, j int) bool {
		if out.FailureRates[i].Semester != out.FailureRates[j].Semester {
			return out.FailureRates[i].Semester < out.FailureRates[j].Semester
		}
		return out.FailureRates[i].CourseID < out.FailureRates[j].CourseID
	})
	return out
}

type boletaCourseState struct {
	course   dto.BoletaCourse
	partials map[int]models.BoletaGradeRow
	final    *models.BoletaGradeRow
}

type boletaStudentState struct {
	student dto.BoletaStudent
	courses []*boletaCourseState
	byCGS   map[int64]*boletaCourseState
}

func newerRow(candidate, current models.BoletaGradeRow) bool {
	if candidate.Date == nil {
		return false
	}
	if current.Date == nil {
		return true
	}
	return candidate.Date.After(*current.Date)
}

// FoldBoletas nests grade rows as student, then course, keeping the latest
// partial grade per partial and the latest final grade. Students and courses
// keep the order of their first row.
func FoldBoletas(header models.BoletaHeaderRow, partialRows, finalRows []models.BoletaGradeRow) dto.BoletasResponse {
	var order []*boletaStudentState
	students := make(map[int64]*boletaStudentState)

	courseFor := func(row models.BoletaGradeRow) *boletaCourseState {
		st, ok := students[row.StudentID]
		if !ok {
			st = &boletaStudentState{
				student: dto.BoletaStudent{
					ID:                 row.StudentID,
					FullName:           row.FullName,
					RegistrationNumber: row.RegistrationNumber,
					Semester:           row.StudentSemester,
				},
				byCGS: make(map[int64]*boletaCourseState),
			}
			students[row.StudentID] = st
			order = append(order, st)
		}
		cs, ok := st.byCGS[row.CourseGroupStudentID]
		if !ok {
			cs = &boletaCourseState{
				course: dto.BoletaCourse{
					CourseID:             row.CourseID,
					CourseName:           row.CourseName,
					CourseGroupStudentID: row.CourseGroupStudentID,
				},
				partials: make(map[int]models.BoletaGradeRow),
			}
			st.byCGS[row.CourseGroupStudentID] = cs
			st.courses = append(st.courses, cs)
		}
		return cs
	}

	for _, row := range partialRows {
		cs := courseFor(row)
		if row.Partial == nil || row.PartialGrade == nil {
			continue
		}
		if current, ok := cs.partials[*row.Partial]; !ok || newerRow(row, current) {
			cs.partials[*row.Partial] = row
		}
	}
	for _, row := range finalRows {
		cs := courseFor(row)
		if row.FinalGrade == nil {
			continue
		}
		if cs.final == nil || newerRow(row, *cs.final) {
			picked := row
			cs.final = &picked
		}
	}

	out := dto.BoletasResponse{
		Group: dto.BoletaGroup{
			ID:       header.GroupID,
			Name:     header.GroupName,
			Semester: header.Semester,
			Period:   dto.PeriodRef{ID: header.PeriodID, Name: header.PeriodName},
		},
		Students: make([]dto.BoletaStudent, 0, len(order)),
	}
	for _, st := range order {
		student := st.student
		student.Courses = make([]dto.BoletaCourse, 0, len(st.courses))
		for _, cs := range st.courses {
			course := cs.course
			course.PartialGrades = make([]dto.BoletaPartialGrade, 0, len(cs.partials))
			for partial, row := range cs.partials {
				course.PartialGrades = append(course.PartialGrades, dto.BoletaPartialGrade{
					Partial: partial,
					Grade:   *row.PartialGrade,
					Date:    optionalDate(row),
				})
			}
			sort.Slice(course.PartialGrades, func(i, j int) bool {
				return course.PartialGrades[i].Partial < course.PartialGrades[j].Partial
			})
			if cs.final != nil {
				final := dto.BoletaFinalGrade{
					Grade:              *cs.final.FinalGrade,
					GradeOrdinary:      cs.final.GradeOrdinary,
					GradeExtraordinary: cs.final.GradeExtraordinary,
					Date:               optionalDate(*cs.final),
				}
				if cs.final.FinalType != nil {
					final.Type = *cs.final.FinalType
				}
				course.FinalGrade = &final
			}
			student.Courses = append(student.Courses, course)
		}
		out.Students = append(out.Students, student)
	}
	return out
}

func optionalDate(row models.BoletaGradeRow) string {
	if row.Date == nil {
		return ""
	}
	return formatDate(*row.Date)
}

type detailedCourseState struct {
	course      dto.DetailedCourse
	partials    map[int]models.PartialGrade
	evaluations map[int64]int
}

type detailedStudentState struct {
	student dto.DetailedStudent
	courses []*detailedCourseState
}

type detailedGroupState struct {
	group    dto.DetailedGroup
	students []*detailedStudentState
	byID     map[int64]*detailedStudentState
}

// FoldGroupsDetailed nests enrollment rows as group, student and course,
// attaching the latest partial grade per partial and every evaluation with
// the grades obtained on it. Paging applies to groups after the fold, so the
// whole listing is materialised in memory; callers bound it by period.
func FoldGroupsDetailed(enrollments []models.DetailedEnrollmentRow, partials []models.PartialGrade, evaluations []models.DetailedEvaluationRow, limit, offset int) dto.GroupsDetailedResponse {
	var groupOrder []*detailedGroupState
	groups := make(map[int64]*detailedGroupState)
	byEnrollment := make(map[int64]*detailedCourseState)

	for _, row := range enrollments {
		g, ok := groups[row.GroupID]
		if !ok {
			g = &detailedGroupState{
				group: dto.DetailedGroup{
					ID:       row.GroupID,
					Name:     row.GroupName,
					Semester: row.GroupSemester,
					Period:   dto.PeriodRef{ID: row.PeriodID, Name: row.PeriodName},
				},
				byID: make(map[int64]*detailedStudentState),
			}
			groups[row.GroupID] = g
			groupOrder = append(groupOrder, g)
		}
		st, ok := g.byID[row.StudentID]
		if !ok {
			st = &detailedStudentState{student: dto.DetailedStudent{
				ID:                 row.StudentID,
				FullName:           row.FullName,
				RegistrationNumber: row.RegistrationNumber,
			}}
			g.byID[row.StudentID] = st
			g.students = append(g.students, st)
		}
		if _, seen := byEnrollment[row.CourseGroupStudentID]; seen {
			continue
		}
		cs := &detailedCourseState{
			course: dto.DetailedCourse{
				ID:                 row.CourseID,
				Name:               row.CourseName,
				Semester:           row.GroupSemester,
				PartialEvaluations: []dto.DetailedEvaluation{},
			},
			partials:    make(map[int]models.PartialGrade),
			evaluations: make(map[int64]int),
		}
		byEnrollment[row.CourseGroupStudentID] = cs
		st.courses = append(st.courses, cs)
	}

	for _, pg := range partials {
		cs, ok := byEnrollment[pg.CourseGroupStudentID]
		if !ok {
			continue
		}
		if current, ok := cs.partials[pg.Partial]; !ok || pg.Date.After(current.Date) {
			cs.partials[pg.Partial] = pg
		}
	}

	for _, row := range evaluations {
		cs, ok := byEnrollment[row.CourseGroupStudentID]
		if !ok {
			continue
		}
		idx, ok := cs.evaluations[row.EvaluationID]
		if !ok {
			cs.course.PartialEvaluations = append(cs.course.PartialEvaluations, dto.DetailedEvaluation{
				ID:      row.EvaluationID,
				Name:    row.Name,
				Partial: row.Partial,
				Type:    row.Type,
				Slot:    row.Slot,
				Grades:  []dto.DetailedEvaluationGrade{},
			})
			idx = len(cs.course.PartialEvaluations) - 1
			cs.evaluations[row.EvaluationID] = idx
		}
		if row.GradeID != nil && row.Grade != nil {
			eval := &cs.course.PartialEvaluations[idx]
			eval.Grades = append(eval.Grades, dto.DetailedEvaluationGrade{ID: *row.GradeID, Grade: *row.Grade})
		}
	}

	total := len(groupOrder)
	start, end := pageBounds(total, limit, offset)
	out := dto.GroupsDetailedResponse{Groups: make([]dto.DetailedGroup, 0, end-start), Total: total}
	for _, g := range groupOrder[start:end] {
		group := g.group
		group.Students = make([]dto.DetailedStudent, 0, len(g.students))
		for _, st := range g.students {
			student := st.student
			student.Courses = make([]dto.DetailedCourse, 0, len(st.courses))
			for _, cs := range st.courses {
				course := cs.course
				course.PartialGrades = make([]dto.DetailedGrade, 0, len(cs.partials))
				for _, pg := range cs.partials {
					course.PartialGrades = append(course.PartialGrades, dto.DetailedGrade{
						ID:      pg.ID,
						Partial: pg.Partial,
						Grade:   pg.Grade,
						Date:    formatDate(pg.Date),
					})
				}
				sort.Slice(course.PartialGrades, func(i, j int) bool {
					return course.PartialGrades[i].Partial < course.PartialGrades[j].Partial
				})
				student.Courses = append(student.Courses, course)
			}
			group.Students = append(group.Students, student)
		}
		out.Groups = append(out.Groups, group)
	}
	return out
}

// pageBounds clamps limit/offset to [0, total]. A non-positive limit keeps
// everything from offset on.
func pageBounds(total, limit, offset int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return offset, end
}
