package models

// Course is a subject offered across groups.
type Course struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	IsDeleted bool   `db:"is_deleted" json:"-"`
}

// CourseDetail bundles a course with its live course groups.
type CourseDetail struct {
	Course
	CourseGroups []CourseGroupDetail `json:"coursesGroups"`
}

// DefaultSchedule is applied when a course group is created without one.
const DefaultSchedule = "Por Defecto"

// CourseGroup binds a course, a group and a teacher.
type CourseGroup struct {
	ID        int64  `db:"id" json:"id"`
	CourseID  int64  `db:"course_id" json:"courseId"`
	GroupID   int64  `db:"group_id" json:"groupId"`
	UserID    int64  `db:"user_id" json:"userId"`
	Schedule  string `db:"schedule" json:"schedule"`
	IsDeleted bool   `db:"is_deleted" json:"-"`
}

// CourseGroupDetail is the course group joined with its course, group,
// period and teacher.
type CourseGroupDetail struct {
	CourseGroup
	CourseName    string `db:"course_name" json:"courseName"`
	GroupName     string `db:"group_name" json:"groupName"`
	GroupSemester int    `db:"group_semester" json:"groupSemester"`
	PeriodID      int64  `db:"period_id" json:"periodId"`
	PeriodName    string `db:"period_name" json:"periodName"`
	UserFullName  string `db:"user_full_name" json:"userFullName"`
}

// CourseGroupStudent is the enrollment of a student in a course group.
type CourseGroupStudent struct {
	ID            int64 `db:"id" json:"id"`
	CourseGroupID int64 `db:"course_group_id" json:"courseGroupId"`
	StudentID     int64 `db:"student_id" json:"studentId"`
	IsDeleted     bool  `db:"is_deleted" json:"-"`
}

// CourseGroupStudentDetail carries the enrollment with its course group and
// student. The owning teacher id travels along for ownership checks.
type CourseGroupStudentDetail struct {
	CourseGroupStudent
	CourseGroup CourseGroupDetail `db:"cg" json:"courseGroup"`
	Student     Student           `db:"s" json:"student"`
}
