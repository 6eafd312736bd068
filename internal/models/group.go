package models

// Group is a cohort of students in a semester, bound to a period.
type Group struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Semester  int    `db:"semester" json:"semester"`
	PeriodID  int64  `db:"period_id" json:"periodId"`
	IsDeleted bool   `db:"is_deleted" json:"-"`
}

// GroupDetail joins the group with its period.
type GroupDetail struct {
	Group
	PeriodName   string              `db:"period_name" json:"-"`
	Period       *PeriodRef          `db:"-" json:"period,omitempty"`
	CourseGroups []CourseGroupDetail `db:"-" json:"coursesGroups,omitempty"`
}

// Hydrate fills nested references from flat columns.
func (g *GroupDetail) Hydrate() {
	g.Period = &PeriodRef{ID: g.PeriodID, Name: g.PeriodName}
}
