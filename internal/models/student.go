package models

// Student represents a learner identified by registration number.
type Student struct {
	ID                 int64  `db:"id" json:"id"`
	FullName           string `db:"full_name" json:"fullName"`
	Semester           int    `db:"semester" json:"semester"`
	RegistrationNumber string `db:"registration_number" json:"registrationNumber"`
	IsDeleted          bool   `db:"is_deleted" json:"-"`
}

// StudentFilter captures listing criteria.
type StudentFilter struct {
	TeacherID *int64
	Search    string
	Limit     int
	Offset    int
}
