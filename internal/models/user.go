package models

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdministrador UserRole = "administrador"
	RoleMaestro       UserRole = "maestro"
	RoleDirector      UserRole = "director"
)

// Valid reports whether the role is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdministrador, RoleMaestro, RoleDirector:
		return true
	default:
		return false
	}
}

// User represents an application user stored in the users table.
type User struct {
	ID        int64    `db:"id" json:"id"`
	FullName  string   `db:"full_name" json:"fullName"`
	Email     string   `db:"email" json:"email"`
	Password  string   `db:"password" json:"-"`
	Role      UserRole `db:"role" json:"role"`
	IsDeleted bool     `db:"is_deleted" json:"-"`
}

// UserWithCourseGroups is the listing projection carrying live assignments.
type UserWithCourseGroups struct {
	User
	CourseGroups []CourseGroupDetail `json:"coursesGroups"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Limit      int `json:"limit"`
	Offset     int `json:"offset"`
	TotalCount int `json:"total_count"`
}

// PageQuery carries limit/offset/search query parameters.
type PageQuery struct {
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
	Search string `form:"search"`
}

// DefaultPageLimit is used when the caller omits a limit.
const DefaultPageLimit = 10

// Normalize applies defaults and bounds.
func (q PageQuery) Normalize() PageQuery {
	if q.Limit <= 0 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}
