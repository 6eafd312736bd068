package models

import "time"

// Period is an academic term with three independently gated partial windows.
type Period struct {
	ID                  int64     `db:"id" json:"id"`
	Name                string    `db:"name" json:"name"`
	StartDate           time.Time `db:"start_date" json:"startDate"`
	EndDate             time.Time `db:"end_date" json:"endDate"`
	FirstPartialActive  bool      `db:"first_partial_active" json:"firstPartialActive"`
	SecondPartialActive bool      `db:"second_partial_active" json:"secondPartialActive"`
	ThirdPartialActive  bool      `db:"third_partial_active" json:"thirdPartialActive"`
	IsActive            bool      `db:"is_active" json:"isActive"`
	IsDeleted           bool      `db:"is_deleted" json:"-"`
}

// PartialOpen reports whether grade entry is open for the given partial.
func (p *Period) PartialOpen(partial int) bool {
	switch partial {
	case 1:
		return p.FirstPartialActive
	case 2:
		return p.SecondPartialActive
	case 3:
		return p.ThirdPartialActive
	default:
		return false
	}
}

// ActivePartial returns the single open partial. ok is false when zero or
// more than one gate is open.
func (p *Period) ActivePartial() (partial int, ok bool) {
	count := 0
	for _, candidate := range []int{1, 2, 3} {
		if p.PartialOpen(candidate) {
			partial = candidate
			count++
		}
	}
	if count != 1 {
		return 0, false
	}
	return partial, true
}

// PeriodRef is the compact period projection nested in other payloads.
type PeriodRef struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
