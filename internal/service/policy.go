package service

import (
	"context"
	"fmt"

	"github.com/noah-isme/academic-records-api/pkg/config"
	appErrors "github.com/noah-isme/academic-records-api/pkg/errors"
)

// EnforcementPolicy toggles the write-path invariants. Each duplicate flag
// enables a pre-insert uniqueness check; PeriodGate enables the partial window
// check. The Legacy flags reproduce historic behaviour for compatibility.
type EnforcementPolicy struct {
	DuplicateAssignment      bool
	DuplicateEnrollment      bool
	DuplicatePartialGrade    bool
	DuplicateFinalGrade      bool
	DuplicateEvaluationGrade bool
	DuplicateAttendance      bool
	PeriodGate               bool
	LegacyEvaluationRemove   bool
	LegacyReportError        bool
}

// DefaultPolicy enables every invariant and no legacy behaviour.
func DefaultPolicy() EnforcementPolicy {
	return EnforcementPolicy{
		DuplicateAssignment:      true,
		DuplicateEnrollment:      true,
		DuplicatePartialGrade:    true,
		DuplicateFinalGrade:      true,
		DuplicateEvaluationGrade: true,
		DuplicateAttendance:      true,
		PeriodGate:               true,
	}
}

// PolicyFromConfig maps the policy section of the configuration.
func PolicyFromConfig(cfg config.PolicyConfig) EnforcementPolicy {
	return EnforcementPolicy{
		DuplicateAssignment:      cfg.DuplicateAssignment,
		DuplicateEnrollment:      cfg.DuplicateEnrollment,
		DuplicatePartialGrade:    cfg.DuplicatePartialGrade,
		DuplicateFinalGrade:      cfg.DuplicateFinalGrade,
		DuplicateEvaluationGrade: cfg.DuplicateEvaluationGrade,
		DuplicateAttendance:      cfg.DuplicateAttendance,
		PeriodGate:               cfg.PeriodGate,
		LegacyEvaluationRemove:   cfg.LegacyEvaluationRemove,
		LegacyReportError:        cfg.LegacyReportError,
	}
}

// ensurePartialOpen rejects partial-scoped writes on a closed partial of the
// course group's period.
func ensurePartialOpen(ctx context.Context, lookup RecordLookup, policy EnforcementPolicy, courseGroupID int64, partial int) error {
	if !policy.PeriodGate {
		return nil
	}
	period, err := lookup.PeriodOfCourseGroup(ctx, courseGroupID)
	if err != nil {
		return err
	}
	if !period.PartialOpen(partial) {
		return appErrors.Clone(appErrors.ErrUnauthorized, fmt.Sprintf("the partial %d is closed", partial))
	}
	return nil
}
