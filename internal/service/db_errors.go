package service

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records-api/internal/models"
	appErrors "github.com/noah-isme/academic-records-api/pkg/errors"
)

const pqUniqueViolation = "23505"

// translateDBError maps driver failures onto the API error taxonomy. Unique
// violations become BadRequest carrying the driver detail; anything else is
// logged and surfaces as Internal.
func translateDBError(logger *zap.Logger, op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
		msg := pqErr.Detail
		if msg == "" {
			msg = pqErr.Message
		}
		return appErrors.Wrap(err, appErrors.ErrBadRequest.Code, appErrors.ErrBadRequest.Status, msg)
	}
	if logger != nil {
		logger.Error("database operation failed", zap.String("operation", op), zap.Error(err))
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Please check server logs")
}

// notFoundOr turns sql.ErrNoRows into NotFound and translates everything else.
func notFoundOr(logger *zap.Logger, op string, err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, message)
	}
	return translateDBError(logger, op, err)
}

func isNotFound(err error) bool {
	var appErr *appErrors.Error
	return errors.As(err, &appErr) && appErr.Code == appErrors.ErrNotFound.Code
}

func invalidPayload(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

func duplicate(message string) error {
	return appErrors.Clone(appErrors.ErrBadRequest, message)
}

func pageOf(q models.PageQuery, total int) *models.Pagination {
	return &models.Pagination{Limit: q.Limit, Offset: q.Offset, TotalCount: total}
}
