package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-records-api/internal/middleware"
	"github.com/noah-isme/academic-records-api/internal/models"
	appErrors "github.com/noah-isme/academic-records-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrBadRequest, "Validation failed (numeric string is expected)")
	}
	return id, nil
}

// pageQuery reads limit, offset and search and applies defaults.
func pageQuery(c *gin.Context) (models.PageQuery, error) {
	var q models.PageQuery
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return q, appErrors.Clone(appErrors.ErrValidation, "limit must be a positive integer")
		}
		q.Limit = limit
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return q, appErrors.Clone(appErrors.ErrValidation, "offset must be zero or greater")
		}
		q.Offset = offset
	}
	q.Search = strings.TrimSpace(c.Query("search"))
	return q.Normalize(), nil
}

// partialQuery reads the optional partial query parameter (1-3).
func partialQuery(c *gin.Context) (*int, error) {
	raw := c.Query("partial")
	if raw == "" {
		return nil, nil
	}
	partial, err := strconv.Atoi(raw)
	if err != nil || partial < 1 || partial > 3 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "partial must be 1, 2 or 3")
	}
	return &partial, nil
}

func bindJSON(c *gin.Context, dest interface{}) error {
	if err := c.ShouldBindJSON(dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload")
	}
	return nil
}

type removedResponse struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

func removed(id int64, what string) removedResponse {
	return removedResponse{ID: id, Message: what + " removed"}
}
