package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/academic-records-api/pkg/errors"
)

func TestCacheRepositoryWithoutClientIsInert(t *testing.T) {
	repo := NewCacheRepository(nil, "academic-records", nil)
	ctx := context.Background()

	var dest map[string]int
	assert.ErrorIs(t, repo.Get(ctx, "reports:period:1", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "reports:period:1", map[string]int{"partial": 1}, time.Minute))
	assert.NoError(t, repo.Delete(ctx, "reports:period:1"))
	assert.NoError(t, repo.DeleteByPattern(ctx, "reports:*"))
	assert.NoError(t, repo.Close())
}

func TestCacheRepositoryNamespacesKeys(t *testing.T) {
	assert.Equal(t, "academic-records:reports:period:1", NewCacheRepository(nil, "academic-records", nil).key("reports:period:1"))
	assert.Equal(t, "reports:period:1", NewCacheRepository(nil, "", nil).key("reports:period:1"))
}
