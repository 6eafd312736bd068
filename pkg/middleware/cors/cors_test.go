package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func router(origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(New(origins))
	r.GET("/api/v1/periods", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func do(r *gin.Engine, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/v1/periods", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORSAllowsListedOrigin(t *testing.T) {
	r := router([]string{"https://escolar.example.edu/"})

	w := do(r, http.MethodGet, "https://escolar.example.edu")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://escolar.example.edu", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")

	pre := do(r, http.MethodOptions, "https://escolar.example.edu")
	assert.Equal(t, http.StatusNoContent, pre.Code)
	assert.Contains(t, pre.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	r := router([]string{"https://escolar.example.edu"})

	w := do(r, http.MethodGet, "https://evil.example.com")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	pre := do(r, http.MethodOptions, "https://evil.example.com")
	assert.Equal(t, http.StatusForbidden, pre.Code)
}

func TestCORSWildcard(t *testing.T) {
	w := do(router(nil), http.MethodGet, "http://localhost:5173")
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	plain := do(router(nil), http.MethodGet, "")
	assert.Empty(t, plain.Header().Get("Access-Control-Allow-Origin"))
}
