package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kube-rca/userauth/internal/apperr"
	"github.com/kube-rca/userauth/internal/model"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRequireRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		user   *model.AuthUser
		status int
	}{
		{"no identity", nil, http.StatusUnauthorized},
		{"wrong role", &model.AuthUser{ID: uuid.New(), Role: model.RoleUser}, http.StatusForbidden},
		{"allowed", &model.AuthUser{ID: uuid.New(), Role: model.RoleAdmin}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(ErrorHandler(zap.NewNop(), false))
			r.GET("/x", func(c *gin.Context) {
				if tt.user != nil {
					c.Set(authUserKey, tt.user)
				}
			}, RequireRoles(model.RoleAdmin, model.RoleSuperAdmin), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestErrorHandler_HidesInternalDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, expose := range []bool{false, true} {
		r := gin.New()
		r.Use(ErrorHandler(zap.NewNop(), expose))
		r.GET("/boom", func(c *gin.Context) {
			_ = c.Error(apperr.Internal(errors.New("connection refused")))
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
		if expose {
			assert.Contains(t, w.Body.String(), "connection refused")
		} else {
			assert.NotContains(t, w.Body.String(), "connection refused")
			assert.Contains(t, w.Body.String(), "Internal server error")
		}
	}
}

func TestErrorHandler_UntypedError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler(zap.NewNop(), false))
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("plain"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "plain")
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://app.example.com"}, true))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
