package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvios/backend/internal/app/models/dto"
	"github.com/edvios/backend/internal/pkg/apperrors"
)

func TestHandleAPIError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    dto.ErrorCode
		wantMessage string
	}{
		{"not found with message", apperrors.NewResourceNotFoundError("agent not found"), http.StatusNotFound, dto.ErrorCodeResourceNotFound, "agent not found"},
		{"wrapped conflict", fmt.Errorf("assign: %w", apperrors.NewConflictError("selected agent already exists")), http.StatusConflict, dto.ErrorCodeConflict, "selected agent already exists"},
		{"forbidden", apperrors.NewForbiddenError("not your student"), http.StatusForbidden, dto.ErrorCodeForbidden, "not your student"},
		{"bad request sentinel", apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Bad request"},
		{"upstream failure", apperrors.NewExternalServiceError("identity provider unavailable", errors.New("dial tcp")), http.StatusBadGateway, dto.ErrorCodeExternalServiceError, "identity provider unavailable"},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/err", func(c *gin.Context) { HandleAPIError(c, tt.err) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/err", nil))

			require.Equal(t, tt.wantStatus, w.Code)
			resp := decodeError(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantMessage, resp.Error.Message)
		})
	}
}
