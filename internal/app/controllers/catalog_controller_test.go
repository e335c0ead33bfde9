package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvios/backend/internal/app/models/dto"
	"github.com/edvios/backend/internal/app/repositories/inmem"
	"github.com/edvios/backend/internal/app/services"
)

func newCatalogRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repos, _ := inmem.New()
	controller := NewCatalogController(services.NewCatalogService(repos, zerolog.Nop()))

	router := gin.New()
	router.POST("/intakes", controller.CreateIntake)
	router.GET("/intakes", controller.GetIntakes)
	router.DELETE("/intakes/:id", controller.DeleteIntake)
	return router
}

func serve(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCatalogController_Intakes(t *testing.T) {
	router := newCatalogRouter(t)

	w := serve(router, http.MethodPost, "/intakes", `{"name":"September"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Success bool `json:"success"`
		Data    struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.Success)
	assert.Equal(t, "September", created.Data.Name)
	require.NotEmpty(t, created.Data.ID)

	t.Run("duplicate name ignores case", func(t *testing.T) {
		w := serve(router, http.MethodPost, "/intakes", `{"name":"september"}`)
		require.Equal(t, http.StatusConflict, w.Code)

		var resp dto.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrorCodeConflict, resp.Error.Code)
	})

	t.Run("missing name", func(t *testing.T) {
		w := serve(router, http.MethodPost, "/intakes", `{}`)
		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrorCodeValidationFailed, resp.Error.Code)
	})

	t.Run("list", func(t *testing.T) {
		w := serve(router, http.MethodGet, "/intakes", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data []map[string]any `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Data, 1)
	})

	t.Run("delete unknown", func(t *testing.T) {
		w := serve(router, http.MethodDelete, "/intakes/does-not-exist", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		w := serve(router, http.MethodDelete, "/intakes/"+created.Data.ID, "")
		require.Equal(t, http.StatusOK, w.Code)

		w = serve(router, http.MethodGet, "/intakes", "")
		var resp struct {
			Data []map[string]any `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Empty(t, resp.Data)
	})
}
