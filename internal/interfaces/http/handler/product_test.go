package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogapp "github.com/lotline/backend/internal/application/catalog"
	"github.com/lotline/backend/internal/interfaces/http/dto"
)

func newProductTestServer() *gin.Engine {
	svc := catalogapp.NewProductService(newMemCatalog(), nil)
	return newTestEngine(NewProductHandler(svc))
}

func TestProductHandler_CreateAndGet(t *testing.T) {
	engine := newProductTestServer()

	w := postJSON(engine, "/api/v1/products", `{
		"name": "Rice",
		"unit": "kg",
		"brands": [
			{"name": "Golden", "packet_size": "25"},
			{"name": "Silver", "packet_size": "50"}
		]
	}`)

	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/products/Rice", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "Rice", data["name"])

	brands := data["brands"].([]interface{})
	require.Len(t, brands, 2)
	first := brands[0].(map[string]interface{})
	assert.Equal(t, "Golden", first["name"])
	assert.Equal(t, 25.0, first["packet_size"])
}

func TestProductHandler_Create_Duplicate(t *testing.T) {
	engine := newProductTestServer()

	w := postJSON(engine, "/api/v1/products", `{"name": "Rice"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(engine, "/api/v1/products", `{"name": "Rice"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrCodeAlreadyExists, resp.Error.Code)
}

func TestProductHandler_Get_NotFound(t *testing.T) {
	engine := newProductTestServer()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/products/Missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductHandler_Delete(t *testing.T) {
	engine := newProductTestServer()

	w := postJSON(engine, "/api/v1/products", `{"name": "Sugar"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/products/Sugar", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/products/Sugar", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
