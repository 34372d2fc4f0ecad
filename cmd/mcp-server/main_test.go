package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/njchilds90/symalg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(t *testing.T, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tool", strings.NewReader(body))
	toolHandler(5*time.Second)(rec, req)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec, out
}

func TestToolHandler_Simplify(t *testing.T) {
	rec, out := post(t, `{"tool":"simplify","params":{"expr":"x+x"}}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2*x", out["string"])
}

func TestToolHandler_EngineError(t *testing.T) {
	rec, out := post(t, `{"tool":"diff","params":{"expr":"(-1)^x","var":"x"}}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(symalg.KindNotDifferentiable), out["kind"])
}

func TestToolHandler_BadRequest(t *testing.T) {
	rec, out := post(t, `{"tool":"parse","bogus":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, out["error"])

	rec, _ = post(t, `{"tool":"parse","params":{}} {}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestToolHandler_MethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	toolHandler(time.Second)(rec, httptest.NewRequest(http.MethodGet, "/tool", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
