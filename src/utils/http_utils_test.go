package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSONWithETag(t *testing.T) {
	data := map[string]int{"count": 2}

	w := httptest.NewRecorder()
	WriteJSONWithETag(w, httptest.NewRequest(http.MethodGet, "/", nil), data)
	require.Equal(t, http.StatusOK, w.Code)
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)
	assert.JSONEq(t, `{"count":2}`, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("If-None-Match", `"stale", `+etag)
	w = httptest.NewRecorder()
	WriteJSONWithETag(w, req, data)
	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, etag, w.Header().Get("ETag"))
}

func TestSendJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	SendJSONError(w, "bad things", http.StatusBadRequest)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"bad things"}`, w.Body.String())
}
