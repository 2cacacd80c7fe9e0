package errors

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusCodes(t *testing.T) {
	adapter := NewHTTPErrorAdapter(nil)
	for err, want := range map[error]int{
		ConfigError("bad").Build():             http.StatusBadRequest,
		NavError("dangling").Build():           http.StatusUnprocessableEntity,
		MacrosError("undefined").Build():       http.StatusUnprocessableEntity,
		NetworkError("down").Build():           http.StatusBadGateway,
		VersioningError("alias clash").Build(): http.StatusConflict,
		NewError("custom", "unknown").Build():  http.StatusInternalServerError,
		errors.New("boom"):                     http.StatusInternalServerError,
	} {
		assert.Equal(t, want, adapter.StatusCodeFor(err), err.Error())
	}
	assert.Equal(t, http.StatusOK, adapter.StatusCodeFor(nil))
}

func TestWriteErrorResponse(t *testing.T) {
	adapter := NewHTTPErrorAdapter(slog.New(slog.DiscardHandler))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/_docsite/status", nil)

	adapter.WriteErrorResponse(rec, req, NavError("missing page").WithContext("path", "a.md").Build())

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var payload HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "nav", payload.Code)
	assert.Equal(t, "missing page", payload.Error)
	assert.Equal(t, "a.md", payload.Details["path"])
	assert.False(t, payload.Retryable)

	resp := adapter.FormatErrorResponse(PublishError("push rejected").Build())
	assert.True(t, resp.Retryable)
	assert.Empty(t, resp.Details)
}
