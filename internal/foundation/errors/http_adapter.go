package errors

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// HTTPErrorAdapter writes classified errors as JSON for the preview server's
// status endpoints.
type HTTPErrorAdapter struct {
	logger *slog.Logger
}

// NewHTTPErrorAdapter uses slog.Default() when logger is nil.
func NewHTTPErrorAdapter(logger *slog.Logger) *HTTPErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPErrorAdapter{logger: logger}
}

// HTTPErrorResponse is the JSON body of an error reply.
type HTTPErrorResponse struct {
	Error     string         `json:"error"`
	Code      string         `json:"code,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	Retryable bool           `json:"retryable,omitempty"`
}

// StatusCodeFor maps err onto a status. Unclassified errors are 500s.
func (a *HTTPErrorAdapter) StatusCodeFor(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if ce, ok := AsClassified(err); ok {
		if p, known := profileOf(ce.Category()); known {
			return p.status
		}
	}
	return http.StatusInternalServerError
}

// WriteErrorResponse replies with the JSON payload for err and logs it at the level
// its severity implies.
func (a *HTTPErrorAdapter) WriteErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		w.WriteHeader(http.StatusOK)
		return
	}
	body, jerr := json.Marshal(a.FormatErrorResponse(err))
	if jerr != nil {
		body = []byte(`{"error":"internal error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(a.StatusCodeFor(err))
	_, _ = w.Write(body)

	level := slog.LevelError
	if ce, ok := AsClassified(err); ok {
		level = ce.level()
	}
	a.logger.Log(r.Context(), level, err.Error(), "path", r.URL.Path)
}

// FormatErrorResponse builds the payload. Context values become details.
func (a *HTTPErrorAdapter) FormatErrorResponse(err error) HTTPErrorResponse {
	if err == nil {
		return HTTPErrorResponse{}
	}
	ce, ok := AsClassified(err)
	if !ok {
		return HTTPErrorResponse{Error: err.Error()}
	}
	resp := HTTPErrorResponse{
		Error:     ce.Message(),
		Code:      string(ce.Category()),
		Retryable: ce.CanRetry(),
	}
	if len(ce.Context()) > 0 {
		resp.Details = ce.Context().Merge(nil)
	}
	return resp
}
