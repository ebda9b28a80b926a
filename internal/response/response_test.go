package response

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorBodies(t *testing.T) {
	cases := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
		body   string
	}{
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "nope") }, http.StatusBadRequest, `{"error":"nope"}`},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "gone") }, http.StatusNotFound, `{"error":"gone"}`},
		{"method", func(w http.ResponseWriter) { MethodNotAllowed(w, nil) }, http.StatusMethodNotAllowed, `{"error":"Method not allowed"}`},
		{"too large", func(w http.ResponseWriter) { TooLarge(w, "big") }, http.StatusRequestEntityTooLarge, `{"error":"big"}`},
		{"internal with message", func(w http.ResponseWriter) { InternalError(w, "disk full") }, http.StatusInternalServerError, `{"error":"disk full"}`},
		{"internal fallback", func(w http.ResponseWriter) { InternalError(w, "") }, http.StatusInternalServerError, `{"error":"Processing failed"}`},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c.write(rec)
			assert.Equal(t, c.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, c.body, rec.Body.String())
		})
	}
}

func TestText(t *testing.T) {
	rec := httptest.NewRecorder()
	Text(rec, http.StatusNotFound, "File not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "File not found", rec.Body.String())
}
