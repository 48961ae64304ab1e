package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dtroode/pactpal-server/internal/testutil"
)

func TestLogging_Handle(t *testing.T) {
	tests := []struct {
		name   string
		status int
		write  bool
	}{
		{name: "explicit status", status: http.StatusTeapot, write: true},
		{name: "server error", status: http.StatusInternalServerError, write: true},
		{name: "implicit ok", status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if tt.write {
					w.WriteHeader(tt.status)
				}
				_, _ = w.Write([]byte("ok"))
			})

			rec := httptest.NewRecorder()
			NewLogging(testutil.MakeNoopLogger()).Handle(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "ok", rec.Body.String())
		})
	}
}
