package httpgin

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okarpov/cinehall/internal/repository"
	"github.com/okarpov/cinehall/internal/service/booking"
	"github.com/okarpov/cinehall/internal/service/scheduling"
	"github.com/okarpov/cinehall/internal/service/seating"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestPersonIDFromHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		wantID int64
		wantOK bool
		status int
	}{
		{"valid id", "42", 42, true, http.StatusOK},
		{"missing header", "", 0, false, http.StatusUnauthorized},
		{"not a number", "abc", 0, false, http.StatusUnauthorized},
		{"zero is rejected", "0", 0, false, http.StatusUnauthorized},
		{"negative is rejected", "-5", 0, false, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/tickets", nil)
			if tt.header != "" {
				c.Request.Header.Set("X-Person-ID", tt.header)
			}

			id, ok := personIDFromHeader(c)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
			if !tt.wantOK {
				assert.Equal(t, tt.status, w.Code)
			}
		})
	}
}

func TestRespondErrStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid range", scheduling.ErrInvalidRange, http.StatusBadRequest},
		{"invalid start", scheduling.ErrInvalidStart, http.StatusBadRequest},
		{"session not found", scheduling.ErrSessionNotFound, http.StatusNotFound},
		{"ticketed seats block removal", scheduling.ErrHasTicketedSeats, http.StatusConflict},
		{"duplicate seat", seating.ErrDuplicateSeat, http.StatusBadRequest},
		{"ticketed seat block removal", seating.ErrSeatHasTicket, http.StatusConflict},
		{"layout generation collision", seating.ErrGenerateFailed, http.StatusBadRequest},
		{"wrapped generation failure keeps the cause mapping", fmt.Errorf("service.seating.GenerateDefault: %w: %w", seating.ErrGenerateFailed, repository.ErrConflict), http.StatusBadRequest},
		{"already booked", booking.ErrAlreadyBooked, http.StatusBadRequest},
		{"mixed sessions", booking.ErrMixedSessions, http.StatusBadRequest},
		{"session ended", booking.ErrSessionEnded, http.StatusBadRequest},
		{"no access", booking.ErrForbidden, http.StatusForbidden},
		{"ticket not found", booking.ErrTicketNotFound, http.StatusNotFound},
		{"unknown error", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondErr(c, tt.err)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestWriteJSONWithCache(t *testing.T) {
	payload := map[string]string{"title": "Dune"}

	t.Run("sets etag and cache-control", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/movies/1", nil)

		writeJSONWithCache(c, http.StatusOK, payload, "public, max-age=60", true)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "public, max-age=60", w.Header().Get("Cache-Control"))
		require.NotEmpty(t, w.Header().Get("ETag"))
		assert.Contains(t, w.Body.String(), "Dune")
	})

	t.Run("matching if-none-match yields 304", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/movies/1", nil)
		writeJSONWithCache(c, http.StatusOK, payload, "", true)
		etag := w.Header().Get("ETag")
		require.NotEmpty(t, etag)

		w2 := httptest.NewRecorder()
		c2, _ := gin.CreateTestContext(w2)
		c2.Request = httptest.NewRequest(http.MethodGet, "/movies/1", nil)
		c2.Request.Header.Set("If-None-Match", etag)
		writeJSONWithCache(c2, http.StatusOK, payload, "", true)

		assert.Equal(t, http.StatusNotModified, w2.Code)
		assert.Empty(t, w2.Body.String())
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("generates an id when absent", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		r.ServeHTTP(w, req)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("echoes the provided id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Request-ID", "req-123")
		r.ServeHTTP(w, req)
		assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
	})
}
