package httpserver_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "cadence/internal/platform/errors"
	"cadence/internal/platform/httpserver"
	"cadence/internal/platform/logging"
)

func TestStatusOf(t *testing.T) {
	t.Parallel()
	cases := map[error]int{
		apperrors.ErrInvalidInput:   http.StatusBadRequest,
		apperrors.ErrNotFound:       http.StatusNotFound,
		apperrors.ErrTimerConflict:  http.StatusConflict,
		apperrors.ErrPlanLimit:      http.StatusForbidden,
		apperrors.ErrCommitInFlight: http.StatusTooManyRequests,
		apperrors.ErrPersistence:    http.StatusBadGateway,
		fmt.Errorf("boom"):          http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, httpserver.StatusOf(fmt.Errorf("wrapped: %w", err)), err.Error())
	}
}

func TestServerRendersAppErrorsAsJSON(t *testing.T) {
	t.Parallel()
	srv := httpserver.New("127.0.0.1:0", logging.Nop())
	g := srv.Group("/v1")
	g.GET("/conflict", func(echo.Context) error {
		return fmt.Errorf("start: %w", apperrors.ErrTimerConflict)
	})
	g.GET("/bad", func(echo.Context) error {
		return httpserver.BadRequest(fmt.Errorf("days is not a number"))
	})
	g.GET("/boom", func(echo.Context) error {
		return fmt.Errorf("disk on fire")
	})

	cases := []struct {
		path    string
		status  int
		message string
	}{
		{"/v1/conflict", http.StatusConflict, "start: another review is already being timed"},
		{"/v1/bad", http.StatusBadRequest, "invalid input: days is not a number"},
		{"/v1/boom", http.StatusInternalServerError, "Internal Server Error"},
		{"/v1/missing", http.StatusNotFound, "Not Found"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
		require.Equal(t, tc.status, rec.Code, tc.path)
		body := map[string]string{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, tc.message, body["error"], tc.path)
	}
}
