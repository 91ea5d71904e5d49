package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ThiagoRGoveia/plan-fact/internal/database/dbmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger(t *testing.T) {
	t.Run("should set a request id header", func(t *testing.T) {
		handler := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusTeapot, rr.Code)
		_, err := uuid.Parse(rr.Header().Get(requestIDHeader))
		require.NoError(t, err)
	})
}

func TestPanicHandler(t *testing.T) {
	t.Run("should turn a panic into a json 500", func(t *testing.T) {
		handler := PanicHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Contains(t, rr.Body.String(), `"error"`)
	})
}

func TestSetupRoutes(t *testing.T) {
	router := newTestRouter(new(dbmock.MockDBManager))

	t.Run("should answer unknown paths with json", func(t *testing.T) {
		rr := doRequest(router, http.MethodGet, "/tickers/PETR4", "")

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "not found", decodeError(t, rr))
	})

	t.Run("should reject the wrong method", func(t *testing.T) {
		rr := doRequest(router, http.MethodGet, "/files", "")

		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	})

	t.Run("should answer cors preflight requests", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/values", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	})
}
