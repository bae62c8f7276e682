package mid_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/ardanlabs/poichain/business/web/errs"
	"github.com/ardanlabs/poichain/business/web/mid"
	"github.com/ardanlabs/poichain/foundation/blockchain/validation"
	"github.com/ardanlabs/poichain/foundation/logger"
	"github.com/ardanlabs/poichain/foundation/web"
	"github.com/stretchr/testify/require"
)

func Test_Errors(t *testing.T) {
	log := logger.NewTest("MID-TEST")
	shutdown := make(chan os.Signal, 1)

	app := web.NewApp(shutdown, mid.Logger(log), mid.Errors(log), mid.Metrics(), mid.Panics())

	app.Handle(http.MethodGet, "v1", "/trusted", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return errs.NewTrusted(errors.New("block not accepted"), http.StatusNotAcceptable)
	})
	app.Handle(http.MethodGet, "v1", "/rejected", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return errs.NewRejected(errors.New("validation failed"), validation.FailureInsufficientBalance, http.StatusBadRequest)
	})
	app.Handle(http.MethodGet, "v1", "/untrusted", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return errors.New("disk failure")
	})
	app.Handle(http.MethodGet, "v1", "/panic", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		panic("boom")
	})
	app.Handle(http.MethodGet, "v1", "/cors", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}, mid.Cors("*"))

	tt := []struct {
		name   string
		path   string
		status int
		body   string
	}{
		{"trusted", "/v1/trusted", http.StatusNotAcceptable, `{"error":"block not accepted"}`},
		{"rejected", "/v1/rejected", http.StatusBadRequest, `{"error":"validation failed","result":"FAILURE_INSUFFICIENT_BALANCE"}`},
		{"untrusted", "/v1/untrusted", http.StatusInternalServerError, `{"error":"Internal Server Error"}`},
		{"panic", "/v1/panic", http.StatusInternalServerError, `{"error":"Internal Server Error"}`},
	}

	for _, tst := range tt {
		t.Run(tst.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tst.path, nil))

			require.Equal(t, tst.status, w.Code)
			require.JSONEq(t, tst.body, w.Body.String())
		})
	}

	t.Run("cors", func(t *testing.T) {
		w := httptest.NewRecorder()
		app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/cors", nil))

		require.Equal(t, http.StatusNoContent, w.Code)
		require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
		require.Empty(t, w.Header().Get("Vary"))
	})

	require.Empty(t, shutdown)
}
