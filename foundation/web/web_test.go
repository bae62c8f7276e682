package web_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/ardanlabs/poichain/foundation/validate"
	"github.com/ardanlabs/poichain/foundation/web"
	"github.com/stretchr/testify/require"
)

type peerRequest struct {
	Host string `json:"host" validate:"required"`
}

func (pr *peerRequest) Validate() error {
	return validate.Check(pr)
}

func Test_App(t *testing.T) {
	shutdown := make(chan os.Signal, 1)

	var order []string
	mw := func(name string) web.Middleware {
		return func(handler web.Handler) web.Handler {
			return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
				order = append(order, name)
				return handler(ctx, w, r)
			}
		}
	}

	app := web.NewApp(shutdown, mw("app"))

	app.Handle(http.MethodGet, "v1", "/blocks/:from", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		v, err := web.GetValues(ctx)
		if err != nil {
			return err
		}
		require.NotEmpty(t, v.TraceID)

		return web.Respond(ctx, w, map[string]string{"from": web.Param(r, "from")}, http.StatusOK)
	}, mw("route"))

	app.Handle(http.MethodPost, "v1", "/peers", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var req peerRequest
		if err := web.Decode(r, &req); err != nil {
			return web.Respond(ctx, w, err.Error(), http.StatusBadRequest)
		}
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	})

	app.Handle(http.MethodGet, "", "/fail", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return web.NewShutdownError("integrity")
	})

	t.Run("respond", func(t *testing.T) {
		w := httptest.NewRecorder()
		app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/blocks/12", nil))

		require.Equal(t, http.StatusOK, w.Code)
		require.JSONEq(t, `{"from":"12"}`, w.Body.String())
		require.Equal(t, []string{"app", "route"}, order)
	})

	t.Run("decode", func(t *testing.T) {
		w := httptest.NewRecorder()
		app.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/peers", strings.NewReader(`{"host":"0.0.0.0:9080"}`)))
		require.Equal(t, http.StatusNoContent, w.Code)

		w = httptest.NewRecorder()
		app.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/peers", strings.NewReader(`{}`)))
		require.Equal(t, http.StatusBadRequest, w.Code)

		w = httptest.NewRecorder()
		app.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/peers", strings.NewReader(`{"port":1}`)))
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("shutdown", func(t *testing.T) {
		w := httptest.NewRecorder()
		app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))

		require.Len(t, shutdown, 1)
		require.True(t, web.IsShutdown(web.NewShutdownError("x")))
		require.False(t, web.IsShutdown(errors.New("x")))
	})
}
