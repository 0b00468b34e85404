package internal_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pathway/internal"
	"github.com/dmitrymomot/pathway/pkg/logger"
)

// MockDispatcher is a mock implementation of Dispatcher.
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(w http.ResponseWriter, r *http.Request, res internal.Resolution) error {
	args := m.Called(w, r, res)
	return args.Error(0)
}

func handlerMatcher(t *testing.T) *internal.Matcher {
	t.Helper()
	r := internal.NewRouter(internal.WithRootDomain("example.com"))
	r.Get("posts/:id", internal.Controller("posts/show/:id")).Pattern("id", `\d+`).As("posts.show")
	r.Post("posts", internal.Controller("posts/create"))
	r.Get("old/:id", internal.Redirect("/posts/:id"))
	r.Domain("api", func(api *internal.Router) {
		api.Get("posts/:id", internal.Callback("api.posts"))
	})
	return r.MustBuild()
}

func TestHandler_Dispatches(t *testing.T) {
	t.Parallel()

	d := new(MockDispatcher)
	d.On("Dispatch", mock.Anything, mock.MatchedBy(func(r *http.Request) bool {
		res, ok := internal.MatchFromContext(r.Context())
		return ok && res.Rule.Name() == "posts.show"
	}), internal.Resolution{
		Kind:   internal.KindController,
		Action: "posts/show/7",
		Params: map[string]string{"id": "7"},
	}).Return(nil).Run(func(args mock.Arguments) {
		args.Get(0).(http.ResponseWriter).WriteHeader(http.StatusNoContent)
	})

	h := internal.NewHandler(handlerMatcher(t), d)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://example.com/posts/7", nil))

	require.Equal(t, http.StatusNoContent, rec.Code)
	d.AssertExpectations(t)
}

func TestHandler_DomainScope(t *testing.T) {
	t.Parallel()

	d := new(MockDispatcher)
	d.On("Dispatch", mock.Anything, mock.Anything, mock.MatchedBy(func(res internal.Resolution) bool {
		return res.Kind == internal.KindCallback && res.Action == "api.posts"
	})).Return(nil)

	h := internal.NewHandler(handlerMatcher(t), d)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://api.example.com:8080/posts/1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	d.AssertExpectations(t)
}

func TestHandler_Misses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		method    string
		target    string
		wantCode  int
		wantAllow string
	}{
		{name: "unknown path", method: http.MethodGet, target: "/nope", wantCode: http.StatusNotFound},
		{name: "constraint miss", method: http.MethodGet, target: "/posts/abc", wantCode: http.StatusNotFound},
		{name: "method mismatch", method: http.MethodDelete, target: "/posts/1", wantCode: http.StatusMethodNotAllowed, wantAllow: "GET"},
		{name: "method mismatch on collection", method: http.MethodGet, target: "/posts", wantCode: http.StatusMethodNotAllowed, wantAllow: "POST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := new(MockDispatcher)
			h := internal.NewHandler(handlerMatcher(t), d)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, "http://example.com"+tt.target, nil))

			require.Equal(t, tt.wantCode, rec.Code)
			require.Equal(t, tt.wantAllow, rec.Header().Get("Allow"))
			d.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestHandler_DispatchError(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	log := logger.New(logger.WithOutput(&logs), logger.WithExtractors(internal.RouteExtractor()))

	d := new(MockDispatcher)
	d.On("Dispatch", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("controller exploded"))

	var handled error
	h := internal.NewHandler(handlerMatcher(t), d,
		internal.WithHandlerLogger(log),
		internal.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			handled = err
			internal.DefaultErrorHandler(w, r, err)
		}),
	)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://example.com/posts/3", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.EqualError(t, handled, "controller exploded")

	var record map[string]any
	require.NoError(t, json.Unmarshal(logs.Bytes(), &record))
	require.Equal(t, "dispatch failed", record["msg"])
	require.Equal(t, "posts/:id", record["route"])
	require.Equal(t, "posts.show", record["route_name"])
	require.Equal(t, "posts/show/3", record["action"])
}

func TestHandler_LogsMisses(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	log := logger.New(logger.WithOutput(&logs), logger.WithLevel(slog.LevelDebug))

	h := internal.NewHandler(handlerMatcher(t), new(MockDispatcher), internal.WithHandlerLogger(log))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "http://example.com/nope", nil))

	require.Contains(t, logs.String(), `"msg":"route miss"`)
	require.Contains(t, logs.String(), `"path":"nope"`)
}

func TestKindDispatcher(t *testing.T) {
	t.Parallel()

	var calledWith internal.Resolution
	d := internal.KindDispatcher{
		internal.KindController: internal.DispatcherFunc(func(w http.ResponseWriter, _ *http.Request, res internal.Resolution) error {
			calledWith = res
			_, err := w.Write([]byte(res.Action))
			return err
		}),
		internal.KindRedirect: internal.RedirectDispatcher(http.StatusMovedPermanently),
	}
	h := internal.NewHandler(handlerMatcher(t), d)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://example.com/posts/12", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "posts/show/12", rec.Body.String())
	require.Equal(t, map[string]string{"id": "12"}, calledWith.Params)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://example.com/old/12", nil))
	require.Equal(t, http.StatusMovedPermanently, rec.Code)
	require.Equal(t, "/posts/12", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://api.example.com/posts/12", nil))
	require.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestNewHandler_Nil(t *testing.T) {
	t.Parallel()

	require.PanicsWithValue(t, internal.ErrNilDispatcher, func() {
		internal.NewHandler(handlerMatcher(t), nil)
	})
}

func TestMatchFromContext_Empty(t *testing.T) {
	t.Parallel()

	_, ok := internal.MatchFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	require.False(t, ok)
	require.Nil(t, internal.RouteExtractor()(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}
