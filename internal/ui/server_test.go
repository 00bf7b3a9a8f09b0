package ui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/leapstack-labs/difftable/internal/store"
	"github.com/leapstack-labs/difftable/internal/testutil"
	"github.com/leapstack-labs/difftable/internal/ui/features/storescreen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, fixturePath string) *Server {
	t.Helper()

	f, err := store.DefaultFixture()
	require.NoError(t, err)
	s, err := store.New(f.Items, store.WithSeed(1))
	require.NoError(t, err)

	srv, err := NewServer(Config{
		Title:         f.Title,
		Store:         s,
		SessionSecret: "test-secret",
		Logger:        testutil.NewTestLogger(t),
		FixturePath:   fixturePath,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Screen().Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return srv
}

func TestServer_Handler(t *testing.T) {
	srv := newTestServer(t, "")
	handler, err := srv.Handler()
	require.NoError(t, err)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   []string
		wantHeader map[string]string
	}{
		{
			name:       "health check",
			path:       "/healthz",
			wantStatus: http.StatusOK,
			wantBody:   []string{"OK"},
		},
		{
			name:       "store page",
			path:       "/",
			wantStatus: http.StatusOK,
			wantBody: []string{
				"<title>Store - difftable</title>",
				storescreen.RowID("header:hello"),
				storescreen.RowID("credit_card:citi"),
				"BestInsurance",
				`href="/static/store.css"`,
			},
		},
		{
			name:       "stylesheet",
			path:       "/static/store.css",
			wantStatus: http.StatusOK,
			wantBody:   []string{".row.selected"},
			wantHeader: map[string]string{"Cache-Control": "public, max-age=86400"},
		},
		{
			name:       "reload is dev only",
			path:       "/reload",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			for _, want := range tt.wantBody {
				assert.Contains(t, rec.Body.String(), want)
			}
			for k, v := range tt.wantHeader {
				assert.Equal(t, v, rec.Header().Get(k), "header %s", k)
			}
		})
	}
}

func TestServer_ReloadFixture(t *testing.T) {
	path := testutil.WriteFile(t, "store.yaml", `title: Edited
items:
  - kind: header
    id: hello
    title: Hello again
  - kind: credit_card
    id: only
    bank: Only Bank
    period: 2 years
`)

	srv := newTestServer(t, path)
	events := srv.Notifier().Subscribe()
	defer srv.Notifier().Unsubscribe(events)

	srv.reloadFixture(context.Background())

	ev := <-events
	assert.NotEmpty(t, ev.Patches)

	html, _, err := srv.Screen().RenderList(context.Background(), "")
	require.NoError(t, err)
	assert.Contains(t, html, "Hello again")
	assert.Contains(t, html, "Only Bank")
	assert.NotContains(t, html, "CitiBank")
}

func TestServer_ReloadFixtureKeepsListOnError(t *testing.T) {
	path := testutil.WriteFile(t, "broken.yaml", "items:\n  - kind: rocket\n")

	srv := newTestServer(t, path)
	srv.reloadFixture(context.Background())

	html, _, err := srv.Screen().RenderList(context.Background(), "")
	require.NoError(t, err)
	assert.Contains(t, html, "CitiBank")
}
