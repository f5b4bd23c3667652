package hackernews

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kailas-cloud/semsearch/internal/domain"
)

func newTestServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTopItemIDs_Truncates(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/topstories.json": `[5, 4, 3, 2, 1]`,
	})
	c := NewClient(Config{BaseURL: srv.URL + "/"})

	ids, err := c.TopItemIDs(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 3 || ids[0] != 5 || ids[2] != 3 {
		t.Errorf("ids = %v, want [5 4 3]", ids)
	}
}

func TestTopItemIDs_ServerError(t *testing.T) {
	srv := newTestServer(t, nil)
	c := NewClient(Config{BaseURL: srv.URL})

	_, err := c.TopItemIDs(context.Background(), 10)
	if !errors.Is(err, domain.ErrFeedUnavailable) {
		t.Errorf("expected ErrFeedUnavailable, got %v", err)
	}
}

func TestItem(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/item/42.json": `{"id":42,"type":"story","title":"Rust 1.0 released","url":"https://a"}`,
		"/item/43.json": `{"id":43,"type":"story","title":"Ask HN: anything"}`,
		"/item/44.json": `null`,
		"/item/45.json": `{"id":45,"deleted":true}`,
		"/item/46.json": `{not json`,
	})
	c := NewClient(Config{BaseURL: srv.URL})
	ctx := context.Background()

	it, err := c.Item(ctx, 42)
	if err != nil {
		t.Fatalf("item 42: %v", err)
	}
	if it.Title != "Rust 1.0 released" || it.URL != "https://a" || !it.HasLink() {
		t.Errorf("item 42 = %+v", it)
	}

	it, err = c.Item(ctx, 43)
	if err != nil {
		t.Fatalf("item 43: %v", err)
	}
	if it.HasLink() {
		t.Errorf("item 43 should have no link: %+v", it)
	}

	for _, id := range []int64{44, 45} {
		if _, err := c.Item(ctx, id); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("item %d: expected ErrNotFound, got %v", id, err)
		}
	}

	if _, err := c.Item(ctx, 46); err == nil {
		t.Error("item 46: expected decode error")
	}
}

func TestItem_ContextCanceled(t *testing.T) {
	srv := newTestServer(t, map[string]string{"/item/1.json": `{"id":1}`})
	c := NewClient(Config{BaseURL: srv.URL})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Item(ctx, 1); err == nil {
		t.Error("expected error for canceled context")
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{})
	if c.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q", c.baseURL)
	}
	if c.http.Timeout == 0 {
		t.Error("expected default timeout")
	}
}
