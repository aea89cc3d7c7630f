package gitmeta

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLatestCommit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/AvelDev/EasyFood/commits" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("per_page") != "1" {
			t.Errorf("expected per_page=1, got %q", r.URL.Query().Get("per_page"))
		}
		if got := r.Header.Get("Accept"); got != "application/vnd.github+json" {
			t.Errorf("unexpected Accept header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{
				"sha": "abc123",
				"commit": {
					"message": "Fix footer layout",
					"author": {"date": "2025-06-01T10:30:00Z"}
				},
				"html_url": "https://github.com/AvelDev/EasyFood/commit/abc123"
			}
		]`))
	}))
	defer srv.Close()

	c := NewClient("AvelDev/EasyFood", WithBaseURL(srv.URL))

	got, err := c.LatestCommit(context.Background())
	if err != nil {
		t.Fatalf("latest commit: %v", err)
	}
	if got.SHA != "abc123" {
		t.Errorf("sha = %q", got.SHA)
	}
	if got.Message != "Fix footer layout" {
		t.Errorf("message = %q", got.Message)
	}
	if want := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC); !got.Date.Equal(want) {
		t.Errorf("date = %v, want %v", got.Date, want)
	}
	if got.HTMLURL != "https://github.com/AvelDev/EasyFood/commit/abc123" {
		t.Errorf("html url = %q", got.HTMLURL)
	}
}

func TestLatestCommitNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient("AvelDev/EasyFood", WithBaseURL(srv.URL))

	if _, err := c.LatestCommit(context.Background()); err == nil {
		t.Fatalf("expected error for non-200 response")
	}
}

func TestLatestCommitEmptyRepository(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient("AvelDev/EasyFood", WithBaseURL(srv.URL))

	if _, err := c.LatestCommit(context.Background()); err == nil {
		t.Fatalf("expected error for a repository with no commits")
	}
}

func TestLatestCommitContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewClient("AvelDev/EasyFood", WithBaseURL(srv.URL))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := c.LatestCommit(ctx); err == nil {
		t.Fatalf("expected error when the context expires")
	}
}
