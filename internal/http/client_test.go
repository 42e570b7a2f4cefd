package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	}))
	defer server.Close()

	client, err := NewClient(DefaultOptions())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	resp, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(body) != "hello" {
		t.Errorf("body mismatch: got %q", body)
	}
}

func TestGetUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	client, err := NewClient(Options{UserAgent: "lfstage/test"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	resp, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()

	if gotUA != "lfstage/test" {
		t.Errorf("user agent: got %q, want %q", gotUA, "lfstage/test")
	}
}

func TestGetStatusErrors(t *testing.T) {
	codes := map[int]error{
		http.StatusNotFound:     ErrNotFound,
		http.StatusForbidden:    ErrForbidden,
		http.StatusUnauthorized: ErrUnauthorized,
	}

	for code, want := range codes {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))

		client, err := NewClient(DefaultOptions())
		if err != nil {
			t.Fatalf("NewClient: %v", err)
		}

		_, err = client.Get(context.Background(), server.URL)
		if !errors.Is(err, want) {
			t.Errorf("status %d: got %v, want %v", code, err, want)
		}
		server.Close()
	}
}

func TestGetServerErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewClient(DefaultOptions())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = client.Get(context.Background(), server.URL)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusBadGateway {
		t.Errorf("code: got %d, want %d", statusErr.Code, http.StatusBadGateway)
	}
}

func TestGetFollowsRedirects(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("final"))
	}))
	defer target.Close()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL, http.StatusFound)
	}))
	defer server.Close()

	client, err := NewClient(DefaultOptions())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	resp, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if string(body) != "final" {
		t.Errorf("body mismatch: got %q", body)
	}
}

func TestGetRedirectLimit(t *testing.T) {
	// Redirects to itself forever.
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL, http.StatusFound)
	}))
	defer server.Close()

	client, err := NewClient(Options{RedirectLimit: 3})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = client.Get(context.Background(), server.URL)
	if !errors.Is(err, ErrTooManyRedirects) {
		t.Errorf("got %v, want ErrTooManyRedirects", err)
	}
}

func TestNewClientInvalidOptions(t *testing.T) {
	if _, err := NewClient(Options{RedirectLimit: -1}); err == nil {
		t.Error("expected error for negative redirect limit")
	}
	if _, err := NewClient(Options{ConnectTimeout: -time.Second}); err == nil {
		t.Error("expected error for negative connect timeout")
	}
}

func TestLastModified(t *testing.T) {
	want := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Last-Modified", want.Format(http.TimeFormat))
	}))
	defer server.Close()

	client, err := NewClient(DefaultOptions())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	resp, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()

	got, ok := LastModified(resp)
	if !ok {
		t.Fatal("expected Last-Modified to parse")
	}
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestLastModifiedMissing(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	if _, ok := LastModified(resp); ok {
		t.Error("expected no Last-Modified")
	}

	resp.Header.Set("Last-Modified", "not a date")
	if _, ok := LastModified(resp); ok {
		t.Error("expected invalid Last-Modified to be rejected")
	}
}
