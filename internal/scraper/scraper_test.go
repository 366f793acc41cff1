package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MrE12345/kundeavis-scraper/internal/config"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		BaseURL:      baseURL,
		HTTPTimeout:  5 * time.Second,
		ImageTimeout: 5 * time.Second,
		UserAgent:    "test-agent",
	}
}

func TestResolveImageURLs(t *testing.T) {
	gridHTML := `<html><body>
		<a href="/pages/side1.jpg">1</a>
		<img src="/pages/side2.JPG">
		<img data-src="/pages/side3.jpeg">
		<a href="/pages/side1.jpg">duplicate</a>
		<a href="/om-oss.html">not an image</a>
		<img src="">
	</body></html>`

	var gridRequests int
	mux := http.NewServeMux()
	mux.HandleFunc("/app/", func(w http.ResponseWriter, r *http.Request) {
		gridRequests++
		fmt.Fprint(w, gridHTML)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(testConfig(srv.URL + "/"))
	got, err := c.ResolveImageURLs(context.Background(), "123")
	if err != nil {
		t.Fatalf("ResolveImageURLs() error = %v", err)
	}

	want := []string{
		srv.URL + "/pages/side1.jpg",
		srv.URL + "/pages/side2.JPG",
		srv.URL + "/pages/side3.jpeg",
	}
	if len(got) != len(want) {
		t.Fatalf("got %d urls %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("url[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if gridRequests != 1 {
		t.Errorf("grid endpoint fetched %d times, want 1", gridRequests)
	}
}

func TestResolveImageURLs_FallbackCandidate(t *testing.T) {
	// The grid view fails; the plain view must be tried next.
	mux := http.NewServeMux()
	mux.HandleFunc("/app/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><img src="side1.jpg"></body></html>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(testConfig(srv.URL + "/"))
	got, err := c.ResolveImageURLs(context.Background(), "123")
	if err != nil {
		t.Fatalf("ResolveImageURLs() error = %v", err)
	}
	if len(got) != 1 || got[0] != srv.URL+"/side1.jpg" {
		t.Errorf("got %v, want [%s/side1.jpg]", got, srv.URL)
	}
}

func TestResolveImageURLs_NoImages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>ingen bilder her</p></body></html>`)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL + "/"))
	got, err := c.ResolveImageURLs(context.Background(), "123")
	if err != nil {
		t.Fatalf("ResolveImageURLs() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
}

func TestFetchImage(t *testing.T) {
	payload := []byte{0xff, 0xd8, 0xff, 0xe0}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.jpg" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if ua := r.Header.Get("User-Agent"); ua != "test-agent" {
			t.Errorf("User-Agent = %q, want test-agent", ua)
		}
		w.Write(payload)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL + "/"))

	got, err := c.FetchImage(context.Background(), srv.URL+"/side1.jpg")
	if err != nil {
		t.Fatalf("FetchImage() error = %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("FetchImage() = %v, want %v", got, payload)
	}

	if _, err := c.FetchImage(context.Background(), srv.URL+"/missing.jpg"); err == nil {
		t.Error("FetchImage() on 404 returned nil error")
	}
}

func TestFetchMeta_FallsBackAndFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL + "/"))
	if _, err := c.FetchMeta(context.Background(), "123"); err == nil {
		t.Error("FetchMeta() with all candidates failing returned nil error")
	}
}
