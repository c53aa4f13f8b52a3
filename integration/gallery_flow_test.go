// integration/gallery_flow_test.go
// Package integration exercises the full gallery flow end to end:
// login, catalog listing, rename, playback URL and logout, over a real
// HTTP server backed by the in-memory object store.
package integration

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/familyvhs/familyvhs-gallery-go/internal/catalog"
	"github.com/familyvhs/familyvhs-gallery-go/internal/metadata"
	"github.com/familyvhs/familyvhs-gallery-go/internal/server"
	"github.com/familyvhs/familyvhs-gallery-go/internal/session"
	"github.com/familyvhs/familyvhs-gallery-go/internal/store"
)

// recordingPublisher implements event.Publisher and captures what the
// handlers publish.
type recordingPublisher struct {
	mu       sync.Mutex
	sessions int
	renames  []string
}

func (p *recordingPublisher) PublishSessionOpened(ctx context.Context, correlationID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions++
	return nil
}

func (p *recordingPublisher) PublishVideoRenamed(ctx context.Context, videoKey, displayName string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.renames = append(p.renames, videoKey)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func TestGalleryFlow(t *testing.T) {
	objects := store.NewMemory()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	objects.PutObject("videos/Summer Trip.mp4", []byte("video-bytes"), now)
	objects.PutObject("videos/Winter.mov", []byte("more-video-bytes"), now)
	objects.PutObject("thumbnails/Summer Trip.jpg", []byte("jpg"), now)
	objects.PutObject("previews/Summer Trip.mp4", []byte("preview"), now)

	meta, err := metadata.New(objects, "metadata/videos.json")
	if err != nil {
		t.Fatalf("metadata.New() error = %v", err)
	}
	auth := session.New("open sesame", "integration-secret", false)
	builder := catalog.New(objects, meta, nil, 4)
	pub := &recordingPublisher{}

	srv := httptest.NewServer(server.NewMux(auth, builder, meta, objects, pub))
	defer srv.Close()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New() error = %v", err)
	}
	client := &http.Client{Jar: jar}

	// Unauthenticated listing is refused.
	resp, err := client.Get(srv.URL + "/videos")
	if err != nil {
		t.Fatalf("GET /videos error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated GET /videos status = %d, want 401", resp.StatusCode)
	}

	// Login; the cookie jar keeps the session from here on.
	resp, err = client.Post(srv.URL+"/auth", "application/json",
		bytes.NewReader([]byte(`{"password":"open sesame"}`)))
	if err != nil {
		t.Fatalf("POST /auth error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want 200", resp.StatusCode)
	}
	if pub.sessions != 1 {
		t.Errorf("session events published = %d, want 1", pub.sessions)
	}

	// Catalog shows both videos, sorted, with siblings for Summer Trip.
	type record struct {
		Key          string `json:"key"`
		Name         string `json:"name"`
		DisplayName  string `json:"displayName"`
		Size         int64  `json:"size"`
		ThumbnailURL string `json:"thumbnailUrl"`
		PreviewURL   string `json:"previewUrl"`
	}
	var listing struct {
		Videos []record `json:"videos"`
	}
	resp, err = client.Get(srv.URL + "/videos")
	if err != nil {
		t.Fatalf("GET /videos error = %v", err)
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		t.Fatalf("decoding listing: %v", err)
	}
	resp.Body.Close()
	if len(listing.Videos) != 2 {
		t.Fatalf("got %d videos, want 2", len(listing.Videos))
	}
	summer := listing.Videos[0]
	if summer.Name != "Summer Trip" {
		t.Fatalf("first video = %q, want Summer Trip", summer.Name)
	}
	if summer.ThumbnailURL == "" || summer.PreviewURL == "" {
		t.Errorf("Summer Trip missing sibling URLs: thumb=%q preview=%q", summer.ThumbnailURL, summer.PreviewURL)
	}
	if listing.Videos[1].ThumbnailURL != "" {
		t.Errorf("Winter thumbnailUrl = %q, want empty", listing.Videos[1].ThumbnailURL)
	}

	// Rename Summer Trip and see the override on the next listing.
	body := []byte(`{"videoKey":"videos/Summer Trip.mp4","displayName":"Cornwall 1994"}`)
	resp, err = client.Post(srv.URL+"/videos/rename", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /videos/rename error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("rename status = %d, want 200", resp.StatusCode)
	}
	if len(pub.renames) != 1 || pub.renames[0] != "videos/Summer Trip.mp4" {
		t.Errorf("rename events = %v, want the renamed key once", pub.renames)
	}

	resp, err = client.Get(srv.URL + "/videos")
	if err != nil {
		t.Fatalf("GET /videos error = %v", err)
	}
	listing.Videos = nil
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		t.Fatalf("decoding listing: %v", err)
	}
	resp.Body.Close()
	if listing.Videos[0].DisplayName != "Cornwall 1994" {
		t.Errorf("displayName after rename = %q, want Cornwall 1994", listing.Videos[0].DisplayName)
	}

	// Playback URL for the renamed video.
	encoded := base64.StdEncoding.EncodeToString([]byte("videos/Summer Trip.mp4"))
	resp, err = client.Get(srv.URL + "/videos/" + encoded)
	if err != nil {
		t.Fatalf("GET playback error = %v", err)
	}
	var playback struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&playback); err != nil {
		t.Fatalf("decoding playback response: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || playback.URL == "" {
		t.Fatalf("playback status = %d url = %q", resp.StatusCode, playback.URL)
	}

	// Logout drops the cookie; the catalog is gated again.
	req, err := http.NewRequest("DELETE", srv.URL+"/auth", nil)
	if err != nil {
		t.Fatalf("building logout request: %v", err)
	}
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("DELETE /auth error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout status = %d, want 200", resp.StatusCode)
	}

	resp, err = client.Get(srv.URL + "/videos")
	if err != nil {
		t.Fatalf("GET /videos error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("GET /videos after logout status = %d, want 401", resp.StatusCode)
	}
}
