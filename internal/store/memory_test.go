package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryListOrdersByKey(t *testing.T) {
	m := NewMemory()
	m.PutObject("videos/b.mp4", []byte("bb"), time.Now())
	m.PutObject("videos/a.mp4", []byte("a"), time.Now())
	m.PutObject("thumbnails/a.jpg", []byte("t"), time.Now())

	objects, err := m.List(context.Background(), "videos/")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(objects) != 2 {
		t.Fatalf("List() returned %d objects, want 2", len(objects))
	}
	if objects[0].Key != "videos/a.mp4" || objects[1].Key != "videos/b.mp4" {
		t.Errorf("List() order = %q, %q", objects[0].Key, objects[1].Key)
	}
	if objects[0].Size != 1 || objects[1].Size != 2 {
		t.Errorf("List() sizes = %d, %d, want 1, 2", objects[0].Size, objects[1].Size)
	}
}

func TestMemoryGetMissing(t *testing.T) {
	m := NewMemory()
	if _, err := m.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestMemoryPutGetRoundTrip(t *testing.T) {
	m := NewMemory()
	if err := m.Put(context.Background(), "metadata/videos.json", []byte(`{}`), "application/json"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	body, err := m.Get(context.Background(), "metadata/videos.json")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(body) != "{}" {
		t.Errorf("Get() body = %q, want {}", body)
	}
}

func TestMemoryExistsUsesPrefix(t *testing.T) {
	m := NewMemory()
	m.PutObject("thumbnails/Birthday.jpg", []byte("x"), time.Now())

	ok, err := m.Exists(context.Background(), "thumbnails/Birthday.jpg")
	if err != nil || !ok {
		t.Errorf("Exists() = %v, %v, want true, nil", ok, err)
	}
	ok, err = m.Exists(context.Background(), "previews/Birthday.mp4")
	if err != nil || ok {
		t.Errorf("Exists() = %v, %v, want false, nil", ok, err)
	}
}

func TestMemoryPresignMissing(t *testing.T) {
	m := NewMemory()
	if _, err := m.PresignGet(context.Background(), "nope", 4*time.Hour); !errors.Is(err, ErrNotFound) {
		t.Errorf("PresignGet() error = %v, want ErrNotFound", err)
	}
}
