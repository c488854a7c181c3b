package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

type fakeBackend struct {
	objects map[string][]byte
	types   map[string]string
	putErr  error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeBackend) EnsureBucket(context.Context) error { return nil }

func (f *fakeBackend) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.objects[key] = data
	f.types[key] = contentType
	return nil
}

func (f *fakeBackend) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func (f *fakeBackend) URL(key string) string { return "https://cdn.test/pics/" + escapeKey(key) }

func (f *fakeBackend) Bucket() string { return "pics" }

type closingBackend struct {
	*fakeBackend
	closed int
}

func (c *closingBackend) Close() error {
	c.closed++
	return nil
}

func TestStoragePutReturnsReference(t *testing.T) {
	backend := newFakeBackend()
	s := NewStorage(backend)

	ref, err := s.Put(context.Background(), "profile_pics/a b.png", bytes.NewReader([]byte("img")), 3, "image/png")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if ref != "https://cdn.test/pics/profile_pics/a%20b.png" {
		t.Fatalf("unexpected reference %q", ref)
	}
	if string(backend.objects["profile_pics/a b.png"]) != "img" {
		t.Fatal("expected object stored under key")
	}
	if backend.types["profile_pics/a b.png"] != "image/png" {
		t.Fatalf("unexpected content type %q", backend.types["profile_pics/a b.png"])
	}
}

func TestStoragePutWrapsBackendError(t *testing.T) {
	backend := newFakeBackend()
	backend.putErr = errors.New("boom")
	s := NewStorage(backend)

	_, err := s.Put(context.Background(), "k.png", strings.NewReader("x"), 1, "image/png")
	if !errors.Is(err, backend.putErr) {
		t.Fatalf("expected wrapped backend error, got %v", err)
	}
}

func TestEscapeKeyKeepsSeparators(t *testing.T) {
	if got := escapeKey("a/b c/d?.png"); got != "a/b%20c/d%3F.png" {
		t.Fatalf("unexpected escaped key %q", got)
	}
}

func TestStorageDeleteRemovesObject(t *testing.T) {
	backend := newFakeBackend()
	s := NewStorage(backend)

	if _, err := s.Put(context.Background(), "k.png", strings.NewReader("x"), 1, "image/png"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Delete(context.Background(), "k.png"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := backend.objects["k.png"]; ok {
		t.Fatal("expected object to be removed")
	}
}

func TestStorageCloseReleasesClosableBackend(t *testing.T) {
	backend := &closingBackend{fakeBackend: newFakeBackend()}
	if err := NewStorage(backend).Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if backend.closed != 1 {
		t.Fatalf("expected backend closed once, got %d", backend.closed)
	}

	if err := NewStorage(newFakeBackend()).Close(); err != nil {
		t.Fatalf("close without closer: %v", err)
	}
}
