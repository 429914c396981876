package storage

import (
	"io"
	"strings"
	"testing"
)

func TestPutGetRoundTrip(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	key, err := s.Put("letters/a.png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if key != "letters/a.png" {
		t.Fatalf("canonical key = %q", key)
	}
	rc, err := s.Get("letters/a.png")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "png-bytes" {
		t.Fatalf("got %q", data)
	}
}

func TestTraversalKeysStayInBase(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	key, err := s.Put("../../etc/passwd", strings.NewReader("nope"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if strings.Contains(key, "..") {
		t.Fatalf("key escaped base: %q", key)
	}
	if _, err := s.Get("../outside"); err == nil {
		t.Error("expected miss for traversal key with no stored blob")
	}
}

func TestEmptyKeyRejected(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := s.Put("", strings.NewReader("x")); err == nil {
		t.Error("empty key should be rejected")
	}
}
