package cache

import (
	"os"
	"path/filepath"
	"testing"
)

type record struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

func TestGet_Miss(t *testing.T) {
	c := New(t.TempDir())

	var out record
	hit, err := c.Get("anime", "1", &out)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if hit {
		t.Error("expected cache miss for absent key")
	}
}

func TestPutGet_Roundtrip(t *testing.T) {
	c := New(t.TempDir())

	in := record{ID: 1, Title: "Cowboy Bebop"}
	if err := c.Put("anime", "1", in); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	var out record
	hit, err := c.Get("anime", "1", &out)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !hit {
		t.Fatal("expected cache hit after Put")
	}
	if out != in {
		t.Errorf("expected %+v, got %+v", in, out)
	}
}

func TestPut_CreatesBucketDir(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)

	if err := c.Put("animelist", "spike", []record{{ID: 1, Title: "Cowboy Bebop"}}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "animelist", "spike.json")); err != nil {
		t.Errorf("expected cache file on disk: %v", err)
	}
}

func TestGet_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)

	path := filepath.Join(dir, "anime", "1.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out record
	if _, err := c.Get("anime", "1", &out); err == nil {
		t.Error("expected error for corrupt cache file")
	}
}
