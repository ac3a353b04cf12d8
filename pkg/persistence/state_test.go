package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileStoreLayout(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	if err := store.SaveDesired(context.Background(), "sn1", sampleSnapshot()); err != nil {
		t.Fatalf("SaveDesired() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "sn1", "desired.json"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if rec.Version != FormatVersion {
		t.Errorf("Version = %d, want %d", rec.Version, FormatVersion)
	}
	if rec.Serial != "sn1" || rec.Kind != "desired" {
		t.Errorf("Serial, Kind = %q, %q; want sn1, desired", rec.Serial, rec.Kind)
	}
	if !rec.SavedAt.Equal(fixed) {
		t.Errorf("SavedAt = %v, want %v", rec.SavedAt, fixed)
	}
	if _, err := os.Stat(filepath.Join(dir, "sn1", "desired.json.tmp")); !os.IsNotExist(err) {
		t.Errorf("temporary file left behind: %v", err)
	}
}

func TestFileStoreRejectsVersion(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	path := filepath.Join(dir, "sn1", "actual.json")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{"version": 99, "snapshot": []}`), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := store.LoadActual(context.Background(), "sn1"); !errors.Is(err, ErrVersion) {
		t.Errorf("LoadActual() error = %v, want ErrVersion", err)
	}
}

func TestFileStoreCorrupt(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	path := filepath.Join(dir, "sn1", "actual.json")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{not json`), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := store.LoadActual(context.Background(), "sn1")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("LoadActual() error = %v, want decode error", err)
	}
}

func TestFileStoreClear(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	ctx := context.Background()

	if err := store.SaveActual(ctx, "sn1", sampleSnapshot()); err != nil {
		t.Fatalf("SaveActual() error = %v", err)
	}
	if err := store.Clear("sn1"); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, err := store.LoadActual(ctx, "sn1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadActual() after Clear error = %v, want ErrNotFound", err)
	}
	if err := store.Clear("never-saved"); err != nil {
		t.Errorf("Clear() of missing device error = %v", err)
	}
}

func TestFileStoreDevicesMissingDir(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "absent"))
	got, err := store.Devices(context.Background())
	if err != nil {
		t.Fatalf("Devices() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Devices() = %v, want empty", got)
	}
}
