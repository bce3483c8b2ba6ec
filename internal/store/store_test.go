package store

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/marblejar/internal/marble"
)

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir, "marbles.json")

	records := []marble.Record{
		{Timestamp: 1700000000000, Color: marble.Red},
		{Timestamp: 1700000100000, Color: marble.Green},
		{Timestamp: 1700000200000, Color: marble.Green},
	}
	if err := st.Save(records); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := st.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded) != len(records) {
		t.Fatalf("expected %d records, got %d", len(records), len(loaded))
	}
	for i := range records {
		if loaded[i] != records[i] {
			t.Errorf("record %d: got %+v, want %+v", i, loaded[i], records[i])
		}
	}
}

func TestStoreFileShape(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir, "marbles.json")
	if err := st.Save([]marble.Record{{Timestamp: 5, Color: marble.Red}}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, "marbles.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"marbles":[{"timestamp":5,"color":"red"}]}` {
		t.Errorf("unexpected file contents %s", data)
	}
}

func TestStoreLoadMissing(t *testing.T) {
	st := New(t.TempDir(), "marbles.json")

	records, err := st.Load()
	if !errors.Is(err, ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Errorf("expected empty non-nil history, got %v", records)
	}
}

func TestStoreLoadCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "{marbles: nope"},
		{"wrong type", `{"marbles": 3}`},
		{"unknown color", `{"marbles":[{"timestamp":1,"color":"blue"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			st := New(tmpDir, "marbles.json")
			st.now = func() time.Time { return time.UnixMilli(42) }
			path := filepath.Join(tmpDir, "marbles.json")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			records, err := st.Load()
			if !errors.Is(err, ErrCorrupt) {
				t.Fatalf("expected ErrCorrupt, got %v", err)
			}
			if len(records) != 0 {
				t.Errorf("expected empty history, got %v", records)
			}
			if _, err := os.Stat(path); !os.IsNotExist(err) {
				t.Error("corrupt file should be moved aside")
			}
			aside, err := os.ReadFile(path + ".corrupt-42")
			if err != nil {
				t.Fatalf("expected quarantined copy: %v", err)
			}
			if string(aside) != tt.content {
				t.Error("quarantined copy differs from original")
			}
		})
	}
}

func TestStoreReadLeavesCorruptFile(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir, "marbles.json")
	path := filepath.Join(tmpDir, "marbles.json")
	if err := os.WriteFile(path, []byte("{marbles: nope"), 0644); err != nil {
		t.Fatal(err)
	}

	records, err := st.Read()
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected empty history, got %v", records)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "{marbles: nope" {
		t.Errorf("read must not move or change the file: %q, %v", data, err)
	}
	if aside, _ := filepath.Glob(path + ".corrupt-*"); len(aside) != 0 {
		t.Errorf("read must not quarantine, found %v", aside)
	}
}

func TestStoreReadMatchesLoad(t *testing.T) {
	st := New(t.TempDir(), "marbles.json")
	if _, err := st.Read(); !errors.Is(err, ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
	records := []marble.Record{{Timestamp: 7, Color: marble.Green}}
	if err := st.Save(records); err != nil {
		t.Fatal(err)
	}
	got, err := st.Read()
	if err != nil || len(got) != 1 || got[0] != records[0] {
		t.Errorf("read = %v, %v", got, err)
	}
}

func TestStoreEmptyDocument(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir, "marbles.json")
	if err := os.WriteFile(st.Path(), []byte(`{}`), 0644); err != nil {
		t.Fatal(err)
	}
	records, err := st.Load()
	if err != nil || len(records) != 0 {
		t.Errorf("expected empty history without error, got %v %v", records, err)
	}

	if err := st.Save(nil); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(st.Path())
	if string(data) != `{"marbles":[]}` {
		t.Errorf("nil history should save as empty list, got %s", data)
	}
}

func TestStoreFailedSaveKeepsPrevious(t *testing.T) {
	st := New(t.TempDir(), "marbles.json")
	good := []marble.Record{{Timestamp: 1, Color: marble.Green}}
	if err := st.Save(good); err != nil {
		t.Fatal(err)
	}

	bad := append(good, marble.Record{Timestamp: 2})
	if err := st.Save(bad); err == nil {
		t.Fatal("expected encode error for invalid color")
	}

	loaded, err := st.Load()
	if err != nil {
		t.Fatalf("previous history should stay readable: %v", err)
	}
	if len(loaded) != 1 || loaded[0] != good[0] {
		t.Errorf("previous history changed: %v", loaded)
	}
}

func TestStoreSaveCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	st := New(dir, "marbles.json")
	if err := st.Save([]marble.Record{{Timestamp: 1, Color: marble.Red}}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "marbles.json")); err != nil {
		t.Errorf("file not created: %v", err)
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportJSON(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"marbles": []`) {
		t.Errorf("unexpected export %s", buf.String())
	}
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	records := []marble.Record{
		{Timestamp: 1000, Color: marble.Red},
		{Timestamp: 2000, Color: marble.Green},
	}
	if err := ExportCSV(&buf, records); err != nil {
		t.Fatal(err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][2] != "color" || rows[1][0] != "1000" || rows[2][2] != "green" {
		t.Errorf("unexpected rows %v", rows)
	}
}
