package firefox

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lotas/tabputz/internal/host"
	"github.com/lotas/tabputz/internal/types"
	"github.com/pierrec/lz4/v4"
)

// mozlz4 builds a mozlz4 payload: 8-byte magic + 4-byte LE size + lz4 block.
func mozlz4(t *testing.T, raw []byte) []byte {
	t.Helper()
	dst := make([]byte, lz4.CompressBlockBound(len(raw)))
	n, err := lz4.CompressBlock(raw, dst, nil)
	if err != nil {
		t.Fatalf("lz4.CompressBlock failed: %v", err)
	}

	sizeBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(sizeBytes, uint32(len(raw)))

	payload := append([]byte{}, mozLz4Magic...)
	payload = append(payload, sizeBytes...)
	return append(payload, dst[:n]...)
}

func TestDecompressMozLz4(t *testing.T) {
	t.Run("valid mozlz4 payload", func(t *testing.T) {
		raw := []byte(`{"windows":[{"tabs":[]}]}`)
		result, err := DecompressMozLz4(mozlz4(t, raw))
		if err != nil {
			t.Fatalf("DecompressMozLz4 returned error: %v", err)
		}
		if string(result) != string(raw) {
			t.Errorf("expected %q, got %q", string(raw), string(result))
		}
	})

	t.Run("invalid header returns error", func(t *testing.T) {
		bad := []byte("BADMAGIC\x00\x00\x00\x00some data here")
		if _, err := DecompressMozLz4(bad); err == nil {
			t.Fatal("expected error for invalid header, got nil")
		}
	})

	t.Run("too short data returns error", func(t *testing.T) {
		if _, err := DecompressMozLz4([]byte("mozLz40")); err == nil {
			t.Fatal("expected error for too-short data, got nil")
		}
	})
}

// sampleSession has two windows; the second one is focused.
func sampleSession() map[string]any {
	return map[string]any{
		"selectedWindow": 2,
		"windows": []map[string]any{
			{
				"selected": 2,
				"tabs": []map[string]any{
					{
						"entries": []map[string]any{{"url": "https://example.com", "title": "Example"}},
						"index":   1,
						"pinned":  true,
					},
					{
						"entries": []map[string]any{
							{"url": "https://old.com", "title": "Old Page"},
							{"url": "https://current.com", "title": "Current Page"},
						},
						"index": 2,
					},
					{"entries": []map[string]any{}},
				},
			},
			{
				"selected": 1,
				"tabs": []map[string]any{
					{
						"entries": []map[string]any{{"url": "https://example.com", "title": "Example again"}},
						"index":   9, // out of range: last entry
					},
				},
			},
		},
	}
}

func TestParseSession(t *testing.T) {
	data, err := json.Marshal(sampleSession())
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}

	s, err := ParseSession(data)
	if err != nil {
		t.Fatalf("ParseSession returned error: %v", err)
	}

	want := []types.Tab{
		{ID: 1, URL: "https://example.com", Title: "Example", Pinned: true, WindowID: 1},
		{ID: 2, URL: "https://current.com", Title: "Current Page", Active: true, WindowID: 1},
		{ID: 3, URL: "https://example.com", Title: "Example again", Active: true, WindowID: 2},
	}
	if len(s.Tabs) != len(want) {
		t.Fatalf("expected %d tabs, got %d", len(want), len(s.Tabs))
	}
	for i := range want {
		if s.Tabs[i] != want[i] {
			t.Errorf("tab %d: got %+v, want %+v", i, s.Tabs[i], want[i])
		}
	}
	if s.CurrentWindow != 2 {
		t.Errorf("CurrentWindow = %d, want 2", s.CurrentWindow)
	}
	if w := s.Window(2); len(w) != 1 || w[0].ID != 3 {
		t.Errorf("Window(2) = %+v", w)
	}
}

func TestParseSessionInvalid(t *testing.T) {
	if _, err := ParseSession([]byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func writeProfile(t *testing.T) Profile {
	t.Helper()
	dir := t.TempDir()
	backup := filepath.Join(dir, "sessionstore-backups")
	if err := os.MkdirAll(backup, 0755); err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(sampleSession())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(backup, "recovery.jsonlz4"), mozlz4(t, data), 0644); err != nil {
		t.Fatal(err)
	}
	return Profile{Name: "test", Path: dir}
}

func TestHostQuery(t *testing.T) {
	h := NewHost(writeProfile(t))

	all, err := h.Query(context.Background(), false)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("got %d tabs, want 3", len(all))
	}

	current, err := h.Query(context.Background(), true)
	if err != nil {
		t.Fatalf("Query current: %v", err)
	}
	if len(current) != 1 || current[0].WindowID != 2 {
		t.Errorf("current window tabs = %+v", current)
	}
}

func TestHostQueryMissingFile(t *testing.T) {
	h := NewHost(Profile{Name: "empty", Path: t.TempDir()})
	if _, err := h.Query(context.Background(), false); err == nil {
		t.Error("expected error without a session file")
	}
}

func TestHostCloseIsReadOnly(t *testing.T) {
	h := NewHost(writeProfile(t))
	if err := h.Close(context.Background(), []int{1}); !errors.Is(err, host.ErrReadOnly) {
		t.Errorf("Close error = %v, want ErrReadOnly", err)
	}
}

func TestHostRunEmitsOnRewrite(t *testing.T) {
	p := writeProfile(t)
	h := NewHost(p)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan types.Event, 4)
	go h.Run(ctx, func(ev types.Event) { events <- ev })

	// Give the watcher a moment to register.
	time.Sleep(100 * time.Millisecond)
	os.WriteFile(filepath.Join(p.BackupDir(), "recovery.jsonlz4.tmp"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(p.BackupDir(), "recovery.jsonlz4"), []byte("x"), 0o644)

	select {
	case ev := <-events:
		if _, ok := ev.(types.Startup); !ok {
			t.Errorf("got %#v, want Startup", ev)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no resync after session rewrite")
	}
}
