package firefox

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lotas/tabputz/internal/types"
	"github.com/pierrec/lz4/v4"
)

// mozlz4 header: 8-byte magic "mozLz40\x00"
var mozLz4Magic = []byte("mozLz40\x00")

// Session files in the order they are tried: the live session first, then
// the one written on last shutdown.
var sessionFiles = []string{"recovery.jsonlz4", "previous.jsonlz4"}

// DecompressMozLz4 decompresses data in Mozilla's mozlz4 format.
// The format is: 8-byte magic "mozLz40\x00" + 4-byte LE uint32 uncompressed size + lz4 block data.
func DecompressMozLz4(data []byte) ([]byte, error) {
	const headerSize = 12

	if len(data) < headerSize {
		return nil, fmt.Errorf("mozlz4: data too short (%d bytes)", len(data))
	}
	if !bytes.Equal(data[:8], mozLz4Magic) {
		return nil, fmt.Errorf("mozlz4: invalid header magic")
	}

	dst := make([]byte, binary.LittleEndian.Uint32(data[8:12]))
	n, err := lz4.UncompressBlock(data[headerSize:], dst)
	if err != nil {
		return nil, fmt.Errorf("mozlz4: decompress failed: %w", err)
	}
	return dst[:n], nil
}

type rawEntry struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

type rawTab struct {
	Entries []rawEntry `json:"entries"`
	Index   int        `json:"index"`
	Pinned  bool       `json:"pinned"`
	Hidden  bool       `json:"hidden"`
}

type rawWindow struct {
	Tabs     []rawTab `json:"tabs"`
	Selected int      `json:"selected"`
}

type rawSession struct {
	Windows        []rawWindow `json:"windows"`
	SelectedWindow int         `json:"selectedWindow"`
}

// Session is the tab inventory of one session file.
type Session struct {
	Tabs []types.Tab
	// CurrentWindow is the WindowID of the focused window, 0 if unknown.
	CurrentWindow int
}

// Window returns the tabs of one window.
func (s *Session) Window(id int) []types.Tab {
	var out []types.Tab
	for _, t := range s.Tabs {
		if t.WindowID == id {
			out = append(out, t)
		}
	}
	return out
}

// ParseSession parses decompressed session JSON. Tab ids are assigned in
// file order starting at 1; window ids are the 1-based window position.
func ParseSession(data []byte) (*Session, error) {
	var raw rawSession
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse session JSON: %w", err)
	}

	s := &Session{}
	if raw.SelectedWindow >= 1 && raw.SelectedWindow <= len(raw.Windows) {
		s.CurrentWindow = raw.SelectedWindow
	}

	nextID := 1
	for winIdx, window := range raw.Windows {
		for tabIdx, rt := range window.Tabs {
			if len(rt.Entries) == 0 {
				continue
			}
			// index is 1-based; current page is entries[index-1].
			entryIdx := rt.Index - 1
			if entryIdx < 0 || entryIdx >= len(rt.Entries) {
				entryIdx = len(rt.Entries) - 1
			}
			entry := rt.Entries[entryIdx]

			s.Tabs = append(s.Tabs, types.Tab{
				ID:       nextID,
				URL:      entry.URL,
				Title:    entry.Title,
				Pinned:   rt.Pinned,
				Active:   window.Selected == tabIdx+1,
				WindowID: winIdx + 1,
			})
			nextID++
		}
	}
	return s, nil
}

func sessionPath(backupDir string) (string, error) {
	for _, name := range sessionFiles {
		p := filepath.Join(backupDir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("no session file found in %s", backupDir)
}

// ReadSessionFile reads and parses the session file of a profile directory.
func ReadSessionFile(profileDir string) (*Session, error) {
	path, err := sessionPath(filepath.Join(profileDir, "sessionstore-backups"))
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	decompressed, err := DecompressMozLz4(data)
	if err != nil {
		return nil, fmt.Errorf("decompress session file: %w", err)
	}
	return ParseSession(decompressed)
}
