package firefox

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrNoProfile is returned when no usable profile matches.
var ErrNoProfile = errors.New("no firefox profile with a session file")

// Profile is one entry of profiles.ini.
type Profile struct {
	Name      string
	Path      string
	IsDefault bool
}

// BackupDir is the directory Firefox rewrites the session into.
func (p Profile) BackupDir() string {
	return filepath.Join(p.Path, "sessionstore-backups")
}

// FindFirefoxDir returns the platform-specific Firefox profile directory.
func FindFirefoxDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	switch runtime.GOOS {
	case "linux":
		return filepath.Join(home, ".mozilla", "firefox")
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Firefox")
	default:
		return ""
	}
}

// ParseProfilesINI reads profiles.ini and returns the profiles that have a
// session file. Relative paths are resolved against firefoxDir.
func ParseProfilesINI(iniPath, firefoxDir string) ([]Profile, error) {
	f, err := os.Open(iniPath)
	if err != nil {
		return nil, fmt.Errorf("open profiles.ini: %w", err)
	}
	defer f.Close()

	var profiles []Profile
	var current *Profile
	relative := false

	flush := func() {
		if current == nil {
			return
		}
		if relative {
			current.Path = filepath.Join(firefoxDir, current.Path)
		}
		profiles = append(profiles, *current)
		current = nil
		relative = false
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			flush()
			if strings.HasPrefix(line[1:len(line)-1], "Profile") {
				current = &Profile{}
			}
			continue
		}
		if current == nil {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch key {
		case "Name":
			current.Name = value
		case "Path":
			current.Path = value
		case "IsRelative":
			relative = value == "1"
		case "Default":
			current.IsDefault = value == "1"
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan profiles.ini: %w", err)
	}

	var usable []Profile
	for _, p := range profiles {
		if _, err := sessionPath(p.BackupDir()); err == nil {
			usable = append(usable, p)
		}
	}
	return usable, nil
}

// DiscoverProfiles finds and parses Firefox profiles on this system.
func DiscoverProfiles() ([]Profile, error) {
	dir := FindFirefoxDir()
	if dir == "" {
		return nil, fmt.Errorf("could not find Firefox directory for %s", runtime.GOOS)
	}
	return ParseProfilesINI(filepath.Join(dir, "profiles.ini"), dir)
}

// SelectProfile picks the profile called name, or the default profile when
// name is empty, falling back to the first one.
func SelectProfile(profiles []Profile, name string) (Profile, error) {
	if len(profiles) == 0 {
		return Profile{}, ErrNoProfile
	}
	if name != "" {
		for _, p := range profiles {
			if p.Name == name {
				return p, nil
			}
		}
		return Profile{}, fmt.Errorf("%w: %q", ErrNoProfile, name)
	}
	for _, p := range profiles {
		if p.IsDefault {
			return p, nil
		}
	}
	return profiles[0], nil
}
