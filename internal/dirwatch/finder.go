// Package dirwatch locates the game's log directory and watches it for the
// appearance of a session's network-status log file.
package dirwatch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// EnvLogDir is the environment variable overriding log directory detection.
const EnvLogDir = "RUNDOWNLOG_LOGDIR"

// fileMarker identifies the per-session network-status log among the other
// files the game writes to its log directory.
const fileMarker = "NetStatus"

// Sentinel errors.
var (
	ErrLogDirNotFound = errors.New("log directory not found")
	ErrNoLogFiles     = errors.New("no log files found")
)

// DefaultLogDirs returns candidate log directories in priority order: the
// native Windows install and the Steam Proton prefix on Linux.
func DefaultLogDirs() []string {
	var dirs []string

	const vendorPath = "10 Chambers Collective/GTFO"

	localAppData := os.Getenv("LOCALAPPDATA")
	if localAppData == "" {
		if userProfile := os.Getenv("USERPROFILE"); userProfile != "" {
			localAppData = filepath.Join(userProfile, "AppData", "Local")
		}
	}
	if localAppData != "" {
		localLow := filepath.Join(filepath.Dir(localAppData), "LocalLow")
		dirs = append(dirs, filepath.Join(localLow, filepath.FromSlash(vendorPath)))
	}

	if home, err := os.UserHomeDir(); err == nil {
		// Steam app id 493520, Proton prefix.
		dirs = append(dirs, filepath.Join(home,
			".local", "share", "Steam", "steamapps", "compatdata", "493520",
			"pfx", "drive_c", "users", "steamuser", "AppData", "LocalLow",
			filepath.FromSlash(vendorPath)))
	}

	return dirs
}

// FindLogDir returns the game's log directory.
//
// Priority:
//  1. explicit (if non-empty)
//  2. RUNDOWNLOG_LOGDIR environment variable
//  3. Auto-detect from DefaultLogDirs()
//
// A directory is accepted when it exists, even if it holds no log files
// yet: the watcher waits for the session file to appear.
func FindLogDir(explicit string) (string, error) {
	if explicit != "" {
		if resolved := resolveDir(explicit); resolved != "" {
			return resolved, nil
		}
		return "", fmt.Errorf("%w: specified directory does not exist", ErrLogDirNotFound)
	}

	if envDir := os.Getenv(EnvLogDir); envDir != "" {
		if resolved := resolveDir(envDir); resolved != "" {
			return resolved, nil
		}
		return "", fmt.Errorf("%w: %s points to an invalid directory", ErrLogDirNotFound, EnvLogDir)
	}

	for _, dir := range DefaultLogDirs() {
		if resolved := resolveDir(dir); resolved != "" {
			return resolved, nil
		}
	}

	return "", ErrLogDirNotFound
}

// logCandidate caches the stat result so a file deleted between filtering
// and sorting cannot skew the ordering.
type logCandidate struct {
	path    string
	modTime int64
}

// FindLatestLogFile returns the most recently modified network-status log
// in dir, or ErrNoLogFiles.
func FindLatestLogFile(dir string) (string, error) {
	pattern := filepath.Join(dir, "*"+fileMarker+"*.txt")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("globbing log files: %w", err)
	}
	if len(matches) == 0 {
		return "", ErrNoLogFiles
	}

	candidates := make([]logCandidate, 0, len(matches))
	for _, m := range matches {
		info, err := os.Lstat(m)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		candidates = append(candidates, logCandidate{path: m, modTime: info.ModTime().UnixNano()})
	}
	if len(candidates) == 0 {
		return "", ErrNoLogFiles
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].modTime > candidates[j].modTime
	})
	return candidates[0].path, nil
}

// matchesMarker reports whether a path names a network-status log.
func matchesMarker(path string) bool {
	base := filepath.Base(path)
	return strings.Contains(base, fileMarker) && strings.HasSuffix(base, ".txt")
}

// resolveDir resolves symlinks and validates that the path is a directory.
// Returns the empty string when invalid.
func resolveDir(dir string) string {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return ""
	}
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return ""
	}
	return resolved
}
