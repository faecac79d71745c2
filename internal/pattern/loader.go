package pattern

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// MaxFileSize caps override files at 256KB. The catalog has sixteen
	// patterns; anything near this limit is not a pattern file.
	MaxFileSize = 256 * 1024

	// MaxPatternLength caps a single regex source. Long hand-written
	// patterns are usually runaway ones.
	MaxPatternLength = 1024

	// SupportedVersion is the override file format version.
	SupportedVersion = 1
)

// OverrideFile is the YAML structure for per-build pattern overrides.
//
// Example:
//
//	version: 1
//	patterns:
//	  - id: select_expedition
//	    regex: '(?m)^.*SetActiveExpedition\s:.*Local_(?P<rundown>\d+)_Tier(?P<tier>\w)_(?P<exp>\d+).*$'
type OverrideFile struct {
	Version  int        `yaml:"version"`
	Patterns []Override `yaml:"patterns"`
}

// Override replaces the default regex for one catalog id. The replacement
// must keep the named capture groups of the default.
type Override struct {
	ID    string `yaml:"id"`
	Regex string `yaml:"regex"`
}

// LoadFile reads a YAML override file and compiles a catalog from it.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pattern file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat pattern file: %w", err)
	}
	// Reject FIFOs and other special files before reading from them.
	if !info.Mode().IsRegular() {
		return nil, errors.New("pattern file must be a regular file")
	}
	if info.Size() == 0 {
		return nil, errors.New("pattern file is empty")
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("pattern file too large: %d bytes (max %d)", info.Size(), MaxFileSize)
	}

	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read pattern file: %w", err)
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("pattern file too large: %d bytes (max %d)", len(data), MaxFileSize)
	}

	var of OverrideFile
	if err := yaml.Unmarshal(data, &of); err != nil {
		return nil, fmt.Errorf("parse pattern file: %w", err)
	}
	return FromOverrideFile(&of)
}

// FromOverrideFile validates the parsed file and compiles a catalog.
func FromOverrideFile(of *OverrideFile) (*Catalog, error) {
	if of == nil {
		return nil, errors.New("override file is nil")
	}
	if of.Version != SupportedVersion {
		return nil, fmt.Errorf("unsupported pattern file version %d (want %d)", of.Version, SupportedVersion)
	}

	overrides := make(map[string]string, len(of.Patterns))
	for i, p := range of.Patterns {
		if p.ID == "" {
			return nil, fmt.Errorf("pattern %d: missing id", i)
		}
		if p.Regex == "" {
			return nil, fmt.Errorf("pattern %d (%s): missing regex", i, p.ID)
		}
		if len(p.Regex) > MaxPatternLength {
			return nil, fmt.Errorf("pattern %d (%s): regex too long (%d bytes, max %d)", i, p.ID, len(p.Regex), MaxPatternLength)
		}
		if _, dup := overrides[p.ID]; dup {
			return nil, fmt.Errorf("pattern %d (%s): duplicate id", i, p.ID)
		}
		overrides[p.ID] = p.Regex
	}

	return WithOverrides(overrides)
}
