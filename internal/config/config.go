// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the settings file looked up next to the in/out folders
const DefaultFileName = "config.json"

// LoadResult carries the outcome of reading a settings file. Settings is
// always fully populated; Fallback reports that the file existed but could not
// be used, in which case Err describes why.
type LoadResult struct {
	Settings Settings
	Source   string
	Fallback bool
	Err      error
}

// Found reports whether the settings came from a file.
func (lr LoadResult) Found() bool {
	return lr.Source != "" && !lr.Fallback
}

// Load reads the settings file at path. A missing file yields the defaults
// without error. A file that cannot be read or parsed also yields the defaults
// but marks the result as a fallback so callers can report it.
func Load(path string) LoadResult {
	result := LoadResult{Settings: Defaults()}
	if path == "" {
		return result
	}

	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return result
		}
		result.Fallback = true
		result.Err = fmt.Errorf("error reading config file: %w", err)
		return result
	}

	overrides, err := parseOverrides(cleanPath, data)
	if err != nil {
		result.Fallback = true
		result.Err = fmt.Errorf("error parsing config file: %w", err)
		return result
	}

	result.Settings = Defaults().Merge(overrides)
	result.Source = cleanPath
	return result
}

// parseOverrides decodes the file by extension. YAML files go through yaml.v3;
// everything else is treated as JSON. Unknown keys are ignored by both.
func parseOverrides(path string, data []byte) (Overrides, error) {
	var o Overrides
	if len(bytes.TrimSpace(data)) == 0 {
		return o, fmt.Errorf("empty settings file")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var shape map[string]interface{}
		if err := yaml.Unmarshal(data, &shape); err != nil {
			return o, err
		}
		if shape == nil {
			return o, fmt.Errorf("settings file is not a mapping")
		}
		if err := yaml.Unmarshal(data, &o); err != nil {
			return o, err
		}
	default:
		var shape map[string]json.RawMessage
		if err := json.Unmarshal(data, &shape); err != nil {
			return o, err
		}
		if err := json.Unmarshal(data, &o); err != nil {
			return o, err
		}
	}
	return o, nil
}

// Save writes the settings as indented JSON (or YAML for .yaml/.yml paths).
// The file is written to a temporary sibling and renamed into place.
func Save(path string, s Settings) error {
	if path == "" {
		return fmt.Errorf("config path cannot be empty")
	}
	s = s.Normalize()

	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(s)
	default:
		data, err = json.MarshalIndent(s, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("error encoding settings: %w", err)
	}

	cleanPath := filepath.Clean(path)
	dir := filepath.Dir(cleanPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.tmp")
	if err != nil {
		return fmt.Errorf("error creating temporary config file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing config file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("error setting config file permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error closing config file: %w", err)
	}
	if err := os.Rename(tmpName, cleanPath); err != nil {
		return fmt.Errorf("error replacing config file: %w", err)
	}
	return nil
}
