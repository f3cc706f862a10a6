// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package redactors

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"reasonable-redactor/internal/observability"
	"reasonable-redactor/internal/resilience"
)

// StampLayout formats the batch start time used in output names
const StampLayout = "20060102-150405"

// OutputName returns the file name of the redacted copy of inputPath
func OutputName(inputPath, stamp string) string {
	base := filepath.Base(inputPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s-redacted-%s.pdf", base, stamp)
}

// OutputManager owns the output directory and writes files into it atomically
type OutputManager struct {
	outputDir string
	observer  *observability.StandardObserver
}

// NewOutputManager creates an OutputManager for outputDir
func NewOutputManager(outputDir string, observer *observability.StandardObserver) (*OutputManager, error) {
	if outputDir == "" {
		return nil, fmt.Errorf("output directory cannot be empty")
	}
	if observer == nil {
		observer = observability.Nop()
	}
	return &OutputManager{
		outputDir: filepath.Clean(outputDir),
		observer:  observer,
	}, nil
}

// OutputDir returns the output directory
func (om *OutputManager) OutputDir() string {
	return om.outputDir
}

// EnsureOutputDir creates the output directory if it doesn't exist
func (om *OutputManager) EnsureOutputDir() error {
	if info, err := os.Stat(om.outputDir); err == nil {
		if !info.IsDir() {
			return NewRedactionError(ErrorFileSystem, "output path exists but is not a directory",
				om.outputDir, om.GetComponentName(), nil)
		}
		return nil
	}
	if err := os.MkdirAll(om.outputDir, 0750); err != nil {
		return NewRedactionError(ErrorFileSystem, "failed to create output directory",
			om.outputDir, om.GetComponentName(), err)
	}
	return nil
}

// PathFor returns the destination path of the redacted copy of inputPath
func (om *OutputManager) PathFor(inputPath, stamp string) string {
	return filepath.Join(om.outputDir, OutputName(inputPath, stamp))
}

// WriteAtomic calls write with a temporary path next to dest and renames it
// to dest once write succeeds. On any failure the temporary file is removed
// and dest is left untouched.
func (om *OutputManager) WriteAtomic(dest string, write func(tmpPath string) error) (err error) {
	finishTiming := om.observer.StartTiming(om.GetComponentName(), "write_atomic", dest)
	defer func() {
		meta := map[string]interface{}{"dest": dest}
		if err != nil {
			meta["error"] = err.Error()
		}
		finishTiming(err == nil, meta)
	}()

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return NewRedactionError(ErrorFileSystem, "failed to create destination directory", dest, om.GetComponentName(), err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return NewRedactionError(ErrorFileSystem, "failed to create temporary file", dest, om.GetComponentName(), err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := write(tmpPath); err != nil {
		os.Remove(tmpPath)
		return NewRedactionError(ErrorSave, "failed to write output", dest, om.GetComponentName(), err)
	}
	rename := func(context.Context) error { return os.Rename(tmpPath, dest) }
	if err := resilience.RetryWithBackoff(context.Background(), resilience.FileRetryConfig(), rename); err != nil {
		os.Remove(tmpPath)
		return NewRedactionError(ErrorSave, "failed to move output into place", dest, om.GetComponentName(), err)
	}
	return nil
}

// GetComponentName returns the component name for observability
func (om *OutputManager) GetComponentName() string {
	return observability.ComponentOutputManager
}
