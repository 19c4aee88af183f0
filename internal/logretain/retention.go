// Copyright 2025 YUNIKKAI
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logretain manages time-bounded log retention: a dated log path
// for the current run, and a best-effort sweep of files past the
// retention window.
package logretain

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// DefaultPattern matches the daily production logs.
	DefaultPattern = "production_*.log"

	// DefaultMaxAgeDays is the retention window.
	DefaultMaxAgeDays = 7
)

// PruneResult reports what a retention sweep did.
type PruneResult struct {
	// Deleted is the number of files removed
	Deleted int

	// Failed is the number of eligible files whose removal failed
	Failed int

	// Examined is the number of files that matched the pattern
	Examined int
}

// PreparedLogPath returns the log path for the given date, formatted as
// baseDir/production_YYYY-MM-DD.log, creating baseDir if missing. Calling
// it twice within the same calendar day returns the identical path.
func PreparedLogPath(baseDir string, now time.Time) (string, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}
	name := fmt.Sprintf("production_%s.log", now.Format("2006-01-02"))
	return filepath.Join(baseDir, name), nil
}

// Prune deletes files in baseDir that match pattern and whose age strictly
// exceeds maxAgeDays relative to now. A file exactly maxAgeDays old is
// retained, so the currently-active daily file is never swept. Per-file
// removal failures do not abort the sweep; they are counted in the result.
// Running Prune twice with no new files is a no-op on the second call.
func Prune(baseDir, pattern string, maxAgeDays int, now time.Time) (PruneResult, error) {
	var res PruneResult

	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return res, nil
		}
		return res, fmt.Errorf("failed to enumerate %s: %w", baseDir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		matched, err := doublestar.Match(pattern, entry.Name())
		if err != nil {
			return res, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		if !matched {
			continue
		}
		res.Examined++

		info, err := entry.Info()
		if err != nil {
			res.Failed++
			continue
		}

		// Age in whole days: a file exactly maxAgeDays old does not
		// strictly exceed the window and is kept.
		ageDays := int(now.Sub(info.ModTime()).Hours() / 24)
		if ageDays <= maxAgeDays {
			continue
		}

		if err := os.Remove(filepath.Join(baseDir, entry.Name())); err != nil {
			res.Failed++
			continue
		}
		res.Deleted++
	}

	return res, nil
}
