package history

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"screensnap/internal/encoder"
)

// HistoryManager lists and prunes captures in the save directory. The
// filesystem is the only index: every listing is a fresh directory scan, so
// there is no separate state that can drift from the actual files.
type HistoryManager struct {
	clock func() time.Time
}

// NewHistoryManager creates a history manager.
func NewHistoryManager() *HistoryManager {
	return &HistoryManager{clock: time.Now}
}

// NewHistoryManagerWithClock injects a time source for tests.
func NewHistoryManagerWithClock(clock func() time.Time) *HistoryManager {
	return &HistoryManager{clock: clock}
}

// namePattern matches the capture naming template for a given prefix:
// <prefix><yyyymmdd>_<hhmmss>[_<n>].png
func namePattern(prefix string) *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `\d{8}_\d{6}(_\d+)?\.png$`)
}

// List returns the captures under dir matching the naming pattern for prefix,
// newest first. Files that do not match the pattern are ignored entirely;
// cleanup will never touch them either.
func (hm *HistoryManager) List(dir, prefix string) ([]encoder.File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	pattern := namePattern(prefix)
	files := make([]encoder.File, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !pattern.MatchString(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, encoder.File{
			Path:      filepath.Join(dir, entry.Name()),
			CreatedAt: info.ModTime(),
			SizeBytes: info.Size(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].CreatedAt.After(files[j].CreatedAt)
	})
	return files, nil
}

// Stats reports the outcome of a cleanup batch.
type Stats struct {
	Deleted int
	Skipped int // retained by the policy
	Failed  int // selected for deletion but the delete failed
}

// Policy selects which of the listed captures get deleted. The input is
// ordered newest first.
type Policy interface {
	victims(files []encoder.File, now time.Time) []encoder.File
}

type deleteAll struct{}

func (deleteAll) victims(files []encoder.File, _ time.Time) []encoder.File {
	return files
}

// DeleteAll removes every capture.
func DeleteAll() Policy { return deleteAll{} }

type olderThan struct{ age time.Duration }

func (p olderThan) victims(files []encoder.File, now time.Time) []encoder.File {
	cutoff := now.Add(-p.age)
	var out []encoder.File
	for _, f := range files {
		if f.CreatedAt.Before(cutoff) {
			out = append(out, f)
		}
	}
	return out
}

// OlderThan removes captures created more than age ago.
func OlderThan(age time.Duration) Policy { return olderThan{age: age} }

type keepNewest struct{ n int }

func (p keepNewest) victims(files []encoder.File, _ time.Time) []encoder.File {
	if p.n < 0 || len(files) <= p.n {
		return nil
	}
	return files[p.n:]
}

// KeepNewest retains the n most recent captures and removes the rest.
func KeepNewest(n int) Policy { return keepNewest{n: n} }

// Cleanup applies policy to the captures under dir. Deletion is best-effort
// per file: a locked or vanished file is counted as failed and the batch
// continues rather than aborting.
func (hm *HistoryManager) Cleanup(dir, prefix string, policy Policy) (Stats, error) {
	files, err := hm.List(dir, prefix)
	if err != nil {
		return Stats{}, err
	}

	victims := policy.victims(files, hm.clock())
	doomed := make(map[string]bool, len(victims))
	for _, f := range victims {
		doomed[f.Path] = true
	}

	var stats Stats
	for _, f := range files {
		if !doomed[f.Path] {
			stats.Skipped++
			continue
		}
		if err := os.Remove(f.Path); err != nil {
			stats.Failed++
			continue
		}
		stats.Deleted++
	}
	return stats, nil
}
