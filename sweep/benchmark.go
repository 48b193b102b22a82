package sweep

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrNoBenchmarks reports that no runnable benchmark remained after
// discovery and filtering. It is sweep-fatal.
var ErrNoBenchmarks = errors.New("no valid benchmarks found")

const benchmarkExt = ".x"

// DiscoverBenchmarks enumerates the runnable workloads in dir: every
// *.x file, named without its extension, sorted. The valid benchmark
// set is discovered from the inputs directory, not configured.
func DiscoverBenchmarks(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading benchmark directory %s: %w", dir, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), benchmarkExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), benchmarkExt))
	}
	sort.Strings(names)
	return names, nil
}

// FilterBenchmarks intersects a requested subset with the discovered
// set, preserving the requested order. An empty request keeps every
// discovered benchmark. Requested names that were not discovered are
// logged and dropped; an empty intersection is ErrNoBenchmarks.
func FilterBenchmarks(available, requested []string) ([]string, error) {
	if len(requested) == 0 {
		if len(available) == 0 {
			return nil, ErrNoBenchmarks
		}
		return available, nil
	}
	known := make(map[string]bool, len(available))
	for _, name := range available {
		known[name] = true
	}
	var kept []string
	for _, name := range requested {
		if known[name] {
			kept = append(kept, name)
		} else {
			logrus.Warnf("Requested benchmark %q not found, skipping", name)
		}
	}
	if len(kept) == 0 {
		return nil, ErrNoBenchmarks
	}
	return kept, nil
}

// BenchmarkPath resolves a benchmark name back to its input file.
func BenchmarkPath(dir, name string) string {
	return filepath.Join(dir, name+benchmarkExt)
}
