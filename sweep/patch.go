package sweep

import (
	"errors"
	"fmt"
	"os"
	"regexp"
)

// ErrMarkerNotFound reports that a parameter marker could not be
// located in the simulator source. A silent no-op here would make
// every subsequent measurement for the configuration wrong, so the
// patch fails loudly instead.
var ErrMarkerNotFound = errors.New("parameter marker not found")

// geometry markers in cache.h, one #define per logical line.
var geometryMarkers = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"D_CACHE_NUM_SETS", regexp.MustCompile(`#define D_CACHE_NUM_SETS\s+[^\n]+`)},
	{"D_CACHE_ASSOC", regexp.MustCompile(`#define D_CACHE_ASSOC\s+[^\n]+`)},
	{"I_CACHE_NUM_SETS", regexp.MustCompile(`#define I_CACHE_NUM_SETS\s+[^\n]+`)},
	{"I_CACHE_ASSOC", regexp.MustCompile(`#define I_CACHE_ASSOC\s+[^\n]+`)},
	{"CACHE_LINE_SIZE", regexp.MustCompile(`#define CACHE_LINE_SIZE\s+[^\n]+`)},
}

// d_cache constructor patterns in cache.cpp. The pointer form is
// current; the object form is kept as a fallback for reverted sources.
var (
	dCachePointerPattern = regexp.MustCompile(`Cache\s*\*\s*d_cache\s*=\s*new\s+Cache\([^)]*POLICY_\w+[^)]*\);`)
	dCacheObjectPattern  = regexp.MustCompile(`Cache\s+d_cache\s*\([^)]*POLICY_\w+[^)]*\);`)
)

// ApplyGeometry rewrites the compile-time cache parameters in the
// header at path to match cfg, preserving all other content. Every
// marker must be present; a missing one returns ErrMarkerNotFound
// wrapped with the marker name.
func ApplyGeometry(path string, cfg Config) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	values := map[string]int{
		"D_CACHE_NUM_SETS": cfg.DCacheNumSets,
		"D_CACHE_ASSOC":    cfg.Associativity,
		"I_CACHE_NUM_SETS": cfg.ICacheNumSets,
		"I_CACHE_ASSOC":    cfg.ICacheAssoc,
		"CACHE_LINE_SIZE":  cfg.LineSizeBytes,
	}

	text := string(content)
	for _, marker := range geometryMarkers {
		if !marker.pattern.MatchString(text) {
			return fmt.Errorf("%w: %s in %s", ErrMarkerNotFound, marker.name, path)
		}
		replacement := fmt.Sprintf("#define %s %d", marker.name, values[marker.name])
		text = marker.pattern.ReplaceAllString(text, replacement)
	}

	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ApplyPolicy rewrites the D-cache constructor in the source file at
// path to use the named replacement policy, then re-reads the file to
// verify the policy enum took effect. Unknown policy names and a
// missing constructor line both fail loudly.
func ApplyPolicy(path, policy string) error {
	enum, ok := policyEnums[policy]
	if !ok {
		return fmt.Errorf("unknown replacement policy %q", policy)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	text := string(content)

	replacement := fmt.Sprintf(
		"Cache* d_cache = new Cache(D_CACHE_NUM_SETS, D_CACHE_ASSOC, CACHE_LINE_SIZE, L1_CACHE_MISS_PENALTY, %s);", enum)
	switch {
	case dCachePointerPattern.MatchString(text):
		text = dCachePointerPattern.ReplaceAllString(text, replacement)
	case dCacheObjectPattern.MatchString(text):
		replacement = fmt.Sprintf(
			"Cache d_cache(D_CACHE_NUM_SETS, D_CACHE_ASSOC, CACHE_LINE_SIZE, L1_CACHE_MISS_PENALTY, %s);", enum)
		text = dCacheObjectPattern.ReplaceAllString(text, replacement)
	default:
		return fmt.Errorf("%w: d_cache constructor in %s", ErrMarkerNotFound, path)
	}

	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	// Read back and confirm the enum is present. Catches a partial
	// write or a pattern that matched something other than the
	// constructor.
	written, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("verifying %s: %w", path, err)
	}
	if !regexp.MustCompile(regexp.QuoteMeta(enum)).Match(written) {
		return fmt.Errorf("policy %s not found in %s after update", enum, path)
	}
	return nil
}
