package sweep

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sweepHarness is a miniature simulator project: a source tree with
// patchable cache.h/cache.cpp, a build script that regenerates the
// "binary" (a shell script reading the patched sources), and
// benchmark inputs.
type sweepHarness struct {
	sourceDir string
	inputDir  string
	exe       string
	opts      Options
}

func newSweepHarness(t *testing.T, benchmarks ...string) *sweepHarness {
	t.Helper()
	root := t.TempDir()
	sourceDir := filepath.Join(root, "src")
	inputDir := filepath.Join(root, "inputs")
	require.NoError(t, os.MkdirAll(sourceDir, 0o755))
	require.NoError(t, os.MkdirAll(inputDir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(sourceDir, "cache.h"), []byte(sampleHeader), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sourceDir, "cache.cpp"), []byte(sampleSource), 0o644))
	for _, name := range benchmarks {
		require.NoError(t, os.WriteFile(filepath.Join(inputDir, name+".x"), []byte("bin"), 0o644))
	}

	exe := filepath.Join(root, "sim")

	// The fake simulator reports IPC and miss counts keyed off the
	// geometry and policy baked into the source tree at build time.
	simBody := fmt.Sprintf(`cat > /dev/null
sets=$(sed -n 's/#define D_CACHE_NUM_SETS //p' %[1]s/cache.h)
policy=$(sed -n '/d_cache/s/.*POLICY_\([A-Z]*\).*/\1/p' %[1]s/cache.cpp)
case "$sets/$policy" in
  64/LRU)    ipc=0.75; misses=40 ;;
  128/LRU)   ipc=0.92; misses=20 ;;
  */DIP)     ipc=0.78; misses=36 ;;
  */DRRIP)   ipc=0.81; misses=30 ;;
  */EAF)     ipc=0.84; misses=25 ;;
  *)         ipc=0.50; misses=50 ;;
esac
echo "Cycles: $((1000 + misses))"
echo "FetchedInstr: 900"
echo "RetiredInstr: 850"
echo "IPC: $ipc"
echo "I-cache accesses: 900"
echo "I-cache hits: 890"
echo "I-cache misses: 10"
echo "I-cache hit rate: 0.9889"
echo "I-cache miss rate: 0.0111"
echo "D-cache accesses: 1000"
echo "D-cache reads: 800"
echo "D-cache writes: 200"
echo "D-cache hits: $((1000 - misses))"
echo "D-cache misses: $misses"
echo "D-cache hit rate: 0.9"
echo "D-cache miss rate: 0.1"
`, sourceDir)
	simTemplate := writeScript(t, root, "sim.tmpl", simBody)

	clean := writeScript(t, root, "clean.sh", "rm -f "+exe+"\n")
	build := writeScript(t, root, "build.sh", "cp "+simTemplate+" "+exe+"\nchmod +x "+exe+"\n")

	return &sweepHarness{
		sourceDir: sourceDir,
		inputDir:  inputDir,
		exe:       exe,
		opts: Options{
			InputDir:   inputDir,
			ResultsDir: filepath.Join(root, "results"),
			BaseName:   "sweep.csv",
			Builder: &Builder{
				SourceDir:  sourceDir,
				WorkDir:    root,
				CleanCmd:   []string{clean},
				BuildCmd:   []string{build},
				Executable: exe,
			},
			Runner:  &Runner{Executable: exe, WorkDir: root, Timeout: 10 * time.Second},
			Verbose: true,
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func column(records [][]string, name string) []string {
	idx := -1
	for i, col := range records[0] {
		if col == name {
			idx = i
			break
		}
	}
	var values []string
	for _, row := range records[1:] {
		values = append(values, row[idx])
	}
	return values
}

func TestRunGeometrySweep_EndToEnd(t *testing.T) {
	// GIVEN a two-configuration space and two benchmarks
	h := newSweepHarness(t, "fib", "sort")
	h.opts.Space = Space{
		DCacheNumSets:   []int{64, 128},
		LineSizesBytes:  []int{32},
		Associativities: []int{4},
	}

	// WHEN the sweep runs
	path, err := RunGeometrySweep(context.Background(), h.opts)
	require.NoError(t, err)

	// THEN exactly 4 rows land in a timestamped file with the derived
	// sizes 8KB and 16KB
	records := readCSV(t, path)
	require.Len(t, records, 5)
	assert.Equal(t, GeometryColumns, records[0])
	assert.Equal(t, []string{"8", "8", "16", "16"}, column(records, "d_cache_size_kb"))
	assert.Equal(t, []string{"0.75", "0.75", "0.92", "0.92"}, column(records, "ipc"))
	assert.Equal(t, []string{"fib", "sort", "fib", "sort"}, column(records, "benchmark"))
}

func TestRunGeometrySweep_RequestedSubset(t *testing.T) {
	h := newSweepHarness(t, "fib", "sort")
	h.opts.Space = Space{DCacheNumSets: []int{64}, LineSizesBytes: []int{32}, Associativities: []int{4}}
	h.opts.Benchmarks = []string{"sort"}

	path, err := RunGeometrySweep(context.Background(), h.opts)
	require.NoError(t, err)

	records := readCSV(t, path)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"sort"}, column(records, "benchmark"))
}

func TestRunGeometrySweep_NoBenchmarksIsFatal(t *testing.T) {
	h := newSweepHarness(t) // empty inputs directory
	h.opts.Space = Space{DCacheNumSets: []int{64}, LineSizesBytes: []int{32}, Associativities: []int{4}}

	_, err := RunGeometrySweep(context.Background(), h.opts)
	assert.ErrorIs(t, err, ErrNoBenchmarks)
}

func TestRunGeometrySweep_BrokenBuildSkipsConfigurationOnly(t *testing.T) {
	// GIVEN a build that always fails
	h := newSweepHarness(t, "fib")
	h.opts.Space = Space{DCacheNumSets: []int{64, 128}, LineSizesBytes: []int{32}, Associativities: []int{4}}
	h.opts.Builder.BuildCmd = []string{"/bin/sh", "-c", "exit 1"}

	// WHEN the sweep runs
	_, err := RunGeometrySweep(context.Background(), h.opts)

	// THEN the aggregate failure is zero collected results
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestRunPolicySweep_EndToEnd(t *testing.T) {
	h := newSweepHarness(t, "fib")

	path, err := RunPolicySweep(context.Background(), h.opts)
	require.NoError(t, err)

	records := readCSV(t, path)
	require.Len(t, records, 5) // header + one row per policy
	assert.Equal(t, PolicyColumns, records[0])
	assert.Equal(t, []string{"LRU", "DIP", "DRRIP", "EAF"}, column(records, "policy"))

	// MPKI derives from the patched policy's miss count: 25/850*1000.
	mpki := column(records, "mpki")
	assert.Contains(t, mpki[3], "29.4117")
}

func TestRunPolicySweep_MissingPolicyMarkerSkipsPolicy(t *testing.T) {
	h := newSweepHarness(t, "fib")
	require.NoError(t, os.WriteFile(filepath.Join(h.sourceDir, "cache.cpp"), []byte("// gutted\n"), 0o644))

	_, err := RunPolicySweep(context.Background(), h.opts)
	assert.ErrorIs(t, err, ErrNoResults)
}
