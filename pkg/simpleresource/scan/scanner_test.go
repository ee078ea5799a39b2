package scan

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-resource/pkg/simpleresource"
	"github.com/tendant/simple-resource/pkg/simpleresource/format"
	"github.com/tendant/simple-resource/pkg/simpleresource/storage/memory"
)

func setupScanner(t *testing.T, files map[string]string) *Scanner {
	t.Helper()

	backend := memory.New()
	for name, content := range files {
		require.NoError(t, backend.Write(context.Background(), name, []byte(content)))
	}

	svc, err := simpleresource.New(
		simpleresource.WithBackend(backend),
		simpleresource.WithFormats(format.All()...),
	)
	require.NoError(t, err)
	return New(svc, nil)
}

func TestVerify(t *testing.T) {
	scanner := setupScanner(t, map[string]string{
		"good.json":   `{"k":"v"}`,
		"broken.json": `{oops`,
		"note.txt":    "not json",
	})

	result, err := scanner.Verify(context.Background(), simpleresource.FamilyJSON)
	require.NoError(t, err)

	assert.Equal(t, int64(2), result.TotalFound)
	assert.Equal(t, int64(1), result.TotalProcessed)
	assert.Equal(t, int64(1), result.TotalFailed)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "broken.json", result.Failures[0].Name)
	assert.Equal(t, "UnsupportedContent", result.Failures[0].Status)
}

func TestForEach(t *testing.T) {
	scanner := setupScanner(t, map[string]string{
		"a.csv": "h1,h2\nv1,v2\nv3,v4",
		"b.csv": "h\nx",
		"c.csv": "h\ny",
	})

	rows := map[string]int{}
	result, err := scanner.ForEach(context.Background(), simpleresource.FamilyCSV, func(ctx context.Context, r *Resource) error {
		if r.Name == "c.csv" {
			return errors.New("skip me")
		}
		rows[r.Name] = len(r.View.([]format.Row))
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"a.csv": 2, "b.csv": 1}, rows)
	assert.Equal(t, int64(2), result.TotalProcessed)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, Failure{Name: "c.csv", Status: "ProcessorFailed", Message: "skip me"}, result.Failures[0])
}

func TestScanDryRunAndProgress(t *testing.T) {
	files := map[string]string{}
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		files[name+".txt"] = strings.Repeat(name, 3)
	}
	scanner := setupScanner(t, files)

	var progress [][2]int64
	result, err := scanner.Scan(context.Background(), ScanOptions{
		Family:    simpleresource.FamilyPlain,
		DryRun:    true,
		BatchSize: 2,
		Processor: &funcProcessor{fn: func(context.Context, *Resource) error {
			t.Fatal("processor must not run in dry-run mode")
			return nil
		}},
		OnProgress: func(processed, total int64) {
			progress = append(progress, [2]int64{processed, total})
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(5), result.TotalProcessed)
	assert.Equal(t, [][2]int64{{2, 5}, {4, 5}, {5, 5}}, progress)
}

func TestScanUnknownFamily(t *testing.T) {
	scanner := setupScanner(t, nil)

	_, err := scanner.Verify(context.Background(), simpleresource.Family("xml"))
	assert.ErrorIs(t, err, simpleresource.ErrUnknownFamily)
}

func TestScanCancelled(t *testing.T) {
	scanner := setupScanner(t, map[string]string{"a.txt": "x"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := scanner.Verify(ctx, simpleresource.FamilyPlain)
	assert.ErrorIs(t, err, context.Canceled)
}
