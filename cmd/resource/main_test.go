package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-resource/pkg/simpleresource"
	"github.com/tendant/simple-resource/pkg/simpleresource/format"
	"github.com/tendant/simple-resource/pkg/simpleresource/storage/memory"
)

func newTestCLI(t *testing.T) (*CLI, *bytes.Buffer, *memory.Backend) {
	t.Helper()

	backend := memory.New()
	svc, err := simpleresource.New(
		simpleresource.WithBackend(backend),
		simpleresource.WithFormats(format.All()...),
	)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	return &CLI{svc: svc, out: out, in: strings.NewReader("")}, out, backend
}

func TestParseArgs(t *testing.T) {
	positional, opts := parseArgs([]string{"create", "csv", "a.csv", "--content=h=1\nv", "--json"})

	assert.Equal(t, []string{"create", "csv", "a.csv"}, positional)
	assert.True(t, opts.useJSON)
	assert.True(t, opts.hasContent)
	assert.Equal(t, "h=1\nv", opts.content)
}

func TestCLILifecycle(t *testing.T) {
	cli, out, _ := newTestCLI(t)
	ctx := context.Background()

	require.NoError(t, cli.Run(ctx, []string{"create", "csv", "a.csv", "--content=h1,h2\nv1,v2"}))
	assert.Equal(t, "file saved successfully\n", out.String())

	out.Reset()
	require.NoError(t, cli.Run(ctx, []string{"list", "csv"}))
	assert.Contains(t, out.String(), "a.csv")
	assert.Contains(t, out.String(), "Total: 1")

	out.Reset()
	require.NoError(t, cli.Run(ctx, []string{"get", "csv", "a.csv"}))
	assert.JSONEq(t, `[{"h1":"v1","h2":"v2"}]`, out.String())

	out.Reset()
	require.NoError(t, cli.Run(ctx, []string{"delete", "csv", "a.csv", "--json"}))
	assert.JSONEq(t, `{"message":"file deleted successfully"}`, out.String())

	err := cli.Run(ctx, []string{"delete", "csv", "a.csv"})
	require.Error(t, err)
	assert.Equal(t, 4, exitCode(err))
}

func TestCLIWriteFromFileAndStdin(t *testing.T) {
	cli, out, backend := newTestCLI(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"k":"v"}`), 0644))

	require.NoError(t, cli.Run(ctx, []string{"create", "json", "doc.json", "--file=" + path}))

	cli.in = strings.NewReader(`{"k":"w"}`)
	require.NoError(t, cli.Run(ctx, []string{"update", "json", "doc.json", "--file=-"}))

	data, err := backend.Read(ctx, "doc.json")
	require.NoError(t, err)
	assert.Equal(t, `{"k":"w"}`, string(data))

	out.Reset()
	require.NoError(t, cli.Run(ctx, []string{"get", "plain", "doc.json"}))
	assert.Equal(t, "{\"k\":\"w\"}\n", out.String())
}

func TestCLIErrors(t *testing.T) {
	cli, _, _ := newTestCLI(t)
	ctx := context.Background()

	err := cli.Run(ctx, []string{"list"})
	assert.Error(t, err)

	err = cli.Run(ctx, []string{"list", "xml"})
	assert.ErrorIs(t, err, simpleresource.ErrUnknownFamily)

	err = cli.Run(ctx, []string{"frobnicate", "csv"})
	assert.Error(t, err)

	err = cli.Run(ctx, []string{"create", "csv", "a.csv", "--content=onlyheader"})
	assert.Equal(t, 5, exitCode(err))

	err = cli.Run(ctx, []string{"create", "csv", "a.csv"})
	assert.Equal(t, 2, exitCode(err))

	require.NoError(t, cli.Run(ctx, []string{"create", "plain", "a.txt", "--content=x"}))
	err = cli.Run(ctx, []string{"create", "plain", "a.txt", "--content=y"})
	assert.Equal(t, 3, exitCode(err))

	assert.Equal(t, 1, exitCode(errors.New("boom")))
}

func TestCLIVerify(t *testing.T) {
	cli, out, backend := newTestCLI(t)
	ctx := context.Background()

	require.NoError(t, backend.Write(ctx, "good.json", []byte(`[1,2]`)))
	require.NoError(t, backend.Write(ctx, "bad.json", []byte(`[1,`)))

	require.NoError(t, cli.Run(ctx, []string{"verify", "json", "--json"}))

	var result struct {
		TotalFound  int64 `json:"total_found"`
		TotalFailed int64 `json:"total_failed"`
		Failures    []struct {
			Name string `json:"name"`
		} `json:"failures"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, int64(2), result.TotalFound)
	assert.Equal(t, int64(1), result.TotalFailed)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "bad.json", result.Failures[0].Name)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short", "a.csv", 30, "a.csv"},
		{"exact", "abcde", 5, "abcde"},
		{"ascii", "abcdefghij", 8, "abcde..."},
		{"multibyte", "résumé-über-straße.csv", 10, "résumé-..."},
		{"tiny limit", "日本語ファイル", 2, "日本"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.input, tt.maxLen)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
