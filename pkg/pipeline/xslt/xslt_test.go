package xslt_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pantagrueliste/multi-saxon/pkg/pipeline/xslt"
)

// writeProcessorScript installs a shell script standing in for a
// Saxon-style processor: it parses the -s:/-o: arguments and writes a
// fixed transformation of the source to the destination.
func writeProcessorScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script processor stand-in requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "fake-saxon")
	script := "#!/bin/sh\n" + body
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func writeStylesheet(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transform.xsl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validSheet = `<xsl:stylesheet xmlns:xsl="http://www.w3.org/1999/XSL/Transform" version="2.0"/>`

func TestCompileValidConfiguration(t *testing.T) {
	proc := writeProcessorScript(t, "exit 0\n")
	sheet := writeStylesheet(t, validSheet)

	eng := xslt.NewExecEngine([]string{proc}, nil)
	ct, err := eng.Compile(context.Background(), sheet)
	require.NoError(t, err)
	assert.NotNil(t, ct)
}

func TestCompileEmptyCommand(t *testing.T) {
	eng := xslt.NewExecEngine(nil, nil)
	_, err := eng.Compile(context.Background(), writeStylesheet(t, validSheet))
	require.Error(t, err)
	assert.ErrorIs(t, err, xslt.ErrCompile)
}

func TestCompileMissingProcessor(t *testing.T) {
	eng := xslt.NewExecEngine([]string{"definitely-not-a-real-processor-binary"}, nil)
	_, err := eng.Compile(context.Background(), writeStylesheet(t, validSheet))
	require.Error(t, err)
	assert.ErrorIs(t, err, xslt.ErrCompile)
}

func TestCompileMissingStylesheet(t *testing.T) {
	proc := writeProcessorScript(t, "exit 0\n")
	eng := xslt.NewExecEngine([]string{proc}, nil)
	_, err := eng.Compile(context.Background(), filepath.Join(t.TempDir(), "nope.xsl"))
	require.Error(t, err)
	assert.ErrorIs(t, err, xslt.ErrCompile)
}

func TestCompileEmptyStylesheet(t *testing.T) {
	proc := writeProcessorScript(t, "exit 0\n")
	eng := xslt.NewExecEngine([]string{proc}, nil)
	_, err := eng.Compile(context.Background(), writeStylesheet(t, "   \n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, xslt.ErrCompile)
}

func TestApplyWritesDestination(t *testing.T) {
	proc := writeProcessorScript(t, `
for a in "$@"; do
  case "$a" in
    -s:*) src=${a#-s:} ;;
    -o:*) out=${a#-o:} ;;
  esac
done
cat "$src" > "$out"
`)
	sheet := writeStylesheet(t, validSheet)
	src := filepath.Join(t.TempDir(), "doc.xml")
	require.NoError(t, os.WriteFile(src, []byte("<TEI/>"), 0o644))
	dst := filepath.Join(t.TempDir(), "doc.txt")

	eng := xslt.NewExecEngine([]string{proc}, nil)
	ct, err := eng.Compile(context.Background(), sheet)
	require.NoError(t, err)

	require.NoError(t, ct.Apply(context.Background(), src, dst))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "<TEI/>", string(data))
}

func TestApplyPropagatesStderrOnFailure(t *testing.T) {
	proc := writeProcessorScript(t, "echo 'SXXP0003: error reported by XML parser' >&2\nexit 2\n")
	sheet := writeStylesheet(t, validSheet)

	eng := xslt.NewExecEngine([]string{proc}, nil)
	ct, err := eng.Compile(context.Background(), sheet)
	require.NoError(t, err)

	err = ct.Apply(context.Background(), "in.xml", filepath.Join(t.TempDir(), "out.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, xslt.ErrApply)
	assert.Contains(t, err.Error(), "SXXP0003")
}

func TestApplyCancelledContext(t *testing.T) {
	proc := writeProcessorScript(t, "sleep 10\n")
	sheet := writeStylesheet(t, validSheet)

	eng := xslt.NewExecEngine([]string{proc}, nil)
	ct, err := eng.Compile(context.Background(), sheet)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = ct.Apply(ctx, "in.xml", filepath.Join(t.TempDir(), "out.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
