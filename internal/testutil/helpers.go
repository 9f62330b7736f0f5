package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Pantagrueliste/multi-saxon/pkg/pipeline/tei"
	"github.com/Pantagrueliste/multi-saxon/pkg/pipeline/xslt"
)

// FakeEngine is an xslt.Engine whose transform copies a fixed body to
// the destination file. FailuresFor schedules a number of failing
// attempts per source path before the transform starts succeeding,
// which drives retry behavior in tests.
type FakeEngine struct {
	Body        string
	CompileErr  error
	failures    map[string]int
	mu          sync.Mutex
	CompileCnt  int
	attemptCnts map[string]int
}

// NewFakeEngine returns an engine that writes body as the transform output.
func NewFakeEngine(body string) *FakeEngine {
	return &FakeEngine{
		Body:        body,
		failures:    make(map[string]int),
		attemptCnts: make(map[string]int),
	}
}

// FailuresFor makes the first n Apply calls for sourcePath fail.
func (e *FakeEngine) FailuresFor(sourcePath string, n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failures[sourcePath] = n
}

// Attempts reports how many Apply calls sourcePath received.
func (e *FakeEngine) Attempts(sourcePath string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.attemptCnts[sourcePath]
}

func (e *FakeEngine) Compile(ctx context.Context, stylesheetPath string) (xslt.CompiledTransform, error) {
	e.mu.Lock()
	e.CompileCnt++
	e.mu.Unlock()
	if e.CompileErr != nil {
		return nil, e.CompileErr
	}
	return &fakeTransform{engine: e}, nil
}

type fakeTransform struct {
	engine *FakeEngine
}

func (t *fakeTransform) Apply(ctx context.Context, sourcePath, destPath string) error {
	e := t.engine
	e.mu.Lock()
	e.attemptCnts[sourcePath]++
	remaining := e.failures[sourcePath]
	if remaining > 0 {
		e.failures[sourcePath] = remaining - 1
		e.mu.Unlock()
		return fmt.Errorf("transform rejected %s", sourcePath)
	}
	e.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.WriteFile(destPath, []byte(e.Body), 0o644)
}

// StubExtractor is a tei.Extractor returning the same metadata for
// every document.
type StubExtractor struct {
	Metadata tei.Metadata
	Err      error
}

func (s *StubExtractor) Extract(path string) (tei.Metadata, error) {
	return s.Metadata, s.Err
}

// WriteTEIFixture writes a minimal TEI document to dir/name and returns
// its path. Empty header fields are omitted from the document.
func WriteTEIFixture(t *testing.T, dir, name string, md tei.Metadata, body string) string {
	t.Helper()

	doc := "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<TEI xmlns=\"http://www.tei-c.org/ns/1.0\">\n  <teiHeader>\n    <fileDesc>\n      <titleStmt>\n"
	if md.Title != "" {
		doc += "        <title>" + md.Title + "</title>\n"
	}
	if md.Author != "" {
		doc += "        <author>" + md.Author + "</author>\n"
	}
	doc += "      </titleStmt>\n      <sourceDesc>\n        <biblFull>\n          <publicationStmt>\n"
	if md.Date != "" {
		doc += "            <date>" + md.Date + "</date>\n"
	}
	doc += "          </publicationStmt>\n        </biblFull>\n      </sourceDesc>\n    </fileDesc>\n    <profileDesc>\n      <langUsage>\n"
	if md.Language != "" {
		doc += "        <language ident=\"" + md.Language + "\"/>\n"
	}
	doc += "      </langUsage>\n    </profileDesc>\n  </teiHeader>\n  <text><body><p>" + body + "</p></body></text>\n</TEI>\n"

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

// WriteStylesheet writes a placeholder stylesheet file and returns its path.
func WriteStylesheet(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "transform.xsl")
	content := `<xsl:stylesheet xmlns:xsl="http://www.w3.org/1999/XSL/Transform" version="2.0"/>`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
