// Package testutil provides mocks and fixtures for interfaces defined
// in pkg/pipeline and its subpackages.
package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Pantagrueliste/multi-saxon/pkg/pipeline"
	"github.com/Pantagrueliste/multi-saxon/pkg/pipeline/tei"
	"github.com/Pantagrueliste/multi-saxon/pkg/pipeline/xslt"
)

// MockEngine provides a mock implementation of xslt.Engine. Configure
// expectations with testify/mock (e.g. .On("Compile", ...).Return(...)).
type MockEngine struct {
	mock.Mock
}

// Compile mocks the Compile method.
func (m *MockEngine) Compile(ctx context.Context, stylesheetPath string) (xslt.CompiledTransform, error) {
	args := m.Called(ctx, stylesheetPath)
	ct, _ := args.Get(0).(xslt.CompiledTransform)
	return ct, args.Error(1)
}

// MockCompiledTransform provides a mock implementation of
// xslt.CompiledTransform.
type MockCompiledTransform struct {
	mock.Mock
}

// Apply mocks the Apply method.
func (m *MockCompiledTransform) Apply(ctx context.Context, sourcePath, destPath string) error {
	args := m.Called(ctx, sourcePath, destPath)
	return args.Error(0)
}

// MockExtractor provides a mock implementation of tei.Extractor.
type MockExtractor struct {
	mock.Mock
}

// Extract mocks the Extract method.
func (m *MockExtractor) Extract(path string) (tei.Metadata, error) {
	args := m.Called(path)
	md, _ := args.Get(0).(tei.Metadata)
	return md, args.Error(1)
}

// MockHooks provides a mock implementation of pipeline.Hooks.
type MockHooks struct {
	mock.Mock
}

// OnFileStatusUpdate mocks the OnFileStatusUpdate method.
func (m *MockHooks) OnFileStatusUpdate(path string, status pipeline.Status, message string, duration time.Duration) error {
	args := m.Called(path, status, message, duration)
	return args.Error(0)
}

// OnProgress mocks the OnProgress method.
func (m *MockHooks) OnProgress(completed, total int64) error {
	args := m.Called(completed, total)
	return args.Error(0)
}

// OnHeartbeat mocks the OnHeartbeat method.
func (m *MockHooks) OnHeartbeat() error {
	args := m.Called()
	return args.Error(0)
}

// OnRunComplete mocks the OnRunComplete method.
func (m *MockHooks) OnRunComplete(report pipeline.Report) error {
	args := m.Called(report)
	return args.Error(0)
}
