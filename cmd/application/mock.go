package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/cognates"
	"github.com/agentstation/cognates/pkg/scene"
)

// Mock is an Application for tests. Unset funcs fall back to defaults.
type Mock struct {
	ClientFunc       func() (cognates.Client, error)
	ExplorerFunc     func(opts ...cognates.Option) (cognates.Explorer, error)
	MapOptionsFunc   func() scene.MapOptions
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
}

var _ Application = (*Mock)(nil)

// Client implements Application.
func (m *Mock) Client() (cognates.Client, error) {
	if m.ClientFunc != nil {
		return m.ClientFunc()
	}
	return nil, nil
}

// Explorer implements Application.
func (m *Mock) Explorer(opts ...cognates.Option) (cognates.Explorer, error) {
	if m.ExplorerFunc != nil {
		return m.ExplorerFunc(opts...)
	}
	return cognates.New(opts...)
}

// MapOptions implements Application.
func (m *Mock) MapOptions() scene.MapOptions {
	if m.MapOptionsFunc != nil {
		return m.MapOptionsFunc()
	}
	return scene.DefaultMapOptions()
}

// Logger implements Application.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	l := zerolog.Nop()
	return &l
}

// OutputFormat implements Application.
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "json"
}

// Version implements Application.
func (m *Mock) Version() string { return "test" }

// Commit implements Application.
func (m *Mock) Commit() string { return "none" }

// Date implements Application.
func (m *Mock) Date() string { return "unknown" }

// BuiltBy implements Application.
func (m *Mock) BuiltBy() string { return "test" }
