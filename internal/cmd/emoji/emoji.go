// Package emoji provides symbol constants for CLI output.
package emoji

// Symbol constants for CLI output provide a consistent visual language across commands.
const (
	// Success represents successful completion of an operation.
	Success = "✓"

	// Error represents failures.
	Error = "✗"

	// Stop represents shutdowns and stop signals.
	Stop = "■"

	// Globe marks the explorer's address when a server starts.
	Globe = "🌍"
)
