// Package emoji provides symbol constants for CLI output.
package emoji

// Status symbols shared by every command.
const (
	// Success marks a completed operation or a loaded dataset.
	Success = "✓"

	// Error marks a failure.
	Error = "✗"

	// Stop marks a shutdown.
	Stop = "✗"

	// Warning marks a non-fatal problem such as a skipped row.
	Warning = "!"

	// Optional marks an optional dataset that is absent.
	Optional = "-"

	// Rocket marks a server start.
	Rocket = "🚀"
)
