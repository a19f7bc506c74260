// Package defaults holds the default values shared by configuration, the
// API client and the renderer.
package defaults

import "time"

// Version is the current reflectsonar version. Release builds override it
// with -ldflags "-X github.com/reflectsonar/reflectsonar/pkg/defaults.Version=...".
var Version = "1.3.0"

// ToolName is used in the User-Agent, PDF metadata and trace resources.
const ToolName = "reflectsonar"

// UserAgent returns the User-Agent sent to SonarQube.
func UserAgent() string {
	return ToolName + "/" + Version
}

// ============================================================================
// API CLIENT
// ============================================================================

const (
	// PageSize is the page size for paged endpoints (server maximum).
	PageSize = 500

	// MaxPages caps paged fetches. SonarQube refuses to page past 10,000
	// results, which is 20 pages of 500.
	MaxPages = 20

	// Concurrency is the number of parallel excerpt and rule fetches.
	Concurrency = 8

	// Retries is the number of retries after a failed request.
	Retries = 3

	// Timeout is the per-request timeout.
	Timeout = 30 * time.Second

	// RetryDelay is the initial backoff between retries.
	RetryDelay = 500 * time.Millisecond

	// RetryMaxDelay caps any single backoff, including Retry-After.
	RetryMaxDelay = 30 * time.Second

	// ContextLines is the number of source lines shown around an issue.
	ContextLines = 3
)

// ============================================================================
// OUTPUT
// ============================================================================

const (
	// OutputPattern is the default PDF file name; %s is the project key.
	OutputPattern = "reflect_sonar_report_%s.pdf"

	// PaperSize is the default page format.
	PaperSize = "A4"

	// MetricsFile is empty by default: no textfile export.
	MetricsFile = ""
)

// Exit codes for the CLI.
const (
	ExitSuccess   = 0 // Report written
	ExitFailure   = 1 // Fetch or render failure
	ExitUserError = 2 // Invalid arguments or configuration
)
