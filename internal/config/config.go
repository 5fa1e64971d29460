package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultTimeout is the per-request timeout for service calls.
	// Analyze uploads whole documents, so this is generous compared to
	// a typical JSON API call.
	DefaultTimeout = 60 * time.Second

	// DefaultPollInterval is how often training status is re-checked
	// while waiting for a model to leave the creating state.
	DefaultPollInterval = 5 * time.Second

	// DefaultPollTimeout bounds the total time spent waiting for
	// training to finish. Custom models on small training sets usually
	// train within a few minutes.
	DefaultPollTimeout = 10 * time.Minute

	// DefaultBatchSize is the number of documents analyzed concurrently
	// when multiple files are given. The service throttles per-account,
	// so this stays conservative.
	DefaultBatchSize = 4

	// DefaultMaxBodySize limits how much of a service response is read.
	// Analyze results for large documents stay well under this.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// DefaultMaxUploadSize is the largest document accepted for analyze.
	// This mirrors the service-side limit so oversized files fail fast,
	// locally, before any upload.
	DefaultMaxUploadSize = 50 * 1024 * 1024 // 50MB

	// AppName is the application name used for XDG directory paths.
	AppName = "formscan"

	// EnvAPIKey is the environment variable holding the service API key.
	EnvAPIKey = "FORMSCAN_API_KEY"

	// EnvEndpoint is the environment variable holding the service endpoint,
	// e.g. "https://westus2.api.cognitive.example.com".
	EnvEndpoint = "FORMSCAN_ENDPOINT"

	// DefaultUserAgent identifies formscan in service requests, which
	// helps when correlating client logs with service-side request logs.
	DefaultUserAgent = "formscan/1.0 (+https://github.com/formscan/formscan)"
)

// Config holds all configuration options for formscan.
// It is populated from CLI flags, the environment, and the optional
// .formscan file, then passed through the application by value reference
// rather than global state.
type Config struct {
	// Endpoint is the base URL of the form-understanding service.
	Endpoint string

	// APIKey authenticates every service call.
	APIKey string

	// Timeout is the per-request timeout for service calls.
	Timeout time.Duration

	// PollInterval is the delay between training status checks
	// when waiting for training to complete.
	PollInterval time.Duration

	// PollTimeout bounds the total wait for training completion.
	PollTimeout time.Duration

	// BatchSize is the number of concurrent analyze uploads when
	// multiple documents are given.
	BatchSize int

	// Verbose enables slog.LevelDebug output.
	Verbose bool

	// ConfigFilePath is the path to the configuration file. If empty,
	// .formscan is searched in the current and then home directory.
	ConfigFilePath string

	// JSONReport selects JSON report output.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown report output.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile, when set, writes the report to this path instead of stdout.
	ReportFile string

	// XLSXFile, when set, additionally exports analysis results to this
	// xlsx workbook.
	XLSXFile string

	// DBDir is the directory of the analysis history database.
	// Defaults to the XDG data directory.
	DBDir string

	// NoSave disables recording analyze runs in the history database.
	NoSave bool

	// MaxBodySize caps how many bytes of a service response are read.
	MaxBodySize int64

	// MaxUploadSize caps the size of documents accepted for analyze.
	MaxUploadSize int64

	// UserAgent is sent with every service request.
	UserAgent string
}

// NewConfig creates a Config with default values and credentials taken
// from the environment. CLI flags may override any field afterwards.
func NewConfig() *Config {
	return &Config{
		Endpoint:      os.Getenv(EnvEndpoint),
		APIKey:        os.Getenv(EnvAPIKey),
		Timeout:       DefaultTimeout,
		PollInterval:  DefaultPollInterval,
		PollTimeout:   DefaultPollTimeout,
		BatchSize:     DefaultBatchSize,
		MaxBodySize:   DefaultMaxBodySize,
		MaxUploadSize: DefaultMaxUploadSize,
		UserAgent:     DefaultUserAgent,
	}
}

// XDGDataDir returns the XDG data directory for formscan.
// On Linux: ~/.local/share/formscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for formscan.
// On Linux: ~/.config/formscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks that the configuration can reach the service and that
// the option combination makes sense. It returns the first problem found;
// fixing one error often changes the rest.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return ErrNoEndpoint
	}
	if c.APIKey == "" {
		return ErrNoAPIKey
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.PollInterval <= 0 {
		return ErrInvalidPollInterval
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.MaxUploadSize < 0 {
		return ErrInvalidMaxUploadSize
	}
	return nil
}
