package types

import "time"

// HTTPConfig holds shared HTTP settings used by commands that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "grantdata/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries bounds retries on HTTP 429 responses (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// PDFBackend identifies the tool that turns PDF pages into text.
type PDFBackend string

const (
	BackendNative  PDFBackend = "native"
	BackendPoppler PDFBackend = "pdftotext"
)

// OutputFormat selects how an extracted batch is written.
type OutputFormat string

const (
	FormatXLSX   OutputFormat = "xlsx"
	FormatJSON   OutputFormat = "json"
	FormatYAML   OutputFormat = "yaml"
	FormatSQLite OutputFormat = "sqlite"
)

// ExtractConfig holds settings for the extract command.
type ExtractConfig struct {
	// Backend selects the PDF text backend: native or pdftotext.
	Backend PDFBackend `json:"backend" yaml:"backend"`

	// Workers is the number of pages extracted concurrently (default 1).
	Workers int `json:"workers" yaml:"workers"`

	// Language selects output column names: sv or en.
	Language string `json:"language" yaml:"language"`

	// Format selects the output format. Empty means derive it from the
	// output file extension.
	Format OutputFormat `json:"format" yaml:"format"`

	// OutputDir is where output files go when no explicit path is given.
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// VinnovaConfig holds settings for the Vinnova open data API client.
type VinnovaConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the API root (default https://api.vinnova.se/gdp/v1).
	BaseURL string `json:"base_url" yaml:"base_url"`

	// APIKey is sent verbatim in the Authorization header.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// WrapWidth is the column at which long text fields are wrapped (default 80).
	WrapWidth int `json:"wrap_width" yaml:"wrap_width"`

	// OutputDir is where fetched JSON dumps are written.
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// StoreConfig holds settings for the SQLite project store.
type StoreConfig struct {
	// Path is the database file (default output/projects.db).
	Path string `json:"path" yaml:"path"`
}

// Config groups the settings of every command.
type Config struct {
	LogLevel string        `json:"log_level" yaml:"log_level"`
	Extract  ExtractConfig `json:"extract" yaml:"extract"`
	Vinnova  VinnovaConfig `json:"vinnova" yaml:"vinnova"`
	Store    StoreConfig   `json:"store" yaml:"store"`
}
