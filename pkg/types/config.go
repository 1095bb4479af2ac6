package types

// Config represents the iShell configuration.
type Config struct {
	// Schema reference (for editor support)
	Schema string `json:"$schema,omitempty"`

	// Platform name used to filter builtin command modules.
	// Defaults to runtime.GOOS.
	Platform string `json:"platform,omitempty"`

	// Debug keeps commands flagged as debug-only visible.
	Debug bool `json:"debug,omitempty"`

	// MaxHistoryItems caps the input history.
	MaxHistoryItems int `json:"maxHistoryItems,omitempty"`

	// Execution environment policy
	Environment *EnvironmentConfig `json:"environment,omitempty"`

	// User scripts
	Scripts *ScriptsConfig `json:"scripts,omitempty"`

	// Search commands
	Search *SearchConfig `json:"search,omitempty"`

	// HTTP API
	Server *ServerConfig `json:"server,omitempty"`

	// Logging
	Log *LogConfig `json:"log,omitempty"`
}

// EnvironmentConfig describes the execution context the launcher runs in.
type EnvironmentConfig struct {
	// Constrained marks a context where concurrent script evaluation is
	// unsafe; user scripts are then evaluated one at a time.
	Constrained bool `json:"constrained,omitempty"`

	// UserScripts is the policy switch for loading user scripts at all.
	// nil means allowed.
	UserScripts *bool `json:"userScripts,omitempty"`
}

// AllowsUserScripts reports whether user-script loading is permitted.
func (e *EnvironmentConfig) AllowsUserScripts() bool {
	return e == nil || e.UserScripts == nil || *e.UserScripts
}

// ScriptsConfig holds user-script loading configuration.
type ScriptsConfig struct {
	// Dir holds one .gos file per namespace (directory repository).
	Dir string `json:"dir,omitempty"`

	// Bundle is the manifest listing bundled user scripts.
	Bundle string `json:"bundle,omitempty"`

	// Exclude lists glob patterns of bundle entries that are never loaded.
	Exclude []string `json:"exclude,omitempty"`

	// AllowedImports extends the default import allow-list.
	AllowedImports []string `json:"allowedImports,omitempty"`

	// Repository selects the script repository: "dir" or "sqlite".
	Repository string `json:"repository,omitempty"`

	// Database is the SQLite database path for the sqlite repository.
	Database string `json:"database,omitempty"`

	// Watch reloads a namespace when its script file changes.
	Watch bool `json:"watch,omitempty"`
}

// SearchConfig holds settings shared by search commands.
type SearchConfig struct {
	MaxResults int `json:"maxResults,omitempty"`
	Timeout    int `json:"timeout,omitempty"` // seconds
	Retries    int `json:"retries,omitempty"`
}

// ServerConfig holds HTTP API configuration.
type ServerConfig struct {
	Port int   `json:"port,omitempty"`
	CORS *bool `json:"cors,omitempty"`
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level  string `json:"level,omitempty"` // DEBUG|INFO|WARN|ERROR
	Pretty bool   `json:"pretty,omitempty"`
}
