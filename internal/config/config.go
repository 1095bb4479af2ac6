package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/intensifier/ishell/pkg/types"
	"github.com/joho/godotenv"
	"github.com/tidwall/jsonc"
)

// Defaults applied after all sources are merged.
const (
	DefaultMaxHistoryItems = 20
	DefaultSearchResults   = 10
	DefaultSearchTimeout   = 15
	DefaultSearchRetries   = 2
	DefaultServerPort      = 8086
)

// DefaultExclude lists bundle entries that are examples or templates.
var DefaultExclude = []string{"**/example.gos", "**/template.gos"}

// Load loads configuration from multiple sources (priority order):
// 1. Global config (~/.config/ishell/)
// 2. Project config (ishell.json, .ishell/ishell.json)
// 3. ISHELL_CONFIG file
// 4. ISHELL_CONFIG_CONTENT inline JSON
// 5. Environment variables
//
// A .env file in directory is loaded into the process environment first.
func Load(directory string) (*types.Config, error) {
	config := &types.Config{}

	if directory != "" {
		// Existing variables win over .env entries.
		_ = godotenv.Load(filepath.Join(directory, ".env"))
	}

	// Track loaded files to avoid duplicates
	loaded := make(map[string]bool)

	loadOnce := func(path string, baseDir string) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return
		}
		if loaded[absPath] {
			return
		}
		if loadConfigFile(path, config, baseDir) == nil {
			loaded[absPath] = true
		}
	}

	// 1. Global config
	globalPath := GetPaths().Config
	loadOnce(filepath.Join(globalPath, "ishell.json"), globalPath)
	loadOnce(filepath.Join(globalPath, "ishell.jsonc"), globalPath)

	// 2. Project config
	if directory != "" {
		projectConfigDir := filepath.Join(directory, ".ishell")
		loadOnce(filepath.Join(directory, "ishell.json"), directory)
		loadOnce(filepath.Join(directory, "ishell.jsonc"), directory)
		loadOnce(filepath.Join(projectConfigDir, "ishell.json"), projectConfigDir)
		loadOnce(filepath.Join(projectConfigDir, "ishell.jsonc"), projectConfigDir)
	}

	// 3. ISHELL_CONFIG file override
	if configPath := os.Getenv("ISHELL_CONFIG"); configPath != "" {
		loadOnce(configPath, filepath.Dir(configPath))
	}

	// 4. ISHELL_CONFIG_CONTENT inline JSON
	if configContent := os.Getenv("ISHELL_CONFIG_CONTENT"); configContent != "" {
		var inlineConfig types.Config
		if err := json.Unmarshal(jsonc.ToJSON([]byte(configContent)), &inlineConfig); err == nil {
			mergeConfig(config, &inlineConfig)
		}
	}

	// 5. Environment variables (highest priority)
	applyEnvOverrides(config)

	applyDefaults(config)

	return config, nil
}

// loadConfigFile loads a single config file with interpolation support.
func loadConfigFile(path string, config *types.Config, baseDir string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err // File doesn't exist, skip
	}

	// Strip JSONC comments using tidwall/jsonc
	data = jsonc.ToJSON(data)

	data = interpolate(data, baseDir)

	var fileConfig types.Config
	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return err
	}

	mergeConfig(config, &fileConfig)
	return nil
}

var (
	envPattern  = regexp.MustCompile(`\{env:([^}]+)\}`)
	filePattern = regexp.MustCompile(`\{file:([^}]+)\}`)
)

// interpolate processes {env:VAR} and {file:path} placeholders.
func interpolate(data []byte, baseDir string) []byte {
	str := string(data)

	str = envPattern.ReplaceAllStringFunc(str, func(match string) string {
		return os.Getenv(envPattern.FindStringSubmatch(match)[1])
	})

	str = filePattern.ReplaceAllStringFunc(str, func(match string) string {
		filePath := filePattern.FindStringSubmatch(match)[1]

		if strings.HasPrefix(filePath, "~/") {
			filePath = filepath.Join(os.Getenv("HOME"), filePath[2:])
		} else if !filepath.IsAbs(filePath) {
			filePath = filepath.Join(baseDir, filePath)
		}

		content, err := os.ReadFile(filePath)
		if err != nil {
			return match // Keep original if file not found
		}

		// Escape for JSON string
		quoted, _ := json.Marshal(strings.TrimRight(string(content), "\n"))
		return string(quoted[1 : len(quoted)-1])
	})

	return []byte(str)
}

// mergeConfig merges source config into target.
func mergeConfig(target, source *types.Config) {
	if source.Schema != "" {
		target.Schema = source.Schema
	}
	if source.Platform != "" {
		target.Platform = source.Platform
	}
	if source.Debug {
		target.Debug = true
	}
	if source.MaxHistoryItems > 0 {
		target.MaxHistoryItems = source.MaxHistoryItems
	}

	if source.Environment != nil {
		if target.Environment == nil {
			target.Environment = &types.EnvironmentConfig{}
		}
		if source.Environment.Constrained {
			target.Environment.Constrained = true
		}
		if source.Environment.UserScripts != nil {
			target.Environment.UserScripts = source.Environment.UserScripts
		}
	}

	if source.Scripts != nil {
		if target.Scripts == nil {
			target.Scripts = &types.ScriptsConfig{}
		}
		s, t := source.Scripts, target.Scripts
		if s.Dir != "" {
			t.Dir = s.Dir
		}
		if s.Bundle != "" {
			t.Bundle = s.Bundle
		}
		if len(s.Exclude) > 0 {
			t.Exclude = append(t.Exclude, s.Exclude...)
		}
		if len(s.AllowedImports) > 0 {
			t.AllowedImports = append(t.AllowedImports, s.AllowedImports...)
		}
		if s.Repository != "" {
			t.Repository = s.Repository
		}
		if s.Database != "" {
			t.Database = s.Database
		}
		if s.Watch {
			t.Watch = true
		}
	}

	if source.Search != nil {
		target.Search = source.Search
	}
	if source.Server != nil {
		target.Server = source.Server
	}
	if source.Log != nil {
		target.Log = source.Log
	}
}

// applyEnvOverrides applies environment variable overrides.
func applyEnvOverrides(config *types.Config) {
	if platform := os.Getenv("ISHELL_PLATFORM"); platform != "" {
		config.Platform = platform
	}

	if debug := os.Getenv("ISHELL_DEBUG"); debug != "" {
		if v, err := strconv.ParseBool(debug); err == nil {
			config.Debug = v
		}
	}

	if level := os.Getenv("ISHELL_LOG_LEVEL"); level != "" {
		if config.Log == nil {
			config.Log = &types.LogConfig{}
		}
		config.Log.Level = level
	}

	if max := os.Getenv("ISHELL_MAX_HISTORY"); max != "" {
		if v, err := strconv.Atoi(max); err == nil && v > 0 {
			config.MaxHistoryItems = v
		}
	}
}

// applyDefaults fills unset values.
func applyDefaults(config *types.Config) {
	if config.Platform == "" {
		config.Platform = runtime.GOOS
	}
	if config.MaxHistoryItems <= 0 {
		config.MaxHistoryItems = DefaultMaxHistoryItems
	}

	if config.Scripts == nil {
		config.Scripts = &types.ScriptsConfig{}
	}
	paths := GetPaths()
	if config.Scripts.Dir == "" {
		config.Scripts.Dir = paths.ScriptsPath()
	}
	if config.Scripts.Repository == "" {
		config.Scripts.Repository = "dir"
	}
	if config.Scripts.Database == "" {
		config.Scripts.Database = paths.DatabasePath()
	}
	if len(config.Scripts.Exclude) == 0 {
		config.Scripts.Exclude = append([]string(nil), DefaultExclude...)
	}

	if config.Search == nil {
		config.Search = &types.SearchConfig{}
	}
	if config.Search.MaxResults <= 0 {
		config.Search.MaxResults = DefaultSearchResults
	}
	if config.Search.Timeout <= 0 {
		config.Search.Timeout = DefaultSearchTimeout
	}
	if config.Search.Retries < 0 {
		config.Search.Retries = 0
	} else if config.Search.Retries == 0 {
		config.Search.Retries = DefaultSearchRetries
	}

	if config.Server == nil {
		config.Server = &types.ServerConfig{}
	}
	if config.Server.Port == 0 {
		config.Server.Port = DefaultServerPort
	}

	if config.Log == nil {
		config.Log = &types.LogConfig{}
	}
	if config.Log.Level == "" {
		config.Log.Level = "INFO"
	}
}

// Save saves the configuration to a file.
func Save(config *types.Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
