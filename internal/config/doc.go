// Package config provides configuration loading, merging, and path management for iShell.
//
// # Configuration Loading
//
// Load searches for and merges configuration from multiple sources in
// priority order:
//
//  1. Global config (~/.config/ishell/ishell.json[c], XDG aware)
//  2. Project config (ishell.json[c] and .ishell/ishell.json[c])
//  3. ISHELL_CONFIG file
//  4. ISHELL_CONFIG_CONTENT inline JSON
//  5. Environment variables (ISHELL_PLATFORM, ISHELL_DEBUG,
//     ISHELL_LOG_LEVEL, ISHELL_MAX_HISTORY)
//
// A .env file in the project directory is loaded before anything else; it
// never overrides variables that are already set.
//
// # Supported Formats
//
// Both JSON and JSONC (JSON with Comments) are accepted; comments are
// stripped with tidwall/jsonc.
//
// # Variable Interpolation
//
// Configuration files support two placeholders:
//   - {env:VAR_NAME} expands to an environment variable
//   - {file:path} expands to file contents, escaped for JSON
//
// Example:
//
//	{
//	  "platform": "linux",
//	  "scripts": {
//	    "dir": "{env:HOME}/ishell-scripts",
//	    "repository": "sqlite",
//	    "watch": true
//	  },
//	  "search": {"maxResults": 5}
//	}
//
// # Defaults
//
// After merging, unset values get defaults: the platform is runtime.GOOS,
// history holds 20 entries, scripts live under the XDG config directory and
// bundle entries matching **/example.gos or **/template.gos are excluded.
package config
