// Package config loads runtime configuration for the captionly CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (comments allowed) selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the captionly server
//	-t int      request timeout (seconds)
//
// # JSON schema
//
//	{
//	  // where the API lives
//	  "server_url": "http://127.0.0.1:3000",
//	  "request_timeout": "1m",
//	  "session_dir": ".captionly"
//	}
package config
