// Package config loads runtime configuration for the DevNotes terminal client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the note store (http://host:port)
//	-t int      request timeout (seconds)
//	-k string   bearer access token
//	-l string   log level: debug, info, warn, error
//	-s string   markdown preview style: dark, light, notty, ...
//
// # JSON schema
//
// The JSON loader uses timex.Duration for the timeout, so it can be either a
// string like "10s" or integer nanoseconds. Absent keys keep their defaults:
//
//	{
//	  "server_base_url": "http://localhost:8787",
//	  "request_timeout": "10s",
//	  "access_token": "",
//	  "log_level": "warn",
//	  "preview_style": "dark"
//	}
package config
