// Package config loads runtime configuration for the church client.
//
// Sources & precedence
//
//  1. Built-in defaults (see Defaults).
//  2. Environment: a .env file in the working directory, if any, then
//     CELESTIAL_* variables.
//  3. Optional config file selected with -c/--config. Files ending in
//     .yaml or .yml are read as YAML, anything else as JSON.
//  4. Command-line flags explicitly set by the user (see Flags.Apply).
//
// Environment variables
//
//	CELESTIAL_SERVER_URL       base URL of the church service
//	CELESTIAL_DB_PATH          path of the shared session database
//	CELESTIAL_REQUEST_TIMEOUT  per-request timeout, e.g. "10s"
//	CELESTIAL_RESYNC_INTERVAL  session resync period, e.g. "3s"
//	CELESTIAL_LETTERS_DIR      where member letters are written
//	CELESTIAL_LOG_LEVEL        debug | info | warn | error
//	CELESTIAL_LOG_FORMAT       text | json | zap
//
// # File schema
//
// Durations accept strings like "3s" or integer nanoseconds:
//
//	{
//	  "server_url": "http://localhost:3000",
//	  "db_path": "session.db",
//	  "request_timeout": "10s",
//	  "resync_interval": "3s",
//	  "letters_dir": "cartas",
//	  "log_level": "info",
//	  "log_format": "text"
//	}
package config
