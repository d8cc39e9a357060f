// Package config loads despensa's TOML configuration.
//
// # Configuration Discovery
//
// Load reads an explicit path when one is given and ~/.config/despensa/config.toml
// otherwise. A missing file is not an error: defaults are used so the client
// works out of the box against a backend on localhost. Blank or non-positive
// fields also fall back to defaults.
//
// # Fields
//
//	api_url = "http://127.0.0.1:8080/api"
//	timeout_seconds = 10
//	usuario_id = 1
//	log_level = "info"
//	log_file = "~/.local/state/despensa/despensa.log"
//
// usuario_id owns the lists created from this client. log_file receives slog
// output while the TUI holds the terminal.
//
// # Environment
//
// DESPENSA_API_URL replaces api_url after the file is read, which is handy
// when pointing a session at despensa-fakeapi.
//
// # Path Expansion
//
// The config path and log_file accept ~ and relative paths; both are made
// absolute.
package config
