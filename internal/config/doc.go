// Package config loads the TOML configuration shared by the roadmap CLI and
// the progress server.
//
// Resolution order: built-in defaults, then the TOML file (default
// ~/.config/roadmap/config.toml), then ROADMAP_* environment variables, which
// the binaries also pick up from a .env file in the working directory.
//
//	[identity]
//	candidate_id = "cand-42"
//
//	[remote]
//	base_url = "http://127.0.0.1:8085"
//	retry_delay_ms = 2000
package config
