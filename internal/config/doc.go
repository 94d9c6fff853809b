// Package config loads fredview settings from a TOML file and the FRED
// credential from the environment.
//
// # Configuration Discovery
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/fredview/config.toml
//  3. If the file doesn't exist, every field takes its default
//
// Before reading the environment, Load applies a .env file from the working
// directory when one exists. Variables already present in the environment are
// not overridden.
//
// # TOML Format
//
//	base_url = "https://api.stlouisfed.org/fred/"
//	series_id = "GDPC1"
//	observation_start = "2020-01-01"
//	observation_end = ""          # empty means latest
//	timeout = "10s"
//	poll_interval = "30m"
//	log_level = "info"            # debug, info, warn, error
//	log_format = "text"           # text or json
//	log_file = "~/.local/state/fredview/fredview.log"
//	export_dir = "~/.local/share/fredview/csv"
//
// All fields are optional. Tilde expansion is performed for log_file and
// export_dir.
//
// # Credential
//
// FRED_KEY is read once, here. Config does not reject an empty key; the FRED
// client does, with fred.ErrConfiguration, before any network access.
//
// # Error Handling
//
// Load returns errors for unreadable or malformed files, dates that are not
// YYYY-MM-DD, an end date before the start date, durations that do not parse
// or are not positive, and unknown log levels or formats.
package config
