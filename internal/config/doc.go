// Package config loads gitpanel configuration.
//
// Configuration is layered, lowest precedence first:
//
//  1. Default()
//  2. a TOML or YAML file, chosen by extension
//  3. GITPANEL_* environment variables and command-line flags, applied
//     through a viper instance with ApplyOverrides
//
// Keys use dotted paths that match the file sections, for example
// "process.timeout" or GITPANEL_PROCESS_TIMEOUT. Durations are written
// as strings such as "5s" or "250ms".
package config
