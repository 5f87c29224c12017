// Package config manages user-level settings stored at ~/.solrwrap/config.yaml.
// Values are layered with Viper (flags, then SOLRWRAP_* environment variables,
// then the config file, then built-in defaults) and turned into the static
// configuration consumed by the settings resolver. The package also validates
// config files against an embedded JSON schema.
package config
