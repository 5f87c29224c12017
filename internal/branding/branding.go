// Package branding provides compile-time identity values for the CLI.
//
// The values live in branding.yaml next to this file and are baked into the
// binary with //go:embed. Besides naming, they carry the Apache endpoints the
// settings resolver falls back to.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName        string `yaml:"cli_name"`
	DisplayName    string `yaml:"display_name"`
	Description    string `yaml:"description"`
	HomeDir        string `yaml:"home_dir"`
	EnvPrefix      string `yaml:"env_prefix"`
	MirrorURL      string `yaml:"mirror_url"`
	DistURL        string `yaml:"dist_url"`
	DefaultVersion string `yaml:"default_version"`
}

func load() {
	once.Do(func() {
		// Set hard defaults in case the embedded file is missing/empty.
		defaults = brand{
			CLIName:        "solrwrap",
			DisplayName:    "SolrWrap",
			Description:    "Resolve settings for a locally managed Solr instance",
			HomeDir:        ".solrwrap",
			EnvPrefix:      "SOLRWRAP",
			MirrorURL:      "https://www.apache.org/dyn/closer.lua/lucene/solr",
			DistURL:        "http://www.us.apache.org/dist/lucene/solr",
			DefaultVersion: "8.5.0",
		}
		// Overlay with embedded YAML values.
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "solrwrap").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name (e.g., "SolrWrap").
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".solrwrap").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "SOLRWRAP").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// MirrorURL returns the base of the mirror-selection service.
func MirrorURL() string { load(); return defaults.MirrorURL }

// DistURL returns the base of the fixed Apache dist tree, used for checksum
// URLs and as the download URL when no mirror can be reached.
func DistURL() string { load(); return defaults.DistURL }

// DefaultVersion returns the Solr release used when none is configured.
func DefaultVersion() string { load(); return defaults.DefaultVersion }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("PORT") → "SOLRWRAP_PORT".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
