// Package cli defines the Cobra command tree for the solrwrap CLI. Each file
// in this package builds one top-level command (show, port, config, etc.).
// Commands load layered configuration, hand it to the settings resolver and
// only handle flag parsing and output formatting.
package cli
