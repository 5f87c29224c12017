// Package settings resolves the effective configuration of a locally managed
// Solr instance.
//
// A Settings wraps a caller-supplied StaticConfig. Each accessor returns the
// static value when one is set and otherwise computes a default on first use:
// a free loopback port, a download URL from the Apache mirror-selection
// service (falling back to the dist tree when the mirror cannot be reached),
// and install and download paths under the temp root. Computed values are
// memoized per field, so every accessor returns the same value for the life
// of the Settings.
package settings
