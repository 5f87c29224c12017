// Package release knows the shape of Apache Solr release artifacts: archive
// names, semantic versions, and the VERSION marker written into an installed
// instance directory.
package release
