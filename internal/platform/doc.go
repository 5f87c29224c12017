// Package platform provides the small set of filesystem operations the
// resolver needs: recursive directory creation, existence checks and
// permission changes. Permission changes are a no-op on Windows.
package platform
