package release

import (
	"fmt"
	"os"
	"strings"
)

// Status describes the release found in an instance directory.
type Status struct {
	VersionFile string `json:"version_file" yaml:"version_file"`
	Installed   string `json:"installed,omitempty" yaml:"installed,omitempty"`
	Wanted      string `json:"wanted" yaml:"wanted"`
	// Current is true when Installed and Wanted are the same release.
	Current bool `json:"current" yaml:"current"`
}

// ReadInstalledVersion reads the VERSION marker at path.
// Returns "", nil if the file does not exist (nothing installed yet).
func ReadInstalledVersion(path string) (string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading version file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// WriteInstalledVersion records version in the VERSION marker at path.
func WriteInstalledVersion(path, version string) error {
	if err := os.WriteFile(path, []byte(version+"\n"), 0644); err != nil {
		return fmt.Errorf("writing version file: %w", err)
	}
	return nil
}

// Check compares the release recorded at versionFile with wanted.
func Check(versionFile, wanted string) (*Status, error) {
	installed, err := ReadInstalledVersion(versionFile)
	if err != nil {
		return nil, err
	}

	st := &Status{VersionFile: versionFile, Installed: installed, Wanted: wanted}
	if installed == "" {
		return st, nil
	}

	cmp, err := CompareVersions(installed, wanted)
	if err != nil {
		return nil, err
	}
	st.Current = cmp == 0
	return st, nil
}
