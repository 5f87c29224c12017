package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solrwrap-labs/solrwrap/internal/settings"
)

// run executes a fresh command tree with HOME pointed at a temp dir so the
// user's own config file is never read.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cmd := NewRootCmd(BuildInfo{Version: "1.2.3", Commit: "abc123", Date: "2026-01-01"})
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// offlineFlags pin every networked setting so a command never leaves the host.
func offlineFlags(t *testing.T) []string {
	t.Helper()
	root := t.TempDir()
	return []string{
		"--port", "8983",
		"--download-url", "http://archive.example/solr/8.5.0/solr-8.5.0.zip",
		"--download-dir", filepath.Join(root, "downloads"),
		"--instance-dir", filepath.Join(root, "solr-8.5.0"),
	}
}

func TestShow_JSON(t *testing.T) {
	flags := offlineFlags(t)
	out, err := run(t, append([]string{"show", "-o", "json"}, flags...)...)
	require.NoError(t, err)

	var got settings.Resolved
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "127.0.0.1", got.Host)
	assert.Equal(t, "8983", got.Port)
	assert.Equal(t, "http://127.0.0.1:8983/solr/", got.URL)
	assert.Equal(t, "8.5.0", got.Version)
	assert.Equal(t, flags[7], got.InstanceDir)
	assert.Equal(t, filepath.Join(flags[5], "solr-8.5.0.zip"), got.DownloadPath)
	assert.Equal(t, filepath.Join(flags[7], "VERSION"), got.VersionFile)
	assert.Equal(t, filepath.Join(flags[7], "bin", "solr"), got.SolrBinaryPath)
	assert.False(t, got.Managed)
	assert.DirExists(t, flags[5])
}

func TestShow_TableAndYAML(t *testing.T) {
	out, err := run(t, append([]string{"show"}, offlineFlags(t)...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "download_url")
	assert.Contains(t, out, "http://127.0.0.1:8983/solr/")

	out, err = run(t, append([]string{"show", "--output", "yaml"}, offlineFlags(t)...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "port: \"8983\"")
	assert.Contains(t, out, "managed: false")
}

func TestShow_UnknownOutput(t *testing.T) {
	_, err := run(t, append([]string{"show", "-o", "xml"}, offlineFlags(t)...)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestShow_MirrorAndMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"preferred": "http://mirror.example/", "path_info": "lucene/solr/8.5.0/solr-8.5.0.zip"}`)
	}))
	defer srv.Close()

	root := t.TempDir()
	out, err := run(t, "show", "-o", "json", "--metrics",
		"--port", "8983",
		"--mirror-url", srv.URL,
		"--download-dir", root,
		"--instance-dir", filepath.Join(root, "solr"),
	)
	require.NoError(t, err)
	assert.Contains(t, out, `"download_url": "http://mirror.example/lucene/solr/8.5.0/solr-8.5.0.zip"`)
	assert.Contains(t, out, `solrwrap_mirror_lookups_total{outcome="mirror"} 1`)
}

func TestPort(t *testing.T) {
	out, err := run(t, "port", "--port", "1234")
	require.NoError(t, err)
	assert.Equal(t, "1234\n", out)

	out, err = run(t, "port", "--url", "--port", "1234")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:1234/solr/\n", out)
}

func TestPort_Allocates(t *testing.T) {
	out, err := run(t, "port")
	require.NoError(t, err)

	port, err := strconv.Atoi(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Greater(t, port, 0)
}

func TestPort_EnvironmentAndFlagPrecedence(t *testing.T) {
	t.Setenv("SOLRWRAP_PORT", "7000")

	out, err := run(t, "port")
	require.NoError(t, err)
	assert.Equal(t, "7000\n", out)

	out, err = run(t, "port", "--port", "7001")
	require.NoError(t, err)
	assert.Equal(t, "7001\n", out)
}

func TestConfig_SetGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	out, err := run(t, "--config", path, "config", "set", "port", "9000")
	require.NoError(t, err)
	assert.Equal(t, "Set port = 9000\n", out)

	_, err = run(t, "--config", path, "config", "set", "log.level", "debug")
	require.NoError(t, err)

	out, err = run(t, "--config", path, "config", "get", "port")
	require.NoError(t, err)
	assert.Equal(t, "9000\n", out)

	out, err = run(t, "--config", path, "config", "get", "log.level")
	require.NoError(t, err)
	assert.Equal(t, "debug\n", out)

	out, err = run(t, "--config", path, "port")
	require.NoError(t, err)
	assert.Equal(t, "9000\n", out)

	_, err = run(t, "--config", path, "config", "set", "colour", "blue")
	require.Error(t, err)
	_, err = run(t, "--config", path, "config", "get", "colour")
	require.Error(t, err)
}

func TestConfig_GetDefault(t *testing.T) {
	out, err := run(t, "--config", filepath.Join(t.TempDir(), "none.yaml"), "config", "get", "version")
	require.NoError(t, err)
	assert.Equal(t, "8.5.0\n", out)
}

func TestConfig_Validate(t *testing.T) {
	dir := t.TempDir()
	valid := filepath.Join(dir, "valid.yaml")
	require.NoError(t, os.WriteFile(valid, []byte("port: 8983\nversion: 8.5.0\nlog:\n  level: info\n"), 0600))
	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("version: latest\ncolour: blue\n"), 0600))

	out, err := run(t, "config", "validate", valid)
	require.NoError(t, err)
	assert.Contains(t, out, "[ OK ]")

	out, err = run(t, "config", "validate", invalid)
	require.Error(t, err)
	assert.Contains(t, out, "[FAIL]")
	assert.Contains(t, out, "/version")
}

func TestDoctor(t *testing.T) {
	flags := offlineFlags(t)
	instanceDir := flags[7]

	out, err := run(t, append([]string{"doctor"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Instance check:")
	assert.Contains(t, out, "does not exist")
	assert.Contains(t, out, "no VERSION marker")

	require.NoError(t, os.MkdirAll(filepath.Join(instanceDir, "bin"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(instanceDir, "bin", "solr"), []byte("#!/bin/sh\n"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(instanceDir, "VERSION"), []byte("8.5.0\n"), 0644))

	out, err = run(t, append([]string{"doctor"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "launcher found")
	assert.Contains(t, out, "installed version 8.5.0 matches")

	out, err = run(t, append([]string{"doctor", "--solr-version", "8.6.0"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "[WARN] installed version 8.5.0, configured 8.6.0")
}

func TestDoctor_InvalidConfigFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mirror_timeout: soon\n"), 0600))

	out, err := run(t, append([]string{"--config", path, "doctor"}, offlineFlags(t)...)...)
	require.Error(t, err)
	assert.Contains(t, out, "/mirror_timeout")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "solrwrap version 1.2.3 (commit: abc123, built: 2026-01-01)\n", out)

	out, err = run(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3\n", out)

	out, err = run(t, "version", "--json")
	require.NoError(t, err)
	var info BuildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, BuildInfo{Version: "1.2.3", Commit: "abc123", Date: "2026-01-01"}, info)
}
