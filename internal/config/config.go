package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/solrwrap-labs/solrwrap/internal/branding"
	"github.com/solrwrap-labs/solrwrap/internal/logging"
	"github.com/solrwrap-labs/solrwrap/internal/platform"
	"github.com/solrwrap-labs/solrwrap/internal/settings"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Configuration keys.
const (
	KeyPort          = "port"
	KeyInstanceDir   = "instance_dir"
	KeyDownloadURL   = "download_url"
	KeyDownloadPath  = "download_path"
	KeyDownloadDir   = "download_dir"
	KeyVersionFile   = "version_file"
	KeyVersion       = "version"
	KeyMirrorURL     = "mirror_url"
	KeyMirrorTimeout = "mirror_timeout"
	KeyLogLevel      = "log.level"
	KeyLogFormat     = "log.format"
)

// Keys lists every key accepted by Set, in display order.
var Keys = []string{
	KeyPort,
	KeyInstanceDir,
	KeyDownloadURL,
	KeyDownloadPath,
	KeyDownloadDir,
	KeyVersionFile,
	KeyVersion,
	KeyMirrorURL,
	KeyMirrorTimeout,
	KeyLogLevel,
	KeyLogFormat,
}

// Dir returns the path to the SolrWrap config directory. It checks the
// SOLRWRAP_HOME environment variable first, then falls back to ~/.solrwrap/.
func Dir() string {
	if v := os.Getenv(branding.EnvVar("HOME")); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.solrwrap/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// New returns a Viper instance bound to the config file at path (FilePath()
// when empty) and to SOLRWRAP_* environment variables. Nothing is read yet;
// call Load.
func New(path string) *viper.Viper {
	if path == "" {
		path = FilePath()
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(fileType)
	v.SetEnvPrefix(branding.EnvPrefix())
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyVersion, branding.DefaultVersion())
	v.SetDefault(KeyMirrorTimeout, settings.DefaultMirrorTimeout.String())
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFormat, "text")
	return v
}

// Load reads the config file into v. A missing file is not an error.
func Load(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", v.ConfigFileUsed(), err)
	}
	return nil
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"port":           KeyPort,
	"instance-dir":   KeyInstanceDir,
	"download-url":   KeyDownloadURL,
	"download-path":  KeyDownloadPath,
	"download-dir":   KeyDownloadDir,
	"version-file":   KeyVersionFile,
	"solr-version":   KeyVersion,
	"mirror-url":     KeyMirrorURL,
	"mirror-timeout": KeyMirrorTimeout,
	"log-level":      KeyLogLevel,
	"log-format":     KeyLogFormat,
}

// RegisterFlags adds one flag per configuration key to flags.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("port", "", "Port for the Solr instance (default: a free port)")
	flags.String("instance-dir", "", "Solr install directory (default: <tmp>/solr-<version>)")
	flags.String("download-url", "", "Release archive URL (default: asked from the mirror)")
	flags.String("download-path", "", "Where the release archive is stored")
	flags.String("download-dir", "", "Directory for downloads (default: system temp dir)")
	flags.String("version-file", "", "VERSION marker path (default: <instance-dir>/VERSION)")
	flags.String("solr-version", "", "Solr release version (default "+branding.DefaultVersion()+")")
	flags.String("mirror-url", "", "Mirror-selection service URL")
	flags.Duration("mirror-timeout", settings.DefaultMirrorTimeout, "Timeout for the mirror lookup")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("log-format", "", "Log format (text, json)")
}

// BindFlags binds the flags added by RegisterFlags to v. Only flags that were
// set on the command line override other sources.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag --%s: %w", name, err)
		}
	}
	return nil
}

// Static builds the resolver input from v. When no mirror URL is configured
// the mirror-selection query for the configured version is used.
func Static(v *viper.Viper) settings.StaticConfig {
	static := settings.StaticConfig{
		Port:         v.GetString(KeyPort),
		InstanceDir:  v.GetString(KeyInstanceDir),
		DownloadURL:  v.GetString(KeyDownloadURL),
		DownloadPath: v.GetString(KeyDownloadPath),
		DownloadDir:  v.GetString(KeyDownloadDir),
		VersionFile:  v.GetString(KeyVersionFile),
		Version:      v.GetString(KeyVersion),
		MirrorURL:    v.GetString(KeyMirrorURL),
	}
	if static.MirrorURL == "" && static.Version != "" {
		static.MirrorURL = settings.DefaultMirrorURL(static.Version)
	}
	return static
}

// MirrorTimeout returns the configured mirror lookup timeout.
func MirrorTimeout(v *viper.Viper) time.Duration {
	if d := v.GetDuration(KeyMirrorTimeout); d > 0 {
		return d
	}
	return settings.DefaultMirrorTimeout
}

// Logging returns the logger configuration.
func Logging(v *viper.Viper) logging.Config {
	return logging.Config{
		Level:  v.GetString(KeyLogLevel),
		Format: v.GetString(KeyLogFormat),
	}
}

// IsKnownKey reports whether key is a configuration key.
func IsKnownKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// Set writes a config key-value pair to the file at path (FilePath() when
// empty). Only values already in the file and the new value are written;
// environment variables and defaults stay out of the file.
func Set(path, key, value string) error {
	if !IsKnownKey(key) {
		return fmt.Errorf("unknown config key %q (known keys: %s)", key, strings.Join(Keys, ", "))
	}
	if path == "" {
		path = FilePath()
	}

	dir := filepath.Dir(path)
	if err := platform.EnsureDir(dir); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	fv := viper.New()
	fv.SetConfigFile(path)
	fv.SetConfigType(fileType)
	if err := Load(fv); err != nil {
		return err
	}

	fv.Set(key, value)
	if err := fv.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	if err := platform.Chmod(path, platform.FilePermSecure); err != nil {
		return fmt.Errorf("setting config file permissions: %w", err)
	}
	return nil
}
