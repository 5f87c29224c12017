package settings

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/solrwrap-labs/solrwrap/internal/platform"
	"github.com/solrwrap-labs/solrwrap/internal/release"
)

// VersionFileName is the marker written into an installed instance directory.
const VersionFileName = "VERSION"

// InstanceDir returns the configured install directory, or a directory under
// the temp root named after the downloaded archive (without ".zip").
func (s *Settings) InstanceDir(ctx context.Context) (string, error) {
	return s.instanceDir.get(s.static.InstanceDir, func() (string, error) {
		u, err := s.DownloadURL(ctx)
		if err != nil {
			return "", err
		}
		return filepath.Join(s.tempRoot, strings.TrimSuffix(urlBase(u), ".zip")), nil
	})
}

// Managed reports whether the instance directory exists on disk right now.
// The check is repeated on every call.
func (s *Settings) Managed(ctx context.Context) (bool, error) {
	dir, err := s.InstanceDir(ctx)
	if err != nil {
		return false, err
	}
	return platform.Exists(dir), nil
}

// DownloadDir returns the configured download directory or the temp root.
// Every call makes sure the directory exists.
func (s *Settings) DownloadDir() (string, error) {
	dir, err := s.downloadDir.get(s.static.DownloadDir, func() (string, error) {
		if s.tempRoot == "" {
			return "", &DirectoryCreationError{Err: errors.New("no temp root configured")}
		}
		return s.tempRoot, nil
	})
	if err != nil {
		return "", err
	}
	if err := platform.EnsureDir(dir); err != nil {
		return "", &DirectoryCreationError{Path: dir, Err: err}
	}
	return dir, nil
}

// DownloadPath returns the configured archive path, or the download directory
// joined with the last segment of the download URL.
func (s *Settings) DownloadPath(ctx context.Context) (string, error) {
	return s.downloadPath.get(s.static.DownloadPath, func() (string, error) {
		dir, err := s.DownloadDir()
		if err != nil {
			return "", err
		}
		u, err := s.DownloadURL(ctx)
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, urlBase(u)), nil
	})
}

// VersionFile returns the configured version file, or VERSION inside the
// instance directory.
func (s *Settings) VersionFile(ctx context.Context) (string, error) {
	return s.versionFile.get(s.static.VersionFile, func() (string, error) {
		dir, err := s.InstanceDir(ctx)
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, VersionFileName), nil
	})
}

// MD5URL returns the checksum URL of the configured release on the Apache dist tree.
func (s *Settings) MD5URL() string {
	v := s.static.Version
	return fmt.Sprintf("%s/%s/%s.md5", strings.TrimRight(s.distURL, "/"), v, release.ArchiveName(v))
}

// MD5SumPath returns where the checksum file is stored in the download directory.
func (s *Settings) MD5SumPath() (string, error) {
	dir, err := s.DownloadDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, urlBase(s.MD5URL())), nil
}

// SolrBinaryPath returns the solr launcher script inside the instance directory.
func (s *Settings) SolrBinaryPath(ctx context.Context) (string, error) {
	dir, err := s.InstanceDir(ctx)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "bin", "solr"), nil
}

// TmpSaveDir returns a private scratch directory, created on first call.
func (s *Settings) TmpSaveDir() (string, error) {
	return s.tmpSaveDir.get("", func() (string, error) {
		dir, err := os.MkdirTemp(s.tempRoot, "solrwrap-")
		if err != nil {
			return "", &DirectoryCreationError{Path: s.tempRoot, Err: err}
		}
		return dir, nil
	})
}

// urlBase returns the last path segment of a URL. A URL without a usable
// path ("http://mirror.example/") yields its host. Strings that do not parse
// as a URL are treated as plain paths.
func urlBase(raw string) string {
	if u, err := url.Parse(raw); err == nil {
		if b := path.Base(strings.TrimRight(u.Path, "/")); b != "/" && b != "." {
			return b
		}
		if u.Host != "" {
			return u.Host
		}
	}
	return path.Base(strings.TrimRight(raw, "/"))
}
