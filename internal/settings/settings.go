package settings

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/solrwrap-labs/solrwrap/internal/branding"
	"github.com/solrwrap-labs/solrwrap/internal/telemetry"
)

// Host is the loopback address the managed Solr instance binds to.
const Host = "127.0.0.1"

// StaticConfig is the caller-supplied configuration. An empty field is unset
// and gets a computed default; a non-empty field always wins verbatim.
type StaticConfig struct {
	Port         string `json:"port,omitempty" yaml:"port,omitempty" mapstructure:"port"`
	InstanceDir  string `json:"instance_dir,omitempty" yaml:"instance_dir,omitempty" mapstructure:"instance_dir"`
	DownloadURL  string `json:"download_url,omitempty" yaml:"download_url,omitempty" mapstructure:"download_url"`
	DownloadPath string `json:"download_path,omitempty" yaml:"download_path,omitempty" mapstructure:"download_path"`
	DownloadDir  string `json:"download_dir,omitempty" yaml:"download_dir,omitempty" mapstructure:"download_dir"`
	VersionFile  string `json:"version_file,omitempty" yaml:"version_file,omitempty" mapstructure:"version_file"`
	Version      string `json:"version,omitempty" yaml:"version,omitempty" mapstructure:"version"`
	MirrorURL    string `json:"mirror_url,omitempty" yaml:"mirror_url,omitempty" mapstructure:"mirror_url"`
}

// cell memoizes one resolved value. Only successful computations are stored,
// so a failed resolution can be retried by calling the accessor again.
type cell struct {
	mu       sync.Mutex
	resolved bool
	value    string
}

func (c *cell) get(static string, compute func() (string, error)) (string, error) {
	if static != "" {
		return static, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.resolved {
		return c.value, nil
	}
	v, err := compute()
	if err != nil {
		return "", err
	}
	c.value, c.resolved = v, true
	return v, nil
}

// Settings resolves the effective configuration of a managed Solr instance
// on top of a StaticConfig. Every accessor computes its value on first use and
// returns the same value afterwards. Settings is safe for concurrent use.
type Settings struct {
	static   StaticConfig
	mirror   *MirrorResolver
	allocate func() (int, error)
	tempRoot string
	distURL  string
	logger   zerolog.Logger
	metrics  telemetry.Collector

	httpClient    *http.Client
	mirrorTimeout time.Duration

	port         cell
	downloadURL  cell
	instanceDir  cell
	downloadDir  cell
	downloadPath cell
	versionFile  cell
	tmpSaveDir   cell
}

// Option configures a Settings.
type Option func(*Settings)

// WithHTTPClient sets the client used for the mirror lookup (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(s *Settings) {
		s.httpClient = c
	}
}

// WithMirrorTimeout bounds the mirror lookup. A timeout counts as the mirror
// being unreachable.
func WithMirrorTimeout(d time.Duration) Option {
	return func(s *Settings) {
		s.mirrorTimeout = d
	}
}

// WithDistURL overrides the Apache dist base used for checksum and fallback URLs.
func WithDistURL(base string) Option {
	return func(s *Settings) {
		s.distURL = base
	}
}

// WithTempRoot overrides the system temp directory used for default paths.
func WithTempRoot(dir string) Option {
	return func(s *Settings) {
		s.tempRoot = dir
	}
}

// WithPortAllocator replaces AllocatePort.
func WithPortAllocator(fn func() (int, error)) Option {
	return func(s *Settings) {
		s.allocate = fn
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Settings) {
		s.logger = l
	}
}

// WithCollector sets the telemetry collector.
func WithCollector(c telemetry.Collector) Option {
	return func(s *Settings) {
		s.metrics = c
	}
}

// New creates a resolver over static.
func New(static StaticConfig, opts ...Option) *Settings {
	s := &Settings{
		static:        static,
		allocate:      AllocatePort,
		tempRoot:      os.TempDir(),
		distURL:       branding.DistURL(),
		logger:        zerolog.Nop(),
		metrics:       telemetry.Noop(),
		httpClient:    http.DefaultClient,
		mirrorTimeout: DefaultMirrorTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "settings").Logger()
	s.mirror = &MirrorResolver{
		httpClient:   s.httpClient,
		timeout:      s.mirrorTimeout,
		fallbackBase: s.distURL,
		logger:       s.logger,
		metrics:      s.metrics,
	}
	return s
}

// Static returns the configuration the resolver was created with.
func (s *Settings) Static() StaticConfig {
	return s.static
}

// Host returns the address the instance binds to.
func (s *Settings) Host() string {
	return Host
}

// Version returns the configured Solr release version.
func (s *Settings) Version() string {
	return s.static.Version
}

// Port returns the configured port, or a free port allocated on first call.
func (s *Settings) Port() (string, error) {
	return s.port.get(s.static.Port, func() (string, error) {
		p, err := s.allocate()
		if err != nil {
			s.metrics.IncPortAllocation(telemetry.OutcomeError)
			return "", err
		}
		s.metrics.IncPortAllocation(telemetry.OutcomeOK)
		s.logger.Debug().Int("port", p).Msg("allocated ephemeral port")
		return strconv.Itoa(p), nil
	})
}

// URL returns the (likely) base URL of the Solr instance.
func (s *Settings) URL() (string, error) {
	port, err := s.Port()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("http://%s:%s/solr/", Host, port), nil
}

// DownloadURL returns the configured download URL, or asks the mirror on first call.
func (s *Settings) DownloadURL(ctx context.Context) (string, error) {
	return s.downloadURL.get(s.static.DownloadURL, func() (string, error) {
		return s.mirror.ResolveDownloadURL(ctx, s.static.MirrorURL, s.static.Version)
	})
}

// Resolved is a fully populated view of a Settings, for display and hand-off
// to collaborators.
type Resolved struct {
	Host           string `json:"host" yaml:"host"`
	Port           string `json:"port" yaml:"port"`
	URL            string `json:"url" yaml:"url"`
	Version        string `json:"version" yaml:"version"`
	InstanceDir    string `json:"instance_dir" yaml:"instance_dir"`
	DownloadURL    string `json:"download_url" yaml:"download_url"`
	DownloadDir    string `json:"download_dir" yaml:"download_dir"`
	DownloadPath   string `json:"download_path" yaml:"download_path"`
	VersionFile    string `json:"version_file" yaml:"version_file"`
	MD5URL         string `json:"md5_url" yaml:"md5_url"`
	MD5SumPath     string `json:"md5sum_path" yaml:"md5sum_path"`
	SolrBinaryPath string `json:"solr_binary_path" yaml:"solr_binary_path"`
	Managed        bool   `json:"managed" yaml:"managed"`
}

// Snapshot resolves every setting. It stops at the first error.
func (s *Settings) Snapshot(ctx context.Context) (*Resolved, error) {
	r := &Resolved{
		Host:    Host,
		Version: s.Version(),
		MD5URL:  s.MD5URL(),
	}

	var err error
	if r.Port, err = s.Port(); err != nil {
		return nil, err
	}
	if r.URL, err = s.URL(); err != nil {
		return nil, err
	}
	if r.DownloadURL, err = s.DownloadURL(ctx); err != nil {
		return nil, err
	}
	if r.InstanceDir, err = s.InstanceDir(ctx); err != nil {
		return nil, err
	}
	if r.DownloadDir, err = s.DownloadDir(); err != nil {
		return nil, err
	}
	if r.DownloadPath, err = s.DownloadPath(ctx); err != nil {
		return nil, err
	}
	if r.VersionFile, err = s.VersionFile(ctx); err != nil {
		return nil, err
	}
	if r.MD5SumPath, err = s.MD5SumPath(); err != nil {
		return nil, err
	}
	if r.SolrBinaryPath, err = s.SolrBinaryPath(ctx); err != nil {
		return nil, err
	}
	if r.Managed, err = s.Managed(ctx); err != nil {
		return nil, err
	}
	return r, nil
}
