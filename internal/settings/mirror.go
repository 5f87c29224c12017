package settings

import (
	"bytes"
	"context"
	"crypto/tls"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/solrwrap-labs/solrwrap/internal/branding"
	"github.com/solrwrap-labs/solrwrap/internal/release"
	"github.com/solrwrap-labs/solrwrap/internal/telemetry"
)

const (
	// DefaultMirrorTimeout bounds a single mirror lookup.
	DefaultMirrorTimeout = 10 * time.Second

	maxMirrorResponseSize = 1 << 20
)

//go:embed schema/mirror.schema.json
var mirrorSchemaBytes []byte

var (
	mirrorSchema     *jsonschema.Schema
	mirrorSchemaOnce sync.Once
	mirrorSchemaErr  error
)

// mirrorResponse is the document served by the mirror-selection service.
type mirrorResponse struct {
	Preferred string   `json:"preferred"`
	PathInfo  string   `json:"path_info"`
	Backup    []string `json:"backup,omitempty"`
}

// MirrorResolver discovers a download URL for a Solr release.
type MirrorResolver struct {
	httpClient   *http.Client
	timeout      time.Duration
	fallbackBase string
	logger       zerolog.Logger
	metrics      telemetry.Collector
}

// NewMirrorResolver returns a resolver using http.DefaultClient, the default
// timeout and the branding fallback dist URL.
func NewMirrorResolver() *MirrorResolver {
	return &MirrorResolver{
		httpClient:   http.DefaultClient,
		timeout:      DefaultMirrorTimeout,
		fallbackBase: branding.DistURL(),
		logger:       zerolog.Nop(),
		metrics:      telemetry.Noop(),
	}
}

// DefaultMirrorURL returns the mirror-selection query for a release version.
func DefaultMirrorURL(version string) string {
	return fmt.Sprintf("%s/%s/%s?asjson=true", strings.TrimRight(branding.MirrorURL(), "/"), version, release.ArchiveName(version))
}

// FallbackURL returns the fixed download URL used when the mirror is unreachable.
func (m *MirrorResolver) FallbackURL(version string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(m.fallbackBase, "/"), version, release.ArchiveName(version))
}

// ResolveDownloadURL asks the mirror at mirrorURL for a download location.
// Only connectivity failures (refused, unreachable, DNS, timeout) fall back to
// FallbackURL. Every other mirror failure, including an error status, an
// unusable body, a rejected TLS handshake or a malformed mirror URL, is
// returned as a *ProtocolError. Cancelling ctx returns the context error.
//
// An empty mirrorURL is treated as unreachable and falls back rather than
// being rejected; config.Static fills in DefaultMirrorURL so the CLI never
// passes one.
func (m *MirrorResolver) ResolveDownloadURL(ctx context.Context, mirrorURL, version string) (string, error) {
	url, err := m.lookup(ctx, mirrorURL)
	switch {
	case err == nil:
		m.metrics.IncMirrorLookup(telemetry.OutcomeMirror)
		m.logger.Debug().Str("mirror", mirrorURL).Str("url", url).Msg("resolved download url from mirror")
		return url, nil
	case errors.Is(err, ErrConnectivity):
		fallback := m.FallbackURL(version)
		m.metrics.IncMirrorLookup(telemetry.OutcomeFallback)
		m.logger.Warn().Err(err).Str("url", fallback).Msg("mirror unreachable, using fallback download url")
		return fallback, nil
	default:
		m.metrics.IncMirrorLookup(telemetry.OutcomeError)
		return "", err
	}
}

func (m *MirrorResolver) lookup(ctx context.Context, mirrorURL string) (string, error) {
	if mirrorURL == "" {
		return "", &ConnectivityError{Err: errors.New("no mirror url configured")}
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mirrorURL, nil)
	if err != nil {
		return "", &ProtocolError{URL: mirrorURL, Err: fmt.Errorf("creating mirror request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", branding.CLIName()+"-settings")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		switch {
		case isConnectivityError(err):
			return "", &ConnectivityError{URL: mirrorURL, Err: err}
		case errors.Is(err, context.Canceled):
			return "", fmt.Errorf("querying mirror %q: %w", mirrorURL, err)
		default:
			return "", &ProtocolError{URL: mirrorURL, Err: err}
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &ProtocolError{
			URL:        mirrorURL,
			StatusCode: resp.StatusCode,
			Err:        errors.New(http.StatusText(resp.StatusCode)),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxMirrorResponseSize))
	if err != nil {
		if isConnectivityError(err) {
			return "", &ConnectivityError{URL: mirrorURL, Err: err}
		}
		return "", &ProtocolError{URL: mirrorURL, Err: fmt.Errorf("reading response body: %w", err)}
	}

	doc, err := decodeMirrorResponse(body)
	if err != nil {
		return "", &ProtocolError{URL: mirrorURL, Err: err}
	}
	return doc.Preferred + doc.PathInfo, nil
}

// decodeMirrorResponse validates body against the embedded schema and decodes it.
func decodeMirrorResponse(body []byte) (*mirrorResponse, error) {
	schema, err := getMirrorSchema()
	if err != nil {
		return nil, err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}
	if err := schema.Validate(inst); err != nil {
		return nil, fmt.Errorf("validating response: %w", err)
	}

	var doc mirrorResponse
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}
	return &doc, nil
}

func getMirrorSchema() (*jsonschema.Schema, error) {
	mirrorSchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(mirrorSchemaBytes))
		if err != nil {
			mirrorSchemaErr = fmt.Errorf("unmarshaling mirror schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("mirror.schema.json", doc); err != nil {
			mirrorSchemaErr = fmt.Errorf("adding mirror schema resource: %w", err)
			return
		}
		mirrorSchema, mirrorSchemaErr = c.Compile("mirror.schema.json")
	})
	return mirrorSchema, mirrorSchemaErr
}

// isConnectivityError reports whether err means the mirror could not be reached.
// A caller-cancelled context is not a connectivity failure, and neither is a
// TLS failure: the mirror answered, it just refused us or could not be trusted.
func isConnectivityError(err error) bool {
	if errors.Is(err, context.Canceled) || isTLSError(err) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		if opErr, ok := e.(*net.OpError); ok {
			switch opErr.Op {
			case "dial", "read", "write":
				return true
			}
		}
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// isTLSError reports whether err comes from the TLS layer. Alerts received
// from the peer surface as a *net.OpError with Op "remote error".
func isTLSError(err error) bool {
	var alertErr tls.AlertError
	if errors.As(err, &alertErr) {
		return true
	}
	var headerErr tls.RecordHeaderError
	if errors.As(err, &headerErr) {
		return true
	}
	var verifyErr *tls.CertificateVerificationError
	if errors.As(err, &verifyErr) {
		return true
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		if opErr, ok := e.(*net.OpError); ok && opErr.Op == "remote error" {
			return true
		}
	}
	return false
}
