package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/labstack/gommon/log"

	"github.com/witsml-transfer/backend/internal/config"
	"github.com/witsml-transfer/backend/internal/logging"
	"github.com/witsml-transfer/backend/internal/witsml"
)

// SchemeDuckDB prefixes the url of a local DuckDB store.
const SchemeDuckDB = "duckdb://"

var (
	ErrUnknownServer     = errors.New("unknown server")
	ErrUnsupportedScheme = errors.New("unsupported server url scheme")
)

// Provider resolves configured servers to clients, opening each store on first use.
type Provider struct {
	dataDir string
	opts    Options
	servers []config.Server
	log     *log.Logger

	mu     sync.Mutex
	stores map[string]*DuckStore
}

// NewProvider creates a provider for servers. Relative store paths resolve against dataDir.
func NewProvider(dataDir string, servers []config.Server, opts Options) *Provider {
	return &Provider{
		dataDir: dataDir,
		opts:    opts,
		servers: append([]config.Server(nil), servers...),
		log:     logging.New("Provider"),
		stores:  make(map[string]*DuckStore),
	}
}

// Servers returns the configured servers.
func (p *Provider) Servers() []config.Server {
	return append([]config.Server(nil), p.servers...)
}

func (p *Provider) lookup(server string) (config.Server, bool) {
	for _, s := range p.servers {
		if s.Name == server || s.Url == server {
			return s, true
		}
	}
	return config.Server{}, false
}

// Client returns the client of a server given by name or url.
func (p *Provider) Client(server string) (witsml.Client, error) {
	s, ok := p.lookup(server)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownServer, server)
	}
	path, ok := strings.CutPrefix(s.Url, SchemeDuckDB)
	if !ok || path == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, s.Url)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.dataDir, path)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if ds, ok := p.stores[s.Url]; ok {
		return ds, nil
	}
	ds, err := OpenDuckStore(path, s.Url, p.opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", s.Name, err)
	}
	p.log.Infof("Opened server %s at %s", s.Name, path)
	p.stores[s.Url] = ds
	return ds, nil
}

// Close closes every opened store.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var errs []error
	for url, ds := range p.stores {
		if err := ds.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", url, err))
		}
		delete(p.stores, url)
	}
	return errors.Join(errs...)
}
