package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/leasedesk/notify-stream/internal/config"
	"github.com/leasedesk/notify-stream/internal/domain"
	"github.com/leasedesk/notify-stream/internal/hooks"
	"github.com/leasedesk/notify-stream/internal/logging"
	"github.com/leasedesk/notify-stream/internal/search"
	"github.com/leasedesk/notify-stream/internal/storage/sqlite"
	"github.com/leasedesk/notify-stream/internal/stream"
	"github.com/leasedesk/notify-stream/internal/transport"
	"github.com/leasedesk/notify-stream/internal/transport/api"
	"github.com/leasedesk/notify-stream/internal/tui/app"
)

var errNoTenant = errors.New("no tenant: pass --tenant or set tenant_id")

// Cache is the offline cache the commands read and persist to.
type Cache interface {
	SaveView(ctx context.Context, tenantID string, notifications, announcements []domain.Notification) error
	LoadStream(ctx context.Context, tenantID, stream string) ([]domain.Notification, error)
	SavedAt(ctx context.Context, tenantID, stream string) (time.Time, bool, error)
	MarkRead(ctx context.Context, tenantID, id string) error
	Close() error
}

// HookRunner runs user scripts for a hook point.
type HookRunner interface {
	Run(ctx context.Context, point string, vars map[string]string) error
}

// Deps are the collaborators of the commands. They are called from RunE,
// after configuration is loaded.
type Deps struct {
	NewService func(transportKind string) (transport.Service, error)
	OpenCache  func() (Cache, error)
	Hooks      func() HookRunner
	TUIRunner  app.ProgramRunner
	Now        func() time.Time
}

var deps = Deps{
	NewService: newService,
	OpenCache:  openCache,
	Hooks:      configuredHooks,
	Now:        time.Now,
}

func configuredHooks() HookRunner {
	if r := hooks.FromConfig(); r != nil {
		return r
	}
	return nil
}

func newService(transportKind string) (transport.Service, error) {
	if transportKind == "" {
		transportKind = config.Get("transport", api.TransportSSE)
	}
	client, err := api.NewClient(config.Get("api_base_url", ""),
		api.WithToken(config.Get("auth_token", "")),
		api.WithTransport(transportKind),
		api.WithRequestTimeout(config.GetMillis("request_timeout_ms", 10*time.Second)),
		api.WithLogger(logging.GetGlobal()),
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func openCache() (Cache, error) {
	dir := config.Get("state_dir", "")
	if dir == "" {
		return nil, fmt.Errorf("open cache: state_dir is not set")
	}
	storage, err := sqlite.NewSQLiteStorage(filepath.Join(dir, sqlite.DefaultFileName))
	if err != nil {
		return nil, err
	}
	return storage, nil
}

func backoffFromConfig() stream.Backoff {
	def := stream.DefaultBackoff()
	return stream.Backoff{
		Base:        config.GetMillis("reconnect_base_delay_ms", def.Base),
		Max:         config.GetMillis("reconnect_max_delay_ms", def.Max),
		MaxAttempts: config.GetInt("reconnect_max_attempts", def.MaxAttempts),
	}
}

func newStreamClient(service transport.Service, filters transport.Filters) *stream.Client {
	return stream.NewClient(service,
		stream.WithFilters(filters),
		stream.WithBackoff(backoffFromConfig()),
		stream.WithLogger(logging.GetGlobal()),
	)
}

// resolveTenant prefers the flag over the configured tenant_id.
func resolveTenant(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if tenant := config.Get("tenant_id", ""); tenant != "" {
		return tenant, nil
	}
	return "", errNoTenant
}

// resolveFilters builds the server-side stream filters. The category falls
// back to the configured one.
func resolveFilters(category string, unread bool) transport.Filters {
	if category == "" {
		category = config.Get("category", "")
	}
	filters := transport.Filters{Category: category}
	if unread {
		isRead := false
		filters.IsRead = &isRead
	}
	return filters
}

func cacheEnabled(flagSet bool, flag bool) bool {
	if flagSet {
		return flag
	}
	return config.GetBool("cache_enabled", true)
}

// newSearch returns the provider for mode, checking regex queries up front.
func newSearch(mode, query string) (search.Provider, error) {
	p, err := search.New(mode)
	if err != nil {
		return nil, err
	}
	if re, ok := p.(*search.RegexProvider); ok && query != "" {
		if _, err := re.Compile(query); err != nil {
			return nil, fmt.Errorf("invalid search pattern: %w", err)
		}
	}
	return p, nil
}
