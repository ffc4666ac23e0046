package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/leasedesk/notify-stream/cmd"
	"github.com/leasedesk/notify-stream/internal/colors"
	"github.com/leasedesk/notify-stream/internal/config"
	"github.com/leasedesk/notify-stream/internal/domain"
	"github.com/leasedesk/notify-stream/internal/format"
	"github.com/leasedesk/notify-stream/internal/search"
	"github.com/leasedesk/notify-stream/internal/storage/sqlite"
	"github.com/spf13/cobra"
)

const (
	defaultListTimeout = 10 * time.Second
	listBuffer         = 8
)

// ListOptions holds all parameters for listing notifications.
type ListOptions struct {
	Tenant     string
	Category   string
	Unread     bool
	Offline    bool
	Timeout    time.Duration
	Transport  string
	Cache      bool
	Format     string
	Search     string
	SearchMode string
	Output     io.Writer
}

// NewListCmd creates the list command with explicit dependencies.
func NewListCmd(d Deps) *cobra.Command {
	if d.NewService == nil || d.OpenCache == nil {
		panic("NewListCmd: service and cache dependencies cannot be nil")
	}

	var opts ListOptions
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the current notifications",
		Long: `List the current notifications grouped by day, newest first.

Connects, waits for the first snapshot and exits. With --offline the last
saved view is printed without connecting.

USAGE:
    notify-stream list [OPTIONS]

OPTIONS:
    --tenant <id>        Tenant to list (default: tenant_id)
    --category <name>    Only notifications of this category
    --unread             Only unread notifications
    --offline            Read the offline cache only
    --timeout <dur>      How long to wait for the snapshot (default: 10s)
    --transport <kind>   sse or ws (default: transport)
    --format <type>      simple, table, compact or json (default: simple)
    --search <query>     Only notifications matching the query
    --search-mode <mode> token, substring or regex (default: token)
    -h, --help           Show this help`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			opts.Cache = config.GetBool("cache_enabled", true)
			opts.Output = c.OutOrStdout()
			return List(c.Context(), d, opts)
		},
	}

	listCmd.Flags().StringVar(&opts.Tenant, "tenant", "", "Tenant to list")
	listCmd.Flags().StringVar(&opts.Category, "category", "", "Only notifications of this category")
	listCmd.Flags().BoolVar(&opts.Unread, "unread", false, "Only unread notifications")
	listCmd.Flags().BoolVar(&opts.Offline, "offline", false, "Read the offline cache only")
	listCmd.Flags().DurationVar(&opts.Timeout, "timeout", defaultListTimeout, "How long to wait for the snapshot")
	listCmd.Flags().StringVar(&opts.Transport, "transport", "", "Stream transport: sse or ws")
	listCmd.Flags().StringVar(&opts.Search, "search", "", "Only notifications matching the query")
	listCmd.Flags().StringVar(&opts.SearchMode, "search-mode", search.KindToken, "Search mode: token, substring or regex")
	listCmd.Flags().StringVar(&opts.Format, "format", string(format.FormatterTypeSimple), "Output format: simple, table, compact or json")

	return listCmd
}

// List prints the tenant's notifications to opts.Output.
func List(ctx context.Context, d Deps, opts ListOptions) error {
	tenant, err := resolveTenant(opts.Tenant)
	if err != nil {
		return err
	}
	filter, err := domain.FilterOptions{Category: opts.Category, Unread: opts.Unread}.ToFilter()
	if err != nil {
		return err
	}
	formatterType, err := format.ParseType(opts.Format)
	if err != nil {
		return err
	}
	provider, err := newSearch(opts.SearchMode, opts.Search)
	if err != nil {
		return err
	}

	var notifications, announcements []domain.Notification
	if opts.Offline {
		notifications, announcements, err = loadCached(ctx, d, tenant)
	} else {
		notifications, announcements, err = fetchSnapshot(ctx, d, tenant, opts)
	}
	if err != nil {
		return err
	}

	now := time.Now()
	if d.Now != nil {
		now = d.Now()
	}
	timeline := domain.ApplyFilter(domain.Timeline(notifications, announcements), filter)
	timeline = search.Filter(provider, timeline, opts.Search)
	groups := domain.GroupByDay(timeline, time.Local, now)
	return format.NewFormatter(formatterType, now).FormatGroups(groups, opts.Output)
}

func fetchSnapshot(ctx context.Context, d Deps, tenant string, opts ListOptions) ([]domain.Notification, []domain.Notification, error) {
	service, err := d.NewService(opts.Transport)
	if err != nil {
		return nil, nil, fmt.Errorf("list: %w", err)
	}
	client := newStreamClient(service, resolveFilters(opts.Category, opts.Unread))
	states, unsubscribe := client.Subscribe(listBuffer)
	defer unsubscribe()
	client.Start(tenant)
	defer client.Stop()

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultListTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var lastErr string
	for {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-timer.C:
			if lastErr != "" {
				return nil, nil, fmt.Errorf("timed out waiting for notifications: %s", lastErr)
			}
			return nil, nil, errors.New("timed out waiting for notifications")
		case s, ok := <-states:
			if !ok {
				return nil, nil, errors.New("notification stream closed")
			}
			if s.Error != "" {
				lastErr = s.Error
				colors.Debug("list:", s.Error)
			}
			if !s.Synced {
				continue
			}
			if opts.Cache {
				saveSnapshot(ctx, d, tenant, s.Notifications, s.Announcements)
			}
			return s.Notifications, s.Announcements, nil
		}
	}
}

func saveSnapshot(ctx context.Context, d Deps, tenant string, notifications, announcements []domain.Notification) {
	cache, err := d.OpenCache()
	if err != nil {
		colors.Warning(fmt.Sprintf("offline cache unavailable: %v", err))
		return
	}
	defer cache.Close()
	if err := cache.SaveView(ctx, tenant, notifications, announcements); err != nil {
		colors.Warning(fmt.Sprintf("failed to save offline cache: %v", err))
	}
}

func loadCached(ctx context.Context, d Deps, tenant string) ([]domain.Notification, []domain.Notification, error) {
	cache, err := d.OpenCache()
	if err != nil {
		return nil, nil, fmt.Errorf("list: %w", err)
	}
	defer cache.Close()

	savedAt, ok, err := cache.SavedAt(ctx, tenant, sqlite.StreamPersonal)
	if err != nil {
		return nil, nil, fmt.Errorf("list: %w", err)
	}
	if !ok {
		return nil, nil, fmt.Errorf("no cached notifications for tenant %s", tenant)
	}
	notifications, err := cache.LoadStream(ctx, tenant, sqlite.StreamPersonal)
	if err != nil {
		return nil, nil, fmt.Errorf("list: %w", err)
	}
	announcements, err := cache.LoadStream(ctx, tenant, sqlite.StreamAnnouncements)
	if err != nil {
		return nil, nil, fmt.Errorf("list: %w", err)
	}
	colors.LogInfo(fmt.Sprintf("Showing notifications cached at %s", savedAt.Local().Format(timestampLayout)))
	return notifications, announcements, nil
}

func init() {
	cmd.RootCmd.AddCommand(NewListCmd(deps))
}
