package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/leasedesk/notify-stream/cmd"
	"github.com/leasedesk/notify-stream/internal/colors"
	"github.com/leasedesk/notify-stream/internal/domain"
	"github.com/leasedesk/notify-stream/internal/hooks"
	"github.com/leasedesk/notify-stream/internal/search"
	"github.com/leasedesk/notify-stream/internal/stream"
	"github.com/spf13/cobra"
)

const followBuffer = 16

// FollowOptions holds all parameters for following notifications.
type FollowOptions struct {
	Tenant     string
	Category   string
	Unread     bool
	Transport  string
	Cache      bool
	Search     string
	SearchMode string
	Output     io.Writer
}

// NewFollowCmd creates the follow command with explicit dependencies.
func NewFollowCmd(d Deps) *cobra.Command {
	if d.NewService == nil {
		panic("NewFollowCmd: service dependency cannot be nil")
	}

	var opts FollowOptions
	followCmd := &cobra.Command{
		Use:   "follow",
		Short: "Print notifications as they arrive",
		Long: `Print notifications as they arrive, until interrupted.

The current notifications are printed first, then every new notification
and announcement. Connection status changes are printed as "-- <status>".
Executable scripts in <hooks_dir>/notification/ run for every notification
received after the first snapshot.

USAGE:
    notify-stream follow [OPTIONS]

OPTIONS:
    --tenant <id>        Tenant to follow (default: tenant_id)
    --category <name>    Only notifications of this category
    --unread             Only unread notifications
    --transport <kind>   sse or ws (default: transport)
    --cache              Save the view to the offline cache (default: cache_enabled)
    --search <query>     Only notifications matching the query
    --search-mode <mode> token, substring or regex (default: token)
    -h, --help           Show this help`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			opts.Cache = cacheEnabled(c.Flags().Changed("cache"), opts.Cache)
			opts.Output = c.OutOrStdout()
			ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return Follow(ctx, d, opts)
		},
	}

	followCmd.Flags().StringVar(&opts.Tenant, "tenant", "", "Tenant to follow")
	followCmd.Flags().StringVar(&opts.Category, "category", "", "Only notifications of this category")
	followCmd.Flags().BoolVar(&opts.Unread, "unread", false, "Only unread notifications")
	followCmd.Flags().StringVar(&opts.Transport, "transport", "", "Stream transport: sse or ws")
	followCmd.Flags().BoolVar(&opts.Cache, "cache", true, "Save the view to the offline cache")
	followCmd.Flags().StringVar(&opts.Search, "search", "", "Only notifications matching the query")
	followCmd.Flags().StringVar(&opts.SearchMode, "search-mode", search.KindToken, "Search mode: token, substring or regex")

	return followCmd
}

// Follow streams notifications to opts.Output until ctx is done.
func Follow(ctx context.Context, d Deps, opts FollowOptions) error {
	tenant, err := resolveTenant(opts.Tenant)
	if err != nil {
		return err
	}
	filter, err := domain.FilterOptions{Category: opts.Category, Unread: opts.Unread}.ToFilter()
	if err != nil {
		return err
	}
	provider, err := newSearch(opts.SearchMode, opts.Search)
	if err != nil {
		return err
	}
	service, err := d.NewService(opts.Transport)
	if err != nil {
		return fmt.Errorf("follow: %w", err)
	}
	client := newStreamClient(service, resolveFilters(opts.Category, opts.Unread))

	if opts.Cache && d.OpenCache != nil {
		cache, err := d.OpenCache()
		if err != nil {
			colors.Warning(fmt.Sprintf("offline cache unavailable: %v", err))
		} else {
			defer cache.Close()
			stopPersist := persistStates(ctx, client, cache)
			defer stopPersist()
		}
	}

	states, unsubscribe := client.Subscribe(followBuffer)
	defer unsubscribe()
	client.Start(tenant)
	defer client.Stop()

	p := newFollowPrinter(opts.Output, filter)
	if opts.Search != "" {
		p.match = func(n domain.Notification) bool { return provider.Match(n, opts.Search) }
	}
	if d.Hooks != nil {
		if runner := d.Hooks(); runner != nil {
			p.onNew = func(n domain.Notification, announcement bool) {
				if err := runner.Run(ctx, hooks.PointNotification, hooks.NotificationEnv(tenant, n, announcement)); err != nil {
					colors.Warning(fmt.Sprintf("hooks: %v", err))
				}
			}
		}
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case s, ok := <-states:
			if !ok {
				return nil
			}
			p.print(s)
		}
	}
}

// followPrinter prints what changed between consecutive states.
type followPrinter struct {
	w       io.Writer
	filter  domain.Filter
	seen    map[domain.ID]bool
	status  stream.Status
	lastErr string
	// synced is set after the first snapshot; onNew only sees later items.
	synced bool
	match  func(n domain.Notification) bool
	onNew  func(n domain.Notification, announcement bool)
}

func newFollowPrinter(w io.Writer, filter domain.Filter) *followPrinter {
	return &followPrinter{w: w, filter: filter, seen: make(map[domain.ID]bool)}
}

func (p *followPrinter) print(s stream.State) {
	if s.Status != p.status || s.Error != p.lastErr {
		p.status, p.lastErr = s.Status, s.Error
		printStatus(p.w, s)
	}

	personal := make(map[domain.ID]bool, len(s.Notifications))
	for _, n := range s.Notifications {
		personal[n.ID] = true
	}
	timeline := domain.ApplyFilter(domain.Timeline(s.Notifications, s.Announcements), p.filter)
	// oldest first, so the newest line ends up at the bottom
	for i := len(timeline) - 1; i >= 0; i-- {
		n := timeline[i]
		if p.seen[n.ID] {
			continue
		}
		p.seen[n.ID] = true
		if p.match != nil && !p.match(n) {
			continue
		}
		printNotification(p.w, n, !personal[n.ID])
		if p.synced && p.onNew != nil {
			p.onNew(n, !personal[n.ID])
		}
	}
	if s.Synced {
		p.synced = true
	}
}

func init() {
	cmd.RootCmd.AddCommand(NewFollowCmd(deps))
}
