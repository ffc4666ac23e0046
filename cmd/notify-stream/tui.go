package main

import (
	"context"
	"fmt"

	"github.com/leasedesk/notify-stream/cmd"
	"github.com/leasedesk/notify-stream/internal/colors"
	"github.com/leasedesk/notify-stream/internal/transport"
	"github.com/leasedesk/notify-stream/internal/tui/app"
	"github.com/leasedesk/notify-stream/internal/tui/state"
	"github.com/spf13/cobra"
)

// TUIOptions holds the parameters of the interactive view.
type TUIOptions struct {
	Tenant    string
	Category  string
	Unread    bool
	Transport string
	Cache     bool
}

// NewTUICmd creates the tui command with explicit dependencies.
func NewTUICmd(d Deps) *cobra.Command {
	if d.NewService == nil {
		panic("NewTUICmd: service dependency cannot be nil")
	}

	var opts TUIOptions
	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse notifications interactively",
		Long: `Browse notifications interactively.

KEYS:
    j/k, up/down   Move
    enter          Mark the selected notification as read
    r              Reconnect
    c              Cycle the category filter
    u              Toggle unread only
    q              Quit

USAGE:
    notify-stream tui [OPTIONS]

OPTIONS:
    --tenant <id>        Tenant to show (default: tenant_id)
    --category <name>    Initial category filter
    --unread             Start with unread only
    --transport <kind>   sse or ws (default: transport)
    --cache              Save the view to the offline cache (default: cache_enabled)
    -h, --help           Show this help`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			opts.Cache = cacheEnabled(c.Flags().Changed("cache"), opts.Cache)
			return RunTUI(d, opts)
		},
	}

	tuiCmd.Flags().StringVar(&opts.Tenant, "tenant", "", "Tenant to show")
	tuiCmd.Flags().StringVar(&opts.Category, "category", "", "Initial category filter")
	tuiCmd.Flags().BoolVar(&opts.Unread, "unread", false, "Start with unread only")
	tuiCmd.Flags().StringVar(&opts.Transport, "transport", "", "Stream transport: sse or ws")
	tuiCmd.Flags().BoolVar(&opts.Cache, "cache", true, "Save the view to the offline cache")

	return tuiCmd
}

// RunTUI connects and shows the interactive view until the user quits.
// Streams are opened unfiltered; the view filters locally so the category
// can be changed without reconnecting.
func RunTUI(d Deps, opts TUIOptions) error {
	tenant, err := resolveTenant(opts.Tenant)
	if err != nil {
		return err
	}
	service, err := d.NewService(opts.Transport)
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	client := newStreamClient(service, transport.Filters{})

	if opts.Cache && d.OpenCache != nil {
		cache, err := d.OpenCache()
		if err != nil {
			colors.Warning(fmt.Sprintf("offline cache unavailable: %v", err))
		} else {
			defer cache.Close()
			stopPersist := persistStates(context.Background(), client, cache)
			defer stopPersist()
		}
	}

	client.Start(tenant)
	defer client.Stop()

	viewOpts := []state.Option{state.WithUnreadOnly(opts.Unread)}
	if category := resolveFilters(opts.Category, false).Category; category != "" {
		viewOpts = append(viewOpts, state.WithCategory(category))
	}
	return app.NewClient(d.TUIRunner).Run(client, viewOpts...)
}

func init() {
	cmd.RootCmd.AddCommand(NewTUICmd(deps))
}
