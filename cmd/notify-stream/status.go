package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/leasedesk/notify-stream/cmd"
	"github.com/leasedesk/notify-stream/internal/config"
	"github.com/leasedesk/notify-stream/internal/domain"
	"github.com/leasedesk/notify-stream/internal/formatter"
	"github.com/spf13/cobra"
)

// StatusOptions holds all parameters for the status summary.
type StatusOptions struct {
	Tenant    string
	Format    string
	Offline   bool
	Timeout   time.Duration
	Transport string
	Cache     bool
	Output    io.Writer
}

// NewStatusCmd creates the status command with explicit dependencies.
func NewStatusCmd(d Deps) *cobra.Command {
	if d.NewService == nil || d.OpenCache == nil {
		panic("NewStatusCmd: service and cache dependencies cannot be nil")
	}

	var opts StatusOptions
	var presets bool
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Print a one-line notification summary",
		Long: `Print a one-line summary of the tenant's notifications, for status bars.

--format takes a preset name or a template with ${variable} placeholders.

USAGE:
    notify-stream status [OPTIONS]

OPTIONS:
    --tenant <id>        Tenant to summarize (default: tenant_id)
    --format <preset>    Preset name or template (default: status_format)
    --offline            Read the offline cache only
    --timeout <dur>      How long to wait for the snapshot (default: 10s)
    --transport <kind>   sse or ws (default: transport)
    --presets            List presets and variables
    -h, --help           Show this help`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			if presets {
				printPresets(c.OutOrStdout())
				return nil
			}
			if opts.Format == "" {
				opts.Format = config.Get("status_format", "compact")
			}
			opts.Cache = config.GetBool("cache_enabled", true)
			opts.Output = c.OutOrStdout()
			return Status(c.Context(), d, opts)
		},
	}

	statusCmd.Flags().StringVar(&opts.Tenant, "tenant", "", "Tenant to summarize")
	statusCmd.Flags().StringVar(&opts.Format, "format", "", "Preset name or template")
	statusCmd.Flags().BoolVar(&opts.Offline, "offline", false, "Read the offline cache only")
	statusCmd.Flags().DurationVar(&opts.Timeout, "timeout", defaultListTimeout, "How long to wait for the snapshot")
	statusCmd.Flags().StringVar(&opts.Transport, "transport", "", "Stream transport: sse or ws")
	statusCmd.Flags().BoolVar(&presets, "presets", false, "List presets and variables")

	return statusCmd
}

// Status renders the summary of the tenant's notifications to opts.Output.
func Status(ctx context.Context, d Deps, opts StatusOptions) error {
	tenant, err := resolveTenant(opts.Tenant)
	if err != nil {
		return err
	}
	format := opts.Format
	if format == "" {
		format = "compact"
	}
	template := formatter.Resolve(formatter.NewPresetRegistry(), format)
	engine := formatter.NewTemplateEngine()
	if _, err := engine.Parse(template); err != nil {
		return fmt.Errorf("status: %w", err)
	}

	var notifications, announcements []domain.Notification
	connection := "live"
	if opts.Offline {
		connection = "offline"
		notifications, announcements, err = loadCached(ctx, d, tenant)
	} else {
		listOpts := ListOptions{Timeout: opts.Timeout, Transport: opts.Transport, Cache: opts.Cache}
		notifications, announcements, err = fetchSnapshot(ctx, d, tenant, listOpts)
	}
	if err != nil {
		return err
	}

	vars := formatter.NewVariableContext(tenant, notifications, announcements)
	vars.Connection = connection
	line, err := engine.Substitute(template, vars)
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}
	_, err = fmt.Fprintln(opts.Output, line)
	return err
}

func printPresets(w io.Writer) {
	fmt.Fprintln(w, "Presets:")
	for _, p := range formatter.NewPresetRegistry().List() {
		fmt.Fprintf(w, "  %-12s %s\n", p.Name, p.Template)
	}
	fmt.Fprintln(w, "Variables:")
	for _, v := range formatter.Variables {
		fmt.Fprintf(w, "  ${%s}\n", v)
	}
}

func init() {
	cmd.RootCmd.AddCommand(NewStatusCmd(deps))
}
