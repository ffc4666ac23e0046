package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/leasedesk/notify-stream/cmd"
	"github.com/leasedesk/notify-stream/internal/colors"
	"github.com/leasedesk/notify-stream/internal/config"
	"github.com/leasedesk/notify-stream/internal/domain"
	"github.com/spf13/cobra"
)

// NewMarkReadCmd creates the mark-read command with explicit dependencies.
func NewMarkReadCmd(d Deps) *cobra.Command {
	if d.NewService == nil {
		panic("NewMarkReadCmd: service dependency cannot be nil")
	}

	var tenant string
	markReadCmd := &cobra.Command{
		Use:   "mark-read <id>",
		Short: "Mark a notification as read",
		Long: `Mark a notification as read by ID.

USAGE:
    notify-stream mark-read <id> [OPTIONS]

OPTIONS:
    --tenant <id>        Tenant of the notification (default: tenant_id)
    -h, --help           Show this help`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			if err := MarkRead(c.Context(), d, tenant, args[0], config.GetBool("cache_enabled", true)); err != nil {
				return fmt.Errorf("mark-read: %w", err)
			}
			colors.Success(fmt.Sprintf("Notification %s marked as read", args[0]))
			return nil
		},
	}

	markReadCmd.Flags().StringVar(&tenant, "tenant", "", "Tenant of the notification")

	return markReadCmd
}

// MarkRead marks id as read on the backend, then in the offline cache when
// useCache is set. Cache failures only warn.
func MarkRead(ctx context.Context, d Deps, tenantFlag, id string, useCache bool) error {
	tenant, err := resolveTenant(tenantFlag)
	if err != nil {
		return err
	}
	service, err := d.NewService("")
	if err != nil {
		return err
	}
	if err := service.MarkAsRead(ctx, tenant, id); err != nil {
		return err
	}
	if !useCache || d.OpenCache == nil {
		return nil
	}

	cache, err := d.OpenCache()
	if err != nil {
		colors.Warning(fmt.Sprintf("offline cache unavailable: %v", err))
		return nil
	}
	defer cache.Close()
	err = cache.MarkRead(ctx, tenant, id)
	if err != nil && !errors.Is(err, domain.ErrNotificationNotFound) {
		colors.Warning(fmt.Sprintf("failed to update offline cache: %v", err))
	}
	return nil
}

func init() {
	cmd.RootCmd.AddCommand(NewMarkReadCmd(deps))
}
