package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"cadence/internal/bootstrap"
)

func newNotifyCmd(dataPath *string) *cobra.Command {
	notify := &cobra.Command{Use: "notify", Short: "Reminder digests through notifier plugins"}

	notify.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List notifier plugins",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(context.Background(), *dataPath, func(app *bootstrap.App) error {
				items, err := app.NotifyCLI.List(context.Background())
				if err != nil {
					return err
				}
				if len(items) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no notifiers")
					return nil
				}
				for _, item := range items {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tenabled=%t\t%s\n", item.Name, item.Version, item.Enabled, item.Binary)
				}
				return nil
			})
		},
	})

	notify.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Check notifier checksums, binaries and handshakes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(context.Background(), *dataPath, func(app *bootstrap.App) error {
				results, err := app.NotifyCLI.Doctor(context.Background())
				if err != nil {
					return err
				}
				for _, r := range results {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\tchecksum=%t\tbinary=%t\tlifecycle=%t", r.Name, r.ChecksumValid, r.BinaryReachable, r.LifecycleOK)
					if r.Error != "" {
						_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\terror=%s", r.Error)
					}
					_, _ = fmt.Fprintln(cmd.OutOrStdout())
				}
				return nil
			})
		},
	})

	var today string
	digest := &cobra.Command{
		Use:   "digest",
		Short: "Print the reminder digest without sending it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(context.Background(), *dataPath, func(app *bootstrap.App) error {
				d, err := app.NotifyCLI.Digest(context.Background(), today)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), d.Title)
				if d.Body != "" {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), d.Body)
				}
				return nil
			})
		},
	}
	digest.Flags().StringVar(&today, "today", "", "date key (default today)")

	var force bool
	send := &cobra.Command{
		Use:   "send",
		Short: "Send the digest to every enabled notifier",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(context.Background(), *dataPath, func(app *bootstrap.App) error {
				out, err := app.NotifyCLI.Send(context.Background(), today, force)
				if err != nil {
					return err
				}
				if out.Skipped {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "nothing due, skipped (use --force to send anyway)")
					return nil
				}
				for _, d := range out.Deliveries {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\tdelivered=%t", d.Notifier, d.Delivered)
					if d.Error != "" {
						_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\terror=%s", d.Error)
					}
					_, _ = fmt.Fprintln(cmd.OutOrStdout())
				}
				return nil
			})
		},
	}
	send.Flags().StringVar(&today, "today", "", "date key (default today)")
	send.Flags().BoolVar(&force, "force", false, "send even when nothing is due")

	daemon := &cobra.Command{
		Use:   "daemon",
		Short: "Send the digest on the configured schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()
			return withApp(ctx, *dataPath, func(app *bootstrap.App) error {
				if !app.Config.Notify.Enabled {
					return fmt.Errorf("notifications are disabled; set notify.enabled: true in cadence.yaml")
				}
				d, err := app.NotifyDaemon()
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "sending digests on %q\n", app.Config.Notify.Schedule)
				return d.Run(ctx)
			})
		},
	}

	notify.AddCommand(digest, send, daemon)
	return notify
}
