package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"statsboard-backend/config"
	"statsboard-backend/pkg/adapter/controller"
	"statsboard-backend/pkg/entity/model"
	"statsboard-backend/pkg/infrastructure/datastore"
	"statsboard-backend/pkg/registry"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var env string

	root := &cobra.Command{
		Use:          "job",
		Short:        "One-off statsboard jobs",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.ReadConfig(config.ReadConfigOption{AppEnv: env})
		},
	}
	root.PersistentFlags().StringVar(&env, "env", "", "Environment (development, test, e2e, staging, production)")

	root.AddCommand(newAuditCmd(), newDashboardCmd())
	return root
}

func newAuditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Check every configured project's analytics token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withController(cmd.Context(), func(ctx context.Context, ctrl controller.Controller) error {
				report, err := ctrl.CredentialAudit.Run(ctx)
				if err != nil {
					return err
				}
				if err := printJSON(report); err != nil {
					return err
				}
				if report.Failed > 0 {
					return fmt.Errorf("%d of %d credentials failed", report.Failed, len(report.Checks))
				}
				return nil
			})
		},
	}
}

func newDashboardCmd() *cobra.Command {
	var (
		userID string
		start  string
		end    string
		days   int
	)

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Print the aggregated dashboard of a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			dateRange, err := resolveRange(start, end, days)
			if err != nil {
				return err
			}

			return withController(cmd.Context(), func(ctx context.Context, ctrl controller.Controller) error {
				result, err := ctrl.Dashboard.Overview(ctx, model.ID(userID), dateRange)
				if err != nil {
					return err
				}
				return printJSON(result)
			})
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "Owner id of the projects")
	cmd.Flags().StringVar(&start, "start", "", "First day, YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "Last day, YYYY-MM-DD")
	cmd.Flags().IntVar(&days, "days", 30, "Range length when no dates are given")
	_ = cmd.MarkFlagRequired("user")
	cmd.MarkFlagsRequiredTogether("start", "end")
	return cmd
}

func resolveRange(start, end string, days int) (model.DateRange, error) {
	if start == "" && end == "" {
		if days <= 0 {
			return model.DateRange{}, errors.New("--days must be positive")
		}
		return model.LastDays(time.Now(), days), nil
	}
	return model.ParseDateRange(start, end)
}

func withController(ctx context.Context, fn func(context.Context, controller.Controller) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	pool, err := datastore.NewPool(ctx)
	if err != nil {
		log.Printf("failed to open db connection: %v", err)
		return err
	}
	defer pool.Close()

	ctrl := registry.New(pool).NewController()
	return fn(ctx, ctrl)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
