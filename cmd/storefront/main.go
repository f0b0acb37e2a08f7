package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/aq2208/gstore-api/cmd/storefront/app"
	"github.com/aq2208/gstore-api/configs"
	"github.com/aq2208/gstore-api/internal/adapter/catalog"
	"github.com/aq2208/gstore-api/internal/adapter/grpc"
	"github.com/aq2208/gstore-api/internal/adapter/observ"
	"github.com/aq2208/gstore-api/internal/usecase"
	"github.com/spf13/cobra"
)

var (
	configDir string
	envName   string
)

func main() {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Online electronics storefront",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	env := os.Getenv("APP_ENV") // dev | staging | prod
	if env == "" {
		env = "dev"
	}
	root.PersistentFlags().StringVar(&configDir, "config-dir", "configs", "directory holding base.yaml and <env>.yaml")
	root.PersistentFlags().StringVar(&envName, "env", env, "environment overlay to load")

	root.AddCommand(serveCmd(), ordersCmd(), catalogCmd(), notifierCmd(), healthCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "storefront:", err)
		os.Exit(1)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configs.Load(configDir, envName)
			if err != nil {
				return err
			}
			ctx, stop := signalContext()
			defer stop()

			a, cleanup, err := app.InitWithConfig(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()
			return a.Serve(ctx)
		},
	}
}

func ordersCmd() *cobra.Command {
	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "Print the order log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configs.Load(configDir, envName)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			stores, err := app.OpenStores(ctx, cfg)
			if err != nil {
				return err
			}
			defer stores.Close()

			orders, err := usecase.NewOrderLog(stores.KV).List(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(orders)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATE\tCUSTOMER\tITEMS\tTOTAL\tSTATUS")
			for _, o := range orders {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
					o.ID, o.Date.Format(time.RFC3339), o.Customer.Email, len(o.Items),
					usecase.FormatIDR(o.Totals.Total), o.Status)
			}
			return tw.Flush()
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")

	cmd := &cobra.Command{Use: "orders", Short: "Inspect placed orders"}
	cmd.AddCommand(list)
	return cmd
}

func catalogCmd() *cobra.Command {
	var (
		file  string
		query usecase.Query
		price string
		sort  string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List products with the storefront filters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := catalog.Load(file)
			if err != nil {
				return err
			}
			q := usecase.ParseQuery(url.Values{
				"search":   {query.Search},
				"category": {query.Category},
				"price":    {price},
				"sort":     {sort},
			})

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK")
			for _, p := range cat.Search(q) {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n", p.ID, p.Name, p.Category, usecase.FormatIDRInt(p.Price), p.Stock)
			}
			return tw.Flush()
		},
	}
	list.Flags().StringVar(&file, "file", "", "catalog yaml (default: embedded)")
	list.Flags().StringVar(&query.Search, "search", "", "name substring")
	list.Flags().StringVar(&query.Category, "category", "", "category filter")
	list.Flags().StringVar(&price, "price", "", "price bucket: 0-2000000, 2000000-5000000, 5000000-10000000, 10000000-999999999")
	list.Flags().StringVar(&sort, "sort", "", "price-low | price-high | name-asc | name-desc")

	cmd := &cobra.Command{Use: "catalog", Short: "Inspect the product catalog"}
	cmd.AddCommand(list)
	return cmd
}

func notifierCmd() *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "notifier",
		Short: "Consume order.placed events and send confirmations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configs.Load(configDir, envName)
			if err != nil {
				return err
			}
			if source != "" {
				cfg.Notifier.Source = source
			}

			logger, err := observ.NewLogger(cfg.App.LogLevel)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signalContext()
			defer stop()
			return app.RunNotifier(ctx, cfg, logger)
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "rabbitmq | kafka (overrides notifier.source)")
	return cmd
}

func healthCmd() *cobra.Command {
	var (
		target  string
		service string
	)
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Probe a running storefront over gRPC health",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if target == "" {
				cfg, err := configs.Load(configDir, envName)
				if err != nil {
					return err
				}
				target = cfg.GRPC.HealthAddr
			}
			status, err := grpc.Check(cmd.Context(), grpc.ClientConfig{Target: target, Timeout: 5 * time.Second}, service)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), status)
			if status != "SERVING" {
				return fmt.Errorf("not serving")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "host:port (default: grpc.health_addr)")
	cmd.Flags().StringVar(&service, "service", grpc.ServiceName, "service name, empty for overall")
	return cmd
}
