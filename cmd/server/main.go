package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"netpong/internal/config"
	"netpong/internal/logging"
	"netpong/internal/server"
)

var version = "dev"

func serve(configDir string) error {
	if err := config.Load(configDir); err != nil {
		return err
	}
	log := logging.New(os.Stderr, config.GetString("logLevel"))
	cfg := config.GetServerConfig()
	gc := config.GetGameConfig()

	mm := server.NewMatchmaking(server.Options{
		Layout:      gc.Layout(),
		LaunchSpeed: gc.LaunchSpeed,
		SessionTTL:  cfg.SessionTTL,
		Metrics:     server.NewMetrics(),
		Log:         log,
	})

	webDir := cfg.WebDir
	if _, err := os.Stat(webDir); err != nil {
		log.Warn().Str("dir", webDir).Msg("web directory not found, serving no static files")
		webDir = ""
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go mm.Run(ctx, cfg.SweepInterval)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.NewRouter(mm, webDir, prometheus.DefaultGatherer, log),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", cfg.Addr).Str("version", version).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

func main() {
	var configDir string

	rootCmd := &cobra.Command{
		Use:           "netpong-server",
		Short:         "Pairing and relay server for netpong",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configDir)
		},
	}
	rootCmd.Flags().StringVarP(&configDir, "config", "c", ".", "directory holding "+config.FileName)
	rootCmd.Flags().String("addr", ":5080", "listen address")
	rootCmd.Flags().String("web", "./web", "directory with static files")
	viper.BindPFlag("server.addr", rootCmd.Flags().Lookup("addr"))
	viper.BindPFlag("server.webDir", rootCmd.Flags().Lookup("web"))

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
