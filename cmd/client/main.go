package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"netpong/internal/client"
	"netpong/internal/client/view"
	"netpong/internal/config"
	"netpong/internal/logging"
)

var version = "dev"

// Game adapts the App to ebiten's update/draw loop.
type Game struct {
	app      *client.App
	renderer *view.Renderer
	title    string
}

func (g *Game) Update() error {
	for _, in := range view.Intents() {
		g.app.Input(in)
	}

	if id := g.app.Snapshot().SessionID; id != g.title {
		g.title = id
		if id == "" {
			ebiten.SetWindowTitle("netpong")
		} else {
			ebiten.SetWindowTitle(id)
		}
	}

	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.Draw(screen, g.app.Snapshot())
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.renderer.Size()
}

func run(configDir string) error {
	if err := config.Load(configDir); err != nil {
		return err
	}
	log := logging.New(os.Stderr, config.GetString("logLevel"))
	cfg := config.GetClientConfig()
	gc := config.GetGameConfig()

	store, err := client.OpenStore(cfg.StorePath)
	if err != nil {
		return err
	}
	defer store.Close()

	settings := client.Settings{
		Layout:          gc.Layout(),
		TickPeriod:      gc.TickPeriod,
		BroadcastPeriod: gc.BroadcastPeriod,
		PaddleStep:      gc.PaddleStep,
	}
	app := client.NewApp(cfg.ServerURL, settings, store, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := app.Run(ctx, cfg.Session); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("client stopped")
		}
	}()

	renderer := view.NewRenderer(settings.Layout.Court)
	w, h := renderer.Size()
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("netpong")

	log.Info().Str("server", cfg.ServerURL).Msg("starting client")
	return ebiten.RunGame(&Game{app: app, renderer: renderer})
}

func main() {
	var configDir string

	rootCmd := &cobra.Command{
		Use:           "netpong",
		Short:         "Two-player networked Pong",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configDir)
		},
	}
	rootCmd.Flags().StringVarP(&configDir, "config", "c", ".", "directory holding "+config.FileName)
	rootCmd.Flags().String("server", "", "relay server url")
	rootCmd.Flags().String("session", "", "resume this session id")
	viper.BindPFlag("client.serverUrl", rootCmd.Flags().Lookup("server"))
	viper.BindPFlag("client.session", rootCmd.Flags().Lookup("session"))

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
