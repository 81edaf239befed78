package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"netpong/internal/game"
)

// FileName is the config file looked up in the config directory.
const FileName = "netpong.cfg.json"

// ServerConfig holds relay server settings
type ServerConfig struct {
	Addr          string
	WebDir        string
	SessionTTL    time.Duration
	SweepInterval time.Duration
}

// ClientConfig holds desktop client settings
type ClientConfig struct {
	ServerURL string
	StorePath string
	Session   string
}

// GameConfig holds the court constants both sides must agree on.
type GameConfig struct {
	PaddleWidth     float64
	PaddleHeight    float64
	BallRadius      float64
	PaddleStep      float64
	LaunchSpeed     float64
	TickPeriod      time.Duration
	BroadcastPeriod time.Duration
}

// Layout returns the match layout on the fixed court.
func (g GameConfig) Layout() game.Layout {
	return game.Layout{
		Court:        game.DefaultCourt,
		PaddleWidth:  g.PaddleWidth,
		PaddleHeight: g.PaddleHeight,
		BallRadius:   g.BallRadius,
	}
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")

	viper.SetDefault("server.addr", ":5080")
	viper.SetDefault("server.webDir", "./web")
	viper.SetDefault("server.sessionTTL", "1h")
	viper.SetDefault("server.sweepInterval", "5m")

	viper.SetDefault("client.serverUrl", "ws://localhost:5080")
	viper.SetDefault("client.storePath", "netpong.db")
	viper.SetDefault("client.session", "")

	viper.SetDefault("game.paddleWidth", game.PaddleWidth)
	viper.SetDefault("game.paddleHeight", game.PaddleHeight)
	viper.SetDefault("game.ballRadius", game.BallRadius)
	viper.SetDefault("game.paddleStep", game.PaddleStep)
	viper.SetDefault("game.launchSpeed", game.LaunchSpeed)
	viper.SetDefault("game.tickPeriod", game.TickPeriod.String())
	viper.SetDefault("game.broadcastPeriod", game.BroadcastPeriod.String())
}

// Load sets defaults, binds NETPONG_* environment variables and reads the
// JSON config file from configDir. A missing file leaves the defaults in place.
func Load(configDir string) error {
	setDefaults()

	viper.SetEnvPrefix("netpong")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if configDir == "" {
		return nil
	}

	viper.SetConfigName(FileName)
	viper.SetConfigType("json")
	viper.AddConfigPath(configDir)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetServerConfig returns the relay server configuration.
func GetServerConfig() ServerConfig {
	return ServerConfig{
		Addr:          viper.GetString("server.addr"),
		WebDir:        viper.GetString("server.webDir"),
		SessionTTL:    viper.GetDuration("server.sessionTTL"),
		SweepInterval: viper.GetDuration("server.sweepInterval"),
	}
}

// GetClientConfig returns the desktop client configuration.
func GetClientConfig() ClientConfig {
	return ClientConfig{
		ServerURL: viper.GetString("client.serverUrl"),
		StorePath: viper.GetString("client.storePath"),
		Session:   viper.GetString("client.session"),
	}
}

// GetGameConfig returns the court constants.
func GetGameConfig() GameConfig {
	return GameConfig{
		PaddleWidth:     viper.GetFloat64("game.paddleWidth"),
		PaddleHeight:    viper.GetFloat64("game.paddleHeight"),
		BallRadius:      viper.GetFloat64("game.ballRadius"),
		PaddleStep:      viper.GetFloat64("game.paddleStep"),
		LaunchSpeed:     viper.GetFloat64("game.launchSpeed"),
		TickPeriod:      viper.GetDuration("game.tickPeriod"),
		BroadcastPeriod: viper.GetDuration("game.broadcastPeriod"),
	}
}
