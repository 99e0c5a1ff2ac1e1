package config

import (
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Terminal TerminalConfig
	Trade    TradeConfig
	Runtime  RuntimeConfig
}

type ServerConfig struct {
	Addr         string
	APIKey       string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	TickInterval time.Duration
}

type TerminalConfig struct {
	BaseUrl       string
	Token         string
	Timeout       time.Duration
	ReadyAttempts int
}

type TradeConfig struct {
	Deviation           int
	Magic               int64
	Comment             string
	HistoryLookbackDays int
}

type RuntimeConfig struct {
	Log LogConfig
}

type LogConfig struct {
	Level      string
	Format     string
	File       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

func Load() (*Config, error) {

	cfg := &Config{}
	viper.AddConfigPath("configs")
	viper.SetConfigName("config")
	viper.ReadInConfig()

	viper.SetDefault("server.addr", ":5001")
	viper.SetDefault("server.read_timeout_sec", 30)
	viper.SetDefault("server.write_timeout_sec", 30)
	viper.SetDefault("server.tick_interval_ms", 1000)
	viper.SetDefault("terminal.timeout_sec", 15)
	viper.SetDefault("terminal.ready_attempts", 5)
	viper.SetDefault("trade.deviation", 20)
	viper.SetDefault("trade.magic", 23400)
	viper.SetDefault("trade.comment", "n8n_trade")
	viper.SetDefault("trade.history_lookback_days", 7)
	viper.SetDefault("runtime.log.level", "info")

	cfg.Server = ServerConfig{
		Addr:         viper.GetString("server.addr"),
		APIKey:       envSub("server.api_key"),
		ReadTimeout:  time.Duration(viper.GetInt("server.read_timeout_sec")) * time.Second,
		WriteTimeout: time.Duration(viper.GetInt("server.write_timeout_sec")) * time.Second,
		TickInterval: time.Duration(viper.GetInt("server.tick_interval_ms")) * time.Millisecond,
	}

	cfg.Terminal = TerminalConfig{
		BaseUrl:       viper.GetString("terminal.base_url"),
		Token:         envSub("terminal.token"),
		Timeout:       time.Duration(viper.GetInt("terminal.timeout_sec")) * time.Second,
		ReadyAttempts: viper.GetInt("terminal.ready_attempts"),
	}

	cfg.Trade = TradeConfig{
		Deviation:           viper.GetInt("trade.deviation"),
		Magic:               viper.GetInt64("trade.magic"),
		Comment:             viper.GetString("trade.comment"),
		HistoryLookbackDays: viper.GetInt("trade.history_lookback_days"),
	}

	cfg.Runtime = RuntimeConfig{
		Log: LogConfig{
			Level:      viper.GetString("runtime.log.level"),
			Format:     viper.GetString("runtime.log.format"),
			File:       viper.GetString("runtime.log.file"),
			MaxSize:    viper.GetInt("runtime.log.max_size"),
			MaxBackups: viper.GetInt("runtime.log.max_backups"),
			MaxAge:     viper.GetInt("runtime.log.max_age"),
			Compress:   viper.GetBool("runtime.log.compress"),
		},
	}

	if cfg.Server.APIKey == "" {
		cfg.Server.APIKey = os.Getenv("API_SECRET_KEY")
	}

	return cfg, nil
}

func envSub(key string) string {
	val := viper.GetString(key)
	if val == "" {
		return ""
	}

	re := regexp.MustCompile(`\$\{(\w+)\}`)
	return re.ReplaceAllStringFunc(val, func(match string) string {
		envKey := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(envKey)
	})
}
