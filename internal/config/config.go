package config

import (
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/shoplabs/shopcore/pkg/logger"
)

// MustInit loads configuration and installs the default logger. The .env file
// is optional; config.yaml is not.
func MustInit() {
	_ = godotenv.Load("./.env")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/shopcore")
	viper.AddConfigPath(".")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		panic("error while reading config file: " + err.Error())
	}

	SetupLogger()
}

// SetupLogger installs the JSON slog handler as the process default.
func SetupLogger() {
	handler := logger.NewHandler(nil)
	log := slog.New(handler)
	slog.SetDefault(log)
}
