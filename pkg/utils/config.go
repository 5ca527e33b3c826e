package utils

import (
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoadConfig primes configuration from a .env file (when present) and wires
// viper so flags and environment variables can override it. Missing files
// are fine: everything has a default.
func LoadConfig(path string) {
	_ = godotenv.Load()

	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()
}
