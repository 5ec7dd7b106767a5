package util

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads a .env file when present. Missing files are fine: in
// production the variables come from the real environment.
func LoadEnv() error {
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load()
}

func GetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
