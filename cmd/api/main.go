package main

import (
	"os"

	"github.com/anime-shed/qr-decoder-go/internal/logger"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}
