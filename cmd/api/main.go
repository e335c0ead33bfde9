package main

import (
	"os"

	"github.com/edvios/backend/internal/pkg/logger" // Still needed for initial error logging
	"github.com/edvios/backend/internal/server"
)

// @title Edvios API
// @version 1.0
// @description API for the Edvios study abroad platform: agents, students, applications, catalog and chat

// @contact.name API Support
// @contact.email support@edvios.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Identity provider access token, prefixed with "Bearer "

func main() {
	srv, err := server.NewServer()
	if err != nil {
		// Error details are logged within NewServer's setup functions
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Run blocks until a shutdown signal
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
