// Package main is the entry point for the casetracker service.
package main

import (
	"context"
	"fmt"
	"os"

	"casetracker/bootstrap"
	"casetracker/cmd"
	_ "casetracker/docs"
)

// run initializes and starts the casetracker service.
func run(configFile string) error {
	ctx := context.Background()

	// Create and initialize application
	app, err := bootstrap.NewApp(ctx, configFile)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	// Start all services
	if err := app.Start(ctx); err != nil {
		app.Shutdown()
		return fmt.Errorf("failed to start application: %w", err)
	}

	// Wait for shutdown signal
	app.WaitForShutdown()

	// Graceful shutdown
	app.Shutdown()

	return nil
}

func main() {
	if err := cmd.NewRootCmd(run).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
