// Command mock-profile-api serves donor fixtures in the shape of the upstream
// profile API, for running the server locally.
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

	"github.com/spf13/cobra"

	"donorprofile/internal/platform/httpserver"
	"donorprofile/internal/platform/logger"
)

func main() {
	var (
		addr     = ":8000"
		fixtures string
		logLevel = "info"
	)

	root := &cobra.Command{
		Use:          "mock-profile-api",
		Short:        "Serve donor fixtures as a stand-in for the profile API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.New(logLevel, "text")
			donors, err := loadFixtures(fixtures)
			if err != nil {
				return err
			}

			srv := httpserver.New(addr, newServer(donors, log))
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.Info("starting mock profile API", "addr", addr, "donors", len(donors))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	root.Flags().StringVar(&addr, "addr", addr, "Listen address")
	root.Flags().StringVar(&fixtures, "fixtures", "", "YAML fixture file (defaults to the built-in donors)")
	root.Flags().StringVar(&logLevel, "log-level", logLevel, "Log level")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
