package cmd

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

	"docqa/internal/podcast"
	"docqa/internal/server"
)

var serveAllowAll bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the docqa HTTP server",
	Long:  `Starts the HTTP server exposing collections, documents, ask/search and podcast job endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		workerCtx, cancelWorker := context.WithCancel(context.Background())
		defer cancelWorker()

		worker := podcast.NewWorker(podcast.NewStore(rt.db), rt.catalog, rt.index, rt.provider, rt.cfg.Model, nil)
		worker.Start(workerCtx)
		defer worker.Stop()

		srv := server.New(server.Config{
			Port:     rt.cfg.Port,
			AllowAll: serveAllowAll,
		}, rt.catalog, rt.engine, rt.ingestor, worker)

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case sig := <-sigCh:
			fmt.Fprintf(os.Stderr, "received %s, shutting down\n", sig)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveAllowAll, "allow-all-origins", false, "allow all CORS origins (dev mode)")
	rootCmd.AddCommand(serveCmd)
}
