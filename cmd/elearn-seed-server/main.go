package main

import (
	"context"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/at-ishikawa/elearn/internal/bootstrap"
	"github.com/at-ishikawa/elearn/internal/config"
	"github.com/at-ishikawa/elearn/internal/seed"
	"github.com/at-ishikawa/elearn/internal/server"
)

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "elearn-seed-server",
		Short:         "Serve the e-learning seed documents over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	app := bootstrap.New()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.Port))
	if err != nil {
		return fmt.Errorf("net.Listen() > %w", err)
	}
	srv := &http.Server{
		Handler: newHandler(cfg.Server),
	}
	return app.Serve(ctx, srv, listener)
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}

// newHandler serves the seed documents under /data/, from the configured
// directory or the embedded defaults.
func newHandler(cfg config.ServerConfig) http.Handler {
	var fsys fs.FS = seed.Embedded()
	if cfg.SeedDirectory != "" {
		fsys = os.DirFS(cfg.SeedDirectory)
	}
	handler := server.NewSeedHandler(fsys, "data")

	mux := http.NewServeMux()
	mux.Handle(handler.Pattern(), handler)
	return server.CORSMiddleware(cfg.CORS.AllowedOrigins, h2c.NewHandler(mux, &http2.Server{}))
}
