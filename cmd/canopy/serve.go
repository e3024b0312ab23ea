package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	backend "github.com/redis/go-redis/v9"

	canopy "github.com/aretw0/canopy"
	"github.com/aretw0/canopy/internal/cli"
	httpAdapter "github.com/aretw0/canopy/pkg/adapters/http"
	"github.com/aretw0/canopy/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/canopy/pkg/adapters/redis"
	"github.com/aretw0/canopy/pkg/session"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the selection HTTP server",
	Long:  `Starts the engine in server mode, exposing the tree and per-session selections as a JSON API over HTTP.`,
	Run: func(cmd *cobra.Command, args []string) {
		treePath, _ := cmd.Flags().GetString("tree")
		debug, _ := cmd.Flags().GetBool("debug")
		port, _ := cmd.Flags().GetString("port")
		redisAddr, _ := cmd.Flags().GetString("redis")
		ttl, _ := cmd.Flags().GetDuration("session-ttl")

		engine, err := cli.BuildEngine(cmd.Context(), cli.EngineOptions{TreePath: treePath, Debug: debug})
		if err != nil {
			fmt.Printf("Error initializing canopy: %v\n", err)
			os.Exit(1)
		}

		sessions, err := buildSessionManager(redisAddr, ttl)
		if err != nil {
			fmt.Printf("Error initializing session store: %v\n", err)
			os.Exit(1)
		}

		httpAdapter.AppVersion = canopy.Version
		handler := httpAdapter.NewHandler(engine, sessions)

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.Handle("/", handler)

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: mux,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Canopy Server on %s\n", srv.Addr)
			fmt.Printf("Serving tree from: %s\n", treePath)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			// Error when starting HTTP server.
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			// Asking listener to shut down and shed load.
			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Canopy Server stopped gracefully")
		}
	},
}

// buildSessionManager picks the session backend. With a redis address the
// store and the cross-process lock both live in redis, so multiple server
// replicas can share sessions.
func buildSessionManager(redisAddr string, ttl time.Duration) (*session.Manager, error) {
	if redisAddr == "" {
		return session.NewManager(memory.NewStore()), nil
	}

	client := backend.NewClient(&backend.Options{Addr: redisAddr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping %s: %w", redisAddr, err)
	}

	storeOpts := []redisAdapter.StoreOption{}
	if ttl > 0 {
		storeOpts = append(storeOpts, redisAdapter.WithTTL(ttl))
	}
	store := redisAdapter.NewFromClient(client, storeOpts...)
	locker := redisAdapter.NewLocker(client, "canopy:lock:")

	return session.NewManager(store, session.WithLocker(locker)), nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("redis", "", "Redis address for shared session storage (e.g. localhost:6379)")
	serveCmd.Flags().Duration("session-ttl", 0, "Expire redis sessions after this duration (0 keeps them forever)")
}
