package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"restaurant-orders/internal/auth"
	"restaurant-orders/internal/config"
	"restaurant-orders/internal/database"
	"restaurant-orders/internal/logger"
	"restaurant-orders/internal/messaging"
	"restaurant-orders/internal/services/fulfillment"
	"restaurant-orders/internal/services/notification"
	"restaurant-orders/internal/services/order"
	"restaurant-orders/internal/services/payment"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "restaurant-orders",
		Short: "Restaurant ordering platform services",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to configuration file")

	rootCmd.AddCommand(
		apiCommand(&configPath),
		kitchenNotifierCommand(&configPath),
		migrateCommand(&configPath),
		tokenCommand(&configPath),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext(log *logger.Logger, requestID string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
		cancel()
	}()

	return ctx, cancel
}

func apiCommand(configPath *string) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "api",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cmd.Flags().Changed("port") {
				cfg.HTTP.Port = port
			}

			log := logger.New("api")
			requestID := logger.GenerateRequestID()
			ctx, cancel := signalContext(log, requestID)
			defer cancel()

			return runAPI(ctx, cfg, log, requestID)
		},
	}
	cmd.Flags().IntVar(&port, "port", 3000, "HTTP port")
	return cmd
}

func runAPI(ctx context.Context, cfg *config.Config, log *logger.Logger, requestID string) error {
	db, err := database.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	log.Info("db_connected", "Connected to PostgreSQL database", requestID, nil)

	if err := db.RunMigrations(ctx, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	conn, err := messaging.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}
	defer conn.Close()

	log.Info("rabbitmq_connected", "Connected to RabbitMQ", requestID, nil)

	publisher := messaging.NewPublisher(conn, log)

	jwtService := auth.NewJWTService(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.AccessTokenMinutes)*time.Minute)
	mw := auth.NewMiddleware(jwtService)

	orderService := order.NewService(order.NewPostgresStore(db), publisher, log)
	orderHandler := order.NewHandler(orderService, log)

	fulfillmentService := fulfillment.NewService(fulfillment.NewPostgresStore(db), publisher, log)
	fulfillmentHandler := fulfillment.NewHandler(fulfillmentService, log)

	gateway := payment.NewRazorpayGateway(cfg.Razorpay)
	paymentService := payment.NewService(payment.NewPostgresStore(db), gateway, publisher, cfg.Razorpay, log)
	paymentHandler := payment.NewHandler(paymentService, log)

	mux := http.NewServeMux()
	orderHandler.Register(mux, mw)
	fulfillmentHandler.Register(mux, mw)
	paymentHandler.Register(mux, mw)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok"}
		code := http.StatusOK
		if err := db.Ping(r.Context()); err != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(status)
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           requestLogging(mux, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("service_started", fmt.Sprintf("API server started on port %d", cfg.HTTP.Port), requestID, map[string]interface{}{
			"port": cfg.HTTP.Port,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server_failed", "HTTP server failed", requestID, err, nil)
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	log.Info("service_stopped", "API server stopped gracefully", requestID, nil)
	return nil
}

// statusRecorder captures the response status for request logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// requestLogging logs one structured line per request
func requestLogging(next http.Handler, log *logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		log.Debug("http_request", fmt.Sprintf("%s %s", r.Method, r.URL.Path), "", map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      recorder.status,
			"duration_ms": time.Since(start).Milliseconds(),
			"remote_addr": r.RemoteAddr,
		})
	})
}

func kitchenNotifierCommand(configPath *string) *cobra.Command {
	var prefetch int

	cmd := &cobra.Command{
		Use:   "kitchen-notifier",
		Short: "Run the kitchen display notifier",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			log := logger.New("kitchen-notifier")
			requestID := logger.GenerateRequestID()
			ctx, cancel := signalContext(log, requestID)
			defer cancel()

			conn, err := messaging.New(cfg, log)
			if err != nil {
				return fmt.Errorf("failed to initialize messaging: %w", err)
			}
			defer conn.Close()

			hostname, _ := os.Hostname()
			consumer := messaging.NewConsumer(conn, log, messaging.KitchenDisplayQueue,
				fmt.Sprintf("kitchen-notifier-%s", hostname), prefetch)

			subscriber := notification.NewSubscriber(consumer, log)
			return subscriber.Start(ctx)
		},
	}
	cmd.Flags().IntVar(&prefetch, "prefetch", 1, "RabbitMQ prefetch count")
	return cmd
}

func migrateCommand(configPath *string) *cobra.Command {
	var migrationsDir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			log := logger.New("migrate")
			db, err := database.New(cfg, log)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer db.Close()

			if err := db.RunMigrations(context.Background(), migrationsDir); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			fmt.Println("Migrations applied")
			return nil
		},
	}
	cmd.Flags().StringVar(&migrationsDir, "dir", "migrations", "migrations directory")
	return cmd
}

// tokenCommand mints an access token for local development and operations.
func tokenCommand(configPath *string) *cobra.Command {
	var (
		userID string
		role   string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			switch role {
			case auth.RoleCustomer, auth.RoleKitchen, auth.RoleWaiter, auth.RoleAdmin:
			default:
				return fmt.Errorf("role must be one of: customer, kitchen, waiter, admin")
			}

			jwtService := auth.NewJWTService(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.AccessTokenMinutes)*time.Minute)
			token, expiresAt, err := jwtService.GenerateToken(userID, role)
			if err != nil {
				return fmt.Errorf("failed to generate token: %w", err)
			}

			fmt.Println(token)
			fmt.Fprintf(os.Stderr, "expires at %s\n", expiresAt.UTC().Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id to embed in the token")
	cmd.Flags().StringVar(&role, "role", auth.RoleCustomer, "role to embed in the token")
	cmd.MarkFlagRequired("user")
	return cmd
}
