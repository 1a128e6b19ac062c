package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/farmerchain/farmerchain/internal/api"
	"github.com/farmerchain/farmerchain/internal/carbon"
	"github.com/farmerchain/farmerchain/internal/config"
	"github.com/farmerchain/farmerchain/internal/db"
	"github.com/farmerchain/farmerchain/internal/mail"
	"github.com/farmerchain/farmerchain/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: farmerchain <init|serve>")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		cmdInit(os.Args[2:])
	case "serve":
		cmdServe(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\nUsage: farmerchain <init|serve>\n", os.Args[1])
		os.Exit(1)
	}
}

func cmdInit(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	configPath := fs.String("config", ".", "directory containing app.env")
	dbPath := fs.String("db", "", "path to SQLite database file (overrides config)")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	if _, err := os.Stat(cfg.DBPath); err == nil {
		fmt.Fprintf(os.Stderr, "Error: database file %s already exists\n", cfg.DBPath)
		os.Exit(1)
	}

	database, password, err := initDatabase(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	database.Close()

	printInitResult(cfg.DBPath, password)
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", ".", "directory containing app.env")
	addr := fs.String("addr", "", "listen address (overrides config)")
	dbPath := fs.String("db", "", "path to SQLite database file (overrides config)")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading configuration", "error", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.ServerAddress = *addr
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		jwtSecret, err = randomString(32)
		if err != nil {
			slog.Error("generating JWT secret", "error", err)
			os.Exit(1)
		}
		slog.Warn("JWT secret auto-generated, tokens will be invalidated on restart")
	}

	// Auto-init the database on first run.
	if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
		database, password, err := initDatabase(cfg.DBPath)
		if err != nil {
			slog.Error("initializing database", "error", err)
			os.Exit(1)
		}
		database.Close()
		printInitResult(cfg.DBPath, password)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		slog.Error("opening database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		slog.Error("migrating database", "error", err)
		os.Exit(1)
	}
	slog.Info("database ready", "path", cfg.DBPath)

	mailer := mail.New(cfg)
	if !mailer.Enabled() {
		slog.Warn("SMTP not configured, email notifications disabled")
	}
	calc := &carbon.Calculator{Routes: carbon.NewRouteFinder(cfg.OpenRouteAPIKey)}

	handler := api.LoggingMiddleware(api.NewRouter(database, jwtSecret, mailer, calc))

	server := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.ServerAddress)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// initDatabase creates the database file, the schema and the initial
// admin account with a generated password.
func initDatabase(path string) (*sql.DB, string, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening database: %w", err)
	}

	if err := db.Migrate(database); err != nil {
		database.Close()
		return nil, "", fmt.Errorf("initializing schema: %w", err)
	}

	password, err := randomString(16)
	if err != nil {
		database.Close()
		return nil, "", fmt.Errorf("generating admin password: %w", err)
	}
	wallet, err := randomString(40)
	if err != nil {
		database.Close()
		return nil, "", fmt.Errorf("generating admin wallet: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		database.Close()
		return nil, "", fmt.Errorf("hashing admin password: %w", err)
	}

	if _, err := store.CreateAdmin(context.Background(), database, "admin", string(hash), "0x"+wallet); err != nil {
		database.Close()
		return nil, "", fmt.Errorf("creating admin account: %w", err)
	}

	return database, password, nil
}

func printInitResult(dbPath, password string) {
	fmt.Printf("Database created: %s\n", dbPath)
	fmt.Println("Schema initialized.")
	fmt.Println()
	fmt.Println("Admin account created:")
	fmt.Println("  Username: admin")
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password — it cannot be recovered.")
	fmt.Println()
}

const passwordChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomString(length int) (string, error) {
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(passwordChars))))
		if err != nil {
			return "", err
		}
		b[i] = passwordChars[n.Int64()]
	}
	return string(b), nil
}
