// ABOUTME: Entry point for the mission-control data service
// ABOUTME: Serves the dashboard API and provides seed/token/health/init commands

package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/hmdre39/mission-control-dashboard/internal/auth"
	"github.com/hmdre39/mission-control-dashboard/internal/config"
	"github.com/hmdre39/mission-control-dashboard/internal/llm"
	"github.com/hmdre39/mission-control-dashboard/internal/server"
	"github.com/hmdre39/mission-control-dashboard/internal/store"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
            _         _                                 _             _
  _ __ ___ (_)___ ___(_) ___  _ __     ___ ___  _ __  | |_ _ __ ___ | |
 | '_ ' _ \| / __/ __| |/ _ \| '_ \   / __/ _ \| '_ \ | __| '__/ _ \| |
 | | | | | | \__ \__ \ | (_) | | | | | (_| (_) | | | || |_| | | (_) | |
 |_| |_| |_|_|___/___/_|\___/|_| |_|  \___\___/|_| |_| \__|_|  \___/|_|
`

// getConfigPath returns the path to the config file.
// Priority: MISSION_CONTROL_CONFIG env var > XDG_CONFIG_HOME/mission-control/config.yaml > ~/.config/mission-control/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("MISSION_CONTROL_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "mission-control", "config.yaml")
}

// getDataPath returns the path to the data directory.
// Priority: XDG_DATA_HOME/mission-control > ~/.local/share/mission-control
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "mission-control")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: mission-control <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve                    Start the dashboard API server")
		fmt.Println("  seed [--file PATH]       Load sample fixtures into the store")
		fmt.Println("  token --subject NAME     Mint an API bearer token")
		fmt.Println("  token --hash-key KEY     Print the bcrypt hash for an API key")
		fmt.Println("  health                   Check server health")
		fmt.Println("  init                     Create a new config file interactively")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "seed":
		err = runSeed(ctx)
	case "token":
		err = runToken()
	case "health":
		err = runHealth(ctx)
	case "init":
		err = runInit()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, falling back to the built-in
// defaults (memory store, localhost listener) when no file exists.
func loadConfig() (*config.Config, string, error) {
	configPath := getConfigPath()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return config.Default(), "(defaults)", nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, configPath, fmt.Errorf("loading config: %w", err)
	}
	return cfg, configPath, nil
}

// openStore selects the storage backend from config. The choice is
// made exactly once; callers never branch per request.
func openStore(cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	switch cfg.Database.Driver {
	case "sqlite":
		s, err := store.NewSQLiteStore(cfg.Database.Path)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		logger.Info("using sqlite store", "path", cfg.Database.Path)
		return s, nil
	case "memory":
		logger.Warn("using in-memory store - data is lost on restart")
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// loadFixtures resolves the seed fixture set: a TOML override file when
// configured, built-ins otherwise.
func loadFixtures(path string) (*store.Fixtures, error) {
	if path == "" {
		return store.DefaultFixtures(), nil
	}
	return store.LoadFixtures(path)
}

func runServe(ctx context.Context) error {
	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, configPath, err := loadConfig()
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Logging)

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:  %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:    %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Store:   %s\n", cfg.Database.Driver)
	fmt.Println()

	logger.Info("starting mission-control",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"driver", cfg.Database.Driver,
	)

	st, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	fixtures, err := loadFixtures(cfg.Seed.FixturesPath)
	if err != nil {
		return err
	}

	// The memory store starts empty every run, so preload it with the
	// sample fixtures.
	if cfg.Database.Driver == "memory" {
		n, err := store.Seed(ctx, st, fixtures)
		if err != nil {
			return fmt.Errorf("preloading memory store: %w", err)
		}
		logger.Info("preloaded memory store", "records", n)
	}

	var verifier auth.TokenVerifier
	if cfg.Auth.JWTSecret != "" {
		verifier = auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
		logger.Info("HTTP auth enabled")
	} else if cfg.Auth.APIKeyHash == "" {
		logger.Warn("HTTP auth disabled - no jwt_secret or api_key_hash configured")
	}

	chain := llm.NewChain(cfg.LLM, logger)

	srv := server.New(server.Config{
		Addr:       cfg.Server.HTTPAddr,
		Verifier:   verifier,
		APIKeyHash: cfg.Auth.APIKeyHash,
	}, st, chain, fixtures, logger)

	return srv.Run(ctx)
}

// runSeed loads the fixture set into the configured store. Accepts
// --file to override the fixtures with a TOML file.
func runSeed(ctx context.Context) error {
	var fixturePath string
	args := os.Args[2:]
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--file" || arg == "-f":
			if i+1 >= len(args) {
				return fmt.Errorf("--file requires a value")
			}
			fixturePath = args[i+1]
			i++
		case strings.HasPrefix(arg, "--file="):
			fixturePath = strings.TrimPrefix(arg, "--file=")
		default:
			return fmt.Errorf("unknown argument: %s", arg)
		}
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Database.Driver != "sqlite" {
		return fmt.Errorf("seed requires the sqlite driver (the memory store is preloaded on serve)")
	}

	logger := setupLogger(cfg.Logging)
	st, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	if fixturePath == "" {
		fixturePath = cfg.Seed.FixturesPath
	}
	fixtures, err := loadFixtures(fixturePath)
	if err != nil {
		return err
	}

	n, err := store.Seed(ctx, st, fixtures)
	if err != nil {
		return fmt.Errorf("seeding: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("  ✓ Seeded %d records\n", n)
	return nil
}

// runToken mints a bearer token for the dashboard, or hashes a static
// API key for the auth.api_key_hash config field.
func runToken() error {
	var subject, hashKey string
	ttl := 30 * 24 * time.Hour

	args := os.Args[2:]
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--subject" || arg == "-s":
			if i+1 >= len(args) {
				return fmt.Errorf("--subject requires a value")
			}
			subject = args[i+1]
			i++
		case strings.HasPrefix(arg, "--subject="):
			subject = strings.TrimPrefix(arg, "--subject=")
		case arg == "--hash-key":
			if i+1 >= len(args) {
				return fmt.Errorf("--hash-key requires a value")
			}
			hashKey = args[i+1]
			i++
		case strings.HasPrefix(arg, "--hash-key="):
			hashKey = strings.TrimPrefix(arg, "--hash-key=")
		case arg == "--ttl":
			if i+1 >= len(args) {
				return fmt.Errorf("--ttl requires a value")
			}
			d, err := time.ParseDuration(args[i+1])
			if err != nil {
				return fmt.Errorf("parsing --ttl: %w", err)
			}
			ttl = d
			i++
		default:
			return fmt.Errorf("unknown argument: %s", arg)
		}
	}

	if hashKey != "" {
		hash, err := auth.HashAPIKey(hashKey)
		if err != nil {
			return fmt.Errorf("hashing key: %w", err)
		}
		fmt.Println(hash)
		return nil
	}

	if subject == "" {
		return fmt.Errorf("--subject or --hash-key is required")
	}

	cfg, configPath, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("jwt_secret not configured in %s", configPath)
	}

	verifier := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	token, err := verifier.Generate(subject, ttl)
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}

	fmt.Println(token)
	return nil
}

func runHealth(ctx context.Context) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	url := fmt.Sprintf("http://%s/health", cfg.Server.HTTPAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("mission-control configuration setup")
	fmt.Println("===================================")
	fmt.Println()

	defaultConfigPath := getConfigPath()
	defaultDataPath := getDataPath()
	defaultDBPath := filepath.Join(defaultDataPath, "mission-control.db")

	outputFile := prompt(reader, "Config file path", defaultConfigPath)

	if _, err := os.Stat(outputFile); err == nil {
		overwrite := prompt(reader, "File exists. Overwrite?", "no")
		if strings.ToLower(overwrite) != "yes" && strings.ToLower(overwrite) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	fmt.Println("\n--- Server Configuration ---")
	httpAddr := prompt(reader, "HTTP address", "localhost:3000")

	fmt.Println("\n--- Database Configuration ---")
	driver := prompt(reader, "Store driver (sqlite/memory)", "sqlite")
	var dbPath string
	if driver == "sqlite" {
		dbPath = prompt(reader, "SQLite database path", defaultDBPath)
	}

	fmt.Println("\n--- Auth Configuration ---")
	enableAuth := prompt(reader, "Enable API auth?", "no")
	var jwtSecret string
	if strings.ToLower(enableAuth) == "yes" || strings.ToLower(enableAuth) == "y" {
		secretBytes := make([]byte, 32)
		if _, err := rand.Read(secretBytes); err != nil {
			return fmt.Errorf("generating JWT secret: %w", err)
		}
		jwtSecret = base64.StdEncoding.EncodeToString(secretBytes)
		fmt.Println("  Generated a random jwt_secret.")
	}

	fmt.Println("\n--- Logging Configuration ---")
	logLevel := prompt(reader, "Log level (debug/info/warn/error)", "info")
	logFormat := prompt(reader, "Log format (text/json)", "text")

	var cfg strings.Builder
	cfg.WriteString("# mission-control configuration\n")
	cfg.WriteString("# Generated by mission-control init\n\n")

	cfg.WriteString("server:\n")
	cfg.WriteString(fmt.Sprintf("  http_addr: \"%s\"\n", httpAddr))
	cfg.WriteString("\n")

	cfg.WriteString("database:\n")
	cfg.WriteString(fmt.Sprintf("  driver: \"%s\"\n", driver))
	if dbPath != "" {
		cfg.WriteString(fmt.Sprintf("  path: \"%s\"\n", dbPath))
	}
	cfg.WriteString("\n")

	if jwtSecret != "" {
		cfg.WriteString("auth:\n")
		cfg.WriteString(fmt.Sprintf("  jwt_secret: \"%s\"\n", jwtSecret))
		cfg.WriteString("\n")
	}

	cfg.WriteString("llm:\n")
	cfg.WriteString("  primary: \"claude-opus-4-1\"\n")
	cfg.WriteString("  fallbacks:\n")
	cfg.WriteString("    - \"claude-sonnet-4-5\"\n")
	cfg.WriteString("    - \"claude-haiku-4-5\"\n")
	cfg.WriteString("  max_retries: 2\n")
	cfg.WriteString("  retry_delay: \"1s\"\n")
	cfg.WriteString("\n")

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: \"%s\"\n", logLevel))
	cfg.WriteString(fmt.Sprintf("  format: \"%s\"\n", logFormat))

	configDir := filepath.Dir(outputFile)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(outputFile, []byte(cfg.String()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	if dbPath != "" {
		dataDir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
		fmt.Printf("\nData directory: %s\n", dataDir)
	}

	fmt.Printf("Config written to %s\n", outputFile)
	fmt.Println("\nTo start the server:")
	fmt.Printf("  mission-control serve\n")

	return nil
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	// Format timestamp
	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	// Colorize level
	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	// Print message
	buf.WriteString(r.Message)

	// Print handler-level attrs first (from WithAttrs)
	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	// Print record attrs
	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		// On EOF or error, return default
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}
