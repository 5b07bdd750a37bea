package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pdfshelf/pdfshelf/client"
	"github.com/pdfshelf/pdfshelf/config"
	"github.com/pdfshelf/pdfshelf/logger"
	"github.com/pdfshelf/pdfshelf/mcpserver"
	"github.com/pdfshelf/pdfshelf/server"
)

const (
	defaultAddr       = ":8080"
	defaultConfigFile = "./config.yaml"
	defaultLogLevel   = "info"
	defaultMode       = "stdio"
)

func main() {
	addr := getEnv("ADDR", defaultAddr)
	configFile := getEnv("CONFIG_FILE", defaultConfigFile)
	logLevel := getEnv("LOG_LEVEL", defaultLogLevel)
	mode := getEnv("MODE", defaultMode)
	redisURL := getEnv("REDIS_URL", "")
	roots := getEnv("PDF_ROOTS", "")

	// Logs go to stderr; in stdio mode stdout belongs to the MCP transport.
	log := logger.NewWithLevel(logger.ParseLevel(logLevel))

	log.Info("starting pdfshelf", "mode", mode, "log_level", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var c *client.Client
	var err error
	if _, statErr := os.Stat(configFile); statErr == nil {
		log.Info("loading config from file", "file", configFile)
		c, err = client.NewFromFile(configFile)
		if err != nil {
			log.Error("failed to load config from file", "error", err)
			os.Exit(1)
		}
	} else {
		if roots == "" {
			log.Error("no config file found and PDF_ROOTS is not set", "checked", configFile)
			os.Exit(1)
		}
		log.Info("using PDF_ROOTS configuration (config file not found)", "checked", configFile)
		cfg := config.New()
		cfg.Paths.AllowedRoots = splitRoots(roots)
		c, err = client.New(cfg)
		if err != nil {
			log.Error("failed to create client", "error", err)
			os.Exit(1)
		}
	}
	c = c.WithLogger(log)
	defer c.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info("received shutdown signal", "signal", sig.String())
		cancel()
	}()

	mcpSrv := mcpserver.New(c, log)

	switch mode {
	case "stdio":
		if err := mcpSrv.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("MCP server error", "error", err)
			os.Exit(1)
		}
	case "http":
		srv, err := server.New(c, log, &server.ServerConfig{
			RedisURL:   redisURL,
			MCPHandler: mcpSrv.Handler(),
		})
		if err != nil {
			log.Error("failed to create server", "error", err)
			os.Exit(1)
		}
		defer srv.Close()

		if err := srv.StartWithShutdown(ctx, addr); err != nil {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	default:
		log.Error("unknown mode, expected stdio or http", "mode", mode)
		os.Exit(1)
	}

	log.Info("shutdown complete")
}

func splitRoots(roots string) []string {
	parts := strings.Split(roots, string(os.PathListSeparator))
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			cleaned = append(cleaned, part)
		}
	}
	return cleaned
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
