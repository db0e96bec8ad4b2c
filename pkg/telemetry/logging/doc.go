// Package logging provides structured logging with secret scrubbing.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - Structured logging with JSON, text, and console formats
//   - Automatic scrubbing of git credentials (tokens, passwords, URL userinfo)
//   - Context-aware logging with request and compilation metadata
//   - Configurable log levels (debug, info, warn, error)
//
// # Usage
//
//	// Create a logger
//	logger, err := logging.New(logging.Config{
//	    Level:         "info",
//	    Format:        "json",
//	    RedactSecrets: true,
//	})
//
//	// Log structured data
//	logger.Info("source synced",
//	    "repository", "https://ghp_abc123@github.com/acme/programs.git", // credentials scrubbed
//	    "files", 12,
//	)
//
//	// Create context-aware logger
//	ctx := logging.WithRequestID(ctx, "req-123")
//	ctxLogger := logger.WithContext(ctx)
//	ctxLogger.Info("compiling")  // Includes request_id automatically
//
// # Secret Scrubbing
//
// Credentials are scrubbed from log fields when RedactSecrets is enabled:
//
//   - URL credentials: https://token@github.com/... → https://***@github.com/...
//   - Forge tokens: ghp_abc123xyz → ghp_***
//   - Bearer tokens: Bearer eyJhb... → Bearer ***
//   - Fields whose key contains token, password, passphrase, or secret
//
// # Interop
//
// Components throughout the codebase accept a plain *slog.Logger; use
// Logger.Slog to hand them the underlying instance:
//
//	watcher, err := watch.NewFileWatcher(cfg, logger.Slog())
package logging
