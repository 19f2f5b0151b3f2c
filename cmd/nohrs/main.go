// Command nohrs is a file explorer backend: a unified addressing layer over
// local, in-memory, and S3-compatible filesystems with indexed search,
// background transfers, and an HTTP API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/noh-rs/nohrs/cache"
	"github.com/noh-rs/nohrs/config"
	"github.com/noh-rs/nohrs/vfs"
	"github.com/noh-rs/nohrs/vfs/billy"
	"github.com/noh-rs/nohrs/vfs/s3"
)

const usageText = `usage: nohrs <command> [flags]

commands:
  ls      list a directory
  stat    show metadata for one path
  search  query indexed content or ripgrep
  index   rebuild the search index
  sync    copy a tree between mounts
  serve   run the HTTP API

Paths are addresses: /home/u/docs, s3://remote/key. Run
"nohrs <command> -h" for command flags.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "nohrs:", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "ls":
		err = cmdLs(cfg, logger, args)
	case "stat":
		err = cmdStat(cfg, logger, args)
	case "search":
		err = cmdSearch(ctx, cfg, logger, args)
	case "index":
		err = cmdIndex(ctx, cfg, logger, args)
	case "sync":
		err = cmdSync(cfg, logger, args)
	case "serve":
		err = cmdServe(ctx, cfg, logger)
	case "help", "-h", "--help":
		fmt.Print(usageText)
		return
	default:
		fmt.Fprintf(os.Stderr, "nohrs: unknown command %q\n\n%s", cmd, usageText)
		os.Exit(2)
	}

	if err != nil {
		logger.Error("command failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

// newLogger builds the root logger from config.
func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// buildMounts assembles the mount registry: the local filesystem under
// "file", and every configured remote under "s3://<name>", wrapped in the
// content cache when one is configured. Cache metrics register on reg; a
// nil reg leaves them uncollected, which is what the one-shot commands want.
func buildMounts(cfg config.Config, logger *slog.Logger, reg prometheus.Registerer) (*vfs.Mounts, error) {
	mounts := vfs.NewMounts()
	mounts.Mount("file", billy.NewLocal())

	if len(cfg.Remotes) == 0 {
		return mounts, nil
	}

	var contentCache *cache.Cache
	if cfg.Cache.Dir != "" {
		if err := os.MkdirAll(cfg.Cache.Dir, 0755); err != nil {
			logger.Warn("cache disabled", "dir", cfg.Cache.Dir, "error", err)
		} else {
			c, err := cache.New(billy.NewLocalRooted(cfg.Cache.Dir),
				cache.WithMaxBytes(cfg.Cache.MaxBytes),
				cache.WithLogger(logger),
				cache.WithRegisterer(reg))
			if err != nil {
				logger.Warn("cache disabled", "dir", cfg.Cache.Dir, "error", err)
			} else {
				contentCache = c
			}
		}
	}

	for name, remote := range cfg.Remotes {
		fsys, err := s3.New(s3.Config{
			Endpoint:  remote.Endpoint,
			AccessKey: remote.AccessKey,
			SecretKey: remote.SecretKey,
			UseSSL:    remote.UseSSL,
			Bucket:    remote.Bucket,
			Prefix:    remote.Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("remote %s: %w", name, err)
		}

		var mounted vfs.FS = fsys
		if contentCache != nil {
			mounted = cache.NewCachingFS(fsys, contentCache, "s3", remote.Endpoint, remote.Bucket, remote.Prefix)
		}
		mounts.Mount("s3://"+name, mounted)
		logger.Debug("mounted remote", "name", name, "endpoint", remote.Endpoint, "bucket", remote.Bucket)
	}
	return mounts, nil
}
