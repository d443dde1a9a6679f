package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/ruangkarya/ruangkarya/internal/content"
	"github.com/ruangkarya/ruangkarya/internal/mdx"
	"github.com/ruangkarya/ruangkarya/internal/server"
)

const debounceDuration = 500 * time.Millisecond

var serverPort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the site locally and rebuilds on content changes",
	Long: `The serve command performs an initial build, then starts a local web
server rendering posts and projects from the built collections. The content
directory is watched and every change triggers a rebuild; a build that fails
validation is logged and the previous collections stay online.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = serverPort
		}

		if _, err := runBuild(cfg); err != nil {
			var ve *content.ValidationError
			if !errors.As(err, &ve) {
				return err
			}
			log.Error("initial build failed, serving previous collections", "error", err)
		}
		if err := runFeeds(cfg); err != nil {
			log.Error("failed to write feeds", "error", err)
		}

		srv, err := server.New(cfg, mdx.NewRenderer(log), log)
		if err != nil {
			return err
		}
		if err := srv.Reload(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create file watcher: %w", err)
		}
		defer watcher.Close()

		var buildMu sync.Mutex
		addWatches(watcher, cfg.Content.Root)
		go watch(ctx, watcher, func() {
			buildMu.Lock()
			defer buildMu.Unlock()

			log.Info("rebuilding content")
			if _, err := runBuild(cfg); err != nil {
				log.Error("rebuild failed", "error", err)
				return
			}
			if err := runFeeds(cfg); err != nil {
				log.Error("failed to write feeds", "error", err)
			}
			if err := srv.Reload(); err != nil {
				log.Error("failed to reload collections", "error", err)
			}
		})

		return srv.ListenAndServe(ctx)
	},
}

// addWatches watches root and every directory below it.
func addWatches(watcher *fsnotify.Watcher, root string) {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		log.Warn("content directory not found, not watching", "dir", root)
		return
	}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn("error walking directory", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			if watchErr := watcher.Add(path); watchErr != nil {
				log.Warn("failed to watch directory", "path", path, "error", watchErr)
			}
		}
		return nil
	})
	if err != nil {
		log.Warn("error setting up watches", "dir", root, "error", err)
	}
}

// watch calls rebuild once changes have settled for debounceDuration.
func watch(ctx context.Context, watcher *fsnotify.Watcher, rebuild func()) {
	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			log.Debug("change detected", "file", event.Name, "op", event.Op.String())

			if event.Has(fsnotify.Create) && isDir(event.Name) {
				addWatches(watcher, event.Name)
			}

			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceDuration, rebuild)
			mu.Unlock()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Error("watcher error", "error", err)
		}
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

func init() {
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 1313, "Port to serve the site on")
	rootCmd.AddCommand(serveCmd)
}
