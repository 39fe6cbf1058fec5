// bundle-sync mirrors the pinned runtime version's bundle set from the Bokeh
// CDN into the service's asset storage, so deployed pages never depend on
// the public CDN at render time.
//
// Usage: bundle-sync [-version 3.7.3] [-force]
package main

import (
	"context"
	"flag"
	"os"

	"github.com/streamlit/streamlit-bokeh/internal/bundles"
	"github.com/streamlit/streamlit-bokeh/internal/component"
	"github.com/streamlit/streamlit-bokeh/internal/config"
	"github.com/streamlit/streamlit-bokeh/internal/logger"
	"github.com/streamlit/streamlit-bokeh/internal/storage"
)

func main() {
	version := flag.String("version", component.RequiredBokehVersion, "runtime version to mirror")
	force := flag.Bool("force", false, "re-download bundles that are already mirrored")
	flag.Parse()

	ctx := context.Background()
	log := logger.GetGlobalLogger().WithComponent("bundle-sync")

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal("failed to load configuration", err)
	}

	store, err := storage.NewStorageClient(ctx, storage.DeploymentMode(cfg.DeploymentMode), cfg)
	if err != nil {
		log.Fatal("failed to initialize storage", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("closing storage", err)
		}
	}()

	fetcher := bundles.NewHTTPFetcher(cfg.BundleBaseURL, cfg.FetchTimeout())

	synced, skipped := 0, 0
	for _, file := range bundles.Files(*version) {
		path := storage.BundlePath(file)

		if !*force {
			if exists, err := store.FileExists(ctx, path); err == nil && exists {
				log.Debug("already mirrored", map[string]interface{}{"file": file})
				skipped++
				continue
			}
		}

		log.Info("downloading", map[string]interface{}{"file": file})
		data, err := fetcher.Fetch(ctx, file)
		if err != nil {
			log.Error("download failed", err, map[string]interface{}{"file": file})
			os.Exit(1)
		}

		if err := store.StoreFile(ctx, path, data); err != nil {
			log.Error("store failed", err, map[string]interface{}{"file": file})
			os.Exit(1)
		}
		synced++
	}

	log.Info("bundle sync complete", map[string]interface{}{
		"version": *version,
		"synced":  synced,
		"skipped": skipped,
	})
}
