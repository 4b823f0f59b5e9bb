package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/signals"
	"github.com/zeepubs/zeepubs/pkg/bookid"
	"github.com/zeepubs/zeepubs/pkg/books"
	"github.com/zeepubs/zeepubs/pkg/config"
	"github.com/zeepubs/zeepubs/pkg/database"
	"github.com/zeepubs/zeepubs/pkg/ingest"
	"github.com/zeepubs/zeepubs/pkg/metadata"
	"github.com/zeepubs/zeepubs/pkg/migrations"
	"github.com/zeepubs/zeepubs/pkg/server"
	"github.com/zeepubs/zeepubs/pkg/version"
	"github.com/zeepubs/zeepubs/pkg/worker"
)

func main() {
	ctx := context.Background()
	log := logger.New()

	log.Info("starting zeepubs", logger.Data{"version": version.Version})

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	if err := initDirs(cfg.LibraryRoot, cfg.UploadDir); err != nil {
		log.Err(err).Fatal("storage directory error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}

	group, err := migrations.BringUpToDate(ctx, db)
	if err != nil {
		log.Err(err).Fatal("migrations error")
	}
	if group.ID == 0 {
		log.Info("no new migrations to run")
	} else {
		log.Info("migrated to new group", logger.Data{"group_id": group.ID, "migration_names": group.Migrations.String()})
	}

	bookService := books.NewService(db)
	allocator := bookid.New(bookService.ExistsBookCode)

	openLibrary := metadata.NewOpenLibraryClient(cfg.LookupBaseURL)
	searcher := metadata.NewCatalogSearcher(cfg.SearchBaseURL)
	resolver := metadata.NewResolver(openLibrary, openLibrary, searcher, resolverOptions(cfg))

	pipeline := ingest.NewPipeline(bookService, resolver, allocator, cfg.LibraryRoot)

	wrkr := worker.New(cfg, db, pipeline)

	srv, err := server.New(cfg, db, pipeline)
	if err != nil {
		log.Err(err).Fatal("server error")
	}

	graceful := signals.Setup()

	go func() {
		log.Info("server started", logger.Data{"addr": srv.Addr})
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Err(err).Fatal("server stopped")
		}
		log.Info("server stopped")
	}()

	wrkr.Start()
	log.Info("worker started")

	<-graceful
	log.Info("starting graceful shutdown")

	err = srv.Shutdown(ctx)
	if err != nil {
		log.Err(err).Error("server shutdown error")
	}
	log.Info("server shutdown")

	wrkr.Shutdown()
	log.Info("worker shutdown")

	err = db.Close()
	if err != nil {
		log.Err(err).Error("database close error")
	}
	log.Info("database closed")
}

func resolverOptions(cfg *config.Config) metadata.ResolverOptions {
	opts := metadata.ResolverOptions{}
	if uc := cfg.UserConfig; uc != nil {
		opts.Timeout = time.Duration(uc.LookupTimeoutSeconds) * time.Second
		opts.FlaggedGroups = uc.FlaggedISBNGroups
		opts.FirstCandidateFallback = uc.FirstCandidateFallback
	}
	return opts
}

func initDirs(dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "failed to create directory: %s", dir)
		}
	}
	return nil
}
