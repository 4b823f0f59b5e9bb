package worker

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/zeepubs/zeepubs/pkg/jobs"
	"github.com/zeepubs/zeepubs/pkg/models"
)

// ProcessRescanJob sweeps a drop directory and ingests every EPUB in it.
// Files that commit are moved into the library tree; duplicates are
// discarded. A single bad file is logged and skipped, not fatal for the
// sweep.
func (w *Worker) ProcessRescanJob(ctx context.Context, job *models.Job) error {
	log := logger.FromContext(ctx)

	data, ok := job.DataParsed.(*models.JobRescanData)
	if !ok {
		return errors.New("unexpected job data type")
	}

	dir := data.Dir
	if dir == "" {
		dir = w.config.UploadDir
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.WithStack(err)
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".epub") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return errors.WithStack(err)
	}

	log.Info("rescan started", logger.Data{"dir": dir, "files": len(paths)})

	ingested := 0
	duplicates := 0
	failed := 0
	for i, path := range paths {
		result, err := w.pipeline.Ingest(ctx, path, "")
		if err != nil {
			failed++
			log.Err(err).Error("ingest error", logger.Data{"filepath": path})
		} else if result.Duplicate {
			duplicates++
		} else {
			ingested++
		}

		job.Progress = (i + 1) * 100 / len(paths)
		if err := w.jobService.UpdateJob(ctx, job, jobs.UpdateJobOptions{
			Columns: []string{"progress"},
		}); err != nil {
			log.Err(err).Error("update job progress error")
		}
	}

	log.Info("rescan finished", logger.Data{"ingested": ingested, "duplicates": duplicates, "failed": failed})

	return nil
}
