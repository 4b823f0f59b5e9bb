package ingest

import (
	"github.com/labstack/echo/v4"
	"github.com/zeepubs/zeepubs/pkg/config"
)

func RegisterRoutes(e *echo.Echo, pipeline *Pipeline, cfg *config.Config) {
	h := &handler{
		pipeline:  pipeline,
		uploadDir: cfg.UploadDir,
	}

	e.POST("/books", h.upload)
}
