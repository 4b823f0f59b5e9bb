package books

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
	"github.com/zeepubs/zeepubs/pkg/config"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB, cfg *config.Config) {
	bookService := NewService(db)

	h := &handler{
		bookService: bookService,
		libraryRoot: cfg.LibraryRoot,
	}

	e.GET("/books", h.list)
	e.GET("/books/:code", h.retrieve)
	e.GET("/books/:code/cover", h.cover)
	e.GET("/books/:code/download", h.download)
	e.POST("/books/:code/file-ref", h.updateFileRef)
}
