// Package ingest turns an uploaded EPUB into a persisted library entry: it
// extracts metadata, resolves an alternate title, allocates a book code,
// computes the storage path, and commits the file.
package ingest

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/zeepubs/zeepubs/pkg/bookid"
	"github.com/zeepubs/zeepubs/pkg/books"
	"github.com/zeepubs/zeepubs/pkg/epub"
	"github.com/zeepubs/zeepubs/pkg/errcodes"
	"github.com/zeepubs/zeepubs/pkg/fileutils"
	"github.com/zeepubs/zeepubs/pkg/models"
	"github.com/zeepubs/zeepubs/pkg/textutil"
)

// TitleResolver is the alternate-title lookup chain. It is best-effort and
// never errors; an empty string means no alternate was found.
type TitleResolver interface {
	Resolve(ctx context.Context, rawTitle string, identifiers []string) string
}

// authorSegmentMaxLen bounds the author directory segment so a long creator
// string can't produce a pathological path.
const authorSegmentMaxLen = 40

const coverFilename = "cover.jpg"

// Result is the outcome of one ingestion. Duplicate means the storage path
// was already claimed by an earlier upload and nothing was written.
type Result struct {
	Book      *models.Book
	Duplicate bool
}

type Pipeline struct {
	bookService *books.Service
	resolver    TitleResolver
	allocator   *bookid.Allocator
	libraryRoot string
}

func NewPipeline(bookService *books.Service, resolver TitleResolver, allocator *bookid.Allocator, libraryRoot string) *Pipeline {
	return &Pipeline{
		bookService: bookService,
		resolver:    resolver,
		allocator:   allocator,
		libraryRoot: libraryRoot,
	}
}

// Ingest processes the uploaded file at uploadPath. fileRef is the opaque
// handle the transport knows the original upload by; it may be empty and can
// be attached later. On success the upload has been moved into the library
// tree and the book persisted. On duplicate the upload is discarded.
func (p *Pipeline) Ingest(ctx context.Context, uploadPath, fileRef string) (*Result, error) {
	pkg, err := epub.ParseFile(uploadPath)
	if err != nil {
		return nil, errcodes.MalformedPackage()
	}
	meta := pkg.Metadata

	altTitle := p.resolver.Resolve(ctx, meta.Title, meta.Identifiers)

	code, err := p.allocator.Allocate(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	displayTitle := textutil.Clean(meta.Title)
	titleKey := strings.ToLower(displayTitle)
	author := textutil.Clean(meta.Creator)

	titleSegment := textutil.PathSegment(titleKey)
	if titleSegment == "" {
		titleSegment = "untitled"
	}
	authorSegment := textutil.TruncateSegment(textutil.PathSegment(strings.ToLower(author)), authorSegmentMaxLen)
	if authorSegment == "" {
		authorSegment = "unknown"
	}

	relPath := path.Join("ebooks", authorSegment, titleSegment, titleSegment+".epub")
	absPath := filepath.Join(p.libraryRoot, relPath)

	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return nil, errcodes.StorageWrite()
	}

	// Exclusive create claims the path atomically; losing the race means
	// another upload of the same book already committed or is committing.
	claim, err := os.OpenFile(absPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			// Discard the redundant upload, unless it is the committed file
			// itself being re-scanned.
			if uploadPath != absPath {
				_ = os.Remove(uploadPath)
			}
			return &Result{Duplicate: true}, nil
		}
		return nil, errcodes.StorageWrite()
	}
	claim.Close()

	if err := fileutils.MoveFile(uploadPath, absPath); err != nil {
		// Release the claim so a retry can land cleanly.
		_ = os.Remove(absPath)
		return nil, errcodes.StorageWrite()
	}

	book := &models.Book{
		BookCode:     code,
		Title:        titleKey,
		DisplayTitle: displayTitle,
		Filepath:     relPath,
	}
	if altTitle != "" {
		book.AltTitle = pointerutil.String(altTitle)
	}
	if author != "" {
		book.Author = pointerutil.String(author)
	}
	if meta.Description != "" {
		book.Description = pointerutil.String(meta.Description)
	}
	if meta.Language != "" {
		book.Language = pointerutil.String(meta.Language)
	}
	if meta.Type != "" {
		book.Type = pointerutil.String(meta.Type)
	}
	if fileRef != "" {
		book.FileRef = pointerutil.String(fileRef)
	}

	// A missing or unwritable cover never fails the ingestion.
	if cover := pkg.Cover(); cover != nil {
		coverRel := path.Join(path.Dir(relPath), coverFilename)
		if err := os.WriteFile(filepath.Join(p.libraryRoot, coverRel), cover.Data, 0644); err == nil {
			book.CoverPath = pointerutil.String(coverRel)
		}
	}

	if err := p.bookService.SaveBook(ctx, book); err != nil {
		// Roll the commit back so a retried upload isn't treated as a
		// duplicate of a row that never landed.
		_ = os.Remove(absPath)
		if book.CoverPath != nil {
			_ = os.Remove(filepath.Join(p.libraryRoot, *book.CoverPath))
		}
		return nil, errors.WithStack(err)
	}

	return &Result{Book: book}, nil
}
