package books

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/zeepubs/zeepubs/pkg/errcodes"
	"github.com/zeepubs/zeepubs/pkg/models"
)

type RetrieveBookOptions struct {
	ID       *int
	BookCode *string
	Title    *string
}

type ListBooksOptions struct {
	Limit  *int
	Offset *int
	Search *string

	includeTotal bool
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// SaveBook upserts a book keyed by its normalized title. A new title
// inserts; a known title keeps its row, book code, and filepath, and
// refreshes the externally-sourced fields.
func (svc *Service) SaveBook(ctx context.Context, book *models.Book) error {
	now := time.Now()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = now

	_, err := svc.db.
		NewInsert().
		Model(book).
		On("CONFLICT (title) DO UPDATE").
		Set("alt_title = EXCLUDED.alt_title").
		Set("author = EXCLUDED.author").
		Set("description = EXCLUDED.description").
		Set("language = EXCLUDED.language").
		Set("type = EXCLUDED.type").
		Set("file_ref = EXCLUDED.file_ref").
		Set("cover_path = EXCLUDED.cover_path").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error) {
	book := &models.Book{}

	q := svc.db.
		NewSelect().
		Model(book).
		Column("b.*")

	if opts.ID != nil {
		q = q.Where("b.id = ?", *opts.ID)
	}
	if opts.BookCode != nil {
		q = q.Where("b.book_code = ?", *opts.BookCode)
	}
	if opts.Title != nil {
		q = q.Where("b.title = ? COLLATE NOCASE", *opts.Title)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.Book, error) {
	b, _, err := svc.listBooksWithTotal(ctx, opts)
	return b, errors.WithStack(err)
}

func (svc *Service) ListBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	opts.includeTotal = true
	return svc.listBooksWithTotal(ctx, opts)
}

func (svc *Service) listBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	books := []*models.Book{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&books).
		Column("b.*").
		Order("b.title ASC")

	if opts.Search != nil && *opts.Search != "" {
		q = q.Where("b.title LIKE ? OR b.alt_title LIKE ?", "%"+*opts.Search+"%", "%"+*opts.Search+"%")
	}
	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return books, total, nil
}

// UpdateFileRef attaches the transport's file handle after the fact. This is
// the only field updated outside of the upsert path.
func (svc *Service) UpdateFileRef(ctx context.Context, book *models.Book) error {
	book.UpdatedAt = time.Now()

	res, err := svc.db.
		NewUpdate().
		Model(book).
		Column("file_ref", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.WithStack(err)
	}
	if affected == 0 {
		return errcodes.NotFound("Book")
	}

	return nil
}

// ExistsBookCode reports whether a code is already persisted. The code
// allocator consults this before accepting a draw.
func (svc *Service) ExistsBookCode(ctx context.Context, code string) (bool, error) {
	exists, err := svc.db.
		NewSelect().
		Model((*models.Book)(nil)).
		Where("book_code = ?", code).
		Exists(ctx)
	if err != nil {
		return false, errors.WithStack(err)
	}
	return exists, nil
}
