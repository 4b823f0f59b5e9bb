package ingest

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/zeepubs/zeepubs/internal/testgen"
	"github.com/zeepubs/zeepubs/pkg/bookid"
	"github.com/zeepubs/zeepubs/pkg/books"
	"github.com/zeepubs/zeepubs/pkg/errcodes"
	"github.com/zeepubs/zeepubs/pkg/migrations"
	"github.com/zeepubs/zeepubs/pkg/models"
)

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

type stubResolver struct {
	altTitle   string
	rawTitles  []string
	identities [][]string
}

func (s *stubResolver) Resolve(_ context.Context, rawTitle string, identifiers []string) string {
	s.rawTitles = append(s.rawTitles, rawTitle)
	s.identities = append(s.identities, identifiers)
	return s.altTitle
}

func setupPipeline(t *testing.T, resolver TitleResolver) (*Pipeline, *books.Service, string) {
	t.Helper()

	db := setupTestDB(t)
	bookService := books.NewService(db)
	allocator := bookid.New(bookService.ExistsBookCode)
	root := t.TempDir()
	return NewPipeline(bookService, resolver, allocator, root), bookService, root
}

func TestIngestEndToEnd(t *testing.T) {
	// All lookup providers failing must still produce a complete entry from
	// the package's own metadata.
	resolver := &stubResolver{}
	pipeline, _, root := setupPipeline(t, resolver)

	uploadDir := t.TempDir()
	uploadPath := testgen.GenerateEPUB(t, uploadDir, "upload.epub", testgen.EPUBOptions{
		Title:       "Test (Special Edition)",
		Creator:     "Jane Doe",
		Identifiers: []string{"urn:isbn:9781234567897"},
	})

	result, err := pipeline.Ingest(context.Background(), uploadPath, "tg-file-ref-1")
	require.NoError(t, err)
	require.False(t, result.Duplicate)
	require.NotNil(t, result.Book)

	book := result.Book
	assert.Equal(t, "test", book.Title)
	assert.Equal(t, "Test", book.DisplayTitle)
	assert.Equal(t, "ebooks/jane_doe/test/test.epub", book.Filepath)
	assert.Regexp(t, `^[0-9a-f]{10}$`, book.BookCode)
	assert.Nil(t, book.AltTitle)
	require.NotNil(t, book.Author)
	assert.Equal(t, "Jane Doe", *book.Author)
	require.NotNil(t, book.FileRef)
	assert.Equal(t, "tg-file-ref-1", *book.FileRef)

	// The upload was moved, not copied.
	_, err = os.Stat(uploadPath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(root, "ebooks/jane_doe/test/test.epub"))
	assert.NoError(t, err)

	// The resolver saw the extracted title with the parenthetical group
	// already stripped, so its search key is the bare title.
	require.Len(t, resolver.rawTitles, 1)
	assert.Equal(t, "Test", resolver.rawTitles[0])
	assert.Equal(t, [][]string{{"urn:isbn:9781234567897"}}, resolver.identities)
}

func TestIngestDuplicate(t *testing.T) {
	pipeline, _, root := setupPipeline(t, &stubResolver{})
	ctx := context.Background()
	uploadDir := t.TempDir()

	opts := testgen.EPUBOptions{Title: "Dune", Creator: "Frank Herbert"}

	first := testgen.GenerateEPUB(t, uploadDir, "first.epub", opts)
	result, err := pipeline.Ingest(ctx, first, "")
	require.NoError(t, err)
	require.False(t, result.Duplicate)

	committed := filepath.Join(root, result.Book.Filepath)
	original, err := os.ReadFile(committed)
	require.NoError(t, err)

	second := testgen.GenerateEPUB(t, uploadDir, "second.epub", opts)
	dupResult, err := pipeline.Ingest(ctx, second, "")
	require.NoError(t, err)
	assert.True(t, dupResult.Duplicate)
	assert.Nil(t, dupResult.Book)

	// The committed file was not overwritten and the duplicate upload was
	// discarded.
	after, err := os.ReadFile(committed)
	require.NoError(t, err)
	assert.Equal(t, original, after)
	_, err = os.Stat(second)
	assert.True(t, os.IsNotExist(err))
}

func TestIngestPersistsUpsert(t *testing.T) {
	pipeline, bookService, _ := setupPipeline(t, &stubResolver{altTitle: "Original Title"})
	ctx := context.Background()

	uploadPath := testgen.GenerateEPUB(t, t.TempDir(), "book.epub", testgen.EPUBOptions{
		Title:   "Hyperion",
		Creator: "Dan Simmons",
	})

	result, err := pipeline.Ingest(ctx, uploadPath, "")
	require.NoError(t, err)

	title := "hyperion"
	saved, err := bookService.RetrieveBook(ctx, books.RetrieveBookOptions{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, result.Book.BookCode, saved.BookCode)
	require.NotNil(t, saved.AltTitle)
	assert.Equal(t, "Original Title", *saved.AltTitle)
}

func TestIngestWritesCover(t *testing.T) {
	pipeline, _, root := setupPipeline(t, &stubResolver{})

	uploadPath := testgen.GenerateEPUB(t, t.TempDir(), "covered.epub", testgen.EPUBOptions{
		Title:         "Covered",
		Creator:       "Someone",
		HasCover:      true,
		CoverMimeType: "image/jpeg",
	})

	result, err := pipeline.Ingest(context.Background(), uploadPath, "")
	require.NoError(t, err)

	require.NotNil(t, result.Book.CoverPath)
	assert.Equal(t, "ebooks/someone/covered/cover.jpg", *result.Book.CoverPath)

	data, err := os.ReadFile(filepath.Join(root, *result.Book.CoverPath))
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestIngestMalformedPackage(t *testing.T) {
	pipeline, _, _ := setupPipeline(t, &stubResolver{})

	uploadPath := filepath.Join(t.TempDir(), "broken.epub")
	require.NoError(t, os.WriteFile(uploadPath, []byte("not an epub"), 0o644))

	_, err := pipeline.Ingest(context.Background(), uploadPath, "")
	assert.ErrorIs(t, err, errcodes.MalformedPackage())
}

func TestIngestSaveFailureReleasesPath(t *testing.T) {
	pipeline, bookService, root := setupPipeline(t, &stubResolver{})
	ctx := context.Background()

	// A row already owns the storage path under a different title, so the
	// upsert hits the filepath unique index instead of its title conflict
	// target and fails.
	require.NoError(t, bookService.SaveBook(ctx, &models.Book{
		BookCode:     "aaaaaaaaaa",
		Title:        "occupied",
		DisplayTitle: "Occupied",
		Filepath:     "ebooks/jane_doe/test/test.epub",
	}))

	uploadPath := testgen.GenerateEPUB(t, t.TempDir(), "upload.epub", testgen.EPUBOptions{
		Title:   "Test",
		Creator: "Jane Doe",
	})

	_, err := pipeline.Ingest(ctx, uploadPath, "")
	require.Error(t, err)

	// The claimed path was released, so retrying the upload won't be
	// mistaken for a duplicate.
	_, err = os.Stat(filepath.Join(root, "ebooks/jane_doe/test/test.epub"))
	assert.True(t, os.IsNotExist(err))
}

func TestIngestLongAuthorTruncated(t *testing.T) {
	pipeline, _, _ := setupPipeline(t, &stubResolver{})

	uploadPath := testgen.GenerateEPUB(t, t.TempDir(), "long.epub", testgen.EPUBOptions{
		Title:   "Short",
		Creator: "An Author With An Unreasonably Long Pen Name That Never Ends",
	})

	result, err := pipeline.Ingest(context.Background(), uploadPath, "")
	require.NoError(t, err)

	// Filepath is ebooks/<author>/<title>/<title>.epub.
	authorSegment := filepath.Base(filepath.Dir(filepath.Dir(result.Book.Filepath)))
	assert.LessOrEqual(t, len([]rune(authorSegment)), 40)
	assert.NotContains(t, authorSegment, " ")
}
