// Package epub reads the descriptive metadata and cover image out of an
// EPUB archive. It only looks at the OPF package document and the manifest;
// content documents are never parsed.
package epub

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
)

// Metadata is the normalized Dublin Core record of a package. Fields default
// to the empty string when the source package omits them; Identifiers keeps
// document order.
type Metadata struct {
	Title       string
	Type        string
	Description string
	Language    string
	Creator     string
	Identifiers []string
}

// Cover is a cover image extracted from the package.
type Cover struct {
	Filename string
	MimeType string
	Data     []byte
}

// Package is a parsed EPUB.
type Package struct {
	Metadata Metadata

	cover *Cover
}

// Cover returns the package's cover image, or nil when the package has
// neither a tagged cover item nor an image item named like one.
func (p *Package) Cover() *Cover {
	return p.cover
}

// ParseFile opens the EPUB at path and parses it.
func ParseFile(path string) (*Package, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	stats, err := f.Stat()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return Parse(f, stats.Size())
}

// Parse reads an EPUB archive from r.
func Parse(r io.ReaderAt, size int64) (*Package, error) {
	zipReader, err := zip.NewReader(r, size)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// Find and parse the OPF package document.
	var opf *opfDocument
	for _, file := range zipReader.File {
		if filepath.Ext(file.Name) == ".opf" {
			fr, err := file.Open()
			if err != nil {
				return nil, errors.WithStack(err)
			}
			opf, err = parseOPF(file.Name, fr)
			if err != nil {
				return nil, errors.WithStack(err)
			}
			break
		}
	}
	if opf == nil {
		return nil, errors.New("no opf file found")
	}

	pkg := &Package{Metadata: opf.metadata}

	coverPath := opf.coverFilepath()
	if coverPath != "" {
		data, err := readZipFile(zipReader, coverPath)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		mime := opf.mediaTypes[coverPath]
		if mime == "" {
			mime = mimetype.Detect(data).String()
		}
		pkg.cover = &Cover{
			Filename: coverPath,
			MimeType: mime,
			Data:     data,
		}
	}

	return pkg, nil
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, file := range zr.File {
		if file.Name == name {
			r, err := file.Open()
			if err != nil {
				return nil, errors.WithStack(err)
			}
			defer r.Close()
			return io.ReadAll(r)
		}
	}
	return nil, errors.Errorf("file %q not in archive", name)
}

// capitalizeFirst renders a title with exactly its first character
// upper-cased, the convention used for display titles throughout.
func capitalizeFirst(s string) string {
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

func containsCoverName(href string) bool {
	return strings.Contains(strings.ToLower(href), "cover")
}
