package epub

import (
	"encoding/xml"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/zeepubs/zeepubs/pkg/htmlutil"
	"github.com/zeepubs/zeepubs/pkg/textutil"
)

// opfPackage mirrors the OPF package document schema.
type opfPackage struct {
	XMLName  xml.Name `xml:"package"`
	Version  string   `xml:"version,attr"`
	Metadata struct {
		Title []struct {
			Text string `xml:",chardata"`
			ID   string `xml:"id,attr"`
		} `xml:"title"`
		Creator []struct {
			Text   string `xml:",chardata"`
			ID     string `xml:"id,attr"`
			Role   string `xml:"role,attr"`
			FileAs string `xml:"file-as,attr"`
		} `xml:"creator"`
		Description string `xml:"description"`
		Type        string `xml:"type"`
		Language    string `xml:"language"`
		Identifier  []struct {
			Text   string `xml:",chardata"`
			ID     string `xml:"id,attr"`
			Scheme string `xml:"scheme,attr"`
		} `xml:"identifier"`
		Meta []struct {
			Text     string `xml:",chardata"`
			Name     string `xml:"name,attr"`
			Content  string `xml:"content,attr"`
			Refines  string `xml:"refines,attr"`
			Property string `xml:"property,attr"`
		} `xml:"meta"`
	} `xml:"metadata"`
	Manifest struct {
		Item []struct {
			ID         string `xml:"id,attr"`
			Href       string `xml:"href,attr"`
			MediaType  string `xml:"media-type,attr"`
			Properties string `xml:"properties,attr"`
		} `xml:"item"`
	} `xml:"manifest"`
}

// opfDocument is a parsed OPF with paths resolved against the OPF location.
type opfDocument struct {
	metadata      Metadata
	taggedCover   string            // path of the explicitly tagged cover item
	imageItems    []string          // manifest image item paths, document order
	mediaTypes    map[string]string // path -> media-type
}

func parseOPF(filename string, r io.ReadCloser) (*opfDocument, error) {
	defer r.Close()
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	pkg := &opfPackage{}
	err = xml.Unmarshal(b, pkg)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// All manifest hrefs are relative to the OPF file's directory. A basePath
	// of `.` means the OPF sits at the archive root.
	basePath := filepath.Dir(filename)
	if basePath == "." {
		basePath = ""
	} else {
		basePath += "/"
	}

	doc := &opfDocument{mediaTypes: map[string]string{}}

	title := ""
	if len(pkg.Metadata.Title) > 0 {
		title = pkg.Metadata.Title[0].Text
	}

	creator := ""
	if len(pkg.Metadata.Creator) > 0 {
		creator = pkg.Metadata.Creator[0].Text
	}

	identifiers := make([]string, 0, len(pkg.Metadata.Identifier))
	for _, ident := range pkg.Metadata.Identifier {
		value := strings.TrimSpace(ident.Text)
		if value == "" {
			continue
		}
		// Some tools put the scheme in an attribute instead of the value.
		if ident.Scheme != "" && !strings.Contains(strings.ToLower(value), strings.ToLower(ident.Scheme)) {
			value = strings.ToLower(ident.Scheme) + ":" + value
		}
		identifiers = append(identifiers, value)
	}

	doc.metadata = Metadata{
		Title:       capitalizeFirst(textutil.StripGroups(title)),
		Type:        pkg.Metadata.Type,
		Description: htmlutil.StripTags(pkg.Metadata.Description),
		Language:    pkg.Metadata.Language,
		Creator:     creator,
		Identifiers: identifiers,
	}

	// The EPUB2 convention tags the cover through a meta element pointing at
	// a manifest item id.
	coverID := ""
	for _, m := range pkg.Metadata.Meta {
		if m.Name == "cover" && m.Content != "" {
			coverID = m.Content
		}
	}

	for _, item := range pkg.Manifest.Item {
		path := basePath + item.Href
		doc.mediaTypes[path] = item.MediaType

		if item.ID != "" && item.ID == coverID {
			doc.taggedCover = path
		}
		// The EPUB3 convention tags the manifest item directly.
		if strings.Contains(item.Properties, "cover-image") {
			doc.taggedCover = path
		}
		if strings.HasPrefix(item.MediaType, "image/") {
			doc.imageItems = append(doc.imageItems, path)
		}
	}

	return doc, nil
}

// coverFilepath picks the cover item: an explicitly tagged item wins, then
// the first image item whose file name contains "cover" (a deliberately
// fuzzy match; publishers are inconsistent about cover naming).
func (doc *opfDocument) coverFilepath() string {
	if doc.taggedCover != "" {
		return doc.taggedCover
	}
	for _, path := range doc.imageItems {
		if containsCoverName(path) {
			return path
		}
	}
	return ""
}
