package paper

import (
	"context"
	"net/url"
	"path/filepath"

	"github.com/jomei/notionapi"
	"github.com/pkg/errors"
)

var TagRenamed = "renamed"

// CatalogEntry describes a renamed paper.
type CatalogEntry struct {
	Title    string
	Path     string
	Language string
}

// Catalog keeps a record of renamed papers.
type Catalog interface {
	Record(ctx context.Context, e *CatalogEntry) error
}

type DummyCatalog struct{}

func (dc DummyCatalog) Record(ctx context.Context, e *CatalogEntry) error {
	return nil
}

// NotionCatalog records renamed papers as pages of a Notion database.
type NotionCatalog struct {
	databaseID notionapi.DatabaseID
	nc         *notionapi.Client
}

func NewNotionCatalog(token string, databaseID string) *NotionCatalog {
	return &NotionCatalog{
		nc:         notionapi.NewClient(notionapi.Token(token)),
		databaseID: notionapi.DatabaseID(databaseID),
	}
}

func fileURL(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String()
}

func (e *CatalogEntry) tags() []string {
	tags := []string{TagRenamed}
	if e.Language != "" {
		tags = append(tags, e.Language)
	}
	return tags
}

func (nc *NotionCatalog) getProperties(e *CatalogEntry) notionapi.Properties {
	return notionapi.Properties{
		"Name": notionapi.PageTitleProperty{
			Title: notionapi.Paragraph{
				notionapi.RichText{
					Text: notionapi.Text{
						Content: e.Title,
					},
				},
			},
		},
		"Tags": notionapi.MultiSelectOptionsProperty{
			Type: "multi_select",
			MultiSelect: func() []notionapi.Option {
				var res []notionapi.Option
				for _, tag := range e.tags() {
					res = append(res, notionapi.Option{Name: tag})
				}
				return res
			}(),
		},
		"URL": notionapi.URLProperty{
			Type: "url",
			URL:  fileURL(e.Path),
		},
	}
}

func (nc *NotionCatalog) Record(ctx context.Context, e *CatalogEntry) error {
	req := &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			DatabaseID: nc.databaseID,
		},
		Properties: nc.getProperties(e),
	}
	_, err := nc.nc.Page.Create(ctx, req)
	return errors.Wrap(err, "notion catalog Record failed")
}
