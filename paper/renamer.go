// Package paper renames academic PDFs after their content.
package paper

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Result describes what Rename did.
type Result struct {
	Source      string
	Destination string
	Language    string
	Candidate   string
	Title       string
	// Skipped is set when the source already carried MarkerSuffix.
	Skipped bool
}

type Renamer struct {
	extractor Extractor
	detector  LanguageDetector
	suggester Suggester
	catalog   Catalog
	log       *logrus.Logger
}

func NewRenamer(extractor Extractor, detector LanguageDetector, suggester Suggester, catalog Catalog, log *logrus.Logger) *Renamer {
	if catalog == nil {
		catalog = DummyCatalog{}
	}
	return &Renamer{
		extractor: extractor,
		detector:  detector,
		suggester: suggester,
		catalog:   catalog,
		log:       log,
	}
}

// CheckSource reports whether path was already renamed. Paths that do not
// name a regular file yield ErrNotAFile.
func CheckSource(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, errors.Wrapf(ErrNotAFile, "%s: %v", path, err)
	}
	if !info.Mode().IsRegular() {
		return false, errors.Wrap(ErrNotAFile, path)
	}
	return IsProcessed(path), nil
}

// Rename gives the PDF at path a name derived from its first pages.
func (rn *Renamer) Rename(ctx context.Context, path string) (*Result, error) {
	processed, err := CheckSource(path)
	if err != nil {
		return nil, err
	}

	res := &Result{Source: path}
	if processed {
		rn.log.WithField("path", path).Debug("Already renamed, skipping.")
		res.Skipped = true
		return res, nil
	}

	text, err := rn.extractor.ExtractText(path, FirstPages)
	if err != nil {
		return nil, err
	}
	res.Language = rn.detector.Detect(text)
	rn.log.WithFields(logrus.Fields{
		"path":     path,
		"chars":    len(text),
		"language": res.Language,
	}).Debug("Text extracted.")

	var title string
	if _, ok := rn.catalog.(DummyCatalog); !ok {
		title, err = rn.extractor.Title(path)
		if err != nil {
			rn.log.WithError(err).Debug("No metadata title.")
		}
	}

	message := BuildMessage(text, filepath.Base(path), res.Language)
	res.Candidate, err = rn.suggester.Suggest(ctx, message)
	if err != nil {
		return nil, err
	}

	dst := filepath.Join(filepath.Dir(path), Sanitize(res.Candidate))
	res.Destination, err = ResolveCollision(dst)
	if err != nil {
		return nil, err
	}
	if res.Destination != dst {
		rn.log.WithFields(logrus.Fields{
			"wanted": dst,
			"using":  res.Destination,
		}).Info("Destination exists.")
	}

	if err := MoveFile(path, res.Destination); err != nil {
		return nil, err
	}

	res.Title = title
	if res.Title == "" {
		res.Title = TitleFromFilename(filepath.Base(res.Destination))
	}
	rn.log.WithFields(logrus.Fields{
		"from":  path,
		"to":    res.Destination,
		"title": res.Title,
	}).Info("Paper renamed.")

	entry := &CatalogEntry{
		Title:    res.Title,
		Path:     res.Destination,
		Language: res.Language,
	}
	if err := rn.catalog.Record(ctx, entry); err != nil {
		rn.log.WithError(err).Warn("Cannot record renamed paper.")
	}
	return res, nil
}
