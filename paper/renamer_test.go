package paper

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExtractor struct {
	text       string
	title      string
	textCalls  int
	titleCalls int
}

func (fe *fakeExtractor) ExtractText(path string, pages []int) (string, error) {
	fe.textCalls++
	return fe.text, nil
}

func (fe *fakeExtractor) Title(path string) (string, error) {
	fe.titleCalls++
	if fe.title == "" {
		return "", ErrTitleNotFound
	}
	return fe.title, nil
}

type fixedDetector string

func (fd fixedDetector) Detect(text string) string {
	return string(fd)
}

type recordingCatalog struct {
	entries []*CatalogEntry
	err     error
}

func (rc *recordingCatalog) Record(ctx context.Context, e *CatalogEntry) error {
	rc.entries = append(rc.entries, e)
	return rc.err
}

func newTestRenamer(ex Extractor, s Suggester, c Catalog) (*Renamer, *test.Hook) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return NewRenamer(ex, fixedDetector("en"), s, c, log), hook
}

func TestRenameEndToEnd(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "2402.07401.pdf")
	require.NoError(t, os.WriteFile(src, []byte("%PDF-1.4"), 0o644))
	mtime := time.Date(2024, 2, 12, 9, 30, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(src, mtime, mtime))

	ex := &fakeExtractor{text: "Foo Bar\nJane Doe\nAbstract ..."}
	s := &countingSuggester{candidate: "Foo Bar-2024.pdf"}
	c := &recordingCatalog{}
	rn, _ := newTestRenamer(ex, s, c)

	res, err := rn.Rename(context.Background(), src)
	require.NoError(t, err)

	want := filepath.Join(dir, "Foo Bar-2024-PR.pdf")
	assert.Equal(t, want, res.Destination)
	assert.Equal(t, "en", res.Language)
	assert.Equal(t, "Foo Bar-2024.pdf", res.Candidate)
	assert.Equal(t, "Foo Bar", res.Title)
	assert.False(t, res.Skipped)

	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err))
	info, err := os.Stat(want)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(mtime))

	require.Len(t, s.messages, 1)
	assert.Equal(t, BuildMessage(ex.text, "2402.07401.pdf", "en"), s.messages[0])

	require.Len(t, c.entries, 1)
	assert.Equal(t, &CatalogEntry{Title: "Foo Bar", Path: want, Language: "en"}, c.entries[0])
}

func TestRenameAlreadyProcessed(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "Foo-PR.pdf")
	require.NoError(t, os.WriteFile(src, []byte("%PDF-1.4"), 0o644))

	ex := &fakeExtractor{}
	s := &countingSuggester{candidate: "Other.pdf"}
	rn, _ := newTestRenamer(ex, s, nil)

	res, err := rn.Rename(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, 0, ex.textCalls)
	assert.Equal(t, 0, s.calls)

	_, err = os.Stat(src)
	assert.NoError(t, err)
}

func TestRenameNotAFile(t *testing.T) {
	dir := t.TempDir()
	rn, _ := newTestRenamer(&fakeExtractor{}, &countingSuggester{}, nil)

	_, err := rn.Rename(context.Background(), filepath.Join(dir, "missing.pdf"))
	assert.ErrorIs(t, err, ErrNotAFile)

	_, err = rn.Rename(context.Background(), dir)
	assert.ErrorIs(t, err, ErrNotAFile)
}

func TestRenameMalformedPDF(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "notes.pdf")
	require.NoError(t, os.WriteFile(src, []byte("not a pdf at all"), 0o644))

	s := &countingSuggester{candidate: "Foo.pdf"}
	rn, _ := newTestRenamer(NewPDFExtractor(), s, nil)

	_, err := rn.Rename(context.Background(), src)
	assert.ErrorIs(t, err, ErrMalformedPDF)
	assert.Equal(t, 0, s.calls)

	content, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, "not a pdf at all", string(content))
}

func TestRenameNoFilename(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "paper.pdf")
	touch(t, src)

	s := &countingSuggester{err: errors.Wrap(ErrNoFilename, "response")}
	rn, _ := newTestRenamer(&fakeExtractor{text: "x"}, s, nil)

	_, err := rn.Rename(context.Background(), src)
	assert.ErrorIs(t, err, ErrNoFilename)
	_, err = os.Stat(src)
	assert.NoError(t, err)
}

func TestRenameCollision(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "2402.07401.pdf")
	touch(t, src)
	touch(t, filepath.Join(dir, "Foo Bar-2024-PR.pdf"))

	rn, _ := newTestRenamer(&fakeExtractor{text: "x"}, &countingSuggester{candidate: "Foo Bar-2024.pdf"}, nil)

	res, err := rn.Rename(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Foo Bar-2024-(1)-PR.pdf"), res.Destination)
	assert.Equal(t, "Foo Bar", res.Title)
}

func TestRenameSanitizesCandidate(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "paper.pdf")
	touch(t, src)

	rn, _ := newTestRenamer(&fakeExtractor{text: "x"}, &countingSuggester{candidate: "../Escape/Foo-2020.pdf"}, nil)

	res, err := rn.Rename(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "..-Escape-Foo-2020-PR.pdf"), res.Destination)
	_, err = os.Stat(res.Destination)
	assert.NoError(t, err)
}

func TestRenamePrefersMetadataTitle(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "paper.pdf")
	touch(t, src)

	c := &recordingCatalog{}
	ex := &fakeExtractor{text: "x", title: "Foo Bar: A Study"}
	rn, _ := newTestRenamer(ex, &countingSuggester{candidate: "Foo Bar-2024.pdf"}, c)

	res, err := rn.Rename(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, "Foo Bar: A Study", res.Title)
	require.Len(t, c.entries, 1)
	assert.Equal(t, "Foo Bar: A Study", c.entries[0].Title)
}

func TestRenameCatalogFailureIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "paper.pdf")
	touch(t, src)

	c := &recordingCatalog{err: errors.New("notion is down")}
	rn, hook := newTestRenamer(&fakeExtractor{text: "x"}, &countingSuggester{candidate: "Foo-2024.pdf"}, c)

	res, err := rn.Rename(context.Background(), src)
	require.NoError(t, err)
	_, err = os.Stat(res.Destination)
	assert.NoError(t, err)

	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, logrus.WarnLevel, last.Level)
}

func TestRenameWithPDFExtractor(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "2402.07401.pdf")
	writeTestPDF(t, src, "Foo Bar", "Introduction")

	s := &countingSuggester{candidate: "Foo Bar-2024.pdf"}
	log, _ := test.NewNullLogger()
	rn := NewRenamer(NewPDFExtractor(), NewWhatlangDetector(), s, nil, log)

	res, err := rn.Rename(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Foo Bar-2024-PR.pdf"), res.Destination)
	require.Len(t, s.messages, 1)
	assert.Contains(t, s.messages[0], "Foo Bar")
	assert.Contains(t, s.messages[0], "following filename: 2402.07401.pdf.")
}

func TestRenameWithoutCatalogSkipsTitle(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "paper.pdf")
	touch(t, src)

	ex := &fakeExtractor{text: "x", title: "Ignored"}
	rn, _ := newTestRenamer(ex, &countingSuggester{candidate: "Foo Bar-2024.pdf"}, nil)

	res, err := rn.Rename(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 0, ex.titleCalls)
	assert.Equal(t, "Foo Bar", res.Title)
}

func TestRenameLeavesUserConfigAlone(t *testing.T) {
	dir := t.TempDir()
	configHome := filepath.Join(dir, "config")
	require.NoError(t, os.Mkdir(configHome, 0o755))
	t.Setenv("XDG_CONFIG_HOME", configHome)

	src := filepath.Join(dir, "2402.07401.pdf")
	writeTestPDF(t, src, "Foo Bar")

	c := &recordingCatalog{}
	log, _ := test.NewNullLogger()
	rn := NewRenamer(NewPDFExtractor(), NewWhatlangDetector(), &countingSuggester{candidate: "Foo Bar-2024.pdf"}, c, log)

	_, err := rn.Rename(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, c.entries, 1)

	entries, err := os.ReadDir(configHome)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRenameUnusableConfigDir(t *testing.T) {
	dir := t.TempDir()
	notADir := filepath.Join(dir, "config")
	require.NoError(t, os.WriteFile(notADir, nil, 0o644))
	t.Setenv("XDG_CONFIG_HOME", notADir)

	src := filepath.Join(dir, "2402.07401.pdf")
	writeTestPDF(t, src, "Foo Bar")

	c := &recordingCatalog{}
	log, _ := test.NewNullLogger()
	rn := NewRenamer(NewPDFExtractor(), NewWhatlangDetector(), &countingSuggester{candidate: "Foo Bar-2024.pdf"}, c, log)

	res, err := rn.Rename(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Foo Bar-2024-PR.pdf"), res.Destination)
	require.Len(t, c.entries, 1)
}
