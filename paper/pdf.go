package paper

import (
	"strings"

	pdf "github.com/ledongthuc/pdf"
	pdfcpu "github.com/pdfcpu/pdfcpu/pkg/api"
	pdfcpucore "github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pkg/errors"
)

// FirstPages are the zero-indexed pages the name is derived from.
var FirstPages = []int{0, 1, 2}

var ErrTitleNotFound = errors.New("title not found")

func init() {
	// pdfcpu otherwise writes config.yml under the user config dir and
	// exits the process when it cannot.
	pdfcpucore.ConfigPath = "disable"
}

// Extractor reads what the renamer needs out of a PDF.
type Extractor interface {
	ExtractText(path string, pages []int) (string, error)
	Title(path string) (string, error)
}

type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// ExtractText concatenates the plain text of the given zero-indexed pages.
// Pages past the end of the document are skipped.
func (pe *PDFExtractor) ExtractText(path string, pages []int) (text string, err error) {
	// the parser panics on some broken xref tables
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = errors.Wrapf(ErrMalformedPDF, "pdf ExtractText %s: %v", path, r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", errors.Wrapf(ErrMalformedPDF, "pdf ExtractText %s: %v", path, err)
	}
	defer f.Close()

	fonts := make(map[string]*pdf.Font)
	var parts []string
	for _, n := range pages {
		if n < 0 || n >= reader.NumPage() {
			continue
		}
		page := reader.Page(n + 1)
		if page.V.IsNull() {
			continue
		}
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				font := page.Font(name)
				fonts[name] = &font
			}
		}
		content, err := page.GetPlainText(fonts)
		if err != nil {
			return "", errors.Wrapf(ErrMalformedPDF, "pdf ExtractText %s page %d: %v", path, n, err)
		}
		parts = append(parts, content)
	}
	return strings.Join(parts, "\n"), nil
}

// Title returns the title stored in the document information dictionary.
func (pe *PDFExtractor) Title(path string) (string, error) {
	return GetPDFTitleFromFile(path)
}

func getTitle(info []string) (string, error) {
	titlePrefix := "Title: "
	for _, line := range info {
		cleaned := strings.TrimSpace(line)
		if strings.HasPrefix(cleaned, titlePrefix) {
			title := strings.TrimSpace(strings.TrimPrefix(cleaned, titlePrefix))
			if title == "" {
				break
			}
			return title, nil
		}
	}
	return "", ErrTitleNotFound
}

func GetPDFTitleFromFile(inFile string) (title string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("pdf info %s: %v", inFile, r)
		}
	}()

	info, err := pdfcpu.InfoFile(inFile, []string{}, pdfcpucore.NewDefaultConfiguration())
	if err != nil {
		return "", errors.Wrap(err, "pdf GetPDFTitleFromFile failed")
	}
	return getTitle(info)
}
