package paper

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

const (
	// MarkerSuffix marks files that have already been renamed.
	MarkerSuffix = "-PR.pdf"
	// MaxNameLength caps the candidate in characters.
	MaxNameLength = 247
	// MaxNameBytes is the usual file name limit. Multi-byte titles can reach
	// it before MaxNameLength does.
	MaxNameBytes = 255

	pdfExt = ".pdf"
)

func IsProcessed(path string) bool {
	return strings.HasSuffix(path, MarkerSuffix)
}

// Sanitize makes a candidate safe to use as a single path component and
// gives it the marker suffix.
func Sanitize(candidate string) string {
	name := strings.ReplaceAll(candidate, "/", "-")
	name = strings.ReplaceAll(name, string(os.PathSeparator), "-")
	if r := []rune(name); len(r) > MaxNameLength {
		name = string(r[:MaxNameLength])
	}
	if !strings.HasSuffix(name, pdfExt) {
		name += pdfExt
	}
	base := strings.TrimSuffix(name, pdfExt)
	for len(base)+len(MarkerSuffix) > MaxNameBytes {
		_, size := utf8.DecodeLastRuneInString(base)
		base = base[:len(base)-size]
	}
	return base + MarkerSuffix
}

// CollisionCandidate returns the i-th alternative for a path ending in
// MarkerSuffix. The zeroth candidate is the path itself.
func CollisionCandidate(path string, i int) string {
	if i == 0 {
		return path
	}
	return fmt.Sprintf("%s-(%d)%s", strings.TrimSuffix(path, MarkerSuffix), i, MarkerSuffix)
}

// ResolveCollision returns the first candidate that does not exist yet.
func ResolveCollision(path string) (string, error) {
	for i := 0; ; i++ {
		candidate := CollisionCandidate(path, i)
		_, err := os.Lstat(candidate)
		if os.IsNotExist(err) {
			return candidate, nil
		}
		if err != nil {
			return "", errors.Wrap(err, "filename ResolveCollision failed")
		}
	}
}

var (
	counterSuffix = regexp.MustCompile(`-\(\d+\)$`)
	yearSuffix    = regexp.MustCompile(`-(\d{4})$`)
)

// TitleFromFilename recovers the title part of a name produced by Sanitize
// and ResolveCollision.
func TitleFromFilename(name string) string {
	title := strings.TrimSuffix(name, MarkerSuffix)
	title = counterSuffix.ReplaceAllString(title, "")
	title = yearSuffix.ReplaceAllString(title, "")
	return strings.TrimSpace(title)
}
