package paper

import "github.com/pkg/errors"

var (
	ErrNotAFile         = errors.New("not a file")
	ErrMalformedPDF     = errors.New("malformed pdf")
	ErrNoFilename       = errors.New("no filename found in completion")
	ErrPermissionDenied = errors.New("permission denied")
	ErrMissingAPIKey    = errors.New("openai api key is not set")
)
