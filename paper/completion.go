package paper

import (
	"context"
	"math"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

const (
	DefaultModel     = "gpt-4o-mini"
	DefaultMaxTokens = 200
)

// Suggester turns a prompt into a candidate filename.
type Suggester interface {
	Suggest(ctx context.Context, message string) (string, error)
}

// RetryConfig drives the backoff applied to rate-limited completions.
// There is no attempt limit.
type RetryConfig struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		InitialInterval: time.Second,
		MaxInterval:     time.Minute,
	}
}

func (rc RetryConfig) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if rc.InitialInterval > 0 {
		b.InitialInterval = rc.InitialInterval
	}
	if rc.MaxInterval > 0 {
		b.MaxInterval = rc.MaxInterval
	}
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithContext(b, ctx)
}

type CompletionOptions struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Retry     RetryConfig
}

type OpenAISuggester struct {
	client    *openai.Client
	apiKey    string
	model     string
	maxTokens int
	retry     RetryConfig
	log       *logrus.Logger
}

func NewOpenAISuggester(opts CompletionOptions, log *logrus.Logger) *OpenAISuggester {
	config := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		config.BaseURL = opts.BaseURL
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	return &OpenAISuggester{
		client:    openai.NewClientWithConfig(config),
		apiKey:    opts.APIKey,
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
		retry:     opts.Retry,
		log:       log,
	}
}

func (s *OpenAISuggester) Model() string {
	return s.model
}

func (s *OpenAISuggester) Suggest(ctx context.Context, message string) (string, error) {
	if s.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	var content string
	complete := func() error {
		resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: message,
				},
			},
			// omitempty drops a literal zero
			Temperature: math.SmallestNonzeroFloat32,
			MaxTokens:   s.maxTokens,
		})
		if err != nil {
			if isRateLimited(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		if len(resp.Choices) == 0 {
			return backoff.Permanent(errors.New("completion returned no choices"))
		}
		content = resp.Choices[0].Message.Content
		return nil
	}
	notify := func(err error, wait time.Duration) {
		s.log.WithFields(logrus.Fields{
			"model": s.model,
			"wait":  wait,
		}).WithError(err).Warn("Completion rate limited, retrying.")
	}

	if err := backoff.RetryNotify(complete, s.retry.newBackOff(ctx), notify); err != nil {
		return "", errors.Wrap(err, "completion Suggest failed")
	}
	s.log.WithField("response", content).Debug("Completion received.")
	return ExtractCandidate(content)
}

func isRateLimited(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return false
}

var candidatePattern = regexp.MustCompile(`.*\.pdf`)

// ExtractCandidate returns the last "<anything>.pdf" run on a single line of
// the response.
func ExtractCandidate(response string) (string, error) {
	matches := candidatePattern.FindAllString(strings.TrimSpace(response), -1)
	if len(matches) == 0 {
		return "", errors.Wrapf(ErrNoFilename, "response %q", response)
	}
	return matches[len(matches)-1], nil
}
