package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/shayanh/pdfrename"
	"github.com/shayanh/pdfrename/paper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	log := logrus.New()

	// .env is optional
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand(log).ExecuteContext(ctx); err != nil {
		log.WithError(err).Error(describe(err))
		cancel()
		os.Exit(1)
	}
}

func newRootCommand(log *logrus.Logger) *cobra.Command {
	return &cobra.Command{
		Use:           "pdfrename <file.pdf>",
		Short:         "Rename an academic PDF after its title and year",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			processed, err := paper.CheckSource(args[0])
			if err != nil {
				return err
			}
			if processed {
				log.WithField("path", args[0]).Debug("Already renamed, skipping.")
				return nil
			}

			config, err := pdfrename.ReadConfig()
			if err != nil {
				return errors.Wrap(err, "read config failed")
			}
			level, err := logrus.ParseLevel(config.Log.Level)
			if err != nil {
				return errors.Wrap(err, "invalid log level")
			}
			log.SetLevel(level)

			rn := newRenamer(config, log)
			_, err = rn.Rename(cmd.Context(), args[0])
			return err
		},
	}
}

func newRenamer(config pdfrename.RootConfig, log *logrus.Logger) *paper.Renamer {
	oa := paper.NewOpenAISuggester(config.OpenAI.CompletionOptions(), log)

	var suggester paper.Suggester = oa
	if config.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})
		cache := paper.NewRedisSuggestionCache(rdb, config.Redis.TTL)
		suggester = paper.NewCachingSuggester(oa, cache, oa.Model(), log)
	}

	var catalog paper.Catalog = paper.DummyCatalog{}
	if config.Notion.Enabled() {
		catalog = paper.NewNotionCatalog(config.Notion.Token, config.Notion.DatabaseID)
	}

	return paper.NewRenamer(paper.NewPDFExtractor(), paper.NewWhatlangDetector(), suggester, catalog, log)
}

func describe(err error) string {
	switch {
	case errors.Is(err, paper.ErrNotAFile):
		return "Not a file."
	case errors.Is(err, paper.ErrMalformedPDF):
		return "Cannot parse the file. Is it a valid PDF?"
	case errors.Is(err, paper.ErrNoFilename):
		return "The model did not answer with a filename."
	case errors.Is(err, paper.ErrPermissionDenied):
		return "Cannot rename the file. Permission denied."
	case errors.Is(err, paper.ErrMissingAPIKey):
		return "Set OPENAI_API_KEY or openai.apiKey in pdfrename.yaml."
	default:
		return "pdfrename failed."
	}
}
