/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/valpere/hantran/internal/checkpoint"
	"github.com/valpere/hantran/internal/chunker"
	"github.com/valpere/hantran/internal/costs"
	"github.com/valpere/hantran/internal/orchestrator"
	"github.com/valpere/hantran/internal/store"
	"github.com/valpere/hantran/internal/translator"
	"github.com/valpere/hantran/internal/validator"
)

var (
	outputDir string
	chunkDir  string
	dbPath    string
	workers   int
	verbose   bool

	backend string
	model   string
	apiKey  string
	baseURL string
	creds   string

	docTitle  string
	docAuthor string

	maxChars    int
	maxAttempts int
	baseWait    time.Duration
	maxWait     time.Duration
	minLength   int
	latinRatio  float64
)

var translateCmd = &cobra.Command{
	Use:   "translate [files...]",
	Short: "Translate Chinese documents into English",
	Long: `Translate one or more Chinese text files into English.

Each document is split into paragraph-respecting chunks, each chunk is
translated with bounded-backoff retries and validated before acceptance,
and accepted chunks are persisted under the chunk directory. Re-running
the command resumes from the persisted chunks.

Backends:
  - llm     OpenAI-compatible chat completion endpoint (default, metered)
  - google  Google Cloud Translate (unmetered)

Multiple documents are processed in parallel (--workers); chunks within
one document are translated sequentially.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 1 && docTitle != "" {
			return fmt.Errorf("--title only applies to a single input file")
		}

		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).With().Timestamp().Logger()

		agg := costs.NewAggregator()
		trans, err := buildTranslator(agg)
		if err != nil {
			return err
		}

		checkpoints, err := checkpoint.New(chunkDir)
		if err != nil {
			return err
		}

		val := validator.New()
		val.LatinRatioThreshold = latinRatio
		val.MinChunkLength = minLength

		cfg := orchestrator.Config{
			MaxChars: maxChars,
			Retry: orchestrator.RetryPolicy{
				MaxAttempts: maxAttempts,
				BaseWait:    baseWait,
				MaxWait:     maxWait,
			},
			Logger: logger,
		}

		var db *store.Store
		if dbPath != "" {
			db, err = store.New(dbPath)
			if err != nil {
				// Ledger trouble must not block translation.
				logger.Warn().Err(err).Msg("usage ledger unavailable")
			} else {
				defer db.Close()
				cfg.Ledger = db
			}
		}

		docs, err := loadDocuments(args)
		if err != nil {
			return err
		}

		orch := orchestrator.New(trans, val, checkpoints, cfg)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if db != nil {
			for _, d := range docs {
				n := len(chunker.Split(d.Text, maxChars))
				if serr := db.StartDocument(ctx, d.Identity(), d.Title, d.Author, n, d.OutputPath); serr != nil {
					logger.Warn().Err(serr).Msg("ledger document registration failed")
				}
			}
		}

		runErr := orch.RunAll(ctx, docs, workers)

		reportCosts(agg.Snapshot())
		return runErr
	},
}

// buildTranslator constructs the configured backend. Credentials come from
// flags first, then viper (HANTRAN_API_KEY etc. or the config file).
func buildTranslator(agg *costs.Aggregator) (translator.Translator, error) {
	switch backend {
	case "llm":
		key := apiKey
		if key == "" {
			key = viper.GetString("api_key")
		}
		url := baseURL
		if url == "" {
			url = viper.GetString("base_url")
		}
		if key == "" && url == "" {
			return nil, fmt.Errorf("llm backend requires --api-key (or HANTRAN_API_KEY) unless --base-url points to a local endpoint")
		}
		return translator.NewLLMTranslator(key, url, model, agg), nil
	case "google":
		c := creds
		if c == "" {
			c = viper.GetString("credentials")
		}
		return translator.NewGoogleTranslator(c), nil
	default:
		return nil, fmt.Errorf("unknown backend: %s", backend)
	}
}

// loadDocuments reads the input files into Documents. The identity comes
// from --title/--author for a single file, otherwise from the file name.
func loadDocuments(paths []string) ([]orchestrator.Document, error) {
	var docs []orchestrator.Document
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read input file: %w", err)
		}

		title := docTitle
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}

		out := strings.TrimSuffix(path, filepath.Ext(path)) + ".en.txt"
		if outputDir != "" {
			out = filepath.Join(outputDir, filepath.Base(out))
		}

		docs = append(docs, orchestrator.Document{
			Title:      title,
			Author:     docAuthor,
			Text:       string(data),
			OutputPath: out,
		})
	}
	return docs, nil
}

func reportCosts(t costs.Totals) {
	if t.Requests == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "\nUsage: %d requests, %d tokens (%d prompt + %d completion), $%.4f\n",
		t.Requests, t.Tokens, t.PromptTokens, t.CompletionTokens, t.Cost)
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory for translated documents (default: next to input)")
	translateCmd.Flags().StringVar(&chunkDir, "chunk-dir", "chunks", "working directory for persisted chunk files")
	translateCmd.Flags().StringVar(&dbPath, "db", "hantran.db", "SQLite usage ledger path (empty to disable)")
	translateCmd.Flags().IntVar(&workers, "workers", 2, "documents translated in parallel")
	translateCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	translateCmd.Flags().StringVar(&backend, "backend", "llm", "translation backend: llm or google")
	translateCmd.Flags().StringVar(&model, "model", translator.DefaultLLMModel, "LLM model name")
	translateCmd.Flags().StringVar(&apiKey, "api-key", "", "LLM API key")
	translateCmd.Flags().StringVar(&baseURL, "base-url", "", "LLM endpoint base URL (OpenAI-compatible)")
	translateCmd.Flags().StringVar(&creds, "credentials", "", "Google service account credentials file")

	translateCmd.Flags().StringVar(&docTitle, "title", "", "document title (single input file only)")
	translateCmd.Flags().StringVar(&docAuthor, "author", "", "document author")

	translateCmd.Flags().IntVar(&maxChars, "max-chars", chunker.DefaultMaxChars, "per-chunk character budget")
	translateCmd.Flags().IntVar(&maxAttempts, "max-attempts", orchestrator.DefaultMaxAttempts, "translation attempts per chunk")
	translateCmd.Flags().DurationVar(&baseWait, "base-wait", orchestrator.DefaultBaseWait, "initial retry backoff")
	translateCmd.Flags().DurationVar(&maxWait, "max-wait", orchestrator.DefaultMaxWait, "retry backoff ceiling")
	translateCmd.Flags().IntVar(&minLength, "min-length", validator.DefaultMinChunkLength, "minimum accepted chunk length")
	translateCmd.Flags().Float64Var(&latinRatio, "latin-ratio", validator.DefaultLatinRatioThreshold, "maximum non-Latin character ratio")

	viper.BindPFlag("api_key", translateCmd.Flags().Lookup("api-key"))
	viper.BindPFlag("base_url", translateCmd.Flags().Lookup("base-url"))
	viper.BindPFlag("credentials", translateCmd.Flags().Lookup("credentials"))
	viper.BindPFlag("model", translateCmd.Flags().Lookup("model"))
}
