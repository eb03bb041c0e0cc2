package translator

import (
	"context"
	"fmt"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// GoogleTranslator translates through the Google Cloud Translation API.
// The API reports no token usage, so this backend skips cost metering; it
// still goes through the same normalization, validation, and retry path as
// the LLM backend.
type GoogleTranslator struct {
	credentials string
	source      language.Tag
	target      language.Tag
}

// NewGoogleTranslator builds the Google backend. credentials is an optional
// service-account file path (application default credentials are used when
// empty). Source is Chinese, target English.
func NewGoogleTranslator(credentials string) *GoogleTranslator {
	return &GoogleTranslator{
		credentials: credentials,
		source:      language.Chinese,
		target:      language.English,
	}
}

func (t *GoogleTranslator) Name() string {
	return "google"
}

// Translate performs one translation request for a chunk.
func (t *GoogleTranslator) Translate(ctx context.Context, req Request) (*Result, error) {
	var opts []option.ClientOption
	if t.credentials != "" {
		opts = append(opts, option.WithCredentialsFile(t.credentials))
	}

	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create translate client: %v: %w", err, ErrTransport)
	}
	defer client.Close()

	translations, err := client.Translate(ctx, []string{req.Text}, t.target, &translate.Options{
		Source: t.source,
		Format: translate.Text,
	})
	if err != nil {
		return nil, fmt.Errorf("translate request: %v: %w", err, ErrTransport)
	}
	if len(translations) == 0 {
		return nil, fmt.Errorf("no translation returned: %w", ErrMalformed)
	}

	return &Result{Text: translations[0].Text}, nil
}
