package crawler

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds crawler configuration.
type Config struct {
	// BaseURL bounds the crawl: only URLs starting with this exact string
	// are followed.
	BaseURL string `validate:"required,url"`

	// MaxPages caps the number of distinct URLs visited.
	MaxPages int `validate:"gte=1"`

	// Delay is the fixed pause between consecutive requests.
	Delay time.Duration `validate:"gte=0"`

	// Timeouts per resource kind.
	HTMLTimeout time.Duration `validate:"gt=0"`
	PDFTimeout  time.Duration `validate:"gt=0"`

	// UserAgent overrides the fetcher's identification header.
	UserAgent string

	// Headers are extra request headers sent with every fetch.
	Headers map[string]string
}

// DefaultConfig returns the defaults used against the university site.
func DefaultConfig() Config {
	return Config{
		BaseURL:     "https://cc.unison.mx/",
		MaxPages:    500,
		Delay:       100 * time.Millisecond,
		HTMLTimeout: 10 * time.Second,
		PDFTimeout:  20 * time.Second,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid crawler config: %w", err)
	}
	return nil
}
