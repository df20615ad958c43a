// Package cleaner defines text cleaners: transformations from raw
// extracted text to the normalized text handed to indexing.
package cleaner

// Cleaner transforms one document's text.
type Cleaner interface {
	// Clean returns the cleaned form of text.
	Clean(text string) (string, error)

	// Name returns the cleaner type for logging/debugging.
	Name() string
}
