package cedula

import (
	"errors"
	"fmt"
)

// Errors exist only at the LLM boundary: the pattern pipeline itself never
// fails, it just leaves fields null.
var (
	// ErrMissingAPIKey is returned when the OpenAI API key is not configured.
	ErrMissingAPIKey = errors.New("missing OpenAI API key: set OPENAI_API_KEY environment variable")

	// ErrLLMExtractionFailed is returned when every attempt to obtain a
	// parseable response from the model has failed.
	ErrLLMExtractionFailed = errors.New("LLM extraction failed")

	// ErrEmptyInput is returned when the raw text given to the LLM
	// extractor is empty after normalization.
	ErrEmptyInput = errors.New("input text is empty")
)

// ExtractionError wraps errors with context about the failing operation.
type ExtractionError struct {
	// Op is the operation that failed (e.g., "ExtractWithLLM").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

func (e *ExtractionError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("cedula: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("cedula: %s failed: %v", e.Op, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

func (e *ExtractionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapExtractionError wraps an error as an ExtractionError if it isn't one.
func WrapExtractionError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var extErr *ExtractionError
	if errors.As(err, &extErr) {
		return err
	}

	return &ExtractionError{Op: op, Err: err, Details: details}
}
