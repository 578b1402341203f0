package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Audio analysis errors
	ErrDecode     = fmt.Errorf("audio decode failed")
	ErrEmptyAudio = fmt.Errorf("decoded audio is empty")
	ErrExtract    = fmt.Errorf("feature extraction failed")

	// Persisted document errors
	ErrCorruptDocument = fmt.Errorf("malformed document")
	ErrDocumentIO      = fmt.Errorf("document read/write failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
