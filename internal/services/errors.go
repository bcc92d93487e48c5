package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors classify every failure the pipeline can surface.
// Stages wrap their failures with one of these markers so callers can
// branch with errors.Is without parsing messages.
var (
	ErrNotFound          = errors.New("file not found")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrInvalidAudio      = errors.New("invalid audio")
	ErrPermission        = errors.New("permission denied")
	ErrOutOfMemory       = errors.New("out of memory")
	ErrExternalTool      = errors.New("external tool error")
	ErrRecognition       = errors.New("recognition failure")
	ErrTimeout           = errors.New("timeout")
	ErrValidation        = errors.New("validation error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrRecognition
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify returns the sentinel marker carried by err, or nil when the
// error is untagged.
func Classify(err error) error {
	for _, marker := range []error{
		ErrNotFound,
		ErrUnsupportedFormat,
		ErrInvalidAudio,
		ErrPermission,
		ErrOutOfMemory,
		ErrExternalTool,
		ErrRecognition,
		ErrTimeout,
		ErrValidation,
	} {
		if errors.Is(err, marker) {
			return marker
		}
	}
	return nil
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
