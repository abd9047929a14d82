// internal/inventory/code.go
//
// Domain types shared by every intake workflow. A ScannedCode is the single
// input that starts a lookup, whether it came from the scanner or was typed.

package inventory

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxCodeLength is the longest payload accepted from any capture source.
const MaxCodeLength = 128

var (
	// ErrEmptyCode is returned when a capture yields no usable payload.
	ErrEmptyCode = errors.New("inventory: code is empty")
	// ErrCodeTooLong is returned when a payload exceeds MaxCodeLength.
	ErrCodeTooLong = errors.New("inventory: code exceeds maximum length")
)

// CodeTag records how a code was captured.
type CodeTag int

const (
	TagBarcode CodeTag = iota
	TagQR
	TagManual
)

func (t CodeTag) String() string {
	switch t {
	case TagQR:
		return "qr"
	case TagManual:
		return "manual"
	default:
		return "barcode"
	}
}

// ScannedCode is a validated capture payload.
type ScannedCode struct {
	Value string
	Tag   CodeTag
}

// NewScannedCode trims the payload and enforces the length bounds.
func NewScannedCode(value string, tag CodeTag) (ScannedCode, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ScannedCode{}, ErrEmptyCode
	}
	if n := utf8.RuneCountInString(trimmed); n > MaxCodeLength {
		return ScannedCode{}, fmt.Errorf("%w: %d > %d", ErrCodeTooLong, n, MaxCodeLength)
	}
	return ScannedCode{Value: trimmed, Tag: tag}, nil
}

// IsZero reports whether the code was never set.
func (c ScannedCode) IsZero() bool {
	return c.Value == ""
}

func (c ScannedCode) String() string {
	return c.Value
}

// ParseCodeTag is the inverse of CodeTag.String. Unknown names map to
// TagBarcode.
func ParseCodeTag(name string) CodeTag {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "qr":
		return TagQR
	case "manual":
		return TagManual
	default:
		return TagBarcode
	}
}
