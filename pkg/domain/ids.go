package domain

import (
	"crypto/rand"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/google/uuid"

	dErrors "formation/pkg/domain-errors"
)

// ApplicationID is the surrogate key of a stored application.
type ApplicationID uuid.UUID

// NewApplicationID returns a fresh random application id.
func NewApplicationID() ApplicationID {
	return ApplicationID(uuid.New())
}

// ParseApplicationID constructs an ApplicationID from external input.
// Errors: CodeInvalidInput when empty, malformed or the nil UUID.
func ParseApplicationID(s string) (ApplicationID, error) {
	if s == "" {
		return ApplicationID{}, dErrors.New(dErrors.CodeInvalidInput, "application id cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return ApplicationID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid application id")
	}
	if parsed == uuid.Nil {
		return ApplicationID{}, dErrors.New(dErrors.CodeInvalidInput, "application id cannot be nil")
	}
	return ApplicationID(parsed), nil
}

func (id ApplicationID) String() string {
	return uuid.UUID(id).String()
}

func (id ApplicationID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

// MarshalText lets ApplicationID serialize as its UUID string in JSON.
func (id ApplicationID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ApplicationID) UnmarshalText(b []byte) error {
	parsed, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = ApplicationID(parsed)
	return nil
}

// ReferenceNumber is the externally shareable application identifier.
// Invariant: matches BVI-<4 digit year>-<6 chars of [A-Z0-9]>.
type ReferenceNumber string

const (
	// ReferencePrefix is the namespace tag every reference number starts with.
	ReferencePrefix = "BVI"
	// ReferenceSuffixLen gives 36^6 (~2.2e9) suffixes per year.
	ReferenceSuffixLen = 6

	referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var referencePattern = regexp.MustCompile(`^BVI-[0-9]{4}-[A-Z0-9]{6}$`)

// NewReferenceNumber synthesizes a candidate reference for the year of now.
// Uniqueness is the caller's concern; see the application service retry loop.
func NewReferenceNumber(now time.Time) (ReferenceNumber, error) {
	return newReferenceNumber(now, rand.Reader)
}

func newReferenceNumber(now time.Time, src io.Reader) (ReferenceNumber, error) {
	buf := make([]byte, ReferenceSuffixLen)
	if _, err := io.ReadFull(src, buf); err != nil {
		return "", fmt.Errorf("read reference entropy: %w", err)
	}
	suffix := make([]byte, ReferenceSuffixLen)
	for i, b := range buf {
		// Slight modulo bias; uniqueness is enforced by the store, not the draw.
		suffix[i] = referenceAlphabet[int(b)%len(referenceAlphabet)]
	}
	return ReferenceNumber(fmt.Sprintf("%s-%04d-%s", ReferencePrefix, now.Year(), suffix)), nil
}

// ParseReferenceNumber validates external input.
// Errors: CodeInvalidInput when the value does not match the reference shape.
func ParseReferenceNumber(s string) (ReferenceNumber, error) {
	if !referencePattern.MatchString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid reference number")
	}
	return ReferenceNumber(s), nil
}

func (r ReferenceNumber) String() string {
	return string(r)
}

func (r ReferenceNumber) IsNil() bool {
	return r == ""
}
