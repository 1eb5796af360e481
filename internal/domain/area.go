package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	areaCodeLength = 5
	minAreaCode    = 10000 // exclusive
	maxAreaCode    = 14200 // exclusive
)

var areaPrefixes = []string{"10", "12", "13", "14"}

// AreaID is a validated postal code identifying an area. The zero value is
// not a valid identifier; obtain one through ParseAreaID.
type AreaID struct {
	code string
}

// ParseAreaID trims and validates a postal code.
func ParseAreaID(raw string) (AreaID, error) {
	code := strings.TrimSpace(raw)
	if code == "" {
		return AreaID{}, fmt.Errorf("%w: postal code is empty", ErrInvalidArea)
	}
	if len(code) != areaCodeLength {
		return AreaID{}, fmt.Errorf("%w: postal code must be exactly %d digits: %q", ErrInvalidArea, areaCodeLength, code)
	}
	n, err := strconv.Atoi(code)
	if err != nil || strings.ContainsAny(code, "+-") {
		return AreaID{}, fmt.Errorf("%w: postal code must be numeric: %q", ErrInvalidArea, code)
	}
	if !hasAreaPrefix(code) || n <= minAreaCode || n >= maxAreaCode {
		return AreaID{}, fmt.Errorf("%w: postal code must start with %s: %q",
			ErrInvalidArea, strings.Join(areaPrefixes, ", "), code)
	}
	return AreaID{code: code}, nil
}

// MustParseAreaID is ParseAreaID for literals known to be valid. It panics
// otherwise. Intended for tests and fixtures; request input goes through
// ParseAreaID.
func MustParseAreaID(raw string) AreaID {
	id, err := ParseAreaID(raw)
	if err != nil {
		panic(err)
	}
	return id
}

func hasAreaPrefix(code string) bool {
	for _, p := range areaPrefixes {
		if strings.HasPrefix(code, p) {
			return true
		}
	}
	return false
}

func (a AreaID) String() string { return a.code }

// IsZero reports whether a is the unset identifier.
func (a AreaID) IsZero() bool { return a.code == "" }

// MarshalText encodes the identifier as its postal code.
func (a AreaID) MarshalText() ([]byte, error) {
	return []byte(a.code), nil
}

// UnmarshalText validates the postal code while decoding.
func (a *AreaID) UnmarshalText(text []byte) error {
	id, err := ParseAreaID(string(text))
	if err != nil {
		return err
	}
	*a = id
	return nil
}

// AreaIDs returns the postal codes of ids in order.
func AreaIDs(ids []AreaID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.code
	}
	return out
}
