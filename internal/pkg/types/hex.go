package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Hex represents a hexadecimal-encoded number as a string (e.g., "0x1a"),
// the form blockchain JSON-RPC APIs use for heights, statuses, and gas.
// It validates on construction and when unmarshaled from JSON.
type Hex string

// HexFromString validates the input string and returns it as a Hex value.
func HexFromString(s string) (Hex, error) {
	if err := validateHex(s); err != nil {
		return "", err
	}
	return Hex(s), nil
}

// validateHex checks the "0x"/"0X" prefix and that the remainder parses as an
// unsigned hexadecimal number.
func validateHex(s string) error {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return fmt.Errorf("hex string must start with 0x")
	}

	if _, err := strconv.ParseUint(s[2:], 16, 64); err != nil {
		return fmt.Errorf("invalid hexadecimal value: %w", err)
	}

	return nil
}

// IsEmpty reports whether the value is unset.
func (h Hex) IsEmpty() bool {
	return h == ""
}

// Uint64 converts the hex string to its numeric value. The zero value
// converts to 0.
func (h Hex) Uint64() (uint64, error) {
	if h.IsEmpty() {
		return 0, nil
	}

	if err := validateHex(string(h)); err != nil {
		return 0, err
	}

	return strconv.ParseUint(string(h[2:]), 16, 64)
}

// MarshalJSON encodes the Hex as a JSON string.
func (h Hex) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(h))
}

// UnmarshalJSON parses and validates a JSON-encoded hexadecimal string.
// An empty string or JSON null leaves the value unset.
func (h *Hex) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*h = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid hex string: %w", err)
	}

	if s == "" {
		*h = ""
		return nil
	}

	if err := validateHex(s); err != nil {
		return err
	}

	*h = Hex(s)
	return nil
}
