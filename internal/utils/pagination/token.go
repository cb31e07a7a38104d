package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// EncodeMultiFieldToken creates a token with any number of string fields
func EncodeMultiFieldToken(fields ...string) string {
	tokenStr := strings.Join(fields, "|")
	return base64.RawURLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeMultiFieldToken decodes a token into its component fields
func DecodeMultiFieldToken(token string) ([]string, error) {
	decodedBytes, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	return strings.Split(string(decodedBytes), "|"), nil
}

const clientCursorPrefix = "client"

// EncodeClientCursor returns an opaque token that resumes a listing after
// clientID.
func EncodeClientCursor(clientID uint16) string {
	return EncodeMultiFieldToken(clientCursorPrefix, strconv.FormatUint(uint64(clientID), 10))
}

// DecodeClientCursor parses a token made by EncodeClientCursor.
func DecodeClientCursor(token string) (uint16, error) {
	fields, err := DecodeMultiFieldToken(token)
	if err != nil {
		return 0, err
	}
	if len(fields) != 2 || fields[0] != clientCursorPrefix {
		return 0, fmt.Errorf("invalid pagination token format (fields)")
	}
	id, err := strconv.ParseUint(fields[1], 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid pagination token format (client id): %w", err)
	}
	return uint16(id), nil
}
