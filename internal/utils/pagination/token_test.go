package pagination_test

import (
	"testing"

	"github.com/SscSPs/payments_engine/internal/utils/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientCursor(t *testing.T) {
	for _, id := range []uint16{0, 1, 65535} {
		token := pagination.EncodeClientCursor(id)
		got, err := pagination.DecodeClientCursor(token)
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}
}

func TestDecodeClientCursor_Invalid(t *testing.T) {
	tests := map[string]string{
		"not base64":   "%%%",
		"wrong prefix": pagination.EncodeMultiFieldToken("journal", "1"),
		"too many":     pagination.EncodeMultiFieldToken("client", "1", "2"),
		"out of range": pagination.EncodeMultiFieldToken("client", "70000"),
		"not a number": pagination.EncodeMultiFieldToken("client", "x"),
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := pagination.DecodeClientCursor(token)
			assert.Error(t, err)
		})
	}
}
