package pagination_test

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianfx/ledger-core/internal/utils/pagination"
)

func TestTokenRoundtrip(t *testing.T) {
	effectiveDate := time.Date(2026, 3, 10, 14, 30, 45, 123456789, time.UTC)

	token := pagination.EncodeToken(effectiveDate, 42)
	gotDate, gotSeq, err := pagination.DecodeToken(token)

	require.NoError(t, err)
	assert.True(t, gotDate.Equal(effectiveDate), "want %s, got %s", effectiveDate, gotDate)
	assert.Equal(t, int64(42), gotSeq)
}

func TestDecodeTokenNotBase64(t *testing.T) {
	_, _, err := pagination.DecodeToken("%%%not-base64%%%")
	assert.Error(t, err)
}

func TestDecodeTokenMissingSeparator(t *testing.T) {
	token := base64.StdEncoding.EncodeToString([]byte("2026-03-10T14:30:45Z"))
	_, _, err := pagination.DecodeToken(token)
	assert.Error(t, err)
}

func TestDecodeTokenBadDate(t *testing.T) {
	token := base64.StdEncoding.EncodeToString([]byte("yesterday|7"))
	_, _, err := pagination.DecodeToken(token)
	assert.Error(t, err)
}

func TestDecodeTokenBadSeq(t *testing.T) {
	token := base64.StdEncoding.EncodeToString([]byte("2026-03-10T14:30:45Z|seven"))
	_, _, err := pagination.DecodeToken(token)
	assert.Error(t, err)
}
