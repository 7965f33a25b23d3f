package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/augur/internal/core/domain"
)

func TestParseIdentifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "already normalized", raw: "SPY", want: "SPY"},
		{name: "lower case", raw: "aapl", want: "AAPL"},
		{name: "surrounding whitespace", raw: "  msft\t", want: "MSFT"},
		{name: "index symbol", raw: "^gspc", want: "^GSPC"},
		{name: "share class", raw: "brk-b", want: "BRK-B"},
		{name: "empty", raw: "", wantErr: true},
		{name: "only whitespace", raw: "   ", wantErr: true},
		{name: "path traversal", raw: "../etc", wantErr: true},
		{name: "embedded space", raw: "A B", wantErr: true},
		{name: "too long", raw: "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			id, err := domain.ParseIdentifier(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrInvalidIdentifier))
				assert.True(t, id.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id.String())
		})
	}
}

func TestIdentifier_Equality(t *testing.T) {
	t.Parallel()

	a := domain.MustIdentifier("spy")
	b := domain.MustIdentifier(" SPY ")
	assert.Equal(t, a, b)

	m := map[domain.Identifier]int{a: 1}
	assert.Equal(t, 1, m[b])
}

func TestIdentifier_Text(t *testing.T) {
	t.Parallel()

	id := domain.MustIdentifier("aapl")
	text, err := id.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "AAPL", string(text))

	var decoded domain.Identifier
	require.NoError(t, decoded.UnmarshalText([]byte("aapl")))
	assert.Equal(t, id, decoded)

	require.Error(t, decoded.UnmarshalText([]byte("")))
}

func TestIdentifier_ZeroValue(t *testing.T) {
	t.Parallel()

	var id domain.Identifier
	assert.True(t, id.IsZero())
	assert.Empty(t, id.String())
}
