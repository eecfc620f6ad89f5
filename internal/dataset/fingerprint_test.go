package dataset

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintStable(t *testing.T) {
	a, err := Fingerprint(DefaultParams())
	require.NoError(t, err)
	b, err := Fingerprint(DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, a, b)

	id, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(5), id.Version())
}

func TestFingerprintTracksParams(t *testing.T) {
	p := DefaultParams()
	a, err := Fingerprint(p)
	require.NoError(t, err)

	p.Funnel.Purchase = 0.5
	b, err := Fingerprint(p)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
