package base

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSiteID_ParseRoundTrip(t *testing.T) {
	const s = "0191aaaa-bbbb-7ccc-8ddd-eeeeffff0000"

	id, err := ParseSiteID(s)
	require.NoError(t, err)
	assert.Equal(t, s, id.String())
}

func TestSiteID_ParseInvalid(t *testing.T) {
	_, err := ParseSiteID("not-a-uuid")
	assert.Error(t, err)
}

func TestSiteID_BytesRoundTrip(t *testing.T) {
	id := NewSiteID()

	back, err := SiteIDFromBytes(id.Bytes())
	require.NoError(t, err)
	assert.Equal(t, id, back)
}

func TestSiteID_FromBytesWrongLength(t *testing.T) {
	_, err := SiteIDFromBytes([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestSiteID_SQLRoundTrip(t *testing.T) {
	id := NewSiteID()

	v, err := id.Value()
	require.NoError(t, err)

	var back SiteID
	require.NoError(t, back.Scan(v))
	assert.Equal(t, id, back)
}

func TestSiteID_ScanRejectsNonBytes(t *testing.T) {
	var id SiteID
	assert.Error(t, id.Scan("0191aaaa-bbbb-7ccc-8ddd-eeeeffff0000"))
}

func TestSiteID_IsZero(t *testing.T) {
	var zero SiteID
	assert.True(t, zero.IsZero())
	assert.False(t, NewSiteID().IsZero())
}
