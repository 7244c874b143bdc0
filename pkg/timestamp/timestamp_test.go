package timestamp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNow(t *testing.T) {
	before := time.Now().UnixMilli()
	got := Now()
	after := time.Now().UnixMilli()

	assert.GreaterOrEqual(t, got, before)
	assert.LessOrEqual(t, got, after)
}

func TestToUnixMs(t *testing.T) {
	t.Run("zero time maps to zero", func(t *testing.T) {
		assert.Equal(t, int64(0), ToUnixMs(time.Time{}))
	})

	t.Run("known instant", func(t *testing.T) {
		instant := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
		assert.Equal(t, instant.UnixMilli(), ToUnixMs(instant))
	})
}

func TestFromUnixMs(t *testing.T) {
	t.Run("zero maps to zero time", func(t *testing.T) {
		assert.True(t, FromUnixMs(0).IsZero())
	})

	t.Run("round trip", func(t *testing.T) {
		instant := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
		got := FromUnixMs(instant.UnixMilli())
		assert.True(t, got.Equal(instant))
	})
}

func TestFormat(t *testing.T) {
	t.Run("zero is empty", func(t *testing.T) {
		assert.Equal(t, "", Format(0))
	})

	t.Run("rfc3339 utc", func(t *testing.T) {
		instant := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
		assert.Equal(t, "2024-03-15T10:30:00Z", Format(instant.UnixMilli()))
	})
}
