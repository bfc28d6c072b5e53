package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var recordIDPattern = regexp.MustCompile(`^record_\d+_[a-z0-9]{9}$`)

func TestGenerateRecordID(t *testing.T) {
	g := NewIDGenerator()
	createdAt := time.UnixMilli(1700000000123)

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		id, err := g.GenerateRecordID(createdAt)
		require.NoError(t, err)
		assert.Regexp(t, recordIDPattern, id)
		assert.Contains(t, id, "_1700000000123_")
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestCleanupOldIDs(t *testing.T) {
	g := NewIDGenerator()
	for i := 0; i < 5; i++ {
		_, err := g.GenerateRecordID(time.Now())
		require.NoError(t, err)
	}

	g.CleanupOldIDs(10)
	assert.Len(t, g.usedIDs, 5)

	g.CleanupOldIDs(3)
	assert.Empty(t, g.usedIDs)
}

func TestLegacyID(t *testing.T) {
	assert.Equal(t, "legacy_3_1700000000000", LegacyID(3, time.UnixMilli(1700000000000)))
}
