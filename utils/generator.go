package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"
)

const suffixLength = 9

// IDGenerator generates record ids of the form record_<unix-ms>_<suffix>
type IDGenerator struct {
	// Track recently generated IDs to ensure uniqueness
	usedIDs      map[string]bool
	mutex        sync.Mutex
	characterSet []rune
}

// NewIDGenerator creates a new instance of IDGenerator
func NewIDGenerator() *IDGenerator {
	// Base36 lowercase, the alphabet the front-end already uses for ids
	characterSet := []rune("abcdefghijklmnopqrstuvwxyz0123456789")

	return &IDGenerator{
		usedIDs:      make(map[string]bool),
		characterSet: characterSet,
	}
}

// GenerateRecordID creates a new unique record id for a record created at the given time
func (g *IDGenerator) GenerateRecordID(createdAt time.Time) (string, error) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	// Maximum attempts to avoid infinite loops
	maxAttempts := 100

	for attempts := 0; attempts < maxAttempts; attempts++ {
		suffix, err := g.generateRandomID(suffixLength)
		if err != nil {
			return "", err
		}

		id := fmt.Sprintf("record_%d_%s", createdAt.UnixMilli(), suffix)
		if !g.usedIDs[id] {
			g.usedIDs[id] = true
			return id, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique ID after %d attempts", maxAttempts)
}

// LegacyID is the id assigned to a stored record that predates ids.
func LegacyID(index int, now time.Time) string {
	return fmt.Sprintf("legacy_%d_%d", index, now.UnixMilli())
}

// generateRandomID creates a random ID of specified length
func (g *IDGenerator) generateRandomID(length int) (string, error) {
	result := make([]rune, length)

	charSetLength := big.NewInt(int64(len(g.characterSet)))

	for i := 0; i < length; i++ {
		// Generate cryptographically secure random number
		randomIndex, err := rand.Int(rand.Reader, charSetLength)
		if err != nil {
			return "", err
		}

		result[i] = g.characterSet[randomIndex.Int64()]
	}

	return string(result), nil
}

// CleanupOldIDs resets the uniqueness map once it grows past maxSize.
// Ids embed the creation millisecond, so old entries can never collide again.
func (g *IDGenerator) CleanupOldIDs(maxSize int) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if len(g.usedIDs) > maxSize {
		g.usedIDs = make(map[string]bool)
	}
}
