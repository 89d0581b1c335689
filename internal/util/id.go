// Package util provides identifier helpers shared by the store and the engine.
package util

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator provides thread-safe UUIDv7 generation. UUIDv7 ids sort by
// creation time, which keeps the relocation log index ordered.
type IDGenerator struct {
	mu sync.Mutex
}

// NewIDGenerator creates a new ID generator.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// NewID generates a new UUIDv7 identifier from this generator.
func (g *IDGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := uuid.NewV7()
	if err != nil {
		// Only fails when the random source does
		return uuid.New().String()
	}
	return id.String()
}

var generator = NewIDGenerator()

// NewID generates a new UUIDv7 identifier.
func NewID() string {
	return generator.NewID()
}

// ShortID returns the last six hex digits of id, uppercased. These come from
// the random part of a UUIDv7, so they are usable as a readable suffix.
func ShortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 6 {
		id = id[len(id)-6:]
	}
	return strings.ToUpper(id)
}

// ParseID validates and parses a UUID string.
func ParseID(s string) (string, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid ID format: %w", err)
	}
	return id.String(), nil
}

// IsValidID checks if a string is a valid UUID format.
func IsValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// SequenceGenerator hands out readable sequential ids such as "SPLIT-0001".
// It is deterministic, which makes it the generator of choice in tests.
type SequenceGenerator struct {
	mu      sync.Mutex
	prefix  string
	lastSeq int
}

// NewSequenceGenerator creates a sequence generator for prefix.
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{prefix: prefix}
}

// SetLastSequence sets the last used sequence number.
func (s *SequenceGenerator) SetLastSequence(seq int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeq = seq
}

// NewID generates the next id in the sequence.
func (s *SequenceGenerator) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeq++
	return fmt.Sprintf("%s%04d", s.prefix, s.lastSeq)
}

// ParseSequence extracts the sequence number from an id made by a
// generator with the given prefix.
func ParseSequence(prefix, id string) (int, error) {
	if !strings.HasPrefix(id, prefix) {
		return 0, fmt.Errorf("id %q does not start with %q", id, prefix)
	}
	var seq int
	if _, err := fmt.Sscanf(id[len(prefix):], "%d", &seq); err != nil {
		return 0, fmt.Errorf("invalid sequence id: %w", err)
	}
	return seq, nil
}
