// Package idgen provides ID and session-code generation utilities
package idgen

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync/atomic"

	"github.com/google/uuid"
)

//go:generate mockgen -destination=mock/mock.go -package=idgenmock github.com/shuffleraid/raid-api/internal/pkg/idgen Generator

// Generator generates unique identifiers
type Generator interface {
	Generate() string
}

// CodeLength is the length of a session join code
const CodeLength = 5

// codeAlphabet is the uppercase alphanumeric space session codes draw from
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// UUIDGenerator generates UUIDs with optional prefix
type UUIDGenerator struct {
	prefix string
}

// NewUUID creates a new UUID generator with optional prefix
func NewUUID(prefix string) *UUIDGenerator {
	return &UUIDGenerator{prefix: prefix}
}

// Generate creates a new UUID-based ID
func (g *UUIDGenerator) Generate() string {
	id := uuid.New().String()
	if g.prefix != "" {
		return fmt.Sprintf("%s_%s", g.prefix, id)
	}
	return id
}

// CodeGenerator generates short alphanumeric session codes
type CodeGenerator struct{}

// NewCode creates a new session code generator
func NewCode() *CodeGenerator {
	return &CodeGenerator{}
}

// Generate creates a 5-character uppercase alphanumeric code. Each
// character is drawn uniformly; a plain byte-modulo would skew toward
// the head of the alphabet.
func (g *CodeGenerator) Generate() string {
	size := big.NewInt(int64(len(codeAlphabet)))
	buf := make([]byte, CodeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			// crypto/rand should never fail on a properly configured system
			panic(fmt.Sprintf("crypto/rand failed: %v", err))
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf)
}

// SequentialGenerator generates sequential IDs for testing
type SequentialGenerator struct {
	prefix  string
	counter uint64
}

// NewSequential creates a new sequential generator
func NewSequential(prefix string) *SequentialGenerator {
	return &SequentialGenerator{prefix: prefix}
}

// Generate creates a new sequential ID
func (g *SequentialGenerator) Generate() string {
	n := atomic.AddUint64(&g.counter, 1)
	if g.prefix != "" {
		return fmt.Sprintf("%s_%d", g.prefix, n)
	}
	return fmt.Sprintf("%d", n)
}
