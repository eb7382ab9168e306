package accounts

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// legacyHashLen is the length of an unsalted hex SHA-256 digest.
const legacyHashLen = sha256.Size * 2

// Hasher hashes new passwords with bcrypt and verifies both bcrypt and
// legacy SHA-256 hex hashes.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher using cost, or bcrypt.DefaultCost when cost
// is outside bcrypt's accepted range.
func NewHasher(cost int) Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return Hasher{cost: cost}
}

func (h Hasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (h Hasher) Verify(hash, password string) bool {
	if isLegacy(hash) {
		sum := sha256.Sum256([]byte(password))
		return subtle.ConstantTimeCompare([]byte(hex.EncodeToString(sum[:])), []byte(strings.ToLower(hash))) == 1
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NeedsRehash reports whether hash should be replaced after a successful login.
func (h Hasher) NeedsRehash(hash string) bool {
	if isLegacy(hash) {
		return true
	}
	cost, err := bcrypt.Cost([]byte(hash))
	return err != nil || cost != h.cost
}

func isLegacy(hash string) bool {
	if len(hash) != legacyHashLen {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}
