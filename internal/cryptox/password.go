// Package cryptox holds the credential primitives: password hashing and
// opaque identifier generation.
package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Supported hashing algorithms.
const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2SaltLen = 16
	argon2KeyLen  = 32

	// upper bounds accepted when decoding a stored hash
	argon2MaxMemory = 1024 * 1024
	argon2MaxTime   = 64
)

var (
	ErrEmptyPassword        = errors.New("password cannot be empty")
	ErrPasswordTooLong      = errors.New("password is too long")
	ErrUnsupportedAlgorithm = errors.New("unsupported password hash algorithm")
)

// PasswordHasher produces salted one-way encodings of passwords and checks
// candidates against them. Verify never panics and returns false for any
// malformed or foreign encoding.
type PasswordHasher interface {
	Hash(password string) ([]byte, error)
	Verify(password string, hash []byte) bool
}

// NewPasswordHasher returns the hasher used for new hashes. Whatever is
// chosen, Verify accepts both bcrypt and argon2id encodings.
func NewPasswordHasher(algorithm string, bcryptCost int) (PasswordHasher, error) {
	switch algorithm {
	case "", AlgorithmBcrypt:
		return NewBcryptHasher(bcryptCost), nil
	case AlgorithmArgon2id:
		return NewArgon2idHasher(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, algorithm)
	}
}

// BcryptHasher stores passwords in modular crypt format ($2a$...).
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher clamps cost into bcrypt's accepted range; zero means default.
func NewBcryptHasher(cost int) *BcryptHasher {
	switch {
	case cost == 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) ([]byte, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: bcrypt accepts at most 72 bytes", ErrPasswordTooLong)
		}
		return nil, fmt.Errorf("bcrypt: %w", err)
	}
	return hash, nil
}

func (h *BcryptHasher) Verify(password string, hash []byte) bool {
	return verify(password, hash)
}

// Argon2idHasher stores passwords in PHC format:
// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
type Argon2idHasher struct{}

func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{}
}

func (h *Argon2idHasher) Hash(password string) ([]byte, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}

	salt := common.GenerateRandByteArray(argon2SaltLen)

	key := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return []byte(encoded), nil
}

func (h *Argon2idHasher) Verify(password string, hash []byte) bool {
	return verify(password, hash)
}

// verify dispatches on the encoding prefix.
func verify(password string, hash []byte) bool {
	s := string(hash)
	switch {
	case strings.HasPrefix(s, "$2a$"), strings.HasPrefix(s, "$2b$"), strings.HasPrefix(s, "$2y$"):
		return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
	case strings.HasPrefix(s, "$argon2id$"):
		return verifyArgon2id(password, s)
	default:
		return false
	}
}

func verifyArgon2id(password, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var memory, time, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false
	}
	if memory == 0 || memory > argon2MaxMemory || time == 0 || time > argon2MaxTime || threads == 0 || threads > 255 {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 || len(expected) > 1024 {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, time, memory, uint8(threads), uint32(len(expected)))
	return subtle.ConstantTimeCompare(computed, expected) == 1
}
