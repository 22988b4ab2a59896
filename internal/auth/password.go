package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const argon2Version = argon2.Version

// Argon2Params tunes the cost of Argon2id derivation.
type Argon2Params struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2Params returns the production cost settings.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		MemoryKiB:   64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Hasher derives and checks stored credentials.
type Hasher interface {
	Hash(secret string) (string, error)
	Verify(secret, credential string) bool
}

// PasswordHasher hashes with Argon2id and also verifies legacy bcrypt credentials.
type PasswordHasher struct {
	params Argon2Params
}

func NewPasswordHasher(params Argon2Params) *PasswordHasher {
	def := DefaultArgon2Params()
	if params.MemoryKiB == 0 {
		params.MemoryKiB = def.MemoryKiB
	}
	if params.Iterations == 0 {
		params.Iterations = def.Iterations
	}
	if params.Parallelism == 0 {
		params.Parallelism = def.Parallelism
	}
	if params.SaltLength == 0 {
		params.SaltLength = def.SaltLength
	}
	if params.KeyLength == 0 {
		params.KeyLength = def.KeyLength
	}
	return &PasswordHasher{params: params}
}

// Hash returns an encoded credential:
// $argon2id$v=19$m=<mem>,t=<iter>,p=<par>$<salt_b64>$<key_b64>
func (h *PasswordHasher) Hash(secret string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}

	key := argon2.IDKey([]byte(secret), salt, h.params.Iterations, h.params.MemoryKiB, h.params.Parallelism, h.params.KeyLength)

	b64 := base64.RawStdEncoding
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Version,
		h.params.MemoryKiB,
		h.params.Iterations,
		h.params.Parallelism,
		b64.EncodeToString(salt),
		b64.EncodeToString(key),
	), nil
}

// Verify reports whether secret matches credential. Malformed or unsupported
// credentials never match.
func (h *PasswordHasher) Verify(secret, credential string) bool {
	if isBcrypt(credential) {
		return bcrypt.CompareHashAndPassword([]byte(credential), []byte(secret)) == nil
	}

	params, salt, expected, ok := decodeArgon2(credential)
	if !ok || !h.withinBounds(params) {
		return false
	}

	key := argon2.IDKey([]byte(secret), salt, params.Iterations, params.MemoryKiB, params.Parallelism, params.KeyLength)
	return subtle.ConstantTimeCompare(key, expected) == 1
}

// withinBounds refuses stored parameters far above our own settings so a tampered
// credential cannot force a pathological derivation.
func (h *PasswordHasher) withinBounds(got Argon2Params) bool {
	switch {
	case got.MemoryKiB > h.params.MemoryKiB*2:
		return false
	case got.Iterations > h.params.Iterations*2:
		return false
	case got.Parallelism > h.params.Parallelism*2:
		return false
	case got.SaltLength < 8 || got.SaltLength > 64:
		return false
	case got.KeyLength < 16 || got.KeyLength > 128:
		return false
	}
	return true
}

func isBcrypt(credential string) bool {
	return strings.HasPrefix(credential, "$2a$") ||
		strings.HasPrefix(credential, "$2b$") ||
		strings.HasPrefix(credential, "$2y$")
}

func decodeArgon2(encoded string) (Argon2Params, []byte, []byte, bool) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return Argon2Params{}, nil, nil, false
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2Version) {
		return Argon2Params{}, nil, nil, false
	}

	var mem, iter, par uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iter, &par); err != nil {
		return Argon2Params{}, nil, nil, false
	}
	if mem == 0 || iter == 0 || par == 0 || par > 255 {
		return Argon2Params{}, nil, nil, false
	}

	b64 := base64.RawStdEncoding
	salt, err := b64.DecodeString(parts[4])
	if err != nil {
		return Argon2Params{}, nil, nil, false
	}
	key, err := b64.DecodeString(parts[5])
	if err != nil {
		return Argon2Params{}, nil, nil, false
	}

	return Argon2Params{
		MemoryKiB:   mem,
		Iterations:  iter,
		Parallelism: uint8(par),
		SaltLength:  uint32(len(salt)),
		KeyLength:   uint32(len(key)),
	}, salt, key, true
}
