package service

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/crypto/argon2"

	"github.com/tinyavocado/avocado-server/internal/config"
	"github.com/tinyavocado/avocado-server/internal/metrics"
)

// Argon2Hasher derives digests as Argon2id(HMAC-SHA256(secret, password)).
// Without the per-user secret a stolen digest cannot be attacked offline.
type Argon2Hasher struct {
	params config.Argon2Config
	rand   io.Reader
}

var _ CredentialHasher = (*Argon2Hasher)(nil)

func NewArgon2Hasher(params config.Argon2Config) *Argon2Hasher {
	if params.SaltLen == 0 {
		params.SaltLen = 16
	}
	if params.KeyLen == 0 {
		params.KeyLen = 32
	}
	return &Argon2Hasher{params: params, rand: rand.Reader}
}

func keyedPassword(password, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(password))
	return mac.Sum(nil)
}

// Hash returns the digest in PHC string format:
// $argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>
func (h *Argon2Hasher) Hash(password, secret string) (string, error) {
	defer func(start time.Time) { metrics.RecordHash("hash", time.Since(start)) }(time.Now())

	salt := make([]byte, h.params.SaltLen)
	if _, err := io.ReadFull(h.rand, salt); err != nil {
		return "", fmt.Errorf("%w: generate salt: %v", ErrHash, err)
	}

	hash := argon2.IDKey(
		keyedPassword(password, secret),
		salt,
		h.params.Time,
		h.params.MemoryKB,
		h.params.Threads,
		h.params.KeyLen,
	)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.MemoryKB,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// Verify recomputes the digest with the parameters stored in it and compares
// in constant time.
func (h *Argon2Hasher) Verify(digest, password, secret string) (bool, error) {
	defer func(start time.Time) { metrics.RecordHash("verify", time.Since(start)) }(time.Now())

	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return false, fmt.Errorf("%w: %w", ErrHash, ErrInvalidDigest)
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, fmt.Errorf("%w: %w", ErrHash, ErrInvalidDigest)
	}
	if version != argon2.Version {
		return false, fmt.Errorf("%w: %w", ErrHash, ErrIncompatibleVersion)
	}

	var memory, iterations uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false, fmt.Errorf("%w: %w", ErrHash, ErrInvalidDigest)
	}
	if memory == 0 || iterations == 0 || threads == 0 {
		return false, fmt.Errorf("%w: %w", ErrHash, ErrInvalidDigest)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return false, fmt.Errorf("%w: %w", ErrHash, ErrInvalidDigest)
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 {
		return false, fmt.Errorf("%w: %w", ErrHash, ErrInvalidDigest)
	}

	computed := argon2.IDKey(
		keyedPassword(password, secret),
		salt,
		iterations,
		memory,
		threads,
		uint32(len(expected)),
	)

	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}
