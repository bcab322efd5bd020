package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/crypto/argon2"
)

// argon2id parameters following the OWASP recommendation:
// memory=64MB, iterations=3, parallelism=4.
const (
	argonTime    = 3
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16
)

var ErrMalformedDigest = errors.New("malformed password digest")

// PasswordHasher derives and verifies argon2id digests. Key derivation is
// deliberately expensive, so the hasher bounds how many derivations run at
// once: each call takes a slot from a fixed pool and blocks (context-aware)
// until one is free. Request-accepting goroutines are never saturated by a
// burst of registrations.
type PasswordHasher struct {
	slots chan struct{}
}

// NewPasswordHasher creates a hasher running at most workers concurrent
// key derivations. workers <= 0 defaults to GOMAXPROCS.
func NewPasswordHasher(workers int) *PasswordHasher {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &PasswordHasher{slots: make(chan struct{}, workers)}
}

// Hash derives an argon2id digest with a fresh random salt. The output is
// the PHC string format, $argon2id$v=19$m=65536,t=3,p=4$<salt>$<key>, so
// verification needs no external salt or parameter storage.
func (h *PasswordHasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.acquire(ctx); err != nil {
		return "", err
	}
	defer h.release()

	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))

	return encoded, nil
}

// Verify recomputes the digest with the parameters embedded in it and
// compares in constant time. A wrong password yields (false, nil); an
// error is returned only when the digest string itself cannot be parsed.
func (h *PasswordHasher) Verify(ctx context.Context, password, digest string) (bool, error) {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, ErrMalformedDigest
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, ErrMalformedDigest
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return false, ErrMalformedDigest
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, ErrMalformedDigest
	}

	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, ErrMalformedDigest
	}

	if err := h.acquire(ctx); err != nil {
		return false, err
	}
	defer h.release()

	computed := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(expected)))

	return subtle.ConstantTimeCompare(expected, computed) == 1, nil
}

func (h *PasswordHasher) acquire(ctx context.Context) error {
	select {
	case h.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *PasswordHasher) release() {
	<-h.slots
}
