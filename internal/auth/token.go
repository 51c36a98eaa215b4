// internal/auth/token.go
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrInvalidHash indicates that a stored token hash is in an invalid format.
var ErrInvalidHash = errors.New("the encoded hash is not in the correct format")

// Argon2id parameters for staff API token hashing. Tokens are long and
// random, so the parameters are lighter than typical password settings.
const (
	tokenMemory      = 32 * 1024
	tokenIterations  = 3
	tokenParallelism = 2
	tokenSaltLength  = 16
	tokenKeyLength   = 32
)

// HashToken derives an argon2id hash of a staff API token, encoded with its
// parameters and salt for later verification.
func HashToken(token string) (string, error) {
	salt := make([]byte, tokenSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	key := argon2.IDKey([]byte(token), salt, tokenIterations, tokenMemory, tokenParallelism, tokenKeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, tokenMemory, tokenIterations, tokenParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// CompareToken checks a presented token against its stored hash in constant
// time.
func CompareToken(token, encodedHash string) (bool, error) {
	vals := strings.Split(encodedHash, "$")
	if len(vals) != 6 {
		return false, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(vals[2], "v=%d", &version); err != nil {
		return false, err
	}
	if version != argon2.Version {
		return false, fmt.Errorf("incompatible argon2 version %d", version)
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(vals[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return false, err
	}

	salt, err := base64.RawStdEncoding.Strict().DecodeString(vals[4])
	if err != nil {
		return false, err
	}
	key, err := base64.RawStdEncoding.Strict().DecodeString(vals[5])
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey([]byte(token), salt, iterations, memory, parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, candidate) == 1, nil
}
