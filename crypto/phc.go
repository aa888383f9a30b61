package crypto

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
)

var ErrInvalidPHC = errors.New("invalid argon2 PHC string")

// PHC is an Argon2 hash in the PHC string format: $argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>
type PHC struct {
	Mode       Mode
	Version    int
	Parameters Argon2Parameters
	Salt       []byte
	Key        []byte
}

func (h *PHC) String() string {
	return fmt.Sprintf("$%s$v=%d$%s$%s$%s", h.Mode, h.Version, h.Parameters,
		base64.RawStdEncoding.EncodeToString(h.Salt), base64.RawStdEncoding.EncodeToString(h.Key))
}

func ParsePHC(s string) (*PHC, error) {
	parts := strings.Split(s, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, errors.Wrap(ErrInvalidPHC, "expected 5 '$' separated fields")
	}

	h := &PHC{}
	var err error
	if h.Mode, err = ParseMode(parts[1]); err != nil {
		return nil, errors.Wrap(ErrInvalidPHC, err.Error())
	}
	if _, err = fmt.Sscanf(parts[2], "v=%d", &h.Version); err != nil {
		return nil, errors.Wrapf(ErrInvalidPHC, "version %q", parts[2])
	}
	if h.Version != argon2.Version {
		return nil, errors.Wrapf(ErrInvalidPHC, "unsupported version %d", h.Version)
	}
	p := &h.Parameters
	if _, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return nil, errors.Wrapf(ErrInvalidPHC, "parameters %q", parts[3])
	}
	if h.Salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, errors.Wrap(ErrInvalidPHC, "salt is not base64")
	}
	if h.Key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return nil, errors.Wrap(ErrInvalidPHC, "hash is not base64")
	}
	if len(h.Key) == 0 {
		return nil, errors.Wrap(ErrInvalidPHC, "empty hash")
	}
	return h, nil
}

// HashPassword derives a PHC hash for password with a fresh random salt.
func HashPassword(hasher Argon2Hasher, mode Mode, password []byte, p Argon2Parameters, saltLen int, keyLen uint32) (*PHC, error) {
	salt, err := RandBytes(saltLen)
	if err != nil {
		return nil, err
	}
	key, err := hasher.Digest(mode, password, salt, p, keyLen)
	if err != nil {
		return nil, err
	}
	return &PHC{Mode: mode, Version: argon2.Version, Parameters: p, Salt: salt, Key: key}, nil
}

// Verify recomputes the hash of password and compares it in constant time. Parameters outside the
// accepted presets are refused before hashing.
func (h *PHC) Verify(hasher Argon2Hasher, password []byte) (bool, error) {
	if err := h.Parameters.Verify(); err != nil {
		return false, err
	}
	key, err := hasher.Digest(h.Mode, password, h.Salt, h.Parameters, uint32(len(h.Key)))
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(key, h.Key) == 1, nil
}
