package crypto

import (
	"crypto/rand"

	"github.com/pkg/errors"
)

// RandBytes returns size bytes read from the system CSPRNG.
func RandBytes(size int) ([]byte, error) {
	res := make([]byte, size)
	n, err := rand.Read(res)
	if err != nil {
		return nil, errors.Wrap(err, "could not generate randomness")
	}
	if n != size {
		return nil, errors.Errorf("could not generate randomness: read %d of %d bytes", n, size)
	}
	return res, nil
}
