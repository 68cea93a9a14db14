// Package entropy wires user-supplied randomness sources into key
// generation and signing, falling back to the operating system source.
package entropy

import (
	"bufio"
	"bytes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"
	"os/exec"

	"github.com/drand/kyber/util/random"
)

// GetRandom reads n bytes of randomness from whatever Reader is passed in,
// and returns those bytes as the requested randomness.
func GetRandom(source io.Reader, n uint32) ([]byte, error) {
	if source == nil {
		source = rand.Reader
	}

	randomBytes := make([]byte, n)
	bytesRead, err := source.Read(randomBytes)
	if err != nil || uint32(bytesRead) != n {
		// If the customEntropy provides an error,
		// fallback to the crypto/rand generator.
		_, err := rand.Read(randomBytes)
		return randomBytes, err
	}
	return randomBytes, nil
}

// Stream returns a randomness stream suitable for drawing scalars, seeded by
// the given source on top of the operating system source. A nil source gives
// the plain operating system stream.
func Stream(source io.Reader) cipher.Stream {
	if source == nil {
		return random.New()
	}
	return random.New(source, rand.Reader)
}

// ScriptReader holds the path of an executable whose output is used as
// user-provided entropy.
type ScriptReader struct {
	Path string
}

var _ io.Reader = &ScriptReader{}

// NewScriptReader creates a new ScriptReader struct
func NewScriptReader(path string) *ScriptReader {
	return &ScriptReader{path}
}

// Read calls the executable as many times as needed to fill the array p.
// n == len(p) if and only if err == nil
func (r *ScriptReader) Read(p []byte) (n int, err error) {
	if r.Path == "" {
		return 0, errors.New("no reader was provided")
	}
	var b bytes.Buffer
	read := 0
	for read < len(p) {
		cmd := exec.Command(r.Path) // #nosec
		cmd.Stdout = bufio.NewWriter(&b)
		if err := cmd.Run(); err != nil {
			return read, err
		}
		read += copy(p[read:], b.Bytes())
	}
	return len(p), nil
}

// GetPath returns the path of the script
func (r *ScriptReader) GetPath() string {
	return r.Path
}
