package krypto

import (
	"crypto/subtle"
	"database/sql/driver"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	argon2Variant = "argon2id"

	// Parameters used for new hashes. These follow the OWASP recommendation
	// for argon2id: 46 MiB of memory, 1 iteration and 1 degree of parallelism.
	argon2MemoryKiB   = 47104
	argon2Iterations  = 1
	argon2Parallelism = 1
	argon2SaltLen     = 16
	argon2KeyLen      = 32

	// Upper bounds for parameters found in parsed hashes. A stored hash
	// should never be able to make us allocate gigabytes of memory.
	maxArgon2MemoryKiB   = 1024 * 1024
	maxArgon2Iterations  = 64
	maxArgon2Parallelism = 16
)

// ErrInvalidInput indicates the input could not be hashed or parsed.
var ErrInvalidInput = errors.New("invalid input")

// Argon2Hash is the result of hashing a value with argon2id.
//
// Its text form is self-describing, it contains the variant, version, cost
// parameters and salt next to the hash itself:
//
//	$argon2id$v=19$m=47104,t=1,p=1$<salt>$<hash>
//
// Salt and hash are encoded using unpadded standard base64.
type Argon2Hash struct {
	Variant     string
	Version     int
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	Salt        []byte
	Hash        []byte
}

// HashArgon2 hashes b using argon2id with a freshly generated salt.
func HashArgon2(b []byte) (Argon2Hash, error) {
	if len(b) == 0 {
		return Argon2Hash{}, fmt.Errorf("%w: nothing to hash", ErrInvalidInput)
	}

	salt, err := genRandomBytes(argon2SaltLen)
	if err != nil {
		return Argon2Hash{}, err
	}

	h := Argon2Hash{
		Variant:     argon2Variant,
		Version:     argon2.Version,
		MemoryKiB:   argon2MemoryKiB,
		Iterations:  argon2Iterations,
		Parallelism: argon2Parallelism,
		Salt:        salt,
	}
	h.Hash = h.derive(b, argon2KeyLen)

	return h, nil
}

// ParseArgon2Hash parses the text form of an argon2id hash.
func ParseArgon2Hash(s string) (Argon2Hash, error) {
	// The leading $ results in an empty first part.
	parts := strings.Split(s, "$")
	if len(parts) != 6 || parts[0] != "" {
		return Argon2Hash{}, fmt.Errorf("%w: expected 5 $-separated parts", ErrInvalidInput)
	}

	var h Argon2Hash

	h.Variant = parts[1]
	if h.Variant != argon2Variant {
		return Argon2Hash{}, fmt.Errorf("%w: unsupported variant %q", ErrInvalidInput, h.Variant)
	}

	version, ok := strings.CutPrefix(parts[2], "v=")
	if !ok {
		return Argon2Hash{}, fmt.Errorf("%w: missing version", ErrInvalidInput)
	}

	var err error
	h.Version, err = strconv.Atoi(version)
	if err != nil {
		return Argon2Hash{}, fmt.Errorf("%w: version: %w", ErrInvalidInput, err)
	}

	if h.Version != argon2.Version {
		return Argon2Hash{}, fmt.Errorf("%w: unsupported version %d", ErrInvalidInput, h.Version)
	}

	err = h.parseParams(parts[3])
	if err != nil {
		return Argon2Hash{}, err
	}

	h.Salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(h.Salt) == 0 {
		return Argon2Hash{}, fmt.Errorf("%w: salt is not valid base64", ErrInvalidInput)
	}

	h.Hash, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(h.Hash) == 0 {
		return Argon2Hash{}, fmt.Errorf("%w: hash is not valid base64", ErrInvalidInput)
	}

	return h, nil
}

func (h *Argon2Hash) parseParams(s string) error {
	params := strings.Split(s, ",")
	if len(params) != 3 {
		return fmt.Errorf("%w: expected 3 parameters", ErrInvalidInput)
	}

	targets := []struct {
		prefix string
		max    uint64
		set    func(v uint64)
	}{
		{"m=", maxArgon2MemoryKiB, func(v uint64) { h.MemoryKiB = uint32(v) }},
		{"t=", maxArgon2Iterations, func(v uint64) { h.Iterations = uint32(v) }},
		{"p=", maxArgon2Parallelism, func(v uint64) { h.Parallelism = uint8(v) }},
	}

	for i, tgt := range targets {
		raw, ok := strings.CutPrefix(params[i], tgt.prefix)
		if !ok {
			return fmt.Errorf("%w: expected parameter %q", ErrInvalidInput, tgt.prefix)
		}

		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return fmt.Errorf("%w: parameter %q: %w", ErrInvalidInput, tgt.prefix, err)
		}

		if v == 0 || v > tgt.max {
			return fmt.Errorf("%w: parameter %q out of range", ErrInvalidInput, tgt.prefix)
		}

		tgt.set(v)
	}

	return nil
}

// MatchBytes reports whether b hashes to the same value as h. The hashes
// are compared in constant time.
func (h Argon2Hash) MatchBytes(b []byte) bool {
	if len(h.Hash) == 0 {
		return false
	}

	other := h.derive(b, uint32(len(h.Hash)))
	return subtle.ConstantTimeCompare(h.Hash, other) == 1
}

func (h Argon2Hash) derive(b []byte, keyLen uint32) []byte {
	return argon2.IDKey(b, h.Salt, h.Iterations, h.MemoryKiB, h.Parallelism, keyLen)
}

func (h Argon2Hash) String() string {
	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		h.Variant,
		h.Version,
		h.MemoryKiB,
		h.Iterations,
		h.Parallelism,
		base64.RawStdEncoding.EncodeToString(h.Salt),
		base64.RawStdEncoding.EncodeToString(h.Hash),
	)
}

func (h Argon2Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Argon2Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseArgon2Hash(string(text))
	if err != nil {
		return err
	}

	*h = parsed
	return nil
}

// Scan implements the sql.Scanner interface.
func (h *Argon2Hash) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return h.UnmarshalText([]byte(v))
	case []byte:
		return h.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into argon2 hash", src)
	}
}

// Value implements the driver.Valuer interface.
func (h Argon2Hash) Value() (driver.Value, error) {
	return h.String(), nil
}
