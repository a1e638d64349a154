package codec

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

// sealedFormatVersion is the newest envelope version this package can open.
const sealedFormatVersion = 1

// Limits on the scrypt cost a record may ask for. Key derivation needs
// 128*N*r bytes, so these cap it at 256 MiB.
const (
	saltSize        = 16
	maxScryptN      = 1 << 20
	maxScryptR      = 32
	maxScryptP      = 16
	maxScryptMemory = 1 << 28
)

// ErrSealOpen is returned when the passphrase is wrong or the ciphertext
// has been modified.
var ErrSealOpen = errors.New("codec: wrong passphrase or corrupted sealed record")

// ErrScryptParams is returned for scrypt cost parameters outside the
// supported range.
var ErrScryptParams = errors.New("codec: unsupported scrypt parameters")

// envelope is the on-disk JSON structure holding the ciphertext and KDF parameters.
type envelope struct {
	V      int    `json:"v"`
	Inner  string `json:"codec"`
	Salt   []byte `json:"salt"`
	N      int    `json:"scrypt_N"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Cipher []byte `json:"cipher"`
}

// Sealed encrypts the output of an inner codec with a passphrase-derived key.
type Sealed struct {
	inner      Codec
	passphrase string
	n, r, p    int
}

// NewSealed wraps inner with passphrase encryption using the default
// scrypt parameters.
func NewSealed(inner Codec, passphrase string) *Sealed {
	n, r, p := scryptParamsDefault()
	return &Sealed{inner: inner, passphrase: passphrase, n: n, r: r, p: p}
}

// WithScryptParams returns a copy of s that derives keys with the given
// scrypt cost parameters. Records written with other parameters stay
// readable because the parameters travel in the envelope.
func (s *Sealed) WithScryptParams(n, r, p int) *Sealed {
	cp := *s
	cp.n, cp.r, cp.p = n, r, p
	return &cp
}

// Inner returns the wrapped codec.
func (s *Sealed) Inner() Codec { return s.inner }

// Name returns "sealed-" followed by the inner codec name.
func (s *Sealed) Name() string { return sealedPrefix + s.inner.Name() }

// Marshal encodes v with the inner codec and seals the result.
func (s *Sealed) Marshal(v any) ([]byte, error) {
	raw, err := s.inner.Marshal(v)
	if err != nil {
		return nil, err
	}

	if err := checkScryptParams(s.n, s.r, s.p); err != nil {
		return nil, err
	}

	var salt [saltSize]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, err
	}
	aead, err := s.aead(salt[:], s.n, s.r, s.p)
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte // zero nonce; salt-bound key is unique per record
	ct := aead.Seal(nil, nonce[:], raw, salt[:])

	return json.Marshal(envelope{
		V:      sealedFormatVersion,
		Inner:  s.inner.Name(),
		Salt:   salt[:],
		N:      s.n,
		R:      s.r,
		P:      s.p,
		Cipher: ct,
	})
}

// Unmarshal opens the envelope and decodes the plaintext with the inner codec.
func (s *Sealed) Unmarshal(data []byte, v any) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("sealed envelope: %w", err)
	}
	if env.V < 1 || env.V > sealedFormatVersion {
		return fmt.Errorf("unsupported sealed record version %d", env.V)
	}
	if env.Inner != "" && env.Inner != s.inner.Name() {
		return fmt.Errorf("sealed record uses codec %q, expected %q", env.Inner, s.inner.Name())
	}

	if len(env.Salt) != saltSize {
		return fmt.Errorf("sealed record salt is %d bytes, want %d", len(env.Salt), saltSize)
	}
	if err := checkScryptParams(env.N, env.R, env.P); err != nil {
		return err
	}

	aead, err := s.aead(env.Salt, env.N, env.R, env.P)
	if err != nil {
		return err
	}
	var nonce [chacha20poly1305.NonceSize]byte
	pt, err := aead.Open(nil, nonce[:], env.Cipher, env.Salt)
	if err != nil {
		return ErrSealOpen
	}
	return s.inner.Unmarshal(pt, v)
}

func (s *Sealed) aead(salt []byte, n, r, p int) (cipher.AEAD, error) {
	key, err := scrypt.Key([]byte(s.passphrase), salt, n, r, p, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	return chacha20poly1305.New(key)
}

func checkScryptParams(n, r, p int) error {
	switch {
	case n < 2 || n > maxScryptN || n&(n-1) != 0,
		r < 1 || r > maxScryptR,
		p < 1 || p > maxScryptP,
		int64(128)*int64(n)*int64(r) > maxScryptMemory:
		return fmt.Errorf("%w: N=%d r=%d p=%d", ErrScryptParams, n, r, p)
	}
	return nil
}

// Tunables for scrypt key derivation.
func scryptParamsDefault() (n, r, p int) { return 1 << 15, 8, 1 }
