// Package codec provides payload serialization for keepsake record files.
//
// A record store never interprets the bytes it writes. Every payload goes
// through a Codec chosen by the caller when the store is constructed, and
// the same codec must be used to read the record back.
//
// # Codecs
//
// Three plain codecs are provided:
//   - JSON: compact encoding/json output; the default
//   - YAML: gopkg.in/yaml.v3, for hand-edited records
//   - MsgPack: github.com/vmihailenco/msgpack/v5, for compact binary records
//
// Sealed wraps any of them and encrypts the encoded bytes with a key derived
// from a passphrase:
//
//	[JSON envelope {"v":1,"salt":...,"scrypt_N":...,"cipher":...}]
//
// The key is derived with scrypt and the payload is sealed with
// ChaCha20-Poly1305, using the salt as associated data.
//
// # Usage
//
//	c, err := codec.ByName("json", "")
//	if err != nil {
//	    return err
//	}
//
//	data, err := c.Marshal(map[string]int{"level": 5})
//	if err != nil {
//	    return err
//	}
//
//	var out map[string]int
//	if err := c.Unmarshal(data, &out); err != nil {
//	    return err // malformed input is never coerced
//	}
//
// # Error Handling
//
// Unmarshal fails on malformed input instead of silently coercing it. JSON
// rejects trailing data after the first value; Sealed rejects a wrong
// passphrase or a modified ciphertext with ErrSealOpen.
//
// # Thread Safety
//
// All codecs are stateless values (Sealed holds only its passphrase and
// scrypt parameters) and are safe for concurrent use.
package codec
