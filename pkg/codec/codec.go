package codec

import (
	"fmt"
	"strings"
)

// Codec encodes and decodes record payloads.
type Codec interface {
	// Marshal serializes v into bytes.
	Marshal(v any) ([]byte, error)
	// Unmarshal deserializes data into v (must be a pointer).
	Unmarshal(data []byte, v any) error
	// Name returns the codec identifier used in config and diagnostics.
	Name() string
}

const sealedPrefix = "sealed-"

// Default is the codec used when none is configured.
var Default Codec = JSON{}

// ByName resolves a codec from its configured name. Names of the form
// "sealed-<inner>" wrap the inner codec with Sealed and require a passphrase.
func ByName(name, passphrase string) (Codec, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if inner, ok := strings.CutPrefix(name, sealedPrefix); ok {
		if passphrase == "" {
			return nil, fmt.Errorf("codec %q requires a passphrase", name)
		}
		c, err := plainByName(inner)
		if err != nil {
			return nil, err
		}
		return NewSealed(c, passphrase), nil
	}
	return plainByName(name)
}

func plainByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSON{}, nil
	case "yaml", "yml":
		return YAML{}, nil
	case "msgpack":
		return MsgPack{}, nil
	default:
		return nil, fmt.Errorf("unknown codec: %s", name)
	}
}

// DefaultExtension returns the file extension conventionally paired with c.
// The extension is a naming convention only; the store never inspects it.
func DefaultExtension(c Codec) string {
	switch c.(type) {
	case YAML:
		return "yaml"
	case MsgPack:
		return "msgpack"
	case *Sealed:
		return "sealed"
	default:
		return "json"
	}
}
