package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// JSON is the default codec, producing compact encoding/json output.
type JSON struct{}

// Marshal serializes v to compact JSON bytes.
func (JSON) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal deserializes exactly one JSON value into v. Trailing data after
// the value is an error.
func (JSON) Unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("json: unexpected data after top-level value")
	}
	return nil
}

// Name returns "json".
func (JSON) Name() string { return "json" }
