// Package cbor encodes structured value bodies in CBOR.
package cbor

import (
	"bytes"
	"io"
	"sync"

	"github.com/ugorji/go/codec"
)

var (
	encoders sync.Pool
	decoders sync.Pool
)

// Encode writes v to w in CBOR format.
func Encode(w io.Writer, v any) error {
	e := encoders.Get().(*codec.Encoder)
	defer encoders.Put(e)

	e.Reset(w)
	return e.Encode(v)
}

// Marshal returns the CBOR encoding of v.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads CBOR data from r and unpacks into v.
func Decode(r io.Reader, v any) error {
	d := decoders.Get().(*codec.Decoder)
	defer decoders.Put(d)

	d.Reset(r)
	return d.Decode(v)
}

// DecodeBytes parses CBOR data in b and unpacks into v.
func DecodeBytes(b []byte, v any) error {
	d := decoders.Get().(*codec.Decoder)
	defer decoders.Put(d)

	d.ResetBytes(b)
	return d.Decode(v)
}

func init() {
	handle := &codec.CborHandle{TimeRFC3339: true}

	encoders.New = func() any {
		return codec.NewEncoder(nil, handle)
	}
	decoders.New = func() any {
		return codec.NewDecoder(nil, handle)
	}
}
