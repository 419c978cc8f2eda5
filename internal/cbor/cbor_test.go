package cbor_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chenyanchen/uanode/internal/cbor"
)

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, cbor.Encode(&buf, 123))
	assert.Equal(t, []byte{24, 123}, buf.Bytes())
}

func TestDecode(t *testing.T) {
	var v any
	require.NoError(t, cbor.Decode(bytes.NewBuffer([]byte{24, 123}), &v))
	assert.Equal(t, uint64(123), v)

	var w any
	require.NoError(t, cbor.DecodeBytes([]byte{24, 123}, &w))
	assert.Equal(t, uint64(123), w)
}

func TestMarshalStruct(t *testing.T) {
	type build struct {
		ProductURI string    `json:"productUri"`
		BuildDate  time.Time `json:"buildDate"`
		Revision   uint32    `json:"revision"`
	}
	in := build{
		ProductURI: "urn:example:server",
		BuildDate:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Revision:   7,
	}

	b, err := cbor.Marshal(in)
	require.NoError(t, err)

	var out build
	require.NoError(t, cbor.DecodeBytes(b, &out))
	assert.Equal(t, in.ProductURI, out.ProductURI)
	assert.Equal(t, in.Revision, out.Revision)
	assert.True(t, in.BuildDate.Equal(out.BuildDate))
}
