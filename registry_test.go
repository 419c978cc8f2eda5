package uanode

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterStructValidation(t *testing.T) {
	var nilRegistry *DataTypeRegistry
	require.Error(t, RegisterStruct(nilRegistry, NewNumericNodeID(1, 1), StructDefinition[testPair]{}))

	reg := NewDataTypeRegistry()
	require.Error(t, RegisterStruct(reg, NodeID{}, StructDefinition[testPair]{}))
	require.NoError(t, RegisterStruct(reg, NewNumericNodeID(1, 1), StructDefinition[testPair]{}))

	err := RegisterStruct(reg, NewNumericNodeID(1, 2), StructDefinition[testPair]{})
	assert.ErrorContains(t, err, "duplicate registration")

	type other struct{ A int }
	err = RegisterStruct(reg, NewNumericNodeID(1, 1), StructDefinition[other]{})
	assert.ErrorContains(t, err, "duplicate encoding id")

	assert.Panics(t, func() {
		MustRegisterStruct(reg, NewNumericNodeID(1, 1), StructDefinition[testPair]{})
	})
}

func TestRegistryCustomCodec(t *testing.T) {
	reg := NewDataTypeRegistry()
	MustRegisterStruct(reg, NewNumericNodeID(1, 10), StructDefinition[testPair]{
		Name:       "Pair",
		DataTypeID: NewNumericNodeID(1, 9),
		Encode: func(v testPair) ([]byte, error) {
			return []byte(v.Key + "=" + strconv.FormatInt(v.Value, 10)), nil
		},
		Decode: func(body []byte) (testPair, error) {
			for i := range body {
				if body[i] == '=' {
					n, err := strconv.ParseInt(string(body[i+1:]), 10, 64)
					return testPair{Key: string(body[:i]), Value: n}, err
				}
			}
			return testPair{}, errors.New("missing '='")
		},
	})

	eo, err := reg.EncodeStruct(&testPair{Key: "a", Value: 5})
	require.NoError(t, err)
	assert.Equal(t, []byte("a=5"), eo.Body)

	v, err := reg.DecodeStruct(eo)
	require.NoError(t, err)
	assert.Equal(t, testPair{Key: "a", Value: 5}, v)

	_, err = reg.DecodeStruct(ExtensionObject{TypeID: eo.TypeID, Body: []byte("broken")})
	var se StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, BadDecodingError, se.Code)

	_, err = reg.EncodeStruct(42)
	assert.ErrorIs(t, err, StatusError{Code: BadDataEncodingUnsupported})

	infos := reg.DataTypes()
	require.Len(t, infos, 1)
	assert.Equal(t, DataTypeInfo{
		Name:       "Pair",
		GoType:     "uanode.testPair",
		DataTypeID: NewNumericNodeID(1, 9),
		EncodingID: NewNumericNodeID(1, 10),
	}, infos[0])
}

func TestRegistryEncodeFailure(t *testing.T) {
	reg := NewDataTypeRegistry()
	MustRegisterStruct(reg, NewNumericNodeID(1, 10), StructDefinition[testPair]{
		Encode: func(testPair) ([]byte, error) { return nil, errors.New("no") },
	})

	_, err := reg.EncodeStruct(testPair{})
	var se StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, BadEncodingError, se.Code)
	assert.Equal(t, "Bad_EncodingError: encode testPair: no", err.Error())
}
