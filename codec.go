package apicall

import (
	"errors"
	"math/big"
	"strconv"

	"github.com/dineshappavoo/basex"
)

// IDCodec obfuscates identifiers before they are placed in URLs.
type IDCodec interface {
	Encode(id any) (string, error)
}

// BasexCodec encodes non-negative integer identifiers as base-62 strings.
type BasexCodec struct{}

// Encode accepts any Go integer type, a *big.Int or a decimal string.
func (BasexCodec) Encode(id any) (string, error) {
	v, err := toBigInt(id)
	if err != nil {
		return "", &InvalidIDError{Value: id, Err: err}
	}
	encoded, err := basex.EncodeInt(v)
	if err != nil {
		return "", &InvalidIDError{Value: id, Err: err}
	}
	return encoded, nil
}

// Decode reverses Encode, returning the identifier in decimal form.
func (BasexCodec) Decode(encoded string) (string, error) {
	return basex.Decode(encoded)
}

func toBigInt(id any) (*big.Int, error) {
	v := new(big.Int)
	switch n := id.(type) {
	case int:
		v.SetInt64(int64(n))
	case int8:
		v.SetInt64(int64(n))
	case int16:
		v.SetInt64(int64(n))
	case int32:
		v.SetInt64(int64(n))
	case int64:
		v.SetInt64(n)
	case uint:
		v.SetUint64(uint64(n))
	case uint8:
		v.SetUint64(uint64(n))
	case uint16:
		v.SetUint64(uint64(n))
	case uint32:
		v.SetUint64(uint64(n))
	case uint64:
		v.SetUint64(n)
	case *big.Int:
		if n == nil {
			return nil, errors.New("nil identifier")
		}
		v.Set(n)
	case string:
		if _, ok := v.SetString(n, 10); !ok {
			return nil, strconv.ErrSyntax
		}
	default:
		return nil, errors.New("identifier must be an integer")
	}
	if v.Sign() < 0 {
		return nil, errors.New("identifier must not be negative")
	}
	return v, nil
}
