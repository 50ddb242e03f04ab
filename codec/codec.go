// Package codec converts typed Go values to and from the byte sequences
// stored in cells. HBase compares keys and values as unsigned bytes, so
// numbers are encoded big-endian like HBase's Bytes.toBytes.
package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"reflect"
	"strconv"
)

type Codec interface {
	EncodeInt(int64) []byte
	DecodeInt([]byte) (int64, error)
	EncodeFloat(float64) []byte
	DecodeFloat([]byte) (float64, error)
	EncodeBool(bool) []byte
	DecodeBool([]byte) (bool, error)
	EncodeString(string) []byte
	DecodeString([]byte) (string, error)
	EncodeUint(uint64) []byte
	DecodeUint([]byte) (uint64, error)
}

type DefaultCodec struct{}

func (*DefaultCodec) EncodeInt(n int64) []byte {
	bytesBuffer := bytes.NewBuffer([]byte{})
	_ = binary.Write(bytesBuffer, binary.BigEndian, n)
	return bytesBuffer.Bytes()
}

func (*DefaultCodec) DecodeInt(b []byte) (int64, error) {
	bytesBuffer := bytes.NewBuffer(b)
	var x int64
	err := binary.Read(bytesBuffer, binary.BigEndian, &x)
	return x, err
}

func (*DefaultCodec) EncodeFloat(n float64) []byte {
	bytesBuffer := bytes.NewBuffer([]byte{})
	_ = binary.Write(bytesBuffer, binary.BigEndian, n)
	return bytesBuffer.Bytes()
}

func (*DefaultCodec) DecodeFloat(b []byte) (float64, error) {
	bytesBuffer := bytes.NewBuffer(b)
	var x float64
	err := binary.Read(bytesBuffer, binary.BigEndian, &x)
	return x, err
}

func (*DefaultCodec) EncodeBool(b bool) []byte {
	if b {
		return []byte{1}
	}
	return []byte{0}
}

func (*DefaultCodec) DecodeBool(b []byte) (bool, error) {
	if len(b) != 1 {
		return false, errors.New("failed to parse bytes to bool, invalid bool encoding")
	}
	return bytes.Equal(b, []byte{1}), nil
}

func (*DefaultCodec) EncodeString(s string) []byte {
	return []byte(s)
}

func (*DefaultCodec) DecodeString(b []byte) (string, error) {
	return string(b), nil
}

func (*DefaultCodec) EncodeUint(n uint64) []byte {
	bytesBuffer := bytes.NewBuffer([]byte{})
	_ = binary.Write(bytesBuffer, binary.BigEndian, n)
	return bytesBuffer.Bytes()
}

func (*DefaultCodec) DecodeUint(b []byte) (uint64, error) {
	bytesBuffer := bytes.NewBuffer(b)
	var n uint64
	err := binary.Read(bytesBuffer, binary.BigEndian, &n)
	return n, err
}

var bytesType = reflect.TypeOf([]byte(nil))

// EncodeValue encodes a struct field according to its kind. Byte slices are
// stored as is.
func EncodeValue(c Codec, field reflect.Value) ([]byte, error) {
	switch field.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return c.EncodeInt(field.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return c.EncodeUint(field.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return c.EncodeFloat(field.Float()), nil
	case reflect.String:
		return c.EncodeString(field.String()), nil
	case reflect.Bool:
		return c.EncodeBool(field.Bool()), nil
	case reflect.Slice:
		if field.Type().ConvertibleTo(bytesType) {
			return field.Convert(bytesType).Bytes(), nil
		}
	}
	return nil, fmt.Errorf("unsupported field type %s", field.Type())
}

// DecodeValue decodes b into a settable struct field.
func DecodeValue(c Codec, b []byte, field reflect.Value) error {
	switch field.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := c.DecodeInt(b)
		if err != nil {
			return fmt.Errorf("failed to parse int column: %w", err)
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := c.DecodeUint(b)
		if err != nil {
			return fmt.Errorf("failed to parse uint column: %w", err)
		}
		field.SetUint(n)
	case reflect.Float32, reflect.Float64:
		n, err := c.DecodeFloat(b)
		if err != nil {
			return fmt.Errorf("failed to parse float column: %w", err)
		}
		field.SetFloat(n)
	case reflect.String:
		s, err := c.DecodeString(b)
		if err != nil {
			return fmt.Errorf("failed to parse string column: %w", err)
		}
		field.SetString(s)
	case reflect.Bool:
		v, err := c.DecodeBool(b)
		if err != nil {
			return fmt.Errorf("failed to parse bool column: %w", err)
		}
		field.SetBool(v)
	case reflect.Slice:
		if !field.Type().ConvertibleTo(bytesType) {
			return fmt.Errorf("unsupported field type %s", field.Type())
		}
		field.Set(reflect.ValueOf(append([]byte(nil), b...)).Convert(field.Type()))
	default:
		return fmt.Errorf("unsupported field type %s", field.Type())
	}
	return nil
}

// Encode parses text as the named type ("string", "int", "uint", "float",
// "bool" or "bytes") and encodes it.
func Encode(c Codec, typ, text string) ([]byte, error) {
	switch typ {
	case "", "string", "bytes":
		return c.EncodeString(text), nil
	case "int":
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, err
		}
		return c.EncodeInt(n), nil
	case "uint":
		n, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return nil, err
		}
		return c.EncodeUint(n), nil
	case "float":
		n, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, err
		}
		return c.EncodeFloat(n), nil
	case "bool":
		b, err := strconv.ParseBool(text)
		if err != nil {
			return nil, err
		}
		return c.EncodeBool(b), nil
	}
	return nil, fmt.Errorf("unknown value type %q", typ)
}

// Decode renders b as text of the named type; see Encode.
func Decode(c Codec, typ string, b []byte) (string, error) {
	switch typ {
	case "", "string":
		return c.DecodeString(b)
	case "bytes":
		return strconv.Quote(string(b)), nil
	case "int":
		n, err := c.DecodeInt(b)
		return strconv.FormatInt(n, 10), err
	case "uint":
		n, err := c.DecodeUint(b)
		return strconv.FormatUint(n, 10), err
	case "float":
		n, err := c.DecodeFloat(b)
		return strconv.FormatFloat(n, 'g', -1, 64), err
	case "bool":
		v, err := c.DecodeBool(b)
		return strconv.FormatBool(v), err
	}
	return "", fmt.Errorf("unknown value type %q", typ)
}
