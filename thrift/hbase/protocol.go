package hbase

import (
	"context"

	"github.com/apache/thrift/lib/go/thrift"
)

// fieldReader handles one field of a struct being decoded. It reports false
// when the field is unknown or has an unexpected type, and the field is then
// skipped.
type fieldReader func(ctx context.Context, p thrift.TProtocol, id int16, t thrift.TType) (bool, error)

func readStruct(ctx context.Context, p thrift.TProtocol, name string, read fieldReader) error {
	if _, err := p.ReadStructBegin(ctx); err != nil {
		return thrift.PrependError(name+" read struct begin error: ", err)
	}
	for {
		_, t, id, err := p.ReadFieldBegin(ctx)
		if err != nil {
			return thrift.PrependError(name+" field read error: ", err)
		}
		if t == thrift.STOP {
			break
		}
		ok, err := read(ctx, p, id, t)
		if err != nil {
			return thrift.PrependError(name+" field read error: ", err)
		}
		if !ok {
			if err := p.Skip(ctx, t); err != nil {
				return err
			}
		}
		if err := p.ReadFieldEnd(ctx); err != nil {
			return err
		}
	}
	if err := p.ReadStructEnd(ctx); err != nil {
		return thrift.PrependError(name+" read struct end error: ", err)
	}
	return nil
}

// fieldWriter writes one field; it writes nothing for unset optional fields.
type fieldWriter func(ctx context.Context, p thrift.TProtocol) error

func writeStruct(ctx context.Context, p thrift.TProtocol, name string, fields ...fieldWriter) error {
	if err := p.WriteStructBegin(ctx, name); err != nil {
		return thrift.PrependError(name+" write struct begin error: ", err)
	}
	for _, f := range fields {
		if err := f(ctx, p); err != nil {
			return err
		}
	}
	if err := p.WriteFieldStop(ctx); err != nil {
		return thrift.PrependError("write field stop error: ", err)
	}
	if err := p.WriteStructEnd(ctx); err != nil {
		return thrift.PrependError("write struct stop error: ", err)
	}
	return nil
}

func field(name string, id int16, t thrift.TType, body func(ctx context.Context, p thrift.TProtocol) error) fieldWriter {
	return func(ctx context.Context, p thrift.TProtocol) error {
		if err := p.WriteFieldBegin(ctx, name, t, id); err != nil {
			return thrift.PrependError("write field begin error "+name+": ", err)
		}
		if err := body(ctx, p); err != nil {
			return err
		}
		if err := p.WriteFieldEnd(ctx); err != nil {
			return thrift.PrependError("write field end error "+name+": ", err)
		}
		return nil
	}
}

func skip() fieldWriter {
	return func(context.Context, thrift.TProtocol) error { return nil }
}

func binaryField(name string, id int16, v []byte, required bool) fieldWriter {
	if v == nil && !required {
		return skip()
	}
	return field(name, id, thrift.STRING, func(ctx context.Context, p thrift.TProtocol) error {
		return p.WriteBinary(ctx, v)
	})
}

func i32Field(name string, id int16, v *int32) fieldWriter {
	if v == nil {
		return skip()
	}
	return field(name, id, thrift.I32, func(ctx context.Context, p thrift.TProtocol) error {
		return p.WriteI32(ctx, *v)
	})
}

func i64Field(name string, id int16, v *int64) fieldWriter {
	if v == nil {
		return skip()
	}
	return field(name, id, thrift.I64, func(ctx context.Context, p thrift.TProtocol) error {
		return p.WriteI64(ctx, *v)
	})
}

func boolField(name string, id int16, v *bool) fieldWriter {
	if v == nil {
		return skip()
	}
	return field(name, id, thrift.BOOL, func(ctx context.Context, p thrift.TProtocol) error {
		return p.WriteBool(ctx, *v)
	})
}

func stringField(name string, id int16, v *string) fieldWriter {
	if v == nil {
		return skip()
	}
	return field(name, id, thrift.STRING, func(ctx context.Context, p thrift.TProtocol) error {
		return p.WriteString(ctx, *v)
	})
}

func structField(name string, id int16, v thrift.TStruct, set bool) fieldWriter {
	if !set {
		return skip()
	}
	return field(name, id, thrift.STRUCT, func(ctx context.Context, p thrift.TProtocol) error {
		return v.Write(ctx, p)
	})
}

func listField(name string, id int16, elem thrift.TType, n int, set bool, each func(ctx context.Context, p thrift.TProtocol, i int) error) fieldWriter {
	if !set {
		return skip()
	}
	return field(name, id, thrift.LIST, func(ctx context.Context, p thrift.TProtocol) error {
		if err := p.WriteListBegin(ctx, elem, n); err != nil {
			return thrift.PrependError("error writing list begin: ", err)
		}
		for i := 0; i < n; i++ {
			if err := each(ctx, p, i); err != nil {
				return err
			}
		}
		if err := p.WriteListEnd(ctx); err != nil {
			return thrift.PrependError("error writing list end: ", err)
		}
		return nil
	})
}

func readList(ctx context.Context, p thrift.TProtocol, each func(ctx context.Context, p thrift.TProtocol) error) error {
	_, size, err := p.ReadListBegin(ctx)
	if err != nil {
		return thrift.PrependError("error reading list begin: ", err)
	}
	for i := 0; i < size; i++ {
		if err := each(ctx, p); err != nil {
			return err
		}
	}
	if err := p.ReadListEnd(ctx); err != nil {
		return thrift.PrependError("error reading list end: ", err)
	}
	return nil
}

func readI32Ptr(ctx context.Context, p thrift.TProtocol) (*int32, error) {
	v, err := p.ReadI32(ctx)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func readI64Ptr(ctx context.Context, p thrift.TProtocol) (*int64, error) {
	v, err := p.ReadI64(ctx)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func readBoolPtr(ctx context.Context, p thrift.TProtocol) (*bool, error) {
	v, err := p.ReadBool(ctx)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func readStringPtr(ctx context.Context, p thrift.TProtocol) (*string, error) {
	v, err := p.ReadString(ctx)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
