package hdao

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/challenai/hdao/codec"
)

// TagName is the struct tag mapping a field to "family,qualifier".
const TagName = "hdao"

// schema maps struct fields to columns.
type schema struct {
	col2field map[string]int
	field2col map[int][2]string
}

var schemas sync.Map // reflect.Type -> *schema

// parse model fields once per type so that we don't need to read tags on every call.
func registerModel(t reflect.Type) (*schema, error) {
	if s, ok := schemas.Load(t); ok {
		return s.(*schema), nil
	}
	s := &schema{col2field: map[string]int{}, field2col: map[int][2]string{}}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag, ok := f.Tag.Lookup(TagName)
		if !ok || tag == "-" || !f.IsExported() {
			continue
		}
		parts := strings.Split(tag, ",")
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("hdao: field %s.%s: tag %q needs family and qualifier", t.Name(), f.Name, tag)
		}
		col := parts[0] + ":" + parts[1]
		if _, dup := s.col2field[col]; dup {
			return nil, fmt.Errorf("hdao: field %s.%s: column %s mapped twice", t.Name(), f.Name, col)
		}
		s.col2field[col] = i
		s.field2col[i] = [2]string{parts[0], parts[1]}
	}
	actual, _ := schemas.LoadOrStore(t, s)
	return actual.(*schema), nil
}

func structValue(model interface{}, needPtr bool) (reflect.Value, error) {
	if model == nil {
		return reflect.Value{}, fmt.Errorf("hdao: nil model")
	}
	v := reflect.ValueOf(model)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return reflect.Value{}, fmt.Errorf("hdao: nil model")
		}
		v = v.Elem()
	} else if needPtr {
		return reflect.Value{}, fmt.Errorf("hdao: model must be a pointer to a struct, got %T", model)
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("hdao: model must be a struct, got %T", model)
	}
	return v, nil
}

// Save writes every tagged field of model as one cell of row:
//
//	type Order struct {
//		Status string `hdao:"o,status"`
//		Total  int64  `hdao:"o,total"`
//	}
func (c *ColumnStore) Save(ctx context.Context, table string, row Bytes, model interface{}) error {
	v, err := structValue(model, false)
	if err != nil {
		return err
	}
	s, err := registerModel(v.Type())
	if err != nil {
		return err
	}
	cols := make([]Column, 0, len(s.field2col))
	for i := 0; i < v.NumField(); i++ {
		col, ok := s.field2col[i]
		if !ok {
			continue
		}
		b, err := codec.EncodeValue(c.opts.codec, v.Field(i))
		if err != nil {
			return fmt.Errorf("hdao: field %s: %w", v.Type().Field(i).Name, err)
		}
		cols = append(cols, Column{Family: Bytes(col[0]), Qualifier: Bytes(col[1]), Value: b})
	}
	return c.PutCells(ctx, table, row, cols...)
}

// Load reads row into the tagged fields of model, which must be a pointer to
// a struct. Columns without a matching field are ignored. It reports whether
// the row had any cells.
func (c *ColumnStore) Load(ctx context.Context, table string, row Bytes, model interface{}) (bool, error) {
	v, err := structValue(model, true)
	if err != nil {
		return false, err
	}
	s, err := registerModel(v.Type())
	if err != nil {
		return false, err
	}
	found := false
	for cell, err := range c.GetRow(ctx, table, row) {
		if err != nil {
			return false, err
		}
		found = true
		idx, ok := s.col2field[cell.Column()]
		if !ok {
			continue
		}
		if err := codec.DecodeValue(c.opts.codec, cell.Value, v.Field(idx)); err != nil {
			return found, fmt.Errorf("hdao: column %s: %w", cell.Column(), err)
		}
	}
	return found, nil
}
