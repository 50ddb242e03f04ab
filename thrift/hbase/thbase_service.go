package hbase

import (
	"context"

	"github.com/apache/thrift/lib/go/thrift"
)

// Exceptions carries the declared exceptions of a THBaseService call.
type Exceptions struct {
	Io *TIOError
	Ia *TIllegalArgument
}

// Err returns the raised exception, if any.
func (e *Exceptions) Err() error {
	switch {
	case e.Io != nil:
		return e.Io
	case e.Ia != nil:
		return e.Ia
	}
	return nil
}

func (e *Exceptions) exceptions() *Exceptions { return e }

func (e *Exceptions) readException(ctx context.Context, p thrift.TProtocol, id int16, t thrift.TType) (bool, error) {
	if t != thrift.STRUCT {
		return false, nil
	}
	switch id {
	case 1:
		e.Io = &TIOError{}
		return true, e.Io.Read(ctx, p)
	case 2:
		e.Ia = &TIllegalArgument{}
		return true, e.Ia.Read(ctx, p)
	}
	return false, nil
}

func (e *Exceptions) writers() []fieldWriter {
	return []fieldWriter{
		structField("io", 1, e.Io, e.Io != nil),
		structField("ia", 2, e.Ia, e.Ia != nil),
	}
}

type result interface {
	thrift.TStruct
	exceptions() *Exceptions
}

// VoidResult is the result of calls returning nothing.
type VoidResult struct {
	Exceptions
}

func (r *VoidResult) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "VoidResult", r.readException)
}

func (r *VoidResult) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "VoidResult", r.writers()...)
}

// BoolResult is the result of predicate calls.
type BoolResult struct {
	Success *bool
	Exceptions
}

func (r *BoolResult) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "BoolResult", func(ctx context.Context, p thrift.TProtocol, id int16, t thrift.TType) (bool, error) {
		if id == 0 && t == thrift.BOOL {
			var err error
			r.Success, err = readBoolPtr(ctx, p)
			return true, err
		}
		return r.readException(ctx, p, id, t)
	})
}

func (r *BoolResult) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "BoolResult", append([]fieldWriter{boolField("success", 0, r.Success)}, r.writers()...)...)
}

// I32Result is the result of openScanner.
type I32Result struct {
	Success *int32
	Exceptions
}

func (r *I32Result) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "I32Result", func(ctx context.Context, p thrift.TProtocol, id int16, t thrift.TType) (bool, error) {
		if id == 0 && t == thrift.I32 {
			var err error
			r.Success, err = readI32Ptr(ctx, p)
			return true, err
		}
		return r.readException(ctx, p, id, t)
	})
}

func (r *I32Result) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "I32Result", append([]fieldWriter{i32Field("success", 0, r.Success)}, r.writers()...)...)
}

// TResultResult is the result of get and append.
type TResultResult struct {
	Success *TResult_
	Exceptions
}

func (r *TResultResult) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "TResultResult", func(ctx context.Context, p thrift.TProtocol, id int16, t thrift.TType) (bool, error) {
		if id == 0 && t == thrift.STRUCT {
			r.Success = &TResult_{}
			return true, r.Success.Read(ctx, p)
		}
		return r.readException(ctx, p, id, t)
	})
}

func (r *TResultResult) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "TResultResult", append([]fieldWriter{structField("success", 0, r.Success, r.Success != nil)}, r.writers()...)...)
}

// TResultsResult is the result of getScannerRows.
type TResultsResult struct {
	Success []*TResult_
	Exceptions
}

func (r *TResultsResult) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "TResultsResult", func(ctx context.Context, p thrift.TProtocol, id int16, t thrift.TType) (bool, error) {
		if id == 0 && t == thrift.LIST {
			var err error
			r.Success, err = readResults(ctx, p)
			return true, err
		}
		return r.readException(ctx, p, id, t)
	})
}

func (r *TResultsResult) Write(ctx context.Context, p thrift.TProtocol) error {
	success := listField("success", 0, thrift.STRUCT, len(r.Success), r.Success != nil, func(ctx context.Context, p thrift.TProtocol, i int) error {
		return r.Success[i].Write(ctx, p)
	})
	return writeStruct(ctx, p, "TResultsResult", append([]fieldWriter{success}, r.writers()...)...)
}

// TDeletesResult is the result of deleteMultiple: the deletes that failed.
type TDeletesResult struct {
	Success []*TDelete
	Exceptions
}

func (r *TDeletesResult) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "TDeletesResult", func(ctx context.Context, p thrift.TProtocol, id int16, t thrift.TType) (bool, error) {
		if id == 0 && t == thrift.LIST {
			var err error
			r.Success, err = readDeletes(ctx, p)
			return true, err
		}
		return r.readException(ctx, p, id, t)
	})
}

func (r *TDeletesResult) Write(ctx context.Context, p thrift.TProtocol) error {
	success := listField("success", 0, thrift.STRUCT, len(r.Success), r.Success != nil, func(ctx context.Context, p thrift.TProtocol, i int) error {
		return r.Success[i].Write(ctx, p)
	})
	return writeStruct(ctx, p, "TDeletesResult", append([]fieldWriter{success}, r.writers()...)...)
}

// TTableDescriptorResult is the result of getTableDescriptor.
type TTableDescriptorResult struct {
	Success *TTableDescriptor
	Exceptions
}

func (r *TTableDescriptorResult) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "TTableDescriptorResult", func(ctx context.Context, p thrift.TProtocol, id int16, t thrift.TType) (bool, error) {
		if id == 0 && t == thrift.STRUCT {
			r.Success = &TTableDescriptor{}
			return true, r.Success.Read(ctx, p)
		}
		return r.readException(ctx, p, id, t)
	})
}

func (r *TTableDescriptorResult) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "TTableDescriptorResult", append([]fieldWriter{structField("success", 0, r.Success, r.Success != nil)}, r.writers()...)...)
}

// TTableNamesResult is the result of getTableNamesByPattern.
type TTableNamesResult struct {
	Success []*TTableName
	Exceptions
}

func (r *TTableNamesResult) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "TTableNamesResult", func(ctx context.Context, p thrift.TProtocol, id int16, t thrift.TType) (bool, error) {
		if id == 0 && t == thrift.LIST {
			var err error
			r.Success, err = readTableNames(ctx, p)
			return true, err
		}
		return r.readException(ctx, p, id, t)
	})
}

func (r *TTableNamesResult) Write(ctx context.Context, p thrift.TProtocol) error {
	success := listField("success", 0, thrift.STRUCT, len(r.Success), r.Success != nil, func(ctx context.Context, p thrift.TProtocol, i int) error {
		return r.Success[i].Write(ctx, p)
	})
	return writeStruct(ctx, p, "TTableNamesResult", append([]fieldWriter{success}, r.writers()...)...)
}

// TableArgs carries the target table and one row operation. Op is one of
// *TGet, *TPut, *TDelete, *TAppend or *TScan.
type TableArgs struct {
	Table []byte
	Op    thrift.TStruct
}

func (a *TableArgs) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "TableArgs", func(ctx context.Context, p thrift.TProtocol, id int16, t thrift.TType) (bool, error) {
		switch {
		case id == 1 && t == thrift.STRING:
			var err error
			a.Table, err = p.ReadBinary(ctx)
			return true, err
		case id == 2 && t == thrift.STRUCT && a.Op != nil:
			return true, a.Op.Read(ctx, p)
		}
		return false, nil
	})
}

func (a *TableArgs) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "TableArgs",
		binaryField("table", 1, a.Table, true),
		structField("op", 2, a.Op, a.Op != nil),
	)
}

// DeleteMultipleArgs are the arguments of deleteMultiple.
type DeleteMultipleArgs struct {
	Table    []byte
	Tdeletes []*TDelete
}

func (a *DeleteMultipleArgs) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "deleteMultiple_args", func(ctx context.Context, p thrift.TProtocol, id int16, t thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && t == thrift.STRING:
			a.Table, err = p.ReadBinary(ctx)
		case id == 2 && t == thrift.LIST:
			a.Tdeletes, err = readDeletes(ctx, p)
		default:
			return false, nil
		}
		return true, err
	})
}

func (a *DeleteMultipleArgs) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "deleteMultiple_args",
		binaryField("table", 1, a.Table, true),
		deletesField("tdeletes", 2, a.Tdeletes),
	)
}

// ScannerArgs are the arguments of getScannerRows and closeScanner.
type ScannerArgs struct {
	ScannerId int32
	NumRows   *int32
}

func (a *ScannerArgs) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "scanner_args", func(ctx context.Context, p thrift.TProtocol, id int16, t thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && t == thrift.I32:
			a.ScannerId, err = p.ReadI32(ctx)
		case id == 2 && t == thrift.I32:
			a.NumRows, err = readI32Ptr(ctx, p)
		default:
			return false, nil
		}
		return true, err
	})
}

func (a *ScannerArgs) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "scanner_args",
		i32Field("scannerId", 1, &a.ScannerId),
		i32Field("numRows", 2, a.NumRows),
	)
}

// TableNameArgs are the arguments of every admin call addressing a table,
// optionally followed by a family name.
type TableNameArgs struct {
	TableName *TTableName
	Column    []byte
}

func (a *TableNameArgs) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "table_name_args", func(ctx context.Context, p thrift.TProtocol, id int16, t thrift.TType) (bool, error) {
		switch {
		case id == 1 && t == thrift.STRUCT:
			a.TableName = &TTableName{}
			return true, a.TableName.Read(ctx, p)
		case id == 2 && t == thrift.STRING:
			var err error
			a.Column, err = p.ReadBinary(ctx)
			return true, err
		}
		return false, nil
	})
}

func (a *TableNameArgs) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "table_name_args",
		structField("tableName", 1, a.TableName, a.TableName != nil),
		binaryField("column", 2, a.Column, false),
	)
}

// FamilyArgs are the arguments of addColumnFamily.
type FamilyArgs struct {
	TableName *TTableName
	Column    *TColumnFamilyDescriptor
}

func (a *FamilyArgs) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "family_args", func(ctx context.Context, p thrift.TProtocol, id int16, t thrift.TType) (bool, error) {
		switch {
		case id == 1 && t == thrift.STRUCT:
			a.TableName = &TTableName{}
			return true, a.TableName.Read(ctx, p)
		case id == 2 && t == thrift.STRUCT:
			a.Column = &TColumnFamilyDescriptor{}
			return true, a.Column.Read(ctx, p)
		}
		return false, nil
	})
}

func (a *FamilyArgs) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "family_args",
		structField("tableName", 1, a.TableName, a.TableName != nil),
		structField("column", 2, a.Column, a.Column != nil),
	)
}

// DescriptorArgs are the arguments of createTable.
type DescriptorArgs struct {
	Desc      *TTableDescriptor
	SplitKeys [][]byte
}

func (a *DescriptorArgs) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "descriptor_args", func(ctx context.Context, p thrift.TProtocol, id int16, t thrift.TType) (bool, error) {
		switch {
		case id == 1 && t == thrift.STRUCT:
			a.Desc = &TTableDescriptor{}
			return true, a.Desc.Read(ctx, p)
		case id == 2 && t == thrift.LIST:
			a.SplitKeys = nil
			return true, readList(ctx, p, func(ctx context.Context, p thrift.TProtocol) error {
				k, err := p.ReadBinary(ctx)
				if err != nil {
					return err
				}
				a.SplitKeys = append(a.SplitKeys, k)
				return nil
			})
		}
		return false, nil
	})
}

func (a *DescriptorArgs) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "descriptor_args",
		structField("desc", 1, a.Desc, a.Desc != nil),
		listField("splitKeys", 2, thrift.STRING, len(a.SplitKeys), a.SplitKeys != nil, func(ctx context.Context, p thrift.TProtocol, i int) error {
			return p.WriteBinary(ctx, a.SplitKeys[i])
		}),
	)
}

// PatternArgs are the arguments of getTableNamesByPattern.
type PatternArgs struct {
	Regex            *string
	IncludeSysTables bool
}

func (a *PatternArgs) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "pattern_args", func(ctx context.Context, p thrift.TProtocol, id int16, t thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && t == thrift.STRING:
			a.Regex, err = readStringPtr(ctx, p)
		case id == 2 && t == thrift.BOOL:
			a.IncludeSysTables, err = p.ReadBool(ctx)
		default:
			return false, nil
		}
		return true, err
	})
}

func (a *PatternArgs) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "pattern_args",
		stringField("regex", 1, a.Regex),
		boolField("includeSysTables", 2, &a.IncludeSysTables),
	)
}

// THBaseServiceClient issues THBaseService calls over a thrift.TClient. It
// is not safe for concurrent use when the underlying transport is not.
type THBaseServiceClient struct {
	c thrift.TClient
}

func NewTHBaseServiceClient(c thrift.TClient) *THBaseServiceClient {
	return &THBaseServiceClient{c: c}
}

func (s *THBaseServiceClient) call(ctx context.Context, method string, args thrift.TStruct, res result) error {
	if _, err := s.c.Call(ctx, method, args, res); err != nil {
		return err
	}
	return res.exceptions().Err()
}

func (s *THBaseServiceClient) Get(ctx context.Context, table []byte, tget *TGet) (*TResult_, error) {
	var res TResultResult
	if err := s.call(ctx, "get", &TableArgs{Table: table, Op: tget}, &res); err != nil {
		return nil, err
	}
	if res.Success == nil {
		return nil, thrift.NewTApplicationException(thrift.MISSING_RESULT, "get failed: unknown result")
	}
	return res.Success, nil
}

func (s *THBaseServiceClient) Put(ctx context.Context, table []byte, tput *TPut) error {
	return s.call(ctx, "put", &TableArgs{Table: table, Op: tput}, &VoidResult{})
}

func (s *THBaseServiceClient) DeleteSingle(ctx context.Context, table []byte, tdelete *TDelete) error {
	return s.call(ctx, "deleteSingle", &TableArgs{Table: table, Op: tdelete}, &VoidResult{})
}

// DeleteMultiple returns the deletes the server did not apply.
func (s *THBaseServiceClient) DeleteMultiple(ctx context.Context, table []byte, tdeletes []*TDelete) ([]*TDelete, error) {
	var res TDeletesResult
	if err := s.call(ctx, "deleteMultiple", &DeleteMultipleArgs{Table: table, Tdeletes: tdeletes}, &res); err != nil {
		return nil, err
	}
	return res.Success, nil
}

func (s *THBaseServiceClient) Append(ctx context.Context, table []byte, tappend *TAppend) (*TResult_, error) {
	var res TResultResult
	if err := s.call(ctx, "append", &TableArgs{Table: table, Op: tappend}, &res); err != nil {
		return nil, err
	}
	return res.Success, nil
}

func (s *THBaseServiceClient) OpenScanner(ctx context.Context, table []byte, tscan *TScan) (int32, error) {
	var res I32Result
	if err := s.call(ctx, "openScanner", &TableArgs{Table: table, Op: tscan}, &res); err != nil {
		return 0, err
	}
	if res.Success == nil {
		return 0, thrift.NewTApplicationException(thrift.MISSING_RESULT, "openScanner failed: unknown result")
	}
	return *res.Success, nil
}

func (s *THBaseServiceClient) GetScannerRows(ctx context.Context, scannerId int32, numRows int32) ([]*TResult_, error) {
	var res TResultsResult
	if err := s.call(ctx, "getScannerRows", &ScannerArgs{ScannerId: scannerId, NumRows: &numRows}, &res); err != nil {
		return nil, err
	}
	return res.Success, nil
}

func (s *THBaseServiceClient) CloseScanner(ctx context.Context, scannerId int32) error {
	return s.call(ctx, "closeScanner", &ScannerArgs{ScannerId: scannerId}, &VoidResult{})
}

func (s *THBaseServiceClient) boolCall(ctx context.Context, method string, args thrift.TStruct) (bool, error) {
	var res BoolResult
	if err := s.call(ctx, method, args, &res); err != nil {
		return false, err
	}
	if res.Success == nil {
		return false, thrift.NewTApplicationException(thrift.MISSING_RESULT, method+" failed: unknown result")
	}
	return *res.Success, nil
}

func (s *THBaseServiceClient) TableExists(ctx context.Context, tableName *TTableName) (bool, error) {
	return s.boolCall(ctx, "tableExists", &TableNameArgs{TableName: tableName})
}

func (s *THBaseServiceClient) IsTableEnabled(ctx context.Context, tableName *TTableName) (bool, error) {
	return s.boolCall(ctx, "isTableEnabled", &TableNameArgs{TableName: tableName})
}

func (s *THBaseServiceClient) GetTableDescriptor(ctx context.Context, tableName *TTableName) (*TTableDescriptor, error) {
	var res TTableDescriptorResult
	if err := s.call(ctx, "getTableDescriptor", &TableNameArgs{TableName: tableName}, &res); err != nil {
		return nil, err
	}
	if res.Success == nil {
		return nil, thrift.NewTApplicationException(thrift.MISSING_RESULT, "getTableDescriptor failed: unknown result")
	}
	return res.Success, nil
}

func (s *THBaseServiceClient) GetTableNamesByPattern(ctx context.Context, regex *string, includeSysTables bool) ([]*TTableName, error) {
	var res TTableNamesResult
	if err := s.call(ctx, "getTableNamesByPattern", &PatternArgs{Regex: regex, IncludeSysTables: includeSysTables}, &res); err != nil {
		return nil, err
	}
	return res.Success, nil
}

func (s *THBaseServiceClient) CreateTable(ctx context.Context, desc *TTableDescriptor, splitKeys [][]byte) error {
	return s.call(ctx, "createTable", &DescriptorArgs{Desc: desc, SplitKeys: splitKeys}, &VoidResult{})
}

// AddColumnFamily adds one family to a table. The descriptors of the other
// families are not sent, so their settings stay as they are.
func (s *THBaseServiceClient) AddColumnFamily(ctx context.Context, tableName *TTableName, column *TColumnFamilyDescriptor) error {
	return s.call(ctx, "addColumnFamily", &FamilyArgs{TableName: tableName, Column: column}, &VoidResult{})
}

func (s *THBaseServiceClient) DeleteTable(ctx context.Context, tableName *TTableName) error {
	return s.call(ctx, "deleteTable", &TableNameArgs{TableName: tableName}, &VoidResult{})
}

func (s *THBaseServiceClient) EnableTable(ctx context.Context, tableName *TTableName) error {
	return s.call(ctx, "enableTable", &TableNameArgs{TableName: tableName}, &VoidResult{})
}

func (s *THBaseServiceClient) DisableTable(ctx context.Context, tableName *TTableName) error {
	return s.call(ctx, "disableTable", &TableNameArgs{TableName: tableName}, &VoidResult{})
}

func (s *THBaseServiceClient) DeleteColumnFamily(ctx context.Context, tableName *TTableName, column []byte) error {
	return s.call(ctx, "deleteColumnFamily", &TableNameArgs{TableName: tableName, Column: column}, &VoidResult{})
}
