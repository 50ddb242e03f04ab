package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/challenai/hdao"
	"github.com/challenai/hdao/codec"
)

var defaultCodec = &codec.DefaultCodec{}

// parseColumn splits "family:qualifier".
func parseColumn(s string) (family, qualifier hdao.Bytes, err error) {
	f, q, ok := strings.Cut(s, ":")
	if !ok || f == "" {
		return nil, nil, fmt.Errorf("column %q must be FAMILY:QUALIFIER", s)
	}
	return hdao.Bytes(f), hdao.Bytes(q), nil
}

func printCell(w io.Writer, c hdao.Cell, typ string) error {
	v, err := codec.Decode(defaultCodec, typ, c.Value)
	if err != nil {
		v = fmt.Sprintf("%q", string(c.Value))
	}
	_, err = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", c.Row, c.Column(), c.Timestamp, v)
	return err
}

// NewRowCmd returns the `row` command group.
//
// Usage examples:
//
//	hdao row put orders order-1 o:status NEW
//	hdao row append orders order-1 o:status ->PAID
//	hdao row scan orders --prefix order-
func NewRowCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "row",
		Short: "read and write rows",
	}
	cmd.AddCommand(
		newRowPutCmd(deps),
		newRowAppendCmd(deps),
		newRowGetCmd(deps),
		newRowDeleteCmd(deps),
		newRowScanCmd(deps),
	)
	return cmd
}

func newRowPutCmd(deps *Deps) *cobra.Command {
	var typ string
	cmd := &cobra.Command{
		Use:   "put TABLE ROW FAMILY:QUALIFIER VALUE",
		Short: "write one cell",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			fam, qual, err := parseColumn(args[2])
			if err != nil {
				return err
			}
			val, err := codec.Encode(defaultCodec, typ, args[3])
			if err != nil {
				return err
			}
			cs, err := deps.columnStore(cmd.Context())
			if err != nil {
				return err
			}
			return cs.Put(cmd.Context(), args[0], hdao.Bytes(args[1]), fam, qual, val)
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", "string", "value type: string, int, uint, float, bool")
	return cmd
}

func newRowAppendCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "append TABLE ROW FAMILY:QUALIFIER VALUE",
		Short: "append bytes to a cell on the server",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			fam, qual, err := parseColumn(args[2])
			if err != nil {
				return err
			}
			cs, err := deps.columnStore(cmd.Context())
			if err != nil {
				return err
			}
			cell, err := cs.Append(cmd.Context(), args[0], hdao.Bytes(args[1]), fam, qual, hdao.Bytes(args[3]))
			if err != nil {
				return err
			}
			return printCell(cmd.OutOrStdout(), cell, "string")
		},
	}
}

func newRowGetCmd(deps *Deps) *cobra.Command {
	var typ string
	cmd := &cobra.Command{
		Use:   "get TABLE ROW",
		Short: "print the cells of a row",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := deps.columnStore(cmd.Context())
			if err != nil {
				return err
			}
			for cell, err := range cs.GetRow(cmd.Context(), args[0], hdao.Bytes(args[1])) {
				if err != nil {
					return err
				}
				if err := printCell(cmd.OutOrStdout(), cell, typ); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", "string", "value type: string, bytes, int, uint, float, bool")
	return cmd
}

func newRowDeleteCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "delete TABLE ROW...",
		Short: "delete rows; several rows follow hbase.batchPolicy",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := deps.columnStore(cmd.Context())
			if err != nil {
				return err
			}
			if len(args) == 2 {
				return cs.DeleteRow(cmd.Context(), args[0], hdao.Bytes(args[1]))
			}
			rows := make([]hdao.Bytes, 0, len(args)-1)
			for _, r := range args[1:] {
				rows = append(rows, hdao.Bytes(r))
			}
			return cs.DeleteRows(cmd.Context(), args[0], rows...)
		},
	}
}

func newRowScanCmd(deps *Deps) *cobra.Command {
	var (
		start, stop, prefix, typ string
		families                 []string
		batch                    int32
		limit                    int
	)
	cmd := &cobra.Command{
		Use:   "scan TABLE",
		Short: "print every cell of a table in row key order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []hdao.ScanOption
			if prefix != "" {
				opts = append(opts, hdao.WithPrefix(hdao.Bytes(prefix)))
			}
			if start != "" {
				opts = append(opts, hdao.WithStartRow(hdao.Bytes(start)))
			}
			if stop != "" {
				opts = append(opts, hdao.WithStopRow(hdao.Bytes(stop)))
			}
			if len(families) > 0 {
				opts = append(opts, hdao.WithFamilies(families...))
			}
			opts = append(opts, hdao.WithBatchSize(batch))

			cs, err := deps.columnStore(cmd.Context())
			if err != nil {
				return err
			}
			var rows int
			var last hdao.Bytes
			for cell, err := range cs.Scan(cmd.Context(), args[0], opts...) {
				if err != nil {
					return err
				}
				if last == nil || !last.Equal(cell.Row) {
					if limit > 0 && rows == limit {
						break
					}
					rows++
					last = cell.Row
				}
				if err := printCell(cmd.OutOrStdout(), cell, typ); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "first row, inclusive")
	cmd.Flags().StringVar(&stop, "stop", "", "last row, exclusive")
	cmd.Flags().StringVar(&prefix, "prefix", "", "only rows starting with prefix")
	cmd.Flags().StringSliceVarP(&families, "family", "f", nil, "only these column families")
	cmd.Flags().Int32Var(&batch, "batch", 0, "rows fetched per round trip")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "stop after this many rows")
	cmd.Flags().StringVarP(&typ, "type", "t", "string", "value type: string, bytes, int, uint, float, bool")
	return cmd
}
