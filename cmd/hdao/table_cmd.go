package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewTableCmd returns the `table` command group.
//
// Usage examples:
//
//	hdao table create orders o meta
//	hdao table add-family orders audit
//	hdao table describe orders
func NewTableCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "manage tables and column families",
	}
	cmd.AddCommand(
		newTableCreateCmd(deps),
		newTableAddFamilyCmd(deps),
		newTableDropFamilyCmd(deps),
		newTableEnableCmd(deps),
		newTableDropCmd(deps),
		newTableDescribeCmd(deps),
		newTableExistsCmd(deps),
		newTableListCmd(deps),
	)
	return cmd
}

func newTableCreateCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "create TABLE FAMILY...",
		Short: "create a table with the given column families",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := deps.columnStore(cmd.Context())
			if err != nil {
				return err
			}
			if err := cs.CreateTable(cmd.Context(), args[0], args[1:]...); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", args[0])
			return err
		},
	}
}

func newTableAddFamilyCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "add-family TABLE FAMILY...",
		Short: "add column families to a table",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := deps.columnStore(cmd.Context())
			if err != nil {
				return err
			}
			return cs.AddColumnFamilies(cmd.Context(), args[0], args[1:]...)
		},
	}
}

func newTableDropFamilyCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "drop-family TABLE FAMILY",
		Short: "drop a column family and its cells",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := deps.columnStore(cmd.Context())
			if err != nil {
				return err
			}
			return cs.DropColumnFamily(cmd.Context(), args[0], args[1])
		},
	}
}

func newTableEnableCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "enable TABLE",
		Short: "bring a table left disabled by a failed schema change back online",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := deps.columnStore(cmd.Context())
			if err != nil {
				return err
			}
			return cs.EnableTable(cmd.Context(), args[0])
		},
	}
}

func newTableDropCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "drop TABLE",
		Short: "disable and delete a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := deps.columnStore(cmd.Context())
			if err != nil {
				return err
			}
			return cs.DropTable(cmd.Context(), args[0])
		},
	}
}

func newTableDescribeCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "describe TABLE",
		Short: "print the column families of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := deps.columnStore(cmd.Context())
			if err != nil {
				return err
			}
			desc, err := cs.Describe(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", desc.Name, strings.Join(desc.Families, ","))
			return err
		},
	}
}

func newTableExistsCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "exists TABLE",
		Short: "print whether a table exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := deps.columnStore(cmd.Context())
			if err != nil {
				return err
			}
			ok, err := cs.TableExists(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), ok)
			return err
		},
	}
}

func newTableListCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "list tables",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := deps.columnStore(cmd.Context())
			if err != nil {
				return err
			}
			names, err := cs.ListTables(cmd.Context())
			if err != nil {
				return err
			}
			for _, n := range names {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), n); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
