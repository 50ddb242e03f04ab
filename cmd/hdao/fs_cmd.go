package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewFSCmd returns the `fs` command group.
//
// Usage examples:
//
//	hdao fs put ./orders.csv /data/orders.csv
//	hdao fs tree /data
//	hdao fs rm -r /data/tmp
func NewFSCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fs",
		Short: "manage files and directories in HDFS",
	}
	cmd.AddCommand(
		newFSPutCmd(deps),
		newFSGetCmd(deps),
		newFSMkdirCmd(deps),
		newFSRmCmd(deps),
		newFSMvCmd(deps),
		newFSLsCmd(deps),
		newFSLsrCmd(deps),
		newFSTreeCmd(deps),
	)
	return cmd
}

func newFSPutCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "put LOCAL REMOTE",
		Short: "upload a local file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := deps.fileStore(cmd.Context())
			if err != nil {
				return err
			}
			return fs.Upload(cmd.Context(), args[0], args[1])
		},
	}
}

func newFSGetCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "get REMOTE LOCAL",
		Short: "download a remote file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := deps.fileStore(cmd.Context())
			if err != nil {
				return err
			}
			return fs.Download(cmd.Context(), args[0], args[1])
		},
	}
}

func newFSMkdirCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir PATH",
		Short: "create a directory and its parents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := deps.fileStore(cmd.Context())
			if err != nil {
				return err
			}
			return fs.MakeDir(cmd.Context(), args[0])
		},
	}
}

func newFSRmCmd(deps *Deps) *cobra.Command {
	var recursive bool
	cmd := &cobra.Command{
		Use:   "rm PATH",
		Short: "delete a file or directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := deps.fileStore(cmd.Context())
			if err != nil {
				return err
			}
			return fs.Delete(cmd.Context(), args[0], recursive)
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "delete directories and their contents")
	return cmd
}

func newFSMvCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "mv OLD NEW",
		Short: "rename a file or directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := deps.fileStore(cmd.Context())
			if err != nil {
				return err
			}
			return fs.Rename(cmd.Context(), args[0], args[1])
		},
	}
}

func newFSLsCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "ls DIR",
		Short: "list a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := deps.fileStore(cmd.Context())
			if err != nil {
				return err
			}
			for e, err := range fs.List(cmd.Context(), args[0]) {
				if err != nil {
					return err
				}
				kind := "-"
				if e.IsDir() {
					kind = "d"
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\t%s\n", kind, e.Size, e.ModTime.Format("2006-01-02 15:04"), e.Path); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newFSLsrCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "lsr DIR",
		Short: "list every file below a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := deps.fileStore(cmd.Context())
			if err != nil {
				return err
			}
			for e, err := range fs.ListFiles(cmd.Context(), args[0]) {
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), e.Path); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newFSTreeCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "tree DIR",
		Short: "print a directory tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := deps.fileStore(cmd.Context())
			if err != nil {
				return err
			}
			for e, err := range fs.ListTree(cmd.Context(), args[0]) {
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), e.Display()); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
