package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/challenai/hdao"
	"github.com/challenai/hdao/logger"
	"github.com/challenai/hdao/memstore"
)

const (
	backendThrift = "thrift"
	backendMem    = "mem"
)

// Deps carries the flags shared by every command and the stores they open.
type Deps struct {
	ConfigPath string
	Backend    string
	LogLevel   string

	Config hdao.Config
	Log    logger.Logger

	Columns *hdao.ColumnStore
	Files   *hdao.FileStore

	ownColumns bool
	ownFiles   bool
}

// columnStore opens the column store on first use.
func (d *Deps) columnStore(ctx context.Context) (*hdao.ColumnStore, error) {
	if d.Columns != nil {
		return d.Columns, nil
	}
	opts := []hdao.Option{hdao.WithLogger(d.Log)}
	var (
		cs  *hdao.ColumnStore
		err error
	)
	switch d.Backend {
	case backendMem:
		cs, err = hdao.NewColumnStore(ctx, memstore.NewColumnStore(), opts...)
	case "", backendThrift:
		cs, err = hdao.NewHBase(ctx, d.Config.HBase, opts...)
	default:
		err = fmt.Errorf("unknown backend %q", d.Backend)
	}
	if err != nil {
		return nil, err
	}
	d.Columns, d.ownColumns = cs, true
	return cs, nil
}

// fileStore opens the file store on first use.
func (d *Deps) fileStore(ctx context.Context) (*hdao.FileStore, error) {
	if d.Files != nil {
		return d.Files, nil
	}
	opts := []hdao.Option{hdao.WithLogger(d.Log), hdao.WithBufferSize(d.Config.HDFS.BufferSize)}
	var (
		fs  *hdao.FileStore
		err error
	)
	switch d.Backend {
	case backendMem:
		fs, err = hdao.NewFileStore(memstore.NewFileSystem(), opts...)
	case "", backendThrift:
		fs, err = hdao.NewHDFS(ctx, d.Config.HDFS, opts...)
	default:
		err = fmt.Errorf("unknown backend %q", d.Backend)
	}
	if err != nil {
		return nil, err
	}
	d.Files, d.ownFiles = fs, true
	return fs, nil
}

// Close releases the stores opened by the commands.
func (d *Deps) Close() error {
	var errs []error
	if d.ownColumns && d.Columns != nil {
		errs = append(errs, d.Columns.Close())
		d.Columns, d.ownColumns = nil, false
	}
	if d.ownFiles && d.Files != nil {
		errs = append(errs, d.Files.Close())
		d.Files, d.ownFiles = nil, false
	}
	return errors.Join(errs...)
}

// flagNames accepts underscores in multi-word flags, e.g. --log_level.
func flagNames(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func NewRootCmd(deps *Deps) *cobra.Command {
	if deps == nil {
		deps = &Deps{}
	}

	cmd := &cobra.Command{
		Use:           "hdao",
		Short:         "manage HBase tables and HDFS paths",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := hdao.DefaultConfig()
			if deps.ConfigPath != "" {
				var err error
				cfg, err = hdao.LoadConfig(deps.ConfigPath)
				if err != nil {
					return err
				}
			}
			if deps.LogLevel != "" {
				cfg.Log.Level = deps.LogLevel
			}
			deps.Config = cfg

			if deps.Log == nil {
				lg, err := cfg.Log.NewLogger()
				if err != nil {
					return err
				}
				deps.Log = lg
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&deps.ConfigPath, "config", "c", "", "path to the YAML configuration")
	cmd.PersistentFlags().StringVar(&deps.Backend, "backend", backendThrift, "store backend: thrift or mem")
	cmd.PersistentFlags().StringVar(&deps.LogLevel, "log-level", "", "minimum log level (info, warn, error, off)")

	cmd.AddCommand(
		NewTableCmd(deps),
		NewRowCmd(deps),
		NewFSCmd(deps),
	)
	cmd.SetGlobalNormalizationFunc(flagNames)
	return cmd
}
