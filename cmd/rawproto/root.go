package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/anirudhraja/rawproto"
)

// Common flags
const (
	flagConfig        = "config"
	flagLogLevel      = "log.level"
	flagBase64        = "base64"
	flagOutput        = "output"
	flagProto         = "proto"
	flagProtoPath     = "proto-path"
	flagDescriptorSet = "descriptor-set"
	flagMessage       = "message"
	flagMaxDepth      = "max-depth"
	flagShortest      = "shortest"
	flagDecompress    = "decompress"
	flagCompress      = "compress"
	flagFraming       = "framing"
)

// command carries the state shared by all subcommands.
type command struct {
	cfg    fileConfig
	logger log.Logger
}

type runFunction func(c *command, cmd *cobra.Command, args []string) error

func mkRunE(c *command, f runFunction) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return f(c, cmd, args)
	}
}

// newRootCmd creates the base command when called without any subcommands
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rawproto",
		Short: "rawproto inspects protobuf payloads without a schema.",
		Long: `rawproto decodes protobuf wire data without knowing its message type,
reporting every plausible reading of each field. Field names can be supplied
from .proto files or compiled descriptor sets.`,
		SilenceUsage: true,
	}

	c := &command{logger: log.NewNopLogger()}
	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return c.setup(cmd)
	}

	addGlobalFlags(cmd.PersistentFlags())
	cmd.AddCommand(
		newDecodeCmd(c),
		newEncodeCmd(c),
		newVarintCmd(c),
	)
	return cmd
}

func addGlobalFlags(f *pflag.FlagSet) {
	f.String(flagConfig, "", "YAML or TOML (.toml) config file")
	f.String(flagLogLevel, "info", "log level: debug, info, warn, error")
}

func addSchemaFlags(f *pflag.FlagSet) {
	f.StringSlice(flagProtoPath, nil, "directories used to resolve .proto files and imports")
	f.StringSlice(flagProto, nil, ".proto files providing field names")
	f.StringSlice(flagDescriptorSet, nil, "serialized FileDescriptorSet files providing field names")
	f.StringP(flagMessage, "m", "", "message type of the payload, used for field names")
}

func (c *command) setup(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString(flagConfig)
	cfg, err := loadConfig(path)
	if err != nil {
		return err
	}
	c.cfg = cfg

	lvl := cfg.LogLevel
	if f := cmd.Flags().Lookup(flagLogLevel); f != nil && (f.Changed || lvl == "") {
		lvl = f.Value.String()
	}
	c.logger = newLogger(cmd.ErrOrStderr(), lvl)
	return nil
}

func newLogger(w io.Writer, lvl string) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = level.NewFilter(logger, levelOption(lvl))
	return log.With(logger, "ts", log.DefaultTimestampUTC)
}

// levelOption maps a level name to its filter; unknown names mean info.
func levelOption(lvl string) level.Option {
	switch strings.ToLower(lvl) {
	case "debug":
		return level.AllowDebug()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}

// newInspector builds an Inspector from the config file and the schema
// flags, loading every requested .proto file and descriptor set.
func (c *command) newInspector(cmd *cobra.Command) (*rawproto.Inspector, error) {
	cfg := c.cfg.wireConfig()
	if f := cmd.Flags().Lookup(flagMaxDepth); f != nil && f.Changed {
		cfg.MaxDepth, _ = cmd.Flags().GetInt(flagMaxDepth)
	}
	if f := cmd.Flags().Lookup(flagShortest); f != nil && f.Changed {
		cfg.ShortestVarints, _ = cmd.Flags().GetBool(flagShortest)
	}

	protoPaths := c.stringsFlag(cmd, flagProtoPath, c.cfg.ProtoPaths)
	in := rawproto.New(cfg, protoPaths...)

	for _, p := range c.stringsFlag(cmd, flagProto, c.cfg.Protos) {
		if err := in.LoadProtoFile(p); err != nil {
			return nil, fmt.Errorf("load %s: %w", p, err)
		}
		level.Debug(c.logger).Log("msg", "loaded proto file", "file", p)
	}
	for _, p := range c.stringsFlag(cmd, flagDescriptorSet, c.cfg.DescriptorSets) {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		if err := in.LoadDescriptorSet(data); err != nil {
			return nil, fmt.Errorf("load %s: %w", p, err)
		}
		level.Debug(c.logger).Log("msg", "loaded descriptor set", "file", p)
	}
	return in, nil
}

// stringFlag returns the flag value when set on the command line, else the
// config value, else the flag default.
func (c *command) stringFlag(cmd *cobra.Command, name, fromConfig string) string {
	f := cmd.Flags().Lookup(name)
	if f == nil {
		return fromConfig
	}
	if f.Changed || fromConfig == "" {
		return f.Value.String()
	}
	return fromConfig
}

func (c *command) stringsFlag(cmd *cobra.Command, name string, fromConfig []string) []string {
	f := cmd.Flags().Lookup(name)
	if f == nil || (!f.Changed && len(fromConfig) > 0) {
		return fromConfig
	}
	v, _ := cmd.Flags().GetStringSlice(name)
	return v
}
