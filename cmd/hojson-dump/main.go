// Command hojson-dump reads a JSON file in arbitrary-sized chunks and
// prints the event stream that hojson.Context.Parse produces, growing
// its buffer on demand. It exists to exercise the suspend/resume
// contract against real files; it is not part of the hojson core.
//
// Every call into the hojson.Context is made from a single goroutine;
// a Context has no locking and must not be used concurrently.
package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/luphi/hojson"
)

// driverConfig holds defaults an operator can pin in a YAML file via
// --config, so repeated invocations against similar inputs don't need
// to repeat flags every time.
type driverConfig struct {
	BufferSize   int    `yaml:"buffer_size"`
	MinChunkSize int    `yaml:"min_chunk_size"`
	MaxChunkSize int    `yaml:"max_chunk_size"`
	LogLevel     string `yaml:"log_level"`
}

func defaultConfig() driverConfig {
	return driverConfig{
		BufferSize:   4096,
		MinChunkSize: 1,
		MaxChunkSize: 4096,
		LogLevel:     "info",
	}
}

func loadConfigFile(path string) (driverConfig, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "reading config file")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(err, "parsing config file")
	}
	return cfg, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		bufferSize int
		minBuffer  int
		maxBuffer  int
		minChunk   int
		maxChunk   int
		dryRun     bool
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "hojson-dump <file>",
		Short: "Parse a JSON file with hojson and print its event stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigFile(configPath)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("buffer-size") {
				bufferSize = cfg.BufferSize
			}
			if !cmd.Flags().Changed("min-chunk") {
				minChunk = cfg.MinChunkSize
			}
			if !cmd.Flags().Changed("max-chunk") {
				maxChunk = cfg.MaxChunkSize
			}
			if !cmd.Flags().Changed("log-level") {
				logLevel = cfg.LogLevel
			}

			logger, err := newLogger(logLevel)
			if err != nil {
				return errors.Wrap(err, "configuring logger")
			}
			defer logger.Sync() //nolint:errcheck

			opts := runOptions{
				path:       args[0],
				bufferSize: bufferSize,
				minBuffer:  minBuffer,
				maxBuffer:  maxBuffer,
				minChunk:   minChunk,
				maxChunk:   maxChunk,
				dryRun:     dryRun,
			}
			return run(logger, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "optional YAML file of driver defaults")
	flags.IntVar(&bufferSize, "buffer-size", 4096, "initial parser buffer size, in bytes")
	flags.IntVar(&minBuffer, "min-buffer", 64, "smallest buffer the driver will allocate")
	flags.IntVar(&maxBuffer, "max-buffer", 1<<26, "largest buffer the driver will grow to before giving up")
	flags.IntVar(&minChunk, "min-chunk", 1, "smallest read chunk size, in bytes")
	flags.IntVar(&maxChunk, "max-chunk", 4096, "largest read chunk size, in bytes")
	flags.BoolVar(&dryRun, "dry-run", false, "parse without printing events (smoke test)")
	flags.StringVar(&logLevel, "log-level", "info", "zap log level (debug, info, warn, error)")

	return cmd
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = ""
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	return cfg.Build()
}

type runOptions struct {
	path                       string
	bufferSize                 int
	minBuffer, maxBuffer       int
	minChunk, maxChunk         int
	dryRun                     bool
}

// run drives one Context to EventEndOfDocument (or a non-recoverable
// error) against the file at opts.path, reading it in randomized
// chunk sizes so the exercised code path isn't just "one big slurp."
func run(logger *zap.Logger, opts runOptions) error {
	f, err := os.Open(opts.path)
	if err != nil {
		return errors.Wrap(err, "opening input file")
	}
	defer f.Close()

	bufferSize := opts.bufferSize
	if bufferSize < opts.minBuffer {
		bufferSize = opts.minBuffer
	}
	buffer := make([]byte, bufferSize)

	var ctx hojson.Context
	if err := ctx.Initialize(buffer); err != nil {
		return errors.Wrap(err, "initializing parser")
	}

	rng := rand.New(rand.NewSource(1))
	start := time.Now()
	bytesRead := 0
	growths := 0
	maxDepth := 0

	var chunk []byte
	readNextChunk := func() error {
		size := opts.minChunk
		if opts.maxChunk > opts.minChunk {
			size += rng.Intn(opts.maxChunk - opts.minChunk + 1)
		}
		chunk = make([]byte, size)
		n, err := f.Read(chunk)
		if n == 0 && err != nil {
			if err == io.EOF {
				return io.EOF
			}
			return errors.Wrap(err, "reading input file")
		}
		chunk = chunk[:n]
		bytesRead += n
		return nil
	}

	if err := readNextChunk(); err != nil && err != io.EOF {
		return err
	}

	for {
		ev := ctx.Parse(&chunk)

		if ev != hojson.EventNone {
			logEvent(logger, &ctx, ev, opts.dryRun)
		}
		if ctx.Depth > maxDepth {
			maxDepth = ctx.Depth
		}

		switch {
		case ev == hojson.EventInsufficientMemory:
			newSize := len(buffer) * 2
			if newSize > opts.maxBuffer {
				return errors.Errorf("buffer would exceed max-buffer (%d) after growth", opts.maxBuffer)
			}
			buffer = make([]byte, newSize)
			if err := ctx.Reallocate(buffer); err != nil {
				return errors.Wrap(err, "reallocating parser buffer")
			}
			growths++
		case ev == hojson.EventUnexpectedEOF:
			if err := readNextChunk(); err != nil {
				if err == io.EOF {
					return errors.New("unexpected end of file: document is incomplete")
				}
				return err
			}
		case ev == hojson.EventEndOfDocument:
			logger.Info("parse complete",
				zap.Duration("elapsed", time.Since(start)),
				zap.Int("bytes_read", bytesRead),
				zap.Int("max_depth", maxDepth),
				zap.Int("buffer_growths", growths),
			)
			return nil
		case ev.IsError():
			logger.Error("parse failed",
				zap.Stringer("event", ev),
				zap.Int("line", ctx.Line),
				zap.Int("column", ctx.Column),
			)
			return errors.Errorf("parse failed at line %d, column %d: %s", ctx.Line, ctx.Column, ev)
		}
	}
}

func logEvent(logger *zap.Logger, ctx *hojson.Context, ev hojson.Event, dryRun bool) {
	if dryRun {
		return
	}
	fields := []zap.Field{
		zap.Stringer("event", ev),
		zap.Int("depth", ctx.Depth),
		zap.Int("line", ctx.Line),
		zap.Int("column", ctx.Column),
	}
	if ctx.Name != nil {
		fields = append(fields, zap.String("name", ctx.NameString()))
	}
	switch ctx.ValueType {
	case hojson.ValueTypeString:
		fields = append(fields, zap.String("value", ctx.StringValueString()))
	case hojson.ValueTypeInteger:
		fields = append(fields, zap.Int64("value", ctx.IntegerValue))
	case hojson.ValueTypeFloat:
		fields = append(fields, zap.Float64("value", ctx.FloatValue))
	case hojson.ValueTypeBoolean:
		fields = append(fields, zap.Bool("value", ctx.BoolValue))
	}
	logger.Debug("event", fields...)
}
