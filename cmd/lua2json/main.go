// Copyright 2025 The luaq Authors
// SPDX-License-Identifier: MIT

// lua2json converts data-only Lua files
// (game saves, configuration dumps, anything written with Lua's %q format)
// to JSON and back.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"

	jsonv2 "github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tailscale/hujson"
	"golang.org/x/term"
	luaq "luaq.dev/pkg"
	"zombiezen.com/go/log"
)

type options struct {
	format       formatFlag
	maxDepth     int
	output       string
	indent       string
	reverse      bool
	lossyStrings bool
}

func main() {
	rootCommand := &cobra.Command{
		Use:           "lua2json [options] [FILE]",
		Short:         "convert data-only Lua to JSON",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	opts := &options{
		format:   formatFlag(luaq.Return),
		maxDepth: 16,
	}
	rootCommand.Flags().Var(&opts.format, "format", "input form: `expression`, return, or script")
	rootCommand.Flags().IntVar(&opts.maxDepth, "max-depth", opts.maxDepth, "maximum table nesting `depth`")
	rootCommand.Flags().StringVarP(&opts.output, "output", "o", "", "write output to `path` instead of stdout")
	rootCommand.Flags().StringVar(&opts.indent, "indent", "", "indent JSON output with `string`")
	rootCommand.Flags().BoolVar(&opts.reverse, "reverse", false, "convert JSON (with optional comments) to Lua instead")
	rootCommand.Flags().BoolVar(&opts.lossyStrings, "lossy-strings", false, "replace invalid UTF-8 in Lua strings with U+FFFD instead of failing")
	showDebug := rootCommand.Flags().Bool("debug", false, "show debugging output")

	rootCommand.RunE = func(cmd *cobra.Command, args []string) error {
		initLogging(*showDebug)
		file := ""
		if len(args) > 0 {
			file = args[0]
		}
		return run(cmd.Context(), opts, file)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCommand.ExecuteContext(ctx)
	cancel()
	if err != nil {
		initLogging(*showDebug)
		log.Errorf(context.Background(), "%v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *options, file string) error {
	input, err := readInput(file)
	if err != nil {
		return err
	}

	out := os.Stdout
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return err
		}
		defer func() {
			if err := f.Close(); err != nil {
				log.Warnf(ctx, "closing output: %v", err)
			}
		}()
		out = f
	}

	if opts.reverse {
		return jsonToLua(ctx, input, out)
	}
	return luaToJSON(ctx, opts, input, out)
}

func luaToJSON(ctx context.Context, opts *options, input []byte, out *os.File) error {
	log.Debugf(ctx, "parsing %d bytes as %v (max depth %d)", len(input), luaq.Form(opts.format), opts.maxDepth)
	v, err := luaq.Parse(input, luaq.Form(opts.format), opts.maxDepth)
	if err != nil {
		return err
	}
	if opts.lossyStrings {
		v = v.WithLossyStrings()
	}

	indent := opts.indent
	if indent == "" && term.IsTerminal(int(out.Fd())) {
		indent = "  "
	}
	var marshalOpts []jsonv2.Options
	if indent != "" {
		marshalOpts = append(marshalOpts, jsontext.WithIndent(indent))
	}
	data, err := jsonv2.Marshal(v, marshalOpts...)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = out.Write(data)
	return err
}

func jsonToLua(ctx context.Context, input []byte, out *os.File) error {
	// Tolerate comments and trailing commas in hand-edited JSON.
	standardized, err := hujson.Standardize(input)
	if err != nil {
		return err
	}
	log.Debugf(ctx, "converting %d bytes of JSON", len(standardized))
	v, err := luaq.FromJSON(standardized)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(out, "return "); err != nil {
		return err
	}
	if _, err := v.WriteTo(out); err != nil {
		return err
	}
	_, err = io.WriteString(out, "\n")
	return err
}

func readInput(file string) ([]byte, error) {
	if file == "" || file == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(file)
}

// formatFlag makes [luaq.Form] usable as a pflag value.
type formatFlag luaq.Form

var _ pflag.Value = (*formatFlag)(nil)

func (f *formatFlag) Type() string { return "form" }

func (f *formatFlag) String() string {
	return luaq.Form(*f).String()
}

func (f *formatFlag) Set(s string) error {
	switch s {
	case "expression":
		*f = formatFlag(luaq.Expression)
	case "return":
		*f = formatFlag(luaq.Return)
	case "script":
		*f = formatFlag(luaq.Script)
	default:
		return fmt.Errorf("invalid form %q (want expression, return, or script)", s)
	}
	return nil
}

var initLogOnce sync.Once

func initLogging(showDebug bool) {
	initLogOnce.Do(func() {
		minLogLevel := log.Info
		if showDebug {
			minLogLevel = log.Debug
		}
		log.SetDefault(&log.LevelFilter{
			Min:    minLogLevel,
			Output: log.New(os.Stderr, "lua2json: ", log.StdFlags, nil),
		})
	})
}
