package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/funvibe/mambacheck/internal/analyzer"
	"github.com/funvibe/mambacheck/internal/astio"
	"github.com/funvibe/mambacheck/internal/cache"
	"github.com/funvibe/mambacheck/internal/catalog"
	"github.com/funvibe/mambacheck/internal/config"
	"github.com/funvibe/mambacheck/internal/pipeline"
	"github.com/funvibe/mambacheck/internal/prettyprinter"
	"github.com/funvibe/mambacheck/internal/report"
)

// Exit codes.
const (
	exitOK       = 0
	exitRejected = 1
	exitUsage    = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type flags struct {
	configPath   string
	format       string
	workers      int
	cachePath    string
	warnUncaught bool
	verbose      bool
	print        bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("mambacheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var f flags
	fs.StringVar(&f.configPath, "config", "", "config file (default: "+config.ConfigFileName+" in the working directory, if present)")
	fs.StringVar(&f.format, "format", "", "output format: text, json or lsp")
	fs.IntVar(&f.workers, "workers", 0, "files and bodies checked in parallel (0: number of CPUs)")
	fs.StringVar(&f.cachePath, "cache", "", "sqlite result cache path")
	fs.BoolVar(&f.warnUncaught, "warn-uncaught", false, "warn about raises no enclosing try handles")
	fs.BoolVar(&f.verbose, "v", false, "log checker phases to stderr")
	fs.BoolVar(&f.print, "print", false, "print the decoded programs as source instead of checking them")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: mambacheck [flags] <tree.mamba.json | dir>...\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}

	opts, err := loadOptions(fs, f)
	if err != nil {
		fmt.Fprintf(stderr, "mambacheck: %v\n", err)
		return exitUsage
	}

	logger := newLogger(f.verbose, stderr)
	defer logger.Sync()

	sources, root, err := collectSources(fs.Args())
	if err != nil {
		fmt.Fprintf(stderr, "mambacheck: %v\n", err)
		return exitUsage
	}

	cat, err := catalog.LoadAll(opts.Catalog.Extra)
	if err != nil {
		fmt.Fprintf(stderr, "mambacheck: %v\n", err)
		return exitUsage
	}

	reporter, err := report.New(opts.Format, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "mambacheck: %v\n", err)
		return exitUsage
	}

	pctx := pipeline.NewContext(ctx, opts, logger)
	pctx.Catalog = cat
	pctx.Root = root
	pctx.Sources = sources

	if f.print {
		out := pipeline.New(&astio.DecodeProcessor{}, printStage(stdout)).Run(pctx)
		for _, err := range out.Errors {
			fmt.Fprintf(stderr, "mambacheck: %v\n", err)
		}
		if len(out.Errors) > 0 {
			return exitRejected
		}
		return exitOK
	}

	stages := []pipeline.Processor{&astio.DecodeProcessor{}}
	var store *cache.Cache
	if opts.Cache.Path != "" {
		store, err = cache.Open(opts.Cache.Path)
		if err != nil {
			// Checking still works without the cache.
			logger.Warn("cache unavailable", zap.String("path", opts.Cache.Path), zap.Error(err))
		} else {
			defer store.Close()
			stages = append(stages, &cache.LookupProcessor{Cache: store})
		}
	}
	stages = append(stages, &analyzer.SemanticAnalyzerProcessor{})
	if store != nil {
		stages = append(stages, &cache.StoreProcessor{Cache: store})
	}
	stages = append(stages, &report.ReportProcessor{Reporter: reporter, Writer: stdout})

	out := pipeline.New(stages...).Run(pctx)
	if err := multierr.Combine(out.Errors...); err != nil {
		logger.Debug("run had failures", zap.Error(err))
	}
	if !out.Accepted() {
		return exitRejected
	}
	return exitOK
}

// printStage writes every decoded program back as source, each under a
// header naming its module.
func printStage(w io.Writer) pipeline.Processor {
	return pipeline.ProcessorFunc(func(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
		for i, prog := range ctx.Programs {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "# %s (%s)\n", prog.Module, prog.File)
			fmt.Fprint(w, prettyprinter.Print(prog))
		}
		return ctx
	})
}

// loadOptions reads the config file and applies the flags given on the
// command line on top of it.
func loadOptions(fs *flag.FlagSet, f flags) (config.Options, error) {
	path, optional := f.configPath, false
	if path == "" {
		path, optional = config.ConfigFileName, true
	}
	opts, err := config.Load(path, optional)
	if err != nil {
		return config.Options{}, err
	}
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "format":
			opts.Format = f.format
		case "workers":
			opts.Workers = f.workers
		case "cache":
			opts.Cache.Path = f.cachePath
		case "warn-uncaught":
			opts.WarnUncaughtRaises = f.warnUncaught
		}
	})
	return opts, opts.Validate()
}

func newLogger(verbose bool, stderr io.Writer) *zap.Logger {
	level := zapcore.WarnLevel
	encoderCfg := zap.NewProductionEncoderConfig()
	if verbose {
		level = zapcore.DebugLevel
		encoderCfg = zap.NewDevelopmentEncoderConfig()
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(stderr),
		level,
	)
	return zap.New(core)
}
