package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/moalang/moavm/internal/asm"
	"github.com/moalang/moavm/internal/config"
	"github.com/moalang/moavm/internal/loader"
	"github.com/moalang/moavm/internal/logio"
)

func main() {
	log := logio.NewLogger(os.Stderr)
	cmd := newCLI(os.Stdout, log).command()
	log.ErrorIf(cmd.ExecuteContext(context.Background()))
	os.Exit(log.ExitCode())
}

type cli struct {
	stdout io.Writer
	log    *logio.Logger

	// dir is where the search for a config file starts, unless configPath
	// is given
	dir        string
	configPath string
	cfg        *config.Config

	// flag values, applied over cfg only when set on the command line
	flags      config.Config
	outputPath string
	raw        bool
}

func newCLI(stdout io.Writer, log *logio.Logger) *cli {
	return &cli{
		stdout: stdout,
		log:    log,
		dir:    ".",
		flags:  *config.Default(),
	}
}

func (c *cli) command() *cobra.Command {
	root := &cobra.Command{
		Use:   "moavm [command] (flags)",
		Short: "moavm runs, assembles, and disassembles moa bytecode programs.",
		Long: `moavm runs, assembles, and disassembles moa bytecode programs.

Defaults for flags may be set in a moavm.toml file, found in the working
directory or any parent, or named by --config:

    [run]
    stacks = true
    format = "yaml"
    timeout = "5s"

    [asm]
    compress = true
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig(cmd.Flags())
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file to use instead of searching for "+config.FileName)

	root.AddCommand(c.runCommand())
	root.AddCommand(c.asmCommand())
	root.AddCommand(c.disasmCommand())
	return root
}

func (c *cli) runCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <program>",
		Short: "Run a bytecode program; use - to read it from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE:  c.run,
	}
	fs := cmd.Flags()
	fs.BoolVar(&c.flags.Run.Stacks, "stacks", c.flags.Run.Stacks, "print the final stacks")
	fs.BoolVar(&c.flags.Run.Trace, "trace", c.flags.Run.Trace, "log every executed instruction to stderr")
	fs.StringVar(&c.flags.Run.Format, "format", c.flags.Run.Format, `final stacks format, "text" or "yaml"`)
	fs.DurationVar(&c.flags.Run.Timeout, "timeout", c.flags.Run.Timeout, "stop the program after this long")
	fs.BoolVar(&c.raw, "raw", false, "never decompress the program")
	return cmd
}

func (c *cli) asmCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "asm <source>",
		Short: "Assemble a text program into bytecode.",
		Args:  cobra.ExactArgs(1),
		RunE:  c.asm,
	}
	fs := cmd.Flags()
	fs.StringVarP(&c.outputPath, "output", "o", "", "output file, default is the source name with a .mvm extension")
	fs.BoolVar(&c.flags.Asm.Compress, "compress", c.flags.Asm.Compress, "zstd compress the output")
	return cmd
}

func (c *cli) disasmCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disasm <program>",
		Short: "Print a listing of a bytecode program; use - to read it from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE:  c.disasm,
	}
	cmd.Flags().BoolVar(&c.raw, "raw", false, "never decompress the program")
	return cmd
}

func (c *cli) load(path string) ([]byte, error) {
	if c.raw {
		return loader.LoadRaw(path)
	}
	return loader.Load(path)
}

func (c *cli) loadConfig(fs *pflag.FlagSet) (err error) {
	if c.configPath != "" {
		c.cfg, err = config.Load(c.configPath)
	} else {
		c.cfg, err = config.FindAndLoad(c.dir)
	}
	if err != nil {
		return err
	}
	override(fs, "stacks", &c.cfg.Run.Stacks, c.flags.Run.Stacks)
	override(fs, "trace", &c.cfg.Run.Trace, c.flags.Run.Trace)
	override(fs, "format", &c.cfg.Run.Format, c.flags.Run.Format)
	override(fs, "timeout", &c.cfg.Run.Timeout, c.flags.Run.Timeout)
	override(fs, "compress", &c.cfg.Asm.Compress, c.flags.Asm.Compress)
	return errors.Wrap(c.cfg.Validate(), "invalid flags")
}

func override[T any](fs *pflag.FlagSet, name string, dst *T, val T) {
	if fs.Changed(name) {
		*dst = val
	}
}

func (c *cli) run(cmd *cobra.Command, args []string) error {
	prog, err := c.load(args[0])
	if err != nil {
		return err
	}

	rc := c.cfg.Run
	opts := []VMOption{WithOutput(c.stdout)}
	if rc.Trace {
		opts = append(opts, WithLogf(c.log.Leveledf("TRACE")))
	}
	vm := New(prog, opts...)

	ctx := cmd.Context()
	if rc.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rc.Timeout)
		defer cancel()
	}
	runErr := vm.Run(ctx)

	if rc.Stacks {
		dump := vmDumper{vm: vm, out: c.stdout}
		if rc.Format == config.FormatYAML {
			if err := dump.dumpYAML(); err != nil {
				return err
			}
		} else {
			dump.dumpStacks("")
		}
	}

	if runErr != nil {
		return errors.Wrap(runErr, args[0])
	}
	if vm.State() == Halted {
		c.log.SetExitCode(logio.ExitError)
	}
	return nil
}

func (c *cli) asm(cmd *cobra.Command, args []string) error {
	src := args[0]
	out := c.outputPath
	if out == "" {
		out = strings.TrimSuffix(src, filepath.Ext(src)) + ".mvm"
		if out == src {
			return errors.Newf("refusing to overwrite %s, use -o", src)
		}
	}

	f, err := os.Open(src)
	if err != nil {
		return errors.Wrap(err, "cannot open source")
	}
	defer f.Close()

	prog, err := asm.Assemble(f)
	if err != nil {
		return errors.Wrap(err, src)
	}
	if c.cfg.Asm.Compress {
		if prog, err = loader.Compress(prog); err != nil {
			return err
		}
	}

	if err := os.WriteFile(out, prog, 0o644); err != nil {
		return err
	}
	c.log.Printf("INFO", "wrote %v bytes to %v", len(prog), out)
	return nil
}

func (c *cli) disasm(cmd *cobra.Command, args []string) error {
	prog, err := c.load(args[0])
	if err != nil {
		return err
	}
	return errors.Wrap(asm.Disassemble(c.stdout, prog), args[0])
}
