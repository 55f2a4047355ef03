package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"tsearch/config"
	"tsearch/hexdump"
	"tsearch/pattern"
	"tsearch/process"
	"tsearch/process/memory_map"
	"tsearch/reader"
	"tsearch/search"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

type rootFlags struct {
	pattern    string
	configPath string
	base       string
	size       string
	pageSize   uint
	threads    int
	reader     string
	module     string
	dump       uint
	color      string
}

// NewRootCommand creates the tsearch command
func NewRootCommand() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "tsearch",
		Short: "Search this process's memory for a byte pattern",
		Long: `tsearch scans a region of its own address space for a byte pattern such as
"54 68 69 73 ?? 70 72 ?? 67 72 61 6D". Tokens of two hex digits match that byte,
anything else ("??") matches any byte.

The region is either --base/--size or the span of a mapped module (--module,
default: the tsearch executable). Unreadable bytes are skipped.`,
		Version:      Version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.pattern, "pattern", "p", "", "byte pattern to search for")
	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "tsearch.yaml", "configuration file")
	cmd.Flags().StringVar(&flags.base, "base", "", "region base address (e.g. 0x7f0000000000)")
	cmd.Flags().StringVar(&flags.size, "size", "", "region size in bytes")
	cmd.Flags().UintVar(&flags.pageSize, "page-size", uint(search.DefaultPageSize), "bytes scanned per worker")
	cmd.Flags().IntVarP(&flags.threads, "threads", "t", 0, "maximum concurrent workers (0 = one per CPU)")
	cmd.Flags().StringVar(&flags.reader, "reader", string(reader.KindDirect), "byte reader: direct or vm")
	cmd.Flags().StringVarP(&flags.module, "module", "m", "", "search the span of this mapped module")
	cmd.Flags().UintVar(&flags.dump, "dump", 0, "hexdump this many bytes around the match")
	cmd.Flags().StringVar(&flags.color, "color", "auto", "colour output: auto, always, never")
	_ = cmd.MarkFlagRequired("pattern")

	return cmd
}

func runSearch(cmd *cobra.Command, flags *rootFlags) error {
	cfg, err := config.LoadConfig(flags.configPath)
	if err != nil {
		return err
	}
	cfg.MergeWithFlags(
		changed(cmd, "page-size", &flags.pageSize),
		changed(cmd, "threads", &flags.threads),
		changed(cmd, "reader", &flags.reader),
		changed(cmd, "module", &flags.module),
		changed(cmd, "dump", &flags.dump),
		changed(cmd, "color", &flags.color),
	)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	out := cmd.OutOrStdout()
	setColor(cfg.Color, out)

	log := logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "tsearch-cli"))

	region, err := resolveRegion(cfg, flags)
	if err != nil {
		return err
	}
	log.Infoln("Searching", region.String())

	options, err := cfg.SearchOptions()
	if err != nil {
		return err
	}
	options = append(options, search.WithLogger(log))

	s := search.New(region, options...)
	outcome := s.SearchPattern(flags.pattern)

	printOutcome(out, outcome)

	if outcome.Found && cfg.DumpContext > 0 {
		p, _ := pattern.Compile(flags.pattern)
		r, err := reader.New(cfg.Reader)
		if err != nil {
			return err
		}

		n := process.ProcessMemorySize(p.Len())
		dumpRegion := hexdump.Around(outcome.Address, n, process.ProcessMemorySize(cfg.DumpContext))
		opts := hexdump.DefaultOptions()
		opts.Color = !color.NoColor
		opts.Highlight = process.Region{Base: outcome.Address, Size: n}

		hexdump.DumpToWriter(out, r, dumpRegion, opts)
	}

	return nil
}

func changed[T any](cmd *cobra.Command, name string, v *T) *T {
	if cmd.Flags().Changed(name) {
		return v
	}
	return nil
}

func setColor(mode string, out io.Writer) {
	switch mode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default:
		f, ok := out.(*os.File)
		color.NoColor = !ok || !isatty.IsTerminal(f.Fd())
	}
}

// resolveRegion picks --base/--size when given, otherwise the span of the
// configured module, otherwise the span of the running executable
func resolveRegion(cfg *config.Config, flags *rootFlags) (process.Region, error) {
	if flags.base != "" || flags.size != "" {
		base, err := strconv.ParseUint(flags.base, 0, 64)
		if err != nil {
			return process.Region{}, fmt.Errorf("invalid --base %q: %w", flags.base, err)
		}
		size, err := strconv.ParseUint(flags.size, 0, 64)
		if err != nil {
			return process.Region{}, fmt.Errorf("invalid --size %q: %w", flags.size, err)
		}
		return process.Region{Base: process.ProcessMemoryAddress(base), Size: process.ProcessMemorySize(size)}, nil
	}

	module := cfg.Module
	if module == "" {
		exe, err := os.Executable()
		if err != nil {
			return process.Region{}, fmt.Errorf("failed to locate executable: %w", err)
		}
		module = filepath.Base(exe)
	}

	mm, err := memory_map.ReadSelf()
	if err != nil {
		return process.Region{}, fmt.Errorf("failed to read memory map: %w", err)
	}
	return memory_map.FindModule(module, mm)
}

func printOutcome(out io.Writer, outcome search.Outcome) {
	status := color.New(color.FgRed).Sprint("false")
	address := "(none)"
	if outcome.Found {
		status = color.New(color.FgGreen).Sprint("true")
		address = outcome.Address.ToString()
	}

	fmt.Fprintf(out, "Result : %s & %s\n", status, address)
	fmt.Fprintf(out, "Batches: %d, units scanned: %d, units skipped: %d\n",
		outcome.Batches, outcome.UnitsScanned, outcome.UnitsSkipped)
}
