// Command gaiasm is the two-pass assembler's command-line front end: flag
// parsing and output-file plumbing live here, the pipeline itself lives in
// package assemble. The flag set is a direct translation of the reference
// implementation's argparse options.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/b-inary/gaia-software/assemble"
	"github.com/b-inary/gaia-software/config"
	"github.com/b-inary/gaia-software/diag"
	"github.com/b-inary/gaia-software/emit"
	"github.com/b-inary/gaia-software/isa"
)

func main() {
	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		fmt.Fprintln(os.Stderr, "gaiasm: warning: "+cfgErr.Error())
		cfg = config.DefaultConfig()
	}

	var (
		outPath        string
		libraryFiles   []string
		entryPointFlag string
		endMarker      string
		startLabel     string
		oneOp          bool
		noJumpMain     bool
		noHeader       bool
		serialFormat   bool
		indexedFormat  bool
		preprocessed   bool
		verbosePre     bool
		noWarnUnused   bool
		warnScratch    bool
	)

	root := &cobra.Command{
		Use:           "gaiasm [flags] file...",
		Short:         "Two-pass assembler for the gaia instruction set",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opt := assemble.Options{
				LibraryPaths: libraryFiles,
				InputPaths:   args,
				EntryPoint:   0,
				StartLabel:   cfg.Build.StartLabel,
				JumpMain:     cfg.Build.JumpMain && !noJumpMain,
				OneOp:        oneOp || cfg.Build.OneOpMov,
				EndMarker:    endMarker,
				WarnScratch:  warnScratch || cfg.Diagnostics.WarnScratchReg,
				WarnUnused:   !noWarnUnused && cfg.Diagnostics.WarnUnusedLabel,
			}
			if entryPointFlag != "" {
				v, ok := isa.ParseInt(entryPointFlag)
				if !ok {
					return fmt.Errorf("argument -e: expected integer: %s", entryPointFlag)
				}
				if v&3 != 0 {
					return fmt.Errorf("argument -e: entry address must be a multiple of 4")
				}
				if v < 0 {
					return fmt.Errorf("argument -e: entry address must be zero or positive")
				}
				opt.EntryPoint = v
			} else if addr, ok := isa.ParseInt(cfg.Build.EntryPoint); ok {
				opt.EntryPoint = addr
			}
			if startLabel != "" {
				opt.StartLabel = startLabel
			}

			formatter := diag.NewFormatter(os.Stderr)

			result, err := assemble.Run(opt)
			if err != nil {
				if de, ok := err.(*diag.Error); ok {
					if de.Kind.Fatal() {
						formatter.PrintFatal("gaiasm", de.Message)
					} else {
						formatter.PrintError(de)
					}
				} else {
					formatter.PrintFatal("gaiasm", err.Error())
				}
				return errSilent
			}
			for _, w := range result.Warnings {
				formatter.PrintWarning(w, false)
			}

			if preprocessed || verbosePre {
				text, err := emit.Listing(result.Final, result.Symbols, emit.ListingOptions{
					EntryPoint: opt.EntryPoint,
					Verbose:    verbosePre,
					SourceLine: func(pos diag.Pos) (string, bool) { return result.Cache.Line(pos) },
				})
				if err != nil {
					return err
				}
				if err := os.WriteFile(outPath+".s", []byte(text), 0644); err != nil {
					return err
				}
			}

			format := emit.FormatRaw
			withHeader := cfg.Output.Header && !noHeader
			switch {
			case indexedFormat:
				format = emit.FormatIndexed
				withHeader = false
			case serialFormat:
				format = emit.FormatSerial
			}

			out, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer out.Close()
			return emit.Write(out, result.Program, emit.Options{Format: format, WithHeader: withHeader})
		},
	}

	flags := root.Flags()
	flags.StringVarP(&outPath, "o", "o", cfg.Output.Path, "set output file to <file>")
	flags.StringArrayVarP(&libraryFiles, "l", "l", nil, "set library file to <file>")
	flags.StringVarP(&entryPointFlag, "e", "e", "", "set entry point address")
	flags.StringVarP(&endMarker, "f", "f", "", "append label to end of program")
	flags.StringVarP(&startLabel, "start", "t", "", "start execution from <label>")
	flags.BoolVarP(&oneOp, "n", "n", false, "expand mov expression macro to 1 operation")
	flags.BoolVarP(&noJumpMain, "r", "r", false, "do not insert main label jump instruction")
	flags.BoolVarP(&noHeader, "c", "c", false, "do not append file header")
	flags.BoolVarP(&serialFormat, "a", "a", false, "output as rs232c send test format")
	flags.BoolVarP(&indexedFormat, "k", "k", false, "output as array of std_logic_vector format")
	flags.BoolVarP(&preprocessed, "s", "s", false, "output preprocessed assembly")
	flags.BoolVarP(&verbosePre, "v", "v", false, "output more detail assembly than -s")
	flags.BoolVar(&noWarnUnused, "Wno-unused-label", false, "disable unused label warning")
	flags.BoolVar(&warnScratch, "Wr29", false, "enable use of r29 warning")

	root.SetArgs(rewriteSingleDashLong(os.Args[1:]))

	if err := root.Execute(); err != nil {
		if err != errSilent {
			fmt.Fprintln(os.Stderr, "gaiasm: "+err.Error())
		}
		os.Exit(1)
	}
}

var errSilent = fmt.Errorf("")

// rewriteSingleDashLong turns the reference implementation's single-dash
// long options "-start", "-Wno-unused-label" and "-Wr29" (argparse allows
// multi-character single-dash flags; pflag requires "--" for a long name)
// into the "--" form pflag understands, leaving every other argument
// untouched.
func rewriteSingleDashLong(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		switch {
		case a == "-start", a == "-Wno-unused-label", a == "-Wr29":
			a = "-" + a
		case strings.HasPrefix(a, "-start="):
			a = "-" + a
		}
		out[i] = a
	}
	return out
}
