// Command docloom extracts word-processing packages into semantic
// trees with mapping contracts, and renders trees back through a
// template.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/docloom/docloom"
	"github.com/docloom/docloom/contract"
)

// Version is set at build time via ldflags.
var Version = "dev"

var errUsage = errors.New("usage error")

const usageText = `docloom round-trips word-processing packages through a semantic tree.

Usage:
  docloom extract [flags] <input.docx>
  docloom render  [flags] <input.docx> <output.docx>
  docloom version

Run 'docloom <command> --help' for command flags.
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "docloom:", err)
		}
		os.Exit(exitCodeFor(err))
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usageText)
		return errUsage
	}
	switch args[0] {
	case "extract":
		return runExtract(args[1:])
	case "render":
		return runRender(args[1:])
	case "version", "--version":
		fmt.Println("docloom", Version)
		return nil
	case "help", "--help", "-h":
		fmt.Print(usageText)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", args[0], usageText)
		return errUsage
	}
}

func runExtract(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	contractPath := fs.StringP("contract", "c", "contract.yaml", "output path for the mapping contract")
	mediaDir := fs.StringP("media", "m", "", "directory to copy embedded images into")
	verbose := fs.BoolP("verbose", "v", false, "log progress to stderr")
	quiet := fs.BoolP("quiet", "q", false, "suppress warnings")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "extract needs exactly one input file")
		fs.Usage()
		return errUsage
	}
	input := fs.Arg(0)

	ext := docloom.Open(input)
	if *mediaDir != "" {
		ext = ext.MediaDir(*mediaDir)
	}
	if *verbose {
		ext = ext.Logger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	}

	result, warnings, err := ext.Extract()
	if err != nil {
		return fmt.Errorf("extracting %s: %w", input, err)
	}
	if len(warnings) > 0 && !*quiet {
		fmt.Fprintln(os.Stderr, docloom.FormatWarnings(warnings))
	}
	if err := result.Contract.Save(*contractPath); err != nil {
		return fmt.Errorf("writing contract: %w", err)
	}

	fmt.Printf("extracted %d blocks, %d style mappings, %d anchors -> %s\n",
		len(result.Tree.Blocks),
		len(result.Contract.ParagraphStyles),
		len(result.Contract.Anchors),
		*contractPath)
	return nil
}

// runRender re-extracts the input into a tree, then renders that tree
// through the given contract and template into a fresh package. With
// no explicit contract the one produced by the extraction is used, so
// the default invocation is a full round trip.
func runRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	templatePath := fs.StringP("template", "t", "", "template package (defaults to the input itself)")
	contractPath := fs.StringP("contract", "c", "", "mapping contract to render through")
	mediaDir := fs.StringP("media", "m", "", "directory holding image files referenced by the tree")
	toc := fs.Bool("toc", false, "generate a table of contents from heading anchors")
	verbose := fs.BoolP("verbose", "v", false, "log progress to stderr")
	quiet := fs.BoolP("quiet", "q", false, "suppress warnings")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "render needs an input file and an output file")
		fs.Usage()
		return errUsage
	}
	input, output := fs.Arg(0), fs.Arg(1)

	ext := docloom.Open(input)
	if *mediaDir != "" {
		ext = ext.MediaDir(*mediaDir)
	}
	result, warnings, err := ext.Extract()
	if err != nil {
		return fmt.Errorf("extracting %s: %w", input, err)
	}
	if len(warnings) > 0 && !*quiet {
		fmt.Fprintln(os.Stderr, docloom.FormatWarnings(warnings))
	}

	c := result.Contract
	if *contractPath != "" {
		loaded, err := contract.Load(*contractPath)
		if err != nil {
			return fmt.Errorf("loading contract: %w", err)
		}
		c = loaded
	}

	tmpl := *templatePath
	if tmpl == "" {
		tmpl = input
	}
	rend := docloom.Template(tmpl)
	if *mediaDir != "" {
		rend = rend.MediaDir(*mediaDir)
	}
	if *toc {
		rend = rend.TOC()
	}
	if *verbose {
		rend = rend.Logger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	}

	if err := rend.RenderFile(result.Tree, c, output); err != nil {
		return fmt.Errorf("rendering %s: %w", output, err)
	}
	fmt.Printf("rendered %d blocks -> %s\n", len(result.Tree.Blocks), output)
	return nil
}
