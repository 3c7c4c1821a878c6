package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mriopack/internal/operations"
)

type convertOptions struct {
	sourceDir   string
	version     string
	targetDir   string
	keepStaged  bool
	noNormalize bool
}

func newConvertCmd(root *rootOptions) *cobra.Command {
	opts := &convertOptions{}

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a directory of raw tables into a data package archive",
		Long: `Convert a directory of raw tables into a data package archive.

Source file names are fixed per version (see "mriopack versions"). Binary
workbooks (.xlsb) cannot be read: the built-in versions stop with an
unsupported format error at the first .xlsb source. Convert such workbooks
to .xlsx and register a version pointing at them with paths.versions_file.`,
		Example: `  mriopack convert --source ./exiobase --version "3.3.18 hybrid"
  mriopack convert --source ./exiobase --version "3.3.17 hybrid" --target ./out --keep-staged`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConvert(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.sourceDir, "source", "s", "", "directory holding the raw source files")
	f.StringVarP(&opts.version, "version", "v", "", "registered dataset version id")
	f.StringVarP(&opts.targetDir, "target", "t", "", "output directory (default: <source>/datapackage)")
	f.BoolVar(&opts.keepStaged, "keep-staged", false, "keep the staged files next to the archive")
	f.BoolVar(&opts.noNormalize, "no-normalize", false, "write raw flows and keep zero production entries")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("version")
	return cmd
}

func runConvert(cmd *cobra.Command, root *rootOptions, opts *convertOptions) error {
	ctx := cmd.Context()
	e, err := root.setup(ctx)
	if err != nil {
		return err
	}
	defer e.close(ctx)

	svc, err := e.conversions()
	if err != nil {
		return err
	}

	resp, err := svc.Convert(ctx, operations.ConversionRequest{
		SourceDir: opts.sourceDir,
		TargetDir: opts.targetDir,
		Version:   opts.version,
		Options:   svc.Options(opts.keepStaged, opts.noNormalize),
	})
	if resp != nil {
		printSteps(cmd, resp)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), resp.Archive)
	return nil
}

// printSteps writes one status line per step to stderr
func printSteps(cmd *cobra.Command, resp *operations.ConversionResponse) {
	ids := make([]string, 0, len(resp.Steps))
	for id := range resp.Steps {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return stepRank(ids[i]) < stepRank(ids[j])
	})

	w := cmd.ErrOrStderr()
	for _, id := range ids {
		s := resp.Steps[id]
		line := fmt.Sprintf("%-13s %-9s %s", id, s.GetStatus(), s.Duration().Round(time.Millisecond))
		if s.Message != "" {
			line += "  " + s.Message
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}

func stepRank(id string) int {
	switch id {
	case operations.StepIDNomenclature:
		return 0
	case operations.StepIDProduction:
		return 1
	case operations.StepIDTechnosphere:
		return 2
	case operations.StepIDExtensions:
		return 3
	case operations.StepIDPackage:
		return 4
	}
	return 5
}
