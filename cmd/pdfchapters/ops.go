package main

import (
	"fmt"
	"sort"

	"github.com/midbel/hexdump"
	"github.com/spf13/cobra"

	"github.com/tsawler/pdfchapters/reader"
)

type opsFlags struct {
	page int
	raw  bool
}

func newOpsCmd() *cobra.Command {
	var flags opsFlags

	cmd := &cobra.Command{
		Use:   "ops <file.pdf>",
		Short: "Print the content stream operations of one page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOps(cmd, flags, args[0])
		},
	}
	cmd.Flags().IntVar(&flags.page, "page", 1, "Page number, starting at 1")
	cmd.Flags().BoolVar(&flags.raw, "raw", false, "Also hexdump the decoded content stream")
	return cmd
}

func runOps(cmd *cobra.Command, flags opsFlags, source string) error {
	r, err := reader.Open(source)
	if err != nil {
		return err
	}
	defer r.Close()

	count, err := r.PageCount()
	if err != nil {
		return err
	}
	if flags.page < 1 || flags.page > count {
		return fmt.Errorf("page %d out of range: document has %d pages", flags.page, count)
	}
	page, err := r.GetPage(flags.page - 1)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fonts, err := r.PageFonts(page)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(fonts))
	for name := range fonts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		desc := fonts[name]
		fmt.Fprintf(out, "font /%s %s %s\n", name, desc.BaseFont, desc.Encoding())
	}

	ops, err := r.PageOperations(page)
	if err != nil {
		return err
	}
	for i, op := range ops {
		fmt.Fprintf(out, "%5d  %s\n", i, op)
	}

	if flags.raw {
		content, err := r.PageContent(page)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, hexdump.Dump(content))
	}
	return nil
}
