package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/porticus-lab/billrelay/internal/extract"
)

var extractCmd = &cobra.Command{
	Use:   "extract [flags] <file.pdf>",
	Short: "Print the text or the bill fields of a local PDF",
	Example: `  billrelay extract bill.pdf
  billrelay extract -p 1-2 -f json bill.pdf
  billrelay extract -f fields --vendor gas Gas_Bill_20250301.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		input := args[0]
		pageRange, _ := cmd.Flags().GetString("pages")
		format, _ := cmd.Flags().GetString("format")
		vendor, _ := cmd.Flags().GetString("vendor")
		outputFile, _ := cmd.Flags().GetString("output")

		out := cmd.OutOrStdout()
		if outputFile != "" {
			f, err := os.Create(outputFile)
			if err != nil {
				return eris.Wrap(err, "create output file")
			}
			defer f.Close()
			out = f
		}

		var src extract.PDFText

		if format == "fields" {
			engine, ok := extract.ForVendor(vendor)
			if !ok {
				return eris.Errorf("--vendor must be gas or trash, got %q", vendor)
			}
			res := engine.ExtractFile(ctx, src, input)
			if res.Err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", res.Err)
			}
			return writeFields(out, engine.Fields(), res)
		}

		total, err := src.NumPages(input)
		if err != nil {
			return err
		}
		pages, err := parsePageRange(pageRange, total)
		if err != nil {
			return eris.Wrapf(err, "invalid page range %q", pageRange)
		}
		results, err := src.ExtractPages(ctx, input, pages)
		if err != nil {
			return err
		}

		switch format {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		case "text":
			for i, r := range results {
				if i > 0 {
					fmt.Fprintln(out, "\f") // form feed between pages
				}
				fmt.Fprintln(out, r.Text)
			}
			return nil
		default:
			return eris.Errorf("unknown format %q (want text, json or fields)", format)
		}
	},
}

func init() {
	extractCmd.Flags().StringP("pages", "p", "", `page range, e.g. "1", "1-5", "1,3,5" (default: all)`)
	extractCmd.Flags().StringP("format", "f", "text", "output format: text, json, fields")
	extractCmd.Flags().String("vendor", "", "rule set for -f fields: gas or trash")
	extractCmd.Flags().StringP("output", "o", "", "write output to file (default: stdout)")
	rootCmd.AddCommand(extractCmd)
}

func writeFields(w io.Writer, fields []extract.Field, res extract.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tVALUE\tSTATE")
	for _, f := range fields {
		v := res.Get(f)
		fmt.Fprintf(tw, "%s\t%s\t%s\n", f, v, v.State)
	}
	return tw.Flush()
}

// parsePageRange converts a page range to 1-based page numbers.
// Supported formats: "" (all), "3" (single page), "1-5" (range), "1,3,5" (list).
func parsePageRange(expr string, total int) ([]int, error) {
	if expr == "" {
		pages := make([]int, total)
		for i := range pages {
			pages[i] = i + 1
		}
		return pages, nil
	}

	var pages []int
	seen := make(map[int]bool)
	add := func(p int) {
		if !seen[p] {
			pages = append(pages, p)
			seen[p] = true
		}
	}

	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			start, err := strconv.Atoi(strings.TrimSpace(lo))
			if err != nil {
				return nil, eris.Errorf("invalid page number: %s", lo)
			}
			end, err := strconv.Atoi(strings.TrimSpace(hi))
			if err != nil {
				return nil, eris.Errorf("invalid page number: %s", hi)
			}
			if start < 1 || end > total || start > end {
				return nil, eris.Errorf("page range %d-%d out of bounds (1-%d)", start, end, total)
			}
			for p := start; p <= end; p++ {
				add(p)
			}
			continue
		}
		p, err := strconv.Atoi(part)
		if err != nil {
			return nil, eris.Errorf("invalid page number: %s", part)
		}
		if p < 1 || p > total {
			return nil, eris.Errorf("page %d out of bounds (1-%d)", p, total)
		}
		add(p)
	}
	return pages, nil
}
