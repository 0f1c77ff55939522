// Command reflow converts a PDF to DOCX or a DOCX to PDF.
//
// Usage:
//
//	reflow [options] input.pdf|input.docx
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/tsawler/reflow"
	"github.com/tsawler/reflow/format"
	"github.com/tsawler/reflow/internal/config"
	"github.com/tsawler/reflow/render"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	out := flag.String("o", "", "Output file (default: input name with the other extension)")
	pageSize := flag.String("page", "letter", "Page size for PDF output: letter or a4")
	margin := flag.Float64("margin", 0, "Page margin in points for PDF output (default 50)")
	verbose := flag.Bool("v", false, "Log skipped elements")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: reflow [options] input.pdf|input.docx")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if *verbose {
		cfg.LogLevel = "debug"
	}
	logger := cfg.NewLogger()

	size, err := parsePageSize(*pageSize)
	if err != nil {
		log.Fatal(err)
	}

	in := flag.Arg(0)
	data, err := os.ReadFile(in)
	if err != nil {
		log.Fatalf("read %s: %v", in, err)
	}
	if int64(len(data)) > cfg.MaxFileSize {
		log.Fatalf("%s: %v", in, reflow.ErrTooLarge)
	}

	c := reflow.New(
		reflow.WithLogger(logger),
		reflow.WithPageSize(size),
		reflow.WithMargin(*margin),
	)
	res, err := c.Convert(data)
	if err != nil {
		if errors.Is(err, reflow.ErrMalformedInput) {
			log.Fatalf("%s is not a readable PDF or DOCX: %v", in, err)
		}
		log.Fatalf("convert %s: %v", in, err)
	}

	dst := *out
	if dst == "" {
		dst = outputName(in, res.Format)
	}
	if err := os.WriteFile(dst, res.Data, 0o644); err != nil {
		log.Fatalf("write %s: %v", dst, err)
	}
	for _, w := range res.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}
	fmt.Printf("%s -> %s (%d pages, %d warnings)\n", in, dst, res.Pages, len(res.Warnings))
}

func parsePageSize(name string) (render.PageSize, error) {
	switch strings.ToLower(name) {
	case "letter":
		return render.Letter, nil
	case "a4":
		return render.PageSize{Width: 595.28, Height: 841.89}, nil
	default:
		return render.PageSize{}, fmt.Errorf("unknown page size %q", name)
	}
}

func outputName(in string, f format.Format) string {
	return strings.TrimSuffix(in, filepath.Ext(in)) + f.Extension()
}
