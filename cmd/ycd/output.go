package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	ycd "github.com/rubpy/ycd-go"
)

//////////////////////////////////////////////////

type outputSummary struct {
	Items  int
	Files  int
	Errors int
}

// writeItems prints one JSON document per item. Binary payloads still held in
// memory are written to outDir and replaced by their path.
func writeItems(w io.Writer, items []ycd.Item, outDir string) (summary outputSummary, err error) {
	enc := json.NewEncoder(w)

	for _, item := range items {
		summary.Items++
		if _, failed := item.Error(); failed {
			summary.Errors++
		}

		for _, bin := range item.Binary {
			if bin == nil {
				continue
			}
			summary.Files++

			if bin.Data == nil {
				continue
			}

			p := filepath.Join(outDir, filepath.Base(bin.FileName))
			if err = os.MkdirAll(outDir, 0o755); err != nil {
				return
			}
			if err = os.WriteFile(p, bin.Data, 0o644); err != nil {
				return
			}

			bin.ID = p
		}

		if err = enc.Encode(item); err != nil {
			return
		}
	}

	return
}

func (s outputSummary) print(w io.Writer) {
	c := color.New(color.FgGreen)
	if s.Errors > 0 {
		c = color.New(color.FgYellow)
	}

	c.Fprintf(w, "%d item(s), %d file(s), %d error(s)\n", s.Items, s.Files, s.Errors)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("json.Encoder.Encode: %w", err)
	}

	return nil
}
