package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/johnconnor-sec/xspin-go/internal/errors"
	"github.com/johnconnor-sec/xspin-go/internal/frame"
	"github.com/johnconnor-sec/xspin-go/internal/terminal"
)

func newMeasureCommand() *cobra.Command {
	var width int

	cmd := &cobra.Command{
		Use:   "measure",
		Short: "Report how many terminal rows each line of stdin occupies",
		Long: `Read text from stdin and print, for every logical line, the number of
terminal rows it wraps to, followed by the total. Styling escape sequences are
ignored and wide characters count as two columns.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var geom frame.Geometry = terminal.Geometry{File: os.Stdout}
			if cmd.Flags().Changed("width") {
				if width < 1 {
					return errors.ValidationError("--width", fmt.Sprint(width), "width must be positive")
				}
				geom = frame.FixedWidth(width)
			}
			return measure(cmd.InOrStdin(), cmd.OutOrStdout(), geom)
		},
	}

	cmd.Flags().IntVarP(&width, "width", "W", 0, "Terminal width in columns (default: the current terminal, or 80)")
	return cmd
}

func measure(in io.Reader, out io.Writer, geom frame.Geometry) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return errors.Wrap(err, errors.InternalError, "Failed to read stdin")
	}

	total := 0
	line := 0
	for rows := range frame.Lines(string(data), geom) {
		line++
		total += rows
		fmt.Fprintf(out, "%6d  %d\n", line, rows)
	}
	fmt.Fprintf(out, "%6s  %d\n", "total", total)
	return nil
}
