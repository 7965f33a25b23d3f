package commands

import (
	"io"
	"math"
	"strconv"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

// ErrUnknownFormat is returned when --output names an unsupported format.
var ErrUnknownFormat = zerr.New("unknown output format")

func outputFormat(cmd *cobra.Command) (string, error) {
	format, _ := cmd.Flags().GetString("output")
	switch format {
	case formatTable, formatJSON:
		return format, nil
	default:
		return "", zerr.With(zerr.Wrap(ErrUnknownFormat, "use table or json"), "format", format)
	}
}

// render writes v as indented JSON or lets table draw the rows.
func render(cmd *cobra.Command, v any, table func(w *tabwriter.Writer)) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == formatJSON {
		return writeJSON(out, v)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	table(tw)
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatPrice(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// optionalPrice maps a missing price to a JSON null.
func optionalPrice(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
