package simulation

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
)

func WriteTimelineCSV(path string, res *Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return WriteTimeline(f, res)
}

// WriteTimeline writes one CSV row per month: month, year, total, rebalanced,
// then one column per method in config order.
func WriteTimeline(out io.Writer, res *Result) error {
	w := csv.NewWriter(out)

	header := []string{
		"month",
		"year",
		"total",
		"rebalanced",
	}
	header = append(header, res.Methods...)
	if err := w.Write(header); err != nil {
		return err
	}

	for _, p := range res.Timeline {
		row := []string{
			strconv.Itoa(p.Month),
			strconv.FormatFloat(p.Years(), 'f', 4, 64),
			fmtFloat(p.Total),
			strconv.FormatBool(p.Rebalanced),
		}
		for _, v := range p.Values {
			row = append(row, fmtFloat(v))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
