package store

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/san-kum/marblejar/internal/marble"
)

// ExportJSON writes records in the on-disk document shape, indented.
func ExportJSON(w io.Writer, records []marble.Record) error {
	if records == nil {
		records = []marble.Record{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(marble.History{Marbles: records})
}

// ExportCSV writes one row per marble with the raw timestamp, its local time and color.
func ExportCSV(w io.Writer, records []marble.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "time", "color"}); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			strconv.FormatInt(r.Timestamp, 10),
			r.Time().Format(time.RFC3339),
			r.Color.String(),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
