package commands

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ranconf/enodebd-go/pkg/log"
)

// ExportRecord is the JSON form of one event.
type ExportRecord struct {
	Timestamp  time.Time `json:"timestamp"`
	SessionID  string    `json:"session_id"`
	DeviceID   string    `json:"device_id,omitempty"`
	DeviceType string    `json:"device_type,omitempty"`
	Direction  string    `json:"direction"`
	Layer      string    `json:"layer"`
	Category   string    `json:"category"`
	Kind       string    `json:"kind,omitempty"`
	Parameters []string  `json:"parameters,omitempty"`
	Status     *int      `json:"status,omitempty"`
	OldState   string    `json:"old_state,omitempty"`
	NewState   string    `json:"new_state,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	Error      string    `json:"error,omitempty"`
}

func newExportRecord(e log.Event) ExportRecord {
	r := ExportRecord{
		Timestamp:  e.Timestamp.UTC(),
		SessionID:  e.SessionID,
		DeviceID:   e.DeviceID,
		DeviceType: e.DeviceType,
		Direction:  e.Direction.String(),
		Layer:      e.Layer.String(),
		Category:   e.Category.String(),
	}
	switch {
	case e.Message != nil:
		r.Kind = e.Message.Kind.String()
		r.Parameters = e.Message.Parameters
		r.Status = e.Message.Status
	case e.StateChange != nil:
		r.OldState = e.StateChange.OldState
		r.NewState = e.StateChange.NewState
		r.Reason = e.StateChange.Reason
	case e.Error != nil:
		r.Error = e.Error.Message
		r.Status = e.Error.Code
	}
	return r
}

var csvHeader = []string{
	"timestamp", "session_id", "device_id", "direction", "layer", "category",
	"kind", "parameters", "status", "old_state", "new_state", "reason", "error",
}

func (r ExportRecord) csvRow() []string {
	status := ""
	if r.Status != nil {
		status = strconv.Itoa(*r.Status)
	}
	return []string{
		r.Timestamp.Format(time.RFC3339Nano), r.SessionID, r.DeviceID,
		r.Direction, r.Layer, r.Category, r.Kind,
		strings.Join(r.Parameters, ";"), status,
		r.OldState, r.NewState, r.Reason, r.Error,
	}
}

// RunExport writes the events of path to output ("" for w) as JSON lines
// or CSV.
func RunExport(path string, filter log.Filter, format, output string, w io.Writer) error {
	if format != "jsonl" && format != "csv" {
		return fmt.Errorf("unsupported format %q (use jsonl, csv)", format)
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	var write func(ExportRecord) error
	var flush func() error
	switch format {
	case "jsonl":
		enc := json.NewEncoder(w)
		write = func(r ExportRecord) error { return enc.Encode(r) }
		flush = func() error { return nil }
	case "csv":
		cw := csv.NewWriter(w)
		if err := cw.Write(csvHeader); err != nil {
			return err
		}
		write = func(r ExportRecord) error { return cw.Write(r.csvRow()) }
		flush = func() error {
			cw.Flush()
			return cw.Error()
		}
	}

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return flush()
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := write(newExportRecord(event)); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
}
