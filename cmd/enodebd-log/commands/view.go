package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ranconf/enodebd-go/pkg/log"
)

// maxListedParams caps the parameter names printed per message.
const maxListedParams = 8

// RunView prints the events of path matching filter.
func RunView(path string, filter log.Filter, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(w, event)
	}
}

func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")

	var label string
	switch {
	case event.Message != nil:
		label = event.Message.Kind.String()
	case event.StateChange != nil:
		label = "State"
	case event.Error != nil:
		label = "Error"
	default:
		label = "Unknown"
	}

	fmt.Fprintf(w, "%s [sess:%s] %-3s %s %s", ts, shortenID(event.SessionID), event.Direction, event.Layer, label)
	if event.DeviceID != "" {
		fmt.Fprintf(w, " (%s", event.DeviceID)
		if event.DeviceType != "" {
			fmt.Fprintf(w, "/%s", event.DeviceType)
		}
		fmt.Fprint(w, ")")
	}
	fmt.Fprintln(w)

	switch {
	case event.Message != nil:
		formatMessageDetails(w, event.Message)
	case event.StateChange != nil:
		sc := event.StateChange
		fmt.Fprintf(w, "  %s: %s -> %s\n", sc.Entity, orDash(sc.OldState), sc.NewState)
		if sc.Reason != "" {
			fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
		}
	case event.Error != nil:
		e := event.Error
		fmt.Fprintf(w, "  Layer: %s\n  Message: %s\n", e.Layer, e.Message)
		if e.Code != nil {
			fmt.Fprintf(w, "  Code: %d\n", *e.Code)
		}
		if e.Context != "" {
			fmt.Fprintf(w, "  Context: %s\n", e.Context)
		}
	}
	fmt.Fprintln(w)
}

func formatMessageDetails(w io.Writer, msg *log.MessageEvent) {
	if msg.Status != nil {
		fmt.Fprintf(w, "  Status: %d\n", *msg.Status)
	}
	if n := len(msg.Parameters); n > 0 {
		shown := msg.Parameters
		if n > maxListedParams {
			shown = shown[:maxListedParams]
		}
		fmt.Fprintf(w, "  Parameters (%d):\n", n)
		for _, p := range shown {
			fmt.Fprintf(w, "    %s\n", p)
		}
		if n > maxListedParams {
			fmt.Fprintf(w, "    ... %d more\n", n-maxListedParams)
		}
	}
}

// shortenID returns the first 8 characters of a session ID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return orDash(id)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
