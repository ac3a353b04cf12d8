package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/ranconf/enodebd-go/pkg/log"
	"github.com/ranconf/enodebd-go/pkg/tr069"
)

// Stats holds aggregate statistics about a capture file.
type Stats struct {
	TotalEvents       int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	MessagesByKind    map[tr069.Kind]int
	Devices           map[string]*DeviceStats
	Errors            int
	Start, End        time.Time
}

// DeviceStats holds the statistics of one device.
type DeviceStats struct {
	DeviceType string
	Sessions   map[string]bool
	Events     int
	Faults     int
	LastState  string
	FirstSeen  time.Time
	LastSeen   time.Time
}

// Collect reads every event of path into Stats.
func Collect(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		MessagesByKind:    make(map[tr069.Kind]int),
		Devices:           make(map[string]*DeviceStats),
	}

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByCategory[event.Category]++
	s.EventsByDirection[event.Direction]++
	if s.Start.IsZero() || event.Timestamp.Before(s.Start) {
		s.Start = event.Timestamp
	}
	if event.Timestamp.After(s.End) {
		s.End = event.Timestamp
	}
	if event.Error != nil {
		s.Errors++
	}
	if event.Message != nil {
		s.MessagesByKind[event.Message.Kind]++
	}

	if event.DeviceID == "" {
		return
	}
	dev, ok := s.Devices[event.DeviceID]
	if !ok {
		dev = &DeviceStats{Sessions: make(map[string]bool), FirstSeen: event.Timestamp}
		s.Devices[event.DeviceID] = dev
	}
	dev.Events++
	dev.LastSeen = event.Timestamp
	if event.DeviceType != "" {
		dev.DeviceType = event.DeviceType
	}
	if event.SessionID != "" {
		dev.Sessions[event.SessionID] = true
	}
	if event.Message != nil && event.Message.Kind == tr069.KindFault {
		dev.Faults++
	}
	if sc := event.StateChange; sc != nil && sc.Entity == log.StateEntityMachine {
		dev.LastState = sc.NewState
	}
}

// RunStats prints the statistics of path.
func RunStats(path string, w io.Writer) error {
	stats, err := Collect(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Events:     %d\n", stats.TotalEvents)
	if stats.TotalEvents == 0 {
		return nil
	}
	fmt.Fprintf(w, "Time range: %s - %s (%s)\n",
		stats.Start.UTC().Format(time.RFC3339), stats.End.UTC().Format(time.RFC3339),
		stats.End.Sub(stats.Start).Truncate(time.Millisecond))
	fmt.Fprintf(w, "Errors:     %d\n", stats.Errors)
	fmt.Fprintf(w, "Direction:  in=%d out=%d\n",
		stats.EventsByDirection[log.DirectionIn], stats.EventsByDirection[log.DirectionOut])

	fmt.Fprintln(w, "\nCategories:")
	for _, c := range []log.Category{log.CategoryMessage, log.CategoryState, log.CategoryError} {
		fmt.Fprintf(w, "  %-8s %d\n", c, stats.EventsByCategory[c])
	}

	if len(stats.MessagesByKind) > 0 {
		fmt.Fprintln(w, "\nMessages:")
		kinds := make([]tr069.Kind, 0, len(stats.MessagesByKind))
		for k := range stats.MessagesByKind {
			kinds = append(kinds, k)
		}
		sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
		for _, k := range kinds {
			fmt.Fprintf(w, "  %-28s %d\n", k, stats.MessagesByKind[k])
		}
	}

	if len(stats.Devices) > 0 {
		fmt.Fprintln(w, "\nDevices:")
		serials := make([]string, 0, len(stats.Devices))
		for s := range stats.Devices {
			serials = append(serials, s)
		}
		sort.Strings(serials)
		for _, serial := range serials {
			d := stats.Devices[serial]
			fmt.Fprintf(w, "  %s (%s): %d events, %d sessions, %d faults, last state %s\n",
				serial, orDash(d.DeviceType), d.Events, len(d.Sessions), d.Faults, orDash(d.LastState))
		}
	}
	return nil
}
