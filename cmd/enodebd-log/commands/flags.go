// Package commands implements the enodebd-log CLI commands.
package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/ranconf/enodebd-go/pkg/log"
	"github.com/ranconf/enodebd-go/pkg/tr069"
)

// FilterOptions are the filter flags shared by the commands.
type FilterOptions struct {
	SessionID string
	DeviceID  string
	Direction string
	Category  string
	Kind      string
	TimeStart string
	TimeEnd   string
}

// Build converts the flags into a log.Filter.
func (o FilterOptions) Build() (log.Filter, error) {
	f := log.Filter{
		SessionID: o.SessionID,
		DeviceID:  o.DeviceID,
	}
	if o.Direction != "" {
		d, err := ParseDirectionFlag(o.Direction)
		if err != nil {
			return f, err
		}
		f.Direction = &d
	}
	if o.Category != "" {
		c, err := ParseCategoryFlag(o.Category)
		if err != nil {
			return f, err
		}
		f.Category = &c
	}
	if o.Kind != "" {
		k, err := ParseKindFlag(o.Kind)
		if err != nil {
			return f, err
		}
		f.Kind = &k
	}
	if o.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, o.TimeStart)
		if err != nil {
			return f, fmt.Errorf("invalid time-start: %w", err)
		}
		f.TimeStart = &t
	}
	if o.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, o.TimeEnd)
		if err != nil {
			return f, fmt.Errorf("invalid time-end: %w", err)
		}
		f.TimeEnd = &t
	}
	return f, nil
}

// ParseDirectionFlag parses "in" or "out".
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction %q (use in, out)", s)
	}
}

// ParseCategoryFlag parses "message", "state" or "error".
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "message":
		return log.CategoryMessage, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category %q (use message, state, error)", s)
	}
}

// ParseKindFlag parses a CWMP method name, case-insensitively.
func ParseKindFlag(s string) (tr069.Kind, error) {
	for k := tr069.KindInform; k <= tr069.KindInformResponse; k++ {
		if strings.EqualFold(k.String(), s) {
			return k, nil
		}
	}
	return tr069.KindUnknown, fmt.Errorf("invalid message kind %q", s)
}
