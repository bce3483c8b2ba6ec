// Package marble defines the persisted marble record and its color.
package marble

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownColor is returned when a color name is neither red nor green.
var ErrUnknownColor = errors.New("marble: unknown color")

type Color uint8

const (
	Red Color = iota + 1
	Green
)

// Colors lists the valid colors in display order.
var Colors = []Color{Red, Green}

func (c Color) String() string {
	switch c {
	case Red:
		return "red"
	case Green:
		return "green"
	default:
		return fmt.Sprintf("color(%d)", uint8(c))
	}
}

func (c Color) Valid() bool { return c == Red || c == Green }

// Good reports whether the marble counts toward the good tally.
func (c Color) Good() bool { return c == Green }

func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "red":
		return Red, nil
	case "green":
		return Green, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownColor, s)
}

func (c Color) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownColor, uint8(c))
	}
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(b []byte) error {
	parsed, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Record is one dropped marble as it is written to disk.
type Record struct {
	Timestamp int64 `json:"timestamp"`
	Color     Color `json:"color"`
}

func NewRecord(c Color, at time.Time) Record {
	return Record{Timestamp: at.UnixMilli(), Color: c}
}

func (r Record) Time() time.Time { return time.UnixMilli(r.Timestamp) }

// History is the on-disk document shape.
type History struct {
	Marbles []Record `json:"marbles"`
}
