package canvas

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/ironsheep/pixel-ledger/internal/geom"
)

// Errors returned when decoding commands.
var (
	ErrEmptyCommand     = errors.New("command has no case set")
	ErrAmbiguousCommand = errors.New("command has more than one case set")
)

// Command is one unit of change. Exactly one of its fields is set.
type Command struct {
	Patch  *PatchCommand
	Anchor *AnchorCommand
	Put    *PutCommand
}

// PatchCommand draws and erases pixels. Entries are applied in order.
type PatchCommand struct {
	Entries []PatchEntry
}

// PatchEntry paints Points with Color, or erases them when Color is nil.
type PatchEntry struct {
	Color  *geom.Color  `json:"color,omitempty"`
	Points []geom.Point `json:"points"`
}

// AnchorCommand sets a named anchor, or clears it when Point is nil.
type AnchorCommand struct {
	Name  string      `json:"name"`
	Point *geom.Point `json:"point"`
}

// PutCommand stores a JSON metadata value. A nil or null Value deletes the
// key.
type PutCommand struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

// Draw returns a patch painting every point with c.
func Draw(c geom.Color, points ...geom.Point) Command {
	return Command{Patch: &PatchCommand{Entries: []PatchEntry{{Color: &c, Points: points}}}}
}

// Erase returns a patch removing every point.
func Erase(points ...geom.Point) Command {
	return Command{Patch: &PatchCommand{Entries: []PatchEntry{{Points: points}}}}
}

// SetAnchor returns a command placing anchor name at p.
func SetAnchor(name string, p geom.Point) Command {
	return Command{Anchor: &AnchorCommand{Name: name, Point: &p}}
}

// ClearAnchor returns a command removing anchor name.
func ClearAnchor(name string) Command {
	return Command{Anchor: &AnchorCommand{Name: name}}
}

// Put returns a command storing value under name. A nil value deletes it.
func Put(name string, value any) (Command, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return Command{}, fmt.Errorf("failed to encode metadata %q: %w", name, err)
	}
	return PutRaw(name, raw), nil
}

// PutRaw is Put for a value that is already JSON.
func PutRaw(name string, raw json.RawMessage) Command {
	return Command{Put: &PutCommand{Name: name, Value: raw}}
}

// Clone returns a deep copy sharing no memory with c.
func (c Command) Clone() Command {
	var out Command
	if c.Patch != nil {
		entries := make([]PatchEntry, len(c.Patch.Entries))
		for i, e := range c.Patch.Entries {
			if e.Color != nil {
				col := *e.Color
				entries[i].Color = &col
			}
			entries[i].Points = slices.Clone(e.Points)
		}
		out.Patch = &PatchCommand{Entries: entries}
	}
	if c.Anchor != nil {
		a := AnchorCommand{Name: c.Anchor.Name}
		if c.Anchor.Point != nil {
			p := *c.Anchor.Point
			a.Point = &p
		}
		out.Anchor = &a
	}
	if c.Put != nil {
		out.Put = &PutCommand{Name: c.Put.Name, Value: bytes.Clone(c.Put.Value)}
	}
	return out
}

// Kind names the case that is set: "patch", "anchor", "put" or "".
func (c Command) Kind() string {
	switch {
	case c.Patch != nil:
		return "patch"
	case c.Anchor != nil:
		return "anchor"
	case c.Put != nil:
		return "put"
	}
	return ""
}

// PointCount is the number of points a patch touches; zero for other kinds.
func (c Command) PointCount() int {
	if c.Patch == nil {
		return 0
	}
	n := 0
	for _, e := range c.Patch.Entries {
		n += len(e.Points)
	}
	return n
}

func (c Command) validate() error {
	n := 0
	for _, set := range []bool{c.Patch != nil, c.Anchor != nil, c.Put != nil} {
		if set {
			n++
		}
	}
	switch n {
	case 0:
		return ErrEmptyCommand
	case 1:
		return nil
	}
	return ErrAmbiguousCommand
}

type commandWire struct {
	Patch  *PatchCommand  `json:"patch,omitempty"`
	Anchor *AnchorCommand `json:"anchor,omitempty"`
	Put    *PutCommand    `json:"put,omitempty"`
}

// MarshalJSON encodes the command as {"patch":...}, {"anchor":...} or
// {"put":...}.
func (c Command) MarshalJSON() ([]byte, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	return json.Marshal(commandWire(c))
}

// UnmarshalJSON decodes the tagged form and rejects records with zero or
// several cases.
func (c *Command) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("command: %w", err)
	}
	for k := range fields {
		switch k {
		case "patch", "anchor", "put":
		default:
			return fmt.Errorf("command: unknown case %q", k)
		}
	}
	var w commandWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("command: %w", err)
	}
	// {"put":{"name":"x","value":null}} must still decode to a Put case.
	if w.Put != nil && w.Put.Value == nil {
		w.Put.Value = json.RawMessage("null")
	}
	cmd := Command(w)
	if err := cmd.validate(); err != nil {
		return err
	}
	*c = cmd
	return nil
}

// MarshalJSON encodes a patch as its list of entries.
func (p PatchCommand) MarshalJSON() ([]byte, error) {
	entries := p.Entries
	if entries == nil {
		entries = []PatchEntry{}
	}
	return json.Marshal(entries)
}

// UnmarshalJSON decodes a list of entries.
func (p *PatchCommand) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &p.Entries)
}

// MarshalJSON writes null for an empty value.
func (p PutCommand) MarshalJSON() ([]byte, error) {
	value := p.Value
	if len(bytes.TrimSpace(value)) == 0 {
		value = json.RawMessage("null")
	}
	return json.Marshal(struct {
		Name  string          `json:"name"`
		Value json.RawMessage `json:"value"`
	}{p.Name, value})
}
