package journal

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ironsheep/pixel-ledger/internal/canvas"
)

// maxLine bounds a single journal record.
const maxLine = 1024 * 1024

// ErrClosed is returned by Append after Close.
var ErrClosed = errors.New("journal is closed")

// Encode writes cmd to w as one line.
func Encode(w io.Writer, cmd canvas.Command) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("failed to encode command: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write command: %w", err)
	}
	return nil
}

// Decoder reads commands one line at a time. Blank lines are skipped.
type Decoder struct {
	scanner *bufio.Scanner
	line    int
	cmd     canvas.Command
	err     error
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxLine)
	return &Decoder{scanner: scanner}
}

// Next advances to the next command. It returns false at the end of input
// or on the first error; check Err afterwards.
func (d *Decoder) Next() bool {
	if d.err != nil {
		return false
	}
	for d.scanner.Scan() {
		d.line++
		line := d.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var cmd canvas.Command
		if err := json.Unmarshal(line, &cmd); err != nil {
			d.err = fmt.Errorf("line %d: failed to decode command: %w", d.line, err)
			return false
		}
		d.cmd = cmd
		return true
	}
	if err := d.scanner.Err(); err != nil {
		d.err = fmt.Errorf("failed to read journal: %w", err)
	}
	return false
}

// Command returns the command read by the last successful Next.
func (d *Decoder) Command() canvas.Command {
	return d.cmd
}

// Err returns the error that stopped Next, if any.
func (d *Decoder) Err() error {
	return d.err
}

// Writer appends commands to a journal file.
type Writer struct {
	mu   sync.Mutex
	f    *os.File
	w    *bufio.Writer
	path string
}

// Open opens path for appending, creating it if needed.
func Open(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return &Writer{f: f, w: bufio.NewWriter(f), path: path}, nil
}

// Path is the file the writer appends to.
func (w *Writer) Path() string {
	return w.path
}

// Append writes cmd as one line and flushes it to the file.
func (w *Writer) Append(cmd canvas.Command) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.f == nil {
		return ErrClosed
	}
	if err := Encode(w.w, cmd); err != nil {
		return err
	}
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("failed to flush journal: %w", err)
	}
	return nil
}

// Close flushes and closes the file. Closing twice is a no-op.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.f == nil {
		return nil
	}
	flushErr := w.w.Flush()
	closeErr := w.f.Close()
	w.f = nil
	if flushErr != nil {
		return fmt.Errorf("failed to flush journal: %w", flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close journal: %w", closeErr)
	}
	return nil
}

// Applier receives replayed commands. *canvas.Image and
// *ledger.VersionedImage both satisfy it.
type Applier interface {
	Apply(cmd canvas.Command) bool
}

// Stats summarises a replay.
type Stats struct {
	Records int
	Changed int
}

// Replay reads every command in path and applies it to dst. A missing file
// is an empty journal.
func Replay(path string, dst Applier) (Stats, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return Stats{}, nil
	}
	if err != nil {
		return Stats{}, fmt.Errorf("failed to open journal: %w", err)
	}
	defer f.Close()

	return ReplayFrom(f, dst)
}

// ReplayFrom applies every command read from r to dst.
func ReplayFrom(r io.Reader, dst Applier) (Stats, error) {
	var st Stats
	dec := NewDecoder(r)
	for dec.Next() {
		st.Records++
		if dst.Apply(dec.Command()) {
			st.Changed++
		}
	}
	return st, dec.Err()
}

// ReadAll returns every command in path.
func ReadAll(path string) ([]canvas.Command, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer f.Close()

	var cmds []canvas.Command
	dec := NewDecoder(f)
	for dec.Next() {
		cmds = append(cmds, dec.Command())
	}
	return cmds, dec.Err()
}
