package journal

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/pixel-ledger/internal/canvas"
	"github.com/ironsheep/pixel-ledger/internal/geom"
	"github.com/ironsheep/pixel-ledger/internal/ledger"
)

func mustPut(t *testing.T, name string, v any) canvas.Command {
	t.Helper()
	cmd, err := canvas.Put(name, v)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	return cmd
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, canvas.Draw(geom.RGB(1, 2, 3), geom.Pt(4, 5))); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := `{"patch":[{"color":[1,2,3],"points":[[4,5]]}]}` + "\n"
	if buf.String() != want {
		t.Errorf("Encode: got %q, want %q", buf.String(), want)
	}
}

func TestDecoder(t *testing.T) {
	input := strings.Join([]string{
		`{"patch":[{"color":[1,2,3],"points":[[0,0]]}]}`,
		``,
		`{"anchor":{"name":"o","point":[1,1]}}`,
		`{"put":{"name":"title","value":"x"}}`,
	}, "\n")

	dec := NewDecoder(strings.NewReader(input))
	var kinds []string
	for dec.Next() {
		kinds = append(kinds, dec.Command().Kind())
	}
	if err := dec.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}
	want := []string{"patch", "anchor", "put"}
	if strings.Join(kinds, ",") != strings.Join(want, ",") {
		t.Errorf("kinds: got %v, want %v", kinds, want)
	}
}

func TestDecoder_BadLine(t *testing.T) {
	input := `{"anchor":{"name":"o","point":[1,1]}}` + "\n" + `{"bogus":1}` + "\n"
	dec := NewDecoder(strings.NewReader(input))

	n := 0
	for dec.Next() {
		n++
	}
	if n != 1 {
		t.Errorf("decoded %d commands before the error, want 1", n)
	}
	if dec.Err() == nil || !strings.Contains(dec.Err().Error(), "line 2") {
		t.Errorf("Err: got %v, want an error naming line 2", dec.Err())
	}
}

func TestWriterReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canvas.jsonl")

	w, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	live := ledger.New()
	cmds := []canvas.Command{
		canvas.Draw(geom.RGB(255, 0, 0), geom.Pt(0, 0), geom.Pt(1, 0)),
		canvas.Erase(geom.Pt(1, 0)),
		canvas.SetAnchor("origin", geom.Pt(0, 0)),
		mustPut(t, "title", map[string]any{"b": 1, "a": "x"}),
	}
	for _, cmd := range cmds {
		if live.Apply(cmd) {
			if err := w.Append(cmd); err != nil {
				t.Fatalf("Append: %v", err)
			}
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Append(cmds[0]); !errors.Is(err, ErrClosed) {
		t.Errorf("Append after Close: got %v, want ErrClosed", err)
	}

	replayed := ledger.New()
	st, err := Replay(path, replayed)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if st.Records != 4 || st.Changed != 4 {
		t.Errorf("Stats: got %+v, want 4 records, 4 changed", st)
	}
	if replayed.Version() != live.Version() {
		t.Errorf("Version: got %d, want %d", replayed.Version(), live.Version())
	}
	if !replayed.State().Equal(live.State()) {
		t.Error("replayed state differs from live state")
	}
}

func TestReplay_MissingFile(t *testing.T) {
	img := canvas.New()
	st, err := Replay(filepath.Join(t.TempDir(), "absent.jsonl"), img)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if st != (Stats{}) {
		t.Errorf("Stats: got %+v, want zero", st)
	}
}

func TestOpen_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canvas.jsonl")

	for i := 0; i < 2; i++ {
		w, err := Open(path)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if err := w.Append(canvas.Draw(geom.RGB(0, 0, uint8(i)), geom.Pt(int16(i), 0))); err != nil {
			t.Fatalf("Append: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}

	cmds, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(cmds) != 2 {
		t.Fatalf("ReadAll: got %d commands, want 2", len(cmds))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(string(data), "\n"); lines != 2 {
		t.Errorf("file has %d lines, want 2", lines)
	}
}
