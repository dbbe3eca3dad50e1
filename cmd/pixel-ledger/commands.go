package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/ironsheep/pixel-ledger/internal/canvas"
	"github.com/ironsheep/pixel-ledger/internal/config"
	"github.com/ironsheep/pixel-ledger/internal/history"
	"github.com/ironsheep/pixel-ledger/internal/imaging"
	"github.com/ironsheep/pixel-ledger/internal/journal"
	"github.com/ironsheep/pixel-ledger/internal/ledger"
)

var (
	versionColor = color.New(color.FgHiBlack).SprintFunc()
	drawColor    = color.New(color.FgGreen).SprintFunc()
	eraseColor   = color.New(color.FgRed).SprintFunc()
	anchorColor  = color.New(color.FgCyan).SprintFunc()
	putColor     = color.New(color.FgYellow).SprintFunc()
	noopColor    = color.New(color.Faint).SprintFunc()
)

// maxValueWidth truncates metadata values in listings.
const maxValueWidth = 60

// logCommand prints one line per journal record with the version it
// produced. Records that changed nothing are marked as no-ops.
func logCommand(cfg *config.Config, args []string, out io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: log <journal>")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer f.Close()

	v := ledger.New(ledger.WithNullLog())
	dec := journal.NewDecoder(f)
	for dec.Next() {
		cmd := dec.Command()
		changed := v.Apply(cmd)
		line := fmt.Sprintf("%s %s", versionColor(fmt.Sprintf("v%-6d", v.Version())), describe(cmd))
		if !changed {
			line += " " + noopColor("(no-op)")
		}
		fmt.Fprintln(out, line)
	}
	return dec.Err()
}

// describe summarises a command on one line.
func describe(cmd canvas.Command) string {
	switch {
	case cmd.Patch != nil:
		var parts []string
		for _, e := range cmd.Patch.Entries {
			if e.Color == nil {
				parts = append(parts, eraseColor(fmt.Sprintf("erase %d", len(e.Points))))
				continue
			}
			parts = append(parts, drawColor(fmt.Sprintf("draw %s %d", e.Color.Hex(), len(e.Points))))
		}
		if len(parts) == 0 {
			return "patch (empty)"
		}
		return "patch " + strings.Join(parts, ", ")
	case cmd.Anchor != nil:
		if cmd.Anchor.Point == nil {
			return anchorColor(fmt.Sprintf("anchor %s cleared", cmd.Anchor.Name))
		}
		return anchorColor(fmt.Sprintf("anchor %s = %s", cmd.Anchor.Name, cmd.Anchor.Point))
	case cmd.Put != nil:
		value := string(cmd.Put.Value)
		if value == "" {
			value = "null"
		}
		value = truncate(value, maxValueWidth)
		return putColor(fmt.Sprintf("put %s = %s", cmd.Put.Name, value))
	}
	return "empty"
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

// diffCommand prints the patch that turns the given version into the
// latest one.
func diffCommand(cfg *config.Config, args []string, out io.Writer) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: diff <journal> <version>")
	}
	from, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", args[1], err)
	}
	v, _, err := openLedger(args[0], ledger.WithSnapshotInterval(cfg.SnapshotInterval))
	if err != nil {
		return err
	}
	patch, ok := v.Diff(history.Version(from))
	if !ok {
		return fmt.Errorf("version %d not restorable (latest is %d)", from, v.Version())
	}

	fmt.Fprintf(out, "v%d -> v%d: %d points\n", from, v.Version(), patch.Command().PointCount())
	for _, e := range patch.Entries {
		for _, p := range e.Points {
			if e.Color == nil {
				fmt.Fprintln(out, eraseColor(fmt.Sprintf("- %s", p)))
			} else {
				fmt.Fprintln(out, drawColor(fmt.Sprintf("+ %s %s", p, e.Color.Hex())))
			}
		}
	}
	return nil
}

// exportCommand renders the journal's canvas, optionally at an earlier
// version, to a PNG file.
func exportCommand(cfg *config.Config, args []string, out io.Writer) error {
	if len(args) < 2 || len(args) > 4 {
		return fmt.Errorf("usage: export <journal> <out.png> [version] [scale]")
	}
	scale := cfg.Render.Scale
	if len(args) == 4 {
		n, err := strconv.Atoi(args[3])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid scale %q", args[3])
		}
		scale = n
	}

	v, _, err := openLedger(args[0], ledger.WithSnapshotInterval(cfg.SnapshotInterval))
	if err != nil {
		return err
	}
	img, version := v.State(), v.Version()
	if len(args) >= 3 {
		n, err := strconv.ParseUint(args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[2], err)
		}
		restored, ok := v.Restore(history.Version(n))
		if !ok {
			return fmt.Errorf("version %d not restorable (latest is %d)", n, v.Version())
		}
		img, version = restored, history.Version(n)
	}

	frame, err := imaging.RenderAll(img, cfg.Render.MaxDimension)
	if err != nil {
		return err
	}
	if err := imaging.Export(args[1], frame.Image, scale, cfg.Render.MaxDimension); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %s: %dx%d at %s, version %d\n",
		args[1], frame.Width()*scale, frame.Height()*scale, frame.Origin, version)
	return nil
}
