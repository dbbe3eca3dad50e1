package ledger

import (
	"encoding/json"
	"iter"

	"github.com/ironsheep/pixel-ledger/internal/canvas"
	"github.com/ironsheep/pixel-ledger/internal/geom"
	"github.com/ironsheep/pixel-ledger/internal/history"
)

// Observer is called after a command has changed the image and been recorded.
// version is the version the command produced.
type Observer func(cmd canvas.Command, version history.Version)

type options struct {
	nullLog  bool
	interval int
	observer Observer
	initial  *canvas.Image
}

// Option configures a VersionedImage.
type Option func(*options)

// WithNullLog keeps only a version counter instead of the full history.
func WithNullLog() Option {
	return func(o *options) { o.nullLog = true }
}

// WithSnapshotInterval sets how many commands the full log records between
// snapshots. Values below 1 select history.DefaultSnapshotInterval.
func WithSnapshotInterval(n int) Option {
	return func(o *options) { o.interval = n }
}

// WithObserver registers fn to be called after every recorded command.
func WithObserver(fn Observer) Option {
	return func(o *options) { o.observer = fn }
}

// WithInitial starts from a copy of img instead of an empty image. The copy
// is version 0.
func WithInitial(img *canvas.Image) Option {
	return func(o *options) { o.initial = img }
}

// VersionedImage is an image plus the log of commands that built it.
// It is not safe for concurrent use.
type VersionedImage struct {
	state    *canvas.Image
	log      history.Log[*canvas.Image, canvas.Command]
	observer Observer
}

// New returns an empty VersionedImage at version 0. The default log is a
// full log with history.DefaultSnapshotInterval.
func New(opts ...Option) *VersionedImage {
	o := options{interval: history.DefaultSnapshotInterval}
	for _, opt := range opts {
		opt(&o)
	}

	state := canvas.New()
	if o.initial != nil {
		state = o.initial.Clone()
	}

	v := &VersionedImage{state: state, observer: o.observer}
	if o.nullLog {
		v.log = history.NewNullLog[*canvas.Image, canvas.Command]()
	} else {
		v.log = history.NewFullLog[*canvas.Image, canvas.Command](state, o.interval)
	}
	return v
}

// Apply applies cmd and reports whether the image changed. Only changing
// commands are appended to the log, as a copy, so the caller may reuse its
// buffers afterwards.
func (v *VersionedImage) Apply(cmd canvas.Command) bool {
	if !v.state.Apply(cmd) {
		return false
	}
	cmd = cmd.Clone()
	v.log.AppendAppliedCommand(cmd, v.state)
	if v.observer != nil {
		v.observer(cmd, v.log.LatestVersion())
	}
	return true
}

// Version is the number of recorded commands.
func (v *VersionedImage) Version() history.Version {
	return v.log.LatestVersion()
}

// SnapshotCount reports how many snapshots the log holds.
func (v *VersionedImage) SnapshotCount() int {
	return v.log.SnapshotCount()
}

// State returns the current image. Callers must not mutate it; use Apply.
func (v *VersionedImage) State() *canvas.Image {
	return v.state
}

func (v *VersionedImage) GetPixel(p geom.Point) (geom.Color, bool) {
	return v.state.GetPixel(p)
}

func (v *VersionedImage) RangePixels(r geom.Range) iter.Seq2[geom.Point, geom.Color] {
	return v.state.RangePixels(r)
}

func (v *VersionedImage) Anchors() iter.Seq2[string, geom.Point] {
	return v.state.Anchors()
}

func (v *VersionedImage) Metadata() iter.Seq2[string, json.RawMessage] {
	return v.state.MetadataItems()
}

// AppliedCommands returns the commands recorded after version since. It is
// always empty with a null log.
func (v *VersionedImage) AppliedCommands(since history.Version) []canvas.Command {
	return v.log.CommandsSince(since)
}

// Restore rebuilds the image as of version ver. The result is independent
// of the current state.
func (v *VersionedImage) Restore(ver history.Version) (*canvas.Image, bool) {
	return v.log.RestoreState(ver)
}

// Diff returns the patch that turns the image at version ver into the
// current image. ok is false when ver cannot be restored.
func (v *VersionedImage) Diff(ver history.Version) (canvas.PatchCommand, bool) {
	old, ok := v.log.RestoreState(ver)
	if !ok {
		return canvas.PatchCommand{}, false
	}
	return old.Diff(v.state), true
}
