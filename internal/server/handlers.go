package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/ironsheep/pixel-ledger/internal/canvas"
	"github.com/ironsheep/pixel-ledger/internal/detection"
	"github.com/ironsheep/pixel-ledger/internal/geom"
	"github.com/ironsheep/pixel-ledger/internal/history"
	"github.com/ironsheep/pixel-ledger/internal/imaging"
)

var (
	// ErrNotRestorable is returned for versions the history cannot rebuild.
	ErrNotRestorable = errors.New("version not restorable")
	// ErrUnknownAnchor is returned when a tool names an anchor that is not set.
	ErrUnknownAnchor = errors.New("unknown anchor")
)

// executeTool dispatches tool execution to the matching handler. Callers
// hold s.mu.
//
// Each handler:
//  1. Unmarshals its arguments
//  2. Applies defaults for optional parameters
//  3. Reads the canvas, or builds a command and applies it
//  4. Returns a JSON-ready result
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (any, error) {
	switch name {
	// Editing
	case "canvas_apply":
		return s.handleApply(args)
	case "canvas_draw":
		return s.handleDraw(args)
	case "canvas_erase":
		return s.handleErase(args)
	case "canvas_revert":
		return s.handleRevert(args)

	// Reading pixels
	case "canvas_get_pixel":
		return s.handleGetPixel(args)
	case "canvas_range_pixels":
		return s.handleRangePixels(args)

	// History
	case "canvas_version":
		return s.handleVersion()
	case "canvas_applied_commands":
		return s.handleAppliedCommands(args)
	case "canvas_diff":
		return s.handleDiff(args)

	// Anchors
	case "canvas_anchors":
		return s.handleAnchors()
	case "canvas_set_anchor":
		return s.handleSetAnchor(args)
	case "canvas_measure":
		return s.handleMeasure(args)
	case "canvas_check_alignment":
		return s.handleCheckAlignment(args)

	// Metadata
	case "canvas_metadata":
		return s.handleMetadata(args)
	case "canvas_put":
		return s.handlePut(args)
	case "canvas_put_path":
		return s.handlePutPath(args)

	// Rendering
	case "canvas_render":
		return s.handleRender(args)
	case "canvas_export":
		return s.handleExport(args)
	case "canvas_import":
		return s.handleImport(args)

	// Color analysis
	case "canvas_palette":
		return s.handlePalette(args)
	case "canvas_quantize":
		return s.handleQuantize(args)
	case "canvas_regions":
		return s.handleRegions(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// decodeArgs unmarshals tool arguments into v. Missing arguments leave v
// at its zero value.
func decodeArgs(args json.RawMessage, v any) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// toPoint converts tool coordinates to a canvas point, rejecting values
// outside int16.
func toPoint(x, y int) (geom.Point, error) {
	if x < math.MinInt16 || x > math.MaxInt16 || y < math.MinInt16 || y > math.MaxInt16 {
		return geom.Point{}, fmt.Errorf("coordinates (%d,%d) outside canvas range [%d, %d]", x, y, math.MinInt16, math.MaxInt16)
	}
	return geom.Pt(int16(x), int16(y)), nil
}

// stateAt returns the canvas at version, or the current canvas when version
// is nil. The current canvas must not be modified.
func (s *Server) stateAt(version *uint64) (*canvas.Image, history.Version, error) {
	current := s.canvas.Version()
	if version == nil || history.Version(*version) == current {
		return s.canvas.State(), current, nil
	}
	img, ok := s.canvas.Restore(history.Version(*version))
	if !ok {
		return nil, 0, fmt.Errorf("%w: %d (latest is %d)", ErrNotRestorable, *version, current)
	}
	return img, history.Version(*version), nil
}

// === Editing Handlers ===

type changeResult struct {
	Changed bool            `json:"changed"`
	Version history.Version `json:"version"`
}

func (s *Server) applyResult(cmd canvas.Command) (*changeResult, error) {
	changed, err := s.apply(cmd)
	if err != nil {
		return nil, err
	}
	return &changeResult{Changed: changed, Version: s.canvas.Version()}, nil
}

type applyArgs struct {
	Command json.RawMessage `json:"command"`
}

func (s *Server) handleApply(args json.RawMessage) (any, error) {
	var a applyArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if len(a.Command) == 0 {
		return nil, fmt.Errorf("command is required")
	}
	var cmd canvas.Command
	if err := json.Unmarshal(a.Command, &cmd); err != nil {
		return nil, fmt.Errorf("invalid command: %w", err)
	}
	return s.applyResult(cmd)
}

type drawArgs struct {
	Color  string       `json:"color"`
	Points []geom.Point `json:"points"`
}

func (s *Server) handleDraw(args json.RawMessage) (any, error) {
	var a drawArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	c, err := geom.ParseHex(a.Color)
	if err != nil {
		return nil, err
	}
	return s.applyResult(canvas.Draw(c, a.Points...))
}

type eraseArgs struct {
	Points []geom.Point `json:"points"`
}

func (s *Server) handleErase(args json.RawMessage) (any, error) {
	var a eraseArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.applyResult(canvas.Erase(a.Points...))
}

type revertArgs struct {
	Version uint64 `json:"version"`
}

func (s *Server) handleRevert(args json.RawMessage) (any, error) {
	var a revertArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	old, _, err := s.stateAt(&a.Version)
	if err != nil {
		return nil, err
	}
	patch := s.canvas.State().Diff(old)
	res, err := s.applyResult(patch.Command())
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"changed":        res.Changed,
		"version":        res.Version,
		"reverted_to":    a.Version,
		"changed_points": patch.Command().PointCount(),
	}, nil
}

// === Pixel Handlers ===

type getPixelArgs struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (s *Server) handleGetPixel(args json.RawMessage) (any, error) {
	var a getPixelArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	p, err := toPoint(a.X, a.Y)
	if err != nil {
		return nil, err
	}
	result := map[string]any{"x": a.X, "y": a.Y, "color": nil}
	if c, ok := s.canvas.GetPixel(p); ok {
		result["color"] = imaging.Describe(c)
	}
	return result, nil
}

type rangePixelsArgs struct {
	X1        int   `json:"x1"`
	Y1        int   `json:"y1"`
	X2        int   `json:"x2"`
	Y2        int   `json:"y2"`
	Inclusive *bool `json:"inclusive"`
	Limit     int   `json:"limit"`
}

type pixelResult struct {
	X     int16      `json:"x"`
	Y     int16      `json:"y"`
	Color geom.Color `json:"color"`
	Hex   string     `json:"hex"`
}

func (s *Server) handleRangePixels(args json.RawMessage) (any, error) {
	var a rangePixelsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Limit <= 0 {
		a.Limit = 10000
	}
	lo, err := toPoint(a.X1, a.Y1)
	if err != nil {
		return nil, err
	}
	hi, err := toPoint(a.X2, a.Y2)
	if err != nil {
		return nil, err
	}
	r := geom.Through(lo, hi)
	if a.Inclusive != nil && !*a.Inclusive {
		r = geom.Between(lo, hi)
	}

	pixels := []pixelResult{}
	truncated := false
	for p, c := range s.canvas.RangePixels(r) {
		if len(pixels) == a.Limit {
			truncated = true
			break
		}
		pixels = append(pixels, pixelResult{X: p.X, Y: p.Y, Color: c, Hex: c.Hex()})
	}
	return map[string]any{
		"pixels":    pixels,
		"count":     len(pixels),
		"truncated": truncated,
	}, nil
}

// === History Handlers ===

func (s *Server) handleVersion() (any, error) {
	img := s.canvas.State()
	anchors, metadata := 0, 0
	for range img.Anchors() {
		anchors++
	}
	for range img.MetadataItems() {
		metadata++
	}
	result := map[string]any{
		"version":   s.canvas.Version(),
		"pixels":    img.Len(),
		"anchors":   anchors,
		"metadata":  metadata,
		"snapshots": s.canvas.SnapshotCount(),
		"bounds":    nil,
	}
	if lo, hi, ok := img.Bounds(); ok {
		result["bounds"] = detection.Bounds{Min: lo, Max: hi}
	}
	return result, nil
}

type appliedCommandsArgs struct {
	Since uint64 `json:"since"`
	Limit int    `json:"limit"`
}

func (s *Server) handleAppliedCommands(args json.RawMessage) (any, error) {
	var a appliedCommandsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Limit <= 0 {
		a.Limit = 1000
	}
	cmds := s.canvas.AppliedCommands(history.Version(a.Since))
	truncated := len(cmds) > a.Limit
	if truncated {
		cmds = cmds[:a.Limit]
	}
	if cmds == nil {
		cmds = []canvas.Command{}
	}
	return map[string]any{
		"since":     a.Since,
		"version":   s.canvas.Version(),
		"commands":  cmds,
		"truncated": truncated,
	}, nil
}

type diffArgs struct {
	Version uint64 `json:"version"`
}

func (s *Server) handleDiff(args json.RawMessage) (any, error) {
	var a diffArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	patch, ok := s.canvas.Diff(history.Version(a.Version))
	if !ok {
		return nil, fmt.Errorf("%w: %d (latest is %d)", ErrNotRestorable, a.Version, s.canvas.Version())
	}
	return map[string]any{
		"from":           a.Version,
		"to":             s.canvas.Version(),
		"patch":          patch,
		"changed_points": patch.Command().PointCount(),
	}, nil
}

// === Anchor Handlers ===

type anchorResult struct {
	Name  string     `json:"name"`
	Point geom.Point `json:"point"`
}

func (s *Server) handleAnchors() (any, error) {
	anchors := []anchorResult{}
	for name, p := range s.canvas.Anchors() {
		anchors = append(anchors, anchorResult{Name: name, Point: p})
	}
	return map[string]any{"anchors": anchors}, nil
}

type setAnchorArgs struct {
	Name string `json:"name"`
	X    *int   `json:"x"`
	Y    *int   `json:"y"`
}

func (s *Server) handleSetAnchor(args json.RawMessage) (any, error) {
	var a setAnchorArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	switch {
	case a.X == nil && a.Y == nil:
		return s.applyResult(canvas.ClearAnchor(a.Name))
	case a.X == nil || a.Y == nil:
		return nil, fmt.Errorf("x and y must be given together")
	}
	p, err := toPoint(*a.X, *a.Y)
	if err != nil {
		return nil, err
	}
	return s.applyResult(canvas.SetAnchor(a.Name, p))
}

func (s *Server) anchor(name string) (geom.Point, error) {
	p, ok := s.canvas.State().Anchor(name)
	if !ok {
		return geom.Point{}, fmt.Errorf("%w: %q", ErrUnknownAnchor, name)
	}
	return p, nil
}

type measureArgs struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (s *Server) handleMeasure(args json.RawMessage) (any, error) {
	var a measureArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	from, err := s.anchor(a.From)
	if err != nil {
		return nil, err
	}
	to, err := s.anchor(a.To)
	if err != nil {
		return nil, err
	}
	return imaging.MeasureDistance(from, to), nil
}

type checkAlignmentArgs struct {
	Anchors   []string `json:"anchors"`
	Tolerance *int     `json:"tolerance"`
}

func (s *Server) handleCheckAlignment(args json.RawMessage) (any, error) {
	var a checkAlignmentArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	tolerance := 2
	if a.Tolerance != nil {
		tolerance = *a.Tolerance
	}
	points := make([]geom.Point, 0, len(a.Anchors))
	for _, name := range a.Anchors {
		p, err := s.anchor(name)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return imaging.CheckAlignment(points, tolerance), nil
}

// === Metadata Handlers ===

type metadataArgs struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

func (s *Server) handleMetadata(args json.RawMessage) (any, error) {
	var a metadataArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img := s.canvas.State()

	if a.Name == "" {
		if a.Path != "" {
			return nil, fmt.Errorf("path requires name")
		}
		all := map[string]json.RawMessage{}
		for k, v := range img.MetadataItems() {
			all[k] = v
		}
		return map[string]any{"metadata": all}, nil
	}

	value, ok := img.Metadata(a.Name)
	if !ok {
		return map[string]any{"name": a.Name, "exists": false, "value": nil}, nil
	}
	if a.Path == "" {
		return map[string]any{"name": a.Name, "exists": true, "value": value}, nil
	}

	res := gjson.GetBytes(value, a.Path)
	result := map[string]any{"name": a.Name, "path": a.Path, "exists": res.Exists(), "value": nil}
	if res.Exists() {
		result["value"] = json.RawMessage(res.Raw)
	}
	return result, nil
}

type putArgs struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

func (s *Server) handlePut(args json.RawMessage) (any, error) {
	var a putArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if len(a.Value) > 0 && !gjson.ValidBytes(a.Value) {
		return nil, fmt.Errorf("value is not valid JSON")
	}
	return s.applyResult(canvas.PutRaw(a.Name, a.Value))
}

type putPathArgs struct {
	Name  string          `json:"name"`
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value"`
}

func (s *Server) handlePutPath(args json.RawMessage) (any, error) {
	var a putPathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Name == "" || a.Path == "" {
		return nil, fmt.Errorf("name and path are required")
	}

	current, ok := s.canvas.State().Metadata(a.Name)
	if !ok {
		current = json.RawMessage("{}")
	}

	var (
		updated []byte
		err     error
	)
	if len(a.Value) == 0 || string(a.Value) == "null" {
		updated, err = sjson.DeleteBytes(current, a.Path)
	} else {
		updated, err = sjson.SetRawBytes(current, a.Path, a.Value)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update %s at %q: %w", a.Name, a.Path, err)
	}
	return s.applyResult(canvas.PutRaw(a.Name, updated))
}

// === Rendering Handlers ===

type renderArgs struct {
	X1         *int    `json:"x1"`
	Y1         *int    `json:"y1"`
	X2         *int    `json:"x2"`
	Y2         *int    `json:"y2"`
	Version    *uint64 `json:"version"`
	Scale      int     `json:"scale"`
	Grid       int     `json:"grid"`
	GridColor  string  `json:"grid_color"`
	GridLabels bool    `json:"grid_labels"`
}

// renderRange is the rectangle given by the corners, or everything when
// none are given.
func (a *renderArgs) renderRange() (geom.Range, error) {
	if a.X1 == nil && a.Y1 == nil && a.X2 == nil && a.Y2 == nil {
		return geom.All(), nil
	}
	if a.X1 == nil || a.Y1 == nil || a.X2 == nil || a.Y2 == nil {
		return geom.Range{}, fmt.Errorf("x1, y1, x2 and y2 must be given together")
	}
	lo, err := toPoint(*a.X1, *a.Y1)
	if err != nil {
		return geom.Range{}, err
	}
	hi, err := toPoint(*a.X2, *a.Y2)
	if err != nil {
		return geom.Range{}, err
	}
	return geom.Through(lo, hi), nil
}

func (s *Server) handleRender(args json.RawMessage) (any, error) {
	var a renderArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = s.render.Scale
	}
	r, err := a.renderRange()
	if err != nil {
		return nil, err
	}
	img, version, err := s.stateAt(a.Version)
	if err != nil {
		return nil, err
	}

	frame, err := imaging.Render(img, r, s.render.MaxDimension)
	if err != nil {
		return nil, err
	}
	scaled, err := imaging.Scale(frame.Image, a.Scale, s.render.MaxDimension)
	if err != nil {
		return nil, err
	}
	if a.Grid > 0 {
		opts := imaging.GridOptions{Spacing: a.Grid, Color: imaging.DefaultGridColor, Labels: a.GridLabels}
		if a.GridColor != "" {
			if opts.Color, err = geom.ParseHex(a.GridColor); err != nil {
				return nil, err
			}
		}
		scaled = imaging.GridOverlay(scaled, frame.Origin, a.Scale, opts)
	}
	data, err := imaging.EncodePNG(scaled, 1, 0)
	if err != nil {
		return nil, err
	}

	return &imageResult{
		png: data,
		info: map[string]any{
			"version": version,
			"origin":  frame.Origin,
			"width":   frame.Width(),
			"height":  frame.Height(),
			"scale":   a.Scale,
		},
	}, nil
}

type exportArgs struct {
	Path    string  `json:"path"`
	Version *uint64 `json:"version"`
	Scale   int     `json:"scale"`
}

func (s *Server) handleExport(args json.RawMessage) (any, error) {
	var a exportArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if a.Scale == 0 {
		a.Scale = s.render.Scale
	}
	img, version, err := s.stateAt(a.Version)
	if err != nil {
		return nil, err
	}
	frame, err := imaging.RenderAll(img, s.render.MaxDimension)
	if err != nil {
		return nil, err
	}
	if err := imaging.Export(a.Path, frame.Image, a.Scale, s.render.MaxDimension); err != nil {
		return nil, err
	}
	return map[string]any{
		"path":    a.Path,
		"version": version,
		"origin":  frame.Origin,
		"width":   frame.Width() * a.Scale,
		"height":  frame.Height() * a.Scale,
	}, nil
}

type importArgs struct {
	Path            string `json:"path"`
	X               int    `json:"x"`
	Y               int    `json:"y"`
	SkipTransparent *bool  `json:"skip_transparent"`
}

func (s *Server) handleImport(args json.RawMessage) (any, error) {
	var a importArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	skip := true
	if a.SkipTransparent != nil {
		skip = *a.SkipTransparent
	}
	origin, err := toPoint(a.X, a.Y)
	if err != nil {
		return nil, err
	}

	info, err := imaging.DescribeSource(s.cache, a.Path)
	if err != nil {
		return nil, err
	}
	src, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	cmd, err := imaging.Import(src, origin, skip)
	if err != nil {
		return nil, err
	}
	res, err := s.applyResult(cmd)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"changed": res.Changed,
		"version": res.Version,
		"source":  info,
		"points":  cmd.PointCount(),
	}, nil
}

// === Color Analysis Handlers ===

type paletteArgs struct {
	Count   int     `json:"count"`
	Version *uint64 `json:"version"`
}

func (s *Server) handlePalette(args json.RawMessage) (any, error) {
	var a paletteArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Count <= 0 {
		a.Count = 8
	}
	img, version, err := s.stateAt(a.Version)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"version": version,
		"colors":  imaging.Palette(img, a.Count),
	}, nil
}

type quantizeArgs struct {
	Colors []string `json:"colors"`
	Count  int      `json:"count"`
}

func (s *Server) handleQuantize(args json.RawMessage) (any, error) {
	var a quantizeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Count <= 0 {
		a.Count = 8
	}

	var palette []geom.Color
	for _, hex := range a.Colors {
		c, err := geom.ParseHex(hex)
		if err != nil {
			return nil, err
		}
		palette = append(palette, c)
	}
	if len(a.Colors) == 0 {
		for _, f := range imaging.Palette(s.canvas.State(), a.Count) {
			palette = append(palette, f.Color)
		}
	}
	if len(palette) == 0 {
		return nil, fmt.Errorf("palette is empty")
	}

	patch := imaging.Quantize(s.canvas.State(), palette)
	res, err := s.applyResult(patch.Command())
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"changed":  res.Changed,
		"version":  res.Version,
		"palette":  palette,
		"remapped": patch.Command().PointCount(),
	}, nil
}

type regionsArgs struct {
	Connectivity int     `json:"connectivity"`
	MinPixels    int     `json:"min_pixels"`
	Limit        int     `json:"limit"`
	Version      *uint64 `json:"version"`
}

func (s *Server) handleRegions(args json.RawMessage) (any, error) {
	var a regionsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Connectivity == 0 {
		a.Connectivity = 4
	}
	if a.MinPixels <= 0 {
		a.MinPixels = 1
	}
	if a.Limit <= 0 {
		a.Limit = 100
	}
	img, version, err := s.stateAt(a.Version)
	if err != nil {
		return nil, err
	}
	regions, err := detection.FindRegions(img, a.Connectivity, a.MinPixels)
	if err != nil {
		return nil, err
	}
	total := len(regions)
	if total > a.Limit {
		regions = regions[:a.Limit]
	}
	if regions == nil {
		regions = []detection.Region{}
	}
	return map[string]any{
		"version": version,
		"regions": regions,
		"count":   total,
	}, nil
}
