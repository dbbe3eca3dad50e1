package server

import "github.com/modelcontextprotocol/go-sdk/mcp"

func inputSchema(properties map[string]any, required ...string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func prop(typ, description string) map[string]any {
	return map[string]any{"type": typ, "description": description}
}

var (
	pointsProp = map[string]any{
		"type":        "array",
		"description": "Canvas points as [x, y] pairs (signed 16-bit)",
		"items": map[string]any{
			"type":     "array",
			"items":    map[string]any{"type": "integer"},
			"minItems": 2,
			"maxItems": 2,
		},
	}
	versionProp = prop("integer", "Canvas version to use (default: current)")
	scaleProp   = prop("integer", "Integer upscale factor; each canvas point becomes a scale x scale block (default: from config)")
)

// rectProps are the optional corners of an inclusive rectangle.
func rectProps(props map[string]any) map[string]any {
	props["x1"] = prop("integer", "Left edge X coordinate")
	props["y1"] = prop("integer", "Top edge Y coordinate")
	props["x2"] = prop("integer", "Right edge X coordinate")
	props["y2"] = prop("integer", "Bottom edge Y coordinate")
	return props
}

// ToolDefinitions returns every canvas tool.
func ToolDefinitions() []*mcp.Tool {
	return []*mcp.Tool{
		// Editing
		{
			Name:        "canvas_apply",
			Description: `Apply one command in wire form: {"patch":[{"color":[r,g,b(,a)],"points":[[x,y]]},{"points":[[x,y]]}]}, {"anchor":{"name":"n","point":[x,y]|null}} or {"put":{"name":"n","value":<json>}}. Returns whether the canvas changed and the new version.`,
			InputSchema: inputSchema(map[string]any{
				"command": prop("object", "Command with exactly one of patch, anchor or put"),
			}, "command"),
		},
		{
			Name:        "canvas_draw",
			Description: "Paint points with one color. Repainting a point with its current color is not a change.",
			InputSchema: inputSchema(map[string]any{
				"color":  prop("string", "Hex color #RRGGBB or #RRGGBBAA"),
				"points": pointsProp,
			}, "color", "points"),
		},
		{
			Name:        "canvas_erase",
			Description: "Unset points, making them transparent.",
			InputSchema: inputSchema(map[string]any{
				"points": pointsProp,
			}, "points"),
		},
		{
			Name:        "canvas_revert",
			Description: "Restore every pixel to how it was at an earlier version. Anchors and metadata are left alone. Recorded as a new version.",
			InputSchema: inputSchema(map[string]any{
				"version": prop("integer", "Version to return to"),
			}, "version"),
		},

		// Reading pixels
		{
			Name:        "canvas_get_pixel",
			Description: "Get the color at one canvas point, or null when unset.",
			InputSchema: inputSchema(map[string]any{
				"x": prop("integer", "X coordinate"),
				"y": prop("integer", "Y coordinate"),
			}, "x", "y"),
		},
		{
			Name:        "canvas_range_pixels",
			Description: "List the set pixels inside a rectangle in row-major order (y, then x).",
			InputSchema: inputSchema(rectProps(map[string]any{
				"inclusive": prop("boolean", "Include the x2/y2 edge (default: true)"),
				"limit":     prop("integer", "Maximum pixels to return (default: 10000)"),
			}), "x1", "y1", "x2", "y2"),
		},

		// History
		{
			Name:        "canvas_version",
			Description: "Get the current version and canvas statistics.",
			InputSchema: inputSchema(map[string]any{}),
		},
		{
			Name:        "canvas_applied_commands",
			Description: "List the commands recorded after a version. Empty when history is not kept.",
			InputSchema: inputSchema(map[string]any{
				"since": prop("integer", "Version to list commands after (default: 0)"),
				"limit": prop("integer", "Maximum commands to return (default: 1000)"),
			}),
		},
		{
			Name:        "canvas_diff",
			Description: "Get the minimal patch that turns the canvas at a version into the current canvas. Fails when the version cannot be restored.",
			InputSchema: inputSchema(map[string]any{
				"version": prop("integer", "Version to diff from"),
			}, "version"),
		},

		// Anchors
		{
			Name:        "canvas_anchors",
			Description: "List named anchor points, sorted by name.",
			InputSchema: inputSchema(map[string]any{}),
		},
		{
			Name:        "canvas_set_anchor",
			Description: "Place a named anchor at (x, y), or remove it when x and y are omitted.",
			InputSchema: inputSchema(map[string]any{
				"name": prop("string", "Anchor name"),
				"x":    prop("integer", "X coordinate"),
				"y":    prop("integer", "Y coordinate"),
			}, "name"),
		},
		{
			Name:        "canvas_measure",
			Description: "Measure distance and angle between two anchors.",
			InputSchema: inputSchema(map[string]any{
				"from": prop("string", "Starting anchor name"),
				"to":   prop("string", "Ending anchor name"),
			}, "from", "to"),
		},
		{
			Name:        "canvas_check_alignment",
			Description: "Check whether anchors share a row or column.",
			InputSchema: inputSchema(map[string]any{
				"anchors": map[string]any{
					"type":        "array",
					"description": "Anchor names to check",
					"items":       map[string]any{"type": "string"},
				},
				"tolerance": prop("integer", "Allowed standard deviation in points (default: 2)"),
			}, "anchors"),
		},

		// Metadata
		{
			Name:        "canvas_metadata",
			Description: "Read metadata. Without a name, returns every entry. With a path, queries inside the value (gjson syntax, e.g. 'layers.0.name').",
			InputSchema: inputSchema(map[string]any{
				"name": prop("string", "Metadata key"),
				"path": prop("string", "Path inside the value"),
			}),
		},
		{
			Name:        "canvas_put",
			Description: "Store a JSON value under a metadata key. A null value removes the key.",
			InputSchema: inputSchema(map[string]any{
				"name":  prop("string", "Metadata key"),
				"value": map[string]any{"description": "Any JSON value"},
			}, "name", "value"),
		},
		{
			Name:        "canvas_put_path",
			Description: "Set or delete one field inside a metadata value (sjson path syntax). A null value deletes the field.",
			InputSchema: inputSchema(map[string]any{
				"name":  prop("string", "Metadata key"),
				"path":  prop("string", "Path inside the value, e.g. 'layers.0.name'"),
				"value": map[string]any{"description": "Any JSON value"},
			}, "name", "path", "value"),
		},

		// Rendering
		{
			Name:        "canvas_render",
			Description: "Render the canvas, or a rectangle of it, as a PNG image. Unset points are transparent.",
			InputSchema: inputSchema(rectProps(map[string]any{
				"version":     versionProp,
				"scale":       scaleProp,
				"grid":        prop("integer", "Draw a coordinate grid every N canvas points (default: off)"),
				"grid_color":  prop("string", "Grid line color as hex (default: #FF000080)"),
				"grid_labels": prop("boolean", "Label grid crossings with canvas coordinates (default: false)"),
			})),
		},
		{
			Name:        "canvas_export",
			Description: "Write the canvas to a PNG file.",
			InputSchema: inputSchema(map[string]any{
				"path":    prop("string", "Absolute path of the PNG to write"),
				"version": versionProp,
				"scale":   scaleProp,
			}, "path"),
		},
		{
			Name:        "canvas_import",
			Description: "Draw an image file (PNG, JPEG, GIF, BMP, TIFF) onto the canvas with its top-left pixel at (x, y).",
			InputSchema: inputSchema(map[string]any{
				"path":             prop("string", "Absolute path to the image file"),
				"x":                prop("integer", "Canvas X of the image's left edge (default: 0)"),
				"y":                prop("integer", "Canvas Y of the image's top edge (default: 0)"),
				"skip_transparent": prop("boolean", "Leave fully transparent pixels unset (default: true)"),
			}, "path"),
		},

		// Color analysis
		{
			Name:        "canvas_palette",
			Description: "List the canvas colors, most frequent first.",
			InputSchema: inputSchema(map[string]any{
				"count":   prop("integer", "Maximum colors to return (default: 8)"),
				"version": versionProp,
			}),
		},
		{
			Name:        "canvas_quantize",
			Description: "Repaint every pixel with the perceptually nearest color from a palette. Without colors, the canvas's own most frequent colors are used.",
			InputSchema: inputSchema(map[string]any{
				"colors": map[string]any{
					"type":        "array",
					"description": "Palette as hex colors",
					"items":       map[string]any{"type": "string"},
				},
				"count": prop("integer", "Palette size when colors is omitted (default: 8)"),
			}),
		},
		{
			Name:        "canvas_regions",
			Description: "Find connected groups of same-colored pixels, largest first.",
			InputSchema: inputSchema(map[string]any{
				"connectivity": prop("integer", "4 (edges) or 8 (edges and diagonals) (default: 4)"),
				"min_pixels":   prop("integer", "Smallest region to report (default: 1)"),
				"limit":        prop("integer", "Maximum regions to return (default: 100)"),
				"version":      versionProp,
			}),
		},
	}
}
