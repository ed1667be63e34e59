package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/TFMV/nodefield/models"
)

// OutputOptions defines rendering configuration options
type OutputOptions struct {
	Format     string  // Output format (svg, ascii, json, dot, html)
	Width      float64 // Width of the output
	Height     float64 // Height of the output
	Background string  // Background color
	NodeRadius float64 // Node radius at the camera's focal depth
	EdgeWidth  float64 // Edge stroke width
	EdgeAlpha  float64 // Edge opacity
	Timestamp  bool    // Include frame time in the output
	StreamURL  string  // Frame stream the html viewer subscribes to
	Camera     Camera
}

// Renderer interface defines methods that all rendering backends must implement
type Renderer interface {
	// Render creates a visualization of one frame using the provided options
	Render(frame *models.FrameSnapshot, options *OutputOptions) ([]byte, error)

	// Name returns the name of the renderer
	Name() string

	// Description returns a description of the renderer
	Description() string
}

// NewDefaultOptions creates a default set of output options
func NewDefaultOptions(format string) *OutputOptions {
	return &OutputOptions{
		Format:     format,
		Width:      800,
		Height:     600,
		Background: "#000000",
		NodeRadius: 4,
		EdgeWidth:  1,
		EdgeAlpha:  0.6,
		Timestamp:  false,
		StreamURL:  "/stream",
		Camera:     DefaultCamera(),
	}
}

// normalized returns a copy of the options that is safe to render with.
// A camera without a field of view or distance is replaced by DefaultCamera.
func (o *OutputOptions) normalized() (*OutputOptions, error) {
	if o == nil {
		return nil, fmt.Errorf("output options are required")
	}
	if o.Width <= 0 || o.Height <= 0 || math.IsNaN(o.Width) || math.IsNaN(o.Height) {
		return nil, fmt.Errorf("output size must be positive, got %gx%g", o.Width, o.Height)
	}
	opts := *o
	if opts.Camera.FOV <= 0 || opts.Camera.FOV >= 180 || opts.Camera.Distance <= 0 {
		opts.Camera = DefaultCamera()
	}
	return &opts, nil
}

// GetRenderer returns the appropriate renderer based on format
func GetRenderer(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "svg":
		return &SVGRenderer{}, nil
	case "ascii":
		return &ASCIIRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "dot":
		return &DOTRenderer{}, nil
	case "html":
		return &HTMLRenderer{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// Formats lists the names accepted by GetRenderer
func Formats() []string {
	return []string{"svg", "ascii", "json", "dot", "html"}
}

// SVGRenderer outputs SVG format
type SVGRenderer struct{}

// Name returns the name of the renderer
func (r *SVGRenderer) Name() string {
	return "SVG Renderer"
}

// Description returns a description of the renderer
func (r *SVGRenderer) Description() string {
	return "Renders a frame as perspective-projected Scalable Vector Graphics"
}

// Render creates an SVG representation of the frame
func (r *SVGRenderer) Render(frame *models.FrameSnapshot, options *OutputOptions) ([]byte, error) {
	options, err := options.normalized()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	color := frame.Color.Hex()
	cam := options.Camera

	fmt.Fprintf(&buf, `<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<svg width="%g" height="%g" viewBox="0 0 %g %g" xmlns="http://www.w3.org/2000/svg">
<title>nodefield: %d nodes, %d edges</title>
<rect width="100%%" height="100%%" fill="%s"/>
`, options.Width, options.Height, options.Width, options.Height,
		frame.NodeCount(), len(frame.Edges), options.Background)

	// Edges first so nodes are drawn on top
	fmt.Fprintf(&buf, "<g stroke=\"%s\" stroke-width=\"%g\" stroke-opacity=\"%g\">\n",
		color, options.EdgeWidth, options.EdgeAlpha)
	for _, seg := range frame.EdgeSegments {
		x1, y1, _, ok1 := cam.Project(seg.From, options.Width, options.Height)
		x2, y2, _, ok2 := cam.Project(seg.To, options.Width, options.Height)
		if !ok1 || !ok2 {
			continue
		}
		fmt.Fprintf(&buf, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\"/>\n", x1, y1, x2, y2)
	}
	buf.WriteString("</g>\n")

	fmt.Fprintf(&buf, "<g fill=\"%s\">\n", color)
	for _, p := range frame.Positions {
		x, y, depth, ok := cam.Project(p, options.Width, options.Height)
		if !ok {
			continue
		}
		radius := options.NodeRadius * cam.depthFactor(depth)
		fmt.Fprintf(&buf, "<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\"/>\n", x, y, radius)
	}
	buf.WriteString("</g>\n")

	if options.Timestamp {
		fmt.Fprintf(&buf, "<text x=\"5\" y=\"%g\" font-family=\"sans-serif\" font-size=\"8\" fill=\"#808080\">%s</text>\n",
			options.Height-5, frameTime(frame).Format("2006-01-02 15:04:05.000"))
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

// ASCIIRenderer outputs ASCII art format
type ASCIIRenderer struct{}

// Name returns the name of the renderer
func (r *ASCIIRenderer) Name() string {
	return "ASCII Renderer"
}

// Description returns a description of the renderer
func (r *ASCIIRenderer) Description() string {
	return "Renders a frame as ASCII art for terminal output"
}

// Render creates an ASCII representation of the frame
func (r *ASCIIRenderer) Render(frame *models.FrameSnapshot, options *OutputOptions) ([]byte, error) {
	options, err := options.normalized()
	if err != nil {
		return nil, err
	}

	width := max(int(options.Width/10), 40)
	height := max(int(options.Height/20), 20)

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = ' '
		}
	}

	for i := 0; i < width; i++ {
		grid[0][i] = '-'
		grid[height-1][i] = '-'
	}
	for i := 0; i < height; i++ {
		grid[i][0] = '|'
		grid[i][width-1] = '|'
	}
	grid[0][0] = '+'
	grid[0][width-1] = '+'
	grid[height-1][0] = '+'
	grid[height-1][width-1] = '+'

	toCell := func(p models.Vec3) (int, int, bool) {
		x, y, _, ok := options.Camera.Project(p, options.Width, options.Height)
		if !ok {
			return 0, 0, false
		}
		col := clamp(int(x*float64(width-2)/options.Width)+1, 1, width-2)
		row := clamp(int(y*float64(height-2)/options.Height)+1, 1, height-2)
		return col, row, true
	}

	for _, seg := range frame.EdgeSegments {
		x1, y1, ok1 := toCell(seg.From)
		x2, y2, ok2 := toCell(seg.To)
		if ok1 && ok2 {
			drawLine(grid, x1, y1, x2, y2)
		}
	}

	for _, p := range frame.Positions {
		if x, y, ok := toCell(p); ok {
			grid[y][x] = nodeSymbol
		}
	}

	if options.Timestamp && height > 4 {
		timeStr := frameTime(frame).Format("15:04:05.000")
		for i, c := range timeStr {
			if i+2 < width-1 {
				grid[height-2][i+2] = c
			}
		}
	}

	var result strings.Builder
	for _, row := range grid {
		result.WriteString(string(row))
		result.WriteRune('\n')
	}
	return []byte(result.String()), nil
}

// JSONRenderer outputs raw JSON format
type JSONRenderer struct{}

// Name returns the name of the renderer
func (r *JSONRenderer) Name() string {
	return "JSON Renderer"
}

// Description returns a description of the renderer
func (r *JSONRenderer) Description() string {
	return "Renders a frame as JSON for machine consumption or custom renderers"
}

// Render creates a JSON representation of the frame
func (r *JSONRenderer) Render(frame *models.FrameSnapshot, options *OutputOptions) ([]byte, error) {
	return json.MarshalIndent(frame, "", "  ")
}

// DOTRenderer outputs Graphviz DOT format
type DOTRenderer struct{}

// Name returns the name of the renderer
func (r *DOTRenderer) Name() string {
	return "DOT Renderer"
}

// Description returns a description of the renderer
func (r *DOTRenderer) Description() string {
	return "Renders the frame topology in Graphviz DOT format with pinned positions"
}

// Render creates a DOT representation of the frame
func (r *DOTRenderer) Render(frame *models.FrameSnapshot, options *OutputOptions) ([]byte, error) {
	options, err := options.normalized()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	color := frame.Color.Hex()

	// Pin positions inside the page: the x/y extent is stretched to the
	// output size in points, keeping the aspect ratio of the field
	lo, hi := frame.Extent()
	span := math.Max(hi.X-lo.X, hi.Y-lo.Y)
	fit := 1.0
	if span > 0 {
		fit = math.Min(options.Width, options.Height) / span
	}

	buf.WriteString("graph G {\n")
	fmt.Fprintf(&buf, "  graph [bgcolor=\"%s\", size=\"%g,%g\"];\n",
		options.Background, options.Width/72.0, options.Height/72.0)
	fmt.Fprintf(&buf, "  node [shape=point, color=\"%s\"];\n", color)
	fmt.Fprintf(&buf, "  edge [color=\"%s\"];\n", color)

	for id, p := range frame.Positions {
		fmt.Fprintf(&buf, "  n%d [pos=\"%.2f,%.2f!\"];\n", id, (p.X-lo.X)*fit, (p.Y-lo.Y)*fit)
	}
	for _, e := range frame.Edges {
		fmt.Fprintf(&buf, "  n%d -- n%d;\n", e.A, e.B)
	}

	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// Helper functions

const nodeSymbol = 'O'

func frameTime(frame *models.FrameSnapshot) time.Time {
	ms := math.Floor(frame.Time)
	return time.UnixMilli(int64(ms))
}

// Clamp a value between lo and hi
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// Draw a line on the ASCII grid using Bresenham's algorithm
func drawLine(grid [][]rune, x1, y1, x2, y2 int) {
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx := 1
	if x1 >= x2 {
		sx = -1
	}
	sy := 1
	if y1 >= y2 {
		sy = -1
	}
	err := dx + dy

	for {
		if x1 >= 0 && x1 < len(grid[0]) && y1 >= 0 && y1 < len(grid) && grid[y1][x1] != nodeSymbol {
			grid[y1][x1] = '·'
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x1 += sx
		}
		if e2 <= dx {
			err += dx
			y1 += sy
		}
	}
}

// Absolute value of an integer
func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
