package render

import (
	"encoding/json"
	"fmt"

	"github.com/TFMV/nodefield/models"
)

// HTMLRenderer outputs a live viewer page
type HTMLRenderer struct{}

// Name returns the name of the renderer
func (r *HTMLRenderer) Name() string {
	return "HTML Renderer"
}

// Description returns a description of the renderer
func (r *HTMLRenderer) Description() string {
	return "Renders a full-page canvas that draws the given frame and then follows the frame stream"
}

// Render creates a self-contained HTML page seeded with the frame
func (r *HTMLRenderer) Render(frame *models.FrameSnapshot, options *OutputOptions) ([]byte, error) {
	opts, err := options.normalized()
	if err != nil {
		return nil, err
	}
	frameJSON, err := json.Marshal(frame)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	streamURL, err := json.Marshal(opts.StreamURL)
	if err != nil {
		return nil, fmt.Errorf("failed to encode stream url: %w", err)
	}

	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="theme-color" content="%s">
  <title>nodefield</title>
  <style>
    html, body { margin: 0; height: 100%%; background: %s; overflow: hidden; }
    canvas { position: fixed; inset: 0; width: 100%%; height: 100%%; pointer-events: none; }
  </style>
</head>
<body>
<canvas id="field"></canvas>
<script>
const camera = { distance: %g, fov: %g };
const nodeRadius = %g, edgeWidth = %g, edgeAlpha = %g;
const streamURL = %s;
const canvas = document.getElementById("field");
const ctx = canvas.getContext("2d");

function project(p, w, h) {
  const depth = camera.distance - p.z;
  if (depth <= 0) return null;
  const focal = (h / 2) / Math.tan(camera.fov * Math.PI / 360);
  return { x: w / 2 + p.x * focal / depth, y: h / 2 - p.y * focal / depth, depth: depth };
}

function draw(frame) {
  const w = canvas.width = window.innerWidth;
  const h = canvas.height = window.innerHeight;
  const c = frame.color;
  const color = "hsl(" + c.h + ", " + c.s + "%%, " + c.l + "%%)";
  ctx.clearRect(0, 0, w, h);

  ctx.strokeStyle = color;
  ctx.globalAlpha = edgeAlpha;
  ctx.lineWidth = edgeWidth;
  ctx.beginPath();
  for (const seg of frame.edge_segments || []) {
    const a = project(seg.from, w, h), b = project(seg.to, w, h);
    if (!a || !b) continue;
    ctx.moveTo(a.x, a.y);
    ctx.lineTo(b.x, b.y);
  }
  ctx.stroke();

  ctx.globalAlpha = 1;
  ctx.fillStyle = color;
  for (const p of frame.positions || []) {
    const q = project(p, w, h);
    if (!q) continue;
    const r = nodeRadius * Math.max(0.2, Math.min(2, camera.distance / q.depth));
    ctx.beginPath();
    ctx.arc(q.x, q.y, r, 0, 2 * Math.PI);
    ctx.fill();
  }
}

let latest = %s;
draw(latest);
window.addEventListener("resize", () => draw(latest));

const source = new EventSource(streamURL);
source.onmessage = (ev) => {
  latest = JSON.parse(ev.data);
  requestAnimationFrame(() => draw(latest));
};
window.addEventListener("beforeunload", () => source.close());
</script>
</body>
</html>
`, frame.Color.CSS(), opts.Background, opts.Camera.Distance, opts.Camera.FOV,
		opts.NodeRadius, opts.EdgeWidth, opts.EdgeAlpha, streamURL, frameJSON)

	return []byte(html), nil
}
