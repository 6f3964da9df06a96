// Package export renders static snapshots of a settled constellation layout.
// SVG output goes through svgo; PNG output goes through gg with the bundled
// bitmap font so exports work without system font discovery.
package export

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/constellation/pkg/graph"
)

// SnapshotOptions controls snapshot export behaviour.
type SnapshotOptions struct {
	Path   string       // Output path; format inferred from extension when Format empty
	Format string       // "svg" or "png" (case-insensitive). If empty, inferred from Path.
	Title  string       // Optional title rendered in the header block
	Scene  *graph.Scene // Layout to render, typically settled first
}

// SaveSnapshot renders a static snapshot (SVG or PNG) of the given layout.
// Node positions are taken as-is; callers that want a tidy image should run
// the simulation to rest before exporting.
func SaveSnapshot(opts SnapshotOptions) error {
	if opts.Scene == nil || len(opts.Scene.Nodes) == 0 {
		return fmt.Errorf("no nodes to export")
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		default:
			format = "svg" // safe default
			if opts.Path != "" && filepath.Ext(opts.Path) == "" {
				opts.Path = opts.Path + ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	layout := buildSnapshotLayout(opts)

	switch format {
	case "svg":
		return renderSVG(opts.Path, layout)
	case "png":
		return renderPNG(opts.Path, layout)
	default:
		return fmt.Errorf("unhandled format %q", format)
	}
}

// --- layout preparation ------------------------------------------------------

type snapshotNode struct {
	ID     string
	Label  string
	X, Y   float64
	R      float64
	Fill   color.RGBA
	Anchor bool
}

type snapshotEdge struct {
	X1, Y1 float64
	X2, Y2 float64
}

type snapshotLayout struct {
	Nodes   []snapshotNode
	Edges   []snapshotEdge
	Rings   []float64 // guide circle radii around the center
	CX, CY  float64
	Width   int
	Height  int
	Summary snapshotSummary
}

type snapshotSummary struct {
	Title     string
	NodeCount int
	EdgeCount int
}

const snapshotHeader = 72.0

func buildSnapshotLayout(opts SnapshotOptions) snapshotLayout {
	s := opts.Scene

	width := int(s.Width)
	if width < 640 {
		width = 640
	}
	height := int(s.Height + snapshotHeader)
	if height < 480 {
		height = 480
	}

	// Positions shift down by the header height so the header never
	// overlaps the layout.
	offsetY := snapshotHeader

	var edges []snapshotEdge
	for _, l := range s.Links {
		a := s.NodeByID(l.Source)
		b := s.NodeByID(l.Target)
		if a == nil || b == nil {
			continue
		}
		edges = append(edges, snapshotEdge{
			X1: a.Pos.X, Y1: a.Pos.Y + offsetY,
			X2: b.Pos.X, Y2: b.Pos.Y + offsetY,
		})
	}

	var nodes []snapshotNode
	for _, n := range s.Nodes {
		label := ""
		key := ""
		if n.Payload != nil {
			label = truncate(n.Payload.Label(), 28)
			key = n.Payload.ColorKey()
		}
		nodes = append(nodes, snapshotNode{
			ID:     n.ID,
			Label:  label,
			X:      n.Pos.X,
			Y:      n.Pos.Y + offsetY,
			R:      n.CollisionRadius(),
			Fill:   fillFor(n.Kind, key),
			Anchor: n.Kind == graph.KindAnchor,
		})
	}

	var rings []float64
	for ring := 1; ring <= s.Rings.MaxRing(); ring++ {
		rings = append(rings, s.Rings.RadiusFor(ring, s.Width, s.Height))
	}

	title := opts.Title
	if strings.TrimSpace(title) == "" {
		title = "Constellation Snapshot"
	}

	return snapshotLayout{
		Nodes:  nodes,
		Edges:  edges,
		Rings:  rings,
		CX:     s.Center.X,
		CY:     s.Center.Y + offsetY,
		Width:  width,
		Height: height,
		Summary: snapshotSummary{
			Title:     title,
			NodeCount: len(nodes),
			EdgeCount: len(edges),
		},
	}
}

// --- palette -----------------------------------------------------------------

var (
	colorBackdrop = color.RGBA{0x1a, 0x1b, 0x26, 0xff}
	colorHeaderBG = color.RGBA{0x24, 0x26, 0x36, 0xff}
	colorRing     = color.RGBA{0x3b, 0x3d, 0x52, 0xff}
	colorEdge     = color.RGBA{0x56, 0x5f, 0x89, 0xff}
	colorStroke   = color.RGBA{0xc0, 0xca, 0xf5, 0xff}
	colorText     = color.RGBA{0xc0, 0xca, 0xf5, 0xff}
	colorSubtle   = color.RGBA{0x78, 0x82, 0xa8, 0xff}

	colorAnchor = color.RGBA{0xe0, 0xaf, 0x68, 0xff}

	nodeFills = map[string]color.RGBA{
		"inner":   color.RGBA{0x7a, 0xa2, 0xf7, 0xff},
		"active":  color.RGBA{0x9e, 0xce, 0x6a, 0xff},
		"dormant": color.RGBA{0x56, 0x5f, 0x89, 0xff},
		"busy":    color.RGBA{0xf7, 0x76, 0x8e, 0xff},
		"steady":  color.RGBA{0x7d, 0xcf, 0xff, 0xff},
		"quiet":   color.RGBA{0x41, 0x4b, 0x68, 0xff},
		"high":    color.RGBA{0xff, 0x9e, 0x64, 0xff},
		"normal":  color.RGBA{0x7a, 0xa2, 0xf7, 0xff},
		"low":     color.RGBA{0x56, 0x5f, 0x89, 0xff},
	}
)

func fillFor(kind graph.NodeKind, key string) color.RGBA {
	if kind == graph.KindAnchor {
		return colorAnchor
	}
	if c, ok := nodeFills[key]; ok {
		return c
	}
	return nodeFills["normal"]
}

// --- rendering ---------------------------------------------------------------

func renderSVG(path string, layout snapshotLayout) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return renderSVGToWriter(file, layout)
}

func renderSVGToWriter(w io.Writer, layout snapshotLayout) error {
	canvas := svg.New(w)
	canvas.Start(layout.Width, layout.Height)
	canvas.Rect(0, 0, layout.Width, layout.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Roundrect(16, 12, layout.Width-32, int(snapshotHeader)-24, 8, 8, fmt.Sprintf("fill:%s", css(colorHeaderBG)))

	canvas.Text(32, 34, layout.Summary.Title,
		fmt.Sprintf("fill:%s;font-size:15px;font-family:monospace;font-weight:bold", css(colorText)))
	canvas.Text(32, 52, fmt.Sprintf("nodes: %d  links: %d", layout.Summary.NodeCount, layout.Summary.EdgeCount),
		fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))

	for _, r := range layout.Rings {
		canvas.Circle(int(layout.CX), int(layout.CY), int(r),
			fmt.Sprintf("fill:none;stroke:%s;stroke-width:1;stroke-dasharray:4 6", css(colorRing)))
	}

	for _, e := range layout.Edges {
		canvas.Line(int(e.X1), int(e.Y1), int(e.X2), int(e.Y2),
			fmt.Sprintf("stroke:%s;stroke-width:1.5", css(colorEdge)))
	}

	for _, n := range layout.Nodes {
		canvas.Circle(int(n.X), int(n.Y), int(n.R),
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1.2", css(n.Fill), css(colorStroke)))
		if n.Label != "" {
			canvas.Text(int(n.X+n.R+6), int(n.Y+4), n.Label,
				fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorText)))
		}
	}

	canvas.End()
	return nil
}

func renderPNG(path string, layout snapshotLayout) error {
	dc := gg.NewContext(layout.Width, layout.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(16, 12, float64(layout.Width)-32, snapshotHeader-24, 8)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)

	dc.SetColor(colorText)
	dc.DrawStringAnchored(layout.Summary.Title, 32, 30, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(fmt.Sprintf("nodes: %d  links: %d", layout.Summary.NodeCount, layout.Summary.EdgeCount), 32, 48, 0, 0.5)

	dc.SetColor(colorRing)
	dc.SetLineWidth(1)
	dc.SetDash(4, 6)
	for _, r := range layout.Rings {
		dc.DrawCircle(layout.CX, layout.CY, r)
		dc.Stroke()
	}
	dc.SetDash()

	dc.SetColor(colorEdge)
	dc.SetLineWidth(1.5)
	for _, e := range layout.Edges {
		dc.DrawLine(e.X1, e.Y1, e.X2, e.Y2)
		dc.Stroke()
	}

	for _, n := range layout.Nodes {
		dc.SetColor(n.Fill)
		dc.DrawCircle(n.X, n.Y, n.R)
		dc.Fill()
		dc.SetColor(colorStroke)
		dc.SetLineWidth(1.2)
		dc.DrawCircle(n.X, n.Y, n.R)
		dc.Stroke()
		if n.Label != "" {
			dc.SetColor(colorText)
			dc.DrawStringAnchored(n.Label, n.X+n.R+6, n.Y, 0, 0.5)
		}
	}

	return dc.SavePNG(path)
}

// --- helpers -----------------------------------------------------------------

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
