package ui

import (
	"math"
	"math/rand/v2"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/constellation/internal/datasource"
	"github.com/vanderheijden86/constellation/pkg/graph"
	"github.com/vanderheijden86/constellation/pkg/model"
)

// Variant selects which entity collection a graph view renders.
type Variant int

const (
	// VariantConnections is the contact network around the owner
	VariantConnections Variant = iota
	// VariantEmail is the category overview with message drill-down
	VariantEmail
)

func (v Variant) String() string {
	if v == VariantEmail {
		return "email"
	}
	return "connections"
}

// ViewState is the drill-down state of one graph view.
type ViewState int

const (
	// StateOverview shows the aggregate-level graph
	StateOverview ViewState = iota
	// StateDetail shows the members of one aggregate
	StateDetail
)

const (
	hoverScale     = 1.5
	wheelZoomStep  = 1.15
	clickSlop      = 4.0 // view units of movement still counted as a click
	nodeHitPadding = 6.0 // extra hit-test clearance so small nodes stay clickable
)

// GraphViewParams collects construction inputs for a GraphView.
type GraphViewParams struct {
	Variant Variant
	Theme   Theme
	Data    *datasource.Dataset
	// Tuning overrides force gains; zero fields keep engine defaults
	Tuning graph.Tuning
	// SettleTicks bounds the pre-paint settle run; 0 uses the engine default
	SettleTicks int
	RingMargin  float64
	MinZoom     float64
	MaxZoom     float64
	// OnSelect fires with the selected id, or "" when selection clears
	OnSelect func(id string)
	Rand     *rand.Rand
}

// GraphView owns one variant's scene, simulation, drill-down state and
// pointer interaction. The bubbletea Model routes messages to the active
// view and composes its Render output into the frame.
type GraphView struct {
	variant     Variant
	theme       Theme
	tuning      graph.Tuning
	settleTicks int
	ringMargin  float64
	onSelect    func(string)
	rng         *rand.Rand

	data *datasource.Dataset

	// cols/rows are the canvas extent in cells; the layout space is the
	// same extent in units (cellUnitsX/Y per cell)
	cols, rows int
	camera     Camera

	state    ViewState
	detailID string

	// overviewStore lives for the whole view; detailStore is created fresh
	// on every drill-down so a detail layout never leaks into another
	overviewStore *graph.PositionStore
	detailStore   *graph.PositionStore

	sim *graph.Sim

	hoverID    string
	selectedID string

	dragID    string
	dragMoved bool
	panning   bool
	panMoved  bool
	pressView graph.Vec
	lastView  graph.Vec

	closed bool
}

// NewGraphView creates a view in the overview state. The scene is not built
// until the first SetSize call reports the available cells.
func NewGraphView(p GraphViewParams) *GraphView {
	settle := p.SettleTicks
	if settle <= 0 {
		settle = graph.DefaultSettleTicks
	}
	margin := p.RingMargin
	if margin <= 0 {
		margin = graph.DefaultRingMargin
	}
	onSelect := p.OnSelect
	if onSelect == nil {
		onSelect = func(string) {}
	}
	return &GraphView{
		variant:       p.Variant,
		theme:         p.Theme,
		tuning:        p.Tuning,
		settleTicks:   settle,
		ringMargin:    margin,
		onSelect:      onSelect,
		rng:           p.Rand,
		data:          p.Data,
		camera:        NewCamera(p.MinZoom, p.MaxZoom),
		overviewStore: graph.NewPositionStore(),
	}
}

func (g *GraphView) State() ViewState   { return g.state }
func (g *GraphView) DetailID() string   { return g.detailID }
func (g *GraphView) SelectedID() string { return g.selectedID }
func (g *GraphView) HoverID() string    { return g.hoverID }
func (g *GraphView) Sim() *graph.Sim    { return g.sim }
func (g *GraphView) Camera() *Camera    { return &g.camera }

// Active reports whether the simulation still wants ticks.
func (g *GraphView) Active() bool {
	return !g.closed && g.sim != nil && g.sim.Active()
}

// Tick advances the simulation one step. No-op after Close.
func (g *GraphView) Tick() {
	if g.closed || g.sim == nil {
		return
	}
	g.sim.Step()
}

// Close tears the view down; later ticks and pointer events are ignored.
func (g *GraphView) Close() {
	if g.closed {
		return
	}
	g.closed = true
	if g.sim != nil {
		g.sim.Close()
	}
}

// SetSize resizes the canvas to the given cell extent and rebuilds the
// scene. Stored positions seed the new layout so nodes relax into the new
// geometry instead of jumping.
func (g *GraphView) SetSize(cols, rows int) {
	if g.closed || cols < 1 || rows < 1 {
		return
	}
	first := g.sim == nil
	g.cols = cols
	g.rows = rows
	g.camera.SetViewport(g.layoutWidth(), g.layoutHeight())
	g.rebuild(first)
}

// SetData swaps in a reloaded dataset and rebuilds. Ids present in both the
// old and new collections keep their positions via the store.
func (g *GraphView) SetData(data *datasource.Dataset) {
	if g.closed {
		return
	}
	g.data = data
	if g.sim == nil {
		return
	}
	if g.state == StateDetail && !g.detailStillExists() {
		g.ExitDetail()
		return
	}
	g.rebuild(false)
}

// EnterDetail drills into the given aggregate with a fresh scoped store.
// Selection resets; the overview store is left untouched.
func (g *GraphView) EnterDetail(id string) {
	if g.closed || g.state == StateDetail || !g.isAggregate(id) {
		return
	}
	g.state = StateDetail
	g.detailID = id
	g.detailStore = graph.NewPositionStore()
	g.resetInteraction()
	g.camera.Reset()
	g.swapSim(g.buildScene(), g.detailStore)
	g.sim.Settle(g.settleTicks)
}

// ExitDetail returns to the overview; its store resumes driving layout.
func (g *GraphView) ExitDetail() {
	if g.closed || g.state != StateDetail {
		return
	}
	g.state = StateOverview
	g.detailID = ""
	g.detailStore = nil
	g.resetInteraction()
	g.camera.Reset()
	// The overview store still holds the settled layout, so the scene
	// resumes from it without a fresh pre-settle run.
	g.swapSim(g.buildScene(), g.overviewStore)
}

func (g *GraphView) resetInteraction() {
	g.setSelected("")
	g.hoverID = ""
	g.dragID = ""
	g.dragMoved = false
	g.panning = false
}

// setSelected moves the enlarge effect like setHover does: a selected
// node keeps its extra collision clearance so neighbors settle around
// it, not under it.
func (g *GraphView) setSelected(id string) {
	if g.selectedID == id {
		return
	}
	old := g.selectedID
	g.selectedID = id
	if g.sim != nil {
		scene := g.sim.Scene()
		if n := scene.NodeByID(old); n != nil && old != g.hoverID {
			n.Scale = 1
		}
		if n := scene.NodeByID(id); n != nil && n.Kind != graph.KindAnchor {
			n.Scale = hoverScale
		}
	}
	g.onSelect(id)
}

func (g *GraphView) layoutWidth() float64  { return float64(g.cols) * cellUnitsX }
func (g *GraphView) layoutHeight() float64 { return float64(g.rows) * cellUnitsY }

func (g *GraphView) activeStore() *graph.PositionStore {
	if g.state == StateDetail {
		return g.detailStore
	}
	return g.overviewStore
}

// rebuild constructs the scene for the current variant, state and viewport
// and swaps it into the simulation. When settle is true the layout is run
// to rest before the next paint. An in-flight drag survives the swap: the
// fresh scene's nodes come out unpinned, so the dragged node is re-pinned
// where the pointer left it.
func (g *GraphView) rebuild(settle bool) {
	scene := g.buildScene()
	if g.sim == nil {
		g.sim = graph.NewSim(scene, g.activeStore())
	} else {
		g.sim.Rebuild(scene)
	}
	if g.dragID != "" {
		if n := scene.NodeByID(g.dragID); n != nil {
			if g.dragMoved {
				g.sim.Pin(g.dragID, n.Pos)
			}
		} else {
			g.dragID = ""
			g.dragMoved = false
		}
	}
	for _, id := range []string{g.selectedID, g.hoverID} {
		if n := scene.NodeByID(id); n != nil && n.Kind != graph.KindAnchor {
			n.Scale = hoverScale
		}
	}
	if settle {
		g.sim.Settle(g.settleTicks)
	}
}

// swapSim replaces the simulation wholesale, closing the old one so stale
// ticks cannot write into a store the new view no longer owns.
func (g *GraphView) swapSim(scene *graph.Scene, store *graph.PositionStore) {
	if g.sim != nil {
		g.sim.Close()
	}
	g.sim = graph.NewSim(scene, store)
}

func (g *GraphView) buildScene() *graph.Scene {
	p := graph.BuildParams{
		Store:  g.activeStore(),
		Rings:  graph.Rings{Margin: g.ringMargin},
		Width:  g.layoutWidth(),
		Height: g.layoutHeight(),
		Tuning: g.tuning,
		Rand:   g.rng,
	}

	switch {
	case g.variant == VariantConnections && g.state == StateOverview:
		p.Anchor = &model.Contact{ID: "you", Name: "You"}
		for i := range g.data.Contacts {
			c := &g.data.Contacts[i]
			p.Members = append(p.Members, graph.Member{
				Entity:   c,
				Ring:     c.Degree,
				ParentID: c.ParentID,
			})
		}
		for _, r := range g.data.Relations {
			p.Edges = append(p.Edges, graph.Edge{SourceID: r.SourceID, TargetID: r.TargetID})
		}

	case g.variant == VariantConnections && g.state == StateDetail:
		// Anchor re-labeled to the drilled aggregate; members are its
		// satellites, one hop at ring 1 and two hops at ring 2.
		anchor := g.contactByID(g.detailID)
		if anchor == nil {
			anchor = &model.Contact{ID: g.detailID, Name: g.detailID}
		}
		p.Anchor = anchor
		firstHop := make(map[string]bool)
		for i := range g.data.Contacts {
			c := &g.data.Contacts[i]
			if c.ParentID == g.detailID {
				firstHop[c.ID] = true
				p.Members = append(p.Members, graph.Member{Entity: c, Ring: 1})
			}
		}
		for i := range g.data.Contacts {
			c := &g.data.Contacts[i]
			if firstHop[c.ParentID] {
				p.Members = append(p.Members, graph.Member{
					Entity:   c,
					Ring:     2,
					ParentID: c.ParentID,
				})
			}
		}
		for _, r := range g.data.Relations {
			p.Edges = append(p.Edges, graph.Edge{SourceID: r.SourceID, TargetID: r.TargetID})
		}

	case g.variant == VariantEmail && g.state == StateOverview:
		cats := g.data.Categories()
		p.Anchor = &model.Category{ID: "inbox", Name: "Inbox", Count: len(g.data.Emails)}
		for i := range cats {
			p.Members = append(p.Members, graph.Member{Entity: &cats[i], Ring: 1})
		}

	default: // email detail
		anchor := g.categoryByID(g.detailID)
		if anchor == nil {
			anchor = &model.Category{ID: g.detailID, Name: g.detailID}
		}
		p.Anchor = anchor
		msgs := g.data.EmailsInCategory(g.detailID)
		for i := range msgs {
			p.Members = append(p.Members, graph.Member{Entity: &msgs[i], Ring: 1})
		}
	}

	return graph.Build(p)
}

func (g *GraphView) contactByID(id string) *model.Contact {
	for i := range g.data.Contacts {
		if g.data.Contacts[i].ID == id {
			return &g.data.Contacts[i]
		}
	}
	return nil
}

func (g *GraphView) categoryByID(id string) *model.Category {
	cats := g.data.Categories()
	for i := range cats {
		if cats[i].ID == id {
			return &cats[i]
		}
	}
	return nil
}

// isAggregate reports whether clicking the node should drill down rather
// than select. Every non-anchor overview node aggregates in the email
// variant; in the connections variant only degree-1 contacts with
// satellites do.
func (g *GraphView) isAggregate(id string) bool {
	if g.state != StateOverview {
		return false
	}
	switch g.variant {
	case VariantEmail:
		return g.categoryByID(id) != nil
	default:
		c := g.contactByID(id)
		if c == nil || c.Degree != 1 {
			return false
		}
		for i := range g.data.Contacts {
			if g.data.Contacts[i].ParentID == id {
				return true
			}
		}
		return false
	}
}

func (g *GraphView) detailStillExists() bool {
	if g.variant == VariantEmail {
		return g.categoryByID(g.detailID) != nil
	}
	return g.contactByID(g.detailID) != nil
}

// --- pointer interaction -----------------------------------------------------

// HandleMouse maps a pointer event (cell coordinates relative to the canvas
// origin) onto hover, selection, drag, pan and zoom. The camera transform
// applies to presentation only; drags pin nodes in model space.
func (g *GraphView) HandleMouse(msg tea.MouseMsg) {
	if g.closed || g.sim == nil {
		return
	}
	view := graph.Vec{
		X: (float64(msg.X) + 0.5) * cellUnitsX,
		Y: (float64(msg.Y) + 0.5) * cellUnitsY,
	}
	modelPt := g.camera.ToModel(view)

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		g.camera.ZoomAt(wheelZoomStep, view)

	case msg.Button == tea.MouseButtonWheelDown:
		g.camera.ZoomAt(1/wheelZoomStep, view)

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		g.pressView = view
		id := g.nodeAt(modelPt)
		if id != "" && !g.isAnchor(id) {
			g.dragID = id
			g.dragMoved = false
		} else {
			g.panning = true
			g.panMoved = false
		}

	case msg.Action == tea.MouseActionMotion && g.dragID != "":
		if !g.dragMoved && dist(view, g.pressView) <= clickSlop {
			break
		}
		g.dragMoved = true
		g.sim.Pin(g.dragID, modelPt)

	case msg.Action == tea.MouseActionMotion && g.panning:
		if !g.panMoved && dist(view, g.pressView) <= clickSlop {
			break
		}
		g.panMoved = true
		g.camera.PanBy(graph.Vec{X: view.X - g.lastView.X, Y: view.Y - g.lastView.Y})

	case msg.Action == tea.MouseActionMotion:
		g.setHover(g.nodeAt(modelPt))

	case msg.Action == tea.MouseActionRelease:
		switch {
		case g.dragID != "":
			if g.dragMoved {
				g.sim.Unpin(g.dragID)
			} else {
				g.handleClick(g.dragID)
			}
			g.dragID = ""
			g.dragMoved = false
		case g.panning:
			if !g.panMoved {
				// A background click without movement clears selection
				g.setSelected("")
			}
			g.panning = false
		}
	}

	g.lastView = view
}

// handleClick resolves a press+release without movement on a node.
func (g *GraphView) handleClick(id string) {
	if g.state == StateOverview && g.isAggregate(id) {
		g.EnterDetail(id)
		return
	}
	if g.selectedID == id {
		g.setSelected("")
	} else {
		g.setSelected(id)
	}
}

// setHover moves the enlarge effect from the old hover target to the new
// one. The anchor never enlarges.
func (g *GraphView) setHover(id string) {
	if id == g.hoverID {
		return
	}
	scene := g.sim.Scene()
	if old := scene.NodeByID(g.hoverID); old != nil && g.hoverID != g.selectedID {
		old.Scale = 1
	}
	g.hoverID = ""
	n := scene.NodeByID(id)
	if n == nil || n.Kind == graph.KindAnchor {
		return
	}
	n.Scale = hoverScale
	g.hoverID = id
}

// nodeAt hit-tests model-space coordinates against the scene, preferring
// the nearest node whose padded collision radius covers the point.
func (g *GraphView) nodeAt(m graph.Vec) string {
	scene := g.sim.Scene()
	bestID := ""
	bestDist := 0.0
	for _, n := range scene.Nodes {
		d := dist(n.Pos, m)
		if d > n.CollisionRadius()+nodeHitPadding {
			continue
		}
		if bestID == "" || d < bestDist {
			bestID = n.ID
			bestDist = d
		}
	}
	return bestID
}

func (g *GraphView) isAnchor(id string) bool {
	n := g.sim.Scene().NodeByID(id)
	return n != nil && n.Kind == graph.KindAnchor
}

func dist(a, b graph.Vec) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// --- rendering ---------------------------------------------------------------

// Render paints the scene through the camera onto a fresh canvas.
func (g *GraphView) Render() string {
	if g.sim == nil || g.cols < 1 || g.rows < 1 {
		return ""
	}
	scene := g.sim.Scene()
	c := NewCanvas(g.cols, g.rows)

	ringStyle := g.theme.Renderer.NewStyle().Foreground(g.theme.RingGuide)
	center := g.camera.ToView(scene.Center)
	for ring := 1; ring <= scene.Rings.MaxRing(); ring++ {
		r := scene.Rings.RadiusFor(ring, scene.Width, scene.Height) * g.camera.Zoom
		c.DrawRingGuide(center, r, ringStyle)
	}

	edgeStyle := g.theme.Renderer.NewStyle().Foreground(g.theme.Edge)
	hotStyle := g.theme.Renderer.NewStyle().Foreground(g.theme.Primary)
	for _, l := range scene.Links {
		a := scene.NodeByID(l.Source)
		b := scene.NodeByID(l.Target)
		if a == nil || b == nil {
			continue
		}
		style := edgeStyle
		r := '·'
		if g.hoverID != "" && (l.Source == g.hoverID || l.Target == g.hoverID) {
			style = hotStyle
			r = '•'
		}
		c.DrawLine(g.camera.ToView(a.Pos), g.camera.ToView(b.Pos), r, style)
	}

	for _, n := range scene.Nodes {
		g.drawNode(c, n)
	}

	return c.String()
}

func (g *GraphView) drawNode(c *Canvas, n *graph.Node) {
	v := g.camera.ToView(n.Pos)
	col, row := c.Cell(v)

	r := '●'
	style := g.theme.Renderer.NewStyle()
	switch {
	case n.Kind == graph.KindAnchor:
		r = '◎'
		style = g.theme.AnchorGlyph
	case n.ID == g.selectedID:
		r = '◉'
		style = style.Foreground(g.colorOf(n)).Background(g.theme.Highlight).Bold(true)
	case n.ID == g.hoverID:
		r = '◉'
		style = style.Foreground(g.colorOf(n)).Bold(true)
	default:
		style = style.Foreground(g.colorOf(n))
	}
	c.Set(col, row, r, style)

	if n.Kind == graph.KindAnchor || n.ID == g.selectedID || n.ID == g.hoverID {
		label := n.ID
		if n.Payload != nil && n.Payload.Label() != "" {
			label = n.Payload.Label()
		}
		c.SetString(col+2, row, truncate(label, 20), g.theme.SecondaryText)
	}
}

func (g *GraphView) colorOf(n *graph.Node) lipgloss.AdaptiveColor {
	key := ""
	if n.Payload != nil {
		key = n.Payload.ColorKey()
	}
	return g.theme.ColorFor(key)
}
