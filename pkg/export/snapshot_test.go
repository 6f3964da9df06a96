package export

import (
	"bytes"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/constellation/pkg/graph"
	"github.com/vanderheijden86/constellation/pkg/model"
)

func settledScene(t *testing.T) *graph.Scene {
	t.Helper()

	anchor := &model.Contact{ID: "you", Name: "You"}
	members := []graph.Member{
		{Entity: &model.Contact{ID: "ada", Name: "Ada", Tier: model.TierInner}, Ring: 1},
		{Entity: &model.Contact{ID: "ben", Name: "Ben", Tier: model.TierInner}, Ring: 1},
		{Entity: &model.Contact{ID: "cleo", Name: "Cleo", Tier: model.TierActive, ParentID: "ada"}, Ring: 2, ParentID: "ada"},
		{Entity: &model.Contact{ID: "dev", Name: "Dev", Tier: model.TierDormant, ParentID: "cleo"}, Ring: 3, ParentID: "cleo"},
	}
	edges := []graph.Edge{
		{SourceID: "ada", TargetID: "cleo"},
		{SourceID: "cleo", TargetID: "dev"},
	}

	scene := graph.Build(graph.BuildParams{
		Anchor:  anchor,
		Members: members,
		Edges:   edges,
		Store:   graph.NewPositionStore(),
		Width:   800,
		Height:  600,
		Rand:    rand.New(rand.NewPCG(7, 11)),
	})

	sim := graph.NewSim(scene, graph.NewPositionStore())
	sim.Settle(graph.DefaultSettleTicks)
	return sim.Scene()
}

func TestSaveSnapshot_SVGAndPNG(t *testing.T) {
	scene := settledScene(t)

	tmp := t.TempDir()
	cases := []struct {
		name string
		file string
	}{
		{"svg", "constellation.svg"},
		{"png", "constellation.png"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := filepath.Join(tmp, tc.file)
			err := SaveSnapshot(SnapshotOptions{
				Path:  out,
				Title: "Test Network",
				Scene: scene,
			})
			if err != nil {
				t.Fatalf("SaveSnapshot error: %v", err)
			}
			info, err := os.Stat(out)
			if err != nil {
				t.Fatalf("output not created: %v", err)
			}
			if info.Size() == 0 {
				t.Fatalf("output file is empty")
			}
		})
	}
}

func TestSaveSnapshot_SVGContent(t *testing.T) {
	scene := settledScene(t)
	layout := buildSnapshotLayout(SnapshotOptions{Title: "Net", Scene: scene})

	var buf bytes.Buffer
	if err := renderSVGToWriter(&buf, layout); err != nil {
		t.Fatalf("renderSVGToWriter error: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "<svg") {
		t.Errorf("output missing svg root element")
	}
	// One circle per node plus one guide circle per ring.
	wantCircles := len(scene.Nodes) + scene.Rings.MaxRing()
	if got := strings.Count(out, "<circle"); got != wantCircles {
		t.Errorf("expected %d circles, got %d", wantCircles, got)
	}
	if got := strings.Count(out, "<line"); got != len(scene.Links) {
		t.Errorf("expected %d lines, got %d", len(scene.Links), got)
	}
	if !strings.Contains(out, "Ada") {
		t.Errorf("output missing node label")
	}
}

func TestSaveSnapshot_FormatInferredFromExtension(t *testing.T) {
	scene := settledScene(t)
	tmp := t.TempDir()

	out := filepath.Join(tmp, "snap") // no extension
	if err := SaveSnapshot(SnapshotOptions{Path: out, Scene: scene}); err != nil {
		t.Fatalf("SaveSnapshot error: %v", err)
	}
	if _, err := os.Stat(out + ".svg"); err != nil {
		t.Fatalf("expected .svg default output: %v", err)
	}
}

func TestSaveSnapshot_InvalidFormat(t *testing.T) {
	scene := settledScene(t)
	err := SaveSnapshot(SnapshotOptions{
		Path:   "constellation.txt",
		Format: "txt",
		Scene:  scene,
	})
	if err == nil {
		t.Fatalf("expected error for invalid format")
	}
}

func TestSaveSnapshot_EmptyScene(t *testing.T) {
	err := SaveSnapshot(SnapshotOptions{Path: "out.svg", Scene: &graph.Scene{}})
	if err == nil {
		t.Fatalf("expected error for empty scene")
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"a longer label that overflows", 12, "a longer ..."},
		{"abc", 0, ""},
		{"abcdef", 2, "ab"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.max); got != tc.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}
