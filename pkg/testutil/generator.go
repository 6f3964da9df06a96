// Package testutil provides deterministic fixture generators for synthetic
// contact networks and mailboxes, plus scene assertions shared by the graph
// and UI tests.
package testutil

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/vanderheijden86/constellation/internal/datasource"
	"github.com/vanderheijden86/constellation/pkg/model"
)

// GeneratorConfig controls network generation.
type GeneratorConfig struct {
	Seed     uint64    // PCG seed for determinism (0 = fixed default)
	IDPrefix string    // Prefix for contact ids (default: "c")
	BaseTime time.Time // Base time for LastSeen stamps (default: fixed time)
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:     42,
		IDPrefix: "c",
		BaseTime: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Generator creates deterministic datasets with various network shapes.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	if cfg.IDPrefix == "" {
		cfg.IDPrefix = "c"
	}
	if cfg.BaseTime.IsZero() {
		cfg.BaseTime = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b9)),
	}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// Rand exposes the generator's seeded source so tests can share it with the
// layout builder.
func (g *Generator) Rand() *rand.Rand { return g.rng }

// Star creates a pure star: n degree-1 contacts, no deeper rings, no
// explicit relations beyond the implicit anchor spokes.
func (g *Generator) Star(n int) *datasource.Dataset {
	d := &datasource.Dataset{}
	for i := 0; i < n; i++ {
		d.Contacts = append(d.Contacts, g.contact(i, 1, ""))
	}
	return d
}

// Network creates a layered network: ring1 direct contacts, ring2 contacts
// distributed round-robin under ring1 parents, ring3 under ring2. Each
// parent-child pair also gets an explicit relation.
func (g *Generator) Network(ring1, ring2, ring3 int) *datasource.Dataset {
	d := &datasource.Dataset{}
	idx := 0

	var level1, level2 []string
	for i := 0; i < ring1; i++ {
		c := g.contact(idx, 1, "")
		idx++
		level1 = append(level1, c.ID)
		d.Contacts = append(d.Contacts, c)
	}
	for i := 0; i < ring2; i++ {
		parent := ""
		if len(level1) > 0 {
			parent = level1[i%len(level1)]
		}
		c := g.contact(idx, 2, parent)
		idx++
		level2 = append(level2, c.ID)
		d.Contacts = append(d.Contacts, c)
		if parent != "" {
			d.Relations = append(d.Relations, model.Relation{SourceID: parent, TargetID: c.ID})
		}
	}
	for i := 0; i < ring3; i++ {
		parent := ""
		if len(level2) > 0 {
			parent = level2[i%len(level2)]
		}
		c := g.contact(idx, 3, parent)
		idx++
		d.Contacts = append(d.Contacts, c)
		if parent != "" {
			d.Relations = append(d.Relations, model.Relation{SourceID: parent, TargetID: c.ID})
		}
	}
	return d
}

// Mailbox creates categories cat0..cat{n-1} holding the given message
// counts, with urgency cycling high/normal/low.
func (g *Generator) Mailbox(counts ...int) *datasource.Dataset {
	d := &datasource.Dataset{}
	urgencies := []model.Urgency{model.UrgencyHigh, model.UrgencyNormal, model.UrgencyLow}
	msg := 0
	for ci, count := range counts {
		catID := fmt.Sprintf("cat%d", ci)
		for i := 0; i < count; i++ {
			d.Emails = append(d.Emails, model.EmailMessage{
				ID:         fmt.Sprintf("m%d", msg),
				Subject:    fmt.Sprintf("Message %d", msg),
				From:       fmt.Sprintf("sender%d@example.com", msg%7),
				CategoryID: catID,
				Urgency:    urgencies[msg%len(urgencies)],
			})
			msg++
		}
	}
	return d
}

func (g *Generator) contact(idx, degree int, parentID string) model.Contact {
	tiers := []model.Tier{model.TierInner, model.TierActive, model.TierDormant}
	return model.Contact{
		ID:       fmt.Sprintf("%s%d", g.cfg.IDPrefix, idx),
		Name:     fmt.Sprintf("Contact %d", idx),
		Degree:   degree,
		ParentID: parentID,
		Tier:     tiers[idx%len(tiers)],
		LastSeen: g.cfg.BaseTime.Add(-time.Duration(g.rng.IntN(90*24)) * time.Hour),
	}
}
