// Package model defines the entity records the constellation viewer renders:
// contacts in the relationship network, explicit relations between them, and
// the email categories and messages shown in the category view. The graph
// engine never reads these types directly; they reach it through the
// capability interface in pkg/graph.
package model

import "time"

// Tier classifies how close a contact is kept. It only drives color selection
// in the UI.
type Tier string

const (
	// TierInner is the closest circle of contacts
	TierInner Tier = "inner"
	// TierActive is a contact with recent regular interaction
	TierActive Tier = "active"
	// TierDormant is a contact with no recent interaction
	TierDormant Tier = "dormant"
)

// Urgency classifies an email message for color selection.
type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyNormal Urgency = "normal"
	UrgencyLow    Urgency = "low"
)

// Contact is one person in the relationship network.
type Contact struct {
	// ID uniquely identifies the contact within one dataset
	ID string `json:"id"`
	// Name is the display label
	Name string `json:"name"`
	// Degree is the relational distance from the owner: 1 = direct,
	// 2 = known through a direct contact, 3 = known through a degree-2 contact
	Degree int `json:"degree"`
	// ParentID names the contact this one is known through (empty for degree 1)
	ParentID string `json:"parent_id,omitempty"`
	// Tier drives node color
	Tier Tier `json:"tier,omitempty"`
	// LastSeen is the most recent interaction, zero if unknown
	LastSeen time.Time `json:"last_seen,omitempty"`
	// Notes is free-form text shown in the detail panel
	Notes string `json:"notes,omitempty"`
}

// EntityID implements graph.Entity.
func (c *Contact) EntityID() string { return c.ID }

// Label implements graph.Entity.
func (c *Contact) Label() string { return c.Name }

// ColorKey implements graph.Entity.
func (c *Contact) ColorKey() string {
	if c.Tier == "" {
		return string(TierActive)
	}
	return string(c.Tier)
}

// SizeHint implements graph.Entity. Closer degrees render larger.
func (c *Contact) SizeHint() float64 {
	switch c.Degree {
	case 1:
		return 1.0
	case 2:
		return 0.8
	default:
		return 0.65
	}
}

// Relation is an explicit edge between two contacts, independent of the
// ParentID hierarchy.
type Relation struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
}

// Category is one email-category aggregate in the overview graph.
type Category struct {
	// ID uniquely identifies the category
	ID string `json:"id"`
	// Name is the display label
	Name string `json:"name"`
	// Count is the number of messages in the category
	Count int `json:"count"`
}

// EntityID implements graph.Entity.
func (c *Category) EntityID() string { return c.ID }

// Label implements graph.Entity.
func (c *Category) Label() string { return c.Name }

// ColorKey implements graph.Entity. Categories color by bucket size.
func (c *Category) ColorKey() string {
	switch {
	case c.Count >= 20:
		return "busy"
	case c.Count >= 5:
		return "steady"
	default:
		return "quiet"
	}
}

// SizeHint implements graph.Entity. Larger categories render larger, capped
// so a single dominant category cannot swallow its neighbors.
func (c *Category) SizeHint() float64 {
	h := 0.8 + float64(c.Count)*0.02
	if h > 1.4 {
		h = 1.4
	}
	return h
}

// EmailMessage is one message inside a category, shown when drilling down.
type EmailMessage struct {
	// ID uniquely identifies the message
	ID string `json:"id"`
	// Subject is the display label
	Subject string `json:"subject"`
	// From is the sender address
	From string `json:"from"`
	// CategoryID names the category the message belongs to
	CategoryID string `json:"category_id"`
	// Urgency drives node color
	Urgency Urgency `json:"urgency,omitempty"`
}

// EntityID implements graph.Entity.
func (m *EmailMessage) EntityID() string { return m.ID }

// Label implements graph.Entity.
func (m *EmailMessage) Label() string { return m.Subject }

// ColorKey implements graph.Entity.
func (m *EmailMessage) ColorKey() string {
	if m.Urgency == "" {
		return string(UrgencyNormal)
	}
	return string(m.Urgency)
}

// SizeHint implements graph.Entity.
func (m *EmailMessage) SizeHint() float64 {
	if m.Urgency == UrgencyHigh {
		return 0.9
	}
	return 0.7
}
