package datasource

import (
	"fmt"

	"github.com/vanderheijden86/constellation/pkg/model"
)

// DatasetDiff summarizes what changed between two loads of the same data
// directory. The viewer uses it on live reload to decide whether a rebuild
// is needed at all and to log what moved.
type DatasetDiff struct {
	// AddedContacts contains contact IDs present in the new load only
	AddedContacts []string
	// RemovedContacts contains contact IDs present in the old load only
	RemovedContacts []string
	// ChangedContacts contains contact IDs whose degree or parent moved
	ChangedContacts []string
	// EmailCountChanged reports whether the email set size differs
	EmailCountChanged bool
	// RelationCountChanged reports whether the relation list size differs
	RelationCountChanged bool
}

// Empty returns true if the two datasets describe the same graph.
func (d DatasetDiff) Empty() bool {
	return len(d.AddedContacts) == 0 &&
		len(d.RemovedContacts) == 0 &&
		len(d.ChangedContacts) == 0 &&
		!d.EmailCountChanged &&
		!d.RelationCountChanged
}

// Summary returns a human-readable description of the differences
func (d DatasetDiff) Summary() string {
	if d.Empty() {
		return "datasets match"
	}
	return fmt.Sprintf("+%d/-%d contacts, %d changed, emails changed=%v, relations changed=%v",
		len(d.AddedContacts), len(d.RemovedContacts), len(d.ChangedContacts),
		d.EmailCountChanged, d.RelationCountChanged)
}

// Diff compares a previous and a fresh dataset.
func Diff(prev, next *Dataset) DatasetDiff {
	var d DatasetDiff
	if prev == nil || next == nil {
		return d
	}

	oldByID := make(map[string]model.Contact, len(prev.Contacts))
	for _, c := range prev.Contacts {
		oldByID[c.ID] = c
	}
	newByID := make(map[string]model.Contact, len(next.Contacts))
	for _, c := range next.Contacts {
		newByID[c.ID] = c
	}

	for id, nc := range newByID {
		oc, exists := oldByID[id]
		if !exists {
			d.AddedContacts = append(d.AddedContacts, id)
			continue
		}
		if oc.Degree != nc.Degree || oc.ParentID != nc.ParentID {
			d.ChangedContacts = append(d.ChangedContacts, id)
		}
	}
	for id := range oldByID {
		if _, exists := newByID[id]; !exists {
			d.RemovedContacts = append(d.RemovedContacts, id)
		}
	}

	d.EmailCountChanged = len(prev.Emails) != len(next.Emails)
	d.RelationCountChanged = len(prev.Relations) != len(next.Relations)
	return d
}
