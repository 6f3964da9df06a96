package datasource

import (
	"fmt"
	"sort"
	"time"

	"github.com/vanderheijden86/constellation/pkg/debug"
	"github.com/vanderheijden86/constellation/pkg/model"
)

// Dataset is one validated, in-memory load of everything the viewer shows.
type Dataset struct {
	Contacts  []model.Contact
	Relations []model.Relation
	Emails    []model.EmailMessage
}

// Categories aggregates emails into their categories, sorted by descending
// count so the overview graph lays the busiest categories out first.
func (d *Dataset) Categories() []model.Category {
	counts := make(map[string]int)
	for _, m := range d.Emails {
		if m.CategoryID == "" {
			continue
		}
		counts[m.CategoryID]++
	}
	cats := make([]model.Category, 0, len(counts))
	for id, n := range counts {
		cats = append(cats, model.Category{ID: id, Name: id, Count: n})
	}
	sort.Slice(cats, func(i, j int) bool {
		if cats[i].Count != cats[j].Count {
			return cats[i].Count > cats[j].Count
		}
		return cats[i].ID < cats[j].ID
	})
	return cats
}

// EmailsInCategory returns the messages of one category in input order.
func (d *Dataset) EmailsInCategory(categoryID string) []model.EmailMessage {
	var out []model.EmailMessage
	for _, m := range d.Emails {
		if m.CategoryID == categoryID {
			out = append(out, m)
		}
	}
	return out
}

// LoadDataset performs smart multi-source detection and loading. It
// discovers all available sources in dataDir, validates them, selects the
// freshest valid one, and loads from it. SQLite is preferred over JSON when
// both exist at comparable freshness. The load either returns a validated
// dataset or fails once; there is no retry.
func LoadDataset(dataDir string) (*Dataset, error) {
	sources, err := DiscoverSources(DiscoveryOptions{
		DataDir:                dataDir,
		ValidateAfterDiscovery: true,
		IncludeInvalid:         false,
	})
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no valid sources discovered in %s", dataDir)
	}

	best, err := SelectBestSource(sources)
	if err != nil {
		return nil, err
	}

	return LoadFromSource(best)
}

// LoadFromSource loads a dataset from a specific DataSource, dispatching to
// the appropriate reader based on source type.
func LoadFromSource(source DataSource) (*Dataset, error) {
	switch source.Type {
	case SourceTypeSQLite:
		reader, err := NewSQLiteReader(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite source %s: %w", source.Path, err)
		}
		defer reader.Close()
		contacts, err := reader.LoadContacts()
		if err != nil {
			return nil, err
		}
		if ts, err := reader.GetLastModified(); err == nil && !ts.IsZero() {
			debug.Log("sqlite source %s: newest contact activity %s", source.Path, ts.Format(time.RFC3339))
		}
		return &Dataset{
			Contacts:  contacts,
			Relations: reader.LoadRelations(),
			Emails:    reader.LoadEmails(),
		}, nil

	case SourceTypeJSON:
		return loadJSONDataset(source.Path)

	default:
		return nil, fmt.Errorf("unknown source type: %s", source.Type)
	}
}
