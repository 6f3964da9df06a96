// Package datasource provides multi-source data detection and loading for
// constellation. It discovers, validates, and selects the freshest valid
// source from SQLite databases and JSON exports in the data directory.
package datasource

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// SourceType identifies the type of data source
type SourceType string

const (
	// SourceTypeSQLite is a SQLite database (constellation.db)
	SourceTypeSQLite SourceType = "sqlite"
	// SourceTypeJSON is a JSON export (contacts.json, optionally emails.json)
	SourceTypeJSON SourceType = "json"
)

// Priority values for source types (higher = more authoritative)
const (
	PrioritySQLite = 100
	PriorityJSON   = 50
)

// Default file names looked up inside the data directory
const (
	SQLiteFileName   = "constellation.db"
	ContactsFileName = "contacts.json"
	EmailsFileName   = "emails.json"
)

// DataSource represents a potential source of constellation data
type DataSource struct {
	// Type identifies the source type
	Type SourceType `json:"type"`
	// Path is the absolute path to the source file
	Path string `json:"path"`
	// Priority determines preference when timestamps are equal (higher = preferred)
	Priority int `json:"priority"`
	// ModTime is the last modification time of the source
	ModTime time.Time `json:"mod_time"`
	// Valid indicates whether the source passed validation
	Valid bool `json:"valid"`
	// ValidationError describes why validation failed (if Valid is false)
	ValidationError string `json:"validation_error,omitempty"`
	// ContactCount is the number of contacts in the source (set during validation)
	ContactCount int `json:"contact_count"`
	// Size is the file size in bytes
	Size int64 `json:"size"`
}

// String returns a human-readable description of the source
func (s DataSource) String() string {
	status := "valid"
	if !s.Valid {
		status = fmt.Sprintf("invalid: %s", s.ValidationError)
	}
	return fmt.Sprintf("%s (%s, priority=%d, mod=%s, contacts=%d, %s)",
		s.Path, s.Type, s.Priority, s.ModTime.Format(time.RFC3339), s.ContactCount, status)
}

// DiscoveryOptions configures source discovery behavior
type DiscoveryOptions struct {
	// DataDir is the directory holding the data files (optional,
	// CN_DATA_DIR or the current directory if empty)
	DataDir string
	// ValidateAfterDiscovery runs validation on each discovered source
	ValidateAfterDiscovery bool
	// IncludeInvalid includes sources that failed validation in results
	IncludeInvalid bool
	// Verbose enables detailed logging during discovery
	Verbose bool
	// Logger receives log messages when Verbose is true
	Logger func(msg string)
}

// DiscoverSources finds all potential data sources in the data directory
func DiscoverSources(opts DiscoveryOptions) ([]DataSource, error) {
	if opts.Logger == nil {
		opts.Logger = func(string) {}
	}

	dataDir := opts.DataDir
	if dataDir == "" {
		if envDir := os.Getenv("CN_DATA_DIR"); envDir != "" {
			dataDir = envDir
		} else {
			var err error
			dataDir, err = os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to get current directory: %w", err)
			}
		}
	}

	if opts.Verbose {
		opts.Logger(fmt.Sprintf("Discovering sources in: %s", dataDir))
	}

	var sources []DataSource

	// SQLite database
	dbPath := filepath.Join(dataDir, SQLiteFileName)
	if info, err := os.Stat(dbPath); err == nil {
		sources = append(sources, DataSource{
			Type:     SourceTypeSQLite,
			Path:     dbPath,
			Priority: PrioritySQLite,
			ModTime:  info.ModTime(),
			Size:     info.Size(),
		})
		if opts.Verbose {
			opts.Logger(fmt.Sprintf("Found SQLite: %s (mod=%s)", dbPath, info.ModTime().Format(time.RFC3339)))
		}
	}

	// JSON export. contacts.json is the source of record; emails.json
	// rides along with it when present.
	jsonPath := filepath.Join(dataDir, ContactsFileName)
	if info, err := os.Stat(jsonPath); err == nil {
		sources = append(sources, DataSource{
			Type:     SourceTypeJSON,
			Path:     jsonPath,
			Priority: PriorityJSON,
			ModTime:  info.ModTime(),
			Size:     info.Size(),
		})
		if opts.Verbose {
			opts.Logger(fmt.Sprintf("Found JSON: %s (mod=%s)", jsonPath, info.ModTime().Format(time.RFC3339)))
		}
	}

	if opts.ValidateAfterDiscovery {
		for i := range sources {
			if err := ValidateSource(&sources[i]); err != nil && opts.Verbose {
				opts.Logger(fmt.Sprintf("Validation failed for %s: %v", sources[i].Path, err))
			}
		}
	}

	if opts.ValidateAfterDiscovery && !opts.IncludeInvalid {
		var validSources []DataSource
		for _, s := range sources {
			if s.Valid {
				validSources = append(validSources, s)
			}
		}
		sources = validSources
	}

	// Sort by mod time, breaking ties by priority
	sort.Slice(sources, func(i, j int) bool {
		if sources[i].ModTime.Equal(sources[j].ModTime) {
			return sources[i].Priority > sources[j].Priority
		}
		return sources[i].ModTime.After(sources[j].ModTime)
	})

	if opts.Verbose {
		opts.Logger(fmt.Sprintf("Discovered %d sources", len(sources)))
	}

	return sources, nil
}

// ValidateSource checks that a source can actually be loaded, recording the
// outcome on the source itself. Returns the validation error, if any.
func ValidateSource(s *DataSource) error {
	var count int
	var err error

	switch s.Type {
	case SourceTypeSQLite:
		var r *SQLiteReader
		r, err = NewSQLiteReader(*s)
		if err == nil {
			count, err = r.CountContacts()
			r.Close()
		}
	case SourceTypeJSON:
		contacts, _, jsonErr := readContactsFile(s.Path)
		err = jsonErr
		count = len(contacts)
	default:
		err = fmt.Errorf("unknown source type: %s", s.Type)
	}

	if err != nil {
		s.Valid = false
		s.ValidationError = err.Error()
		return err
	}
	s.Valid = true
	s.ValidationError = ""
	s.ContactCount = count
	return nil
}

// SelectBestSource picks the preferred source from an already sorted list,
// skipping invalid entries.
func SelectBestSource(sources []DataSource) (DataSource, error) {
	for _, s := range sources {
		if s.Valid {
			return s, nil
		}
	}
	return DataSource{}, fmt.Errorf("no valid source among %d candidates", len(sources))
}
