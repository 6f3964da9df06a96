package datasource

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/constellation/pkg/debug"
	"github.com/vanderheijden86/constellation/pkg/model"
)

// SQLiteReader provides read access to a constellation SQLite database
type SQLiteReader struct {
	db   *sql.DB
	path string
}

// NewSQLiteReader opens a SQLite database for reading
func NewSQLiteReader(source DataSource) (*SQLiteReader, error) {
	if source.Type != SourceTypeSQLite {
		return nil, fmt.Errorf("source is not SQLite: %s", source.Type)
	}

	// Open in read-only mode with various pragmas for read performance
	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000&_journal_mode=WAL", source.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	// Set pragmas for read performance
	pragmas := []string{
		"PRAGMA cache_size = -64000",   // 64MB cache
		"PRAGMA mmap_size = 268435456", // 256MB mmap
		"PRAGMA temp_store = MEMORY",
	}
	// Pragma failures are non-fatal; the database still reads fine,
	// just slower.
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			debug.Log("pragma %q failed on %s: %v", pragma, source.Path, err)
		}
	}

	return &SQLiteReader{
		db:   db,
		path: source.Path,
	}, nil
}

// Close closes the database connection
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadContacts reads all contacts from the database. Rows that fail to scan
// are skipped rather than failing the whole load.
func (r *SQLiteReader) LoadContacts() ([]model.Contact, error) {
	query := `
		SELECT id, name, degree, parent_id, tier, last_seen, notes
		FROM contacts
		ORDER BY degree, name
	`

	rows, err := r.db.Query(query)
	if err != nil {
		// Try simpler query if some columns don't exist
		return r.loadContactsSimple()
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		var c model.Contact
		var parentID, tier, notes sql.NullString
		var lastSeen sql.NullTime

		if err := rows.Scan(&c.ID, &c.Name, &c.Degree, &parentID, &tier, &lastSeen, &notes); err != nil {
			continue
		}
		if parentID.Valid {
			c.ParentID = parentID.String
		}
		if tier.Valid {
			c.Tier = model.Tier(tier.String)
		}
		if lastSeen.Valid {
			c.LastSeen = lastSeen.Time
		}
		if notes.Valid {
			c.Notes = notes.String
		}

		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contacts: %w", err)
	}

	return contacts, nil
}

// loadContactsSimple is a fallback for databases with fewer columns
func (r *SQLiteReader) loadContactsSimple() ([]model.Contact, error) {
	rows, err := r.db.Query(`SELECT id, name, degree FROM contacts ORDER BY degree, name`)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Degree); err != nil {
			continue
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contacts: %w", err)
	}

	return contacts, nil
}

// LoadRelations reads the explicit relation list. Best-effort: a missing
// table yields no relations, not an error.
func (r *SQLiteReader) LoadRelations() []model.Relation {
	rows, err := r.db.Query(`SELECT source_id, target_id FROM relations`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var relations []model.Relation
	for rows.Next() {
		var rel model.Relation
		if err := rows.Scan(&rel.SourceID, &rel.TargetID); err != nil {
			continue
		}
		relations = append(relations, rel)
	}
	// Note: rows.Err() not checked here since LoadRelations is a
	// best-effort helper that returns what it has on any error.
	return relations
}

// LoadEmails reads all email messages. Best-effort like LoadRelations.
func (r *SQLiteReader) LoadEmails() []model.EmailMessage {
	rows, err := r.db.Query(`SELECT id, subject, sender, category, urgency FROM emails`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var emails []model.EmailMessage
	for rows.Next() {
		var m model.EmailMessage
		var sender, urgency sql.NullString
		if err := rows.Scan(&m.ID, &m.Subject, &sender, &m.CategoryID, &urgency); err != nil {
			continue
		}
		if sender.Valid {
			m.From = sender.String
		}
		if urgency.Valid {
			m.Urgency = model.Urgency(urgency.String)
		}
		emails = append(emails, m)
	}
	return emails
}

// CountContacts returns the number of contacts, used for validation
func (r *SQLiteReader) CountContacts() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM contacts").Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// GetLastModified returns the most recent last_seen time across all
// contacts, or the zero time when no contact carries one. The MAX()
// expression has no declared column type, so the value comes back as
// text and is parsed here.
func (r *SQLiteReader) GetLastModified() (time.Time, error) {
	var raw sql.NullString
	err := r.db.QueryRow("SELECT MAX(last_seen) FROM contacts").Scan(&raw)
	if err != nil {
		return time.Time{}, err
	}
	if !raw.Valid {
		return time.Time{}, nil
	}
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, raw.String); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable last_seen %q", raw.String)
}
