package datasource

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/constellation/pkg/model"
)

// contactsFile is the on-disk shape of contacts.json
type contactsFile struct {
	Contacts  []model.Contact  `json:"contacts"`
	Relations []model.Relation `json:"relations,omitempty"`
}

// emailsFile is the on-disk shape of emails.json
type emailsFile struct {
	Emails []model.EmailMessage `json:"emails"`
}

// readContactsFile parses a contacts.json export
func readContactsFile(path string) ([]model.Contact, []model.Relation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	var f contactsFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, nil, fmt.Errorf("cannot parse %s: %w", path, err)
	}
	return f.Contacts, f.Relations, nil
}

// readEmailsFile parses an emails.json export
func readEmailsFile(path string) ([]model.EmailMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	var f emailsFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", path, err)
	}
	return f.Emails, nil
}

// loadJSONDataset loads contacts.json and its sibling emails.json
// concurrently. A missing emails.json is fine; a malformed one fails the
// load so the caller can fall back to another source.
func loadJSONDataset(contactsPath string) (*Dataset, error) {
	ds := &Dataset{}

	var g errgroup.Group
	g.Go(func() error {
		contacts, relations, err := readContactsFile(contactsPath)
		if err != nil {
			return err
		}
		ds.Contacts = contacts
		ds.Relations = relations
		return nil
	})
	g.Go(func() error {
		emailsPath := filepath.Join(filepath.Dir(contactsPath), EmailsFileName)
		if _, err := os.Stat(emailsPath); err != nil {
			return nil
		}
		emails, err := readEmailsFile(emailsPath)
		if err != nil {
			return err
		}
		ds.Emails = emails
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ds, nil
}
