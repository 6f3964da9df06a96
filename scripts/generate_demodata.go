//go:build ignore

// generate_demodata.go creates sample datasets for trying out cn.
// Usage: go run scripts/generate_demodata.go
//
// Creates:
//
//	demo/small/contacts.json   (8 contacts, two rings)
//	demo/small/emails.json     (12 messages in 3 categories)
//	demo/large/contacts.json   (60 contacts, three rings)
//	demo/large/emails.json     (90 messages in 6 categories)
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/constellation/internal/datasource"
	"github.com/vanderheijden86/constellation/pkg/model"
	"github.com/vanderheijden86/constellation/pkg/testutil"
)

func main() {
	write("demo/small",
		testutil.NewDefault().Network(3, 5, 0),
		testutil.New(testutil.GeneratorConfig{Seed: 7}).Mailbox(5, 4, 3))
	write("demo/large",
		testutil.New(testutil.GeneratorConfig{Seed: 99}).Network(8, 22, 30),
		testutil.New(testutil.GeneratorConfig{Seed: 100}).Mailbox(30, 20, 15, 12, 8, 5))
}

func write(dir string, contacts, mail *datasource.Dataset) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fatal(err)
	}

	cf := struct {
		Contacts  []model.Contact  `json:"contacts"`
		Relations []model.Relation `json:"relations,omitempty"`
	}{contacts.Contacts, contacts.Relations}
	writeJSON(filepath.Join(dir, "contacts.json"), cf)

	ef := struct {
		Emails []model.EmailMessage `json:"emails"`
	}{mail.Emails}
	writeJSON(filepath.Join(dir, "emails.json"), ef)

	fmt.Printf("%s: %d contacts, %d relations, %d emails\n",
		dir, len(contacts.Contacts), len(contacts.Relations), len(mail.Emails))
}

func writeJSON(path string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
