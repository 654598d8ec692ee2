package organizer

import (
	"fmt"
	"sort"
	"strings"

	"lingosort/internal/language"
	"lingosort/internal/services"
	"lingosort/internal/textutil"
)

// Entry is one row of the routing table.
type Entry struct {
	Code      string
	Name      string
	Directory string
}

// Table maps ISO 639-1 codes to directory names relative to the output root.
type Table map[string]string

// NewTable normalizes raw config entries. Codes are reduced to ISO 639-1 and
// directory names to filesystem-safe tokens.
func NewTable(raw map[string]string) (Table, error) {
	if len(raw) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "route", "table", "routing.languages is empty", nil)
	}
	table := make(Table, len(raw))
	for code, dir := range raw {
		iso := language.ToISO2(code)
		if iso == "" {
			return nil, services.Wrap(services.ErrConfiguration, "route", "table", fmt.Sprintf("routing.languages: unknown language code %q", code), nil)
		}
		if strings.TrimSpace(dir) == "" {
			return nil, services.Wrap(services.ErrConfiguration, "route", "table", fmt.Sprintf("routing.languages.%s: directory is empty", code), nil)
		}
		if existing, ok := table[iso]; ok && existing != textutil.DirName(dir) {
			return nil, services.Wrap(services.ErrConfiguration, "route", "table", fmt.Sprintf("routing.languages: %q and another key both resolve to %q", code, iso), nil)
		}
		table[iso] = textutil.DirName(dir)
	}
	return table, nil
}

// Lookup normalizes code and returns it with its directory name.
func (t Table) Lookup(code string) (string, string, bool) {
	iso := language.ToISO2(code)
	if iso == "" {
		return "", "", false
	}
	dir, ok := t[iso]
	return iso, dir, ok
}

// Codes returns the recognized language set in sorted order.
func (t Table) Codes() []string {
	codes := make([]string, 0, len(t))
	for code := range t {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Entries lists the table sorted by code, with display names.
func (t Table) Entries() []Entry {
	codes := t.Codes()
	entries := make([]Entry, 0, len(codes))
	for _, code := range codes {
		entries = append(entries, Entry{
			Code:      code,
			Name:      language.DisplayName(code),
			Directory: t[code],
		})
	}
	return entries
}
