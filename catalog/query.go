package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// FilterOptions are the distinct values offered by a subject's filters.
type FilterOptions struct {
	Tags      []string
	Languages []string
}

// Options collects the sorted, distinct tags and languages of a subject.
// Programs without a declared language contribute the markup label only when
// they carry fragments.
func (s Subject) Options() FilterOptions {
	tags := make(map[string]struct{})
	langs := make(map[string]struct{})

	for _, p := range s.Programs {
		for _, t := range p.Tags {
			tags[t] = struct{}{}
		}
		switch {
		case p.Language != "":
			langs[p.Language] = struct{}{}
		case p.Source.HasFragments():
			langs[LabelMarkup] = struct{}{}
		}
	}

	return FilterOptions{
		Tags:      sortedKeys(tags),
		Languages: sortedKeys(langs),
	}
}

// Filter returns the subject's programs matching the tag and language label.
// An empty filter value matches everything.
func (s Subject) Filter(tag, language string) []Program {
	out := make([]Program, 0, len(s.Programs))
	for _, p := range s.Programs {
		if tag != "" && !p.HasTag(tag) {
			continue
		}
		if language != "" && p.LanguageLabel() != language {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Entry is a program flattened together with its owning subject.
type Entry struct {
	SubjectID   string
	SubjectName string
	Program     Program
}

func (e Entry) haystack() string {
	p := e.Program
	parts := []string{
		p.Title,
		p.Problem,
		strings.Join(p.Tags, " "),
		e.SubjectName,
		p.LanguageLabel(),
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// Entries flattens every program of every subject in document order.
func (c *Catalog) Entries() []Entry {
	var out []Entry
	for _, s := range c.subjects {
		for _, p := range s.Programs {
			out = append(out, Entry{SubjectID: s.ID, SubjectName: s.Name, Program: p})
		}
	}
	return out
}

// SearchResult holds global search matches and the summary line.
type SearchResult struct {
	Query   string
	Matches []Entry
	Summary string
}

// Search matches the trimmed, case-insensitive query as a substring of the
// title, problem, tags, subject name and language label. A blank query
// matches every program.
func (c *Catalog) Search(query string) SearchResult {
	q := strings.ToLower(strings.TrimSpace(query))

	matches := make([]Entry, 0)
	for _, e := range c.Entries() {
		if q != "" && !strings.Contains(e.haystack(), q) {
			continue
		}
		matches = append(matches, e)
	}

	res := SearchResult{Query: query, Matches: matches}
	if q != "" {
		res.Summary = fmt.Sprintf("Found %d program(s) for \"%s\".", len(matches), query)
	} else {
		res.Summary = fmt.Sprintf("Showing all %d programs.", len(matches))
	}
	return res
}

// DefaultNotes is listed when the catalog document carries no notes.
var DefaultNotes = []Note{
	{
		Title:       "How to use this hub",
		Type:        "info",
		Description: "Select a subject, open a program, copy the code or edit your own version. " +
			"Your changes are stored locally.",
	},
}

// Notes returns the catalog notes, or DefaultNotes when there are none.
func (c *Catalog) Notes() []Note {
	if len(c.notes) == 0 {
		return DefaultNotes
	}
	return c.notes
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
