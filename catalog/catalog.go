package catalog

import "strings"

// Display labels used when a record leaves a field unset.
const (
	UntitledProgram    = "Untitled Program"
	LabelMarkup        = "HTML/CSS/JS"
	LabelLanguageUnset = "Language not set"
)

// SourceKind tags the shape of a program's source.
type SourceKind int

const (
	// SourceEmpty carries neither unified code nor fragments.
	SourceEmpty SourceKind = iota
	// SourceUnified carries a single authoritative source string.
	SourceUnified
	// SourceFragments carries separate markup, style and script parts.
	SourceFragments
)

func (k SourceKind) String() string {
	switch k {
	case SourceUnified:
		return "unified"
	case SourceFragments:
		return "fragments"
	default:
		return "empty"
	}
}

// Source is the resolved source of a program record.
//
// Fragments are kept even when Kind is SourceUnified: composition ignores
// them, but the execution policy still looks at their presence.
type Source struct {
	Kind SourceKind
	Code string
	HTML string
	CSS  string
	JS   string
}

// NewSource resolves raw record fields into a Source. Non-empty code wins.
func NewSource(code, html, css, js string) Source {
	src := Source{Code: code, HTML: html, CSS: css, JS: js}
	switch {
	case code != "":
		src.Kind = SourceUnified
	case src.HasFragments():
		src.Kind = SourceFragments
	default:
		src.Kind = SourceEmpty
	}
	return src
}

// UnifiedSource is shorthand for a record that only carries code.
func UnifiedSource(code string) Source {
	return NewSource(code, "", "", "")
}

// FragmentSource is shorthand for a record that only carries fragments.
func FragmentSource(html, css, js string) Source {
	return NewSource("", html, css, js)
}

// HasFragments reports whether any markup, style or script part is set.
func (s Source) HasFragments() bool {
	return s.HTML != "" || s.CSS != "" || s.JS != ""
}

// Program is one catalog entry.
type Program struct {
	ID       string
	Title    string
	Problem  string
	Language string
	Tags     []string
	Source   Source
}

// DisplayTitle returns the title or the untitled placeholder.
func (p Program) DisplayTitle() string {
	if p.Title == "" {
		return UntitledProgram
	}
	return p.Title
}

// LanguageLabel is the label shown in listings and matched by the language filter.
func (p Program) LanguageLabel() string {
	if p.Language != "" {
		return p.Language
	}
	if p.Source.HasFragments() {
		return LabelMarkup
	}
	return LabelLanguageUnset
}

// NormalizedLanguage is the lower-cased declared language. Surrounding
// whitespace is kept, so " javascript " matches no known language.
func (p Program) NormalizedLanguage() string {
	return strings.ToLower(p.Language)
}

// HasTag reports whether the program carries the exact tag.
func (p Program) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Subject groups programs.
type Subject struct {
	ID       string
	Name     string
	Short    string
	Programs []Program
}

// Program looks up a program of the subject by id.
func (s Subject) Program(id string) (Program, bool) {
	for _, p := range s.Programs {
		if p.ID == id {
			return p, true
		}
	}
	return Program{}, false
}

// Note is a reference entry passed through from the catalog document.
type Note struct {
	Title   string `json:"title" yaml:"title"`
	Subject string `json:"subject" yaml:"subject"`
	Type    string `json:"type" yaml:"type"`
	URL     string `json:"url" yaml:"url"`

	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Catalog is the immutable, loaded set of subjects and notes.
type Catalog struct {
	subjects []Subject
	notes    []Note
}

// New builds a catalog from already resolved subjects and notes.
func New(subjects []Subject, notes []Note) *Catalog {
	return &Catalog{subjects: subjects, notes: notes}
}

// Empty returns a catalog without subjects or notes.
func Empty() *Catalog {
	return &Catalog{}
}

// Subjects returns the subjects in document order.
func (c *Catalog) Subjects() []Subject {
	return c.subjects
}

// Subject looks up a subject by id.
func (c *Catalog) Subject(id string) (Subject, bool) {
	for _, s := range c.subjects {
		if s.ID == id {
			return s, true
		}
	}
	return Subject{}, false
}

// Selection is a resolved (subject, program) pair.
type Selection struct {
	Subject Subject
	Program Program
}

// Select resolves both identifiers. Either one missing yields ok == false.
func (c *Catalog) Select(subjectID, programID string) (Selection, bool) {
	subj, ok := c.Subject(subjectID)
	if !ok {
		return Selection{}, false
	}
	prog, ok := subj.Program(programID)
	if !ok {
		return Selection{}, false
	}
	return Selection{Subject: subj, Program: prog}, true
}
