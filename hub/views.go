package hub

import (
	"github.com/isdmx/labhub/catalog"
	"github.com/isdmx/labhub/sandbox"
)

// SubjectCard summarises a subject in the subject grid.
type SubjectCard struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Short        string `json:"short"`
	ProgramCount int    `json:"program_count"`
}

// ProgramCard summarises a program in listings and search results.
type ProgramCard struct {
	SubjectID   string   `json:"subject_id"`
	SubjectName string   `json:"subject_name,omitempty"`
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Language    string   `json:"language"`
	Tags        []string `json:"tags"`
}

// SubjectView is an opened subject with its filter options.
type SubjectView struct {
	Subject   SubjectCard   `json:"subject"`
	Tags      []string      `json:"tags"`
	Languages []string      `json:"languages"`
	Programs  []ProgramCard `json:"programs"`
}

// Detail is an opened program.
type Detail struct {
	SubjectID   string   `json:"subject_id"`
	SubjectName string   `json:"subject_name"`
	ProgramID   string   `json:"program_id"`
	Title       string   `json:"title"`
	Language    string   `json:"language"`
	Meta        string   `json:"meta"`
	Problem     string   `json:"problem"`
	Tags        []string `json:"tags"`
	// Code is the composed document.
	Code string `json:"code"`
	// UserCode is the saved user copy, or Code when there is none.
	UserCode    string `json:"user_code"`
	HasUserCopy bool   `json:"has_user_copy"`
	Mode        string `json:"mode"`
	Note        string `json:"note"`
}

// RunView is the outcome of a run request.
type RunView struct {
	SubjectID string `json:"subject_id"`
	ProgramID string `json:"program_id"`
	Mode      string `json:"mode"`
	Note      string `json:"note"`
	Output    string `json:"output"`
	Failed    bool   `json:"failed"`
	FrameURL  string `json:"frame_url,omitempty"`
	Document  string `json:"document,omitempty"`
}

// SaveView reports a saved user copy.
type SaveView struct {
	SubjectID string `json:"subject_id"`
	ProgramID string `json:"program_id"`
	Status    string `json:"status"`
}

// SearchView is the result of a global search.
type SearchView struct {
	Query    string        `json:"query"`
	Summary  string        `json:"summary"`
	Programs []ProgramCard `json:"programs"`
}

func subjectCard(s catalog.Subject) SubjectCard {
	return SubjectCard{ID: s.ID, Name: s.Name, Short: s.Short, ProgramCount: len(s.Programs)}
}

func programCard(subjectID, subjectName string, p catalog.Program) ProgramCard {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return ProgramCard{
		SubjectID:   subjectID,
		SubjectName: subjectName,
		ID:          p.ID,
		Title:       p.DisplayTitle(),
		Language:    p.LanguageLabel(),
		Tags:        tags,
	}
}

func runView(sel catalog.Selection, out sandbox.Outcome) RunView {
	v := RunView{
		SubjectID: sel.Subject.ID,
		ProgramID: sel.Program.ID,
		Mode:      out.Mode.Kind.String(),
		Note:      out.Mode.Note,
		Output:    out.Output,
		Failed:    out.Failed,
	}
	if out.Frame != nil {
		v.FrameURL = out.Frame.URL
		v.Document = out.Frame.Document
	}
	return v
}
