package sandbox

import "github.com/isdmx/labhub/catalog"

// ModeKind is the execution policy chosen for a program.
type ModeKind int

// Execution modes.
const (
	ModeViewOnly ModeKind = iota
	ModeRenderMarkup
	ModeRunScript
)

func (k ModeKind) String() string {
	switch k {
	case ModeRenderMarkup:
		return "render_markup"
	case ModeRunScript:
		return "run_script"
	default:
		return "view_only"
	}
}

// Mode describes how, or whether, a program is executed.
type Mode struct {
	Kind ModeKind
	// Note is the one-line explanation shown next to the run output.
	Note string
	// Reason is the advisory text for ModeViewOnly.
	Reason string
}

// Notes shown next to the run output.
const (
	NoteRenderMarkup  = "Rendering HTML/CSS/JS snippet in the frame below."
	NoteRunScript     = "Running JavaScript in an isolated interpreter."
	NoteCompiled      = "Python/C execution requires an interpreter or compiler outside this hub."
	NoteNotConfigured = "This language is not configured for execution. Code is view-only."
)

// Decide picks the execution mode. The order is fixed: fragment presence
// beats any declared language, then JavaScript runs, everything else is
// view-only.
func Decide(p catalog.Program) Mode {
	if p.Source.HasFragments() {
		return Mode{Kind: ModeRenderMarkup, Note: NoteRenderMarkup}
	}

	switch p.NormalizedLanguage() {
	case "javascript", "js":
		return Mode{Kind: ModeRunScript, Note: NoteRunScript}
	case "python", "py", "c":
		reason := "Execution is enabled only for JavaScript and HTML/CSS/JS snippets.\n" +
			"For " + orDefault(p.Language, "this language") + " programs, please use an external compiler/IDE."
		return Mode{Kind: ModeViewOnly, Note: NoteCompiled, Reason: reason}
	default:
		return Mode{
			Kind:   ModeViewOnly,
			Note:   NoteNotConfigured,
			Reason: "Execution is not available for language: " + orDefault(p.Language, "Unknown") + ".",
		}
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
