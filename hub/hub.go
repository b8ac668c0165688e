package hub

import (
	"context"
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/isdmx/labhub/catalog"
	"github.com/isdmx/labhub/composer"
	"github.com/isdmx/labhub/metrics"
	"github.com/isdmx/labhub/sandbox"
	"github.com/isdmx/labhub/usercopy"
)

// DetailNote is shown on every opened program.
const DetailNote = "JavaScript and HTML/CSS/JS snippets can be run. Python/C are view-only."

// StatusSaved is reported after a user copy is stored.
const StatusSaved = "Saved locally"

// Service is the lab hub: an immutable catalog, the user copy store and the
// execution sandbox. Every operation names its subject and program
// explicitly; unknown identifiers make the operation a no-op reported with
// ok == false.
type Service struct {
	logger   *zap.Logger
	catalog  *catalog.Catalog
	notice   string
	store    usercopy.Store
	executor sandbox.SandboxExecutor
	renderer sandbox.Renderer
}

// New creates a Service over an already loaded catalog.
func New(
	logger *zap.Logger,
	cat *catalog.Catalog,
	store usercopy.Store,
	executor sandbox.SandboxExecutor,
	renderer sandbox.Renderer,
) *Service {
	if cat == nil {
		cat = catalog.Empty()
	}
	return &Service{
		logger:   logger,
		catalog:  cat,
		store:    store,
		executor: executor,
		renderer: renderer,
	}
}

// LoadCatalog loads the catalog at source. A failure is not fatal: it is
// logged and counted, and an empty catalog is returned together with a
// user-facing notice.
func LoadCatalog(ctx context.Context, logger *zap.Logger, source string) (*catalog.Catalog, string) {
	cat, err := catalog.Load(ctx, source)
	if err != nil {
		metrics.CatalogLoads().WithLabelValues("error").Inc()
		logger.Warn("catalog load failed, continuing with an empty catalog",
			zap.String("source", source),
			zap.Error(err))
		return catalog.Empty(), fmt.Sprintf("Failed to load %s", path.Base(source))
	}

	metrics.CatalogLoads().WithLabelValues("ok").Inc()
	logger.Info("catalog loaded",
		zap.String("source", source),
		zap.Int("subjects", len(cat.Subjects())),
		zap.Int("programs", len(cat.Entries())))
	return cat, ""
}

// WithNotice records the catalog load notice shown to users.
func (s *Service) WithNotice(notice string) *Service {
	s.notice = notice
	return s
}

// Notice is the catalog load notice, empty when loading succeeded.
func (s *Service) Notice() string {
	return s.notice
}

// Catalog exposes the loaded catalog.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// Subjects lists every subject.
func (s *Service) Subjects() []SubjectCard {
	subjects := s.catalog.Subjects()
	cards := make([]SubjectCard, 0, len(subjects))
	for _, subj := range subjects {
		cards = append(cards, subjectCard(subj))
	}
	return cards
}

// OpenSubject returns the subject with its filter options and unfiltered programs.
func (s *Service) OpenSubject(subjectID string) (SubjectView, bool) {
	subj, ok := s.catalog.Subject(subjectID)
	if !ok {
		return SubjectView{}, false
	}

	opts := subj.Options()
	return SubjectView{
		Subject:   subjectCard(subj),
		Tags:      opts.Tags,
		Languages: opts.Languages,
		Programs:  s.cards(subj, subj.Programs),
	}, true
}

// Programs lists the subject's programs matching the tag and language label filters.
func (s *Service) Programs(subjectID, tag, language string) ([]ProgramCard, bool) {
	subj, ok := s.catalog.Subject(subjectID)
	if !ok {
		return nil, false
	}
	return s.cards(subj, subj.Filter(tag, language)), true
}

func (s *Service) cards(subj catalog.Subject, programs []catalog.Program) []ProgramCard {
	cards := make([]ProgramCard, 0, len(programs))
	for _, p := range programs {
		cards = append(cards, programCard(subj.ID, "", p))
	}
	return cards
}

// Compose returns the composed document of a program.
func (s *Service) Compose(subjectID, programID string) (string, bool) {
	sel, ok := s.catalog.Select(subjectID, programID)
	if !ok {
		return "", false
	}
	return composer.ComposeProgram(sel.Program), true
}

// OpenProgram returns the program detail. The user code is the saved copy
// when one exists, else the composed document. Opening a program clears its
// rendering frame.
func (s *Service) OpenProgram(ctx context.Context, subjectID, programID string) (Detail, bool, error) {
	sel, ok := s.catalog.Select(subjectID, programID)
	if !ok {
		return Detail{}, false, nil
	}

	composed := composer.ComposeProgram(sel.Program)
	saved, hasCopy, err := s.store.Load(ctx, subjectID, programID)
	if err != nil {
		return Detail{}, true, fmt.Errorf("failed to read user copy: %w", err)
	}

	userCode := composed
	if hasCopy && saved != "" {
		userCode = saved
	}

	s.renderer.Clear(subjectID, programID)

	prog := sel.Program
	tags := prog.Tags
	if tags == nil {
		tags = []string{}
	}
	return Detail{
		SubjectID:   sel.Subject.ID,
		SubjectName: sel.Subject.Name,
		ProgramID:   prog.ID,
		Title:       prog.DisplayTitle(),
		Language:    prog.LanguageLabel(),
		Meta:        sel.Subject.Name + " • " + prog.LanguageLabel(),
		Problem:     prog.Problem,
		Tags:        tags,
		Code:        composed,
		UserCode:    userCode,
		HasUserCopy: hasCopy,
		Mode:        sandbox.Decide(prog).Kind.String(),
		Note:        DetailNote,
	}, true, nil
}

// SaveUserCopy stores code as the user's copy of a program, overwriting any earlier copy.
func (s *Service) SaveUserCopy(ctx context.Context, subjectID, programID, code string) (SaveView, bool, error) {
	if _, ok := s.catalog.Select(subjectID, programID); !ok {
		return SaveView{}, false, nil
	}

	if err := s.store.Save(ctx, subjectID, programID, code); err != nil {
		metrics.UserCopySaves().WithLabelValues(s.store.Backend(), "error").Inc()
		s.logger.Error("failed to save user copy",
			zap.String("subject_id", subjectID),
			zap.String("program_id", programID),
			zap.Error(err))
		return SaveView{}, true, err
	}

	metrics.UserCopySaves().WithLabelValues(s.store.Backend(), "ok").Inc()
	s.logger.Info("user copy saved",
		zap.String("subject_id", subjectID),
		zap.String("program_id", programID),
		zap.Int("bytes", len(code)))

	return SaveView{SubjectID: subjectID, ProgramID: programID, Status: StatusSaved}, true, nil
}

// EffectiveSource resolves what a run executes: the edited code when it is
// not blank, else the saved copy when it is not blank, else the composed
// document. Non-blank sources are trimmed.
func (s *Service) EffectiveSource(ctx context.Context, sel catalog.Selection, edited string) (string, error) {
	if code := strings.TrimSpace(edited); code != "" {
		return code, nil
	}

	saved, ok, err := s.store.Load(ctx, sel.Subject.ID, sel.Program.ID)
	if err != nil {
		return "", fmt.Errorf("failed to read user copy: %w", err)
	}
	if code := strings.TrimSpace(saved); ok && code != "" {
		return code, nil
	}

	return composer.ComposeProgram(sel.Program), nil
}

// Run executes a program. edited is the code currently in the editor and
// may be empty.
func (s *Service) Run(ctx context.Context, subjectID, programID, edited string) (RunView, bool, error) {
	sel, ok := s.catalog.Select(subjectID, programID)
	if !ok {
		return RunView{}, false, nil
	}

	source, err := s.EffectiveSource(ctx, sel, edited)
	if err != nil {
		return RunView{}, true, err
	}

	out, err := s.executor.Execute(ctx, sandbox.Request{Selection: sel, Source: source})
	if err != nil {
		return RunView{}, true, fmt.Errorf("execution failed: %w", err)
	}

	return runView(sel, out), true, nil
}

// Search runs the global search over every program.
func (s *Service) Search(query string) SearchView {
	res := s.catalog.Search(query)

	cards := make([]ProgramCard, 0, len(res.Matches))
	for _, e := range res.Matches {
		cards = append(cards, programCard(e.SubjectID, e.SubjectName, e.Program))
	}
	return SearchView{Query: query, Summary: res.Summary, Programs: cards}
}

// Notes lists the catalog notes.
func (s *Service) Notes() []catalog.Note {
	return s.catalog.Notes()
}
