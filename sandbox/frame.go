package sandbox

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	chi "github.com/go-chi/chi/v5"
)

// FramePrefix is the HTTP path under which rendered frames are served.
const FramePrefix = "/frames/"

// Frame is a rendered document addressable over HTTP.
type Frame struct {
	SubjectID string
	ProgramID string
	// URL is where the frame can be loaded, relative unless a public URL is configured.
	URL      string
	Document string
}

// Renderer displays composed documents in an isolated context.
type Renderer interface {
	// Render replaces the frame's content entirely.
	Render(subjectID, programID, document string) Frame
	// Clear empties the frame.
	Clear(subjectID, programID string)
}

type frameKey struct {
	subject string
	program string
}

// FrameStore keeps the current document of every frame in memory and serves
// it with a sandboxing Content-Security-Policy, standing in for an iframe
// srcdoc.
type FrameStore struct {
	mu        sync.RWMutex
	frames    map[frameKey]string
	publicURL string
	policy    string
}

// NewFrameStore creates an empty FrameStore.
func NewFrameStore(publicURL, policy string) *FrameStore {
	return &FrameStore{
		frames:    make(map[frameKey]string),
		publicURL: strings.TrimRight(publicURL, "/"),
		policy:    policy,
	}
}

// FramePath returns the path of the frame for a subject and program.
func FramePath(subjectID, programID string) string {
	return FramePrefix + url.PathEscape(subjectID) + "/" + url.PathEscape(programID)
}

// Render implements Renderer.
func (s *FrameStore) Render(subjectID, programID, document string) Frame {
	s.mu.Lock()
	s.frames[frameKey{subjectID, programID}] = document
	s.mu.Unlock()

	return Frame{
		SubjectID: subjectID,
		ProgramID: programID,
		URL:       s.publicURL + FramePath(subjectID, programID),
		Document:  document,
	}
}

// Clear implements Renderer.
func (s *FrameStore) Clear(subjectID, programID string) {
	s.mu.Lock()
	delete(s.frames, frameKey{subjectID, programID})
	s.mu.Unlock()
}

// Document returns the current document of a frame.
func (s *FrameStore) Document(subjectID, programID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.frames[frameKey{subjectID, programID}]
	return doc, ok
}

// Handler serves GET /frames/{subject}/{program}. A cleared or never
// rendered frame is an empty document, like an iframe without srcdoc.
func (s *FrameStore) Handler() http.Handler {
	router := chi.NewRouter()
	router.Get(FramePrefix+"{subject}/{program}", func(w http.ResponseWriter, r *http.Request) {
		subjectID, programID, err := parseFramePath(r.URL.EscapedPath())
		if err != nil {
			http.Error(w, "malformed frame path", http.StatusBadRequest)
			return
		}
		doc, _ := s.Document(subjectID, programID)

		h := w.Header()
		h.Set("Content-Type", "text/html; charset=utf-8")
		h.Set("Cache-Control", "no-store")
		h.Set("X-Content-Type-Options", "nosniff")
		if s.policy != "" {
			h.Set("Content-Security-Policy", s.policy)
		}
		_, _ = w.Write([]byte(doc))
	})
	return router
}

// parseFramePath reverses FramePath. It works on the escaped path because
// chi matches on the decoded path when RawPath is empty, and the ids must be
// unescaped exactly once.
func parseFramePath(escaped string) (subjectID, programID string, err error) {
	rest, ok := strings.CutPrefix(escaped, FramePrefix)
	if !ok {
		return "", "", fmt.Errorf("not a frame path: %s", escaped)
	}
	subject, program, ok := strings.Cut(rest, "/")
	if !ok || strings.Contains(program, "/") {
		return "", "", fmt.Errorf("not a frame path: %s", escaped)
	}
	if subjectID, err = url.PathUnescape(subject); err != nil {
		return "", "", err
	}
	if programID, err = url.PathUnescape(program); err != nil {
		return "", "", err
	}
	return subjectID, programID, nil
}
