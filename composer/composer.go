// Package composer turns a program's source into one renderable document.
//
// Unified code is returned verbatim. Fragment sources are assembled into a
// single HTML document: the style block goes in front of the first </head>
// (or in front of everything), the script block goes in front of the first
// </body> (or after everything). Compose is pure; it never mutates its input
// and returns identical output for identical input.
package composer

import (
	"strings"

	"github.com/isdmx/labhub/catalog"
)

// DefaultDocument is the skeleton used when a fragment source has no markup.
const DefaultDocument = `<!DOCTYPE html><html><head><meta charset="UTF-8"><title>Program</title></head><body><h1>Program</h1></body></html>`

const (
	closeHead = "</head>"
	closeBody = "</body>"
)

// Compose produces the document for src.
func Compose(src catalog.Source) string {
	switch src.Kind {
	case catalog.SourceUnified:
		return src.Code
	case catalog.SourceFragments:
		return composeFragments(src.HTML, src.CSS, src.JS)
	default:
		return ""
	}
}

// ComposeProgram is Compose applied to the program's resolved source.
func ComposeProgram(p catalog.Program) string {
	return Compose(p.Source)
}

func composeFragments(html, css, js string) string {
	doc := html
	if doc == "" {
		doc = DefaultDocument
	}

	if css != "" {
		style := "<style>\n" + css + "\n</style>\n"
		if strings.Contains(doc, closeHead) {
			doc = strings.Replace(doc, closeHead, style+closeHead, 1)
		} else {
			doc = style + doc
		}
	}

	if js != "" {
		script := "<script>\n" + js + "\n</script>"
		if strings.Contains(doc, closeBody) {
			doc = strings.Replace(doc, closeBody, script+"\n"+closeBody, 1)
		} else {
			doc += script
		}
	}

	return doc
}
