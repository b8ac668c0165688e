package composer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdmx/labhub/catalog"
)

func TestComposeUnifiedSourceWins(t *testing.T) {
	src := catalog.NewSource("X", "<head></head><body></body>", "a{}", "b();")
	assert.Equal(t, "X", Compose(src))
}

func TestComposeEmpty(t *testing.T) {
	assert.Equal(t, "", Compose(catalog.NewSource("", "", "", "")))
	assert.Equal(t, "", Compose(catalog.Source{}))
}

func TestComposeInjectsBeforeClosingTags(t *testing.T) {
	src := catalog.FragmentSource("<head></head><body></body>", "a{}", "b();")

	got := Compose(src)

	assert.Equal(t, "<head><style>\na{}\n</style>\n</head><body><script>\nb();\n</script>\n</body>", got)
	assert.Equal(t, 1, strings.Count(got, "<style>"))
	assert.Equal(t, 1, strings.Count(got, "<script>"))
	assert.True(t, strings.HasSuffix(got, "</script>\n</body>"))
	assert.Contains(t, got, "</style>\n</head>")
}

func TestComposeReplacesOnlyFirstClosingTag(t *testing.T) {
	html := "<head></head><body><template><head></head><body></body></template></body>"
	got := Compose(catalog.FragmentSource(html, "a{}", "b();"))

	assert.Equal(t, 2, strings.Count(got, "</head>"))
	assert.Equal(t, 2, strings.Count(got, "</body>"))
	assert.Equal(t, 1, strings.Count(got, "<style>"))
	assert.Equal(t, 1, strings.Count(got, "<script>"))
	assert.Equal(t,
		"<head><style>\na{}\n</style>\n</head><body><template><head></head><body><script>\nb();\n</script>\n</body></template></body>",
		got)
}

func TestComposeWithoutClosingTags(t *testing.T) {
	got := Compose(catalog.FragmentSource("<p>hi</p>", "p{}", "go();"))
	assert.Equal(t, "<style>\np{}\n</style>\n<p>hi</p><script>\ngo();\n</script>", got)
}

func TestComposeHTMLOnlyIsUnchanged(t *testing.T) {
	html := "<html><head></head><body><p>plain</p></body></html>"
	assert.Equal(t, html, Compose(catalog.FragmentSource(html, "", "")))
}

func TestComposeSynthesizesSkeleton(t *testing.T) {
	t.Run("CSSOnly", func(t *testing.T) {
		got := Compose(catalog.FragmentSource("", "h1{}", ""))
		assert.Equal(t, strings.Replace(DefaultDocument, "</head>", "<style>\nh1{}\n</style>\n</head>", 1), got)
	})

	t.Run("JSOnly", func(t *testing.T) {
		got := Compose(catalog.FragmentSource("", "", "run();"))
		assert.Equal(t, strings.Replace(DefaultDocument, "</body>", "<script>\nrun();\n</script>\n</body>", 1), got)
	})
}

func TestComposeIsPure(t *testing.T) {
	prog := catalog.Program{
		ID:     "p",
		Source: catalog.FragmentSource("<head></head><body></body>", "a{}", "b();"),
	}
	before := prog.Source

	first := ComposeProgram(prog)
	second := ComposeProgram(prog)

	require.Equal(t, first, second)
	assert.Equal(t, before, prog.Source)
}
