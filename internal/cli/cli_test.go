package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docforge/internal/doctree"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand("test")
	var out, errb bytes.Buffer
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errb)
	err := root.Execute()
	return out.String(), err
}

const paragraphJSON = `[{"type":"paragraph","children":[{"text":"hello"}]}]`

func TestMd2JSON(t *testing.T) {
	out, err := run(t, "# Title\n\n- a\n- b\n", "md2json")
	require.NoError(t, err)

	var doc doctree.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Children, 2)
	assert.Equal(t, doctree.HeadingOne, doc.Children[0].(*doctree.Element).Kind)
	assert.Equal(t, doctree.BulletedList, doc.Children[1].(*doctree.Element).Kind)
}

func TestEngineSelection(t *testing.T) {
	_, err := run(t, "x", "md2json", "--engine", "pandoc")
	assert.Error(t, err)

	t.Setenv("DOCFORGE_ENGINE", "commonmark")
	out, err := run(t, "*a*", "md2json")
	require.NoError(t, err)
	var doc doctree.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	texts := doc.Texts()
	require.Len(t, texts, 1)
	assert.True(t, texts[0].Italic)
}

func TestLogLevel(t *testing.T) {
	_, err := run(t, "", "md2json", "--log-level", "loud")
	assert.ErrorContains(t, err, "log-level")

	_, err = run(t, "x", "md2json", "--log-level", "debug")
	assert.NoError(t, err)
}

func TestPlain(t *testing.T) {
	in := `[{"type":"heading-one","children":[{"text":"Hi"}]},{"type":"bulleted-list","children":[{"type":"list-item","children":[{"type":"paragraph","children":[{"text":"one","bold":true}]}]}]}]`
	out, err := run(t, in, "plain")
	require.NoError(t, err)
	assert.Equal(t, "Hi\none\n", out)

	_, err = run(t, "{", "plain")
	assert.Error(t, err)
}

func TestEdit(t *testing.T) {
	out, err := run(t, paragraphJSON, "edit", "toggle-list", "--at", "0.0:2", "--format", "numbered-list")
	require.NoError(t, err)

	var resp struct {
		Document  doctree.Document  `json:"document"`
		Selection doctree.Selection `json:"selection"`
		Handled   bool              `json:"handled"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Handled)
	want := &doctree.Document{Children: []doctree.Node{
		doctree.NewElement(doctree.NumberedList,
			doctree.NewElement(doctree.ListItem, doctree.NewParagraph(&doctree.Text{Text: "hello"}))),
	}}
	assert.True(t, doctree.Equal(want, &resp.Document))
	assert.Equal(t, doctree.Point{Path: doctree.Path{0, 0, 0, 0}, Offset: 2}, resp.Selection.Anchor)
}

func TestEditErrors(t *testing.T) {
	_, err := run(t, paragraphJSON, "edit", "toggle-list")
	assert.Error(t, err, "--at is required")

	_, err = run(t, paragraphJSON, "edit", "toggle-list", "--at", "zero")
	assert.ErrorContains(t, err, "--at")

	_, err = run(t, paragraphJSON, "edit", "explode", "--at", "0.0:0")
	assert.Error(t, err)

	out, err := run(t, paragraphJSON, "edit", "indent", "--at", "0.0:0")
	require.NoError(t, err)
	assert.Contains(t, out, `"handled": false`)
}

func TestCheck(t *testing.T) {
	out, err := run(t, paragraphJSON, "check")
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)

	bad := `[{"type":"bulleted-list","children":[{"type":"paragraph","children":[{"text":"x"}]}]}]`
	out, err = run(t, bad, "check")
	assert.ErrorIs(t, err, errInvalid)
	assert.Contains(t, out, "not a list-item")
}

func TestPdf2md(t *testing.T) {
	in := "— 1 — HEADER\nBody one\nFooter\f— 2 — HEADER\nBody two\nFooter\f"
	out, err := run(t, in, "pdf2md")
	require.NoError(t, err)
	assert.Contains(t, out, "Body one")
	assert.Contains(t, out, "Body two")
	assert.NotContains(t, out, "HEADER")

	out, err = run(t, in, "pdf2md", "--json")
	require.NoError(t, err)
	var res struct {
		Pages        int              `json:"pages"`
		RunningLines []string         `json:"running_lines"`
		Document     doctree.Document `json:"document"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, []string{"Footer", "HEADER"}, res.RunningLines)
	assert.NotEmpty(t, res.Document.Children)
}

func TestPdf2mdFilesAndHeuristics(t *testing.T) {
	dir := t.TempDir()
	p1 := filepath.Join(dir, "p1.txt")
	p2 := filepath.Join(dir, "p2.txt")
	require.NoError(t, os.WriteFile(p1, []byte("Body one."), 0o644))
	require.NoError(t, os.WriteFile(p2, []byte("Body two."), 0o644))

	out, err := run(t, "", "pdf2md", p1, p2)
	require.NoError(t, err)
	assert.Contains(t, out, "Body one.\n\nBody two.")
	assert.NotContains(t, out, "#")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("repeat_ratio: [x"), 0o644))
	_, err = run(t, "", "pdf2md", "--heuristics", bad, p1)
	assert.Error(t, err)
}

func TestImport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("# Notes\n\nSome **bold** text."), 0o644))

	out, err := run(t, "", "import", path, "--format", "text")
	require.NoError(t, err)
	assert.Equal(t, "Notes\nSome bold text.\n", out)

	out, err = run(t, "", "import", path, "--title", "Renamed")
	require.NoError(t, err)
	var imp struct {
		Title  string `json:"title"`
		Format string `json:"format"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &imp))
	assert.Equal(t, "Renamed", imp.Title)
	assert.Equal(t, "md", imp.Format)

	_, err = run(t, "", "import", path, "--format", "yaml")
	assert.Error(t, err)

	_, err = run(t, "", "import", filepath.Join(t.TempDir(), "sheet.xlsx"))
	assert.ErrorContains(t, err, "unsupported")
}

func TestChunk(t *testing.T) {
	in := `[{"type":"heading-one","children":[{"text":"Intro"}]},{"type":"paragraph","children":[{"text":"Hello there."}]}]`
	out, err := run(t, in, "chunk", "--title", "Doc", "--min", "1")
	require.NoError(t, err)

	var chunks []struct {
		Text       string   `json:"text"`
		Title      string   `json:"title"`
		Breadcrumb []string `json:"breadcrumb"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &chunks))
	require.Len(t, chunks, 1)
	assert.Equal(t, "Hello there.", chunks[0].Text)
	assert.Equal(t, "Doc", chunks[0].Title)
	assert.Equal(t, []string{"Intro"}, chunks[0].Breadcrumb)
}
