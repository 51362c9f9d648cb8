package parser

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/docforge/internal/doctree"
	"github.com/dgallion1/docforge/internal/plaintext"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"a.txt", "*parser.TextParser"},
		{"a.md", "*parser.MarkdownParser"},
		{"a.MARKDOWN", "*parser.MarkdownParser"},
		{"a.csv", "*parser.CSVParser"},
		{"a.htm", "*parser.HTMLParser"},
		{"a.html", "*parser.HTMLParser"},
		{"a.pdf", "*parser.PDFParser"},
		{"a.docx", "*parser.DOCXParser"},
	}
	for _, tt := range tests {
		p, err := ForFile(tt.filename, Options{})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.filename, err)
		}
		if got := fmt.Sprintf("%T", p); got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.filename, tt.want, got)
		}
		if !IsSupportedExtension(tt.filename) {
			t.Errorf("%s: expected supported extension", tt.filename)
		}
	}

	if _, err := ForFile("a.xlsx", Options{}); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if IsSupportedExtension("a.xlsx") {
		t.Error("expected .xlsx to be unsupported")
	}
}

func TestEscapeLine(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain text", "plain text"},
		{"# title", `\# title`},
		{"  > quote", `  \> quote`},
		{"- item", `\- item`},
		{"-5 degrees", "-5 degrees"},
		{"12. point", `12\. point`},
		{"3) point", `3\) point`},
		{"2024.01", "2024.01"},
		{"a*b_c`d<e", "a\\*b\\_c\\`d\\<e"},
		{`back\slash`, `back\\slash`},
	}
	for _, tt := range tests {
		if got := escapeLine(tt.in); got != tt.want {
			t.Errorf("escapeLine(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

// listItems returns the text of each item of the list at the top-level index.
func listItems(t *testing.T, d *doctree.Document, index int) []string {
	t.Helper()
	if index >= len(d.Children) {
		t.Fatalf("no block at %d", index)
	}
	list, ok := d.Children[index].(*doctree.Element)
	if !ok || !list.Kind.IsList() {
		t.Fatalf("block %d is not a list: %#v", index, d.Children[index])
	}
	var out []string
	for _, it := range list.Children {
		out = append(out, doctree.NodeString(it))
	}
	return out
}

func TestCSVParser(t *testing.T) {
	input := "name,qty\nwidget,2\n*star*,3\n"
	p := &CSVParser{}
	imp, err := p.Parse(strings.NewReader(input), "items.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if imp.Title != "items" || imp.Format != "csv" {
		t.Errorf("unexpected title/format %q/%q", imp.Title, imp.Format)
	}

	kinds, texts := blocks(t, imp.Document)
	wantKinds := []doctree.Kind{doctree.HeadingOne, doctree.Paragraph, doctree.HeadingTwo, doctree.BulletedList}
	if len(kinds) != len(wantKinds) {
		t.Fatalf("expected %v, got %v", wantKinds, kinds)
	}
	for i := range wantKinds {
		if kinds[i] != wantKinds[i] {
			t.Errorf("block %d: expected %s, got %s", i, wantKinds[i], kinds[i])
		}
	}
	if texts[1] != "Columns: name, qty" {
		t.Errorf("unexpected columns line %q", texts[1])
	}
	if texts[2] != "Rows 2-3" {
		t.Errorf("unexpected rows heading %q", texts[2])
	}

	items := listItems(t, imp.Document, 3)
	want := []string{"name: widget, qty: 2", "name: *star*, qty: 3"}
	if len(items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(items))
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("item %d: expected %q, got %q", i, want[i], items[i])
		}
	}
	for _, tx := range imp.Document.Texts() {
		if tx.Italic {
			t.Errorf("cell text must not become emphasis: %q", tx.Text)
		}
	}
}

func TestCSVParser_Batches(t *testing.T) {
	var b strings.Builder
	b.WriteString("n\n")
	for i := range 25 {
		fmt.Fprintf(&b, "%d\n", i)
	}
	p := &CSVParser{}
	imp, err := p.Parse(strings.NewReader(b.String()), "n.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(imp.Markdown, "## Rows 2-21\n") || !strings.Contains(imp.Markdown, "## Rows 22-26\n") {
		t.Errorf("expected two row batches, got:\n%s", imp.Markdown)
	}
}

func TestCSVParser_Empty(t *testing.T) {
	p := &CSVParser{}
	imp, err := p.Parse(strings.NewReader(""), "empty.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !doctree.Equal(imp.Document, doctree.NewEmpty()) {
		t.Errorf("expected one empty paragraph")
	}
}

func TestHTMLParser(t *testing.T) {
	input := `<html><head><title>Doc Title</title><style>p{}</style></head><body>
<nav>menu</nav>
<h1>Main</h1>
<p>Some <b>bold</b> and <u>under</u> text.</p>
<h3>Deep</h3>
<ul><li>one</li><li>two</li></ul>
<script>alert(1)</script>
<footer>copyright</footer>
</body></html>`

	p := &HTMLParser{}
	imp, err := p.Parse(strings.NewReader(input), "page.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if imp.Title != "Doc Title" {
		t.Errorf("expected title %q, got %q", "Doc Title", imp.Title)
	}
	if imp.Format != "html" {
		t.Errorf("expected format html, got %q", imp.Format)
	}
	for _, gone := range []string{"menu", "alert", "copyright"} {
		if strings.Contains(imp.Markdown, gone) {
			t.Errorf("expected %q to be dropped:\n%s", gone, imp.Markdown)
		}
	}
	if !strings.Contains(imp.Markdown, "## Deep") {
		t.Errorf("expected deep heading to collapse to level two:\n%s", imp.Markdown)
	}

	kinds, texts := blocks(t, imp.Document)
	wantKinds := []doctree.Kind{doctree.HeadingOne, doctree.Paragraph, doctree.HeadingTwo, doctree.BulletedList}
	if len(kinds) != len(wantKinds) {
		t.Fatalf("expected %v, got %v", wantKinds, kinds)
	}
	if texts[1] != "Some bold and under text." {
		t.Errorf("unexpected paragraph %q", texts[1])
	}

	var bold, under bool
	for _, tx := range imp.Document.Texts() {
		bold = bold || (tx.Bold && tx.Text == "bold")
		under = under || (tx.Underline && tx.Text == "under")
	}
	if !bold || !under {
		t.Errorf("expected bold and underline runs, got bold=%v underline=%v", bold, under)
	}
	if items := listItems(t, imp.Document, 3); len(items) != 2 {
		t.Errorf("expected 2 list items, got %v", items)
	}
}

func buildDOCX(t *testing.T) []byte {
	t.Helper()
	w := docx.New().WithDefaultTheme()
	w.AddParagraph().Style("Heading1").AddText("Report")
	para := w.AddParagraph()
	para.AddText("plain ")
	para.AddText("bold").Bold()
	para.AddText(" end")
	w.AddParagraph().NumPr("1", "0").AddText("first")
	w.AddParagraph().NumPr("1", "1").AddText("nested")

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		t.Fatalf("write docx: %v", err)
	}
	return buf.Bytes()
}

func TestDOCXParser(t *testing.T) {
	p := &DOCXParser{}
	imp, err := p.Parse(bytes.NewReader(buildDOCX(t)), "report.docx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if imp.Title != "report" || imp.Format != "docx" {
		t.Errorf("unexpected title/format %q/%q", imp.Title, imp.Format)
	}
	if !strings.Contains(imp.Markdown, "# Report") {
		t.Errorf("expected heading in markdown:\n%s", imp.Markdown)
	}
	if !strings.Contains(imp.Markdown, "plain **bold** end") {
		t.Errorf("expected bold run in markdown:\n%s", imp.Markdown)
	}

	kinds, _ := blocks(t, imp.Document)
	wantKinds := []doctree.Kind{doctree.HeadingOne, doctree.Paragraph, doctree.BulletedList}
	if len(kinds) != len(wantKinds) {
		t.Fatalf("expected %v, got %v", wantKinds, kinds)
	}
	if got := plaintext.FromDocument(imp.Document); !strings.Contains(got, "first\nnested") {
		t.Errorf("expected nested list text, got %q", got)
	}
	if err := doctree.Validate(imp.Document); err != nil {
		t.Errorf("invalid document: %v", err)
	}
}

func TestDOCXParser_InvalidInput(t *testing.T) {
	p := &DOCXParser{}
	if _, err := p.Parse(strings.NewReader("not a zip"), "bad.docx"); err == nil {
		t.Error("expected error for invalid docx")
	}
}

func TestPDFParser_InvalidInput(t *testing.T) {
	p := &PDFParser{}
	if _, err := p.Parse(strings.NewReader("not a pdf"), "bad.pdf"); err == nil {
		t.Error("expected error for invalid pdf")
	}
}

func TestTextFromStream(t *testing.T) {
	stream := strings.Join([]string{
		"BT",
		"/F1 12 Tf",
		"72 720 Td",
		"(Hello) Tj",
		"10 0 Td",
		"[(Wor) -20 (ld)] TJ",
		"0 -14 Td",
		`(Second \(line\)) Tj`,
		"T*",
		`(Third\040line) Tj`,
		"ET",
	}, "\n")
	got := textFromStream([]byte(stream))
	want := "Hello World\nSecond (line)\nThird line"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestJoinFragments(t *testing.T) {
	tests := []struct {
		parts []string
		want  string
	}{
		{[]string{"Hello", "world"}, "Hello world"},
		{[]string{"Hello ", "world"}, "Hello world"},
		{[]string{"国有", "企业"}, "国有企业"},
		{[]string{"第", "3", "页"}, "第 3 页"},
		{[]string{"", "x"}, "x"},
	}
	for _, tt := range tests {
		if got := joinFragments(tt.parts); got != tt.want {
			t.Errorf("joinFragments(%q): expected %q, got %q", tt.parts, tt.want, got)
		}
	}
}

func TestSplitPages(t *testing.T) {
	got := splitPages("one\ftwo\f")
	if len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Errorf("unexpected pages %q", got)
	}
}
