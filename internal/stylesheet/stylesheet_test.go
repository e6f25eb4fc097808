package stylesheet

import (
	"reflect"
	"strings"
	"testing"
)

const sample = `@charset "UTF-8";
/* header */
html, body { margin: 0; }
.nav a:hover, .footer-icon::before { color: #fff !important; }
@media (max-width: 600px) {
  .nav { display: none }
  .post .title { font-size: 2em; }
}
@font-face { font-family: "Open Sans"; src: url(/assets/fonts/open.woff2) format("woff2"); }
@keyframes spin { from { transform: rotate(0deg); } to { transform: rotate(360deg); } }
.katex-display > .katex { display: block; }
`

func mustParse(t *testing.T, src string) *Sheet {
	t.Helper()
	sheet, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return sheet
}

func selectorTexts(sels []Selector) []string {
	out := make([]string, 0, len(sels))
	for _, s := range sels {
		out = append(out, s.String())
	}
	return out
}

func TestParse_Structure(t *testing.T) {
	sheet := mustParse(t, sample)

	if len(sheet.Nodes) != 7 {
		t.Fatalf("len(Nodes) = %d, want 7", len(sheet.Nodes))
	}

	charset, ok := sheet.Nodes[0].(*AtRule)
	if !ok || charset.Name != "@charset" || charset.Block {
		t.Errorf("Nodes[0] = %#v, want @charset statement", sheet.Nodes[0])
	}

	media, ok := sheet.Nodes[3].(*AtRule)
	if !ok || !media.Grouping() || media.Prelude != "(max-width:600px)" || len(media.Nodes) != 2 {
		t.Errorf("Nodes[3] = %#v, want @media with two rules", sheet.Nodes[3])
	}

	fontFace, ok := sheet.Nodes[4].(*AtRule)
	if !ok || len(fontFace.Declarations) != 2 {
		t.Errorf("Nodes[4] = %#v, want @font-face with two declarations", sheet.Nodes[4])
	}

	keyframes, ok := sheet.Nodes[5].(*AtRule)
	if !ok || keyframes.Grouping() || !strings.Contains(keyframes.Raw, "rotate(360deg)") {
		t.Errorf("Nodes[5] = %#v, want opaque @keyframes", sheet.Nodes[5])
	}

	want := []string{"html", "body", ".nav a:hover", ".footer-icon::before", ".nav", ".post .title", ".katex-display > .katex"}
	if got := selectorTexts(sheet.Selectors()); !reflect.DeepEqual(got, want) {
		t.Errorf("Selectors() = %v, want %v", got, want)
	}

	rule := sheet.Nodes[2].(*Rule)
	if got := rule.Declarations[0]; got.Property != "color" || got.Value != "#fff !important" {
		t.Errorf("declaration = %+v, want color: #fff !important", got)
	}
}

func TestParse_Errors(t *testing.T) {
	for _, src := range []string{
		".a { color: red;",
		"@media screen { .a { color: red; }",
		"}",
		".a { color red; }",
	} {
		if _, err := Parse([]byte(src)); err == nil {
			t.Errorf("Parse(%q) error = nil, want error", src)
		}
	}
}

func TestParse_ByteOrderMark(t *testing.T) {
	sheet := mustParse(t, "\ufeff.a{color:red}.b{color:blue}")

	want := []string{".a", ".b"}
	if got := selectorTexts(sheet.Selectors()); !reflect.DeepEqual(got, want) {
		t.Fatalf("Selectors() = %q, want %q", got, want)
	}
	first := sheet.Selectors()[0]
	if len(first.Tags()) != 0 || !reflect.DeepEqual(first.Classes(), []string{"a"}) {
		t.Errorf("first selector tags = %q classes = %q", first.Tags(), first.Classes())
	}
	if strings.Contains(sheet.String(), "\ufeff") {
		t.Errorf("byte order mark written back:\n%s", sheet.String())
	}
}

func TestParse_TokenBodies(t *testing.T) {
	sheet := mustParse(t, `@container card (min-width:400px){.title{font-size:2em}}
@counter-style thumbs{system:cyclic;symbols:"👍";suffix:" "}
@layer base;`)

	if len(sheet.Nodes) != 3 {
		t.Fatalf("len(Nodes) = %d, want 3", len(sheet.Nodes))
	}
	container := sheet.Nodes[0].(*AtRule)
	if !container.Grouping() || len(container.Nodes) != 1 {
		t.Errorf("@container = %#v, want one nested rule", container)
	}
	if got := selectorTexts(sheet.Selectors()); !reflect.DeepEqual(got, []string{".title"}) {
		t.Errorf("Selectors() = %v", got)
	}
	counter := sheet.Nodes[1].(*AtRule)
	if len(counter.Declarations) != 3 || counter.Declarations[0].Property != "system" {
		t.Errorf("@counter-style declarations = %+v", counter.Declarations)
	}
	layer := sheet.Nodes[2].(*AtRule)
	if layer.Block || layer.Prelude != "base" {
		t.Errorf("@layer = %#v, want statement", layer)
	}
}

func TestParseSelector_RejectsLists(t *testing.T) {
	if _, err := ParseSelector("a, b"); err == nil {
		t.Error("expected an error for a selector list")
	}
}

func TestString_RoundTripIsStable(t *testing.T) {
	first := mustParse(t, sample).String()
	second := mustParse(t, first).String()
	if first != second {
		t.Errorf("String() not stable across re-parse:\n%s\n---\n%s", first, second)
	}
	if strings.Contains(first, "header") {
		t.Errorf("comments should be dropped, got:\n%s", first)
	}
}

func TestSelector_Analysis(t *testing.T) {
	tests := []struct {
		text       string
		classes    []string
		ids        []string
		tags       []string
		attribute  bool
		structural string
	}{
		{".nav a:hover", []string{"nav"}, nil, []string{"a"}, false, ".nav a"},
		{"#main > .post-title::after", []string{"post-title"}, []string{"main"}, nil, false, "#main > .post-title"},
		{"input[type=\"text\"]", nil, nil, []string{"input"}, true, "input[type=\"text\"]"},
		{".btn:not(.disabled)", []string{"btn"}, nil, nil, false, ".btn"},
		{":root", nil, nil, nil, false, ""},
		{"UL.list li:nth-child(2n+1)", []string{"list"}, nil, []string{"ul", "li"}, false, "UL.list li"},
		{"ul > :first-child", nil, nil, []string{"ul"}, false, "ul > *"},
		{":hover > .a", []string{"a"}, nil, nil, false, "* > .a"},
		{"nav :focus-within a", nil, nil, []string{"nav", "a"}, false, "nav * a"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			sel, err := ParseSelector(tt.text)
			if err != nil {
				t.Fatalf("ParseSelector() error = %v", err)
			}
			if !reflect.DeepEqual(sel.Classes(), tt.classes) {
				t.Errorf("Classes() = %v, want %v", sel.Classes(), tt.classes)
			}
			if !reflect.DeepEqual(sel.IDs(), tt.ids) {
				t.Errorf("IDs() = %v, want %v", sel.IDs(), tt.ids)
			}
			if !reflect.DeepEqual(sel.Tags(), tt.tags) {
				t.Errorf("Tags() = %v, want %v", sel.Tags(), tt.tags)
			}
			if sel.HasAttribute() != tt.attribute {
				t.Errorf("HasAttribute() = %v, want %v", sel.HasAttribute(), tt.attribute)
			}
			if sel.Structural() != tt.structural {
				t.Errorf("Structural() = %q, want %q", sel.Structural(), tt.structural)
			}
		})
	}
}

func TestSplit(t *testing.T) {
	sheet := mustParse(t, sample)

	matched, rest := sheet.Split(func(s Selector) bool {
		for _, c := range s.Classes() {
			if c == "nav" {
				return true
			}
		}
		return false
	})

	if got, want := selectorTexts(matched.Selectors()), []string{".nav a:hover", ".nav"}; !reflect.DeepEqual(got, want) {
		t.Errorf("matched selectors = %v, want %v", got, want)
	}
	if got, want := selectorTexts(rest.Selectors()), []string{"html", "body", ".footer-icon::before", ".post .title", ".katex-display > .katex"}; !reflect.DeepEqual(got, want) {
		t.Errorf("rest selectors = %v, want %v", got, want)
	}

	out := matched.String()
	if !strings.Contains(out, "@media (max-width:600px)") {
		t.Errorf("matched sheet lost its @media wrapper:\n%s", out)
	}
	if strings.Contains(out, "@font-face") || strings.Contains(out, "@keyframes") {
		t.Errorf("non-grouping at-rules must stay in rest:\n%s", out)
	}
	if !strings.Contains(rest.String(), "@keyframes spin") {
		t.Errorf("rest lost @keyframes:\n%s", rest.String())
	}
	if !strings.Contains(out, "color: #fff !important;") {
		t.Errorf("split rule lost its declarations:\n%s", out)
	}
}
