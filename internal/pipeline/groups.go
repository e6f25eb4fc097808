package pipeline

import "github.com/sitepipe/sitepipe/internal/activation"

// Group is one stylesheet asset group: the SCSS entry point, the generated
// page its critical path is computed for, and what purge reads.
type Group struct {
	Name string
	// Stylesheet is the base name shared by _css/<name>.scss and
	// assets/styles/<name>.css.
	Stylesheet      string
	Page            string
	CriticalInclude string
	// Content are doublestar patterns relative to the generated site dir.
	Content []string
	// Allow lists class names and ids that are never purged.
	Allow []string
}

// Section is the revision section for the group's stylesheet.
func (g Group) Section() string { return "css-" + g.Name }

// Script is a script bundle entry point.
type Script struct {
	Name    string
	Source  string
	Section string
}

const (
	homeBundle = "assets/js/index.home.min.js"
	blogBundle = "assets/js/index.blog.min.js"
)

func DefaultGroups() []Group {
	return []Group{
		{
			Name:            "home",
			Stylesheet:      "style.home",
			Page:            "index.html",
			CriticalInclude: "critical",
			Content:         []string{"index.html", homeBundle},
		},
		{
			Name:            "blog-archive",
			Stylesheet:      "style.blog.archive",
			Page:            "blog/archive/index.html",
			CriticalInclude: "critical-blog-post-archive",
			Content:         []string{"blog/archive/index.html", blogBundle},
		},
		{
			Name:            "blog-home",
			Stylesheet:      "style.blog.home",
			Page:            "blog/index.html",
			CriticalInclude: "critical-blog",
			Content:         []string{"blog/index.html", blogBundle},
		},
		{
			Name:            "blog-post",
			Stylesheet:      "style.blog.post",
			Page:            "2017/08/25/how-to-calculate-reflection-vector.html",
			CriticalInclude: "critical-blog-post",
			Content:         []string{"20**/**/*.html", blogBundle},
			Allow:           []string{"katex-display"},
		},
		{
			Name:            "blog-tags",
			Stylesheet:      "style.blog.tags",
			Page:            "blog/tags/index.html",
			CriticalInclude: "critical-blog-tags",
			Content:         []string{"blog/tags/index.html", blogBundle},
		},
		{
			Name:            "privacy-policy",
			Stylesheet:      "style.privacypolicy",
			Page:            "privacy-policy.html",
			CriticalInclude: "critical-privacy-policy",
			Content:         []string{"privacy-policy.html", blogBundle},
		},
		{
			Name:            "cookie-policy",
			Stylesheet:      "style.cookiepolicy",
			Page:            "cookie-policy.html",
			CriticalInclude: "critical-cookie-policy",
			Content:         []string{"cookie-policy.html", blogBundle},
		},
		{
			Name:            "error",
			Stylesheet:      "style.error",
			Page:            "offline.html",
			CriticalInclude: "critical-error",
			Content:         []string{"offline.html", blogBundle},
		},
	}
}

func DefaultScripts() []Script {
	return []Script{
		{Name: "index.home", Source: "index.home.ts", Section: "js-home"},
		{Name: "index.blog", Source: activation.ScriptName, Section: "js-blog"},
	}
}

// DefaultActivations are the init snippets rendered for pages loading the
// blog bundle.
func DefaultActivations() []activation.Section {
	return []activation.Section{
		{Name: "js-blog", Category: "blog", PullToRefresh: true},
	}
}

// Sections lists every revision section: scripts first, then one per group.
func (c *Config) Sections() []string {
	var out []string
	for _, s := range c.Scripts {
		out = append(out, s.Section)
	}
	for _, g := range c.Groups {
		out = append(out, g.Section())
	}
	return out
}

func (c *Config) group(name string) (Group, bool) {
	for _, g := range c.Groups {
		if g.Name == name {
			return g, true
		}
	}
	return Group{}, false
}

// groupForStylesheet maps an entry point base name to its group.
func (c *Config) groupForStylesheet(stylesheet string) (Group, bool) {
	for _, g := range c.Groups {
		if g.Stylesheet == stylesheet {
			return g, true
		}
	}
	return Group{}, false
}
