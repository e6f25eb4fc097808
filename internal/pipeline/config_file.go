package pipeline

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/sitepipe/sitepipe/internal/activation"
	"github.com/sitepipe/sitepipe/internal/critical"
	"github.com/sitepipe/sitepipe/internal/subproc"
)

// ConfigFileName is looked up in the site root when no path is given.
const ConfigFileName = "sitepipe.hcl"

type fileConfig struct {
	Production  *bool            `hcl:"production,optional"`
	Concurrency *int             `hcl:"concurrency,optional"`
	WatchIgnore []string         `hcl:"watch_ignore,optional"`
	Dirs        *fileDirs        `hcl:"dirs,block"`
	Generator   *fileCommand     `hcl:"generator,block"`
	Precache    *fileCommand     `hcl:"precache,block"`
	Images      *fileImages      `hcl:"images,block"`
	Critical    *fileCritical    `hcl:"critical,block"`
	Groups      []fileGroup      `hcl:"group,block"`
	Scripts     []fileScript     `hcl:"script,block"`
	Activations []fileActivation `hcl:"activation,block"`
}

type fileDirs struct {
	Styles   *string `hcl:"styles,optional"`
	Scripts  *string `hcl:"scripts,optional"`
	Images   *string `hcl:"images,optional"`
	Fonts    *string `hcl:"fonts,optional"`
	Models   *string `hcl:"models,optional"`
	Assets   *string `hcl:"assets,optional"`
	Site     *string `hcl:"site,optional"`
	Includes *string `hcl:"includes,optional"`
	Deps     *string `hcl:"deps,optional"`
	State    *string `hcl:"state,optional"`
}

type fileCommand struct {
	Command string   `hcl:"command"`
	Args    []string `hcl:"args,optional"`
	Env     []string `hcl:"env,optional"`
}

type fileImages struct {
	JPEGQuality *int `hcl:"jpeg_quality,optional"`
	MaxWidth    *int `hcl:"max_width,optional"`
}

type fileViewport struct {
	Width  int `hcl:"width"`
	Height int `hcl:"height"`
}

type fileCritical struct {
	Ignore    []string       `hcl:"ignore,optional"`
	Viewports []fileViewport `hcl:"viewport,block"`
}

type fileGroup struct {
	Name            string   `hcl:"name,label"`
	Stylesheet      *string  `hcl:"stylesheet,optional"`
	Page            *string  `hcl:"page,optional"`
	CriticalInclude *string  `hcl:"critical_include,optional"`
	Content         []string `hcl:"content,optional"`
	Allow           []string `hcl:"allow,optional"`
}

type fileScript struct {
	Name    string  `hcl:"name,label"`
	Source  *string `hcl:"source,optional"`
	Section *string `hcl:"section,optional"`
}

type fileActivation struct {
	Section       string `hcl:"section,label"`
	Category      string `hcl:"category"`
	PullToRefresh bool   `hcl:"pull_to_refresh,optional"`
}

// LoadConfigFile applies the HCL file at path on top of cfg. A missing file
// leaves cfg untouched. Expressions can read the variables production and
// root.
func LoadConfigFile(path string, cfg *Config) error {
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	return applyConfigSource(src, path, cfg)
}

func applyConfigSource(src []byte, filename string, cfg *Config) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file %s: %s", filename, diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"production": cty.BoolVal(cfg.Production),
			"root":       cty.StringVal(cfg.getCleanRootDir()),
		},
	}

	var fc fileConfig
	diags = gohcl.DecodeBody(file.Body, evalCtx, &fc)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL file %s: %s", filename, diags.Error())
	}
	return fc.apply(cfg)
}

func (fc *fileConfig) apply(cfg *Config) error {
	if fc.Production != nil && *fc.Production {
		cfg.Production = true
	}
	if fc.Concurrency != nil {
		if *fc.Concurrency < 0 {
			return fmt.Errorf("concurrency must not be negative, got %d", *fc.Concurrency)
		}
		cfg.Concurrency = *fc.Concurrency
	}
	if fc.Dirs != nil {
		fc.Dirs.apply(&cfg.Dirs)
	}
	if fc.Generator != nil {
		cfg.Generator = fc.Generator.command()
	}
	if fc.Precache != nil {
		cfg.Precache = fc.Precache.command()
	}
	if fc.Images != nil {
		if fc.Images.JPEGQuality != nil {
			cfg.Images.JPEGQuality = *fc.Images.JPEGQuality
		}
		if fc.Images.MaxWidth != nil {
			cfg.Images.MaxWidth = *fc.Images.MaxWidth
		}
	}
	if fc.WatchIgnore != nil {
		cfg.WatchIgnore = fc.WatchIgnore
	}
	if fc.Critical != nil {
		if fc.Critical.Ignore != nil {
			cfg.Ignore = fc.Critical.Ignore
		}
		if len(fc.Critical.Viewports) > 0 {
			cfg.Viewports = nil
			for _, v := range fc.Critical.Viewports {
				if v.Width <= 0 || v.Height <= 0 {
					return fmt.Errorf("invalid viewport %dx%d", v.Width, v.Height)
				}
				cfg.Viewports = append(cfg.Viewports, critical.Viewport{Width: v.Width, Height: v.Height})
			}
		}
	}
	for _, g := range fc.Groups {
		if err := g.apply(cfg); err != nil {
			return err
		}
	}
	for _, s := range fc.Scripts {
		if err := s.apply(cfg); err != nil {
			return err
		}
	}
	for _, a := range fc.Activations {
		setActivation(cfg, activation.Section{Name: a.Section, Category: a.Category, PullToRefresh: a.PullToRefresh})
	}
	return nil
}

func (fd *fileDirs) apply(d *Dirs) {
	set := func(dst *string, src *string) {
		if src != nil && *src != "" {
			*dst = *src
		}
	}
	set(&d.Styles, fd.Styles)
	set(&d.Scripts, fd.Scripts)
	set(&d.Images, fd.Images)
	set(&d.Fonts, fd.Fonts)
	set(&d.Models, fd.Models)
	set(&d.Assets, fd.Assets)
	set(&d.Site, fd.Site)
	set(&d.Includes, fd.Includes)
	set(&d.Deps, fd.Deps)
	set(&d.State, fd.State)
}

func (fc *fileCommand) command() subproc.Command {
	return subproc.Command{Name: fc.Command, Args: fc.Args, Env: fc.Env}
}

// apply overrides the group of the same name, or adds a new one.
func (fg fileGroup) apply(cfg *Config) error {
	for i := range cfg.Groups {
		if cfg.Groups[i].Name == fg.Name {
			fg.merge(&cfg.Groups[i])
			return nil
		}
	}
	g := Group{Name: fg.Name}
	fg.merge(&g)
	if g.Stylesheet == "" || g.Page == "" || g.CriticalInclude == "" || len(g.Content) == 0 {
		return fmt.Errorf("group %q needs stylesheet, page, critical_include and content", fg.Name)
	}
	cfg.Groups = append(cfg.Groups, g)
	return nil
}

func (fg fileGroup) merge(g *Group) {
	if fg.Stylesheet != nil {
		g.Stylesheet = *fg.Stylesheet
	}
	if fg.Page != nil {
		g.Page = *fg.Page
	}
	if fg.CriticalInclude != nil {
		g.CriticalInclude = *fg.CriticalInclude
	}
	if fg.Content != nil {
		g.Content = fg.Content
	}
	if fg.Allow != nil {
		g.Allow = fg.Allow
	}
}

func (fs fileScript) apply(cfg *Config) error {
	for i := range cfg.Scripts {
		if cfg.Scripts[i].Name == fs.Name {
			if fs.Source != nil {
				cfg.Scripts[i].Source = *fs.Source
			}
			if fs.Section != nil {
				cfg.Scripts[i].Section = *fs.Section
			}
			return nil
		}
	}
	if fs.Source == nil || fs.Section == nil {
		return fmt.Errorf("script %q needs source and section", fs.Name)
	}
	cfg.Scripts = append(cfg.Scripts, Script{Name: fs.Name, Source: *fs.Source, Section: *fs.Section})
	return nil
}

func setActivation(cfg *Config, s activation.Section) {
	for i := range cfg.Activations {
		if cfg.Activations[i].Name == s.Name {
			cfg.Activations[i] = s
			return
		}
	}
	cfg.Activations = append(cfg.Activations, s)
}
