package sitepipe

import (
	"context"

	"github.com/sitepipe/sitepipe/internal/activation"
	"github.com/sitepipe/sitepipe/internal/pipeline"
)

type Config = pipeline.Config
type Dirs = pipeline.Dirs
type Group = pipeline.Group
type Script = pipeline.Script
type Logger = pipeline.Logger
type Section = activation.Section

type Sitepipe struct {
	Config *pipeline.Config
}

// Build runs every task: styles, scripts and copies, three generator
// passes, purge, critical CSS, revisions and the precache URL lists.
func (s Sitepipe) Build(ctx context.Context) error {
	return s.Config.Build(ctx)
}

// RebuildStyles runs the style-only plan for the named groups.
func (s Sitepipe) RebuildStyles(ctx context.Context, groups []string) error {
	return s.Config.RebuildStyles(ctx, groups)
}

// RunKinds runs only the tasks of the given kinds, such as "scripts".
func (s Sitepipe) RunKinds(ctx context.Context, kinds []string) error {
	return s.Config.RunKinds(ctx, kinds)
}
func (s Sitepipe) Watch(ctx context.Context) error {
	return s.Config.Watch(ctx)
}
func (s Sitepipe) MustWatch(ctx context.Context) {
	if err := s.Config.Watch(ctx); err != nil {
		panic(err)
	}
}
func (s Sitepipe) InstallActivationScript(overwrite bool) (string, error) {
	return s.Config.InstallActivationScript(overwrite)
}

// New fills in the blog defaults for a nil config.
func New(config *pipeline.Config) *Sitepipe {
	if config == nil {
		config = pipeline.DefaultConfig(".")
	}
	if config.Logger == nil {
		config.Logger = pipeline.NewLogger("sitepipe", false)
	}
	return &Sitepipe{
		Config: config,
	}
}

const ConfigFileName = pipeline.ConfigFileName

var DefaultConfig = pipeline.DefaultConfig
var DefaultGroups = pipeline.DefaultGroups
var LoadConfigFile = pipeline.LoadConfigFile
var ExitCode = pipeline.ExitCode
var FailedTasks = pipeline.FailedTasks
var GetIsProductionEnv = pipeline.GetIsProductionEnv
var RenderActivation = activation.RenderInit
