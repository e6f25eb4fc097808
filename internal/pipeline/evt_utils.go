package pipeline

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"
)

type EvtDetails struct {
	evt                 fsnotify.Event
	isStyle             bool
	isEntryPoint        bool
	group               string
	isNonEmptyCHMODOnly bool
}

func (c *Config) getEvtDetails(evt fsnotify.Event) *EvtDetails {
	stylesDir := c.path(c.Dirs.Styles)
	details := &EvtDetails{
		evt:                 evt,
		isStyle:             c.getIsMatch(filepath.Join(stylesDir, "**", "*.scss"), evt.Name),
		isNonEmptyCHMODOnly: c.getIsNonEmptyCHMODOnly(evt),
	}
	if !details.isStyle {
		return details
	}
	// _css/<stylesheet>.scss belongs to one group; partials and nested files
	// may be imported by any of them.
	if filepath.Dir(evt.Name) == stylesDir {
		base := strings.TrimSuffix(filepath.Base(evt.Name), ".scss")
		if g, ok := c.groupForStylesheet(base); ok {
			details.isEntryPoint = true
			details.group = g.Name
		}
	}
	return details
}

// groupsForEvents returns the groups a batch of events invalidates, in
// config order.
func (c *Config) groupsForEvents(events []fsnotify.Event) []string {
	fileChanges := make(map[string]fsnotify.Event)
	for _, evt := range events {
		fileChanges[evt.Name] = evt
	}

	affected := map[string]bool{}
	for _, evt := range fileChanges {
		if c.getIsIgnored(evt.Name, c.WatchIgnore) {
			continue
		}
		details := c.getEvtDetails(evt)
		if !details.isStyle || details.isNonEmptyCHMODOnly {
			continue
		}
		if details.isEntryPoint {
			affected[details.group] = true
			continue
		}
		for _, g := range c.Groups {
			affected[g.Name] = true
		}
	}

	var out []string
	for _, g := range c.Groups {
		if affected[g.Name] {
			out = append(out, g.Name)
		}
	}
	return out
}

// newDirs lists created directories in a batch so they can be watched.
func newDirs(events []fsnotify.Event) []string {
	var dirs []string
	for _, evt := range events {
		if !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Rename) {
			continue
		}
		if fi, err := os.Stat(evt.Name); err == nil && fi.IsDir() {
			dirs = append(dirs, evt.Name)
		}
	}
	sort.Strings(dirs)
	return dirs
}

func (c *Config) getIsEmptyFile(evt fsnotify.Event) bool {
	stat, err := os.Stat(evt.Name)
	if err != nil {
		return false
	}
	return stat.Size() == 0
}

func (c *Config) getIsNonEmptyCHMODOnly(evt fsnotify.Event) bool {
	isSolelyCHMOD := !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Remove) && !evt.Has(fsnotify.Rename)
	return isSolelyCHMOD && !c.getIsEmptyFile(evt)
}
