package plugins

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/runger/palette/internal/action"
)

// ManifestFile is the manifest name inside each plugin directory.
const ManifestFile = "plugin.yaml"

// ErrUnknownPlugin is returned when opening a plugin that is not installed.
var ErrUnknownPlugin = errors.New("unknown plugin")

// Manifest describes a plugin installed on disk.
type Manifest struct {
	Name     string `yaml:"name"`
	Main     string `yaml:"main"`     // command that opens the main window
	Settings string `yaml:"settings"` // command that opens the settings window
}

// FSDirectory discovers plugins as subdirectories of Root holding a
// manifest, and opens them by running the manifest's commands.
type FSDirectory struct {
	Root     string
	Executor action.Executor

	manifests map[string]Manifest
}

// ListInstalled scans Root. A missing root means no plugins; unreadable or
// invalid manifests are skipped.
func (d *FSDirectory) ListInstalled() ([]PluginInfo, error) {
	entries, err := os.ReadDir(d.Root)
	if err != nil {
		if os.IsNotExist(err) {
			d.manifests = nil
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read plugin directory: %w", err)
	}

	manifests := make(map[string]Manifest, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		mf, err := readManifest(filepath.Join(d.Root, e.Name(), ManifestFile))
		if err != nil {
			continue
		}
		if mf.Name == "" {
			mf.Name = e.Name()
		}
		manifests[mf.Name] = mf
	}
	d.manifests = manifests

	infos := make([]PluginInfo, 0, len(manifests))
	for _, mf := range manifests {
		infos = append(infos, PluginInfo{
			Name:          mf.Name,
			HasMainUI:     mf.Main != "",
			HasSettingsUI: mf.Settings != "",
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Open runs the command for the requested window.
func (d *FSDirectory) Open(name string, ui UI) error {
	mf, ok := d.manifests[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlugin, name)
	}
	cmd := mf.Main
	if ui == SettingsUI {
		cmd = mf.Settings
	}
	if cmd == "" {
		return fmt.Errorf("%s has no %s window", name, ui)
	}
	if d.Executor == nil {
		return errors.New("no action executor")
	}
	return d.Executor.Run(cmd)
}

func readManifest(path string) (Manifest, error) {
	var mf Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return mf, err
	}
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return mf, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return mf, nil
}
