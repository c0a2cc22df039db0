package main

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed settings.default.yaml
var defaultSettingsYAML []byte

const settingsFile = "settings.yaml"

// Settings are the launcher's own options. Game options live in the
// configuration record.
type Settings struct {
	DataDir  string   `yaml:"data_dir"`
	WriteDir string   `yaml:"write_dir"`
	Fonts    []string `yaml:"fonts"`

	SoundBuffer int `yaml:"sound_buffer"`

	// FPS overrides the record's frame rate when positive.
	FPS int `yaml:"fps"`

	FrameSkip        bool   `yaml:"frame_skip"`
	CursorHideFrames int    `yaml:"cursor_hide_frames"`
	Background       string `yaml:"background"`
	Music            string `yaml:"music"`
	Tone             string `yaml:"tone"`
	Debug            bool   `yaml:"debug"`
}

func defaultSettings() Settings {
	var s Settings
	if err := yaml.Unmarshal(defaultSettingsYAML, &s); err != nil {
		panic(fmt.Sprintf("embedded settings: %v", err))
	}
	return s
}

// loadSettings reads custom if set, else baseDir/settings.yaml, else the
// embedded defaults. Missing keys keep their default values.
func loadSettings(baseDir, custom string) (Settings, error) {
	s := defaultSettings()
	path := custom
	if path == "" {
		path = filepath.Join(baseDir, settingsFile)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if custom == "" && errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("read settings %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return defaultSettings(), fmt.Errorf("parse settings %s: %w", path, err)
	}
	if s.SoundBuffer <= 0 {
		s.SoundBuffer = defaultSettings().SoundBuffer
	}
	return s, nil
}

func saveSettings(baseDir string, s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	if err := os.WriteFile(filepath.Join(baseDir, settingsFile), data, 0644); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// resolve makes p absolute against baseDir.
func resolve(baseDir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}
