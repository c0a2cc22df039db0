package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"heboris/fsys"
	"heboris/ygs"
)

var windowTypeNames = [ygs.NumWindowTypes]string{"windowed", "maximized", "desktop fullscreen", "fullscreen"}

// describeMode renders a screen mode for people.
func describeMode(m ygs.ScreenMode) string {
	t := m.WindowType()
	if t >= ygs.NumWindowTypes {
		return fmt.Sprintf("invalid window type %d", t)
	}
	w, h := m.LogicalSize()
	parts := []string{windowTypeNames[t], fmt.Sprintf("%dx%d", w, h)}
	if m&ygs.VSync != 0 {
		parts = append(parts, "vsync")
	}
	if m&ygs.IntegerScale != 0 {
		parts = append(parts, "integer scale")
	}
	if m&ygs.NoRenderTarget != 0 {
		parts = append(parts, "no render target")
	}
	return strings.Join(parts, ", ")
}

func (a *app) dir() *fsys.Dir {
	return fsys.New(resolve(a.baseDir, a.settings.WriteDir), resolve(a.baseDir, a.settings.DataDir))
}

func runConfig(cmd *cobra.Command, args []string) error {
	dir := cur.dir()
	if flagReset {
		if err := saveRecord(dir, defaultRecord()); err != nil {
			return err
		}
		fmt.Println("Configuration record reset.")
		return nil
	}

	rec, reset, err := loadRecord(dir, cur.log)
	if err != nil {
		return err
	}
	if reset {
		fmt.Println("(defaults, no valid record on disk)")
	}
	mode := ygs.ScreenMode(rec.ScreenMode())
	index := ygs.ScreenIndex(rec.ScreenIndex())
	fmt.Printf("  %-14s %s\n", "screen", describeMode(mode))
	fmt.Printf("  %-14s display %d, mode %d\n", "screen index", index.Display(), index.Mode())
	fmt.Printf("  %-14s %d\n", "fps", rec.FPS())
	fmt.Printf("  %-14s %d\n", "wave volume", rec.WaveVolume())
	fmt.Printf("  %-14s %d\n", "music volume", rec.MusicVolume())
	return nil
}
