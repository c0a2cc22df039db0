package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/image/font/gofont/goregular"

	"heboris/cfgrec"
	"heboris/ebitenhost"
	"heboris/fsys"
	"heboris/snd"
	"heboris/ygs"
)

const (
	slotBackground = 0
	slotTone       = 0
	toneName       = "se/tone.wav"

	layerFPS  = 0
	layerMode = 1
	layerHint = 2
)

// platformCheck is the frame loop run by the root command.
type platformCheck struct {
	ctx      *ygs.Context
	rec      *cfgrec.Record
	dir      *fsys.Dir
	settings Settings
	log      *log.Logger
	frames   int

	background bool
}

func runCheck(cmd *cobra.Command, args []string) error {
	s := cur.settings
	dir := cur.dir()
	rec, reset, err := loadRecord(dir, cur.log)
	if err != nil {
		return err
	}

	var fonts [len(ygs.DefaultFonts)]string
	copy(fonts[:], s.Fonts)
	host := ebitenhost.New(cur.log.WithPrefix("ebiten"))
	ctx := ygs.New(ygs.Options{
		Video:            host,
		Mixer:            snd.New(cur.log.WithPrefix("snd")),
		Files:            dir,
		Slots:            &padSlots{log: cur.log.WithPrefix("input")},
		Logger:           cur.log.WithPrefix("ygs"),
		Fonts:            fonts,
		BuiltinFont:      goregular.TTF,
		CursorHideFrames: s.CursorHideFrames,
	})
	c := &platformCheck{ctx: ctx, rec: rec, dir: dir, settings: s, log: cur.log, frames: flagFrames}

	err = host.Run(c.run)
	if ygs.IsFatal(err) {
		showFatal(err)
		ctx.Exit(1)
		return err
	}
	ctx.Deinit()
	if err != nil {
		return err
	}

	if err := saveRecord(dir, rec); err != nil {
		cur.log.Warn("configuration record not saved", "err", err)
	} else if reset {
		cur.log.Info("default configuration record written")
	}
	if err := saveSettings(cur.baseDir, s); err != nil {
		cur.log.Warn("settings not saved", "err", err)
	}
	return nil
}

func (c *platformCheck) run() error {
	if err := c.ctx.Init(c.settings.SoundBuffer); err != nil {
		return err
	}
	mode, index, err := c.ctx.SetScreen(ygs.ScreenMode(c.rec.ScreenMode()), ygs.ScreenIndex(c.rec.ScreenIndex()))
	if err != nil {
		c.log.Warn("screen setup failed, trying defaults", "err", err)
		if mode, index, err = c.ctx.SetScreen(ygs.DefaultScreenMode, 0); err != nil {
			return err
		}
	}
	c.rec.SetScreen(int32(mode), int32(index))

	fps := c.rec.FPS()
	if c.settings.FPS > 0 {
		fps = c.settings.FPS
	}
	c.ctx.SetFPS(fps)
	c.ctx.SetFrameSkip(c.settings.FrameSkip)
	c.ctx.SetVolumeAllWaves(c.rec.WaveVolume())
	c.loadAssets()
	c.ctx.SetVolumeMusic(c.rec.MusicVolume())
	c.setupText(mode)

	for frame := 0; c.frames == 0 || frame < c.frames; frame++ {
		if err := c.draw(); err != nil {
			return err
		}
		ok, err := c.ctx.AdvanceFrame()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	c.ctx.StopAllWaves()
	c.ctx.StopMusic()
	return nil
}

func (c *platformCheck) loadAssets() {
	if name := c.settings.Background; name != "" {
		if err := c.ctx.LoadBitmap(name, slotBackground); err != nil {
			c.log.Warn("no background", "err", err)
		} else {
			c.background = true
		}
	}

	if err := c.ensureTone(); err != nil {
		c.log.Warn("no sound check", "err", err)
	} else if err := c.ctx.LoadWave(toneName, slotTone); err != nil {
		c.log.Warn("no sound check", "err", err)
	} else {
		c.ctx.PlayWave(slotTone)
	}

	if name := c.settings.Music; name != "" {
		if err := c.ctx.LoadMusic(name); err != nil {
			c.log.Warn("no music", "err", err)
		} else {
			c.ctx.PlayMusic()
		}
	}
}

// ensureTone writes the synthesised sound check when no asset provides one.
func (c *platformCheck) ensureTone() error {
	if _, err := c.dir.Locate(toneName); !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	wav, err := snd.ToneWAV(c.settings.Tone, ygs.AudioRate)
	if err != nil {
		return err
	}
	f, err := c.dir.OpenWrite(toneName)
	if err != nil {
		return err
	}
	if _, err := f.Write(wav); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (c *platformCheck) setupText(mode ygs.ScreenMode) {
	w, h := mode.LogicalSize()
	c.ctx.TextLayerOn(layerFPS, 4, 4)
	c.ctx.TextColor(layerFPS, 0xff, 0xff, 0x80)

	c.ctx.TextLayerOn(layerMode, 4, 24)
	c.ctx.TextSize(layerMode, 12)
	c.ctx.TextOut(layerMode, describeMode(mode))

	c.ctx.TextLayerOn(layerHint, 4, h-16)
	c.ctx.TextSize(layerHint, 10)
	c.ctx.TextColor(layerHint, 0xa0, 0xa0, 0xa0)
	c.ctx.TextOut(layerHint, fmt.Sprintf("%dx%d, close the window to quit", w, h))
}

func (c *platformCheck) draw() error {
	if c.background {
		c.ctx.Blt(slotBackground, 0, 0)
	}
	skip := "off"
	if c.ctx.FrameSkip() {
		skip = "on"
	}
	c.ctx.TextOut(layerFPS, fmt.Sprintf("%d/%d FPS  skip %s", c.ctx.RealFPS(), c.ctx.FPS(), skip))
	for _, l := range []int{layerFPS, layerMode, layerHint} {
		if err := c.ctx.TextBlt(l); err != nil {
			return err
		}
	}
	return nil
}
