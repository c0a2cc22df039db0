package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"heboris/ebitenhost"
	"heboris/snd"
	"heboris/ygs"
)

func runDisplays(cmd *cobra.Command, args []string) error {
	host := ebitenhost.New(cur.log.WithPrefix("ebiten"))
	ctx := ygs.New(ygs.Options{
		Video:  host,
		Mixer:  snd.New(cur.log.WithPrefix("snd")),
		Files:  cur.dir(),
		Logger: cur.log.WithPrefix("ygs"),
	})
	err := host.Run(func() error {
		defer ctx.Deinit()
		if err := ctx.Init(cur.settings.SoundBuffer); err != nil {
			return err
		}
		return listDisplays(ctx)
	})
	return err
}

func listDisplays(ctx *ygs.Context) error {
	n, err := ctx.NumDisplays()
	if err != nil {
		return err
	}
	for d := 0; d < n; d++ {
		modes, err := ctx.NumDisplayModes(d)
		if err != nil {
			return err
		}
		fmt.Printf("Display %d:\n", d)
		for i := 0; i < modes; i++ {
			m, err := ctx.DisplayMode(d, i)
			if err != nil {
				return err
			}
			fmt.Printf("  %#08x  %dx%d @ %d Hz\n", int32(ygs.MakeScreenIndex(d, i)), m.W, m.H, m.RefreshRate)
		}
	}
	return nil
}
