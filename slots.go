package main

import "github.com/charmbracelet/log"

// padSlots stands in for the game's player slot mapping and only logs hot
// plugging.
type padSlots struct {
	log     *log.Logger
	changes int
}

func (p *padSlots) PlayerSlotsChanged() error {
	p.changes++
	p.log.Info("input devices changed", "count", p.changes)
	return nil
}
