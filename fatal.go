package main

import (
	"github.com/sqweek/dialog"
)

// showFatal puts err in a native message box before the process exits.
func showFatal(err error) {
	cur.log.Error("fatal", "err", err)
	dialog.Message("%v", err).Title("Heboris C.E.").Error()
}
