package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"

	"github.com/charmbracelet/log"

	"heboris/cfgrec"
	"heboris/fsys"
	"heboris/ygs"
)

const configName = "config/data/CONFIG.SAV"

var recordCodec = cfgrec.Codec{Host: binary.NativeEndian}

func defaultRecord() *cfgrec.Record {
	return cfgrec.Defaults(int32(ygs.DefaultScreenMode), 0)
}

// loadRecord reads the configuration record. A missing or damaged record is
// replaced by the defaults; reset reports when that happened.
func loadRecord(dir *fsys.Dir, l *log.Logger) (rec *cfgrec.Record, reset bool, err error) {
	f, err := dir.OpenRead(configName)
	if errors.Is(err, fs.ErrNotExist) {
		l.Info("no configuration record, using defaults")
		return defaultRecord(), true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("open %s: %w", configName, err)
	}
	defer f.Close()

	rec, err = recordCodec.Load(f)
	switch {
	case errors.Is(err, cfgrec.ErrShort), errors.Is(err, cfgrec.ErrMagic),
		errors.Is(err, cfgrec.ErrVersion), errors.Is(err, cfgrec.ErrChecksum):
		l.Warn("configuration record rejected, using defaults", "err", err)
		return defaultRecord(), true, nil
	case err != nil:
		return nil, false, err
	}
	return rec, false, nil
}

func saveRecord(dir *fsys.Dir, rec *cfgrec.Record) error {
	f, err := dir.OpenWrite(configName)
	if err != nil {
		return fmt.Errorf("save %s: %w", configName, err)
	}
	err = recordCodec.Save(f, rec)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
