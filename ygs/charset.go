package ygs

import (
	"golang.org/x/text/encoding/japanese"
)

// decodeShiftJIS converts Shift_JIS text from older data files to UTF-8.
func decodeShiftJIS(b []byte) (string, error) {
	out, err := japanese.ShiftJIS.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
