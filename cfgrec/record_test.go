package cfgrec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestRoundTripAcrossHosts(t *testing.T) {
	r := Defaults(0x19, 3<<16|2)
	r[7] = -12345
	r[100] = 0x01020304
	r.Seal()

	var buf bytes.Buffer
	if err := (Codec{Host: binary.LittleEndian}).Save(&buf, r); err != nil {
		t.Fatalf("save: %v", err)
	}
	if buf.Len() != Size {
		t.Fatalf("wrote %d bytes want %d", buf.Len(), Size)
	}

	got, err := (Codec{Host: binary.BigEndian}).Load(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *got != *r {
		t.Fatalf("record changed across hosts")
	}
}

func TestSaveLeavesCallerBufferIntact(t *testing.T) {
	r := Defaults(1, 0)
	before := *r
	var buf bytes.Buffer
	if err := (Codec{}).Save(&buf, r); err != nil {
		t.Fatalf("save: %v", err)
	}
	if *r != before {
		t.Fatalf("save mutated the record")
	}
}

func TestFileIsBigEndian(t *testing.T) {
	words := []int32{0x4F424550}
	for _, host := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		b := (Codec{Host: host}).Encode(words)
		if !bytes.Equal(b, []byte{0x4F, 0x42, 0x45, 0x50}) {
			t.Fatalf("%v host encoded % x", host, b)
		}
	}
}

func TestLoadRejects(t *testing.T) {
	c := Codec{}
	good := Defaults(0, 0)

	cases := []struct {
		name   string
		mutate func(b []byte) []byte
		want   error
	}{
		{"short", func(b []byte) []byte { return b[:Size-1] }, ErrShort},
		{"magic", func(b []byte) []byte { b[0] ^= 0xFF; return b }, ErrMagic},
		{"checksum", func(b []byte) []byte { b[WordFPS*4+3] ^= 1; return b }, ErrChecksum},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		if err := c.Save(&buf, good); err != nil {
			t.Fatalf("save: %v", err)
		}
		data := tc.mutate(buf.Bytes())
		if _, err := c.Load(bytes.NewReader(data)); !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v want %v", tc.name, err, tc.want)
		}
	}
}

func TestVersionMismatch(t *testing.T) {
	r := Defaults(0, 0)
	r[WordVersion] = Version - 1
	r.Seal()
	var buf bytes.Buffer
	if err := (Codec{}).Save(&buf, r); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := (Codec{}).Load(&buf); !errors.Is(err, ErrVersion) {
		t.Fatalf("got %v want ErrVersion", err)
	}
}
