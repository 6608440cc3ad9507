package container

import (
	"encoding/binary"
	"io"
)

// Append writes one frame to w.
func Append(w io.Writer, preloadOnly bool, data []byte) error {
	var header [headerSize]byte
	if preloadOnly {
		header[0] = 1
	}
	binary.LittleEndian.PutUint64(header[1:], uint64(len(data)))

	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

// Write encodes records to w in order.
func Write(w io.Writer, records []Record) error {
	for _, r := range records {
		if err := Append(w, r.PreloadOnly, r.Data); err != nil {
			return err
		}
	}
	return nil
}

// Build encodes records into a new byte slice.
func Build(records []Record) []byte {
	size := 0
	for _, r := range records {
		size += headerSize + len(r.Data)
	}
	buf := make([]byte, 0, size)
	for _, r := range records {
		flag := byte(0)
		if r.PreloadOnly {
			flag = 1
		}
		buf = append(buf, flag)
		buf = binary.LittleEndian.AppendUint64(buf, uint64(len(r.Data)))
		buf = append(buf, r.Data...)
	}
	return buf
}
