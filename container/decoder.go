package container

import (
	"bytes"
	"encoding/binary"
	stderrors "errors"
	"io"
	"os"

	"github.com/wippyai/script-runtime/errors"
)

// DefaultMaxModuleSize bounds a single frame's declared length against
// uncontrolled allocation from a corrupt or adversarial container.
const DefaultMaxModuleSize = 100 << 20 // 100MB

const headerSize = 1 + 8 // flag + length

// Parser decodes containers. The zero value is not usable; use NewParser.
type Parser struct {
	maxModuleSize uint64
}

// NewParser creates a Parser. maxModuleSize of 0 selects
// DefaultMaxModuleSize.
func NewParser(maxModuleSize uint64) *Parser {
	if maxModuleSize == 0 {
		maxModuleSize = DefaultMaxModuleSize
	}
	return &Parser{maxModuleSize: maxModuleSize}
}

// Parse decodes all frames from r. On any failure it returns a nil Store and
// a typed *errors.Error; partially parsed records are never exposed.
func (p *Parser) Parse(r io.Reader) (*Store, error) {
	var records []Record

	var header [headerSize]byte
	for frame := 0; ; frame++ {
		// A clean EOF before the flag byte is the frame boundary terminator.
		if _, err := io.ReadFull(r, header[:1]); err != nil {
			if stderrors.Is(err, io.EOF) {
				break
			}
			return nil, errors.New(errors.PhaseParse, errors.KindTruncatedHeader).
				Frame(frame).Cause(err).Detail("read flag").Build()
		}

		if _, err := io.ReadFull(r, header[1:]); err != nil {
			return nil, errors.TruncatedHeader(frame)
		}

		length := binary.LittleEndian.Uint64(header[1:])
		if length > p.maxModuleSize {
			return nil, errors.OversizedModule(frame, length, p.maxModuleSize)
		}

		data := make([]byte, length)
		n, err := io.ReadFull(r, data)
		if err != nil {
			return nil, errors.TruncatedBody(frame, length, n)
		}

		records = append(records, Record{
			PreloadOnly: header[0] != 0,
			Data:        data,
		})
	}

	return NewStore(records), nil
}

// Parse decodes a container from a byte slice with DefaultMaxModuleSize.
func Parse(data []byte) (*Store, error) {
	return NewParser(0).Parse(bytes.NewReader(data))
}

// ParseFile reads and decodes a container file.
func (p *Parser) ParseFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Load("open container file", err)
	}
	defer f.Close()
	return p.Parse(f)
}
