package vm

// loader.go implements the image loader: a byte source whose first two bytes are a big-endian
// origin address, followed by a sequence of big-endian 16-bit words to store starting there.

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/mprast/lc3vm/internal/log"
)

// ErrObjectLoader is wrapped by every error the loader returns.
var ErrObjectLoader = errors.New("loader error")

// Loader copies object code from a byte source into a machine's memory.
type Loader struct {
	vm  *LC3
	log *log.Logger
}

// NewLoader creates a loader that stores into vm's memory.
func NewLoader(vm *LC3) *Loader {
	return &Loader{vm: vm, log: log.DefaultLogger()}
}

// Load reads a single image from src and blits it into memory starting at its declared origin.
// Images whose origin plus payload would exceed the address space are silently truncated to the
// portion that fits; a source that ends mid-word drops the trailing byte; a source with only an
// origin and no payload leaves memory unchanged. Later loads overwrite earlier ones where their
// ranges overlap.
func (l *Loader) Load(src io.Reader) (uint16, error) {
	var origin uint16

	if err := binary.Read(src, binary.BigEndian, &origin); err != nil {
		return 0, fmt.Errorf("%w: origin: %w", ErrObjectLoader, err)
	}

	l.log.Debug("loading image", "origin", Word(origin))

	addr := Word(origin)
	count := uint16(0)

	for {
		var word uint16

		if err := binary.Read(src, binary.BigEndian, &word); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}

			return count, fmt.Errorf("%w: %w", ErrObjectLoader, err)
		}

		l.vm.Mem.Write(addr, Word(word))
		count++

		if addr == 0xffff {
			break
		}

		addr++
	}

	l.log.Debug("loaded image", "words", count)

	return count, nil
}
