package port

import (
	"fmt"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// MappedBank is a Bank whose registers are bytes of a memory-mapped device
// file, e.g. a UIO or /dev/mem window onto a microcontroller's I/O space.
type MappedBank struct {
	mm   mmap.MMap
	offs [NumPorts]int
}

// MapBank maps the window of path starting at base that covers every
// register in offs, offsets being relative to base.
func MapBank(path string, base int64, offs [NumPorts]int64) (*MappedBank, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("couldn't open %s: %w", path, err)
	}
	defer f.Close()

	var hi int64
	for _, o := range offs {
		if o < 0 {
			return nil, fmt.Errorf("negative register offset %d", o)
		}
		if o > hi {
			hi = o
		}
	}

	page := int64(os.Getpagesize())
	mapAddr := base &^ (page - 1)
	delta := base - mapAddr
	mm, err := mmap.MapRegion(f, int(delta+hi+1), mmap.RDWR, 0, mapAddr)
	if err != nil {
		return nil, fmt.Errorf("couldn't map %s at %08X: %w", path, mapAddr, err)
	}

	b := &MappedBank{mm: mm}
	for id, o := range offs {
		b.offs[id] = int(delta + o)
	}
	return b, nil
}

// Register implements Bank.
func (b *MappedBank) Register(id ID) Register {
	return mappedReg{mm: b.mm, off: b.offs[id]}
}

// Flush writes the mapping back to the underlying file.
func (b *MappedBank) Flush() error { return b.mm.Flush() }

// Close unmaps the window.
func (b *MappedBank) Close() error {
	if b.mm == nil {
		return nil
	}
	err := b.mm.Unmap()
	b.mm = nil
	return err
}

type mappedReg struct {
	mm  mmap.MMap
	off int
}

func (r mappedReg) Read() byte { return r.mm[r.off] }

func (r mappedReg) Write(v byte) { r.mm[r.off] = v }
