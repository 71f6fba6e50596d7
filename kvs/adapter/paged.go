package adapter

// Paged wraps an [Adapter] over paged media (NOR flash, some EEPROMs) and
// splits writes that would cross a physical page boundary into multiple
// page-aligned writes. Reads pass through unchanged: paged media is
// generally unconstrained on read size/alignment.
//
// Ported from the original crate's PagedAdapter: split at the first page
// boundary, then in PageSize-sized chunks thereafter.
type Paged struct {
	inner    Adapter
	pageSize uint32
}

// NewPaged wraps inner, splitting writes at pageSize boundaries.
// pageSize must be > 0.
func NewPaged(inner Adapter, pageSize uint32) *Paged {
	if pageSize == 0 {
		panic("adapter: paged page size must be > 0")
	}
	return &Paged{inner: inner, pageSize: pageSize}
}

// Read implements [Adapter].
func (p *Paged) Read(addr uint32, buf []byte) error {
	return p.inner.Read(addr, buf)
}

// MaxAddress implements [Adapter].
func (p *Paged) MaxAddress() uint32 {
	return p.inner.MaxAddress()
}

// Write implements [Adapter], splitting at page boundaries.
func (p *Paged) Write(addr uint32, data []byte) error {
	pageOffset := addr % p.pageSize
	if uint64(pageOffset)+uint64(len(data)) <= uint64(p.pageSize) {
		return p.inner.Write(addr, data)
	}

	var offset uint32
	chunk := p.pageSize - pageOffset
	for chunk > 0 {
		if err := p.inner.Write(addr+offset, data[offset:offset+chunk]); err != nil {
			return err
		}
		offset += chunk
		remaining := uint32(len(data)) - offset
		if remaining < p.pageSize {
			chunk = remaining
		} else {
			chunk = p.pageSize
		}
	}

	return nil
}

var _ Adapter = (*Paged)(nil)
