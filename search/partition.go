package search

import (
	"fmt"

	"tsearch/process"
)

// WorkUnit is the sub-range of the region owned by exactly one worker
type WorkUnit struct {
	Address process.ProcessMemoryAddress
	Length  process.ProcessMemorySize
}

func (u WorkUnit) String() string {
	return fmt.Sprintf("<%s : %08X>", u.Address.ToString(), uint(u.Length))
}

// Batch is a group of work units that run concurrently
type Batch []WorkUnit

// Plan divides a region into pages of PageSize bytes and groups the pages
// into batches of at most MaxThreads units. Batches are built on demand.
type Plan struct {
	region     process.Region
	pageSize   process.ProcessMemorySize
	maxThreads int
	pages      int
	batches    int
}

// NewPlan validates the parameters and computes page and batch counts
func NewPlan(region process.Region, pageSize process.ProcessMemorySize, maxThreads int) (Plan, error) {
	if !region.IsValid() {
		return Plan{}, fmt.Errorf("%w: region %s", ErrInvalidConfig, region)
	}
	if pageSize == 0 {
		return Plan{}, fmt.Errorf("%w: page size is zero", ErrInvalidConfig)
	}
	if maxThreads <= 0 {
		return Plan{}, fmt.Errorf("%w: max threads is %d", ErrInvalidConfig, maxThreads)
	}

	pages := divCeil(uint64(region.Size), uint64(pageSize))

	return Plan{
		region:     region,
		pageSize:   pageSize,
		maxThreads: maxThreads,
		pages:      int(pages),
		batches:    int(divCeil(pages, uint64(maxThreads))),
	}, nil
}

func divCeil(a, b uint64) uint64 {
	q := a / b
	if a%b != 0 {
		q++
	}
	return q
}

func (p Plan) Pages() int {
	return p.pages
}

func (p Plan) Batches() int {
	return p.batches
}

// Unit returns page i. Only the last page can be shorter than the page size.
func (p Plan) Unit(i int) WorkUnit {
	offset := process.ProcessMemorySize(i) * p.pageSize
	length := p.pageSize
	if offset+length > p.region.Size {
		length = p.region.Size - offset
	}
	return WorkUnit{Address: p.region.Base.Add(offset), Length: length}
}

// Batch returns the units of batch i in address order
func (p Plan) Batch(i int) Batch {
	first := i * p.maxThreads
	last := min(first+p.maxThreads, p.pages)

	batch := make(Batch, 0, last-first)
	for page := first; page < last; page++ {
		batch = append(batch, p.Unit(page))
	}
	return batch
}

// Units returns every unit of the plan in address order
func (p Plan) Units() []WorkUnit {
	units := make([]WorkUnit, 0, p.pages)
	for i := 0; i < p.batches; i++ {
		units = append(units, p.Batch(i)...)
	}
	return units
}
