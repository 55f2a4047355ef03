package search

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tsearch/process"
)

func TestPlanBatches(t *testing.T) {
	// ten pages plus a 512 byte tail, four threads
	region := process.Region{Base: 0x10000, Size: 10*4096 + 512}
	plan, err := NewPlan(region, 4096, 4)
	require.NoError(t, err)

	assert.Equal(t, 11, plan.Pages())
	assert.Equal(t, 3, plan.Batches())

	var sizes []int
	for i := 0; i < plan.Batches(); i++ {
		sizes = append(sizes, len(plan.Batch(i)))
	}
	assert.Equal(t, []int{4, 4, 3}, sizes)

	want := Batch{
		{Address: 0x10000 + 8*4096, Length: 4096},
		{Address: 0x10000 + 9*4096, Length: 4096},
		{Address: 0x10000 + 10*4096, Length: 512},
	}
	if diff := cmp.Diff(want, plan.Batch(2)); diff != "" {
		t.Errorf("last batch mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanExactMultiple(t *testing.T) {
	plan, err := NewPlan(process.Region{Base: 0x10000, Size: 8 * 4096}, 4096, 4)
	require.NoError(t, err)

	assert.Equal(t, 8, plan.Pages())
	assert.Equal(t, 2, plan.Batches())
	for _, unit := range plan.Units() {
		assert.Equal(t, process.ProcessMemorySize(4096), unit.Length, "no unit is truncated")
	}
}

func TestPlanCoversRegionExactly(t *testing.T) {
	cases := []struct {
		size     process.ProcessMemorySize
		pageSize process.ProcessMemorySize
		threads  int
	}{
		{1, 4096, 1},
		{4095, 4096, 2},
		{4096, 4096, 3},
		{4097, 4096, 3},
		{10*4096 + 512, 4096, 4},
		{1000, 7, 5},
		{1 << 20, 64 * 1024, 16},
	}

	for _, c := range cases {
		region := process.Region{Base: 0x7f0000000000, Size: c.size}
		plan, err := NewPlan(region, c.pageSize, c.threads)
		require.NoError(t, err)

		next := region.Base
		for i := 0; i < plan.Batches(); i++ {
			batch := plan.Batch(i)
			assert.LessOrEqual(t, len(batch), c.threads)
			if i < plan.Batches()-1 {
				assert.Len(t, batch, c.threads)
			}
			for _, unit := range batch {
				assert.Equal(t, next, unit.Address, "units must be contiguous with no gap or overlap")
				assert.NotZero(t, unit.Length)
				assert.LessOrEqual(t, unit.Length, c.pageSize)
				next = unit.Address.Add(unit.Length)
			}
		}
		assert.Equal(t, region.End(), next, "size %d page %d", c.size, c.pageSize)
	}
}

func TestPlanInvalid(t *testing.T) {
	valid := process.Region{Base: 0x1000, Size: 0x1000}

	_, err := NewPlan(process.Region{Base: 0x1000}, 4096, 1)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	_, err = NewPlan(process.Region{Size: 0x1000}, 4096, 1)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	_, err = NewPlan(valid, 0, 1)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	_, err = NewPlan(valid, 4096, 0)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}
