package monitor

import "fmt"

// maxProvingBatchSize caps how many proving commitments are made in a single
// block tick, regardless of configured concurrency.
const maxProvingBatchSize = 10

// capacity is the number of proving slots available this block tick.
type capacity struct {
	unlimited bool
	available uint32
}

func unlimitedCapacity() capacity {
	return capacity{unlimited: true}
}

func availableCapacity(slots uint32) capacity {
	return capacity{available: slots}
}

// Grant returns how many of the requested slots may be filled, capped at
// maxProvingBatchSize.
func (c capacity) Grant(request uint32) uint32 {
	if c.unlimited {
		return min(request, maxProvingBatchSize)
	}
	if request > c.available {
		return min(c.available, maxProvingBatchSize)
	}
	return min(request, maxProvingBatchSize)
}

func (c capacity) String() string {
	if c.unlimited {
		return "unlimited"
	}
	return fmt.Sprintf("available(%d)", c.available)
}
