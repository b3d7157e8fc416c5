package ecs

// EntityID encodes a 32-bit index in the lower bits and a 32-bit generation
// in the upper bits. Generation increments when the id is recycled, so a
// stale handle held by a job target or a reservation never resolves to the
// thing that later reuses the slot.
type EntityID uint64

// NoEntity is the zero handle. Index 0 is never handed out by a pool.
const NoEntity EntityID = 0

func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == 0 }

// HashOffset returns a deterministic, well-spread non-negative offset derived
// from the handle. Periodic work uses (tick + HashOffset) % interval so that
// instances don't all fire on the same tick.
func (id EntityID) HashOffset() int {
	h := uint64(id) + 0x9e3779b97f4a7c15
	h = (h ^ (h >> 30)) * 0xbf58476d1ce4e5b9
	h = (h ^ (h >> 27)) * 0x94d049bb133111eb
	h ^= h >> 31
	return int(h & 0x3fffffff)
}

// EntityPool manages handle allocation with generational indices and a free list.
type EntityPool struct {
	generations []uint32
	freeList    []uint32
	nextIndex   uint32
}

func NewEntityPool() *EntityPool {
	return &EntityPool{
		generations: make([]uint32, 1, 1024),
		freeList:    make([]uint32, 0, 256),
		nextIndex:   1,
	}
}

func (p *EntityPool) Create() EntityID {
	if len(p.freeList) > 0 {
		idx := p.freeList[len(p.freeList)-1]
		p.freeList = p.freeList[:len(p.freeList)-1]
		return NewEntityID(idx, p.generations[idx])
	}
	idx := p.nextIndex
	p.nextIndex++
	if int(idx) >= len(p.generations) {
		p.generations = append(p.generations, 0)
	}
	return NewEntityID(idx, p.generations[idx])
}

// Reserve marks a specific handle as in use. Used when rebuilding a map from
// a snapshot so restored things keep the ids that targets were saved with.
// Returns false if the index is already live.
func (p *EntityPool) Reserve(id EntityID) bool {
	idx := id.Index()
	if idx == 0 {
		return false
	}
	for uint32(len(p.generations)) <= idx {
		p.generations = append(p.generations, 0)
	}
	if idx < p.nextIndex {
		pos := -1
		for i, f := range p.freeList {
			if f == idx {
				pos = i
				break
			}
		}
		if pos < 0 {
			return false
		}
		p.freeList = append(p.freeList[:pos], p.freeList[pos+1:]...)
	} else {
		for i := p.nextIndex; i < idx; i++ {
			p.freeList = append(p.freeList, i)
		}
		p.nextIndex = idx + 1
	}
	p.generations[idx] = id.Generation()
	return true
}

func (p *EntityPool) Alive(id EntityID) bool {
	idx := id.Index()
	if idx == 0 || idx >= p.nextIndex {
		return false
	}
	return p.generations[idx] == id.Generation()
}

func (p *EntityPool) Destroy(id EntityID) {
	idx := id.Index()
	if idx == 0 || idx >= p.nextIndex {
		return
	}
	if p.generations[idx] != id.Generation() {
		return // already destroyed (stale reference)
	}
	p.generations[idx]++
	p.freeList = append(p.freeList, idx)
}
