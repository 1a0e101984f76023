package crt

import (
	"sort"

	"github.com/embwasm/hostshim"
	"github.com/embwasm/hostshim/errors"
)

// packedArray adapts a packed element array to sort.Interface.
type packedArray struct {
	buf  []byte
	size int
	cmp  func(a, b []byte) int
	tmp  []byte
}

func (p *packedArray) Len() int { return len(p.buf) / p.size }

func (p *packedArray) Less(i, j int) bool {
	return p.cmp(p.buf[i*p.size:(i+1)*p.size], p.buf[j*p.size:(j+1)*p.size]) < 0
}

func (p *packedArray) Swap(i, j int) {
	a := p.buf[i*p.size : (i+1)*p.size]
	b := p.buf[j*p.size : (j+1)*p.size]
	copy(p.tmp, a)
	copy(a, b)
	copy(b, p.tmp)
}

// Qsort sorts nmemb elements of size bytes each, starting at base,
// ordering by cmp. cmp receives views of two elements and returns <0, 0,
// or >0.
func Qsort(r hostshim.Region, base, nmemb, size uint32, cmp func(a, b []byte) int) error {
	if nmemb <= 1 {
		return nil
	}
	if size == 0 {
		return errors.InvalidInput(errors.PhaseRuntime, "zero element size")
	}

	total := uint64(nmemb) * uint64(size)
	if total > uint64(r.Size()) {
		return errors.OutOfBounds(errors.PhaseRuntime, base, uint32(total), r.Size())
	}

	buf, err := r.View(base, uint32(total))
	if err != nil {
		return err
	}

	sort.Sort(&packedArray{
		buf:  buf,
		size: int(size),
		cmp:  cmp,
		tmp:  make([]byte, size),
	})
	return nil
}

// Bsearch finds an element matching key in a sorted packed array, returning
// the element's offset. cmp receives the key and a view of one element.
func Bsearch(r hostshim.Region, key []byte, base, nmemb, size uint32, cmp func(key, elem []byte) int) (uint32, bool, error) {
	if size == 0 {
		return 0, false, errors.InvalidInput(errors.PhaseRuntime, "zero element size")
	}

	total := uint64(nmemb) * uint64(size)
	if total > uint64(r.Size()) {
		return 0, false, errors.OutOfBounds(errors.PhaseRuntime, base, uint32(total), r.Size())
	}

	buf, err := r.View(base, uint32(total))
	if err != nil {
		return 0, false, err
	}

	i := sort.Search(int(nmemb), func(i int) bool {
		return cmp(key, buf[i*int(size):(i+1)*int(size)]) <= 0
	})
	if i < int(nmemb) && cmp(key, buf[i*int(size):(i+1)*int(size)]) == 0 {
		return base + uint32(i)*size, true, nil
	}
	return 0, false, nil
}
