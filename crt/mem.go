package crt

import (
	"bytes"

	"github.com/embwasm/hostshim"
)

// Memset fills n bytes at off with c.
func Memset(r hostshim.Region, off uint32, c byte, n uint32) error {
	buf, err := r.View(off, n)
	if err != nil {
		return err
	}
	for i := range buf {
		buf[i] = c
	}
	return nil
}

// Memcpy copies n bytes from src to dst. The ranges must not overlap;
// use Memmove when they might.
func Memcpy(r hostshim.Region, dst, src, n uint32) error {
	return Memmove(r, dst, src, n)
}

// Memmove copies n bytes from src to dst, handling overlap.
func Memmove(r hostshim.Region, dst, src, n uint32) error {
	d, err := r.View(dst, n)
	if err != nil {
		return err
	}
	s, err := r.View(src, n)
	if err != nil {
		return err
	}
	copy(d, s)
	return nil
}

// Memcmp compares n bytes at a and b, returning <0, 0, or >0.
func Memcmp(r hostshim.Region, a, b, n uint32) (int, error) {
	av, err := r.View(a, n)
	if err != nil {
		return 0, err
	}
	bv, err := r.View(b, n)
	if err != nil {
		return 0, err
	}
	return bytes.Compare(av, bv), nil
}
