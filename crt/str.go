package crt

import (
	"bytes"

	"github.com/embwasm/hostshim"
	"github.com/embwasm/hostshim/errors"
)

// tail returns the view from off to the end of the region.
func tail(r hostshim.Region, off uint32) ([]byte, error) {
	size := r.Size()
	if off > size {
		return nil, errors.OutOfBounds(errors.PhaseFormat, off, 0, size)
	}
	return r.View(off, size-off)
}

// cstr returns the bytes of the null-terminated string at off, without the
// terminator. A missing terminator inside the region is an error.
func cstr(r hostshim.Region, off uint32) ([]byte, error) {
	buf, err := tail(r, off)
	if err != nil {
		return nil, err
	}
	i := bytes.IndexByte(buf, 0)
	if i < 0 {
		return nil, errors.InvalidInput(errors.PhaseFormat, "string is not null-terminated within the region")
	}
	return buf[:i], nil
}

// Strlen returns the length of the null-terminated string at off.
func Strlen(r hostshim.Region, off uint32) (uint32, error) {
	s, err := cstr(r, off)
	if err != nil {
		return 0, err
	}
	return uint32(len(s)), nil
}

// CString copies the null-terminated string at off out of the region.
func CString(r hostshim.Region, off uint32) (string, error) {
	s, err := cstr(r, off)
	if err != nil {
		return "", err
	}
	return string(s), nil
}

// Strcmp compares the null-terminated strings at a and b.
func Strcmp(r hostshim.Region, a, b uint32) (int, error) {
	av, err := cstr(r, a)
	if err != nil {
		return 0, err
	}
	bv, err := cstr(r, b)
	if err != nil {
		return 0, err
	}
	return bytes.Compare(av, bv), nil
}

// Strncmp compares at most n bytes of the null-terminated strings at a
// and b.
func Strncmp(r hostshim.Region, a, b, n uint32) (int, error) {
	av, err := cstr(r, a)
	if err != nil {
		return 0, err
	}
	bv, err := cstr(r, b)
	if err != nil {
		return 0, err
	}
	if uint32(len(av)) > n {
		av = av[:n]
	}
	if uint32(len(bv)) > n {
		bv = bv[:n]
	}
	return bytes.Compare(av, bv), nil
}

// Strcpy copies the null-terminated string at src to dst, terminator
// included, and returns dst.
func Strcpy(r hostshim.Region, dst, src uint32) (uint32, error) {
	s, err := cstr(r, src)
	if err != nil {
		return 0, err
	}
	d, err := r.View(dst, uint32(len(s))+1)
	if err != nil {
		return 0, err
	}
	copy(d, s)
	d[len(s)] = 0
	return dst, nil
}

// Strchr finds the first occurrence of c in the null-terminated string at
// off, returning its offset.
func Strchr(r hostshim.Region, off uint32, c byte) (uint32, bool, error) {
	s, err := cstr(r, off)
	if err != nil {
		return 0, false, err
	}
	if c == 0 {
		return off + uint32(len(s)), true, nil
	}
	i := bytes.IndexByte(s, c)
	if i < 0 {
		return 0, false, nil
	}
	return off + uint32(i), true, nil
}

// Strstr finds the first occurrence of the string at needle inside the
// string at hay, returning its offset.
func Strstr(r hostshim.Region, hay, needle uint32) (uint32, bool, error) {
	h, err := cstr(r, hay)
	if err != nil {
		return 0, false, err
	}
	n, err := cstr(r, needle)
	if err != nil {
		return 0, false, err
	}
	i := bytes.Index(h, n)
	if i < 0 {
		return 0, false, nil
	}
	return hay + uint32(i), true, nil
}
