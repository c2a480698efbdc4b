package network

import (
	"errors"
	"fmt"
	"net/netip"
)

var errAddressSpaceExhausted = errors.New("not enough address space")

// cidrAllocator carves consecutive, aligned subnets out of a parent IPv4
// block.
type cidrAllocator struct {
	parent netip.Prefix
	next   uint64
	end    uint64
}

func newCIDRAllocator(cidr string) (*cidrAllocator, error) {
	prefix, err := netip.ParsePrefix(cidr)
	if err != nil {
		return nil, fmt.Errorf("invalid CIDR %q: %w", cidr, err)
	}
	if !prefix.Addr().Is4() {
		return nil, fmt.Errorf("invalid CIDR %q: only IPv4 blocks are supported", cidr)
	}
	prefix = prefix.Masked()

	start := uint64(addrToUint32(prefix.Addr()))
	return &cidrAllocator{
		parent: prefix,
		next:   start,
		end:    start + blockSize(prefix.Bits()),
	}, nil
}

// allocate returns the next free block with the given mask.
func (a *cidrAllocator) allocate(mask int) (netip.Prefix, error) {
	if mask < a.parent.Bits() || mask > 32 {
		return netip.Prefix{}, fmt.Errorf("subnet mask /%d does not fit in %s", mask, a.parent)
	}

	size := blockSize(mask)
	start := (a.next + size - 1) / size * size
	if start+size > a.end {
		return netip.Prefix{}, fmt.Errorf("%w in %s for another /%d subnet", errAddressSpaceExhausted, a.parent, mask)
	}
	a.next = start + size

	return netip.PrefixFrom(uint32ToAddr(uint32(start)), mask), nil
}

func blockSize(bits int) uint64 {
	return uint64(1) << (32 - bits)
}

func addrToUint32(a netip.Addr) uint32 {
	b := a.As4()
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func uint32ToAddr(v uint32) netip.Addr {
	return netip.AddrFrom4([4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
}
