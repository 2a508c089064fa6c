package megolm

import (
	"ratchetkit/internal/crypto"
	"ratchetkit/internal/util/memzero"
)

const (
	RatchetParts  = 4
	PartLength    = 32
	RatchetLength = RatchetParts * PartLength
)

var hashKeySeeds = [RatchetParts][]byte{{0x00}, {0x01}, {0x02}, {0x03}}

// Ratchet is the four-part hash ratchet at a given counter value.
type Ratchet struct {
	data    [RatchetParts][PartLength]byte
	counter uint32
}

// NewRatchet builds a ratchet from raw state.
func NewRatchet(data [RatchetLength]byte, counter uint32) Ratchet {
	var r Ratchet
	for i := 0; i < RatchetParts; i++ {
		copy(r.data[i][:], data[i*PartLength:(i+1)*PartLength])
	}
	r.counter = counter
	return r
}

// RandomRatchet returns a ratchet with fresh random state at index 0.
func RandomRatchet() (Ratchet, error) {
	var data [RatchetLength]byte
	defer memzero.Zero(data[:])
	if err := crypto.ReadRandom(data[:]); err != nil {
		return Ratchet{}, err
	}
	return NewRatchet(data, 0), nil
}

// Index is the message index the ratchet will produce a key for next.
func (r Ratchet) Index() uint32 { return r.counter }

// Bytes returns R0 | R1 | R2 | R3.
func (r Ratchet) Bytes() [RatchetLength]byte {
	var out [RatchetLength]byte
	for i := 0; i < RatchetParts; i++ {
		copy(out[i*PartLength:], r.data[i][:])
	}
	return out
}

func (r *Ratchet) rehash(from, to int) {
	sum := crypto.HMACSHA256(r.data[from][:], hashKeySeeds[to])
	copy(r.data[to][:], sum)
	memzero.Zero(sum)
}

// Advance moves the ratchet forward by one.
func (r *Ratchet) Advance() {
	mask := uint32(0x00FFFFFF)
	h := 0
	r.counter++

	// Find the most significant part that rolls over.
	for h < RatchetParts {
		if r.counter&mask == 0 {
			break
		}
		h++
		mask >>= 8
	}
	for i := RatchetParts - 1; i >= h; i-- {
		r.rehash(h, i)
	}
}

// AdvanceTo moves the ratchet forward to index. An index behind the
// current counter is treated as a wrap of the 32-bit counter; callers that
// must not move backwards check the index first.
func (r *Ratchet) AdvanceTo(index uint32) {
	for j := 0; j < RatchetParts; j++ {
		shift := uint((RatchetParts - j - 1) * 8)
		mask := ^uint32(0) << shift

		// & 0xff handles wraparound of this byte of the counter.
		steps := ((index >> shift) - (r.counter >> shift)) & 0xff
		if steps == 0 {
			// Only possible for R0: the counter is slightly ahead of index,
			// so index has wrapped and R0 must go round 256 times.
			if index < r.counter {
				steps = 0x100
			} else {
				continue
			}
		}

		// All but the last step only touch Rj.
		for ; steps > 1; steps-- {
			r.rehash(j, j)
		}
		for k := RatchetParts - 1; k >= j; k-- {
			r.rehash(j, k)
		}
		r.counter = index & mask
	}
}
