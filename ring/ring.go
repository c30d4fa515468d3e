// Package ring implements the framed byte ring buffer: a fixed-capacity
// arena carrying discrete, header-framed messages between a producer and a
// consumer, with FIFO draining, non-mutating peek, and selective
// out-of-order extraction via in-place tombstoning.
//
// The wire format is bit-exact and intentionally simple: a 2-byte
// big-endian message id (1..65535; 0 marks a tombstone), a 2-byte
// big-endian payload length, then the payload itself. Every cursor
// operation is modular in size, so a record's header or payload may
// straddle the end of the arena.
//
// Ring is not safe for concurrent use — callers running it from a
// cooperative single-threaded loop (as scheduler.Scheduler does) need no
// locking, and adding any would contradict this package's memory
// discipline: a single pre-allocated arena that Put writes into without
// allocating. Get, Peek and Pull return a freshly allocated copy of the
// record they read.
package ring

import (
	"encoding/binary"
	"fmt"
)

const (
	minSize       = 8
	headerSize    = 4
	maxMsgID      = 65535
	maxPayloadLen = 65535
)

// Ring is a fixed-capacity framed byte ring buffer.
type Ring struct {
	buf  []byte
	size int

	head  int // next write position
	tail  int // next read position
	count int // bytes currently occupied

	puts              uint64
	gets              uint64
	pulls             uint64
	tombstones        uint64
	capacityExhausted uint64
}

// New constructs a Ring with the given fixed capacity. size must be at
// least 8 bytes — enough to hold one empty-payload record header (4 bytes)
// plus a little headroom; smaller sizes are rejected.
func New(size int) (*Ring, error) {
	if size < minSize {
		return nil, newError("New", ErrCodeInvalidArgument, "size must be an integer >= 8")
	}
	return &Ring{buf: make([]byte, size), size: size}, nil
}

func (r *Ring) advance(pos, n int) int {
	return (pos + n) % r.size
}

func (r *Ring) spaceLeft() int {
	return r.size - r.count
}

// IsEmpty reports whether the buffer currently holds no bytes.
func (r *Ring) IsEmpty() bool { return r.count == 0 }

// IsFull reports whether the buffer has no remaining space.
func (r *Ring) IsFull() bool { return r.count == r.size }

// Len returns the number of bytes currently occupied.
func (r *Ring) Len() int { return r.count }

// Put appends a framed record. msgID must be in 1..65535 (0 is reserved
// for tombstones); payload may be empty but not exceed 65535 bytes. Put
// fails with ErrCodeCapacityExhausted if the buffer has insufficient
// contiguous-in-the-modular-sense space for the whole record.
func (r *Ring) Put(msgID uint16, payload []byte) error {
	if msgID == 0 {
		return newError("Put", ErrCodeInvalidArgument, "msg_id must be between 1 and 65535")
	}
	if len(payload) > maxPayloadLen {
		return newError("Put", ErrCodeInvalidArgument, "message length exceeds maximum of 65535 bytes")
	}

	total := headerSize + len(payload)
	if r.spaceLeft() < total {
		r.capacityExhausted++
		return newError("Put", ErrCodeCapacityExhausted, "not enough space in buffer")
	}

	var header [headerSize]byte
	binary.BigEndian.PutUint16(header[0:2], msgID)
	binary.BigEndian.PutUint16(header[2:4], uint16(len(payload)))

	r.writeBytes(header[:])
	r.writeBytes(payload)
	r.count += total
	r.puts++
	return nil
}

func (r *Ring) writeBytes(b []byte) {
	for _, c := range b {
		r.buf[r.head] = c
		r.head = r.advance(r.head, 1)
	}
}

// getHeader reads the 4-byte header located at ptr, indexing each byte
// independently modulo size so the header itself may straddle the end of
// the arena. Returns the message id and the record's total on-wire size
// (4 + payload length).
func (r *Ring) getHeader(ptr int) (msgID uint16, totalLen int) {
	b0 := r.buf[ptr]
	b1 := r.buf[r.advance(ptr, 1)]
	b2 := r.buf[r.advance(ptr, 2)]
	b3 := r.buf[r.advance(ptr, 3)]
	msgID = binary.BigEndian.Uint16([]byte{b0, b1})
	msgLen := binary.BigEndian.Uint16([]byte{b2, b3})
	return msgID, headerSize + int(msgLen)
}

// readBytes copies n bytes starting at ptr into a fresh slice, handling
// wraparound.
func (r *Ring) readBytes(ptr, n int) []byte {
	out := make([]byte, n)
	p := ptr
	for i := 0; i < n; i++ {
		out[i] = r.buf[p]
		p = r.advance(p, 1)
	}
	return out
}

// Get consumes and returns the oldest live record, skipping over any
// leading tombstones. Returns (0, nil) if no live record is available,
// including the malformed-tail case where the buffer holds fewer bytes
// than the header at tail claims.
func (r *Ring) Get() (msgID uint16, payload []byte) {
	for r.count >= headerSize {
		id, totalLen := r.getHeader(r.tail)
		if r.count < totalLen {
			return 0, nil
		}
		if id == 0 {
			r.tail = r.advance(r.tail, totalLen)
			r.count -= totalLen
			r.tombstones++
			continue
		}
		rec := r.readBytes(r.tail, totalLen)
		r.tail = r.advance(r.tail, totalLen)
		r.count -= totalLen
		r.gets++
		return id, rec[headerSize:]
	}
	return 0, nil
}

// Peek returns the oldest live record's fields without mutating any
// cursor, skipping tombstones. ok is false if no live record is present.
func (r *Ring) Peek() (msgID uint16, payload []byte, ok bool) {
	scanPtr := r.tail
	scanned := 0

	for scanned < r.count {
		if r.count-scanned < headerSize {
			return 0, nil, false
		}
		id, totalLen := r.getHeader(scanPtr)
		if r.count-scanned < totalLen {
			return 0, nil, false
		}
		if id != 0 {
			rec := r.readBytes(scanPtr, totalLen)
			return id, rec[headerSize:], true
		}
		scanPtr = r.advance(scanPtr, totalLen)
		scanned += totalLen
	}
	return 0, nil, false
}

// cleanUp reclaims any run of tombstoned records sitting at tail.
func (r *Ring) cleanUp() {
	for r.count >= headerSize {
		id, totalLen := r.getHeader(r.tail)
		if id != 0 {
			return
		}
		r.tail = r.advance(r.tail, totalLen)
		r.count -= totalLen
	}
}

// Pull scans forward from tail for the first (oldest) record whose id
// equals wantedID, extracts a copy of its payload, and tombstones the
// record in place (overwriting its id bytes with 0) rather than shifting
// any bytes. If the matched record sits exactly at tail, tail is advanced
// and count decremented immediately; otherwise the tombstone is left for
// cleanUp (invoked here) or a later Get to reclaim. Returns (0, nil) if
// wantedID is out of range or not found.
func (r *Ring) Pull(wantedID uint16) (msgID uint16, payload []byte) {
	if wantedID == 0 {
		return 0, nil
	}

	scanPtr := r.tail
	scanned := 0

	for scanned < r.count {
		if r.count-scanned < headerSize {
			break
		}
		idPos := scanPtr
		id, totalLen := r.getHeader(scanPtr)
		if r.count-scanned < totalLen {
			break
		}

		if id == wantedID {
			r.buf[idPos] = 0
			r.buf[r.advance(idPos, 1)] = 0
			rec := r.readBytes(scanPtr, totalLen)

			if scanPtr == r.tail {
				r.tail = r.advance(r.tail, totalLen)
				r.count -= totalLen
			} else {
				r.cleanUp()
			}

			r.pulls++
			r.tombstones++
			return id, rec[headerSize:]
		}

		scanPtr = r.advance(scanPtr, totalLen)
		scanned += totalLen
	}

	return 0, nil
}

// List returns every live message id, oldest to newest, without mutating
// the buffer.
func (r *Ring) List() []uint16 {
	var ids []uint16
	scanPtr := r.tail
	scanned := 0

	for scanned < r.count {
		if r.count-scanned < headerSize {
			break
		}
		id, totalLen := r.getHeader(scanPtr)
		if r.count-scanned < totalLen {
			break
		}
		if id != 0 {
			ids = append(ids, id)
		}
		scanPtr = r.advance(scanPtr, totalLen)
		scanned += totalLen
	}
	return ids
}

// Clear resets the buffer to empty without zeroing the underlying arena.
func (r *Ring) Clear() {
	r.head = 0
	r.tail = 0
	r.count = 0
}

// String implements fmt.Stringer for debug printing.
func (r *Ring) String() string {
	return fmt.Sprintf("Ring(size=%d, count=%d, head=%d, tail=%d)", r.size, r.count, r.head, r.tail)
}
