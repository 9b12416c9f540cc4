package isa

// MemSize is the fixed size of the byte-addressed memory: 1 MiB.
const MemSize = 1024 * 1024

// Memory is the simulator's byte-addressed, little-endian memory.
type Memory struct {
	bytes [MemSize]byte
}

// ReadByte returns the byte at addr and whether the access was in bounds.
func (m *Memory) ReadByte(addr uint64) (byte, bool) {
	if addr >= MemSize {
		return 0, false
	}
	return m.bytes[addr], true
}

// WriteByte writes a single byte at addr. Returns false if addr is out of bounds.
func (m *Memory) WriteByte(addr uint64, b byte) bool {
	if addr >= MemSize {
		return false
	}
	m.bytes[addr] = b
	return true
}

// Read64 reads a little-endian 64-bit value at addr. ok is false when
// the 8-byte access would run past the end of memory (addr > MemSize-8).
func (m *Memory) Read64(addr uint64) (val uint64, ok bool) {
	if addr >= MemSize || addr > MemSize-8 {
		return 0, false
	}
	for i := 0; i < 8; i++ {
		val |= uint64(m.bytes[addr+uint64(i)]) << (8 * i)
	}
	return val, true
}

// Write64 writes a little-endian 64-bit value at addr. Returns false when
// the 8-byte access would run past the end of memory.
func (m *Memory) Write64(addr uint64, val uint64) bool {
	if addr >= MemSize || addr > MemSize-8 {
		return false
	}
	for i := 0; i < 8; i++ {
		m.bytes[addr+uint64(i)] = byte(val >> (8 * i))
	}
	return true
}

// Load copies data into memory starting at offset 0, as produced by the
// loader. Bytes beyond len(data) are left zero.
func (m *Memory) Load(data []byte) {
	n := len(data)
	if n > MemSize {
		n = MemSize
	}
	copy(m.bytes[:n], data[:n])
}

// Reset zeroes all of memory.
func (m *Memory) Reset() {
	m.bytes = [MemSize]byte{}
}

// NonZeroWords returns the sparse set of non-zero, 8-byte-aligned words in
// memory, keyed by address, interpreted as signed 64-bit values.
// It is computed lazily, once per snapshot.
func (m *Memory) NonZeroWords() map[uint64]int64 {
	out := make(map[uint64]int64)
	for addr := uint64(0); addr+8 <= MemSize; addr += 8 {
		val, _ := m.Read64(addr)
		if val != 0 {
			out[addr] = int64(val)
		}
	}
	return out
}
