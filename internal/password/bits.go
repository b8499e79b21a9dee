package password

// bitWriter appends values MSB-first.
type bitWriter struct {
	bits []uint8
}

func (w *bitWriter) write(v, width int) {
	for i := width - 1; i >= 0; i-- {
		w.bits = append(w.bits, uint8(v>>i)&1)
	}
}

// symbols cuts the stream into 5-bit groups. The stream length must be a
// multiple of 5.
func (w *bitWriter) symbols() []int {
	out := make([]int, 0, len(w.bits)/symbolBits)
	for i := 0; i+symbolBits <= len(w.bits); i += symbolBits {
		v := 0
		for _, b := range w.bits[i : i+symbolBits] {
			v = v<<1 | int(b)
		}
		out = append(out, v)
	}
	return out
}

type bitReader struct {
	bits []uint8
	pos  int
}

func newBitReader(symbols []int) *bitReader {
	var w bitWriter
	for _, s := range symbols {
		w.write(s, symbolBits)
	}
	return &bitReader{bits: w.bits}
}

func (r *bitReader) read(width int) int {
	v := 0
	for i := 0; i < width; i++ {
		v = v<<1 | int(r.bits[r.pos])
		r.pos++
	}
	return v
}

// crc16 is CRC-16/CCITT-FALSE: polynomial 0x1021, initial value 0xFFFF,
// no reflection, no final xor.
func crc16(data []int) uint16 {
	crc := uint16(0xFFFF)
	for _, d := range data {
		crc ^= uint16(d&0xFF) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
