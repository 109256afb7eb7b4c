package flat

// WriteBytes encodes an arbitrary byte slice as flat's chunked bytestring:
// byte-align, then a sequence of up-to-255-byte chunks each preceded by
// its own length byte, terminated by a zero-length chunk.
func (w *Writer) WriteBytes(data []byte) {
	w.Flush()
	for len(data) > 0 {
		n := len(data)
		if n > 255 {
			n = 255
		}
		w.WriteByte(byte(n))
		for _, b := range data[:n] {
			w.WriteByte(b)
		}
		data = data[n:]
	}
	w.WriteByte(0)
}

// ReadBytes decodes a value written by WriteBytes.
func (r *Reader) ReadBytes() ([]byte, error) {
	r.AlignToByte()
	var out []byte
	for {
		n, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return out, nil
		}
		for i := 0; i < int(n); i++ {
			b, err := r.ReadByte()
			if err != nil {
				return nil, err
			}
			out = append(out, b)
		}
	}
}
