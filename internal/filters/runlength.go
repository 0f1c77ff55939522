package filters

import "fmt"

// RunLengthDecode expands PackBits-style run-length data. A length byte n
// below 128 copies the next n+1 bytes, above 128 repeats the next byte
// 257-n times, and 128 ends the data.
func RunLengthDecode(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data)*2)
	for i := 0; i < len(data); {
		n := int(data[i])
		i++
		switch {
		case n == 128:
			return out, nil
		case n < 128:
			end := i + n + 1
			if end > len(data) {
				return nil, fmt.Errorf("run-length literal of %d bytes overruns input", n+1)
			}
			out = append(out, data[i:end]...)
			i = end
		default:
			if i >= len(data) {
				return nil, fmt.Errorf("run-length repeat missing its byte")
			}
			for j := 0; j < 257-n; j++ {
				out = append(out, data[i])
			}
			i++
		}
	}
	return out, nil
}
