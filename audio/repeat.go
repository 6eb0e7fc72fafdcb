package audio

import "github.com/gopxl/beep/v2"

// Repeat streams d forever by asking it for a fresh decoder each time the
// current one runs out. A source that yields nothing ends the loop instead of
// spinning.
func Repeat(d Decodable) beep.Streamer {
	s, _ := d.Decoder()
	return &repeater{source: d, current: s}
}

type repeater struct {
	source  Decodable
	current beep.Streamer
	err     error
}

func (r *repeater) Stream(samples [][2]float64) (int, bool) {
	filled := 0
	for filled < len(samples) {
		n, ok := r.current.Stream(samples[filled:])
		filled += n
		if ok && n > 0 {
			continue
		}
		if err := r.current.Err(); err != nil {
			r.err = err
			return filled, filled > 0
		}
		next, _ := r.source.Decoder()
		head := make([][2]float64, 1)
		m, ok := next.Stream(head)
		if !ok || m == 0 {
			// empty source
			return filled, filled > 0
		}
		samples[filled] = head[0]
		filled++
		r.current = next
	}
	return filled, true
}

func (r *repeater) Err() error {
	return r.err
}
