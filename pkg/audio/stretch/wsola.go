// ABOUTME: WSOLA tempo engine
// ABOUTME: Changes duration without changing pitch by overlap-adding similar waveform segments
package stretch

import "math"

const unityTolerance = 0.001

type wsola struct {
	channels int
	tempo    float64
	params   engineParams

	input     []float32
	tail      []float32 // overlap frames saved from the previous sequence
	primed    bool
	skipFract float64
}

func newWSOLA(channels int) *wsola {
	return &wsola{channels: channels, tempo: 1}
}

func (w *wsola) passthrough() bool {
	return math.Abs(w.tempo-1) < unityTolerance
}

func (w *wsola) configure(tempo float64, params engineParams) {
	wasPassthrough := w.passthrough()
	w.tempo = tempo

	if w.params.overlap != params.overlap || wasPassthrough != w.passthrough() {
		w.primed = false
		w.tail = w.tail[:0]
	}
	w.params = params
}

func (w *wsola) clear() {
	w.input = w.input[:0]
	w.tail = w.tail[:0]
	w.primed = false
	w.skipFract = 0
}

func (w *wsola) frames() int {
	return len(w.input) / w.channels
}

// required returns the input frames needed for one sequence
func (w *wsola) required() int {
	skip := int(w.tempo*float64(w.params.sequence-w.params.overlap) + 0.5)
	need := skip + w.params.overlap
	if need < w.params.sequence {
		need = w.params.sequence
	}
	return need + w.params.seek
}

func (w *wsola) put(samples []float32) {
	w.input = append(w.input, samples...)
}

// process appends all output that can be produced from buffered input to dst
func (w *wsola) process(dst []float32) []float32 {
	if w.passthrough() {
		dst = append(dst, w.input...)
		w.input = w.input[:0]
		return dst
	}

	ch := w.channels
	seq := w.params.sequence
	ovl := w.params.overlap
	consumed := 0

	for (len(w.input)-consumed)/ch >= w.required() {
		in := w.input[consumed:]

		if !w.primed {
			dst = append(dst, in[:(seq-ovl)*ch]...)
			w.primed = true
		} else {
			offset := w.seekBestOverlap(in)
			base := offset * ch

			for i := 0; i < ovl; i++ {
				fadeIn := float32(i) / float32(ovl)
				fadeOut := 1 - fadeIn
				for c := 0; c < ch; c++ {
					dst = append(dst, w.tail[i*ch+c]*fadeOut+in[base+i*ch+c]*fadeIn)
				}
			}
			dst = append(dst, in[base+ovl*ch:base+(seq-ovl)*ch]...)
			in = in[base:]
		}

		w.tail = append(w.tail[:0], in[(seq-ovl)*ch:seq*ch]...)

		w.skipFract += w.tempo * float64(seq-ovl)
		skip := int(w.skipFract)
		w.skipFract -= float64(skip)
		consumed += skip * ch
	}

	if consumed > 0 {
		w.input = w.input[:copy(w.input, w.input[consumed:])]
	}
	return dst
}

// seekBestOverlap finds the offset within the seek window whose first
// overlap frames best match the saved tail
func (w *wsola) seekBestOverlap(in []float32) int {
	ch := w.channels
	n := w.params.overlap * ch

	best := 0
	bestCorr := math.Inf(-1)
	for offset := 0; offset < w.params.seek; offset++ {
		seg := in[offset*ch : offset*ch+n]
		var corr, norm float64
		for i := 0; i < n; i++ {
			corr += float64(w.tail[i]) * float64(seg[i])
			norm += float64(seg[i]) * float64(seg[i])
		}
		score := corr / math.Sqrt(norm+1e-9)
		if score > bestCorr {
			bestCorr = score
			best = offset
		}
	}
	return best
}

// flush emits the saved tail and the remaining input decimated by tempo
func (w *wsola) flush(dst []float32) []float32 {
	dst = w.process(dst)

	ch := w.channels
	if w.primed {
		dst = append(dst, w.tail...)
	}
	frames := w.frames()
	for pos := w.skipFract; int(pos) < frames; pos += w.tempo {
		i := int(pos) * ch
		dst = append(dst, w.input[i:i+ch]...)
	}
	w.clear()
	return dst
}
