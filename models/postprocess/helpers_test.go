package postprocess

import (
	"fmt"
	"math/rand"
)

const testClasses = 80

func testLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("class-%d", i)
	}
	return labels
}

func testConfig(layout Layout) Config {
	cfg := DefaultConfig(layout)
	cfg.Labels = testLabels(testClasses)
	return cfg
}

// transposedBuffer builds a [4+C, N] buffer one candidate at a time.
type transposedBuffer struct {
	n, classes int
	data       []float32
}

func newTransposedBuffer(n, classes int) *transposedBuffer {
	return &transposedBuffer{n: n, classes: classes, data: make([]float32, (4+classes)*n)}
}

func (b *transposedBuffer) set(i int, cx, cy, w, h float32, class int, score float32) *transposedBuffer {
	b.data[i] = cx
	b.data[b.n+i] = cy
	b.data[2*b.n+i] = w
	b.data[3*b.n+i] = h
	b.data[(4+class)*b.n+i] = score
	return b
}

func (b *transposedBuffer) score(i, class int, score float32) *transposedBuffer {
	b.data[(4+class)*b.n+i] = score
	return b
}

func (b *transposedBuffer) raw() RawOutput {
	raw, err := NewRawOutput(b.data, LayoutTransposed, 1, int64(4+b.classes), int64(b.n))
	if err != nil {
		panic(err)
	}
	return raw
}

// interleavedBuffer builds a [N, 5+C] buffer one candidate at a time.
type interleavedBuffer struct {
	n, classes int
	data       []float32
}

func newInterleavedBuffer(n, classes int) *interleavedBuffer {
	return &interleavedBuffer{n: n, classes: classes, data: make([]float32, (5+classes)*n)}
}

func (b *interleavedBuffer) set(i int, cx, cy, w, h, objectness float32, class int, score float32) *interleavedBuffer {
	offset := i * (5 + b.classes)
	b.data[offset] = cx
	b.data[offset+1] = cy
	b.data[offset+2] = w
	b.data[offset+3] = h
	b.data[offset+4] = objectness
	b.data[offset+5+class] = score
	return b
}

func (b *interleavedBuffer) raw() RawOutput {
	raw, err := NewRawOutput(b.data, LayoutInterleaved, 1, int64(b.n), int64(5+b.classes))
	if err != nil {
		panic(err)
	}
	return raw
}

// randomTransposed fills n candidates with one scored class each.
func randomTransposed(seed int64, n int) *transposedBuffer {
	rng := rand.New(rand.NewSource(seed))
	b := newTransposedBuffer(n, testClasses)
	for i := 0; i < n; i++ {
		b.set(i,
			rng.Float32()*640,
			rng.Float32()*640,
			10+rng.Float32()*150,
			10+rng.Float32()*150,
			rng.Intn(testClasses),
			rng.Float32(),
		)
	}
	return b
}
