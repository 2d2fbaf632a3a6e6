package observability

import "time"

// MultiEmbedding fans embedding events out to several hook sets, in order.
// The CLI uses it to feed both the metrics registry and the progress view.
type MultiEmbedding []EmbeddingHooks

func (m MultiEmbedding) OnEmbedStart(n, edges, dim, iterations int) {
	for _, h := range m {
		h.OnEmbedStart(n, edges, dim, iterations)
	}
}

func (m MultiEmbedding) OnIteration(iter, total int, maxStep float64) {
	for _, h := range m {
		h.OnIteration(iter, total, maxStep)
	}
}

func (m MultiEmbedding) OnEmbedComplete(iterations int, d time.Duration, err error) {
	for _, h := range m {
		h.OnEmbedComplete(iterations, d, err)
	}
}

func (m MultiEmbedding) OnNotice(code, message string) {
	for _, h := range m {
		h.OnNotice(code, message)
	}
}
