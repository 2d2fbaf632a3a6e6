package layout

// NoticeCode identifies a kind of degenerate input.
type NoticeCode string

const (
	// NoticeSpectralFallback: the initializer used the uniform cube.
	NoticeSpectralFallback NoticeCode = "spectral_fallback"

	// NoticeKnnClamped: knn_k exceeded n-1.
	NoticeKnnClamped NoticeCode = "knn_clamped"

	// NoticeRoundsExhausted: seed selection ran out of rounds before k
	// seeds were committed.
	NoticeRoundsExhausted NoticeCode = "rounds_exhausted"
)

// Notice reports a degenerate input that was handled rather than rejected.
type Notice struct {
	Code    NoticeCode
	Message string
}

func (n Notice) String() string {
	return string(n.Code) + ": " + n.Message
}
