package ports

// SignalKind names a UI lifecycle signal.
type SignalKind string

const (
	SignalFocus        SignalKind = "focus"
	SignalVisibility   SignalKind = "visibility"
	SignalUnauthorized SignalKind = "unauthorized"
)

// Signal is one notification from the UI shell. Visible applies to
// visibility signals, URL to unauthorized ones.
type Signal struct {
	Kind    SignalKind
	Visible bool
	URL     string
}
