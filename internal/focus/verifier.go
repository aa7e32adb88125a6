package focus

import "github.com/1broseidon/remotefocus/internal/platform"

// Verifier compares the OS foreground window against a target by handle.
type Verifier struct {
	fg platform.ForegroundReader
}

func NewVerifier(fg platform.ForegroundReader) *Verifier {
	return &Verifier{fg: fg}
}

// IsForeground reports whether h is the current foreground window. Query
// errors and the zero handle count as not foreground.
func (v *Verifier) IsForeground(h platform.WindowHandle) bool {
	if h == 0 {
		return false
	}
	cur, err := v.fg.ForegroundWindow()
	if err != nil {
		return false
	}
	return cur == h
}
