package diagnostics

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

// Codes pushed by the host.
const (
	GovernorScale  = "GOV.SCALE"
	ControlUnknown = "CONTROL.UNKNOWN"
	ControlInvalid = "CONTROL.INVALID"
	LEDFallback    = "LED.FALLBACK"
	LEDWrite       = "LED.WRITE"
	LEDTestDone    = "LED.TEST_DONE"
	ShowLoaded     = "SHOW.LOADED"
	ShowError      = "SHOW.ERROR"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

func New(sev Severity, code, summary string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Summary: summary}
}

// With returns a copy carrying one more piece of evidence.
func (d Diagnostic) With(key string, v any) Diagnostic {
	ev := make(map[string]any, len(d.Evidence)+1)
	for k, x := range d.Evidence {
		ev[k] = x
	}
	ev[key] = v
	d.Evidence = ev
	return d
}
