package all

import "github.com/coreman2200/pulsestage/internal/analysis"

func analysisUpdate(beat int) analysis.Update {
	bar := beat / 4
	return analysis.Update{Beat: &beat, Bar: &bar}
}
