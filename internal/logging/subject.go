package logging

import "strings"

// FormatSubject builds the run/stage/article subject string used in console output.
func FormatSubject(runID, stage, article string) string {
	runID = strings.TrimSpace(runID)
	stage = strings.TrimSpace(stage)
	article = strings.TrimSpace(article)
	parts := make([]string, 0, 3)
	if runID != "" {
		if len(runID) > 8 {
			runID = runID[:8]
		}
		parts = append(parts, "Run "+runID)
	}
	switch {
	case stage != "" && article != "":
		parts = append(parts, stage+" ("+article+")")
	case stage != "":
		parts = append(parts, stage)
	case article != "":
		parts = append(parts, article)
	}
	return strings.Join(parts, " · ")
}
