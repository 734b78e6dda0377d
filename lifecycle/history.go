package lifecycle

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/linesmerrill/justice-case-api/models"
)

// prependEntry returns history with e in front. History is ordered by
// insertion, newest first, and entries are never edited.
func prependEntry(history []models.TransitionEntry, e models.TransitionEntry) []models.TransitionEntry {
	return append([]models.TransitionEntry{e}, history...)
}

func prependNote(notes []models.Note, n models.Note) []models.Note {
	return append([]models.Note{n}, notes...)
}

func newNote(p models.Principal, content string, now time.Time) models.Note {
	return models.Note{
		ID:        uuid.New().String(),
		Content:   strings.TrimSpace(content),
		ActorID:   p.ActorID,
		ActorName: p.DisplayName(),
		Date:      now,
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
