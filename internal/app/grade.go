package app

import "arcquiz-service/internal/domain"

// GradeFor maps a final score to the performance tier shown on the
// result screen.
func GradeFor(score, total int) domain.Grade {
	if total <= 0 {
		return domain.Grade{Title: "Result unavailable", Message: "The result could not be computed."}
	}
	pct := float64(score) / float64(total)
	switch {
	case pct == 1.0:
		return domain.Grade{Title: "Excellent", Message: "Perfect score. Outstanding run."}
	case pct >= 0.8:
		return domain.Grade{Title: "Very good", Message: "Consistent, above-average performance."}
	case pct >= 0.6:
		return domain.Grade{Title: "Good", Message: "Solid result with room to grow."}
	case pct >= 0.4:
		return domain.Grade{Title: "Fair", Message: "You are on your way. Keep practicing."}
	default:
		return domain.Grade{Title: "Beginner", Message: "Everyone starts somewhere. Practice builds consistency."}
	}
}
