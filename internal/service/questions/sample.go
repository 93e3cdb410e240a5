package questions

import (
	"context"

	"interview-capture-service/internal/models"
)

// sampleQuestions is the built-in set served when no question service is
// configured, so the binary is runnable standalone.
var sampleQuestions = []models.Question{
	{ID: "q-1", Text: "Tell us about yourself.", PointValue: 10, TimeLimitSeconds: 60},
	{ID: "q-2", Text: "Describe a difficult problem you solved recently.", PointValue: 20, TimeLimitSeconds: 120},
	{ID: "q-3", Text: "Why do you want this role?", PointValue: 10, TimeLimitSeconds: 90},
}

// SampleSource serves the built-in question set.
type SampleSource struct{}

// NewSampleSource creates a sample question source.
func NewSampleSource() *SampleSource {
	return &SampleSource{}
}

// Load returns a copy of the built-in questions for any user.
func (s *SampleSource) Load(ctx context.Context, userID string) ([]models.Question, error) {
	out := make([]models.Question, len(sampleQuestions))
	copy(out, sampleQuestions)
	return out, nil
}
