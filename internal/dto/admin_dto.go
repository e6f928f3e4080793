package dto

// ChoiceCreateDTO is used within QuestionCreateDTO for admin exam creation.
type ChoiceCreateDTO struct {
	Label     string `json:"label" binding:"required,oneof=A B C D"`
	Content   string `json:"content" binding:"required"`
	IsCorrect bool   `json:"is_correct"`
}

// QuestionCreateDTO is used within ExamCreateDTO. Exactly one choice must be
// marked correct; the service validates this beyond binding.
type QuestionCreateDTO struct {
	Skill       string            `json:"skill" binding:"required,oneof=LISTENING READING"`
	Section     int               `json:"section" binding:"required,min=1,max=7"`
	Content     string            `json:"content" binding:"required"`
	OrderInExam int               `json:"order_in_exam" binding:"required,min=1"`
	Choices     []ChoiceCreateDTO `json:"choices" binding:"required,min=2,max=4,dive"`
}

// ExamCreateDTO is for admin to create a new exam with all its questions.
type ExamCreateDTO struct {
	Title            string              `json:"title" binding:"required"`
	Description      string              `json:"description,omitempty"`
	TimeLimitMinutes int                 `json:"time_limit_minutes" binding:"required,gt=0"`
	Questions        []QuestionCreateDTO `json:"questions" binding:"required,min=1,dive"`
}

// CorrectChoiceUpdateDTO changes which choice of a question is marked
// correct. Triggers the score recalculation cascade.
type CorrectChoiceUpdateDTO struct {
	ChoiceID uint `json:"choice_id" binding:"required"`
}
