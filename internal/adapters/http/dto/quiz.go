package dto

import (
	"strconv"

	"github.com/cwilkins507/my-portfolio/internal/app"
	"github.com/cwilkins507/my-portfolio/internal/domain"
)

// SelectRequest answers the current question.
type SelectRequest struct {
	Option string `json:"option" validate:"required"`
}

// SubmitRequest carries the contact step.
type SubmitRequest struct {
	FirstName string `json:"first_name" validate:"notempty,max=100"`
	LastName  string `json:"last_name"  validate:"notempty,max=100"`
	Email     string `json:"email"      validate:"required,email,max=254"`
}

// ToDetails converts the request to domain contact details.
func (r SubmitRequest) ToDetails() domain.ContactDetails {
	return domain.ContactDetails{FirstName: r.FirstName, LastName: r.LastName, Email: r.Email}
}

// QuestionResponse is the question on screen.
type QuestionResponse struct {
	Number  int      `json:"number"`
	Label   string   `json:"label"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// QuizResponse is the visitor's view of the funnel.
type QuizResponse struct {
	Phase      string            `json:"phase"`
	Step       int               `json:"step"`
	TotalSteps int               `json:"totalSteps"`
	Question   *QuestionResponse `json:"question,omitempty"`
	Answers    map[string]string `json:"answers"`
	Name       string            `json:"name,omitempty"`
	Email      string            `json:"email,omitempty"`
	Status     string            `json:"status"`
	Error      string            `json:"error,omitempty"`
}

// NewQuizResponse converts a service view.
func NewQuizResponse(v app.QuizView) QuizResponse {
	resp := QuizResponse{
		Phase:      string(v.Phase),
		Step:       v.Step,
		TotalSteps: v.Total,
		Answers:    make(map[string]string, len(v.Answers)),
		Name:       v.Name,
		Email:      v.Email,
		Status:     string(v.Status),
		Error:      v.Error,
	}

	for n, a := range v.Answers {
		resp.Answers[strconv.Itoa(n)] = a
	}

	if q := v.Question; q != nil {
		resp.Question = &QuestionResponse{
			Number:  q.Number,
			Label:   q.Label,
			Prompt:  q.Prompt,
			Options: append([]string(nil), q.Options...),
		}
	}

	return resp
}
