package domain

import (
	"maps"
	"slices"
	"strings"
)

// GenericSubmitError is the message shown when a submission fails.
const GenericSubmitError = "Something went wrong. Please try again."

// Question is one single-choice step of the funnel.
type Question struct {
	// Number is 1-based and keys the answer map.
	Number int

	// Label names the question in the relay message body.
	Label string

	Prompt  string
	Options []string
}

// HasOption reports whether option is one of the question's choices.
func (q Question) HasOption(option string) bool {
	return slices.Contains(q.Options, option)
}

// QuestionSet is the ordered list of questions. The contact step follows the
// last question.
type QuestionSet []Question

// DefaultQuestions returns the action plan quiz.
func DefaultQuestions() QuestionSet {
	return QuestionSet{
		{
			Number: 1,
			Label:  "AI Tool Usage",
			Prompt: "Are you regularly using AI tools in your business?",
			Options: []string{
				"Yes - I'm using AI tools like ChatGPT or Claude at least a few times per week.",
				"No - I've played around with AI but it hasn't become part of my routine yet.",
			},
		},
		{
			Number: 2,
			Label:  "Work Situation",
			Prompt: "What's your current work situation?",
			Options: []string{
				"I'm a solopreneur (no employees)",
				"I run a small business (1-10 employees)",
				"I run a big business (10+ employees)",
				"I'm a full-time employee (no business of my own)",
			},
		},
		{
			Number: 3,
			Label:  "AI Challenge",
			Prompt: "What's your #1 AI challenge right now?",
			Options: []string{
				"I'm excited about AI but overwhelmed by where to start",
				"I'm behind my competitors who are using AI more effectively",
				"I don't have time to learn where AI can fit into my business",
			},
		},
		{
			Number: 4,
			Label:  "Desired Outcome",
			Prompt: "What's the #1 outcome you're hoping AI can help you achieve?",
			Options: []string{
				"Make more money - I want to increase revenue or cut costs",
				"Save time - I want to automate tasks and free up my schedule",
				"Improve quality - I want better products, fewer errors, or happier customers",
			},
		},
		{
			Number: 5,
			Label:  "Time-Consuming Area",
			Prompt: "Which area of your business eats up the most of your time?",
			Options: []string{
				"Admin work (emails, scheduling, data entry)",
				"Marketing and content creation",
				"Sales and lead follow-up",
				"Client delivery and fulfillment",
			},
		},
	}
}

// ContactStep is the step index of the contact form.
func (qs QuestionSet) ContactStep() int { return len(qs) }

// At returns the question shown at a 0-based step.
func (qs QuestionSet) At(step int) (Question, bool) {
	if step < 0 || step >= len(qs) {
		return Question{}, false
	}

	return qs[step], true
}

// SubmissionStatus tracks the contact step's outbound request.
type SubmissionStatus string

const (
	StatusIdle       SubmissionStatus = "idle"
	StatusSubmitting SubmissionStatus = "submitting"
	StatusSuccess    SubmissionStatus = "success"
	StatusError      SubmissionStatus = "error"
)

// Phase is the externally visible funnel state.
type Phase string

const (
	PhaseQuestion   Phase = "question"
	PhaseContact    Phase = "contact"
	PhaseSubmitting Phase = "submitting"
	PhaseSuccess    Phase = "success"
	PhaseError      Phase = "error"
)

// QuizSnapshot is the persisted projection of a QuizState. Submission status
// and error text are transient and never stored.
type QuizSnapshot struct {
	CurrentStep  int            `json:"current_step"`
	Answers      map[int]string `json:"answers"`
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	SubmissionID string         `json:"submission_id,omitempty"`
}

// QuizState is one visitor's progress through the funnel.
type QuizState struct {
	CurrentStep  int
	Answers      map[int]string
	Name         string
	Email        string
	Status       SubmissionStatus
	ErrorMessage string
	SubmissionID string
}

// NewQuizState returns a state positioned at the first question.
func NewQuizState() *QuizState {
	return &QuizState{Answers: map[int]string{}, Status: StatusIdle}
}

// RestoreQuizState rebuilds a state from a snapshot, clamping the step into
// range for qs.
func RestoreQuizState(qs QuestionSet, snap QuizSnapshot) *QuizState {
	s := NewQuizState()
	s.CurrentStep = min(max(snap.CurrentStep, 0), qs.ContactStep())
	maps.Copy(s.Answers, snap.Answers)
	s.Name = snap.Name
	s.Email = snap.Email
	s.SubmissionID = snap.SubmissionID

	return s
}

// Snapshot returns the persisted projection of s.
func (s *QuizState) Snapshot() QuizSnapshot {
	return QuizSnapshot{
		CurrentStep:  s.CurrentStep,
		Answers:      maps.Clone(s.Answers),
		Name:         s.Name,
		Email:        s.Email,
		SubmissionID: s.SubmissionID,
	}
}

// Phase derives the visible state from step and status.
func (s *QuizState) Phase(qs QuestionSet) Phase {
	switch s.Status {
	case StatusSubmitting:
		return PhaseSubmitting
	case StatusSuccess:
		return PhaseSuccess
	case StatusError:
		return PhaseError
	}

	if s.CurrentStep >= qs.ContactStep() {
		return PhaseContact
	}

	return PhaseQuestion
}

func (s *QuizState) locked() error {
	switch s.Status {
	case StatusSubmitting:
		return NewConflictError("quiz", "submission in progress")
	case StatusSuccess:
		return NewConflictError("quiz", "quiz already submitted")
	}

	return nil
}

// Select records option as the answer to the current question and advances.
// After the last question the state moves to the contact step.
func (s *QuizState) Select(qs QuestionSet, option string) error {
	if err := s.locked(); err != nil {
		return err
	}

	q, ok := qs.At(s.CurrentStep)
	if !ok {
		return NewConflictError("quiz", "no question at the contact step")
	}

	if !q.HasOption(option) {
		return NewValidationErrorWithValue("option", "not an option for this question", option)
	}

	if s.Answers == nil {
		s.Answers = map[int]string{}
	}

	s.Answers[q.Number] = option
	s.CurrentStep++

	return nil
}

// Back moves to the previous step. At the first question it is a no-op.
// Answers are kept. Leaving the error state clears its message.
func (s *QuizState) Back() error {
	if err := s.locked(); err != nil {
		return err
	}

	if s.CurrentStep > 0 {
		s.CurrentStep--
	}

	s.Status = StatusIdle
	s.ErrorMessage = ""

	return nil
}

// ContactDetails is the input of the contact step.
type ContactDetails struct {
	FirstName string
	LastName  string
	Email     string
}

// FullName joins first and last name.
func (c ContactDetails) FullName() string {
	return strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName)
}

// Validate requires all three fields.
func (c ContactDetails) Validate() error {
	var errs FieldErrors

	if strings.TrimSpace(c.FirstName) == "" {
		errs = append(errs, &ValidationError{Field: "first_name", Message: "is required"})
	}

	if strings.TrimSpace(c.LastName) == "" {
		errs = append(errs, &ValidationError{Field: "last_name", Message: "is required"})
	}

	if strings.TrimSpace(c.Email) == "" {
		errs = append(errs, &ValidationError{Field: "email", Message: "is required"})
	}

	return errs.OrNil()
}

// BeginSubmit moves the contact step (or a failed submission) to submitting.
// The submission id is generated once by newID and kept across retries.
func (s *QuizState) BeginSubmit(qs QuestionSet, details ContactDetails, newID func() string) error {
	if s.Status == StatusSubmitting {
		return NewConflictError("quiz", "submission in progress")
	}

	if s.Status == StatusSuccess {
		return NewConflictError("quiz", "quiz already submitted")
	}

	if s.CurrentStep < qs.ContactStep() {
		return NewConflictError("quiz", "contact step not reached")
	}

	if err := details.Validate(); err != nil {
		return err
	}

	s.Name = details.FullName()
	s.Email = strings.TrimSpace(details.Email)

	if s.SubmissionID == "" {
		s.SubmissionID = newID()
	}

	s.Status = StatusSubmitting
	s.ErrorMessage = ""

	return nil
}

// CompleteSubmit marks the submission successful and drops captured data.
func (s *QuizState) CompleteSubmit() {
	s.CurrentStep = 0
	s.Answers = map[int]string{}
	s.Name = ""
	s.Email = ""
	s.SubmissionID = ""
	s.Status = StatusSuccess
	s.ErrorMessage = ""
}

// FailSubmit marks the submission failed. Answers and contact data are kept
// so the visitor can retry.
func (s *QuizState) FailSubmit() {
	s.Status = StatusError
	s.ErrorMessage = GenericSubmitError
}

// Reset returns to the first question with nothing captured.
func (s *QuizState) Reset() {
	*s = *NewQuizState()
}
