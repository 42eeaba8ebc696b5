package app

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	cache "github.com/go-pkgz/expirable-cache/v2"
	"github.com/google/uuid"

	"github.com/cwilkins507/my-portfolio/internal/domain"
	"github.com/cwilkins507/my-portfolio/internal/platform/logging"
	"github.com/cwilkins507/my-portfolio/internal/platform/metrics"
	"github.com/cwilkins507/my-portfolio/internal/ports"
)

// Quiz events, used as metric labels.
const (
	EventView   = "view"
	EventSelect = "select"
	EventBack   = "back"
	EventSubmit = "submit"
	EventReset  = "reset"
)

// QuizView is what a visitor sees of their funnel.
type QuizView struct {
	Phase    domain.Phase
	Step     int // 1-based; TotalSteps+1 at the contact form
	Total    int
	Question *domain.Question
	Answers  map[int]string
	Name     string
	Email    string
	Status   domain.SubmissionStatus
	Error    string
}

// DefaultOutcomeTTL bounds how long a submission outcome is remembered.
const DefaultOutcomeTTL = 30 * 24 * time.Hour

const maxOutcomes = 100_000

// QuizService runs the quiz state machine for many sessions. Each session
// has its own lock, so transitions for one session are serialised while
// different sessions proceed in parallel. The durable part of the state lives
// in the QuizStore; submission status lives in an expiring in-memory cache.
type QuizService struct {
	questions  domain.QuestionSet
	store      ports.QuizStore
	relay      ports.LeadRelay
	exec       *Executor
	metrics    *metrics.Metrics
	logger     *slog.Logger
	newID      func() string
	outcomeTTL time.Duration

	mu       sync.Mutex
	sessions map[string]*session
	outcomes cache.Cache[string, outcome]
}

// session is the lock for one session id. It only exists while a request
// holds it.
type session struct {
	mu   sync.Mutex
	refs int
	// gen changes on reset so an in-flight submission can tell it was
	// overtaken.
	gen uint64
}

// outcome is the non-idle submission status of a session.
type outcome struct {
	status domain.SubmissionStatus
	errMsg string
}

// QuizOption configures a QuizService.
type QuizOption func(*QuizService)

// WithQuestions replaces the default question set.
func WithQuestions(qs domain.QuestionSet) QuizOption {
	return func(s *QuizService) { s.questions = qs }
}

// WithIDGenerator replaces the submission id generator.
func WithIDGenerator(fn func() string) QuizOption {
	return func(s *QuizService) { s.newID = fn }
}

// WithQuizMetrics records transitions and submissions on m.
func WithQuizMetrics(m *metrics.Metrics) QuizOption {
	return func(s *QuizService) { s.metrics = m }
}

// WithOutcomeTTL sets how long a success or error outcome is remembered
// after it is recorded. It should match the session cookie lifetime.
func WithOutcomeTTL(d time.Duration) QuizOption {
	return func(s *QuizService) { s.outcomeTTL = d }
}

// NewQuizService creates the service.
func NewQuizService(store ports.QuizStore, relay ports.LeadRelay, exec *Executor, logger *slog.Logger, opts ...QuizOption) *QuizService {
	if logger == nil {
		logger = slog.Default()
	}

	s := &QuizService{
		questions: domain.DefaultQuestions(),
		store:     store,
		relay:     relay,
		exec:      exec,
		logger:    logger,
		newID:      uuid.NewString,
		outcomeTTL: DefaultOutcomeTTL,
		sessions:   make(map[string]*session),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.outcomes = cache.NewCache[string, outcome]().WithTTL(s.outcomeTTL).WithMaxKeys(maxOutcomes)

	return s
}

// Questions returns the question set.
func (s *QuizService) Questions() domain.QuestionSet { return s.questions }

// ref pins the session entry so it survives while the caller works on it.
func (s *QuizService) ref(sessionID string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &session{}
		s.sessions[sessionID] = sess
	}

	sess.refs++

	return sess
}

// unref drops a pin and forgets the entry once nobody holds it.
func (s *QuizService) unref(sessionID string, sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess.refs--
	if sess.refs == 0 {
		delete(s.sessions, sessionID)
	}
}

func (s *QuizService) acquire(sessionID string) *session {
	sess := s.ref(sessionID)
	sess.mu.Lock()

	return sess
}

func (s *QuizService) release(sessionID string, sess *session) {
	sess.mu.Unlock()
	s.unref(sessionID, sess)
}

// load merges the stored snapshot with the remembered outcome. A success
// outcome wins over any snapshot left behind by a failed clear.
func (s *QuizService) load(ctx context.Context, sessionID string) (*domain.QuizState, error) {
	snap, found, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading quiz session: %w", err)
	}

	o, ok := s.outcomes.Get(sessionID)
	if ok && o.status == domain.StatusSuccess {
		found = false
	}

	state := domain.NewQuizState()
	if found {
		state = domain.RestoreQuizState(s.questions, snap)
	}

	if ok {
		state.Status = o.status
		state.ErrorMessage = o.errMsg
	}

	return state, nil
}

// keep remembers the state's submission status. Idle is the default and is
// not stored.
func (s *QuizService) keep(sessionID string, state *domain.QuizState) {
	if state.Status == domain.StatusIdle {
		s.outcomes.Invalidate(sessionID)
		return
	}

	s.outcomes.Set(sessionID, outcome{status: state.Status, errMsg: state.ErrorMessage}, 0)
}

// View returns the session's current view.
func (s *QuizService) View(ctx context.Context, sessionID string) (QuizView, error) {
	sess := s.acquire(sessionID)
	defer s.release(sessionID, sess)

	state, err := s.load(ctx, sessionID)
	if err != nil {
		return QuizView{}, err
	}

	return s.view(state), nil
}

// Select answers the current question.
func (s *QuizService) Select(ctx context.Context, sessionID, option string) (QuizView, error) {
	return s.transition(ctx, sessionID, EventSelect, func(state *domain.QuizState) error {
		return state.Select(s.questions, option)
	})
}

// Back returns to the previous step.
func (s *QuizService) Back(ctx context.Context, sessionID string) (QuizView, error) {
	return s.transition(ctx, sessionID, EventBack, (*domain.QuizState).Back)
}

// Reset clears the session in memory and in the store. It is allowed in any
// state, including while a submission is in flight.
func (s *QuizService) Reset(ctx context.Context, sessionID string) (QuizView, error) {
	sess := s.acquire(sessionID)
	defer s.release(sessionID, sess)

	err := s.store.Delete(ctx, sessionID)
	s.metrics.ObserveTransition(EventReset, err)

	if err != nil {
		return QuizView{}, fmt.Errorf("resetting quiz session: %w", err)
	}

	state := domain.NewQuizState()
	s.keep(sessionID, state)
	sess.gen++

	logging.FromContextOr(ctx, s.logger).DebugContext(ctx, "quiz reset")

	return s.view(state), nil
}

func (s *QuizService) transition(ctx context.Context, sessionID, event string, apply func(*domain.QuizState) error) (QuizView, error) {
	sess := s.acquire(sessionID)
	defer s.release(sessionID, sess)

	state, err := s.load(ctx, sessionID)
	if err != nil {
		return QuizView{}, err
	}

	if err := apply(state); err != nil {
		s.metrics.ObserveTransition(event, err)
		return s.view(state), err
	}

	if err := s.store.Save(ctx, sessionID, state.Snapshot()); err != nil {
		s.metrics.ObserveTransition(event, err)
		return QuizView{}, fmt.Errorf("saving quiz session: %w", err)
	}

	s.keep(sessionID, state)
	s.metrics.ObserveTransition(event, nil)

	logging.FromContextOr(ctx, s.logger).DebugContext(ctx, "quiz transition",
		slog.String("event", event),
		slog.String("phase", string(state.Phase(s.questions))),
		slog.Int("step", state.CurrentStep),
	)

	return s.view(state), nil
}

// submission carries one submit attempt through the executor.
type submission struct {
	sessionID string
	details   domain.ContactDetails
	lead      domain.Lead
	gen       uint64
	// done is the success view, set once the outcome is recorded.
	done *QuizView
}

// Submit relays the answers and contact details. The session is marked
// submitting while the relay call runs without holding the session lock, so a
// concurrent submit is rejected with a conflict instead of queueing. On relay
// failure the session moves to the error state with its answers kept. Once
// the relay has accepted the lead the submit succeeds even if clearing the
// stored answers fails.
func (s *QuizService) Submit(ctx context.Context, sessionID string, details domain.ContactDetails) (QuizView, error) {
	pinned := s.ref(sessionID)
	defer s.unref(sessionID, pinned)

	sub := &submission{sessionID: sessionID, details: details}

	op := Operation[*submission, domain.Receipt, domain.Receipt, QuizView]{
		Name:     "quiz.submit",
		Validate: s.beginSubmit,
		Perform: func(ctx context.Context, sub *submission) (domain.Receipt, error) {
			return s.relay.Send(ctx, sub.lead)
		},
		Verify:  verifyReceipt[*submission],
		Archive: s.completeSubmit,
		Respond: func(ctx context.Context, sub *submission, _ domain.Receipt) (QuizView, error) {
			if sub.done != nil {
				return *sub.done, nil
			}

			return s.View(ctx, sub.sessionID)
		},
	}

	view, err := Execute(ctx, s.exec, op, sub)
	if err == nil {
		s.metrics.ObserveSubmission(nil)
		s.metrics.ObserveTransition(EventSubmit, nil)

		return view, nil
	}

	step, _ := FailedStep(err)

	switch step {
	case StepValidate:
		s.metrics.ObserveTransition(EventSubmit, err)

		current, viewErr := s.View(ctx, sessionID)
		if viewErr != nil {
			return QuizView{}, viewErr
		}

		return current, err
	case StepArchive, StepRespond:
		logging.FromContextOr(ctx, s.logger).WarnContext(ctx, "quiz lead relayed but session bookkeeping failed",
			slog.String("submission_id", sub.lead.SubmissionID),
			slog.Any("error", err),
		)

		s.metrics.ObserveSubmission(nil)
		s.metrics.ObserveTransition(EventSubmit, nil)

		if sub.done != nil {
			return *sub.done, nil
		}

		return s.view(domain.NewQuizState()), nil
	}

	s.metrics.ObserveTransition(EventSubmit, err)
	s.metrics.ObserveSubmission(err)

	return s.failSubmit(ctx, sub), err
}

// beginSubmit moves the session to submitting and persists the submission id
// so a retry after a crash reuses it.
func (s *QuizService) beginSubmit(ctx context.Context, sub *submission) error {
	sess := s.acquire(sub.sessionID)
	defer s.release(sub.sessionID, sess)

	state, err := s.load(ctx, sub.sessionID)
	if err != nil {
		return err
	}

	if err := state.BeginSubmit(s.questions, sub.details, s.newID); err != nil {
		return err
	}

	if err := s.store.Save(ctx, sub.sessionID, state.Snapshot()); err != nil {
		return fmt.Errorf("saving quiz session: %w", err)
	}

	s.keep(sub.sessionID, state)
	sub.gen = sess.gen
	sub.lead = domain.NewQuizLead(s.questions, state.Answers, state.Name, state.Email, state.SubmissionID)

	return nil
}

// completeSubmit records success before clearing the store, so a failed
// clear cannot turn an accepted lead into an error.
func (s *QuizService) completeSubmit(ctx context.Context, sub *submission, r domain.Receipt) error {
	ctx = context.WithoutCancel(ctx)

	sess := s.acquire(sub.sessionID)
	defer s.release(sub.sessionID, sess)

	logger := logging.FromContextOr(ctx, s.logger).With(slog.String("submission_id", sub.lead.SubmissionID))

	if sess.gen != sub.gen {
		logger.InfoContext(ctx, "quiz reset while submission was in flight")
		return nil
	}

	state := domain.NewQuizState()
	state.CompleteSubmit()
	s.keep(sub.sessionID, state)

	view := s.view(state)
	sub.done = &view

	logger.InfoContext(ctx, "quiz submitted", slog.Time("sent_at", r.SentAt))

	if err := s.store.Delete(ctx, sub.sessionID); err != nil {
		return fmt.Errorf("clearing quiz session: %w", err)
	}

	return nil
}

// failSubmit records the error state. It runs detached from ctx so a
// cancelled request still leaves the session consistent.
func (s *QuizService) failSubmit(ctx context.Context, sub *submission) QuizView {
	ctx = context.WithoutCancel(ctx)

	sess := s.acquire(sub.sessionID)
	defer s.release(sub.sessionID, sess)

	state, err := s.load(ctx, sub.sessionID)
	if err != nil {
		logging.FromContextOr(ctx, s.logger).ErrorContext(ctx, "loading quiz session after failed submit", slog.Any("error", err))

		state = domain.NewQuizState()
	}

	if sess.gen != sub.gen {
		return s.view(state)
	}

	state.FailSubmit()
	s.keep(sub.sessionID, state)

	return s.view(state)
}

func (s *QuizService) view(state *domain.QuizState) QuizView {
	v := QuizView{
		Phase:   state.Phase(s.questions),
		Step:    state.CurrentStep + 1,
		Total:   len(s.questions),
		Answers: maps.Clone(state.Answers),
		Name:    state.Name,
		Email:   state.Email,
		Status:  state.Status,
		Error:   state.ErrorMessage,
	}

	if q, ok := s.questions.At(state.CurrentStep); ok && v.Phase == domain.PhaseQuestion {
		v.Question = &q
	}

	return v
}
