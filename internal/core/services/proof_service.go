package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/classifier"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/cycle"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/workers"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/platform/logger"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/platform/metrics"
)

var ErrMessageIDRequired = errors.New("message id is required")

type ProofService struct {
	userRepo   domain.UserRepository
	habitRepo  domain.HabitRepository
	repo       domain.ProofRepository
	classifier *classifier.Classifier
	worker     *workers.ProgressWorker
	log        *zap.Logger
	now        func() time.Time
}

func NewProofService(
	userRepo domain.UserRepository,
	habitRepo domain.HabitRepository,
	repo domain.ProofRepository,
	c *classifier.Classifier,
	worker *workers.ProgressWorker,
	log *zap.Logger,
) *ProofService {
	return &ProofService{
		userRepo:   userRepo,
		habitRepo:  habitRepo,
		repo:       repo,
		classifier: c,
		worker:     worker,
		log:        logger.OrNop(log).Named("proof_service"),
		now:        time.Now,
	}
}

func (s *ProofService) WithClock(now func() time.Time) *ProofService {
	s.now = now
	return s
}

type IngestResult struct {
	Outcome   classifier.Result `json:"outcome"`
	Proof     *domain.Proof     `json:"proof,omitempty"`
	Duplicate bool              `json:"duplicate"`
}

// Ingest classifies a chat message and stores the resulting proof. A message
// already recorded is returned as a duplicate without classifying again.
func (s *ProofService) Ingest(ctx context.Context, msg domain.Message) (*IngestResult, error) {
	if strings.TrimSpace(msg.ID) == "" {
		return nil, ErrMessageIDRequired
	}

	existing, err := s.repo.GetByMessageID(ctx, msg.ID)
	if err == nil {
		return duplicateResult(existing), nil
	}
	if !errors.Is(err, domain.ErrProofNotFound) {
		return nil, fmt.Errorf("proof service: lookup message: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, msg.SenderID)
	if err != nil {
		return nil, err
	}

	if msg.ReceivedAt.IsZero() {
		msg.ReceivedAt = s.now()
	}

	cc, err := cycle.ContextAt(user.BatchStart, msg.ReceivedAt, user.Location())
	if err != nil {
		return nil, err
	}

	habits, err := s.habitRepo.ListByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("proof service: list habits: %w", err)
	}

	res := s.classifier.Classify(msg, *user, habits, cc)
	metrics.Classifications.WithLabelValues(res.Outcome()).Inc()

	log := s.log.With(
		zap.String("message_id", msg.ID),
		zap.String("user_id", user.ID),
		zap.String("channel", msg.Channel),
	)

	if !res.Matched() {
		log.Info("message not classified",
			zap.String("reason", string(res.Reason)),
			zap.Float64("confidence", res.Confidence),
		)
		return &IngestResult{Outcome: res}, nil
	}

	proof := res.Proof.ToProof()
	if err := proof.Validate(); err != nil {
		return nil, err
	}
	if err := proof.WithinCycle(cc); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, proof); err != nil {
		if errors.Is(err, domain.ErrProofExists) {
			stored, getErr := s.repo.GetByMessageID(ctx, msg.ID)
			if getErr != nil {
				return nil, fmt.Errorf("proof service: reload duplicate: %w", getErr)
			}
			return duplicateResult(stored), nil
		}
		return nil, fmt.Errorf("proof service: create: %w", err)
	}

	log.Info("proof recorded",
		zap.String("habit_id", proof.HabitID),
		zap.Int("day", cc.DayIndex),
		zap.Int("week", cc.WeekIndex),
		zap.Bool("minimal_dose", proof.IsMinimalDose),
		zap.Bool("cheat_day", proof.IsCheatDay),
		zap.Float64("confidence", res.Confidence),
	)

	s.worker.Enqueue(proof.HabitID)

	return &IngestResult{Outcome: res, Proof: proof}, nil
}

func duplicateResult(p *domain.Proof) *IngestResult {
	return &IngestResult{
		Outcome: classifier.Result{Proof: &domain.ClassifiedProof{
			HabitID:       p.HabitID,
			UserID:        p.UserID,
			MessageID:     p.MessageID,
			Date:          p.Date,
			Unit:          p.Unit,
			IsMinimalDose: p.IsMinimalDose,
			IsCheatDay:    p.IsCheatDay,
			AttachmentURL: p.AttachmentURL,
			RawText:       p.Note,
		}},
		Proof:     p,
		Duplicate: true,
	}
}

// RecordProofInput dates a proof either by Day, a YYYY-MM-DD calendar date
// on the user's calendar, or by Date, an instant projected onto it. Day
// wins when both are set; neither means today.
type RecordProofInput struct {
	UserID        string
	HabitID       string
	Date          time.Time
	Day           string
	Unit          string
	Note          string
	AttachmentURL string
	IsMinimalDose bool
	IsCheatDay    bool
}

// Record stores a proof submitted directly rather than through a message.
func (s *ProofService) Record(ctx context.Context, input RecordProofInput) (*domain.Proof, error) {
	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive() {
		return nil, domain.ErrUserNotActive
	}

	habit, err := s.habitRepo.GetByID(ctx, input.HabitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != user.ID {
		return nil, domain.ErrHabitNotFound
	}
	if !habit.IsActive() {
		return nil, domain.ErrHabitNotActive
	}

	cc, err := cycle.ContextAt(user.BatchStart, s.now(), user.Location())
	if err != nil {
		return nil, err
	}

	date := cc.Today
	switch {
	case input.Day != "":
		d, err := time.Parse(time.DateOnly, input.Day)
		if err != nil {
			return nil, domain.ErrInvalidProofDate
		}
		date = d
	case !input.Date.IsZero():
		date = domain.CivilDay(input.Date, user.Location())
	}

	proof := domain.NewProof(habit.ID, user.ID, date)
	if unit := strings.TrimSpace(input.Unit); unit != "" {
		proof.Unit = unit
	}
	proof.Note = strings.TrimSpace(input.Note)
	proof.AttachmentURL = strings.TrimSpace(input.AttachmentURL)
	proof.IsMinimalDose = input.IsMinimalDose
	proof.IsCheatDay = input.IsCheatDay

	if err := proof.Validate(); err != nil {
		return nil, err
	}
	if err := proof.WithinCycle(cc); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, proof); err != nil {
		return nil, fmt.Errorf("proof service: create: %w", err)
	}

	s.worker.Enqueue(proof.HabitID)

	return proof, nil
}

func (s *ProofService) ListByHabit(ctx context.Context, userID, habitID string) ([]*domain.Proof, error) {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}

	return s.repo.ListByHabitID(ctx, habitID)
}
