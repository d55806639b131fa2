package review

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"innovation-portal/internal/domain/apperr"
	"innovation-portal/internal/domain/authz"
	domainIdea "innovation-portal/internal/domain/idea"
	"innovation-portal/internal/domain/notification"
	domainReview "innovation-portal/internal/domain/review"
	"innovation-portal/internal/domain/uow"
	"innovation-portal/internal/infrastructure/metrics"
	"innovation-portal/pkg/id"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const MaxCommentsLen = 5000

var errStaleSnapshot = errors.New("idea changed since it was read; re-fetch and retry")

type Usecase struct {
	ideaRepo     domainIdea.Repository
	reviewRepo   domainReview.Repository
	uow          uow.UnitOfWork
	events       notification.Publisher
	storeTimeout time.Duration
	log          logrus.FieldLogger
	now          func() time.Time
}

// NewUsecase: events may be nil; storeTimeout <= 0 disables the per-call deadline.
func NewUsecase(ideas domainIdea.Repository, reviews domainReview.Repository, tx uow.UnitOfWork,
	events notification.Publisher, storeTimeout time.Duration, log logrus.FieldLogger) *Usecase {
	if events == nil {
		events = notification.Nop{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Usecase{
		ideaRepo:     ideas,
		reviewRepo:   reviews,
		uow:          tx,
		events:       events,
		storeTimeout: storeTimeout,
		log:          log,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (u *Usecase) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if u.storeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, u.storeTimeout)
}

// RecordReview authorizes against a snapshot of the idea and its history, then applies
// the review under the idea row lock. A snapshot that went stale in between is a CONFLICT.
func (u *Usecase) RecordReview(ctx context.Context, actor authz.Actor, ideaID string, in RecordInput) (*ReviewDTO, error) {
	stage, err := domainReview.ParseStage(in.Stage)
	if err != nil {
		return nil, apperr.Validation("stage", err.Error())
	}
	status, err := domainReview.ParseStatus(in.Status)
	if err != nil {
		return nil, apperr.Validation("status", err.Error())
	}
	if utf8.RuneCountInString(in.Comments) > MaxCommentsLen {
		return nil, apperr.Validation("comments", "must be at most 5000 characters")
	}

	sctx, cancel := u.storeCtx(ctx)
	defer cancel()

	snap, err := u.ideaRepo.GetByIdeaID(sctx, ideaID)
	if err != nil {
		return nil, fromStore(err)
	}
	history, err := u.reviewRepo.ListByIdeaID(sctx, snap.ID)
	if err != nil {
		return nil, fromStore(err)
	}

	d := authz.Authorize(authz.Subject{OwnerID: snap.OwnerID, Status: snap.Status, History: history}, actor, stage)
	if !d.Allow {
		return nil, apperr.Forbidden(d.Reason)
	}
	next := authz.NextStatus(stage, status)

	var created *domainReview.Review
	err = u.uow.WithinIdeaTx(sctx, ideaID, func(r uow.Repos, locked *domainIdea.Idea) error {
		if locked.Version != snap.Version {
			return errStaleSnapshot
		}
		now := u.now()
		if err := r.Ideas.UpdateStatus(sctx, locked.ID, locked.Version, next, now); err != nil {
			return err
		}
		rv := &domainReview.Review{
			ReviewID:   id.NewID32(),
			IdeaID:     locked.ID,
			Seq:        uint64(len(history)) + 1,
			ReviewerID: actor.ID,
			Stage:      stage,
			Status:     status,
			Comments:   in.Comments,
			CreatedAt:  now,
		}
		if err := r.Reviews.Create(sctx, rv); err != nil {
			return err
		}
		created = rv
		return nil
	})
	if err != nil {
		if isLostRace(err) {
			metrics.RecordReviewConflict()
			u.log.WithFields(logrus.Fields{"idea_id": ideaID, "reviewer_id": actor.ID}).Info("review lost race")
			return nil, apperr.Conflict(err)
		}
		return nil, fromStore(err)
	}

	metrics.RecordReview(string(stage), string(status))
	u.publish(ctx, snap, actor, created, next)

	dto := ToDTO(ideaID, *created)
	return &dto, nil
}

func (u *Usecase) publish(ctx context.Context, snap *domainIdea.Idea, actor authz.Actor, rv *domainReview.Review, next domainIdea.Status) {
	base := notification.Event{
		IdeaID:     snap.IdeaID,
		IdeaTitle:  snap.Title,
		OwnerID:    snap.OwnerID,
		ActorID:    actor.ID,
		OccurredAt: rv.CreatedAt,
	}

	added := base
	added.Type = notification.TypeReviewAdded
	added.Stage = string(rv.Stage)
	added.ReviewStatus = string(rv.Status)
	added.Message = rv.Comments
	u.events.Publish(ctx, added)

	if next != snap.Status {
		changed := base
		changed.Type = notification.TypeIdeaStatusChange
		changed.OldStatus = string(snap.Status)
		changed.NewStatus = string(next)
		u.events.Publish(ctx, changed)
	}
}

// ListReviews returns the log in seq order under the idea visibility rule.
func (u *Usecase) ListReviews(ctx context.Context, actor authz.Actor, ideaID string) ([]ReviewDTO, error) {
	sctx, cancel := u.storeCtx(ctx)
	defer cancel()

	i, err := u.ideaRepo.GetByIdeaID(sctx, ideaID)
	if err != nil {
		return nil, fromStore(err)
	}
	if err := authz.CanViewIdea(actor, i.OwnerID); err != nil {
		return nil, apperr.Forbidden(err)
	}
	rs, err := u.reviewRepo.ListByIdeaID(sctx, i.ID)
	if err != nil {
		return nil, fromStore(err)
	}
	return ToDTOs(ideaID, rs), nil
}

// GetReview returns one review of the idea; a review of another idea is NOT_FOUND.
func (u *Usecase) GetReview(ctx context.Context, actor authz.Actor, ideaID, reviewID string) (*ReviewDTO, error) {
	sctx, cancel := u.storeCtx(ctx)
	defer cancel()

	i, err := u.ideaRepo.GetByIdeaID(sctx, ideaID)
	if err != nil {
		return nil, fromStore(err)
	}
	if err := authz.CanViewIdea(actor, i.OwnerID); err != nil {
		return nil, apperr.Forbidden(err)
	}
	rv, err := u.reviewRepo.GetByReviewID(sctx, reviewID)
	if err != nil {
		return nil, fromStore(err)
	}
	if rv.IdeaID != i.ID {
		return nil, apperr.NotFound(domainReview.ErrNotFound)
	}
	dto := ToDTO(ideaID, *rv)
	return &dto, nil
}

func isLostRace(err error) bool {
	return errors.Is(err, errStaleSnapshot) ||
		errors.Is(err, domainIdea.ErrVersionConflict) ||
		errors.Is(err, gorm.ErrDuplicatedKey)
}

func fromStore(err error) error {
	switch {
	case errors.Is(err, domainIdea.ErrNotFound):
		return apperr.NotFound(err)
	case errors.Is(err, domainReview.ErrNotFound):
		return apperr.NotFound(err)
	}
	return apperr.Store(err)
}
