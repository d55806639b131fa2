package idea

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"innovation-portal/internal/adapter/repository/mysql"
	"innovation-portal/internal/domain/apperr"
	"innovation-portal/internal/domain/authz"
	domainReview "innovation-portal/internal/domain/review"
	"innovation-portal/internal/domain/user"
	"innovation-portal/internal/testutil/dbtest"
	"innovation-portal/internal/testutil/notifymock"
	"innovation-portal/internal/testutil/storagemock"
	reviewUC "innovation-portal/internal/usecase/review"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reviewer3 = authz.Actor{ID: "rev-3", Role: user.RoleReviewer, LineOfBusiness: "retail"}

type portal struct {
	ideas   *Usecase
	reviews *reviewUC.Usecase
}

func newPortal(t *testing.T, reviewRepo domainReview.Repository) *portal {
	db := dbtest.Open(t)
	if reviewRepo == nil {
		reviewRepo = mysql.NewReviewRepository(db)
	}
	ideaRepo := mysql.NewIdeaRepository(db)
	tx := mysql.NewGormUoW(db)
	rec := &notifymock.Recorder{}
	return &portal{
		ideas: NewUsecase(Deps{
			Ideas: ideaRepo, Reviews: reviewRepo, UoW: tx,
			Files: storagemock.NewMem(), Events: rec, Policy: DefaultPolicy(),
		}),
		reviews: reviewUC.NewUsecase(ideaRepo, reviewRepo, tx, rec, 5*time.Second, nil),
	}
}

// A: submission with two co-applicants and no attachments.
func scenarioA(t *testing.T, p *portal) string {
	in := validInput()
	in.CoApplicants = []string{"bob@example.com", "Carol"}
	got, err := p.ideas.SubmitIdea(context.Background(), applicant, in)
	require.NoError(t, err)

	detail, err := p.ideas.Get(context.Background(), applicant, got.IdeaID)
	require.NoError(t, err)
	assert.Equal(t, "SUBMITTED", detail.Status)
	assert.Len(t, detail.CoApplicants, 2)
	assert.Empty(t, detail.Reviews)
	return got.IdeaID
}

func TestScenarioA_Submit(t *testing.T) {
	scenarioA(t, newPortal(t, nil))
}

// B: FLR approval moves the idea to FLR and only SLR is reviewable next.
func TestScenarioB_FirstLevelApproval(t *testing.T) {
	p := newPortal(t, nil)
	ctx := context.Background()
	ideaID := scenarioA(t, p)

	_, err := p.reviews.RecordReview(ctx, reviewer, ideaID, reviewUC.RecordInput{Stage: "FLR", Status: "APPROVED"})
	require.NoError(t, err)

	detail, err := p.ideas.Get(ctx, reviewer, ideaID)
	require.NoError(t, err)
	assert.Equal(t, "FLR", detail.Status)

	_, err = p.reviews.RecordReview(ctx, reviewer3, ideaID, reviewUC.RecordInput{Stage: "FLR", Status: "APPROVED"})
	assert.ErrorIs(t, err, authz.ErrStageMismatch)
	_, err = p.reviews.RecordReview(ctx, reviewer3, ideaID, reviewUC.RecordInput{Stage: "PF", Status: "APPROVED"})
	assert.ErrorIs(t, err, authz.ErrStageMismatch)
}

// C: SLR rejection is terminal.
func TestScenarioC_SecondLevelRejection(t *testing.T) {
	p := newPortal(t, nil)
	ctx := context.Background()
	ideaID := scenarioA(t, p)

	_, err := p.reviews.RecordReview(ctx, reviewer, ideaID, reviewUC.RecordInput{Stage: "FLR", Status: "APPROVED"})
	require.NoError(t, err)
	_, err = p.reviews.RecordReview(ctx, reviewer3, ideaID, reviewUC.RecordInput{Stage: "SLR", Status: "REJECTED", Comments: "prior art"})
	require.NoError(t, err)

	detail, err := p.ideas.Get(ctx, admin, ideaID)
	require.NoError(t, err)
	assert.Equal(t, "REJECTED", detail.Status)

	for _, a := range []authz.Actor{reviewer, reviewer3, admin} {
		for _, stage := range []string{"FLR", "SLR", "PF"} {
			_, err := p.reviews.RecordReview(ctx, a, ideaID, reviewUC.RecordInput{Stage: stage, Status: "APPROVED"})
			assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
			assert.ErrorIs(t, err, authz.ErrAlreadyRejected)
		}
	}
}

// D: the owner is refused at every stage whatever their role.
func TestScenarioD_SelfReview(t *testing.T) {
	p := newPortal(t, nil)
	ctx := context.Background()
	ideaID := scenarioA(t, p)

	for _, role := range []user.Role{user.RoleApplicant, user.RoleReviewer, user.RoleAdmin} {
		self := authz.Actor{ID: applicant.ID, Role: role}
		for _, stage := range []string{"FLR", "SLR", "PF"} {
			_, err := p.reviews.RecordReview(ctx, self, ideaID, reviewUC.RecordInput{Stage: stage, Status: "APPROVED"})
			assert.ErrorIs(t, err, authz.ErrSelfReview, "role=%s stage=%s", role, stage)
		}
	}
}

// barrierReviews holds the first two history reads until both have completed, so both
// reviewers authorize against the same empty snapshot.
type barrierReviews struct {
	domainReview.Repository
	arrivals atomic.Int32
	release  chan struct{}
	once     sync.Once
}

func (b *barrierReviews) ListByIdeaID(ctx context.Context, ideaNumericID uint64) ([]domainReview.Review, error) {
	out, err := b.Repository.ListByIdeaID(ctx, ideaNumericID)
	if b.arrivals.Add(1) <= 2 {
		if b.arrivals.Load() >= 2 {
			b.once.Do(func() { close(b.release) })
		}
		select {
		case <-b.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return out, err
}

// E: two reviewers race for the first FLR review; exactly one wins.
func TestScenarioE_ConcurrentFirstReview(t *testing.T) {
	db := dbtest.Open(t)
	reviews := &barrierReviews{Repository: mysql.NewReviewRepository(db), release: make(chan struct{})}
	ideaRepo := mysql.NewIdeaRepository(db)
	tx := mysql.NewGormUoW(db)
	ideaUC := NewUsecase(Deps{Ideas: ideaRepo, Reviews: reviews, UoW: tx, Policy: DefaultPolicy()})
	reviewUsecase := reviewUC.NewUsecase(ideaRepo, reviews, tx, nil, 5*time.Second, nil)
	ctx := context.Background()

	created, err := ideaUC.SubmitIdea(ctx, applicant, validInput())
	require.NoError(t, err)

	racers := []authz.Actor{reviewer, reviewer3}
	errs := make([]error, len(racers))
	var wg sync.WaitGroup
	for n, a := range racers {
		wg.Add(1)
		go func(n int, a authz.Actor) {
			defer wg.Done()
			_, errs[n] = reviewUsecase.RecordReview(ctx, a, created.IdeaID, reviewUC.RecordInput{Stage: "FLR", Status: "APPROVED"})
		}(n, a)
	}
	wg.Wait()

	var winner, loser int = -1, -1
	for n, err := range errs {
		if err == nil {
			winner = n
		} else {
			loser = n
		}
	}
	require.NotEqual(t, -1, winner, "one racer must succeed: %v", errs)
	require.NotEqual(t, -1, loser, "one racer must lose: %v", errs)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(errs[loser]))

	// the loser re-fetches and sees the winner's review applied
	detail, err := ideaUC.Get(ctx, racers[loser], created.IdeaID)
	require.NoError(t, err)
	assert.Equal(t, "FLR", detail.Status)
	assert.Equal(t, uint64(1), detail.Version)
	require.Len(t, detail.Reviews, 1)
	assert.Equal(t, racers[winner].ID, detail.Reviews[0].ReviewerID)
}
