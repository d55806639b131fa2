package idea

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"innovation-portal/internal/domain/apperr"
	"innovation-portal/internal/domain/authz"
	domainIdea "innovation-portal/internal/domain/idea"
	"innovation-portal/internal/domain/notification"
	domainReview "innovation-portal/internal/domain/review"
	"innovation-portal/internal/domain/storage"
	"innovation-portal/internal/domain/uow"
	"innovation-portal/internal/infrastructure/metrics"
	reviewUC "innovation-portal/internal/usecase/review"
	"innovation-portal/pkg/id"

	"github.com/sirupsen/logrus"
)

const (
	maxTitleLen       = 255
	maxLOBLen         = 64
	maxCoApplicantLen = 191
	maxFileNameLen    = 255
	maxContentTypeLen = 127
)

var errAlreadyTerminal = errors.New("idea already has a terminal status")

type Policy struct {
	MaxCoApplicants int
	MaxAttachments  int
	StoreTimeout    time.Duration
}

func DefaultPolicy() Policy {
	return Policy{MaxCoApplicants: 5, MaxAttachments: 10, StoreTimeout: 5 * time.Second}
}

type Deps struct {
	Ideas   domainIdea.Repository
	Reviews domainReview.Repository
	UoW     uow.UnitOfWork
	Files   storage.FileStore
	Events  notification.Publisher
	Policy  Policy
	Log     logrus.FieldLogger
}

type Usecase struct {
	ideaRepo   domainIdea.Repository
	reviewRepo domainReview.Repository
	uow        uow.UnitOfWork
	files      storage.FileStore
	events     notification.Publisher
	policy     Policy
	log        logrus.FieldLogger
	now        func() time.Time
}

func NewUsecase(d Deps) *Usecase {
	if d.Events == nil {
		d.Events = notification.Nop{}
	}
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	return &Usecase{
		ideaRepo:   d.Ideas,
		reviewRepo: d.Reviews,
		uow:        d.UoW,
		files:      d.Files,
		events:     d.Events,
		policy:     d.Policy,
		log:        d.Log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (u *Usecase) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if u.policy.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, u.policy.StoreTimeout)
}

// SubmitIdea writes the idea and its co-applicants in one transaction, then stores the
// attachments. When attachments fail the idea stays committed and is returned together
// with a PARTIAL_FAILURE error.
func (u *Usecase) SubmitIdea(ctx context.Context, actor authz.Actor, in SubmitInput) (*IdeaDTO, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.ExpectedImpact = strings.TrimSpace(in.ExpectedImpact)
	in.LineOfBusiness = strings.TrimSpace(in.LineOfBusiness)

	if err := validateText(in); err != nil {
		return nil, err
	}
	co, err := normalizeCoApplicants(in.CoApplicants)
	if err != nil {
		return nil, err
	}
	if len(co) > u.policy.MaxCoApplicants {
		return nil, apperr.Capacity("coApplicants", fmt.Sprintf("at most %d co-applicants allowed", u.policy.MaxCoApplicants))
	}
	if len(in.Attachments) > u.policy.MaxAttachments {
		return nil, apperr.Capacity("attachments", fmt.Sprintf("at most %d attachments allowed", u.policy.MaxAttachments))
	}
	if err := validateUploads(in.Attachments); err != nil {
		return nil, err
	}

	sctx, cancel := u.storeCtx(ctx)
	defer cancel()

	now := u.now()
	i := &domainIdea.Idea{
		IdeaID:          id.NewID32(),
		Title:           in.Title,
		Description:     in.Description,
		ExpectedImpact:  in.ExpectedImpact,
		Status:          domainIdea.StatusSubmitted,
		LineOfBusiness:  in.LineOfBusiness,
		OwnerID:         actor.ID,
		StatusUpdatedAt: now,
	}
	err = u.uow.WithinTx(sctx, func(r uow.Repos) error {
		if err := r.Ideas.Create(sctx, i); err != nil {
			return err
		}
		rows := make([]domainIdea.CoApplicant, 0, len(co))
		for _, c := range co {
			rows = append(rows, domainIdea.CoApplicant{IdeaID: i.ID, Identifier: c})
		}
		if err := r.Ideas.AddCoApplicants(sctx, rows); err != nil {
			return err
		}
		i.CoApplicants = rows
		return nil
	})
	if err != nil {
		return nil, fromStore(err)
	}

	metrics.RecordIdeaSubmitted()
	u.events.Publish(ctx, notification.Event{
		Type:       notification.TypeIdeaSubmitted,
		IdeaID:     i.IdeaID,
		IdeaTitle:  i.Title,
		OwnerID:    i.OwnerID,
		ActorID:    actor.ID,
		NewStatus:  string(i.Status),
		OccurredAt: now,
	})

	if len(in.Attachments) > 0 {
		rows, err := u.storeAttachments(ctx, i, in.Attachments)
		if err != nil {
			u.log.WithError(err).WithField("idea_id", i.IdeaID).Warn("attachments failed after idea commit")
			return toDTO(i), apperr.PartialFailure(fmt.Errorf("idea created but attachments failed: %w", err))
		}
		i.Attachments = rows
	}
	return toDTO(i), nil
}

// AddAttachments is the retry path after a partial failure: owner or admin only.
func (u *Usecase) AddAttachments(ctx context.Context, actor authz.Actor, ideaID string, uploads []storage.Upload) ([]AttachmentDTO, error) {
	if len(uploads) == 0 {
		return nil, apperr.Validation("attachments", "at least one file is required")
	}
	if err := validateUploads(uploads); err != nil {
		return nil, err
	}

	sctx, cancel := u.storeCtx(ctx)
	i, err := u.ideaRepo.GetDetail(sctx, ideaID)
	cancel()
	if err != nil {
		return nil, fromStore(err)
	}
	if err := authz.CanModifyIdea(actor, i.OwnerID); err != nil {
		return nil, apperr.Forbidden(err)
	}
	if len(i.Attachments)+len(uploads) > u.policy.MaxAttachments {
		return nil, apperr.Capacity("attachments", fmt.Sprintf("at most %d attachments allowed", u.policy.MaxAttachments))
	}

	rows, err := u.storeAttachments(ctx, i, uploads)
	if err != nil {
		return nil, fromStore(err)
	}
	return toAttachmentDTOs(rows), nil
}

// storeAttachments puts every upload, then inserts all rows in one statement.
// On any failure, including a lost race for the attachment cap, the files already
// stored are removed and no row is written.
func (u *Usecase) storeAttachments(ctx context.Context, i *domainIdea.Idea, uploads []storage.Upload) ([]domainIdea.Attachment, error) {
	if u.files == nil {
		return nil, errors.New("file storage is not configured")
	}

	var stored []string
	cleanup := func() {
		dctx := context.WithoutCancel(ctx)
		for _, key := range stored {
			if err := u.files.Delete(dctx, key); err != nil {
				u.log.WithError(err).WithField("key", key).Warn("orphaned attachment not removed")
			}
		}
	}

	base := u.now().UnixMilli()
	rows := make([]domainIdea.Attachment, 0, len(uploads))
	for n, up := range uploads {
		// offset per file so one batch never reuses a key
		key := AttachmentKey(i.OwnerID, base+int64(n), up.FileName)
		obj, err := u.put(ctx, key, up)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("store %q: %w", up.FileName, err)
		}
		stored = append(stored, obj.Key)
		rows = append(rows, domainIdea.Attachment{
			AttachmentID: id.NewID32(),
			IdeaID:       i.ID,
			StorageKey:   obj.Key,
			URL:          obj.URL,
			FileName:     up.FileName,
			ContentType:  up.ContentType,
			SizeBytes:    obj.Size,
		})
	}

	// recount under the idea row lock; concurrent uploads queue here
	sctx, cancel := u.storeCtx(ctx)
	defer cancel()
	err := u.uow.WithinIdeaTx(sctx, i.IdeaID, func(r uow.Repos, locked *domainIdea.Idea) error {
		n, err := r.Ideas.CountAttachments(sctx, locked.ID)
		if err != nil {
			return err
		}
		if int(n)+len(rows) > u.policy.MaxAttachments {
			return apperr.Capacity("attachments", fmt.Sprintf("at most %d attachments allowed", u.policy.MaxAttachments))
		}
		return r.Ideas.AddAttachments(sctx, rows)
	})
	if err != nil {
		cleanup()
		return nil, err
	}
	return rows, nil
}

func (u *Usecase) put(ctx context.Context, key string, up storage.Upload) (storage.Object, error) {
	if up.Open == nil {
		return storage.Object{}, errors.New("upload has no content")
	}
	rc, err := up.Open()
	if err != nil {
		return storage.Object{}, err
	}
	defer rc.Close()
	return u.files.Put(ctx, key, rc, up.ContentType)
}

// Get returns the idea with co-applicants, attachments and the ordered review log.
func (u *Usecase) Get(ctx context.Context, actor authz.Actor, ideaID string) (*IdeaDetailDTO, error) {
	sctx, cancel := u.storeCtx(ctx)
	defer cancel()

	i, err := u.ideaRepo.GetDetail(sctx, ideaID)
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
	return &IdeaDetailDTO{IdeaDTO: *toDTO(i), Reviews: reviewUC.ToDTOs(i.IdeaID, rs)}, nil
}

func (u *Usecase) List(ctx context.Context, actor authz.Actor, in ListInput) ([]IdeaDTO, error) {
	scope, err := authz.ResolveScope(actor, authz.Scope(strings.ToLower(strings.TrimSpace(in.Scope))))
	if err != nil {
		return nil, apperr.Forbidden(err)
	}
	if in.Limit < 0 || in.Offset < 0 {
		return nil, apperr.Validation("limit", "limit and offset must not be negative")
	}

	f := domainIdea.ListFilter{LineOfBusiness: strings.TrimSpace(in.LineOfBusiness), Limit: in.Limit, Offset: in.Offset}
	if in.Status != "" {
		st, err := domainIdea.ParseStatus(in.Status)
		if err != nil {
			return nil, apperr.Validation("status", err.Error())
		}
		f.Status = st
	}
	switch scope {
	case authz.ScopeMine:
		f.OwnerID = actor.ID
	case authz.ScopeLOB:
		if f.LineOfBusiness == "" {
			f.LineOfBusiness = actor.LineOfBusiness
		}
	}

	sctx, cancel := u.storeCtx(ctx)
	defer cancel()
	rows, err := u.ideaRepo.List(sctx, f)
	if err != nil {
		return nil, fromStore(err)
	}
	out := make([]IdeaDTO, 0, len(rows))
	for n := range rows {
		out = append(out, *toDTO(&rows[n]))
	}
	return out, nil
}

// OverrideStatus lets an admin close an idea outside the review flow. It takes the same
// row lock and version check as a review.
func (u *Usecase) OverrideStatus(ctx context.Context, actor authz.Actor, ideaID string, in OverrideInput) (*IdeaDTO, error) {
	target, err := domainIdea.ParseStatus(in.Status)
	if err != nil {
		return nil, apperr.Validation("status", err.Error())
	}
	if err := authz.CanOverrideStatus(actor, target); err != nil {
		if errors.Is(err, domainIdea.ErrBadStatus) {
			return nil, apperr.Validation("status", "override target must be REJECTED or PATENTED")
		}
		return nil, apperr.Forbidden(err)
	}

	sctx, cancel := u.storeCtx(ctx)
	defer cancel()

	var (
		out    *domainIdea.Idea
		before domainIdea.Status
	)
	now := u.now()
	err = u.uow.WithinIdeaTx(sctx, ideaID, func(r uow.Repos, i *domainIdea.Idea) error {
		if i.Status.IsTerminal() {
			return errAlreadyTerminal
		}
		if err := r.Ideas.UpdateStatus(sctx, i.ID, i.Version, target, now); err != nil {
			return err
		}
		before = i.Status
		i.Status = target
		i.Version++
		i.StatusUpdatedAt = now
		out = i
		return nil
	})
	if err != nil {
		if errors.Is(err, errAlreadyTerminal) {
			return nil, apperr.Conflict(err)
		}
		return nil, fromStore(err)
	}

	u.log.WithFields(logrus.Fields{"idea_id": ideaID, "admin_id": actor.ID, "status": target}).Info("idea status overridden")
	u.events.Publish(ctx, notification.Event{
		Type:       notification.TypeIdeaStatusChange,
		IdeaID:     out.IdeaID,
		IdeaTitle:  out.Title,
		OwnerID:    out.OwnerID,
		ActorID:    actor.ID,
		OldStatus:  string(before),
		NewStatus:  string(target),
		Message:    strings.TrimSpace(in.Reason),
		OccurredAt: now,
	})
	return toDTO(out), nil
}

func validateText(in SubmitInput) error {
	required := []struct{ field, value string }{
		{"title", in.Title},
		{"description", in.Description},
		{"expectedImpact", in.ExpectedImpact},
		{"lineOfBusiness", in.LineOfBusiness},
	}
	for _, r := range required {
		if r.value == "" {
			return apperr.Validation(r.field, "is required")
		}
	}
	if utf8.RuneCountInString(in.Title) > maxTitleLen {
		return apperr.Validation("title", "must be at most 255 characters")
	}
	if utf8.RuneCountInString(in.LineOfBusiness) > maxLOBLen {
		return apperr.Validation("lineOfBusiness", "must be at most 64 characters")
	}
	return nil
}

func validateUploads(uploads []storage.Upload) error {
	for _, up := range uploads {
		if utf8.RuneCountInString(up.FileName) > maxFileNameLen {
			return apperr.Validation("attachments", "file names must be at most 255 characters")
		}
		if utf8.RuneCountInString(up.ContentType) > maxContentTypeLen {
			return apperr.Validation("attachments", "content types must be at most 127 characters")
		}
	}
	return nil
}

// normalizeCoApplicants trims entries and rejects blanks and case-insensitive duplicates.
func normalizeCoApplicants(in []string) ([]string, error) {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, raw := range in {
		c := strings.TrimSpace(raw)
		if c == "" {
			return nil, apperr.Validation("coApplicants", "entries must not be blank")
		}
		if utf8.RuneCountInString(c) > maxCoApplicantLen {
			return nil, apperr.Validation("coApplicants", "entries must be at most 191 characters")
		}
		k := strings.ToLower(c)
		if _, dup := seen[k]; dup {
			return nil, apperr.Validation("coApplicants", fmt.Sprintf("duplicate co-applicant %q", c))
		}
		seen[k] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}

func fromStore(err error) error {
	switch {
	case errors.Is(err, domainIdea.ErrNotFound):
		return apperr.NotFound(err)
	case errors.Is(err, domainIdea.ErrVersionConflict):
		return apperr.Conflict(err)
	}
	return apperr.Store(err)
}
