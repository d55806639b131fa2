package review

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound  = errors.New("review not found")
	ErrBadStage  = errors.New("stage must be one of FLR, SLR, PF")
	ErrBadStatus = errors.New("status must be one of PENDING, APPROVED, REJECTED")
)

type Stage string

const (
	StageFLR Stage = "FLR"
	StageSLR Stage = "SLR"
	StagePF  Stage = "PF"
)

// Next returns the stage that follows an approval at s; false after PF.
func (s Stage) Next() (Stage, bool) {
	switch s {
	case StageFLR:
		return StageSLR, true
	case StageSLR:
		return StagePF, true
	}
	return "", false
}

func (s Stage) Valid() bool {
	switch s {
	case StageFLR, StageSLR, StagePF:
		return true
	}
	return false
}

func ParseStage(s string) (Stage, error) {
	st := Stage(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", ErrBadStage
	}
	return st, nil
}

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, nil
	}
	return "", ErrBadStatus
}

// Table: reviews. Rows are append-only; (idea_id, seq) orders the log.
type Review struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	ReviewID   string    `gorm:"column:review_id;size:32;not null;uniqueIndex:ux_reviews_review_id" json:"review_id"`
	IdeaID     uint64    `gorm:"column:idea_id;not null;uniqueIndex:ux_reviews_idea_seq,priority:1" json:"-"`
	Seq        uint64    `gorm:"column:seq;not null;uniqueIndex:ux_reviews_idea_seq,priority:2" json:"seq"`
	ReviewerID string    `gorm:"column:reviewer_id;size:32;not null;index:idx_reviews_reviewer" json:"reviewer_id"`
	Stage      Stage     `gorm:"column:stage;size:8;not null" json:"stage"`
	Status     Status    `gorm:"column:status;size:16;not null" json:"status"`
	Comments   string    `gorm:"column:comments;type:text" json:"comments"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Review) TableName() string { return "reviews" }
