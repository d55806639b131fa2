package idea

import (
	"strings"
	"time"
)

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSubmitted Status = "SUBMITTED"
	StatusFLR       Status = "FLR"
	StatusSLR       Status = "SLR"
	StatusPF        Status = "PF"
	StatusPatented  Status = "PATENTED"
	StatusRejected  Status = "REJECTED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusFLR, StatusSLR, StatusPF, StatusPatented, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further review is accepted.
func (s Status) IsTerminal() bool { return s == StatusPatented || s == StatusRejected }

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", ErrBadStatus
	}
	return st, nil
}

// Table: ideas
type Idea struct {
	ID              uint64        `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	IdeaID          string        `gorm:"column:idea_id;size:32;not null;uniqueIndex:ux_ideas_idea_id" json:"idea_id"`
	Title           string        `gorm:"column:title;size:255;not null" json:"title"`
	Description     string        `gorm:"column:description;type:text;not null" json:"description"`
	ExpectedImpact  string        `gorm:"column:expected_impact;type:text;not null" json:"expected_impact"`
	Status          Status        `gorm:"column:status;size:16;not null;index:idx_ideas_status" json:"status"`
	LineOfBusiness  string        `gorm:"column:line_of_business;size:64;not null;index:idx_ideas_lob" json:"line_of_business"`
	OwnerID         string        `gorm:"column:owner_id;size:32;not null;index:idx_ideas_owner" json:"owner_id"`
	Version         uint64        `gorm:"column:version;not null;default:0" json:"version"`
	StatusUpdatedAt time.Time     `gorm:"column:status_updated_at" json:"status_updated_at"`
	CreatedAt       time.Time     `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	CoApplicants    []CoApplicant `gorm:"foreignKey:IdeaID" json:"co_applicants,omitempty"`
	Attachments     []Attachment  `gorm:"foreignKey:IdeaID" json:"attachments,omitempty"`
}

func (Idea) TableName() string { return "ideas" }

// Table: idea_co_applicants
type CoApplicant struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	IdeaID     uint64    `gorm:"column:idea_id;not null;uniqueIndex:ux_co_applicants_idea_ident,priority:1" json:"-"`
	Identifier string    `gorm:"column:identifier;size:191;not null;uniqueIndex:ux_co_applicants_idea_ident,priority:2" json:"identifier"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (CoApplicant) TableName() string { return "idea_co_applicants" }

// Table: idea_attachments
type Attachment struct {
	ID           uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	AttachmentID string    `gorm:"column:attachment_id;size:32;not null;uniqueIndex:ux_attachments_attachment_id" json:"attachment_id"`
	IdeaID       uint64    `gorm:"column:idea_id;not null;index:idx_attachments_idea" json:"-"`
	StorageKey   string    `gorm:"column:storage_key;size:512;not null" json:"storage_key"`
	URL          string    `gorm:"column:url;type:text;not null" json:"url"`
	FileName     string    `gorm:"column:file_name;size:255;not null" json:"file_name"`
	ContentType  string    `gorm:"column:content_type;size:127" json:"content_type"`
	SizeBytes    int64     `gorm:"column:size_bytes" json:"size_bytes"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Attachment) TableName() string { return "idea_attachments" }
