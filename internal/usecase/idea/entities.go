package idea

import (
	"time"

	domainIdea "innovation-portal/internal/domain/idea"
	"innovation-portal/internal/domain/storage"
	reviewUC "innovation-portal/internal/usecase/review"
)

type SubmitInput struct {
	Title          string
	Description    string
	ExpectedImpact string
	LineOfBusiness string
	CoApplicants   []string // e-mails or names
	Attachments    []storage.Upload
}

type ListInput struct {
	Scope          string // mine, lob, all; empty picks the role default
	LineOfBusiness string
	Status         string
	Limit          int
	Offset         int
}

type OverrideInput struct {
	Status string
	Reason string
}

type AttachmentDTO struct {
	AttachmentID string    `json:"attachment_id"`
	URL          string    `json:"url"`
	FileName     string    `json:"file_name"`
	ContentType  string    `json:"content_type"`
	SizeBytes    int64     `json:"size_bytes"`
	CreatedAt    time.Time `json:"created_at"`
}

type IdeaDTO struct {
	IdeaID          string          `json:"idea_id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	ExpectedImpact  string          `json:"expected_impact"`
	Status          string          `json:"status"`
	LineOfBusiness  string          `json:"line_of_business"`
	OwnerID         string          `json:"owner_id"`
	Version         uint64          `json:"version"`
	StatusUpdatedAt time.Time       `json:"status_updated_at"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	CoApplicants    []string        `json:"co_applicants"`
	Attachments     []AttachmentDTO `json:"attachments"`
}

type IdeaDetailDTO struct {
	IdeaDTO
	Reviews []reviewUC.ReviewDTO `json:"reviews"`
}

func toAttachmentDTOs(rows []domainIdea.Attachment) []AttachmentDTO {
	out := make([]AttachmentDTO, 0, len(rows))
	for _, a := range rows {
		out = append(out, AttachmentDTO{
			AttachmentID: a.AttachmentID,
			URL:          a.URL,
			FileName:     a.FileName,
			ContentType:  a.ContentType,
			SizeBytes:    a.SizeBytes,
			CreatedAt:    a.CreatedAt,
		})
	}
	return out
}

func toDTO(i *domainIdea.Idea) *IdeaDTO {
	co := make([]string, 0, len(i.CoApplicants))
	for _, c := range i.CoApplicants {
		co = append(co, c.Identifier)
	}
	return &IdeaDTO{
		IdeaID:          i.IdeaID,
		Title:           i.Title,
		Description:     i.Description,
		ExpectedImpact:  i.ExpectedImpact,
		Status:          string(i.Status),
		LineOfBusiness:  i.LineOfBusiness,
		OwnerID:         i.OwnerID,
		Version:         i.Version,
		StatusUpdatedAt: i.StatusUpdatedAt,
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
		CoApplicants:    co,
		Attachments:     toAttachmentDTOs(i.Attachments),
	}
}
