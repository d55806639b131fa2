package review

import (
	"time"

	domainReview "innovation-portal/internal/domain/review"
)

type RecordInput struct {
	Stage    string
	Status   string
	Comments string
}

type ReviewDTO struct {
	ReviewID   string    `json:"review_id"`
	IdeaID     string    `json:"idea_id"`
	Seq        uint64    `json:"seq"`
	ReviewerID string    `json:"reviewer_id"`
	Stage      string    `json:"stage"`
	Status     string    `json:"status"`
	Comments   string    `json:"comments"`
	CreatedAt  time.Time `json:"created_at"`
}

// ToDTO takes the public idea id since reviews only carry the numeric FK.
func ToDTO(ideaID string, r domainReview.Review) ReviewDTO {
	return ReviewDTO{
		ReviewID:   r.ReviewID,
		IdeaID:     ideaID,
		Seq:        r.Seq,
		ReviewerID: r.ReviewerID,
		Stage:      string(r.Stage),
		Status:     string(r.Status),
		Comments:   r.Comments,
		CreatedAt:  r.CreatedAt,
	}
}

func ToDTOs(ideaID string, rs []domainReview.Review) []ReviewDTO {
	out := make([]ReviewDTO, 0, len(rs))
	for _, r := range rs {
		out = append(out, ToDTO(ideaID, r))
	}
	return out
}
