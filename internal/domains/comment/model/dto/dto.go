package dto

import (
	"time"

	"github.com/google/uuid"

	"shareit/internal/domains/comment/model"
	"shareit/shared/constant"
	gModel "shareit/shared/model"
	"shareit/shared/timezone"
)

type NewCommentRequest struct {
	Text string `json:"text" validate:"required"`
}

func (r NewCommentRequest) ToModel(itemID, authorID string, now time.Time) model.Comment {
	return model.Comment{
		ID:       uuid.NewString(),
		Text:     r.Text,
		ItemID:   itemID,
		AuthorID: authorID,
		Metadata: gModel.NewMetadata(now, authorID),
	}
}

type CommentResponse struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	AuthorName string `json:"authorName"`
	Created    string `json:"created"`
}

func (r *CommentResponse) FromModel(comment model.Comment) {
	r.ID = comment.ID
	r.Text = comment.Text
	r.AuthorName = comment.AuthorName
	r.Created = timezone.Format(comment.CreatedAt.Truncate(time.Second), constant.DateFormat)
}

func FromModels(comments []model.Comment) []CommentResponse {
	responses := make([]CommentResponse, 0, len(comments))

	for _, comment := range comments {
		res := CommentResponse{}
		res.FromModel(comment)

		responses = append(responses, res)
	}

	return responses
}
