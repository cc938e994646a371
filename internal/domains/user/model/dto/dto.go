package dto

import (
	"time"

	"github.com/google/uuid"

	"shareit/internal/domains/user/model"
	gModel "shareit/shared/model"
)

type CreateUserRequest struct {
	Name  string `json:"name"  validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

func (r CreateUserRequest) ToModel(now time.Time) model.User {
	id := uuid.NewString()

	return model.User{
		ID:       id,
		Name:     r.Name,
		Email:    r.Email,
		Metadata: gModel.NewMetadata(now, id),
	}
}

type UpdateUserRequest struct {
	Name  *string `json:"name"  db:"name"`
	Email *string `json:"email" db:"email" validate:"omitempty,email"`
}

type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (r *UserResponse) FromModel(user model.User) {
	r.ID = user.ID
	r.Name = user.Name
	r.Email = user.Email
}

func FromModels(users []model.User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))

	for _, user := range users {
		res := UserResponse{}
		res.FromModel(user)

		responses = append(responses, res)
	}

	return responses
}
