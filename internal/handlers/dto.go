package handlers

import (
	"time"

	"chrona/internal/models"
)

// UserDTO is the public view of a user; the password hash never leaves the
// service layer.
type UserDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
}

func ToUserDTO(u *models.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type authResponse struct {
	User  UserDTO `json:"user"`
	Token string  `json:"token"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type idResponse struct {
	ID string `json:"id"`
}

type taskDeleteResponse struct {
	Message    string   `json:"message"`
	DeletedIDs []string `json:"deletedIds"`
}

type bulkTaskRequest struct {
	TaskIDs []string          `json:"taskIds"`
	Updates models.TaskUpdate `json:"updates"`
}

type bulkTaskResponse struct {
	Message       string `json:"message"`
	ModifiedCount int    `json:"modifiedCount"`
}

type bulkEventRequest struct {
	EventIDs []string `json:"eventIds"`
}

type bulkEventResponse struct {
	Message      string `json:"message"`
	DeletedCount int    `json:"deletedCount"`
}
