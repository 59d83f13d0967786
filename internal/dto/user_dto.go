// FILE: internal/dto/user_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

type UserProfileResponse struct {
	Id        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name"`
	Role      string     `json:"role"`
	Status    string     `json:"status"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Job       string     `json:"job,omitempty"`
	Age       *int       `json:"age,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type UpdateProfileRequest struct {
	FullName  string     `json:"full_name" validate:"required,min=3"`
	BirthDate *time.Time `json:"birth_date"`
	Job       string     `json:"job"`
}

type UpdateSettingsRequest struct {
	Settings map[string]interface{} `json:"settings" validate:"required"`
}
