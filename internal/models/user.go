package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MediaAsset is a file hosted on the external media service. The public id is
// what the service needs to destroy the asset later.
type MediaAsset struct {
	URL      string `json:"url" bson:"url"`
	PublicID string `json:"publicId,omitempty" bson:"publicId,omitempty"`
}

// User represents an account document. A user also acts as a channel for
// subscriptions.
type User struct {
	ID           primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Username     string               `json:"username" bson:"username"`
	Email        string               `json:"email" bson:"email"`
	FullName     string               `json:"fullName" bson:"fullName"`
	Avatar       MediaAsset           `json:"avatar" bson:"avatar"`
	CoverImage   MediaAsset           `json:"coverImage,omitempty" bson:"coverImage,omitempty"`
	Password     string               `json:"-" bson:"password"` // bcrypt digest, never serialized
	RefreshToken string               `json:"-" bson:"refreshToken,omitempty"`
	WatchHistory []primitive.ObjectID `json:"watchHistory,omitempty" bson:"watchHistory,omitempty"`
	CreatedAt    time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// RegisterUserRequest defines the multipart form fields for registration.
// Avatar and cover image arrive as files and are staged by the upload
// middleware, not bound here.
type RegisterUserRequest struct {
	Username string `json:"username" form:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	FullName string `json:"fullName" form:"fullName" validate:"required,min=2,max=80"`
	Password string `json:"password" form:"password" validate:"required,min=8"`
}

// LoginRequest accepts either username or email plus the password.
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email" validate:"omitempty,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" form:"refreshToken"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

type UpdateAccountRequest struct {
	FullName string `json:"fullName" validate:"required,min=2,max=80"`
	Email    string `json:"email" validate:"required,email"`
}
