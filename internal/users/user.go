package users

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an instructor account. Only instructors listed as editors of a
// course can record into it.
type User struct {
	ID        primitive.ObjectID `bson:"_id" json:"ID"`
	Email     string             `bson:"email" json:"Email"`
	Password  string             `bson:"password" json:"-"`
	UserName  string             `bson:"user_name" json:"UserName"`
	CreatedAt time.Time          `bson:"created_at" json:"CreatedAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"UpdatedAt"`
}

type CreateUserRequest struct {
	UserName string `json:"user_name" validate:"required,min=3,max=32"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
