package models

import "time"

const RoleAdmin = "admin"

type User struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// AuthUser holds the identity claims carried by a session token.
type AuthUser struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}
