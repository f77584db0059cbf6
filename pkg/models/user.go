package models

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	TokenVersion int       `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
