package entity

import "time"

type Business struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Address            string    `json:"address,omitempty"`
	RegistrationNumber string    `json:"registration_number,omitempty"`
	OwnerID            string    `json:"owner_id"`
	CreatedAt          time.Time `json:"created_at"`
}

type Store struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	BusinessID string    `json:"business_id"`
	CreatedAt  time.Time `json:"created_at"`
}
