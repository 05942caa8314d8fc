package models

import "time"

// StatusCheck is a client-reported liveness ping, kept for the status feed.
type StatusCheck struct {
	ID         string    `json:"id" bson:"_id"`
	ClientName string    `json:"client_name" bson:"client_name"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// StatusCheckCreate is the payload for recording a status check.
type StatusCheckCreate struct {
	ClientName string `json:"client_name" validate:"required"`
}
