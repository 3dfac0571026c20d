package models

import "time"

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Question string `json:"question"`
	OwnerID  string `json:"owner_id"`
	UserID   string `json:"user_id"`
}

// AskResponse is the success payload of POST /ask.
type AskResponse struct {
	Success   bool    `json:"success"`
	Question  string  `json:"question"`
	OwnerID   string  `json:"owner_id"`
	Response  string  `json:"response"`
	DataCount int     `json:"data_count"`
	Analysis  *Intent `json:"analysis"`
	Cargas    []Carga `json:"cargas"`
}

// HealthResponse reports retrieval-store connectivity.
type HealthResponse struct {
	Status            string    `json:"status"`
	Message           string    `json:"message"`
	DatabaseConnected bool      `json:"database_connected"`
	Timestamp         time.Time `json:"timestamp"`
}

// ErrorResponse is the generic error payload.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
