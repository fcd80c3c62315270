// internal/domain/models/status.go
package models

// Record status values shared by users, groups, and documents.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)
