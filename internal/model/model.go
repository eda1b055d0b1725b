package model

import (
	"encoding/json"

	"daily-checkin/internal/entry"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  CurrentUser `json:"user"`
}

// CurrentUser is what the identity layer exposes to the rest of the app.
type CurrentUser struct {
	UID           string `json:"uid"`
	Email         string `json:"email,omitempty"`
	Name          string `json:"name,omitempty"`
	Role          string `json:"role,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
}

// SubmitRequest is the body of the submitTrackingForm call.
type SubmitRequest struct {
	Type string          `json:"type" binding:"required"`
	Form json.RawMessage `json:"form" binding:"required"`
}

type SubmitResponse struct {
	ID    string            `json:"id"`
	Entry *entry.DailyEntry `json:"entry,omitempty"`
}

// EntryResponse is the single-record view. Entry is null when nothing was
// submitted for the requested day.
type EntryResponse struct {
	Entry   *entry.DailyEntry `json:"entry"`
	DateKey string            `json:"dateKey"`
	IsToday bool              `json:"isToday"`
}

// HistoryResponse is the list view for one form type.
type HistoryResponse struct {
	Type    entry.FormType     `json:"type"`
	Window  entry.Window       `json:"window"`
	Entries []entry.DailyEntry `json:"entries"`
	entry.Partition
}

// TodayStatus says whether today's form of one type has been filled in.
type TodayStatus struct {
	Type          entry.FormType `json:"type"`
	Path          string         `json:"path"`
	HasTodayEntry bool           `json:"hasTodayEntry"`
}

type FormInfo struct {
	Type   entry.FormType `json:"type"`
	Path   string         `json:"path"`
	Fields any            `json:"fields"`
}
