package dto

import "roomfront/internal/domain/auth"

type Session struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	IsHost   bool   `json:"is_host"`
	HostMode bool   `json:"host_mode"`
}

func MapSession(s auth.Session) Session {
	return Session{
		UserID:   s.UserID,
		Name:     s.Name,
		Email:    s.Email,
		IsHost:   s.IsHost,
		HostMode: s.HostMode,
	}
}
