package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims is the access-token payload issued by the external auth service.
// Section and group ids are present for student tokens only.
type JWTClaims struct {
	UserID    string   `json:"user_id"`
	Role      UserRole `json:"role"`
	StudentID string   `json:"student_id,omitempty"`
	SectionID string   `json:"section_id,omitempty"`
	GroupID   string   `json:"group_id,omitempty"`
	jwt.RegisteredClaims
}
