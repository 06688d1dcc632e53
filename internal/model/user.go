package model

import "strings"

type UpdateProfileRequest struct {
	FirstName *string `json:"firstName" binding:"omitempty,max=100"`
	LastName  *string `json:"lastName" binding:"omitempty,max=100"`
}

func (r *UpdateProfileRequest) Normalize() {
	r.FirstName = trimPtr(r.FirstName)
	r.LastName = trimPtr(r.LastName)
}

type UpdateRoleRequest struct {
	Role Role `json:"role" binding:"required,oneof=USER ADMIN SUPER_ADMIN"`
}

func (r *UpdateRoleRequest) Normalize() {
	r.Role = Role(strings.ToUpper(strings.TrimSpace(string(r.Role))))
}

type UpdateStatusRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

func (r *UpdateStatusRequest) Normalize() {}

type ListUsersQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

type UserListResponse struct {
	Users []*SafeUser `json:"users"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
	Total int         `json:"total"`
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
