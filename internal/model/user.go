package model

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleManager   Role = "Manager"
	RoleDeveloper Role = "Developer"
)

func (r Role) IsValid() bool {
	return r == RoleManager || r == RoleDeveloper
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", fmt.Errorf("invalid role: %q", s)
	}
	return r, nil
}

type User struct {
	ID       int64
	Username string
	Password string
	Role     Role
	Phone    string
	Name     string
}

func (u User) IsManager() bool {
	return u.Role == RoleManager
}

// NormalizePhone prefixes the number with "+" when it is missing.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" || strings.HasPrefix(phone, "+") {
		return phone
	}
	return "+" + phone
}
