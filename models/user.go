package models

import (
	"psiconecta/tools"
	"strings"
	"time"
)

/************************************************
/**** MARK: USER STATUS ****/
/************************************************/
const USER_STATUS_AVAILABLE = 0
const USER_STATUS_PENDING = 1
const USER_STATUS_BLOCKED = 2

// User representa a conta de acesso do profissional.
// O cadastro profissional fica em Professional (1:1 por user_id).
type User struct {
	ID              int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	Name            string     `gorm:"not null" json:"name" form:"name"`
	Email           string     `gorm:"not null;unique" json:"email" form:"email"`
	Password        string     `gorm:"not null" json:"password,omitempty" form:"password"`
	CPF             string     `gorm:"default:''" json:"cpf" form:"cpf"`
	CRP             string     `gorm:"column:crp;default:''" json:"crp" form:"crp"`
	Phone1          string     `gorm:"column:phone1" json:"phone1" form:"phone1"`
	Phone2          string     `gorm:"column:phone2" json:"phone2" form:"phone2"`
	ProfileImageURL string     `gorm:"column:profile_image_url" json:"profile_image_url" form:"profile_image_url"`
	Status          int        `gorm:"default:0" json:"status" form:"status"`
	Admin           bool       `gorm:"not null; default: false" json:"admin" form:"admin"`
	CreatedAt       *time.Time `json:"created_at" form:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at" form:"updated_at"`
}

func (user User) MissingFields() string {
	if user.Name == "" {
		return "name"
	} else if user.Email == "" {
		return "email"
	} else if user.Password == "" {
		return "password"
	} else if tools.CheckPassword(user.Password) != "" {
		return tools.CheckPassword(user.Password)
	} else if user.Phone1 == "" {
		return "phone1"
	}
	return ""
}

// NormalizeCPF remove pontuação; devolve "" se não sobrarem 11 dígitos.
func NormalizeCPF(cpf string) string {
	var b strings.Builder
	for _, r := range cpf {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == ' ':
		default:
			return ""
		}
	}
	if b.Len() != 11 {
		return ""
	}
	return b.String()
}

// IsCrpValid aceita o formato "RR/NNNNN" (região/número), com 4 a 6 dígitos.
func IsCrpValid(crp string) bool {
	parts := strings.Split(strings.TrimSpace(crp), "/")
	if len(parts) != 2 || len(parts[0]) != 2 {
		return false
	}
	if len(parts[1]) < 4 || len(parts[1]) > 6 {
		return false
	}
	for _, r := range parts[0] + parts[1] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
