package models

import "time"

// Plan é a vitrine comercial de um plano (nome, preço, periodicidade).
// Os limites de seleção NÃO ficam no banco: vêm da tabela fixa do pacote entitlement.
type Plan struct {
	ID          int64  `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	Tier        string `gorm:"not null;unique" json:"tier" form:"tier"`
	Name        string `gorm:"not null" json:"name" form:"name"`
	Description string `gorm:"type:text" json:"description" form:"description"`
	PriceCents  int64  `gorm:"not null;default:0" json:"price_cents" form:"price_cents"`

	Currency  string     `gorm:"not null;default:'BRL'" json:"currency" form:"currency"`
	Interval  string     `gorm:"not null;default:'monthly'" json:"interval" form:"interval"` // monthly|yearly
	IsActive  bool       `gorm:"not null;default:true" json:"is_active" form:"is_active"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// DefaultPlans é o catálogo inicial criado pelo comando migrate.
func DefaultPlans() []Plan {
	return []Plan{
		{
			Tier:        "basic",
			Name:        "Básico",
			Description: "Até 5 especialidades, 2 abordagens, atendimento online para adultos e idosos.",
			PriceCents:  0,
			Currency:    "BRL",
			Interval:    "monthly",
			IsActive:    true,
		},
		{
			Tier:        "premium",
			Name:        "Premium",
			Description: "Até 10 especialidades, 5 abordagens, todas as faixas etárias e atendimento presencial ou híbrido.",
			PriceCents:  4990,
			Currency:    "BRL",
			Interval:    "monthly",
			IsActive:    true,
		},
	}
}
