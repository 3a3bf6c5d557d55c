package models

import (
	"time"

	"psiconecta/entitlement"
)

// Professional é o cadastro do psicólogo. Um registro por usuário, criado
// vazio junto com a conta e preenchido etapa a etapa pelo cadastro completo.
type Professional struct {
	ID     int64 `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	UserID int64 `gorm:"not null;unique_index" json:"user_id"`

	// "" enquanto o plano não foi escolhido
	PlanTier string `gorm:"not null;default:''" json:"plan_tier"`

	Specialties StringList    `gorm:"type:text" json:"specialties"`
	Approaches  StringList    `gorm:"type:text" json:"approaches"`
	AgeGroups   StringList    `gorm:"type:text" json:"age_groups"`
	Modalities  StringList    `gorm:"type:text" json:"modalities"`
	Languages   StringList    `gorm:"type:text" json:"languages"`
	Education   EducationList `gorm:"type:text" json:"education"`

	ShortBio          string `gorm:"type:text" json:"short_bio"`
	FullBio           string `gorm:"type:text" json:"full_bio"`
	SessionPriceCents int64  `gorm:"not null;default:0" json:"session_price_cents"`
	PixKey            string `gorm:"default:''" json:"pix_key"`
	AvatarURL         string `gorm:"column:avatar_url;default:''" json:"avatar_url"`
	CRPDocumentURL    string `gorm:"column:crp_document_url;default:''" json:"crp_document_url"`

	// Complete é derivado do snapshot; o worker de completude corrige quando fica defasado.
	Complete              bool       `gorm:"not null;default:false;index" json:"complete"`
	CompletenessCheckedAt *time.Time `json:"completeness_checked_at"`
	SubmittedAt           *time.Time `json:"submitted_at"`

	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// NewProfessional returns the empty profile created with the account.
func NewProfessional(userID int64) Professional {
	p := Professional{UserID: userID}
	p.ApplySnapshot(entitlement.NewSnapshot())
	return p
}

// Snapshot converts the record to the engine's view of the profile.
func (p Professional) Snapshot() entitlement.Snapshot {
	s := entitlement.Snapshot{
		PlanTier:          entitlement.Tier(p.PlanTier),
		Specialties:       append([]string(nil), p.Specialties...),
		Approaches:        append([]string(nil), p.Approaches...),
		Languages:         append([]string(nil), p.Languages...),
		Education:         append([]entitlement.Education(nil), p.Education...),
		ShortBio:          p.ShortBio,
		FullBio:           p.FullBio,
		SessionPriceCents: p.SessionPriceCents,
		PixKey:            p.PixKey,
		AvatarURL:         p.AvatarURL,
		CRPDocumentURL:    p.CRPDocumentURL,
	}
	for _, g := range p.AgeGroups {
		s.AgeGroups = append(s.AgeGroups, entitlement.AgeGroup(g))
	}
	for _, m := range p.Modalities {
		s.Modalities = append(s.Modalities, entitlement.Modality(m))
	}
	return s
}

// ApplySnapshot copies every snapshot field into the record.
func (p *Professional) ApplySnapshot(s entitlement.Snapshot) {
	p.PlanTier = string(s.PlanTier)
	p.Specialties = StringList(s.Specialties)
	p.Approaches = StringList(s.Approaches)
	p.AgeGroups = AgeGroupColumn(s.AgeGroups)
	p.Modalities = ModalityColumn(s.Modalities)
	p.Languages = StringList(s.Languages)
	p.Education = EducationList(s.Education)
	p.ShortBio = s.ShortBio
	p.FullBio = s.FullBio
	p.SessionPriceCents = s.SessionPriceCents
	p.PixKey = s.PixKey
	p.AvatarURL = s.AvatarURL
	p.CRPDocumentURL = s.CRPDocumentURL
}

func AgeGroupColumn(groups []entitlement.AgeGroup) StringList {
	out := make(StringList, 0, len(groups))
	for _, g := range groups {
		out = append(out, string(g))
	}
	return out
}

func ModalityColumn(modalities []entitlement.Modality) StringList {
	out := make(StringList, 0, len(modalities))
	for _, m := range modalities {
		out = append(out, string(m))
	}
	return out
}
