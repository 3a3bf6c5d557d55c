// Package entitlement concentra as regras de plano do perfil profissional:
// limites por plano, validação de seleção, verificação de excesso e
// completude do cadastro. Tudo aqui é puro: nenhuma função faz I/O.
package entitlement

import (
	"fmt"
	"strings"
)

// Tier identifica o plano de assinatura do profissional.
// O valor zero ("") significa que o plano ainda não foi escolhido.
type Tier string

const (
	TierBasic   Tier = "basic"
	TierPremium Tier = "premium"
)

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	return t == TierBasic || t == TierPremium
}

// ParseTier valida um plano vindo de fora (request, banco).
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("plano inválido: %q", s)
	}
	return t, nil
}

// Tiers returns the known tiers from least to most permissive.
func Tiers() []Tier {
	return []Tier{TierBasic, TierPremium}
}

// AgeGroup é uma faixa de público atendido.
type AgeGroup string

const (
	AgeGroupChildren    AgeGroup = "criancas"
	AgeGroupAdolescents AgeGroup = "adolescentes"
	AgeGroupAdults      AgeGroup = "adultos"
	AgeGroupSeniors     AgeGroup = "idosos"
	AgeGroupCouples     AgeGroup = "casais"
	AgeGroupFamilies    AgeGroup = "familias"
)

// AllAgeGroups in display order.
func AllAgeGroups() []AgeGroup {
	return []AgeGroup{
		AgeGroupChildren,
		AgeGroupAdolescents,
		AgeGroupAdults,
		AgeGroupSeniors,
		AgeGroupCouples,
		AgeGroupFamilies,
	}
}

// Valid reports whether g is one of the six known groups.
func (g AgeGroup) Valid() bool {
	for _, known := range AllAgeGroups() {
		if g == known {
			return true
		}
	}
	return false
}

// Modality é a forma de atendimento.
type Modality string

// Valid reports whether m is a known modality.
func (m Modality) Valid() bool {
	return m == ModalityOnline || m == ModalityInPerson || m == ModalityHybrid
}

const (
	ModalityOnline   Modality = "online"
	ModalityInPerson Modality = "presencial"
	ModalityHybrid   Modality = "hibrido"
)

// LanguagePortuguese está sempre presente no perfil e não pode ser removido.
const LanguagePortuguese = "Português"

// Policy descreve os limites de um plano.
type Policy struct {
	Tier              Tier       `json:"tier"`
	MaxSpecialties    int        `json:"max_specialties"`
	MaxApproaches     int        `json:"max_approaches"`
	AllowedAgeGroups  []AgeGroup `json:"allowed_age_groups"`
	AllowedModalities []Modality `json:"allowed_modalities"`
}

// AllowsAgeGroup reports membership of g in the policy.
func (p Policy) AllowsAgeGroup(g AgeGroup) bool {
	for _, allowed := range p.AllowedAgeGroups {
		if allowed == g {
			return true
		}
	}
	return false
}

// AllowsModality reports membership of m in the policy.
func (p Policy) AllowsModality(m Modality) bool {
	for _, allowed := range p.AllowedModalities {
		if allowed == m {
			return true
		}
	}
	return false
}

// Online precisa estar em todos os planos; basic ⊆ premium em todas as categorias.
var policies = map[Tier]Policy{
	TierBasic: {
		Tier:              TierBasic,
		MaxSpecialties:    5,
		MaxApproaches:     2,
		AllowedAgeGroups:  []AgeGroup{AgeGroupAdults, AgeGroupSeniors},
		AllowedModalities: []Modality{ModalityOnline},
	},
	TierPremium: {
		Tier:              TierPremium,
		MaxSpecialties:    10,
		MaxApproaches:     5,
		AllowedAgeGroups:  AllAgeGroups(),
		AllowedModalities: []Modality{ModalityOnline, ModalityInPerson, ModalityHybrid},
	},
}

// PolicyFor returns the limits for tier. An unknown tier is a programming
// error and panics; callers holding user input go through ParseTier first.
func PolicyFor(tier Tier) Policy {
	p, ok := policies[tier]
	if !ok {
		panic(fmt.Sprintf("entitlement: no policy for tier %q", tier))
	}
	// cópia para que o chamador não altere a tabela
	p.AllowedAgeGroups = append([]AgeGroup(nil), p.AllowedAgeGroups...)
	p.AllowedModalities = append([]Modality(nil), p.AllowedModalities...)
	return p
}

// EffectiveTier é o plano usado nas checagens de seleção.
// Enquanto o plano não foi escolhido, vale o mais permissivo: seleções premium
// são aceitas durante o cadastro e barradas no envio final se o plano escolhido
// não cobrir.
func EffectiveTier(s Snapshot) Tier {
	if s.PlanTier.Valid() {
		return s.PlanTier
	}
	return TierPremium
}
