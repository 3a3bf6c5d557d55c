package entitlement

import "fmt"

// Action é a direção de uma alteração de seleção.
type Action string

const (
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
)

// Change é uma alteração proposta em uma única seleção.
type Change struct {
	Category Category `json:"category"`
	Value    string   `json:"value"`
	Action   Action   `json:"action"`
}

// Check decides whether change may be applied to s under policy.
func Check(policy Policy, s Snapshot, change Change) Outcome {
	if change.Action == ActionRemove {
		return CanRemove(s, change.Category, change.Value)
	}
	return CanAdd(policy, s, change.Category, change.Value)
}

// CanAdd decides whether value may be added to category. It never mutates s.
//
// Specialties and approaches are limited by count only; age groups and
// modalities by membership in the policy's allowed set, whatever the count.
// Re-adding a value already held is a no-op and always allowed.
func CanAdd(policy Policy, s Snapshot, category Category, value string) Outcome {
	if s.Holds(category, value) {
		return allowed()
	}

	switch category {
	case CategorySpecialty:
		if len(s.Specialties) < policy.MaxSpecialties {
			return allowed()
		}
		return denied(ExcessItem{
			Category:         CategorySpecialty,
			Value:            value,
			LimitDescription: fmt.Sprintf("máximo de %d especialidades no plano %s", policy.MaxSpecialties, policy.Tier),
		})

	case CategoryApproach:
		if len(s.Approaches) < policy.MaxApproaches {
			return allowed()
		}
		return denied(ExcessItem{
			Category:         CategoryApproach,
			Value:            value,
			LimitDescription: fmt.Sprintf("máximo de %d abordagens no plano %s", policy.MaxApproaches, policy.Tier),
		})

	case CategoryAgeGroup:
		if policy.AllowsAgeGroup(AgeGroup(value)) {
			return allowed()
		}
		return denied(ExcessItem{
			Category:         CategoryAgeGroup,
			Value:            value,
			LimitDescription: fmt.Sprintf("faixa etária não disponível no plano %s", policy.Tier),
		})

	case CategoryModality:
		if policy.AllowsModality(Modality(value)) {
			return allowed()
		}
		return denied(ExcessItem{
			Category:         CategoryModality,
			Value:            value,
			LimitDescription: fmt.Sprintf("modalidade não disponível no plano %s", policy.Tier),
		})

	case CategoryLanguage:
		return allowed()
	}

	return denied(ExcessItem{
		Category:         category,
		Value:            value,
		LimitDescription: "categoria desconhecida",
	})
}

// CanRemove decides whether value may be removed from category.
// Plan limits never block a removal: a profile above its quota must always be
// able to trim down. Only Online and Português are structurally required.
func CanRemove(s Snapshot, category Category, value string) Outcome {
	if category == CategoryModality && Modality(value) == ModalityOnline {
		return denied(ExcessItem{
			Category:         CategoryModality,
			Value:            value,
			LimitDescription: "atendimento online é obrigatório em todos os planos",
		})
	}
	if category == CategoryLanguage && value == LanguagePortuguese {
		return denied(ExcessItem{
			Category:         CategoryLanguage,
			Value:            value,
			LimitDescription: "português é obrigatório em todos os perfis",
		})
	}
	return allowed()
}

// Apply returns a copy of s with change applied. It does not validate;
// callers apply only after Check returned an allowed outcome.
func Apply(s Snapshot, change Change) Snapshot {
	out := s.Clone()
	add := change.Action != ActionRemove

	switch change.Category {
	case CategorySpecialty:
		out.Specialties = toggleString(out.Specialties, change.Value, add)
	case CategoryApproach:
		out.Approaches = toggleString(out.Approaches, change.Value, add)
	case CategoryLanguage:
		out.Languages = toggleString(out.Languages, change.Value, add)
	case CategoryAgeGroup:
		g := AgeGroup(change.Value)
		if add && !containsAgeGroup(out.AgeGroups, g) {
			out.AgeGroups = append(out.AgeGroups, g)
		} else if !add {
			kept := out.AgeGroups[:0]
			for _, v := range out.AgeGroups {
				if v != g {
					kept = append(kept, v)
				}
			}
			out.AgeGroups = kept
		}
	case CategoryModality:
		m := Modality(change.Value)
		if add && !containsModality(out.Modalities, m) {
			out.Modalities = append(out.Modalities, m)
		} else if !add {
			kept := out.Modalities[:0]
			for _, v := range out.Modalities {
				if v != m {
					kept = append(kept, v)
				}
			}
			out.Modalities = kept
		}
	}
	return out
}

func toggleString(list []string, v string, add bool) []string {
	if add {
		if containsString(list, v) {
			return list
		}
		return append(list, v)
	}
	kept := list[:0]
	for _, item := range list {
		if item != v {
			kept = append(kept, item)
		}
	}
	return kept
}
