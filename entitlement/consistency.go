package entitlement

import (
	"fmt"
	"strconv"
)

// FindExcess lists everything in s that the policy does not cover.
//
// Count limits (specialties, approaches) produce a single aggregate item per
// category: the items are interchangeable and only the overage matters.
// Membership limits (age groups, modalities) produce one item per disallowed
// value, since the user must know which ones to remove.
// The result is never nil; an empty slice means the profile is consistent.
func FindExcess(policy Policy, s Snapshot) []ExcessItem {
	excess := []ExcessItem{}

	if n := len(s.Specialties); n > policy.MaxSpecialties {
		excess = append(excess, ExcessItem{
			Category:         CategorySpecialty,
			Value:            strconv.Itoa(n),
			LimitDescription: fmt.Sprintf("%d especialidades selecionadas, %d permitidas no plano %s", n, policy.MaxSpecialties, policy.Tier),
		})
	}

	if n := len(s.Approaches); n > policy.MaxApproaches {
		excess = append(excess, ExcessItem{
			Category:         CategoryApproach,
			Value:            strconv.Itoa(n),
			LimitDescription: fmt.Sprintf("%d abordagens selecionadas, %d permitidas no plano %s", n, policy.MaxApproaches, policy.Tier),
		})
	}

	for _, g := range s.AgeGroups {
		if !policy.AllowsAgeGroup(g) {
			excess = append(excess, ExcessItem{
				Category:         CategoryAgeGroup,
				Value:            string(g),
				LimitDescription: fmt.Sprintf("faixa etária não disponível no plano %s", policy.Tier),
			})
		}
	}

	for _, m := range s.Modalities {
		if !policy.AllowsModality(m) {
			excess = append(excess, ExcessItem{
				Category:         CategoryModality,
				Value:            string(m),
				LimitDescription: fmt.Sprintf("modalidade não disponível no plano %s", policy.Tier),
			})
		}
	}

	return excess
}

// FindIntroducedExcess keeps only the excess that after adds on top of
// before: a count that grew past the limit, or a disallowed value that was
// not held before. Bulk edits that only trim an over-quota profile pass.
func FindIntroducedExcess(policy Policy, before, after Snapshot) []ExcessItem {
	introduced := []ExcessItem{}
	for _, item := range FindExcess(policy, after) {
		switch item.Category {
		case CategorySpecialty:
			if len(after.Specialties) > len(before.Specialties) {
				introduced = append(introduced, item)
			}
		case CategoryApproach:
			if len(after.Approaches) > len(before.Approaches) {
				introduced = append(introduced, item)
			}
		default:
			if !before.Holds(item.Category, item.Value) {
				introduced = append(introduced, item)
			}
		}
	}
	return introduced
}

// CheckProfile wraps FindExcess in the shared outcome shape.
func CheckProfile(policy Policy, s Snapshot) Outcome {
	excess := FindExcess(policy, s)
	if len(excess) > 0 {
		return denied(excess...)
	}
	return allowed()
}

// CheckPlanChange evaluates s against the prospective tier before the change
// is committed. Only a downgrade can produce excess.
func CheckPlanChange(s Snapshot, target Tier) Outcome {
	return CheckProfile(PolicyFor(target), s)
}
