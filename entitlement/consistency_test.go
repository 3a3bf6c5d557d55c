package entitlement

import "testing"

func TestFindExcessChildrenOnBasic(t *testing.T) {
	s := Snapshot{PlanTier: TierBasic, AgeGroups: []AgeGroup{AgeGroupChildren}}

	excess := FindExcess(PolicyFor(TierBasic), s)
	if len(excess) != 1 {
		t.Fatalf("FindExcess(basic) = %+v, want one item", excess)
	}
	if excess[0].Category != CategoryAgeGroup || excess[0].Value != string(AgeGroupChildren) {
		t.Fatalf("excess item = %+v, want age_group criancas", excess[0])
	}

	if excess := FindExcess(PolicyFor(TierPremium), s); len(excess) != 0 {
		t.Fatalf("FindExcess(premium) = %+v, want none", excess)
	}
}

func TestFindExcessSpecialtiesIsAggregate(t *testing.T) {
	s := Snapshot{PlanTier: TierBasic, Specialties: specialties(7)}

	excess := FindExcess(PolicyFor(TierBasic), s)
	if len(excess) != 1 {
		t.Fatalf("FindExcess = %d items, want 1 aggregate", len(excess))
	}
	item := excess[0]
	if item.Category != CategorySpecialty || item.Value != "7" {
		t.Fatalf("item = %+v, want specialty with value 7", item)
	}
	want := "7 especialidades selecionadas, 5 permitidas no plano basic"
	if item.LimitDescription != want {
		t.Fatalf("LimitDescription = %q, want %q", item.LimitDescription, want)
	}
}

func TestFindExcessModalitiesAreItemized(t *testing.T) {
	s := Snapshot{Modalities: []Modality{ModalityOnline, ModalityInPerson, ModalityHybrid}}
	excess := FindExcess(PolicyFor(TierBasic), s)
	if len(excess) != 2 {
		t.Fatalf("FindExcess = %+v, want presencial and hibrido", excess)
	}
	if excess[0].Value != string(ModalityInPerson) || excess[1].Value != string(ModalityHybrid) {
		t.Fatalf("excess order = %+v, want held order", excess)
	}
}

func TestFindExcessNeverNil(t *testing.T) {
	if excess := FindExcess(PolicyFor(TierBasic), Snapshot{}); excess == nil || len(excess) != 0 {
		t.Fatalf("FindExcess(empty) = %#v, want empty non-nil slice", excess)
	}
}

func TestDowngradeRejectedThenAccepted(t *testing.T) {
	s := Snapshot{
		PlanTier:    TierPremium,
		Specialties: specialties(8),
		Modalities:  []Modality{ModalityOnline, ModalityHybrid},
	}

	out := CheckPlanChange(s, TierBasic)
	if out.Allowed {
		t.Fatalf("downgrade with 8 specialties and hibrido should be rejected")
	}
	if len(out.Excess) != 2 {
		t.Fatalf("excess = %+v, want specialty aggregate + hibrido", out.Excess)
	}
	if out.Excess[0].Category != CategorySpecialty || out.Excess[1].Category != CategoryModality || out.Excess[1].Value != string(ModalityHybrid) {
		t.Fatalf("excess = %+v", out.Excess)
	}

	for _, v := range []string{"especialidade-6", "especialidade-7", "especialidade-8"} {
		change := Change{Category: CategorySpecialty, Value: v, Action: ActionRemove}
		if !Check(PolicyFor(s.PlanTier), s, change).Allowed {
			t.Fatalf("removing %s should be allowed", v)
		}
		s = Apply(s, change)
	}
	s = Apply(s, Change{Category: CategoryModality, Value: string(ModalityHybrid), Action: ActionRemove})

	out = CheckPlanChange(s, TierBasic)
	if !out.Allowed || len(out.Excess) != 0 {
		t.Fatalf("downgrade after cleanup = %+v, want allowed with no excess", out)
	}
}

func TestUpgradeNeverConflicts(t *testing.T) {
	s := Snapshot{
		PlanTier:    TierBasic,
		Specialties: specialties(5),
		Approaches:  []string{"TCC", "ACT"},
		AgeGroups:   []AgeGroup{AgeGroupAdults, AgeGroupSeniors},
		Modalities:  []Modality{ModalityOnline},
	}
	if out := CheckPlanChange(s, TierPremium); !out.Allowed {
		t.Fatalf("upgrade should never conflict, got %+v", out)
	}
}

func TestFindExcessIdempotentOnConsistentProfile(t *testing.T) {
	s := Snapshot{
		PlanTier:    TierPremium,
		Specialties: specialties(10),
		Approaches:  []string{"TCC"},
		AgeGroups:   AllAgeGroups(),
		Modalities:  []Modality{ModalityOnline, ModalityHybrid},
	}
	for i := 0; i < 3; i++ {
		if excess := FindExcess(PolicyFor(s.PlanTier), s); len(excess) != 0 {
			t.Fatalf("run %d: FindExcess = %+v, want none", i, excess)
		}
	}
}

func TestSelectionScenarioAcrossUpgrade(t *testing.T) {
	s := NewSnapshot()
	s.PlanTier = TierBasic

	for _, v := range specialties(5) {
		change := Change{Category: CategorySpecialty, Value: v, Action: ActionAdd}
		if out := Check(PolicyFor(s.PlanTier), s, change); !out.Allowed {
			t.Fatalf("adding %s on basic denied: %+v", v, out)
		}
		s = Apply(s, change)
	}

	sixth := Change{Category: CategorySpecialty, Value: "luto", Action: ActionAdd}
	out := Check(PolicyFor(s.PlanTier), s, sixth)
	if out.Allowed || len(out.Excess) != 1 {
		t.Fatalf("sixth specialty on basic = %+v, want denied with one item", out)
	}

	if up := CheckPlanChange(s, TierPremium); !up.Allowed || len(up.Excess) != 0 {
		t.Fatalf("upgrade = %+v, want allowed", up)
	}
	s.PlanTier = TierPremium

	if out := Check(PolicyFor(s.PlanTier), s, sixth); !out.Allowed {
		t.Fatalf("sixth specialty on premium = %+v, want allowed", out)
	}
	s = Apply(s, sixth)
	if len(s.Specialties) != 6 {
		t.Fatalf("specialties = %d, want 6", len(s.Specialties))
	}
}

func TestFindIntroducedExcess(t *testing.T) {
	policy := PolicyFor(TierBasic)
	before := Snapshot{
		Specialties: specialties(7),
		AgeGroups:   []AgeGroup{AgeGroupChildren},
	}

	t.Run("trimming an over-quota profile passes", func(t *testing.T) {
		after := before.Clone()
		after.Specialties = specialties(6)
		if got := FindIntroducedExcess(policy, before, after); len(got) != 0 {
			t.Fatalf("FindIntroducedExcess = %+v, want none", got)
		}
	})

	t.Run("growing past the limit is reported", func(t *testing.T) {
		after := before.Clone()
		after.Specialties = specialties(8)
		got := FindIntroducedExcess(policy, before, after)
		if len(got) != 1 || got[0].Category != CategorySpecialty {
			t.Fatalf("FindIntroducedExcess = %+v, want specialty aggregate", got)
		}
	})

	t.Run("new disallowed value is reported", func(t *testing.T) {
		after := before.Clone()
		after.AgeGroups = append(after.AgeGroups, AgeGroupCouples)
		got := FindIntroducedExcess(policy, before, after)
		if len(got) != 1 || got[0].Value != string(AgeGroupCouples) {
			t.Fatalf("FindIntroducedExcess = %+v, want casais only", got)
		}
	})
}
