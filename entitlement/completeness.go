package entitlement

import (
	"net/url"
	"strings"
)

// Phase é uma etapa do cadastro completo.
type Phase int

const (
	PhaseProfessional Phase = 1 // perfil profissional
	PhaseLogistics    Phase = 2 // logística e pagamento
	PhaseDocuments    Phase = 3 // documentos e plano
)

// Phases returns the phases in wizard order.
func Phases() []Phase {
	return []Phase{PhaseProfessional, PhaseLogistics, PhaseDocuments}
}

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	return p >= PhaseProfessional && p <= PhaseDocuments
}

// Field nomeia um campo obrigatório de uma etapa.
type Field string

const (
	FieldSpecialties    Field = "specialties"
	FieldApproaches     Field = "approaches"
	FieldEducation      Field = "education"
	FieldShortBio       Field = "short_bio"
	FieldFullBio        Field = "full_bio"
	FieldSessionPrice   Field = "session_price"
	FieldAgeGroups      Field = "age_groups"
	FieldModalities     Field = "modalities"
	FieldLanguages      Field = "languages"
	FieldPixKey         Field = "pix_key"
	FieldAvatarURL      Field = "avatar_url"
	FieldCRPDocumentURL Field = "crp_document_url"
	FieldPlanTier       Field = "plan_tier"
)

type fieldRule struct {
	field Field
	ok    func(Snapshot) bool
}

// Ordem fixa dos campos por etapa; uma etapa está completa quando todos passam.
var phaseRules = map[Phase][]fieldRule{
	PhaseProfessional: {
		{FieldSpecialties, func(s Snapshot) bool { return len(s.Specialties) > 0 }},
		{FieldApproaches, func(s Snapshot) bool { return len(s.Approaches) > 0 }},
		{FieldEducation, educationComplete},
		{FieldShortBio, func(s Snapshot) bool { return strings.TrimSpace(s.ShortBio) != "" }},
		{FieldFullBio, func(s Snapshot) bool { return strings.TrimSpace(s.FullBio) != "" }},
		{FieldSessionPrice, func(s Snapshot) bool { return s.SessionPriceCents > 0 }},
	},
	PhaseLogistics: {
		{FieldAgeGroups, func(s Snapshot) bool { return len(s.AgeGroups) > 0 }},
		{FieldModalities, func(s Snapshot) bool { return len(s.Modalities) > 0 }},
		{FieldLanguages, func(s Snapshot) bool { return len(s.Languages) > 0 }},
		{FieldPixKey, func(s Snapshot) bool { return strings.TrimSpace(s.PixKey) != "" }},
	},
	PhaseDocuments: {
		{FieldAvatarURL, func(s Snapshot) bool { return validURL(s.AvatarURL) }},
		{FieldCRPDocumentURL, func(s Snapshot) bool { return validURL(s.CRPDocumentURL) }},
		{FieldPlanTier, func(s Snapshot) bool { return s.PlanTier.Valid() }},
	},
}

// Completeness é derivada do snapshot a cada consulta; nunca é a fonte da verdade.
type Completeness struct {
	Phase1  bool `json:"phase1_complete"`
	Phase2  bool `json:"phase2_complete"`
	Phase3  bool `json:"phase3_complete"`
	Overall bool `json:"overall_complete"`
}

// Phase returns the completeness of a single phase.
func (c Completeness) Phase(p Phase) bool {
	switch p {
	case PhaseProfessional:
		return c.Phase1
	case PhaseLogistics:
		return c.Phase2
	case PhaseDocuments:
		return c.Phase3
	}
	return false
}

// Evaluate computes every phase independently from one snapshot. Phases are
// not advanced in order: phase 3 may be complete while phase 1 is not.
func Evaluate(s Snapshot) Completeness {
	c := Completeness{
		Phase1: len(MissingFields(s, PhaseProfessional)) == 0,
		Phase2: len(MissingFields(s, PhaseLogistics)) == 0,
		Phase3: len(MissingFields(s, PhaseDocuments)) == 0,
	}
	c.Overall = c.Phase1 && c.Phase2 && c.Phase3
	return c
}

// MissingFields lists, in order, the required fields of phase that s does not
// satisfy. It returns nil for an unknown phase.
func MissingFields(s Snapshot, phase Phase) []Field {
	rules, ok := phaseRules[phase]
	if !ok {
		return nil
	}
	missing := []Field{}
	for _, r := range rules {
		if !r.ok(s) {
			missing = append(missing, r.field)
		}
	}
	return missing
}

func educationComplete(s Snapshot) bool {
	if len(s.Education) == 0 {
		return false
	}
	for _, e := range s.Education {
		if strings.TrimSpace(e.Title) == "" || e.Year <= 0 {
			return false
		}
	}
	return true
}

func validURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
