package entitlement

import "strings"

// Education é uma formação acadêmica do profissional.
type Education struct {
	Title string `json:"title"`
	Year  int    `json:"year"`
}

// Snapshot é o recorte do cadastro relevante para plano e completude.
// Os campos de lista têm semântica de conjunto (sem repetição); a ordem de
// inserção é mantida apenas para exibição.
type Snapshot struct {
	PlanTier          Tier        `json:"plan_tier"`
	Specialties       []string    `json:"specialties"`
	Approaches        []string    `json:"approaches"`
	AgeGroups         []AgeGroup  `json:"age_groups"`
	Modalities        []Modality  `json:"modalities"`
	Languages         []string    `json:"languages"`
	Education         []Education `json:"education"`
	ShortBio          string      `json:"short_bio"`
	FullBio           string      `json:"full_bio"`
	SessionPriceCents int64       `json:"session_price_cents"`
	PixKey            string      `json:"pix_key"`
	AvatarURL         string      `json:"avatar_url"`
	CRPDocumentURL    string      `json:"crp_document_url"`
}

// NewSnapshot returns the state of a freshly created profile: only the
// structurally required values are present.
func NewSnapshot() Snapshot {
	return Snapshot{
		Modalities: []Modality{ModalityOnline},
		Languages:  []string{LanguagePortuguese},
	}
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Specialties = append([]string(nil), s.Specialties...)
	out.Approaches = append([]string(nil), s.Approaches...)
	out.AgeGroups = append([]AgeGroup(nil), s.AgeGroups...)
	out.Modalities = append([]Modality(nil), s.Modalities...)
	out.Languages = append([]string(nil), s.Languages...)
	out.Education = append([]Education(nil), s.Education...)
	return out
}

// Normalize removes blank and duplicated entries and restores the values
// that can never be absent (Online, Português).
func (s Snapshot) Normalize() Snapshot {
	out := s.Clone()
	out.Specialties = uniqueStrings(out.Specialties)
	out.Approaches = uniqueStrings(out.Approaches)
	out.Languages = uniqueStrings(out.Languages)

	groups := make([]AgeGroup, 0, len(out.AgeGroups))
	for _, g := range out.AgeGroups {
		if g != "" && !containsAgeGroup(groups, g) {
			groups = append(groups, g)
		}
	}
	out.AgeGroups = groups

	modalities := make([]Modality, 0, len(out.Modalities)+1)
	for _, m := range out.Modalities {
		if m != "" && !containsModality(modalities, m) {
			modalities = append(modalities, m)
		}
	}
	if !containsModality(modalities, ModalityOnline) {
		modalities = append([]Modality{ModalityOnline}, modalities...)
	}
	out.Modalities = modalities

	if !containsString(out.Languages, LanguagePortuguese) {
		out.Languages = append([]string{LanguagePortuguese}, out.Languages...)
	}
	return out
}

// Category identifica o grupo de atributos selecionáveis.
type Category string

const (
	CategorySpecialty Category = "specialty"
	CategoryApproach  Category = "approach"
	CategoryAgeGroup  Category = "age_group"
	CategoryModality  Category = "modality"
	CategoryLanguage  Category = "language"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategorySpecialty, CategoryApproach, CategoryAgeGroup, CategoryModality, CategoryLanguage:
		return true
	}
	return false
}

// Holds reports whether value is already selected in category.
func (s Snapshot) Holds(category Category, value string) bool {
	switch category {
	case CategorySpecialty:
		return containsString(s.Specialties, value)
	case CategoryApproach:
		return containsString(s.Approaches, value)
	case CategoryAgeGroup:
		return containsAgeGroup(s.AgeGroups, AgeGroup(value))
	case CategoryModality:
		return containsModality(s.Modalities, Modality(value))
	case CategoryLanguage:
		return containsString(s.Languages, value)
	}
	return false
}

// ExcessItem é um atributo que ultrapassa o que o plano permite.
type ExcessItem struct {
	Category         Category `json:"category"`
	Value            string   `json:"value"`
	LimitDescription string   `json:"limit_description"`
}

// Outcome é o resultado comum da checagem por seleção e da checagem do perfil inteiro.
type Outcome struct {
	Allowed bool         `json:"allowed"`
	Excess  []ExcessItem `json:"excess"`
}

func allowed() Outcome {
	return Outcome{Allowed: true, Excess: []ExcessItem{}}
}

func denied(items ...ExcessItem) Outcome {
	return Outcome{Allowed: false, Excess: items}
}

func uniqueStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || containsString(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func containsAgeGroup(list []AgeGroup, v AgeGroup) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func containsModality(list []Modality, v Modality) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
