package wizard

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"psiconecta/entitlement"
)

const (
	MaxShortBio    = 300
	MaxFullBio     = 3000
	MaxPixKey      = 77
	MinEducationYr = 1950
)

// PhaseInput carrega os campos de uma etapa. Campo nil não foi informado e
// fica como está no banco; lista vazia (não nil) limpa a seleção.
type PhaseInput struct {
	// etapa 1
	Specialties []string                `json:"specialties"`
	Approaches  []string                `json:"approaches"`
	Education   []entitlement.Education `json:"education"`
	ShortBio    *string                 `json:"short_bio"`
	FullBio     *string                 `json:"full_bio"`
	// centavos
	SessionPriceCents *int64 `json:"session_price_cents"`

	// etapa 2
	AgeGroups  []entitlement.AgeGroup `json:"age_groups"`
	Modalities []entitlement.Modality `json:"modalities"`
	Languages  []string               `json:"languages"`
	PixKey     *string                `json:"pix_key"`
}

func (in PhaseInput) merge(phase entitlement.Phase, base entitlement.Snapshot, now time.Time) (entitlement.Snapshot, []entitlement.Field, error) {
	next := base.Clone()
	var fields []entitlement.Field

	switch phase {
	case entitlement.PhaseProfessional:
		if in.hasLogistics() {
			return next, nil, fmt.Errorf("%w: campos da etapa 2 enviados na etapa 1", ErrInvalidInput)
		}
		if in.Specialties != nil {
			next.Specialties = in.Specialties
			fields = append(fields, entitlement.FieldSpecialties)
		}
		if in.Approaches != nil {
			next.Approaches = in.Approaches
			fields = append(fields, entitlement.FieldApproaches)
		}
		if in.Education != nil {
			education := make([]entitlement.Education, 0, len(in.Education))
			for _, e := range in.Education {
				e.Title = strings.TrimSpace(e.Title)
				if e.Year != 0 && (e.Year < MinEducationYr || e.Year > now.Year()) {
					return next, nil, fmt.Errorf("%w: ano de formação %d fora do intervalo", ErrInvalidInput, e.Year)
				}
				education = append(education, e)
			}
			next.Education = education
			fields = append(fields, entitlement.FieldEducation)
		}
		if in.ShortBio != nil {
			bio := strings.TrimSpace(*in.ShortBio)
			if utf8.RuneCountInString(bio) > MaxShortBio {
				return next, nil, fmt.Errorf("%w: bio curta com mais de %d caracteres", ErrInvalidInput, MaxShortBio)
			}
			next.ShortBio = bio
			fields = append(fields, entitlement.FieldShortBio)
		}
		if in.FullBio != nil {
			bio := strings.TrimSpace(*in.FullBio)
			if utf8.RuneCountInString(bio) > MaxFullBio {
				return next, nil, fmt.Errorf("%w: bio completa com mais de %d caracteres", ErrInvalidInput, MaxFullBio)
			}
			next.FullBio = bio
			fields = append(fields, entitlement.FieldFullBio)
		}
		if in.SessionPriceCents != nil {
			if *in.SessionPriceCents < 0 {
				return next, nil, fmt.Errorf("%w: valor da sessão negativo", ErrInvalidInput)
			}
			next.SessionPriceCents = *in.SessionPriceCents
			fields = append(fields, entitlement.FieldSessionPrice)
		}

	case entitlement.PhaseLogistics:
		if in.hasProfessional() {
			return next, nil, fmt.Errorf("%w: campos da etapa 1 enviados na etapa 2", ErrInvalidInput)
		}
		if in.AgeGroups != nil {
			for _, g := range in.AgeGroups {
				if !g.Valid() {
					return next, nil, fmt.Errorf("%w: faixa etária %q", ErrInvalidInput, g)
				}
			}
			next.AgeGroups = in.AgeGroups
			fields = append(fields, entitlement.FieldAgeGroups)
		}
		if in.Modalities != nil {
			for _, m := range in.Modalities {
				if !m.Valid() {
					return next, nil, fmt.Errorf("%w: modalidade %q", ErrInvalidInput, m)
				}
			}
			next.Modalities = in.Modalities
			fields = append(fields, entitlement.FieldModalities)
		}
		if in.Languages != nil {
			next.Languages = in.Languages
			fields = append(fields, entitlement.FieldLanguages)
		}
		if in.PixKey != nil {
			key := strings.TrimSpace(*in.PixKey)
			if len(key) > MaxPixKey {
				return next, nil, fmt.Errorf("%w: chave PIX muito longa", ErrInvalidInput)
			}
			next.PixKey = key
			fields = append(fields, entitlement.FieldPixKey)
		}
	}

	return next.Normalize(), fields, nil
}

func (in PhaseInput) hasProfessional() bool {
	return in.Specialties != nil || in.Approaches != nil || in.Education != nil ||
		in.ShortBio != nil || in.FullBio != nil || in.SessionPriceCents != nil
}

func (in PhaseInput) hasLogistics() bool {
	return in.AgeGroups != nil || in.Modalities != nil || in.Languages != nil || in.PixKey != nil
}
