package wizard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"psiconecta/entitlement"
	"psiconecta/storage"
)

// Remedy é uma saída oferecida ao usuário quando uma ação é barrada pelo plano.
type Remedy string

const (
	RemedyUpgradePlan Remedy = "upgrade_plan"
	RemedyRemoveItems Remedy = "remove_items"
)

// Result é a resposta de toda operação do cadastro. Outcome.Allowed=false com
// erro nil significa que a ação foi barrada pelas regras e nada foi gravado.
type Result struct {
	Outcome      entitlement.Outcome      `json:"outcome"`
	Missing      []entitlement.Field      `json:"missing,omitempty"`
	Remedies     []Remedy                 `json:"remedies,omitempty"`
	Profile      entitlement.Snapshot     `json:"profile"`
	Completeness entitlement.Completeness `json:"completeness"`
}

// Status é o painel do cadastro: completude por etapa e o que falta.
type Status struct {
	Profile      entitlement.Snapshot                      `json:"profile"`
	Completeness entitlement.Completeness                  `json:"completeness"`
	Missing      map[entitlement.Phase][]entitlement.Field `json:"missing"`
	NextPhase    entitlement.Phase                         `json:"next_phase"` // 0 quando completo
}

type Service struct {
	store ProfileStore
	files FileStorage
	nav   Navigator
	now   func() time.Time
}

func New(store ProfileStore, files FileStorage, nav Navigator) *Service {
	if nav == nil {
		nav = nopNavigator{}
	}
	return &Service{store: store, files: files, nav: nav, now: time.Now}
}

// Toggle adds or removes a single selection. The change is persisted only
// when the effective plan allows it.
func (s *Service) Toggle(ctx context.Context, userID int64, change entitlement.Change) (Result, error) {
	change.Value = strings.TrimSpace(change.Value)
	if change.Action == "" {
		change.Action = entitlement.ActionAdd
	}
	if err := validateChange(change); err != nil {
		return Result{}, err
	}

	snap, err := s.load(ctx, userID)
	if err != nil {
		return Result{}, err
	}

	policy := entitlement.PolicyFor(entitlement.EffectiveTier(snap))
	out := entitlement.Check(policy, snap, change)
	if !out.Allowed {
		res := Result{Outcome: out, Profile: snap, Completeness: entitlement.Evaluate(snap)}
		if change.Action == entitlement.ActionAdd && upgradeResolves(entitlement.Apply(snap, change)) {
			res.Remedies = []Remedy{RemedyUpgradePlan}
		}
		return res, nil
	}

	next := entitlement.Apply(snap, change)
	if err := s.save(ctx, userID, next, fieldFor(change.Category)); err != nil {
		return Result{}, err
	}
	return Result{Outcome: out, Profile: next, Completeness: s.refresh(ctx, userID, next)}, nil
}

// SavePhase grava os campos informados de uma etapa (1 ou 2). A etapa 3 é
// preenchida por UploadDocument e ChangePlan.
func (s *Service) SavePhase(ctx context.Context, userID int64, phase entitlement.Phase, in PhaseInput) (Result, error) {
	if phase != entitlement.PhaseProfessional && phase != entitlement.PhaseLogistics {
		return Result{}, fmt.Errorf("%w: etapa %d não aceita edição direta", ErrInvalidInput, phase)
	}

	snap, err := s.load(ctx, userID)
	if err != nil {
		return Result{}, err
	}

	next, fields, err := in.merge(phase, snap, s.now())
	if err != nil {
		return Result{}, err
	}

	policy := entitlement.PolicyFor(entitlement.EffectiveTier(snap))
	if excess := entitlement.FindIntroducedExcess(policy, snap, next); len(excess) > 0 {
		res := Result{
			Outcome:      entitlement.Outcome{Allowed: false, Excess: excess},
			Profile:      snap,
			Completeness: entitlement.Evaluate(snap),
		}
		if upgradeResolves(next) {
			res.Remedies = append(res.Remedies, RemedyUpgradePlan)
		}
		res.Remedies = append(res.Remedies, RemedyRemoveItems)
		return res, nil
	}

	if err := s.save(ctx, userID, next, fields...); err != nil {
		return Result{}, err
	}
	return Result{
		Outcome:      entitlement.Outcome{Allowed: true, Excess: []entitlement.ExcessItem{}},
		Profile:      next,
		Completeness: s.refresh(ctx, userID, next),
	}, nil
}

// AdvancePhase decides whether the user may leave phase: its fields must be
// complete and the whole profile must fit the current plan.
func (s *Service) AdvancePhase(ctx context.Context, userID int64, phase entitlement.Phase) (Result, error) {
	if !phase.Valid() {
		return Result{}, fmt.Errorf("%w: etapa %d", ErrInvalidInput, phase)
	}
	snap, err := s.load(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	return s.gate(snap, entitlement.MissingFields(snap, phase)), nil
}

// Submit finaliza o cadastro. Nunca corta seleções automaticamente: havendo
// excesso, o envio é barrado e o usuário escolhe entre trocar de plano ou remover itens.
func (s *Service) Submit(ctx context.Context, userID int64) (Result, error) {
	snap, err := s.load(ctx, userID)
	if err != nil {
		return Result{}, err
	}

	missing := []entitlement.Field{}
	for _, p := range entitlement.Phases() {
		missing = append(missing, entitlement.MissingFields(snap, p)...)
	}
	res := s.gate(snap, missing)
	if !res.Outcome.Allowed {
		return res, nil
	}

	if err := s.store.MarkSubmitted(ctx, userID, s.now()); err != nil {
		return Result{}, persistenceErr(err)
	}
	res.Completeness = s.refresh(ctx, userID, snap)
	log.Printf("wizard: cadastro enviado user=%d plano=%s", userID, snap.PlanTier)
	return res, nil
}

// ChangePlan checks the profile against the prospective plan before
// committing. A downgrade with excess is rejected and the plan is kept.
func (s *Service) ChangePlan(ctx context.Context, userID int64, tier entitlement.Tier) (Result, error) {
	res, snap, err := s.previewPlanChange(ctx, userID, tier)
	if err != nil || !res.Outcome.Allowed || snap.PlanTier == tier {
		return res, err
	}

	next := snap.Clone()
	next.PlanTier = tier
	if err := s.save(ctx, userID, next, entitlement.FieldPlanTier); err != nil {
		return Result{}, err
	}
	log.Printf("wizard: plano alterado user=%d %q -> %q", userID, snap.PlanTier, tier)
	res.Profile = next
	res.Completeness = s.refresh(ctx, userID, next)
	return res, nil
}

// PreviewPlanChange runs the ChangePlan check without writing anything.
func (s *Service) PreviewPlanChange(ctx context.Context, userID int64, tier entitlement.Tier) (Result, error) {
	res, _, err := s.previewPlanChange(ctx, userID, tier)
	return res, err
}

func (s *Service) previewPlanChange(ctx context.Context, userID int64, tier entitlement.Tier) (Result, entitlement.Snapshot, error) {
	if !tier.Valid() {
		return Result{}, entitlement.Snapshot{}, fmt.Errorf("%w: plano %q", ErrInvalidInput, tier)
	}
	snap, err := s.load(ctx, userID)
	if err != nil {
		return Result{}, snap, err
	}
	res := Result{
		Outcome:      entitlement.CheckPlanChange(snap, tier),
		Profile:      snap,
		Completeness: entitlement.Evaluate(snap),
	}
	if !res.Outcome.Allowed {
		res.Remedies = []Remedy{RemedyRemoveItems}
	}
	return res, snap, nil
}

// UploadDocument valida, envia e grava a URL do avatar ou do documento do CRP.
func (s *Service) UploadDocument(ctx context.Context, userID int64, kind storage.Kind, data []byte) (Result, error) {
	if _, ok := storage.RuleFor(kind); !ok {
		return Result{}, fmt.Errorf("%w: tipo de arquivo %q", ErrInvalidInput, kind)
	}
	obj, err := storage.Prepare(kind, userID, data)
	if err != nil {
		return Result{}, err
	}

	snap, err := s.load(ctx, userID)
	if err != nil {
		return Result{}, err
	}

	url, err := s.files.Upload(ctx, obj)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrUpload, err)
	}

	next := snap.Clone()
	switch kind {
	case storage.KindAvatar:
		next.AvatarURL = url
		err = s.store.SaveAvatar(ctx, userID, url)
	case storage.KindCRPDocument:
		next.CRPDocumentURL = url
		err = s.store.SaveProfile(ctx, userID, Patch{Fields: []entitlement.Field{entitlement.FieldCRPDocumentURL}, Values: next})
	}
	if err != nil {
		return Result{}, persistenceErr(err)
	}

	return Result{
		Outcome:      entitlement.Outcome{Allowed: true, Excess: []entitlement.ExcessItem{}},
		Profile:      next,
		Completeness: s.refresh(ctx, userID, next),
	}, nil
}

// Status recomputes completeness from the stored profile.
func (s *Service) Status(ctx context.Context, userID int64) (Status, error) {
	snap, err := s.load(ctx, userID)
	if err != nil {
		return Status{}, err
	}
	st := Status{
		Profile:      snap,
		Completeness: entitlement.Evaluate(snap),
		Missing:      map[entitlement.Phase][]entitlement.Field{},
	}
	for _, p := range entitlement.Phases() {
		missing := entitlement.MissingFields(snap, p)
		st.Missing[p] = missing
		if len(missing) > 0 && st.NextPhase == 0 {
			st.NextPhase = p
		}
	}
	return st, nil
}

func (s *Service) gate(snap entitlement.Snapshot, missing []entitlement.Field) Result {
	excess := entitlement.FindExcess(entitlement.PolicyFor(entitlement.EffectiveTier(snap)), snap)
	res := Result{
		Outcome:      entitlement.Outcome{Allowed: len(missing) == 0 && len(excess) == 0, Excess: excess},
		Missing:      missing,
		Profile:      snap,
		Completeness: entitlement.Evaluate(snap),
	}
	if len(excess) > 0 {
		if upgradeResolves(snap) {
			res.Remedies = append(res.Remedies, RemedyUpgradePlan)
		}
		res.Remedies = append(res.Remedies, RemedyRemoveItems)
	}
	return res
}

func (s *Service) load(ctx context.Context, userID int64) (entitlement.Snapshot, error) {
	snap, err := s.store.LoadProfile(ctx, userID)
	if err != nil {
		return entitlement.Snapshot{}, persistenceErr(err)
	}
	return snap.Normalize(), nil
}

func (s *Service) save(ctx context.Context, userID int64, next entitlement.Snapshot, fields ...entitlement.Field) error {
	if err := s.store.SaveProfile(ctx, userID, Patch{Fields: fields, Values: next}); err != nil {
		return persistenceErr(err)
	}
	return nil
}

// refresh grava e publica a completude. Falhas aqui não desfazem a gravação
// principal; o worker de completude corrige a flag depois.
func (s *Service) refresh(ctx context.Context, userID int64, snap entitlement.Snapshot) entitlement.Completeness {
	c := entitlement.Evaluate(snap)
	if err := s.store.MarkCompleteness(ctx, userID, c); err != nil {
		log.Printf("wizard: erro ao gravar completude user=%d: %v", userID, err)
	}
	if err := s.nav.Publish(ctx, userID, c); err != nil {
		log.Printf("wizard: erro ao publicar completude user=%d: %v", userID, err)
	}
	return c
}

func persistenceErr(err error) error {
	if errors.Is(err, ErrProfileNotFound) || errors.Is(err, ErrPersistence) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}

// upgradeResolves reports whether moving to premium would clear every excess item of s.
func upgradeResolves(s entitlement.Snapshot) bool {
	if s.PlanTier == entitlement.TierPremium {
		return false
	}
	return len(entitlement.FindExcess(entitlement.PolicyFor(entitlement.TierPremium), s)) == 0
}

func validateChange(change entitlement.Change) error {
	if !change.Category.Valid() {
		return fmt.Errorf("%w: categoria %q", ErrInvalidInput, change.Category)
	}
	if change.Action != entitlement.ActionAdd && change.Action != entitlement.ActionRemove {
		return fmt.Errorf("%w: ação %q", ErrInvalidInput, change.Action)
	}
	if change.Value == "" {
		return fmt.Errorf("%w: valor vazio", ErrInvalidInput)
	}
	switch change.Category {
	case entitlement.CategoryAgeGroup:
		if !entitlement.AgeGroup(change.Value).Valid() {
			return fmt.Errorf("%w: faixa etária %q", ErrInvalidInput, change.Value)
		}
	case entitlement.CategoryModality:
		if !entitlement.Modality(change.Value).Valid() {
			return fmt.Errorf("%w: modalidade %q", ErrInvalidInput, change.Value)
		}
	}
	return nil
}

func fieldFor(c entitlement.Category) entitlement.Field {
	switch c {
	case entitlement.CategorySpecialty:
		return entitlement.FieldSpecialties
	case entitlement.CategoryApproach:
		return entitlement.FieldApproaches
	case entitlement.CategoryAgeGroup:
		return entitlement.FieldAgeGroups
	case entitlement.CategoryModality:
		return entitlement.FieldModalities
	}
	return entitlement.FieldLanguages
}
