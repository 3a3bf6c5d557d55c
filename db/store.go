package db

import (
	"context"
	"fmt"
	"time"

	"psiconecta/entitlement"
	"psiconecta/models"
	"psiconecta/wizard"

	"github.com/jinzhu/gorm"
)

// ProfileStore implementa wizard.ProfileStore sobre o gorm.
type ProfileStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewProfileStore(db *gorm.DB) *ProfileStore {
	return &ProfileStore{db: db, now: time.Now}
}

var _ wizard.ProfileStore = (*ProfileStore)(nil)

// CreateProfile cria o cadastro vazio de userID. Use dentro da mesma
// transação que cria o usuário.
func CreateProfile(tx *gorm.DB, userID int64) (models.Professional, error) {
	p := models.NewProfessional(userID)
	if err := tx.Create(&p).Error; err != nil {
		return p, err
	}
	return p, nil
}

func (s *ProfileStore) find(ctx context.Context, userID int64) (models.Professional, error) {
	var p models.Professional
	if err := ctx.Err(); err != nil {
		return p, err
	}
	err := s.db.Where("user_id = ?", userID).First(&p).Error
	if gorm.IsRecordNotFoundError(err) {
		return p, wizard.ErrProfileNotFound
	}
	return p, err
}

func (s *ProfileStore) LoadProfile(ctx context.Context, userID int64) (entitlement.Snapshot, error) {
	p, err := s.find(ctx, userID)
	if err != nil {
		return entitlement.Snapshot{}, err
	}
	return p.Snapshot(), nil
}

// Professional devolve o registro completo (datas, flag de completude).
func (s *ProfileStore) Professional(ctx context.Context, userID int64) (models.Professional, error) {
	return s.find(ctx, userID)
}

// SaveProfile grava só as colunas listadas no patch, num único UPDATE.
func (s *ProfileStore) SaveProfile(ctx context.Context, userID int64, patch wizard.Patch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(patch.Fields) == 0 {
		return nil
	}
	values, err := columnValues(patch)
	if err != nil {
		return err
	}
	res := s.db.Model(&models.Professional{}).Where("user_id = ?", userID).Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return wizard.ErrProfileNotFound
	}
	return nil
}

// SaveAvatar grava a URL no cadastro e na conta (profile_image_url) na mesma
// transação: ou as duas tabelas mudam, ou nenhuma.
func (s *ProfileStore) SaveAvatar(ctx context.Context, userID int64, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := s.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	res := tx.Model(&models.Professional{}).Where("user_id = ?", userID).Update("avatar_url", url)
	if res.Error != nil {
		tx.Rollback()
		return res.Error
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return wizard.ErrProfileNotFound
	}

	res = tx.Model(&models.User{}).Where("id = ?", userID).Update("profile_image_url", url)
	if res.Error != nil {
		tx.Rollback()
		return res.Error
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return wizard.ErrProfileNotFound
	}

	return tx.Commit().Error
}

// MarkCompleteness não mexe em updated_at: o worker compara as duas datas
// para achar cadastros com a flag defasada.
func (s *ProfileStore) MarkCompleteness(ctx context.Context, userID int64, c entitlement.Completeness) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Model(&models.Professional{}).Where("user_id = ?", userID).UpdateColumns(map[string]interface{}{
		"complete":                c.Overall,
		"completeness_checked_at": s.now(),
	}).Error
}

func (s *ProfileStore) MarkSubmitted(ctx context.Context, userID int64, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	res := s.db.Model(&models.Professional{}).Where("user_id = ?", userID).UpdateColumn("submitted_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return wizard.ErrProfileNotFound
	}
	return nil
}

// Stale lista cadastros cuja flag de completude nunca foi calculada ou é
// anterior à última alteração.
func (s *ProfileStore) Stale(ctx context.Context, limit int) ([]models.Professional, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []models.Professional
	err := s.db.
		Where("completeness_checked_at IS NULL OR completeness_checked_at < updated_at").
		Order("id asc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// Each percorre todos os cadastros em lotes de batch, em ordem de id.
func (s *ProfileStore) Each(ctx context.Context, batch int, fn func(models.Professional) error) error {
	if batch <= 0 {
		batch = 100
	}
	var lastID int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var page []models.Professional
		if err := s.db.Where("id > ?", lastID).Order("id asc").Limit(batch).Find(&page).Error; err != nil {
			return err
		}
		for _, p := range page {
			if err := fn(p); err != nil {
				return err
			}
			lastID = p.ID
		}
		if len(page) < batch {
			return nil
		}
	}
}

func columnValues(patch wizard.Patch) (map[string]interface{}, error) {
	v := patch.Values
	values := make(map[string]interface{}, len(patch.Fields))
	for _, f := range patch.Fields {
		switch f {
		case entitlement.FieldSpecialties:
			values["specialties"] = models.StringList(v.Specialties)
		case entitlement.FieldApproaches:
			values["approaches"] = models.StringList(v.Approaches)
		case entitlement.FieldEducation:
			values["education"] = models.EducationList(v.Education)
		case entitlement.FieldShortBio:
			values["short_bio"] = v.ShortBio
		case entitlement.FieldFullBio:
			values["full_bio"] = v.FullBio
		case entitlement.FieldSessionPrice:
			values["session_price_cents"] = v.SessionPriceCents
		case entitlement.FieldAgeGroups:
			values["age_groups"] = models.AgeGroupColumn(v.AgeGroups)
		case entitlement.FieldModalities:
			values["modalities"] = models.ModalityColumn(v.Modalities)
		case entitlement.FieldLanguages:
			values["languages"] = models.StringList(v.Languages)
		case entitlement.FieldPixKey:
			values["pix_key"] = v.PixKey
		case entitlement.FieldAvatarURL:
			values["avatar_url"] = v.AvatarURL
		case entitlement.FieldCRPDocumentURL:
			values["crp_document_url"] = v.CRPDocumentURL
		case entitlement.FieldPlanTier:
			values["plan_tier"] = string(v.PlanTier)
		default:
			return nil, fmt.Errorf("campo sem coluna: %q", f)
		}
	}
	return values, nil
}
