package controllers

import (
	"errors"
	"net/http"

	dbpkg "psiconecta/db"
	"psiconecta/entitlement"
	"psiconecta/wizard"

	"github.com/gin-gonic/gin"
)

// ExcessReport é o diagnóstico de um cadastro contra o próprio plano e,
// quando ainda não houver plano, contra o básico.
type ExcessReport struct {
	UserID       int64                    `json:"user_id"`
	Tier         entitlement.Tier         `json:"tier"`
	Excess       []entitlement.ExcessItem `json:"excess"`
	BasicExcess  []entitlement.ExcessItem `json:"basic_excess"`
	Completeness entitlement.Completeness `json:"completeness"`
	Complete     bool                     `json:"stored_complete"`
}

// BuildExcessReport é usado pela rota de admin e pelo comando audit.
func BuildExcessReport(userID int64, storedComplete bool, s entitlement.Snapshot) ExcessReport {
	s = s.Normalize()
	return ExcessReport{
		UserID:       userID,
		Tier:         s.PlanTier,
		Excess:       entitlement.FindExcess(entitlement.PolicyFor(entitlement.EffectiveTier(s)), s),
		BasicExcess:  entitlement.FindExcess(entitlement.PolicyFor(entitlement.TierBasic), s),
		Completeness: entitlement.Evaluate(s),
		Complete:     storedComplete,
	}
}

// GET /api/admin/professionals/:userId/excess (admin)
func GetProfessionalExcess(c *gin.Context) {
	userID, ok := ParamID(c, "userId")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	p, err := dbpkg.NewProfileStore(db).Professional(c.Request.Context(), userID)
	if errors.Is(err, wizard.ErrProfileNotFound) {
		RespondError(c, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	RespondSuccess(c, BuildExcessReport(userID, p.Complete, p.Snapshot()))
}
