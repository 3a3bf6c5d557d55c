package controllers

import (
	"net/http"

	dbpkg "psiconecta/db"
	"psiconecta/entitlement"
	"psiconecta/models"

	"github.com/gin-gonic/gin"
)

// planView junta a vitrine do banco com os limites fixos do plano.
type planView struct {
	models.Plan
	Limits entitlement.Policy `json:"limits"`
}

// GET /api/plans
func GetPlans(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var plans []models.Plan
	if err := db.Where("is_active = ?", true).Order("price_cents asc, id asc").Find(&plans).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	views := make([]planView, 0, len(plans))
	for _, p := range plans {
		tier, err := entitlement.ParseTier(p.Tier)
		if err != nil {
			// linha sem plano correspondente na tabela de limites
			continue
		}
		views = append(views, planView{Plan: p, Limits: entitlement.PolicyFor(tier)})
	}

	RespondSuccess(c, gin.H{"plans": views})
}

// PUT /api/plans/:id (admin)
// Edita só a vitrine; tier e limites não mudam por aqui.
func UpdatePlan(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	var body models.Plan
	if err := c.Bind(&body); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var plan models.Plan
	if err := db.First(&plan, id).Error; err != nil {
		RespondError(c, "plano não encontrado", http.StatusNotFound)
		return
	}

	if body.Name != "" {
		plan.Name = body.Name
	}
	plan.Description = body.Description
	if body.PriceCents >= 0 {
		plan.PriceCents = body.PriceCents
	}
	if body.Currency != "" {
		plan.Currency = body.Currency
	}
	if body.Interval == "monthly" || body.Interval == "yearly" {
		plan.Interval = body.Interval
	}
	plan.IsActive = body.IsActive

	if err := db.Save(&plan).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"plan": plan})
}
