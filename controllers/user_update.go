package controllers

import (
	"net/http"
	"strings"

	dbpkg "psiconecta/db"
	"psiconecta/models"
	"psiconecta/tools"

	"github.com/gin-gonic/gin"
)

// UpdateCurrentUser updates the logged user ("me").
// Route: PUT /api/user
//
// Only name, phones, cpf and crp can change here. The photo goes through
// POST /api/profile/avatar so account and profile stay in sync.
func UpdateCurrentUser(c *gin.Context) {
	logged, ok := GetUserLogged(c)
	if !ok {
		RespondError(c, "unauthorized", http.StatusUnauthorized)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	allowed := map[string]struct{}{
		"name":   {},
		"phone1": {},
		"phone2": {},
		"cpf":    {},
		"crp":    {},
	}
	updates := map[string]any{}
	for k, v := range payload {
		key := strings.ToLower(k)
		if _, ok := allowed[key]; !ok {
			continue
		}
		s, isString := v.(string)
		if !isString {
			RespondError(c, key+" inválido", http.StatusBadRequest)
			return
		}
		s = strings.TrimSpace(s)
		switch key {
		case "phone1", "phone2":
			if s == "" && key == "phone2" {
				break
			}
			phone, err := tools.NormalizePhoneBR(s)
			if err != nil {
				RespondError(c, "Telefone inválido!", http.StatusBadRequest)
				return
			}
			s = phone
		case "cpf":
			if s == "" {
				break
			}
			if s = models.NormalizeCPF(s); s == "" {
				RespondError(c, "CPF inválido!", http.StatusBadRequest)
				return
			}
		case "crp":
			if s != "" && !models.IsCrpValid(s) {
				RespondError(c, "CRP inválido!", http.StatusBadRequest)
				return
			}
		case "name":
			if s == "" {
				RespondError(c, "name é obrigatório", http.StatusBadRequest)
				return
			}
		}
		updates[key] = s
	}

	if len(updates) == 0 {
		u := logged
		u.Password = ""
		RespondSuccess(c, u)
		return
	}

	if err := db.Model(&models.User{}).
		Where("id = ?", logged.ID).
		Updates(updates).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	var updated models.User
	if err := db.Where("id = ?", logged.ID).First(&updated).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	updated.Password = ""
	RespondSuccess(c, updated)
}
