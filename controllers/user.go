package controllers

import (
	"net/http"
	"strings"

	dbpkg "psiconecta/db"
	"psiconecta/models"
	"psiconecta/tools"

	"github.com/gin-gonic/gin"
)

func CheckUserExists(c *gin.Context, email string) (bool, error, *models.User) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		return false, nil, nil
	}

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return false, nil, nil
	}
	return true, nil, &user
}

// CreateUser cria a conta e o cadastro profissional vazio na mesma transação.
func CreateUser(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	user := models.User{}
	if err := c.Bind(&user); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	missing := user.MissingFields()
	if missing != "" {
		RespondError(c, "Faltando campo "+missing, http.StatusBadRequest)
		return
	}

	if !tools.ValidateEmail(user.Email) {
		RespondError(c, "E-mail inválido!", http.StatusBadRequest)
		return
	}

	phone, err := tools.NormalizePhoneBR(user.Phone1)
	if err != nil {
		RespondError(c, "Telefone inválido!", http.StatusBadRequest)
		return
	}
	user.Phone1 = phone
	if user.Phone2 != "" {
		if user.Phone2, err = tools.NormalizePhoneBR(user.Phone2); err != nil {
			RespondError(c, "Telefone inválido!", http.StatusBadRequest)
			return
		}
	}

	if user.CPF != "" {
		if user.CPF = models.NormalizeCPF(user.CPF); user.CPF == "" {
			RespondError(c, "CPF inválido!", http.StatusBadRequest)
			return
		}
	}

	if user.CRP != "" && !models.IsCrpValid(user.CRP) {
		RespondError(c, "CRP inválido!", http.StatusBadRequest)
		return
	}

	exists, err, _ := CheckUserExists(c, user.Email)
	if err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	} else if exists {
		RespondError(c, "Usuário já existe", http.StatusBadRequest)
		return
	}

	hash, err := hashPassword(user.Password)
	if err != nil {
		RespondError(c, "erro ao gravar senha", http.StatusInternalServerError)
		return
	}
	user.Password = hash

	user.ID = 0
	user.Admin = false
	user.Status = models.USER_STATUS_AVAILABLE
	user.ProfileImageURL = ""

	tx := db.Begin()
	if err := tx.Create(&user).Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := dbpkg.CreateProfile(tx, user.ID); err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	user.Password = ""
	RespondSuccess(c, user)
}
