package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"psiconecta/config"
	"psiconecta/entitlement"
	"psiconecta/storage"
	"psiconecta/wizard"

	"github.com/gin-gonic/gin"
)

var conf config.Configuration

func SetConfigurations(configuration config.Configuration) {
	conf = configuration
}

func RespondError(c *gin.Context, msg string, code int) {
	c.JSON(code, gin.H{"error": msg})
}

func RespondSuccess(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// resultResponse é o corpo de toda operação do cadastro.
type resultResponse struct {
	Allowed      bool                     `json:"allowed"`
	Excess       []entitlement.ExcessItem `json:"excess"`
	Missing      []entitlement.Field      `json:"missing,omitempty"`
	Remedies     []wizard.Remedy          `json:"remedies,omitempty"`
	Profile      entitlement.Snapshot     `json:"profile"`
	Completeness entitlement.Completeness `json:"completeness"`
}

// RespondResult responde 200 quando a ação foi aceita e 422 quando foi
// barrada pelo plano ou por campos faltando.
func RespondResult(c *gin.Context, res wizard.Result) {
	excess := res.Outcome.Excess
	if excess == nil {
		excess = []entitlement.ExcessItem{}
	}
	body := resultResponse{
		Allowed:      res.Outcome.Allowed,
		Excess:       excess,
		Missing:      res.Missing,
		Remedies:     res.Remedies,
		Profile:      res.Profile,
		Completeness: res.Completeness,
	}
	if !res.Outcome.Allowed {
		c.JSON(http.StatusUnprocessableEntity, body)
		return
	}
	c.JSON(http.StatusOK, body)
}

// RespondServiceError traduz os erros do cadastro em status HTTP. Falhas de
// banco e de upload são 503: o usuário pode tentar de novo.
func RespondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, wizard.ErrProfileNotFound):
		RespondError(c, err.Error(), http.StatusNotFound)
	case errors.Is(err, wizard.ErrInvalidInput):
		RespondError(c, err.Error(), http.StatusBadRequest)
	case errors.Is(err, storage.ErrEmptyFile):
		RespondError(c, err.Error(), http.StatusBadRequest)
	case errors.Is(err, storage.ErrTooLarge):
		RespondError(c, err.Error(), http.StatusRequestEntityTooLarge)
	case errors.Is(err, storage.ErrUnsupportedType):
		RespondError(c, err.Error(), http.StatusUnsupportedMediaType)
	case errors.Is(err, wizard.ErrUpload), errors.Is(err, wizard.ErrPersistence):
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		RespondError(c, "serviço indisponível, tente novamente", http.StatusServiceUnavailable)
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		RespondError(c, "erro interno", http.StatusInternalServerError)
	}
}

// ParamID lê um id positivo da rota.
func ParamID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, name+" inválido", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
