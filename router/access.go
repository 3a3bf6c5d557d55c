package router

import (
	"net/http"

	"psiconecta/controllers"
	"psiconecta/models"

	"github.com/gin-gonic/gin"
)

// accessRule devolve a mensagem de recusa, ou "" quando o usuário pode seguir.
type accessRule func(user models.User) string

func accountActive(user models.User) string {
	switch user.Status {
	case models.USER_STATUS_PENDING:
		return "necessário confirmar a conta"
	case models.USER_STATUS_BLOCKED:
		return "sem acesso ao aplicativo"
	}
	return ""
}

func adminOnly(user models.User) string {
	if !user.Admin {
		return "acesso restrito a administradores"
	}
	return ""
}

func guard(rule accessRule) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := controllers.GetUserLogged(c)
		if !ok {
			controllers.RespondError(c, "unauthorized", http.StatusUnauthorized)
			c.Abort()
			return
		}
		if msg := rule(user); msg != "" {
			controllers.RespondError(c, msg, http.StatusForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Authorizer libera o cadastro só para contas ativas.
func Authorizer() gin.HandlerFunc { return guard(accountActive) }

// Adminizer libera as rotas de catálogo e auditoria só para admins.
func Adminizer() gin.HandlerFunc { return guard(adminOnly) }
