package controllers

import (
	"log"
	"net/http"

	"psiconecta/cache"
	dbpkg "psiconecta/db"
	"psiconecta/models"

	"github.com/gin-gonic/gin"
)

// Menus exibidos no dashboard conforme a completude do cadastro.
const (
	MenuCompleteProfile = "completar-perfil"
	MenuEditProfile     = "editar-perfil"
)

var navCache *cache.RedisClient

// SetNavigationCache liga a leitura da completude pelo redis. nil desliga.
func SetNavigationCache(r *cache.RedisClient) {
	navCache = r
}

// GET /api/me
func Me(c *gin.Context) {
	user, ok := GetUserLogged(c)
	if !ok {
		RespondError(c, "unauthorized", http.StatusUnauthorized)
		return
	}
	user.Password = ""

	complete := profileComplete(c, user.ID)
	menu := MenuCompleteProfile
	if complete {
		menu = MenuEditProfile
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "profile_complete": complete, "menu": menu})
}

// profileComplete lê do cache e cai para a flag gravada no banco.
func profileComplete(c *gin.Context, userID int64) bool {
	if navCache != nil {
		comp, hit, err := navCache.Completeness(c.Request.Context(), userID)
		if err != nil {
			log.Printf("me: erro ao ler cache de completude user=%d: %v", userID, err)
		} else if hit {
			return comp.Overall
		}
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		return false
	}
	var p models.Professional
	if err := db.Select("complete").Where("user_id = ?", userID).First(&p).Error; err != nil {
		return false
	}
	return p.Complete
}

// GET /health: banco obrigatório, cache só quando ligado.
func Health(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil || db.DB().PingContext(c.Request.Context()) != nil {
		RespondError(c, "banco indisponível", http.StatusServiceUnavailable)
		return
	}
	cacheStatus := "off"
	if navCache != nil {
		cacheStatus = "ok"
		if err := navCache.Health(); err != nil {
			log.Printf("health: redis: %v", err)
			cacheStatus = "degraded"
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "cache": cacheStatus})
}
