package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"psiconecta/entitlement"
	"psiconecta/storage"
	"psiconecta/wizard"

	"github.com/gin-gonic/gin"
)

const wizardKey = "wizard"

// SetWizardToContext segue o mesmo padrão do db: o serviço vai no contexto do gin.
func SetWizardToContext(svc *wizard.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(wizardKey, svc)
		c.Next()
	}
}

func WizardInstance(c *gin.Context) *wizard.Service {
	v, ok := c.Get(wizardKey)
	if !ok {
		return nil
	}
	svc, _ := v.(*wizard.Service)
	return svc
}

// profileCall resolve usuário logado e serviço; responde o erro e devolve
// ok=false quando falta algum dos dois.
func profileCall(c *gin.Context) (*wizard.Service, int64, bool) {
	user, ok := GetUserLogged(c)
	if !ok {
		RespondError(c, "unauthorized", http.StatusUnauthorized)
		return nil, 0, false
	}
	svc := WizardInstance(c)
	if svc == nil {
		RespondError(c, "cadastro não configurado no contexto", http.StatusInternalServerError)
		return nil, 0, false
	}
	return svc, user.ID, true
}

// GET /api/profile
func GetProfile(c *gin.Context) {
	svc, userID, ok := profileCall(c)
	if !ok {
		return
	}
	st, err := svc.Status(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondSuccess(c, gin.H{"profile": st.Profile, "completeness": st.Completeness})
}

// GET /api/profile/status
func GetProfileStatus(c *gin.Context) {
	svc, userID, ok := profileCall(c)
	if !ok {
		return
	}
	st, err := svc.Status(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	missing := make(map[string][]entitlement.Field, len(st.Missing))
	for phase, fields := range st.Missing {
		missing[strconv.Itoa(int(phase))] = fields
	}
	RespondSuccess(c, gin.H{
		"completeness": st.Completeness,
		"missing":      missing,
		"next_phase":   st.NextPhase,
	})
}

type selectionRequest struct {
	Category entitlement.Category `json:"category" binding:"required"`
	Value    string               `json:"value" binding:"required"`
	Action   entitlement.Action   `json:"action"`
}

// POST /api/profile/selections
func ToggleSelection(c *gin.Context) {
	svc, userID, ok := profileCall(c)
	if !ok {
		return
	}
	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, "category e value são obrigatórios", http.StatusBadRequest)
		return
	}

	res, err := svc.Toggle(c.Request.Context(), userID, entitlement.Change{
		Category: req.Category,
		Value:    req.Value,
		Action:   req.Action,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondResult(c, res)
}

func phaseParam(c *gin.Context) (entitlement.Phase, bool) {
	n, err := strconv.Atoi(c.Param("phase"))
	phase := entitlement.Phase(n)
	if err != nil || !phase.Valid() {
		RespondError(c, "etapa inválida", http.StatusBadRequest)
		return 0, false
	}
	return phase, true
}

// PUT /api/profile/phases/:phase
func SavePhase(c *gin.Context) {
	svc, userID, ok := profileCall(c)
	if !ok {
		return
	}
	phase, ok := phaseParam(c)
	if !ok {
		return
	}
	var in wizard.PhaseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := svc.SavePhase(c.Request.Context(), userID, phase, in)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondResult(c, res)
}

// POST /api/profile/phases/:phase/advance
func AdvancePhase(c *gin.Context) {
	svc, userID, ok := profileCall(c)
	if !ok {
		return
	}
	phase, ok := phaseParam(c)
	if !ok {
		return
	}

	res, err := svc.AdvancePhase(c.Request.Context(), userID, phase)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondResult(c, res)
}

// POST /api/profile/submit
func SubmitProfile(c *gin.Context) {
	svc, userID, ok := profileCall(c)
	if !ok {
		return
	}
	res, err := svc.Submit(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondResult(c, res)
}

type planChangeRequest struct {
	Tier string `json:"tier" form:"tier" binding:"required"`
}

// POST /api/profile/plan
func ChangePlan(c *gin.Context) {
	svc, userID, ok := profileCall(c)
	if !ok {
		return
	}
	var req planChangeRequest
	if err := c.ShouldBind(&req); err != nil {
		RespondError(c, "tier é obrigatório", http.StatusBadRequest)
		return
	}
	tier, err := entitlement.ParseTier(req.Tier)
	if err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := svc.ChangePlan(c.Request.Context(), userID, tier)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondResult(c, res)
}

// GET /api/profile/plan/preview?tier=basic
func PreviewPlanChange(c *gin.Context) {
	svc, userID, ok := profileCall(c)
	if !ok {
		return
	}
	tier, err := entitlement.ParseTier(c.Query("tier"))
	if err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := svc.PreviewPlanChange(c.Request.Context(), userID, tier)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondResult(c, res)
}

// POST /api/profile/avatar (multipart, campo "file")
func UploadAvatar(c *gin.Context) {
	uploadDocument(c, storage.KindAvatar)
}

// POST /api/profile/crp (multipart, campo "file")
func UploadCRPDocument(c *gin.Context) {
	uploadDocument(c, storage.KindCRPDocument)
}

// POST /api/profile/documents/:kind (kind = avatar | crp_document)
func UploadDocument(c *gin.Context) {
	kind, err := storage.ParseKind(c.Param("kind"))
	if err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	uploadDocument(c, kind)
}

func uploadDocument(c *gin.Context, kind storage.Kind) {
	svc, userID, ok := profileCall(c)
	if !ok {
		return
	}
	rule, _ := storage.RuleFor(kind)

	// margem de 1MB para o envelope multipart
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, rule.MaxBytes+1<<20)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			RespondError(c, storage.ErrTooLarge.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		RespondError(c, "arquivo é obrigatório (campo file)", http.StatusBadRequest)
		return
	}
	if fh.Size > rule.MaxBytes {
		RespondError(c, storage.ErrTooLarge.Error(), http.StatusRequestEntityTooLarge)
		return
	}

	f, err := fh.Open()
	if err != nil {
		RespondError(c, "erro ao ler arquivo", http.StatusBadRequest)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, rule.MaxBytes+1))
	if err != nil {
		RespondError(c, "erro ao ler arquivo", http.StatusBadRequest)
		return
	}

	res, err := svc.UploadDocument(c.Request.Context(), userID, kind, data)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondResult(c, res)
}
