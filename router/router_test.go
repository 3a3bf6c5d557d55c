package router

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"psiconecta/config"
	"psiconecta/controllers"
	dbpkg "psiconecta/db"
	"psiconecta/models"
	"psiconecta/storage"
	"psiconecta/wizard"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	db     *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database, err := gorm.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	database.DB().SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close() })
	if err := dbpkg.Migrate(database); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	var cfg config.Configuration
	cfg.Security.JwtSecret = "test-secret"
	cfg.Security.AccessTokenTTLMinutes = 5
	cfg.Security.BcryptCost = 4
	controllers.SetConfigurations(cfg)

	files := storage.NewLocal(t.TempDir(), "http://localhost:8080/uploads")
	svc := wizard.New(dbpkg.NewProfileStore(database), files, nil)

	r := gin.New()
	Initialize(r, cfg, database, svc)
	return &testServer{t: t, engine: r, db: database}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) signup(email string) (int64, string) {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/users", "", map[string]string{
		"name":     "Ana Souza",
		"email":    email,
		"password": "segredo123",
		"phone1":   "(11) 98765-4321",
	})
	if w.Code != http.StatusOK {
		s.t.Fatalf("POST /api/users = %d %s", w.Code, w.Body.String())
	}
	var user models.User
	json.Unmarshal(w.Body.Bytes(), &user)

	w = s.do(http.MethodPost, "/api/login", "", map[string]string{"email": email, "password": "segredo123"})
	if w.Code != http.StatusOK {
		s.t.Fatalf("POST /api/login = %d %s", w.Code, w.Body.String())
	}
	var login controllers.LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &login); err != nil || login.Token == "" {
		s.t.Fatalf("login response = %s", w.Body.String())
	}
	return user.ID, login.Token
}

type resultBody struct {
	Allowed bool `json:"allowed"`
	Excess  []struct {
		Category string `json:"category"`
		Value    string `json:"value"`
	} `json:"excess"`
	Missing  []string `json:"missing"`
	Remedies []string `json:"remedies"`
	Profile  struct {
		AvatarURL string `json:"avatar_url"`
	} `json:"profile"`
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder) resultBody {
	t.Helper()
	var r resultBody
	if err := json.Unmarshal(w.Body.Bytes(), &r); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return r
}

func TestSignupCreatesEmptyProfile(t *testing.T) {
	s := newTestServer(t)
	userID, _ := s.signup("ana@example.com")

	var p models.Professional
	if err := s.db.Where("user_id = ?", userID).First(&p).Error; err != nil {
		t.Fatalf("professional row missing: %v", err)
	}
	var u models.User
	s.db.First(&u, userID)
	if u.Phone1 != "5511987654321" {
		t.Fatalf("phone1 = %q, want normalized", u.Phone1)
	}
	if u.Password == "segredo123" {
		t.Fatalf("password stored in clear text")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	s := newTestServer(t)
	s.signup("ana@example.com")

	w := s.do(http.MethodPost, "/api/login", "", map[string]string{"email": "ana@example.com", "password": "errada"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("login = %d, want 401", w.Code)
	}
}

func TestProfileRequiresToken(t *testing.T) {
	s := newTestServer(t)
	if w := s.do(http.MethodGet, "/api/profile", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("GET /api/profile = %d, want 401", w.Code)
	}
	if w := s.do(http.MethodGet, "/api/profile", "not-a-jwt", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("GET /api/profile with bad token = %d, want 401", w.Code)
	}
}

func TestGetPlansIncludesLimits(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/api/plans", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/plans = %d", w.Code)
	}
	var body struct {
		Plans []struct {
			Tier   string `json:"tier"`
			Limits struct {
				MaxSpecialties int `json:"max_specialties"`
			} `json:"limits"`
		} `json:"plans"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if len(body.Plans) != 2 || body.Plans[0].Tier != "basic" || body.Plans[0].Limits.MaxSpecialties != 5 {
		t.Fatalf("plans = %+v", body.Plans)
	}
}

func TestSelectionFlow(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signup("ana@example.com")

	if w := s.do(http.MethodPost, "/api/profile/plan", token, map[string]string{"tier": "basic"}); w.Code != http.StatusOK {
		t.Fatalf("choose basic = %d %s", w.Code, w.Body.String())
	}

	w := s.do(http.MethodPost, "/api/profile/selections", token, map[string]string{
		"category": "age_group", "value": "criancas", "action": "add",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("add criancas on basic = %d, want 422", w.Code)
	}
	res := decodeResult(t, w)
	if res.Allowed || len(res.Excess) != 1 || res.Excess[0].Value != "criancas" {
		t.Fatalf("denial body = %+v", res)
	}

	w = s.do(http.MethodPost, "/api/profile/selections", token, map[string]string{
		"category": "specialty", "value": "ansiedade",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("add specialty = %d %s", w.Code, w.Body.String())
	}

	w = s.do(http.MethodPost, "/api/profile/selections", token, map[string]string{
		"category": "hobby", "value": "xadrez",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown category = %d, want 400", w.Code)
	}

	if w := s.do(http.MethodGet, "/api/profile/plan/preview?tier=premium", token, nil); w.Code != http.StatusOK {
		t.Fatalf("preview premium = %d", w.Code)
	}
	if w := s.do(http.MethodGet, "/api/profile/plan/preview?tier=gold", token, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("preview gold = %d, want 400", w.Code)
	}
}

func TestSavePhaseAndSubmit(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signup("ana@example.com")

	w := s.do(http.MethodPut, "/api/profile/phases/1", token, map[string]any{
		"specialties":         []string{"ansiedade"},
		"approaches":          []string{"TCC"},
		"education":           []map[string]any{{"title": "Psicologia", "year": 2015}},
		"short_bio":           "Psicóloga clínica",
		"full_bio":            "Atendimento para adultos.",
		"session_price_cents": 15000,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("save phase 1 = %d %s", w.Code, w.Body.String())
	}
	if w := s.do(http.MethodPost, "/api/profile/phases/1/advance", token, nil); w.Code != http.StatusOK {
		t.Fatalf("advance phase 1 = %d %s", w.Code, w.Body.String())
	}
	if w := s.do(http.MethodPost, "/api/profile/phases/2/advance", token, nil); w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("advance phase 2 = %d, want 422", w.Code)
	}
	if w := s.do(http.MethodPut, "/api/profile/phases/9", token, map[string]any{}); w.Code != http.StatusBadRequest {
		t.Fatalf("save phase 9 = %d, want 400", w.Code)
	}

	w = s.do(http.MethodPost, "/api/profile/submit", token, nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("submit incomplete = %d, want 422", w.Code)
	}
	if res := decodeResult(t, w); len(res.Missing) == 0 {
		t.Fatalf("submit body has no missing fields: %s", w.Body.String())
	}

	w = s.do(http.MethodGet, "/api/me", token, nil)
	var me struct {
		Menu string `json:"menu"`
	}
	json.Unmarshal(w.Body.Bytes(), &me)
	if me.Menu != controllers.MenuCompleteProfile {
		t.Fatalf("menu = %q, want %q", me.Menu, controllers.MenuCompleteProfile)
	}
}

func TestUploadAvatar(t *testing.T) {
	s := newTestServer(t)
	userID, token := s.signup("ana@example.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "foto.png")
	fw.Write(pngBytes)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/profile/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("upload avatar = %d %s", w.Code, w.Body.String())
	}
	res := decodeResult(t, w)
	var u models.User
	s.db.First(&u, userID)
	if res.Profile.AvatarURL == "" || u.ProfileImageURL != res.Profile.AvatarURL {
		t.Fatalf("avatar url %q not mirrored on account (%q)", res.Profile.AvatarURL, u.ProfileImageURL)
	}
}

func TestUploadRejectsPDFAvatar(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signup("ana@example.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "crp.pdf")
	fw.Write([]byte("%PDF-1.4\n%âãÏÓ\n"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/profile/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("pdf avatar = %d, want 415", w.Code)
	}
}

func TestAdminExcessReport(t *testing.T) {
	s := newTestServer(t)
	userID, token := s.signup("ana@example.com")

	url := "/api/admin/professionals/" + strconv.FormatInt(userID, 10) + "/excess"
	if w := s.do(http.MethodGet, url, token, nil); w.Code != http.StatusForbidden {
		t.Fatalf("non-admin = %d, want 403", w.Code)
	}

	s.db.Model(&models.User{}).Where("id = ?", userID).Update("admin", true)
	w := s.do(http.MethodGet, url, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin = %d %s", w.Code, w.Body.String())
	}
	var report controllers.ExcessReport
	json.Unmarshal(w.Body.Bytes(), &report)
	if report.UserID != userID || len(report.Excess) != 0 {
		t.Fatalf("report = %+v", report)
	}

	if w := s.do(http.MethodGet, "/api/admin/professionals/999/excess", token, nil); w.Code != http.StatusNotFound {
		t.Fatalf("unknown professional = %d, want 404", w.Code)
	}
}

func (s *testServer) upload(path, token, filename string, data []byte) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", filename)
	fw.Write(data)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func TestUploadDocumentByKind(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signup("ana@example.com")

	w := s.upload("/api/profile/documents/crp_document", token, "crp.pdf", []byte("%PDF-1.4\n%âãÏÓ\n"))
	if w.Code != http.StatusOK {
		t.Fatalf("crp pdf = %d %s", w.Code, w.Body.String())
	}

	w = s.upload("/api/profile/documents/selfie", token, "x.png", pngBytes)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown kind = %d, want 400", w.Code)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d %s", w.Code, w.Body.String())
	}
	var body map[string]string
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["cache"] != "off" {
		t.Fatalf("cache = %q, want off without redis", body["cache"])
	}
}
