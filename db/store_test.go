package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"psiconecta/entitlement"
	"psiconecta/models"
	"psiconecta/wizard"

	"github.com/jinzhu/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// :memory: é por conexão
	database.DB().SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close() })

	if err := Migrate(database); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return database
}

func createUser(t *testing.T, database *gorm.DB, email string) models.User {
	t.Helper()
	u := models.User{Name: "Ana", Email: email, Password: "x", Phone1: "5511999990000"}
	if err := database.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := CreateProfile(database, u.ID); err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return u
}

func TestMigrateSeedsPlansOnce(t *testing.T) {
	database := openTestDB(t)
	if err := SeedPlans(database); err != nil {
		t.Fatalf("SeedPlans: %v", err)
	}
	var count int
	database.Model(&models.Plan{}).Count(&count)
	if count != len(models.DefaultPlans()) {
		t.Fatalf("plans = %d, want %d", count, len(models.DefaultPlans()))
	}
}

func TestLoadNewProfile(t *testing.T) {
	database := openTestDB(t)
	u := createUser(t, database, "ana@example.com")
	store := NewProfileStore(database)

	s, err := store.LoadProfile(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if len(s.Modalities) != 1 || s.Modalities[0] != entitlement.ModalityOnline {
		t.Fatalf("modalities = %v, want [online]", s.Modalities)
	}

	if _, err := store.LoadProfile(context.Background(), 999); !errors.Is(err, wizard.ErrProfileNotFound) {
		t.Fatalf("LoadProfile(999) error = %v, want ErrProfileNotFound", err)
	}
}

func TestSaveProfileOnlyListedFields(t *testing.T) {
	database := openTestDB(t)
	u := createUser(t, database, "ana@example.com")
	store := NewProfileStore(database)
	ctx := context.Background()

	values := entitlement.NewSnapshot()
	values.Specialties = []string{"ansiedade", "luto"}
	values.ShortBio = "não deve ser gravada"
	values.Education = []entitlement.Education{{Title: "Psicologia", Year: 2012}}

	err := store.SaveProfile(ctx, u.ID, wizard.Patch{
		Fields: []entitlement.Field{entitlement.FieldSpecialties, entitlement.FieldEducation},
		Values: values,
	})
	if err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}

	got, _ := store.LoadProfile(ctx, u.ID)
	if len(got.Specialties) != 2 || got.Specialties[1] != "luto" {
		t.Fatalf("specialties = %v", got.Specialties)
	}
	if len(got.Education) != 1 || got.Education[0].Year != 2012 {
		t.Fatalf("education = %+v", got.Education)
	}
	if got.ShortBio != "" {
		t.Fatalf("short bio = %q, want untouched", got.ShortBio)
	}

	err = store.SaveProfile(ctx, 999, wizard.Patch{Fields: []entitlement.Field{entitlement.FieldPixKey}})
	if !errors.Is(err, wizard.ErrProfileNotFound) {
		t.Fatalf("SaveProfile(999) error = %v, want ErrProfileNotFound", err)
	}
}

func TestSaveAvatarUpdatesBothTables(t *testing.T) {
	database := openTestDB(t)
	u := createUser(t, database, "ana@example.com")
	store := NewProfileStore(database)
	url := "https://cdn.example.com/avatars/1/a.png"

	if err := store.SaveAvatar(context.Background(), u.ID, url); err != nil {
		t.Fatalf("SaveAvatar: %v", err)
	}

	var user models.User
	database.First(&user, u.ID)
	if user.ProfileImageURL != url {
		t.Fatalf("user.ProfileImageURL = %q, want %q", user.ProfileImageURL, url)
	}
	s, _ := store.LoadProfile(context.Background(), u.ID)
	if s.AvatarURL != url {
		t.Fatalf("professional.AvatarURL = %q, want %q", s.AvatarURL, url)
	}
}

func TestSaveAvatarRollsBackWithoutUser(t *testing.T) {
	database := openTestDB(t)
	// cadastro órfão: sem linha em users
	if _, err := CreateProfile(database, 42); err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}
	store := NewProfileStore(database)

	err := store.SaveAvatar(context.Background(), 42, "https://cdn.example.com/a.png")
	if !errors.Is(err, wizard.ErrProfileNotFound) {
		t.Fatalf("SaveAvatar error = %v, want ErrProfileNotFound", err)
	}
	s, _ := store.LoadProfile(context.Background(), 42)
	if s.AvatarURL != "" {
		t.Fatalf("avatar_url = %q, want rolled back", s.AvatarURL)
	}
}

func TestStaleAndMarkCompleteness(t *testing.T) {
	database := openTestDB(t)
	a := createUser(t, database, "a@example.com")
	createUser(t, database, "b@example.com")
	store := NewProfileStore(database)
	ctx := context.Background()

	stale, err := store.Stale(ctx, 10)
	if err != nil {
		t.Fatalf("Stale: %v", err)
	}
	if len(stale) != 2 {
		t.Fatalf("stale = %d, want 2", len(stale))
	}

	store.now = func() time.Time { return time.Now().Add(time.Hour) }
	if err := store.MarkCompleteness(ctx, a.ID, entitlement.Completeness{Overall: true}); err != nil {
		t.Fatalf("MarkCompleteness: %v", err)
	}
	stale, _ = store.Stale(ctx, 10)
	if len(stale) != 1 || stale[0].UserID == a.ID {
		t.Fatalf("stale after mark = %+v, want only b", stale)
	}

	p, _ := store.Professional(ctx, a.ID)
	if !p.Complete {
		t.Fatalf("complete flag not written")
	}
}

func TestEachVisitsEveryProfile(t *testing.T) {
	database := openTestDB(t)
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		createUser(t, database, email)
	}
	store := NewProfileStore(database)

	var seen int
	err := store.Each(context.Background(), 2, func(models.Professional) error {
		seen++
		return nil
	})
	if err != nil {
		t.Fatalf("Each: %v", err)
	}
	if seen != 3 {
		t.Fatalf("seen = %d, want 3", seen)
	}
}

func TestCanceledContext(t *testing.T) {
	database := openTestDB(t)
	store := NewProfileStore(database)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.LoadProfile(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("LoadProfile error = %v, want context.Canceled", err)
	}
}
