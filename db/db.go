package db

import (
	"log"
	"os"
	"path/filepath"

	"psiconecta/config"
	"psiconecta/models"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
)

var conf config.Configuration

func SetConfigurations(configuration config.Configuration) {
	conf = configuration
}

// Connect abre conexão com DB (sqlite3 por padrão).
// O schema é criado pelo comando migrate; para migrar junto com o serve em
// ambiente de dev, exporte AUTOMIGRATE=1.
func Connect() (*gorm.DB, error) {
	database := conf.Database
	if database == "" {
		database = "sqlite3"
	}

	var (
		db  *gorm.DB
		err error
	)

	if database == "postgres" || database == "postgresql" {
		log.Println("Utilizando conexão com o postgresql...")
		path := "host=" + conf.DbHost + " port=" + conf.DbPort
		path += " user=" + conf.DbUser + " dbname=" + conf.DbName
		path += " password=" + conf.DbPass + " sslmode=disable"
		db, err = gorm.Open("postgres", path)
	} else {
		log.Println("Utilizando conexão com o sqlite3...")
		file := conf.DbName
		if file == "" {
			file = "db/database.db"
		}
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return nil, err
		}
		db, err = gorm.Open("sqlite3", file)
	}

	if err != nil {
		log.Println("Got error when connect database, the error is: " + err.Error())
		return nil, err
	}

	// Log em dev
	db.LogMode(os.Getenv("DB_LOG") == "1")

	if os.Getenv("AUTOMIGRATE") == "1" {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}

	return db, nil
}

// Migrate cria/atualiza as tabelas e garante o catálogo de planos.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Professional{},
		&models.Plan{},
	).Error
	if err != nil {
		return err
	}
	return SeedPlans(db)
}

// SeedPlans insere os planos padrão que ainda não existem. Planos já
// cadastrados (e possivelmente editados pelo admin) não são tocados.
func SeedPlans(db *gorm.DB) error {
	for _, p := range models.DefaultPlans() {
		plan := p
		if err := db.Where("tier = ?", plan.Tier).FirstOrCreate(&plan).Error; err != nil {
			return err
		}
	}
	return nil
}
