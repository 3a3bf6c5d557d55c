package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"psiconecta/cache"
	"psiconecta/config"
	"psiconecta/controllers"
	dbpkg "psiconecta/db"
	"psiconecta/models"
	"psiconecta/router"
	"psiconecta/storage"
	"psiconecta/wizard"
	"psiconecta/workers"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

// =====================
// ENV (sobrescrevem o config.json)
// =====================
//
// - PORT, DATABASE, DB_HOST, DB_PORT, DB_USER, DB_NAME, DB_PASS
// - JWT_SECRET, JWT_ACCESS_TTL_MINUTES
// - REDIS_ADDR, REDIS_PASSWORD, REDIS_DB   (REDIS_ADDR vazio desliga o cache)
// - STORAGE_DRIVER (local|s3), STORAGE_BUCKET, STORAGE_ENDPOINT, STORAGE_PUBLIC_BASE_URL, AWS_REGION
// - CORS_ORIGINS (separadas por vírgula)
// - AUTOMIGRATE=1 migra junto com o serve
//
// =====================

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "psiconecta",
		Short:         "API do cadastro de profissionais (planos e completude do perfil)",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.json", "Caminho do arquivo de configuração")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Sobe a API HTTP e o worker de completude",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Cria/atualiza as tabelas e o catálogo de planos",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	}

	var auditAll, failOnExcess bool
	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Lista cadastros que excedem o próprio plano (JSON por linha)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd.OutOrStdout(), auditAll, failOnExcess)
		},
	}
	auditCmd.Flags().BoolVar(&auditAll, "all", false, "Inclui cadastros sem excesso")
	auditCmd.Flags().BoolVar(&failOnExcess, "fail-on-excess", false, "Sai com código 2 se algum cadastro exceder o plano")

	root.AddCommand(serveCmd, migrateCmd, auditCmd)

	if err := root.Execute(); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, ee.msg)
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func setup() (config.Configuration, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	dbpkg.SetConfigurations(cfg)
	controllers.SetConfigurations(cfg)
	return cfg, nil
}

func runServe() error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	if closeLog := setupLogFile(cfg.LogPath); closeLog != nil {
		defer closeLog()
	}

	database, err := dbpkg.Connect()
	if err != nil {
		return err
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	files, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	var nav wizard.Navigator
	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			// navegação cai para a flag do banco
			log.Printf("redis indisponível, seguindo sem cache: %v", err)
		} else {
			defer rdb.Close()
			nav = rdb
			controllers.SetNavigationCache(rdb)
		}
	}

	store := dbpkg.NewProfileStore(database)
	svc := wizard.New(store, files, nav)

	workers.StartCompletenessWorker(ctx, store, nav,
		time.Duration(cfg.Worker.CompletenessIntervalSeconds)*time.Second, cfg.Worker.BatchSize)

	r := gin.New()
	router.Initialize(r, cfg, database, svc)

	srv := &http.Server{
		Addr:              ":" + cfg.ApiPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Psiconecta listening on :%s", cfg.ApiPort)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runMigrate() error {
	if _, err := setup(); err != nil {
		return err
	}
	database, err := dbpkg.Connect()
	if err != nil {
		return err
	}
	defer database.Close()

	if err := dbpkg.Migrate(database); err != nil {
		return err
	}
	log.Printf("migrate: ok")
	return nil
}

func runAudit(out io.Writer, all, failOnExcess bool) error {
	if _, err := setup(); err != nil {
		return err
	}
	database, err := dbpkg.Connect()
	if err != nil {
		return err
	}
	defer database.Close()

	enc := json.NewEncoder(out)
	flagged := 0
	err = dbpkg.NewProfileStore(database).Each(context.Background(), 200, func(p models.Professional) error {
		report := controllers.BuildExcessReport(p.UserID, p.Complete, p.Snapshot())
		if len(report.Excess) > 0 {
			flagged++
		} else if !all {
			return nil
		}
		return enc.Encode(report)
	})
	if err != nil {
		return err
	}

	log.Printf("audit: %d cadastro(s) excedendo o plano", flagged)
	if failOnExcess && flagged > 0 {
		return &exitErr{code: 2, msg: fmt.Sprintf("%d cadastro(s) excedendo o plano", flagged)}
	}
	return nil
}

// setupLogFile duplica o log para o arquivo configurado. Devolve nil se não
// conseguir abrir (segue só no stderr).
func setupLogFile(path string) func() {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Printf("log: %v", err)
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("log: %v", err)
		return nil
	}
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	gin.DefaultWriter = io.MultiWriter(os.Stdout, f)
	return func() { f.Close() }
}
