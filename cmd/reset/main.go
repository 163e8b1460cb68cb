// reset ejecuta el reinicio de fábrica o el cierre de año de una empresa desde la consola del
// operador. Sin --confirm solo muestra lo que haría.
//
// Uso: go run ./cmd/reset --company <id> --user <id> --kind FACTORY|YEAR_END [--dry-run] [--confirm "FRASE"]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/jhoicas/stock-api/internal/application/admin"
	"github.com/jhoicas/stock-api/internal/application/auth"
	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/application/ports"
	"github.com/jhoicas/stock-api/internal/infrastructure/cache"
	"github.com/jhoicas/stock-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-api/pkg/config"
	"github.com/jhoicas/stock-api/pkg/logger"
)

func main() {
	companyID := flag.String("company", "", "ID de la empresa (obligatorio)")
	userID := flag.String("user", "", "ID del usuario que queda en la auditoría (obligatorio)")
	kind := flag.String("kind", admin.KindYearEnd, "FACTORY o YEAR_END")
	dryRun := flag.Bool("dry-run", false, "solo calcula el resultado, sin escribir")
	confirm := flag.String("confirm", "", "frase de confirmación exacta del tipo de reinicio")
	flag.Parse()

	*kind = strings.ToUpper(strings.TrimSpace(*kind))
	if strings.TrimSpace(*companyID) == "" || strings.TrimSpace(*userID) == "" {
		fmt.Fprintln(os.Stderr, "--company y --user son obligatorios")
		os.Exit(2)
	}
	if !*dryRun && *confirm != admin.Phrase(*kind) {
		fmt.Fprintf(os.Stderr, "use --dry-run o --confirm=%q\n", admin.Phrase(*kind))
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	if cfg.Storage.Driver != config.StoragePostgres {
		fmt.Fprintln(os.Stderr, "reset requiere STORAGE_DRIVER=postgres")
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "reset"})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	repos := postgres.NewRepos(pool)

	// El candado en Redis excluye un reinicio simultáneo lanzado por HTTP.
	var (
		locker   ports.Locker
		sessions ports.SessionCache
	)
	if cfg.Redis.Enabled() {
		rdb, err := cache.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		locker = cache.NewLocker(rdb, log)
		sessions = cache.NewSessionCache(rdb)
	} else {
		locker = memory.NewLocker()
		sessions = memory.NewSessionCache()
	}

	authUC := auth.NewAuthUseCase(repos.Users, repos.Roles, sessions, auth.JWTConfig{
		Secret: cfg.JWT.Secret, ExpMinutes: cfg.JWT.Expiration, Issuer: cfg.JWT.Issuer,
	}, log)
	uc := admin.NewResetUseCase(postgres.NewTxRunner(pool), repos, authUC, locker, cfg.Redis.LockTTL, log)

	run := func() (*dto.ResetResponse, error) {
		if *dryRun {
			return uc.Preview(ctx, *companyID, *kind)
		}
		return uc.Execute(ctx, *companyID, *userID, *kind)
	}
	out, err := run()
	if err != nil {
		log.Error().Err(err).Str("company_id", *companyID).Str("kind", *kind).Bool("dry_run", *dryRun).Msg("reset fallido")
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}
