// seed_tenant registra un restaurante con sus credenciales Factus cifradas, o cifra
// las credenciales que quedaron en texto plano de un restaurante existente.
//
// Uso:
//
//	go run ./cmd/seed_tenant --name "La Fonda Paisa" --nit 900373115 --address "Cra 43A # 1-50"
//	go run ./cmd/seed_tenant --encrypt-existing --tenant-id <uuid>
//
// Las credenciales se leen de FACTUS_CLIENT_ID, FACTUS_CLIENT_SECRET, FACTUS_EMAIL y
// FACTUS_PASSWORD para no dejarlas en el historial de la shell.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/jhoicas/gastro-facturacion/internal/application/dto"
	"github.com/jhoicas/gastro-facturacion/internal/application/usecase"
	"github.com/jhoicas/gastro-facturacion/internal/infrastructure/postgres"
	"github.com/jhoicas/gastro-facturacion/pkg/config"
	"github.com/jhoicas/gastro-facturacion/pkg/logger"
	"github.com/jhoicas/gastro-facturacion/pkg/vault"
)

func main() {
	var (
		name            = pflag.String("name", "", "nombre del restaurante")
		nit             = pflag.String("nit", "", "NIT del restaurante")
		address         = pflag.String("address", "", "dirección que sale en la tirilla")
		tenantID        = pflag.String("tenant-id", "", "restaurante existente (con --encrypt-existing)")
		encryptExisting = pflag.Bool("encrypt-existing", false, "cifrar credenciales guardadas en texto plano")
	)
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	if cfg.UsingDevEncryptionKey() {
		log.Warn().Msg("ENCRYPTION_KEY no definido: las credenciales quedan cifradas con la llave de desarrollo")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	v, err := vault.New(cfg.Security.EncryptionKey)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar vault")
	}
	uc := usecase.NewTenantUseCase(postgres.NewTenantRepository(pool), v, log.Component("seed"))

	if *encryptExisting {
		if *tenantID == "" {
			log.Fatal().Msg("--tenant-id es obligatorio con --encrypt-existing")
		}
		n, err := uc.EncryptPlaintextCredentials(ctx, *tenantID)
		if err != nil {
			log.Fatal().Err(err).Str("tenant_id", *tenantID).Msg("cifrar credenciales")
		}
		fmt.Printf("Restaurante %s: %d credenciales cifradas\n", *tenantID, n)
		return
	}

	resp, err := uc.Register(ctx, dto.RegisterTenantRequest{
		Name:    *name,
		NIT:     *nit,
		Address: *address,
		Credentials: dto.FactusCredentialsRequest{
			ClientID:     os.Getenv("FACTUS_CLIENT_ID"),
			ClientSecret: os.Getenv("FACTUS_CLIENT_SECRET"),
			Email:        os.Getenv("FACTUS_EMAIL"),
			Password:     os.Getenv("FACTUS_PASSWORD"),
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("registrar restaurante")
	}
	fmt.Printf("Restaurante registrado: id=%s nit=%s facturación activa=%t\n", resp.ID, resp.NIT, resp.BillingActive)
}
