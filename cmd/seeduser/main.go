// Command seeduser creates a user, or resets its password when it already exists.
//
//	go run ./cmd/seeduser -username joao -nome "João" -role VENDEDOR -password segredo
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"barcontrol/internal/config"
	"barcontrol/internal/model"
	"barcontrol/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	username := flag.String("username", cfg.SeedAdminUsername, "login")
	nome := flag.String("nome", cfg.SeedAdminName, "nome de exibição")
	password := flag.String("password", cfg.SeedAdminPassword, "senha em texto puro")
	role := flag.String("role", model.RoleAdmin, "ADMIN, VENDEDOR ou CAIXA")
	flag.Parse()

	switch *role {
	case model.RoleAdmin, model.RoleVendedor, model.RoleCaixa:
	default:
		log.Fatal().Str("role", *role).Msg("role inválida")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt error")
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("db connect error")
	}

	ctx := context.Background()
	usuarios := repository.NewUsuarioRepository(db)
	exists, err := usuarios.ExistsUsername(ctx, *username)
	if err != nil {
		log.Fatal().Err(err).Msg("lookup error")
	}

	if exists {
		res := db.WithContext(ctx).Model(&model.Usuario{}).
			Where("username = ?", *username).
			Updates(map[string]interface{}{
				"password_hash": string(hash),
				"nome":          *nome,
				"role":          *role,
				"ativo":         true,
			})
		if res.Error != nil {
			log.Fatal().Err(res.Error).Msg("update error")
		}
		fmt.Printf("Usuário '%s' atualizado (%s)\n", *username, *role)
		return
	}

	if err := usuarios.Create(ctx, &model.Usuario{
		ID:           uuid.New(),
		Username:     *username,
		Nome:         *nome,
		PasswordHash: string(hash),
		Role:         *role,
		Ativo:        true,
	}); err != nil {
		log.Fatal().Err(err).Msg("insert error")
	}
	fmt.Printf("Usuário '%s' criado (%s)\n", *username, *role)
}
