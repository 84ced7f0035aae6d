package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"barcontrol/internal/config"
	"barcontrol/internal/dto"
	"barcontrol/internal/model"
	"barcontrol/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	CriarUsuario(ctx context.Context, req dto.CriarUsuarioRequest) (*dto.UsuarioResponse, error)
	ListarUsuarios(ctx context.Context) ([]dto.UsuarioResponse, error)
	// GarantirAdmin creates the bootstrap admin when the username is still free.
	GarantirAdmin(ctx context.Context, username, password, nome string) (bool, error)
}

type authService struct {
	repo repository.UsuarioRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.UsuarioRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	ttl := time.Duration(s.cfg.JWTExpirationHours) * time.Hour
	token, err := s.generateToken(user, ttl)
	if err != nil {
		return nil, fmt.Errorf("assinando token: %w", err)
	}
	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(ttl.Seconds()),
		User:        usuarioToResponse(user),
	}, nil
}

func (s *authService) CriarUsuario(ctx context.Context, req dto.CriarUsuarioRequest) (*dto.UsuarioResponse, error) {
	username := strings.TrimSpace(req.Username)
	exists, err := s.repo.ExistsUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("verificando usuário: %w", err)
	}
	if exists {
		return nil, newErr(KindConflict, "Usuário %s já existe", username)
	}
	user, err := s.novoUsuario(username, req.Password, req.Nome, req.Role)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("criando usuário: %w", err)
	}
	resp := usuarioToResponse(user)
	return &resp, nil
}

func (s *authService) ListarUsuarios(ctx context.Context) ([]dto.UsuarioResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listando usuários: %w", err)
	}
	resp := make([]dto.UsuarioResponse, len(users))
	for i := range users {
		resp[i] = usuarioToResponse(&users[i])
	}
	return resp, nil
}

func (s *authService) GarantirAdmin(ctx context.Context, username, password, nome string) (bool, error) {
	exists, err := s.repo.ExistsUsername(ctx, username)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	user, err := s.novoUsuario(username, password, nome, model.RoleAdmin)
	if err != nil {
		return false, err
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return false, err
	}
	return true, nil
}

func (s *authService) novoUsuario(username, password, nome, role string) (*model.Usuario, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("gerando hash: %w", err)
	}
	now := time.Now()
	return &model.Usuario{
		ID:           uuid.New(),
		Username:     username,
		Nome:         strings.TrimSpace(nome),
		PasswordHash: string(hash),
		Role:         role,
		Ativo:        true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (s *authService) generateToken(user *model.Usuario, duration time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":  user.ID.String(),
		"username": user.Username,
		"role":     user.Role,
		"exp":      now.Add(duration).Unix(),
		"iat":      now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func usuarioToResponse(u *model.Usuario) dto.UsuarioResponse {
	return dto.UsuarioResponse{
		ID:       u.ID.String(),
		Username: u.Username,
		Nome:     u.Nome,
		Role:     u.Role,
		Ativo:    u.Ativo,
	}
}
