package usecases

import (
	"context"
	"fmt"
	"time"

	"chatfuse/internal/entities"
	"chatfuse/internal/interfaces"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

type AuthUsecase struct {
	users     interfaces.UserStore
	jwtSecret []byte
}

func NewAuthUsecase(users interfaces.UserStore, secret string) *AuthUsecase {
	return &AuthUsecase{
		users:     users,
		jwtSecret: []byte(secret),
	}
}

// Register creates an account with defaults plan "0" / rol "user" and returns
// it with a fresh token. Duplicate email or phone surfaces as the sentinel
// errors from the store.
func (uc *AuthUsecase) Register(ctx context.Context, email, password, phone string) (*entities.User, string, error) {
	existing, err := uc.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", entities.ErrEmailRegistered
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &entities.User{
		Email:        email,
		PasswordHash: string(hashed),
		Phone:        phone,
		Plan:         "0",
		Rol:          "user",
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := uc.sign(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login authenticates by email or phone. Unknown identity and wrong password
// are distinct errors so the handler can map them to 404 and 403.
func (uc *AuthUsecase) Login(ctx context.Context, email, phone, password string) (*entities.User, string, error) {
	var user *entities.User
	var err error
	if email != "" {
		user, err = uc.users.FindByEmail(ctx, email)
	} else {
		user, err = uc.users.FindByPhone(ctx, phone)
	}
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", entities.ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", entities.ErrInvalidPassword
	}

	token, err := uc.sign(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (uc *AuthUsecase) sign(user *entities.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":    user.ID,
		"email": user.Email,
		"exp":   time.Now().Add(tokenTTL).Unix(),
	})

	tokenString, err := token.SignedString(uc.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %v", err)
	}
	return tokenString, nil
}
