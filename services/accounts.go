package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"socialhub/database"
	"socialhub/models"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const msgWrongCredentials = "Email or password is wrong"

// Same rule gin applies to the email binding tag.
var validate = validator.New()

type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type Accounts struct {
	users  database.UserStore
	tokens TokenIssuer
	cost   int
}

func NewAccounts(users database.UserStore, tokens TokenIssuer) *Accounts {
	return &Accounts{users: users, tokens: tokens, cost: bcrypt.DefaultCost}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (a *Accounts) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, validation("name, email and password are required")
	}
	if err := validate.Var(email, "email"); err != nil {
		return nil, validation("email is not valid")
	}

	// Passwords are stored as bcrypt hashes, never in plain text.
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), a.cost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
		Followers:    []primitive.ObjectID{},
		Following:    []primitive.ObjectID{},
		CreatedAt:    time.Now().UTC(),
	}
	if err := a.users.SaveUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicateKey) {
			return nil, conflict("Email already in use")
		}
		log.Printf("[Register] save failed: %v", err)
		return nil, persistence(err)
	}
	return user, nil
}

// Authenticate checks the credentials and returns a signed token for the user.
func (a *Accounts) Authenticate(ctx context.Context, email, password string) (string, error) {
	user, err := a.users.FindUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, database.ErrNotFound) {
		return "", notFound(msgWrongCredentials)
	}
	if err != nil {
		return "", persistence(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", notFound(msgWrongCredentials)
	}

	token, err := a.tokens.Issue(user.ID.Hex())
	if err != nil {
		log.Printf("[Authenticate] token issue failed: %v", err)
		return "", err
	}
	return token, nil
}
