package auth

import (
	"context"
	"errors"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"SIMAPRO-backend/internal/platform/apierr"
	"SIMAPRO-backend/internal/platform/db"
)

type Clock interface{ Now() time.Time }
type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

const minPasswordLen = 8

var errBadCredentials = apierr.ErrUnauthorized("メールアドレスまたはパスワードが間違っています")

type Service struct {
	store  UserStore
	secret []byte
	ttl    time.Duration
	clock  Clock
}

func NewService(store UserStore, secret []byte, ttl time.Duration) *Service {
	return &Service{store: store, secret: secret, ttl: ttl, clock: realClock{}}
}

// WithClock はテスト用
func (s *Service) WithClock(c Clock) *Service { s.clock = c; return s }

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.store.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, errBadCredentials
	}
	if u.Status != StatusActive {
		return nil, apierr.ErrForbidden("account disabled")
	}

	now := s.clock.Now()
	exp := now.Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      strconv.FormatUint(u.ID, 10),
		"role":     u.Role,
		"verified": u.Verified(),
		"iat":      now.Unix(),
		"exp":      exp.Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: signed, ExpiresAt: exp, User: u}, nil
}

type RegisterInput struct {
	Name       string  `json:"name" binding:"required"`
	Email      string  `json:"email" binding:"required"`
	Password   string  `json:"password" binding:"required"`
	Role       string  `json:"role,omitempty"` // 未指定なら user
	EmployeeID *string `json:"employee_id,omitempty"`
	Department *string `json:"department,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Verified   bool    `json:"verified,omitempty"`
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	fields := map[string]string{}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" {
		fields["name"] = "The name field is required."
	}
	if _, err := mail.ParseAddress(in.Email); err != nil || in.Email == "" {
		fields["email"] = "Please provide a valid email address."
	}
	if len(in.Password) < minPasswordLen {
		fields["password"] = "The password must be at least 8 characters."
	}
	if in.Role == "" {
		in.Role = RoleUser
	}
	if !ValidRole(in.Role) {
		fields["role"] = "The selected role is invalid."
	}
	if err := apierr.ErrValidation(fields); err != nil {
		return nil, err
	}

	exists, err := s.store.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if exists != nil {
		return nil, apierr.ErrConflict("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         in.Role,
		EmployeeID:   in.EmployeeID,
		Department:   in.Department,
		Phone:        in.Phone,
		Status:       StatusActive,
		CreatedAt:    s.clock.Now(),
	}
	if in.Verified {
		at := s.clock.Now()
		u.EmailVerifiedAt = &at
	}
	id, err := s.store.Create(ctx, u)
	if err != nil {
		if db.ErrorNumber(err) == db.ErDupEntry {
			return nil, apierr.ErrConflict("email already registered")
		}
		return nil, err
	}
	u.ID = id
	return u, nil
}

func (s *Service) Get(ctx context.Context, id uint64) (*User, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apierr.ErrNotFound("user not found")
	}
	return u, nil
}

// Verify sets email_verified_at once; calling it again keeps the first time.
func (s *Service) Verify(ctx context.Context, id uint64) (*User, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if _, err := s.store.MarkVerified(ctx, id, s.clock.Now()); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) SetStatus(ctx context.Context, id uint64, status string) (*User, error) {
	if status != StatusActive && status != StatusInactive {
		return nil, apierr.ErrInvalid("status must be active or inactive")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if _, err := s.store.SetStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Claims は検証済みトークンの中身
type Claims struct {
	UserID   uint64
	Role     string
	Verified bool
}

func ParseToken(secret []byte, tokenStr string) (*Claims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		// alg 固定（none攻撃とか回避）
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || token == nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	sub, _ := mc["sub"].(string)
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || id == 0 {
		return nil, errors.New("invalid sub")
	}
	role, _ := mc["role"].(string)
	verified, _ := mc["verified"].(bool)
	return &Claims{UserID: id, Role: role, Verified: verified}, nil
}
