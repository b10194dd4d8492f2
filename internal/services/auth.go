package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sbilibin2017/netflox-api/internal/logger"
	"github.com/sbilibin2017/netflox-api/internal/models"
	"github.com/sbilibin2017/netflox-api/internal/storage"
	"github.com/segmentio/kafka-go"
	"golang.org/x/crypto/bcrypt"
)

//go:generate mockgen -source=auth.go -destination=auth_mock.go -package=services

// DefaultHashCost is the bcrypt work factor used unless configured otherwise.
const DefaultHashCost = 10

// Error variables
var (
	ErrValidation         = errors.New("required fields are missing")
	ErrDuplicateEmail     = errors.New("email is already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRegistration       = errors.New("registration failed")
	ErrQuery              = errors.New("user query failed")
)

// UserReader defines read operations for users.
type UserReader interface {
	GetByEmail(ctx context.Context, email string) (*models.UserDB, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Save(ctx context.Context, u models.NewUser) (int64, error)
}

// JWTGenerator defines an interface for generating JWT tokens.
type JWTGenerator interface {
	Generate(ctx context.Context, userID int64) (string, error)
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// AuthService handles registration and login.
type AuthService struct {
	reader      UserReader
	writer      UserWriter
	jwt         JWTGenerator
	hashCost    int
	kafkaWriter KafkaWriter
	now         func() time.Time
}

// AuthOpt configures an AuthService.
type AuthOpt func(*AuthService)

// WithHashCost sets the bcrypt cost.
func WithHashCost(cost int) AuthOpt {
	return func(s *AuthService) {
		s.hashCost = cost
	}
}

// WithKafkaWriter enables publishing of registration events.
func WithKafkaWriter(w KafkaWriter) AuthOpt {
	return func(s *AuthService) {
		s.kafkaWriter = w
	}
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(reader UserReader, writer UserWriter, jwt JWTGenerator, opts ...AuthOpt) *AuthService {
	svc := &AuthService{
		reader:   reader,
		writer:   writer,
		jwt:      jwt,
		hashCost: DefaultHashCost,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Register validates the input, hashes the password and stores a new user.
// An empty phone is stored as NULL.
func (svc *AuthService) Register(ctx context.Context, username, email, phone, password string) error {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if err := requireFields(
		field{"username", username},
		field{"email", email},
		field{"password", password},
	); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), svc.hashCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return fmt.Errorf("%w: %w", ErrRegistration, err)
	}

	u := models.NewUser{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if phone = strings.TrimSpace(phone); phone != "" {
		u.Phone = &phone
	}

	id, err := svc.writer.Save(ctx, u)
	if err != nil {
		if errors.Is(err, storage.ErrUniqueViolation) {
			logger.Log.Infow("email already registered", "email", email)
			return ErrDuplicateEmail
		}
		logger.Log.Errorw("failed to save user", "email", email, "err", err)
		return fmt.Errorf("%w: %w", ErrRegistration, err)
	}

	logger.Log.Infow("user registered", "user_id", id, "email", email)
	svc.publishRegistered(ctx, models.UserRegisteredEvent{
		UserID:       id,
		Username:     username,
		Email:        email,
		RegisteredAt: svc.now().Unix(),
	})
	return nil
}

// Login verifies the credentials and returns a signed token with the public user fields.
func (svc *AuthService) Login(ctx context.Context, email, password string) (string, *models.PublicUser, error) {
	email = strings.TrimSpace(email)
	if err := requireFields(field{"email", email}, field{"password", password}); err != nil {
		return "", nil, err
	}

	user, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to get user", "email", email, "err", err)
		return "", nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	if user == nil {
		logger.Log.Infow("user does not exist", "email", email)
		return "", nil, ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Log.Infow("invalid credentials", "email", email)
		return "", nil, ErrInvalidCredentials
	}

	token, err := svc.jwt.Generate(ctx, user.UserID)
	if err != nil {
		logger.Log.Errorw("failed to generate JWT", "user_id", user.UserID, "err", err)
		return "", nil, err
	}

	return token, &models.PublicUser{Username: user.Username, Email: user.Email}, nil
}

// publishRegistered sends the event to Kafka. Failures are logged only.
func (svc *AuthService) publishRegistered(ctx context.Context, event models.UserRegisteredEvent) {
	if svc.kafkaWriter == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("failed to marshal registration event", "user_id", event.UserID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.UserID, 10)),
		Value: data,
	}
	if err := svc.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("failed to publish registration event", "user_id", event.UserID, "error", err)
		return
	}
	logger.Log.Debugw("registration event published", "user_id", event.UserID)
}

type field struct {
	name  string
	value string
}

func requireFields(fields ...field) error {
	var missing []string
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}
