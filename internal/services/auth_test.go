package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/netflox-api/internal/models"
	"github.com/sbilibin2017/netflox-api/internal/services"
	"github.com/sbilibin2017/netflox-api/internal/storage"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name       string
		username   string
		email      string
		phone      string
		password   string
		expectSave bool
		writerErr  error
		wantErr    error
	}{
		{
			name:       "successful registration",
			username:   "alice",
			email:      "a@x.com",
			phone:      "+15550100",
			password:   "pw123456",
			expectSave: true,
		},
		{
			name:     "missing username",
			email:    "a@x.com",
			password: "pw123456",
			wantErr:  services.ErrValidation,
		},
		{
			name:     "blank email",
			username: "alice",
			email:    "   ",
			password: "pw123456",
			wantErr:  services.ErrValidation,
		},
		{
			name:     "missing password",
			username: "alice",
			email:    "a@x.com",
			wantErr:  services.ErrValidation,
		},
		{
			name:       "duplicate email",
			username:   "bob",
			email:      "a@x.com",
			password:   "pw123456",
			expectSave: true,
			writerErr:  fmt.Errorf("%w: dup", storage.ErrUniqueViolation),
			wantErr:    services.ErrDuplicateEmail,
		},
		{
			name:       "store failure",
			username:   "carol",
			email:      "c@x.com",
			password:   "pw123456",
			expectSave: true,
			writerErr:  fmt.Errorf("%w: disk I/O error", storage.ErrConnectivity),
			wantErr:    services.ErrRegistration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockReader := services.NewMockUserReader(ctrl)
			mockWriter := services.NewMockUserWriter(ctrl)
			mockJWT := services.NewMockJWTGenerator(ctrl)
			svc := services.NewAuthService(mockReader, mockWriter, mockJWT, services.WithHashCost(bcrypt.MinCost))

			if tt.expectSave {
				mockWriter.EXPECT().
					Save(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, u models.NewUser) (int64, error) {
						assert.Equal(t, tt.username, u.Username)
						assert.Equal(t, tt.email, u.Email)
						assert.NotEqual(t, tt.password, u.PasswordHash)
						assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(tt.password)))
						if tt.phone == "" {
							assert.Nil(t, u.Phone)
						} else {
							require.NotNil(t, u.Phone)
							assert.Equal(t, tt.phone, *u.Phone)
						}
						return 1, tt.writerErr
					})
			}

			err := svc.Register(context.Background(), tt.username, tt.email, tt.phone, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAuthService_RegisterUsesConfiguredCost(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWriter := services.NewMockUserWriter(ctrl)
	svc := services.NewAuthService(services.NewMockUserReader(ctrl), mockWriter, services.NewMockJWTGenerator(ctrl))

	var saved models.NewUser
	mockWriter.EXPECT().
		Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, u models.NewUser) (int64, error) {
			saved = u
			return 1, nil
		})

	require.NoError(t, svc.Register(context.Background(), "alice", "a@x.com", "", "pw123456"))

	cost, err := bcrypt.Cost([]byte(saved.PasswordHash))
	require.NoError(t, err)
	assert.Equal(t, services.DefaultHashCost, cost)
}

func TestAuthService_RegisterPublishesEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWriter := services.NewMockUserWriter(ctrl)
	mockKafka := services.NewMockKafkaWriter(ctrl)
	svc := services.NewAuthService(
		services.NewMockUserReader(ctrl), mockWriter, services.NewMockJWTGenerator(ctrl),
		services.WithHashCost(bcrypt.MinCost),
		services.WithKafkaWriter(mockKafka),
	)

	mockWriter.EXPECT().Save(gomock.Any(), gomock.Any()).Return(int64(7), nil)
	mockKafka.EXPECT().
		WriteMessages(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, msgs ...kafka.Message) error {
			require.Len(t, msgs, 1)
			assert.Equal(t, "7", string(msgs[0].Key))

			var event models.UserRegisteredEvent
			require.NoError(t, json.Unmarshal(msgs[0].Value, &event))
			assert.Equal(t, int64(7), event.UserID)
			assert.Equal(t, "alice", event.Username)
			assert.Equal(t, "a@x.com", event.Email)
			assert.NotContains(t, string(msgs[0].Value), "pw123456")
			return errors.New("broker down")
		})

	// A publishing failure does not fail the registration.
	assert.NoError(t, svc.Register(context.Background(), "alice", "a@x.com", "", "pw123456"))
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	password := "pw123456"
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &models.UserDB{UserID: 3, Username: "alice", Email: "a@x.com", PasswordHash: string(hashed)}

	tests := []struct {
		name      string
		email     string
		password  string
		user      *models.UserDB
		readerErr error
		expectGet bool
		expectJWT bool
		jwtErr    error
		wantErr   error
	}{
		{
			name:      "successful login",
			email:     "a@x.com",
			password:  password,
			user:      stored,
			expectGet: true,
			expectJWT: true,
		},
		{
			name:    "missing password",
			email:   "a@x.com",
			wantErr: services.ErrValidation,
		},
		{
			name:     "missing email",
			password: password,
			wantErr:  services.ErrValidation,
		},
		{
			name:      "user does not exist",
			email:     "nobody@x.com",
			password:  password,
			expectGet: true,
			wantErr:   services.ErrUserNotFound,
		},
		{
			name:      "wrong password",
			email:     "a@x.com",
			password:  "wrong",
			user:      stored,
			expectGet: true,
			wantErr:   services.ErrInvalidCredentials,
		},
		{
			name:      "reader error",
			email:     "a@x.com",
			password:  password,
			readerErr: errors.New("db error"),
			expectGet: true,
			wantErr:   services.ErrQuery,
		},
		{
			name:      "JWT generation error",
			email:     "a@x.com",
			password:  password,
			user:      stored,
			expectGet: true,
			expectJWT: true,
			jwtErr:    errors.New("jwt error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockReader := services.NewMockUserReader(ctrl)
			mockJWT := services.NewMockJWTGenerator(ctrl)
			svc := services.NewAuthService(mockReader, services.NewMockUserWriter(ctrl), mockJWT)

			if tt.expectGet {
				mockReader.EXPECT().GetByEmail(gomock.Any(), tt.email).Return(tt.user, tt.readerErr)
			}
			if tt.expectJWT {
				mockJWT.EXPECT().Generate(gomock.Any(), int64(3)).Return("token123", tt.jwtErr)
			}

			token, user, err := svc.Login(context.Background(), tt.email, tt.password)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
				assert.Nil(t, user)
			case tt.jwtErr != nil:
				assert.ErrorIs(t, err, tt.jwtErr)
				assert.Empty(t, token)
			default:
				require.NoError(t, err)
				assert.Equal(t, "token123", token)
				assert.Equal(t, &models.PublicUser{Username: "alice", Email: "a@x.com"}, user)
			}
		})
	}
}
