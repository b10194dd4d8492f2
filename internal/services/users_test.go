package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/netflox-api/internal/models"
	"github.com/sbilibin2017/netflox-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserListService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	phone := "+15550100"
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("returns views without hashes", func(t *testing.T) {
		mockLister := services.NewMockUserLister(ctrl)
		svc := services.NewUserListService(mockLister)

		mockLister.EXPECT().List(gomock.Any()).Return([]models.UserDB{
			{UserID: 2, Username: "bob", Email: "b@x.com", CreatedAt: created, PasswordHash: "h2"},
			{UserID: 1, Username: "alice", Email: "a@x.com", Phone: &phone, CreatedAt: created, PasswordHash: "h1"},
		}, nil)

		users, err := svc.List(context.Background())
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, int64(2), users[0].ID)
		assert.Equal(t, "alice", users[1].Username)
		require.NotNil(t, users[1].Phone)
		assert.Equal(t, phone, *users[1].Phone)
		assert.Nil(t, users[0].Phone)
	})

	t.Run("empty store gives empty slice", func(t *testing.T) {
		mockLister := services.NewMockUserLister(ctrl)
		svc := services.NewUserListService(mockLister)

		mockLister.EXPECT().List(gomock.Any()).Return(nil, nil)

		users, err := svc.List(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, users)
		assert.Empty(t, users)
	})

	t.Run("store error", func(t *testing.T) {
		mockLister := services.NewMockUserLister(ctrl)
		svc := services.NewUserListService(mockLister)

		mockLister.EXPECT().List(gomock.Any()).Return(nil, errors.New("db down"))

		users, err := svc.List(context.Background())
		assert.ErrorIs(t, err, services.ErrQuery)
		assert.Nil(t, users)
	})
}
