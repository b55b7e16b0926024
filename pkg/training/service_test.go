package training

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jordanlanch/trainhub/pkg/database"
	"github.com/jordanlanch/trainhub/pkg/domain"
	"github.com/jordanlanch/trainhub/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB) *models.User {
	user := &models.User{
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "hash",
		Name:         "Member",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func trainingRequest(capacity int) models.CreateTrainingRequest {
	starts := time.Now().Add(24 * time.Hour)
	return models.CreateTrainingRequest{
		Title:    "Morning Session",
		StartsAt: starts,
		EndsAt:   starts.Add(time.Hour),
		Capacity: capacity,
	}
}

func TestCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)
	owner := createTestUser(t, db)

	created, err := service.Create(context.Background(), owner.ID, trainingRequest(10))
	require.NoError(t, err)

	got, err := service.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Morning Session", got.Title)
	assert.Equal(t, owner.ID, got.OwnerID)
	assert.Equal(t, 10, got.Capacity)
}

func TestGetNotFound(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)

	_, err := service.Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestUpdateOwnerOnly(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)
	owner := createTestUser(t, db)
	other := createTestUser(t, db)

	created, err := service.Create(context.Background(), owner.ID, trainingRequest(0))
	require.NoError(t, err)

	title := "Evening Session"
	_, err = service.Update(context.Background(), created.ID, other.ID, models.UpdateTrainingRequest{Title: &title})
	require.Error(t, err)
	assert.True(t, domain.IsForbidden(err))

	updated, err := service.Update(context.Background(), created.ID, owner.ID, models.UpdateTrainingRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Evening Session", updated.Title)
}

func TestDeleteRemovesMemberships(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)
	owner := createTestUser(t, db)
	member := createTestUser(t, db)

	created, err := service.Create(context.Background(), owner.ID, trainingRequest(0))
	require.NoError(t, err)

	_, err = service.Join(context.Background(), created.ID, member.ID)
	require.NoError(t, err)

	require.NoError(t, service.Delete(context.Background(), created.ID, owner.ID))

	_, err = service.Get(context.Background(), created.ID)
	assert.True(t, domain.IsNotFound(err))

	var count int64
	require.NoError(t, db.Model(&models.TrainingMember{}).Where("training_id = ?", created.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDeleteOwnerOnly(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)
	owner := createTestUser(t, db)
	other := createTestUser(t, db)

	created, err := service.Create(context.Background(), owner.ID, trainingRequest(0))
	require.NoError(t, err)

	err = service.Delete(context.Background(), created.ID, other.ID)
	require.Error(t, err)
	assert.True(t, domain.IsForbidden(err))
}

func TestJoinTwiceConflicts(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)
	owner := createTestUser(t, db)
	member := createTestUser(t, db)

	created, err := service.Create(context.Background(), owner.ID, trainingRequest(0))
	require.NoError(t, err)

	_, err = service.Join(context.Background(), created.ID, member.ID)
	require.NoError(t, err)

	_, err = service.Join(context.Background(), created.ID, member.ID)
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
}

func TestJoinAtCapacity(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)
	owner := createTestUser(t, db)

	created, err := service.Create(context.Background(), owner.ID, trainingRequest(2))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		member := createTestUser(t, db)
		_, err = service.Join(context.Background(), created.ID, member.ID)
		require.NoError(t, err)
	}

	late := createTestUser(t, db)
	_, err = service.Join(context.Background(), created.ID, late.ID)
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
}

func TestJoinUnlimitedCapacity(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)
	owner := createTestUser(t, db)

	// Capacity 0 means unlimited
	created, err := service.Create(context.Background(), owner.ID, trainingRequest(0))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		member := createTestUser(t, db)
		_, err = service.Join(context.Background(), created.ID, member.ID)
		require.NoError(t, err)
	}

	members, err := service.Members(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Len(t, members, 5)
}

func TestLeave(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)
	owner := createTestUser(t, db)
	member := createTestUser(t, db)

	created, err := service.Create(context.Background(), owner.ID, trainingRequest(1))
	require.NoError(t, err)

	_, err = service.Join(context.Background(), created.ID, member.ID)
	require.NoError(t, err)

	require.NoError(t, service.Leave(context.Background(), created.ID, member.ID))

	// Leaving frees the capacity slot
	another := createTestUser(t, db)
	_, err = service.Join(context.Background(), created.ID, another.ID)
	require.NoError(t, err)
}

func TestLeaveWithoutMembership(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)
	owner := createTestUser(t, db)

	created, err := service.Create(context.Background(), owner.ID, trainingRequest(0))
	require.NoError(t, err)

	err = service.Leave(context.Background(), created.ID, uuid.New())
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestListOrder(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db)
	owner := createTestUser(t, db)

	early := trainingRequest(0)
	late := trainingRequest(0)
	late.StartsAt = late.StartsAt.Add(48 * time.Hour)
	late.EndsAt = late.StartsAt.Add(time.Hour)

	_, err := service.Create(context.Background(), owner.ID, early)
	require.NoError(t, err)
	_, err = service.Create(context.Background(), owner.ID, late)
	require.NoError(t, err)

	trainings, err := service.List(context.Background())
	require.NoError(t, err)
	require.Len(t, trainings, 2)
	assert.True(t, trainings[0].StartsAt.After(trainings[1].StartsAt))
}
