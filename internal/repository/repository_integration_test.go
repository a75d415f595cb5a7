//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ssmgcode/cargo-expreso-control/internal/config"
	"github.com/ssmgcode/cargo-expreso-control/internal/domain"
	"github.com/ssmgcode/cargo-expreso-control/internal/models"
)

func TestGuideRepository_Postgres(t *testing.T) {
	ctx := context.Background()

	pgC, err := postgres.Run(ctx,
		"postgres:16",
		postgres.WithDatabase("guides"),
		postgres.WithUsername("guides"),
		postgres.WithPassword("guides"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := config.InitDB(&config.AppConfig{DatabaseURL: dsn})
	require.NoError(t, err)

	repo := NewGuideRepository(db)

	inserted, err := repo.InsertIfAbsent(ctx, &models.Guide{ID: "XAB0001", Sender: "El Sol"})
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.InsertIfAbsent(ctx, &models.Guide{ID: "XAB0001", Sender: "Other"})
	require.NoError(t, err)
	assert.False(t, inserted)

	require.NoError(t, repo.SetPaid(ctx, "XAB0001"))
	got, err := repo.FindByID(ctx, "XAB0001")
	require.NoError(t, err)
	assert.True(t, got.Paid)
	assert.Equal(t, "El Sol", got.Sender)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var count int64
	require.NoError(t, db.Model(&models.Guide{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
