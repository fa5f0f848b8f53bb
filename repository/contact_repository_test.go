package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirphl/sdr-power-queue/models"
	testingutil "github.com/amirphl/sdr-power-queue/testing"
	"github.com/amirphl/sdr-power-queue/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactRepositoryPostgres(t *testing.T) {
	if !testingutil.IntegrationEnabled() {
		t.Skip("TEST_DB_HOST not set")
	}

	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		feed := NewLocalChangeFeed()
		contacts := NewContactRepository(testDB.DB, feed)
		logs := NewCallLogRepository(testDB.DB, feed)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("ByIDScoped", func(t *testing.T) {
			c, err := fixtures.CreateTestContact("op-1", "Ada", "Acme", 1024)
			require.NoError(t, err)

			got, err := contacts.ByID(ctx, "op-1", c.ID)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, "Ada", got.Name)

			got, err = contacts.ByID(ctx, "op-2", c.ID)
			require.NoError(t, err)
			assert.Nil(t, got)
		})

		t.Run("UpdateNotFound", func(t *testing.T) {
			err := contacts.Update(ctx, "op-1", uuid.New(), models.ContactPatch{Notes: utils.ToPtr("hi")})
			assert.True(t, errors.Is(err, ErrNotFound))
		})

		t.Run("UpdateOrderKeys", func(t *testing.T) {
			c, err := fixtures.CreateTestContact("op-1", "Bea", "Beta", 4096)
			require.NoError(t, err)
			require.NoError(t, contacts.UpdateOrderKeys(ctx, "op-1", []models.OrderKeyUpdate{{ContactID: c.ID, OrderKey: 1.5}}))
			got, err := contacts.ByID(ctx, "op-1", c.ID)
			require.NoError(t, err)
			assert.Equal(t, 1.5, got.OrderKey)
		})

		t.Run("TransactionRollsBackCascade", func(t *testing.T) {
			c, err := fixtures.CreateTestContact("op-1", "Cy", "Gamma", 8192)
			require.NoError(t, err)
			_, err = fixtures.CreateTestCallLog(c, models.CallOutcomeNoAnswer, time.Now().UTC())
			require.NoError(t, err)

			boom := errors.New("boom")
			err = NewGormTransactor(testDB.DB).WithinTx(ctx, func(txCtx context.Context) error {
				if err := contacts.Delete(txCtx, "op-1", c.ID); err != nil {
					return err
				}
				return boom
			})
			assert.ErrorIs(t, err, boom)

			got, err := contacts.ByID(ctx, "op-1", c.ID)
			require.NoError(t, err)
			assert.NotNil(t, got)

			entries, err := logs.ByContact(ctx, "op-1", c.ID)
			require.NoError(t, err)
			assert.Len(t, entries, 1)
		})

		return testDB.ClearAllTables()
	})
	require.NoError(t, err)
}
