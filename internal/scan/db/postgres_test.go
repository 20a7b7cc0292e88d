package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"ms-attendance/internal/models"
)

// TestPostgresConcurrentInsert checks the duplicate guarantee against the real
// storage engine: two concurrent inserts of the same tuple, exactly one wins.
func TestPostgresConcurrentInsert(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Postgres integration test in short mode")
	}

	ctx := context.Background()
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "attendance",
				"POSTGRES_PASSWORD": "attendance",
				"POSTGRES_DB":       "attendance_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("Failed to start Postgres container (docker unavailable?): %v", err)
	}
	defer func() {
		_ = pgContainer.Terminate(ctx)
	}()

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://attendance:attendance@%s:%s/attendance_test?sslmode=disable", host, port.Port())
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	bunDB := bun.NewDB(sqldb, pgdialect.New())
	defer bunDB.Close()

	require.NoError(t, bunDB.ResetModel(ctx, (*models.Attendance)(nil)))

	d := &DB{Bun: bunDB}

	const racers = 2
	results := make([]error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			now := time.Now()
			results[n] = d.InsertAttendance(ctx, &models.Attendance{
				ID:          fmt.Sprintf("race-%d", n),
				MemberID:    1,
				KegiatanID:  7,
				RangkaianID: models.NoRangkaian,
				Tanggal:     "2026-09-01",
				Status:      models.StatusPresent,
				CheckedInAt: &now,
				Method:      models.MethodQRCode,
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, d.IsUniqueViolation(err), "loser must fail with a unique violation, got: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one insert may win the race")

	count, err := bunDB.NewSelect().Model((*models.Attendance)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
