package service

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edulink/linking-server-go/internal/audit"
	"github.com/edulink/linking-server-go/internal/database"
	"github.com/edulink/linking-server-go/internal/model"
	"github.com/edulink/linking-server-go/internal/notify"
	"github.com/edulink/linking-server-go/internal/repository"
)

// Runs RequestCode from several goroutines against a real database. The
// advisory lock serializes issuance, so every caller must come back with the
// same code and the student must end up with exactly one active one.
func TestRequestCode_ConcurrentIssue(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	codes := repository.NewLinkingCodeRepository(db.DB)
	svc := NewLinkingService(
		db,
		repository.NewUserRepository(db.DB),
		codes,
		repository.NewLinkRequestRepository(db.DB),
		NewCodeGenerator(),
		NewIDGenerator(),
		audit.New(nil),
		notify.NewPublisher(nil),
		24*time.Hour,
	)

	ctx := context.Background()
	studentID := seedUser(t, db, model.UserRoleStudent)

	const callers = 8
	issued := make([]*model.LinkingCode, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			issued[i], errs[i] = svc.RequestCode(ctx, studentID)
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, issued[i])
	}
	for i := 1; i < callers; i++ {
		assert.Equal(t, issued[0].Code, issued[i].Code)
		assert.True(t, issued[0].ExpiresAt.Equal(issued[i].ExpiresAt),
			"expiresAt differs between callers")
	}

	lc, err := codes.FindValidByStudentID(ctx, studentID, time.Now())
	require.NoError(t, err)
	require.NotNil(t, lc)
	assert.Equal(t, issued[0].Code, lc.Code)

	var active int
	err = db.Get(&active, `
		SELECT COUNT(*) FROM linking_codes
		WHERE student_id = $1 AND NOT used AND expires_at > NOW()
	`, studentID)
	require.NoError(t, err)
	assert.Equal(t, 1, active)
}

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database tests")
	}
	db, err := database.Connect(url)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))
	return db
}

func seedUser(t *testing.T, db *database.DB, role model.UserRole) string {
	t.Helper()
	id := uuid.NewString()
	_, err := db.Exec(`
		INSERT INTO users (id, role, full_name, email)
		VALUES ($1, $2, $3, $4)
	`, id, role, fmt.Sprintf("Test %s %s", role, id[:8]), fmt.Sprintf("%s@test.local", id[:8]))
	require.NoError(t, err)
	return id
}
