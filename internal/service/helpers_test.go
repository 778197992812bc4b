package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"plansey/internal/model"
	"plansey/internal/repository"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var testCatalog = []repository.SeedChapter{
	{Name: "First steps", Tasks: []string{"Set budget", "Pick date"}},
	{Name: "Vendors", Tasks: []string{"Book photographer", "Book DJ", "Order flowers"}},
}

type testEnv struct {
	db         *gorm.DB
	users      *repository.UserRepository
	auth       *AuthService
	weddings   *WeddingService
	checklists *ChecklistService
	dashboards *DashboardService
	reminders  *ReminderService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := repository.NewDB(fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))
	require.NoError(t, repository.SeedCatalog(context.Background(), db, testCatalog))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	users := repository.NewUserRepository(db)
	planners := repository.NewPlannerRepository(db)
	weddingRepo := repository.NewWeddingRepository(db)
	chapters := repository.NewChapterRepository(db)
	weddingTasks := repository.NewWeddingTaskRepository(db)
	guard := NewOwnershipGuard(planners)

	env := &testEnv{
		db:         db,
		users:      users,
		auth:       NewAuthService(users, testSecret, time.Hour, bcrypt.MinCost),
		weddings:   NewWeddingService(weddingRepo, planners, guard),
		checklists: NewChecklistService(chapters, weddingTasks, planners, guard),
		reminders:  NewReminderService(planners, weddingTasks),
	}
	env.dashboards = NewDashboardService(users, env.weddings, env.checklists)
	return env
}

func (e *testEnv) register(t *testing.T, email string, role model.Role) *model.User {
	t.Helper()
	user, err := e.auth.Register(context.Background(), RegisterInput{
		Email:     email,
		Password:  "correct horse",
		FirstName: "Anna",
		Role:      role,
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) plannerWithWedding(t *testing.T, email string) (*model.User, *model.Wedding) {
	t.Helper()
	user := e.register(t, email, model.RolePlanner)
	wedding, err := e.weddings.Create(context.Background(), user.ID, WeddingInput{})
	require.NoError(t, err)
	return user, wedding
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}
