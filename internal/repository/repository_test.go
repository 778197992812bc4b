package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"plansey/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := NewDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", name), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func mustCreate(t *testing.T, db *gorm.DB, value any) {
	t.Helper()
	require.NoError(t, db.Create(value).Error)
}

func mustCreateWedding(t *testing.T, db *gorm.DB) *model.Wedding {
	t.Helper()
	wedding := &model.Wedding{Code: "ABC123"}
	mustCreate(t, db, wedding)
	return wedding
}

func TestListPublicFiltersAndOrders(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	second := &model.Chapter{Name: "second", SortOrder: 2, IsPublic: true}
	first := &model.Chapter{Name: "first", SortOrder: 1, IsPublic: true}
	hidden := &model.Chapter{Name: "hidden", SortOrder: 0, IsPublic: false}
	mustCreate(t, db, second)
	mustCreate(t, db, first)
	mustCreate(t, db, hidden)

	mustCreate(t, db, &model.Task{ChapterID: first.ID, Name: "b", SortOrder: 2, IsPublic: true})
	mustCreate(t, db, &model.Task{ChapterID: first.ID, Name: "a", SortOrder: 1, IsPublic: true})
	mustCreate(t, db, &model.Task{ChapterID: first.ID, Name: "secret", SortOrder: 0, IsPublic: false})
	mustCreate(t, db, &model.Task{ChapterID: second.ID, Name: "c", SortOrder: 1, IsPublic: true})
	mustCreate(t, db, &model.Task{ChapterID: hidden.ID, Name: "d", SortOrder: 1, IsPublic: true})

	chapters, err := NewChapterRepository(db).ListPublic(ctx, nil)
	require.NoError(t, err)
	require.Len(t, chapters, 2)

	assert.Equal(t, "first", chapters[0].Name)
	assert.Equal(t, "second", chapters[1].Name)
	require.Len(t, chapters[0].Tasks, 2)
	assert.Equal(t, "a", chapters[0].Tasks[0].Name)
	assert.Equal(t, "b", chapters[0].Tasks[1].Name)
	require.Len(t, chapters[1].Tasks, 1)
	for _, ch := range chapters {
		for _, task := range ch.Tasks {
			assert.Empty(t, task.WeddingTasks)
		}
	}
}

func TestListPublicAttachesOnlyOwnWeddingTasks(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, SeedCatalog(ctx, db, DefaultCatalog))

	mine := mustCreateWedding(t, db)
	other := mustCreateWedding(t, db)

	chapters := NewChapterRepository(db)
	tasks := NewWeddingTaskRepository(db)

	task, err := chapters.FindTask(ctx, 1)
	require.NoError(t, err)
	_, err = tasks.Upsert(ctx, mine.ID, task, WeddingTaskChange{Status: model.StatusDone})
	require.NoError(t, err)
	task2, err := chapters.FindTask(ctx, 2)
	require.NoError(t, err)
	_, err = tasks.Upsert(ctx, other.ID, task2, WeddingTaskChange{Status: model.StatusInprogress})
	require.NoError(t, err)

	list, err := chapters.ListPublic(ctx, &mine.ID)
	require.NoError(t, err)
	require.NotEmpty(t, list)
	require.Len(t, list[0].Tasks[0].WeddingTasks, 1)
	assert.Equal(t, model.StatusDone, list[0].Tasks[0].WeddingTasks[0].Status)
	assert.Empty(t, list[0].Tasks[1].WeddingTasks)
}

func TestUpsertCreatesThenUpdatesInPlace(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, SeedCatalog(ctx, db, DefaultCatalog))
	wedding := mustCreateWedding(t, db)

	chapters := NewChapterRepository(db)
	repo := NewWeddingTaskRepository(db)

	task, err := chapters.FindTask(ctx, 7)
	require.NoError(t, err)

	created, err := repo.Upsert(ctx, wedding.ID, task, WeddingTaskChange{Status: model.StatusInprogress})
	require.NoError(t, err)
	assert.Equal(t, 1, created.SortOrder)
	assert.Equal(t, task.ChapterID, created.ChapterID)
	assert.Equal(t, model.StatusInprogress, created.Status)

	updated, err := repo.Upsert(ctx, wedding.ID, task, WeddingTaskChange{Status: model.StatusDone})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 1, updated.SortOrder)
	assert.Equal(t, model.StatusDone, updated.Status)

	other, err := chapters.FindTask(ctx, 8)
	require.NoError(t, err)
	second, err := repo.Upsert(ctx, wedding.ID, other, WeddingTaskChange{Status: model.StatusDone})
	require.NoError(t, err)
	assert.Equal(t, 2, second.SortOrder)

	var count int64
	require.NoError(t, db.Model(&model.WeddingTask{}).Where("wedding_id = ? AND task_id = ?", wedding.ID, task.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpsertRetriesAfterConcurrentInsert(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, SeedCatalog(ctx, db, DefaultCatalog))
	wedding := mustCreateWedding(t, db)
	task, err := NewChapterRepository(db).FindTask(ctx, 1)
	require.NoError(t, err)

	// Another writer slips the same (wedding, task) row in between the
	// lookup and the insert of the first attempt.
	inserted := 0
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:concurrent_insert", func(tx *gorm.DB) {
		if inserted > 0 || tx.Statement.Table != "wedding_tasks" {
			return
		}
		inserted++
		now := time.Now()
		err := tx.Session(&gorm.Session{NewDB: true}).Exec(
			"INSERT INTO wedding_tasks (wedding_id, task_id, chapter_id, status, sort_order, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			wedding.ID, task.ID, task.ChapterID, model.StatusNew, 1, now, now,
		).Error
		require.NoError(t, err)
	}))

	wt, err := NewWeddingTaskRepository(db).Upsert(ctx, wedding.ID, task, WeddingTaskChange{Status: model.StatusDone})
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	assert.Equal(t, model.StatusDone, wt.Status)

	var rows []model.WeddingTask
	require.NoError(t, db.Where("wedding_id = ?", wedding.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, model.StatusDone, rows[0].Status)
	assert.Equal(t, 1, rows[0].SortOrder)
}

func TestUpsertDeadlineKeepClearSet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, SeedCatalog(ctx, db, DefaultCatalog))
	wedding := mustCreateWedding(t, db)

	task, err := NewChapterRepository(db).FindTask(ctx, 1)
	require.NoError(t, err)
	repo := NewWeddingTaskRepository(db)

	deadline := time.Date(2027, 5, 1, 0, 0, 0, 0, time.UTC)
	row, err := repo.Upsert(ctx, wedding.ID, task, WeddingTaskChange{Status: model.StatusNew, Deadline: &deadline, SetDeadline: true})
	require.NoError(t, err)
	require.NotNil(t, row.Deadline)

	row, err = repo.Upsert(ctx, wedding.ID, task, WeddingTaskChange{Status: model.StatusInprogress})
	require.NoError(t, err)
	require.NotNil(t, row.Deadline, "status-only change keeps the deadline")
	assert.True(t, deadline.Equal(*row.Deadline))

	row, err = repo.Upsert(ctx, wedding.ID, task, WeddingTaskChange{Status: model.StatusDone, SetDeadline: true})
	require.NoError(t, err)
	assert.Nil(t, row.Deadline)
}

func TestListOpenWithDeadline(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, SeedCatalog(ctx, db, DefaultCatalog))
	wedding := mustCreateWedding(t, db)

	chapters := NewChapterRepository(db)
	repo := NewWeddingTaskRepository(db)

	late := time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC)
	early := time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC)
	for id, change := range map[uint]WeddingTaskChange{
		1: {Status: model.StatusNew, Deadline: &late, SetDeadline: true},
		2: {Status: model.StatusInprogress, Deadline: &early, SetDeadline: true},
		3: {Status: model.StatusDone, Deadline: &early, SetDeadline: true},
		4: {Status: model.StatusInprogress},
	} {
		task, err := chapters.FindTask(ctx, id)
		require.NoError(t, err)
		_, err = repo.Upsert(ctx, wedding.ID, task, change)
		require.NoError(t, err)
	}

	rows, err := repo.ListOpenWithDeadline(ctx, wedding.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.EqualValues(t, 2, rows[0].TaskID)
	assert.EqualValues(t, 1, rows[1].TaskID)
	require.NotNil(t, rows[0].Task)
	assert.Equal(t, DefaultCatalog[0].Tasks[1], rows[0].Task.Name)
}

func TestSeedCatalogIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, SeedCatalog(ctx, db, DefaultCatalog))
	require.NoError(t, SeedCatalog(ctx, db, DefaultCatalog))

	var chapters, tasks int64
	require.NoError(t, db.Model(&model.Chapter{}).Count(&chapters).Error)
	require.NoError(t, db.Model(&model.Task{}).Count(&tasks).Error)

	wantTasks := 0
	for _, ch := range DefaultCatalog {
		wantTasks += len(ch.Tasks)
	}
	assert.EqualValues(t, len(DefaultCatalog), chapters)
	assert.EqualValues(t, wantTasks, tasks)
}

func TestPlannerLinks(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	users := NewUserRepository(db)
	owner := &model.User{Email: "owner@example.com", PasswordHash: "x", DefaultAccount: model.RolePlanner, IsActive: true, IsFirstLogin: true}
	planner := &model.Planner{FirstName: "Owner"}
	require.NoError(t, users.CreateWithRole(ctx, owner, planner, nil, nil))

	stranger := &model.User{Email: "stranger@example.com", PasswordHash: "x", DefaultAccount: model.RolePlanner, IsActive: true}
	require.NoError(t, users.CreateWithRole(ctx, stranger, &model.Planner{FirstName: "Stranger"}, nil, nil))

	planners := NewPlannerRepository(db)
	none, err := planners.LatestWedding(ctx, owner.ID)
	require.NoError(t, err)
	assert.Nil(t, none)

	weddings := NewWeddingRepository(db)
	first := &model.Wedding{Code: "AAAAAA", CreatedBy: owner.ID}
	require.NoError(t, weddings.CreateForPlanner(ctx, first, planner.ID))
	second := &model.Wedding{Code: "BBBBBB", CreatedBy: owner.ID}
	require.NoError(t, weddings.CreateForPlanner(ctx, second, planner.ID))

	latest, err := planners.LatestWedding(ctx, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID)

	linked, err := planners.IsLinked(ctx, owner.ID, first.ID)
	require.NoError(t, err)
	assert.True(t, linked)

	linked, err = planners.IsLinked(ctx, stranger.ID, first.ID)
	require.NoError(t, err)
	assert.False(t, linked)

	reloaded, err := users.FindByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsFirstLogin)
	require.NotNil(t, reloaded.Planner)
	assert.Equal(t, planner.ID, reloaded.Planner.ID)
}

func TestWeddingAliasAndUpdate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	weddings := NewWeddingRepository(db)

	alias := "anna-and-ben"
	budget := 15000.0
	wedding := &model.Wedding{Code: "CCCCCC", Alias: &alias, EstimateBudget: &budget}
	mustCreate(t, db, wedding)

	taken, err := weddings.AliasTaken(ctx, alias, 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = weddings.AliasTaken(ctx, alias, wedding.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	wedding.Alias = nil
	wedding.EstimateBudget = nil
	require.NoError(t, weddings.Update(ctx, wedding))

	reloaded, err := weddings.FindByID(ctx, wedding.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.Alias)
	assert.Nil(t, reloaded.EstimateBudget)
	assert.Equal(t, "CCCCCC", reloaded.Code)
}

func TestLinkTelegramMovesChat(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)

	a := &model.User{Email: "a@example.com", PasswordHash: "x", IsActive: true}
	b := &model.User{Email: "b@example.com", PasswordHash: "x", IsActive: true}
	require.NoError(t, users.CreateWithRole(ctx, a, nil, nil, nil))
	require.NoError(t, users.CreateWithRole(ctx, b, nil, nil, nil))

	require.NoError(t, users.LinkTelegram(ctx, a.ID, 42))
	require.NoError(t, users.LinkTelegram(ctx, b.ID, 42))

	found, err := users.FindByTelegramID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, b.ID, found.ID)

	linked, err := users.ListTelegramLinked(ctx)
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, b.ID, linked[0].ID)

	assert.ErrorIs(t, users.LinkTelegram(ctx, 999, 7), gorm.ErrRecordNotFound)
}

func TestEnsureDirForSQLiteSkipsMemory(t *testing.T) {
	assert.NoError(t, ensureDirForSQLite(":memory:"))
	assert.NoError(t, ensureDirForSQLite("file:x?mode=memory&cache=shared"))
	assert.NoError(t, ensureDirForSQLite(t.TempDir()+"/nested/dir/plansey.db"))
}
