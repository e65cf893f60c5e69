package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"todo_bot/internal/db"
)

// Integration-style tests: run only when DATABASE_URL is set.
func newTestRepo(t *testing.T) *TaskRepository {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping integration test")
	}

	provider := db.NewProvider(dsn, 1, time.Second)
	t.Cleanup(provider.Close)

	if err := provider.InitSchema(context.Background()); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return NewTaskRepository(provider)
}

// testUserID returns a user id unlikely to collide across test runs.
func testUserID() int64 {
	return time.Now().UnixNano()
}

func TestAddAndList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := testUserID()

	id, err := repo.Add(ctx, user, "Buy milk")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if id != 1 {
		t.Fatalf("first task should get id 1, got %d", id)
	}

	tasks, err := repo.List(ctx, user, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if tasks[0].Description != "Buy milk" || tasks[0].Done {
		t.Fatalf("unexpected task: %+v", tasks[0])
	}
}

func TestListOrdering(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := testUserID()

	for _, d := range []string{"first", "second", "third"} {
		if _, err := repo.Add(ctx, user, d); err != nil {
			t.Fatalf("add %q: %v", d, err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	tasks, err := repo.List(ctx, user, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}
	for i, want := range []string{"third", "second", "first"} {
		if tasks[i].Description != want {
			t.Fatalf("position %d: got %q, want %q", i, tasks[i].Description, want)
		}
	}
}

func TestMarkDoneFiltersFromDefaultList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := testUserID()

	id, err := repo.Add(ctx, user, "task")
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	affected, err := repo.MarkDone(ctx, id, user)
	if err != nil {
		t.Fatalf("mark done: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 affected row, got %d", affected)
	}

	tasks, err := repo.List(ctx, user, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("default list must hide done tasks, got %d", len(tasks))
	}

	all, err := repo.List(ctx, user, true)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 1 || !all[0].Done {
		t.Fatalf("include_done list should show the done task, got %+v", all)
	}
}

func TestMarkDoneWrongOwner(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := testUserID()
	other := owner + 1

	id, err := repo.Add(ctx, owner, "theirs")
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	affected, err := repo.MarkDone(ctx, id, other)
	if err != nil {
		t.Fatalf("mark done: %v", err)
	}
	if affected != 0 {
		t.Fatalf("foreign task must not be affected, got %d", affected)
	}

	tasks, err := repo.List(ctx, owner, true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if tasks[0].Done {
		t.Fatal("task done flag must be unchanged")
	}
}

func TestDeleteRemovesForever(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := testUserID()

	id, err := repo.Add(ctx, user, "doomed")
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	affected, err := repo.Delete(ctx, id, user)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 affected row, got %d", affected)
	}

	all, err := repo.List(ctx, user, true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, task := range all {
		if task.ID == id {
			t.Fatalf("deleted id %d reappeared in list", id)
		}
	}

	affected, err = repo.Delete(ctx, id, user)
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if affected != 0 {
		t.Fatalf("deleting twice must affect 0 rows, got %d", affected)
	}
}

func TestIDsNotReusedAfterDeletion(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := testUserID()

	var ids []int
	for _, d := range []string{"one", "two", "three"} {
		id, err := repo.Add(ctx, user, d)
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		ids = append(ids, id)
	}

	// remove the middle task; the next add must not reuse its id
	if _, err := repo.Delete(ctx, ids[1], user); err != nil {
		t.Fatalf("delete: %v", err)
	}

	id, err := repo.Add(ctx, user, "four")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if id != 4 {
		t.Fatalf("expected id 4 after deleting task 2 of 3, got %d", id)
	}
}

func TestIDsIndependentPerUser(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	userA := testUserID()
	userB := userA + 1

	idA, err := repo.Add(ctx, userA, "a")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	idB, err := repo.Add(ctx, userB, "b")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if idA != 1 || idB != 1 {
		t.Fatalf("each user starts at id 1, got %d and %d", idA, idB)
	}
}
