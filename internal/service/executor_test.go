package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bonsai-todo/bonsai/internal/domain/command"
	"github.com/bonsai-todo/bonsai/internal/domain/task"
)

func newTestExecutor(store *fakeStore) *Executor {
	return NewExecutor(NewTaskService(store, nil, nil, 0))
}

func TestExecuteAdd(t *testing.T) {
	store := newFakeStore()
	e := newTestExecutor(store)

	res, err := e.Execute(context.Background(), "u1", command.InterpretedCommand{
		Action: command.ActionAdd, Title: "buy milk", DueDate: "2025-06-01",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.Success || res.Task == nil || res.Task.Title != "buy milk" {
		t.Errorf("result = %+v", res)
	}
	if res.Task.DueDate == nil || res.Task.DueDate.Format("2006-01-02") != "2025-06-01" {
		t.Errorf("due date = %v", res.Task.DueDate)
	}
}

func TestExecuteAddWithoutTitleFails(t *testing.T) {
	e := newTestExecutor(newFakeStore())

	res, err := e.Execute(context.Background(), "u1", command.InterpretedCommand{Action: command.ActionAdd})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Success || res.ErrorMessage == "" {
		t.Errorf("result = %+v, want failure with message", res)
	}
}

func TestExecuteListFiltered(t *testing.T) {
	store := newFakeStore()
	store.seedTask("u1", "pending one", false)
	store.seedTask("u1", "done one", true)
	e := newTestExecutor(store)

	res, err := e.Execute(context.Background(), "u1", command.InterpretedCommand{
		Action: command.ActionList, StatusFilter: task.FilterPending,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.Success || len(res.Tasks) != 1 || res.Tasks[0].Title != "pending one" {
		t.Errorf("result = %+v", res)
	}
}

func TestExecuteCompleteIdempotent(t *testing.T) {
	store := newFakeStore()
	seeded := store.seedTask("u1", "water plants", true)
	e := newTestExecutor(store)

	res, err := e.Execute(context.Background(), "u1", command.InterpretedCommand{
		Action: command.ActionComplete, TaskID: seeded.ID,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.Success {
		t.Fatalf("result = %+v", res)
	}
	if res.Data == nil || res.Data["already_completed"] != true {
		t.Errorf("data = %v, want already_completed", res.Data)
	}
}

func TestExecuteCrossUserIndistinguishableFromMissing(t *testing.T) {
	store := newFakeStore()
	seeded := store.seedTask("owner", "private", false)
	e := newTestExecutor(store)
	ctx := context.Background()

	foreign, err := e.Execute(ctx, "intruder", command.InterpretedCommand{
		Action: command.ActionDelete, TaskID: seeded.ID,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	missing, err := e.Execute(ctx, "intruder", command.InterpretedCommand{
		Action: command.ActionDelete, TaskID: "no-such-task",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if foreign.Success || missing.Success {
		t.Fatal("both executions must fail")
	}
	if foreign.ErrorMessage != missing.ErrorMessage {
		t.Errorf("foreign=%q missing=%q, responses must be identical", foreign.ErrorMessage, missing.ErrorMessage)
	}
}

func TestExecuteUpdateRequiresFields(t *testing.T) {
	store := newFakeStore()
	seeded := store.seedTask("u1", "old title", false)
	e := newTestExecutor(store)

	res, err := e.Execute(context.Background(), "u1", command.InterpretedCommand{
		Action: command.ActionUpdate, TaskID: seeded.ID,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Success {
		t.Fatal("update without fields must fail")
	}
	if !strings.Contains(res.ErrorMessage, "specify what to update") {
		t.Errorf("message = %q", res.ErrorMessage)
	}
	if res.ErrorMessage == notFoundMessage {
		t.Error("missing-fields error must differ from not-found")
	}
}

func TestExecuteUpdateReturnsOldTitle(t *testing.T) {
	store := newFakeStore()
	seeded := store.seedTask("u1", "old title", false)
	e := newTestExecutor(store)

	res, err := e.Execute(context.Background(), "u1", command.InterpretedCommand{
		Action: command.ActionUpdate, TaskID: seeded.ID, Title: "new title",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.Success || res.Task.Title != "new title" {
		t.Errorf("result = %+v", res)
	}
	if res.Data == nil || res.Data["old_title"] != "old title" {
		t.Errorf("data = %v, want old_title", res.Data)
	}
}

func TestExecuteDeleteReturnsSnapshot(t *testing.T) {
	store := newFakeStore()
	seeded := store.seedTask("u1", "doomed", false)
	e := newTestExecutor(store)

	res, err := e.Execute(context.Background(), "u1", command.InterpretedCommand{
		Action: command.ActionDelete, TaskID: seeded.ID,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.Success || res.Task == nil || res.Task.Title != "doomed" {
		t.Errorf("result = %+v, want pre-deletion snapshot", res)
	}
}

func TestExecuteStorageFailurePropagates(t *testing.T) {
	store := newFakeStore()
	store.failNext = errors.New("connection reset")
	e := newTestExecutor(store)

	_, err := e.Execute(context.Background(), "u1", command.InterpretedCommand{
		Action: command.ActionAdd, Title: "x",
	})
	if err == nil {
		t.Fatal("storage failure must propagate as an error")
	}
}
