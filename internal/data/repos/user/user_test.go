package user

import (
	"context"
	"testing"

	"github.com/yungbote/coursemarket-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursemarket-backend/internal/domain"
	"github.com/yungbote/coursemarket-backend/internal/platform/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	created, err := repo.Create(dbc, []*types.User{{
		Email:        "  Learner@Example.com ",
		PasswordHash: "pw",
		FullName:     "Awa Diop",
	}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 || created[0].Email != "learner@example.com" {
		t.Fatalf("Create: unexpected result: %+v", created)
	}
	if created[0].Role != types.RoleLearner {
		t.Fatalf("Create: default role want=LEARNER got=%s", created[0].Role)
	}

	got, err := repo.GetByEmail(dbc, "LEARNER@example.com")
	if err != nil || got == nil || got.ID != created[0].ID {
		t.Fatalf("GetByEmail: err=%v got=%+v", err, got)
	}

	exists, err := repo.EmailExists(dbc, "learner@example.com")
	if err != nil || !exists {
		t.Fatalf("EmailExists: err=%v exists=%v", err, exists)
	}

	if err := repo.UpdateFields(dbc, created[0].ID, map[string]interface{}{"full_name": "Awa N. Diop"}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	byID, err := repo.GetByID(dbc, created[0].ID)
	if err != nil || byID == nil || byID.FullName != "Awa N. Diop" {
		t.Fatalf("GetByID: err=%v got=%+v", err, byID)
	}

	missing, err := repo.GetByEmail(dbc, "nobody@example.com")
	if err != nil || missing != nil {
		t.Fatalf("GetByEmail missing: err=%v got=%+v", err, missing)
	}
}
