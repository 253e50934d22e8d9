package surrealdb

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	surreal "github.com/surrealdb/surrealdb.go"

	"github.com/bobmcallan/dayplan/internal/common"
	tcommon "github.com/bobmcallan/dayplan/test/common"
)

// testManager starts the shared SurrealDB container and returns a Manager
// using a unique database name per test for isolation.
func testManager(t *testing.T) *Manager {
	t.Helper()

	sc := tcommon.StartSurrealDB(t)
	ctx := context.Background()

	db, err := surreal.New(sc.Address())
	if err != nil {
		t.Fatalf("connect to SurrealDB: %v", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": "root",
		"pass": "root",
	}); err != nil {
		t.Fatalf("sign in to SurrealDB: %v", err)
	}

	// Sanitize t.Name() because subtests produce names like "Test/subtest"
	// and SurrealDB rejects "/" in database names.
	sanitized := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dbName := fmt.Sprintf("t_%s_%d", sanitized, time.Now().UnixNano()%100000)
	if err := db.Use(ctx, "dayplan_test", dbName); err != nil {
		t.Fatalf("select namespace/database: %v", err)
	}

	manager, err := newManager(db, common.NewSilentLogger())
	if err != nil {
		t.Fatalf("create manager: %v", err)
	}

	t.Cleanup(func() {
		manager.Close()
	})

	return manager
}
