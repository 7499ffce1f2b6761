package di

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/goliatone/go-data-repository/cache"
	"github.com/goliatone/go-data-repository/pkg/memstore"
	"github.com/goliatone/go-data-repository/pkg/sqlstore"
	"github.com/goliatone/go-data-repository/pkg/testsupport"
	"github.com/goliatone/go-data-repository/repository"
	"github.com/goliatone/go-data-repository/repositorycache"
	"github.com/uptrace/bun"
)

// User represents a test model for integration tests
type User struct {
	ID    string `json:"id" msgpack:"id"`
	Name  string `json:"name" msgpack:"name"`
	Email string `json:"email" msgpack:"email"`
}

func userID(u User) string    { return u.ID }
func userEmail(u User) string { return u.Email }

func testUsers(n int) []User {
	users := make([]User, n)
	for i := range users {
		users[i] = User{
			ID:    fmt.Sprintf("user-%d", i),
			Name:  fmt.Sprintf("User %d", i),
			Email: fmt.Sprintf("user%d@example.com", i),
		}
	}
	return users
}

func newSeededStore(t testing.TB, users []User) *memstore.UniqueStore[string, string, User] {
	t.Helper()
	store := memstore.NewUnique(userID, userEmail)
	if err := store.Seed(users...); err != nil {
		t.Fatalf("Seed() failed: %v", err)
	}
	return store
}

func TestEndToEndCachedRepositoryFlow(t *testing.T) {
	ctx := context.Background()
	container, err := NewContainerWithDefaults()
	if err != nil {
		t.Fatalf("Failed to create DI container: %v", err)
	}

	base := newSeededStore(t, testUsers(3))
	cachedRepo := NewCachedRepository(container, base.Store, userID)

	// First access goes to the base repository, the second is served from cache
	for i := 0; i < 2; i++ {
		user, err := cachedRepo.Get(ctx, "user-1")
		if err != nil {
			t.Fatalf("Get() failed: %v", err)
		}
		if user.Name != "User 1" {
			t.Errorf("Expected name %q, got %q", "User 1", user.Name)
		}
	}
	if calls := base.Calls("Get"); calls != 1 {
		t.Errorf("Expected 1 base Get call, got %d", calls)
	}

	updated := User{ID: "user-1", Name: "Updated User", Email: "user1@example.com"}
	if n, err := cachedRepo.Update(ctx, updated); err != nil || n != 1 {
		t.Fatalf("Update() = %d, %v", n, err)
	}

	user, err := cachedRepo.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("Get() after update failed: %v", err)
	}
	if user.Name != "Updated User" {
		t.Errorf("Expected updated name, got %q", user.Name)
	}
	if calls := base.Calls("Get"); calls != 2 {
		t.Errorf("Expected update to invalidate the cache, base Get calls %d", calls)
	}

	if n, err := cachedRepo.Delete(ctx, updated); err != nil || n != 1 {
		t.Fatalf("Delete() = %d, %v", n, err)
	}
	if _, err := cachedRepo.Get(ctx, "user-1"); !repository.IsNotFound(err) {
		t.Errorf("Expected not found after delete, got %v", err)
	}

	if err := cachedRepo.Store().Verify(); err != nil {
		t.Errorf("Store().Verify() failed: %v", err)
	}
}

func TestUniqueRepositoryFlow(t *testing.T) {
	ctx := context.Background()
	container, err := NewContainerWithDefaults()
	if err != nil {
		t.Fatalf("Failed to create DI container: %v", err)
	}

	base := newSeededStore(t, testUsers(2))
	cachedRepo := NewCachedUniqueRepository(container, base, userID, userEmail)

	if _, err := cachedRepo.GetByUniqueKey(ctx, "user0@example.com"); err != nil {
		t.Fatalf("GetByUniqueKey() failed: %v", err)
	}
	if _, err := cachedRepo.GetByPrimaryKey(ctx, "user-0"); err != nil {
		t.Fatalf("GetByPrimaryKey() failed: %v", err)
	}

	stats := cachedRepo.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("Expected one hit and one miss, got %+v", stats)
	}

	// Changing the email must drop the old unique key
	changed := User{ID: "user-0", Name: "User 0", Email: "zero@example.com"}
	if _, err := cachedRepo.Update(ctx, changed); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if _, err := cachedRepo.GetByUniqueKey(ctx, "user0@example.com"); !repository.IsNotFound(err) {
		t.Errorf("Expected old email to be gone, got %v", err)
	}
	if err := cachedRepo.Store().Verify(); err != nil {
		t.Errorf("Store().Verify() failed: %v", err)
	}
}

func TestWriteMethodPassThrough(t *testing.T) {
	ctx := context.Background()
	container, err := NewContainer(cache.Config{
		InsertPolicy:      cache.InsertPopulate,
		BatchInvalidation: cache.InvalidateAffected,
	})
	if err != nil {
		t.Fatalf("Failed to create DI container: %v", err)
	}

	base := newSeededStore(t, nil)
	cachedRepo := NewCachedRepository(container, base.Store, userID)

	users := testUsers(3)
	n, err := cachedRepo.InsertRange(ctx, users)
	if err != nil || n != 3 {
		t.Fatalf("InsertRange() = %d, %v", n, err)
	}
	if cachedRepo.Store().Len() != 3 {
		t.Errorf("Expected populate policy to cache inserted users, got %d entries", cachedRepo.Store().Len())
	}

	if _, err := cachedRepo.Get(ctx, "user-2"); err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if calls := base.Calls("Get"); calls != 0 {
		t.Errorf("Expected populated entry to be served from cache, got %d base calls", calls)
	}

	missing := User{ID: "user-9"}
	counts, err := cachedRepo.DeleteEach(ctx, []User{users[0], missing})
	if err != nil {
		t.Fatalf("DeleteEach() failed: %v", err)
	}
	if counts[0] != 1 || counts[1] != 0 {
		t.Errorf("Expected counts [1 0], got %v", counts)
	}
	if _, ok := cachedRepo.Store().Get("user-1"); !ok {
		t.Error("Unaffected entries should stay cached")
	}
}

func TestErrorPropagation(t *testing.T) {
	ctx := context.Background()
	container, err := NewContainerWithDefaults()
	if err != nil {
		t.Fatalf("Failed to create DI container: %v", err)
	}

	base := newSeededStore(t, testUsers(1))
	cachedRepo := NewCachedRepository(container, base.Store, userID)

	errDatabase := errors.New("database unavailable")
	base.FailNext("Get", errDatabase)

	if _, err := cachedRepo.Get(ctx, "user-0"); !errors.Is(err, errDatabase) {
		t.Fatalf("Expected database error, got %v", err)
	}
	if cachedRepo.Store().Len() != 0 {
		t.Error("Errors must not be cached")
	}

	base.FailNext("Update", errDatabase)
	if _, err := cachedRepo.Get(ctx, "user-0"); err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if _, err := cachedRepo.Update(ctx, User{ID: "user-0", Name: "lost"}); !errors.Is(err, errDatabase) {
		t.Fatalf("Expected database error from Update, got %v", err)
	}
	if _, ok := cachedRepo.Store().Get("user-0"); !ok {
		t.Error("A failed write must leave the cache untouched")
	}
}

func TestPerRepositoryOptionsOverrideContainer(t *testing.T) {
	ctx := context.Background()
	container, err := NewContainerWithDefaults()
	if err != nil {
		t.Fatalf("Failed to create DI container: %v", err)
	}

	base := newSeededStore(t, nil)
	cachedRepo := NewCachedRepository(container, base.Store, userID,
		repositorycache.WithConfig(cache.Config{InsertPolicy: cache.InsertPopulate}),
		repositorycache.WithName("users"),
	)

	if _, err := cachedRepo.Insert(ctx, testUsers(1)[0]); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}
	if cachedRepo.Store().Len() != 1 {
		t.Error("Per repository config should override the container config")
	}
}

func TestContextRepositoryOverSQLStore(t *testing.T) {
	ctx := context.Background()
	container, err := NewContainerWithDefaults()
	if err != nil {
		t.Fatalf("Failed to create DI container: %v", err)
	}

	db, err := sqlstore.Open(sqlstore.Config{
		Driver: sqlstore.DriverSQLite,
		DSN:    "file:di_context?mode=memory&cache=shared",
	})
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer db.Close()

	store := sqlstore.NewUnique(db, "id", testsupport.EntityID, "code", testsupport.EntityCode)
	if err := store.CreateSchema(ctx); err != nil {
		t.Fatalf("CreateSchema() failed: %v", err)
	}
	if _, err := store.InsertRange(ctx, testsupport.SampleEntities(2)); err != nil {
		t.Fatalf("InsertRange() failed: %v", err)
	}

	repo := NewCachedContextUniqueRepository[bun.IDB](container, store.WithContext(), testsupport.EntityID, testsupport.EntityCode)

	entity, err := repo.Reader.GetByUniqueKey(ctx, db, "002")
	if err != nil {
		t.Fatalf("GetByUniqueKey() failed: %v", err)
	}

	err = db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		entity.Name = "renamed"
		_, err := repo.Writer.Update(ctx, tx, entity)
		return err
	})
	if err != nil {
		t.Fatalf("Update in transaction failed: %v", err)
	}

	got, err := repo.Reader.GetByPrimaryKey(ctx, db, 2)
	if err != nil {
		t.Fatalf("GetByPrimaryKey() failed: %v", err)
	}
	if got.Name != "renamed" {
		t.Errorf("Expected renamed entity, got %q", got.Name)
	}
	if err := repo.Store.Verify(); err != nil {
		t.Errorf("Store.Verify() failed: %v", err)
	}
}

func TestContextRepositoryBindsPlainStore(t *testing.T) {
	ctx := context.Background()
	container, err := NewContainerWithDefaults()
	if err != nil {
		t.Fatalf("Failed to create DI container: %v", err)
	}

	base := newSeededStore(t, testUsers(2))
	lifted := struct {
		repository.ContextReader[string, string, User]
		repository.ContextWriter[string, User]
	}{
		repository.IgnoreContextReader[string](repository.Reader[string, User](base.Store)),
		repository.IgnoreContextWriter[string](repository.Writer[User](base.Store)),
	}

	repo := NewCachedContextRepository[string](container, lifted, userID)
	if _, err := repo.Reader.Get(ctx, "tenant-a", "user-0"); err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if _, err := repo.Reader.Get(ctx, "tenant-b", "user-0"); err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if calls := base.Calls("Get"); calls != 1 {
		t.Errorf("The repository context must not be part of the cache key, got %d base calls", calls)
	}
}
