package catalog

import (
	"testing"
	"time"

	"catalog-sync/feature/catalog/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

// expectUpserts queues n mapping upsert round trips on the mock.
func expectUpserts(mock sqlmock.Sqlmock, n int) {
	for i := 0; i < n; i++ {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO `product_mappings`").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()
	}
}

func TestMappingStore_Lookup(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewMappingStore(db, zap.NewNop())

	rows := sqlmock.NewRows([]string{"id", "source_code", "store_id", "target_type", "target_id", "created_at"}).
		AddRow(1, "SKU1", "kw", "child", "gid://shopify/ProductVariant/11", time.Now())
	mock.ExpectQuery("SELECT \\* FROM `product_mappings`").WillReturnRows(rows)

	id, ok, err := store.Lookup("SKU1", "kw", models.TargetChild)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "gid://shopify/ProductVariant/11", id)
}

func TestMappingStore_LookupAbsent(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewMappingStore(db, zap.NewNop())

	mock.ExpectQuery("SELECT \\* FROM `product_mappings`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "source_code", "store_id", "target_type", "target_id", "created_at"}))

	id, ok, err := store.Lookup("MISSING", "kw", models.TargetParent)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, id)
}

func TestMappingStore_Upsert(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewMappingStore(db, zap.NewNop())

	expectUpserts(mock, 1)

	err := store.Upsert("P100", "kw", models.TargetParent, "gid://shopify/Product/1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMappingStore_RecordGroupSurvivesPersistFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewMappingStore(db, zap.NewNop())

	// Parent upsert fails; child upserts still run.
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `product_mappings`").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()
	expectUpserts(mock, 2)

	group := &models.Group{ParentKey: "P100", StoreID: "kw"}
	result := models.NewGroupResult("gid://shopify/Product/1")
	result.Created["SKU1"] = variantFixture("gid://shopify/ProductVariant/11", "SKU1", "gid://shopify/InventoryItem/21")

	store.RecordGroup(group, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}
