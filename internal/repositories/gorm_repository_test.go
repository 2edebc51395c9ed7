package repositories_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gnsons/internal/models"
	"gnsons/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *repositories.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repositories.AutoMigrate(db))
	return repositories.NewGORMStore(db)
}

func TestGORMAdminRepository(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	admin := &models.Admin{Email: "a@x.com", PasswordHash: "hash", Name: "A", Permissions: datatypes.JSONSlice[string]{models.PermissionAll}}
	require.NoError(t, store.Admins.Create(ctx, admin))
	assert.NotEmpty(t, admin.ID)

	err := store.Admins.Create(ctx, &models.Admin{Email: "a@x.com", PasswordHash: "other"})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	byEmail, err := store.Admins.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, byEmail.ID)
	assert.Equal(t, []string{models.PermissionAll}, []string(byEmail.Permissions))
	assert.Nil(t, byEmail.LastLogin)

	at := time.Now().Truncate(time.Second)
	require.NoError(t, store.Admins.UpdateLastLogin(ctx, admin.ID, at))
	byID, err := store.Admins.GetByID(ctx, admin.ID)
	require.NoError(t, err)
	require.NotNil(t, byID.LastLogin)
	assert.True(t, at.Equal(*byID.LastLogin))

	require.NoError(t, store.Admins.Delete(ctx, admin.ID))
	_, err = store.Admins.GetByID(ctx, admin.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.ErrorIs(t, store.Admins.Delete(ctx, admin.ID), repositories.ErrNotFound)
}

func TestGORMCartRepository_VersionedSave(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cart := models.NewCart("user-1")
	cart.Items = append(cart.Items, models.CartItem{ProductID: "p1", Name: "Watch", Price: 50, Quantity: 2})
	cart.Recalculate()
	require.NoError(t, store.Carts.Save(ctx, cart))
	assert.Equal(t, int64(1), cart.Version)

	first, err := store.Carts.GetByUserID(ctx, "user-1")
	require.NoError(t, err)
	second, err := store.Carts.GetByUserID(ctx, "user-1")
	require.NoError(t, err)

	first.Items[0].Quantity = 3
	first.Recalculate()
	require.NoError(t, store.Carts.Save(ctx, first))
	assert.Equal(t, int64(2), first.Version)

	second.Items[0].Quantity = 10
	second.Recalculate()
	err = store.Carts.Save(ctx, second)
	assert.ErrorIs(t, err, repositories.ErrVersionConflict)

	stored, err := store.Carts.GetByUserID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Items[0].Quantity)
	assert.Equal(t, 150.0, stored.Total)

	duplicate := models.NewCart("user-1")
	assert.ErrorIs(t, store.Carts.Save(ctx, duplicate), repositories.ErrVersionConflict)
}

func TestGORMCartRepository_Reset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Carts.Reset(ctx, "fresh-user"))
	empty, err := store.Carts.GetByUserID(ctx, "fresh-user")
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
	assert.Zero(t, empty.Total)

	cart := models.NewCart("user-2")
	cart.Items = append(cart.Items, models.CartItem{ProductID: "p1", Price: 10, Quantity: 1})
	cart.Recalculate()
	require.NoError(t, store.Carts.Save(ctx, cart))

	require.NoError(t, store.Carts.Reset(ctx, "user-2"))
	cleared, err := store.Carts.GetByUserID(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, cleared.Items)
	assert.Zero(t, cleared.Total)
	assert.Equal(t, int64(2), cleared.Version)
}

func TestGORMOrderRepository(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	older := &models.Order{UserID: "u1", TotalPrice: 10, FinalPrice: 10, Status: models.StatusPending, CreatedAt: time.Now().Add(-time.Hour)}
	newer := &models.Order{UserID: "u1", TotalPrice: 20, FinalPrice: 20, Status: models.StatusPending}
	other := &models.Order{UserID: "u2", TotalPrice: 30, FinalPrice: 30, Status: models.StatusPending}
	for _, o := range []*models.Order{older, newer, other} {
		require.NoError(t, store.Orders.Create(ctx, o))
	}

	mine, err := store.Orders.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, newer.ID, mine[0].ID)

	all, err := store.Orders.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, store.Orders.UpdateStatus(ctx, older.ID, 1, models.StatusShipped))
	got, err := store.Orders.GetByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusShipped, got.Status)
	assert.Equal(t, int64(2), got.Version)

	err = store.Orders.UpdateStatus(ctx, older.ID, 1, models.StatusDelivered)
	assert.ErrorIs(t, err, repositories.ErrVersionConflict)

	err = store.Orders.UpdateStatus(ctx, "missing", 1, models.StatusShipped)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestGORMProductRepository_ListFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seed := []models.Product{
		{Name: "Premium Leather Watch", Category: "Electronics", Price: 4500, IsFeatured: true},
		{Name: "Designer Sunglasses", Category: "Female Fashion", Price: 2800, Description: "UV protected"},
		{Name: "Used Phone", Category: "Electronics", Price: 900, IsUsed: true},
	}
	for i := range seed {
		require.NoError(t, store.Products.Create(ctx, &seed[i]))
	}

	byCategory, err := store.Products.List(ctx, models.ProductFilter{Category: "electronics"})
	require.NoError(t, err)
	assert.Len(t, byCategory, 2)

	all, err := store.Products.List(ctx, models.ProductFilter{Category: "all"})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	featured, err := store.Products.List(ctx, models.ProductFilter{Featured: true})
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.Equal(t, "Premium Leather Watch", featured[0].Name)

	minPrice, maxPrice := 1000.0, 3000.0
	ranged, err := store.Products.List(ctx, models.ProductFilter{MinPrice: &minPrice, MaxPrice: &maxPrice})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, "Designer Sunglasses", ranged[0].Name)

	searched, err := store.Products.List(ctx, models.ProductFilter{Search: "uv"})
	require.NoError(t, err)
	require.Len(t, searched, 1)

	categories, err := store.Products.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Electronics", "Female Fashion"}, categories)

	seed[0].Price = 5000
	require.NoError(t, store.Products.Update(ctx, &seed[0]))
	updated, err := store.Products.GetByID(ctx, seed[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 5000.0, updated.Price)

	assert.ErrorIs(t, store.Products.Update(ctx, &models.Product{ID: "missing", Name: "x"}), repositories.ErrNotFound)
	require.NoError(t, store.Products.Delete(ctx, seed[0].ID))
	assert.ErrorIs(t, store.Products.Delete(ctx, seed[0].ID), repositories.ErrNotFound)
}

func TestGORMMessageAndContactRepositories(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now()
	first := &models.Message{ConversationID: "c1", SenderID: "u1", RecipientID: models.AdminParticipantID, Message: "hello", Timestamp: base}
	second := &models.Message{ConversationID: "c1", SenderID: models.AdminParticipantID, RecipientID: "u1", Message: "hi", Timestamp: base.Add(time.Minute)}
	require.NoError(t, store.Messages.Create(ctx, second))
	require.NoError(t, store.Messages.Create(ctx, first))

	conv, err := store.Messages.ListByConversation(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, conv, 2)
	assert.Equal(t, "hello", conv[0].Message)

	require.NoError(t, store.Messages.MarkRead(ctx, first.ID, time.Now()))
	assert.ErrorIs(t, store.Messages.MarkRead(ctx, "missing", time.Now()), repositories.ErrNotFound)
	require.NoError(t, store.Messages.Delete(ctx, second.ID))

	contact := &models.Contact{Name: "Ali", Email: "ali@x.com", Message: "Where is my order?", Status: models.ContactNew}
	require.NoError(t, store.Contacts.Create(ctx, contact))
	require.NoError(t, store.Contacts.UpdateStatus(ctx, contact.ID, models.ContactReplied))
	contacts, err := store.Contacts.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, models.ContactReplied, contacts[0].Status)
}

func TestGORMProductRepository_SearchMatchesWildcardsLiterally(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"50% Off Bundle", "Wrist_Band", "Plain Strap"} {
		require.NoError(t, store.Products.Create(ctx, &models.Product{Name: name, Category: "Accessories", Price: 10}))
	}

	percent, err := store.Products.List(ctx, models.ProductFilter{Search: "%"})
	require.NoError(t, err)
	require.Len(t, percent, 1)
	assert.Equal(t, "50% Off Bundle", percent[0].Name)

	underscore, err := store.Products.List(ctx, models.ProductFilter{Search: "t_b"})
	require.NoError(t, err)
	require.Len(t, underscore, 1)
	assert.Equal(t, "Wrist_Band", underscore[0].Name)
}
