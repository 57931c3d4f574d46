package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edvin/mailpanel/internal/model"
)

func TestSystemConfigService_Get_Success(t *testing.T) {
	db := &mockDB{}
	svc := NewSystemConfigService(db)
	ctx := context.Background()

	now := time.Now().Truncate(time.Microsecond)
	row := &mockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*string)) = "cfg-1"
		*(dest[1].(*string)) = "queue.flush_interval"
		*(dest[2].(*string)) = "300"
		*(dest[3].(*string)) = "seconds between automatic flushes"
		*(dest[4].(*time.Time)) = now
		return nil
	}}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(row)

	c, err := svc.Get(ctx, "queue.flush_interval")
	require.NoError(t, err)
	assert.Equal(t, "300", c.Value)
	assert.Equal(t, now, c.UpdatedAt)
}

func TestSystemConfigService_Get_NotFound(t *testing.T) {
	db := &mockDB{}
	svc := NewSystemConfigService(db)
	ctx := context.Background()

	row := &mockRow{scanFunc: func(dest ...any) error {
		return errors.New("no rows in result set")
	}}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(row)

	c, err := svc.Get(ctx, "missing")
	require.Error(t, err)
	assert.Nil(t, c)
}

func TestSystemConfigService_Set_Upsert(t *testing.T) {
	db := &mockDB{}
	svc := NewSystemConfigService(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	err := svc.Set(ctx, &model.SystemConfig{
		ID:        "cfg-1",
		Key:       "queue.flush_interval",
		Value:     "600",
		UpdatedAt: time.Now(),
	})
	require.NoError(t, err)
	db.AssertExpectations(t)
}

func TestSystemConfigService_Delete_NotFound(t *testing.T) {
	db := &mockDB{}
	svc := NewSystemConfigService(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("DELETE 0"), nil)

	err := svc.Delete(ctx, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSystemConfigService_List(t *testing.T) {
	db := &mockDB{}
	svc := NewSystemConfigService(db)
	ctx := context.Background()

	now := time.Now()
	rows := newMockRows(func(dest ...any) error {
		*(dest[0].(*string)) = "cfg-1"
		*(dest[1].(*string)) = "queue.flush_interval"
		*(dest[2].(*string)) = "300"
		*(dest[3].(*string)) = ""
		*(dest[4].(*time.Time)) = now
		return nil
	})
	db.On("Query", ctx, mock.AnythingOfType("string"), mock.Anything).Return(rows, nil)

	configs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, "queue.flush_interval", configs[0].Key)
}
