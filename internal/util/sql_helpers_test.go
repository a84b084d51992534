package util

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStringToNullString(t *testing.T) {
	assert.Equal(t, sql.NullString{}, StringToNullString(""))
	assert.Equal(t, sql.NullString{String: "x", Valid: true}, StringToNullString("x"))
}

func TestNullablePointers(t *testing.T) {
	now := time.Now()
	assert.False(t, TimePtrToNullTime(nil).Valid)
	assert.Equal(t, now, *NullTimeToPtr(TimePtrToNullTime(&now)))

	f := 7.5
	assert.Nil(t, NullFloat64ToPtr(Float64PtrToNull(nil)))
	assert.Equal(t, 7.5, *NullFloat64ToPtr(Float64PtrToNull(&f)))

	i := 3
	assert.Nil(t, NullInt64ToIntPtr(IntPtrToNull(nil)))
	assert.Equal(t, 3, *NullInt64ToIntPtr(IntPtrToNull(&i)))

	var id int64 = 42
	assert.Equal(t, int64(42), *NullInt64ToPtr(Int64PtrToNull(&id)))

	b := false
	assert.Nil(t, NullBoolToPtr(BoolPtrToNull(nil)))
	assert.False(t, *NullBoolToPtr(BoolPtrToNull(&b)))
}

func TestNewULID(t *testing.T) {
	a, b := NewULID(), NewULID()
	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
}
