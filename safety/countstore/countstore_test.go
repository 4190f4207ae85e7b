package countstore

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemCountStoreBasics(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	cs := NewMemCountStore()

	c, err := cs.GetCount(ctx, "reports", "whisper/abc", PeriodTotal)
	assert.NoError(err)
	assert.Equal(0, c)
	assert.NoError(cs.Increment(ctx, "reports", "whisper/abc"))
	assert.NoError(cs.Increment(ctx, "reports", "whisper/abc"))

	for _, period := range []string{PeriodTotal, PeriodDay, PeriodHour} {
		c, err = cs.GetCount(ctx, "reports", "whisper/abc", period)
		assert.NoError(err)
		assert.Equal(2, c)
	}

	c, err = cs.GetCountDistinct(ctx, "reporters", "whisper/abc", PeriodTotal)
	assert.NoError(err)
	assert.Equal(0, c)
	assert.NoError(cs.IncrementDistinct(ctx, "reporters", "whisper/abc", "user-1"))
	assert.NoError(cs.IncrementDistinct(ctx, "reporters", "whisper/abc", "user-1"))
	assert.NoError(cs.IncrementDistinct(ctx, "reporters", "whisper/abc", "user-1"))
	c, err = cs.GetCountDistinct(ctx, "reporters", "whisper/abc", PeriodTotal)
	assert.NoError(err)
	assert.Equal(1, c)

	assert.NoError(cs.IncrementDistinct(ctx, "reporters", "whisper/abc", "user-2"))
	assert.NoError(cs.IncrementDistinct(ctx, "reporters", "whisper/abc", "user-3"))

	for _, period := range []string{PeriodTotal, PeriodDay, PeriodHour} {
		c, err = cs.GetCountDistinct(ctx, "reporters", "whisper/abc", period)
		assert.NoError(err)
		assert.Equal(3, c)
	}
}

func TestMemCountStoreConcurrent(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	cs := NewMemCountStore()

	// two concurrent reports against the same content must both land (run
	// with -race)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				assert.NoError(cs.Increment(ctx, "reports", "whisper/xyz"))
				assert.NoError(cs.IncrementDistinct(ctx, "reporters", "whisper/xyz", "user-1"))
			}
		}()
	}
	wg.Wait()

	c, err := cs.GetCount(ctx, "reports", "whisper/xyz", PeriodTotal)
	assert.NoError(err)
	assert.Equal(40, c)

	c, err = cs.GetCountDistinct(ctx, "reporters", "whisper/xyz", PeriodTotal)
	assert.NoError(err)
	assert.Equal(1, c)
}
