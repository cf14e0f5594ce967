package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQueryCache_SetGet(t *testing.T) {
	c := New(0, time.Minute)

	c.Set("/ledger/list", []byte(`[1]`))

	got, ok := c.Get("/ledger/list")
	assert.True(t, ok)
	assert.Equal(t, []byte(`[1]`), got)

	_, ok = c.Get("/category/list")
	assert.False(t, ok)
}

func TestQueryCache_StoresCopy(t *testing.T) {
	c := New(4, time.Minute)
	body := []byte(`abc`)
	c.Set("k", body)
	body[0] = 'z'

	got, _ := c.Get("k")
	assert.Equal(t, []byte(`abc`), got)
}

func TestQueryCache_InvalidateByPrefix(t *testing.T) {
	c := New(10, time.Minute)
	c.Set("/ledger/1/accounts", []byte(`a`))
	c.Set("/ledger/1/transactions?page=1", []byte(`b`))
	c.Set("/ledger/1/transactions?page=2", []byte(`c`))
	c.Set("/ledger/2/transactions?page=1", []byte(`d`))
	c.Set("/category/list", []byte(`e`))

	removed := c.Invalidate("/ledger/1/transactions", "/ledger/1/accounts")

	assert.Equal(t, 3, removed)
	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("/ledger/2/transactions?page=1")
	assert.True(t, ok)
}

func TestQueryCache_InvalidateWholeSegments(t *testing.T) {
	c := New(10, time.Minute)
	c.Set("/ledger/1", []byte(`a`))
	c.Set("/ledger/1/accounts", []byte(`b`))
	c.Set("/ledger/10", []byte(`c`))
	c.Set("/ledger/10/accounts", []byte(`d`))
	c.Set("/tags/list", []byte(`e`))

	assert.Equal(t, 2, c.Invalidate("/ledger/1"))
	_, ok := c.Get("/ledger/10")
	assert.True(t, ok)
	_, ok = c.Get("/ledger/10/accounts")
	assert.True(t, ok)

	assert.Equal(t, 1, c.Invalidate("/tags/"))
	assert.Equal(t, 2, c.Len())
}

func TestQueryCache_Expiry(t *testing.T) {
	c := New(10, 20*time.Millisecond)
	c.Set("k", []byte(`v`))

	assert.Eventually(t, func() bool {
		_, ok := c.Get("k")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestQueryCache_Purge(t *testing.T) {
	c := New(10, time.Minute)
	c.Set("a", []byte(`1`))
	c.Set("b", []byte(`2`))

	c.Purge()
	assert.Equal(t, 0, c.Len())
}
