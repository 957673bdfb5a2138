package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func drained(ch <-chan struct{}) int {
	n := 0
	for {
		select {
		case <-ch:
			n++
		default:
			return n
		}
	}
}

func TestReloadProvider_SignalsOnce(t *testing.T) {
	r := NewReloadProvider()
	assert.Equal(t, 0, drained(r.Requested()))

	r.Reload()
	assert.Equal(t, int64(1), r.Count())
	assert.Equal(t, 1, drained(r.Requested()))
}

func TestReloadProvider_CoalescesPendingRequests(t *testing.T) {
	r := NewReloadProvider()
	r.Reload()
	r.Reload()

	assert.Equal(t, int64(2), r.Count())
	assert.Equal(t, 1, drained(r.Requested()))
}
