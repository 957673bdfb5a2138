package providers

import "go.uber.org/atomic"

// ReloaderInterface requests a full reload of the application shell.
// Requests arriving before the shell drains them coalesce into one.
type ReloaderInterface interface {
	Reload()
	Requested() <-chan struct{}
	Count() int64
}

type ReloadProvider struct {
	ch    chan struct{}
	count atomic.Int64
}

func NewReloadProvider() ReloaderInterface {
	return &ReloadProvider{ch: make(chan struct{}, 1)}
}

func (r *ReloadProvider) Reload() {
	r.count.Inc()
	select {
	case r.ch <- struct{}{}:
	default:
	}
}

func (r *ReloadProvider) Requested() <-chan struct{} {
	return r.ch
}

func (r *ReloadProvider) Count() int64 {
	return r.count.Load()
}
