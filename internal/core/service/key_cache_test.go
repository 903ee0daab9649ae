package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"

	"github.com/99minutos/financevault/internal/core/domain"
	"github.com/99minutos/financevault/internal/core/ports/mocks"
	"github.com/99minutos/financevault/internal/core/service"
)

func TestKeyCache_FetchesOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockPublicKeySource(ctrl)
	src.EXPECT().FetchPublicKey(gomock.Any()).Return("PEM-1", nil).Times(1)

	cache := service.NewKeyCache(src, zerolog.Nop())
	for i := 0; i < 5; i++ {
		key, err := cache.Get(context.Background())
		if err != nil {
			t.Fatalf("get #%d: %v", i, err)
		}
		if key != "PEM-1" {
			t.Fatalf("expected PEM-1, got %q", key)
		}
	}
}

func TestKeyCache_ErrorIsNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockPublicKeySource(ctrl)
	gomock.InOrder(
		src.EXPECT().FetchPublicKey(gomock.Any()).Return("", domain.ErrKeyUnavailable),
		src.EXPECT().FetchPublicKey(gomock.Any()).Return("PEM-1", nil),
	)

	cache := service.NewKeyCache(src, zerolog.Nop())
	if _, err := cache.Get(context.Background()); !errors.Is(err, domain.ErrKeyUnavailable) {
		t.Fatalf("expected ErrKeyUnavailable, got %v", err)
	}
	key, err := cache.Get(context.Background())
	if err != nil || key != "PEM-1" {
		t.Fatalf("expected recovery on second call, got %q %v", key, err)
	}
}

func TestKeyCache_EmptyKeyIsUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockPublicKeySource(ctrl)
	src.EXPECT().FetchPublicKey(gomock.Any()).Return("", nil).Times(2)

	cache := service.NewKeyCache(src, zerolog.Nop())
	for i := 0; i < 2; i++ {
		if _, err := cache.Get(context.Background()); !errors.Is(err, domain.ErrKeyUnavailable) {
			t.Fatalf("expected ErrKeyUnavailable, got %v", err)
		}
	}
}

func TestKeyCache_ResetRefetches(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockPublicKeySource(ctrl)
	gomock.InOrder(
		src.EXPECT().FetchPublicKey(gomock.Any()).Return("PEM-1", nil),
		src.EXPECT().FetchPublicKey(gomock.Any()).Return("PEM-2", nil),
	)

	cache := service.NewKeyCache(src, zerolog.Nop())
	if key, _ := cache.Get(context.Background()); key != "PEM-1" {
		t.Fatalf("expected PEM-1, got %q", key)
	}
	cache.Reset()
	if key, _ := cache.Get(context.Background()); key != "PEM-2" {
		t.Fatalf("expected PEM-2 after reset, got %q", key)
	}
}

func TestKeyCache_ResetOnNilCache(t *testing.T) {
	var cache *service.KeyCache
	cache.Reset()
}

func TestKeyCache_ConcurrentFirstCallersAgree(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockPublicKeySource(ctrl)
	src.EXPECT().FetchPublicKey(gomock.Any()).Return("PEM-1", nil).MinTimes(1).MaxTimes(8)

	cache := service.NewKeyCache(src, zerolog.Nop())

	var wg sync.WaitGroup
	keys := make([]string, 8)
	for i := range keys {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			keys[i], _ = cache.Get(context.Background())
		}(i)
	}
	wg.Wait()

	for i, k := range keys {
		if k != "PEM-1" {
			t.Fatalf("caller %d got %q", i, k)
		}
	}
}
