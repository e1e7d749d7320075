package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	localstatecache "codecompass/internal/cache/localstate"
	"codecompass/internal/diagram"
	"codecompass/internal/gateway/config"
	exportrepo "codecompass/internal/gateway/repository/export"
	localstaterepo "codecompass/internal/gateway/repository/localstate"
)

type gatewayStores struct {
	localState localstaterepo.Store
	exports    diagram.ExportStore
	closers    []io.Closer
}

func (s *gatewayStores) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func initStores(ctx context.Context, cfg *config.Config) (*gatewayStores, error) {
	stores := &gatewayStores{}

	origin, err := chooseLocalStateOrigin(ctx, cfg, stores)
	if err != nil {
		_ = stores.Close()
		return nil, err
	}
	stores.localState = localstatecache.NewCachedStore(origin, localstatecache.DefaultCacheConfig())
	stores.exports = chooseExportStore(cfg)
	return stores, nil
}

// chooseLocalStateOrigin prefers postgres, then a bolt file, then memory.
func chooseLocalStateOrigin(ctx context.Context, cfg *config.Config, stores *gatewayStores) (localstaterepo.Store, error) {
	if dsn := strings.TrimSpace(cfg.DatabaseURL); dsn != "" {
		db, err := localstaterepo.OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open local state db: %w", err)
		}
		stores.closers = append(stores.closers, db)
		log.Printf("local state store: postgres")
		return localstaterepo.NewPostgresStore(db), nil
	}
	if path := strings.TrimSpace(cfg.BoltPath); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create local state dir: %w", err)
		}
		bs, err := localstaterepo.NewBoltStore(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open local state file %s: %w", path, err)
		}
		stores.closers = append(stores.closers, bs)
		log.Printf("local state store: bolt path=%s", path)
		return bs, nil
	}
	log.Printf("local state store: in-memory")
	return localstatecache.NewMemoryStore(), nil
}

func chooseExportStore(cfg *config.Config) diagram.ExportStore {
	if cfg.Export.CanUseS3() {
		s3Cfg := exportrepo.S3Config{
			Endpoint:  cfg.Export.Endpoint,
			Region:    cfg.Export.Region,
			AccessKey: cfg.Export.AccessKey,
			SecretKey: cfg.Export.SecretKey,
			Bucket:    cfg.Export.Bucket,
			Prefix:    cfg.Export.Prefix,
			UseSSL:    cfg.Export.UseSSL,
		}
		s3Store, err := exportrepo.NewS3Store(s3Cfg)
		if err == nil {
			log.Printf("export store: s3 bucket=%s endpoint=%s", s3Cfg.Bucket, s3Cfg.Endpoint)
			return s3Store
		}
		log.Printf("export store: s3 unavailable, using in-memory fallback: %v", err)
	} else if cfg.Export.Enabled {
		log.Printf("export store: using in-memory fallback (s3 config incomplete)")
	}
	return exportrepo.NewMemoryStore()
}
