package meshstore

import (
	"fmt"
	"log"
	"strings"
)

const (
	SourceFile     = "file"
	SourceS3       = "s3"
	SourcePostgres = "postgres"
)

type Options struct {
	Source      string
	Dir         string
	S3          S3Config
	DatabaseURL string
	CacheSize   int
}

// Open builds the configured origin store behind an LRU cache.
func Open(opts Options) (*CachedStore, error) {
	var (
		origin Store
		err    error
	)
	switch source := strings.ToLower(strings.TrimSpace(opts.Source)); source {
	case "", SourceFile:
		origin = NewDiskStore(opts.Dir)
		log.Printf("mesh store: disk root=%s", opts.Dir)
	case SourceS3:
		origin, err = NewS3Store(opts.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize mesh s3 store: %w", err)
		}
		log.Printf("mesh store: s3 bucket=%s endpoint=%s", opts.S3.Bucket, opts.S3.Endpoint)
	case SourcePostgres:
		origin, err = NewPostgresStore(opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize mesh postgres store: %w", err)
		}
		log.Printf("mesh store: postgres")
	default:
		return nil, fmt.Errorf("unknown mesh source %q", source)
	}
	return NewCachedStore(origin, opts.CacheSize)
}
