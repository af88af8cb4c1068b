package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"meshsync/internal/meshstore"
)

type Config struct {
	Port string
	Env  string

	RelayURL    string
	Room        string
	Participant string

	TickHz           int
	EdgeThickness    float32
	RejectRemoteHeld bool

	Mesh MeshConfig
}

type MeshConfig struct {
	Source      string
	Name        string
	Dir         string
	DatabaseURL string
	CacheSize   int
	S3          meshstore.S3Config
}

// StoreOptions maps the mesh section onto meshstore.Open.
func (m MeshConfig) StoreOptions() meshstore.Options {
	return meshstore.Options{
		Source:      m.Source,
		Dir:         m.Dir,
		S3:          m.S3,
		DatabaseURL: m.DatabaseURL,
		CacheSize:   m.CacheSize,
	}
}

// Load reads .env (when present) and the process environment. Binaries apply
// their flags on top.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = ":8090"
	} else if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	return &Config{
		Port:             port,
		Env:              env,
		RelayURL:         firstNonEmpty(strings.TrimSpace(os.Getenv("RELAY_URL")), "ws://localhost:8090/ws"),
		Room:             firstNonEmpty(strings.TrimSpace(os.Getenv("ROOM")), "default"),
		Participant:      firstNonEmpty(strings.TrimSpace(os.Getenv("PARTICIPANT_ID")), uuid.NewString()),
		TickHz:           envInt("TICK_HZ", 60),
		EdgeThickness:    envFloat32("EDGE_THICKNESS", 0.01),
		RejectRemoteHeld: envBool("REJECT_REMOTE_HELD", false),
		Mesh:             loadMeshConfig(env),
	}, nil
}

func loadMeshConfig(env string) MeshConfig {
	return MeshConfig{
		Source:      firstNonEmpty(strings.TrimSpace(os.Getenv("MESH_SOURCE")), meshstore.SourceFile),
		Name:        firstNonEmpty(strings.TrimSpace(os.Getenv("MESH_NAME")), "cube.stl"),
		Dir:         firstNonEmpty(strings.TrimSpace(os.Getenv("MESH_DIR")), "models"),
		DatabaseURL: strings.TrimSpace(os.Getenv("MESH_DATABASE_URL")),
		CacheSize:   envInt("MESH_CACHE_SIZE", meshstore.DefaultCacheSize),
		S3:          loadS3Config(env),
	}
}

func loadS3Config(env string) meshstore.S3Config {
	local := strings.EqualFold(strings.TrimSpace(env), "local")
	endpoint := strings.TrimSpace(os.Getenv("MESH_S3_ENDPOINT"))
	if local {
		endpoint = firstNonEmpty(endpoint, "minio:9000")
	}
	return meshstore.S3Config{
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("MESH_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("MESH_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("MESH_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("MESH_S3_BUCKET")), "meshsync-models"),
		Prefix:    strings.TrimSpace(os.Getenv("MESH_S3_PREFIX")),
		UseSSL:    !local && envBool("MESH_S3_USE_SSL", true),
	}
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func envFloat32(key string, def float32) float32 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 32)
	if err != nil || v <= 0 {
		return def
	}
	return float32(v)
}

func envBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
