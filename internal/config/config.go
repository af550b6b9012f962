package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	fileKey := envKey + "_FILE"
	filePath := os.Getenv(fileKey)
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	val := strings.TrimSpace(string(data))
	os.Setenv(envKey, val)
}

type Config struct {
	Server Server
	Redis  Redis
	Queue  Queue
	Media  Media
	R2     R2
}

type Server struct {
	Port     string
	Env      string
	LogLevel string
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type Queue struct {
	// Enabled turns durable queued execution on. The runner still falls
	// back to inline execution if the broker cannot be reached.
	Enabled          bool
	AudioConcurrency int
	VideoConcurrency int
}

type Media struct {
	StemsDir    string
	VideosDir   string
	OutputDir   string
	TempDir     string
	CatalogFile string
	FFmpegBin   string
	FFprobeBin  string
}

type R2 struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
}

func Load() (*Config, error) {
	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("REDIS_PASSWORD")
	readSecret("R2_ACCOUNT_ID")
	readSecret("R2_ACCESS_KEY_ID")
	readSecret("R2_SECRET_ACCESS_KEY")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()

	// Bind environment variables with underscores to nested config keys
	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.env", "SERVER_ENV")
	_ = viper.BindEnv("server.log_level", "LOG_LEVEL")
	_ = viper.BindEnv("redis.addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = viper.BindEnv("redis.db", "REDIS_DB")
	_ = viper.BindEnv("queue.enabled", "QUEUE_ENABLED")
	_ = viper.BindEnv("queue.audio_concurrency", "QUEUE_AUDIO_CONCURRENCY")
	_ = viper.BindEnv("queue.video_concurrency", "QUEUE_VIDEO_CONCURRENCY")
	_ = viper.BindEnv("media.stems_dir", "MEDIA_STEMS_DIR")
	_ = viper.BindEnv("media.videos_dir", "MEDIA_VIDEOS_DIR")
	_ = viper.BindEnv("media.output_dir", "MEDIA_OUTPUT_DIR")
	_ = viper.BindEnv("media.temp_dir", "MEDIA_TEMP_DIR")
	_ = viper.BindEnv("media.catalog_file", "MEDIA_CATALOG_FILE")
	_ = viper.BindEnv("media.ffmpeg_bin", "FFMPEG_BIN")
	_ = viper.BindEnv("media.ffprobe_bin", "FFPROBE_BIN")
	_ = viper.BindEnv("r2.account_id", "R2_ACCOUNT_ID")
	_ = viper.BindEnv("r2.access_key_id", "R2_ACCESS_KEY_ID")
	_ = viper.BindEnv("r2.secret_access_key", "R2_SECRET_ACCESS_KEY")
	_ = viper.BindEnv("r2.bucket_name", "R2_BUCKET_NAME")
	_ = viper.BindEnv("r2.public_url", "R2_PUBLIC_URL")

	// Defaults
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("queue.enabled", true)
	viper.SetDefault("queue.audio_concurrency", 1)
	viper.SetDefault("queue.video_concurrency", 1)
	viper.SetDefault("media.stems_dir", "./media/stems")
	viper.SetDefault("media.videos_dir", "./media/videos")
	viper.SetDefault("media.output_dir", "./media/output")
	viper.SetDefault("media.temp_dir", "./media/tmp")
	viper.SetDefault("media.catalog_file", "./media/catalog.json")
	viper.SetDefault("media.ffmpeg_bin", "ffmpeg")
	viper.SetDefault("media.ffprobe_bin", "ffprobe")

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: Server{
			Port:     viper.GetString("server.port"),
			Env:      viper.GetString("server.env"),
			LogLevel: viper.GetString("server.log_level"),
		},
		Redis: Redis{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		Queue: Queue{
			Enabled:          viper.GetBool("queue.enabled"),
			AudioConcurrency: viper.GetInt("queue.audio_concurrency"),
			VideoConcurrency: viper.GetInt("queue.video_concurrency"),
		},
		Media: Media{
			StemsDir:    viper.GetString("media.stems_dir"),
			VideosDir:   viper.GetString("media.videos_dir"),
			OutputDir:   viper.GetString("media.output_dir"),
			TempDir:     viper.GetString("media.temp_dir"),
			CatalogFile: viper.GetString("media.catalog_file"),
			FFmpegBin:   viper.GetString("media.ffmpeg_bin"),
			FFprobeBin:  viper.GetString("media.ffprobe_bin"),
		},
		R2: R2{
			AccountID:       viper.GetString("r2.account_id"),
			AccessKeyID:     viper.GetString("r2.access_key_id"),
			SecretAccessKey: viper.GetString("r2.secret_access_key"),
			BucketName:      viper.GetString("r2.bucket_name"),
			PublicURL:       viper.GetString("r2.public_url"),
		},
	}

	if cfg.Queue.AudioConcurrency < 1 {
		cfg.Queue.AudioConcurrency = 1
	}
	if cfg.Queue.VideoConcurrency < 1 {
		cfg.Queue.VideoConcurrency = 1
	}

	return cfg, nil
}
