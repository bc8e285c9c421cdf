package config

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	Mongo       Mongo         `yaml:"mongo" validate:"required"`
	Redis       Redis         `yaml:"redis" validate:"required"`
	Queue       Queue         `yaml:"queue" validate:"required"`
	Log         Log           `yaml:"log"`
	GC          GC            `yaml:"gc"`
	FolderPath  string        `yaml:"folder_path"`   // base path of stored bytes
	SessionTTL  time.Duration `yaml:"session_ttl"`   // lifetime of auth tokens
	PageSize    int           `yaml:"page_size"`     // file records per listing page
	MaxBodySize int64         `yaml:"max_body_size"` // upload payload is base64 inside json, size it accordingly
	LoginRPS    float64       `yaml:"login_rps"`     // /connect attempts per second per IP
	Port        int           `yaml:"port"`
	HTTPS       bool          `yaml:"https"` // served behind TLS, enables HSTS
	CORSOrigins []string      `yaml:"cors_origins"`

	// worker: sources whose width*height*4 exceeds this are rejected before decoding
	MaxDecodedImageSize int64 `yaml:"max_decoded_image_size"`
	MetricsPort         int   `yaml:"metrics_port"` // worker /metrics listener
}

type Mongo struct {
	URI      string `yaml:"uri" validate:"required"`
	Database string `yaml:"database" validate:"required"`
}

type Redis struct {
	Addr string `yaml:"addr" validate:"required"`
	DB   int    `yaml:"db"`
}

type Queue struct {
	Driver   string   `yaml:"driver" validate:"oneof=kafka redis"`
	Brokers  []string `yaml:"brokers" validate:"required_if=Driver kafka"`
	Topic    string   `yaml:"topic"`
	GroupId  string   `yaml:"group_id"`
	RedisKey string   `yaml:"redis_key"`
}

type Log struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type GC struct {
	Interval        time.Duration `yaml:"interval"`
	SafetyThreshold time.Duration `yaml:"safety_threshold"` // orphans younger than this are kept
}

type Private struct {
	MongoUser     string `yaml:"mongo_user"`
	MongoPassword string `yaml:"mongo_password"`
	RedisPassword string `yaml:"redis_password"`
}

func (c *Config) SessionTTL() time.Duration {
	return c.Public.SessionTTL
}

func (p *Public) setDefaults() {
	if p.FolderPath == "" {
		p.FolderPath = "/tmp/files_manager"
	}
	if p.SessionTTL == 0 {
		p.SessionTTL = 24 * time.Hour
	}
	if p.PageSize == 0 {
		p.PageSize = 20
	}
	if p.MaxBodySize == 0 {
		p.MaxBodySize = 50 << 20
	}
	if p.MaxDecodedImageSize == 0 {
		p.MaxDecodedImageSize = 256 << 20
	}
	if p.MetricsPort == 0 {
		p.MetricsPort = 9100
	}
	if p.Port == 0 {
		p.Port = 5000
	}
	if p.LoginRPS == 0 {
		p.LoginRPS = 1
	}
	if p.Queue.Driver == "" {
		p.Queue.Driver = "kafka"
	}
	if p.Queue.Topic == "" {
		p.Queue.Topic = "fileQueue"
	}
	if p.Queue.GroupId == "" {
		p.Queue.GroupId = "thumbnail-worker"
	}
	if p.Queue.RedisKey == "" {
		p.Queue.RedisKey = "queue:fileQueue"
	}
	if p.GC.Interval == 0 {
		p.GC.Interval = time.Hour
	}
	if p.GC.SafetyThreshold == 0 {
		p.GC.SafetyThreshold = time.Hour
	}
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)

	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file")
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)
	public.setDefaults()

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(public); err != nil {
		panic(fmt.Sprintf("invalid config: %v", err))
	}

	return &Config{public, private}
}
