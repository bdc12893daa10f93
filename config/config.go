// Copyright 2026 cinerec Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"runtime"
	"time"

	"github.com/cinerec/cinerec/model"
	"github.com/cinerec/cinerec/model/cf"
	"github.com/cinerec/cinerec/model/content"
	"github.com/go-playground/validator/v10"
	"github.com/juju/errors"
	"github.com/spf13/viper"
)

// Config is the configuration for the recommender.
type Config struct {
	Database      DatabaseConfig      `mapstructure:"database"`
	Content       ContentConfig       `mapstructure:"content"`
	Collaborative CollaborativeConfig `mapstructure:"collaborative"`
	Server        ServerConfig        `mapstructure:"server"`
}

// DatabaseConfig locates the input tables.
type DatabaseConfig struct {
	DataStore    string `mapstructure:"data_store" validate:"required"`
	CatalogTable string `mapstructure:"catalog_table" validate:"required"`
	RatingsTable string `mapstructure:"ratings_table" validate:"required"`
	MoviesTable  string `mapstructure:"movies_table" validate:"required"`
}

// ContentConfig is the configuration of the content similarity index.
type ContentConfig struct {
	Language      string              `mapstructure:"language" validate:"oneof=english portuguese none"`
	Weights       content.SoupWeights `mapstructure:"weights"`
	NumJobs       int                 `mapstructure:"num_jobs" validate:"gte=1"`
	NumSimilar    int                 `mapstructure:"num_similar" validate:"gt=0"`
	PosterBaseURL string              `mapstructure:"poster_base_url"`
}

func (c *ContentConfig) GetIndexConfig() content.IndexConfig {
	return content.IndexConfig{
		Weights:  c.Weights,
		Language: c.Language,
		Jobs:     c.NumJobs,
	}
}

// CollaborativeConfig is the configuration of the SVD model.
type CollaborativeConfig struct {
	NFactors     int     `mapstructure:"n_factors" validate:"gt=0"`
	NEpochs      int     `mapstructure:"n_epochs" validate:"gte=0"`
	Lr           float32 `mapstructure:"lr" validate:"gt=0"`
	Reg          float32 `mapstructure:"reg" validate:"gte=0"`
	InitMean     float32 `mapstructure:"init_mean"`
	InitStdDev   float32 `mapstructure:"init_std_dev" validate:"gte=0"`
	UseBias      bool    `mapstructure:"use_bias"`
	RandomState  int64   `mapstructure:"random_state"`
	MinRating    float32 `mapstructure:"min_rating"`
	MaxRating    float32 `mapstructure:"max_rating" validate:"gtfield=MinRating"`
	NumRecommend int     `mapstructure:"num_recommend" validate:"gt=0"`
	Verbose      int     `mapstructure:"verbose" validate:"gte=0"`
	NumJobs      int     `mapstructure:"num_jobs" validate:"gte=1"`
	TestRatio    float32 `mapstructure:"test_ratio" validate:"gt=0,lt=1"`
	NumFolds     int     `mapstructure:"num_folds" validate:"gte=2"`
}

func (c *CollaborativeConfig) GetParams() model.Params {
	return model.Params{
		model.NFactors:    c.NFactors,
		model.NEpochs:     c.NEpochs,
		model.Lr:          c.Lr,
		model.Reg:         c.Reg,
		model.InitMean:    c.InitMean,
		model.InitStdDev:  c.InitStdDev,
		model.UseBias:     c.UseBias,
		model.RandomState: c.RandomState,
		model.MinRating:   c.MinRating,
		model.MaxRating:   c.MaxRating,
	}
}

func (c *CollaborativeConfig) GetFitConfig() *cf.FitConfig {
	return cf.NewFitConfig().
		SetJobs(c.NumJobs).
		SetVerbose(c.Verbose)
}

// ServerConfig is the configuration of the REST server.
type ServerConfig struct {
	Host      string        `mapstructure:"host"`
	Port      int           `mapstructure:"port" validate:"gte=0,lte=65535"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl" validate:"gte=0"`
	CacheSize int           `mapstructure:"cache_size" validate:"gte=0"`
	// RateLimit caps queries per second. Zero disables the limit.
	RateLimit int `mapstructure:"rate_limit" validate:"gte=0"`
}

func GetDefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DataStore:    "data",
			CatalogTable: "movies_data_tmdb",
			RatingsTable: "ratings",
			MoviesTable:  "movies",
		},
		Content: ContentConfig{
			Language:      "english",
			Weights:       content.DefaultSoupWeights(),
			NumJobs:       runtime.NumCPU(),
			NumSimilar:    5,
			PosterBaseURL: "https://image.tmdb.org/t/p/w342",
		},
		Collaborative: CollaborativeConfig{
			NFactors:     100,
			NEpochs:      20,
			Lr:           0.005,
			Reg:          0.02,
			InitMean:     0,
			InitStdDev:   0.1,
			UseBias:      true,
			RandomState:  0,
			MinRating:    1,
			MaxRating:    5,
			NumRecommend: 10,
			Verbose:      5,
			NumJobs:      runtime.NumCPU(),
			TestRatio:    0.2,
			NumFolds:     5,
		},
		Server: ServerConfig{
			Host:      "127.0.0.1",
			Port:      8087,
			CacheTTL:  10 * time.Minute,
			CacheSize: 1000,
		},
	}
}

func (config *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(config); err != nil {
		return errors.NewNotValid(err, "invalid config")
	}
	return nil
}

func setDefault() {
	defaultConfig := GetDefaultConfig()
	// [database]
	viper.SetDefault("database.data_store", defaultConfig.Database.DataStore)
	viper.SetDefault("database.catalog_table", defaultConfig.Database.CatalogTable)
	viper.SetDefault("database.ratings_table", defaultConfig.Database.RatingsTable)
	viper.SetDefault("database.movies_table", defaultConfig.Database.MoviesTable)
	// [content]
	viper.SetDefault("content.language", defaultConfig.Content.Language)
	viper.SetDefault("content.weights.genres", defaultConfig.Content.Weights.Genres)
	viper.SetDefault("content.weights.keywords", defaultConfig.Content.Weights.Keywords)
	viper.SetDefault("content.weights.cast", defaultConfig.Content.Weights.Cast)
	viper.SetDefault("content.weights.director", defaultConfig.Content.Weights.Director)
	viper.SetDefault("content.weights.overview", defaultConfig.Content.Weights.Overview)
	viper.SetDefault("content.num_jobs", defaultConfig.Content.NumJobs)
	viper.SetDefault("content.num_similar", defaultConfig.Content.NumSimilar)
	viper.SetDefault("content.poster_base_url", defaultConfig.Content.PosterBaseURL)
	// [collaborative]
	viper.SetDefault("collaborative.n_factors", defaultConfig.Collaborative.NFactors)
	viper.SetDefault("collaborative.n_epochs", defaultConfig.Collaborative.NEpochs)
	viper.SetDefault("collaborative.lr", defaultConfig.Collaborative.Lr)
	viper.SetDefault("collaborative.reg", defaultConfig.Collaborative.Reg)
	viper.SetDefault("collaborative.init_mean", defaultConfig.Collaborative.InitMean)
	viper.SetDefault("collaborative.init_std_dev", defaultConfig.Collaborative.InitStdDev)
	viper.SetDefault("collaborative.use_bias", defaultConfig.Collaborative.UseBias)
	viper.SetDefault("collaborative.random_state", defaultConfig.Collaborative.RandomState)
	viper.SetDefault("collaborative.min_rating", defaultConfig.Collaborative.MinRating)
	viper.SetDefault("collaborative.max_rating", defaultConfig.Collaborative.MaxRating)
	viper.SetDefault("collaborative.num_recommend", defaultConfig.Collaborative.NumRecommend)
	viper.SetDefault("collaborative.verbose", defaultConfig.Collaborative.Verbose)
	viper.SetDefault("collaborative.num_jobs", defaultConfig.Collaborative.NumJobs)
	viper.SetDefault("collaborative.test_ratio", defaultConfig.Collaborative.TestRatio)
	viper.SetDefault("collaborative.num_folds", defaultConfig.Collaborative.NumFolds)
	// [server]
	viper.SetDefault("server.host", defaultConfig.Server.Host)
	viper.SetDefault("server.port", defaultConfig.Server.Port)
	viper.SetDefault("server.cache_ttl", defaultConfig.Server.CacheTTL)
	viper.SetDefault("server.cache_size", defaultConfig.Server.CacheSize)
	viper.SetDefault("server.rate_limit", defaultConfig.Server.RateLimit)
}

type configBinding struct {
	key string
	env string
}

// LoadConfig loads configuration from toml file. An empty path loads defaults only.
// Environment variables override both.
func LoadConfig(path string) (*Config, error) {
	// set default config
	setDefault()

	// bind environment bindings
	bindings := []configBinding{
		{"database.data_store", "CINEREC_DATA_STORE"},
		{"database.catalog_table", "CINEREC_CATALOG_TABLE"},
		{"database.ratings_table", "CINEREC_RATINGS_TABLE"},
		{"database.movies_table", "CINEREC_MOVIES_TABLE"},
		{"content.language", "CINEREC_CONTENT_LANGUAGE"},
		{"content.num_jobs", "CINEREC_CONTENT_JOBS"},
		{"collaborative.num_jobs", "CINEREC_COLLABORATIVE_JOBS"},
		{"collaborative.random_state", "CINEREC_RANDOM_STATE"},
		{"server.host", "CINEREC_SERVER_HOST"},
		{"server.port", "CINEREC_SERVER_PORT"},
	}
	for _, binding := range bindings {
		if err := viper.BindEnv(binding.key, binding.env); err != nil {
			return nil, errors.Trace(err)
		}
	}

	// load config file
	if path != "" {
		viper.SetConfigType("toml")
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return nil, errors.Trace(err)
		}
	}

	// unmarshal config file
	var conf Config
	if err := viper.Unmarshal(&conf); err != nil {
		return nil, errors.Trace(err)
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &conf, nil
}
