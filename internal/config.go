package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/quire/internal/models"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Content ContentConfig     `yaml:"content"`
	Output  OutputConfig      `yaml:"output"`
	Site    SiteConfig        `yaml:"site"`
	Listing ListingConfig     `yaml:"listing"`
	Build   BuildConfig       `yaml:"build"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Content.Validate(); err != nil {
		return fmt.Errorf("content: %w", err)
	}
	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if err := c.Site.Validate(); err != nil {
		return fmt.Errorf("site: %w", err)
	}
	if err := c.Listing.Validate(); err != nil {
		return fmt.Errorf("listing: %w", err)
	}
	return c.Build.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds the preview server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ContentConfig points at the directory holding the posts.
type ContentConfig struct {
	Dir string `yaml:"dir"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
	)
}

// OutputConfig points at the directory the site is built into.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// Validate validates the output configuration.
func (c *OutputConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
	)
}

// SiteConfig holds the site identity used in page metadata, feeds and
// preview images.
type SiteConfig struct {
	models.Site `yaml:",inline"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(&c.Site,
		validation.Field(&c.Site.Name, validation.Required),
		validation.Field(&c.Site.URL, validation.Required, is.URL),
		validation.Field(&c.Site.Email, is.EmailFormat),
	)
}

// ListingConfig controls progressive reveal on the home page.
type ListingConfig struct {
	PageSize int `yaml:"page_size"`
}

// Validate validates the listing configuration.
func (c *ListingConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.PageSize, validation.Required, validation.Min(1)),
	)
}

// BuildConfig tunes site generation.
//
// Drafts publishes draft posts and should only be enabled for previews.
// Clean removes output files the build did not produce.
type BuildConfig struct {
	OGWorkers int  `yaml:"og_workers"`
	Drafts    bool `yaml:"drafts"`
	Clean     bool `yaml:"clean"`
}

// Validate validates the build configuration.
func (c *BuildConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.OGWorkers, validation.Min(0), validation.Max(64)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Content: ContentConfig{
			Dir: "./content/blog",
		},
		Output: OutputConfig{
			Dir: "./public",
		},
		Site: SiteConfig{
			Site: models.Site{
				Name: "Quire",
				URL:  "http://localhost:8080",
			},
		},
		Listing: ListingConfig{
			PageSize: 5,
		},
		Build: BuildConfig{
			Clean: true,
		},
	}
}
