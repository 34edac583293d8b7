package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/habitboard/internal/config"
	"github.com/theirongolddev/habitboard/internal/tui/theme"
)

// SetupValues holds the answers of the setup wizard.
type SetupValues struct {
	Driver     string
	GistID     string
	GistToken  string
	S3Bucket   string
	S3Region   string
	S3Endpoint string
	Mirror     bool
	Theme      string
}

// SetupValuesFrom prefills the wizard from an existing config.
func SetupValuesFrom(cfg config.Config) SetupValues {
	return SetupValues{
		Driver:     cfg.Storage.Driver,
		GistID:     cfg.Gist.ID,
		S3Bucket:   cfg.S3.Bucket,
		S3Region:   cfg.S3.Region,
		S3Endpoint: cfg.S3.Endpoint,
		Mirror:     cfg.Storage.Mirror,
		Theme:      cfg.Appearance.Theme,
	}
}

// NewSetupForm builds the first-run wizard. Storage-specific groups are
// hidden unless their driver is selected.
func NewSetupForm(vals *SetupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], len(theme.All))
	for i, th := range theme.All {
		themeOpts[i] = huh.NewOption(th.Name, th.Name)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to habitboard").
				Description("Track habits on a calendar, keep a journal, and sync it all to one JSON document."),
			huh.NewSelect[string]().
				Title("Where should your data live?").
				Options(
					huh.NewOption("GitHub gist", config.DriverGist),
					huh.NewOption("S3 bucket", config.DriverS3),
					huh.NewOption("This machine only", config.DriverLocal),
				).
				Value(&vals.Driver),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Gist ID").
				Description("The id at the end of the gist URL.").
				Value(&vals.GistID).
				Validate(required("gist id")),
			huh.NewInput().
				Title("GitHub token").
				Description("Needs the gist scope. Leave blank to use GITHUB_TOKEN.").
				EchoMode(huh.EchoModePassword).
				Value(&vals.GistToken),
		).WithHideFunc(func() bool { return vals.Driver != config.DriverGist }),
		huh.NewGroup(
			huh.NewInput().
				Title("Bucket").
				Value(&vals.S3Bucket).
				Validate(required("bucket")),
			huh.NewInput().
				Title("Region").
				Value(&vals.S3Region),
			huh.NewInput().
				Title("Endpoint").
				Description("Only for S3-compatible stores such as MinIO. Leave blank for AWS.").
				Value(&vals.S3Endpoint),
		).WithHideFunc(func() bool { return vals.Driver != config.DriverS3 }),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Keep local snapshots of every save?").
				Description("Used as a fallback when the remote cannot be read.").
				Value(&vals.Mirror),
		).WithHideFunc(func() bool { return vals.Driver == config.DriverLocal }),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.Theme),
		),
	)
}

func required(field string) func(string) error {
	return func(v string) error {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

// ApplySetup copies the wizard answers onto cfg.
func ApplySetup(cfg *config.Config, vals SetupValues) {
	cfg.Storage.Driver = vals.Driver
	cfg.Storage.Mirror = vals.Mirror || vals.Driver == config.DriverLocal

	switch vals.Driver {
	case config.DriverGist:
		cfg.Gist.ID = strings.TrimSpace(vals.GistID)
		if tok := strings.TrimSpace(vals.GistToken); tok != "" {
			cfg.Gist.Token = tok
		}
	case config.DriverS3:
		cfg.S3.Bucket = strings.TrimSpace(vals.S3Bucket)
		if r := strings.TrimSpace(vals.S3Region); r != "" {
			cfg.S3.Region = r
		}
		cfg.S3.Endpoint = strings.TrimSpace(vals.S3Endpoint)
		cfg.S3.PathStyle = cfg.S3.Endpoint != ""
	}

	if vals.Theme != "" {
		cfg.Appearance.Theme = vals.Theme
		theme.SetActive(vals.Theme)
	}
}
