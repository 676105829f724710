package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/objstore"
	"github.com/sells-group/leadscout/internal/store"
)

var (
	profileCompanyID int64
	profileURL       string
	profileFile      string
	profileName      string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage company profile documents",
}

var profileAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a profile document by URL or upload a local file",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), "profile")
		if err != nil {
			return err
		}
		defer env.Close()

		var up uploader
		if env.Objects != nil {
			up = env.Objects
		}
		p, err := addProfile(cmd.Context(), env.Store, up, profileRequest{
			CompanyID: profileCompanyID,
			URL:       profileURL,
			File:      profileFile,
			Name:      profileName,
		})
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), p)
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a company's profile documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), "profile")
		if err != nil {
			return err
		}
		defer env.Close()

		profiles, err := env.Store.ListProfiles(cmd.Context(), profileCompanyID)
		if err != nil {
			return err
		}
		if profiles == nil {
			profiles = []model.Profile{}
		}
		return writeJSON(cmd.OutOrStdout(), profiles)
	},
}

// uploader stores a local file and returns its URL.
type uploader interface {
	Upload(ctx context.Context, localPath, key string) (string, error)
}

type profileRequest struct {
	CompanyID int64
	URL       string
	File      string
	Name      string
}

// addProfile registers a document for an existing company. A local File
// is uploaded first and registered under its object URL.
func addProfile(ctx context.Context, repo store.Repository, up uploader, req profileRequest) (*model.Profile, error) {
	req.URL = strings.TrimSpace(req.URL)
	if (req.URL == "") == (req.File == "") {
		return nil, eris.New("exactly one of --url or --file is required")
	}

	company, err := repo.GetCompany(ctx, req.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, eris.Errorf("company %d not found", req.CompanyID)
	}

	url := req.URL
	name := req.Name
	if req.File != "" {
		if up == nil {
			return nil, eris.New("objstore.endpoint must be set to upload files")
		}
		if _, err := os.Stat(req.File); err != nil {
			return nil, eris.Wrapf(err, "profile: stat %s", req.File)
		}
		url, err = up.Upload(ctx, req.File, objstore.ProfileKey(company.ID, req.File))
		if err != nil {
			return nil, err
		}
		if name == "" {
			name = filepath.Base(req.File)
		}
	}
	if name == "" {
		name = url[strings.LastIndex(url, "/")+1:]
	}

	p, err := repo.CreateProfile(ctx, company.ID, name, url)
	if err != nil {
		return nil, err
	}
	zap.L().Info("profile registered",
		zap.Int64("profile_id", p.ID),
		zap.String("company", company.Name),
		zap.String("url", url),
	)
	return p, nil
}

func init() {
	for _, c := range []*cobra.Command{profileAddCmd, profileListCmd} {
		c.Flags().Int64Var(&profileCompanyID, "company-id", 0, "owning company id")
		_ = c.MarkFlagRequired("company-id")
	}
	profileAddCmd.Flags().StringVar(&profileURL, "url", "", "URL of the document (http, https or s3)")
	profileAddCmd.Flags().StringVar(&profileFile, "file", "", "local file to upload to object storage")
	profileAddCmd.Flags().StringVar(&profileName, "name", "", "display file name (default from URL or file)")

	profileCmd.AddCommand(profileAddCmd, profileListCmd)
	rootCmd.AddCommand(profileCmd)
}
