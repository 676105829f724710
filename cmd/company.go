package main

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/store"
)

var companyFlags struct {
	industry     string
	homepage     string
	address      string
	email        string
	phone        string
	keyExecutive string
	logoURL      string
	sales        float64
	totalFunding float64
}

var companyCmd = &cobra.Command{
	Use:   "company",
	Short: "Manage company records",
}

var companyAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a company, or update the attributes given as flags",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), "company")
		if err != nil {
			return err
		}
		defer env.Close()

		c, err := env.Store.UpsertCompany(cmd.Context(), strings.Join(args, " "), companyAttributes(cmd.Flags()))
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), c)
	},
}

var companyShowCmd = &cobra.Command{
	Use:   "show <company-id>",
	Short: "Print a company with its stored leads",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg("company-id", args[0])
		if err != nil {
			return err
		}

		env, err := initEnv(cmd.Context(), "company")
		if err != nil {
			return err
		}
		defer env.Close()

		view, err := showCompany(cmd.Context(), env.Store, id)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), view)
	},
}

type companyView struct {
	*model.Company
	Leads []model.LeadView `json:"leads"`
}

func showCompany(ctx context.Context, repo store.Repository, id int64) (*companyView, error) {
	c, err := repo.GetCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, eris.Errorf("company %d not found", id)
	}
	leads, err := repo.ListLeads(ctx, id)
	if err != nil {
		return nil, err
	}
	if leads == nil {
		leads = []model.LeadView{}
	}
	return &companyView{Company: c, Leads: leads}, nil
}

// companyAttributes collects only the flags the user set, so unset
// attributes keep their stored values.
func companyAttributes(f *pflag.FlagSet) model.CompanyAttributes {
	text := func(name, v string) *string {
		if !f.Changed(name) {
			return nil
		}
		return model.String(v)
	}
	number := func(name string, v float64) *float64 {
		if !f.Changed(name) {
			return nil
		}
		return model.Float(v)
	}
	return model.CompanyAttributes{
		Industry:     text("industry", companyFlags.industry),
		Sales:        number("sales", companyFlags.sales),
		TotalFunding: number("total-funding", companyFlags.totalFunding),
		Address:      text("address", companyFlags.address),
		Email:        text("email", companyFlags.email),
		Homepage:     text("homepage", companyFlags.homepage),
		KeyExecutive: text("key-executive", companyFlags.keyExecutive),
		LogoURL:      text("logo-url", companyFlags.logoURL),
		PhoneNumber:  text("phone", companyFlags.phone),
	}
}

func addCompanyFlags(f *pflag.FlagSet) {
	f.StringVar(&companyFlags.industry, "industry", "", "industry")
	f.StringVar(&companyFlags.homepage, "homepage", "", "homepage URL")
	f.StringVar(&companyFlags.address, "address", "", "postal address")
	f.StringVar(&companyFlags.email, "email", "", "contact email")
	f.StringVar(&companyFlags.phone, "phone", "", "contact phone number")
	f.StringVar(&companyFlags.keyExecutive, "key-executive", "", "key executive")
	f.StringVar(&companyFlags.logoURL, "logo-url", "", "logo image URL")
	f.Float64Var(&companyFlags.sales, "sales", 0, "annual revenue")
	f.Float64Var(&companyFlags.totalFunding, "total-funding", 0, "total funding raised")
}

func init() {
	addCompanyFlags(companyAddCmd.Flags())

	companyCmd.AddCommand(companyAddCmd, companyShowCmd)
	rootCmd.AddCommand(companyCmd)
}
