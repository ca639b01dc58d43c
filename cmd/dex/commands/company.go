package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/dex/display"
	"github.com/teranos/dex/relations"
)

// CompanyCmd groups company page operations
var CompanyCmd = &cobra.Command{
	Use:   "company",
	Short: "List, create and refresh company pages",
	Long: `List, create and refresh pages under Active/Relationships/Companies.

Examples:
  dex company ls
  dex company new "Acme Corp" --website https://acme.com --stage customer
  dex company refresh Acme_Corp`,
}

var companyLsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List company pages",
	Args:    cobra.NoArgs,
	RunE:    runCompanyLs,
}

var companyNewCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create a company page from the template",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompanyNew,
}

var companyRefreshCmd = &cobra.Command{
	Use:   "refresh <company>",
	Short: "Rebuild contacts, meetings and related tasks of a company page",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompanyRefresh,
}

var newCompany relations.NewCompany

func init() {
	companyNewCmd.Flags().StringVar(&newCompany.Website, "website", "", "Website; its domain is used for meeting detection")
	companyNewCmd.Flags().StringVar(&newCompany.Industry, "industry", "", "Industry")
	companyNewCmd.Flags().StringVar(&newCompany.Size, "size", "", "Company size")
	companyNewCmd.Flags().StringVar(&newCompany.Stage, "stage", relations.DefaultStage, "Prospect, Customer, Partner or Churned")
	companyNewCmd.Flags().StringSliceVar(&newCompany.Domains, "domain", nil, "Email domain (repeatable)")

	CompanyCmd.AddCommand(companyLsCmd)
	CompanyCmd.AddCommand(companyNewCmd)
	CompanyCmd.AddCommand(companyRefreshCmd)
}

func runCompanyLs(cmd *cobra.Command, args []string) error {
	e, err := newEngine(cmd)
	if err != nil {
		return fail(cmd, err)
	}
	list, err := e.ListCompanies(cmd.Context())
	if err != nil {
		return fail(cmd, err)
	}
	return emit(cmd, list, func() (string, error) { return display.Companies(list) })
}

func runCompanyNew(cmd *cobra.Command, args []string) error {
	e, err := newEngine(cmd)
	if err != nil {
		return fail(cmd, err)
	}
	req := newCompany
	req.Name = args[0]
	res, err := e.CreateCompany(cmd.Context(), req)
	if err != nil {
		return fail(cmd, err)
	}
	return emit(cmd, res, func() (string, error) {
		return fmt.Sprintf("%s %s\n  %s run \"dex company refresh %s\" to fill contacts and meetings",
			pterm.LightGreen("✓"), res.Message, pterm.Gray("→"), res.Path), nil
	})
}

func runCompanyRefresh(cmd *cobra.Command, args []string) error {
	e, err := newEngine(cmd)
	if err != nil {
		return fail(cmd, err)
	}
	res, err := e.RefreshCompany(cmd.Context(), args[0])
	if err != nil {
		return fail(cmd, err)
	}
	return emit(cmd, res, func() (string, error) {
		return fmt.Sprintf("%s %s: %d contact(s), %d meeting(s), %d task(s)",
			pterm.LightGreen("✓"), res.Company, res.ContactsFound, res.MeetingsFound, res.TasksFound), nil
	})
}
