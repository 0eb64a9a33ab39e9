package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-cli/internal/lead"
	"github.com/sells-group/prospect-cli/pkg/peopledata"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run provider searches and inspect the archive",
	Long:  "Runs a people or company search against the provider and archives every result verbatim for later promotion.",
}

func searchQueryFromFlags(cmd *cobra.Command) peopledata.Query {
	titles, _ := cmd.Flags().GetStringSlice("title")
	locations, _ := cmd.Flags().GetStringSlice("location")
	seniorities, _ := cmd.Flags().GetStringSlice("seniority")
	emailStatus, _ := cmd.Flags().GetStringSlice("email-status")
	employees, _ := cmd.Flags().GetStringSlice("employees")
	keywords, _ := cmd.Flags().GetString("keywords")
	page, _ := cmd.Flags().GetInt("page")
	perPage, _ := cmd.Flags().GetInt("per-page")

	return peopledata.Query{
		Titles:         titles,
		Locations:      locations,
		Seniorities:    seniorities,
		EmailStatuses:  emailStatus,
		EmployeeRanges: employees,
		Keywords:       keywords,
		Page:           page,
		PerPage:        perPage,
	}
}

func addSearchFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("title", nil, "person title filter (repeatable)")
	cmd.Flags().StringSlice("location", nil, "location filter (repeatable)")
	cmd.Flags().StringSlice("seniority", nil, "seniority filter (repeatable)")
	cmd.Flags().StringSlice("email-status", nil, "email status filter (repeatable)")
	cmd.Flags().StringSlice("employees", nil, "employee range filter, e.g. 1,10 (repeatable)")
	cmd.Flags().String("keywords", "", "keyword query")
	cmd.Flags().Int("page", 1, "result page")
	cmd.Flags().Int("per-page", 25, "results per page")
}

func runSearch(cmd *cobra.Command, searchType string) error {
	ctx := cmd.Context()

	env, err := initEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	q := searchQueryFromFlags(cmd)

	var resp *peopledata.SearchResponse
	if searchType == lead.SearchPeople {
		resp, err = env.Provider.SearchPeople(ctx, q)
	} else {
		resp, err = env.Provider.SearchCompanies(ctx, q)
	}
	if err != nil {
		return err
	}

	params, err := json.Marshal(q.Values())
	if err != nil {
		return err
	}

	rec, err := env.Archiver.Archive(ctx, cfg.Defaults.OwnerID, searchType, params, resp.Results())
	if err != nil {
		return err
	}

	fmt.Printf("Search %s archived %d results (page %d of %d, %d total)\n",
		rec.ID, rec.ResultCount,
		resp.Pagination.Page, resp.Pagination.TotalPages, resp.Pagination.TotalEntries)
	return nil
}

var searchPeopleCmd = &cobra.Command{
	Use:   "people",
	Short: "Search people at the provider",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSearch(cmd, lead.SearchPeople)
	},
}

var searchCompaniesCmd = &cobra.Command{
	Use:   "companies",
	Short: "Search companies at the provider",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSearch(cmd, lead.SearchCompanies)
	},
}

var searchResultsCmd = &cobra.Command{
	Use:   "results <search-id>",
	Short: "List archived results of a search",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		rows := env.Archiver.Results(ctx, args[0])
		if len(rows) == 0 {
			fmt.Fprintln(os.Stderr, "No archived results.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TOKEN\tPROMOTED\tARCHIVED AT")
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%v\t%s\n", r.Token, r.AddedToList,
				r.CreatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

func init() {
	addSearchFlags(searchPeopleCmd)
	addSearchFlags(searchCompaniesCmd)
	searchCmd.AddCommand(searchPeopleCmd, searchCompaniesCmd, searchResultsCmd)
	rootCmd.AddCommand(searchCmd)
}
