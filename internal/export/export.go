// Package export writes companies and contacts to spreadsheet files.
package export

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/lead"
	"github.com/sells-group/prospect-cli/internal/store"
	"github.com/sells-group/prospect-cli/pkg/hook"
)

// Format selects the output file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat maps a user-supplied format string, defaulting to xlsx.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "xlsx":
		return FormatXLSX, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", eris.Errorf("export: unsupported format %q", s)
	}
}

// Options selects what to export.
type Options struct {
	// ListID restricts the export to one list; empty exports every company.
	ListID string
	// IncludeContacts adds a contacts sheet (xlsx) or appends contact rows
	// after a blank line (csv).
	IncludeContacts bool
	Format          Format
}

type Exporter struct {
	store store.Store
	log   *zap.Logger
}

func NewExporter(st store.Store) *Exporter {
	return &Exporter{store: st, log: zap.L().Named("export")}
}

// CRMSink receives one exported record.
type CRMSink interface {
	ExportCRM(ctx context.Context, payload any) error
}

var _ CRMSink = (*hook.Client)(nil)

// CRMRecord is the payload pushed to the CRM export webhook.
type CRMRecord struct {
	Company  *lead.Company  `json:"company"`
	Contacts []lead.Contact `json:"contacts"`
}

// ExportCRM pushes one company and its contacts to the CRM webhook.
func (e *Exporter) ExportCRM(ctx context.Context, sink CRMSink, companyID string) error {
	company, err := e.store.GetCompany(ctx, companyID)
	if err != nil {
		return err
	}
	if company == nil {
		return eris.Errorf("export: company not found: %s", companyID)
	}

	contacts, err := e.store.ListContactsByCompany(ctx, companyID)
	if err != nil {
		return err
	}

	if err := sink.ExportCRM(ctx, CRMRecord{Company: company, Contacts: contacts}); err != nil {
		return err
	}
	e.log.Info("company exported to CRM",
		zap.String("company_id", companyID), zap.Int("contacts", len(contacts)))
	return nil
}

var companyHeader = []string{
	"name", "website", "industry", "size_range", "phone", "city", "state",
	"country", "founded_year", "annual_revenue", "tags",
}

var contactHeader = []string{
	"first_name", "last_name", "email", "title", "seniority", "company",
}

// Export writes the selected companies (and optionally their contacts) to w.
// It returns the number of company rows written.
func (e *Exporter) Export(ctx context.Context, ownerID string, opts Options, w io.Writer) (int, error) {
	companies, err := e.load(ctx, ownerID, opts.ListID)
	if err != nil {
		return 0, err
	}

	var contacts []contactRow
	if opts.IncludeContacts {
		for i := range companies {
			cs, err := e.store.ListContactsByCompany(ctx, companies[i].ID)
			if err != nil {
				return 0, err
			}
			for j := range cs {
				contacts = append(contacts, contactRow{contact: cs[j], companyName: companies[i].Name})
			}
		}
	}

	switch opts.Format {
	case FormatCSV:
		err = writeCSV(w, companies, contacts, opts.IncludeContacts)
	default:
		err = writeXLSX(w, companies, contacts, opts.IncludeContacts)
	}
	if err != nil {
		return 0, err
	}

	e.log.Info("export written",
		zap.Int("companies", len(companies)),
		zap.Int("contacts", len(contacts)),
		zap.String("format", string(opts.Format)))
	return len(companies), nil
}

func (e *Exporter) load(ctx context.Context, ownerID, listID string) ([]lead.Company, error) {
	if listID != "" {
		return e.store.ListCompaniesInList(ctx, listID)
	}
	return e.store.ListCompanies(ctx, ownerID, 10000, 0)
}

type contactRow struct {
	contact     lead.Contact
	companyName string
}

func companyCells(c *lead.Company) []string {
	year := ""
	if c.FoundedYear != 0 {
		year = strconv.Itoa(c.FoundedYear)
	}
	revenue := c.PrintedRevenue
	if revenue == "" && c.AnnualRevenue != nil {
		revenue = strconv.FormatInt(*c.AnnualRevenue, 10)
	}
	return []string{
		c.Name, c.Website, c.Industry, c.SizeRange, c.Phone, c.City, c.State,
		c.Country, year, revenue, strings.Join(c.Tags, ";"),
	}
}

func contactCells(r contactRow) []string {
	c := r.contact
	return []string{c.FirstName, c.LastName, c.Email, c.Title, c.Seniority, r.companyName}
}

func writeCSV(w io.Writer, companies []lead.Company, contacts []contactRow, includeContacts bool) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(companyHeader); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for i := range companies {
		if err := cw.Write(companyCells(&companies[i])); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}
	if includeContacts {
		if err := cw.Write([]string{}); err != nil {
			return eris.Wrap(err, "export: write csv separator")
		}
		if err := cw.Write(contactHeader); err != nil {
			return eris.Wrap(err, "export: write csv contact header")
		}
		for _, r := range contacts {
			if err := cw.Write(contactCells(r)); err != nil {
				return eris.Wrap(err, "export: write csv contact row")
			}
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

func writeXLSX(w io.Writer, companies []lead.Company, contacts []contactRow, includeContacts bool) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Companies")
	if err != nil {
		return eris.Wrap(err, "export: add companies sheet")
	}
	addRow(sheet, companyHeader)
	for i := range companies {
		addRow(sheet, companyCells(&companies[i]))
	}

	if includeContacts {
		contactSheet, err := f.AddSheet("Contacts")
		if err != nil {
			return eris.Wrap(err, "export: add contacts sheet")
		}
		addRow(contactSheet, contactHeader)
		for _, r := range contacts {
			addRow(contactSheet, contactCells(r))
		}
	}

	return eris.Wrap(f.Write(w), "export: write xlsx")
}

func addRow(sheet *xlsx.Sheet, cells []string) {
	row := sheet.AddRow()
	for _, c := range cells {
		row.AddCell().SetString(c)
	}
}
