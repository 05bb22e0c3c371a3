// Package lease renders the filled lease document once a negotiation
// reaches agreement.
package lease

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"leaseline.app/leaseline/core/config"
)

type Terms struct {
	TenantName       string
	LandlordName     string
	Address          string
	City             string
	State            string
	Zipcode          string
	AgreedRent       int
	CommencementDate string // YYYY-MM-DD; optional
	TermMonths       int
}

type Document struct {
	Path            string
	Filename        string
	AgreedRent      int
	SecurityDeposit int
	CommencementOn  string
	TerminatesOn    string
}

type Generator struct {
	cfg config.LeaseConfig
}

func NewGenerator(cfg config.LeaseConfig) *Generator {
	return &Generator{cfg: cfg}
}

// Generate writes a filled lease PDF for the agreed terms and returns its
// location and the derived figures (security deposit is two months' rent;
// the termination date is the commencement date plus the term).
func (g *Generator) Generate(ctx context.Context, terms Terms) (*Document, error) {
	if terms.TenantName == "" {
		return nil, fmt.Errorf("tenant name is required")
	}
	if terms.AgreedRent <= 0 {
		return nil, fmt.Errorf("agreed rent must be positive")
	}
	if terms.TermMonths <= 0 {
		terms.TermMonths = 12
	}
	if terms.LandlordName == "" {
		terms.LandlordName = g.cfg.LandlordName
	}

	endDate := TermEnd(terms.CommencementDate, terms.TermMonths)
	deposit := terms.AgreedRent * 2
	fullAddress := fmt.Sprintf("%s, %s, %s %s", terms.Address, terms.City, terms.State, terms.Zipcode)

	if err := os.MkdirAll(g.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	filename := fmt.Sprintf("lease_%s_%s.pdf",
		strings.ReplaceAll(terms.TenantName, " ", "_"),
		time.Now().Format("20060102"),
	)
	path := filepath.Join(g.cfg.OutputDir, filename)

	if err := writePDF(path, terms, fullAddress, deposit, endDate); err != nil {
		return nil, fmt.Errorf("writing lease pdf: %w", err)
	}

	slog.InfoContext(ctx, "lease generated",
		"path", path,
		"agreed_rent", terms.AgreedRent,
		"security_deposit", deposit,
		"term_months", terms.TermMonths,
	)

	return &Document{
		Path:            path,
		Filename:        filename,
		AgreedRent:      terms.AgreedRent,
		SecurityDeposit: deposit,
		CommencementOn:  terms.CommencementDate,
		TerminatesOn:    endDate,
	}, nil
}

// TermEnd computes the lease end date from a YYYY-MM-DD start and a term in
// months. Returns empty on an unparseable start, matching the permissive
// handling of the optional field.
func TermEnd(commencement string, months int) string {
	if commencement == "" {
		return ""
	}
	start, err := time.Parse("2006-01-02", commencement)
	if err != nil {
		return ""
	}
	return start.AddDate(0, months, 0).Format("2006-01-02")
}

// SafeFilename validates a download request: PDF only, no path components.
func SafeFilename(name string) (string, error) {
	base := filepath.Base(name)
	if base != name || !strings.HasSuffix(base, ".pdf") || base == ".pdf" {
		return "", fmt.Errorf("invalid lease filename")
	}
	return base, nil
}

// Resolve maps a validated filename to its path under the output directory.
func (g *Generator) Resolve(name string) (string, error) {
	base, err := SafeFilename(name)
	if err != nil {
		return "", err
	}
	path := filepath.Join(g.cfg.OutputDir, base)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("lease file: %w", err)
	}
	return path, nil
}

func writePDF(path string, terms Terms, fullAddress string, deposit int, endDate string) error {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetTitle("Residential Lease Agreement", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "RESIDENTIAL LEASE AGREEMENT", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	line := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(60, 8, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 8, value, "", 1, "L", false, 0, "")
	}

	line("Landlord:", terms.LandlordName)
	line("Tenant:", terms.TenantName)
	line("Premises:", fullAddress)
	pdf.Ln(2)

	line("Monthly Rent:", fmt.Sprintf("$%d", terms.AgreedRent))
	line("Security Deposit:", fmt.Sprintf("$%d", deposit))
	line("Term Begins:", terms.CommencementDate)
	line("Term Ends:", endDate)
	line("Term Length:", fmt.Sprintf("%d months", terms.TermMonths))
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5,
		"The Premises are for the sole use as a personal residence by the named Tenant. "+
			"Rent is due on the first day of each month. The Security Deposit is due at signing "+
			"and is refundable subject to the condition of the Premises at move-out. "+
			"All other terms of the prior lease between the parties remain in effect except as "+
			"modified above.",
		"", "L", false)

	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(90, 8, "Landlord signature: ______________________", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 8, "Date: ____________", "", 1, "L", false, 0, "")
	pdf.Ln(4)
	pdf.CellFormat(90, 8, "Tenant signature: ______________________", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 8, "Date: ____________", "", 1, "L", false, 0, "")

	return pdf.OutputFileAndClose(path)
}
