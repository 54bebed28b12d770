package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"text/template"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"

	"github.com/sanvivo/price-dashboard/internal/types"
)

// Output formats accepted by --output
const (
	outputTable    = "table"
	outputJSON     = "json"
	outputMarkdown = "markdown"
)

// priceView is one rendered table
type priceView struct {
	Timestamp string
	Total     int
	Rows      []types.PriceRow
}

// eur formats a price as euros
func eur(amount decimal.Decimal) string {
	cur := money.GetCurrency(money.EUR)
	cents := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(cents, money.EUR).Display()
}

func render(w io.Writer, format string, view priceView, noColor bool) error {
	switch format {
	case outputTable, "":
		return renderTable(w, view)
	case outputJSON:
		return renderJSON(w, view)
	case outputMarkdown:
		return renderMarkdown(w, view, noColor)
	default:
		return fmt.Errorf("unknown output format %q (use table, json or markdown)", format)
	}
}

func renderTable(w io.Writer, view priceView) error {
	fmt.Fprintf(w, "Snapshot: %s (%d of %d rows)\n\n", displayTimestamp(view.Timestamp), len(view.Rows), view.Total)
	if len(view.Rows) == 0 {
		fmt.Fprintln(w, "No products match the current filters.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSORTE\tKULTIVAR\tPHARMACY\tPRICE/G\tRECOMMENDED\tTREND")
	for _, row := range view.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			row.ID, row.Sorte, row.Kultivar, row.PharmacyID,
			eur(row.Price), eur(row.RecommendedPrice()), row.Trend.Label())
	}
	return tw.Flush()
}

type jsonView struct {
	Timestamp string           `json:"timestamp"`
	Total     int              `json:"total"`
	Data      []types.PriceRow `json:"data"`
}

func renderJSON(w io.Writer, view priceView) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonView{Timestamp: view.Timestamp, Total: view.Total, Data: view.Rows})
}

const priceMarkdownTemplate = `# Prices on {{ displayTimestamp .Timestamp }}

Showing **{{ len .Rows }}** of {{ .Total }} products.
{{- if .Rows }}

| Sorte | Kultivar | Pharmacy | Price/g | Recommended | Trend |
|:---|:---|:---|---:|---:|:---|
{{- range .Rows }}
| {{ cell .Sorte }} | {{ cell .Kultivar }} | {{ cell .PharmacyID }} | {{ eur .Price }} | {{ eur .RecommendedPrice }} | {{ cell .Trend.Label }} |
{{- end }}
{{- end }}
`

var markdownTemplate = template.Must(template.New("prices").Funcs(template.FuncMap{
	"eur":              eur,
	"cell":             markdownCell,
	"displayTimestamp": displayTimestamp,
}).Parse(priceMarkdownTemplate))

// priceMarkdown renders view as a markdown document
func priceMarkdown(view priceView) (string, error) {
	var b strings.Builder
	if err := markdownTemplate.Execute(&b, view); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return b.String(), nil
}

func renderMarkdown(w io.Writer, view priceView, noColor bool) error {
	md, err := priceMarkdown(view)
	if err != nil {
		return err
	}

	style := glamour.WithAutoStyle()
	if noColor {
		style = glamour.WithStandardStyle("notty")
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(120))
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

func markdownCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func displayTimestamp(ts string) string {
	if ts == "" {
		return "unknown"
	}
	return ts
}
