// Package ingest resolves uploaded financial-statement documents into the
// typed statement.FinancialPeriod model. Shape-guessing happens exactly once,
// here at the boundary; downstream packages never inspect raw documents.
//
// The current adapter handles HTML statement tables as filed by Finnish
// companies (tuloslaskelma/tase layouts), with English label fallbacks for
// statements exported from common bookkeeping tools.
package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"arvo_valuation/pkg/core/statement"
)

// lineItem identifies one mapped statement field.
type lineItem int

const (
	itemRevenue lineItem = iota
	itemOtherIncome
	itemMaterials
	itemPersonnel
	itemOtherExpenses
	itemDepreciation
	itemFinancial
	itemTaxes
	itemNetIncome
	itemEquity
	itemAssetsTotal
)

// labelKeywords maps lowercased label substrings to statement fields.
// Finnish statutory labels first, English fallbacks after. Matched in order;
// the first hit wins, so more specific labels come before generic ones.
var labelKeywords = []struct {
	keyword string
	item    lineItem
}{
	{"liikevaihto", itemRevenue},
	{"liiketoiminnan muut tuotot", itemOtherIncome},
	{"materiaalit ja palvelut", itemMaterials},
	{"henkilöstökulut", itemPersonnel},
	{"liiketoiminnan muut kulut", itemOtherExpenses},
	{"poistot", itemDepreciation},
	{"rahoitustuotot ja -kulut", itemFinancial},
	{"tuloverot", itemTaxes},
	{"tilikauden voitto", itemNetIncome},
	{"tilikauden tulos", itemNetIncome},
	{"oma pääoma yhteensä", itemEquity},
	{"oma pääoma", itemEquity},
	{"vastaavaa yhteensä", itemAssetsTotal},
	{"taseen loppusumma", itemAssetsTotal},

	{"other operating income", itemOtherIncome},
	{"revenue", itemRevenue},
	{"net sales", itemRevenue},
	{"turnover", itemRevenue},
	{"materials and services", itemMaterials},
	{"personnel expenses", itemPersonnel},
	{"other operating expenses", itemOtherExpenses},
	{"depreciation", itemDepreciation},
	{"financial income and expenses", itemFinancial},
	{"income taxes", itemTaxes},
	{"profit for the period", itemNetIncome},
	{"net income", itemNetIncome},
	{"total equity", itemEquity},
	{"total assets", itemAssetsTotal},
}

// ParseStatementHTML extracts financial periods from an HTML document of
// statement tables. Each numeric column across the matched rows becomes one
// period, newest first (the filing convention). Rows whose label matches no
// known line item are skipped silently; a document yielding no mapped rows
// at all is an error.
func ParseStatementHTML(html string) ([]*statement.FinancialPeriod, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	// values[item][column] — columns are aligned across tables by index.
	values := map[lineItem][]float64{}
	maxColumns := 0

	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() < 2 {
			return
		}

		label := strings.ToLower(strings.TrimSpace(cells.First().Text()))
		item, ok := classifyLabel(label)
		if !ok {
			return
		}
		if _, seen := values[item]; seen {
			// First occurrence wins; summary sections often repeat labels.
			return
		}

		var nums []float64
		cells.Each(func(i int, cell *goquery.Selection) {
			if i == 0 {
				return
			}
			if v, err := parseFinnishNumber(cell.Text()); err == nil {
				nums = append(nums, v)
			}
		})
		if len(nums) == 0 {
			return
		}

		values[item] = nums
		if len(nums) > maxColumns {
			maxColumns = len(nums)
		}
	})

	if len(values) == 0 {
		return nil, fmt.Errorf("no recognizable statement rows found in document")
	}

	periods := make([]*statement.FinancialPeriod, maxColumns)
	for col := 0; col < maxColumns; col++ {
		p := &statement.FinancialPeriod{}
		get := func(item lineItem) float64 {
			if vs, ok := values[item]; ok && col < len(vs) {
				return vs[col]
			}
			return 0
		}

		p.IncomeStatement = statement.IncomeStatement{
			Revenue:                 get(itemRevenue),
			OtherIncome:             get(itemOtherIncome),
			MaterialsAndServices:    get(itemMaterials),
			PersonnelExpenses:       get(itemPersonnel),
			OtherExpenses:           get(itemOtherExpenses),
			Depreciation:            get(itemDepreciation),
			FinancialIncomeExpenses: get(itemFinancial),
			Taxes:                   get(itemTaxes),
			NetIncome:               get(itemNetIncome),
		}
		p.BalanceSheet = statement.BalanceSheet{
			Equity:      get(itemEquity),
			AssetsTotal: get(itemAssetsTotal),
		}
		periods[col] = p
	}

	return periods, nil
}

func classifyLabel(label string) (lineItem, bool) {
	for _, lk := range labelKeywords {
		if strings.Contains(label, lk.keyword) {
			return lk.item, true
		}
	}
	return 0, false
}

// parseFinnishNumber handles the number formats seen in filed statements:
// non-breaking or regular spaces as thousand separators, comma decimals,
// parenthesized or minus-signed negatives, and a trailing currency symbol.
func parseFinnishNumber(s string) (float64, error) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" || cleaned == "-" || cleaned == "–" {
		return 0, fmt.Errorf("empty cell")
	}

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}

	replacer := strings.NewReplacer(
		" ", "", // non-breaking space
		" ", "", // narrow no-break space
		" ", "",
		"€", "",
		"−", "-", // U+2212 minus
		",", ".",
	)
	cleaned = strings.TrimSpace(replacer.Replace(cleaned))

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if negative {
		v = -v
	}
	return v, nil
}
