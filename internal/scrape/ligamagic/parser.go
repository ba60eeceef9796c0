package ligamagic

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/arenhart/tradepost/internal/roster"
)

// Column layout of the listing table. Rows with fewer cells than
// minRowCells carry no card data (spacers, ads, collapsed groups) and
// are skipped without comment.
const (
	minRowCells  = 11
	colQuantity  = 0
	colName      = 3
	colVariant   = 4
	colLanguage  = 5
	colQuality   = 6
	colSalePrice = 9
)

// CollectionRows locates the results table and returns its data rows.
// The second return reports whether the table exists at all; both "no
// table" and "table with only a header" end pagination.
func CollectionRows(doc *goquery.Document) ([]*goquery.Selection, bool) {
	table := doc.Find("table#" + collectionTableID)
	if table.Length() == 0 {
		return nil, false
	}

	var rows []*goquery.Selection
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return // header row
		}
		rows = append(rows, row)
	})

	return rows, true
}

// ParseCardRow normalizes one table row into a CardRecord. Returns nil
// for rows that cannot become a record: too few cells, or no card name.
func ParseCardRow(row *goquery.Selection) *roster.CardRecord {
	cells := row.Find("td")
	if cells.Length() < minRowCells {
		return nil
	}

	nameCell := cells.Eq(colName)
	name := parseCardName(nameCell)
	if name == "" {
		return nil
	}

	record := &roster.CardRecord{
		Name:     name,
		Variant:  strings.TrimSpace(cells.Eq(colVariant).Text()),
		Language: strings.TrimSpace(cells.Eq(colLanguage).Text()),
		Quality:  strings.TrimSpace(cells.Eq(colQuality).Text()),
		Quantity: parseQuantity(cells.Eq(colQuantity).Text()),
		Price:    parsePrice(cells.Eq(colSalePrice).Text()),
	}

	if href, ok := nameCell.Find("a").First().Attr("href"); ok {
		record.DetailURL = resolveCardURL(href)
	}
	if src, ok := nameCell.Find("img").First().Attr("src"); ok {
		record.ImageURL = resolveCardURL(src)
	}

	return record
}

// parseCardName extracts the canonical card name from the name cell.
// The cell may hold a tooltip wrapper with two linked labels (local and
// foreign language); both present yields the composite "local / foreign".
func parseCardName(cell *goquery.Selection) string {
	wrapper := cell.Find("div[data-tooltip]").First()
	if wrapper.Length() > 0 {
		anchors := wrapper.Find("a")
		local := strings.TrimSpace(anchors.Eq(0).Text())
		foreign := ""
		if anchors.Length() >= 2 {
			foreign = strings.TrimSpace(anchors.Eq(1).Text())
		}
		if local != "" && foreign != "" {
			return local + " / " + foreign
		}
		if local != "" {
			return local
		}
	}

	// Fallback: first anchor text anywhere in the cell
	return strings.TrimSpace(cell.Find("a").First().Text())
}

// resolveCardURL resolves a scraped href against the marketplace origin.
func resolveCardURL(href string) string {
	href = strings.TrimSpace(href)
	switch {
	case href == "":
		return ""
	case strings.HasPrefix(href, "http"):
		return href
	case strings.HasPrefix(href, "/"):
		return Origin + href
	default:
		// Relative fragments come back as "./card?id=..." on this site
		return Origin + "/" + strings.TrimLeft(href, "./")
	}
}

// parseQuantity reads the leading integer out of free-form quantity text
// like "4" or "2 unid.". Unparseable text counts as zero.
func parseQuantity(text string) int {
	text = strings.TrimSpace(text)
	end := 0
	for end < len(text) && text[end] >= '0' && text[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	qty, err := strconv.Atoi(text[:end])
	if err != nil || qty < 0 {
		return 0
	}
	return qty
}

// parsePrice strips the currency marker and keeps the price as display
// text; CardRecord.SalePrice parses it on demand.
func parsePrice(text string) string {
	text = strings.ReplaceAll(text, "R$", "")
	return strings.TrimSpace(text)
}
