package pipeline

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"
	pdf "github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"monito/internal"
	"monito/internal/util"
)

var (
	ignorePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^--+$`),
		regexp.MustCompile(`(?i)^(terima kasih|thanks|thank you)`),
		regexp.MustCompile(`(?i)^(salam|regards|best regards|hormat kami)`),
		regexp.MustCompile(`(?i)^(telp|tel|hp|wa|whatsapp)[.:\s]`),
		regexp.MustCompile(`(?i)^e-?mail[:\s]`),
		regexp.MustCompile(`(?i)^http`),
		regexp.MustCompile(`(?i)^(daftar harga|harga per|price list|pricelist|update harga)`),
	}
	reLetters   = regexp.MustCompile(`\pL`)
	reDigit     = regexp.MustCompile(`\d`)
	reSeparator = regexp.MustCompile(`[;|:=\t]+`)
	reDashTrail = regexp.MustCompile(`[\s\-–—:.@]+$`)
)

// Header probes per product field, English and Indonesian. Price goes first
// so "harga satuan" is not taken for the unit column.
var columnProbes = []struct {
	field  string
	probes []string
}{
	{"price", []string{"harga", "price", "rp", "idr"}},
	{"name", []string{"nama", "produk", "barang", "item", "name", "product", "description", "deskripsi"}},
	{"unit", []string{"satuan", "unit", "uom", "sat"}},
	{"category", []string{"kategori", "category", "jenis", "kelompok"}},
	{"supplier", []string{"supplier", "vendor", "pemasok", "toko"}},
}

// ParsedEmail is what the extractor pulls out of one raw message.
type ParsedEmail struct {
	Rows            []internal.ExtractedRow
	Subject         string
	From            string
	Text            string
	HTML            string
	AttachmentNames []string
}

func ExtractRowsFromEmailRaw(raw []byte) (ParsedEmail, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return ParsedEmail{}, err
	}

	rows := make([]internal.ExtractedRow, 0)
	if env.Text != "" {
		rows = append(rows, parseTextLines(internal.SourceEmailText, env.Text)...)
	}
	if env.HTML != "" {
		rows = append(rows, parseHTMLTables(env.HTML)...)
	}

	attachmentNames := make([]string, 0, len(env.Attachments))
	for _, att := range env.Attachments {
		filename := strings.TrimSpace(att.FileName)
		if filename == "" {
			filename = "attachment"
		}
		attachmentNames = append(attachmentNames, filename)

		extra, err := parseAttachment(filename, att.Content)
		if err != nil || len(extra) == 0 {
			continue
		}
		for i := range extra {
			if extra[i].Meta == nil {
				extra[i].Meta = map[string]any{}
			}
			extra[i].Meta["attachment"] = filename
		}
		rows = append(rows, extra...)
	}

	rows = dedupeRows(rows)
	for i := range rows {
		rows[i].LineNo = i + 1
	}

	return ParsedEmail{
		Rows:            rows,
		Subject:         env.GetHeader("Subject"),
		From:            env.GetHeader("From"),
		Text:            env.Text,
		HTML:            env.HTML,
		AttachmentNames: attachmentNames,
	}, nil
}

func parseAttachment(filename string, content []byte) ([]internal.ExtractedRow, error) {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".xlsx"), strings.HasSuffix(lower, ".xls"):
		return parseXLSX(content)
	case strings.HasSuffix(lower, ".csv"):
		return parseCSV(bytes.NewReader(content))
	case strings.HasSuffix(lower, ".pdf"):
		return parsePDF(content)
	case strings.HasSuffix(lower, ".txt"):
		return parseTextLines(internal.SourceText, string(content)), nil
	}
	return nil, nil
}

// parseTextLines reads "name ... price" lines: the last price-looking token
// is the price and what precedes it is the name.
func parseTextLines(source internal.RowSource, text string) []internal.ExtractedRow {
	out := []internal.ExtractedRow{}
	for i, line := range splitLines(text) {
		row := lineToRow(source, i+1, line)
		if row == nil {
			continue
		}
		out = append(out, *row)
	}
	return out
}

func lineToRow(source internal.RowSource, lineNo int, rawLine string) *internal.ExtractedRow {
	compact := util.CollapseSpaces(rawLine)
	if compact == "" || isLikelyNoise(compact) || !reLetters.MatchString(compact) {
		return nil
	}
	token, ok := util.FindPriceToken(compact)
	if !ok {
		return nil
	}

	name := compact
	if idx := strings.LastIndex(name, token); idx >= 0 {
		name = name[:idx] + " " + name[idx+len(token):]
	}
	name = reSeparator.ReplaceAllString(name, " ")
	name = reDashTrail.ReplaceAllString(util.CollapseSpaces(name), "")
	if len([]rune(name)) <= 1 || !reLetters.MatchString(name) {
		return nil
	}

	return &internal.ExtractedRow{
		LineNo:  lineNo,
		Source:  source,
		RawLine: compact,
		Fields:  map[string]any{"name": name, "price": token},
		Meta:    map[string]any{},
	}
}

func parseHTMLTables(html string) []internal.ExtractedRow {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	out := []internal.ExtractedRow{}
	globalLine := 0
	doc.Find("table").Each(func(tableIdx int, table *goquery.Selection) {
		rows := table.Find("tr")
		if rows.Length() < 2 {
			return
		}

		headers := []string{}
		rows.First().Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			headers = append(headers, strings.ToLower(util.CollapseSpaces(cell.Text())))
		})
		columns := inferColumns(headers)
		if _, ok := columns["name"]; !ok {
			columns = defaultColumns()
		}

		rows.Slice(1, rows.Length()).Each(func(_ int, tr *goquery.Selection) {
			cells := []string{}
			tr.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, util.CollapseSpaces(cell.Text()))
			})
			row := cellsToRow(internal.SourceHTMLTable, cells, columns)
			if row == nil {
				return
			}
			globalLine++
			row.LineNo = globalLine
			row.Meta["table"] = tableIdx
			out = append(out, *row)
		})
	})

	return out
}

func parseXLSX(content []byte) ([]internal.ExtractedRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := []internal.ExtractedRow{}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}
		for _, row := range gridToRows(internal.SourceXLSX, rows) {
			row.Meta["sheet"] = sheet
			out = append(out, row)
		}
	}
	for i := range out {
		out[i].LineNo = i + 1
	}
	return out, nil
}

func parseCSV(r io.Reader) ([]internal.ExtractedRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	out := gridToRows(internal.SourceCSV, records)
	for i := range out {
		out[i].LineNo = i + 1
	}
	return out, nil
}

// gridToRows converts spreadsheet-like rows. A header is looked for in the
// first three rows; until one is found the columns are read as name, unit,
// price.
func gridToRows(source internal.RowSource, grid [][]string) []internal.ExtractedRow {
	var columns map[string]int
	out := []internal.ExtractedRow{}
	for i, raw := range grid {
		cells := normalizeCells(raw)
		if len(strings.Join(cells, "")) == 0 {
			continue
		}
		if i < 3 && columns == nil {
			if inferred := inferColumns(lowerCells(cells)); len(inferred) >= 2 {
				columns = inferred
				continue
			}
		}
		cols := columns
		if cols == nil {
			cols = defaultColumns()
		}
		row := cellsToRow(source, cells, cols)
		if row == nil {
			continue
		}
		row.Meta["rowNumber"] = i + 1
		out = append(out, *row)
	}
	return out
}

func cellsToRow(source internal.RowSource, cells []string, columns map[string]int) *internal.ExtractedRow {
	if len(cells) == 0 {
		return nil
	}
	rawLine := strings.Join(cells, " | ")
	name := pickCell(cells, columns["name"], 0)
	if name == "" || !reDigit.MatchString(rawLine) {
		return nil
	}

	fields := map[string]any{"name": name}
	price := ""
	if idx, ok := columns["price"]; ok {
		price = pickCell(cells, idx, -1)
	}
	if price == "" {
		rest := strings.Join(cells[1:], " ")
		if token, ok := util.FindPriceToken(rest); ok {
			price = token
		}
	}
	if price == "" {
		return nil
	}
	fields["price"] = price
	for _, field := range []string{"unit", "category", "supplier"} {
		if idx, ok := columns[field]; ok {
			if v := pickCell(cells, idx, -1); v != "" {
				fields[field] = v
			}
		}
	}

	return &internal.ExtractedRow{
		Source:  source,
		RawLine: rawLine,
		Fields:  fields,
		Meta:    map[string]any{"row": cells},
	}
}

func parsePDF(content []byte) ([]internal.ExtractedRow, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}

	out := []internal.ExtractedRow{}
	lineNo := 0
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		for _, line := range splitLines(text) {
			lineNo++
			row := lineToRow(internal.SourcePDF, lineNo, line)
			if row == nil {
				continue
			}
			row.Meta["page"] = i
			out = append(out, *row)
		}
	}
	return out, nil
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isLikelyNoise(line string) bool {
	for _, re := range ignorePatterns {
		if re.MatchString(strings.TrimSpace(line)) {
			return true
		}
	}
	return false
}

func dedupeRows(rows []internal.ExtractedRow) []internal.ExtractedRow {
	seen := map[string]struct{}{}
	out := make([]internal.ExtractedRow, 0, len(rows))
	for _, row := range rows {
		key := string(row.Source) + "|" + row.RawLine
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, row)
	}
	return out
}

func findHeaderIndex(headers []string, probes []string, taken map[int]bool) int {
	for i, h := range headers {
		if taken[i] {
			continue
		}
		for _, probe := range probes {
			if strings.Contains(h, probe) {
				return i
			}
		}
	}
	return -1
}

// inferColumns maps product fields to header positions. Each column is used
// for at most one field.
func inferColumns(headers []string) map[string]int {
	columns := map[string]int{}
	taken := map[int]bool{}
	for _, c := range columnProbes {
		if idx := findHeaderIndex(headers, c.probes, taken); idx >= 0 {
			columns[c.field] = idx
			taken[idx] = true
		}
	}
	return columns
}

func defaultColumns() map[string]int {
	return map[string]int{"name": 0, "unit": 1, "price": 2}
}

func pickCell(cells []string, idx int, fallback int) string {
	if idx >= 0 && idx < len(cells) {
		return strings.TrimSpace(cells[idx])
	}
	if fallback >= 0 && fallback < len(cells) {
		return strings.TrimSpace(cells[fallback])
	}
	return ""
}

func normalizeCells(row []string) []string {
	out := make([]string, 0, len(row))
	for _, c := range row {
		out = append(out, util.CollapseSpaces(c))
	}
	return out
}

func lowerCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.ToLower(c)
	}
	return out
}
