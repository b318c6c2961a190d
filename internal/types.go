package internal

type RowSource string

const (
	SourceText      RowSource = "text"
	SourceEmailText RowSource = "email_text"
	SourceHTMLTable RowSource = "html_table"
	SourceXLSX      RowSource = "xlsx"
	SourceCSV       RowSource = "csv"
	SourcePDF       RowSource = "pdf"
)

// ExtractedRow is one candidate product line pulled out of a price list.
// Fields uses the product keys understood by the normalizer (name, unit,
// price, category, supplier).
type ExtractedRow struct {
	LineNo  int
	Source  RowSource
	RawLine string
	Fields  map[string]any
	Meta    map[string]any
}

const (
	StatusFetched   = "fetched"
	StatusProcessed = "processed"
	StatusSkipped   = "skipped"
	StatusExported  = "exported"
)

// DocumentRow is a stored price-list document: a supplier email or a file
// run through the CLI.
type DocumentRow struct {
	ID         int
	Provider   string
	ExternalID string
	Subject    string
	Sender     string
	ReceivedAt string
	Hash       string
	Status     string
	RawRef     string
}

type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}

// StoredProduct is a normalized product as persisted for one document.
type StoredProduct struct {
	ID            int
	DocumentID    int
	Name          string
	NormalizedKey string
	Unit          *string
	UnitDimension *string
	Price         *float64
	PriceMin      *float64
	PriceMax      *float64
	PriceType     *string
	Currency      *string
	Category      *string
	Supplier      *string
	QualityScore  float64
	MergedFrom    int
	PriceError    *string
	RawJSON       string
	CreatedAt     string
}

type ProductExportRow struct {
	StoredProduct
	DocumentSubject string
	DocumentSender  string
}
