package pipeline

import (
	"net/mail"
	"strings"

	"monito/internal"
)

// RowsToRecords turns extracted rows into normalizer input. supplier fills
// rows whose source carried no supplier column.
func RowsToRecords(rows []internal.ExtractedRow, supplier string) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		rec := make(map[string]any, len(row.Fields)+3)
		for k, v := range row.Fields {
			rec[k] = v
		}
		if _, ok := rec["supplier"]; !ok && supplier != "" {
			rec["supplier"] = supplier
		}
		rec["source"] = string(row.Source)
		rec["source_line"] = row.LineNo
		rec["raw_line"] = row.RawLine
		out = append(out, rec)
	}
	return out
}

// SenderName picks a supplier name out of a From header: the display name
// when present, else the mailbox domain.
func SenderName(from string) string {
	from = strings.TrimSpace(from)
	if from == "" {
		return ""
	}
	addr, err := mail.ParseAddress(from)
	if err != nil {
		return from
	}
	if name := strings.TrimSpace(addr.Name); name != "" {
		return name
	}
	if at := strings.LastIndex(addr.Address, "@"); at >= 0 {
		domain := addr.Address[at+1:]
		if dot := strings.Index(domain, "."); dot > 0 {
			domain = domain[:dot]
		}
		return domain
	}
	return addr.Address
}
