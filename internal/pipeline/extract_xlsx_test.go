package pipeline

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func mkXLSX(rows [][]any) []byte {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	buf := bytes.NewBuffer(nil)
	_, _ = f.WriteTo(buf)
	return buf.Bytes()
}

func TestParseXLSX(t *testing.T) {
	blob := mkXLSX([][]any{
		{"Daftar Harga Sayur"},
		{"Nama", "Satuan", "Harga"},
		{"Tomat merah", "kg", 15000},
		{"Wortel", "kg", "12.500"},
		{"", "", ""},
	})
	rows, err := parseXLSX(blob)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("len=%d", len(rows))
	}
	if rows[0].Fields["price"] != "15000" || rows[1].Fields["unit"] != "kg" {
		t.Fatalf("fields=%v %v", rows[0].Fields, rows[1].Fields)
	}
	if rows[1].LineNo != 2 {
		t.Fatalf("line numbers not sequential: %d", rows[1].LineNo)
	}
}

func TestParseCSVWithoutHeader(t *testing.T) {
	rows, err := parseCSV(strings.NewReader("Beras premium,kg,13500\nGula pasir,kg,\"Rp 16.000\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("len=%d", len(rows))
	}
	if rows[1].Fields["name"] != "Gula pasir" || rows[1].Fields["price"] != "Rp 16.000" {
		t.Fatalf("fields=%v", rows[1].Fields)
	}
}

func TestDetectPriceList(t *testing.T) {
	pos := DetectPriceList("Daftar harga minggu ini", "Tomat 15.000/kg\nCabai 45k", "", nil)
	if !pos.IsPriceList {
		t.Fatalf("expected price list, score=%v", pos.Score)
	}
	neg := DetectPriceList("Rapat besok", "Sampai jumpa jam 10", "", nil)
	if neg.IsPriceList {
		t.Fatalf("expected negative, score=%v", neg.Score)
	}
	att := DetectPriceList("Update", "", "", []string{"pricelist.xlsx"})
	if att.Score < 0.25 {
		t.Fatalf("attachment not scored: %v", att.Score)
	}
}
