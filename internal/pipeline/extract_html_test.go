package pipeline

import "testing"

func TestParseHTMLTables(t *testing.T) {
	html := `<table>
<tr><th>Nama Barang</th><th>Satuan</th><th>Harga Satuan</th><th>Kategori</th></tr>
<tr><td>Bawang merah</td><td>kg</td><td>Rp 32.000</td><td>Sayur</td></tr>
<tr><td>Catatan</td><td></td><td></td><td></td></tr>
</table>`
	rows := parseHTMLTables(html)
	if len(rows) != 1 {
		t.Fatalf("len=%d", len(rows))
	}
	f := rows[0].Fields
	if f["name"] != "Bawang merah" || f["unit"] != "kg" || f["price"] != "Rp 32.000" || f["category"] != "Sayur" {
		t.Fatalf("fields=%v", f)
	}
}

func TestInferColumnsPriceBeforeUnit(t *testing.T) {
	cols := inferColumns([]string{"produk", "harga satuan", "satuan"})
	if cols["name"] != 0 || cols["price"] != 1 || cols["unit"] != 2 {
		t.Fatalf("cols=%v", cols)
	}
}
