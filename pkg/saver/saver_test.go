package saver

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"options-tracker/pkg/shared"
)

func sampleBars() []shared.Bar {
	d := decimal.NewFromFloat
	return []shared.Bar{
		{Symbol: "X", TF: "1m", TS: 0, O: d(1.5), H: d(2), L: d(1), C: d(1.75), Vol: 100},
		{Symbol: "X", TF: "1m", TS: 60000, O: d(1.75), H: d(1.8), L: d(1.6), C: d(1.7), Vol: 80},
	}
}

func TestNew(t *testing.T) {
	for _, f := range []string{"csv", "json", "parquet", " CSV "} {
		if New(f) == nil {
			t.Fatalf("no saver for %q", f)
		}
	}
	if New("xml") != nil {
		t.Fatal("unexpected saver for xml")
	}
}

func TestCSVSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.csv")
	if err := (CSVSaver{}).Save(sampleBars(), path); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines", len(lines))
	}
	if lines[0] != "t,o,h,l,c,v" {
		t.Fatalf("header: %s", lines[0])
	}
	if lines[1] != "0,1.5,2,1,1.75,100" {
		t.Fatalf("row: %s", lines[1])
	}
}

func TestJSONSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.json")
	if err := (JSONSaver{}).Save(sampleBars(), path); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got []shared.Bar
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Vol != 100 || !got[1].C.Equal(decimal.NewFromFloat(1.7)) {
		t.Fatalf("roundtrip: %+v", got)
	}
}
