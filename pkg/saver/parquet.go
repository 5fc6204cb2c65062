package saver

import (
	"github.com/parquet-go/parquet-go"

	"options-tracker/pkg/shared"
)

// parquetBar is the flat row schema; decimals become float64 for columnar
// storage.
type parquetBar struct {
	Symbol string  `parquet:"symbol"`
	TF     string  `parquet:"tf"`
	TS     int64   `parquet:"t"`
	Open   float64 `parquet:"o"`
	High   float64 `parquet:"h"`
	Low    float64 `parquet:"l"`
	Close  float64 `parquet:"c"`
	Vol    int64   `parquet:"v"`
}

type ParquetSaver struct{}

func (ParquetSaver) Extension() string { return "parquet" }

func (ParquetSaver) Save(bars []shared.Bar, path string) error {
	rows := make([]parquetBar, 0, len(bars))
	for _, b := range bars {
		o, _ := b.O.Float64()
		h, _ := b.H.Float64()
		l, _ := b.L.Float64()
		c, _ := b.C.Float64()
		rows = append(rows, parquetBar{
			Symbol: b.Symbol, TF: b.TF, TS: b.TS,
			Open: o, High: h, Low: l, Close: c, Vol: b.Vol,
		})
	}
	return parquet.WriteFile(path, rows)
}
