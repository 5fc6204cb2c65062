package saver

import (
	"encoding/csv"
	"os"
	"strconv"

	"options-tracker/pkg/shared"
)

// CSVSaver writes bars with header t,o,h,l,c,v.
type CSVSaver struct{}

func (CSVSaver) Extension() string { return "csv" }

func (CSVSaver) Save(bars []shared.Bar, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"t", "o", "h", "l", "c", "v"}); err != nil {
		return err
	}
	for _, b := range bars {
		if err := w.Write([]string{
			strconv.FormatInt(b.TS, 10),
			b.O.String(),
			b.H.String(),
			b.L.String(),
			b.C.String(),
			strconv.FormatInt(b.Vol, 10),
		}); err != nil {
			return err
		}
	}
	return w.Error()
}
