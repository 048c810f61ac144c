// Package store writes a single run's trace to CSV or JSON.
package store

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/numeth/internal/config"
	"github.com/san-kum/numeth/internal/dynamo"
)

type ExportData struct {
	ID        string             `json:"id"`
	CreatedAt time.Time          `json:"created_at"`
	Method    dynamo.Method      `json:"method"`
	Params    any                `json:"params,omitempty"`
	Status    dynamo.Status      `json:"status"`
	Root      *float64           `json:"root,omitempty"`
	X         float64            `json:"x"`
	Y         *float64           `json:"y,omitempty"`
	Error     string             `json:"error,omitempty"`
	Steps     int                `json:"steps"`
	Columns   []string           `json:"columns"`
	Rows      [][]float64        `json:"rows"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

// NewExportData builds the JSON document for res. cfg may be nil.
func NewExportData(res *dynamo.Result, cfg *config.Config) ExportData {
	data := ExportData{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Method:    res.Method,
		Status:    res.Status,
		X:         res.X,
		Steps:     len(res.Records),
		Columns:   dynamo.Columns(res.Method),
		Rows:      Rows(res),
		Metrics:   make(map[string]float64, len(res.Metrics)),
	}
	if cfg != nil {
		data.Params = cfg.Params()
	}
	if res.Status == dynamo.StatusConverged {
		root := res.Root
		data.Root = &root
	}
	if res.Method.IsODE() {
		y := res.Y
		data.Y = &y
	}
	if res.Err != nil {
		data.Error = res.Err.Error()
	}
	// encoding/json refuses NaN and Inf.
	for name, v := range res.Metrics {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			data.Metrics[name] = v
		}
	}
	return data
}

// Rows flattens the records into table rows, iteration first and 1-based.
func Rows(res *dynamo.Result) [][]float64 {
	rows := make([][]float64, len(res.Records))
	for i, r := range res.Records {
		rows[i] = append([]float64{float64(r.Step() + 1)}, r.Values()...)
	}
	return rows
}

func WriteJSON(w io.Writer, res *dynamo.Result, cfg *config.Config) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(res, cfg))
}

func ExportJSON(path string, res *dynamo.Result, cfg *config.Config) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, res, cfg)
}

func WriteCSV(w io.Writer, res *dynamo.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(dynamo.Columns(res.Method)); err != nil {
		return err
	}

	for _, row := range Rows(res) {
		record := make([]string, len(row))
		record[0] = strconv.Itoa(int(row[0]))
		for i := 1; i < len(row); i++ {
			record[i] = strconv.FormatFloat(row[i], 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func ExportCSV(path string, res *dynamo.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteCSV(file, res)
}
