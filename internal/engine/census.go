package engine

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/csv"
	"github.com/sirupsen/logrus"
)

const censusChunkRows = 64 * 1024

// censusNulls are the markers INEGI uses for suppressed or missing cells.
var censusNulls = []string{"", "*", "N/D", "NA"}

// LoadCensus reads the census block table. Only the columns the dashboard
// needs are decoded; any other column in the file is skipped. Cancelling
// ctx stops the read at the next chunk.
func LoadCensus(ctx context.Context, path string) (*CensusStore, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open census: %w", err)
	}
	defer f.Close()

	include := append([]string{regionColumn}, censusColumns...)
	types := map[string]arrow.DataType{regionColumn: arrow.BinaryTypes.String}
	for _, c := range censusColumns {
		types[c] = arrow.PrimitiveTypes.Int64
	}

	r := csv.NewInferringReader(f,
		csv.WithHeader(true),
		csv.WithChunk(censusChunkRows),
		csv.WithIncludeColumns(include),
		csv.WithColumnTypes(types),
		csv.WithNullReader(true, censusNulls...),
	)
	defer r.Release()

	store := &CensusStore{Counts: make([][]int64, len(censusColumns))}
	dict := make(map[string]int32)

	for r.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec := r.Record()
		if err := store.appendRecord(rec, dict); err != nil {
			return nil, err
		}
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("read census %s: %w", path, err)
	}

	logrus.WithFields(logrus.Fields{
		"rows":    store.Rows(),
		"regions": len(store.RegionDict),
		"took":    time.Since(start),
	}).Info("census loaded")
	return store, nil
}

func (cs *CensusStore) appendRecord(rec arrow.Record, dict map[string]int32) error {
	schema := rec.Schema()

	names, ok := column[*array.String](rec, schema, regionColumn)
	if !ok {
		return fmt.Errorf("census: column %s missing or not text", regionColumn)
	}
	counts := make([]*array.Int64, len(censusColumns))
	for i, c := range censusColumns {
		if counts[i], ok = column[*array.Int64](rec, schema, c); !ok {
			return fmt.Errorf("census: column %s missing or not integer", c)
		}
	}

	for row := 0; row < int(rec.NumRows()); row++ {
		if names.IsNull(row) {
			continue
		}
		name := names.Value(row)
		id, ok := dict[name]
		if !ok {
			id = int32(len(cs.RegionDict))
			cs.RegionDict = append(cs.RegionDict, name)
			dict[name] = id
		}
		cs.RegionIDs = append(cs.RegionIDs, id)

		for i, col := range counts {
			var v int64
			if !col.IsNull(row) {
				v = col.Value(row)
			}
			cs.Counts[i] = append(cs.Counts[i], v)
		}
	}
	return nil
}

func column[T arrow.Array](rec arrow.Record, schema *arrow.Schema, name string) (T, bool) {
	var zero T
	idx := schema.FieldIndices(name)
	if len(idx) == 0 {
		return zero, false
	}
	col, ok := rec.Column(idx[0]).(T)
	return col, ok
}
