package main

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
)

// EvalRecord is one row of optimize_log.csv. Parameter columns follow
// NewParamVector's order.
type EvalRecord struct {
	Eval        int     `csv:"eval"`
	Fitness     float64 `csv:"fitness"`
	Quality     float64 `csv:"quality"`
	Stable      bool    `csv:"stable"`
	GasConstant float64 `csv:"gas_constant"`
	Viscosity   float64 `csv:"viscosity"`
	Damping     float64 `csv:"damping"`
	DT          float64 `csv:"dt"`
}

// newEvalRecord builds a row from clamped raw parameter values.
func newEvalRecord(eval int, fitness, quality float64, values []float64) EvalRecord {
	return EvalRecord{
		Eval:        eval,
		Fitness:     fitness,
		Quality:     quality,
		Stable:      fitness <= -1,
		GasConstant: values[0],
		Viscosity:   values[1],
		Damping:     values[2],
		DT:          values[3],
	}
}

// evalLog appends records to a CSV file, header first.
type evalLog struct {
	file          *os.File
	headerWritten bool
}

func createEvalLog(path string) (*evalLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating eval log: %w", err)
	}
	return &evalLog{file: f}, nil
}

func (l *evalLog) Write(r EvalRecord) error {
	records := []EvalRecord{r}
	var err error
	if !l.headerWritten {
		err = gocsv.Marshal(records, l.file)
		l.headerWritten = err == nil
	} else {
		err = gocsv.MarshalWithoutHeaders(records, l.file)
	}
	if err != nil {
		return fmt.Errorf("writing eval log: %w", err)
	}
	return nil
}

func (l *evalLog) Close() error {
	return l.file.Close()
}
