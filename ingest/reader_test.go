package ingest

import (
	"errors"
	"strings"
	"testing"
)

func TestReadHeaderedCSV(t *testing.T) {
	input := "Potential (V),Current (A),Time (s)\n" +
		"0.10,1.5e-6,0.0\n" +
		"0.11,1.8e-6,0.1\n" +
		"0.12,2.2e-6,0.2\n"

	ds, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(ds.Samples) != 3 {
		t.Fatalf("got %d samples, want 3", len(ds.Samples))
	}
	if ds.Columns.Potential != 0 || ds.Columns.Current != 1 || ds.Columns.Time != 2 {
		t.Errorf("columns = %+v, want 0/1/2", ds.Columns)
	}
	if ds.Samples[1].Potential != 0.11 || ds.Samples[1].Current != 1.8e-6 {
		t.Errorf("sample[1] = %+v", ds.Samples[1])
	}
	if ds.Samples[1].Time == nil || *ds.Samples[1].Time != 0.1 {
		t.Errorf("sample[1].Time = %v, want 0.1", ds.Samples[1].Time)
	}
	if !ds.Samples.HasTime() {
		t.Error("HasTime() = false, want true")
	}
}

func TestReadDelimiterSniffing(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"semicolons", "Ewe/V;I/mA\n0.1;2.0\n0.2;3.0\n"},
		{"tabs", "Ewe/V\tI/mA\n0.1\t2.0\n0.2\t3.0\n"},
		{"commas", "Ewe/V,I/mA\n0.1,2.0\n0.2,3.0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Read(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if len(ds.Samples) != 2 {
				t.Fatalf("got %d samples, want 2", len(ds.Samples))
			}
			if ds.Samples[0].Potential != 0.1 || ds.Samples[0].Current != 2.0 {
				t.Errorf("sample[0] = %+v", ds.Samples[0])
			}
		})
	}
}

func TestReadHeaderKeywords(t *testing.T) {
	input := "time/s;applied potential/V;Ewe/V;current/A\n" +
		"0.0;0.105;0.100;1.0\n" +
		"0.1;0.116;0.110;2.0\n"

	ds, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	want := ColumnMap{Potential: 2, Current: 3, Time: 0, Applied: 1}
	if ds.Columns != want {
		t.Fatalf("columns = %+v, want %+v", ds.Columns, want)
	}
	smp := ds.Samples[0]
	if smp.AppliedPotential == nil || *smp.AppliedPotential != 0.105 {
		t.Errorf("applied potential = %v, want 0.105", smp.AppliedPotential)
	}
}

func TestReadHeaderless(t *testing.T) {
	input := "0.1,1.0\n0.2,2.0\n0.3,3.0\n"

	ds, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(ds.Samples) != 3 {
		t.Fatalf("got %d samples, want 3", len(ds.Samples))
	}
	if ds.Columns.Potential != 0 || ds.Columns.Current != 1 || ds.Columns.Time != -1 {
		t.Errorf("columns = %+v", ds.Columns)
	}
	if ds.Samples.HasTime() {
		t.Error("HasTime() = true for two-column data")
	}
}

func TestReadSkipsBadRows(t *testing.T) {
	input := "potential,current\n" +
		"0.1,1.0\n" +
		"oops,2.0\n" +
		"0.3,n/a\n" +
		"0.4,4.0\n"

	ds, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(ds.Samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(ds.Samples))
	}
	if ds.SkippedRows != 2 {
		t.Errorf("skipped = %d, want 2", ds.SkippedRows)
	}
	found := false
	for _, w := range ds.Warnings {
		if strings.Contains(w, "skipped") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a skipped-rows warning, got %v", ds.Warnings)
	}
}

func TestReadUnrecognizedHeadersFallBack(t *testing.T) {
	input := "alpha,beta\n0.1,1.0\n0.2,2.0\n"

	ds, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if ds.Columns.Potential != 0 || ds.Columns.Current != 1 {
		t.Errorf("columns = %+v, want positional", ds.Columns)
	}
	if len(ds.Warnings) == 0 {
		t.Error("expected a header warning")
	}
}

func TestReadErrors(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		if _, err := Read(strings.NewReader("")); !errors.Is(err, ErrNoData) {
			t.Errorf("error = %v, want ErrNoData", err)
		}
	})

	t.Run("header only", func(t *testing.T) {
		if _, err := Read(strings.NewReader("potential,current\n")); !errors.Is(err, ErrNoData) {
			t.Errorf("error = %v, want ErrNoData", err)
		}
	})

	t.Run("single column", func(t *testing.T) {
		if _, err := Read(strings.NewReader("0.1\n0.2\n")); !errors.Is(err, ErrTooFewColumns) {
			t.Errorf("error = %v, want ErrTooFewColumns", err)
		}
	})
}
