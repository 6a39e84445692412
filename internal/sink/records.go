package sink

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"eventsim/internal/enrich"
)

// WriteRecordsJSONL encodes one record per line.
func WriteRecordsJSONL(w io.Writer, records []map[string]any) error {
	writer := bufio.NewWriter(w)
	encoder := json.NewEncoder(writer)
	for _, rec := range records {
		if err := encoder.Encode(rec); err != nil {
			return fmt.Errorf("failed to encode record: %w", err)
		}
	}
	return writer.Flush()
}

// WriteCSV writes records as CSV. The header is the union of all keys in
// first-seen order; missing cells are left empty.
func WriteCSV(w io.Writer, records []map[string]any) error {
	header := enrich.UniqueKeys(records)
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for _, rec := range records {
		for i, k := range header {
			cell, err := cellValue(rec[k])
			if err != nil {
				return fmt.Errorf("column %s: %w", k, err)
			}
			row[i] = cell
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func cellValue(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
