package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// WriteJSONL encodes one event per line.
func WriteJSONL(w io.Writer, events []Event) error {
	writer := bufio.NewWriter(w)
	encoder := json.NewEncoder(writer)

	for _, e := range events {
		if err := encoder.Encode(e); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush writer: %w", err)
	}
	return nil
}
