// Package wire decodes the input command document and builds the two output
// documents. Everything here is plumbing around the engine; the JSON shapes
// are the external contract.
package wire

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"skoll/internal/common"
)

var ErrIO = errors.New("i/o error")

// ParseCommands decodes the input document: a JSON array of raw order
// commands whose array order defines ingestion order. Field contents are
// validated later, per command, by the engine.
func ParseCommands(data []byte) ([]common.Command, error) {
	var cmds []common.Command
	if err := json.Unmarshal(data, &cmds); err != nil {
		return nil, fmt.Errorf("%w: decoding input document: %v", ErrIO, err)
	}
	return cmds, nil
}

// ReadCommands loads the input document from disk.
func ReadCommands(path string) ([]common.Command, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	return ParseCommands(data)
}
