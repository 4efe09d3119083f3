package codec

import (
	"encoding/json"
	"fmt"

	"github.com/PaesslerAG/jsonpath"

	"github.com/mmynk/assetsplitter/internal/models"
)

// Query evaluates a JSONPath expression against the exported form of state,
// e.g. "$.assets[*].name" or "$.assets[?(@.allocationType == 'split')].value".
func Query(state models.StoredState, path string) (any, error) {
	data, err := Export(state)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	result, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate %q: %w", path, err)
	}
	return result, nil
}
