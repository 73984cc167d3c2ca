package settings

import (
	"encoding/json"
	"errors"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// Decode parses a settings document. Fields absent from raw keep their
// Default() value. Parsing is attempted in order of strictness:
// 1. standard JSON
// 2. Hjson (comments, unquoted keys, optional commas)
// 3. JSON repair (single quotes, unclosed brackets, stray text)
//
// The returned Stage tells which one succeeded.
func Decode(raw []byte) (Document, Stage, error) {
	if len(raw) == 0 {
		return Default(), "", errors.New("settings are empty")
	}

	doc, strictErr := overDefault(raw)
	if strictErr == nil {
		return doc, StageJSON, nil
	}

	var generic interface{}
	if err := hjson.Unmarshal(raw, &generic); err == nil {
		if normalized, err := json.Marshal(generic); err == nil {
			if doc, err := overDefault(normalized); err == nil {
				return doc, StageHJSON, nil
			}
		}
	}

	if repaired, err := jsonrepair.RepairJSON(string(raw)); err == nil {
		if doc, err := overDefault([]byte(repaired)); err == nil {
			return doc, StageRepaired, nil
		}
	}

	return Default(), "", fmt.Errorf("decode settings: %w", strictErr)
}

// overDefault unmarshals JSON on top of Default(). The default methods are
// only used when raw has no methods list, so decoded rows never inherit
// fields from a default row at the same index.
func overDefault(raw []byte) (Document, error) {
	doc := Default()
	doc.Methods = nil
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Default(), err
	}
	if doc.Methods == nil {
		doc.Methods = Default().Methods
	}
	return doc, nil
}

// Stage names the parser that accepted a settings document.
type Stage string

const (
	StageJSON     Stage = "json"
	StageRepaired Stage = "json-repair"
	StageHJSON    Stage = "hjson"
)
