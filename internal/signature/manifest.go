package signature

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// manifest mirrors the project.json structure: a list of targets (the stage
// plus every sprite), each carrying a name and a block collection.
type manifest struct {
	Targets []target `json:"targets"`
}

type target struct {
	Name   string          `json:"name"`
	Blocks blockCollection `json:"blocks"`
}

type block struct {
	Opcode string                     `json:"opcode"`
	Shadow bool                       `json:"shadow"`
	Inputs map[string]json.RawMessage `json:"inputs"`
	Fields map[string]json.RawMessage `json:"fields"`
}

// blockCollection normalizes the two on-disk shapes of a target's block set.
// Normally it is an object keyed by block id; some producers emit a plain
// array instead. Both converge here into one ordered slice so the extractor
// never branches on shape. The object form is walked token by token so
// blocks keep their manifest document order: block ids are regenerated when
// a project is copied, so ordering by id would permute otherwise-identical
// logic. Entries that are not objects (the format stores compressed
// primitives as arrays) are dropped.
type blockCollection struct {
	blocks []block
}

func (c *blockCollection) UnmarshalJSON(data []byte) error {
	c.blocks = nil

	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return errors.New("empty block collection")
	}

	if bytes.HasPrefix(trimmed, []byte("null")) {
		return nil
	}

	switch trimmed[0] {
	case '{':
		return c.decodeObject(data)
	case '[':
		return c.decodeArray(data)
	default:
		return fmt.Errorf("block collection is neither object nor array")
	}
}

func (c *blockCollection) decodeObject(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return err
	}
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return err
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if b, ok := decodeBlock(raw); ok {
			c.blocks = append(c.blocks, b)
		}
	}
	_, err := dec.Token()
	return err
}

func (c *blockCollection) decodeArray(data []byte) error {
	var asList []json.RawMessage
	if err := json.Unmarshal(data, &asList); err != nil {
		return err
	}
	for _, raw := range asList {
		if b, ok := decodeBlock(raw); ok {
			c.blocks = append(c.blocks, b)
		}
	}
	return nil
}

func decodeBlock(raw json.RawMessage) (block, bool) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return block{}, false
	}
	var b block
	if err := json.Unmarshal(raw, &b); err != nil {
		return block{}, false
	}
	return b, true
}
