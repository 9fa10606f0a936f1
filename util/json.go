// util/json.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"bytes"
	"encoding/json"
	"strings"
)

// DuplicateJSONKey represents a duplicate key found in JSON.
type DuplicateJSONKey struct {
	Path string // JSON path to the duplicate (e.g., "sectors.north.boundary")
	Key  string // The duplicate key name
}

// FindDuplicateJSONKeys scans JSON content and returns all duplicate keys
// found. encoding/json silently keeps the last value for a repeated key, so
// configuration loaders run this first to reject files where part of the
// author's input would be ignored. It uses the json.Decoder token-based API
// to walk the JSON structure while tracking seen keys at each object
// nesting level.
func FindDuplicateJSONKeys(data []byte) []DuplicateJSONKey {
	dec := json.NewDecoder(bytes.NewReader(data))
	var duplicates []DuplicateJSONKey

	// Stack entry tracks state for each nesting level
	type stackEntry struct {
		isObject  bool            // true for object, false for array
		seenKeys  map[string]bool // keys seen at this level (only for objects)
		expectKey bool            // true if next string token is an object key
		popPath   bool            // true if we should pop path when closing this container
	}
	var stack []stackEntry
	var path []string // Current path components

	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}

		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{':
				popPath := len(stack) > 0 && stack[len(stack)-1].isObject && !stack[len(stack)-1].expectKey
				stack = append(stack, stackEntry{
					isObject:  true,
					seenKeys:  make(map[string]bool),
					expectKey: true,
					popPath:   popPath,
				})
			case '}':
				if len(stack) > 0 {
					if stack[len(stack)-1].popPath && len(path) > 0 {
						path = path[:len(path)-1]
					}
					stack = stack[:len(stack)-1]
				}
				if len(stack) > 0 && stack[len(stack)-1].isObject {
					stack[len(stack)-1].expectKey = true
				}
			case '[':
				popPath := len(stack) > 0 && stack[len(stack)-1].isObject && !stack[len(stack)-1].expectKey
				stack = append(stack, stackEntry{
					isObject: false,
					popPath:  popPath,
				})
			case ']':
				if len(stack) > 0 {
					if stack[len(stack)-1].popPath && len(path) > 0 {
						path = path[:len(path)-1]
					}
					stack = stack[:len(stack)-1]
				}
				if len(stack) > 0 && stack[len(stack)-1].isObject {
					stack[len(stack)-1].expectKey = true
				}
			}
		case string:
			if len(stack) > 0 {
				top := &stack[len(stack)-1]
				if top.isObject && top.expectKey {
					if top.seenKeys[v] {
						duplicates = append(duplicates, DuplicateJSONKey{
							Path: strings.Join(path, "."),
							Key:  v,
						})
					}
					top.seenKeys[v] = true
					top.expectKey = false
					path = append(path, v)
				} else if top.isObject {
					// A string value: pop the key from path.
					top.expectKey = true
					if len(path) > 0 {
						path = path[:len(path)-1]
					}
				}
			}
		default:
			// Other primitive values (numbers, bools, null)
			if len(stack) > 0 {
				top := &stack[len(stack)-1]
				if top.isObject {
					top.expectKey = true
					if len(path) > 0 {
						path = path[:len(path)-1]
					}
				}
			}
		}
	}

	return duplicates
}
