// Copyright 2024 Meridian, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

import (
	"bytes"
	"encoding/json"
)

type ShardState uint16

const (
	ShardStateUnknown ShardState = iota
	ShardStateActive
	ShardStateInactive
	ShardStateConstruction
	ShardStateRecovery
)

func (s ShardState) String() string {
	return toString[s]
}

var toString = map[ShardState]string{
	ShardStateUnknown:      "Unknown",
	ShardStateActive:       "Active",
	ShardStateInactive:     "Inactive",
	ShardStateConstruction: "Construction",
	ShardStateRecovery:     "Recovery",
}

var toShardState = map[string]ShardState{
	"Unknown":      ShardStateUnknown,
	"Active":       ShardStateActive,
	"Inactive":     ShardStateInactive,
	"Construction": ShardStateConstruction,
	"Recovery":     ShardStateRecovery,
}

// MarshalJSON marshals the enum as a quoted json string
func (s ShardState) MarshalJSON() ([]byte, error) {
	buffer := bytes.NewBufferString(`"`)
	buffer.WriteString(toString[s])
	buffer.WriteString(`"`)
	return buffer.Bytes(), nil
}

// UnmarshalJSON unmarshals a quoted json string to the enum value
func (s *ShardState) UnmarshalJSON(b []byte) error {
	var j string
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	// If the string cannot be found then it will be set to the Unknown state value
	*s = toShardState[j]
	return nil
}
