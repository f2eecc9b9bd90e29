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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClusterState_Clone(t *testing.T) {
	cs1 := &ClusterState{
		Collections: map[string]Collection{
			"orders": {
				ReplicationFactor: 2,
				AutoAddReplicas:   true,
				Shards: map[string]Shard{
					"shard1": {
						State: ShardStateActive,
						Replicas: map[string]Replica{
							"r1": {
								ID:      "r1",
								NodeID:  "n1",
								BaseURL: "http://n1:8983",
								State:   ReplicaStateActive,
							},
							"r2": {
								ID:      "r2",
								NodeID:  "n2",
								BaseURL: "http://n2:8983",
								State:   ReplicaStateDown,
							},
						},
					},
				},
			},
		},
		LiveNodes: []NodeID{"n1"},
	}

	cs2 := cs1.Clone()

	assert.Equal(t, cs1, cs2)
	assert.NotSame(t, cs1, cs2)
	assert.Equal(t, cs1.Collections, cs2.Collections)
	assert.NotSame(t, &cs1.Collections, &cs2.Collections)
	assert.Equal(t, cs1.Collections["orders"].Shards, cs2.Collections["orders"].Shards)

	// mutations of the clone must not leak back
	cs2.Collections["orders"].Shards["shard1"].Replicas["r2"] = Replica{
		ID:     "r2",
		NodeID: "n3",
		State:  ReplicaStateActive,
	}
	cs2.LiveNodes[0] = "n9"

	assert.Equal(t, NodeID("n2"), cs1.Collections["orders"].Shards["shard1"].Replicas["r2"].NodeID)
	assert.Equal(t, NodeID("n1"), cs1.LiveNodes[0])
}

func TestClusterState_Accessors(t *testing.T) {
	cs := NewClusterState()
	cs.Collections["orders"] = Collection{Shards: map[string]Shard{}}
	cs.Collections["accounts"] = Collection{Shards: map[string]Shard{}}
	cs.LiveNodes = []NodeID{"n1", "n2"}

	assert.Equal(t, []string{"accounts", "orders"}, cs.CollectionNames())

	assert.True(t, cs.IsNodeLive("n1"))
	assert.False(t, cs.IsNodeLive("n3"))

	_, ok := cs.GetCollection("orders")
	assert.True(t, ok)
	_, ok = cs.GetCollection("unknown")
	assert.False(t, ok)
}

func TestShardState_JSON(t *testing.T) {
	for _, test := range []struct {
		state    ShardState
		expected string
	}{
		{ShardStateUnknown, `"Unknown"`},
		{ShardStateActive, `"Active"`},
		{ShardStateInactive, `"Inactive"`},
		{ShardStateConstruction, `"Construction"`},
		{ShardStateRecovery, `"Recovery"`},
	} {
		t.Run(test.state.String(), func(t *testing.T) {
			b, err := json.Marshal(test.state)
			assert.NoError(t, err)
			assert.Equal(t, test.expected, string(b))

			var s ShardState
			assert.NoError(t, json.Unmarshal(b, &s))
			assert.Equal(t, test.state, s)
		})
	}

	// unrecognized states fall back to Unknown
	var s ShardState
	assert.NoError(t, json.Unmarshal([]byte(`"Bogus"`), &s))
	assert.Equal(t, ShardStateUnknown, s)
}
