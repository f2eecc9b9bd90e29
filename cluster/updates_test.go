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

package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meridiandb/meridian/cluster/metadata"
	"github.com/meridiandb/meridian/cluster/model"
)

func newTestCollection(shards ...string) model.Collection {
	c := model.Collection{
		ReplicationFactor: 1,
		Shards:            map[string]model.Shard{},
	}
	for _, shard := range shards {
		c.Shards[shard] = model.Shard{
			State:    model.ShardStateActive,
			Replicas: map[string]model.Replica{},
		}
	}
	return c
}

func TestInitMetadata(t *testing.T) {
	provider := metadata.NewProviderMemory()

	assert.NoError(t, InitMetadata(provider))

	cs, _, err := provider.Get()
	assert.NoError(t, err)
	assert.Equal(t, model.NewClusterState(), cs)

	// a second initializer must lose the race
	assert.ErrorIs(t, InitMetadata(provider), metadata.ErrMetadataBadVersion)
}

func TestUpdates_UninitializedMetadata(t *testing.T) {
	provider := metadata.NewProviderMemory()

	err := RegisterNode(provider, "n1")
	assert.ErrorIs(t, err, metadata.ErrMetadataNotInitialized)
}

func TestRegisterUnregisterNode(t *testing.T) {
	provider := metadata.NewProviderMemory()
	assert.NoError(t, InitMetadata(provider))

	assert.NoError(t, RegisterNode(provider, "n1"))
	assert.NoError(t, RegisterNode(provider, "n2"))
	// registering a live node is idempotent
	assert.NoError(t, RegisterNode(provider, "n1"))

	cs, _, err := provider.Get()
	assert.NoError(t, err)
	assert.Equal(t, []model.NodeID{"n1", "n2"}, cs.LiveNodes)

	assert.NoError(t, UnregisterNode(provider, "n1"))
	// unregistering an unknown node is a no-op
	assert.NoError(t, UnregisterNode(provider, "n9"))

	cs, _, err = provider.Get()
	assert.NoError(t, err)
	assert.Equal(t, []model.NodeID{"n2"}, cs.LiveNodes)
}

func TestCreateCollection(t *testing.T) {
	provider := metadata.NewProviderMemory()
	assert.NoError(t, InitMetadata(provider))

	assert.NoError(t, CreateCollection(provider, "orders", newTestCollection("shard1", "shard2")))

	err := CreateCollection(provider, "orders", newTestCollection("shard1"))
	assert.ErrorIs(t, err, ErrCollectionAlreadyExists)

	cs, _, err := provider.Get()
	assert.NoError(t, err)
	assert.Equal(t, []string{"orders"}, cs.CollectionNames())
	assert.Len(t, cs.Collections["orders"].Shards, 2)
}

func TestAddReplica(t *testing.T) {
	provider := metadata.NewProviderMemory()
	assert.NoError(t, InitMetadata(provider))
	assert.NoError(t, CreateCollection(provider, "orders", newTestCollection("shard1")))

	replica := model.Replica{
		ID:      "r1",
		NodeID:  "n1",
		BaseURL: "http://n1:8983",
		State:   model.ReplicaStateDown,
	}
	assert.NoError(t, AddReplica(provider, "orders", "shard1", replica))

	err := AddReplica(provider, "unknown", "shard1", replica)
	assert.ErrorIs(t, err, ErrUnknownCollection)

	err = AddReplica(provider, "orders", "unknown", replica)
	assert.ErrorIs(t, err, ErrUnknownShard)

	cs, _, err := provider.Get()
	assert.NoError(t, err)
	assert.Equal(t, replica, cs.Collections["orders"].Shards["shard1"].Replicas["r1"])
}

func TestSetReplicaState(t *testing.T) {
	provider := metadata.NewProviderMemory()
	assert.NoError(t, InitMetadata(provider))
	assert.NoError(t, CreateCollection(provider, "orders", newTestCollection("shard1")))
	assert.NoError(t, AddReplica(provider, "orders", "shard1", model.Replica{
		ID:     "r1",
		NodeID: "n1",
		State:  model.ReplicaStateDown,
	}))

	assert.NoError(t, SetReplicaState(provider, "orders", "shard1", "r1", model.ReplicaStateActive))

	err := SetReplicaState(provider, "orders", "shard1", "r9", model.ReplicaStateActive)
	assert.ErrorIs(t, err, ErrUnknownReplica)

	cs, _, err := provider.Get()
	assert.NoError(t, err)
	assert.Equal(t, model.ReplicaStateActive, cs.Collections["orders"].Shards["shard1"].Replicas["r1"].State)
}

func TestUpdateClusterState_VersionConflictRetry(t *testing.T) {
	provider := metadata.NewProviderMemory()
	assert.NoError(t, InitMetadata(provider))

	conflicted := false
	err := updateClusterState(provider, func(cs *model.ClusterState) error {
		if !conflicted {
			// simulate a concurrent writer racing this update
			conflicted = true
			assert.NoError(t, RegisterNode(provider, "racer"))
		}
		cs.LiveNodes = append(cs.LiveNodes, "n1")
		return nil
	})
	assert.NoError(t, err)

	cs, _, err := provider.Get()
	assert.NoError(t, err)
	assert.Contains(t, cs.LiveNodes, model.NodeID("racer"))
	assert.Contains(t, cs.LiveNodes, model.NodeID("n1"))
}
