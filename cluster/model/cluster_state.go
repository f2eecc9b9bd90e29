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
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type NodeID string

// Replica state literals, as stored in the shared cluster state.
const (
	ReplicaStateActive         = "active"
	ReplicaStateDown           = "down"
	ReplicaStateRecovering     = "recovering"
	ReplicaStateRecoveryFailed = "recovery_failed"
)

type Replica struct {
	// ID is unique within the parent shard
	ID string `json:"id" yaml:"id"`

	// NodeID is the node currently hosting this replica
	NodeID NodeID `json:"nodeId" yaml:"nodeId"`

	// BaseURL is the address the replica serves requests on
	BaseURL string `json:"baseUrl" yaml:"baseUrl"`

	State string `json:"state" yaml:"state"`
}

type Shard struct {
	State    ShardState         `json:"state" yaml:"state"`
	Replicas map[string]Replica `json:"replicas" yaml:"replicas"`
}

type Collection struct {
	ReplicationFactor uint32           `json:"replicationFactor" yaml:"replicationFactor"`
	AutoAddReplicas   bool             `json:"autoAddReplicas" yaml:"autoAddReplicas"`
	Shards            map[string]Shard `json:"shards" yaml:"shards"`
}

// ClusterState is a point-in-time view of the cluster: the collections with
// their shards and replicas, plus the set of nodes currently considered live.
type ClusterState struct {
	Collections map[string]Collection `json:"collections" yaml:"collections"`
	LiveNodes   []NodeID              `json:"liveNodes" yaml:"liveNodes"`
}

func NewClusterState() *ClusterState {
	return &ClusterState{
		Collections: map[string]Collection{},
		LiveNodes:   []NodeID{},
	}
}

func (cs *ClusterState) IsNodeLive(node NodeID) bool {
	return slices.Contains(cs.LiveNodes, node)
}

func (cs *ClusterState) GetCollection(name string) (Collection, bool) {
	c, ok := cs.Collections[name]
	return c, ok
}

func (cs *ClusterState) CollectionNames() []string {
	names := maps.Keys(cs.Collections)
	slices.Sort(names)
	return names
}

func (s Shard) Clone() Shard {
	r := Shard{
		State:    s.State,
		Replicas: make(map[string]Replica, len(s.Replicas)),
	}

	for id, replica := range s.Replicas {
		r.Replicas[id] = replica
	}

	return r
}

func (c Collection) Clone() Collection {
	r := Collection{
		ReplicationFactor: c.ReplicationFactor,
		AutoAddReplicas:   c.AutoAddReplicas,
		Shards:            make(map[string]Shard, len(c.Shards)),
	}

	for name, shard := range c.Shards {
		r.Shards[name] = shard.Clone()
	}

	return r
}

func (cs ClusterState) Clone() *ClusterState {
	r := &ClusterState{
		Collections: make(map[string]Collection, len(cs.Collections)),
		LiveNodes:   make([]NodeID, len(cs.LiveNodes)),
	}

	for name, c := range cs.Collections {
		r.Collections[name] = c.Clone()
	}

	copy(r.LiveNodes, cs.LiveNodes)

	return r
}
