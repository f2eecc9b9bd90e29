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
	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/meridiandb/meridian/cluster/metadata"
	"github.com/meridiandb/meridian/cluster/model"
)

const casRetries = 5

var (
	ErrCollectionAlreadyExists = errors.New("collection already exists")
	ErrUnknownCollection       = errors.New("unknown collection")
	ErrUnknownShard            = errors.New("unknown shard")
	ErrUnknownReplica          = errors.New("unknown replica")
)

// InitMetadata stores an empty cluster state. It fails with
// ErrMetadataBadVersion if some other actor initialized it first.
func InitMetadata(provider metadata.Provider) error {
	_, err := provider.Store(model.NewClusterState(), metadata.NotExists)
	return err
}

// updateClusterState is a read-modify-write over the metadata provider,
// retried on version conflicts with concurrent writers.
func updateClusterState(provider metadata.Provider, mutate func(cs *model.ClusterState) error) error {
	op := func() error {
		cs, version, err := provider.Get()
		if err != nil {
			return backoff.Permanent(err)
		}
		if cs == nil {
			return backoff.Permanent(metadata.ErrMetadataNotInitialized)
		}

		updated := cs.Clone()
		if err := mutate(updated); err != nil {
			return backoff.Permanent(err)
		}

		if _, err := provider.Store(updated, version); err != nil {
			if errors.Is(err, metadata.ErrMetadataBadVersion) {
				// lost the race, reload and retry
				return err
			}
			return backoff.Permanent(err)
		}
		return nil
	}

	return backoff.Retry(op, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), casRetries))
}

// RegisterNode adds the node to the live set.
func RegisterNode(provider metadata.Provider, node model.NodeID) error {
	return updateClusterState(provider, func(cs *model.ClusterState) error {
		if !slices.Contains(cs.LiveNodes, node) {
			cs.LiveNodes = append(cs.LiveNodes, node)
		}
		return nil
	})
}

// UnregisterNode removes the node from the live set.
func UnregisterNode(provider metadata.Provider, node model.NodeID) error {
	return updateClusterState(provider, func(cs *model.ClusterState) error {
		if idx := slices.Index(cs.LiveNodes, node); idx >= 0 {
			cs.LiveNodes = slices.Delete(cs.LiveNodes, idx, idx+1)
		}
		return nil
	})
}

func CreateCollection(provider metadata.Provider, name string, collection model.Collection) error {
	return updateClusterState(provider, func(cs *model.ClusterState) error {
		if _, ok := cs.Collections[name]; ok {
			return errors.Wrap(ErrCollectionAlreadyExists, name)
		}
		cs.Collections[name] = collection.Clone()
		return nil
	})
}

// AddReplica registers a new replica under the given shard. An existing
// replica with the same id is replaced.
func AddReplica(provider metadata.Provider, collection, shard string, replica model.Replica) error {
	return updateClusterState(provider, func(cs *model.ClusterState) error {
		c, ok := cs.Collections[collection]
		if !ok {
			return errors.Wrap(ErrUnknownCollection, collection)
		}
		s, ok := c.Shards[shard]
		if !ok {
			return errors.Wrap(ErrUnknownShard, shard)
		}
		s.Replicas[replica.ID] = replica
		return nil
	})
}

func SetReplicaState(provider metadata.Provider, collection, shard, replicaID, state string) error {
	return updateClusterState(provider, func(cs *model.ClusterState) error {
		c, ok := cs.Collections[collection]
		if !ok {
			return errors.Wrap(ErrUnknownCollection, collection)
		}
		s, ok := c.Shards[shard]
		if !ok {
			return errors.Wrap(ErrUnknownShard, shard)
		}
		replica, ok := s.Replicas[replicaID]
		if !ok {
			return errors.Wrap(ErrUnknownReplica, replicaID)
		}
		replica.State = state
		s.Replicas[replicaID] = replica
		return nil
	})
}
