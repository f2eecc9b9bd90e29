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

package collection

import (
	"github.com/spf13/cobra"

	"github.com/meridiandb/meridian/cluster"
	"github.com/meridiandb/meridian/cluster/metadata"
	"github.com/meridiandb/meridian/cluster/model"
	"github.com/meridiandb/meridian/cmd/common"
)

var (
	metaOpts = common.NewMetadataOptions()

	replicationFactor uint32
	autoAddReplicas   bool
	shards            []string

	replicaNode  string
	replicaURL   string
	replicaState string

	Cmd = &cobra.Command{
		Use:   "collection",
		Short: "Manage collection descriptors",
	}

	createCmd = &cobra.Command{
		Use:   "create <name>",
		Short: "Create a collection with empty active shards",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return withProvider(func(provider metadata.Provider) error {
				c := model.Collection{
					ReplicationFactor: replicationFactor,
					AutoAddReplicas:   autoAddReplicas,
					Shards:            map[string]model.Shard{},
				}
				for _, shard := range shards {
					c.Shards[shard] = model.Shard{
						State:    model.ShardStateActive,
						Replicas: map[string]model.Replica{},
					}
				}
				return cluster.CreateCollection(provider, args[0], c)
			})
		},
	}

	addReplicaCmd = &cobra.Command{
		Use:   "add-replica <collection> <shard> <replica-id>",
		Short: "Register a replica under a shard",
		Args:  cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			return withProvider(func(provider metadata.Provider) error {
				return cluster.AddReplica(provider, args[0], args[1], model.Replica{
					ID:      args[2],
					NodeID:  model.NodeID(replicaNode),
					BaseURL: replicaURL,
					State:   replicaState,
				})
			})
		},
	}

	setReplicaStateCmd = &cobra.Command{
		Use:   "set-replica-state <collection> <shard> <replica-id> <state>",
		Short: "Change the state field of a replica",
		Args:  cobra.ExactArgs(4),
		RunE: func(_ *cobra.Command, args []string) error {
			return withProvider(func(provider metadata.Provider) error {
				return cluster.SetReplicaState(provider, args[0], args[1], args[2], args[3])
			})
		},
	}
)

func init() {
	common.AddMetadataFlags(Cmd, &metaOpts)

	createCmd.Flags().Uint32Var(&replicationFactor, "replication-factor", 1, "Replication factor of the collection")
	createCmd.Flags().BoolVar(&autoAddReplicas, "auto-add-replicas", false, "Enable auto-add-replicas for the collection")
	createCmd.Flags().StringSliceVar(&shards, "shards", []string{"shard1"}, "Shard names to create")

	addReplicaCmd.Flags().StringVar(&replicaNode, "node", "", "Node id hosting the replica")
	addReplicaCmd.Flags().StringVar(&replicaURL, "base-url", "", "Base url the replica serves on")
	addReplicaCmd.Flags().StringVar(&replicaState, "state", model.ReplicaStateDown, "Initial replica state")

	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(addReplicaCmd)
	Cmd.AddCommand(setReplicaStateCmd)
}

func withProvider(f func(provider metadata.Provider) error) error {
	if err := metaOpts.Validate(); err != nil {
		return err
	}

	provider, err := metaOpts.NewProvider()
	if err != nil {
		return err
	}
	defer provider.Close()

	return f(provider)
}
